package comfy

import (
	"context"
	"errors"
	"time"
)

// HistoryPoller waits for a prompt by polling /history, used when the
// websocket cannot connect or drops mid-run.
type HistoryPoller struct {
	Client          *Client
	RequestInterval time.Duration
}

func NewHistoryPoller(client *Client) *HistoryPoller {
	return &HistoryPoller{
		Client:          client,
		RequestInterval: time.Second * 3,
	}
}

func (c *Client) poller() *HistoryPoller {
	return &HistoryPoller{Client: c, RequestInterval: c.pollInterval}
}

// Wait blocks until the history entry for promptID exists or ctx is done.
func (p *HistoryPoller) Wait(ctx context.Context, promptID string) (*HistoryEntry, error) {
	t := time.NewTicker(p.RequestInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-t.C:
			entry, err := p.Client.History(ctx, promptID)
			if errors.Is(err, ErrNotFinished) {
				continue
			}
			if err != nil {
				return nil, err
			}
			return entry, nil
		}
	}
}
