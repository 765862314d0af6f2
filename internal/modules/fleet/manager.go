package fleet

import (
	"context"
	"sync"
	"time"

	"github.com/reusedev/comfy-hub/config"
	"github.com/reusedev/comfy-hub/internal/modules/comfy"
)

// Manager owns the configured ComfyUI backends and tracks which of them are
// benched after failures.
type Manager struct {
	servers []*comfy.Client
	banned  map[string]time.Time // server name -> ban expiry
	lock    sync.Mutex
}

var GManager *Manager

func Init(ctx context.Context, servers []config.Server) {
	GManager = NewManager(servers)
	go func() {
		t := time.NewTicker(5 * time.Second)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				GManager.tidy()
			case <-ctx.Done():
				return
			}
		}
	}()
}

func NewManager(servers []config.Server) *Manager {
	m := &Manager{banned: make(map[string]time.Time)}
	for _, s := range servers {
		opts := []comfy.Option{comfy.WithName(s.Name)}
		if s.Token != "" {
			opts = append(opts, comfy.WithToken(s.Token))
		}
		if s.TLS {
			opts = append(opts, comfy.WithTLS())
		}
		m.servers = append(m.servers, comfy.New(s.Address, opts...))
	}
	return m
}

func (m *Manager) Clients() []*comfy.Client {
	return m.servers
}

func (m *Manager) ByName(name string) *comfy.Client {
	for _, s := range m.servers {
		if s.Name() == name {
			return s
		}
	}
	return nil
}

// Ban benches a server until the given time. Expired bans are cleared by the
// tidy ticker and by the iterator itself.
func (m *Manager) Ban(name string, until time.Time) {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.banned[name] = until
}

func (m *Manager) bannedNow(name string) bool {
	until, ok := m.banned[name]
	if !ok {
		return false
	}
	return until.After(time.Now())
}

// GetServerIterator returns the next usable server per call in configured
// order, nil when exhausted. When every server is benched the earliest ban is
// lifted, so a request never starves with zero candidates.
func (m *Manager) GetServerIterator() func() *comfy.Client {
	idx := 0
	return func() *comfy.Client {
		m.lock.Lock()
		defer m.lock.Unlock()
		if idx == 0 {
			m.popBanIfAllBanned()
		}
		for idx < len(m.servers) {
			s := m.servers[idx]
			idx++
			if m.bannedNow(s.Name()) {
				continue
			}
			return s
		}
		return nil
	}
}

func (m *Manager) popBanIfAllBanned() {
	var earliestName string
	var earliest time.Time
	for _, s := range m.servers {
		if !m.bannedNow(s.Name()) {
			return
		}
		until := m.banned[s.Name()]
		if earliestName == "" || until.Before(earliest) {
			earliestName = s.Name()
			earliest = until
		}
	}
	if earliestName != "" {
		delete(m.banned, earliestName)
	}
}

func (m *Manager) tidy() {
	m.lock.Lock()
	defer m.lock.Unlock()
	now := time.Now()
	for name, until := range m.banned {
		if until.Before(now) {
			delete(m.banned, name)
		}
	}
}
