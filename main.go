package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/reusedev/comfy-hub/config"
	"github.com/reusedev/comfy-hub/internal/components/mysql"
	"github.com/reusedev/comfy-hub/internal/consts"
	"github.com/reusedev/comfy-hub/internal/modules/fleet"
	"github.com/reusedev/comfy-hub/internal/modules/logs"
	"github.com/reusedev/comfy-hub/internal/modules/model"
	"github.com/reusedev/comfy-hub/internal/modules/queue"
	"github.com/reusedev/comfy-hub/internal/modules/storage/ali"
	"github.com/reusedev/comfy-hub/internal/service/http"
	"github.com/reusedev/comfy-hub/internal/service/http/handler"
	"github.com/reusedev/comfy-hub/tools"
)

var (
	httpPort   string
	configPath string
)

func init() {
	flag.StringVar(&httpPort, "http-port", ":80", "listen http port")
	flag.StringVar(&configPath, "config", "config.yml", "config file path")
}

func main() {
	flag.Parse()
	config.Init(tools.PanicOnError(tools.ReadFile(configPath)))
	logs.InitLogger()
	ctx, cancel := context.WithCancel(context.Background())
	wg := &sync.WaitGroup{}
	queue.InitImageTaskQueue(ctx, wg)
	mysql.CreateDataBase(config.GConfig.MySQL)
	mysql.InitMySQL(config.GConfig.MySQL)
	mysql.DB.AutoMigrate(&model.InputImage{}, &model.OutputImage{}, &model.Task{}, &model.TaskImage{}, &model.ServerInvokeHistory{})
	if config.GConfig.StorageEnabled &&
		consts.StorageSupplier(config.GConfig.StorageSupplier) == consts.StorageAliOSS {
		ali.InitOSS(config.GConfig.AliOss)
	}
	fleet.Init(ctx, config.GConfig.Servers)
	handler.EnqueueUnfinishedTask()
	osSignal := make(chan os.Signal, 1)
	signal.Notify(osSignal, syscall.SIGINT, syscall.SIGTERM)
	go func(ch chan os.Signal) {
		<-ch
		cancel()
		wg.Wait()
		os.Exit(0)
	}(osSignal)
	http.Serve(httpPort)
}
