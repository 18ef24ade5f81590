package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/seyedibu8791/signal-relay/internal/app"
	cfg "github.com/seyedibu8791/signal-relay/internal/config"
	"github.com/seyedibu8791/signal-relay/internal/matrix"
	"github.com/seyedibu8791/signal-relay/internal/web"
)

var (
	waitGroup     *sync.WaitGroup       = &sync.WaitGroup{}
	config        *cfg.Config           = &cfg.Config{}
	matrixHandler *matrix.MatrixHandler = &matrix.MatrixHandler{}
)

func main() {
	log.Info("Starting signal-relay...")
	config.Load()
	ctx, cancel := context.WithCancel(context.Background())

	inbound := make(chan *matrix.InboundMessage, 100)
	matrixHandler.Config = config.Matrix
	matrixHandler.Setup(ctx, inbound)

	client := matrixHandler.Client()
	stats := app.NewStats(
		config.Matrix.SourceRoom.String(),
		config.Matrix.TargetRoom.String(),
		config.Relay.KeepAliveInterval(),
	)
	relay := app.NewRelay(client, client.TargetRoom(), inbound, stats)
	keepAlive := app.NewKeepAlive(config.Relay.KeepAliveInterval(), client, stats)
	webServer := web.NewServer(config.Web.Port, stats)

	waitGroup.Add(2)
	go relay.Run(ctx, waitGroup)
	go keepAlive.Run(ctx, waitGroup)
	go webServer.Run()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	log.Info("Startup complete")
	<-stop

	log.Info("Shutting down signal-relay...")
	shutdown(cancel, webServer)
}

func shutdown(cancel context.CancelFunc, webServer *web.Server) {
	cancel()
	matrixHandler.Stop()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	webServer.Stop(shutdownCtx)
	waitGroup.Wait()
	log.Info("Shutdown successful")
}
