package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/rs/zerolog"

	"github.com/screenerhq/scan-server/internal/config"
	"github.com/screenerhq/scan-server/reports"
	"github.com/screenerhq/scan-server/scan"
	"github.com/screenerhq/scan-server/server"
	"github.com/screenerhq/scan-server/sso"
)

func main() {
	for {
		if err := run(); err != nil {
			log.Fatalf("Error running server: %s\n", err)
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Printf("Server stopped\n")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	configureLogging(c.GetEnv())
	displayAppname(c.GetAppName())

	// Cancelling this context kills any scanner processes still running.
	baseCtx, cancelScans := context.WithCancel(context.Background())
	defer cancelScans()

	runner := scan.NewRunner(c.GetScannerBin(), c.GetScannerWorkDir(), c.GetReportDir())
	registry := scan.NewRegistry(baseCtx, runner.Run, c.GetMaxConcurrentScans())
	ssoManager := sso.NewManager(sso.DefaultFlowFactory)
	reportStore := reports.NewStore(c.GetReportDir())

	httpServer := &http.Server{Addr: c.GetPort(), Handler: server.New(c, ssoManager, registry, reportStore)}
	go listenAndServe(httpServer)
	waitForStopSignal()
	cancelScans()
	returnError = shutdown(httpServer)
	return returnError
}

func configureLogging(env string) {
	if env == "DEV" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		return
	}
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

func listenAndServe(server *http.Server) error {
	log.Printf("Server listening on %s\n", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
