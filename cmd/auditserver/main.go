// Command auditserver runs the content-compliance audit pipeline behind
// the reference HTTP adapter, grounded on the teacher's cmd/complik entrypoint:
// flag-parsed config path, process-wide logger init, then a single Run call.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/adaudit/compliance/internal/config"
	"github.com/adaudit/compliance/internal/logging"
	"github.com/adaudit/compliance/internal/ocrengine"
	"github.com/adaudit/compliance/pkg/extract/document"
	"github.com/adaudit/compliance/pkg/extract/web"
	"github.com/adaudit/compliance/pkg/fetchx"
	"github.com/adaudit/compliance/pkg/pipeline"
	"github.com/adaudit/compliance/pkg/reasoner"
	"github.com/adaudit/compliance/pkg/router"
	"github.com/adaudit/compliance/pkg/rules"
	"github.com/adaudit/compliance/pkg/store"
	transporthttp "github.com/adaudit/compliance/transport/http"
)

func main() {
	debug.SetTraceback("all")
	os.Setenv("GOTRACEBACK", "all")

	logging.Init()
	log := logging.Get()

	configPath := flag.String("config", "", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("failed to load configuration", logging.Fields{"error": err.Error()})
	}

	log.Info("starting auditserver", logging.Fields{"config": *configPath, "addr": cfg.Server.Addr})

	if err := run(cfg, log); err != nil {
		log.Fatal("auditserver exited with error", logging.Fields{"error": err.Error()})
	}
}

func run(cfg config.Config, log logging.Logger) error {
	fetcher := fetchx.New(log).WithMaxBytes(cfg.Limits.MaxMediaSize)

	var browserPool *web.BrowserPool
	if cfg.Features.EnableHeadlessBrowser {
		browserPool = web.DefaultBrowserPool()
	}

	ocrEngine := ocrengine.New()
	defer ocrEngine.Close()

	rulesRepo, err := rules.NewRepository(cfg.RulePack.RootDir, log)
	if err != nil {
		return err
	}
	defer rulesRepo.Close()

	auditStore, err := store.Open(store.Config{
		Host:         cfg.Database.Host,
		Port:         cfg.Database.Port,
		Username:     cfg.Database.Username,
		Password:     cfg.Database.Password,
		DatabaseName: cfg.Database.DatabaseName,
		Charset:      cfg.Database.Charset,
	}, log)
	if err != nil {
		return err
	}

	reasonerRouter := router.New(cfg.Router.ShortThreshold, cfg.Router.LongThreshold,
		cfg.Reasoner.PrimaryModel, cfg.Reasoner.HeavyModel, cfg.Reasoner.FallbackModel)
	reasonerClient := reasoner.NewOpenAIClient(cfg.Reasoner.APIKey, cfg.Reasoner.APIBase)
	reasonerAdapter := reasoner.New(reasonerClient, reasonerRouter, log)

	catalogs := pipeline.CatalogsFrom(pipeline.CatalogDeps{
		Fetcher:             fetcher,
		BrowserPool:         browserPool,
		EnableHeadless:      cfg.Features.EnableHeadlessBrowser,
		CaptureScreenshot:   cfg.Features.EnableScreenshotGrounding,
		Transcriber:         reasonerAdapter,
		EnableAudioDownload: cfg.Features.EnableAudioDownload,
		OCR:                 ocrEngine,
		PageRasterizer:      document.PopplerRasterizer(""),
		MinPDFChars:         cfg.Limits.MinPDFChars,
		MaxPDFPages:         cfg.Limits.MaxPDFPages,
		OCRLanguages:        cfg.Limits.OCRLanguages,
	})

	svc := pipeline.New(pipeline.Services{
		Rules:    rulesRepo,
		Store:    auditStore,
		Reasoner: reasonerAdapter,
		Catalogs: catalogs,
		Config:   cfg,
		Log:      log,
	})

	httpRouter := transporthttp.NewRouter(svc, auditStore, log, transporthttp.RateLimitConfig{}, cfg.Jurisdiction)

	server := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: httpRouter,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", logging.Fields{"addr": cfg.Server.Addr})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		log.Info("shutdown signal received", logging.Fields{"signal": sig.String()})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}
