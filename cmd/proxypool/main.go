// Command proxypool runs the proxy-pool lifecycle engine: the Scraper and
// Validator background tasks under the Supervisor's reload loop, and the
// read-only query API in front of the shared Pool.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/greywire/proxypool/internal/api"
	"github.com/greywire/proxypool/internal/config"
	"github.com/greywire/proxypool/internal/geoip"
	"github.com/greywire/proxypool/internal/history"
	"github.com/greywire/proxypool/internal/netutil"
	"github.com/greywire/proxypool/internal/persist"
	"github.com/greywire/proxypool/internal/scraper"
	"github.com/greywire/proxypool/internal/supervisor"
)

func main() {
	envCfg, err := config.LoadEnvConfig()
	if err != nil {
		fatalf("%v", err)
	}

	p := persist.Load(envCfg.DataDir)
	log.Printf("Loaded pool from %s (stable=%d unstable=%d)", envCfg.DataDir, p.StableCount(), p.UnstableCount())

	hist, err := history.Open(envCfg.DataDir, p)
	if err != nil {
		log.Printf("history store unavailable (non-fatal): %v", err)
		hist = nil
	} else {
		defer hist.Close()
	}

	downloader := netutil.NewDirectDownloader(15 * time.Second)
	downloader.UserAgent = "proxypool/1.0"

	sup := supervisor.New(p, envCfg, buildSources(downloader))
	if hist != nil {
		sup.RoundSummary = hist.RecordRound
	}

	geoSvc := newGeoIPService(envCfg, downloader)
	defer geoSvc.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go sup.Run(ctx)
	log.Println("Supervisor started")

	srv := api.NewServer(envCfg.ListenAddress, p, sup.Flag, sup.Passwords, geoSvc.Lookup)

	serverErrCh := make(chan error, 1)
	go func() {
		log.Printf("Query API listening on %s", envCfg.ListenAddress)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case sig := <-quit:
		log.Printf("Received signal %s, shutting down...", sig)
	case err := <-serverErrCh:
		log.Printf("Query API server error, shutting down: %v", err)
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("API server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}

// buildSources turns each configured Source definition into a concrete
// scraper.Source, skipping (and logging) any that fail to build rather
// than aborting the whole round.
func buildSources(downloader netutil.Downloader) supervisor.SourceBuilder {
	return func(cfg *config.RuntimeConfig) []scraper.Source {
		sources := make([]scraper.Source, 0, len(cfg.Sources))
		for _, sc := range cfg.Sources {
			src, err := scraper.BuildSource(sc, downloader)
			if err != nil {
				log.Printf("skipping source %q: %v", sc.Name, err)
				continue
			}
			sources = append(sources, src)
		}
		return sources
	}
}

// newGeoIPService builds the optional country-enrichment service. Failures
// (an unwritable cache dir, a failed first download) are logged, never
// fatal: the returned Service degrades to empty-string lookups until a
// background update succeeds.
func newGeoIPService(envCfg *config.EnvConfig, downloader netutil.Downloader) *geoip.Service {
	cacheDir := filepath.Join(envCfg.DataDir, "geoip")
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		log.Printf("geoip: create cache dir %s: %v (country lookups disabled)", cacheDir, err)
	}

	svc := geoip.NewService(geoip.ServiceConfig{
		CacheDir:   cacheDir,
		OpenDB:     geoip.MMDBOpen,
		Downloader: downloader,
	})
	if err := svc.Start(); err != nil {
		log.Printf("geoip: start failed (non-fatal, country lookups degraded): %v", err)
	}
	return svc
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "fatal: "+format+"\n", args...)
	os.Exit(1)
}
