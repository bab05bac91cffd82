package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/bytedance/sonic"

	"github.com/statline/statline/internal/app"
	"github.com/statline/statline/internal/config"
	"github.com/statline/statline/internal/observability"
	"github.com/statline/statline/internal/platform/logging"
	"github.com/statline/statline/internal/usecase"
)

func main() {
	sport := flag.String("sport", "nfl", "sport to ingest")
	dataKind := flag.String("data-kind", "", "data kind to ingest (game_log, standings)")
	season := flag.Int("season", 0, "season year")
	teams := flag.String("teams", "", "comma separated team abbreviations (game_log only)")
	tableID := flag.String("table-id", "", "restrict extraction to a single table id")
	workers := flag.Int("workers", 0, "worker pool size override")
	localPages := flag.String("local-pages", "", "comma separated target=path pairs to replay saved pages")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger, logShutdown, err := observability.InitBetterStackLogger(cfg, logging.NewJSON(cfg.LogLevel))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logging.SetDefault(logger)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := logShutdown(shutdownCtx); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.UptraceEnabled {
		shutdown, initErr := observability.InitUptrace(cfg, logger)
		if initErr != nil {
			logger.Error("init uptrace", "error", initErr)
			os.Exit(1)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				logger.Error("shutdown uptrace", "error", err)
			}
		}()
	}

	if cfg.PyroscopeEnabled {
		stopProfiler, initErr := observability.InitPyroscope(cfg, logger)
		if initErr != nil {
			logger.Error("init pyroscope", "error", initErr)
			os.Exit(1)
		}
		defer func() {
			if err := stopProfiler(); err != nil {
				logger.Error("stop pyroscope", "error", err)
			}
		}()
	}

	if cfg.PprofEnabled {
		pprofSrv, initErr := observability.StartPprofServer(cfg, logger)
		if initErr != nil {
			logger.Error("start pprof server", "error", initErr)
			os.Exit(1)
		}
		defer func() {
			if err := observability.StopPprofServer(pprofSrv, logger, 5*time.Second); err != nil {
				logger.Error("stop pprof server", "error", err)
			}
		}()
	}

	ingestion, err := app.NewIngestion(cfg, logger)
	if err != nil {
		logger.Error("build ingestion", "error", err)
		os.Exit(1)
	}
	defer ingestion.Close()

	pages, err := parseLocalPages(*localPages)
	if err != nil {
		logger.Error("parse local pages", "error", err)
		os.Exit(1)
	}

	req := usecase.IngestRequest{
		Sport:      strings.ToLower(strings.TrimSpace(*sport)),
		DataKind:   strings.TrimSpace(*dataKind),
		Season:     *season,
		Teams:      splitTeams(*teams),
		TableID:    strings.TrimSpace(*tableID),
		MaxWorkers: *workers,
		LocalPages: pages,
	}

	result, err := ingestion.Service.Ingest(ctx, req)
	if err != nil {
		logger.Error("ingest failed",
			"sport", req.Sport,
			"dataKind", req.DataKind,
			"season", req.Season,
			"error", err,
		)
		os.Exit(1)
	}

	out, err := sonic.MarshalIndent(result, "", "  ")
	if err != nil {
		logger.Error("encode result", "error", err)
		os.Exit(1)
	}
	fmt.Println(string(out))

	if result.FailedCount > 0 {
		os.Exit(1)
	}
}

func splitTeams(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	teams := make([]string, 0, len(parts))
	for _, part := range parts {
		team := strings.ToLower(strings.TrimSpace(part))
		if team != "" {
			teams = append(teams, team)
		}
	}

	return teams
}

func parseLocalPages(raw string) (map[string]string, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	pages := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		name, path, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok || name == "" || path == "" {
			return nil, fmt.Errorf("invalid local page mapping %q, want target=path", pair)
		}
		pages[name] = path
	}

	return pages, nil
}
