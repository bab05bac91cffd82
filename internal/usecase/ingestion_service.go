// Package usecase wires fetch, extraction, mapping and loading into
// the ingestion pipeline.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/panjf2000/ants/v2"

	"github.com/statline/statline/internal/catalog"
	"github.com/statline/statline/internal/domain/fieldspec"
	"github.com/statline/statline/internal/domain/stattable"
	"github.com/statline/statline/internal/platform/logging"
	"github.com/statline/statline/internal/scrape"
)

const (
	taskStatusSuccess = "success"
	taskStatusFailed  = "failed"
	taskStatusSkipped = "skipped"

	defaultIngestWorkers = 4
	maxIngestWorkers     = 16
)

var nflConferences = []string{"AFC", "NFC"}

// PageFetcher retrieves one page, from the network or from disk.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (scrape.Page, error)
	FetchFile(path string) (scrape.Page, error)
}

// GridExtractor pulls table grids out of a retrieved page.
type GridExtractor interface {
	Extract(page scrape.Page) []scrape.TableGrid
	ExtractByID(page scrape.Page, tableID string) (scrape.TableGrid, bool)
}

type IngestRequest struct {
	Sport    string `validate:"required,lowercase"`
	DataKind string `validate:"required"`
	Season   int    `validate:"required,gte=1920"`
	// Teams lists team abbreviations for team-scoped data kinds.
	// Season-scoped kinds such as standings ignore it.
	Teams []string `validate:"omitempty,dive,required"`
	// TableID pins extraction to one source table id. Empty means
	// every extracted table is considered.
	TableID    string
	MaxWorkers int `validate:"omitempty,gte=1,lte=16"`
	// LocalPages maps a target name to a saved page on disk, replayed
	// instead of fetching over the network.
	LocalPages map[string]string
}

type IngestTaskResult struct {
	Target      string `json:"target"`
	URL         string `json:"url"`
	Status      string `json:"status"`
	Records     int    `json:"records"`
	MapFailures int    `json:"map_failures"`
	Inserted    int    `json:"inserted"`
	Updated     int    `json:"updated"`
	Failed      int    `json:"failed"`
	DurationMs  int64  `json:"duration_ms"`
	Message     string `json:"message,omitempty"`
}

type IngestResult struct {
	Sport        string               `json:"sport"`
	DataKind     string               `json:"data_kind"`
	Season       int                  `json:"season"`
	TaskCount    int                  `json:"task_count"`
	SuccessCount int                  `json:"success_count"`
	FailedCount  int                  `json:"failed_count"`
	SkippedCount int                  `json:"skipped_count"`
	WorkerCount  int                  `json:"worker_count"`
	Report       stattable.LoadReport `json:"report"`
	Tasks        []IngestTaskResult   `json:"tasks"`
}

type ingestTarget struct {
	name     string
	url      string
	tableID  string
	defaults map[string]any
	identity IdentityFunc
}

// IngestionService drives the pipeline for one request: ensure the
// destination schema, fan the targets across a worker pool, and merge
// the per-target load reports.
type IngestionService struct {
	fetcher   PageFetcher
	extractor GridExtractor
	mapper    *Mapper
	manager   stattable.Manager
	loader    stattable.Loader
	validator *validator.Validate
	logger    *logging.Logger
}

func NewIngestionService(
	fetcher PageFetcher,
	extractor GridExtractor,
	manager stattable.Manager,
	loader stattable.Loader,
	logger *logging.Logger,
) *IngestionService {
	return &IngestionService{
		fetcher:   fetcher,
		extractor: extractor,
		mapper:    NewMapper(),
		manager:   manager,
		loader:    loader,
		validator: validator.New(),
		logger:    logger,
	}
}

func (s *IngestionService) Ingest(ctx context.Context, req IngestRequest) (IngestResult, error) {
	if err := s.validator.StructCtx(ctx, req); err != nil {
		return IngestResult{}, fmt.Errorf("validate ingest request: %w", err)
	}

	cat, err := catalog.Lookup(req.Sport, req.DataKind)
	if err != nil {
		return IngestResult{}, err
	}
	descriptor := stattable.Derive(cat)

	targets, err := targetsFor(req)
	if err != nil {
		return IngestResult{}, err
	}

	// Schema setup is fatal: no data load proceeds against an
	// unready destination.
	if err := s.manager.EnsureTable(ctx, descriptor); err != nil {
		return IngestResult{}, err
	}
	if err := s.manager.EnsurePartition(ctx, descriptor, req.Season); err != nil {
		return IngestResult{}, err
	}

	workerCount := normalizeWorkerCount(req.MaxWorkers, len(targets))
	result := IngestResult{
		Sport:       req.Sport,
		DataKind:    req.DataKind,
		Season:      req.Season,
		TaskCount:   len(targets),
		WorkerCount: workerCount,
		Tasks:       make([]IngestTaskResult, 0, len(targets)),
	}
	if len(targets) == 0 {
		return result, nil
	}

	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return IngestResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	rows := make(chan IngestTaskResult, len(targets))
	reports := make(chan stattable.LoadReport, len(targets))

	var successCount, failedCount, skippedCount atomic.Int32

	var workers sync.WaitGroup
	for _, target := range targets {
		target := target
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			start := time.Now()
			row, report := s.runTarget(ctx, req, cat, descriptor, target)
			row.DurationMs = time.Since(start).Milliseconds()

			switch row.Status {
			case taskStatusSuccess:
				successCount.Add(1)
			case taskStatusSkipped:
				skippedCount.Add(1)
			default:
				failedCount.Add(1)
			}

			rows <- row
			reports <- report
		}); err != nil {
			workers.Done()
			return IngestResult{}, fmt.Errorf("submit task to worker pool: %w", err)
		}
	}

	workers.Wait()
	close(rows)
	close(reports)

	for row := range rows {
		result.Tasks = append(result.Tasks, row)
	}
	for report := range reports {
		result.Report.Merge(report)
	}

	sort.SliceStable(result.Tasks, func(i, j int) bool {
		return result.Tasks[i].Target < result.Tasks[j].Target
	})

	result.SuccessCount = int(successCount.Load())
	result.FailedCount = int(failedCount.Load())
	result.SkippedCount = int(skippedCount.Load())
	return result, nil
}

func (s *IngestionService) runTarget(
	ctx context.Context,
	req IngestRequest,
	cat *fieldspec.Catalog,
	descriptor stattable.Descriptor,
	target ingestTarget,
) (IngestTaskResult, stattable.LoadReport) {
	row := IngestTaskResult{Target: target.name, URL: target.url}

	page, err := s.fetchTarget(ctx, req, target)
	if err != nil {
		row.Status = taskStatusFailed
		row.Message = err.Error()
		if errors.Is(err, scrape.ErrBlocked) {
			s.logger.ErrorContext(ctx, "target blocked by host", "target", target.name, "url", target.url)
		}
		return row, stattable.LoadReport{}
	}

	tableID := target.tableID
	if tableID == "" {
		tableID = req.TableID
	}
	grids := s.gridsFor(page, tableID)
	if len(grids) == 0 {
		row.Status = taskStatusSkipped
		row.Message = "no data found on page"
		return row, stattable.LoadReport{}
	}

	mapped := MapResult{}
	for _, grid := range grids {
		partial := s.mapper.MapGrid(grid, cat, req.Season, target.defaults, target.identity)
		mapped.Records = append(mapped.Records, partial.Records...)
		mapped.Failures = append(mapped.Failures, partial.Failures...)
	}
	row.Records = len(mapped.Records)
	row.MapFailures = len(mapped.Failures)
	for _, failure := range mapped.Failures {
		s.logger.WarnContext(ctx, "row mapping failed",
			"target", target.name, "row", failure.Row, "field", failure.Field, "reason", failure.Reason)
	}

	if len(mapped.Records) == 0 {
		row.Status = taskStatusSkipped
		row.Message = "no rows mapped"
		return row, stattable.LoadReport{}
	}

	report, err := s.loader.Load(ctx, descriptor, mapped.Records)
	row.Inserted = report.Inserted
	row.Updated = report.Updated
	row.Failed = report.Failed
	if err != nil {
		row.Status = taskStatusFailed
		row.Message = err.Error()
		return row, report
	}

	row.Status = taskStatusSuccess
	return row, report
}

func (s *IngestionService) fetchTarget(ctx context.Context, req IngestRequest, target ingestTarget) (scrape.Page, error) {
	if path, ok := req.LocalPages[target.name]; ok {
		return s.fetcher.FetchFile(path)
	}
	return s.fetcher.Fetch(ctx, target.url)
}

func (s *IngestionService) gridsFor(page scrape.Page, tableID string) []scrape.TableGrid {
	if tableID != "" {
		grid, ok := s.extractor.ExtractByID(page, tableID)
		if !ok {
			return nil
		}
		return []scrape.TableGrid{grid}
	}
	return s.extractor.Extract(page)
}

func targetsFor(req IngestRequest) ([]ingestTarget, error) {
	switch {
	case req.Sport == "nfl" && req.DataKind == "game_log":
		if len(req.Teams) == 0 {
			return nil, fmt.Errorf("game log ingestion requires at least one team")
		}
		targets := make([]ingestTarget, 0, len(req.Teams))
		for _, team := range req.Teams {
			targets = append(targets, ingestTarget{
				name:     team,
				url:      catalog.NFLScheduleURL(team, req.Season),
				defaults: map[string]any{"team": team},
				identity: GameLogIdentity(team),
			})
		}
		return targets, nil
	case req.Sport == "nfl" && req.DataKind == "standings":
		// Season pages carry one table per conference and never a
		// conference column; the table id is the only source of that
		// value, so each conference becomes its own target with the
		// conference injected as a default.
		targets := make([]ingestTarget, 0, len(nflConferences))
		for _, conference := range nflConferences {
			targets = append(targets, ingestTarget{
				name:     "standings-" + strings.ToLower(conference),
				url:      catalog.NFLSeasonPageURL(req.Season),
				tableID:  conference,
				defaults: map[string]any{"conference": conference},
				identity: SeasonIdentity(req.Season),
			})
		}
		return targets, nil
	default:
		return nil, fmt.Errorf("no ingestion targets for %s.%s", req.Sport, req.DataKind)
	}
}

func normalizeWorkerCount(requested, taskCount int) int {
	count := requested
	if count <= 0 {
		count = defaultIngestWorkers
	}
	if count > maxIngestWorkers {
		count = maxIngestWorkers
	}
	if taskCount > 0 && count > taskCount {
		count = taskCount
	}
	if count < 1 {
		count = 1
	}
	return count
}
