package usecase

import (
	"context"
	"testing"

	crerr "github.com/cockroachdb/errors"
	"github.com/stretchr/testify/mock"

	"github.com/statline/statline/internal/catalog"
	"github.com/statline/statline/internal/domain/record"
	"github.com/statline/statline/internal/domain/stattable"
	stattablemock "github.com/statline/statline/internal/mocks/domain/stattable"
	"github.com/statline/statline/internal/platform/logging"
	"github.com/statline/statline/internal/scrape"
)

func TestIngestSchemaAndLoadOrderUsingMockery(t *testing.T) {
	t.Parallel()

	url := catalog.NFLScheduleURL("KAN", 2023)
	fetcher := &fakeFetcher{pages: map[string]scrape.Page{
		url: {URL: url, Body: gameLogPage(3)},
	}}
	manager := stattablemock.NewManager(t)
	loader := stattablemock.NewLoader(t)
	service := NewIngestionService(fetcher, scrape.NewExtractor(), manager, loader, logging.NewNop())

	manager.
		On("EnsureTable", mock.Anything, mock.MatchedBy(func(d stattable.Descriptor) bool {
			return d.Schema == "nfl" && d.Name == "game_log"
		})).
		Return(nil).
		Once()
	manager.
		On("EnsurePartition", mock.Anything, mock.Anything, 2023).
		Return(nil).
		Once()
	loader.
		On("Load", mock.Anything, mock.Anything, mock.MatchedBy(func(records []record.Record) bool {
			return len(records) == 3 && records[0].Season == 2023
		})).
		Return(stattable.LoadReport{Inserted: 3}, nil).
		Once()

	result, err := service.Ingest(context.Background(), IngestRequest{
		Sport:    "nfl",
		DataKind: "game_log",
		Season:   2023,
		Teams:    []string{"KAN"},
		TableID:  "games",
	})
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if result.Report.Inserted != 3 {
		t.Fatalf("unexpected report: %+v", result.Report)
	}
}

func TestIngestSchemaFailureSkipsLoadUsingMockery(t *testing.T) {
	t.Parallel()

	manager := stattablemock.NewManager(t)
	loader := stattablemock.NewLoader(t)
	service := NewIngestionService(&fakeFetcher{}, scrape.NewExtractor(), manager, loader, logging.NewNop())

	manager.
		On("EnsureTable", mock.Anything, mock.Anything).
		Return(crerr.Mark(crerr.New("relation is locked"), stattable.ErrSchema)).
		Once()

	_, err := service.Ingest(context.Background(), IngestRequest{
		Sport:    "nfl",
		DataKind: "game_log",
		Season:   2023,
		Teams:    []string{"KAN"},
	})
	if err == nil {
		t.Fatal("expected schema failure")
	}
	loader.AssertNotCalled(t, "Load")
}
