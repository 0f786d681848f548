package database

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bluehealth/cooccur/internal/model"
)

// setupTestDB creates a temporary database for testing.
func setupTestDB(t *testing.T) *HistoryDB {
	t.Helper()

	db, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db
}

func testDimension(n int) model.Dimension {
	raw := make([][]string, n)
	for i := range raw {
		raw[i] = []string{string(rune('a' + i))}
	}
	return model.Dimension{Groups: model.NewTermGroups(raw...)}
}

func collectionRun(name string, started time.Time, placeholder bool) *model.CategoryRun {
	a, b := testDimension(3), testDimension(2)
	run := model.NewCategoryRun(model.Category{Name: name, Label: "terms_" + name}, &a)
	run.StartedAt = started
	if placeholder {
		run.Counts = model.NewPlaceholder(a, b, errors.New("timeout"))
	} else {
		run.Counts = model.NewCountsMatrix(a, b)
		run.Counts.Source = "pubmed"
	}
	run.ArtifactPath = "/tmp/counts/counts_terms_" + name + ".json"
	return run
}

func analysisRun(name string, started time.Time) *model.CategoryRun {
	run := collectionRun(name, started, false)
	run.Dropped = 1
	run.Scores = &model.ScoreMatrix{
		Method:    "normalize",
		RowLabels: []string{"a", "b"},
		ColLabels: []string{"x"},
		Scores:    [][]float64{{0.5}, {0.25}},
	}
	run.Rankings = &model.Rankings{K: 3}
	run.PerformedSteps = []string{"load_artifact", "score"}
	return run
}

func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database in new directory", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "newdir", "subdir")
		db, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		if _, err := os.Stat(filepath.Join(dbDir, FileName)); os.IsNotExist(err) {
			t.Error("database file was not created")
		}
		if db.Path() != filepath.Join(dbDir, FileName) {
			t.Errorf("unexpected path %s", db.Path())
		}
	})

	t.Run("CreateIfNotExists=false returns error when database does not exist", func(t *testing.T) {
		t.Parallel()

		_, err := Open(filepath.Join(t.TempDir(), "missing"), Options{CreateIfNotExists: false})
		if err == nil {
			t.Fatal("expected error for missing database")
		}
	})

	t.Run("reopens an existing database", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		db, err := Open(dir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		if _, err := db.RecordCollection(context.Background(), collectionRun("a", time.Now(), false)); err != nil {
			t.Fatalf("RecordCollection failed: %v", err)
		}
		_ = db.Close()

		db, err = Open(dir, Options{CreateIfNotExists: false, EnableWAL: true})
		if err != nil {
			t.Fatalf("failed to reopen database: %v", err)
		}
		defer db.Close()

		runs, err := db.ListRuns(context.Background(), "", 0)
		if err != nil {
			t.Fatalf("ListRuns failed: %v", err)
		}
		if len(runs) != 1 {
			t.Errorf("expected 1 run after reopen, got %d", len(runs))
		}
	})
}

func TestRecordCollection(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()
	started := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

	id, err := db.RecordCollection(ctx, collectionRun("activities", started, true))
	if err != nil {
		t.Fatalf("RecordCollection failed: %v", err)
	}
	if id == "" {
		t.Fatal("expected a run id")
	}

	runs, err := db.ListRuns(ctx, "activities", 0)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}

	got := runs[0]
	if got.ID != id || got.Kind != KindCollection {
		t.Errorf("unexpected id/kind %s %s", got.ID, got.Kind)
	}
	if got.Mode != "offline" || got.Status != "offline" {
		t.Errorf("expected offline mode, got %q / %q", got.Mode, got.Status)
	}
	if got.Rows != 3 || got.Cols != 2 {
		t.Errorf("expected shape (3,2), got (%d,%d)", got.Rows, got.Cols)
	}
	if got.Metadata[model.MetaKeyError] != "timeout" {
		t.Errorf("expected error metadata, got %v", got.Metadata)
	}
	if !got.Timestamp.Equal(started) {
		t.Errorf("expected timestamp %v, got %v", started, got.Timestamp)
	}
}

func TestRecordCollectionWithoutCounts(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	run := model.NewCategoryRun(model.Category{Label: "x"}, nil)
	if _, err := db.RecordCollection(context.Background(), run); !errors.Is(err, ErrNilCounts) {
		t.Errorf("expected ErrNilCounts, got %v", err)
	}
}

func TestRecordAnalysis(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	run := analysisRun("activities", time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC))
	id, err := db.RecordAnalysis(ctx, run)
	if err != nil {
		t.Fatalf("RecordAnalysis failed: %v", err)
	}

	runs, err := db.ListRuns(ctx, "", 0)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	got := runs[0]
	if got.Kind != KindAnalysis || got.Status != "ok" {
		t.Errorf("unexpected kind/status %s %s", got.Kind, got.Status)
	}
	if got.Rows != 2 || got.Cols != 1 || got.Dropped != 1 {
		t.Errorf("unexpected shape/dropped (%d,%d) %d", got.Rows, got.Cols, got.Dropped)
	}
	if got.Method != "normalize" || got.TopK != 3 {
		t.Errorf("unexpected method/k %s %d", got.Method, got.TopK)
	}

	stored, err := db.GetAnalysis(ctx, id)
	if err != nil {
		t.Fatalf("GetAnalysis failed: %v", err)
	}
	if stored == nil {
		t.Fatal("expected stored run")
	}
	if stored.Category.Name != "activities" || stored.Scores == nil || stored.Scores.Scores[0][0] != 0.5 {
		t.Errorf("unexpected stored run %+v", stored)
	}

	missing, err := db.GetAnalysis(ctx, "no-such-id")
	if err != nil || missing != nil {
		t.Errorf("expected nil, nil for unknown id, got %v, %v", missing, err)
	}
}

func TestRecordFailedAnalysis(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()

	run := model.NewCategoryRun(model.Category{Name: "exposure", Label: "exposure"}, nil)
	run.Error = errors.New("counts artifact not found")
	run.ErrorMessage = run.Error.Error()

	if _, err := db.RecordAnalysis(ctx, run); err != nil {
		t.Fatalf("RecordAnalysis failed: %v", err)
	}

	runs, err := db.ListRuns(ctx, "exposure", 0)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 1 || runs[0].Status != "failed" || runs[0].Error != "counts artifact not found" {
		t.Errorf("unexpected runs %+v", runs)
	}
}

func TestListRunsOrderAndFilter(t *testing.T) {
	t.Parallel()

	db := setupTestDB(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	if _, err := db.RecordCollection(ctx, collectionRun("a", base, false)); err != nil {
		t.Fatal(err)
	}
	if _, err := db.RecordAnalysis(ctx, analysisRun("a", base.Add(time.Hour))); err != nil {
		t.Fatal(err)
	}
	if _, err := db.RecordCollection(ctx, collectionRun("b", base.Add(2*time.Hour), false)); err != nil {
		t.Fatal(err)
	}

	all, err := db.ListRuns(ctx, "", 0)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(all))
	}
	if all[0].Category != "b" || all[1].Kind != KindAnalysis || all[2].Kind != KindCollection {
		t.Errorf("unexpected order: %+v", all)
	}

	onlyA, err := db.ListRuns(ctx, "a", 0)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(onlyA) != 2 {
		t.Errorf("expected 2 runs for a, got %d", len(onlyA))
	}

	limited, err := db.ListRuns(ctx, "", 1)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("expected 1 run with limit, got %d", len(limited))
	}

	categories, err := db.ListCategories(ctx)
	if err != nil {
		t.Fatalf("ListCategories failed: %v", err)
	}
	if len(categories) != 2 || categories[0] != "a" || categories[1] != "b" {
		t.Errorf("unexpected categories %v", categories)
	}
}

func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  time.Time
	}{
		{"2024-01-15 10:30:00", time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)},
		{"2024-01-15T10:30:00Z", time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)},
		{"2024-01-15 10:30:00.250", time.Date(2024, 1, 15, 10, 30, 0, 250_000_000, time.UTC)},
		{"garbage", time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			if got := parseTimestamp(tt.input); !got.Equal(tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
