package scheduler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/averden/mediapull/internal/assets"
	"github.com/averden/mediapull/internal/planner"
	"github.com/averden/mediapull/internal/transfer"
)

func TestRunBatch(t *testing.T) {
	payload := []byte("batch download payload")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", strconv.Itoa(len(payload)))
		w.Write(payload)
	}))
	defer server.Close()

	folder := t.TempDir()
	engine := transfer.NewEngine(transfer.Config{Logger: zerolog.Nop()})
	completed := time.Date(2026, 2, 2, 9, 0, 0, 0, time.UTC)

	var jobs []Job
	for _, name := range []string{"a.bin", "b.bin", "c.bin"} {
		asset := &assets.Asset{
			ID:                "job-" + name,
			Name:              name,
			Kind:              "file",
			UploadCompletedAt: &completed,
			Filesize:          int64(len(payload)),
			OriginalURL:       server.URL,
		}
		jobs = append(jobs, NewJob(asset, planner.Options{Folder: folder}))
	}

	results := Run(context.Background(), engine, jobs, 2, zerolog.Nop())
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	for _, res := range results {
		if res.Failed() {
			t.Fatalf("job %s failed: %v", res.Asset, res.Err)
		}
	}
	for _, name := range []string{"a.bin", "b.bin", "c.bin"} {
		info, err := os.Stat(filepath.Join(folder, name))
		if err != nil {
			t.Fatalf("stat %s: %v", name, err)
		}
		if info.Size() != int64(len(payload)) {
			t.Fatalf("%s size = %d, want %d", name, info.Size(), len(payload))
		}
	}
}
