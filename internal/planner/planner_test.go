package planner

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/averden/mediapull/internal/assets"
	"github.com/averden/mediapull/internal/checksum"
	"github.com/averden/mediapull/internal/utils"
)

func testAsset(filesize int64) *assets.Asset {
	completed := time.Date(2026, 2, 2, 9, 0, 0, 0, time.UTC)
	return &assets.Asset{
		ID:                "8fa26e04-1f2b-4d55-9c1a-aaaa0000bbbb",
		Name:              "clip.mp4",
		Kind:              "file",
		UploadCompletedAt: &completed,
		Filesize:          filesize,
		OriginalURL:       "https://bucket.s3.amazonaws.com/clip.mp4",
	}
}

func TestPlanRejectsIneligibleAssets(t *testing.T) {
	p := New(zerolog.Nop())
	folder := t.TempDir()

	bad := testAsset(100)
	bad.Kind = "version_stack"
	if _, err := p.Plan(bad, Options{Folder: folder}); !errors.Is(err, assets.ErrUnsupportedAssetType) {
		t.Fatalf("got %v, want ErrUnsupportedAssetType", err)
	}

	incomplete := testAsset(100)
	incomplete.UploadCompletedAt = nil
	if _, err := p.Plan(incomplete, Options{Folder: folder}); !errors.Is(err, assets.ErrAssetNotFullyUploaded) {
		t.Fatalf("got %v, want ErrAssetNotFullyUploaded", err)
	}
}

func TestPlanPaths(t *testing.T) {
	p := New(zerolog.Nop())
	folder := t.TempDir()
	asset := testAsset(100)
	asset.Name = "my:clip?.mp4"

	plan, err := p.Plan(asset, Options{Folder: folder, Prefix: "proj-", UseTempFilename: true})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	wantDest := filepath.Join(folder, "proj-my_clip_.mp4")
	if plan.Task.Destination != wantDest {
		t.Fatalf("destination = %q, want %q", plan.Task.Destination, wantDest)
	}
	if plan.Task.TempPath != wantDest+".tmp-8fa26e04" {
		t.Fatalf("temp path = %q", plan.Task.TempPath)
	}
	if plan.Task.WritePath() != plan.Task.TempPath {
		t.Fatal("WritePath should prefer the temp path")
	}
}

func TestPlanStrategySelection(t *testing.T) {
	p := New(zerolog.Nop())
	folder := t.TempDir()

	tests := []struct {
		name        string
		filesize    int64
		watermarked bool
		chunked     bool
		want        Strategy
	}{
		{"small file ignores chunked preference", 10_000_000, false, true, StrategyWhole},
		{"large file without preference", 100_000_000, false, false, StrategyWhole},
		{"large file with preference", 100_000_000, false, true, StrategyChunked},
		{"watermarked always whole", 100_000_000, true, true, StrategyWhole},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			asset := testAsset(tt.filesize)
			if tt.watermarked {
				asset.OriginalURL = ""
				asset.Watermarked = true
				asset.Variants = map[string]string{"hd_1080": "https://cdn/wm.mp4"}
			}
			plan, err := p.Plan(asset, Options{Folder: folder, Chunked: tt.chunked})
			if err != nil {
				t.Fatalf("Plan: %v", err)
			}
			if plan.Strategy != tt.want {
				t.Fatalf("strategy = %s, want %s", plan.Strategy, tt.want)
			}
		})
	}
}

func TestPlanSkipVerified(t *testing.T) {
	p := New(zerolog.Nop())
	folder := t.TempDir()
	asset := testAsset(5)

	dest := filepath.Join(folder, "clip.mp4")
	if err := os.WriteFile(dest, []byte("hello"), 0644); err != nil {
		t.Fatal(err)
	}
	sum, err := checksum.HashFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	asset.Checksums = &assets.Checksums{XXHash: sum}

	plan, err := p.Plan(asset, Options{Folder: folder, VerifyChecksum: true})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if plan.Strategy != StrategySkip || plan.SkipReason != SkipVerified {
		t.Fatalf("unexpected plan: %+v", plan)
	}
	if plan.Verified == nil || !*plan.Verified {
		t.Fatal("skip-verified plan should carry verified=true")
	}
}

func TestPlanChecksumMismatchReplaceRemovesFile(t *testing.T) {
	p := New(zerolog.Nop())
	folder := t.TempDir()
	asset := testAsset(5)
	asset.Checksums = &assets.Checksums{XXHash: "0123456789abcdef"}

	dest := filepath.Join(folder, "clip.mp4")
	if err := os.WriteFile(dest, []byte("stale"), 0644); err != nil {
		t.Fatal(err)
	}

	plan, err := p.Plan(asset, Options{Folder: folder, VerifyChecksum: true, Replace: true})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if plan.Strategy == StrategySkip {
		t.Fatal("mismatch with replace=true should proceed to fetch")
	}
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Fatal("stale file should have been removed before re-fetch")
	}
}

func TestPlanChecksumMismatchNoReplaceSkips(t *testing.T) {
	p := New(zerolog.Nop())
	folder := t.TempDir()
	asset := testAsset(5)
	asset.Checksums = &assets.Checksums{XXHash: "0123456789abcdef"}

	dest := filepath.Join(folder, "clip.mp4")
	if err := os.WriteFile(dest, []byte("stale"), 0644); err != nil {
		t.Fatal(err)
	}

	plan, err := p.Plan(asset, Options{Folder: folder, VerifyChecksum: true})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if plan.Strategy != StrategySkip || plan.SkipReason != SkipNotReplaced {
		t.Fatalf("unexpected plan: %+v", plan)
	}
	if _, err := os.Stat(dest); err != nil {
		t.Fatal("file must be left untouched when replace=false")
	}
}

func TestPlanSizeMatchSkips(t *testing.T) {
	p := New(zerolog.Nop())
	folder := t.TempDir()
	asset := testAsset(5)

	dest := filepath.Join(folder, "clip.mp4")
	if err := os.WriteFile(dest, []byte("12345"), 0644); err != nil {
		t.Fatal(err)
	}

	plan, err := p.Plan(asset, Options{Folder: folder})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if plan.Strategy != StrategySkip || plan.SkipReason != SkipSizeMatched {
		t.Fatalf("unexpected plan: %+v", plan)
	}
}

func TestChunkTiling(t *testing.T) {
	sizes := []int64{
		1,
		utils.ChunkSize - 1,
		utils.ChunkSize,
		utils.ChunkSize + 1,
		100_000_000,
		3*utils.ChunkSize + 12345,
	}
	for _, filesize := range sizes {
		count := ChunkCount(filesize)
		wantCount := int((filesize + utils.ChunkSize - 1) / utils.ChunkSize)
		if count != wantCount {
			t.Fatalf("ChunkCount(%d) = %d, want %d", filesize, count, wantCount)
		}
		chunks := BuildChunks(filesize, count)
		if len(chunks) != count {
			t.Fatalf("len(chunks) = %d, want %d", len(chunks), count)
		}
		var total int64
		var cursor int64
		for i, c := range chunks {
			if c.Index != i {
				t.Fatalf("chunk %d has index %d", i, c.Index)
			}
			if c.Start != cursor {
				t.Fatalf("filesize %d: chunk %d starts at %d, want %d (gap or overlap)", filesize, i, c.Start, cursor)
			}
			if c.End <= c.Start {
				t.Fatalf("filesize %d: chunk %d is empty", filesize, i)
			}
			cursor = c.End
			total += c.Size()
		}
		if total != filesize {
			t.Fatalf("filesize %d: chunk sizes sum to %d", filesize, total)
		}
		if cursor != filesize {
			t.Fatalf("filesize %d: tiling ends at %d", filesize, cursor)
		}
	}
}

func TestChunkCountHundredMegabytes(t *testing.T) {
	// 100,000,000 bytes at 25 MiB per chunk is four chunks.
	if got := ChunkCount(100_000_000); got != 4 {
		t.Fatalf("ChunkCount = %d, want 4", got)
	}
}
