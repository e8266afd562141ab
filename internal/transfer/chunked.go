package transfer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/averden/mediapull/internal/assets"
	"github.com/averden/mediapull/internal/planner"
	"github.com/averden/mediapull/internal/progress"
	"github.com/averden/mediapull/internal/utils"
)

var (
	// ErrFileStubCreation means the pre-sized destination file could not be
	// created, so no chunk was ever scheduled.
	ErrFileStubCreation = errors.New("unable to create file stub")
	// ErrChunkFetch wraps a failed range request or chunk write.
	ErrChunkFetch = errors.New("chunk fetch failure")
)

type chunkResult struct {
	index   int
	written int64
	err     error
}

// chunkedCoordinator downloads a file of known size by fetching disjoint
// byte ranges concurrently, each worker writing at its own offset into the
// stub file. Chunk completions are funneled through a single aggregator so
// the shared byte counters never race.
type chunkedCoordinator struct {
	fetcher *RangeFetcher
	log     zerolog.Logger
}

func (c *chunkedCoordinator) run(ctx context.Context, task *planner.Task, rep *progress.Reporter) (*Result, error) {
	filesize := task.Asset.Filesize
	if err := c.createStub(task.WritePath(), task.Replace); err != nil {
		return nil, err
	}
	chunks := planner.BuildChunks(filesize, task.ChunkCount)
	c.log.Info().Str("op", "transfer/chunked").Msgf("Begin chunked download -- %s -- %s",
		task.Asset.Name, utils.FormatBytes(uint64(filesize)))

	startTime := time.Now()
	var bytesStarted atomic.Int64
	tasksCh := make(chan *planner.Chunk, len(chunks))
	resultsCh := make(chan chunkResult, len(chunks))

	// Cancellation is checked before each submission; whatever was already
	// queued is still waited on below.
	submitted := 0
	for i := range chunks {
		if ctx.Err() != nil {
			break
		}
		tasksCh <- &chunks[i]
		submitted++
	}
	close(tasksCh)

	workers := min(task.Concurrency, submitted)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Stagger pool startup to avoid a connection burst.
			time.Sleep(time.Duration(100+rand.Intn(400)) * time.Millisecond)
			for chunk := range tasksCh {
				chunk.Status = planner.ChunkInFlight
				resultsCh <- c.downloadChunk(ctx, task, chunk, &bytesStarted)
			}
		}()
	}

	// Single aggregator: owns bytesCompleted and the progress gate, and
	// tolerates completions arriving in any order.
	ev := progress.Event{
		TransferType: progress.TransferChunked,
		StartTime:    startTime,
		Status:       progress.StatusIncomplete,
		ChunksTotal:  task.ChunkCount,
	}
	var bytesCompleted int64
	failures := 0
	for i := 0; i < submitted; i++ {
		res := <-resultsCh
		if res.err != nil {
			failures++
			chunks[res.index].Status = planner.ChunkFailed
			c.log.Error().Str("op", "transfer/chunked").Err(res.err).Msgf("Chunk %d failed", res.index)
			ev.Status = progress.StatusFailed
			rep.Emit(ev)
			ev.Status = progress.StatusIncomplete
			continue
		}
		chunks[res.index].Status = planner.ChunkCompleted
		bytesCompleted += res.written
		if bytesCompleted > filesize {
			bytesCompleted = filesize
		}
		ev.BytesDownloaded = bytesCompleted
		ev.ChunkSize = res.written
		ev.Percent = progress.Percent(bytesCompleted, filesize)
		rep.Emit(ev)
	}
	wg.Wait()
	endTime := time.Now()

	if submitted < len(chunks) {
		ev.Status = progress.StatusFailed
		ev.EndTime = endTime
		rep.Force(ev)
		return nil, fmt.Errorf("download cancelled: %w", ctx.Err())
	}

	if task.TempPath != "" {
		renameFromTemp(task, c.log)
	}

	ev.EndTime = endTime
	if failures > 0 {
		ev.Status = progress.StatusFailed
	} else {
		ev.Status = progress.StatusComplete
	}
	rep.Force(ev)

	elapsed := endTime.Sub(startTime)
	// Verification runs even after chunk failures: an incomplete file fails
	// its checksum, which is the ultimate backstop.
	verified, err := verifyTask(task, c.log)
	if err != nil {
		return nil, err
	}
	c.log.Info().Str("op", "transfer/chunked").Msgf("Downloaded %s at %s",
		utils.FormatBytes(uint64(bytesCompleted)), utils.FormatSpeed(bytesCompleted, elapsed.Seconds()))

	result := &Result{
		OutcomeCode: CodeSuccess,
		Outcome:     OutcomeSuccess,
		Description: "completed",
		Verified:    verified,
		Destination: task.Destination,
		SpeedBPS:    speedBPS(bytesCompleted, elapsed),
		Elapsed:     elapsed,
		CDN:         assets.DetectCDN(task.URL),
		Concurrency: task.Concurrency,
		Size:        filesize,
		ChunkCount:  task.ChunkCount,
	}
	if failures > 0 {
		result.OutcomeCode = CodeFailed
		result.Outcome = OutcomeFailed
		result.Description = fmt.Sprintf("%d of %d chunks failed", failures, len(chunks))
	}
	return result, nil
}

// downloadChunk fetches one byte range and writes it at its offset. The
// returned written count may differ from the nominal range size at the file
// boundary.
func (c *chunkedCoordinator) downloadChunk(ctx context.Context, task *planner.Task, chunk *planner.Chunk, bytesStarted *atomic.Int64) chunkResult {
	filesize := task.Asset.Filesize
	recorded := chunk.Size()
	// Range rounding can push the running started-counter past the
	// filesize; shrink the recorded size by the overshoot so the total
	// never exceeds the file length.
	if started := bytesStarted.Add(recorded); started > filesize {
		over := started - filesize
		bytesStarted.Add(-over)
		recorded -= over
		c.log.Debug().Str("op", "transfer/chunked").Msgf("Final chunk shrunk to %d bytes", recorded)
	}

	data, err := c.fetcher.FetchRange(ctx, task.URL, chunk.Start, chunk.End-1)
	if err != nil {
		return chunkResult{index: chunk.Index, err: fmt.Errorf("%w: %v", ErrChunkFetch, err)}
	}
	f, err := os.OpenFile(task.WritePath(), os.O_WRONLY, 0644)
	if err != nil {
		return chunkResult{index: chunk.Index, err: fmt.Errorf("%w: %v", ErrChunkFetch, err)}
	}
	defer f.Close()
	if _, err := f.Seek(chunk.Start, io.SeekStart); err != nil {
		return chunkResult{index: chunk.Index, err: fmt.Errorf("%w: %v", ErrChunkFetch, err)}
	}
	n, err := f.Write(data)
	if err != nil {
		return chunkResult{index: chunk.Index, err: fmt.Errorf("%w: %v", ErrChunkFetch, err)}
	}
	return chunkResult{index: chunk.Index, written: int64(n)}
}

// createStub creates the zero-length file concurrent workers seek-and-write
// into. An existing file is deleted and retried once when replace is set.
func (c *chunkedCoordinator) createStub(path string, replace bool) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err == nil {
		return f.Close()
	}
	if os.IsExist(err) && replace {
		c.log.Info().Str("op", "transfer/chunked").Msgf("Stub path occupied and replace=true, deleting and recreating %s", path)
		if rmErr := os.Remove(path); rmErr != nil {
			return fmt.Errorf("%w: %v", ErrFileStubCreation, rmErr)
		}
		f, err = os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
		if err == nil {
			return f.Close()
		}
	}
	return fmt.Errorf("%w: %v", ErrFileStubCreation, err)
}
