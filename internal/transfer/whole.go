package transfer

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/averden/mediapull/internal/assets"
	"github.com/averden/mediapull/internal/planner"
	"github.com/averden/mediapull/internal/progress"
	"github.com/averden/mediapull/internal/utils"
)

// wholeTransfer streams one sequential GET into the destination file.
type wholeTransfer struct {
	fetcher *RangeFetcher
	log     zerolog.Logger
}

func (w *wholeTransfer) run(ctx context.Context, task *planner.Task, rep *progress.Reporter) (*Result, error) {
	filesize := task.Asset.Filesize
	w.log.Info().Str("op", "transfer/whole").Msgf("Beginning download -- %s -- %s",
		filepath.Base(task.Destination), utils.FormatBytes(uint64(filesize)))

	startTime := time.Now()
	ev := progress.Event{
		TransferType: progress.TransferWhole,
		StartTime:    startTime,
		Status:       progress.StatusIncomplete,
		ChunkSize:    utils.StreamBufferSize,
	}
	rep.Force(ev)

	body, err := w.fetcher.Open(ctx, task.URL)
	if err != nil {
		ev.Status = progress.StatusFailed
		rep.Force(ev)
		return nil, fmt.Errorf("error executing GET request: %w", err)
	}
	defer body.Close()

	out, err := os.Create(task.WritePath())
	if err != nil {
		ev.Status = progress.StatusFailed
		rep.Force(ev)
		return nil, fmt.Errorf("error creating output file: %w", err)
	}

	// A mid-stream failure leaves the partially written file on disk.
	buffer := make([]byte, utils.StreamBufferSize)
	var bytesDownloaded int64
	chunkCount := 0
	for {
		n, readErr := body.Read(buffer)
		if n > 0 {
			if _, writeErr := out.Write(buffer[:n]); writeErr != nil {
				out.Close()
				ev.Status = progress.StatusFailed
				rep.Force(ev)
				return nil, fmt.Errorf("error writing to output file: %w", writeErr)
			}
			bytesDownloaded += int64(n)
			chunkCount++
			ev.BytesDownloaded = bytesDownloaded
			ev.Percent = progress.Percent(bytesDownloaded, filesize)
			rep.Emit(ev)
		}
		if readErr != nil {
			if readErr == io.EOF {
				break
			}
			out.Close()
			ev.Status = progress.StatusFailed
			rep.Force(ev)
			return nil, fmt.Errorf("error reading response body: %w", readErr)
		}
	}
	out.Sync()
	out.Close()
	endTime := time.Now()

	if task.TempPath != "" {
		renameFromTemp(task, w.log)
	}

	ev.Status = progress.StatusComplete
	ev.EndTime = endTime
	ev.BytesDownloaded = bytesDownloaded
	ev.Percent = progress.Percent(bytesDownloaded, filesize)
	rep.Force(ev)

	elapsed := endTime.Sub(startTime)
	verified, err := verifyTask(task, w.log)
	if err != nil {
		return nil, err
	}
	w.log.Info().Str("op", "transfer/whole").Msgf("Downloaded %s at %s",
		utils.FormatBytes(uint64(bytesDownloaded)), utils.FormatSpeed(bytesDownloaded, elapsed.Seconds()))

	return &Result{
		OutcomeCode: CodeSuccess,
		Outcome:     OutcomeSuccess,
		Description: "completed",
		Verified:    verified,
		Destination: task.Destination,
		SpeedBPS:    speedBPS(bytesDownloaded, elapsed),
		Elapsed:     elapsed,
		CDN:         assets.DetectCDN(task.URL),
		Concurrency: 1,
		Size:        filesize,
		ChunkCount:  chunkCount,
	}, nil
}

func speedBPS(bytes int64, elapsed time.Duration) float64 {
	secs := elapsed.Seconds()
	if secs <= 0 {
		return 0
	}
	return float64(bytes) / secs
}

// renameFromTemp finalizes a temp-filename download. Rename failures are
// logged, not raised.
func renameFromTemp(task *planner.Task, log zerolog.Logger) {
	if err := os.Rename(task.TempPath, task.Destination); err != nil {
		log.Error().Str("op", "transfer/finalize").Err(err).Msg("Unable to rename the temp file to the final filename")
	}
}
