package planner

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/averden/mediapull/internal/assets"
	"github.com/averden/mediapull/internal/checksum"
	"github.com/averden/mediapull/internal/utils"
)

// Options controls how a download is planned and executed.
type Options struct {
	Folder          string `validate:"required"`
	Prefix          string
	Chunked         bool // caller preference; honored only for large, non-watermarked assets
	Replace         bool
	UseTempFilename bool
	VerifyChecksum  bool
	StrictChecksum  bool
	Concurrency     int `validate:"gte=0"`
}

// Plan is the planner's verdict: either a terminal skip or a validated task
// with a transfer strategy.
type Plan struct {
	Strategy   Strategy
	Task       *Task
	SkipReason SkipReason // set only when Strategy == StrategySkip
	Verified   *bool      // reconciliation checksum verdict, nil if not attempted
}

type Planner struct {
	validate *validator.Validate
	log      zerolog.Logger
}

func New(logger zerolog.Logger) *Planner {
	return &Planner{
		validate: validator.New(validator.WithRequiredStructEnabled()),
		log:      logger,
	}
}

// Plan validates the asset, reconciles against any file already on disk,
// resolves the download URL, and classifies the transfer strategy. Skip
// verdicts are reached without any network call.
func (p *Planner) Plan(asset *assets.Asset, opts Options) (*Plan, error) {
	if err := p.validate.Struct(opts); err != nil {
		return nil, fmt.Errorf("invalid download options: %w", err)
	}
	if err := p.validate.Struct(asset); err != nil {
		return nil, fmt.Errorf("invalid asset: %w", err)
	}
	if err := asset.Evaluate(); err != nil {
		return nil, err
	}
	if opts.Concurrency == 0 {
		opts.Concurrency = utils.DefaultConcurrency
	}

	task := &Task{
		Asset:          asset,
		Destination:    filepath.Join(opts.Folder, opts.Prefix+utils.NormalizeFilename(asset.Name)),
		ChunkSizeBytes: utils.ChunkSize,
		ChunkCount:     ChunkCount(asset.Filesize),
		Concurrency:    opts.Concurrency,
		Replace:        opts.Replace,
		VerifyChecksum: opts.VerifyChecksum,
		StrictChecksum: opts.StrictChecksum,
	}
	if opts.UseTempFilename {
		task.TempPath = task.Destination + ".tmp-" + idFragment(asset.ID)
	}

	if plan, err := p.reconcileExisting(asset, task, opts); plan != nil || err != nil {
		return plan, err
	}

	url, err := asset.DownloadURL()
	if err != nil {
		return nil, err
	}
	task.URL = url

	return &Plan{Strategy: p.classify(asset, opts), Task: task}, nil
}

// reconcileExisting decides what to do about a file already sitting at the
// destination. Returns a skip plan, nil to proceed with the fetch, or an
// error. Checksum comparison takes precedence over size comparison.
func (p *Planner) reconcileExisting(asset *assets.Asset, task *Task, opts Options) (*Plan, error) {
	info, err := os.Stat(task.Destination)
	if err != nil {
		return nil, nil // nothing on disk
	}

	if opts.VerifyChecksum && asset.Checksum() != "" {
		diskSum, err := checksum.HashFile(task.Destination)
		if err != nil {
			return nil, err
		}
		if diskSum == asset.Checksum() {
			p.log.Info().Str("op", "planner/plan").Msg("File already exists and checksum matches, skipping download")
			verified := true
			return &Plan{Strategy: StrategySkip, Task: task, SkipReason: SkipVerified, Verified: &verified}, nil
		}
		if !opts.Replace {
			p.log.Warn().Str("op", "planner/plan").Msg("File exists with mismatched checksum and replace=false, skipping without action")
			verified := false
			return &Plan{Strategy: StrategySkip, Task: task, SkipReason: SkipNotReplaced, Verified: &verified}, nil
		}
		p.log.Warn().Str("op", "planner/plan").Msgf("File exists with mismatched checksum, replace=true; remote size %d, on disk %d", asset.Filesize, info.Size())
		if err := os.Remove(task.Destination); err != nil {
			return nil, fmt.Errorf("error removing stale file: %w", err)
		}
		return nil, nil
	}

	if info.Size() == asset.Filesize {
		p.log.Info().Str("op", "planner/plan").Msg("File already exists with matching size, skipping download")
		return &Plan{Strategy: StrategySkip, Task: task, SkipReason: SkipSizeMatched}, nil
	}
	if !opts.Replace {
		p.log.Warn().Str("op", "planner/plan").Msg("File exists with mismatched size and replace=false, skipping without action")
		return &Plan{Strategy: StrategySkip, Task: task, SkipReason: SkipNotReplaced}, nil
	}
	p.log.Warn().Str("op", "planner/plan").Msgf("File exists with mismatched size, replace=true; remote size %d, on disk %d", asset.Filesize, info.Size())
	if err := os.Remove(task.Destination); err != nil {
		return nil, fmt.Errorf("error removing stale file: %w", err)
	}
	return nil, nil
}

// classify picks the transfer strategy. Watermark-rendition URLs do not
// accept range requests, and small files are not worth the pool overhead.
func (p *Planner) classify(asset *assets.Asset, opts Options) Strategy {
	if asset.Watermarked {
		return StrategyWhole
	}
	if asset.Filesize < utils.ChunkSize {
		return StrategyWhole
	}
	if opts.Chunked {
		return StrategyChunked
	}
	return StrategyWhole
}

func idFragment(id string) string {
	if id == "" {
		id = uuid.NewString()
	}
	if len(id) > 8 {
		id = id[:8]
	}
	return id
}
