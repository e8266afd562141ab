package transfer

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/averden/mediapull/internal/assets"
	"github.com/averden/mediapull/internal/checksum"
	"github.com/averden/mediapull/internal/planner"
	"github.com/averden/mediapull/internal/progress"
	"github.com/averden/mediapull/internal/utils"
)

// Config wires the engine's collaborators. The HTTP client is injected so
// the engine composes over a transport instead of extending one.
type Config struct {
	Client           utils.HTTPDoer
	ProgressCallback progress.Callback
	ProgressInterval time.Duration
	Logger           zerolog.Logger
}

// Engine plans a download from asset metadata and executes it with the
// selected transfer strategy.
type Engine struct {
	fetcher  *RangeFetcher
	planner  *planner.Planner
	cb       progress.Callback
	interval time.Duration
	log      zerolog.Logger
}

func NewEngine(cfg Config) *Engine {
	if cfg.Client == nil {
		cfg.Client = utils.NewMediaHTTPClient(utils.HTTPClientConfig{})
	}
	if cfg.ProgressInterval == 0 {
		cfg.ProgressInterval = utils.DefaultProgressInterval
	}
	return &Engine{
		fetcher:  NewRangeFetcher(cfg.Client),
		planner:  planner.New(cfg.Logger),
		cb:       cfg.ProgressCallback,
		interval: cfg.ProgressInterval,
		log:      cfg.Logger,
	}
}

// Download materializes the asset as a single local file and reports how it
// went. Planning-stage failures return before any I/O happens.
func (e *Engine) Download(ctx context.Context, asset *assets.Asset, opts planner.Options) (*Result, error) {
	plan, err := e.planner.Plan(asset, opts)
	if err != nil {
		return nil, err
	}

	switch plan.Strategy {
	case planner.StrategySkip:
		return skipResult(plan), nil
	case planner.StrategyChunked:
		coord := &chunkedCoordinator{fetcher: e.fetcher, log: e.log}
		return coord.run(ctx, plan.Task, progress.NewReporter(e.cb, e.interval))
	default:
		whole := &wholeTransfer{fetcher: e.fetcher, log: e.log}
		return whole.run(ctx, plan.Task, progress.NewReporter(e.cb, e.interval))
	}
}

// verifyTask runs post-transfer checksum verification per the task policy.
// Returns nil when verification was not attempted.
func verifyTask(task *planner.Task, log zerolog.Logger) (*bool, error) {
	if !task.VerifyChecksum {
		return nil, nil
	}
	verifier := checksum.NewVerifier(task.StrictChecksum, log)
	ok, err := verifier.Verify(task.Destination, task.Asset.Checksum())
	if err != nil {
		return nil, fmt.Errorf("checksum verification failed: %w", err)
	}
	return &ok, nil
}
