package transfer

import (
	"time"

	"github.com/averden/mediapull/internal/planner"
)

type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)

// Outcome codes carried on Result.
const (
	CodeSuccess            = 0
	CodeFailed             = 1
	CodeSkippedVerified    = 10
	CodeSkippedSizeMatched = 11
	CodeSkippedNotReplaced = 12
)

// Result is the terminal report of a download invocation.
type Result struct {
	OutcomeCode int
	Outcome     Outcome
	Description string
	Verified    *bool // nil when verification was not attempted
	Destination string
	SpeedBPS    float64
	Elapsed     time.Duration
	CDN         string
	Concurrency int
	Size        int64
	ChunkCount  int
}

func skipResult(plan *planner.Plan) *Result {
	res := &Result{
		Outcome:     OutcomeSkipped,
		Description: string(plan.SkipReason),
		Verified:    plan.Verified,
		Destination: plan.Task.Destination,
		Size:        plan.Task.Asset.Filesize,
		ChunkCount:  plan.Task.ChunkCount,
	}
	switch plan.SkipReason {
	case planner.SkipVerified:
		res.OutcomeCode = CodeSkippedVerified
	case planner.SkipSizeMatched:
		res.OutcomeCode = CodeSkippedSizeMatched
	default:
		res.OutcomeCode = CodeSkippedNotReplaced
	}
	return res
}
