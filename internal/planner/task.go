package planner

import (
	"github.com/averden/mediapull/internal/assets"
	"github.com/averden/mediapull/internal/utils"
)

type Strategy string

const (
	StrategySkip    Strategy = "skip"
	StrategyWhole   Strategy = "whole"
	StrategyChunked Strategy = "chunked"
)

type SkipReason string

const (
	SkipVerified    SkipReason = "skipped, verified"
	SkipSizeMatched SkipReason = "skipped, size-matched"
	SkipNotReplaced SkipReason = "skipped, not replaced"
)

// Task is a validated download plan for one asset. Created per invocation
// and discarded once a transfer result is produced.
type Task struct {
	Asset          *assets.Asset
	URL            string
	Destination    string
	TempPath       string // "" unless temp-filename mode is on
	ChunkSizeBytes int64
	ChunkCount     int
	Concurrency    int
	Replace        bool
	VerifyChecksum bool
	StrictChecksum bool
}

// WritePath is where transfer bytes land: the temp path when temp-filename
// mode is on, the destination otherwise.
func (t *Task) WritePath() string {
	if t.TempPath != "" {
		return t.TempPath
	}
	return t.Destination
}

type ChunkStatus int

const (
	ChunkPending ChunkStatus = iota
	ChunkInFlight
	ChunkCompleted
	ChunkFailed
)

// Chunk is a contiguous byte range of the target file, fetched and written
// independently. Start is inclusive, End exclusive, so chunk sizes sum to
// the filesize exactly.
type Chunk struct {
	Index  int
	Start  int64
	End    int64
	Status ChunkStatus
}

// Size returns the number of bytes the chunk covers.
func (c Chunk) Size() int64 {
	return c.End - c.Start
}

// ChunkCount returns how many fixed-size chunks a file of the given size
// partitions into.
func ChunkCount(filesize int64) int {
	if filesize <= 0 {
		return 0
	}
	return int((filesize + utils.ChunkSize - 1) / utils.ChunkSize)
}

// BuildChunks tiles [0, filesize) into count ranges of ceil(filesize/count)
// bytes, the last range truncated so the union covers the file exactly.
func BuildChunks(filesize int64, count int) []Chunk {
	if filesize <= 0 || count <= 0 {
		return nil
	}
	offset := (filesize + int64(count) - 1) / int64(count)
	chunks := make([]Chunk, 0, count)
	for i := 0; i < count; i++ {
		start := int64(i) * offset
		end := start + offset
		if end > filesize {
			end = filesize
		}
		chunks = append(chunks, Chunk{Index: i, Start: start, End: end})
	}
	return chunks
}
