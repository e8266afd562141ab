package utils

import "time"

// ChunkSize is the fixed byte-range size used to partition large assets.
const ChunkSize int64 = 25 * 1024 * 1024 // 25 MiB

// StreamBufferSize is the read buffer used for sequential whole-file streaming.
const StreamBufferSize = 4096

// DefaultConcurrency is the worker pool size for chunked transfers.
const DefaultConcurrency = 5

// DefaultProgressInterval is the minimum gap between progress callbacks.
const DefaultProgressInterval = 5 * time.Second

const ToolUserAgent = "mediapull/1.0"
