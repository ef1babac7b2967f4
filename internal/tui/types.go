package tui

import (
	"time"

	"gpuprobe/internal/gpu"
	"gpuprobe/internal/metrics"
)

// probeResultMsg carries the outcome of one availability query and metrics sample
type probeResultMsg struct {
	at       time.Time
	snapshot gpu.Snapshot
	queryErr error

	sample     metrics.Sample
	hasSample  bool
	metricsErr error
}

// tickMsg triggers a scheduled refresh
type tickMsg time.Time
