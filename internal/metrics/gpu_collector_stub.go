//go:build !cuda

package metrics

import (
	"errors"

	"gpuprobe/internal/logging"
)

// ErrGPUMetricsDisabled is returned when the binary is built without NVML support.
var ErrGPUMetricsDisabled = errors.New("GPU metrics disabled: rebuild with -tags cuda")

// GPUCollector is a no-op collector for builds without CUDA support.
type GPUCollector struct {
	logger *logging.Logger
}

// NewGPUCollector creates a no-op GPU collector.
func NewGPUCollector(logger *logging.Logger) *GPUCollector {
	return &GPUCollector{logger: logger}
}

// Initialize always fails because NVML support is not compiled in.
func (g *GPUCollector) Initialize(int) error {
	g.logger.Debug("gpu.collector.disabled", "GPU metrics collection disabled (built without cuda tag)", nil)
	return ErrGPUMetricsDisabled
}

// Collect always fails because NVML support is not compiled in.
func (g *GPUCollector) Collect() (Sample, error) {
	return Sample{}, ErrGPUMetricsDisabled
}

// Shutdown is a no-op.
func (g *GPUCollector) Shutdown() {}

// IsInitialized always reports false.
func (g *GPUCollector) IsInitialized() bool {
	return false
}
