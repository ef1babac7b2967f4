package metrics

import "time"

// Sample is one reading of the current device. Fields NVML could not supply are nil.
type Sample struct {
	Timestamp     time.Time `json:"ts"`
	GPUUtil       *float64  `json:"gpu_util,omitempty"`      // GPU utilization percentage (0-100)
	GPUMemMB      *uint64   `json:"gpu_mem,omitempty"`       // GPU memory used in MB
	GPUMemTotalMB *uint64   `json:"gpu_mem_total,omitempty"` // GPU memory total in MB
	GPUWatts      *float64  `json:"gpu_w,omitempty"`         // GPU power draw in watts
	TempGPU       *float64  `json:"temp_gpu,omitempty"`      // GPU temperature in Celsius
}

// Collector reads live samples from one device.
type Collector interface {
	Initialize(ordinal int) error
	Collect() (Sample, error)
	Shutdown()
	IsInitialized() bool
}

var _ Collector = (*GPUCollector)(nil)
