//go:build cuda

package metrics

import (
	"fmt"
	"time"

	"github.com/NVIDIA/go-nvml/pkg/nvml"

	"gpuprobe/internal/gpu"
	"gpuprobe/internal/logging"
)

const bytesPerMB = 1024 * 1024

// GPUCollector collects GPU metrics using NVML
type GPUCollector struct {
	logger      *logging.Logger
	nvml        gpu.NVMLInterface
	deviceIndex int
	device      gpu.DeviceInterface
	initialized bool
	now         func() time.Time
}

// NewGPUCollector creates a new GPU metrics collector
func NewGPUCollector(logger *logging.Logger) *GPUCollector {
	return NewGPUCollectorWithNVML(gpu.NewRealNVML(), logger)
}

// NewGPUCollectorWithNVML creates a collector with custom NVML (for testing)
func NewGPUCollectorWithNVML(nvmlInterface gpu.NVMLInterface, logger *logging.Logger) *GPUCollector {
	return &GPUCollector{
		logger: logger,
		nvml:   nvmlInterface,
		now:    time.Now,
	}
}

// Initialize initializes NVML and binds the collector to the device at the CUDA ordinal
func (g *GPUCollector) Initialize(ordinal int) error {
	if g.initialized {
		return nil
	}

	ret := g.nvml.Init()
	if ret != nvml.SUCCESS {
		return fmt.Errorf("failed to initialize NVML: %v", nvml.ErrorString(ret))
	}

	index, err := gpu.PhysicalIndex(g.nvml, ordinal, g.logger)
	if err != nil {
		g.shutdownNVML()
		return fmt.Errorf("failed to resolve device ordinal %d: %w", ordinal, err)
	}

	device, ret := g.nvml.DeviceGetHandleByIndex(index)
	if ret != nvml.SUCCESS {
		g.shutdownNVML()
		return fmt.Errorf("failed to get GPU device: %v", nvml.ErrorString(ret))
	}

	g.deviceIndex = index
	g.device = device
	g.initialized = true

	g.logger.Info("gpu.collector.initialized", "GPU metrics collector initialized", map[string]interface{}{
		"ordinal":      ordinal,
		"device_index": index,
	})

	return nil
}

// Collect reads one sample. Individual metrics that fail are left nil.
func (g *GPUCollector) Collect() (Sample, error) {
	if !g.initialized {
		return Sample{}, fmt.Errorf("GPU collector not initialized")
	}

	sample := Sample{Timestamp: g.now().UTC()}

	utilization, ret := g.device.GetUtilizationRates()
	if ret == nvml.SUCCESS {
		util := float64(utilization.Gpu)
		sample.GPUUtil = &util
	} else {
		g.warn("gpu.utilization.failed", "Failed to get GPU utilization", ret)
	}

	memInfo, ret := g.device.GetMemoryInfo()
	if ret == nvml.SUCCESS {
		usedMB := memInfo.Used / bytesPerMB
		totalMB := memInfo.Total / bytesPerMB
		sample.GPUMemMB = &usedMB
		sample.GPUMemTotalMB = &totalMB
	} else {
		g.warn("gpu.memory.failed", "Failed to get GPU memory", ret)
	}

	powerMilliwatts, ret := g.device.GetPowerUsage()
	if ret == nvml.SUCCESS {
		watts := float64(powerMilliwatts) / 1000.0
		sample.GPUWatts = &watts
	} else {
		g.warn("gpu.power.failed", "Failed to get GPU power", ret)
	}

	temp, ret := g.device.GetTemperature(nvml.TEMPERATURE_GPU)
	if ret == nvml.SUCCESS {
		tempFloat := float64(temp)
		sample.TempGPU = &tempFloat
	} else {
		g.warn("gpu.temperature.failed", "Failed to get GPU temperature", ret)
	}

	return sample, nil
}

// Shutdown shuts down the GPU collector
func (g *GPUCollector) Shutdown() {
	if !g.initialized {
		return
	}
	g.shutdownNVML()
	g.initialized = false
	g.device = nil
	g.logger.Info("gpu.collector.shutdown", "GPU metrics collector shut down", nil)
}

// IsInitialized returns whether the collector is initialized
func (g *GPUCollector) IsInitialized() bool {
	return g.initialized
}

func (g *GPUCollector) shutdownNVML() {
	if ret := g.nvml.Shutdown(); ret != nvml.SUCCESS {
		g.warn("gpu.collector.shutdown.failed", "NVML shutdown reported an error", ret)
	}
}

func (g *GPUCollector) warn(eventType, message string, ret nvml.Return) {
	g.logger.Warn(eventType, message, map[string]interface{}{
		"device_index": g.deviceIndex,
		"error":        nvml.ErrorString(ret),
	})
}
