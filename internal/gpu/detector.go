//go:build cuda

package gpu

import (
	"fmt"

	"github.com/NVIDIA/go-nvml/pkg/nvml"

	"gpuprobe/internal/logging"
)

// Detector builds the detailed per-device report
type Detector struct {
	nvml      NVMLInterface
	logger    *logging.Logger
	lookupEnv func() (string, bool)
}

// NewDetector creates a new GPU detector
func NewDetector(logger *logging.Logger) *Detector {
	return NewDetectorWithNVML(NewRealNVML(), logger)
}

// NewDetectorWithNVML creates a detector with a custom NVML interface (for testing)
func NewDetectorWithNVML(nvmlInterface NVMLInterface, logger *logging.Logger) *Detector {
	return &Detector{
		nvml:      nvmlInterface,
		logger:    logger,
		lookupEnv: lookupVisibleDevices,
	}
}

// DetectGPUs performs GPU detection and returns a report. Failures are
// recorded in the report rather than returned.
func (d *Detector) DetectGPUs() GPUReport {
	d.logger.Info("gpu.detect.start", "Starting GPU detection", nil)

	report := GPUReport{
		GPUs: make([]GPUInfo, 0),
	}

	ret := d.nvml.Init()
	if ret != nvml.SUCCESS {
		report.ErrorMessage = fmt.Sprintf("Failed to initialize NVML: %v", nvml.ErrorString(ret))
		d.logger.Warn("gpu.nvml.init.failed", "NVML initialization failed", map[string]interface{}{
			"error": report.ErrorMessage,
		})
		return report
	}
	defer func() {
		if ret := d.nvml.Shutdown(); ret != nvml.SUCCESS {
			d.logger.Warn("gpu.nvml.shutdown.failed", "NVML shutdown reported an error", map[string]interface{}{
				"error": nvml.ErrorString(ret),
			})
		}
	}()

	report.NVMLOk = true

	driverVersion, ret := d.nvml.SystemGetDriverVersion()
	if ret != nvml.SUCCESS {
		d.logger.Warn("gpu.driver.version.failed", "Failed to get driver version", map[string]interface{}{
			"error": nvml.ErrorString(ret),
		})
	} else {
		report.DriverVersion = driverVersion
	}

	cudaVersion, ret := d.nvml.SystemGetCudaDriverVersion()
	if ret != nvml.SUCCESS {
		d.logger.Warn("gpu.cuda.version.failed", "Failed to get CUDA version", map[string]interface{}{
			"error": nvml.ErrorString(ret),
		})
	} else {
		report.CUDAVersion = cudaVersion
	}

	count, ret := d.nvml.DeviceGetCount()
	if ret != nvml.SUCCESS {
		report.ErrorMessage = fmt.Sprintf("Failed to get device count: %v", nvml.ErrorString(ret))
		d.logger.Error("gpu.device.count.failed", "Failed to get GPU count", map[string]interface{}{
			"error": report.ErrorMessage,
		})
		return report
	}

	d.logger.Info("gpu.device.count", "Found GPU devices", map[string]interface{}{
		"count": count,
	})

	uuids := make([]string, count)
	for i := 0; i < count; i++ {
		device, ret := d.nvml.DeviceGetHandleByIndex(i)
		if ret != nvml.SUCCESS {
			d.logger.Warn("gpu.device.handle.failed", "Failed to get device handle", map[string]interface{}{
				"index": i,
				"error": nvml.ErrorString(ret),
			})
			continue
		}

		gpuInfo := GPUInfo{Index: i}

		if name, ret := device.GetName(); ret == nvml.SUCCESS {
			gpuInfo.Name = name
		}

		if uuid, ret := device.GetUUID(); ret == nvml.SUCCESS {
			gpuInfo.UUID = uuid
			uuids[i] = uuid
		}

		if memInfo, ret := device.GetMemoryInfo(); ret == nvml.SUCCESS {
			gpuInfo.MemoryMB = memInfo.Total / (1024 * 1024)
		}

		report.GPUs = append(report.GPUs, gpuInfo)

		d.logger.Info("gpu.device.detected", "GPU device detected", map[string]interface{}{
			"index":     i,
			"name":      gpuInfo.Name,
			"uuid":      gpuInfo.UUID,
			"memory_mb": gpuInfo.MemoryMB,
		})
	}

	value, set := d.lookupEnv()
	visible := make(map[int]bool, count)
	for _, index := range VisibleOrdinals(value, set, uuids) {
		visible[index] = true
	}
	for i := range report.GPUs {
		report.GPUs[i].Visible = visible[report.GPUs[i].Index]
	}

	return report
}

// SaveReport saves the GPU report to a JSON file
func (d *Detector) SaveReport(report GPUReport, path string) error {
	return saveReportToFile(d.logger, report, path)
}
