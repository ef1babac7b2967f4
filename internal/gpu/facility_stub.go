//go:build !cuda

package gpu

import "gpuprobe/internal/logging"

// cpuOnlyFacility is used when the binary is built without NVML support.
type cpuOnlyFacility struct {
	logger *logging.Logger
}

// NewFacility returns a facility that never finds a device (built without cuda tag).
func NewFacility(logger *logging.Logger) Facility {
	return &cpuOnlyFacility{logger: logger}
}

func (f *cpuOnlyFacility) Available() (bool, error) {
	f.logger.Debug("gpu.facility.disabled", "NVML support not compiled in (build with -tags cuda)", nil)
	return false, nil
}

func (f *cpuOnlyFacility) DeviceCount() (int, error) {
	return 0, queryError("device count", ErrNoDevice)
}

func (f *cpuOnlyFacility) CurrentDevice() (int, error) {
	return 0, queryError("current device", ErrNoDevice)
}

func (f *cpuOnlyFacility) DeviceName(int) (string, error) {
	return "", queryError("device name", ErrNoDevice)
}

func (f *cpuOnlyFacility) Close() error {
	return nil
}

// NewFacilityWithNVML is provided for API compatibility; NVML is ignored when CUDA is disabled.
func NewFacilityWithNVML(_ NVMLInterface, logger *logging.Logger) Facility {
	return NewFacility(logger)
}
