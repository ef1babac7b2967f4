//go:build cuda

package gpu

import (
	"fmt"

	"github.com/NVIDIA/go-nvml/pkg/nvml"

	"gpuprobe/internal/logging"
)

// nvmlFacility answers availability queries from NVML. NVML is initialized
// once; Available re-reads the device list so long-lived callers see devices
// come and go. The other queries reuse the list from the last resolution.
type nvmlFacility struct {
	nvml      NVMLInterface
	logger    *logging.Logger
	lookupEnv func() (string, bool)

	initialized bool
	resolved    bool
	ordinals    []int
}

// NewFacility creates a facility backed by libnvidia-ml
func NewFacility(logger *logging.Logger) Facility {
	return NewFacilityWithNVML(NewRealNVML(), logger)
}

// NewFacilityWithNVML creates a facility with a custom NVML interface (for testing)
func NewFacilityWithNVML(nvmlInterface NVMLInterface, logger *logging.Logger) Facility {
	return &nvmlFacility{
		nvml:      nvmlInterface,
		logger:    logger,
		lookupEnv: lookupVisibleDevices,
	}
}

// ensureInit calls nvml.Init at most once per successful initialization.
// An absent driver leaves the facility uninitialized so a later call retries.
func (f *nvmlFacility) ensureInit() (bool, error) {
	if f.initialized {
		return true, nil
	}

	ret := f.nvml.Init()
	if ret == nvml.SUCCESS {
		f.initialized = true
		return true, nil
	}
	if deviceAbsent(ret) {
		f.logger.Info("gpu.nvml.absent", "NVML reports no NVIDIA driver or device", map[string]interface{}{
			"error": nvml.ErrorString(ret),
		})
		return false, nil
	}
	f.logger.Error("gpu.nvml.init.failed", "NVML initialization failed", map[string]interface{}{
		"error": nvml.ErrorString(ret),
	})
	return false, queryError("initialize NVML", nvmlError(ret))
}

// resolve rebuilds the visible ordinal list from the current NVML state.
func (f *nvmlFacility) resolve() error {
	f.resolved = false
	f.ordinals = nil

	ready, err := f.ensureInit()
	if err != nil {
		return err
	}
	if !ready {
		f.resolved = true
		return nil
	}

	count, ret := f.nvml.DeviceGetCount()
	if ret != nvml.SUCCESS {
		f.logger.Error("gpu.device.count.failed", "Failed to get GPU count", map[string]interface{}{
			"error": nvml.ErrorString(ret),
		})
		return queryError("device count", nvmlError(ret))
	}

	value, set := f.lookupEnv()
	f.ordinals = resolveOrdinals(f.nvml, count, value, set, f.logger)
	f.resolved = true

	f.logger.Info("gpu.device.count", "Found GPU devices", map[string]interface{}{
		"physical": count,
		"visible":  len(f.ordinals),
	})

	return nil
}

func (f *nvmlFacility) ensureResolved() error {
	if f.resolved {
		return nil
	}
	return f.resolve()
}

// resolveOrdinals applies CUDA_VISIBLE_DEVICES; UUIDs are only read when the variable is set.
func resolveOrdinals(n NVMLInterface, count int, value string, set bool, logger *logging.Logger) []int {
	uuids := make([]string, count)
	if set {
		uuids = deviceUUIDs(n, count, logger)
	}
	return VisibleOrdinals(value, set, uuids)
}

func deviceUUIDs(n NVMLInterface, count int, logger *logging.Logger) []string {
	uuids := make([]string, count)
	for i := range uuids {
		device, ret := n.DeviceGetHandleByIndex(i)
		if ret != nvml.SUCCESS {
			continue
		}
		uuid, ret := device.GetUUID()
		if ret != nvml.SUCCESS {
			logger.Warn("gpu.device.uuid.failed", "Failed to read device UUID", map[string]interface{}{
				"index": i,
				"error": nvml.ErrorString(ret),
			})
			continue
		}
		uuids[i] = uuid
	}
	return uuids
}

// PhysicalIndex resolves a CUDA ordinal to an NVML index on an initialized NVML.
func PhysicalIndex(n NVMLInterface, ordinal int, logger *logging.Logger) (int, error) {
	count, ret := n.DeviceGetCount()
	if ret != nvml.SUCCESS {
		return 0, queryError("device count", nvmlError(ret))
	}

	value, set := lookupVisibleDevices()
	ordinals := resolveOrdinals(n, count, value, set, logger)
	if ordinal < 0 || ordinal >= len(ordinals) {
		return 0, queryError("device ordinal", ErrNoDevice)
	}
	return ordinals[ordinal], nil
}

func (f *nvmlFacility) Available() (bool, error) {
	if err := f.resolve(); err != nil {
		return false, err
	}
	return len(f.ordinals) > 0, nil
}

func (f *nvmlFacility) DeviceCount() (int, error) {
	if err := f.ensureResolved(); err != nil {
		return 0, err
	}
	return len(f.ordinals), nil
}

// CurrentDevice is the CUDA runtime default; nothing here selects another device.
func (f *nvmlFacility) CurrentDevice() (int, error) {
	if err := f.ensureResolved(); err != nil {
		return 0, err
	}
	if len(f.ordinals) == 0 {
		return 0, queryError("current device", ErrNoDevice)
	}
	return 0, nil
}

func (f *nvmlFacility) DeviceName(ordinal int) (string, error) {
	if err := f.ensureResolved(); err != nil {
		return "", err
	}
	if len(f.ordinals) == 0 {
		return "", queryError("device name", ErrNoDevice)
	}
	if ordinal < 0 || ordinal >= len(f.ordinals) {
		return "", queryError("device name", fmt.Errorf("invalid device ordinal %d (%d visible)", ordinal, len(f.ordinals)))
	}

	index := f.ordinals[ordinal]
	device, ret := f.nvml.DeviceGetHandleByIndex(index)
	if ret != nvml.SUCCESS {
		return "", queryError("device handle", nvmlError(ret))
	}

	name, ret := device.GetName()
	if ret != nvml.SUCCESS {
		return "", queryError("device name", nvmlError(ret))
	}

	return name, nil
}

func (f *nvmlFacility) Close() error {
	if !f.initialized {
		return nil
	}
	f.initialized = false
	f.resolved = false
	f.ordinals = nil

	if ret := f.nvml.Shutdown(); ret != nvml.SUCCESS {
		return fmt.Errorf("failed to shut down NVML: %s", nvml.ErrorString(ret))
	}
	return nil
}
