//go:build cuda

package gpu

import (
	"github.com/NVIDIA/go-nvml/pkg/nvml"
)

// MockNVML is a mock implementation of NVMLInterface for testing
type MockNVML struct {
	InitReturn                   nvml.Return
	ShutdownReturn               nvml.Return
	DeviceCount                  int
	DeviceCountReturn            nvml.Return
	DriverVersion                string
	DriverVersionReturn          nvml.Return
	CudaVersion                  int
	CudaVersionReturn            nvml.Return
	Devices                      []MockDevice
	DeviceGetHandleByIndexReturn nvml.Return

	InitCalls     int
	ShutdownCalls int
}

// MockDevice represents a mock GPU device
type MockDevice struct {
	Name              string
	NameReturn        nvml.Return
	UUID              string
	UUIDReturn        nvml.Return
	MemoryTotal       uint64
	MemoryUsed        uint64
	MemoryInfoReturn  nvml.Return
	GPUUtil           uint32
	UtilizationReturn nvml.Return
	PowerUsage        uint32
	PowerUsageReturn  nvml.Return
	Temperature       uint32
	TemperatureReturn nvml.Return
}

// NewMockNVML creates a mock whose calls all succeed
func NewMockNVML() *MockNVML {
	return &MockNVML{
		InitReturn:                   nvml.SUCCESS,
		ShutdownReturn:               nvml.SUCCESS,
		DeviceCountReturn:            nvml.SUCCESS,
		DriverVersionReturn:          nvml.SUCCESS,
		CudaVersionReturn:            nvml.SUCCESS,
		DeviceGetHandleByIndexReturn: nvml.SUCCESS,
		Devices:                      make([]MockDevice, 0),
	}
}

// WithDevices sets the device list and count in one go
func (m *MockNVML) WithDevices(devices ...MockDevice) *MockNVML {
	m.Devices = devices
	m.DeviceCount = len(devices)
	return m
}

func (m *MockNVML) Init() nvml.Return {
	m.InitCalls++
	return m.InitReturn
}

func (m *MockNVML) Shutdown() nvml.Return {
	m.ShutdownCalls++
	return m.ShutdownReturn
}

func (m *MockNVML) DeviceGetCount() (int, nvml.Return) {
	return m.DeviceCount, m.DeviceCountReturn
}

func (m *MockNVML) DeviceGetHandleByIndex(index int) (DeviceInterface, nvml.Return) {
	if index < 0 || index >= len(m.Devices) {
		return nil, nvml.ERROR_INVALID_ARGUMENT
	}
	if m.DeviceGetHandleByIndexReturn != nvml.SUCCESS {
		return nil, m.DeviceGetHandleByIndexReturn
	}
	return mockDeviceImpl{device: &m.Devices[index]}, nvml.SUCCESS
}

func (m *MockNVML) SystemGetDriverVersion() (string, nvml.Return) {
	return m.DriverVersion, m.DriverVersionReturn
}

func (m *MockNVML) SystemGetCudaDriverVersion() (int, nvml.Return) {
	return m.CudaVersion, m.CudaVersionReturn
}

type mockDeviceImpl struct {
	device *MockDevice
}

func (m mockDeviceImpl) GetName() (string, nvml.Return) {
	return m.device.Name, m.device.NameReturn
}

func (m mockDeviceImpl) GetUUID() (string, nvml.Return) {
	return m.device.UUID, m.device.UUIDReturn
}

func (m mockDeviceImpl) GetMemoryInfo() (nvml.Memory, nvml.Return) {
	return nvml.Memory{
		Total: m.device.MemoryTotal,
		Used:  m.device.MemoryUsed,
	}, m.device.MemoryInfoReturn
}

func (m mockDeviceImpl) GetUtilizationRates() (nvml.Utilization, nvml.Return) {
	return nvml.Utilization{Gpu: m.device.GPUUtil}, m.device.UtilizationReturn
}

func (m mockDeviceImpl) GetPowerUsage() (uint32, nvml.Return) {
	return m.device.PowerUsage, m.device.PowerUsageReturn
}

func (m mockDeviceImpl) GetTemperature(nvml.TemperatureSensors) (uint32, nvml.Return) {
	return m.device.Temperature, m.device.TemperatureReturn
}

func mockDevice(name, uuid string) MockDevice {
	return MockDevice{
		Name:             name,
		NameReturn:       nvml.SUCCESS,
		UUID:             uuid,
		UUIDReturn:       nvml.SUCCESS,
		MemoryTotal:      24 * 1024 * 1024 * 1024,
		MemoryInfoReturn: nvml.SUCCESS,
	}
}
