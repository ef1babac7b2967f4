//go:build cuda

package metrics

import (
	"github.com/NVIDIA/go-nvml/pkg/nvml"

	"gpuprobe/internal/gpu"
)

type mockNVML struct {
	InitReturn     nvml.Return
	ShutdownReturn nvml.Return
	Devices        []mockDevice

	shutdownCalls int
}

type mockDevice struct {
	UUID              string
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

func newMockNVML(devices ...mockDevice) *mockNVML {
	return &mockNVML{
		InitReturn:     nvml.SUCCESS,
		ShutdownReturn: nvml.SUCCESS,
		Devices:        devices,
	}
}

func (m *mockNVML) Init() nvml.Return {
	return m.InitReturn
}

func (m *mockNVML) Shutdown() nvml.Return {
	m.shutdownCalls++
	return m.ShutdownReturn
}

func (m *mockNVML) DeviceGetCount() (int, nvml.Return) {
	return len(m.Devices), nvml.SUCCESS
}

func (m *mockNVML) DeviceGetHandleByIndex(index int) (gpu.DeviceInterface, nvml.Return) {
	if index < 0 || index >= len(m.Devices) {
		return nil, nvml.ERROR_INVALID_ARGUMENT
	}
	return mockDeviceImpl{device: &m.Devices[index]}, nvml.SUCCESS
}

func (m *mockNVML) SystemGetDriverVersion() (string, nvml.Return) {
	return "", nvml.ERROR_NOT_SUPPORTED
}

func (m *mockNVML) SystemGetCudaDriverVersion() (int, nvml.Return) {
	return 0, nvml.ERROR_NOT_SUPPORTED
}

type mockDeviceImpl struct {
	device *mockDevice
}

func (m mockDeviceImpl) GetName() (string, nvml.Return) {
	return "Mock GPU", nvml.SUCCESS
}

func (m mockDeviceImpl) GetUUID() (string, nvml.Return) {
	return m.device.UUID, nvml.SUCCESS
}

func (m mockDeviceImpl) GetMemoryInfo() (nvml.Memory, nvml.Return) {
	return nvml.Memory{Total: m.device.MemoryTotal, Used: m.device.MemoryUsed}, m.device.MemoryInfoReturn
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
