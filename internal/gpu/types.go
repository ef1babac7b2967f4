package gpu

// GPUInfo represents information about a single GPU
type GPUInfo struct {
	Name     string `json:"name"`
	UUID     string `json:"uuid"`
	MemoryMB uint64 `json:"memory_mb"`
	Index    int    `json:"index"`
	// Visible reports whether CUDA_VISIBLE_DEVICES exposes the device to CUDA programs.
	Visible bool `json:"visible"`
}

// GPUReport represents the complete GPU detection report written by `gpuprobe details --save`
type GPUReport struct {
	DriverVersion string    `json:"driver_version"`
	CUDAVersion   int       `json:"cuda_version"`
	NVMLOk        bool      `json:"nvml_ok"`
	GPUs          []GPUInfo `json:"gpus"`
	ErrorMessage  string    `json:"error_message,omitempty"`
}

// Snapshot holds one read of the four availability values.
// CurrentDevice and DeviceName are only meaningful when Available is true.
type Snapshot struct {
	Available     bool
	DeviceCount   int
	CurrentDevice int
	DeviceName    string
}
