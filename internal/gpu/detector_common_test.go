package gpu

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"gpuprobe/internal/logging"
)

func TestDetector_SaveReport(t *testing.T) {
	detector := NewDetector(logging.NewDiscardLogger())

	report := GPUReport{
		DriverVersion: "535.104.05",
		CUDAVersion:   12020,
		NVMLOk:        true,
		GPUs: []GPUInfo{
			{Name: "Test GPU", UUID: "GPU-test", MemoryMB: 8192, Index: 0, Visible: true},
		},
	}

	path := filepath.Join(t.TempDir(), "gpu_report.json")
	if err := detector.SaveReport(report, path); err != nil {
		t.Fatalf("Expected no error saving report, got: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Expected report file to exist: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("Expected mode 0600, got %v", info.Mode().Perm())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read report file: %v", err)
	}

	var decoded GPUReport
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Report is not valid JSON: %v", err)
	}
	if len(decoded.GPUs) != 1 || decoded.GPUs[0].Name != "Test GPU" || !decoded.GPUs[0].Visible {
		t.Errorf("Unexpected decoded report: %+v", decoded)
	}
}

func TestDetector_SaveReport_BadPath(t *testing.T) {
	detector := NewDetector(nil)

	path := filepath.Join(t.TempDir(), "missing", "gpu_report.json")
	if err := detector.SaveReport(GPUReport{}, path); err == nil {
		t.Error("Expected error writing into a missing directory")
	}
}
