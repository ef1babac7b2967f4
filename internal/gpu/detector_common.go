package gpu

import (
	"encoding/json"
	"fmt"

	"gpuprobe/internal/fsutil"
	"gpuprobe/internal/logging"
)

func saveReportToFile(logger *logging.Logger, report GPUReport, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	if err := fsutil.AtomicWriteFile(path, data, 0o600, logger); err != nil {
		return fmt.Errorf("failed to write report file: %w", err)
	}

	logger.Info("gpu.report.saved", "GPU report saved", map[string]interface{}{
		"filepath": path,
	})

	return nil
}
