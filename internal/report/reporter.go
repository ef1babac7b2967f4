// Package report prints the accelerator availability summary.
package report

import (
	"fmt"
	"io"

	"gpuprobe/internal/gpu"
	"gpuprobe/internal/logging"
)

const (
	// Greeting is the first line of every report.
	Greeting = "Hello from dlai-shortcourse-notebooks!"
	// NoCurrentDevice replaces the current device index when no accelerator is available.
	NoCurrentDevice = "CPU only"
	// NoDeviceName replaces the device name when no accelerator is available.
	NoDeviceName = "N/A"
)

// Reporter writes the five-line availability report.
type Reporter struct {
	facility gpu.Facility
	out      io.Writer
	logger   *logging.Logger
}

// New creates a Reporter that queries facility and writes to out.
func New(facility gpu.Facility, out io.Writer, logger *logging.Logger) *Reporter {
	return &Reporter{
		facility: facility,
		out:      out,
		logger:   logger,
	}
}

// Run prints the greeting and then each value right after it is queried.
// When no accelerator is available the dependent queries are skipped and
// placeholders are printed instead. The first failing query aborts the run;
// lines already written stay written.
func (r *Reporter) Run() error {
	if err := r.println(Greeting); err != nil {
		return err
	}

	available, err := r.facility.Available()
	if err != nil {
		return r.fail("available", err)
	}
	if err := r.printf("CUDA available: %s\n", FormatBool(available)); err != nil {
		return err
	}

	if !available {
		r.logger.Info("report.cpu_only", "No CUDA device available", nil)
		return r.printLines(
			"Device count: 0",
			"Current device: "+NoCurrentDevice,
			"Device name: "+NoDeviceName,
		)
	}

	count, err := r.facility.DeviceCount()
	if err != nil {
		return r.fail("device_count", err)
	}
	if count < 1 {
		return r.fail("device_count", fmt.Errorf("%w: device count %d while available", gpu.ErrQueryFailed, count))
	}
	if err := r.printf("Device count: %d\n", count); err != nil {
		return err
	}

	current, err := r.facility.CurrentDevice()
	if err != nil {
		return r.fail("current_device", err)
	}
	if current < 0 || current >= count {
		return r.fail("current_device", fmt.Errorf("%w: current device %d outside [0, %d)", gpu.ErrQueryFailed, current, count))
	}
	if err := r.printf("Current device: %d\n", current); err != nil {
		return err
	}

	name, err := r.facility.DeviceName(0)
	if err != nil {
		return r.fail("device_name", err)
	}
	if name == "" {
		return r.fail("device_name", fmt.Errorf("%w: device 0 has an empty name", gpu.ErrQueryFailed))
	}
	if err := r.printf("Device name: %s\n", name); err != nil {
		return err
	}

	r.logger.Info("report.done", "Report written", map[string]interface{}{
		"count":   count,
		"current": current,
		"name":    name,
	})
	return nil
}

// FormatBool renders b as True or False.
func FormatBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

func (r *Reporter) fail(query string, err error) error {
	r.logger.Error("report.query.failed", "Device query failed", map[string]interface{}{
		"query": query,
		"error": err.Error(),
	})
	return err
}

func (r *Reporter) println(line string) error {
	if _, err := fmt.Fprintln(r.out, line); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

func (r *Reporter) printLines(lines ...string) error {
	for _, line := range lines {
		if err := r.println(line); err != nil {
			return err
		}
	}
	return nil
}

func (r *Reporter) printf(format string, args ...interface{}) error {
	if _, err := fmt.Fprintf(r.out, format, args...); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
