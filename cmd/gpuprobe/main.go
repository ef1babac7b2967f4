package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"gpuprobe/internal/config"
	"gpuprobe/internal/fsutil"
	"gpuprobe/internal/gpu"
	"gpuprobe/internal/logging"
	"gpuprobe/internal/metrics"
	"gpuprobe/internal/report"
	"gpuprobe/internal/tui"
)

const version = "0.1.0-dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run dispatches a command and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		return runReport(stdout, stderr)
	}

	command := strings.ToLower(args[0])
	if handler, ok := commandHandlers()[command]; ok {
		return handler(args[1:], stdout, stderr)
	}

	fmt.Fprintf(stderr, "Unknown command: %s\n\n", args[0])
	printUsage(stderr)
	return 1
}

type commandHandler func(args []string, stdout, stderr io.Writer) int

func commandHandlers() map[string]commandHandler {
	return map[string]commandHandler{
		"details": runDetails,
		"watch":   runWatch,
		"config":  runConfig,
		"version": func(_ []string, stdout, _ io.Writer) int {
			fmt.Fprintf(stdout, "gpuprobe version %s\n", version)
			return 0
		},
		"help":   usageHandler,
		"--help": usageHandler,
		"-h":     usageHandler,
	}
}

func usageHandler(_ []string, stdout, _ io.Writer) int {
	printUsage(stdout)
	return 0
}

// newFacility is replaced in tests.
var newFacility = gpu.NewFacility

// runReport prints the five-line availability report. Configuration only
// chooses the log destination here and never stops the report.
func runReport(stdout, stderr io.Writer) int {
	logger, closeLogger := reportLogger(stderr)
	defer closeLogger()

	facility := newFacility(logger)
	defer fsutil.CloseWithError(facility.Close, logger, "device-query facility")

	if err := report.New(facility, stdout, logger).Run(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// runDetails prints driver, CUDA and per-device information
func runDetails(args []string, stdout, stderr io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	logger, closeLogger, err := newLogger(cfg, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer closeLogger()

	detector := gpu.NewDetector(logger)
	gpuReport := detector.DetectGPUs()
	printDetails(stdout, gpuReport)

	if len(args) > 0 && args[0] == "--save" {
		reportPath := cfg.Report.SavePath
		if len(args) > 1 {
			reportPath = args[1]
		}
		if err := detector.SaveReport(gpuReport, reportPath); err != nil {
			fmt.Fprintf(stderr, "Failed to save report: %v\n", err)
			return 1
		}
		fmt.Fprintf(stdout, "Detailed report saved to: %s\n", reportPath)
	}

	if !gpuReport.NVMLOk || gpuReport.ErrorMessage != "" {
		return 1
	}
	return 0
}

func printDetails(w io.Writer, gpuReport gpu.GPUReport) {
	fmt.Fprintln(w, "=== GPU Detection Report ===")
	if !gpuReport.NVMLOk {
		fmt.Fprintln(w, "NVML Status: FAILED")
		fmt.Fprintf(w, "  Error: %s\n", gpuReport.ErrorMessage)
		fmt.Fprintln(w, "  Hint: install the NVIDIA driver to enable GPU support")
		return
	}

	fmt.Fprintln(w, "NVML Status: OK")
	fmt.Fprintf(w, "  Driver Version: %s\n", gpuReport.DriverVersion)
	fmt.Fprintf(w, "  CUDA Version: %s\n", formatCUDAVersion(gpuReport.CUDAVersion))
	fmt.Fprintf(w, "  GPU Count: %d\n", len(gpuReport.GPUs))
	if gpuReport.ErrorMessage != "" {
		fmt.Fprintf(w, "  Error: %s\n", gpuReport.ErrorMessage)
	}

	for _, info := range gpuReport.GPUs {
		visibility := "visible"
		if !info.Visible {
			visibility = "hidden by " + gpu.VisibleDevicesEnv
		}
		fmt.Fprintf(w, "\n  GPU %d (%s):\n", info.Index, visibility)
		fmt.Fprintf(w, "    Name: %s\n", info.Name)
		fmt.Fprintf(w, "    UUID: %s\n", info.UUID)
		fmt.Fprintf(w, "    Memory: %d MB\n", info.MemoryMB)
	}
}

// formatCUDAVersion renders NVML's integer CUDA version (12020) as 12.2.
func formatCUDAVersion(v int) string {
	if v <= 0 {
		return "unknown"
	}
	return fmt.Sprintf("%d.%d", v/1000, (v%1000)/10)
}

// runWatch starts the interactive live view
func runWatch(_ []string, _, stderr io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	logger, closeLogger, err := newLogger(cfg, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	defer closeLogger()

	facility := newFacility(logger)
	defer fsutil.CloseWithError(facility.Close, logger, "device-query facility")

	collector := metrics.NewGPUCollector(logger)
	defer collector.Shutdown()

	refresh := time.Duration(cfg.Watch.RefreshSeconds) * time.Second
	program := tea.NewProgram(tui.NewModel(facility, collector, logger, refresh), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// runConfig handles `config test [path]`
func runConfig(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 || args[0] != "test" {
		fmt.Fprintln(stderr, "Usage: gpuprobe config test [path]")
		return 1
	}

	var (
		cfg    config.Config
		err    error
		source string
	)
	if len(args) > 1 {
		source = args[1]
		cfg, err = config.LoadFrom(source)
	} else {
		source = fmt.Sprintf("%s, %s", config.SystemConfigPath(), config.UserConfigPath())
		cfg, err = config.Load()
	}

	if err != nil {
		fmt.Fprintf(stderr, "Configuration invalid (%s): %v\n", source, err)
		return 1
	}

	fmt.Fprintf(stdout, "Configuration valid (%s)\n", source)
	fmt.Fprintf(stdout, "  logging.level: %s\n", cfg.Logging.Level)
	fmt.Fprintf(stdout, "  logging.file: %s\n", orNone(cfg.Logging.File))
	fmt.Fprintf(stdout, "  report.save_path: %s\n", cfg.Report.SavePath)
	fmt.Fprintf(stdout, "  watch.refresh_seconds: %d\n", cfg.Watch.RefreshSeconds)
	return 0
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

// reportLogger builds the logger for the default report, falling back to a
// discarding logger when the configuration or log file is unusable.
func reportLogger(stderr io.Writer) (*logging.Logger, func()) {
	cfg, err := config.Load()
	if err != nil {
		return logging.NewDiscardLogger(), func() {}
	}
	logger, closeLogger, err := newLogger(cfg, stderr)
	if err != nil {
		return logging.NewDiscardLogger(), func() {}
	}
	return logger, closeLogger
}

// newLogger returns a file logger when logging.file is set and a discarding
// logger otherwise, so stdout and stderr carry only command output.
func newLogger(cfg config.Config, stderr io.Writer) (*logging.Logger, func(), error) {
	if cfg.Logging.File == "" {
		return logging.NewDiscardLogger(), func() {}, nil
	}

	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return nil, nil, err
	}

	logger, err := logging.NewFileLogger(level, cfg.Logging.File)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return logger, func() {
		if cerr := logger.Close(); cerr != nil && !errors.Is(cerr, os.ErrClosed) {
			fmt.Fprintf(stderr, "Warning: failed to close log file: %v\n", cerr)
		}
	}, nil
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, `gpuprobe - CUDA accelerator diagnostic (version %s)

Usage:
  gpuprobe                         Print CUDA availability, device count, current device and name
  gpuprobe details [--save [path]] Show driver, CUDA and per-device details (optionally save JSON)
  gpuprobe watch                   Live view of availability and current-device metrics
  gpuprobe config test [path]      Validate configuration (defaults to system/user configs)
  gpuprobe version                 Print version information
  gpuprobe help                    Show this help message

Build with -tags cuda to query devices through NVML.
`, version)
}
