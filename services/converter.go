package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"converter/logging"
)

// Converter turns a point-cloud file into a directory tree of tiles. The
// octree algorithm itself lives in an external executable; implementations
// only shell out, which keeps the pipeline testable with a fake.
type Converter interface {
	Name() string
	Convert(ctx context.Context, inputPath string, outputDir string) error
}

// ConversionError reports a failed converter run. The tool's stderr is logged
// but deliberately not embedded here, so error messages stored in the asset
// record stay bounded.
type ConversionError struct {
	Tool     string
	ExitCode int
	Message  string
}

func (e *ConversionError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s failed with exit code %d", e.Tool, e.ExitCode)
}

// PotreeConverter shells out to the PotreeConverter binary to build the
// Potree octree format.
type PotreeConverter struct {
	bin string
	log *logging.Logger
}

func NewPotreeConverter(bin string, log *logging.Logger) *PotreeConverter {
	return &PotreeConverter{bin: bin, log: log}
}

func (p *PotreeConverter) Name() string { return "PotreeConverter" }

func (p *PotreeConverter) Convert(ctx context.Context, inputPath string, outputDir string) error {
	return runTool(ctx, p.log, p.Name(), p.bin, inputPath, outputDir,
		inputPath,
		"-o", outputDir,
		"--generate-page", "viewer",
	)
}

// Py3dtilesConverter shells out to py3dtiles to build the Cesium 3D Tiles
// format. Only used when the job runs with the tiles pass enabled.
type Py3dtilesConverter struct {
	bin string
	log *logging.Logger
}

func NewPy3dtilesConverter(bin string, log *logging.Logger) *Py3dtilesConverter {
	return &Py3dtilesConverter{bin: bin, log: log}
}

func (p *Py3dtilesConverter) Name() string { return "py3dtiles" }

func (p *Py3dtilesConverter) Convert(ctx context.Context, inputPath string, outputDir string) error {
	return runTool(ctx, p.log, p.Name(), p.bin, inputPath, outputDir,
		"convert", inputPath,
		"--out", outputDir,
		"--srs", "EPSG:4326",
	)
}

// runTool invokes one external converter exactly once. Retries are the
// scheduler's concern, not ours. Stdout is surfaced to the job log whether or
// not the tool succeeded; the converters print progress there.
func runTool(ctx context.Context, log *logging.Logger, tool, bin, inputPath, outputDir string, args ...string) error {
	// Distinguishes "the download never happened" from "the tool failed".
	if _, err := os.Stat(inputPath); err != nil {
		return &ConversionError{
			Tool:     tool,
			ExitCode: -1,
			Message:  fmt.Sprintf("%s: input file missing before conversion: %v", tool, err),
		}
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	log.Infof("running %s", tool)

	cmd := exec.CommandContext(ctx, bin, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()

	if out := strings.TrimSpace(stdout.String()); out != "" {
		log.Infof("%s output:\n%s", tool, out)
	}

	if runErr != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			log.Errorf("%s stderr: %s", tool, msg)
		}

		exitCode := -1
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			exitCode = exitErr.ExitCode()
		} else {
			log.Errorf("%s could not be started: %v", tool, runErr)
		}
		return &ConversionError{Tool: tool, ExitCode: exitCode}
	}

	log.Infof("%s completed", tool)
	return nil
}
