package batch

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"converty/internal/format"
)

// FileResult is the outcome for one input file.
type FileResult struct {
	Input    string
	Output   string // empty unless the image was written
	Bytes    int    // raw bytes read
	Duration time.Duration
	Err      error
}

// OK reports whether the output was written.
func (f FileResult) OK() bool { return f.Err == nil }

// Skipped reports whether the file was never processed.
func (f FileResult) Skipped() bool { return errors.Is(f.Err, ErrSkipped) }

// Report accumulates per-file results of a run. Results keep discovery order.
type Report struct {
	RunID     string
	Input     string
	OutputDir string
	Geometry  format.Geometry
	Encoder   string
	Started   time.Time
	Elapsed   time.Duration
	Results   []FileResult
}

// Succeeded returns the files whose output was written.
func (r *Report) Succeeded() []FileResult {
	return lo.Filter(r.Results, func(f FileResult, _ int) bool { return f.OK() })
}

// Failed returns the files that were processed and failed.
func (r *Report) Failed() []FileResult {
	return lo.Filter(r.Results, func(f FileResult, _ int) bool { return !f.OK() && !f.Skipped() })
}

// Skipped returns the files never dispatched because the run was cancelled.
func (r *Report) Skipped() []FileResult {
	return lo.Filter(r.Results, func(f FileResult, _ int) bool { return f.Skipped() })
}

// OK is true when at least one file was processed and every file succeeded.
func (r *Report) OK() bool {
	return len(r.Results) > 0 && len(r.Succeeded()) == len(r.Results)
}

// Summary writes a human readable end-of-run summary.
func (r *Report) Summary(w io.Writer) {
	if len(r.Results) == 0 {
		fmt.Fprintf(w, "No matching files found under %s.\n", r.Input)
		return
	}
	ok, failed, skipped := r.Succeeded(), r.Failed(), r.Skipped()
	fmt.Fprintf(w, "Converted %d/%d files (%d failed, %d skipped) in %s.\n",
		len(ok), len(r.Results), len(failed), len(skipped), r.Elapsed.Round(time.Millisecond))
	fmt.Fprintf(w, "Output directory: %s\n", r.OutputDir)
	if len(failed) > 0 {
		fmt.Fprintln(w, "Failed:")
		for _, line := range lo.Map(failed, func(f FileResult, _ int) string {
			return fmt.Sprintf("  %s: %v", f.Input, f.Err)
		}) {
			fmt.Fprintln(w, line)
		}
	}
}

type fileYAML struct {
	Input    string `yaml:"input"`
	Output   string `yaml:"output,omitempty"`
	Bytes    int    `yaml:"bytes"`
	Duration string `yaml:"duration"`
	Status   string `yaml:"status"`
	Error    string `yaml:"error,omitempty"`
}

type reportYAML struct {
	RunID     string          `yaml:"run_id"`
	Input     string          `yaml:"input"`
	OutputDir string          `yaml:"output_dir"`
	Geometry  format.Geometry `yaml:"geometry"`
	Encoder   string          `yaml:"encoder"`
	Started   time.Time       `yaml:"started"`
	Elapsed   string          `yaml:"elapsed"`
	Succeeded int             `yaml:"succeeded"`
	Failed    int             `yaml:"failed"`
	Skipped   int             `yaml:"skipped"`
	Files     []fileYAML      `yaml:"files"`
}

// WriteYAML serialises the report.
func (r *Report) WriteYAML(w io.Writer) error {
	doc := reportYAML{
		RunID:     r.RunID,
		Input:     r.Input,
		OutputDir: r.OutputDir,
		Geometry:  r.Geometry,
		Encoder:   r.Encoder,
		Started:   r.Started,
		Elapsed:   r.Elapsed.String(),
		Succeeded: len(r.Succeeded()),
		Failed:    len(r.Failed()),
		Skipped:   len(r.Skipped()),
		Files: lo.Map(r.Results, func(f FileResult, _ int) fileYAML {
			fy := fileYAML{Input: f.Input, Output: f.Output, Bytes: f.Bytes, Duration: f.Duration.String(), Status: "ok"}
			switch {
			case f.Skipped():
				fy.Status = "skipped"
			case f.Err != nil:
				fy.Status = "failed"
				fy.Error = f.Err.Error()
			}
			return fy
		}),
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}

// SaveYAML writes the report to path.
func (r *Report) SaveYAML(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := r.WriteYAML(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
