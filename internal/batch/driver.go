package batch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"converty/internal/format"
	"converty/internal/frame"
	"converty/internal/imageio"
)

// Options configures a Driver. The same geometry applies to every file of a run.
type Options struct {
	Geometry format.Geometry
	// OutputDir overrides the default <input dir>/<OutputDirName>.
	OutputDir     string
	OutputDirName string
	Recursive     bool
	Extensions    []string
	// MatchSize also picks up files whose size equals one frame of Geometry.
	MatchSize bool
	// Workers bounds concurrent conversions; 1 is sequential.
	Workers int
	Encoder imageio.Encoder
}

// Driver converts files or directory trees of raw dumps.
type Driver struct {
	opts     Options
	log      *slog.Logger
	counters Counters
	bufs     sync.Pool
}

// NewDriver validates the geometry up front: a bad geometry is a configuration error
// and no file is touched.
func NewDriver(opts Options, logger *slog.Logger) (*Driver, error) {
	if err := opts.Geometry.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if opts.OutputDirName == "" {
		opts.OutputDirName = "png"
	}
	if opts.Encoder == nil {
		opts.Encoder = imageio.PNG{}
	}
	d := &Driver{opts: opts, log: logger}
	d.bufs.New = func() any { return &frame.PixelBuffer{} }
	return d, nil
}

// Counters exposes the driver's running totals.
func (d *Driver) Counters() *Counters { return &d.counters }

// Run converts input, a single file or a directory. Per-file failures are recorded
// in the report; the returned error is reserved for problems that stop the whole run
// (missing input, nothing matched, output directory not creatable). When ctx is
// cancelled no further files are dispatched and the rest are reported as skipped.
func (d *Driver) Run(ctx context.Context, input string) (*Report, error) {
	abs, err := filepath.Abs(input)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInputNotFound, input, err)
	}
	st, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInputNotFound, input, err)
	}

	outDir := d.opts.OutputDir
	var inputs []string
	if st.IsDir() {
		if outDir == "" {
			outDir = filepath.Join(abs, d.opts.OutputDirName)
		}
		if outDir, err = filepath.Abs(outDir); err != nil {
			return nil, err
		}
		m := Matcher{Extensions: d.opts.Extensions}
		if d.opts.MatchSize {
			m.ExpectedSize = int64(format.ExpectedSize(d.opts.Geometry))
		}
		if inputs, err = Discover(abs, d.opts.Recursive, m, outDir, d.log); err != nil {
			return nil, err
		}
	} else {
		if outDir == "" {
			outDir = filepath.Join(filepath.Dir(abs), d.opts.OutputDirName)
		}
		if outDir, err = filepath.Abs(outDir); err != nil {
			return nil, err
		}
		inputs = []string{abs}
	}

	report := &Report{
		RunID:     uuid.NewString(),
		Input:     abs,
		OutputDir: outDir,
		Geometry:  d.opts.Geometry,
		Encoder:   d.opts.Encoder.Name(),
		Started:   time.Now(),
	}
	defer func() { report.Elapsed = time.Since(report.Started) }()

	if len(inputs) == 0 {
		return report, fmt.Errorf("%w under %s", ErrNoInputs, abs)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return report, fmt.Errorf("%w: create output directory: %w", imageio.ErrWrite, err)
	}
	d.log.Info("batch start", "run", report.RunID, "files", len(inputs), "geometry", d.opts.Geometry.String(),
		"output", outDir, "workers", d.opts.Workers)

	outputs := planOutputs(inputs, outDir, d.opts.Encoder.Ext())
	report.Results = make([]FileResult, len(inputs))
	for i := range inputs {
		report.Results[i] = FileResult{Input: inputs[i], Err: ErrSkipped}
	}

	var g errgroup.Group
	g.SetLimit(d.opts.Workers)
	for i := range inputs {
		if ctx.Err() != nil {
			d.log.Warn("run cancelled, not dispatching remaining files", "remaining", len(inputs)-i)
			break
		}
		i := i // per-iteration copy (go directive < 1.22)
		g.Go(func() error {
			report.Results[i] = d.convert(inputs[i], outputs[i])
			return nil
		})
	}
	_ = g.Wait()

	d.log.Debug("batch counters", "counters", d.counters.Snapshot())
	return report, nil
}

// convert handles one file end to end. Only the worker running it touches its buffer.
func (d *Driver) convert(in, out string) FileResult {
	d.counters.incFilesIn()
	start := time.Now()
	res := FileResult{Input: in}
	fail := func(err error) FileResult {
		d.counters.incFilesFailed()
		res.Err = err
		res.Duration = time.Since(start)
		d.log.Error("convert failed", "file", in, "err", err)
		return res
	}

	data, err := imageio.ReadRaw(in)
	if err != nil {
		return fail(err)
	}
	res.Bytes = len(data)
	d.counters.addBytesRead(len(data))

	buf := d.bufs.Get().(*frame.PixelBuffer)
	defer d.bufs.Put(buf)
	if err := frame.DecodeInto(buf, data, d.opts.Geometry); err != nil {
		return fail(err)
	}
	if err := imageio.WriteAtomic(out, d.opts.Encoder, buf.NRGBA()); err != nil {
		return fail(err)
	}

	d.counters.incFilesConverted()
	res.Output = out
	res.Duration = time.Since(start)
	d.log.Info("saved", "file", in, "output", out, "elapsed", res.Duration.Round(time.Millisecond))
	return res
}
