package batch

import (
	"bytes"
	"context"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"converty/internal/format"
	"converty/internal/frame"
	"converty/internal/imageio"
)

var tiny = format.Geometry{Width: 4, Height: 2, Layout: format.LayoutUYVY}

func quietLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func newTestDriver(t *testing.T, opts Options) *Driver {
	t.Helper()
	if opts.Extensions == nil {
		opts.Extensions = []string{".raw", ".yuv", ".bin"}
	}
	opts.Recursive = true
	d, err := NewDriver(opts, quietLogger())
	require.NoError(t, err)
	return d
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func grayFrame(g format.Geometry) []byte {
	return bytes.Repeat([]byte{128}, format.ExpectedSize(g))
}

func TestRunValidAndTruncatedSS2(t *testing.T) {
	g, ok := format.Lookup("ss2")
	require.True(t, ok)
	dir := t.TempDir()
	good := grayFrame(g)
	writeFile(t, filepath.Join(dir, "good.raw"), good)
	writeFile(t, filepath.Join(dir, "truncated.raw"), good[:len(good)-1])

	d := newTestDriver(t, Options{Geometry: g, Workers: 2})
	report, err := d.Run(context.Background(), dir)
	require.NoError(t, err)

	assert.Len(t, report.Succeeded(), 1)
	require.Len(t, report.Failed(), 1)
	assert.False(t, report.OK())
	assert.ErrorIs(t, report.Failed()[0].Err, frame.ErrSizeMismatch)
	assert.Equal(t, filepath.Join(dir, "truncated.raw"), report.Failed()[0].Input)

	out := filepath.Join(dir, "png", "good.png")
	assert.Equal(t, out, report.Succeeded()[0].Output)
	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 1920, cfg.Width)
	assert.Equal(t, 1280, cfg.Height)

	_, err = os.Stat(filepath.Join(dir, "png", "truncated.png"))
	assert.True(t, os.IsNotExist(err), "failed file must not leave an output")

	snap := d.Counters().Snapshot()
	assert.Equal(t, uint64(2), snap["files_in"])
	assert.Equal(t, uint64(1), snap["files_converted"])
	assert.Equal(t, uint64(1), snap["files_failed"])
}

func TestRunSingleFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "frame.dump") // extension is irrelevant for an explicit file
	writeFile(t, in, grayFrame(tiny))

	report, err := newTestDriver(t, Options{Geometry: tiny, Workers: 1}).Run(context.Background(), in)
	require.NoError(t, err)
	require.True(t, report.OK())
	assert.Equal(t, filepath.Join(dir, "png"), report.OutputDir)

	img, err := imageio.ReadImage(filepath.Join(dir, "png", "frame.png"))
	require.NoError(t, err)
	r, g, b, _ := img.At(3, 1).RGBA()
	assert.Equal(t, [3]uint32{128, 128, 128}, [3]uint32{r >> 8, g >> 8, b >> 8})
}

func TestRunSingleFileFailure(t *testing.T) {
	in := filepath.Join(t.TempDir(), "frame.raw")
	writeFile(t, in, []byte{1, 2, 3})

	report, err := newTestDriver(t, Options{Geometry: tiny}).Run(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, report.Failed(), 1)
	assert.ErrorIs(t, report.Results[0].Err, frame.ErrSizeMismatch)
	assert.Empty(t, report.Results[0].Output)
}

func TestRunOutputOverrideAndTIFF(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(t.TempDir(), "results")
	writeFile(t, filepath.Join(dir, "a.yuv"), grayFrame(tiny))

	report, err := newTestDriver(t, Options{Geometry: tiny, OutputDir: outDir, Encoder: imageio.TIFF{}}).
		Run(context.Background(), dir)
	require.NoError(t, err)
	require.True(t, report.OK())
	assert.Equal(t, "tiff", report.Encoder)
	assert.FileExists(t, filepath.Join(outDir, "a.tiff"))
	assert.NoDirExists(t, filepath.Join(dir, "png"))
}

func TestRunCompressedInput(t *testing.T) {
	dir := t.TempDir()
	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	writeFile(t, filepath.Join(dir, "cam", "shot.raw.zst"), enc.EncodeAll(grayFrame(tiny), nil))
	require.NoError(t, enc.Close())

	report, err := newTestDriver(t, Options{Geometry: tiny}).Run(context.Background(), dir)
	require.NoError(t, err)
	require.True(t, report.OK())
	assert.Equal(t, filepath.Join(dir, "png", "shot.png"), report.Results[0].Output)
	assert.Equal(t, format.ExpectedSize(tiny), report.Results[0].Bytes)
}

func TestRunNoInputs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "notes.txt"), []byte("hello"))

	report, err := newTestDriver(t, Options{Geometry: tiny}).Run(context.Background(), dir)
	require.ErrorIs(t, err, ErrNoInputs)
	require.NotNil(t, report)
	assert.Empty(t, report.Results)
	assert.False(t, report.OK())
	assert.NoDirExists(t, filepath.Join(dir, "png"))
}

func TestRunMissingInput(t *testing.T) {
	_, err := newTestDriver(t, Options{Geometry: tiny}).Run(context.Background(), filepath.Join(t.TempDir(), "nope"))
	assert.ErrorIs(t, err, ErrInputNotFound)
}

func TestRunCancelledDispatchesNothing(t *testing.T) {
	dir := t.TempDir()
	for _, n := range []string{"a.raw", "b.raw", "c.raw"} {
		writeFile(t, filepath.Join(dir, n), grayFrame(tiny))
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := newTestDriver(t, Options{Geometry: tiny}).Run(ctx, dir)
	require.NoError(t, err)
	assert.Len(t, report.Skipped(), 3)
	assert.Empty(t, report.Failed())
	assert.False(t, report.OK())
	assert.NoFileExists(t, filepath.Join(dir, "png", "a.png"))
}

func TestRunSequentialMatchesParallel(t *testing.T) {
	dir := t.TempDir()
	for i, n := range []string{"a.raw", "sub/b.raw", "sub/deeper/c.bin", "d.raw"} {
		data := grayFrame(tiny)
		data[1] = byte(i * 40)
		writeFile(t, filepath.Join(dir, n), data)
	}
	writeFile(t, filepath.Join(dir, "bad.raw"), []byte{0})

	run := func(workers int, out string) *Report {
		r, err := newTestDriver(t, Options{Geometry: tiny, Workers: workers, OutputDir: out}).Run(context.Background(), dir)
		require.NoError(t, err)
		return r
	}
	seqDir, parDir := t.TempDir(), t.TempDir()
	seq, par := run(1, seqDir), run(8, parDir)

	require.Len(t, par.Results, len(seq.Results))
	for i := range seq.Results {
		assert.Equal(t, seq.Results[i].Input, par.Results[i].Input)
		assert.Equal(t, seq.Results[i].OK(), par.Results[i].OK())
		if !seq.Results[i].OK() {
			continue
		}
		a, err := os.ReadFile(seq.Results[i].Output)
		require.NoError(t, err)
		b, err := os.ReadFile(par.Results[i].Output)
		require.NoError(t, err)
		assert.Equal(t, a, b, "output for %s differs", seq.Results[i].Input)
	}
	assert.Len(t, seq.Succeeded(), 4)
	assert.Len(t, seq.Failed(), 1)
}

func TestRunRerunDoesNotPickUpOutputs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.raw"), grayFrame(tiny))
	d := newTestDriver(t, Options{Geometry: tiny, MatchSize: true})

	for i := 0; i < 2; i++ {
		report, err := d.Run(context.Background(), dir)
		require.NoError(t, err)
		require.Len(t, report.Results, 1, "run %d", i)
		assert.Equal(t, filepath.Join(dir, "png", "a.png"), report.Results[0].Output)
	}
}

func TestNewDriverRejectsBadGeometry(t *testing.T) {
	_, err := NewDriver(Options{Geometry: format.Geometry{Width: 3, Height: 2, Layout: format.LayoutUYVY}}, nil)
	assert.ErrorIs(t, err, format.ErrInvalidDimension)
}

func TestReportYAMLAndSummary(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "ok.raw"), grayFrame(tiny))
	writeFile(t, filepath.Join(dir, "short.raw"), []byte{1})

	report, err := newTestDriver(t, Options{Geometry: tiny}).Run(context.Background(), dir)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, report.WriteYAML(&buf))
	var doc struct {
		RunID     string `yaml:"run_id"`
		Succeeded int    `yaml:"succeeded"`
		Failed    int    `yaml:"failed"`
		Geometry  struct {
			Width  int    `yaml:"width"`
			Layout string `yaml:"layout"`
		} `yaml:"geometry"`
		Files []struct {
			Input  string `yaml:"input"`
			Status string `yaml:"status"`
			Error  string `yaml:"error"`
		} `yaml:"files"`
	}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, report.RunID, doc.RunID)
	assert.Equal(t, 1, doc.Succeeded)
	assert.Equal(t, 1, doc.Failed)
	assert.Equal(t, 4, doc.Geometry.Width)
	assert.Equal(t, "uyvy", doc.Geometry.Layout)
	require.Len(t, doc.Files, 2)
	assert.Equal(t, "ok", doc.Files[0].Status)
	assert.Equal(t, "failed", doc.Files[1].Status)
	assert.Contains(t, doc.Files[1].Error, "size mismatch")

	buf.Reset()
	report.Summary(&buf)
	assert.Contains(t, buf.String(), "Converted 1/2 files (1 failed, 0 skipped)")
	assert.Contains(t, buf.String(), filepath.Join(dir, "short.raw"))

	path := filepath.Join(t.TempDir(), "report.yaml")
	require.NoError(t, report.SaveYAML(path))
	assert.FileExists(t, path)
}
