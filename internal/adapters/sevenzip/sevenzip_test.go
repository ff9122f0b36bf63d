package sevenzip

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insajin/smart-transfer/internal/cli"
	"github.com/insajin/smart-transfer/internal/plugin"
)

// requireBinary는 7z가 설치되지 않은 환경에서 테스트를 건너뜁니다.
func requireBinary(t *testing.T) *Adapter {
	t.Helper()
	for _, b := range DefaultBinaries {
		if _, err := cli.LookPath(b); err == nil {
			a := New()
			require.NoError(t, a.Initialize())
			return a
		}
	}
	t.Skip("7z executable not installed")
	return nil
}

func writeFile(t *testing.T, p, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
}

func readFile(t *testing.T, p string) string {
	t.Helper()
	data, err := os.ReadFile(p)
	require.NoError(t, err)
	return string(data)
}

func TestInitializeMissingBinary(t *testing.T) {
	a := New(WithBinary("/nonexistent/path/to/7z-binary"))

	err := a.Initialize()
	assert.ErrorIs(t, err, plugin.ErrExecution)
	assert.Contains(t, err.Error(), "7z executable not found")
	assert.Empty(t, a.Binary())
}

func TestOperationsRequireInitialize(t *testing.T) {
	a := New()
	err := a.Compress([]string{"a"}, "b.7z", plugin.DefaultOptions())
	assert.Equal(t, plugin.KindOther, plugin.KindOf(err))

	err = a.Decompress("a.7z", "out", false)
	assert.Equal(t, plugin.KindOther, plugin.KindOf(err))
}

func TestCompressArgs(t *testing.T) {
	tests := []struct {
		name string
		opts plugin.CompressionOptions
		want []string
	}{
		{
			name: "normal",
			opts: plugin.DefaultOptions(),
			want: []string{"a", "-t7z", "-mx=5", "-y", "--", "/out.7z", "/in"},
		},
		{
			name: "fast",
			opts: plugin.CompressionOptions{Mode: plugin.ModeFast},
			want: []string{"a", "-t7z", "-mx=1", "-y", "--", "/out.7z", "/in"},
		},
		{
			name: "everything",
			opts: plugin.CompressionOptions{
				Mode:      plugin.ModeBest,
				Password:  "pw",
				SplitSize: 1024,
				Extra:     map[string]string{"method": "LZMA2"},
			},
			want: []string{"a", "-t7z", "-mx=9", "-m0=LZMA2", "-ppw", "-mhe=on", "-v1024b", "-y", "--", "/out.7z", "/in"},
		},
		{
			name: "explicit level",
			opts: plugin.DefaultOptions().WithLevel(3),
			want: []string{"a", "-t7z", "-mx=3", "-y", "--", "/out.7z", "/in"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := compressArgs([]string{"/in"}, "/out.7z", tt.opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := compressArgs([]string{"/in"}, "/out.7z", plugin.DefaultOptions().WithLevel(11))
	assert.ErrorIs(t, err, plugin.ErrInvalidInput)
	_, err = compressArgs([]string{"/in"}, "/out.7z", plugin.CompressionOptions{SplitSize: -1})
	assert.ErrorIs(t, err, plugin.ErrInvalidInput)
}

func TestExtractArgs(t *testing.T) {
	assert.Equal(t, []string{"x", "-o/dst", "-aos", "-y", "--", "/a.7z"}, extractArgs("/a.7z", "/dst", false))
	assert.Equal(t, []string{"x", "-o/dst", "-aoa", "-y", "--", "/a.7z"}, extractArgs("/a.7z", "/dst", true))
}

func TestRoundTrip(t *testing.T) {
	a := requireBinary(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "src", "a.txt"), "alpha")
	writeFile(t, filepath.Join(dir, "src", "nested", "b.txt"), "bravo")

	out := filepath.Join(dir, "out.7z")
	require.NoError(t, a.Compress([]string{filepath.Join(dir, "src")}, out, plugin.DefaultOptions()))

	extract := filepath.Join(dir, "extract")
	require.NoError(t, a.Decompress(out, extract, false))
	assert.Equal(t, "alpha", readFile(t, filepath.Join(extract, "src", "a.txt")))
	assert.Equal(t, "bravo", readFile(t, filepath.Join(extract, "src", "nested", "b.txt")))
}

func TestDecompressKeepsExisting(t *testing.T) {
	a := requireBinary(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), "new")
	out := filepath.Join(dir, "out.7z")
	require.NoError(t, a.Compress([]string{filepath.Join(dir, "a.txt")}, out, plugin.DefaultOptions()))

	extract := filepath.Join(dir, "extract")
	writeFile(t, filepath.Join(extract, "a.txt"), "old")

	require.NoError(t, a.Decompress(out, extract, false))
	assert.Equal(t, "old", readFile(t, filepath.Join(extract, "a.txt")))

	require.NoError(t, a.Decompress(out, extract, true))
	assert.Equal(t, "new", readFile(t, filepath.Join(extract, "a.txt")))
}

func TestErrors(t *testing.T) {
	a := requireBinary(t)
	dir := t.TempDir()

	assert.ErrorIs(t, a.Compress(nil, filepath.Join(dir, "o.7z"), plugin.DefaultOptions()), plugin.ErrInvalidInput)
	assert.ErrorIs(t, a.Decompress(filepath.Join(dir, "missing.7z"), dir, false), plugin.ErrNotFound)

	bad := filepath.Join(dir, "bad.7z")
	writeFile(t, bad, "garbage")
	assert.ErrorIs(t, a.Decompress(bad, filepath.Join(dir, "x"), false), plugin.ErrExecution)
}

func TestRemoveOutputsClearsVolumes(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "backup.7z")
	for _, name := range []string{"backup.7z", "backup.7z.001", "backup.7z.002", "backup.7z.bak", "backup.7z.1", "other.7z.001"} {
		writeFile(t, filepath.Join(dir, name), "x")
	}

	require.NoError(t, removeOutputs(out))

	assert.NoFileExists(t, out)
	assert.NoFileExists(t, filepath.Join(dir, "backup.7z.001"))
	assert.NoFileExists(t, filepath.Join(dir, "backup.7z.002"))
	assert.FileExists(t, filepath.Join(dir, "backup.7z.bak"))
	assert.FileExists(t, filepath.Join(dir, "backup.7z.1"))
	assert.FileExists(t, filepath.Join(dir, "other.7z.001"))

	// 아무것도 없어도 에러가 아닙니다.
	require.NoError(t, removeOutputs(out))
}

func TestSplitRecompress(t *testing.T) {
	a := requireBinary(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.txt"), strings.Repeat("smart-transfer ", 4096))
	out := filepath.Join(dir, "split.7z")
	opts := plugin.DefaultOptions()
	opts.SplitSize = 4096
	opts = opts.WithLevel(0)

	require.NoError(t, a.Compress([]string{filepath.Join(dir, "a.txt")}, out, opts))
	require.FileExists(t, out+".001")
	require.NoError(t, a.Compress([]string{filepath.Join(dir, "a.txt")}, out, opts))

	extract := filepath.Join(dir, "extract")
	require.NoError(t, a.Decompress(out+".001", extract, true))
	got, err := os.ReadFile(filepath.Join(extract, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("smart-transfer ", 4096), string(got))
}
