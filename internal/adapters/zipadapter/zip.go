// Package zipadapter는 ZIP 아카이브를 프로세스 안에서 생성/해제하는 압축 플러그인입니다.
package zipadapter

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"
	"github.com/rs/zerolog"

	"github.com/insajin/smart-transfer/internal/archive"
	"github.com/insajin/smart-transfer/internal/plugin"
)

// Name은 레지스트리에 등록되는 이름입니다.
const Name = "zip"

const version = "1.0.0"

// Adapter는 ZIP 압축 플러그인입니다.
// 상태가 없으므로 여러 고루틴에서 동시에 사용해도 안전합니다.
type Adapter struct {
	logger zerolog.Logger
}

// Option은 Adapter 설정 옵션입니다.
type Option func(*Adapter)

// WithLogger는 로거를 설정합니다.
func WithLogger(logger zerolog.Logger) Option {
	return func(a *Adapter) {
		a.logger = logger
	}
}

// New는 ZIP 어댑터를 생성합니다.
func New(opts ...Option) *Adapter {
	a := &Adapter{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = a.logger.With().Str("adapter", Name).Logger()
	return a
}

// Factory는 레지스트리용 생성자입니다.
func Factory(opts ...Option) plugin.Factory {
	return func() plugin.Plugin { return New(opts...) }
}

var (
	_ plugin.CompressionPlugin = (*Adapter)(nil)
	_ plugin.ExtensionProvider = (*Adapter)(nil)
)

func (a *Adapter) Config() plugin.Config {
	return plugin.Config{
		Name:        Name,
		Description: "Handles ZIP file compression and decompression",
		Version:     version,
		Type:        plugin.TypeCompression,
	}
}

func (a *Adapter) Metadata() plugin.Metadata {
	return plugin.Metadata{
		Name:        Name,
		Version:     version,
		Author:      "Smart Transfer Team",
		Description: "Deflate-compressed ZIP archives with recursive directory support",
		Type:        plugin.TypeCompression,
		Platforms:   plugin.AllPlatforms(),
	}
}

func (a *Adapter) Initialize() error { return nil }

func (a *Adapter) Cleanup() error { return nil }

func (a *Adapter) Extensions() []string { return []string{".zip"} }

func (a *Adapter) DefaultExtension() string { return ".zip" }

// levelFor는 옵션에서 flate 레벨을 계산합니다.
func levelFor(opts plugin.CompressionOptions) (int, error) {
	def := flate.DefaultCompression
	switch opts.Mode {
	case plugin.ModeFast:
		def = flate.BestSpeed
	case plugin.ModeBest:
		def = flate.BestCompression
	}
	level := opts.LevelOr(def)
	if level < flate.HuffmanOnly || level > flate.BestCompression {
		return 0, plugin.InvalidInput("zip level must be between -2 and 9")
	}
	return level, nil
}

// Compress는 inputs를 output ZIP 파일로 압축합니다.
// 디렉토리는 재귀적으로 포함되며 항목 이름은 입력 이름 기준 상대 경로입니다.
func (a *Adapter) Compress(inputs []string, output string, opts plugin.CompressionOptions) error {
	if opts.HasPassword() {
		return plugin.InvalidInput("zip adapter does not support password encryption")
	}
	level, err := levelFor(opts)
	if err != nil {
		return err
	}
	entries, err := archive.Collect(inputs)
	if err != nil {
		return err
	}
	if err := archive.PrepareOutput(output); err != nil {
		return err
	}

	outAbs, _ := filepath.Abs(output)

	// 실패하면 기존 output은 그대로 남습니다.
	err = archive.WriteFile(output, true, func(w io.Writer) error {
		zw := zip.NewWriter(w)
		zw.RegisterCompressor(zip.Deflate, func(w io.Writer) (io.WriteCloser, error) {
			return flate.NewWriter(w, level)
		})

		for _, e := range entries {
			if abs, _ := filepath.Abs(e.Path); abs == outAbs {
				continue
			}
			if err := writeEntry(zw, e); err != nil {
				_ = zw.Close()
				return err
			}
		}

		if err := zw.Close(); err != nil {
			return plugin.ExecutionError("failed to finish zip archive", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	a.logger.Debug().Int("entries", len(entries)).Str("output", output).Int("level", level).Msg("ZIP 압축 완료")
	return nil
}

func writeEntry(zw *zip.Writer, e archive.Entry) error {
	hdr, err := zip.FileInfoHeader(e.Info)
	if err != nil {
		return plugin.Other("failed to build zip header for "+e.Path, err)
	}
	hdr.Name = e.Name
	if e.IsDir() {
		hdr.Name += "/"
		hdr.Method = zip.Store
		_, err := zw.CreateHeader(hdr)
		if err != nil {
			return plugin.ExecutionError("failed to add "+e.Name, err)
		}
		return nil
	}
	hdr.Method = zip.Deflate

	w, err := zw.CreateHeader(hdr)
	if err != nil {
		return plugin.ExecutionError("failed to add "+e.Name, err)
	}
	src, err := os.Open(e.Path)
	if err != nil {
		return plugin.Other("failed to open "+e.Path, err)
	}
	defer src.Close()

	if _, err := io.Copy(w, src); err != nil {
		return plugin.ExecutionError("failed to compress "+e.Name, err)
	}
	return nil
}

// Decompress는 archivePath를 outputDir에 해제합니다.
// overwrite가 false이면 기존 파일과 겹치는 항목이 하나라도 있을 때 아무것도 쓰지 않고 AlreadyExists를 반환합니다.
func (a *Adapter) Decompress(archivePath, outputDir string, overwrite bool) error {
	if _, err := archive.OpenArchive(archivePath); err != nil {
		return err
	}

	// 안전하지 않은 항목 이름이 있어도 reader가 반환될 수 있으며 SafeJoin이 거부합니다.
	zr, err := zip.OpenReader(archivePath)
	if err != nil && zr == nil {
		return plugin.ExecutionError("invalid zip archive "+archivePath, err)
	}
	defer zr.Close()

	// 쓰기 전에 모든 항목 경로를 검증합니다.
	names := make([]string, 0, len(zr.File))
	for _, zf := range zr.File {
		if _, err := archive.SafeJoin(outputDir, zf.Name); err != nil {
			return err
		}
		names = append(names, zf.Name)
	}

	if err := archive.EnsureDir(outputDir); err != nil {
		return err
	}
	if !overwrite {
		if err := archive.CheckCollisions(outputDir, names); err != nil {
			return err
		}
	}

	for _, zf := range zr.File {
		if err := extract(zf, outputDir); err != nil {
			return err
		}
	}

	a.logger.Debug().Int("entries", len(zr.File)).Str("dir", outputDir).Msg("ZIP 해제 완료")
	return nil
}

func extract(zf *zip.File, outputDir string) error {
	target, err := archive.SafeJoin(outputDir, zf.Name)
	if err != nil {
		return err
	}

	if zf.FileInfo().IsDir() || strings.HasSuffix(zf.Name, "/") {
		if err := os.MkdirAll(target, 0o755); err != nil {
			return plugin.Other("failed to create "+target, err)
		}
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return plugin.Other("failed to create "+filepath.Dir(target), err)
	}

	rc, err := zf.Open()
	if err != nil {
		return plugin.ExecutionError("failed to read "+zf.Name, err)
	}
	defer rc.Close()

	mode := zf.Mode().Perm()
	if mode == 0 {
		mode = 0o644
	}
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return plugin.Other("failed to create "+target, err)
	}

	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return plugin.ExecutionError("failed to extract "+zf.Name, err)
	}
	if err := out.Close(); err != nil {
		return plugin.Other("failed to close "+target, err)
	}
	return nil
}
