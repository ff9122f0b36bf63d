// Package lz4adapter는 단일 파일을 LZ4 프레임으로 압축/해제하는 플러그인입니다.
package lz4adapter

import (
	"io"
	"os"
	"path/filepath"

	"github.com/pierrec/lz4"
	"github.com/rs/zerolog"

	"github.com/insajin/smart-transfer/internal/archive"
	"github.com/insajin/smart-transfer/internal/plugin"
)

// Name은 레지스트리에 등록되는 이름입니다.
const Name = "lz4"

const version = "1.0.0"

// Adapter는 LZ4 압축 플러그인입니다.
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

// New는 LZ4 어댑터를 생성합니다.
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
		Description: "LZ4 frame compression plugin",
		Version:     version,
		Type:        plugin.TypeCompression,
	}
}

func (a *Adapter) Metadata() plugin.Metadata {
	return plugin.Metadata{
		Name:        "LZ4",
		Version:     version,
		Author:      "Smart Transfer Team",
		Description: "Very fast single-file compression using LZ4 frames",
		Type:        plugin.TypeCompression,
		Platforms:   plugin.AllPlatforms(),
	}
}

func (a *Adapter) Initialize() error { return nil }

func (a *Adapter) Cleanup() error { return nil }

func (a *Adapter) Extensions() []string { return []string{".lz4"} }

func (a *Adapter) DefaultExtension() string { return ".lz4" }

// compressionLevel은 옵션에서 LZ4 압축 레벨을 계산합니다.
// 0은 고속 모드, 1 이상은 high compression 모드입니다.
func compressionLevel(opts plugin.CompressionOptions) (int, error) {
	def := 0
	switch opts.Mode {
	case plugin.ModeNormal:
		def = 4
	case plugin.ModeBest:
		def = 9
	}
	level := opts.LevelOr(def)
	if level < 0 || level > 16 {
		return 0, plugin.InvalidInput("lz4 level must be between 0 and 16")
	}
	return level, nil
}

// Compress는 정확히 하나의 일반 파일을 output에 압축합니다.
func (a *Adapter) Compress(inputs []string, output string, opts plugin.CompressionOptions) error {
	input, info, err := archive.SingleFile(inputs)
	if err != nil {
		return err
	}
	level, err := compressionLevel(opts)
	if err != nil {
		return err
	}
	if err := archive.PrepareOutput(output); err != nil {
		return err
	}

	src, err := os.Open(input)
	if err != nil {
		return plugin.Other("failed to open "+input, err)
	}
	defer src.Close()

	err = archive.WriteFile(output, true, func(w io.Writer) error {
		zw := lz4.NewWriter(w)
		zw.Header.CompressionLevel = level
		zw.Header.Size = uint64(info.Size())
		if _, err := io.Copy(zw, src); err != nil {
			_ = zw.Close()
			return plugin.ExecutionError("failed to compress "+input, err)
		}
		if err := zw.Close(); err != nil {
			return plugin.ExecutionError("failed to finish lz4 frame", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	a.logger.Debug().Str("input", input).Str("output", output).Int("level", level).Msg("LZ4 압축 완료")
	return nil
}

// Decompress는 archivePath를 outputDir/<확장자를 뗀 이름>으로 해제합니다.
func (a *Adapter) Decompress(archivePath, outputDir string, overwrite bool) error {
	if _, err := archive.OpenArchive(archivePath); err != nil {
		return err
	}
	if err := archive.EnsureDir(outputDir); err != nil {
		return err
	}
	target := filepath.Join(outputDir, archive.Stem(archivePath))

	src, err := os.Open(archivePath)
	if err != nil {
		return plugin.Other("failed to open "+archivePath, err)
	}
	defer src.Close()

	err = archive.WriteFile(target, overwrite, func(w io.Writer) error {
		if _, err := io.Copy(w, lz4.NewReader(src)); err != nil {
			return plugin.ExecutionError("failed to decompress "+archivePath, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	a.logger.Debug().Str("archive", archivePath).Str("output", target).Msg("LZ4 해제 완료")
	return nil
}
