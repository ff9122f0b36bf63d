// Package zstdadapter는 단일 파일을 Zstandard 스트림으로 압축/해제하는 플러그인입니다.
package zstdadapter

import (
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog"

	"github.com/insajin/smart-transfer/internal/archive"
	"github.com/insajin/smart-transfer/internal/plugin"
)

// Name은 레지스트리에 등록되는 이름입니다.
const Name = "zstd"

const version = "1.0.0"

// Adapter는 Zstandard 압축 플러그인입니다.
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

// New는 Zstandard 어댑터를 생성합니다.
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
		Description: "Zstandard compression plugin",
		Version:     version,
		Type:        plugin.TypeCompression,
	}
}

func (a *Adapter) Metadata() plugin.Metadata {
	return plugin.Metadata{
		Name:        "Zstandard",
		Version:     version,
		Author:      "Smart Transfer Team",
		Description: "High-performance single-file compression using the Zstandard algorithm",
		Type:        plugin.TypeCompression,
		Platforms:   plugin.AllPlatforms(),
	}
}

func (a *Adapter) Initialize() error { return nil }

func (a *Adapter) Cleanup() error { return nil }

func (a *Adapter) Extensions() []string { return []string{".zst", ".zstd"} }

func (a *Adapter) DefaultExtension() string { return ".zst" }

// encoderLevel은 옵션에서 인코더 레벨을 계산합니다.
// Level은 zstd 숫자 레벨(1~22)이며 설정되지 않으면 Mode를 따릅니다.
func encoderLevel(opts plugin.CompressionOptions) (zstd.EncoderLevel, error) {
	if opts.Level != nil {
		if *opts.Level < 1 || *opts.Level > 22 {
			return 0, plugin.InvalidInput("zstd level must be between 1 and 22")
		}
		return zstd.EncoderLevelFromZstd(*opts.Level), nil
	}
	switch opts.Mode {
	case plugin.ModeFast:
		return zstd.SpeedFastest, nil
	case plugin.ModeBest:
		return zstd.SpeedBestCompression, nil
	default:
		return zstd.SpeedDefault, nil
	}
}

// Compress는 정확히 하나의 일반 파일을 output에 압축합니다.
func (a *Adapter) Compress(inputs []string, output string, opts plugin.CompressionOptions) error {
	input, _, err := archive.SingleFile(inputs)
	if err != nil {
		return err
	}
	level, err := encoderLevel(opts)
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
		enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(level))
		if err != nil {
			return plugin.ExecutionError("failed to create zstd encoder", err)
		}
		if _, err := io.Copy(enc, src); err != nil {
			enc.Close()
			return plugin.ExecutionError("failed to compress "+input, err)
		}
		if err := enc.Close(); err != nil {
			return plugin.ExecutionError("failed to finish zstd stream", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	a.logger.Debug().Str("input", input).Str("output", output).Str("level", level.String()).Msg("ZSTD 압축 완료")
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
		dec, err := zstd.NewReader(src)
		if err != nil {
			return plugin.ExecutionError("failed to create zstd decoder", err)
		}
		defer dec.Close()
		if _, err := io.Copy(w, dec); err != nil {
			return plugin.ExecutionError("failed to decompress "+archivePath, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	a.logger.Debug().Str("archive", archivePath).Str("output", target).Msg("ZSTD 해제 완료")
	return nil
}
