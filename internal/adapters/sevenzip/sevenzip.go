// Package sevenzip은 외부 7z 실행 파일로 아카이브를 생성/해제하는 압축 플러그인입니다.
package sevenzip

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/insajin/smart-transfer/internal/archive"
	"github.com/insajin/smart-transfer/internal/cli"
	"github.com/insajin/smart-transfer/internal/plugin"
)

// Name은 레지스트리에 등록되는 이름입니다.
const Name = "7z"

const version = "1.0.0"

// DefaultBinaries는 실행 파일이 설정되지 않았을 때 순서대로 찾는 이름입니다.
var DefaultBinaries = []string{"7z", "7zz", "7za"}

// 7z 종료 코드
const (
	exitOK      = 0
	exitWarning = 1
)

// Adapter는 7z 압축 플러그인입니다.
type Adapter struct {
	binary  string
	timeout time.Duration
	logger  zerolog.Logger

	mu       sync.RWMutex
	resolved string
	exec     *cli.Executor
}

// Option은 Adapter 설정 옵션입니다.
type Option func(*Adapter)

// WithLogger는 로거를 설정합니다.
func WithLogger(logger zerolog.Logger) Option {
	return func(a *Adapter) {
		a.logger = logger
	}
}

// WithBinary는 7z 실행 파일 이름 또는 경로를 설정합니다.
// 비어있으면 DefaultBinaries를 순서대로 찾습니다.
func WithBinary(binary string) Option {
	return func(a *Adapter) {
		a.binary = binary
	}
}

// WithTimeout은 명령 하나의 제한 시간을 설정합니다. 0이면 제한하지 않습니다.
func WithTimeout(d time.Duration) Option {
	return func(a *Adapter) {
		a.timeout = d
	}
}

// New는 7z 어댑터를 생성합니다. 실행 파일은 Initialize에서 확인합니다.
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
		Description: "Handles 7z file compression and decompression",
		Version:     version,
		Type:        plugin.TypeCompression,
	}
}

func (a *Adapter) Metadata() plugin.Metadata {
	return plugin.Metadata{
		Name:        "7-Zip",
		Version:     version,
		Author:      "Smart Transfer Team",
		Description: "7z archives via the external 7-Zip executable (password, split volumes, methods)",
		Type:        plugin.TypeCompression,
		Platforms:   plugin.AllPlatforms(),
	}
}

func (a *Adapter) Extensions() []string { return []string{".7z"} }

func (a *Adapter) DefaultExtension() string { return ".7z" }

// Initialize는 7z 실행 파일을 찾습니다. 없으면 ExecutionError입니다.
func (a *Adapter) Initialize() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.resolved != "" {
		return nil
	}

	candidates := DefaultBinaries
	if a.binary != "" {
		candidates = []string{a.binary}
	}

	var lastErr error
	for _, c := range candidates {
		path, err := cli.LookPath(c)
		if err == nil {
			a.resolved = path
			a.exec = cli.NewExecutor(a.logger)
			a.logger.Debug().Str("binary", path).Msg("7z 실행 파일 확인")
			return nil
		}
		lastErr = err
	}
	return plugin.ExecutionError("7z executable not found (tried "+strings.Join(candidates, ", ")+")", lastErr)
}

// Cleanup은 확인된 실행 파일 경로를 잊습니다.
func (a *Adapter) Cleanup() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.resolved = ""
	a.exec = nil
	return nil
}

// Binary는 Initialize에서 확인된 실행 파일 경로를 반환합니다.
func (a *Adapter) Binary() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.resolved
}

func (a *Adapter) runner() (string, *cli.Executor, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.resolved == "" || a.exec == nil {
		return "", nil, plugin.Other("7z adapter not initialized", nil)
	}
	return a.resolved, a.exec, nil
}

// mxLevel은 옵션에서 -mx 값을 계산합니다.
func mxLevel(opts plugin.CompressionOptions) (int, error) {
	def := 5
	switch opts.Mode {
	case plugin.ModeFast:
		def = 1
	case plugin.ModeBest:
		def = 9
	}
	level := opts.LevelOr(def)
	if level < 0 || level > 9 {
		return 0, plugin.InvalidInput("7z level must be between 0 and 9")
	}
	return level, nil
}

// compressArgs는 "7z a" 인자 목록을 만듭니다.
func compressArgs(inputs []string, output string, opts plugin.CompressionOptions) ([]string, error) {
	level, err := mxLevel(opts)
	if err != nil {
		return nil, err
	}
	if opts.SplitSize < 0 {
		return nil, plugin.InvalidInput("split size must not be negative")
	}

	args := []string{"a", "-t7z", "-mx=" + strconv.Itoa(level)}
	if method, ok := opts.ExtraValue("method"); ok && method != "" {
		args = append(args, "-m0="+method)
	}
	if opts.HasPassword() {
		args = append(args, "-p"+opts.Password, "-mhe=on")
	}
	if opts.SplitSize > 0 {
		args = append(args, fmt.Sprintf("-v%db", opts.SplitSize))
	}
	args = append(args, "-y", "--", output)
	args = append(args, inputs...)
	return args, nil
}

// extractArgs는 "7z x" 인자 목록을 만듭니다.
// overwrite가 false이면 -aos로 기존 파일을 유지하고 해당 항목을 건너뜁니다.
func extractArgs(archivePath, outputDir string, overwrite bool) []string {
	policy := "-aos"
	if overwrite {
		policy = "-aoa"
	}
	return []string{"x", "-o" + outputDir, policy, "-y", "--", archivePath}
}

// Compress는 inputs를 output 7z 아카이브로 압축합니다. 기존 output은 대체됩니다.
func (a *Adapter) Compress(inputs []string, output string, opts plugin.CompressionOptions) error {
	binary, ex, err := a.runner()
	if err != nil {
		return err
	}
	// 입력 검증만 하고 디렉토리 탐색은 7z에 맡깁니다.
	if _, err := archive.Collect(inputs); err != nil {
		return err
	}
	if err := archive.PrepareOutput(output); err != nil {
		return err
	}

	absInputs := make([]string, len(inputs))
	for i, in := range inputs {
		abs, err := filepath.Abs(in)
		if err != nil {
			return plugin.Other("failed to resolve "+in, err)
		}
		absInputs[i] = abs
	}
	absOutput, err := filepath.Abs(output)
	if err != nil {
		return plugin.Other("failed to resolve "+output, err)
	}

	args, err := compressArgs(absInputs, absOutput, opts)
	if err != nil {
		return err
	}

	// "7z a"는 기존 아카이브에 항목을 추가하고 기존 분할 볼륨이 있으면 실패하므로 먼저 지웁니다.
	if err := removeOutputs(absOutput); err != nil {
		return plugin.Other("failed to replace "+output, err)
	}

	return a.run(ex, binary, args, opts.Password)
}

// removeOutputs는 output과 분할 볼륨(output.001, output.002, ...)을 지웁니다.
func removeOutputs(output string) error {
	if err := os.Remove(output); err != nil && !os.IsNotExist(err) {
		return err
	}
	dirEntries, err := os.ReadDir(filepath.Dir(output))
	if err != nil {
		return err
	}
	prefix := filepath.Base(output) + "."
	for _, de := range dirEntries {
		if de.IsDir() || !isVolume(de.Name(), prefix) {
			continue
		}
		if err := os.Remove(filepath.Join(filepath.Dir(output), de.Name())); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

func isVolume(name, prefix string) bool {
	suffix, ok := strings.CutPrefix(name, prefix)
	if !ok || len(suffix) < 3 {
		return false
	}
	for _, c := range suffix {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// Decompress는 archivePath를 outputDir에 해제합니다.
func (a *Adapter) Decompress(archivePath, outputDir string, overwrite bool) error {
	binary, ex, err := a.runner()
	if err != nil {
		return err
	}
	if _, err := archive.OpenArchive(archivePath); err != nil {
		return err
	}
	if err := archive.EnsureDir(outputDir); err != nil {
		return err
	}
	return a.run(ex, binary, extractArgs(archivePath, outputDir, overwrite), "")
}

func (a *Adapter) run(ex *cli.Executor, binary string, args []string, password string) error {
	res, err := ex.Run(context.Background(), cli.Request{
		Binary:  binary,
		Args:    args,
		Timeout: a.timeout,
		Redact:  []string{password},
	})
	if err != nil {
		detail := "failed to run " + binary
		if res != nil && res.Diagnostic() != "" {
			detail += ": " + strings.TrimSpace(res.Diagnostic())
		}
		return plugin.ExecutionError(detail, err)
	}

	switch res.ExitCode {
	case exitOK:
		return nil
	case exitWarning:
		a.logger.Warn().Str("diagnostic", strings.TrimSpace(res.Diagnostic())).Msg("7z 경고와 함께 완료")
		return nil
	default:
		return plugin.ExecutionError(
			fmt.Sprintf("7z exited with code %d: %s", res.ExitCode, strings.TrimSpace(res.Diagnostic())),
			nil,
		)
	}
}
