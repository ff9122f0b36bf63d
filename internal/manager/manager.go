// Package manager는 플러그인 코어 위의 애플리케이션 계층입니다.
// 내장 어댑터 등록, 동적 플러그인 로드, 압축 작업 실행과 이력 관리를 담당합니다.
package manager

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.uber.org/multierr"

	"github.com/insajin/smart-transfer/internal/adapters"
	"github.com/insajin/smart-transfer/internal/logger"
	"github.com/insajin/smart-transfer/internal/metrics"
	"github.com/insajin/smart-transfer/internal/plugin"
)

// DefaultHistoryLimit은 보관하는 작업 이력의 기본 개수입니다.
const DefaultHistoryLimit = 100

// PluginInfo는 표시 계층에 전달되는 플러그인 요약입니다.
type PluginInfo = plugin.Info

// OperationKind는 작업 종류입니다.
type OperationKind string

const (
	OpCompress   OperationKind = "compress"
	OpDecompress OperationKind = "decompress"
)

// Operation은 완료된 압축/해제 작업 기록입니다.
type Operation struct {
	ID        string        `json:"id" yaml:"id"`
	Kind      OperationKind `json:"kind" yaml:"kind"`
	Plugin    string        `json:"plugin" yaml:"plugin"`
	Source    string        `json:"source" yaml:"source"`
	Target    string        `json:"target" yaml:"target"`
	StartedAt time.Time     `json:"started_at" yaml:"started_at"`
	Duration  time.Duration `json:"duration" yaml:"duration"`
	Error     string        `json:"error,omitempty" yaml:"error,omitempty"`
}

// Succeeded는 작업이 성공했는지 반환합니다.
func (o Operation) Succeeded() bool {
	return o.Error == ""
}

// Manager는 레지스트리, 로더, 메트릭을 묶어 상위 계층에 제공합니다.
type Manager struct {
	registry *plugin.Registry
	loader   *plugin.Loader
	metrics  *metrics.Metrics
	logger   zerolog.Logger

	pluginsDir   string
	opener       plugin.Opener
	replace      bool
	historyLimit int

	mu      sync.Mutex
	history []Operation
}

// Option은 Manager 설정 옵션입니다.
type Option func(*Manager)

// WithLogger는 로거를 설정합니다.
func WithLogger(l zerolog.Logger) Option {
	return func(m *Manager) {
		m.logger = l
	}
}

// WithMetrics는 메트릭 수집기를 설정합니다.
func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Manager) {
		m.metrics = mt
	}
}

// WithPluginsDir은 동적 플러그인 디렉토리를 설정합니다.
func WithPluginsDir(dir string) Option {
	return func(m *Manager) {
		m.pluginsDir = dir
	}
}

// WithOpener는 동적 라이브러리를 여는 함수를 교체합니다.
func WithOpener(open plugin.Opener) Option {
	return func(m *Manager) {
		m.opener = open
	}
}

// WithReplaceOnRegister는 같은 이름의 플러그인을 교체 등록하도록 합니다.
func WithReplaceOnRegister(enabled bool) Option {
	return func(m *Manager) {
		m.replace = enabled
	}
}

// WithHistoryLimit은 보관할 작업 이력 개수를 설정합니다.
func WithHistoryLimit(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.historyLimit = n
		}
	}
}

// New는 새로운 Manager를 생성합니다.
func New(opts ...Option) *Manager {
	m := &Manager{
		logger:       zerolog.Nop(),
		historyLimit: DefaultHistoryLimit,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.metrics == nil {
		m.metrics = metrics.NewMetrics()
	}

	m.registry = plugin.NewRegistry(
		plugin.WithRegistryLogger(m.logger),
		plugin.WithReplaceOnRegister(m.replace),
	)

	loaderOpts := []plugin.LoaderOption{
		plugin.WithPluginsDir(m.pluginsDir),
		plugin.WithLogger(m.logger),
		plugin.WithMetrics(m.metrics),
	}
	if m.opener != nil {
		loaderOpts = append(loaderOpts, plugin.WithOpener(m.opener))
	}
	m.loader = plugin.NewLoader(loaderOpts...)

	return m
}

// Registry는 내부 레지스트리를 반환합니다.
func (m *Manager) Registry() *plugin.Registry {
	return m.registry
}

// Metrics는 메트릭 수집기를 반환합니다.
func (m *Manager) Metrics() *metrics.Metrics {
	return m.metrics
}

// PluginsDir은 동적 플러그인 디렉토리를 반환합니다.
func (m *Manager) PluginsDir() string {
	return m.pluginsDir
}

// register는 핸들을 등록하고 카운터를 갱신합니다.
func (m *Manager) register(name string, h *plugin.Handle) error {
	if err := m.registry.Register(name, h); err != nil {
		m.metrics.RegistrationsFailed.Add(1)
		return err
	}
	m.metrics.Registrations.Add(1)
	return nil
}

// RegisterBuiltins는 내장 어댑터를 순서대로 등록합니다.
// 필수 어댑터의 실패는 모아서 반환하고, 선택 어댑터의 실패는 경고로만 기록합니다.
func (m *Manager) RegisterBuiltins(builtins []adapters.Builtin) error {
	var errs error
	for _, b := range builtins {
		err := m.registerBuiltin(b)
		if err == nil {
			m.logger.Debug().Str("plugin", b.Name).Msg("내장 플러그인 등록 완료")
			continue
		}
		if b.Required {
			m.logger.Error().Err(err).Str("plugin", b.Name).Msg("필수 플러그인 등록 실패")
			errs = multierr.Append(errs, fmt.Errorf("register builtin plugin '%s': %w", b.Name, err))
			continue
		}
		m.logger.Warn().Err(err).Str("plugin", b.Name).Msg("선택 플러그인을 사용할 수 없습니다")
	}
	return errs
}

func (m *Manager) registerBuiltin(b adapters.Builtin) error {
	h, err := plugin.NewBuiltin(b.Factory)
	if err != nil {
		m.metrics.RegistrationsFailed.Add(1)
		return err
	}
	return m.register(b.Name, h)
}

// LoadDynamic은 플러그인 디렉토리의 라이브러리를 로드하여 등록합니다.
// 이미 등록된 이름은 경고 후 건너뜁니다. 등록에 성공한 수를 반환합니다.
func (m *Manager) LoadDynamic() (int, error) {
	handles, err := m.loader.DiscoverAndLoad()
	if err != nil {
		return 0, err
	}

	loaded := 0
	for _, h := range handles {
		name := h.Plugin().Config().Name
		source := h.Source()
		if err := m.register(name, h); err != nil {
			m.logger.Warn().Err(err).Str("plugin", name).Str("path", source).Msg("동적 플러그인 등록 실패, 건너뜁니다")
			continue
		}
		m.logger.Info().Str("plugin", name).Str("path", source).Msg("동적 플러그인 등록 완료")
		loaded++
	}
	return loaded, nil
}

// Skipped는 마지막 탐색에서 로드하지 못한 라이브러리 목록을 반환합니다.
func (m *Manager) Skipped() []plugin.SkippedLibrary {
	return m.loader.Skipped()
}

// ListPlugins는 등록된 플러그인 요약을 이름순으로 반환합니다.
func (m *Manager) ListPlugins() []PluginInfo {
	return m.registry.Infos()
}

// PluginInfo는 이름으로 플러그인 요약을 찾습니다.
func (m *Manager) PluginInfo(name string) (PluginInfo, error) {
	for _, info := range m.registry.Infos() {
		if info.Name == name {
			return info, nil
		}
	}
	return PluginInfo{}, plugin.NotFound("plugin " + name)
}

// PluginForArchive는 파일 확장자로 처리할 플러그인 이름을 찾습니다.
// 여러 플러그인이 일치하면 더 긴 확장자가 우선합니다.
func (m *Manager) PluginForArchive(path string) (string, error) {
	base := strings.ToLower(filepath.Base(path))

	best, bestLen := "", 0
	for _, inst := range m.registry.GetByType(plugin.TypeCompression) {
		ext, ok := plugin.As[plugin.ExtensionProvider](inst)
		if !ok {
			continue
		}
		for _, e := range ext.Extensions() {
			if strings.HasSuffix(base, e) && len(e) > bestLen {
				best, bestLen = inst.Config().Name, len(e)
			}
		}
	}
	if best == "" {
		return "", plugin.NotFound("plugin for " + filepath.Base(path))
	}
	return best, nil
}

// DefaultExtension은 플러그인의 기본 아카이브 확장자를 반환합니다.
func (m *Manager) DefaultExtension(name string) string {
	inst, ok := m.registry.Get(name)
	if !ok {
		return ""
	}
	if ext, ok := plugin.As[plugin.ExtensionProvider](inst); ok {
		return ext.DefaultExtension()
	}
	return ""
}

// compressionInstance는 name의 인스턴스를 찾고 압축 기능을 확인합니다.
func (m *Manager) compressionInstance(name string) (*plugin.Instance, error) {
	inst, ok := m.registry.Get(name)
	if !ok {
		return nil, plugin.NotFound("plugin " + name)
	}
	if _, ok := inst.Compression(); !ok {
		return nil, plugin.NotImplemented("plugin '" + name + "' does not support compression")
	}
	return inst, nil
}

// Compress는 name 플러그인으로 inputs를 output에 압축합니다.
func (m *Manager) Compress(name string, inputs []string, output string, opts plugin.CompressionOptions) (Operation, error) {
	op := m.begin(OpCompress, name, strings.Join(inputs, ","), output)
	log := logger.WithOperation(m.logger, op.ID, name)
	log.Info().Strs("inputs", inputs).Str("output", output).Str("mode", string(opts.Mode)).Msg("압축 시작")

	err := m.withInstance(name, func(inst *plugin.Instance) error {
		return inst.Compress(inputs, output, opts)
	})
	op = m.finish(op, err)
	m.metrics.RecordCompress(op.Duration, err)

	if err != nil {
		log.Error().Err(err).Dur("duration", op.Duration).Msg("압축 실패")
		return op, err
	}
	if info, statErr := os.Stat(output); statErr == nil {
		m.metrics.BytesWritten.Add(info.Size())
	}
	log.Info().Dur("duration", op.Duration).Msg("압축 완료")
	return op, nil
}

// Decompress는 name 플러그인으로 archive를 outputDir에 해제합니다.
func (m *Manager) Decompress(name, archive, outputDir string, overwrite bool) (Operation, error) {
	op := m.begin(OpDecompress, name, archive, outputDir)
	log := logger.WithOperation(m.logger, op.ID, name)
	log.Info().Str("archive", archive).Str("output_dir", outputDir).Bool("overwrite", overwrite).Msg("해제 시작")

	err := m.withInstance(name, func(inst *plugin.Instance) error {
		return inst.Decompress(archive, outputDir, overwrite)
	})
	op = m.finish(op, err)
	m.metrics.RecordDecompress(op.Duration, err)

	if err != nil {
		log.Error().Err(err).Dur("duration", op.Duration).Msg("해제 실패")
		return op, err
	}
	log.Info().Dur("duration", op.Duration).Msg("해제 완료")
	return op, nil
}

func (m *Manager) withInstance(name string, fn func(*plugin.Instance) error) error {
	inst, err := m.compressionInstance(name)
	if err != nil {
		return err
	}
	return fn(inst)
}

func (m *Manager) begin(kind OperationKind, name, source, target string) Operation {
	return Operation{
		ID:        uuid.New().String(),
		Kind:      kind,
		Plugin:    name,
		Source:    source,
		Target:    target,
		StartedAt: time.Now(),
	}
}

// finish는 작업 시간을 기록하고 이력에 추가합니다.
func (m *Manager) finish(op Operation, err error) Operation {
	op.Duration = time.Since(op.StartedAt)
	if err != nil {
		op.Error = err.Error()
	}

	m.mu.Lock()
	m.history = append(m.history, op)
	if over := len(m.history) - m.historyLimit; over > 0 {
		m.history = append([]Operation(nil), m.history[over:]...)
	}
	m.mu.Unlock()
	return op
}

// History는 작업 이력을 오래된 순으로 반환합니다.
func (m *Manager) History() []Operation {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Operation, len(m.history))
	copy(out, m.history)
	return out
}

// Names는 등록된 플러그인 이름을 반환합니다.
func (m *Manager) Names() []string {
	return m.registry.Names()
}

// Shutdown은 모든 플러그인을 정리하고 해제합니다.
func (m *Manager) Shutdown() error {
	m.logger.Debug().Int("count", m.registry.Count()).Msg("플러그인 정리 시작")
	return m.registry.Close()
}
