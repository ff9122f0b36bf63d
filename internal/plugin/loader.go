package plugin

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/insajin/smart-transfer/internal/metrics"
	"github.com/rs/zerolog"
)

// Opener는 경로의 동적 라이브러리를 엽니다.
type Opener func(path string) (Library, error)

// SkippedLibrary는 탐색 중 로드에 실패하여 건너뛴 파일입니다.
type SkippedLibrary struct {
	Path string
	Err  error
}

// Loader는 플러그인 디렉토리에서 동적 라이브러리를 탐색하고 로드합니다.
type Loader struct {
	// pluginsDir는 DiscoverAndLoad가 탐색할 디렉토리 경로입니다.
	pluginsDir string
	// open은 라이브러리를 여는 함수입니다. 기본값은 플랫폼 로더입니다.
	open Opener
	// logger는 구조화된 로거입니다.
	logger zerolog.Logger
	// metrics는 로드/스킵 카운터입니다. nil일 수 있습니다.
	metrics *metrics.Metrics

	mu      sync.Mutex
	skipped []SkippedLibrary
}

// LoaderOption은 Loader 설정 옵션입니다.
type LoaderOption func(*Loader)

// WithPluginsDir은 플러그인 디렉토리 경로를 설정합니다.
func WithPluginsDir(dir string) LoaderOption {
	return func(l *Loader) {
		l.pluginsDir = dir
	}
}

// WithLogger는 로거를 설정합니다.
func WithLogger(logger zerolog.Logger) LoaderOption {
	return func(l *Loader) {
		l.logger = logger
	}
}

// WithOpener는 라이브러리를 여는 함수를 교체합니다.
func WithOpener(open Opener) LoaderOption {
	return func(l *Loader) {
		l.open = open
	}
}

// WithMetrics는 로드 카운터를 기록할 Metrics를 설정합니다.
func WithMetrics(m *metrics.Metrics) LoaderOption {
	return func(l *Loader) {
		l.metrics = m
	}
}

// NewLoader는 새로운 플러그인 로더를 생성합니다.
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		open:   openLibrary,
		logger: zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// PluginsDir는 설정된 플러그인 디렉토리를 반환합니다.
func (l *Loader) PluginsDir() string {
	return l.pluginsDir
}

// LibraryExtension은 현재 OS의 동적 라이브러리 확장자를 반환합니다.
func LibraryExtension() string {
	return libraryExtensionFor(runtime.GOOS)
}

func libraryExtensionFor(goos string) string {
	switch goos {
	case "windows":
		return ".dll"
	case "darwin":
		return ".dylib"
	default:
		// Linux, FreeBSD 등
		return ".so"
	}
}

// IsLibrary는 경로가 현재 플랫폼의 라이브러리 확장자를 가지는지 반환합니다.
func IsLibrary(path string) bool {
	return strings.EqualFold(filepath.Ext(path), LibraryExtension())
}

// Load는 path의 라이브러리를 열고 생성자 심볼을 호출하여 Handle로 감쌉니다.
func (l *Loader) Load(path string) (*Handle, error) {
	lib, err := l.open(path)
	if err != nil {
		return nil, ExecutionError("failed to open plugin library "+path, err)
	}

	sym, err := lib.Lookup(ConstructorSymbol)
	if err != nil {
		return nil, Other(fmt.Sprintf("%s in %s", ConstructorSymbol, path),
			fmt.Errorf("%w: %v", ErrPluginSymbolNotFound, err))
	}
	factory, ok := asFactory(sym)
	if !ok {
		return nil, Other(fmt.Sprintf("symbol '%s' in %s has type %T", ConstructorSymbol, path, sym), ErrInvalidPlugin)
	}

	// 소멸자는 선택이지만, 있다면 시그니처가 맞아야 합니다.
	var destroy Destructor
	if dsym, err := lib.Lookup(DestructorSymbol); err == nil {
		d, ok := asDestructor(dsym)
		if !ok {
			return nil, Other(fmt.Sprintf("symbol '%s' in %s has type %T", DestructorSymbol, path, dsym), ErrInvalidPlugin)
		}
		destroy = d
	}

	p, err := construct(factory)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return newHandle(p, lib, path, destroy), nil
}

// asFactory는 심볼을 Factory로 변환합니다.
// 함수 export와 변수(포인터) export를 모두 허용합니다.
func asFactory(sym any) (Factory, bool) {
	switch f := sym.(type) {
	case func() Plugin:
		return f, f != nil
	case *func() Plugin:
		if f == nil || *f == nil {
			return nil, false
		}
		return *f, true
	case Factory:
		return f, f != nil
	case *Factory:
		if f == nil || *f == nil {
			return nil, false
		}
		return *f, true
	default:
		return nil, false
	}
}

// asDestructor는 심볼을 Destructor로 변환합니다.
func asDestructor(sym any) (Destructor, bool) {
	switch d := sym.(type) {
	case func(Plugin):
		return d, d != nil
	case *func(Plugin):
		if d == nil || *d == nil {
			return nil, false
		}
		return *d, true
	case Destructor:
		return d, d != nil
	default:
		return nil, false
	}
}

// DiscoverAndLoad는 설정된 플러그인 디렉토리에서 플러그인을 탐색하고 로드합니다.
func (l *Loader) DiscoverAndLoad() ([]*Handle, error) {
	return l.Discover(l.pluginsDir)
}

// Discover는 dir에서 로드에 성공한 모든 플러그인을 반환합니다.
// 디렉토리가 없으면 빈 결과를 반환하고, 개별 파일 로드 실패는 로그로 기록한 뒤 건너뜁니다.
func (l *Loader) Discover(dir string) ([]*Handle, error) {
	l.mu.Lock()
	l.skipped = nil
	l.mu.Unlock()

	if dir == "" {
		l.logger.Debug().Msg("플러그인 디렉토리가 설정되지 않았습니다")
		return nil, nil
	}

	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		l.logger.Debug().Str("dir", dir).Msg("플러그인 디렉토리가 존재하지 않습니다")
		return nil, nil
	}
	if err != nil {
		return nil, Other("failed to stat plugin directory "+dir, err)
	}
	if !info.IsDir() {
		return nil, InvalidInput("plugin path is not a directory: " + dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, Other("failed to read plugin directory "+dir, err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !IsLibrary(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)

	if len(paths) == 0 {
		l.logger.Debug().Str("dir", dir).Str("ext", LibraryExtension()).Msg("플러그인 파일을 찾을 수 없습니다")
		return nil, nil
	}

	l.logger.Info().Int("count", len(paths)).Str("dir", dir).Msg("플러그인 파일 발견")

	var loaded []*Handle
	for _, path := range paths {
		h, err := l.Load(path)
		if err != nil {
			l.skip(path, err)
			continue
		}
		if l.metrics != nil {
			l.metrics.LibrariesLoaded.Add(1)
		}
		loaded = append(loaded, h)

		l.logger.Info().Str("path", path).Msg("플러그인 라이브러리 로드 완료")
	}

	return loaded, nil
}

// skip은 로드 실패를 기록합니다.
func (l *Loader) skip(path string, err error) {
	l.logger.Warn().Err(err).Str("path", path).Msg("플러그인 로드 실패, 건너뜁니다")
	if l.metrics != nil {
		l.metrics.LibrariesSkipped.Add(1)
	}
	l.mu.Lock()
	l.skipped = append(l.skipped, SkippedLibrary{Path: path, Err: err})
	l.mu.Unlock()
}

// Skipped는 마지막 탐색에서 건너뛴 파일 목록을 반환합니다.
func (l *Loader) Skipped() []SkippedLibrary {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]SkippedLibrary, len(l.skipped))
	copy(out, l.skipped)
	return out
}
