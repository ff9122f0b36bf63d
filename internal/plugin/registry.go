package plugin

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"go.uber.org/multierr"
)

// Info는 표시 계층에 전달되는 플러그인 요약입니다.
type Info struct {
	Name         string   `json:"name" yaml:"name"`
	Version      string   `json:"version" yaml:"version"`
	Type         Type     `json:"type" yaml:"type"`
	Description  string   `json:"description" yaml:"description"`
	Author       string   `json:"author" yaml:"author"`
	Capabilities []string `json:"capabilities" yaml:"capabilities"`
	Initialized  bool     `json:"initialized" yaml:"initialized"`
	Source       string   `json:"source" yaml:"source"`
}

// Registry는 이름이 붙은 플러그인 인스턴스를 소유하고 동시 접근을 관리합니다.
// 초기화되지 않은 항목은 어떤 조회에도 보이지 않습니다.
type Registry struct {
	// entries는 초기화가 끝난 인스턴스를 이름으로 인덱싱한 맵입니다.
	entries map[string]*Instance
	// pending은 초기화 중인 이름입니다. 같은 이름의 동시 등록을 막습니다.
	pending map[string]struct{}
	// replace는 같은 이름 등록 시 기존 항목을 교체할지 여부입니다.
	replace bool
	// closed는 Close 이후 true입니다. 진행 중인 등록은 삽입 직전에 확인합니다.
	closed bool
	// logger는 구조화된 로거입니다.
	logger zerolog.Logger
	// mu는 entries/pending/closed 접근을 보호합니다. 인스턴스 동작 중에는 잡지 않습니다.
	mu sync.RWMutex
}

// RegistryOption은 Registry 설정 옵션입니다.
type RegistryOption func(*Registry)

// WithRegistryLogger는 로거를 설정합니다.
func WithRegistryLogger(logger zerolog.Logger) RegistryOption {
	return func(r *Registry) {
		r.logger = logger
	}
}

// WithReplaceOnRegister는 같은 이름 등록 시 기존 항목을 교체하는 모드를 켭니다.
// 기존 항목은 새 항목의 초기화가 성공한 뒤에만 교체되고 닫힙니다.
func WithReplaceOnRegister(enabled bool) RegistryOption {
	return func(r *Registry) {
		r.replace = enabled
	}
}

// NewRegistry는 새로운 플러그인 레지스트리를 생성합니다.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		entries: make(map[string]*Instance),
		pending: make(map[string]struct{}),
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register는 h의 소유권을 넘겨받아 Initialize를 동기적으로 실행한 뒤 name으로 등록합니다.
// 실패하면 핸들은 레지스트리가 해제합니다.
func (r *Registry) Register(name string, h *Handle) error {
	if h == nil {
		return InvalidInput("nil plugin handle")
	}
	if name == "" {
		_ = h.Release()
		return InvalidInput("empty plugin name")
	}

	// 이름 예약
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		_ = h.Release()
		return Other("register "+name, ErrRegistryClosed)
	}
	if _, busy := r.pending[name]; busy {
		r.mu.Unlock()
		_ = h.Release()
		return AlreadyExists("plugin " + name)
	}
	if _, exists := r.entries[name]; exists && !r.replace {
		r.mu.Unlock()
		_ = h.Release()
		return AlreadyExists("plugin " + name)
	}
	r.pending[name] = struct{}{}
	r.mu.Unlock()

	inst, err := NewInstance(h, r.logger)
	if err != nil {
		r.release(name)
		_ = h.Release()
		return err
	}

	// 초기화는 레지스트리 락 밖에서 실행하여 다른 항목의 조회를 막지 않습니다.
	if err := inst.Initialize(); err != nil {
		r.release(name)
		inst.Close()
		r.logger.Warn().Err(err).Str("name", name).Msg("플러그인 초기화 실패, 등록하지 않습니다")
		return err
	}

	r.mu.Lock()
	delete(r.pending, name)
	if r.closed {
		r.mu.Unlock()
		inst.Close()
		r.logger.Warn().Str("name", name).Msg("초기화 중 레지스트리가 닫혀 등록하지 않습니다")
		return Other("register "+name, ErrRegistryClosed)
	}
	previous := r.entries[name]
	r.entries[name] = inst
	r.mu.Unlock()

	if previous != nil {
		previous.Close()
		r.logger.Info().Str("name", name).Msg("기존 플러그인을 교체했습니다")
	}

	r.logger.Info().
		Str("name", name).
		Str("version", inst.Config().Version).
		Str("source", inst.Source()).
		Msg("플러그인 등록 완료")
	return nil
}

// RegisterBuiltin은 Factory로 플러그인을 만들어 Config().Name으로 등록합니다.
func (r *Registry) RegisterBuiltin(factory Factory) error {
	h, err := NewBuiltin(factory)
	if err != nil {
		return err
	}
	name := ""
	if p := h.Plugin(); p != nil {
		name = p.Config().Name
	}
	return r.Register(name, h)
}

// release는 예약된 이름을 해제합니다.
func (r *Registry) release(name string) {
	r.mu.Lock()
	delete(r.pending, name)
	r.mu.Unlock()
}

// Get은 이름으로 인스턴스를 조회합니다. 없으면 false를 반환합니다.
// 반환된 인스턴스의 변경 동작은 인스턴스 자체 락으로 직렬화됩니다.
func (r *Registry) Get(name string) (*Instance, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inst, ok := r.entries[name]
	return inst, ok
}

// Unregister는 항목을 제거하고 인스턴스를 닫습니다.
func (r *Registry) Unregister(name string) error {
	r.mu.Lock()
	inst, ok := r.entries[name]
	if ok {
		delete(r.entries, name)
	}
	r.mu.Unlock()

	if !ok {
		return NotFound("plugin " + name)
	}
	inst.Close()
	return nil
}

// snapshot은 이름순으로 정렬된 인스턴스 목록을 반환합니다.
func (r *Registry) snapshot() []*Instance {
	r.mu.RLock()
	list := make([]*Instance, 0, len(r.entries))
	for _, inst := range r.entries {
		list = append(list, inst)
	}
	r.mu.RUnlock()

	sort.Slice(list, func(a, b int) bool {
		return list[a].Config().Name < list[b].Config().Name
	})
	return list
}

// List는 등록된 모든 플러그인의 메타데이터 스냅샷을 반환합니다.
func (r *Registry) List() []Metadata {
	instances := r.snapshot()
	out := make([]Metadata, 0, len(instances))
	for _, inst := range instances {
		out = append(out, inst.Metadata())
	}
	return out
}

// Infos는 표시용 요약 목록을 반환합니다.
func (r *Registry) Infos() []Info {
	instances := r.snapshot()
	out := make([]Info, 0, len(instances))
	for _, inst := range instances {
		cfg := inst.Config()
		md := inst.Metadata()
		out = append(out, Info{
			Name:         cfg.Name,
			Version:      cfg.Version,
			Type:         cfg.Type,
			Description:  cfg.Description,
			Author:       md.Author,
			Capabilities: inst.Capabilities(),
			Initialized:  inst.Initialized(),
			Source:       inst.Source(),
		})
	}
	return out
}

// GetByType은 Config의 Type이 t인 인스턴스를 반환합니다.
func (r *Registry) GetByType(t Type) []*Instance {
	var out []*Instance
	for _, inst := range r.snapshot() {
		if inst.Config().Type == t {
			out = append(out, inst)
		}
	}
	return out
}

// Names는 등록된 이름을 정렬하여 반환합니다.
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}

// Count는 등록된 플러그인 수를 반환합니다.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// CleanupAll은 모든 항목에 Cleanup을 호출합니다.
// 개별 실패에서 멈추지 않고 모두 시도한 뒤 실패를 모아 반환합니다.
func (r *Registry) CleanupAll() error {
	var errs error
	for _, inst := range r.snapshot() {
		if err := inst.Cleanup(); err != nil {
			name := inst.Config().Name
			r.logger.Error().Err(err).Str("name", name).Msg("플러그인 cleanup 실패")
			errs = multierr.Append(errs, fmt.Errorf("plugin '%s' cleanup failed: %w", name, err))
		}
	}
	return errs
}

// Close는 CleanupAll을 실행한 뒤 모든 인스턴스를 닫고 레지스트리를 비웁니다.
// 이후의 Register는 ErrRegistryClosed로 실패합니다.
func (r *Registry) Close() error {
	err := r.CleanupAll()

	r.mu.Lock()
	r.closed = true
	entries := r.entries
	r.entries = make(map[string]*Instance)
	r.mu.Unlock()

	for _, inst := range entries {
		inst.Close()
	}
	return err
}
