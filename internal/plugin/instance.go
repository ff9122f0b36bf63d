package plugin

import (
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// Instance는 플러그인 하나와 initialized 플래그를 묶는 라이프사이클 래퍼입니다.
// 변경 동작(Initialize, Cleanup, Compress, Decompress)은 인스턴스 락으로 직렬화되고,
// Config/Metadata는 생성 시 캐시되고 initialized는 atomic 값이라 모두 락 없이 읽힙니다.
type Instance struct {
	handle *Handle
	plugin Plugin

	// 생성 시 한 번 계산되는 캐시
	config      Config
	metadata    Metadata
	compression CompressionPlugin

	mu     sync.Mutex
	closed bool
	// mu를 잡고 쓰고 락 없이 읽습니다.
	initialized atomic.Bool

	logger zerolog.Logger
}

// NewInstance는 Handle의 소유권을 넘겨받아 초기화되지 않은 Instance를 만듭니다.
func NewInstance(h *Handle, logger zerolog.Logger) (*Instance, error) {
	if h == nil {
		return nil, InvalidInput("nil plugin handle")
	}
	p := h.Plugin()
	if p == nil {
		return nil, Other("plugin handle already released", nil)
	}

	inst := &Instance{
		handle:   h,
		plugin:   p,
		config:   p.Config(),
		metadata: p.Metadata(),
	}
	if cp, ok := p.(CompressionPlugin); ok {
		inst.compression = cp
	}
	inst.logger = logger.With().Str("plugin", inst.config.Name).Logger()
	return inst, nil
}

// Config는 캐시된 플러그인 설정을 반환합니다.
func (i *Instance) Config() Config {
	return i.config
}

// Metadata는 캐시된 메타데이터를 반환합니다.
func (i *Instance) Metadata() Metadata {
	return i.metadata
}

// Source는 플러그인 출처를 반환합니다.
func (i *Instance) Source() string {
	return i.handle.Source()
}

// Initialized는 현재 초기화 상태를 반환합니다.
// 진행 중인 Compress/Decompress를 기다리지 않습니다.
func (i *Instance) Initialized() bool {
	return i.initialized.Load()
}

// Initialize는 이미 초기화된 경우 아무 일도 하지 않습니다.
// 실패하면 플래그는 false로 남고 에러는 그대로 전달됩니다.
func (i *Instance) Initialize() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.closed {
		return Other("plugin instance closed: "+i.config.Name, nil)
	}
	if i.initialized.Load() {
		return nil
	}
	if err := i.plugin.Initialize(); err != nil {
		return err
	}
	i.initialized.Store(true)
	return nil
}

// Cleanup은 초기화되지 않은 경우 아무 일도 하지 않습니다.
func (i *Instance) Cleanup() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.cleanupLocked()
}

func (i *Instance) cleanupLocked() error {
	if !i.initialized.Load() {
		return nil
	}
	if err := i.plugin.Cleanup(); err != nil {
		return err
	}
	i.initialized.Store(false)
	return nil
}

// Close는 인스턴스를 파괴합니다. 여러 번 호출해도 안전합니다.
// 아직 초기화된 상태라면 Cleanup을 한 번 실행하며, 그 실패는 로그로만 보고됩니다.
func (i *Instance) Close() {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.closed {
		return
	}
	i.closed = true

	if i.initialized.Load() {
		if err := i.cleanupLocked(); err != nil {
			i.logger.Error().Err(err).Msg("자동 정리 중 플러그인 cleanup 실패")
		}
		// 실패해도 다시 시도하지 않습니다.
		i.initialized.Store(false)
	}
	if err := i.handle.Release(); err != nil {
		i.logger.Error().Err(err).Str("source", i.handle.Source()).Msg("플러그인 핸들 해제 실패")
	}
}

// Compression은 생성 시 확인한 압축 기능을 반환합니다.
func (i *Instance) Compression() (CompressionPlugin, bool) {
	return i.compression, i.compression != nil
}

// Capabilities는 플러그인이 구현하는 기능 목록을 반환합니다.
func (i *Instance) Capabilities() []string {
	return Capabilities(i.plugin)
}

// As는 Instance의 플러그인을 기능 인터페이스 C로 좁힙니다.
// 지원하지 않으면 ok가 false입니다.
func As[C any](i *Instance) (C, bool) {
	c, ok := i.plugin.(C)
	return c, ok
}

// Compress는 인스턴스 락을 잡은 상태로 압축을 실행합니다.
func (i *Instance) Compress(inputs []string, output string, opts CompressionOptions) error {
	cp, ok := i.Compression()
	if !ok {
		return NotImplemented("plugin " + i.config.Name + " does not support compression")
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	if err := i.usableLocked(); err != nil {
		return err
	}
	return cp.Compress(inputs, output, opts)
}

// Decompress는 인스턴스 락을 잡은 상태로 해제를 실행합니다.
func (i *Instance) Decompress(archive, outputDir string, overwrite bool) error {
	cp, ok := i.Compression()
	if !ok {
		return NotImplemented("plugin " + i.config.Name + " does not support decompression")
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	if err := i.usableLocked(); err != nil {
		return err
	}
	return cp.Decompress(archive, outputDir, overwrite)
}

func (i *Instance) usableLocked() error {
	if i.closed {
		return Other("plugin instance closed: "+i.config.Name, nil)
	}
	if !i.initialized.Load() {
		return Other("plugin not initialized: "+i.config.Name, nil)
	}
	return nil
}
