package plugin

import (
	"fmt"
	"sync"
)

// 동적 라이브러리가 export해야 하는 심볼 이름입니다.
// 생성자는 필수, 소멸자는 선택입니다.
//
//	func NewPlugin() plugin.Plugin
//	func DestroyPlugin(p plugin.Plugin)
const (
	ConstructorSymbol = "NewPlugin"
	DestructorSymbol  = "DestroyPlugin"
)

// Factory는 인자 없이 힙에 할당된 플러그인의 단독 소유권을 반환합니다.
// 내장 어댑터와 동적 라이브러리가 같은 모양을 사용합니다.
type Factory func() Plugin

// Destructor는 Factory가 만든 객체를 정확히 한 번 파괴합니다.
type Destructor func(Plugin)

// Library는 열린 동적 라이브러리입니다.
type Library interface {
	// Lookup은 export된 심볼을 찾습니다.
	Lookup(symbol string) (any, error)
}

// noCopy는 go vet의 copylocks 검사로 Handle 값 복사를 막습니다.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Handle은 플러그인 객체 하나와 그 객체를 만든 라이브러리를 함께 소유합니다.
// 라이브러리는 Handle보다 먼저 해제되지 않으며, Release는 소멸자를 정확히 한 번 호출합니다.
type Handle struct {
	_ noCopy

	plugin  Plugin
	library Library
	source  string
	destroy Destructor

	once     sync.Once
	released bool
	mu       sync.Mutex
}

// newHandle은 Handle을 만듭니다. source는 로그/표시용 출처입니다.
func newHandle(p Plugin, lib Library, source string, destroy Destructor) *Handle {
	return &Handle{
		plugin:  p,
		library: lib,
		source:  source,
		destroy: destroy,
	}
}

// NewBuiltin은 내장 Factory를 호출하여 Handle로 감쌉니다.
// 내장 플러그인은 라이브러리가 없고 일반 GC 소유권으로 파괴됩니다.
func NewBuiltin(factory Factory) (*Handle, error) {
	if factory == nil {
		return nil, InvalidInput("nil plugin factory")
	}
	p, err := construct(factory)
	if err != nil {
		return nil, err
	}
	return newHandle(p, nil, "builtin", nil), nil
}

// construct는 생성자를 호출하고 panic과 nil 반환을 에러로 변환합니다.
func construct(factory Factory) (p Plugin, err error) {
	defer func() {
		if r := recover(); r != nil {
			p = nil
			err = ExecutionError("plugin constructor panicked", fmt.Errorf("%v", r))
		}
	}()
	p = factory()
	if p == nil {
		return nil, Other("plugin constructor returned nil", nil)
	}
	return p, nil
}

// Plugin은 소유 중인 플러그인 객체를 반환합니다. 해제된 뒤에는 nil입니다.
func (h *Handle) Plugin() Plugin {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.released {
		return nil
	}
	return h.plugin
}

// Source는 플러그인의 출처(라이브러리 경로 또는 "builtin")를 반환합니다.
func (h *Handle) Source() string {
	return h.source
}

// Dynamic은 동적 라이브러리에서 로드된 플러그인인지 반환합니다.
func (h *Handle) Dynamic() bool {
	return h.library != nil
}

// Released는 Release가 이미 호출되었는지 반환합니다.
func (h *Handle) Released() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.released
}

// Release는 소멸자를 정확히 한 번 호출하고 객체 참조를 끊습니다.
// 라이브러리 자체는 프로세스가 끝날 때까지 매핑된 상태로 남습니다.
// 소멸자의 panic은 에러로 반환되며 두 번째 호출부터는 항상 nil입니다.
func (h *Handle) Release() (err error) {
	h.once.Do(func() {
		h.mu.Lock()
		p := h.plugin
		h.released = true
		h.plugin = nil
		h.mu.Unlock()

		if h.destroy == nil || p == nil {
			return
		}
		defer func() {
			if r := recover(); r != nil {
				err = ExecutionError("plugin destructor panicked: "+h.source, fmt.Errorf("%v", r))
			}
		}()
		h.destroy(p)
	})
	return err
}
