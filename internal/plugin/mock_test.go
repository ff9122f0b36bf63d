package plugin

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// --- 테스트용 목(mock) 플러그인 구현 ---

// mockPlugin은 기본 Plugin 인터페이스만 구현하며 호출 횟수를 셉니다.
type mockPlugin struct {
	name       string
	version    string
	initErr    error
	cleanupErr error

	// initStarted가 있으면 Initialize 진입 시 닫고, initGate가 닫힐 때까지 기다립니다.
	initStarted chan struct{}
	initGate    chan struct{}

	mu           sync.Mutex
	initCalls    int
	cleanupCalls int
	resources    int
}

func newMockPlugin(name string) *mockPlugin {
	return &mockPlugin{name: name, version: "1.0.0"}
}

func (m *mockPlugin) Config() Config {
	return Config{Name: m.name, Version: m.version, Description: "mock " + m.name, Type: OtherType("mock")}
}

func (m *mockPlugin) Metadata() Metadata {
	return Metadata{
		Name:        m.name,
		Version:     m.version,
		Author:      "tester",
		Description: "mock " + m.name,
		Type:        OtherType("mock"),
		Platforms:   AllPlatforms(),
	}
}

// Initialize는 Instance가 멱등성을 보장하므로 호출될 때마다 리소스를 하나 늘립니다.
func (m *mockPlugin) Initialize() error {
	if m.initStarted != nil {
		close(m.initStarted)
	}
	if m.initGate != nil {
		<-m.initGate
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.initCalls++
	if m.initErr != nil {
		return m.initErr
	}
	m.resources++
	return nil
}

func (m *mockPlugin) Cleanup() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cleanupCalls++
	if m.cleanupErr != nil {
		return m.cleanupErr
	}
	m.resources--
	return nil
}

func (m *mockPlugin) counts() (initCalls, cleanupCalls, resources int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.initCalls, m.cleanupCalls, m.resources
}

// copyPlugin은 입력 파일들을 이어붙여 output에 쓰는 단순 압축 플러그인입니다.
type copyPlugin struct {
	mockPlugin
}

func newCopyPlugin(name string) *copyPlugin {
	return &copyPlugin{mockPlugin: mockPlugin{name: name, version: "0.1.0"}}
}

func (c *copyPlugin) Config() Config {
	cfg := c.mockPlugin.Config()
	cfg.Type = TypeCompression
	return cfg
}

func (c *copyPlugin) Compress(inputs []string, output string, opts CompressionOptions) error {
	if len(inputs) == 0 {
		return InvalidInput("no input files")
	}
	var buf bytes.Buffer
	for _, in := range inputs {
		data, err := os.ReadFile(in)
		if errors.Is(err, os.ErrNotExist) {
			return NotFound(in)
		}
		if err != nil {
			return Other("read "+in, err)
		}
		buf.Write(data)
	}
	return os.WriteFile(output, buf.Bytes(), 0o644)
}

func (c *copyPlugin) Decompress(archive, outputDir string, overwrite bool) error {
	data, err := os.ReadFile(archive)
	if errors.Is(err, os.ErrNotExist) {
		return NotFound(archive)
	}
	if err != nil {
		return Other("read "+archive, err)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return Other("create "+outputDir, err)
	}
	target := filepath.Join(outputDir, "payload")
	if _, err := os.Stat(target); err == nil && !overwrite {
		return AlreadyExists(target)
	}
	return os.WriteFile(target, data, 0o644)
}

// blockingPlugin은 release가 닫힐 때까지 Compress 안에서 멈춥니다.
type blockingPlugin struct {
	copyPlugin
	started     chan struct{}
	release     chan struct{}
	startedOnce sync.Once
}

func newBlockingPlugin(name string) *blockingPlugin {
	return &blockingPlugin{
		copyPlugin: copyPlugin{mockPlugin: mockPlugin{name: name, version: "0.1.0"}},
		started:    make(chan struct{}),
		release:    make(chan struct{}),
	}
}

func (b *blockingPlugin) Compress(inputs []string, output string, opts CompressionOptions) error {
	b.startedOnce.Do(func() { close(b.started) })
	<-b.release
	return b.copyPlugin.Compress(inputs, output, opts)
}

// --- 테스트용 동적 라이브러리 ---

// fakeLibrary는 심볼 맵으로 동작하는 Library입니다.
type fakeLibrary struct {
	symbols map[string]any
}

func (f *fakeLibrary) Lookup(symbol string) (any, error) {
	sym, ok := f.symbols[symbol]
	if !ok {
		return nil, fmt.Errorf("plugin: symbol %s not found", symbol)
	}
	return sym, nil
}

// fakeOpener는 파일 이름(basename)으로 라이브러리를 찾는 Opener를 만듭니다.
// 등록되지 않은 파일은 손상된 라이브러리처럼 열기에 실패합니다.
func fakeOpener(libs map[string]Library) Opener {
	return func(path string) (Library, error) {
		lib, ok := libs[filepath.Base(path)]
		if !ok {
			return nil, fmt.Errorf("plugin.Open(%q): invalid ELF header", path)
		}
		return lib, nil
	}
}

// libraryFor는 주어진 플러그인을 생성하는 fakeLibrary를 만듭니다.
func libraryFor(newPlugin func() Plugin) *fakeLibrary {
	return &fakeLibrary{symbols: map[string]any{
		ConstructorSymbol: newPlugin,
	}}
}

// touch는 dir에 빈 파일을 만듭니다.
func touch(dir, name string) string {
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("not a real library"), 0o644); err != nil {
		panic(err)
	}
	return path
}
