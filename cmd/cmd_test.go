package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/insajin/smart-transfer/internal/adapters"
	"github.com/insajin/smart-transfer/internal/config"
	"github.com/insajin/smart-transfer/internal/manager"
	"github.com/insajin/smart-transfer/internal/plugin"
)

func testInfos() []manager.PluginInfo {
	return []manager.PluginInfo{
		{Name: "zip", Version: "1.0.0", Type: plugin.TypeCompression, Capabilities: []string{"base", "compression"}, Initialized: true, Source: "builtin"},
		{Name: "gzip", Version: "0.1.0", Type: plugin.TypeCompression, Capabilities: []string{"base", "compression"}, Source: "/plugins/gzip.so"},
	}
}

// TestRenderPluginsFormats는 출력 형식별 렌더링을 테스트합니다.
func TestRenderPluginsFormats(t *testing.T) {
	var buf bytes.Buffer
	if err := renderPlugins(&buf, testInfos(), "table"); err != nil {
		t.Fatalf("table 렌더링 실패: %v", err)
	}
	for _, want := range []string{"NAME", "zip", "gzip", "ready", "idle", "/plugins/gzip.so"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("표에 %q가 없습니다:\n%s", want, buf.String())
		}
	}

	buf.Reset()
	if err := renderPlugins(&buf, testInfos(), "json"); err != nil {
		t.Fatalf("json 렌더링 실패: %v", err)
	}
	var decoded []manager.PluginInfo
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil || len(decoded) != 2 {
		t.Errorf("json 결과 = %d, %v", len(decoded), err)
	}

	buf.Reset()
	if err := renderPlugins(&buf, testInfos(), "YAML"); err != nil {
		t.Fatalf("yaml 렌더링 실패: %v", err)
	}
	var asYAML []map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &asYAML); err != nil || len(asYAML) != 2 || asYAML[0]["name"] != "zip" {
		t.Errorf("yaml 결과 = %v, %v", asYAML, err)
	}

	if err := renderPlugins(&buf, testInfos(), "xml"); !errors.Is(err, plugin.ErrInvalidInput) {
		t.Errorf("알 수 없는 형식 err = %v, want InvalidInput", err)
	}
}

// TestPluginTableEmpty는 빈 목록 메시지를 테스트합니다.
func TestPluginTableEmpty(t *testing.T) {
	if got := pluginTable(nil); !strings.Contains(got, "없습니다") {
		t.Errorf("빈 표 = %q", got)
	}
}

// TestParseConfigValue는 설정 값 변환을 테스트합니다.
func TestParseConfigValue(t *testing.T) {
	tests := []struct {
		in   string
		want interface{}
	}{
		{"true", true},
		{"false", false},
		{"30", 30},
		{"7zz", "7zz"},
		{"1.5", "1.5"},
		{"debug", "debug"},
	}
	for _, tt := range tests {
		if got := parseConfigValue(tt.in); got != tt.want {
			t.Errorf("parseConfigValue(%q) = %#v, want %#v", tt.in, got, tt.want)
		}
	}
}

// TestIsValidConfigKey는 설정 키 검증을 테스트합니다.
func TestIsValidConfigKey(t *testing.T) {
	if !isValidConfigKey("adapters.sevenzip.binary") {
		t.Error("adapters.sevenzip.binary가 거부되었습니다")
	}
	if isValidConfigKey("server.url") {
		t.Error("알 수 없는 키가 허용되었습니다")
	}
}

// TestDefaultConfigFile은 기본 설정 파일이 설정 구조와 맞는지 테스트합니다.
func TestDefaultConfigFile(t *testing.T) {
	content := defaultConfigFile(config.Paths{PluginDir: "/opt/stx/plugins"})

	var cfg config.Config
	if err := yaml.Unmarshal([]byte(content), &cfg); err != nil {
		t.Fatalf("기본 설정 파일 파싱 실패: %v", err)
	}
	if cfg.Plugins.Dir != "/opt/stx/plugins" {
		t.Errorf("plugins.dir = %q", cfg.Plugins.Dir)
	}
	if cfg.Compression.DefaultPlugin != "zip" || cfg.Logging.RetentionDays != 7 {
		t.Errorf("기본값이 잘못되었습니다: %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("기본 설정이 유효하지 않습니다: %v", err)
	}
}

// TestBuildOptions는 플래그와 설정에서 압축 옵션을 만드는 과정을 테스트합니다.
func TestBuildOptions(t *testing.T) {
	defer func() {
		compressMode, compressLevel, compressPassword, compressMethod = "", 0, "", ""
	}()
	cfg := &config.Config{Compression: config.CompressionConfig{DefaultMode: "fast"}}

	opts, err := buildOptions(cfg, false)
	if err != nil {
		t.Fatal(err)
	}
	if opts.Mode != plugin.ModeFast || opts.Level != nil || opts.Extra != nil {
		t.Errorf("기본 옵션 = %+v", opts)
	}

	compressMode, compressLevel, compressPassword, compressMethod = "best", 3, "pw", "LZMA2"
	opts, err = buildOptions(cfg, true)
	if err != nil {
		t.Fatal(err)
	}
	if opts.Mode != plugin.ModeBest || opts.LevelOr(0) != 3 || !opts.HasPassword() {
		t.Errorf("플래그 옵션 = %+v", opts)
	}
	if v, _ := opts.ExtraValue("method"); v != "LZMA2" {
		t.Errorf("method = %q", v)
	}

	compressMode = "ultra"
	if _, err := buildOptions(cfg, false); !errors.Is(err, plugin.ErrInvalidInput) {
		t.Errorf("잘못된 모드 err = %v", err)
	}
}

// TestResolvePlugin은 플러그인 선택 순서를 테스트합니다.
func TestResolvePlugin(t *testing.T) {
	m := manager.New()
	defer m.Shutdown()
	err := m.RegisterBuiltins(adapters.Builtins(adapters.Settings{
		SevenZipBinary: "/nonexistent/7z",
		Logger:         zerolog.Nop(),
	}))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		explicit, path, fallback string
		want                     string
		wantErr                  bool
	}{
		{"lz4", "a.zip", "zip", "lz4", false},
		{"", "a.tar.zst", "zip", "zstd", false},
		{"", "a.bin", "zip", "zip", false},
		{"", "a.bin", "", "", true},
	}
	for _, tt := range tests {
		got, err := resolvePlugin(m, tt.explicit, tt.path, tt.fallback)
		if tt.wantErr {
			if !errors.Is(err, plugin.ErrInvalidInput) {
				t.Errorf("resolvePlugin(%q) err = %v, want InvalidInput", tt.path, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("resolvePlugin(%q, %q) = %q, %v; want %q", tt.explicit, tt.path, got, err, tt.want)
		}
	}
}

// TestManagerProvider는 대시보드 데이터 변환을 테스트합니다.
func TestManagerProvider(t *testing.T) {
	m := manager.New(manager.WithPluginsDir("/opt/stx/plugins"))
	defer m.Shutdown()
	if err := m.RegisterBuiltins(adapters.Builtins(adapters.Settings{SevenZipBinary: "/nonexistent/7z", Logger: zerolog.Nop()})); err != nil {
		t.Fatal(err)
	}
	_, _ = m.Compress("rar", []string{"a"}, "a.rar", plugin.DefaultOptions())

	p := newManagerProvider(m)
	events := make(chan manager.WatchEvent, 1)
	p.setWatching(true)
	events <- manager.WatchEvent{Path: "/opt/stx/plugins/gz.so", Plugin: "gz"}
	close(events)
	p.consume(events)

	data := p.FetchData()
	if data.PluginsDir != "/opt/stx/plugins" || len(data.Plugins) != 3 {
		t.Errorf("플러그인 데이터 = %s, %d", data.PluginsDir, len(data.Plugins))
	}
	if len(data.Operations) != 1 || data.Operations[0].Succeeded() {
		t.Errorf("작업 데이터 = %+v", data.Operations)
	}
	if data.CompressFailures != 1 {
		t.Errorf("CompressFailures = %d", data.CompressFailures)
	}
	if data.Watching || data.LastEvent != "registered gz" {
		t.Errorf("감시 상태 = %v, %q", data.Watching, data.LastEvent)
	}
}
