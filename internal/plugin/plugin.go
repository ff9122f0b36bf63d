// Package plugin은 smart-transfer의 플러그인 코어를 제공합니다.
// 기능 인터페이스(Plugin, CompressionPlugin), 동적 라이브러리 ABI 핸들,
// 로더, 라이프사이클 래퍼(Instance), 레지스트리로 구성됩니다.
package plugin

import "runtime"

// Type은 플러그인의 유형 태그입니다.
type Type string

const (
	// TypeCompression은 압축/해제 기능을 제공하는 플러그인입니다.
	TypeCompression Type = "compression"
	// TypeTransfer는 파일 전송 기능을 제공하는 플러그인입니다.
	TypeTransfer Type = "transfer"
)

// OtherType은 미리 정의되지 않은 유형 태그를 만듭니다.
func OtherType(name string) Type {
	return Type(name)
}

// Config는 플러그인의 식별 정보입니다. Name은 레지스트리의 고유 키입니다.
type Config struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Version     string `json:"version" yaml:"version"`
	Type        Type   `json:"type" yaml:"type"`
}

// PlatformSupport는 플랫폼별 지원 여부입니다.
type PlatformSupport struct {
	Windows bool `json:"windows" yaml:"windows"`
	Linux   bool `json:"linux" yaml:"linux"`
	MacOS   bool `json:"macos" yaml:"macos"`
}

// AllPlatforms는 세 플랫폼 모두를 지원하는 PlatformSupport를 반환합니다.
func AllPlatforms() PlatformSupport {
	return PlatformSupport{Windows: true, Linux: true, MacOS: true}
}

// Supports는 주어진 GOOS 값이 지원되는지 반환합니다.
func (p PlatformSupport) Supports(goos string) bool {
	switch goos {
	case "windows":
		return p.Windows
	case "linux":
		return p.Linux
	case "darwin":
		return p.MacOS
	default:
		return false
	}
}

// Current는 현재 실행 중인 플랫폼이 지원되는지 반환합니다.
func (p PlatformSupport) Current() bool {
	return p.Supports(runtime.GOOS)
}

// Metadata는 표시용 플러그인 정보입니다.
type Metadata struct {
	Name        string          `json:"name" yaml:"name"`
	Version     string          `json:"version" yaml:"version"`
	Author      string          `json:"author" yaml:"author"`
	Description string          `json:"description" yaml:"description"`
	Type        Type            `json:"type" yaml:"type"`
	Platforms   PlatformSupport `json:"platforms" yaml:"platforms"`
}

// Plugin은 모든 플러그인이 구현해야 하는 기본 인터페이스입니다.
// 구현체는 여러 고루틴에서 동시에 사용해도 안전해야 합니다.
type Plugin interface {
	// Config는 플러그인 식별 정보를 반환합니다.
	Config() Config
	// Metadata는 표시용 메타데이터를 반환합니다.
	Metadata() Metadata
	// Initialize는 플러그인 리소스를 준비합니다. 두 번째 호출은 아무 일도 하지 않아야 합니다.
	Initialize() error
	// Cleanup은 플러그인 리소스를 정리합니다. 두 번째 호출은 아무 일도 하지 않아야 합니다.
	Cleanup() error
}

// CompressionPlugin은 압축 기능을 제공하는 플러그인 인터페이스입니다.
type CompressionPlugin interface {
	Plugin
	// Compress는 inputs(파일 또는 디렉토리)를 output 아카이브로 압축합니다.
	Compress(inputs []string, output string, opts CompressionOptions) error
	// Decompress는 archive를 outputDir에 해제합니다. outputDir이 없으면 생성합니다.
	Decompress(archive, outputDir string, overwrite bool) error
}

// ExtensionProvider는 처리할 수 있는 아카이브 확장자를 알리는 선택 기능입니다.
// 확장자는 점을 포함한 소문자입니다 (".zip").
type ExtensionProvider interface {
	Extensions() []string
	DefaultExtension() string
}

// Capabilities는 플러그인이 구현하는 기능 이름 목록을 반환합니다.
func Capabilities(p Plugin) []string {
	caps := []string{"base"}
	if _, ok := p.(CompressionPlugin); ok {
		caps = append(caps, "compression")
	}
	if _, ok := p.(ExtensionProvider); ok {
		caps = append(caps, "extensions")
	}
	return caps
}
