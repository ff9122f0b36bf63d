// Package config는 smart-transfer의 설정 관리를 담당합니다.
// 설정 우선순위: 환경변수(STX_*) > 설정파일 > 기본값
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/insajin/smart-transfer/internal/plugin"
)

// Config는 전체 애플리케이션 설정을 나타냅니다.
type Config struct {
	Plugins     PluginsConfig     `mapstructure:"plugins" yaml:"plugins"`
	Logging     LoggingConfig     `mapstructure:"logging" yaml:"logging"`
	Adapters    AdaptersConfig    `mapstructure:"adapters" yaml:"adapters"`
	Compression CompressionConfig `mapstructure:"compression" yaml:"compression"`
}

// PluginsConfig는 동적 플러그인 설정입니다.
type PluginsConfig struct {
	// Dir은 동적 라이브러리를 탐색할 디렉토리입니다.
	Dir string `mapstructure:"dir" yaml:"dir"`
	// Watch가 true이면 dashboard 실행 중 새 라이브러리를 자동으로 로드합니다.
	Watch bool `mapstructure:"watch" yaml:"watch"`
	// ReplaceOnRegister가 true이면 같은 이름의 플러그인을 교체합니다. 기본은 거부입니다.
	ReplaceOnRegister bool `mapstructure:"replace_on_register" yaml:"replace_on_register"`
}

// LoggingConfig는 로깅 설정입니다.
type LoggingConfig struct {
	// Level은 로그 레벨입니다 (debug, info, warn, error).
	Level string `mapstructure:"level" yaml:"level"`
	// Format은 로그 포맷입니다 (json, text).
	Format string `mapstructure:"format" yaml:"format"`
	// File은 로그 파일 경로입니다. 비어있으면 stderr로 출력합니다.
	File string `mapstructure:"file" yaml:"file"`
	// RetentionDays는 로그 디렉토리에서 보관할 일수입니다. 0이면 정리하지 않습니다.
	RetentionDays int `mapstructure:"retention_days" yaml:"retention_days"`
}

// AdaptersConfig는 내장 어댑터 설정입니다.
type AdaptersConfig struct {
	SevenZip SevenZipConfig `mapstructure:"sevenzip" yaml:"sevenzip"`
}

// SevenZipConfig는 7z 어댑터 설정입니다.
type SevenZipConfig struct {
	// Binary는 7z 실행 파일 이름 또는 경로입니다. 비어있으면 자동으로 찾습니다.
	Binary string `mapstructure:"binary" yaml:"binary"`
	// TimeoutSeconds는 명령 하나의 제한 시간(초)입니다. 0이면 제한하지 않습니다.
	TimeoutSeconds int `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
}

// CompressionConfig는 CLI 기본 압축 옵션입니다.
type CompressionConfig struct {
	// DefaultMode는 --mode가 없을 때 사용할 모드입니다 (fast, normal, best).
	DefaultMode string `mapstructure:"default_mode" yaml:"default_mode"`
	// DefaultPlugin은 --plugin이 없고 확장자로도 정할 수 없을 때 사용할 플러그인입니다.
	DefaultPlugin string `mapstructure:"default_plugin" yaml:"default_plugin"`
}

// Load는 설정을 로드하고 Config 구조체를 반환합니다.
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("설정 파싱 실패: %w", err)
	}

	// 홈 디렉토리 경로 확장
	cfg.Plugins.Dir = expandPath(cfg.Plugins.Dir)
	cfg.Logging.File = expandPath(cfg.Logging.File)
	cfg.Adapters.SevenZip.Binary = expandPath(cfg.Adapters.SevenZip.Binary)

	return &cfg, nil
}

// SetDefaults는 viper 기본값을 등록합니다.
func SetDefaults(v *viper.Viper, paths Paths) {
	v.SetDefault("plugins.dir", paths.PluginDir)
	v.SetDefault("plugins.watch", false)
	v.SetDefault("plugins.replace_on_register", false)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.file", "")
	v.SetDefault("logging.retention_days", 7)

	v.SetDefault("adapters.sevenzip.binary", "")
	v.SetDefault("adapters.sevenzip.timeout_seconds", 0)

	v.SetDefault("compression.default_mode", string(plugin.ModeNormal))
	v.SetDefault("compression.default_plugin", "zip")
}

// Validate는 설정의 유효성을 검사합니다.
func (c *Config) Validate() error {
	// 로그 레벨 검증
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("유효하지 않은 로그 레벨: %s (debug, info, warn, error 중 하나)", c.Logging.Level)
	}

	// 로그 포맷 검증
	validFormats := map[string]bool{
		"json": true,
		"text": true,
	}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("유효하지 않은 로그 포맷: %s (json, text 중 하나)", c.Logging.Format)
	}

	if c.Logging.RetentionDays < 0 {
		return fmt.Errorf("retention_days는 0 이상이어야 합니다 (0 = 정리하지 않음)")
	}

	if _, err := plugin.ParseMode(c.Compression.DefaultMode); err != nil {
		return fmt.Errorf("유효하지 않은 기본 압축 모드: %w", err)
	}

	if c.Adapters.SevenZip.TimeoutSeconds < 0 {
		return fmt.Errorf("timeout_seconds는 0 이상이어야 합니다 (0 = 무제한)")
	}

	if strings.TrimSpace(c.Plugins.Dir) == "" && c.Plugins.Watch {
		return fmt.Errorf("plugins.watch를 사용하려면 plugins.dir이 필요합니다")
	}

	return nil
}

// expandPath는 ~를 홈 디렉토리로 확장합니다.
func expandPath(path string) string {
	if path == "" {
		return ""
	}
	if path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[1:])
	}
	return path
}

// EnsureConfigDir는 설정 디렉토리가 존재하는지 확인하고 없으면 생성합니다.
func EnsureConfigDir(paths Paths) error {
	if paths.ConfigDir == "" {
		return fmt.Errorf("설정 디렉토리를 결정할 수 없습니다")
	}
	if err := os.MkdirAll(paths.ConfigDir, 0700); err != nil {
		return fmt.Errorf("설정 디렉토리 생성 실패: %w", err)
	}
	return nil
}

// DefaultConfigPath는 기본 설정 파일 경로를 반환합니다.
func DefaultConfigPath(paths Paths) string {
	if paths.ConfigDir == "" {
		return ""
	}
	return filepath.Join(paths.ConfigDir, "config.yaml")
}
