// Package cmd는 smart-transfer CLI의 명령어를 정의합니다.
// config.go는 설정 관리 명령을 구현합니다.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/insajin/smart-transfer/internal/config"
	"github.com/insajin/smart-transfer/internal/logger"
)

// configCmd는 설정 관리를 위한 상위 명령어입니다.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "설정을 관리합니다",
	Long: `설정 파일의 값을 조회하거나 수정합니다.

설정 파일 위치는 'smart-transfer config path'로 확인할 수 있습니다.
모든 키는 STX_ 접두사 환경변수로 덮어쓸 수 있습니다 (예: STX_LOGGING_LEVEL).`,
}

// configSetCmd는 설정 값을 저장하는 명령어입니다.
var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "설정 값을 저장합니다",
	Long: `설정 파일에 값을 저장합니다.

키는 점(.)으로 구분된 경로를 사용합니다.
예시:
  smart-transfer config set plugins.dir ~/stx/plugins
  smart-transfer config set logging.level debug
  smart-transfer config set adapters.sevenzip.binary /usr/local/bin/7zz

지원하는 설정 키:
  plugins.dir                       - 동적 플러그인 디렉토리
  plugins.watch                     - dashboard 실행 중 디렉토리 감시 (true/false)
  plugins.replace_on_register       - 같은 이름 플러그인 교체 (true/false)
  logging.level                     - 로그 레벨 (debug, info, warn, error)
  logging.format                    - 로그 포맷 (json, text)
  logging.file                      - 로그 파일 경로 ("daily"면 로그 디렉토리의 날짜별 파일)
  logging.retention_days            - 날짜별 로그 보관 일수
  adapters.sevenzip.binary          - 7z 실행 파일 경로
  adapters.sevenzip.timeout_seconds - 7z 명령 제한 시간(초)
  compression.default_mode          - 기본 압축 모드 (fast, normal, best)
  compression.default_plugin        - 기본 압축 플러그인`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

// configGetCmd는 설정 값을 조회하는 명령어입니다.
var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "설정 값을 조회합니다",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

// configListCmd는 전체 설정을 출력하는 명령어입니다.
var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "전체 설정을 출력합니다",
	Long:  `현재 적용된 모든 설정과 플랫폼 디렉토리를 YAML 포맷으로 출력합니다.`,
	RunE:  runConfigList,
}

// configPathCmd는 설정 파일 경로를 출력하는 명령어입니다.
var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "설정 파일 경로를 출력합니다",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.DefaultConfigPath(paths)
		if path == "" {
			return fmt.Errorf("설정 디렉토리를 결정할 수 없습니다")
		}
		fmt.Println(path)
		return nil
	},
}

// configInitCmd는 기본 설정 파일을 생성하는 명령어입니다.
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "기본 설정 파일을 생성합니다",
	Long: `기본 설정 파일을 플랫폼 설정 디렉토리에 생성합니다.

이미 파일이 존재하면 덮어쓰지 않습니다.
강제로 덮어쓰려면 --force 플래그를 사용하세요.`,
	RunE: runConfigInit,
}

var forceInit bool

// validConfigKeys는 config set으로 저장할 수 있는 키입니다.
var validConfigKeys = map[string]bool{
	"plugins.dir":                       true,
	"plugins.watch":                     true,
	"plugins.replace_on_register":       true,
	"logging.level":                     true,
	"logging.format":                    true,
	"logging.file":                      true,
	"logging.retention_days":            true,
	"adapters.sevenzip.binary":          true,
	"adapters.sevenzip.timeout_seconds": true,
	"compression.default_mode":          true,
	"compression.default_plugin":        true,
}

func init() {
	rootCmd.AddCommand(configCmd)

	// 하위 명령 등록
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configInitCmd)

	// init 명령 플래그
	configInitCmd.Flags().BoolVar(&forceInit, "force", false, "기존 파일을 덮어씁니다")
}

// runConfigSet은 설정 값을 저장합니다.
func runConfigSet(cmd *cobra.Command, args []string) error {
	key := args[0]
	value := args[1]

	// 유효한 키인지 확인
	if !isValidConfigKey(key) {
		return fmt.Errorf("알 수 없는 설정 키: %s", key)
	}

	// 값 변환 (숫자, 불리언 등)
	parsedValue := parseConfigValue(value)

	// 저장 전에 검증
	viper.Set(key, parsedValue)
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// 설정 디렉토리 확인/생성
	if err := config.EnsureConfigDir(paths); err != nil {
		return err
	}

	// 설정 파일 저장
	configPath := config.DefaultConfigPath(paths)
	if err := viper.WriteConfigAs(configPath); err != nil {
		return fmt.Errorf("설정 파일 저장 실패: %w", err)
	}

	fmt.Printf("%s = %v\n", key, parsedValue)
	fmt.Printf("설정이 저장되었습니다: %s\n", configPath)
	return nil
}

// runConfigGet은 설정 값을 조회합니다.
func runConfigGet(cmd *cobra.Command, args []string) error {
	key := args[0]

	value := viper.Get(key)
	if value == nil {
		return fmt.Errorf("설정 키를 찾을 수 없습니다: %s", key)
	}

	fmt.Println(logger.MaskSensitive(fmt.Sprintf("%s = %v", key, value)))
	return nil
}

// runConfigList는 전체 설정을 출력합니다.
func runConfigList(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("설정 로드 실패: %w", err)
	}

	// 설정 파일 경로 출력
	configFile := viper.ConfigFileUsed()
	if configFile != "" {
		fmt.Printf("# 설정 파일: %s\n", configFile)
	} else {
		fmt.Printf("# 설정 파일: (기본값 사용 중)\n")
	}
	fmt.Println()

	// YAML로 직렬화
	yamlData, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("YAML 직렬화 실패: %w", err)
	}
	fmt.Println(string(yamlData))

	// 플랫폼 디렉토리 출력
	fmt.Printf("# 빌드 모드: %s\n", config.ParseBuildMode(appBuildMode))
	fmt.Printf("#   plugin dir: %s\n", paths.PluginDir)
	fmt.Printf("#   log dir:    %s\n", paths.LogDir)
	fmt.Printf("#   config dir: %s\n", paths.ConfigDir)
	return nil
}

// runConfigInit은 기본 설정 파일을 생성합니다.
func runConfigInit(cmd *cobra.Command, args []string) error {
	configPath := config.DefaultConfigPath(paths)
	if configPath == "" {
		return fmt.Errorf("설정 디렉토리를 결정할 수 없습니다")
	}

	// 기존 파일 확인
	if !forceInit {
		if _, err := os.Stat(configPath); err == nil {
			return fmt.Errorf("설정 파일이 이미 존재합니다: %s\n--force 플래그로 덮어쓸 수 있습니다", configPath)
		}
	}

	// 설정 디렉토리 생성
	if err := config.EnsureConfigDir(paths); err != nil {
		return err
	}

	if err := os.WriteFile(configPath, []byte(defaultConfigFile(paths)), 0600); err != nil {
		return fmt.Errorf("설정 파일 생성 실패: %w", err)
	}

	fmt.Printf("설정 파일이 생성되었습니다: %s\n", configPath)
	return nil
}

// defaultConfigFile은 config init이 쓰는 기본 설정 파일 내용입니다.
func defaultConfigFile(p config.Paths) string {
	return fmt.Sprintf(`# smart-transfer 설정 파일
# 생성됨: smart-transfer config init

plugins:
  dir: %q
  watch: false
  replace_on_register: false

logging:
  level: "info"      # debug, info, warn, error
  format: "text"     # json, text
  file: ""           # 비어있으면 stderr, "daily"면 로그 디렉토리의 날짜별 파일
  retention_days: 7

adapters:
  sevenzip:
    binary: ""       # 비어있으면 7z, 7zz, 7za 순서로 찾습니다
    timeout_seconds: 0

compression:
  default_mode: "normal"   # fast, normal, best
  default_plugin: "zip"
`, p.PluginDir)
}

// isValidConfigKey는 유효한 설정 키인지 확인합니다.
func isValidConfigKey(key string) bool {
	return validConfigKeys[key]
}

// parseConfigValue는 문자열 값을 적절한 타입으로 변환합니다.
func parseConfigValue(value string) interface{} {
	// 불리언
	if value == "true" {
		return true
	}
	if value == "false" {
		return false
	}

	// 정수
	var intVal int
	if _, err := fmt.Sscanf(value, "%d", &intVal); err == nil {
		// 소수점이 없고 전체가 숫자이면 정수로 처리
		if !strings.Contains(value, ".") && fmt.Sprint(intVal) == strings.TrimLeft(value, "+") {
			return intVal
		}
	}

	// 기본: 문자열
	return value
}
