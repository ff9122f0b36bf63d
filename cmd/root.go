// Package cmd는 smart-transfer CLI의 명령어를 정의합니다.
package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/insajin/smart-transfer/internal/branding"
	"github.com/insajin/smart-transfer/internal/config"
	"github.com/insajin/smart-transfer/internal/logger"
)

var (
	// 전역 플래그
	cfgFile string
	verbose bool

	// 버전 정보 (main에서 주입)
	appVersion   string
	appCommit    string
	appBuildDate string
	appBuildMode string

	// paths는 빌드 모드와 OS로 결정된 기본 디렉토리입니다.
	paths config.Paths
)

// rootCmd는 CLI의 루트 명령어입니다.
var rootCmd = &cobra.Command{
	Use:   branding.BinaryName,
	Short: "플러그인 기반 압축/해제 도구",
	Long: `smart-transfer는 플러그인으로 확장되는 압축/해제 도구입니다.

내장 플러그인: zip, zstd, lz4, 7z (7z 실행 파일이 있을 때)
플러그인 디렉토리의 동적 라이브러리는 시작 시 자동으로 로드됩니다.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// 로거 초기화
		return initLogger()
	},
}

// Execute는 루트 명령어를 실행합니다.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersionInfo는 버전 정보를 설정합니다.
func SetVersionInfo(version, commit, buildDate, buildMode string) {
	appVersion = version
	appCommit = commit
	appBuildDate = buildDate
	appBuildMode = buildMode
}

// GetVersionInfo는 버전 정보를 반환합니다.
func GetVersionInfo() (version, commit, buildDate string) {
	return appVersion, appCommit, appBuildDate
}

func init() {
	cobra.OnInitialize(initConfig)

	// 전역 플래그 정의
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"설정 파일 경로 (기본값: 플랫폼 설정 디렉토리의 config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"상세 로그 출력 (debug 레벨)")
}

// initConfig는 설정 파일을 초기화합니다.
// 설정 우선순위: 환경변수 > 설정파일 > 기본값
func initConfig() {
	paths = config.CurrentPaths(config.ParseBuildMode(appBuildMode))

	if cfgFile != "" {
		// 명시적 설정 파일 사용
		viper.SetConfigFile(cfgFile)
	} else if paths.ConfigDir != "" {
		viper.AddConfigPath(paths.ConfigDir)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	// 환경변수 자동 바인딩 (STX_ 접두사, STX_LOGGING_LEVEL → logging.level)
	viper.SetEnvPrefix("STX")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// 기본값 설정
	config.SetDefaults(viper.GetViper(), paths)

	// 설정 파일 읽기 (없어도 오류 아님)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// 설정 파일이 있지만 읽기 실패한 경우만 오류
			fmt.Fprintf(os.Stderr, "설정 파일 읽기 실패: %v\n", err)
		}
	}
}

// initLogger는 로거를 초기화합니다.
func initLogger() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("설정 로드 실패: %w", err)
	}

	// verbose 플래그가 설정되면 debug 레벨로 오버라이드
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger.Setup(cfg.Logging, paths.LogDir)

	// 보관 기간이 지난 날짜별 로그 정리
	if cfg.Logging.File == logger.DailyFile {
		removed, err := logger.CleanupOldLogs(paths.LogDir, cfg.Logging.RetentionDays, time.Now())
		if err != nil {
			log.Warn().Err(err).Str("dir", paths.LogDir).Msg("로그 정리 실패")
		} else if removed > 0 {
			log.Debug().Int("removed", removed).Msg("오래된 로그 파일 정리 완료")
		}
	}
	return nil
}
