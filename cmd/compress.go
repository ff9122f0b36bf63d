package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/insajin/smart-transfer/internal/config"
	"github.com/insajin/smart-transfer/internal/manager"
	"github.com/insajin/smart-transfer/internal/plugin"
)

// compressCmd는 파일을 압축하는 명령어입니다.
var compressCmd = &cobra.Command{
	Use:   "compress <input>... -o <archive>",
	Short: "파일 또는 디렉토리를 압축합니다",
	Long: `입력 파일/디렉토리를 아카이브로 압축합니다.

플러그인 선택 순서: --plugin > 출력 파일 확장자 > compression.default_plugin

예시:
  smart-transfer compress ./docs -o docs.zip
  smart-transfer compress data.csv -o data.csv.zst --mode best
  smart-transfer compress ./src -o src.7z --password secret --split-size 104857600`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCompress,
}

var (
	compressOutput    string
	compressPlugin    string
	compressMode      string
	compressLevel     int
	compressPassword  string
	compressSplitSize int64
	compressMethod    string
)

func init() {
	rootCmd.AddCommand(compressCmd)

	compressCmd.Flags().StringVarP(&compressOutput, "output", "o", "", "출력 아카이브 경로 (필수)")
	compressCmd.Flags().StringVarP(&compressPlugin, "plugin", "p", "", "사용할 플러그인 이름")
	compressCmd.Flags().StringVarP(&compressMode, "mode", "m", "", "압축 모드 (fast, normal, best)")
	compressCmd.Flags().IntVarP(&compressLevel, "level", "l", 0, "플러그인별 압축 레벨 (모드보다 우선)")
	compressCmd.Flags().StringVar(&compressPassword, "password", "", "아카이브 비밀번호 (지원하는 플러그인만)")
	compressCmd.Flags().Int64Var(&compressSplitSize, "split-size", 0, "분할 크기(바이트, 지원하는 플러그인만)")
	compressCmd.Flags().StringVar(&compressMethod, "method", "", "플러그인별 압축 방식 (예: 7z의 LZMA2)")
	_ = compressCmd.MarkFlagRequired("output")
}

// runCompress는 압축을 실행합니다.
func runCompress(cmd *cobra.Command, args []string) error {
	m, cfg, err := openManager()
	if err != nil {
		return err
	}
	defer closeManager(m)

	opts, err := buildOptions(cfg, cmd.Flags().Changed("level"))
	if err != nil {
		return err
	}

	name, err := resolvePlugin(m, compressPlugin, compressOutput, cfg.Compression.DefaultPlugin)
	if err != nil {
		return err
	}

	op, err := m.Compress(name, args, compressOutput, opts)
	if err != nil {
		return fmt.Errorf("압축 실패 (%s): %w", name, err)
	}

	fmt.Printf("압축 완료: %s\n", compressOutput)
	fmt.Printf("  플러그인: %s\n", name)
	fmt.Printf("  소요 시간: %s\n", op.Duration.Round(time.Millisecond))
	fmt.Printf("  작업 ID:  %s\n", op.ID)
	return nil
}

// buildOptions는 플래그와 설정으로 압축 옵션을 만듭니다.
func buildOptions(cfg *config.Config, levelSet bool) (plugin.CompressionOptions, error) {
	modeStr := compressMode
	if modeStr == "" {
		modeStr = cfg.Compression.DefaultMode
	}
	mode, err := plugin.ParseMode(modeStr)
	if err != nil {
		return plugin.CompressionOptions{}, err
	}

	opts := plugin.CompressionOptions{
		Mode:      mode,
		Password:  compressPassword,
		SplitSize: compressSplitSize,
	}
	if levelSet {
		opts = opts.WithLevel(compressLevel)
	}
	if compressMethod != "" {
		opts.Extra = map[string]string{"method": compressMethod}
	}
	return opts, nil
}

// resolvePlugin은 명시된 이름, 파일 확장자, 기본값 순서로 플러그인을 정합니다.
func resolvePlugin(m *manager.Manager, explicit, path, fallback string) (string, error) {
	if name := strings.TrimSpace(explicit); name != "" {
		return name, nil
	}
	if name, err := m.PluginForArchive(path); err == nil {
		return name, nil
	}
	if fallback == "" {
		return "", plugin.InvalidInput("cannot determine plugin for " + path + "; use --plugin")
	}
	return fallback, nil
}
