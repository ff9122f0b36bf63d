package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// decompressCmd는 아카이브를 해제하는 명령어입니다.
var decompressCmd = &cobra.Command{
	Use:   "decompress <archive>",
	Short: "아카이브를 해제합니다",
	Long: `아카이브를 출력 디렉토리에 해제합니다.

플러그인은 --plugin이 없으면 아카이브 확장자로 정합니다.
기존 파일은 --overwrite가 없으면 덮어쓰지 않습니다.

예시:
  smart-transfer decompress docs.zip -d ./restore
  smart-transfer decompress data.csv.zst --overwrite`,
	Args: cobra.ExactArgs(1),
	RunE: runDecompress,
}

var (
	decompressDir       string
	decompressPlugin    string
	decompressOverwrite bool
)

func init() {
	rootCmd.AddCommand(decompressCmd)

	decompressCmd.Flags().StringVarP(&decompressDir, "output-dir", "d", ".", "출력 디렉토리")
	decompressCmd.Flags().StringVarP(&decompressPlugin, "plugin", "p", "", "사용할 플러그인 이름")
	decompressCmd.Flags().BoolVar(&decompressOverwrite, "overwrite", false, "기존 파일을 덮어씁니다")
}

// runDecompress는 해제를 실행합니다.
func runDecompress(cmd *cobra.Command, args []string) error {
	archivePath := args[0]

	m, _, err := openManager()
	if err != nil {
		return err
	}
	defer closeManager(m)

	// 해제는 확장자로 정할 수 없으면 기본 플러그인을 쓰지 않습니다.
	name, err := resolvePlugin(m, decompressPlugin, archivePath, "")
	if err != nil {
		return err
	}

	op, err := m.Decompress(name, archivePath, decompressDir, decompressOverwrite)
	if err != nil {
		return fmt.Errorf("해제 실패 (%s): %w", name, err)
	}

	fmt.Printf("해제 완료: %s\n", decompressDir)
	fmt.Printf("  플러그인: %s\n", name)
	fmt.Printf("  소요 시간: %s\n", op.Duration.Round(time.Millisecond))
	fmt.Printf("  작업 ID:  %s\n", op.ID)
	return nil
}
