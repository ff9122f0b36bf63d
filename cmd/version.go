package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/insajin/smart-transfer/internal/branding"
	"github.com/insajin/smart-transfer/internal/config"
)

// versionCmd는 버전 정보를 출력하는 명령어입니다.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "버전 정보를 출력합니다",
	Long:  `smart-transfer의 버전, 커밋 해시, 빌드 날짜, 빌드 모드를 출력합니다.`,
	Run: func(cmd *cobra.Command, args []string) {
		version, commit, buildDate := GetVersionInfo()

		fmt.Println(branding.StartupBanner())
		fmt.Printf("  Version:    %s\n", version)
		fmt.Printf("  Commit:     %s\n", commit)
		fmt.Printf("  Built:      %s\n", buildDate)
		fmt.Printf("  Build mode: %s\n", config.ParseBuildMode(appBuildMode))
		fmt.Printf("  Go version: %s\n", runtime.Version())
		fmt.Printf("  OS/Arch:    %s/%s\n", runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
