// Package main은 smart-transfer CLI의 진입점입니다.
// 플러그인으로 확장되는 압축/해제 도구입니다.
package main

import (
	"os"

	"github.com/insajin/smart-transfer/cmd"
)

// 빌드 시 ldflags로 주입되는 버전 정보
var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
	// buildMode가 dev이면 플러그인/로그/설정 디렉토리를 현재 디렉토리 기준으로 사용합니다.
	buildMode = "release"
)

func main() {
	// 버전 정보를 root 패키지에 설정
	cmd.SetVersionInfo(version, commit, buildDate, buildMode)

	// CLI 실행
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
