// Package adapters는 내장 압축 어댑터 카탈로그를 제공합니다.
package adapters

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/insajin/smart-transfer/internal/adapters/lz4adapter"
	"github.com/insajin/smart-transfer/internal/adapters/sevenzip"
	"github.com/insajin/smart-transfer/internal/adapters/zipadapter"
	"github.com/insajin/smart-transfer/internal/adapters/zstdadapter"
	"github.com/insajin/smart-transfer/internal/plugin"
)

// Builtin은 시작 시 등록되는 내장 어댑터입니다.
type Builtin struct {
	// Name은 어댑터의 레지스트리 이름입니다.
	Name string
	// Factory는 어댑터 생성자입니다.
	Factory plugin.Factory
	// Required가 false이면 등록 실패가 경고로만 기록됩니다.
	Required bool
}

// Settings는 내장 어댑터 설정입니다.
type Settings struct {
	// SevenZipBinary는 7z 실행 파일 이름 또는 경로입니다. 비어있으면 자동으로 찾습니다.
	SevenZipBinary string
	// SevenZipTimeout은 7z 명령 하나의 제한 시간입니다.
	SevenZipTimeout time.Duration
	// Logger는 어댑터 로거입니다.
	Logger zerolog.Logger
}

// Builtins는 내장 어댑터 목록을 등록 순서대로 반환합니다.
// 7z는 외부 실행 파일이 필요하므로 선택 항목입니다.
func Builtins(s Settings) []Builtin {
	return []Builtin{
		{Name: zipadapter.Name, Factory: zipadapter.Factory(zipadapter.WithLogger(s.Logger)), Required: true},
		{Name: zstdadapter.Name, Factory: zstdadapter.Factory(zstdadapter.WithLogger(s.Logger)), Required: true},
		{Name: lz4adapter.Name, Factory: lz4adapter.Factory(lz4adapter.WithLogger(s.Logger)), Required: true},
		{
			Name: sevenzip.Name,
			Factory: sevenzip.Factory(
				sevenzip.WithLogger(s.Logger),
				sevenzip.WithBinary(s.SevenZipBinary),
				sevenzip.WithTimeout(s.SevenZipTimeout),
			),
			Required: false,
		},
	}
}
