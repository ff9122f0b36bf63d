package plugin

import (
	"fmt"
	"strings"
)

// Mode는 압축 속도/비율 프리셋입니다.
type Mode string

const (
	ModeFast   Mode = "fast"
	ModeNormal Mode = "normal"
	ModeBest   Mode = "best"
)

// ParseMode는 문자열을 Mode로 변환합니다. 빈 문자열은 ModeNormal입니다.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "normal":
		return ModeNormal, nil
	case "fast":
		return ModeFast, nil
	case "best":
		return ModeBest, nil
	default:
		return "", InvalidInput(fmt.Sprintf("unknown compression mode %q (fast, normal, best)", s))
	}
}

// CompressionOptions는 모든 어댑터가 공유하는 압축 옵션입니다.
// 어댑터는 자신이 이해하는 필드만 읽고 나머지는 무시합니다.
type CompressionOptions struct {
	// Mode는 속도/비율 프리셋입니다.
	Mode Mode `json:"mode" yaml:"mode"`
	// Password는 암호화 비밀번호입니다. 비어있으면 암호화하지 않습니다.
	Password string `json:"-" yaml:"-"`
	// SplitSize는 분할 볼륨 크기(바이트)입니다. 0이면 분할하지 않습니다.
	SplitSize int64 `json:"split_size,omitempty" yaml:"split_size,omitempty"`
	// Level은 코덱별 숫자 레벨입니다. nil이면 Mode에서 유도합니다.
	Level *int `json:"level,omitempty" yaml:"level,omitempty"`
	// Extra는 어댑터별 확장 키/값입니다.
	Extra map[string]string `json:"extra,omitempty" yaml:"extra,omitempty"`
}

// DefaultOptions는 ModeNormal 기본 옵션을 반환합니다.
func DefaultOptions() CompressionOptions {
	return CompressionOptions{Mode: ModeNormal}
}

// WithLevel은 Level을 설정한 복사본을 반환합니다.
func (o CompressionOptions) WithLevel(level int) CompressionOptions {
	o.Level = &level
	return o
}

// LevelOr는 Level이 설정되어 있으면 그 값을, 아니면 def를 반환합니다.
func (o CompressionOptions) LevelOr(def int) int {
	if o.Level == nil {
		return def
	}
	return *o.Level
}

// ExtraValue는 Extra에서 key 값을 조회합니다.
func (o CompressionOptions) ExtraValue(key string) (string, bool) {
	if o.Extra == nil {
		return "", false
	}
	v, ok := o.Extra[key]
	return v, ok
}

// HasPassword는 비밀번호가 설정되어 있는지 반환합니다.
func (o CompressionOptions) HasPassword() bool {
	return o.Password != ""
}
