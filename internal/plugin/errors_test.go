package plugin

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

// TestErrorMessages는 분류별 메시지 형식을 테스트합니다.
func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"not found", NotFound("archive.zip"), "not found: archive.zip"},
		{"already exists", AlreadyExists("out/a.txt"), "already exists: out/a.txt"},
		{"invalid input", InvalidInput("no input files"), "invalid input: no input files"},
		{"not implemented", NotImplemented(""), "operation not implemented"},
		{"not implemented detail", NotImplemented("password"), "operation not implemented: password"},
		{"execution", ExecutionError("7z exited with 2", nil), "execution error: 7z exited with 2"},
		{"other", Other("boom", nil), "error: boom"},
		{"with cause", Other("read", errors.New("eof")), "error: read: eof"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestErrorIsKind는 errors.Is가 Kind sentinel과 일치하는지 테스트합니다.
func TestErrorIsKind(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", NotFound("x"))

	if !errors.Is(err, ErrNotFound) {
		t.Error("래핑된 NotFound가 ErrNotFound와 일치하지 않습니다")
	}
	if errors.Is(err, ErrAlreadyExists) {
		t.Error("NotFound가 ErrAlreadyExists와 일치하면 안 됩니다")
	}
	// 상세 내용이 있는 에러끼리는 sentinel 비교가 아닙니다.
	if errors.Is(NotFound("a"), NotFound("a")) {
		t.Error("서로 다른 에러 값이 일치하면 안 됩니다")
	}
}

// TestErrorUnwrap은 원인 에러가 체인에 남는지 테스트합니다.
func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("exit status 2")
	err := ExecutionError("7z failed", cause)

	if !errors.Is(err, cause) {
		t.Error("원인 에러를 errors.Is로 찾을 수 없습니다")
	}
	if !strings.Contains(err.Error(), "exit status 2") {
		t.Errorf("메시지에 원인이 포함되지 않았습니다: %s", err.Error())
	}
}

// TestKindOf는 임의의 에러 분류를 테스트합니다.
func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		want Kind
	}{
		{nil, KindOther},
		{errors.New("plain"), KindOther},
		{InvalidInput("x"), KindInvalidInput},
		{fmt.Errorf("ctx: %w", ExecutionError("x", nil)), KindExecution},
		{NotImplemented("x"), KindNotImplemented},
	}

	for _, tt := range tests {
		if got := KindOf(tt.err); got != tt.want {
			t.Errorf("KindOf(%v) = %s, want %s", tt.err, got, tt.want)
		}
	}
}

// TestParseMode는 모드 문자열 파싱을 테스트합니다.
func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"", ModeNormal, false},
		{"fast", ModeFast, false},
		{" BEST ", ModeBest, false},
		{"normal", ModeNormal, false},
		{"ultra", "", true},
	}

	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("ParseMode(%q) err = %v, want InvalidInput", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseMode(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
		}
	}
}

// TestCompressionOptions는 옵션 헬퍼를 테스트합니다.
func TestCompressionOptions(t *testing.T) {
	opts := DefaultOptions()
	if opts.Mode != ModeNormal {
		t.Errorf("기본 모드가 normal이 아닙니다: %s", opts.Mode)
	}
	if got := opts.LevelOr(5); got != 5 {
		t.Errorf("LevelOr 기본값 = %d, want 5", got)
	}
	if got := opts.WithLevel(9).LevelOr(5); got != 9 {
		t.Errorf("WithLevel 이후 LevelOr = %d, want 9", got)
	}
	if opts.Level != nil {
		t.Error("WithLevel이 원본을 변경했습니다")
	}
	if _, ok := opts.ExtraValue("method"); ok {
		t.Error("빈 Extra에서 값이 조회되었습니다")
	}
	opts.Extra = map[string]string{"method": "LZMA2"}
	if v, ok := opts.ExtraValue("method"); !ok || v != "LZMA2" {
		t.Errorf("ExtraValue = %q, %v", v, ok)
	}
	if opts.HasPassword() {
		t.Error("비밀번호가 없는데 HasPassword가 true입니다")
	}
}

// TestPlatformSupport는 플랫폼 지원 판별을 테스트합니다.
func TestPlatformSupport(t *testing.T) {
	p := PlatformSupport{Linux: true}
	if !p.Supports("linux") || p.Supports("windows") || p.Supports("darwin") {
		t.Errorf("Supports 결과가 잘못되었습니다: %+v", p)
	}
	if p.Supports("plan9") {
		t.Error("알 수 없는 OS는 지원되지 않아야 합니다")
	}
	all := AllPlatforms()
	if !all.Windows || !all.Linux || !all.MacOS {
		t.Errorf("AllPlatforms가 모든 플랫폼을 포함하지 않습니다: %+v", all)
	}
}

// TestCapabilities는 기능 목록 계산을 테스트합니다.
func TestCapabilities(t *testing.T) {
	base := Capabilities(newMockPlugin("base"))
	if len(base) != 1 || base[0] != "base" {
		t.Errorf("기본 플러그인 기능 = %v", base)
	}
	comp := Capabilities(newCopyPlugin("copy"))
	if len(comp) != 2 || comp[1] != "compression" {
		t.Errorf("압축 플러그인 기능 = %v", comp)
	}
}
