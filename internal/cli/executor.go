// Package cli는 외부 실행 파일을 호출하는 엔진을 제공합니다.
// 셸을 거치지 않고 인자 배열로 실행하며 stdout/stderr를 크기 제한 내에서 캡처합니다.
package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	// MaxOutputBytes는 stdout/stderr 최대 캡처 크기입니다 (1MB).
	MaxOutputBytes = 1 * 1024 * 1024
)

// Request는 실행할 명령입니다.
type Request struct {
	// Binary는 실행 파일 이름 또는 경로입니다.
	Binary string
	// Args는 인자 목록입니다. 셸 해석 없이 그대로 전달됩니다.
	Args []string
	// Dir은 작업 디렉토리입니다. 비어있으면 현재 디렉토리입니다.
	Dir string
	// Timeout은 실행 제한 시간입니다. 0이면 제한하지 않습니다.
	Timeout time.Duration
	// Redact는 로그에 남기기 전에 인자에서 가릴 값입니다 (비밀번호 등).
	Redact []string
}

// Result는 실행 결과입니다.
type Result struct {
	ExitCode        int
	Stdout          string
	Stderr          string
	Duration        time.Duration
	StdoutTruncated bool
	StderrTruncated bool
}

// Executor는 외부 명령을 실행합니다.
type Executor struct {
	logger zerolog.Logger
}

// NewExecutor는 Executor를 생성합니다.
func NewExecutor(logger zerolog.Logger) *Executor {
	return &Executor{logger: logger}
}

// LookPath는 실행 파일이 PATH 또는 지정된 경로에 있는지 확인합니다.
func LookPath(binary string) (string, error) {
	return exec.LookPath(binary)
}

// Run은 명령을 실행합니다.
// 프로세스를 시작하지 못하면 에러를, 0이 아닌 종료 코드는 Result.ExitCode로 반환합니다.
func (e *Executor) Run(ctx context.Context, req Request) (*Result, error) {
	if req.Binary == "" {
		return nil, errors.New("empty binary")
	}

	cmdCtx := ctx
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		cmdCtx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(cmdCtx, req.Binary, req.Args...)
	if req.Dir != "" {
		cmd.Dir = req.Dir
	}

	// stdout/stderr 캡처 (메모리 보호를 위해 크기 제한 적용)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &limitedWriter{w: &stdout, limit: MaxOutputBytes}
	cmd.Stderr = &limitedWriter{w: &stderr, limit: MaxOutputBytes}

	e.logger.Debug().
		Str("binary", req.Binary).
		Strs("args", redact(req.Args, req.Redact)).
		Str("dir", req.Dir).
		Msg("외부 명령 실행 시작")

	start := time.Now()
	err := cmd.Run()

	result := &Result{
		Stdout:          stdout.String(),
		Stderr:          stderr.String(),
		Duration:        time.Since(start),
		StdoutTruncated: stdout.Len() >= MaxOutputBytes,
		StderrTruncated: stderr.Len() >= MaxOutputBytes,
	}

	if err != nil {
		var exitErr *exec.ExitError
		switch {
		case errors.Is(cmdCtx.Err(), context.DeadlineExceeded):
			return result, fmt.Errorf("command timed out after %s: %w", req.Timeout, err)
		case errors.As(err, &exitErr):
			result.ExitCode = exitErr.ExitCode()
		default:
			return result, fmt.Errorf("failed to run %s: %w", req.Binary, err)
		}
	}

	e.logger.Debug().
		Int("exit_code", result.ExitCode).
		Dur("duration", result.Duration).
		Int("stdout_len", len(result.Stdout)).
		Int("stderr_len", len(result.Stderr)).
		Msg("외부 명령 실행 완료")

	return result, nil
}

// Diagnostic은 실패 보고용 진단 문자열을 반환합니다. stderr가 비어있으면 stdout을 사용합니다.
func (r *Result) Diagnostic() string {
	if r.Stderr != "" {
		return r.Stderr
	}
	return r.Stdout
}

// redact는 secrets를 포함한 인자를 가린 복사본을 반환합니다.
func redact(args, secrets []string) []string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = a
		for _, s := range secrets {
			if s != "" {
				out[i] = strings.ReplaceAll(out[i], s, "****")
			}
		}
	}
	return out
}

// limitedWriter는 지정된 크기 제한까지만 쓰기를 허용하는 io.Writer 래퍼입니다.
// 제한을 초과하는 데이터는 조용히 폐기됩니다.
type limitedWriter struct {
	w     *bytes.Buffer
	limit int
}

// Write는 제한 내에서 데이터를 쓰고, 초과분은 폐기합니다.
func (lw *limitedWriter) Write(p []byte) (int, error) {
	n := len(p)
	remaining := lw.limit - lw.w.Len()
	if remaining <= 0 {
		// 제한 초과 - 데이터를 폐기하되 성공으로 보고
		return n, nil
	}
	if len(p) > remaining {
		p = p[:remaining]
	}
	if _, err := lw.w.Write(p); err != nil {
		return 0, err
	}
	return n, nil
}
