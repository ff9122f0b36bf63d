// Package logger는 구조화된 로깅을 제공합니다.
// 모든 출력은 민감 정보(압축 비밀번호, 토큰)를 마스킹하는 Writer를 거칩니다.
package logger

import (
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/insajin/smart-transfer/internal/config"
)

// DailyFile은 logging.file에 지정하면 로그 디렉토리의 날짜별 파일을 사용하게 하는 값입니다.
const DailyFile = "daily"

// logFilePrefix는 날짜별 로그 파일 이름 접두사입니다.
const logFilePrefix = "smart-transfer_"

// maskRule은 민감 정보 패턴과 값 마스킹 방법입니다.
// pattern의 첫 번째 그룹은 유지되고 두 번째 그룹이 mask로 치환됩니다.
type maskRule struct {
	pattern *regexp.Regexp
	mask    func(value string) string
}

func maskAll(string) string { return "***" }

// 민감 정보 패턴
var maskRules = []maskRule{
	// 비밀번호는 길이와 상관없이 전부 가립니다 (password=..., "password":"...")
	{regexp.MustCompile(`(?i)((?:password|passwd|pwd)"?\s*[=:]\s*"?)([^\s",}]+)`), maskAll},
	// 7z 명령행 비밀번호 인자 (-pSECRET)
	{regexp.MustCompile(`(\s-p)(\S+)`), maskAll},
	// 일반 API 키/토큰 패턴
	{regexp.MustCompile(`(?i)((?:api[_-]?key|apikey|token|secret)\s*[=:]\s*)([a-zA-Z0-9\-_\.]{10,})`), maskValue},
}

// maskedWriter는 민감 정보를 마스킹하는 io.Writer입니다.
type maskedWriter struct {
	underlying io.Writer
}

// Write는 민감 정보를 마스킹한 후 기록합니다.
func (w *maskedWriter) Write(p []byte) (n int, err error) {
	masked := MaskSensitive(string(p))
	if _, err := w.underlying.Write([]byte(masked)); err != nil {
		return 0, err
	}
	return len(p), nil
}

// NewMaskedWriter는 out 앞에 마스킹 Writer를 둡니다.
func NewMaskedWriter(out io.Writer) io.Writer {
	return &maskedWriter{underlying: out}
}

// Setup은 전역 로거를 초기화하고 반환합니다.
// cfg.File이 DailyFile이면 logDir 아래 날짜별 파일에 기록합니다.
func Setup(cfg config.LoggingConfig, logDir string) zerolog.Logger {
	// 로그 레벨 설정
	level := parseLevel(cfg.Level)
	zerolog.SetGlobalLevel(level)

	// 타임스탬프 포맷 설정 (RFC3339)
	zerolog.TimeFieldFormat = time.RFC3339

	// 출력 대상 설정 (stdout은 명령 결과용으로 남겨둡니다)
	var output io.Writer = os.Stderr
	if path := resolveLogFile(cfg.File, logDir, time.Now()); path != "" {
		file, err := openLogFile(path)
		if err != nil {
			// 파일 열기 실패 시 stderr 사용
			log.Warn().Err(err).Str("file", path).Msg("로그 파일을 열 수 없어 stderr를 사용합니다")
		} else {
			output = file
		}
	}

	// 민감 정보 마스킹 Writer 래핑
	maskedOutput := NewMaskedWriter(output)

	// 포맷 설정
	if cfg.Format == "text" {
		// 콘솔 포맷 (개발 시 가독성)
		consoleWriter := zerolog.ConsoleWriter{
			Out:        maskedOutput,
			TimeFormat: time.RFC3339,
		}
		log.Logger = zerolog.New(consoleWriter).With().Timestamp().Logger()
	} else {
		log.Logger = zerolog.New(maskedOutput).With().Timestamp().Logger()
	}
	return log.Logger
}

// resolveLogFile은 설정값에서 실제 로그 파일 경로를 계산합니다.
func resolveLogFile(file, logDir string, now time.Time) string {
	switch file {
	case "":
		return ""
	case DailyFile:
		if logDir == "" {
			return ""
		}
		return filepath.Join(logDir, DailyLogFileName(now))
	default:
		return file
	}
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
}

// DailyLogFileName은 날짜별 로그 파일 이름을 반환합니다.
func DailyLogFileName(now time.Time) string {
	return logFilePrefix + now.Format("2006-01-02") + ".log"
}

// CleanupOldLogs는 dir에서 retentionDays보다 오래된 날짜별 로그 파일을 지웁니다.
// 날짜별 로그 파일이 아닌 파일은 건드리지 않습니다. 지운 파일 수를 반환합니다.
func CleanupOldLogs(dir string, retentionDays int, now time.Time) (int, error) {
	if dir == "" || retentionDays <= 0 {
		return 0, nil
	}
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	cutoff := now.AddDate(0, 0, -retentionDays)
	removed := 0
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, logFilePrefix) || !strings.HasSuffix(name, ".log") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(filepath.Join(dir, name)); err != nil {
				log.Warn().Err(err).Str("file", name).Msg("오래된 로그 파일 삭제 실패")
				continue
			}
			removed++
		}
	}
	return removed, nil
}

// parseLevel은 문자열 레벨을 zerolog.Level로 변환합니다.
func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// MaskSensitive는 문자열에서 민감 정보를 마스킹합니다.
func MaskSensitive(input string) string {
	result := input
	for _, rule := range maskRules {
		rule := rule
		result = rule.pattern.ReplaceAllStringFunc(result, func(match string) string {
			sub := rule.pattern.FindStringSubmatch(match)
			if len(sub) < 3 {
				return match
			}
			return sub[1] + rule.mask(sub[2])
		})
	}
	return result
}

// maskValue는 값을 마스킹합니다.
// 앞 4자와 뒤 4자만 남기고 나머지는 ***로 대체합니다.
func maskValue(value string) string {
	value = strings.TrimSpace(value)
	if len(value) <= 8 {
		return "***"
	}
	return value[:4] + "***" + value[len(value)-4:]
}

// WithOperation은 작업 ID와 플러그인 이름을 추가한 로거를 반환합니다.
func WithOperation(base zerolog.Logger, operationID, pluginName string) zerolog.Logger {
	return base.With().
		Str("operation_id", operationID).
		Str("plugin", pluginName).
		Logger()
}
