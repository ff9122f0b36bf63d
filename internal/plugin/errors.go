package plugin

import (
	"errors"
	"fmt"
)

// 로더 관련 에러 정의
var (
	// ErrInvalidPlugin은 심볼이 기대한 생성자/소멸자 시그니처가 아닐 때 반환됩니다.
	ErrInvalidPlugin = errors.New("loaded symbol does not match the plugin ABI")

	// ErrPluginSymbolNotFound는 라이브러리에서 필요한 심볼을 찾을 수 없을 때 반환됩니다.
	ErrPluginSymbolNotFound = errors.New("required symbol not found in plugin")

	// ErrPluginsUnsupported는 현재 플랫폼에서 동적 플러그인 로딩을 지원하지 않을 때 반환됩니다.
	ErrPluginsUnsupported = errors.New("go plugin loading is not supported on this platform")

	// ErrRegistryClosed는 Close 이후의 등록 시도에 반환됩니다.
	ErrRegistryClosed = errors.New("plugin registry closed")
)

// Kind는 기능 메서드가 반환하는 에러 분류입니다.
// 호출자는 이 분류로 사용자용 메시지를 만듭니다.
type Kind int

const (
	KindOther Kind = iota
	KindNotFound
	KindAlreadyExists
	KindInvalidInput
	KindNotImplemented
	KindExecution
)

// String은 분류 이름을 반환합니다.
func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindAlreadyExists:
		return "already_exists"
	case KindInvalidInput:
		return "invalid_input"
	case KindNotImplemented:
		return "not_implemented"
	case KindExecution:
		return "execution_error"
	default:
		return "other"
	}
}

// Error는 플러그인 코어의 유일한 실패 어휘입니다.
type Error struct {
	// Kind는 실패 분류입니다.
	Kind Kind
	// Detail은 리소스 이름, 사유 또는 진단 메시지입니다.
	Detail string
	// Err는 원인 에러입니다. nil일 수 있습니다.
	Err error
}

// Error는 사람이 읽을 수 있는 메시지를 반환합니다.
func (e *Error) Error() string {
	var msg string
	switch e.Kind {
	case KindNotFound:
		msg = "not found: " + e.Detail
	case KindAlreadyExists:
		msg = "already exists: " + e.Detail
	case KindInvalidInput:
		msg = "invalid input: " + e.Detail
	case KindNotImplemented:
		msg = "operation not implemented"
		if e.Detail != "" {
			msg += ": " + e.Detail
		}
	case KindExecution:
		msg = "execution error: " + e.Detail
	default:
		msg = "error: " + e.Detail
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap은 원인 에러를 반환합니다.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is는 같은 Kind의 분류 sentinel과 일치하는지 확인합니다.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Detail == "" && t.Err == nil && t.Kind == e.Kind
}

// errors.Is로 분류를 확인하기 위한 sentinel입니다.
var (
	ErrNotFound       = &Error{Kind: KindNotFound}
	ErrAlreadyExists  = &Error{Kind: KindAlreadyExists}
	ErrInvalidInput   = &Error{Kind: KindInvalidInput}
	ErrNotImplemented = &Error{Kind: KindNotImplemented}
	ErrExecution      = &Error{Kind: KindExecution}
	ErrOther          = &Error{Kind: KindOther}
)

// NotFound는 resource를 찾을 수 없다는 에러를 만듭니다.
func NotFound(resource string) error {
	return &Error{Kind: KindNotFound, Detail: resource}
}

// AlreadyExists는 resource가 이미 존재한다는 에러를 만듭니다.
func AlreadyExists(resource string) error {
	return &Error{Kind: KindAlreadyExists, Detail: resource}
}

// InvalidInput은 입력이 잘못되었다는 에러를 만듭니다.
func InvalidInput(reason string) error {
	return &Error{Kind: KindInvalidInput, Detail: reason}
}

// NotImplemented는 지원하지 않는 동작에 대한 에러를 만듭니다.
func NotImplemented(what string) error {
	return &Error{Kind: KindNotImplemented, Detail: what}
}

// ExecutionError는 외부 프로세스나 코덱 실패를 나타냅니다.
// detail에는 원래 진단 메시지(stderr 등)를 그대로 담아야 합니다.
func ExecutionError(detail string, cause error) error {
	return &Error{Kind: KindExecution, Detail: detail, Err: cause}
}

// Other는 분류되지 않은 실패를 나타냅니다.
func Other(detail string, cause error) error {
	return &Error{Kind: KindOther, Detail: detail, Err: cause}
}

// KindOf는 임의의 에러를 분류합니다. 분류되지 않은 에러는 KindOther입니다.
func KindOf(err error) Kind {
	if err == nil {
		return KindOther
	}
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindOther
}
