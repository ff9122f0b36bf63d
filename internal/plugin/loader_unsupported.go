//go:build !((linux || darwin || freebsd) && cgo)

package plugin

import (
	"fmt"
)

// openLibrary는 지원되지 않는 플랫폼에서 항상 에러를 반환합니다.
// Go의 plugin 패키지는 cgo가 켜진 Linux, macOS, FreeBSD에서만 동작합니다.
func openLibrary(path string) (Library, error) {
	return nil, fmt.Errorf("%w: cannot load %s", ErrPluginsUnsupported, path)
}
