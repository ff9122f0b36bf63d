//go:build (linux || darwin || freebsd) && cgo

package plugin

import (
	"plugin"
)

// sharedObject는 Go plugin 패키지로 연 공유 객체입니다.
// Go 런타임은 공유 객체를 언로드하지 않으므로 라이브러리는 프로세스 수명 동안 유지됩니다.
type sharedObject struct {
	raw *plugin.Plugin
}

// Lookup은 export된 심볼을 찾습니다.
func (s *sharedObject) Lookup(symbol string) (any, error) {
	return s.raw.Lookup(symbol)
}

// openLibrary는 Go plugin 패키지를 사용하여 공유 객체를 엽니다.
func openLibrary(path string) (Library, error) {
	raw, err := plugin.Open(path)
	if err != nil {
		return nil, err
	}
	return &sharedObject{raw: raw}, nil
}
