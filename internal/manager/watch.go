package manager

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/insajin/smart-transfer/internal/plugin"
)

// WatchEvent는 감시 중 새 라이브러리를 처리한 결과입니다.
type WatchEvent struct {
	Path   string
	Plugin string
	Err    error
}

// Watch는 플러그인 디렉토리를 감시하며 새로 생긴 라이브러리를 로드하고 등록합니다.
// 감시 설정이 끝난 뒤 반환되며, 결과는 채널로 전달됩니다. ctx가 끝나면 채널이 닫힙니다.
func (m *Manager) Watch(ctx context.Context) (<-chan WatchEvent, error) {
	dir := m.pluginsDir
	if dir == "" {
		return nil, plugin.InvalidInput("plugin directory is not configured")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, plugin.Other("failed to create plugin directory "+dir, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, plugin.Other("failed to create watcher", err)
	}
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, plugin.Other("failed to watch "+dir, err)
	}

	events := make(chan WatchEvent, 8)
	go m.watchLoop(ctx, watcher, events)

	m.logger.Info().Str("dir", dir).Msg("플러그인 디렉토리 감시 시작")
	return events, nil
}

func (m *Manager) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, out chan<- WatchEvent) {
	defer close(out)
	defer watcher.Close()

	// 성공적으로 등록한 경로. 복사 중 Write 이벤트로 다시 로드하지 않습니다.
	loaded := make(map[string]bool)

	for {
		select {
		case <-ctx.Done():
			m.logger.Debug().Msg("플러그인 디렉토리 감시 종료")
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 || !plugin.IsLibrary(event.Name) {
				continue
			}
			path := filepath.Clean(event.Name)
			if loaded[path] {
				continue
			}
			ev := m.loadWatched(path)
			if ev.Err == nil || errors.Is(ev.Err, plugin.ErrAlreadyExists) {
				loaded[path] = true
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			m.logger.Warn().Err(err).Msg("플러그인 디렉토리 감시 에러")
		}
	}
}

// loadWatched는 라이브러리 하나를 로드하고 등록합니다.
func (m *Manager) loadWatched(path string) WatchEvent {
	h, err := m.loader.Load(path)
	if err != nil {
		m.metrics.LibrariesSkipped.Add(1)
		m.logger.Warn().Err(err).Str("path", path).Msg("새 플러그인 로드 실패")
		return WatchEvent{Path: path, Err: err}
	}
	m.metrics.LibrariesLoaded.Add(1)

	name := h.Plugin().Config().Name
	if err := m.register(name, h); err != nil {
		m.logger.Warn().Err(err).Str("plugin", name).Str("path", path).Msg("새 플러그인 등록 실패")
		return WatchEvent{Path: path, Plugin: name, Err: err}
	}
	m.logger.Info().Str("plugin", name).Str("path", path).Msg("새 플러그인 등록 완료")
	return WatchEvent{Path: path, Plugin: name}
}
