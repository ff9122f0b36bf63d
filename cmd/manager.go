package cmd

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/insajin/smart-transfer/internal/adapters"
	"github.com/insajin/smart-transfer/internal/config"
	"github.com/insajin/smart-transfer/internal/manager"
)

// openManager는 설정에 따라 Manager를 만들고 내장/동적 플러그인을 등록합니다.
// 호출자는 사용 후 Shutdown을 호출해야 합니다.
func openManager() (*manager.Manager, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("설정 로드 실패: %w", err)
	}

	m := manager.New(
		manager.WithLogger(log.Logger),
		manager.WithPluginsDir(cfg.Plugins.Dir),
		manager.WithReplaceOnRegister(cfg.Plugins.ReplaceOnRegister),
	)

	builtins := adapters.Builtins(adapters.Settings{
		SevenZipBinary:  cfg.Adapters.SevenZip.Binary,
		SevenZipTimeout: time.Duration(cfg.Adapters.SevenZip.TimeoutSeconds) * time.Second,
		Logger:          log.Logger,
	})
	if err := m.RegisterBuiltins(builtins); err != nil {
		_ = m.Shutdown()
		return nil, nil, fmt.Errorf("내장 플러그인 등록 실패: %w", err)
	}

	// 동적 플러그인 로드 실패는 내장 플러그인 사용을 막지 않습니다.
	if n, err := m.LoadDynamic(); err != nil {
		log.Warn().Err(err).Str("dir", cfg.Plugins.Dir).Msg("동적 플러그인 로드 실패")
	} else if n > 0 {
		log.Debug().Int("count", n).Msg("동적 플러그인 로드 완료")
	}

	return m, cfg, nil
}

// closeManager는 Shutdown 실패를 로그로 남깁니다.
func closeManager(m *manager.Manager) {
	if err := m.Shutdown(); err != nil {
		log.Warn().Err(err).Msg("플러그인 정리 중 오류")
	}
}
