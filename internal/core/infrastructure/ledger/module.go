package ledger

import (
	"context"
	"fmt"

	"go.uber.org/fx"

	ledgerconfig "github.com/weisyn/traitproof/internal/config/ledger"
	logimpl "github.com/weisyn/traitproof/internal/core/infrastructure/log"
	"github.com/weisyn/traitproof/pkg/interfaces/config"
	"github.com/weisyn/traitproof/pkg/interfaces/infrastructure/clock"
	interfaces "github.com/weisyn/traitproof/pkg/interfaces/infrastructure/ledger"
	"github.com/weisyn/traitproof/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/traitproof/pkg/interfaces/infrastructure/storage"
)

// ModuleParams 账本模块依赖
type ModuleParams struct {
	fx.In

	Provider    config.Provider
	Clock       clock.Clock
	Logger      log.Logger          `optional:"true"`
	BadgerStore storage.BadgerStore `optional:"true"`
	Lifecycle   fx.Lifecycle
}

// ModuleOutput 账本模块输出
type ModuleOutput struct {
	fx.Out

	Ledger interfaces.Ledger
}

// Module 返回账本模块
func Module() fx.Option {
	return fx.Module("ledger",
		fx.Provide(ProvideServices),
	)
}

// ProvideServices 按配置创建账本
func ProvideServices(params ModuleParams) (ModuleOutput, error) {
	opts := params.Provider.GetLedger()
	logger := logimpl.NewModuleLogger(params.Logger, "ledger")
	switch opts.Backend {
	case ledgerconfig.BackendRedis:
	case ledgerconfig.BackendBadger:
		if params.BadgerStore == nil {
			return ModuleOutput{}, fmt.Errorf("账本配置为badger后端，但本地存储不可用")
		}
		return ModuleOutput{Ledger: NewBadgerLedger(params.BadgerStore, opts.KeyPrefix, params.Clock, logger)}, nil
	default:
		return ModuleOutput{Ledger: NewMemoryLedger(params.Clock)}, nil
	}

	l, err := NewRedisLedgerFromConfig(opts, params.Clock, logger)
	if err != nil {
		return ModuleOutput{}, err
	}
	if logger != nil {
		logger.Infof("账本使用Redis后端: addr=%s", opts.RedisAddr)
	}
	params.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error { return l.Close() },
	})
	return ModuleOutput{Ledger: l}, nil
}
