// Package storage 提供本地持久化存储的依赖注入模块
package storage

import (
	"context"
	"strings"

	"go.uber.org/fx"

	badgerconfig "github.com/weisyn/traitproof/internal/config/storage/badger"
	"github.com/weisyn/traitproof/internal/core/infrastructure/storage/badger"
	"github.com/weisyn/traitproof/pkg/interfaces/config"
	"github.com/weisyn/traitproof/pkg/interfaces/infrastructure/log"
	storageInterface "github.com/weisyn/traitproof/pkg/interfaces/infrastructure/storage"
)

// ModuleParams 定义存储模块的依赖参数
type ModuleParams struct {
	fx.In

	Provider  config.Provider
	Logger    log.Logger `optional:"true"`
	Lifecycle fx.Lifecycle
}

// ModuleOutput 定义存储模块的输出结构
type ModuleOutput struct {
	fx.Out

	BadgerStore storageInterface.BadgerStore
}

// Module 返回存储模块
func Module() fx.Option {
	return fx.Module("storage",
		fx.Provide(ProvideServices),
	)
}

// ProvideServices 打开 BadgerDB 并注册关闭钩子
func ProvideServices(params ModuleParams) (ModuleOutput, error) {
	var logger log.Logger
	if params.Logger != nil {
		logger = params.Logger.With("module", "storage")
	}

	cfg := badgerconfig.NewFromOptions(params.Provider.GetBadger())
	store, err := badger.New(cfg, logger)
	if err != nil {
		return ModuleOutput{}, err
	}

	params.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			if err := store.Close(); err != nil {
				// LOCK 文件已被清理属于正常关闭路径
				if strings.Contains(err.Error(), "LOCK: no such file or directory") {
					if logger != nil {
						logger.Warn("BadgerDB LOCK文件已不存在，这通常是正常的关闭过程")
					}
					return nil
				}
				return err
			}
			return nil
		},
	})

	return ModuleOutput{BadgerStore: store}, nil
}
