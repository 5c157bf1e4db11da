package contentstore

import (
	"context"

	"go.uber.org/fx"

	csconfig "github.com/weisyn/traitproof/internal/config/contentstore"
	"github.com/weisyn/traitproof/internal/core/infrastructure/storage/badger"
	"github.com/weisyn/traitproof/pkg/interfaces/config"
	interfaces "github.com/weisyn/traitproof/pkg/interfaces/infrastructure/contentstore"
	"github.com/weisyn/traitproof/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/traitproof/pkg/interfaces/infrastructure/storage"
)

// ModuleParams 内容存储模块依赖
type ModuleParams struct {
	fx.In

	Provider    config.Provider
	Logger      log.Logger           `optional:"true"`
	BadgerStore storage.BadgerStore `optional:"true"`
	Lifecycle   fx.Lifecycle
}

// ModuleOutput 内容存储模块输出
type ModuleOutput struct {
	fx.Out

	ContentStore interfaces.ContentStore
}

// Module 返回内容存储模块
func Module() fx.Option {
	return fx.Module("contentstore",
		fx.Provide(ProvideServices),
	)
}

// ProvideServices 按配置选择后端：badger 共享本地库，否则使用内存存储
func ProvideServices(params ModuleParams) (ModuleOutput, error) {
	opts := params.Provider.GetContentStore()
	var logger log.Logger
	if params.Logger != nil {
		logger = params.Logger.With("module", "contentstore")
	}

	datastore := NewMemoryDatastore()
	if opts.Backend == csconfig.BackendBadger && params.BadgerStore != nil {
		datastore = badger.NewDatastore(params.BadgerStore, "content")
	} else if opts.Backend == csconfig.BackendBadger && logger != nil {
		logger.Warn("未提供BadgerDB存储，内容存储回退到内存后端")
	}

	store, err := New(datastore, opts, logger)
	if err != nil {
		return ModuleOutput{}, err
	}
	params.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error { return store.Close() },
	})
	return ModuleOutput{ContentStore: store}, nil
}
