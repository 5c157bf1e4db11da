package proofrecord

import (
	"go.uber.org/fx"

	logimpl "github.com/weisyn/traitproof/internal/core/infrastructure/log"
	"github.com/weisyn/traitproof/internal/core/zkproof"
	"github.com/weisyn/traitproof/pkg/interfaces/config"
	"github.com/weisyn/traitproof/pkg/interfaces/infrastructure/clock"
	"github.com/weisyn/traitproof/pkg/interfaces/infrastructure/contentstore"
	"github.com/weisyn/traitproof/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/traitproof/pkg/interfaces/infrastructure/ledger"
	"github.com/weisyn/traitproof/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/traitproof/pkg/interfaces/infrastructure/storage"
)

// ModuleInput 证明记录模块依赖
type ModuleInput struct {
	fx.In

	ConfigProvider config.Provider
	Clock          clock.Clock
	Engine         *zkproof.Manager
	Logger         log.Logger                `optional:"true"`
	ContentStore   contentstore.ContentStore `optional:"true"`
	Ledger         ledger.Ledger             `optional:"true"`
	BadgerStore    storage.BadgerStore       `optional:"true"`
	EventBus       event.EventBus            `optional:"true"`
}

// ModuleOutput 证明记录模块输出
type ModuleOutput struct {
	fx.Out

	Manager *Manager
	Store   Store
}

// Module 返回证明记录模块
func Module() fx.Option {
	return fx.Module("proofrecord",
		fx.Provide(ProvideServices),
	)
}

// ProvideServices 组装证明记录管理器
func ProvideServices(input ModuleInput) ModuleOutput {
	logger := logimpl.NewModuleLogger(input.Logger, "proofrecord")
	if logger == nil {
		logger = logimpl.NewNop()
	}

	var store Store = NewMemoryStore()
	if input.BadgerStore != nil {
		store = NewBadgerStore(input.BadgerStore)
	}

	opts := []Option{
		WithStore(store),
		WithRevocationWindow(input.ConfigProvider.GetLedger().RevocationWindow),
	}
	if input.ContentStore != nil {
		opts = append(opts, WithContentStore(input.ContentStore))
	}
	if input.Ledger != nil {
		opts = append(opts, WithLedger(input.Ledger))
	}

	if input.EventBus != nil {
		opts = append(opts, WithEventBus(input.EventBus))
	}

	manager := NewManager(logger, input.Clock, input.Engine, input.ConfigProvider.GetRecords(), opts...)
	return ModuleOutput{Manager: manager, Store: store}
}
