package zkproof

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	zkconfig "github.com/weisyn/traitproof/internal/config/zkproof"
	logimpl "github.com/weisyn/traitproof/internal/core/infrastructure/log"
	"github.com/weisyn/traitproof/pkg/interfaces/config"
	"github.com/weisyn/traitproof/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/traitproof/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/traitproof/pkg/types"
)

// ModuleInput 证明引擎模块依赖
type ModuleInput struct {
	fx.In

	ConfigProvider config.Provider
	Logger         log.Logger            `optional:"true"`
	Registerer     prometheus.Registerer `optional:"true"`
	EventBus       event.EventBus        `optional:"true"`
	Lifecycle      fx.Lifecycle
}

// ModuleOutput 证明引擎模块输出
type ModuleOutput struct {
	fx.Out

	Manager  *Manager
	KeyStore KeyStore
}

// Module 返回证明引擎模块
func Module() fx.Option {
	return fx.Module("zkproof",
		fx.Provide(ProvideServices),
	)
}

// NewKeyStore 按配置选择密钥存储：配置了远程地址时使用只读 HTTP 存储
func NewKeyStore(opts *zkconfig.ZKProofOptions) KeyStore {
	if opts.RemoteKeyURL != "" {
		return NewHTTPKeyStore(opts.RemoteKeyURL, nil)
	}
	return NewFileKeyStore(opts.KeyDir, opts.ReadOnlyKeys)
}

// ProvideServices 构造证明引擎，启动时完成初始化
func ProvideServices(input ModuleInput) (ModuleOutput, error) {
	opts := input.ConfigProvider.GetZKProof()
	logger := logimpl.NewModuleLogger(input.Logger, "zkproof")
	if logger == nil {
		logger = logimpl.NewNop()
	}

	store := NewKeyStore(opts)
	managerOpts := []Option{WithMetrics(NewMetrics(input.Registerer))}
	if input.EventBus != nil {
		managerOpts = append(managerOpts, WithStateObserver(PublishStates(input.EventBus)))
	}
	manager, err := NewManager(logger, opts, store, managerOpts...)
	if err != nil {
		return ModuleOutput{}, err
	}

	input.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return manager.Initialize(ctx)
		},
	})

	return ModuleOutput{Manager: manager, KeyStore: store}, nil
}

// PublishStates 把状态迁移转发到事件总线
func PublishStates(bus event.EventBus) StateObserver {
	return func(kind types.ProofKind, from, to ProofState) {
		bus.Publish(event.EventProofState, event.ProofStateChanged{
			Kind: string(kind),
			From: from.String(),
			To:   to.String(),
		})
	}
}
