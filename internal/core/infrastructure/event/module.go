package event

import (
	"go.uber.org/fx"

	logimpl "github.com/weisyn/traitproof/internal/core/infrastructure/log"
	"github.com/weisyn/traitproof/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/traitproof/pkg/interfaces/infrastructure/log"
)

// ModuleParams 事件模块依赖
type ModuleParams struct {
	fx.In

	Logger log.Logger `optional:"true"`
}

// ModuleOutput 事件模块输出
type ModuleOutput struct {
	fx.Out

	EventBus event.EventBus
}

// Module 返回事件模块
func Module() fx.Option {
	return fx.Module("event",
		fx.Provide(func(params ModuleParams) ModuleOutput {
			return ModuleOutput{EventBus: New(logimpl.NewModuleLogger(params.Logger, "event"))}
		}),
	)
}
