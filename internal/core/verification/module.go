package verification

import (
	"go.uber.org/fx"

	logimpl "github.com/weisyn/traitproof/internal/core/infrastructure/log"
	"github.com/weisyn/traitproof/internal/core/proofrecord"
	"github.com/weisyn/traitproof/pkg/interfaces/infrastructure/clock"
	"github.com/weisyn/traitproof/pkg/interfaces/infrastructure/log"
)

// ModuleInput 验证模块依赖
type ModuleInput struct {
	fx.In

	Records *proofrecord.Manager
	Clock   clock.Clock
	Logger  log.Logger `optional:"true"`
}

// Module 返回验证模块
func Module() fx.Option {
	return fx.Module("verification",
		fx.Provide(func(input ModuleInput) *Protocol {
			logger := logimpl.NewModuleLogger(input.Logger, "verification")
			if logger == nil {
				logger = logimpl.NewNop()
			}
			return NewProtocol(input.Records, input.Clock, logger)
		}),
	)
}
