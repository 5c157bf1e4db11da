// Package http 提供证明验证的 HTTP 服务
package http

import (
	"context"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	logimpl "github.com/weisyn/traitproof/internal/core/infrastructure/log"
	"github.com/weisyn/traitproof/internal/core/verification"
	"github.com/weisyn/traitproof/internal/core/zkproof"
	"github.com/weisyn/traitproof/pkg/interfaces/config"
	"github.com/weisyn/traitproof/pkg/interfaces/infrastructure/log"
)

// ModuleInput HTTP 模块输入依赖
type ModuleInput struct {
	fx.In

	Lifecycle      fx.Lifecycle
	ConfigProvider config.Provider
	Logger         log.Logger             `optional:"true"`
	Protocol       *verification.Protocol
	Engine         *zkproof.Manager
	Registerer     prometheus.Registerer `optional:"true"`
	Gatherer       prometheus.Gatherer   `optional:"true"`
}

// ModuleOutput HTTP 模块输出
type ModuleOutput struct {
	fx.Out

	Server *Server
}

// ProvideServer 构建服务器并挂接生命周期
func ProvideServer(input ModuleInput) ModuleOutput {
	logger := logimpl.NewModuleLogger(input.Logger, "http")
	if logger == nil {
		logger = logimpl.NewNop()
	}
	gin.SetMode(gin.ReleaseMode)
	gin.DefaultWriter = io.Discard

	server := NewServer(logger, input.ConfigProvider.GetAPI(), ServerDeps{
		Verifier:   input.Protocol,
		Engine:     input.Engine,
		Registerer: input.Registerer,
		Gatherer:   input.Gatherer,
	})

	input.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return server.Start()
		},
		OnStop: func(ctx context.Context) error {
			return server.Stop(ctx)
		},
	})
	return ModuleOutput{Server: server}
}

// Module 返回 HTTP 模块
//
// 只有被 fx.Invoke 引用时服务器才会启动，CLI 的一次性命令不引入本模块。
func Module() fx.Option {
	return fx.Module("http",
		fx.Provide(ProvideServer),
		fx.Invoke(func(*Server) {}),
	)
}
