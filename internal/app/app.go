// Package app 组装证明服务的全部模块
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/fx"

	apihttp "github.com/weisyn/traitproof/internal/api/http"
	appconfig "github.com/weisyn/traitproof/internal/config"
	"github.com/weisyn/traitproof/internal/core/infrastructure/clock"
	"github.com/weisyn/traitproof/internal/core/infrastructure/contentstore"
	"github.com/weisyn/traitproof/internal/core/infrastructure/event"
	"github.com/weisyn/traitproof/internal/core/infrastructure/ledger"
	logimpl "github.com/weisyn/traitproof/internal/core/infrastructure/log"
	"github.com/weisyn/traitproof/internal/core/infrastructure/metrics"
	"github.com/weisyn/traitproof/internal/core/infrastructure/storage"
	"github.com/weisyn/traitproof/internal/core/proofrecord"
	"github.com/weisyn/traitproof/internal/core/verification"
	"github.com/weisyn/traitproof/internal/core/zkproof"
	"github.com/weisyn/traitproof/pkg/interfaces/config"
	eventif "github.com/weisyn/traitproof/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/traitproof/pkg/interfaces/infrastructure/log"
)

// stopTimeout 停止应用的最长等待时间
const stopTimeout = 60 * time.Second

// App 组装完成的应用
type App struct {
	fxApp *fx.App

	Config   config.Provider
	Logger   log.Logger
	Engine   *zkproof.Manager
	Records  *proofrecord.Manager
	Protocol *verification.Protocol
	Events   eventif.EventBus

	// Server 未启用 API 时为 nil
	Server *apihttp.Server
}

// SetupModules 按依赖顺序列出模块
func SetupModules(o *options) []fx.Option {
	modules := []fx.Option{
		fx.Provide(func() config.AppOptions { return o }),

		// 基础设施
		appconfig.Module(),
		logimpl.Module(),
		metrics.Module(),
		event.Module(),
		fx.Provide(clock.NewSystemClock),
		storage.Module(),
		contentstore.Module(),
		ledger.Module(),

		// 业务
		zkproof.Module(),
		proofrecord.Module(),
		verification.Module(),
	}
	if o.enableAPI {
		modules = append(modules, apihttp.Module())
	}
	return append(modules, o.extra...)
}

// New 加载配置并构建依赖图，不启动任何组件
func New(opts ...Option) (*App, error) {
	o := newOptions(opts...)
	if err := o.load(); err != nil {
		return nil, err
	}

	a := &App{}
	targets := []interface{}{&a.Config, &a.Logger, &a.Engine, &a.Records, &a.Protocol, &a.Events}
	if o.enableAPI {
		targets = append(targets, &a.Server)
	}

	a.fxApp = fx.New(
		fx.Options(SetupModules(o)...),
		fx.NopLogger,
		fx.Populate(targets...),
	)
	if err := a.fxApp.Err(); err != nil {
		return nil, fmt.Errorf("组装应用失败: %w", err)
	}
	return a, nil
}

// Start 执行全部 OnStart 钩子（证明引擎初始化、HTTP 监听等）
func (a *App) Start(ctx context.Context) error {
	if err := a.fxApp.Start(ctx); err != nil {
		return fmt.Errorf("启动应用失败: %w", err)
	}
	return nil
}

// Stop 执行全部 OnStop 钩子
func (a *App) Stop(ctx context.Context) error {
	return a.fxApp.Stop(ctx)
}

// Wait 阻塞直到收到 SIGINT/SIGTERM，然后优雅停止
func (a *App) Wait() error {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)

	sig := <-signals
	a.Logger.Infof("收到信号 %v，正在退出", sig)

	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	return a.Stop(ctx)
}

// Run 启动后执行 fn，结束时停止应用，供一次性命令使用
func Run(ctx context.Context, fn func(ctx context.Context, a *App) error, opts ...Option) error {
	a, err := New(append(opts, WithoutAPI())...)
	if err != nil {
		return err
	}
	if err := a.Start(ctx); err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
		defer cancel()
		if err := a.Stop(stopCtx); err != nil {
			a.Logger.Warnf("停止应用时出错: %v", err)
		}
	}()
	return fn(ctx, a)
}
