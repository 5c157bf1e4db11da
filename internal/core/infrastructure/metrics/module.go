// Package metrics 提供进程内共享的 prometheus 注册表
//
// 证明引擎与 HTTP 中间件把指标注册到这里，/metrics 从同一个注册表采集。
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/fx"
)

// ModuleOutput 指标模块输出
type ModuleOutput struct {
	fx.Out

	Registry   *prometheus.Registry
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// Module 返回指标模块
func Module() fx.Option {
	return fx.Module("metrics",
		fx.Provide(ProvideRegistry),
	)
}

// ProvideRegistry 创建独立注册表，附带 Go 运行时与进程指标
func ProvideRegistry() ModuleOutput {
	reg := NewRegistry()
	return ModuleOutput{Registry: reg, Registerer: reg, Gatherer: reg}
}

// NewRegistry 创建注册表
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}
