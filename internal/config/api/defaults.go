package api

import "time"

// API服务默认配置值
const (
	// defaultHTTPHost 监听全部网卡
	defaultHTTPHost = "0.0.0.0"

	// defaultHTTPPort 验证服务端口
	defaultHTTPPort = 8080

	defaultHTTPReadTimeout  = 15 * time.Second
	defaultHTTPWriteTimeout = 30 * time.Second
	defaultShutdownTimeout  = 10 * time.Second

	defaultEnableMetrics = true

	// defaultMaxRequestSize 分享令牌通过查询参数传递，4MB 足够
	defaultMaxRequestSize = 4 * 1024 * 1024
)
