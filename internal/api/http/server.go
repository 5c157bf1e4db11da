package http

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/weisyn/traitproof/internal/api/http/handlers"
	"github.com/weisyn/traitproof/internal/api/http/middleware"
	apitypes "github.com/weisyn/traitproof/internal/api/http/types"
	apiconfig "github.com/weisyn/traitproof/internal/config/api"
	"github.com/weisyn/traitproof/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/traitproof/internal/app/version"
)

// Server 验证服务 HTTP 服务器
//
// 路由:
//   - GET /health, /health/live, /health/ready
//   - GET /metrics（EnableMetrics 且提供了 gatherer 时）
//   - GET /api/v1/verify/:ref
//   - GET /api/v1/verify?proof=<token>
type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	options    *apiconfig.APIOptions
	logger     log.Logger

	mu       sync.Mutex
	listener net.Listener
	done     chan struct{}
}

// ServerDeps 服务器依赖
type ServerDeps struct {
	Verifier   handlers.Verifier
	Engine     handlers.ReadinessProbe
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewServer 创建 HTTP 服务器并完成路由注册
func NewServer(logger log.Logger, options *apiconfig.APIOptions, deps ServerDeps) *Server {
	s := &Server{
		router:  gin.New(),
		options: options,
		logger:  logger,
	}
	s.setupRoutes(deps)
	s.httpServer = &http.Server{
		Handler:      s.router,
		ReadTimeout:  options.HTTP.ReadTimeout,
		WriteTimeout: options.HTTP.WriteTimeout,
	}
	return s
}

// Router 返回路由引擎，供测试直接驱动
func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) setupRoutes(deps ServerDeps) {
	r := s.router
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(s.logger))
	if limit := s.options.HTTP.MaxRequestSize; limit > 0 {
		r.Use(func(c *gin.Context) {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, int64(limit))
			c.Next()
		})
	}
	if s.options.HTTP.EnableMetrics && deps.Registerer != nil {
		r.Use(middleware.NewMetrics(deps.Registerer).Middleware())
	}

	handlers.NewHealthHandler(version.GetVersion(), deps.Engine).RegisterRoutes(r)

	if s.options.HTTP.EnableMetrics && deps.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	v1 := r.Group("/api/v1")
	handlers.NewVerifyHandler(s.logger, deps.Verifier).RegisterRoutes(v1)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, apitypes.NewErrorResponse(
			apitypes.ErrNotFound, "route not found: "+c.Request.URL.Path, middleware.GetRequestID(c)))
	})
}

// Addr 实际监听地址，未启动时为空
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Start 监听端口并在后台提供服务
//
// 端口被占用时直接返回错误，不做端口漂移。
func (s *Server) Start() error {
	addr := net.JoinHostPort(s.options.HTTP.Host, fmt.Sprintf("%d", s.options.HTTP.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("监听HTTP端口失败 %s: %w", addr, err)
	}

	s.mu.Lock()
	s.listener = ln
	s.done = make(chan struct{})
	done := s.done
	s.mu.Unlock()

	s.logger.Infof("HTTP验证服务已启动: %s", ln.Addr().String())
	go func() {
		defer close(done)
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Errorf("HTTP服务器运行失败: %v", err)
		}
	}()
	return nil
}

// Stop 优雅关闭，等待活跃请求完成，最长 ShutdownTimeout
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	done := s.done
	s.done = nil
	s.mu.Unlock()
	if done == nil {
		return nil
	}

	s.logger.Info("正在关闭HTTP服务器")
	stopCtx := ctx
	if timeout := s.options.HTTP.ShutdownTimeout; timeout > 0 {
		var cancel context.CancelFunc
		stopCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := s.httpServer.Shutdown(stopCtx); err != nil {
		s.logger.Errorf("HTTP服务器关闭出错: %v", err)
		return err
	}
	<-done
	s.logger.Info("HTTP服务器已关闭")
	return nil
}
