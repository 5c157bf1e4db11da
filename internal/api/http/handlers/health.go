package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apitypes "github.com/weisyn/traitproof/internal/api/http/types"
)

// ReadinessProbe 组件就绪检查
type ReadinessProbe interface {
	Ready() bool
}

// HealthHandler 健康检查端点处理器
//
//   - /health: 完整健康报告
//   - /health/live: 存活检查
//   - /health/ready: 就绪检查（证明引擎完成初始化）
type HealthHandler struct {
	version   string
	startTime time.Time
	engine    ReadinessProbe
}

// NewHealthHandler 创建健康检查处理器
func NewHealthHandler(version string, engine ReadinessProbe) *HealthHandler {
	return &HealthHandler{version: version, startTime: time.Now(), engine: engine}
}

// RegisterRoutes 注册路由
func (h *HealthHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.Health)
	r.GET("/health/live", h.Live)
	r.GET("/health/ready", h.Ready)
}

// Health 完整健康报告
func (h *HealthHandler) Health(c *gin.Context) {
	ready := h.engine != nil && h.engine.Ready()
	resp := apitypes.HealthResponse{
		Status:     "healthy",
		Version:    h.version,
		Uptime:     time.Since(h.startTime).Round(time.Second).String(),
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Components: map[string]string{"zkproof": "ready"},
	}
	status := http.StatusOK
	if !ready {
		resp.Status = "degraded"
		resp.Components["zkproof"] = "initializing"
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, resp)
}

// Live 存活检查
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}

// Ready 就绪检查
func (h *HealthHandler) Ready(c *gin.Context) {
	if h.engine == nil || !h.engine.Ready() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
