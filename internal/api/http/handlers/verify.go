// Package handlers 提供验证服务的 HTTP 处理器
package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/weisyn/traitproof/internal/api/http/middleware"
	apitypes "github.com/weisyn/traitproof/internal/api/http/types"
	"github.com/weisyn/traitproof/internal/core/proofrecord"
	"github.com/weisyn/traitproof/internal/core/verification"
	"github.com/weisyn/traitproof/pkg/interfaces/infrastructure/log"
)

// Verifier 验证流程，由 verification.Protocol 实现
type Verifier interface {
	VerifyReference(ctx context.Context, contentRef string) *verification.Report
	VerifyBundle(ctx context.Context, uriOrToken string) *verification.Report
}

// VerifyHandler 验证端点处理器
//
// 任何判定（包括 invalid、unavailable）都以 200 返回报告，只有请求本身缺参数时返回 400。
type VerifyHandler struct {
	logger   log.Logger
	verifier Verifier
}

// NewVerifyHandler 创建验证处理器
func NewVerifyHandler(logger log.Logger, verifier Verifier) *VerifyHandler {
	return &VerifyHandler{logger: logger, verifier: verifier}
}

// RegisterRoutes 注册路由
func (h *VerifyHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/verify/:ref", h.VerifyReference)
	r.GET("/verify", h.VerifyBundle)
}

// VerifyReference GET /api/v1/verify/:ref
func (h *VerifyHandler) VerifyReference(c *gin.Context) {
	ref := strings.TrimSpace(c.Param("ref"))
	report := h.verifier.VerifyReference(c.Request.Context(), ref)
	h.logger.Debugf("按引用验证: ref=%s, verdict=%s", ref, report.Verdict)
	c.JSON(http.StatusOK, apitypes.NewSuccessResponse(report).WithRequestID(middleware.GetRequestID(c)))
}

// VerifyBundle GET /api/v1/verify?proof=<token>
func (h *VerifyHandler) VerifyBundle(c *gin.Context) {
	token := c.Query(proofrecord.ShareQueryParam)
	if token == "" {
		c.JSON(http.StatusBadRequest, apitypes.NewErrorResponse(
			apitypes.ErrInvalidArgument, "missing query parameter: "+proofrecord.ShareQueryParam, middleware.GetRequestID(c)))
		return
	}
	report := h.verifier.VerifyBundle(c.Request.Context(), token)
	h.logger.Debugf("按分享包验证: verdict=%s", report.Verdict)
	c.JSON(http.StatusOK, apitypes.NewSuccessResponse(report).WithRequestID(middleware.GetRequestID(c)))
}
