package admin

import (
	"errors"
	"strings"

	"github.com/shiptrack-next/internal/http/response"
	"github.com/shiptrack-next/internal/service"

	"github.com/gin-gonic/gin"
)

// LoginRequest 运营登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login 运营账号登录
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "请求参数错误", err)
		return
	}

	token, expiresAt, err := h.AuthService.Login(strings.TrimSpace(req.Username), req.Password)
	if err != nil {
		if errors.Is(err, service.ErrOperatorCredentials) {
			requestLog(c).Warnw("admin_login_failed",
				"username", req.Username,
				"client_ip", c.ClientIP(),
			)
			respondError(c, response.CodeUnauthorized, "用户名或密码错误", nil)
			return
		}
		respondError(c, response.CodeInternal, "登录失败", err)
		return
	}

	response.Success(c, gin.H{
		"token":      token,
		"expires_at": expiresAt,
	})
}
