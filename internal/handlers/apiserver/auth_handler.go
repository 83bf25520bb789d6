package apiserver

import (
	"net/http"

	log "github.com/sirupsen/logrus"

	"matchgraph/internal/auth"
	"matchgraph/internal/middleware"
)

// AuthHandler 处理令牌吊销。令牌本身由身份服务签发。
type AuthHandler struct {
	TokenBlacklist auth.TokenBlacklist
}

// NewAuthHandler 创建一个新的 AuthHandler 实例。tokenBlacklist 可以为 nil（未启用 Redis）。
func NewAuthHandler(tokenBlacklist auth.TokenBlacklist) *AuthHandler {
	return &AuthHandler{TokenBlacklist: tokenBlacklist}
}

// LogoutHandler 处理用户登出请求，将当前 Token 加入黑名单直到其原始过期时间。
func (h *AuthHandler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetClaimsFromContext(r.Context())
	if !ok {
		writeJSONError(w, "missing token claims", http.StatusUnauthorized)
		return
	}
	if claims.ID == "" || claims.ExpiresAt == nil {
		writeJSONError(w, "token has no jti or expiry and cannot be revoked", http.StatusBadRequest)
		return
	}

	if h.TokenBlacklist == nil {
		log.WithField("user_id", claims.UserID).Warn("token blacklist disabled; logout does not revoke the token")
		writeJSONResponse(w, http.StatusOK, MessageResponse{Message: "Logged out"})
		return
	}

	if err := h.TokenBlacklist.Add(r.Context(), claims.ID, claims.ExpiresAt.Time); err != nil {
		log.WithError(err).WithField("user_id", claims.UserID).Error("failed to blacklist token")
		writeJSONError(w, "failed to log out", http.StatusInternalServerError)
		return
	}

	writeJSONResponse(w, http.StatusOK, MessageResponse{Message: "Logged out"})
}
