package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pemapp/internal/models"
	"pemapp/internal/repository"
	"pemapp/internal/utils"
)

// Session keys for the active identity.
const (
	SessionEmailKey = "email"
	SessionNameKey  = "name"
)

// IdentityContextKey is where the identity-loading middleware puts the
// current identity for the handlers.
const IdentityContextKey = "identity"

// CurrentIdentity returns the identity loaded for this request, or the guest
// identity when nobody is logged in.
func CurrentIdentity(c *gin.Context) models.Identity {
	if v, ok := c.Get(IdentityContextKey); ok {
		if identity, ok := v.(models.Identity); ok {
			return identity
		}
	}
	return models.Identity{}
}

type AuthHandler struct {
	log   *zap.Logger
	users *repository.UserRepository
}

// NewAuthHandler builds the auth endpoints. users may be nil when the server
// runs without a database; accounts are then disabled and only the guest
// identity exists.
func NewAuthHandler(log *zap.Logger, users *repository.UserRepository) *AuthHandler {
	return &AuthHandler{log: log, users: users}
}

type registerRequest struct {
	Email    string `json:"email" binding:"required"`
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	if h.users == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "未配置数据库，当前仅支持访客模式"})
		return
	}

	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请填写完整的注册信息"})
		return
	}
	if !utils.IsValidEmail(req.Email) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "邮箱格式不正确"})
		return
	}
	if !utils.IsValidPassword(req.Password) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "密码长度至少为 6 位"})
		return
	}

	user, err := h.users.Create(c.Request.Context(), req.Email, req.Name, req.Password)
	if errors.Is(err, repository.ErrDuplicateEmail) {
		c.JSON(http.StatusConflict, gin.H{"error": "该邮箱已被注册"})
		return
	}
	if err != nil {
		h.log.Error("Failed to create user", zap.Error(err), zap.String("email", req.Email))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "注册失败，请稍后重试"})
		return
	}

	// Auto login after register.
	if err := h.saveSession(c, user.Identity()); err != nil {
		h.log.Error("Failed to save session after registration", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "注册失败，请稍后重试"})
		return
	}
	c.JSON(http.StatusOK, user.Identity())
}

func (h *AuthHandler) Login(c *gin.Context) {
	if h.users == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "未配置数据库，当前仅支持访客模式"})
		return
	}

	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请填写邮箱和密码"})
		return
	}

	// Failed logins must not touch session or namespace state.
	user, err := h.users.GetByEmail(c.Request.Context(), req.Email)
	if err != nil || !user.CheckPassword(req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "邮箱或密码错误"})
		return
	}

	if err := h.saveSession(c, user.Identity()); err != nil {
		h.log.Error("Failed to save session on login", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "登录失败，请稍后重试"})
		return
	}
	c.JSON(http.StatusOK, user.Identity())
}

func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	if err := session.Save(); err != nil {
		h.log.Error("Failed to clear session on logout", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "退出登录失败"})
		return
	}
	c.Status(http.StatusNoContent)
}

// Me reports the active identity; the guest identity has an empty email.
func (h *AuthHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, CurrentIdentity(c))
}

func (h *AuthHandler) saveSession(c *gin.Context, identity models.Identity) error {
	session := sessions.Default(c)
	session.Set(SessionEmailKey, identity.Email)
	session.Set(SessionNameKey, identity.Name)
	return session.Save()
}
