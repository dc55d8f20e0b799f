package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/devtrails/campdir/internal/auth"
	"github.com/devtrails/campdir/internal/config"
	"github.com/devtrails/campdir/internal/domain/user"
	"github.com/devtrails/campdir/internal/http/middlewares"
	"github.com/devtrails/campdir/internal/mailer"
	"github.com/devtrails/campdir/internal/repo/mongodb"
	"github.com/devtrails/campdir/internal/security"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UsersStore interface {
	Create(ctx context.Context, u user.User) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (user.User, error)
	Update(ctx context.Context, id primitive.ObjectID, req user.UpdateUserRequest, passwordHash string) (user.User, error)
	UpdatePassword(ctx context.Context, id primitive.ObjectID, passwordHash string) error
	ResetPassword(ctx context.Context, id primitive.ObjectID, passwordHash string) error
	SetResetToken(ctx context.Context, id primitive.ObjectID, tokenHash string, expire time.Time) error
	ClearResetToken(ctx context.Context, id primitive.ObjectID) error
	GetByResetToken(ctx context.Context, tokenHash string, now time.Time) (user.User, error)
}

type AuthHandler struct {
	users UsersStore
	jwt   *auth.Manager
	mail  mailer.Mailer
	cfg   config.Config
}

func NewAuthHandler(users UsersStore, jwtManager *auth.Manager, mail mailer.Mailer, cfg config.Config) *AuthHandler {
	return &AuthHandler{
		users: users,
		jwt:   jwtManager,
		mail:  mail,
		cfg:   cfg,
	}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UpdateDetailsRequest struct {
	Name  *string `json:"name" binding:"omitempty,min=2,max=80"`
	Email *string `json:"email" binding:"omitempty,email"`
}

type UpdatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=6"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	Password string `json:"password" binding:"required,min=6"`
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	var req user.RegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	hash, err := security.HashPassword(req.Password)

	if err != nil {
		RespondInternal(ctx, "Could not create user")
		return
	}

	u, err := h.users.Create(ctx.Request.Context(), user.New(req.Name, req.Email, hash, req.Role))

	if err != nil {
		if errors.Is(err, mongodb.ErrDuplicate) {
			RespondBadRequest(ctx, "Email is already registered")
			return
		}

		RespondInternal(ctx, "Could not create user")
		return
	}

	h.sendTokenResponse(ctx, u, http.StatusCreated)
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	foundUser, err := h.users.GetByEmail(ctx.Request.Context(), req.Email)

	if err != nil {
		// burn a comparison anyway so the miss is not observable by timing
		security.CheckPasswordDummy(req.Password)
		RespondUnauthorized(ctx, "Invalid credentials")
		return
	}

	if err := security.CheckPassword(foundUser.PasswordHash, req.Password); err != nil {
		RespondUnauthorized(ctx, "Invalid credentials")
		return
	}

	h.sendTokenResponse(ctx, foundUser, http.StatusOK)
}

// Logout overwrites the session cookie with a throwaway value that expires
// almost immediately.
func (h *AuthHandler) Logout(ctx *gin.Context) {
	secure := h.cfg.Env == "prod"

	ctx.SetSameSite(http.SameSiteStrictMode)
	ctx.SetCookie(middlewares.SessionCookie, "none", 10, "/", "", secure, true)

	RespondData(ctx, http.StatusOK, gin.H{})
}

func (h *AuthHandler) GetMe(ctx *gin.Context) {
	u, ok := middlewares.UserFromContext(ctx)

	if !ok {
		RespondUnauthorized(ctx, "Not authorized to access this route")
		return
	}

	RespondData(ctx, http.StatusOK, u)
}

func (h *AuthHandler) UpdateDetails(ctx *gin.Context) {
	u, ok := middlewares.UserFromContext(ctx)

	if !ok {
		RespondUnauthorized(ctx, "Not authorized to access this route")
		return
	}

	var req UpdateDetailsRequest

	if !BindJSON(ctx, &req) {
		return
	}

	updated, err := h.users.Update(ctx.Request.Context(), u.ID, user.UpdateUserRequest{
		Name:  req.Name,
		Email: req.Email,
	}, "")

	if err != nil {
		RespondRepoError(ctx, err, user.ErrNotFound, "User not found")
		return
	}

	RespondData(ctx, http.StatusOK, updated)
}

func (h *AuthHandler) UpdatePassword(ctx *gin.Context) {
	u, ok := middlewares.UserFromContext(ctx)

	if !ok {
		RespondUnauthorized(ctx, "Not authorized to access this route")
		return
	}

	var req UpdatePasswordRequest

	if !BindJSON(ctx, &req) {
		return
	}

	// re-prove the current secret before accepting a new one
	if err := security.CheckPassword(u.PasswordHash, req.CurrentPassword); err != nil {
		RespondUnauthorized(ctx, "Password is incorrect")
		return
	}

	hash, err := security.HashPassword(req.NewPassword)

	if err != nil {
		RespondInternal(ctx, "Could not update password")
		return
	}

	if err := h.users.UpdatePassword(ctx.Request.Context(), u.ID, hash); err != nil {
		RespondRepoError(ctx, err, user.ErrNotFound, "User not found")
		return
	}

	h.sendTokenResponse(ctx, u, http.StatusOK)
}

func (h *AuthHandler) ForgotPassword(ctx *gin.Context) {
	var req ForgotPasswordRequest

	if !BindJSON(ctx, &req) {
		return
	}

	u, err := h.users.GetByEmail(ctx.Request.Context(), req.Email)

	if err != nil {
		RespondNotFound(ctx, "There is no user with that email")
		return
	}

	raw, hashed, err := security.NewResetToken()

	if err != nil {
		RespondInternal(ctx, "Could not issue reset token")
		return
	}

	expire := time.Now().UTC().Add(h.cfg.ResetTokenTTL)

	if err := h.users.SetResetToken(ctx.Request.Context(), u.ID, hashed, expire); err != nil {
		RespondInternal(ctx, "Could not issue reset token")
		return
	}

	resetURL := fmt.Sprintf("%s://%s/api/v1/auth/forgotpassword/%s", requestScheme(ctx), ctx.Request.Host, raw)

	msg := mailer.Message{
		To:      u.Email,
		Subject: "Password reset",
		Body: "You are receiving this email because you (or someone else) requested a password reset. " +
			"Please make a PUT request to:\n\n" + resetURL,
	}

	if err := h.mail.Send(ctx.Request.Context(), msg); err != nil {
		// no silent retry: invalidate the token and surface the failure
		_ = h.users.ClearResetToken(ctx.Request.Context(), u.ID)
		RespondInternal(ctx, "Email could not be sent")
		return
	}

	RespondData(ctx, http.StatusOK, "Email sent")
}

func (h *AuthHandler) ResetPassword(ctx *gin.Context) {
	var req ResetPasswordRequest

	if !BindJSON(ctx, &req) {
		return
	}

	tokenHash := security.HashResetToken(ctx.Param("resettoken"))

	u, err := h.users.GetByResetToken(ctx.Request.Context(), tokenHash, time.Now().UTC())

	if err != nil {
		RespondBadRequest(ctx, "Invalid token")
		return
	}

	hash, err := security.HashPassword(req.Password)

	if err != nil {
		RespondInternal(ctx, "Could not reset password")
		return
	}

	// one update sets the password and consumes the token together
	if err := h.users.ResetPassword(ctx.Request.Context(), u.ID, hash); err != nil {
		RespondRepoError(ctx, err, user.ErrNotFound, "User not found")
		return
	}

	h.sendTokenResponse(ctx, u, http.StatusOK)
}

// sendTokenResponse issues the session token as an HTTP-only cookie and in
// the body, the same way on register, login and password changes.
func (h *AuthHandler) sendTokenResponse(ctx *gin.Context, u user.User, status int) {
	token, err := h.jwt.GenerateToken(u.ID.Hex(), u.Role)

	if err != nil {
		RespondInternal(ctx, "Could not generate token")
		return
	}

	secure := h.cfg.Env == "prod"
	maxAge := int(h.cfg.JWTCookieExpire.Seconds())

	ctx.SetSameSite(http.SameSiteStrictMode)
	ctx.SetCookie(middlewares.SessionCookie, token, maxAge, "/", "", secure, true)

	ctx.JSON(status, gin.H{
		"success": true,
		"token":   token,
	})
}

func requestScheme(ctx *gin.Context) string {
	if ctx.Request.TLS != nil {
		return "https"
	}
	return "http"
}
