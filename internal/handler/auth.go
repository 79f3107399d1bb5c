package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/course-stream/internal/model"
	"github.com/iliyamo/course-stream/internal/repository"
	"github.com/iliyamo/course-stream/internal/utils"
)

// UserFinder looks a user up by email for login.
type UserFinder interface {
	GetByEmail(ctx context.Context, email string) (model.User, error)
}

// AuthHandler serves the login endpoint.
type AuthHandler struct {
	Users     UserFinder
	JWTSecret string
	TTL       time.Duration
	Log       *zap.Logger
}

func NewAuthHandler(users UserFinder, secret string, ttl time.Duration, log *zap.Logger) *AuthHandler {
	if users == nil || secret == "" {
		panic("missing dependency passed to NewAuthHandler")
	}
	return &AuthHandler{Users: users, JWTSecret: secret, TTL: ttl, Log: log}
}

type loginReq struct {
	Email    string `json:"email" validate:"required,max=255"`
	Password string `json:"password" validate:"required,max=72"`
}

type loginResp struct {
	Token string `json:"token"`
}

// Login checks the credentials and returns a signed login token carrying
// {id, email, role}.  Unknown email and wrong password get the same 401 so
// the endpoint does not reveal which accounts exist.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := getValidator().Struct(req); err != nil {
		if missingField(err) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "email and password are required"})
		}
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		// burn the same bcrypt time as a real comparison
		utils.VerifyPassword("", req.Password)
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	case err != nil:
		h.Log.Error("login: load user", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}

	tok, err := utils.NewAccessToken(h.JWTSecret, model.Identity{ID: u.ID, Email: u.Email, Role: u.Role}, h.TTL)
	if err != nil {
		h.Log.Error("login: sign token", zap.String("user_id", u.ID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
	return c.JSON(http.StatusOK, loginResp{Token: tok.Token})
}
