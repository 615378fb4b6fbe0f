package handler

import (
	"net/http"

	"authgate/config"
	"authgate/internal/delivery/api/middleware"
	"authgate/internal/delivery/api/response"
	domainerrors "authgate/internal/domain/errors"
	"authgate/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// AuthHandlerParams holds dependencies for AuthHandler, injected by Fx.
type AuthHandlerParams struct {
	fx.In

	AuthUC usecase.AuthUsecase
	Config *config.Config
}

// AuthHandler holds dependencies for signup, login and session handlers
type AuthHandler struct {
	authUC       usecase.AuthUsecase
	cookieName   string
	secureCookie bool
}

// NewAuthHandler is the constructor for AuthHandler
func NewAuthHandler(params AuthHandlerParams) *AuthHandler {
	return &AuthHandler{
		authUC:       params.AuthUC,
		cookieName:   params.Config.Auth.CookieName,
		secureCookie: params.Config.IsProduction(),
	}
}

// SignupRequest represents the request body for creating an account
type SignupRequest struct {
	Username  string `json:"username" validate:"min=3,max=20"`
	Email     string `json:"email" validate:"email"`
	Password  string `json:"password" validate:"min=6,maxbytes=72"`
	FirstName string `json:"firstName" validate:"omitempty,min=2,max=50"`
	LastName  string `json:"lastName" validate:"omitempty,min=2,max=50"`
}

// LoginRequest represents the request body for logging in.
// Presence is checked by the usecase so both failures share one message.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup handles account registration
func (h *AuthHandler) Signup(c echo.Context) error {
	var req SignupRequest
	if err := c.Bind(&req); err != nil {
		return domainerrors.ErrInvalidInput.WrapMessage(err.Error())
	}

	if err := c.Validate(&req); err != nil {
		return err
	}

	output, err := h.authUC.Signup(c.Request().Context(), usecase.SignupInput{
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		return err
	}

	h.setSessionCookie(c, output)

	return response.Success(c, http.StatusCreated, output.Account)
}

// Login handles credential verification
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return domainerrors.ErrInvalidInput.WrapMessage(err.Error())
	}

	output, err := h.authUC.Login(c.Request().Context(), usecase.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	h.setSessionCookie(c, output)

	return response.Success(c, http.StatusOK, output.Account)
}

// Me returns the account behind the current session
func (h *AuthHandler) Me(c echo.Context) error {
	account, ok := middleware.GetAccount(c)
	if !ok {
		return domainerrors.ErrAuthenticationRequired
	}

	return response.Success(c, http.StatusOK, account)
}

// setSessionCookie stores the token in a cookie that lives exactly as long as the token.
func (h *AuthHandler) setSessionCookie(c echo.Context, output *usecase.AuthOutput) {
	c.SetCookie(&http.Cookie{
		Name:     h.cookieName,
		Value:    output.Token,
		Path:     "/",
		MaxAge:   int(output.TokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteStrictMode,
	})
}
