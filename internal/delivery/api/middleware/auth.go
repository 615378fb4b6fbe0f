package middleware

import (
	"strings"

	"authgate/config"
	domainerrors "authgate/internal/domain/errors"
	"authgate/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

const contextKeyAccount = "account"

// AuthMiddlewareParams holds dependencies for AuthMiddleware, injected by Fx.
type AuthMiddlewareParams struct {
	fx.In

	AuthUC usecase.AuthUsecase
	Config *config.Config
}

// AuthMiddleware resolves the session token of a request to an account.
type AuthMiddleware struct {
	authUC     usecase.AuthUsecase
	cookieName string
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(params AuthMiddlewareParams) *AuthMiddleware {
	return &AuthMiddleware{
		authUC:     params.AuthUC,
		cookieName: params.Config.Auth.CookieName,
	}
}

// Authenticate reads the session cookie, falling back to an Authorization: Bearer header,
// and stores the resolved account on the echo context.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := m.tokenFromRequest(c)
		if token == "" {
			return domainerrors.ErrAuthenticationRequired
		}

		account, err := m.authUC.Authenticate(c.Request().Context(), token)
		if err != nil {
			return err
		}

		c.Set(contextKeyAccount, account)

		return next(c)
	}
}

func (m *AuthMiddleware) tokenFromRequest(c echo.Context) string {
	if cookie, err := c.Cookie(m.cookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	scheme, token, found := strings.Cut(c.Request().Header.Get(echo.HeaderAuthorization), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}

	return strings.TrimSpace(token)
}

// GetAccount returns the account stored by Authenticate.
func GetAccount(c echo.Context) (*usecase.AccountView, bool) {
	account, ok := c.Get(contextKeyAccount).(*usecase.AccountView)

	return account, ok && account != nil
}
