package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/complaint-service/internal/domain"
	apperrors "github.com/spec-kit/complaint-service/pkg/util"
)

const callerKey = "auth_caller"

// AuthMiddleware validates bearer tokens and exposes the caller triple.
// The token alone carries identity, role and agency affiliation; the engine
// trusts it as given.
type AuthMiddleware struct {
	tokens *TokenManager
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	caller := claims.Caller()
	c.Locals(callerKey, caller)
	return c.Next()
}

// CallerFromContext retrieves the authenticated caller triple.
func CallerFromContext(c *fiber.Ctx) (domain.Caller, bool) {
	val := c.Locals(callerKey)
	if val == nil {
		return domain.Caller{}, false
	}
	caller, ok := val.(domain.Caller)
	return caller, ok
}
