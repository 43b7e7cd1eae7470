package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/intellijobs/api/internal/auth"
	"github.com/intellijobs/api/pkg/response"
)

// AuthMiddleware handles JWT authentication
type AuthMiddleware struct {
	verifier auth.TokenVerifier
	signer   *auth.HMACVerifier
}

// NewAuthMiddleware creates auth middleware using only HMAC signing (for testing/dev)
func NewAuthMiddleware(jwtSecret string) *AuthMiddleware {
	signer := auth.NewHMACVerifier(jwtSecret)
	return &AuthMiddleware{verifier: signer, signer: signer}
}

// NewAuthMiddlewareWithFallback accepts identity-provider tokens first and
// locally signed HMAC tokens second.
func NewAuthMiddlewareWithFallback(verifier auth.TokenVerifier, jwtSecret string) *AuthMiddleware {
	if jwtSecret == "" {
		return &AuthMiddleware{verifier: verifier}
	}
	signer := auth.NewHMACVerifier(jwtSecret)
	return &AuthMiddleware{
		verifier: auth.ChainVerifier{verifier, signer},
		signer:   signer,
	}
}

// Authenticate validates JWT token from Authorization header
func (m *AuthMiddleware) Authenticate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return response.Unauthorized(c, "Missing authorization header")
		}

		claims, msg := m.parse(authHeader)
		if claims == nil {
			return response.Unauthorized(c, msg)
		}
		setLocals(c, claims)
		return c.Next()
	}
}

// Optional populates the user locals when a valid token is present and
// lets anonymous requests through. An invalid token is still rejected.
func (m *AuthMiddleware) Optional() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Next()
		}

		claims, msg := m.parse(authHeader)
		if claims == nil {
			return response.Unauthorized(c, msg)
		}
		setLocals(c, claims)
		return c.Next()
	}
}

func (m *AuthMiddleware) parse(authHeader string) (*auth.Claims, string) {
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return nil, "Invalid authorization header format"
	}

	claims, err := m.verifier.Validate(parts[1])
	if err != nil {
		return nil, "Invalid or expired token"
	}
	return claims, ""
}

func setLocals(c *fiber.Ctx, claims *auth.Claims) {
	c.Locals("userId", claims.Identity())
	c.Locals("email", claims.Email)
	c.Locals("name", claims.Name)
	c.Locals("claims", claims)
}

// GatewayAuth reads user identity from X-User-* headers set by a
// forward-auth proxy in front of the API.
func GatewayAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Get("X-User-Id")
		if userID == "" {
			return response.Unauthorized(c, "Missing user identity headers")
		}

		c.Locals("userId", userID)
		c.Locals("email", c.Get("X-User-Email"))
		c.Locals("name", c.Get("X-User-Name"))

		return c.Next()
	}
}

// Verifier exposes the token chain for the ForwardAuth endpoint.
func (m *AuthMiddleware) Verifier() auth.TokenVerifier {
	return m.verifier
}

// GetUserID extracts user ID from context
func GetUserID(c *fiber.Ctx) string {
	if userID, ok := c.Locals("userId").(string); ok {
		return userID
	}
	return ""
}

// GenerateToken creates a new HMAC token (useful for testing)
func (m *AuthMiddleware) GenerateToken(userID, email string) (string, error) {
	if m.signer == nil {
		return "", auth.ErrInvalidClaims
	}
	return m.signer.Sign(userID, email, 0)
}
