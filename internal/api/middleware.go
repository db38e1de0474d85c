package api

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// AllUsers is the token subject allowed to act on any owner
const AllUsers = "*"

func (s *Server) authMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		auth := c.Get("Authorization")
		if auth == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(errorResponse{Error: "missing authorization header"})
		}

		tokenString := strings.TrimPrefix(auth, "Bearer ")
		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			return []byte(s.config.Security.JWTSecret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

		if err != nil || !token.Valid {
			return c.Status(fiber.StatusUnauthorized).JSON(errorResponse{Error: "invalid token"})
		}

		subject, err := token.Claims.GetSubject()
		if err != nil || subject == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(errorResponse{Error: "token has no subject"})
		}

		c.Locals("subject", subject)
		return c.Next()
	}
}

// canActAs reports whether the authenticated subject may access owner
func canActAs(c *fiber.Ctx, owner string) bool {
	subject, _ := c.Locals("subject").(string)
	return subject == AllUsers || subject == owner
}

// IssueToken signs an HS256 token for subject. Use AllUsers for a service
// token that may act on any owner.
func IssueToken(secret, subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	})
	return token.SignedString([]byte(secret))
}
