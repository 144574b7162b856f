package middleware

import (
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"design-order-backend/internal/models"
)

const (
	SubjectKey = "subject"
	RoleKey    = "role"
)

// AdminRoles are the token roles allowed on the operator routes.
var AdminRoles = []string{"service_role", "admin"}

func abortUnauthorized(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, models.ErrorResponse{
		Error:   http.StatusText(status),
		Message: msg,
		Code:    "unauthorized",
	})
}

// AdminAuth verifies a Supabase-issued HS256 bearer token and requires one of
// AdminRoles in its "role" claim. Customers never need a token.
func AdminAuth(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, http.StatusUnauthorized, "missing authorization header")
			return
		}

		scheme, tokenString, ok := strings.Cut(authHeader, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") {
			abortUnauthorized(c, http.StatusUnauthorized, "invalid authorization header format")
			return
		}
		tokenString = strings.TrimSpace(tokenString)
		if tokenString == "" {
			abortUnauthorized(c, http.StatusUnauthorized, "empty token")
			return
		}

		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			if jwtSecret == "" {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(jwtSecret), nil
		}, jwt.WithValidMethods([]string{"HS256"}))
		if err != nil || !token.Valid {
			msg := "invalid token"
			switch {
			case err == nil:
			case errors.Is(err, jwt.ErrTokenExpired):
				msg = "token has expired"
			case errors.Is(err, jwt.ErrTokenSignatureInvalid):
				msg = "token signature is invalid"
			case errors.Is(err, jwt.ErrTokenMalformed):
				msg = "token is malformed"
			}
			abortUnauthorized(c, http.StatusUnauthorized, msg)
			return
		}

		role, _ := claims["role"].(string)
		if !slices.Contains(AdminRoles, role) {
			abortUnauthorized(c, http.StatusForbidden, "token role is not allowed to manage orders")
			return
		}

		sub, _ := claims.GetSubject()
		c.Set(SubjectKey, sub)
		c.Set(RoleKey, role)
		c.Next()
	}
}
