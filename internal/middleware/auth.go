package middleware

import (
	"net/http"
	"strings"

	"dailypos/internal/apierror"
	"dailypos/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	ClaimsKey = "claims"
)

// JWTClaims are the custom claims embedded in every token.
type JWTClaims struct {
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	Role        string `json:"role"`
	IsSuperuser bool   `json:"is_superuser"`
	Type        string `json:"typ"` // access | refresh
	jwt.RegisteredClaims
}

// IsCashier gates reporting, closing and order capture.
func (c *JWTClaims) IsCashier() bool { return c.IsSuperuser || c.Role == model.RoleCashier }

// IsAdmin gates tax type writes.
func (c *JWTClaims) IsAdmin() bool { return c.IsSuperuser || c.Role == model.RoleAdmin }

// JWTAuth validates the Bearer access token on every protected route.
func JWTAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Authentication required."))
			return
		}

		tokenStr := strings.TrimPrefix(header, "Bearer ")
		claims := &JWTClaims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})

		if err != nil || !token.Valid || claims.Type == "refresh" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Token invalid or expired."))
			return
		}

		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// RequireCashier rejects callers without the cashier capability.
func RequireCashier() gin.HandlerFunc {
	return requireCapability((*JWTClaims).IsCashier)
}

// RequireAdmin rejects callers without the admin capability.
func RequireAdmin() gin.HandlerFunc {
	return requireCapability((*JWTClaims).IsAdmin)
}

func requireCapability(allowed func(*JWTClaims) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil || !allowed(claims) {
			c.AbortWithStatusJSON(http.StatusForbidden, apierror.New("You do not have permission to perform this action."))
			return
		}
		c.Next()
	}
}

// GetClaims is a helper to retrieve typed claims from the Gin context.
func GetClaims(c *gin.Context) *JWTClaims {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*JWTClaims)
	return claims
}
