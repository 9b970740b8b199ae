package middleware

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/Mrcarnj/MajorPools-sub000/pkg/utils"
)

// AdminClaims are the JWT claims accepted on the admin surface.
type AdminClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// AuthRequired validates an HS256 bearer token and requires the admin role.
func AuthRequired(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.SendUnauthorized(c, "Authorization header required")
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			utils.SendUnauthorized(c, "Bearer token required")
			c.Abort()
			return
		}

		claims := &AdminClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(jwtSecret), nil
		})
		if err != nil || !token.Valid {
			utils.SendUnauthorized(c, "Invalid or expired token")
			c.Abort()
			return
		}

		if claims.Role != "admin" {
			utils.SendForbidden(c, "Admin access required")
			c.Abort()
			return
		}

		c.Set("role", claims.Role)
		c.Set("subject", claims.Subject)
		c.Next()
	}
}
