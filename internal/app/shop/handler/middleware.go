package handler

import (
	"net/http"
	"strings"

	"orderservice/internal/app/shop/entity"
	"orderservice/internal/app/shop/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	ctxUserID   = "user_id"
	ctxUserType = "user_type"
	ctxEmail    = "email"
)

// AuthMiddleware проверяет Bearer токен и кладёт данные пользователя в контекст
func AuthMiddleware(jwt *util.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, entity.StatusResponse{
				Status: false,
				Errors: "authorization required",
			})
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, entity.StatusResponse{
				Status: false,
				Errors: "invalid authorization header",
			})
			return
		}

		claims, err := jwt.Verify(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, entity.StatusResponse{
				Status: false,
				Errors: "invalid or expired token",
			})
			return
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxUserType, claims.UserType)
		c.Set(ctxEmail, claims.Email)

		c.Next()
	}
}

// RequireShop пропускает только пользователей типа shop
func RequireShop() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ctxUserType) != entity.UserTypeShop {
			c.AbortWithStatusJSON(http.StatusForbidden, entity.StatusResponse{
				Status: false,
				Errors: "only for shops",
			})
			return
		}

		c.Next()
	}
}

// userID достаёт id пользователя из контекста запроса
func userID(c *gin.Context) uuid.UUID {
	v, _ := c.Get(ctxUserID)
	id, _ := v.(uuid.UUID)
	return id
}
