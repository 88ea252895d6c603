package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ravi-menon/dept-attendance-api/internal/middleware"
	"github.com/ravi-menon/dept-attendance-api/internal/models"
)

// claimsFromContext pulls the authenticated caller's claims set by the JWT
// middleware.
func claimsFromContext(c *gin.Context) (*models.JWTClaims, bool) {
	value, ok := c.Get(middleware.ContextUserKey)
	if !ok {
		return nil, false
	}
	claims, ok := value.(*models.JWTClaims)
	return claims, ok
}
