package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"strikealight/playhub/internal/handler/middleware"
	jwtpkg "strikealight/playhub/pkg/jwt"
)

var ErrNoClaims = errors.New("claims not found in context")

func getSubjectFromContext(c *gin.Context) (uuid.UUID, jwtpkg.Role, error) {
	claimsVal, exists := c.Get(middleware.ContextKeyUserClaims)
	if !exists {
		return uuid.Nil, "", ErrNoClaims
	}
	claims, ok := claimsVal.(*jwtpkg.Claims)
	if !ok {
		return uuid.Nil, "", ErrNoClaims
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, "", err
	}
	return id, claims.Role, nil
}
