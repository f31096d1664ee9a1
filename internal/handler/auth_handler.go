package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"strikealight/playhub/internal/service"
	"strikealight/playhub/pkg/response"
)

type AuthHandler struct {
	authService service.AuthService
}

func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type RegisterRequest struct {
	Name            string `json:"name" binding:"required"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,min=8"`
	Role            string `json:"role" binding:"required,oneof=individual institution"`
	InstitutionName string `json:"institutionName"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	switch req.Role {
	case "individual":
		user, err := h.authService.RegisterIndividual(c.Request.Context(), service.RegisterIndividualInput{
			Name:     req.Name,
			Email:    req.Email,
			Password: req.Password,
		})
		if err != nil {
			registerError(c, err)
			return
		}
		response.Created(c, gin.H{"userId": user.ID})
	case "institution":
		if req.InstitutionName == "" {
			response.BadRequest(c, "institutionName is required")
			return
		}
		institution, err := h.authService.RegisterInstitution(c.Request.Context(), service.RegisterInstitutionInput{
			AdminName:       req.Name,
			InstitutionName: req.InstitutionName,
			Email:           req.Email,
			Password:        req.Password,
		})
		if err != nil {
			registerError(c, err)
			return
		}
		response.Created(c, gin.H{"institutionId": institution.ID})
	}
}

func registerError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrEmailTaken):
		response.Conflict(c, err.Error())
	default:
		response.InternalError(c, "registration failed")
	}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	tokenSet, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			response.Unauthorized(c, "invalid credentials")
		default:
			response.InternalError(c, "login failed")
		}
		return
	}

	response.OK(c, tokenSet)
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	tokenSet, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRefreshTokenInvalid):
			response.Unauthorized(c, "invalid refresh token")
		default:
			response.InternalError(c, "token refresh failed")
		}
		return
	}

	response.OK(c, tokenSet)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	var req LogoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	if err := h.authService.Logout(c.Request.Context(), req.RefreshToken); err != nil {
		response.InternalError(c, "logout failed")
		return
	}

	response.OK(c, gin.H{"success": true})
}
