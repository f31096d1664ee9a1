package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"strikealight/playhub/internal/service"
	jwtpkg "strikealight/playhub/pkg/jwt"
	"strikealight/playhub/pkg/response"
)

type StudentHandler struct {
	studentService service.StudentService
}

func NewStudentHandler(studentService service.StudentService) *StudentHandler {
	return &StudentHandler{studentService: studentService}
}

type CreateStudentRequest struct {
	Name          string `json:"name" binding:"required"`
	Email         string `json:"email" binding:"required,email"`
	Standard      string `json:"standard" binding:"required"`
	Division      string `json:"division" binding:"required"`
	RollNumber    string `json:"rollNumber" binding:"required"`
	InstitutionID string `json:"institutionId" binding:"required,uuid"`
}

func (h *StudentHandler) Create(c *gin.Context) {
	var req CreateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	institutionID, err := uuid.Parse(req.InstitutionID)
	if err != nil {
		response.BadRequest(c, "invalid institutionId")
		return
	}

	// Institution principals can only manage their own roster.
	subject, role, err := getSubjectFromContext(c)
	if err != nil {
		response.Unauthorized(c, "invalid user context")
		return
	}
	if role == jwtpkg.RoleInstitution && subject != institutionID {
		response.Forbidden(c, "cannot add students to another institution")
		return
	}

	student, err := h.studentService.Create(c.Request.Context(), service.CreateStudentInput{
		Name:          req.Name,
		Email:         req.Email,
		Standard:      req.Standard,
		Division:      req.Division,
		RollNumber:    req.RollNumber,
		InstitutionID: institutionID,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRollNumberTaken):
			response.Conflict(c, err.Error())
		default:
			response.InternalError(c, "failed to add student")
		}
		return
	}

	response.Created(c, student)
}

func (h *StudentHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid student id")
		return
	}

	student, err := h.studentService.Get(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrStudentNotFound):
			response.NotFound(c, "student not found")
		default:
			response.InternalError(c, "failed to fetch student")
		}
		return
	}

	response.OK(c, student)
}

func (h *StudentHandler) ListByInstitution(c *gin.Context) {
	institutionID, err := uuid.Parse(c.Param("institutionId"))
	if err != nil {
		response.BadRequest(c, "invalid institution id")
		return
	}

	students, err := h.studentService.ListByInstitution(c.Request.Context(), institutionID)
	if err != nil {
		response.InternalError(c, "failed to fetch students")
		return
	}

	response.OK(c, students)
}

func (h *StudentHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid student id")
		return
	}

	if err := h.studentService.Delete(c.Request.Context(), id); err != nil {
		switch {
		case errors.Is(err, service.ErrStudentNotFound):
			response.NotFound(c, "student not found")
		default:
			response.InternalError(c, "failed to delete student")
		}
		return
	}

	response.OK(c, gin.H{"success": true, "message": "student deleted"})
}
