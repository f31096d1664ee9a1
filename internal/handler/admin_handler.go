package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"strikealight/playhub/internal/service"
	"strikealight/playhub/pkg/response"
)

// AdminHandler serves the operator surface: platform stats, search, and
// directory lookups.
type AdminHandler struct {
	directoryService service.DirectoryService
	studentService   service.StudentService
}

func NewAdminHandler(directoryService service.DirectoryService, studentService service.StudentService) *AdminHandler {
	return &AdminHandler{
		directoryService: directoryService,
		studentService:   studentService,
	}
}

func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.directoryService.Stats(c.Request.Context())
	if err != nil {
		response.InternalError(c, "failed to collect stats")
		return
	}
	response.OK(c, stats)
}

func (h *AdminHandler) SearchUsers(c *gin.Context) {
	users, err := h.directoryService.SearchUsers(c.Request.Context(), c.Query("search"))
	if err != nil {
		response.InternalError(c, "failed to search users")
		return
	}
	response.OK(c, users)
}

func (h *AdminHandler) SearchInstitutions(c *gin.Context) {
	institutions, err := h.directoryService.SearchInstitutions(c.Request.Context(), c.Query("search"))
	if err != nil {
		response.InternalError(c, "failed to search institutions")
		return
	}
	response.OK(c, institutions)
}

func (h *AdminHandler) InstitutionStudents(c *gin.Context) {
	institutionID, err := uuid.Parse(c.Param("id"))
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

// DirectoryHandler serves authenticated identity lookups for dashboards.
type DirectoryHandler struct {
	directoryService service.DirectoryService
}

func NewDirectoryHandler(directoryService service.DirectoryService) *DirectoryHandler {
	return &DirectoryHandler{directoryService: directoryService}
}

func (h *DirectoryHandler) GetUser(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}

	user, err := h.directoryService.GetUser(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			response.NotFound(c, "user not found")
		default:
			response.InternalError(c, "failed to fetch user")
		}
		return
	}
	response.OK(c, user)
}

func (h *DirectoryHandler) GetInstitution(c *gin.Context) {
	id, err := uuid.Parse(c.Param("institutionId"))
	if err != nil {
		response.BadRequest(c, "invalid institution id")
		return
	}

	institution, err := h.directoryService.GetInstitution(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInstitutionNotFound):
			response.NotFound(c, "institution not found")
		default:
			response.InternalError(c, "failed to fetch institution")
		}
		return
	}
	response.OK(c, institution)
}
