package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/everyskill/everyskill-backend/internal/logger"
	"github.com/everyskill/everyskill-backend/internal/repos"
	"github.com/everyskill/everyskill-backend/internal/services"
)

type SkillHandler struct {
	log          *logger.Logger
	skillService services.SkillService
}

func NewSkillHandler(log *logger.Logger, skillService services.SkillService) *SkillHandler {
	return &SkillHandler{
		log:          log.With("handler", "SkillHandler"),
		skillService: skillService,
	}
}

type createSkillRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Category    string  `json:"category" binding:"required"`
	Content     string  `json:"content"`
	HoursSaved  float64 `json:"hours_saved"`
	Visibility  string  `json:"visibility"`
}

func (h *SkillHandler) Create(c *gin.Context) {
	var req createSkillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	skill, err := h.skillService.Create(c.Request.Context(), services.CreateSkillInput{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Content:     req.Content,
		HoursSaved:  req.HoursSaved,
		Visibility:  req.Visibility,
	})
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"skill": skill})
}

func (h *SkillHandler) Get(c *gin.Context) {
	skillID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_skill_id", err)
		return
	}
	skill, err := h.skillService.Get(c.Request.Context(), skillID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"skill": skill})
}

func (h *SkillHandler) Search(c *gin.Context) {
	skills, err := h.skillService.Search(c.Request.Context(), repos.SkillSearchFilter{
		Query:    c.Query("q"),
		Category: c.Query("category"),
		Status:   c.Query("status"),
	})
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"skills": skills})
}

func (h *SkillHandler) ListMine(c *gin.Context) {
	skills, err := h.skillService.ListMine(c.Request.Context(), 0, 0)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"skills": skills})
}

type updateSkillRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Content     *string  `json:"content"`
	HoursSaved  *float64 `json:"hours_saved"`
	Visibility  *string  `json:"visibility"`
}

func (h *SkillHandler) Update(c *gin.Context) {
	skillID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_skill_id", err)
		return
	}
	var req updateSkillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	skill, err := h.skillService.Update(c.Request.Context(), skillID, services.UpdateSkillInput{
		Name:        req.Name,
		Description: req.Description,
		Content:     req.Content,
		HoursSaved:  req.HoursSaved,
		Visibility:  req.Visibility,
	})
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"skill": skill})
}

func (h *SkillHandler) Fork(c *gin.Context) {
	skillID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_skill_id", err)
		return
	}
	fork, err := h.skillService.Fork(c.Request.Context(), skillID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"skill": fork})
}

type decideRequest struct {
	Decision string `json:"decision" binding:"required"`
}

func (h *SkillHandler) Decide(c *gin.Context) {
	skillID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_skill_id", err)
		return
	}
	var req decideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	skill, err := h.skillService.Decide(c.Request.Context(), skillID, req.Decision)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"skill": skill})
}

func (h *SkillHandler) Delete(c *gin.Context) {
	skillID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_skill_id", err)
		return
	}
	if err := h.skillService.Delete(c.Request.Context(), skillID); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"deleted": true})
}

func (h *SkillHandler) ListVersions(c *gin.Context) {
	skillID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_skill_id", err)
		return
	}
	versions, err := h.skillService.ListVersions(c.Request.Context(), skillID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"versions": versions})
}
