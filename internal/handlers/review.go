package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/everyskill/everyskill-backend/internal/logger"
	"github.com/everyskill/everyskill-backend/internal/services"
)

type ReviewHandler struct {
	log               *logger.Logger
	submissionService services.SubmissionService
	reviewService     services.ReviewService
}

func NewReviewHandler(log *logger.Logger, submissionService services.SubmissionService, reviewService services.ReviewService) *ReviewHandler {
	return &ReviewHandler{
		log:               log.With("handler", "ReviewHandler"),
		submissionService: submissionService,
		reviewService:     reviewService,
	}
}

// Submit runs the full review pipeline on an owned skill.
func (h *ReviewHandler) Submit(c *gin.Context) {
	skillID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_skill_id", err)
		return
	}
	result, err := h.submissionService.SubmitForReview(c.Request.Context(), skillID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, result)
}

// Advisory requests an on-demand review without touching status.
func (h *ReviewHandler) Advisory(c *gin.Context) {
	skillID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_skill_id", err)
		return
	}
	result, err := h.reviewService.RequestReview(c.Request.Context(), skillID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, result)
}

func (h *ReviewHandler) Get(c *gin.Context) {
	skillID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_skill_id", err)
		return
	}
	rev, err := h.reviewService.GetReview(c.Request.Context(), skillID)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"review": rev})
}
