package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/everyskill/everyskill-backend/internal/services"
)

type UserHandler struct {
	userService   services.UserService
	apiKeyService services.APIKeyService
}

func NewUserHandler(userService services.UserService, apiKeyService services.APIKeyService) *UserHandler {
	return &UserHandler{userService: userService, apiKeyService: apiKeyService}
}

func (h *UserHandler) GetMe(c *gin.Context) {
	user, err := h.userService.GetMe(c.Request.Context())
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"user": user})
}

type createAPIKeyRequest struct {
	Name string `json:"name" binding:"required"`
}

func (h *UserHandler) CreateAPIKey(c *gin.Context) {
	var req createAPIKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	created, err := h.apiKeyService.Create(c.Request.Context(), req.Name)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, created)
}

func (h *UserHandler) ListAPIKeys(c *gin.Context) {
	keys, err := h.apiKeyService.List(c.Request.Context())
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"keys": keys})
}

func (h *UserHandler) DeleteAPIKey(c *gin.Context) {
	keyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_key_id", err)
		return
	}
	if err := h.apiKeyService.Delete(c.Request.Context(), keyID); err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"deleted": true})
}
