package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"wcircle.app/watchcircle/internal/service"
	"wcircle.app/watchcircle/pkg/response"
)

type AdminHandler struct {
	service service.AdminService
}

func NewAdminHandler(service service.AdminService) *AdminHandler {
	return &AdminHandler{service: service}
}

type allowlistRequest struct {
	Platforms []string `json:"platforms" binding:"required"`
}

func (h *AdminHandler) GetStreamingAllowlist(c *gin.Context) {
	platforms, err := h.service.GetStreamingAllowlist(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"platforms": platforms})
}

// SetStreamingAllowlist handles PUT /api/admin/streaming-allowlist. An empty
// list disables filtering.
func (h *AdminHandler) SetStreamingAllowlist(c *gin.Context) {
	var req allowlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "platforms must be a JSON array of names"})
		return
	}

	platforms, err := h.service.SetStreamingAllowlist(c.Request.Context(), req.Platforms)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"platforms": platforms})
}
