package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"wcircle.app/watchcircle/internal/service"
	"wcircle.app/watchcircle/pkg/response"
	"wcircle.app/watchcircle/pkg/validator"
)

type InteractionHandler struct {
	interactions service.InteractionService
	enricher     service.SocialEnricher
}

func NewInteractionHandler(interactions service.InteractionService, enricher service.SocialEnricher) *InteractionHandler {
	return &InteractionHandler{interactions: interactions, enricher: enricher}
}

type rateRequest struct {
	MediaType string `json:"media_type" binding:"required,oneof=movie tv"`
	Value     string `json:"value" binding:"required,oneof=meh like love"`
}

type statusRequest struct {
	MediaType string `json:"media_type" binding:"required,oneof=movie tv"`
	Status    string `json:"status" binding:"required,oneof=watching want_to_watch watched"`
}

type commentRequest struct {
	Body string `json:"body" binding:"required,min=1,max=2000"`
}

// Rate handles PUT /api/media/:media_id/rating. Clicking the active value
// again clears the rating; the response carries the value now in effect.
func (h *InteractionHandler) Rate(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	mediaID := c.Param("media_id")
	var req rateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	value, err := h.interactions.Rate(c.Request.Context(), userID, mediaID, req.MediaType, req.Value)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"media_id": mediaID, "rating": value, "cleared": value == ""})
}

// SetStatus handles PUT /api/media/:media_id/status with the same toggle-off
// semantics as Rate.
func (h *InteractionHandler) SetStatus(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	mediaID := c.Param("media_id")
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	status, err := h.interactions.SetStatus(c.Request.Context(), userID, mediaID, req.MediaType, req.Status)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"media_id": mediaID, "status": status, "cleared": status == ""})
}

// GetSocialContext handles GET /api/media/:media_id/social?media_type=movie
func (h *InteractionHandler) GetSocialContext(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	mediaID := c.Param("media_id")
	mediaType := c.DefaultQuery("media_type", "movie")

	social := h.enricher.Enrich(c.Request.Context(), mediaID, mediaType, userID)
	c.JSON(http.StatusOK, social)
}

// LikeActivity handles POST /api/activities/:id/like as a toggle.
func (h *InteractionHandler) LikeActivity(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	activityID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid activity id"})
		return
	}

	liked, err := h.interactions.LikeActivity(c.Request.Context(), userID, activityID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	count, err := h.interactions.ActivityLikeCount(c.Request.Context(), activityID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"liked": liked, "like_count": count})
}

func (h *InteractionHandler) CommentActivity(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	activityID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid activity id"})
		return
	}

	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	comment, err := h.interactions.CommentActivity(c.Request.Context(), userID, activityID, req.Body)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, comment)
}

func (h *InteractionHandler) ListComments(c *gin.Context) {
	activityID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid activity id"})
		return
	}

	comments, err := h.interactions.ListComments(c.Request.Context(), activityID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": comments})
}
