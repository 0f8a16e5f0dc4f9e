package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	jobctrl "aipod/src/infrastructure/job"
	"aipod/src/log"
	"aipod/src/podcastctrl"
	"aipod/src/storage"
)

// MaxActivePodcasts caps how many unfinished generations a user may have
// at once.
const MaxActivePodcasts = 5

const maxTitleLength = 100

type CreatePodcastRequest struct {
	Topic             string `json:"topic" binding:"required"`
	Description       string `json:"description"`
	Duration          int    `json:"duration" binding:"required"`
	SpeakerMode       string `json:"speakerMode" binding:"required,oneof=single two"`
	VoiceType         string `json:"voiceType" binding:"omitempty,oneof=male female"`
	ConversationStyle string `json:"conversationStyle" binding:"omitempty,oneof=casual professional educational"`
}

type PublishPodcastRequest struct {
	IsPublic *bool `json:"isPublic" binding:"required"`
}

type PodcastHandler struct {
	podcasts   *podcastctrl.PodcastService
	jobService *jobctrl.JobService
	artifacts  storage.ArtifactStore
}

func NewPodcastHandler(
	podcasts *podcastctrl.PodcastService,
	jobService *jobctrl.JobService,
	artifacts storage.ArtifactStore,
) (*PodcastHandler, error) {
	return &PodcastHandler{
		podcasts:   podcasts,
		jobService: jobService,
		artifacts:  artifacts,
	}, nil
}

// userID reads the authenticated user from the X-User-ID header set by
// the auth proxy in front of this service.
func userID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.GetHeader("X-User-ID"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func (h *PodcastHandler) Create(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid user identity"})
		return
	}

	var req CreatePodcastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Duration != 5 && req.Duration != 7 && req.Duration != 10 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Duration must be 5, 7, or 10 minutes"})
		return
	}
	if req.SpeakerMode == podcastctrl.ModeSingle && req.VoiceType == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "voiceType is required for single speaker mode"})
		return
	}
	if req.SpeakerMode == podcastctrl.ModeTwo && req.ConversationStyle == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "conversationStyle is required for two speaker mode"})
		return
	}

	active, err := h.podcasts.CountActiveByUser(c.Request.Context(), uid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check generation limit"})
		return
	}
	if active >= MaxActivePodcasts {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many podcasts in progress. Wait for current generations to finish."})
		return
	}

	title := req.Topic
	if len(title) > maxTitleLength {
		title = title[:maxTitleLength-3] + "..."
	}
	description := req.Description
	if description == "" {
		description = "An AI-generated podcast about " + req.Topic
	}

	podcast, err := h.podcasts.Create(c.Request.Context(), podcastctrl.CreateParams{
		UserID:            uid,
		Title:             title,
		Topic:             req.Topic,
		Description:       description,
		Duration:          req.Duration,
		SpeakerMode:       req.SpeakerMode,
		VoiceType:         req.VoiceType,
		ConversationStyle: req.ConversationStyle,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create podcast"})
		return
	}

	if _, err := h.jobService.EnqueueGeneration(c.Request.Context(), podcast.ID); err != nil {
		log.Error(err, "failed to enqueue generation job", "podcast_id", podcast.ID)
		if markErr := h.podcasts.MarkFailed(c.Request.Context(), podcast.ID, "Failed to queue generation task"); markErr != nil {
			log.Error(markErr, "failed to mark podcast as failed", "podcast_id", podcast.ID)
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Background task service unavailable. Please try again later."})
		return
	}

	c.JSON(http.StatusCreated, podcast)
}

func (h *PodcastHandler) ListMine(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid user identity"})
		return
	}

	page, pageSize := pagination(c)
	status := podcastctrl.Status(c.Query("status"))

	podcasts, err := h.podcasts.ListByUser(c.Request.Context(), uid, status, pageSize, (page-1)*pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list podcasts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"podcasts": podcasts,
		"page":     page,
		"pageSize": pageSize,
	})
}

func (h *PodcastHandler) Discover(c *gin.Context) {
	page, pageSize := pagination(c)

	podcasts, err := h.podcasts.ListPublic(c.Request.Context(), pageSize, (page-1)*pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list public podcasts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"podcasts": podcasts,
		"page":     page,
		"pageSize": pageSize,
	})
}

func (h *PodcastHandler) Get(c *gin.Context) {
	podcast, err := h.podcasts.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get podcast"})
		return
	}
	if podcast == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Podcast not found"})
		return
	}

	if !podcast.IsPublic {
		uid, ok := userID(c)
		if !ok || podcast.UserID != uid {
			c.JSON(http.StatusForbidden, gin.H{"error": "Access denied to this private podcast"})
			return
		}
	}

	c.JSON(http.StatusOK, podcast)
}

// Status reports generation progress for polling clients. Records written
// before stage tracking fall back to a status-derived progress.
func (h *PodcastHandler) Status(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid user identity"})
		return
	}

	podcast, err := h.podcasts.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get podcast"})
		return
	}
	if podcast == nil || podcast.UserID != uid {
		c.JSON(http.StatusNotFound, gin.H{"error": "Podcast not found"})
		return
	}

	progress := podcast.Progress
	stage := podcast.Stage
	if stage == "" {
		switch podcast.Status {
		case podcastctrl.StatusGenerating:
			progress, stage = 50, "Generating"
		case podcastctrl.StatusCompleted:
			progress, stage = 100, string(podcastctrl.StageCompleted)
		case podcastctrl.StatusFailed:
			progress, stage = 0, string(podcastctrl.StageFailed)
		default:
			progress, stage = 0, "Queued"
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"id":           podcast.ID,
		"status":       podcast.Status,
		"progress":     progress,
		"stage":        stage,
		"audioUrl":     podcast.AudioURL,
		"errorMessage": podcast.ErrorMessage,
	})
}

func (h *PodcastHandler) Publish(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid user identity"})
		return
	}

	var req PublishPodcastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	podcast, err := h.podcasts.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get podcast"})
		return
	}
	if podcast == nil || podcast.UserID != uid {
		c.JSON(http.StatusNotFound, gin.H{"error": "Podcast not found"})
		return
	}

	if *req.IsPublic && podcast.Status != podcastctrl.StatusCompleted {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only completed podcasts can be published"})
		return
	}

	if err := h.podcasts.Publish(c.Request.Context(), podcast.ID, *req.IsPublic); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update publication status"})
		return
	}

	podcast.IsPublic = *req.IsPublic
	c.JSON(http.StatusOK, podcast)
}

func (h *PodcastHandler) Delete(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid user identity"})
		return
	}

	podcast, err := h.podcasts.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get podcast"})
		return
	}
	if podcast == nil || podcast.UserID != uid {
		c.JSON(http.StatusNotFound, gin.H{"error": "Podcast not found"})
		return
	}

	// Stored artifacts are removed best effort; a leftover object is
	// preferable to a delete that cannot complete.
	if podcast.AudioURL != nil {
		h.artifacts.Delete(c.Request.Context(), *podcast.AudioURL)
	}
	if podcast.ThumbnailURL != nil {
		h.artifacts.Delete(c.Request.Context(), *podcast.ThumbnailURL)
	}

	if err := h.podcasts.Delete(c.Request.Context(), podcast.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete podcast"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Podcast deleted"})
}

func pagination(c *gin.Context) (page, pageSize int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize, _ = strconv.Atoi(c.DefaultQuery("pageSize", "10"))
	if pageSize < 1 || pageSize > 50 {
		pageSize = 10
	}
	return page, pageSize
}
