package controllers

import (
	"net/http"
	"time"

	"vibin_chat/models"
	"vibin_chat/services"
	"vibin_chat/utils"

	"go.uber.org/zap"
)

type MediaController struct {
	MediaService *services.MediaService
	Logger       *zap.Logger
	Timeout      time.Duration
}

func NewMediaController(service *services.MediaService, logger *zap.Logger, timeout time.Duration) *MediaController {
	return &MediaController{MediaService: service, Logger: logger, Timeout: timeout}
}

// GenerateUploadURL generates a presigned URL for uploading a chat attachment
func (c *MediaController) GenerateUploadURL(w http.ResponseWriter, r *http.Request) {
	var req models.MediaUploadRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, err)
		return
	}

	ctx, cancel := requestContext(r, c.Timeout)
	defer cancel()

	url, key, err := c.MediaService.UploadURL(ctx, req.ConversationID, req.UserID, req.FileName, req.FileType)
	if err != nil {
		c.Logger.Warn("❌ failed to generate upload URL", zap.String("conversationId", req.ConversationID), zap.Error(err))
		utils.WriteError(w, err)
		return
	}
	c.Logger.Debug("📤 upload URL issued", zap.String("key", key))
	utils.WriteJSONResponse(w, http.StatusOK, map[string]string{"url": url, "key": key})
}

// GenerateReadURL generates a presigned URL for reading a chat attachment
func (c *MediaController) GenerateReadURL(w http.ResponseWriter, r *http.Request) {
	var req models.MediaReadRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, err)
		return
	}

	ctx, cancel := requestContext(r, c.Timeout)
	defer cancel()

	url, err := c.MediaService.ReadURL(ctx, req.ConversationID, req.UserID, req.Key)
	if err != nil {
		c.Logger.Warn("❌ failed to generate read URL", zap.String("conversationId", req.ConversationID), zap.Error(err))
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusOK, map[string]string{"url": url})
}
