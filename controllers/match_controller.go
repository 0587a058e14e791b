package controllers

import (
	"net/http"
	"time"

	"vibin_chat/models"
	"vibin_chat/services"
	"vibin_chat/utils"

	"go.uber.org/zap"
)

type MatchController struct {
	MatchService *services.MatchService
	Logger       *zap.Logger
	Timeout      time.Duration
}

func NewMatchController(service *services.MatchService, logger *zap.Logger, timeout time.Duration) *MatchController {
	return &MatchController{MatchService: service, Logger: logger, Timeout: timeout}
}

// RecordMatch handles POST /api/match, called once both users accepted each other
func (c *MatchController) RecordMatch(w http.ResponseWriter, r *http.Request) {
	var req models.RecordMatchRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.WriteError(w, err)
		return
	}

	ctx, cancel := requestContext(r, c.Timeout)
	defer cancel()

	match, err := c.MatchService.RecordMatch(ctx, req.User1Handle, req.User2Handle)
	if err != nil {
		c.Logger.Warn("❌ failed to record match", zap.String("user1", req.User1Handle), zap.String("user2", req.User2Handle), zap.Error(err))
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSONResponse(w, http.StatusCreated, match)
}
