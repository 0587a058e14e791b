package controllers

import (
	"net/http"

	"vibin_chat/services"
	"vibin_chat/utils"

	"go.uber.org/zap"
)

type AdminController struct {
	Cache  *services.IdentityCache
	Logger *zap.Logger
}

func NewAdminController(cache *services.IdentityCache, logger *zap.Logger) *AdminController {
	return &AdminController{Cache: cache, Logger: logger}
}

// ClearCache drops every memoized match and conversation lookup
func (c *AdminController) ClearCache(w http.ResponseWriter, r *http.Request) {
	dropped := c.Cache.Len()
	c.Cache.Clear()
	c.Logger.Info("🧹 identity cache cleared by admin", zap.Int("entries", dropped))
	utils.WriteJSONResponse(w, http.StatusOK, map[string]int{"cleared": dropped})
}
