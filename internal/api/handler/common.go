package handler

import (
	"UniMarket/internal/pkg/security"
	"UniMarket/internal/service"
	"strconv"

	"github.com/gin-gonic/gin"
)

// currentViewer 从 gin context 组装查看者上下文
func currentViewer(c *gin.Context) *service.Viewer {
	roles := c.GetStringSlice("roles")
	return &service.Viewer{
		UserID:     c.GetUint64("user_id"),
		University: c.GetString("university"),
		Moderator:  security.IsModerator(roles),
	}
}

func parseUint64Param(c *gin.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}
