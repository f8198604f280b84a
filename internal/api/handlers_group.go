package api

import "UniMarket/internal/api/handler"

// HandlersGroup 封装了所有已初始化的 Handler 实例
type HandlersGroup struct {
	UserHandler       *handler.UserHandler
	ListingHandler    *handler.ListingHandler
	ModerationHandler *handler.ModerationHandler
	ChatHandler       *handler.ChatHandler
	WsHandler         *handler.WsHandler
	MediaHandler      *handler.MediaHandler
}
