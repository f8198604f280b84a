package api

import (
	"UniMarket/internal/api/middleware"
	"UniMarket/internal/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
)

func SetupRouter(group *HandlersGroup) *gin.Engine {
	r := gin.New()
	_ = r.SetTrustedProxies([]string{"localhost"})

	// TraceId & Logger & CORS
	r.Use(middleware.TraceMiddleware())
	r.Use(middleware.AuditMiddleware())
	r.Use(middleware.CORSMiddleware())
	logger.SetupGin(r)

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"Code":    200,
				"Message": "pong",
				"Data":    nil,
			})
		})

		userGroup := apiGroup.Group("/user")
		{
			// 无需登录即可访问的接口
			userGroup.POST("/register", group.UserHandler.Register)
			userGroup.POST("/login", group.UserHandler.Login)

			authGroup := userGroup.Group("")
			authGroup.Use(middleware.AuthMiddleware())
			{
				authGroup.POST("/logout", group.UserHandler.Logout)
				authGroup.GET("/info", group.UserHandler.GetUserInfo)
			}
		}

		listingGroup := apiGroup.Group("/listings")
		{
			// 未登录也可浏览，登录后按校区放开可见范围
			authOptGroup := listingGroup.Group("")
			authOptGroup.Use(middleware.AuthOptionalMiddleware())
			{
				authOptGroup.GET("", group.ListingHandler.ListListings)
				authOptGroup.GET("/search", group.ListingHandler.SearchListings)
				authOptGroup.GET("/stats", group.ListingHandler.GetListingStats)
				authOptGroup.GET("/breakdown", group.ListingHandler.GetCategoryBreakdown)
				authOptGroup.GET("/categories", group.ListingHandler.GetCategories)
				authOptGroup.GET("/universities", group.ListingHandler.GetUniversities)
				authOptGroup.GET("/detail/:listing_id", group.ListingHandler.GetListing)
			}

			authGroup := listingGroup.Group("")
			authGroup.Use(middleware.AuthMiddleware())
			{
				authGroup.POST("", group.ListingHandler.CreateListing)
				authGroup.PUT("/:listing_id", group.ListingHandler.UpdateListing)
				authGroup.POST("/:listing_id/sold", group.ListingHandler.MarkSold)
				authGroup.DELETE("/:listing_id", group.ListingHandler.RemoveListing)
				authGroup.POST("/price-suggest", group.ListingHandler.SuggestPrice)
			}

			// 需要登录 & 拥有审核角色
			reviewGroup := authGroup.Group("/review")
			reviewGroup.Use(middleware.CheckRoles("ADMIN", "SUPERADMIN"))
			{
				reviewGroup.GET("/pending", group.ModerationHandler.ListPendingReview)
				reviewGroup.GET("/all", group.ModerationHandler.ListAll)
				reviewGroup.GET("/breakdown", group.ModerationHandler.StatusBreakdown)
				reviewGroup.POST("/:listing_id/decide", group.ModerationHandler.Decide)
				reviewGroup.POST("/:listing_id/reopen", group.ModerationHandler.Reopen)
			}
		}

		chatGroup := apiGroup.Group("/chat")
		{
			chatGroup.GET("/ws", group.WsHandler.Connect)

			authGroup := chatGroup.Group("")
			authGroup.Use(middleware.AuthMiddleware())
			{
				authGroup.POST("/conversations", group.ChatHandler.StartConversation)
				authGroup.GET("/conversations", group.ChatHandler.GetConversationList)
				authGroup.GET("/conversations/:conversation_id", group.ChatHandler.GetConversation)
				authGroup.POST("/conversations/:conversation_id/send", group.ChatHandler.SendMessage)
				authGroup.GET("/conversations/:conversation_id/history", group.ChatHandler.GetChatHistory)
				authGroup.POST("/conversations/:conversation_id/read", group.ChatHandler.MarkAsRead)
			}
		}

		mediaGroup := apiGroup.Group("/media")
		{
			mediaGroup.Use(middleware.AuthMiddleware())
			mediaGroup.POST("/upload", group.MediaHandler.Upload)
		}
	}

	return r
}
