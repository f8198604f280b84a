package wire

import (
	"UniMarket/internal/api"
	"UniMarket/internal/api/config"
	"UniMarket/internal/api/handler"
	"UniMarket/internal/job"
	"UniMarket/internal/pkg/cron"
	"UniMarket/internal/pkg/es"
	"UniMarket/internal/pkg/hub"
	"UniMarket/internal/pkg/kafka"
	mongopkg "UniMarket/internal/pkg/mongo"
	"UniMarket/internal/repository"
	"UniMarket/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// ApplicationContainer 封装了应用运行所需的所有顶级组件
type ApplicationContainer struct {
	Router       *gin.Engine
	DB           *gorm.DB
	KafkaManager *kafka.ConsumerManager
	CronMgr      *cron.Manager
}

func BuildApplication(db *gorm.DB, mongoConn *mongo.Database, cfg *config.Config) (*ApplicationContainer, error) {
	listingRepo := repository.NewListingRepository(db)
	convRepo := repository.NewConversationRepo(db)
	userRepo := repository.NewUserRepo(db)
	userRolesRepo := repository.NewUserRolesRepo(db)
	messageRepo := mongopkg.NewMessageRepo(mongoConn)
	listingESRepo := es.NewListingRepo(es.Client)

	bus := hub.NewHub()

	userService := service.NewUserService(userRepo, userRolesRepo)
	listingService := service.NewListingService(listingRepo, listingESRepo)
	moderationService := service.NewModerationService(listingRepo)
	chatService := service.NewChatService(convRepo, messageRepo, userRepo, listingRepo, bus)

	handlers := &api.HandlersGroup{
		UserHandler:       handler.NewUserHandler(userService),
		ListingHandler:    handler.NewListingHandler(listingService),
		ModerationHandler: handler.NewModerationHandler(moderationService),
		ChatHandler:       handler.NewChatHandler(chatService),
		WsHandler:         handler.NewWsHandler(chatService, bus),
		MediaHandler:      handler.NewMediaHandler(),
	}

	router := api.SetupRouter(handlers)

	kafkaMgr, err := kafka.NewConsumerManager(cfg, listingRepo, listingESRepo)
	if err != nil {
		return nil, err
	}

	cronMgr := cron.NewCronManager(
		job.NewListingViewJob(listingRepo),
		job.NewListingExpireJob(listingRepo),
	)

	return &ApplicationContainer{
		Router:       router,
		DB:           db,
		KafkaManager: kafkaMgr,
		CronMgr:      cronMgr,
	}, nil
}
