package router

import (
	"context"

	"github.com/anonto42/socialcore/backend/internal/cache"
	"github.com/anonto42/socialcore/backend/internal/repositories"
	"github.com/anonto42/socialcore/backend/internal/service"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Services holds every service the HTTP layer calls.
type Services struct {
	Users         repositories.UserRepository
	Notifications *service.NotificationService
	Graph         *service.GraphService
	Posts         *service.PostService
	Messages      *service.MessageService
	Groups        *service.GroupService
	Stories       *service.StoryService
}

// BuildServices wires repositories into services. Posts live in MongoDB when
// mongoDB is non-nil and in the relational store otherwise.
func BuildServices(ctx context.Context, pgdb *gorm.DB, mongoDB *mongo.Database, unread *cache.UnreadCache, logger *zap.Logger) (*Services, error) {
	userRepo := repositories.NewPostgresUserRepository(pgdb)
	followRepo := repositories.NewPostgresFollowRepository(pgdb)
	likeRepo := repositories.NewPostgresLikeRepository(pgdb)
	commentRepo := repositories.NewPostgresCommentRepository(pgdb)
	groupRepo := repositories.NewPostgresGroupRepository(pgdb)
	tx := repositories.NewGormTransactor(pgdb)

	var postRepo repositories.PostRepository = repositories.NewPostgresPostRepository(pgdb)
	if mongoDB != nil {
		mongoPosts := repositories.NewMongoPostRepository(mongoDB)
		if err := mongoPosts.EnsureIndexes(ctx); err != nil {
			return nil, err
		}
		postRepo = mongoPosts
		logger.Info("posts stored in MongoDB", zap.String("database", mongoDB.Name()))
	}

	notifications := service.NewNotificationService(
		repositories.NewPostgresNotificationRepository(pgdb),
		userRepo, postRepo, groupRepo, unread, logger.Named("notifications"), nil)
	agg := service.NewAggregator(likeRepo, commentRepo, userRepo)

	return &Services{
		Users:         userRepo,
		Notifications: notifications,
		Graph:         service.NewGraphService(tx, followRepo, userRepo, postRepo, agg, notifications, logger.Named("graph")),
		Posts:         service.NewPostService(tx, postRepo, likeRepo, commentRepo, agg, notifications, logger.Named("posts"), nil),
		Messages:      service.NewMessageService(repositories.NewPostgresMessageRepository(pgdb), userRepo, logger.Named("messages"), nil),
		Groups: service.NewGroupService(tx, groupRepo,
			repositories.NewPostgresGroupMessageRepository(pgdb),
			repositories.NewPostgresGroupReadCursorRepository(pgdb),
			userRepo, notifications, logger.Named("groups"), nil),
		Stories: service.NewStoryService(repositories.NewPostgresStoryRepository(pgdb), followRepo, userRepo, logger.Named("stories"), nil),
	}, nil
}
