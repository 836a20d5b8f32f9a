package main

import (
	"github.com/gofiber/fiber/v2"

	"linkup/configs"
	"linkup/database"
	"linkup/internal/blobstore"
	"linkup/internal/docstore"
	"linkup/internal/notify"
	"linkup/internal/repository"
	"linkup/internal/routes"
	"linkup/internal/session"
	"linkup/pkg/logging"
	"linkup/services"
)

func main() {
	cfg := configs.Load()
	logger := logging.NewLogger()

	if cfg.JWTSecret == "" {
		logger.Fatal("JWT_SECRET is required")
	}

	var (
		store docstore.Store
		blob  blobstore.Uploader
		media *blobstore.GridFSUploader
	)
	if cfg.MongoURI != "" {
		client, err := database.ConnectMongo(cfg.MongoURI)
		if err != nil {
			logger.WithError(err).Fatal("mongo connection failed")
		}
		defer database.Disconnect(client)

		store = docstore.NewMongoStore(client, cfg.DBName, logger)
		media = blobstore.NewGridFSUploader(client.Database(cfg.DBName))
		blob = media
		logger.WithField("db", cfg.DBName).Info("connected to mongo")
	} else {
		store = docstore.NewMemStore()
		blob = blobstore.NewMemUploader()
		logger.Warn("MONGO_URI not set, running on in-memory store")
	}

	notifier := notify.NewLocalNotifier(logger)
	posts := repository.NewPostRepository(store)
	users := repository.NewUserRepository(store, logger)
	messages := repository.NewMessageRepository(store)

	sess := session.New()
	cache := session.NewCache(cfg.SessionCacheDir, logger)

	auth := services.NewAuthService(users, blob, sess, cache, cfg.JWTSecret, logger)
	userSvc := services.NewUserService(users, logger)
	chat := services.NewChatService(messages, notifier, sess, logger)

	app := fiber.New()
	routes.Register(app, routes.Deps{
		Auth:      auth,
		UsersSvc:  userSvc,
		Chat:      chat,
		Posts:     posts,
		Users:     users,
		Blob:      blob,
		Media:     media,
		Notifier:  notifier,
		JWTSecret: cfg.JWTSecret,
		Logger:    logger,
	})

	if err := app.Listen(":" + cfg.Port); err != nil {
		logger.WithError(err).Fatal("server stopped")
	}
}
