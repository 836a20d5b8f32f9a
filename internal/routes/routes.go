package routes

import (
	"github.com/gofiber/fiber/v2"

	"linkup/internal/blobstore"
	"linkup/internal/handlers"
	"linkup/internal/middleware"
	"linkup/internal/notify"
	"linkup/internal/repository"
	"linkup/pkg/logging"
	"linkup/services"
)

// Deps carries everything the route table needs. Media is nil when the server
// runs on the in-memory store; the /media route is skipped in that case.
type Deps struct {
	Auth      *services.AuthService
	UsersSvc  *services.UserService
	Chat      *services.ChatService
	Posts     *repository.PostRepository
	Users     *repository.UserRepository
	Blob      blobstore.Uploader
	Media     *blobstore.GridFSUploader
	Notifier  *notify.LocalNotifier
	JWTSecret string
	Logger    logging.Logger
}

func Register(app *fiber.App, deps Deps) {
	app.Use(middleware.JWT(deps.JWTSecret))

	authH := &handlers.AuthHandler{Auth: deps.Auth, Users: deps.Users}
	postH := &handlers.PostHandler{
		Posts:    deps.Posts,
		Users:    deps.Users,
		Blob:     deps.Blob,
		Notifier: deps.Notifier,
		Logger:   deps.Logger,
	}
	userH := &handlers.UserHandler{Users: deps.UsersSvc}
	chatH := &handlers.ChatHandler{Chat: deps.Chat}
	notifH := &handlers.NotificationHandler{Notifier: deps.Notifier}

	auth := app.Group("/auth")
	auth.Post("/signup", authH.SignUp)
	auth.Post("/login", authH.Login)
	auth.Post("/logout", middleware.RequireAuth(), authH.Logout)
	auth.Post("/forgot-password", authH.ForgotPassword)

	app.Get("/me", middleware.RequireAuth(), authH.Me)
	app.Patch("/me", middleware.RequireAuth(), authH.UpdateMe)

	posts := app.Group("/posts")
	posts.Get("/", postH.List)
	posts.Get("/:postId", postH.Get)
	posts.Post("/", middleware.RequireAuth(), postH.Create)
	posts.Post("/:postId/like", middleware.RequireAuth(), postH.Like)
	posts.Post("/:postId/comments", middleware.RequireAuth(), postH.Comment)
	posts.Patch("/:postId", middleware.RequireAuth(), postH.Update)
	posts.Delete("/:postId", middleware.RequireAuth(), postH.Delete)

	users := app.Group("/users")
	users.Get("/search", userH.Search)
	users.Get("/:id", userH.Get)
	users.Get("/:id/followers", userH.Followers)
	users.Get("/:id/following", userH.Following)
	users.Post("/:id/follow", middleware.RequireAuth(), userH.Follow)
	users.Delete("/:id/follow", middleware.RequireAuth(), userH.Unfollow)

	chats := app.Group("/chats", middleware.RequireAuth())
	chats.Get("/", chatH.Conversations)
	chats.Post("/:userId/messages", chatH.Send)
	chats.Get("/:userId/messages", chatH.History)

	notifications := app.Group("/notifications", middleware.RequireAuth())
	notifications.Get("/", notifH.List)
	notifications.Post("/:id/read", notifH.MarkRead)
	notifications.Delete("/", notifH.Clear)

	if deps.Media != nil {
		mediaH := &handlers.MediaHandler{Blob: deps.Media}
		app.Get("/media/:id", mediaH.Get)
	}
}
