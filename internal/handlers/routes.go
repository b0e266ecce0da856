package handlers

import (
	"github.com/datahub/backend/internal/catalog"
	"github.com/datahub/backend/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

type AppOptions struct {
	FrontendURL string
	BodyLimitMB int
}

// NewApp builds the fiber app with the middleware chain and every route.
func NewApp(svc *catalog.Service, auth *middleware.AuthMiddleware, opts AppOptions) *fiber.App {
	bodyLimit := opts.BodyLimitMB
	if bodyLimit <= 0 {
		bodyLimit = 100
	}

	app := fiber.New(fiber.Config{BodyLimit: bodyLimit * 1024 * 1024})
	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(middleware.CORS(opts.FrontendURL))
	app.Use(middleware.RequestLogger())
	app.Use(middleware.SecurityLogger())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
	})

	RegisterRoutes(app, svc, auth)
	return app
}

func RegisterRoutes(app *fiber.App, svc *catalog.Service, auth *middleware.AuthMiddleware) {
	authHandler := NewAuthHandler(svc)
	usersHandler := NewUsersHandler(svc)
	tagsHandler := NewTagsHandler(svc)
	filesHandler := NewFilesHandler(svc)
	collectionsHandler := NewCollectionsHandler(svc)

	api := app.Group("/api", auth.OptionalAuth)
	api.Get("/version", GetVersion)

	api.Post("/register", authHandler.Register)
	api.Post("/login", authHandler.Login)
	api.Get("/auth/me", auth.RequireAuth, authHandler.Me)

	userRoutes := api.Group("/users")
	userRoutes.Get("/", usersHandler.List)
	userRoutes.Get("/:id", usersHandler.Get)
	userRoutes.Delete("/:id", usersHandler.Delete)

	tagRoutes := api.Group("/tags")
	tagRoutes.Get("/", tagsHandler.List)
	tagRoutes.Post("/", tagsHandler.Create)

	fileRoutes := api.Group("/files")
	fileRoutes.Get("/", filesHandler.List)
	fileRoutes.Post("/", filesHandler.Create)
	fileRoutes.Get("/:id", filesHandler.Get)
	fileRoutes.Patch("/:id", filesHandler.Update)
	fileRoutes.Delete("/:id", filesHandler.Delete)
	fileRoutes.Post("/:id/tags", filesHandler.AttachTag)

	collectionRoutes := api.Group("/collections")
	collectionRoutes.Get("/", collectionsHandler.List)
	collectionRoutes.Post("/", collectionsHandler.Create)
	collectionRoutes.Get("/:id", collectionsHandler.Get)
	collectionRoutes.Patch("/:id", collectionsHandler.Update)
	collectionRoutes.Delete("/:id", collectionsHandler.Delete)
}
