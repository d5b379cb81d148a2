package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/phrazzld/roadmap-api/internal/api"
	apimw "github.com/phrazzld/roadmap-api/internal/api/middleware"
)

const corsMaxAgeSeconds = 300

// setupRouter builds the HTTP surface. Public routes come first; everything
// else requires a bearer token.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(apimw.TraceMiddleware(app.logger))
	r.Use(apimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   app.config.Server.CORSAllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
		MaxAge:           corsMaxAgeSeconds,
	}))

	authHandler := api.NewAuthHandler(app.accounts, app.logger)
	taskHandler := api.NewTaskHandler(app.tasks, app.logger)
	catalogHandler := api.NewCatalogHandler(app.catalog, app.hub, app.logger)
	importHandler := api.NewImportHandler(
		app.importer,
		app.config.Import.SpreadsheetPath,
		app.config.Import.Sheet,
		app.logger,
	)
	authMiddleware := apimw.NewAuthMiddleware(app.accounts)

	r.Route("/api", func(r chi.Router) {
		r.Post("/users", authHandler.Register)
		r.Post("/token", authHandler.Token)
		r.Get("/data/teams", catalogHandler.Teams)
		r.Get("/data/dashboards", catalogHandler.Dashboards)
		r.Get("/parse", importHandler.Parse)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Get("/users/me", authHandler.Me)
			r.Put("/users/me", authHandler.UpdateMe)
			r.With(authMiddleware.RequireAdmin).Get("/users/admin", authHandler.Admin)

			r.Get("/data/roadmap", taskHandler.Roadmap)
			r.Get("/data/tasks", taskHandler.TeamTasks)
			r.Get("/team/tasks", taskHandler.TeamTasks)
			r.Get("/user/tasks", taskHandler.UserTasks)
			r.Post("/user/tasks", taskHandler.Assign)

			r.Put("/data/tasks/complete-percent", taskHandler.UpdateCompletePercent)
			r.Put("/data/tasks/current-status", taskHandler.UpdateStatus)
			r.Put("/data/tasks/description", taskHandler.UpdateDescription)

			r.Get("/user/notifications", catalogHandler.Notifications)
			r.Get("/user/notifications/ws", catalogHandler.NotificationSocket)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	return r
}
