package handlers

import (
	"net/http"
	"time"

	"taskFlow/internal/metrics"
	"taskFlow/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterConfig struct {
	Tasks      TaskService
	Categories CategoryService
	Stats      StatsService
	Users      UserService
	Tokens     middleware.TokenParser
	Metrics    *metrics.Metrics

	RateLimitRPM int
	CORSOrigins  []string
}

func NewRouter(cfg RouterConfig) http.Handler {
	taskHandler := NewTaskHandler(cfg.Tasks, cfg.Metrics)
	categoryHandler := NewCategoryHandler(cfg.Categories, cfg.Metrics)
	statsHandler := NewStatsHandler(cfg.Stats, cfg.Tasks.Now, cfg.Metrics)
	authHandler := NewAuthHandler(cfg.Users, cfg.Metrics)

	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(middleware.Metrics(cfg.Metrics))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "X-RateLimit-Remaining"},
		AllowCredentials: false,
		MaxAge:           int((5 * time.Minute).Seconds()),
	}))

	r.Get("/health", taskHandler.HealthCheck)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		if cfg.RateLimitRPM > 0 {
			r.Use(middleware.RateLimit(cfg.RateLimitRPM))
		}

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register) // POST /api/auth/register
			r.Post("/login", authHandler.Login)       // POST /api/auth/login
			r.With(middleware.Authenticate(cfg.Tokens)).
				Get("/profile", authHandler.Profile) // GET /api/auth/profile
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(cfg.Tokens))

			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", taskHandler.GetTasks)  // GET /api/tasks
				r.Post("/", taskHandler.PostTask) // POST /api/tasks

				r.Get("/urgent", taskHandler.GetUrgentTasks)       // GET /api/tasks/urgent
				r.Get("/calendar", taskHandler.GetCalendar)        // GET /api/tasks/calendar
				r.Post("/bulk-complete", taskHandler.BulkComplete) // POST /api/tasks/bulk-complete
				r.Patch("/bulk-complete", taskHandler.BulkComplete)

				r.Get("/stats", statsHandler.GetStats)                    // GET /api/tasks/stats
				r.Get("/stats/categories", statsHandler.GetCategoryStats) // GET /api/tasks/stats/categories
				r.Get("/stats/priorities", statsHandler.GetPriorityStats) // GET /api/tasks/stats/priorities
				r.Get("/dashboard", statsHandler.GetDashboard)            // GET /api/tasks/dashboard

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", taskHandler.GetTaskByID)       // GET /api/tasks/{id}
					r.Put("/", taskHandler.UpdateTaskByID)    // PUT /api/tasks/{id}
					r.Patch("/", taskHandler.UpdateTaskByID)  // PATCH /api/tasks/{id}
					r.Delete("/", taskHandler.DeleteTaskByID) // DELETE /api/tasks/{id}

					r.Post("/toggle", taskHandler.ToggleTask) // POST /api/tasks/{id}/toggle
				})
			})

			r.Route("/categories", func(r chi.Router) {
				r.Get("/", categoryHandler.GetCategories)
				r.Post("/", categoryHandler.PostCategory)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", categoryHandler.GetCategoryByID)
					r.Put("/", categoryHandler.UpdateCategoryByID)
					r.Patch("/", categoryHandler.UpdateCategoryByID)
					r.Delete("/", categoryHandler.DeleteCategoryByID)
				})
			})
		})
	})

	return r
}
