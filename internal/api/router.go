package api

import (
	"net/http"
	"time"

	"github.com/felixgeelhaar/coursework/internal/api/handlers"
	"github.com/felixgeelhaar/coursework/internal/api/middleware"
)

// Router wraps the HTTP multiplexer with middleware and handlers
type Router struct {
	mux        *http.ServeMux
	app        *App
	users      *handlers.UserHandler
	courses    *handlers.CourseHandler
	tasks      *handlers.TaskHandler
	instructor *handlers.InstructorHandler
}

// NewRouter creates a new API router with all routes configured
func NewRouter(app *App) http.Handler {
	r := &Router{
		mux:        http.NewServeMux(),
		app:        app,
		users:      handlers.NewUserHandler(app.Service),
		courses:    handlers.NewCourseHandler(app.Service),
		tasks:      handlers.NewTaskHandler(app.Service),
		instructor: handlers.NewInstructorHandler(app.Service),
	}

	r.registerRoutes()
	return r.buildMiddlewareChain(r.mux)
}

func (r *Router) registerRoutes() {
	// Health check
	r.mux.HandleFunc("GET /health", r.handleHealth)
	r.mux.HandleFunc("GET /ready", r.handleReady)

	r.mux.HandleFunc("POST /api/v1/users", r.users.Create)

	r.mux.HandleFunc("POST /api/v1/courses", r.courses.Create)
	r.mux.HandleFunc("GET /api/v1/courses", r.courses.List)
	r.mux.HandleFunc("GET /api/v1/courses/{id}", r.courses.Get)
	r.mux.HandleFunc("POST /api/v1/courses/{id}/publish", r.courses.Publish)

	r.mux.HandleFunc("POST /api/v1/tasks/opentext", r.tasks.CreateOpenText)
	r.mux.HandleFunc("POST /api/v1/tasks/singlechoice", r.tasks.CreateSingleChoice)
	r.mux.HandleFunc("POST /api/v1/tasks/multiplechoice", r.tasks.CreateMultipleChoice)

	r.mux.HandleFunc("GET /api/v1/instructors/{id}/courses", r.instructor.Courses)
}

func (r *Router) buildMiddlewareChain(handler http.Handler) http.Handler {
	// Apply middleware in reverse order (last applied = first executed)
	handler = middleware.Recovery(handler)
	handler = middleware.Logger(handler)

	// Apply rate limiting (skip in debug mode for easier development)
	if !r.app.Config.Debug {
		limiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
			RequestsPerMinute: r.app.Config.RateLimitRPM,
		})
		r.app.closers = append(r.app.closers, limiter.Close)
		handler = limiter.Middleware(handler)
	}

	handler = middleware.RequestID(handler)
	handler = middleware.CORS(handler)

	return handler
}

// Health check handlers
func (r *Router) handleHealth(w http.ResponseWriter, req *http.Request) {
	handlers.WriteJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (r *Router) handleReady(w http.ResponseWriter, req *http.Request) {
	if r.app.Ready != nil {
		if err := r.app.Ready(req.Context()); err != nil {
			r.app.Logger.Error("database health check failed",
				"error", err,
				"request_id", middleware.GetRequestID(req.Context()),
			)
			handlers.WriteJSON(w, http.StatusServiceUnavailable, map[string]any{
				"status": "not ready",
				"checks": map[string]string{
					"database": "unhealthy",
				},
			})
			return
		}
	}

	handlers.WriteJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
		"checks": map[string]string{
			"database": "healthy",
		},
	})
}
