package v1

import (
	"context"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/kurochkinivan/onboarding_ai/internal/config"
)

type Server struct {
	httpServer *http.Server
}

type Handlers struct {
	Courses *CoursesHandler
	Imports *ImportsHandler
	Health  *HealthHandler
}

func NewServer(cfg config.HTTP, h Handlers) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         net.JoinHostPort(cfg.Host, cfg.Port),
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
			Handler:      NewRouter(h),
		},
	}
}

func NewRouter(h Handlers) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", h.Health.GetHealth)

		r.Post("/courses/generate", h.Courses.Generate)
		r.Get("/courses", h.Courses.GetCourses)
		r.Get("/courses/{course_id}/handout.pdf", h.Courses.GetHandout)
		r.Get("/courses/{course_id}/quizzes.csv", h.Courses.GetQuizzesCSV)
		r.Get("/quizzes", h.Courses.GetQuizzes)

		r.Post("/imports", h.Imports.CreateImport)
		r.Get("/imports", h.Imports.GetImports)
		r.Put("/users/{user_id}/tokens", h.Imports.PutTokens)

		r.Post("/drive/import", h.Imports.ImportDrive)
		r.Get("/drive/folders", h.Imports.GetDriveFolders)

		r.Post("/notion/import", h.Imports.ImportNotion)
		r.Get("/notion/status", h.Imports.GetNotionStatus)
	})

	return r
}

func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) Addr() string {
	return s.httpServer.Addr
}
