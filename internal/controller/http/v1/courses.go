package v1

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kurochkinivan/onboarding_ai/internal/domain"
)

type CoursesHandler struct {
	log       *slog.Logger
	generator CourseGenerator
	courses   CoursesRepository
	exporter  CourseExporter
}

func NewCoursesHandler(
	log *slog.Logger,
	generator CourseGenerator,
	courses CoursesRepository,
	exporter CourseExporter,
) *CoursesHandler {
	return &CoursesHandler{
		log:       log,
		generator: generator,
		courses:   courses,
		exporter:  exporter,
	}
}

// Generate runs the pipeline synchronously and answers with its status line.
// The run outlives the request: a client that stops waiting must not leave
// imports half processed.
func (h *CoursesHandler) Generate(w http.ResponseWriter, r *http.Request) {
	status, err := h.generator.Run(context.WithoutCancel(r.Context()))

	code := http.StatusOK
	switch {
	case errors.Is(err, domain.ErrGenerationInProgress):
		code = http.StatusConflict
	case err != nil:
		logError(r, h.log, "course generation failed", err)
		code = http.StatusInternalServerError
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write([]byte(status))
}

type GetCoursesResponse struct {
	Courses    []*domain.CourseSummary `json:"courses"`
	Pagination Pagination              `json:"pagination"`
}

func (h *CoursesHandler) GetCourses(w http.ResponseWriter, r *http.Request) {
	page, limit, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	offset := (page - 1) * limit

	courses, total, err := h.courses.Courses(r.Context(), limit, offset)
	if err != nil {
		logError(r, h.log, "failed to get courses", err)
		writeError(w, http.StatusInternalServerError, "Failed to get courses", err)
		return
	}

	writeJSON(w, http.StatusOK, GetCoursesResponse{
		Courses:    courses,
		Pagination: newPagination(page, limit, total),
	})
}

type GetQuizzesResponse struct {
	Quizzes []*domain.Quiz `json:"quizzes"`
}

func (h *CoursesHandler) GetQuizzes(w http.ResponseWriter, r *http.Request) {
	courseID := r.URL.Query().Get("course_id")
	if courseID == "" {
		writeError(w, http.StatusBadRequest, "Missing required parameter: course_id", nil)
		return
	}

	quizzes, err := h.courses.QuizzesByCourse(r.Context(), courseID)
	if err != nil {
		logError(r, h.log, "failed to get quizzes", err)
		writeError(w, http.StatusInternalServerError, "Failed to get quizzes", err)
		return
	}

	writeJSON(w, http.StatusOK, GetQuizzesResponse{Quizzes: quizzes})
}

func (h *CoursesHandler) GetHandout(w http.ResponseWriter, r *http.Request) {
	courseID := chi.URLParam(r, "course_id")

	data, err := h.exporter.Handout(r.Context(), courseID)
	if err != nil {
		h.exportError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+courseID+`.pdf"`)
	_, _ = w.Write(data)
}

func (h *CoursesHandler) GetQuizzesCSV(w http.ResponseWriter, r *http.Request) {
	courseID := chi.URLParam(r, "course_id")

	data, err := h.exporter.QuizzesCSV(r.Context(), courseID)
	if err != nil {
		h.exportError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+courseID+`-quizzes.csv"`)
	_, _ = w.Write(data)
}

func (h *CoursesHandler) exportError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Course not found", nil)
		return
	}

	logError(r, h.log, "failed to export course", err)
	writeError(w, http.StatusInternalServerError, "Failed to export course", err)
}
