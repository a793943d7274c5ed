package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/campushub/backend/internal/auth"
	"github.com/campushub/backend/internal/services"
	"github.com/campushub/backend/internal/store"
	"github.com/campushub/backend/types"
	"github.com/go-chi/chi/v5"
)

// LessonHandler provides HTTP handlers for lessons.
type LessonHandler struct {
	lessons *services.LessonService
	uploads *UploadHelper
}

func NewLessonHandler(lessons *services.LessonService, uploads *UploadHelper) *LessonHandler {
	return &LessonHandler{lessons: lessons, uploads: uploads}
}

// LessonRouter registers lesson routes. Reading requires a session;
// writing requires staff or admin.
func LessonRouter(r chi.Router, handler *LessonHandler, gate *auth.Authenticator) {
	staffOnly := auth.RequireRoles(types.RoleStaff, types.RoleAdmin)

	r.With(gate.RequireAuth).Get("/lessons", handler.ListLessons)
	r.With(gate.RequireAuth).Get("/lessons/{lessonID}", handler.GetLesson)
	r.With(gate.RequireAuth, staffOnly).Post("/lessons", handler.CreateLesson)
	r.With(gate.RequireAuth, staffOnly).Put("/lessons/{lessonID}", handler.UpdateLesson)
	r.With(gate.RequireAuth, staffOnly).Delete("/lessons/{lessonID}", handler.DeleteLesson)
}

func (h *LessonHandler) ListLessons(w http.ResponseWriter, r *http.Request) {
	lessons, err := h.lessons.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list lessons")
		return
	}
	writeJSON(w, http.StatusOK, lessons)
}

func (h *LessonHandler) GetLesson(w http.ResponseWriter, r *http.Request) {
	lesson, err := h.lessons.Get(r.Context(), chi.URLParam(r, "lessonID"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "lesson not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch lesson")
		return
	}
	writeJSON(w, http.StatusOK, lesson)
}

func (h *LessonHandler) CreateLesson(w http.ResponseWriter, r *http.Request) {
	lesson, err := h.parseLessonForm(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if lesson.Title == "" || lesson.Description == "" {
		writeError(w, http.StatusBadRequest, "title and description are required")
		return
	}

	created, err := h.lessons.Create(r.Context(), lesson)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create lesson")
		return
	}
	writeJSON(w, http.StatusCreated, LessonResponse{Message: "Lesson created successfully", Lesson: created})
}

func (h *LessonHandler) UpdateLesson(w http.ResponseWriter, r *http.Request) {
	publicID := chi.URLParam(r, "lessonID")

	lesson, err := h.parseLessonForm(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	lesson.PublicID = publicID

	if lesson.FilePath == "" {
		existing, err := h.lessons.Get(r.Context(), publicID)
		if err == nil {
			lesson.FilePath = existing.FilePath
		}
	}

	updated, err := h.lessons.Update(r.Context(), lesson)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "lesson not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update lesson")
		return
	}
	writeJSON(w, http.StatusOK, LessonResponse{Message: "Lesson updated successfully", Lesson: updated})
}

func (h *LessonHandler) DeleteLesson(w http.ResponseWriter, r *http.Request) {
	if err := h.lessons.Delete(r.Context(), chi.URLParam(r, "lessonID")); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "lesson not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete lesson")
		return
	}
	writeMessage(w, http.StatusOK, "Lesson deleted successfully")
}

func (h *LessonHandler) parseLessonForm(r *http.Request) (types.Lesson, error) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		return types.Lesson{}, errors.New("invalid multipart form")
	}

	lesson := types.Lesson{
		Title:       strings.TrimSpace(r.FormValue("title")),
		Description: r.FormValue("description"),
	}

	key, err := h.uploads.SaveFormFile(r, formFieldFile)
	if err != nil {
		return types.Lesson{}, err
	}
	lesson.FilePath = key
	return lesson, nil
}

type LessonResponse struct {
	Message string       `json:"message"`
	Lesson  types.Lesson `json:"lesson"`
}
