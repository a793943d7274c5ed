package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/campushub/backend/internal/auth"
	"github.com/campushub/backend/internal/services"
	"github.com/campushub/backend/internal/store"
	"github.com/campushub/backend/types"
	"github.com/go-chi/chi/v5"
)

const (
	maxMultipartMemory = 32 << 20
	formFieldFile      = "file"
)

// ArticleHandler provides HTTP handlers for articles.
type ArticleHandler struct {
	articles *services.ArticleService
	uploads  *UploadHelper
}

func NewArticleHandler(articles *services.ArticleService, uploads *UploadHelper) *ArticleHandler {
	return &ArticleHandler{articles: articles, uploads: uploads}
}

// ArticleRouter registers article routes. Reading is public; writing
// requires a session, deleting the admin role.
func ArticleRouter(r chi.Router, handler *ArticleHandler, gate *auth.Authenticator) {
	r.Get("/articles", handler.ListArticles)
	r.Get("/articles/{articleID}", handler.GetArticle)
	r.With(gate.RequireAuth).Post("/articles", handler.CreateArticle)
	r.With(gate.RequireAuth, auth.RequireRoles(types.RoleStaff, types.RoleAdmin)).Put("/articles/{articleID}", handler.UpdateArticle)
	r.With(gate.RequireAuth, auth.RequireRoles(types.RoleAdmin)).Delete("/articles/{articleID}", handler.DeleteArticle)
}

func (h *ArticleHandler) ListArticles(w http.ResponseWriter, r *http.Request) {
	articles, err := h.articles.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list articles")
		return
	}
	writeJSON(w, http.StatusOK, articles)
}

func (h *ArticleHandler) GetArticle(w http.ResponseWriter, r *http.Request) {
	id, err := parseArticleID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	article, err := h.articles.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "article not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch article")
		return
	}
	writeJSON(w, http.StatusOK, article)
}

func (h *ArticleHandler) CreateArticle(w http.ResponseWriter, r *http.Request) {
	article, err := h.parseArticleForm(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if article.Title == "" || article.Body == "" {
		writeError(w, http.StatusBadRequest, "title and body are required")
		return
	}

	created, err := h.articles.Create(r.Context(), article)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create article")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *ArticleHandler) UpdateArticle(w http.ResponseWriter, r *http.Request) {
	id, err := parseArticleID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	article, err := h.parseArticleForm(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	article.ID = id

	if article.FilePath == "" {
		// No replacement upload; keep the existing attachment.
		existing, err := h.articles.Get(r.Context(), id)
		if err == nil {
			article.FilePath = existing.FilePath
		}
	}

	updated, err := h.articles.Update(r.Context(), article)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "article not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update article")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *ArticleHandler) DeleteArticle(w http.ResponseWriter, r *http.Request) {
	id, err := parseArticleID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.articles.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "article not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete article")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ArticleHandler) parseArticleForm(r *http.Request) (types.Article, error) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		return types.Article{}, errors.New("invalid multipart form")
	}

	article := types.Article{
		Title:      strings.TrimSpace(r.FormValue("title")),
		Body:       r.FormValue("body"),
		Conclusion: r.FormValue("conclusion"),
		Author:     strings.TrimSpace(r.FormValue("author")),
		Tags:       splitTags(r.FormValue("tags")),
	}

	key, err := h.uploads.SaveFormFile(r, formFieldFile)
	if err != nil {
		return types.Article{}, err
	}
	article.FilePath = key
	return article, nil
}

func splitTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

func parseArticleID(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "articleID")
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		return 0, errors.New("invalid article id")
	}
	return id, nil
}
