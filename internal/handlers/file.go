package handlers

import (
	"errors"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/campushub/backend/internal/auth"
	"github.com/campushub/backend/internal/storage"
	"github.com/campushub/backend/types"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// ErrUploadsDisabled is returned when a file arrives but no object
// storage backend is configured.
var ErrUploadsDisabled = errors.New("file uploads are not configured")

// UploadHelper stores multipart uploads under random keys. It is
// shared by the file manager and by resources that accept an inline
// attachment.
type UploadHelper struct {
	store *storage.Storage
}

func NewUploadHelper(store *storage.Storage) *UploadHelper {
	return &UploadHelper{store: store}
}

// Enabled reports whether an object storage backend is configured.
func (u *UploadHelper) Enabled() bool {
	return u.store != nil
}

// SaveFormFile stores the named form file, if present, and returns
// its object key. An absent file is not an error and yields "".
func (u *UploadHelper) SaveFormFile(r *http.Request, field string) (string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", nil
		}
		return "", errors.New("invalid file upload")
	}
	defer file.Close()

	if !u.Enabled() {
		return "", ErrUploadsDisabled
	}

	key := uuid.NewString() + strings.ToLower(path.Ext(header.Filename))
	contentType := header.Header.Get("Content-Type")
	if err := u.store.Put(r.Context(), key, file, header.Size, contentType); err != nil {
		return "", err
	}
	return key, nil
}

// Open streams a stored object.
func (u *UploadHelper) Open(r *http.Request, key string) (io.ReadCloser, error) {
	if !u.Enabled() {
		return nil, ErrUploadsDisabled
	}
	return u.store.Get(r.Context(), key)
}

// Remove deletes a stored object.
func (u *UploadHelper) Remove(r *http.Request, key string) error {
	if !u.Enabled() {
		return ErrUploadsDisabled
	}
	return u.store.Delete(r.Context(), key)
}

// FileHandler provides direct upload, retrieval, and deletion of
// stored files.
type FileHandler struct {
	uploads *UploadHelper
}

func NewFileHandler(uploads *UploadHelper) *FileHandler {
	return &FileHandler{uploads: uploads}
}

// FileRouter registers file-manager routes. Retrieval is public, to
// serve attachments embedded in articles and lessons; mutation
// requires staff or admin.
func FileRouter(r chi.Router, handler *FileHandler, gate *auth.Authenticator) {
	staffOnly := auth.RequireRoles(types.RoleStaff, types.RoleAdmin)

	r.With(gate.RequireAuth, staffOnly).Post("/file/upload", handler.Upload)
	r.Get("/file/uploaded/{fileKey}", handler.Download)
	r.With(gate.RequireAuth, staffOnly).Delete("/file/uploaded/{fileKey}", handler.Delete)
}

func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	key, err := h.uploads.SaveFormFile(r, formFieldFile)
	if err != nil {
		if errors.Is(err, ErrUploadsDisabled) {
			writeError(w, http.StatusServiceUnavailable, ErrUploadsDisabled.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to store file")
		return
	}
	if key == "" {
		writeError(w, http.StatusBadRequest, "no file uploaded")
		return
	}

	writeJSON(w, http.StatusOK, FileUploadResponse{Message: "File uploaded successfully", Key: key})
}

func (h *FileHandler) Download(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "fileKey")

	reader, err := h.uploads.Open(r, key)
	if err != nil {
		if errors.Is(err, ErrUploadsDisabled) {
			writeError(w, http.StatusServiceUnavailable, ErrUploadsDisabled.Error())
			return
		}
		writeError(w, http.StatusNotFound, "file not found")
		return
	}
	defer reader.Close()

	if _, err := io.Copy(w, reader); err != nil {
		// Headers are already out; nothing useful left to send.
		return
	}
}

func (h *FileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "fileKey")

	if err := h.uploads.Remove(r, key); err != nil {
		if errors.Is(err, ErrUploadsDisabled) {
			writeError(w, http.StatusServiceUnavailable, ErrUploadsDisabled.Error())
			return
		}
		writeError(w, http.StatusNotFound, "file not found")
		return
	}
	writeMessage(w, http.StatusOK, "File deleted successfully")
}

type FileUploadResponse struct {
	Message string `json:"message"`
	Key     string `json:"key"`
}
