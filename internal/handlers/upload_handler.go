package handlers

import (
	"io"
	"log"
	"net/http"
	"path/filepath"

	"worklog-backend/internal/apperr"
	"worklog-backend/internal/models"
	"worklog-backend/internal/services"
	"worklog-backend/internal/storage"
	"worklog-backend/pkg/utils"
)

// maxUploadBytes caps attachment size; site photos from phones run ~5MB.
const maxUploadBytes = 20 << 20

type UploadHandler struct {
	Service *services.WorkLogService
	Store   *storage.ObjectStore
}

func NewUploadHandler(service *services.WorkLogService, store *storage.ObjectStore) *UploadHandler {
	return &UploadHandler{Service: service, Store: store}
}

// UploadPhoto stores a site photo and attaches it to a draft work log.
// Multipart fields: file (required), description.
func (h *UploadHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}
	id, err := workLogID(r)
	if err != nil {
		utils.Error(w, err)
		return
	}

	// Check the attach preconditions before touching object storage so a
	// frozen or foreign log never costs an upload.
	if err := h.Service.EnsureAttachable(r.Context(), actor, id); err != nil {
		utils.Error(w, err)
		return
	}
	if h.Store == nil {
		utils.Error(w, apperr.Validation("attachment uploads are not configured"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		utils.Error(w, apperr.Validation("file field is required"))
		return
	}
	defer file.Close()

	key := storage.AttachmentKey(id, "photos", filepath.Base(header.Filename))
	contentType := header.Header.Get("Content-Type")
	path, err := h.Store.Put(r.Context(), key, contentType, file)
	if err != nil {
		utils.Error(w, apperr.Storage(err, "store photo"))
		return
	}

	photo := models.Photo{
		Path:        path,
		Description: r.FormValue("description"),
	}
	if err := h.Service.AttachPhoto(r.Context(), actor, id, photo); err != nil {
		h.removeOrphan(r, key)
		utils.Error(w, err)
		return
	}

	utils.JSON(w, http.StatusCreated, photo)
}

// UploadDocument stores a delivery note, receipt or invoice and attaches
// it to a draft work log. Multipart fields: file (required), kind.
func (h *UploadHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}
	id, err := workLogID(r)
	if err != nil {
		utils.Error(w, err)
		return
	}

	if err := h.Service.EnsureAttachable(r.Context(), actor, id); err != nil {
		utils.Error(w, err)
		return
	}
	if h.Store == nil {
		utils.Error(w, apperr.Validation("attachment uploads are not configured"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		utils.Error(w, apperr.Validation("file field is required"))
		return
	}
	defer file.Close()

	kind := r.FormValue("kind")
	if kind == "" {
		kind = models.DocumentOther
	}
	if !models.ValidDocumentKind(kind) {
		utils.Error(w, apperr.Validation("invalid document kind %q", kind))
		return
	}

	key := storage.AttachmentKey(id, "documents", filepath.Base(header.Filename))
	contentType := header.Header.Get("Content-Type")
	path, err := h.Store.Put(r.Context(), key, contentType, file)
	if err != nil {
		utils.Error(w, apperr.Storage(err, "store document"))
		return
	}

	doc := models.Document{
		Path:         path,
		OriginalName: header.Filename,
		Kind:         kind,
	}
	if err := h.Service.AttachDocument(r.Context(), actor, id, doc); err != nil {
		h.removeOrphan(r, key)
		utils.Error(w, err)
		return
	}

	utils.JSON(w, http.StatusCreated, doc)
}

// Download streams one attachment back to the browser. The path query
// parameter must be a photo or document recorded on the log; visibility
// follows the same scope as reading the log itself.
func (h *UploadHandler) Download(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}
	id, err := workLogID(r)
	if err != nil {
		utils.Error(w, err)
		return
	}

	path := r.URL.Query().Get("path")
	if path == "" {
		utils.Error(w, apperr.Validation("path query parameter is required"))
		return
	}

	wl, err := h.Service.Get(r.Context(), actor, id)
	if err != nil {
		utils.Error(w, err)
		return
	}
	if !attachmentOnLog(wl, path) {
		utils.Error(w, apperr.NotFound("attachment not found on work log %d", id))
		return
	}

	if h.Store == nil {
		utils.Error(w, apperr.Validation("attachment uploads are not configured"))
		return
	}

	body, contentType, err := h.Store.Get(r.Context(), path)
	if err != nil {
		utils.Error(w, apperr.Storage(err, "fetch attachment"))
		return
	}
	defer body.Close()

	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	io.Copy(w, body)
}

// removeOrphan deletes an uploaded object whose attach was rejected, for
// example when the log was submitted between the precheck and the attach.
func (h *UploadHandler) removeOrphan(r *http.Request, key string) {
	if err := h.Store.Delete(r.Context(), key); err != nil {
		log.Printf("[Storage] Failed to remove orphaned upload %s: %v", key, err)
	}
}

func attachmentOnLog(wl *models.WorkLog, path string) bool {
	for _, p := range wl.Photos {
		if p.Path == path {
			return true
		}
	}
	for _, d := range wl.Documents {
		if d.Path == path {
			return true
		}
	}
	return false
}
