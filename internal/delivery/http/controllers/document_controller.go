package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"doctags/internal/delivery/http/helpers"
	"doctags/internal/delivery/http/middleware"
	"doctags/internal/domain"
)

// CreateDocumentRequest is the request body for POST /documents.
type CreateDocumentRequest struct {
	Title string   `json:"title"`
	Body  string   `json:"body"`
	Tags  []string `json:"tags"`
}

// Validate implements Validator.
func (c CreateDocumentRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(c.Title) == "" {
		errs = append(errs, "title is required")
	}
	return errs
}

// UpdateDocumentRequest is the request body for PATCH /documents/{documentID}.
// All fields optional; omitted fields are unchanged. Tags are managed through
// the tag endpoints, not here.
type UpdateDocumentRequest struct {
	Title *string `json:"title"`
	Body  *string `json:"body"`
}

// Validate implements Validator.
func (u UpdateDocumentRequest) Validate() []string {
	var errs []string
	if u.Title != nil && strings.TrimSpace(*u.Title) == "" {
		errs = append(errs, "title cannot be empty")
	}
	return errs
}

// CreateDocumentSuccessResponse is the success response envelope for POST /documents (201).
type CreateDocumentSuccessResponse struct {
	Data  *domain.Document  `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// GetDocumentSuccessResponse is the success response envelope for GET /documents/{documentID} (200).
type GetDocumentSuccessResponse struct {
	Data  *domain.Document  `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// ListDocumentsResponse is the data payload for GET /documents (200).
type ListDocumentsResponse struct {
	Items      []*domain.Document     `json:"items"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

// ListDocumentsSuccessResponse is the success response envelope for GET /documents (200).
type ListDocumentsSuccessResponse struct {
	Data  ListDocumentsResponse `json:"data"`
	Error *helpers.APIError     `json:"error"`
}

// UpdateDocumentSuccessResponse is the success response envelope for PATCH /documents/{documentID} (200).
type UpdateDocumentSuccessResponse struct {
	Data  *domain.Document  `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// DeleteDocumentResponse is the data payload for DELETE /documents/{documentID} (200).
type DeleteDocumentResponse struct {
	Status string `json:"status"`
}

// DeleteDocumentSuccessResponse is the success response envelope for DELETE /documents/{documentID} (200).
type DeleteDocumentSuccessResponse struct {
	Data  DeleteDocumentResponse `json:"data"`
	Error *helpers.APIError      `json:"error"`
}

// AddTagResponse is the data payload for PUT /documents/{documentID}/tags/{tag}.
// Added reports whether this request changed the stored tag sequence; false
// means the tag was already present. Tags is the document's tag list after
// the operation.
type AddTagResponse struct {
	Added bool     `json:"added"`
	Tags  []string `json:"tags"`
}

// AddTagSuccessResponse is the success response envelope for PUT /documents/{documentID}/tags/{tag} (200/201).
type AddTagSuccessResponse struct {
	Data  AddTagResponse    `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// RemoveTagResponse is the data payload for DELETE /documents/{documentID}/tags/{tag} (200).
// Removed reports whether this request changed the stored tag sequence; false
// means the tag was not present.
type RemoveTagResponse struct {
	Removed bool     `json:"removed"`
	Tags    []string `json:"tags"`
}

// RemoveTagSuccessResponse is the success response envelope for DELETE /documents/{documentID}/tags/{tag} (200).
type RemoveTagSuccessResponse struct {
	Data  RemoveTagResponse `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// DocumentController handles document CRUD and tag endpoints.
type DocumentController struct {
	Logger  *slog.Logger
	Service domain.DocumentService
}

// NewDocumentController creates a DocumentController with the given logger and service.
func NewDocumentController(logger *slog.Logger, svc domain.DocumentService) *DocumentController {
	return &DocumentController{
		Logger:  logger,
		Service: svc,
	}
}

// CreateDocument godoc
// @Summary Create a document
// @Description Create a document with a title, body, and optional initial tags. Initial tags are normalized (trimmed, deduplicated). The authenticated user becomes the owner.
// @Tags documents
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateDocumentRequest true "Document data"
// @Success 201 {object} controllers.CreateDocumentSuccessResponse "data contains the created document"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /documents [post]
func (c *DocumentController) CreateDocument(w http.ResponseWriter, r *http.Request) {
	var req CreateDocumentRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	doc, err := c.Service.CreateDocument(r.Context(), userID, req.Title, req.Body, req.Tags)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) || errors.Is(err, domain.ErrInvalidTag) {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, doc)
}

// GetDocument godoc
// @Summary Get a document by ID
// @Description Returns the document with its tags. Only the owner can access. Requires authentication.
// @Tags documents
// @Produce json
// @Security BearerAuth
// @Param documentID path string true "Document ID (UUID)"
// @Success 200 {object} controllers.GetDocumentSuccessResponse "data contains the document"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not owner)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /documents/{documentID} [get]
func (c *DocumentController) GetDocument(w http.ResponseWriter, r *http.Request) {
	documentID := r.PathValue("documentID")
	if documentID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing documentID")
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	doc, err := c.Service.GetDocument(r.Context(), documentID, userID)
	if err != nil {
		c.writeDocumentError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, doc)
}

// ListDocuments godoc
// @Summary List documents
// @Description Returns the authenticated user's documents, optionally filtered by tags. include_tags keeps only documents carrying every listed tag. exclude_tags drops only documents carrying every listed tag; a document with just some of them is kept. Both are comma-separated. Omitting both returns everything.
// @Tags documents
// @Produce json
// @Security BearerAuth
// @Param include_tags query string false "Comma-separated tags a document must all carry"
// @Param exclude_tags query string false "Comma-separated tags; documents carrying all of them are dropped"
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.ListDocumentsSuccessResponse "data contains items and pagination"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /documents [get]
func (c *DocumentController) ListDocuments(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	filter := helpers.ParseTagFilter(r)
	params := helpers.ParsePagination(r)
	docs, total, err := c.Service.ListDocuments(r.Context(), userID, filter, params)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	if docs == nil {
		docs = []*domain.Document{}
	}
	meta := helpers.NewPaginationMeta(params.Page, params.PageSize, total)
	helpers.WriteJSONSuccess(w, http.StatusOK, ListDocumentsResponse{Items: docs, Pagination: meta})
}

// UpdateDocument godoc
// @Summary Update a document
// @Description Updates a document's title and/or body. Only the owner can update. Optional fields omitted from body are unchanged. Tags are managed through the tag endpoints. Requires authentication.
// @Tags documents
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param documentID path string true "Document ID (UUID)"
// @Param body body UpdateDocumentRequest true "Fields to update (all optional)"
// @Success 200 {object} controllers.UpdateDocumentSuccessResponse "data contains the updated document"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not owner)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /documents/{documentID} [patch]
func (c *DocumentController) UpdateDocument(w http.ResponseWriter, r *http.Request) {
	documentID := r.PathValue("documentID")
	if documentID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing documentID")
		return
	}
	var req UpdateDocumentRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	doc, err := c.Service.UpdateDocument(r.Context(), documentID, userID, req.Title, req.Body)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
			return
		}
		c.writeDocumentError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, doc)
}

// DeleteDocument godoc
// @Summary Delete a document
// @Description Deletes a document. Only the owner can delete. Requires authentication.
// @Tags documents
// @Produce json
// @Security BearerAuth
// @Param documentID path string true "Document ID (UUID)"
// @Success 200 {object} controllers.DeleteDocumentSuccessResponse "data contains status"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not owner)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /documents/{documentID} [delete]
func (c *DocumentController) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	documentID := r.PathValue("documentID")
	if documentID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing documentID")
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	if err := c.Service.DeleteDocument(r.Context(), documentID, userID); err != nil {
		c.writeDocumentError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, DeleteDocumentResponse{Status: "deleted"})
}

// AddTag godoc
// @Summary Add a tag to a document
// @Description Adds the tag to the document's tag sequence. The update is conditional on the tag being absent, so concurrent adds of the same tag succeed for exactly one caller. Returns 201 when the sequence changed and 200 when the tag was already present (added=false). Only the owner can tag. Requires authentication.
// @Tags documents
// @Produce json
// @Security BearerAuth
// @Param documentID path string true "Document ID (UUID)"
// @Param tag path string true "Tag to add (trimmed; max 255 bytes)"
// @Success 200 {object} controllers.AddTagSuccessResponse "tag already present; added=false"
// @Success 201 {object} controllers.AddTagSuccessResponse "tag appended; added=true"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (invalid tag)"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not owner)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /documents/{documentID}/tags/{tag} [put]
func (c *DocumentController) AddTag(w http.ResponseWriter, r *http.Request) {
	documentID := r.PathValue("documentID")
	tag := r.PathValue("tag")
	if documentID == "" || tag == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing documentID or tag")
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	doc, err := c.Service.GetDocument(r.Context(), documentID, userID)
	if err != nil {
		c.writeDocumentError(w, r, err)
		return
	}
	added, err := c.Service.AddTag(r.Context(), doc, tag)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidTag) {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
			return
		}
		c.writeDocumentError(w, r, err)
		return
	}
	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}
	helpers.WriteJSONSuccess(w, status, AddTagResponse{Added: added, Tags: tagsOrEmpty(doc)})
}

// RemoveTag godoc
// @Summary Remove a tag from a document
// @Description Removes the tag from the document's tag sequence, preserving the order of the remaining tags. The update is conditional on the tag being present; removed=false means it was not there. Only the owner can untag. Requires authentication.
// @Tags documents
// @Produce json
// @Security BearerAuth
// @Param documentID path string true "Document ID (UUID)"
// @Param tag path string true "Tag to remove"
// @Success 200 {object} controllers.RemoveTagSuccessResponse "removed reports whether the sequence changed"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (invalid tag)"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not owner)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /documents/{documentID}/tags/{tag} [delete]
func (c *DocumentController) RemoveTag(w http.ResponseWriter, r *http.Request) {
	documentID := r.PathValue("documentID")
	tag := r.PathValue("tag")
	if documentID == "" || tag == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing documentID or tag")
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	doc, err := c.Service.GetDocument(r.Context(), documentID, userID)
	if err != nil {
		c.writeDocumentError(w, r, err)
		return
	}
	removed, err := c.Service.RemoveTag(r.Context(), doc, tag)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidTag) {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
			return
		}
		c.writeDocumentError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, RemoveTagResponse{Removed: removed, Tags: tagsOrEmpty(doc)})
}

// HasTag godoc
// @Summary Check whether a document carries a tag
// @Description Probes the document's tag sequence for an exact match. Responds 204 when the tag is present and 404 when it is not (or the document does not exist). Only the owner can probe. Requires authentication.
// @Tags documents
// @Security BearerAuth
// @Param documentID path string true "Document ID (UUID)"
// @Param tag path string true "Tag to probe (exact match, no normalization)"
// @Success 204 "tag is present"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not owner)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (document or tag)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /documents/{documentID}/tags/{tag} [get]
func (c *DocumentController) HasTag(w http.ResponseWriter, r *http.Request) {
	documentID := r.PathValue("documentID")
	tag := r.PathValue("tag")
	if documentID == "" || tag == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing documentID or tag")
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	doc, err := c.Service.GetDocument(r.Context(), documentID, userID)
	if err != nil {
		c.writeDocumentError(w, r, err)
		return
	}
	if !doc.HasTag(tag) {
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "tag not present on document")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeDocumentError maps document service errors onto the shared status codes.
func (c *DocumentController) writeDocumentError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "document not found")
		return
	}
	if errors.Is(err, domain.ErrForbidden) {
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "forbidden")
		return
	}
	c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
	helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
}

func tagsOrEmpty(doc *domain.Document) []string {
	if doc.Tags == nil {
		return []string{}
	}
	return doc.Tags
}
