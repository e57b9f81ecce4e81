package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"doctags/internal/delivery/http/helpers"
	"doctags/internal/delivery/http/middleware"
	"doctags/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

// fakeDocumentService implements domain.DocumentService for handler tests.
// AddTag and RemoveTag honor the service contract: on a confirmed change they
// mirror it onto the caller's doc.Tags, on a no-op or error they leave it alone.
type fakeDocumentService struct {
	createErr       error
	getErr          error
	listErr         error
	updateErr       error
	deleteErr       error
	addTagErr       error
	removeTagErr    error
	addTagResult    bool
	removeTagResult bool
	docsByID        map[string]*domain.Document
	listResult      []*domain.Document
	listTotal       int

	lastCreateOwnerID  string
	lastCreateTitle    string
	lastCreateBody     string
	lastCreateTags     []string
	lastGetID          string
	lastGetCallerID    string
	lastListOwnerID    string
	lastListFilter     domain.TagFilter
	lastListParams     domain.PaginationParams
	lastUpdateID       string
	lastUpdateCallerID string
	lastUpdateTitle    *string
	lastUpdateBody     *string
	lastDeleteID       string
	lastDeleteCallerID string
	lastAddTag         string
	lastRemoveTag      string
}

func (f *fakeDocumentService) CreateDocument(ctx context.Context, ownerID, title, body string, tags []string) (*domain.Document, error) {
	f.lastCreateOwnerID = ownerID
	f.lastCreateTitle = title
	f.lastCreateBody = body
	f.lastCreateTags = tags
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &domain.Document{ID: "doc-created", OwnerID: ownerID, Title: title, Body: body, Tags: tags}, nil
}

func (f *fakeDocumentService) GetDocument(ctx context.Context, id, callerID string) (*domain.Document, error) {
	f.lastGetID = id
	f.lastGetCallerID = callerID
	if f.getErr != nil {
		return nil, f.getErr
	}
	if doc, ok := f.docsByID[id]; ok {
		return doc, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeDocumentService) ListDocuments(ctx context.Context, ownerID string, filter domain.TagFilter, p domain.PaginationParams) ([]*domain.Document, int, error) {
	f.lastListOwnerID = ownerID
	f.lastListFilter = filter
	f.lastListParams = p
	if f.listErr != nil {
		return nil, 0, f.listErr
	}
	return f.listResult, f.listTotal, nil
}

func (f *fakeDocumentService) UpdateDocument(ctx context.Context, id, callerID string, title, body *string) (*domain.Document, error) {
	f.lastUpdateID = id
	f.lastUpdateCallerID = callerID
	f.lastUpdateTitle = title
	f.lastUpdateBody = body
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	doc, ok := f.docsByID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if title != nil {
		doc.Title = *title
	}
	if body != nil {
		doc.Body = *body
	}
	return doc, nil
}

func (f *fakeDocumentService) DeleteDocument(ctx context.Context, id, callerID string) error {
	f.lastDeleteID = id
	f.lastDeleteCallerID = callerID
	return f.deleteErr
}

func (f *fakeDocumentService) AddTag(ctx context.Context, doc *domain.Document, tag string) (bool, error) {
	f.lastAddTag = tag
	if f.addTagErr != nil {
		return false, f.addTagErr
	}
	if f.addTagResult && !doc.HasTag(tag) {
		doc.Tags = append(doc.Tags, tag)
	}
	return f.addTagResult, nil
}

func (f *fakeDocumentService) RemoveTag(ctx context.Context, doc *domain.Document, tag string) (bool, error) {
	f.lastRemoveTag = tag
	if f.removeTagErr != nil {
		return false, f.removeTagErr
	}
	if f.removeTagResult {
		for i, t := range doc.Tags {
			if t == tag {
				doc.Tags = append(doc.Tags[:i], doc.Tags[i+1:]...)
				break
			}
		}
	}
	return f.removeTagResult, nil
}

func TestDocumentController_CreateDocument(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		fakeErr        error
		noUserContext  bool // if true, do not set user ID in context (expect 401)
		wantStatus     int
		wantBodySubstr string
		checkDoc       func(t *testing.T, doc domain.Document)
	}{
		{
			name:       "success",
			body:       `{"title":"Q3 report","body":"numbers","tags":["finance","draft"]}`,
			wantStatus: http.StatusCreated,
			checkDoc: func(t *testing.T, doc domain.Document) {
				assert.Equal(t, "doc-created", doc.ID)
				assert.Equal(t, "Q3 report", doc.Title)
				assert.Equal(t, "user-123", doc.OwnerID)
				assert.Equal(t, []string{"finance", "draft"}, doc.Tags)
			},
		},
		{
			name:       "success without tags",
			body:       `{"title":"Untagged"}`,
			wantStatus: http.StatusCreated,
			checkDoc: func(t *testing.T, doc domain.Document) {
				assert.Equal(t, "Untagged", doc.Title)
				assert.Empty(t, doc.Tags)
			},
		},
		{
			name:           "no user in context",
			body:           `{"title":"Q3 report"}`,
			noUserContext:  true,
			wantStatus:     http.StatusUnauthorized,
			wantBodySubstr: "unauthorized",
		},
		{
			name:           "bad request invalid json",
			body:           `{invalid`,
			noUserContext:  true, // decode fails before we check context
			wantStatus:     http.StatusBadRequest,
			wantBodySubstr: "invalid",
		},
		{
			name:           "missing title",
			body:           `{"body":"no title"}`,
			wantStatus:     http.StatusBadRequest,
			wantBodySubstr: "title is required",
		},
		{
			name:           "unknown field rejected",
			body:           `{"title":"Doc","owner_id":"someone-else"}`,
			wantStatus:     http.StatusBadRequest,
			wantBodySubstr: "unknown field",
		},
		{
			name:           "invalid initial tag",
			body:           `{"title":"Doc","tags":["  "]}`,
			fakeErr:        fmt.Errorf("%w: empty", domain.ErrInvalidTag),
			wantStatus:     http.StatusBadRequest,
			wantBodySubstr: "invalid tag",
		},
		{
			name:           "service error",
			body:           `{"title":"Doc"}`,
			fakeErr:        errors.New("db error"),
			wantStatus:     http.StatusInternalServerError,
			wantBodySubstr: "db error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeDocumentService{createErr: tt.fakeErr}
			ctrl := NewDocumentController(testLogger, fake)
			req := httptest.NewRequest(http.MethodPost, "/documents", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			if !tt.noUserContext {
				req = req.WithContext(middleware.SetUserID(req.Context(), "user-123"))
			}
			rr := httptest.NewRecorder()

			ctrl.CreateDocument(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code, "status code")
			var envelope helpers.APIResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope), "response must be valid JSON envelope")
			if tt.wantStatus == http.StatusCreated && tt.checkDoc != nil {
				require.Nil(t, envelope.Error, "success response must have error nil")
				dataBytes, err := json.Marshal(envelope.Data)
				require.NoError(t, err)
				var doc domain.Document
				require.NoError(t, json.Unmarshal(dataBytes, &doc))
				tt.checkDoc(t, doc)
			}
			if tt.wantStatus != http.StatusCreated && tt.wantBodySubstr != "" {
				require.NotNil(t, envelope.Error, "error response must have error set")
				assert.Contains(t, envelope.Error.Message, tt.wantBodySubstr, "error message")
			}
		})
	}
}

func TestDocumentController_GetDocument(t *testing.T) {
	tests := []struct {
		name           string
		documentID     string
		fakeErr        error
		docsByID       map[string]*domain.Document
		noUserContext  bool
		wantStatus     int
		wantBodySubstr string
		checkDoc       func(t *testing.T, doc domain.Document)
	}{
		{
			name:       "success",
			documentID: "doc-1",
			docsByID: map[string]*domain.Document{
				"doc-1": {ID: "doc-1", OwnerID: "user-123", Title: "Notes", Tags: []string{"go", "draft"}},
			},
			wantStatus: http.StatusOK,
			checkDoc: func(t *testing.T, doc domain.Document) {
				assert.Equal(t, "doc-1", doc.ID)
				assert.Equal(t, []string{"go", "draft"}, doc.Tags)
			},
		},
		{
			name:           "document not found",
			documentID:     "doc-missing",
			wantStatus:     http.StatusNotFound,
			wantBodySubstr: "document not found",
		},
		{
			name:           "not the owner",
			documentID:     "doc-1",
			fakeErr:        domain.ErrForbidden,
			wantStatus:     http.StatusForbidden,
			wantBodySubstr: "forbidden",
		},
		{
			name:           "missing documentID",
			documentID:     "",
			wantStatus:     http.StatusBadRequest,
			wantBodySubstr: "missing documentID",
		},
		{
			name:           "no user in context",
			documentID:     "doc-1",
			noUserContext:  true,
			wantStatus:     http.StatusUnauthorized,
			wantBodySubstr: "unauthorized",
		},
		{
			name:           "service error",
			documentID:     "doc-1",
			fakeErr:        errors.New("db error"),
			wantStatus:     http.StatusInternalServerError,
			wantBodySubstr: "db error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeDocumentService{getErr: tt.fakeErr, docsByID: tt.docsByID}
			ctrl := NewDocumentController(testLogger, fake)
			req := httptest.NewRequest(http.MethodGet, "/documents/"+tt.documentID, nil)
			req.SetPathValue("documentID", tt.documentID)
			if !tt.noUserContext {
				req = req.WithContext(middleware.SetUserID(req.Context(), "user-123"))
			}
			rr := httptest.NewRecorder()

			ctrl.GetDocument(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code, "status code")
			var envelope helpers.APIResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope), "response must be valid JSON envelope")
			if tt.wantStatus == http.StatusOK && tt.checkDoc != nil {
				require.Nil(t, envelope.Error)
				dataBytes, err := json.Marshal(envelope.Data)
				require.NoError(t, err)
				var doc domain.Document
				require.NoError(t, json.Unmarshal(dataBytes, &doc))
				tt.checkDoc(t, doc)
			}
			if tt.wantStatus != http.StatusOK && tt.wantBodySubstr != "" {
				require.NotNil(t, envelope.Error)
				assert.Contains(t, envelope.Error.Message, tt.wantBodySubstr, "error message")
			}
		})
	}
}

func TestDocumentController_ListDocuments(t *testing.T) {
	tests := []struct {
		name           string
		query          string
		fakeErr        error
		listResult     []*domain.Document
		listTotal      int
		noUserContext  bool
		wantStatus     int
		wantBodySubstr string
		wantFilter     domain.TagFilter
		wantParams     domain.PaginationParams
		checkData      func(t *testing.T, data ListDocumentsResponse)
	}{
		{
			name:  "success with tag filter",
			query: "?include_tags=go,draft&exclude_tags=legacy,archived&page=2&page_size=10",
			listResult: []*domain.Document{
				{ID: "doc-1", OwnerID: "user-123", Title: "A", Tags: []string{"go", "draft"}},
				{ID: "doc-2", OwnerID: "user-123", Title: "B", Tags: []string{"go", "draft", "legacy"}},
			},
			listTotal:  12,
			wantStatus: http.StatusOK,
			wantFilter: domain.TagFilter{IncludeAll: []string{"go", "draft"}, ExcludeAll: []string{"legacy", "archived"}},
			wantParams: domain.PaginationParams{Page: 2, PageSize: 10},
			checkData: func(t *testing.T, data ListDocumentsResponse) {
				require.Len(t, data.Items, 2)
				assert.Equal(t, "doc-1", data.Items[0].ID)
				assert.Equal(t, 12, data.Pagination.Total)
				assert.Equal(t, 2, data.Pagination.Page)
				assert.Equal(t, 2, data.Pagination.TotalPages)
			},
		},
		{
			name:       "success no filter",
			query:      "",
			listResult: []*domain.Document{{ID: "doc-1", OwnerID: "user-123", Title: "A"}},
			listTotal:  1,
			wantStatus: http.StatusOK,
			wantFilter: domain.TagFilter{},
			wantParams: domain.PaginationParams{Page: 1, PageSize: 20},
			checkData: func(t *testing.T, data ListDocumentsResponse) {
				require.Len(t, data.Items, 1)
				assert.Equal(t, 1, data.Pagination.TotalPages)
			},
		},
		{
			name:       "nil result becomes empty list",
			query:      "",
			listResult: nil,
			listTotal:  0,
			wantStatus: http.StatusOK,
			wantFilter: domain.TagFilter{},
			wantParams: domain.PaginationParams{Page: 1, PageSize: 20},
			checkData: func(t *testing.T, data ListDocumentsResponse) {
				require.Len(t, data.Items, 0)
			},
		},
		{
			name:           "no user in context",
			noUserContext:  true,
			wantStatus:     http.StatusUnauthorized,
			wantBodySubstr: "unauthorized",
		},
		{
			name:           "service error",
			fakeErr:        errors.New("db error"),
			wantStatus:     http.StatusInternalServerError,
			wantBodySubstr: "db error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeDocumentService{listErr: tt.fakeErr, listResult: tt.listResult, listTotal: tt.listTotal}
			ctrl := NewDocumentController(testLogger, fake)
			req := httptest.NewRequest(http.MethodGet, "/documents"+tt.query, nil)
			if !tt.noUserContext {
				req = req.WithContext(middleware.SetUserID(req.Context(), "user-123"))
			}
			rr := httptest.NewRecorder()

			ctrl.ListDocuments(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code, "status code")
			var envelope helpers.APIResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope), "response must be valid JSON envelope")
			if tt.wantStatus == http.StatusOK {
				require.Nil(t, envelope.Error)
				assert.Equal(t, "user-123", fake.lastListOwnerID, "owner scoping")
				assert.Equal(t, tt.wantFilter, fake.lastListFilter, "parsed tag filter")
				assert.Equal(t, tt.wantParams, fake.lastListParams, "parsed pagination")
				if tt.checkData != nil {
					dataBytes, err := json.Marshal(envelope.Data)
					require.NoError(t, err)
					var data ListDocumentsResponse
					require.NoError(t, json.Unmarshal(dataBytes, &data))
					tt.checkData(t, data)
				}
			} else if tt.wantBodySubstr != "" {
				require.NotNil(t, envelope.Error)
				assert.Contains(t, envelope.Error.Message, tt.wantBodySubstr, "error message")
			}
		})
	}
}

func TestDocumentController_UpdateDocument(t *testing.T) {
	title := "Renamed"
	tests := []struct {
		name           string
		documentID     string
		body           string
		fakeErr        error
		docsByID       map[string]*domain.Document
		wantStatus     int
		wantBodySubstr string
		wantTitle      *string
		checkDoc       func(t *testing.T, doc domain.Document)
	}{
		{
			name:       "success title only",
			documentID: "doc-1",
			body:       `{"title":"Renamed"}`,
			docsByID: map[string]*domain.Document{
				"doc-1": {ID: "doc-1", OwnerID: "user-123", Title: "Old", Body: "keep", Tags: []string{"go"}},
			},
			wantStatus: http.StatusOK,
			wantTitle:  &title,
			checkDoc: func(t *testing.T, doc domain.Document) {
				assert.Equal(t, "Renamed", doc.Title)
				assert.Equal(t, "keep", doc.Body)
				assert.Equal(t, []string{"go"}, doc.Tags, "tags untouched by content update")
			},
		},
		{
			name:           "empty title rejected",
			documentID:     "doc-1",
			body:           `{"title":"  "}`,
			wantStatus:     http.StatusBadRequest,
			wantBodySubstr: "title cannot be empty",
		},
		{
			name:           "document not found",
			documentID:     "doc-missing",
			body:           `{"title":"Renamed"}`,
			wantStatus:     http.StatusNotFound,
			wantBodySubstr: "document not found",
		},
		{
			name:           "not the owner",
			documentID:     "doc-1",
			body:           `{"title":"Renamed"}`,
			fakeErr:        domain.ErrForbidden,
			wantStatus:     http.StatusForbidden,
			wantBodySubstr: "forbidden",
		},
		{
			name:           "missing documentID",
			documentID:     "",
			body:           `{"title":"Renamed"}`,
			wantStatus:     http.StatusBadRequest,
			wantBodySubstr: "missing documentID",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeDocumentService{updateErr: tt.fakeErr, docsByID: tt.docsByID}
			ctrl := NewDocumentController(testLogger, fake)
			req := httptest.NewRequest(http.MethodPatch, "/documents/"+tt.documentID, bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			req.SetPathValue("documentID", tt.documentID)
			req = req.WithContext(middleware.SetUserID(req.Context(), "user-123"))
			rr := httptest.NewRecorder()

			ctrl.UpdateDocument(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code, "status code")
			var envelope helpers.APIResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope), "response must be valid JSON envelope")
			if tt.wantStatus == http.StatusOK {
				require.Nil(t, envelope.Error)
				require.NotNil(t, fake.lastUpdateTitle)
				assert.Equal(t, *tt.wantTitle, *fake.lastUpdateTitle, "title pointer passed through")
				assert.Nil(t, fake.lastUpdateBody, "omitted body stays nil")
				if tt.checkDoc != nil {
					dataBytes, err := json.Marshal(envelope.Data)
					require.NoError(t, err)
					var doc domain.Document
					require.NoError(t, json.Unmarshal(dataBytes, &doc))
					tt.checkDoc(t, doc)
				}
			} else if tt.wantBodySubstr != "" {
				require.NotNil(t, envelope.Error)
				assert.Contains(t, envelope.Error.Message, tt.wantBodySubstr, "error message")
			}
		})
	}
}

func TestDocumentController_DeleteDocument(t *testing.T) {
	tests := []struct {
		name           string
		documentID     string
		fakeErr        error
		wantStatus     int
		wantBodySubstr string
	}{
		{
			name:       "success",
			documentID: "doc-1",
			wantStatus: http.StatusOK,
		},
		{
			name:           "document not found",
			documentID:     "doc-missing",
			fakeErr:        domain.ErrNotFound,
			wantStatus:     http.StatusNotFound,
			wantBodySubstr: "document not found",
		},
		{
			name:           "not the owner",
			documentID:     "doc-1",
			fakeErr:        domain.ErrForbidden,
			wantStatus:     http.StatusForbidden,
			wantBodySubstr: "forbidden",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeDocumentService{deleteErr: tt.fakeErr}
			ctrl := NewDocumentController(testLogger, fake)
			req := httptest.NewRequest(http.MethodDelete, "/documents/"+tt.documentID, nil)
			req.SetPathValue("documentID", tt.documentID)
			req = req.WithContext(middleware.SetUserID(req.Context(), "user-123"))
			rr := httptest.NewRecorder()

			ctrl.DeleteDocument(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code, "status code")
			var envelope helpers.APIResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope), "response must be valid JSON envelope")
			if tt.wantStatus == http.StatusOK {
				require.Nil(t, envelope.Error)
				dataMap, ok := envelope.Data.(map[string]interface{})
				require.True(t, ok, "data must be object")
				assert.Equal(t, "deleted", dataMap["status"], "data.status")
				assert.Equal(t, tt.documentID, fake.lastDeleteID)
				assert.Equal(t, "user-123", fake.lastDeleteCallerID)
			} else {
				require.NotNil(t, envelope.Error)
				assert.Contains(t, envelope.Error.Message, tt.wantBodySubstr, "error message")
			}
		})
	}
}

func TestDocumentController_AddTag(t *testing.T) {
	tests := []struct {
		name           string
		documentID     string
		tag            string
		docsByID       map[string]*domain.Document
		getErr         error
		addTagErr      error
		addTagResult   bool
		noUserContext  bool
		wantStatus     int
		wantBodySubstr string
		checkData      func(t *testing.T, data AddTagResponse)
	}{
		{
			name:       "tag appended",
			documentID: "doc-1",
			tag:        "urgent",
			docsByID: map[string]*domain.Document{
				"doc-1": {ID: "doc-1", OwnerID: "user-123", Tags: []string{"go"}},
			},
			addTagResult: true,
			wantStatus:   http.StatusCreated,
			checkData: func(t *testing.T, data AddTagResponse) {
				assert.True(t, data.Added)
				assert.Equal(t, []string{"go", "urgent"}, data.Tags, "mirrored tag appears at the end")
			},
		},
		{
			name:       "tag already present",
			documentID: "doc-1",
			tag:        "go",
			docsByID: map[string]*domain.Document{
				"doc-1": {ID: "doc-1", OwnerID: "user-123", Tags: []string{"go"}},
			},
			addTagResult: false,
			wantStatus:   http.StatusOK,
			checkData: func(t *testing.T, data AddTagResponse) {
				assert.False(t, data.Added)
				assert.Equal(t, []string{"go"}, data.Tags, "tag list unchanged")
			},
		},
		{
			name:       "first tag on untagged document",
			documentID: "doc-1",
			tag:        "urgent",
			docsByID: map[string]*domain.Document{
				"doc-1": {ID: "doc-1", OwnerID: "user-123"},
			},
			addTagResult: true,
			wantStatus:   http.StatusCreated,
			checkData: func(t *testing.T, data AddTagResponse) {
				assert.True(t, data.Added)
				assert.Equal(t, []string{"urgent"}, data.Tags)
			},
		},
		{
			name:       "invalid tag",
			documentID: "doc-1",
			tag:        "%20%20",
			docsByID: map[string]*domain.Document{
				"doc-1": {ID: "doc-1", OwnerID: "user-123"},
			},
			addTagErr:      fmt.Errorf("%w: empty", domain.ErrInvalidTag),
			wantStatus:     http.StatusBadRequest,
			wantBodySubstr: "invalid tag",
		},
		{
			name:           "document not found",
			documentID:     "doc-missing",
			tag:            "urgent",
			wantStatus:     http.StatusNotFound,
			wantBodySubstr: "document not found",
		},
		{
			name:           "not the owner",
			documentID:     "doc-1",
			tag:            "urgent",
			getErr:         domain.ErrForbidden,
			wantStatus:     http.StatusForbidden,
			wantBodySubstr: "forbidden",
		},
		{
			name:       "store failure",
			documentID: "doc-1",
			tag:        "urgent",
			docsByID: map[string]*domain.Document{
				"doc-1": {ID: "doc-1", OwnerID: "user-123"},
			},
			addTagErr:      errors.New("conditional update failed"),
			wantStatus:     http.StatusInternalServerError,
			wantBodySubstr: "conditional update failed",
		},
		{
			name:           "missing tag",
			documentID:     "doc-1",
			tag:            "",
			wantStatus:     http.StatusBadRequest,
			wantBodySubstr: "missing documentID or tag",
		},
		{
			name:           "no user in context",
			documentID:     "doc-1",
			tag:            "urgent",
			noUserContext:  true,
			wantStatus:     http.StatusUnauthorized,
			wantBodySubstr: "unauthorized",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeDocumentService{
				getErr:       tt.getErr,
				addTagErr:    tt.addTagErr,
				addTagResult: tt.addTagResult,
				docsByID:     tt.docsByID,
			}
			ctrl := NewDocumentController(testLogger, fake)
			req := httptest.NewRequest(http.MethodPut, "/documents/"+tt.documentID+"/tags/"+tt.tag, nil)
			req.SetPathValue("documentID", tt.documentID)
			req.SetPathValue("tag", tt.tag)
			if !tt.noUserContext {
				req = req.WithContext(middleware.SetUserID(req.Context(), "user-123"))
			}
			rr := httptest.NewRecorder()

			ctrl.AddTag(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code, "status code")
			var envelope helpers.APIResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope), "response must be valid JSON envelope")
			if tt.wantStatus == http.StatusCreated || tt.wantStatus == http.StatusOK {
				require.Nil(t, envelope.Error)
				assert.Equal(t, tt.tag, fake.lastAddTag, "tag passed to service")
				if tt.checkData != nil {
					dataBytes, err := json.Marshal(envelope.Data)
					require.NoError(t, err)
					var data AddTagResponse
					require.NoError(t, json.Unmarshal(dataBytes, &data))
					tt.checkData(t, data)
				}
			} else if tt.wantBodySubstr != "" {
				require.NotNil(t, envelope.Error)
				assert.Contains(t, envelope.Error.Message, tt.wantBodySubstr, "error message")
			}
		})
	}
}

func TestDocumentController_RemoveTag(t *testing.T) {
	tests := []struct {
		name            string
		documentID      string
		tag             string
		docsByID        map[string]*domain.Document
		getErr          error
		removeTagErr    error
		removeTagResult bool
		wantStatus      int
		wantBodySubstr  string
		checkData       func(t *testing.T, data RemoveTagResponse)
	}{
		{
			name:       "tag removed",
			documentID: "doc-1",
			tag:        "draft",
			docsByID: map[string]*domain.Document{
				"doc-1": {ID: "doc-1", OwnerID: "user-123", Tags: []string{"go", "draft", "2026"}},
			},
			removeTagResult: true,
			wantStatus:      http.StatusOK,
			checkData: func(t *testing.T, data RemoveTagResponse) {
				assert.True(t, data.Removed)
				assert.Equal(t, []string{"go", "2026"}, data.Tags, "remaining order preserved")
			},
		},
		{
			name:       "tag not present",
			documentID: "doc-1",
			tag:        "missing",
			docsByID: map[string]*domain.Document{
				"doc-1": {ID: "doc-1", OwnerID: "user-123", Tags: []string{"go"}},
			},
			removeTagResult: false,
			wantStatus:      http.StatusOK,
			checkData: func(t *testing.T, data RemoveTagResponse) {
				assert.False(t, data.Removed)
				assert.Equal(t, []string{"go"}, data.Tags)
			},
		},
		{
			name:       "last tag removed leaves empty list",
			documentID: "doc-1",
			tag:        "go",
			docsByID: map[string]*domain.Document{
				"doc-1": {ID: "doc-1", OwnerID: "user-123", Tags: []string{"go"}},
			},
			removeTagResult: true,
			wantStatus:      http.StatusOK,
			checkData: func(t *testing.T, data RemoveTagResponse) {
				assert.True(t, data.Removed)
				require.NotNil(t, data.Tags, "tags must serialize as [] not null")
				assert.Len(t, data.Tags, 0)
			},
		},
		{
			name:       "invalid tag",
			documentID: "doc-1",
			tag:        "%20",
			docsByID: map[string]*domain.Document{
				"doc-1": {ID: "doc-1", OwnerID: "user-123"},
			},
			removeTagErr:   fmt.Errorf("%w: empty", domain.ErrInvalidTag),
			wantStatus:     http.StatusBadRequest,
			wantBodySubstr: "invalid tag",
		},
		{
			name:           "document not found",
			documentID:     "doc-missing",
			tag:            "go",
			wantStatus:     http.StatusNotFound,
			wantBodySubstr: "document not found",
		},
		{
			name:           "not the owner",
			documentID:     "doc-1",
			tag:            "go",
			getErr:         domain.ErrForbidden,
			wantStatus:     http.StatusForbidden,
			wantBodySubstr: "forbidden",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeDocumentService{
				getErr:          tt.getErr,
				removeTagErr:    tt.removeTagErr,
				removeTagResult: tt.removeTagResult,
				docsByID:        tt.docsByID,
			}
			ctrl := NewDocumentController(testLogger, fake)
			req := httptest.NewRequest(http.MethodDelete, "/documents/"+tt.documentID+"/tags/"+tt.tag, nil)
			req.SetPathValue("documentID", tt.documentID)
			req.SetPathValue("tag", tt.tag)
			req = req.WithContext(middleware.SetUserID(req.Context(), "user-123"))
			rr := httptest.NewRecorder()

			ctrl.RemoveTag(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code, "status code")
			var envelope helpers.APIResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope), "response must be valid JSON envelope")
			if tt.wantStatus == http.StatusOK {
				require.Nil(t, envelope.Error)
				if tt.checkData != nil {
					dataBytes, err := json.Marshal(envelope.Data)
					require.NoError(t, err)
					var data RemoveTagResponse
					require.NoError(t, json.Unmarshal(dataBytes, &data))
					tt.checkData(t, data)
				}
			} else if tt.wantBodySubstr != "" {
				require.NotNil(t, envelope.Error)
				assert.Contains(t, envelope.Error.Message, tt.wantBodySubstr, "error message")
			}
		})
	}
}

func TestDocumentController_HasTag(t *testing.T) {
	tests := []struct {
		name           string
		documentID     string
		tag            string
		docsByID       map[string]*domain.Document
		getErr         error
		wantStatus     int
		wantBodySubstr string
	}{
		{
			name:       "tag present",
			documentID: "doc-1",
			tag:        "go",
			docsByID: map[string]*domain.Document{
				"doc-1": {ID: "doc-1", OwnerID: "user-123", Tags: []string{"go", "draft"}},
			},
			wantStatus: http.StatusNoContent,
		},
		{
			name:       "tag absent",
			documentID: "doc-1",
			tag:        "urgent",
			docsByID: map[string]*domain.Document{
				"doc-1": {ID: "doc-1", OwnerID: "user-123", Tags: []string{"go"}},
			},
			wantStatus:     http.StatusNotFound,
			wantBodySubstr: "tag not present on document",
		},
		{
			name:       "probe is exact no normalization",
			documentID: "doc-1",
			tag:        "Go",
			docsByID: map[string]*domain.Document{
				"doc-1": {ID: "doc-1", OwnerID: "user-123", Tags: []string{"go"}},
			},
			wantStatus:     http.StatusNotFound,
			wantBodySubstr: "tag not present on document",
		},
		{
			name:           "document not found",
			documentID:     "doc-missing",
			tag:            "go",
			wantStatus:     http.StatusNotFound,
			wantBodySubstr: "document not found",
		},
		{
			name:           "not the owner",
			documentID:     "doc-1",
			tag:            "go",
			getErr:         domain.ErrForbidden,
			wantStatus:     http.StatusForbidden,
			wantBodySubstr: "forbidden",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeDocumentService{getErr: tt.getErr, docsByID: tt.docsByID}
			ctrl := NewDocumentController(testLogger, fake)
			req := httptest.NewRequest(http.MethodGet, "/documents/"+tt.documentID+"/tags/"+tt.tag, nil)
			req.SetPathValue("documentID", tt.documentID)
			req.SetPathValue("tag", tt.tag)
			req = req.WithContext(middleware.SetUserID(req.Context(), "user-123"))
			rr := httptest.NewRecorder()

			ctrl.HasTag(rr, req)

			require.Equal(t, tt.wantStatus, rr.Code, "status code")
			if tt.wantStatus == http.StatusNoContent {
				assert.Zero(t, rr.Body.Len(), "204 response must have no body")
				return
			}
			var envelope helpers.APIResponse
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&envelope), "response must be valid JSON envelope")
			require.NotNil(t, envelope.Error)
			assert.Contains(t, envelope.Error.Message, tt.wantBodySubstr, "error message")
		})
	}
}
