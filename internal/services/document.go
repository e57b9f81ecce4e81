package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"doctags/internal/domain"
)

type documentService struct {
	docRepo      domain.DocumentRepository
	subRepo      domain.TagSubscriptionRepository
	emailService domain.EmailService
}

// NewDocumentService creates a DocumentService with the given repositories.
// subRepo and emailService may be nil, which disables tag notifications.
func NewDocumentService(
	docRepo domain.DocumentRepository,
	subRepo domain.TagSubscriptionRepository,
	emailService domain.EmailService,
) domain.DocumentService {
	return &documentService{
		docRepo:      docRepo,
		subRepo:      subRepo,
		emailService: emailService,
	}
}

func (s *documentService) CreateDocument(ctx context.Context, ownerID, title, body string, tags []string) (*domain.Document, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("title is required: %w", domain.ErrInvalidInput)
	}
	tags, err := domain.NormalizeTags(tags)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	doc := domain.NewDocument(ownerID, title, body, tags, now, now)
	if err := s.docRepo.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("create document: %w", err)
	}
	return doc, nil
}

func (s *documentService) GetDocument(ctx context.Context, id, callerID string) (*domain.Document, error) {
	doc, err := s.docRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get document: %w", err)
	}
	if doc.OwnerID != callerID {
		return nil, domain.ErrForbidden
	}
	return doc, nil
}

func (s *documentService) ListDocuments(ctx context.Context, ownerID string, filter domain.TagFilter, p domain.PaginationParams) ([]*domain.Document, int, error) {
	docs, total, err := s.docRepo.List(ctx, domain.DocumentQuery{
		OwnerID:    ownerID,
		Tags:       filter,
		Pagination: p.Normalized(),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("list documents: %w", err)
	}
	return docs, total, nil
}

func (s *documentService) UpdateDocument(ctx context.Context, id, callerID string, title, body *string) (*domain.Document, error) {
	if _, err := s.GetDocument(ctx, id, callerID); err != nil {
		return nil, err
	}
	if title != nil {
		trimmed := strings.TrimSpace(*title)
		if trimmed == "" {
			return nil, fmt.Errorf("title is required: %w", domain.ErrInvalidInput)
		}
		title = &trimmed
	}
	doc, err := s.docRepo.Update(ctx, id, title, body)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update document: %w", err)
	}
	return doc, nil
}

func (s *documentService) DeleteDocument(ctx context.Context, id, callerID string) error {
	if _, err := s.GetDocument(ctx, id, callerID); err != nil {
		return err
	}
	if err := s.docRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

// AddTag persists the tag through the store's conditional update and then
// mirrors the accepted change onto doc. The in-memory copy is written only
// after the store confirms the sequence changed, so a lost race or a store
// error leaves doc untouched.
func (s *documentService) AddTag(ctx context.Context, doc *domain.Document, tag string) (bool, error) {
	tag, err := domain.NormalizeTag(tag)
	if err != nil {
		return false, err
	}
	added, err := s.docRepo.AddTag(ctx, doc.ID, tag)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, domain.ErrNotFound
		}
		return false, fmt.Errorf("add tag: %w", err)
	}
	if !added {
		return false, nil
	}
	if !doc.HasTag(tag) {
		doc.Tags = append(doc.Tags, tag)
	}
	s.notifySubscribers(ctx, doc, tag)
	return true, nil
}

// RemoveTag is the counterpart of AddTag: conditional store removal first,
// local mirror second.
func (s *documentService) RemoveTag(ctx context.Context, doc *domain.Document, tag string) (bool, error) {
	tag, err := domain.NormalizeTag(tag)
	if err != nil {
		return false, err
	}
	removed, err := s.docRepo.RemoveTag(ctx, doc.ID, tag)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, domain.ErrNotFound
		}
		return false, fmt.Errorf("remove tag: %w", err)
	}
	if !removed {
		return false, nil
	}
	for i, t := range doc.Tags {
		if t == tag {
			doc.Tags = append(doc.Tags[:i], doc.Tags[i+1:]...)
			break
		}
	}
	return true, nil
}

// notifySubscribers emails everyone subscribed to tag. Notification is
// best-effort: the tag mutation already committed, so failures are logged and
// never surfaced to the caller.
func (s *documentService) notifySubscribers(ctx context.Context, doc *domain.Document, tag string) {
	if s.subRepo == nil || s.emailService == nil {
		return
	}
	emails, err := s.subRepo.ListEmailsByTag(ctx, tag)
	if err != nil {
		log.Printf("[TAGS] Failed to list subscribers for %q: %v", tag, err)
		return
	}
	for _, email := range emails {
		data := &domain.TagAddedEmailData{
			Email:         email,
			Tag:           tag,
			DocumentID:    doc.ID,
			DocumentTitle: doc.Title,
		}
		if err := s.emailService.SendTagAdded(ctx, data); err != nil {
			log.Printf("[TAGS] Failed to notify %s about tag %q: %v", email, tag, err)
		}
	}
}
