package service

import (
	"time"

	"matchsync-server/internal/domain"
	"matchsync-server/internal/repository"

	"github.com/google/uuid"
)

type DocumentService struct {
	repo repository.DocumentRepository
}

func NewDocumentService(repo repository.DocumentRepository) *DocumentService {
	return &DocumentService{repo: repo}
}

func (s *DocumentService) Create(userID string, req *domain.CreateDocumentRequest) (*domain.DocumentResponse, error) {
	now := time.Now()
	doc := &domain.Document{
		ID:        uuid.New().String(),
		OwnerID:   userID,
		Name:      req.Name,
		Role:      req.Role,
		PageCount: req.PageCount,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(doc); err != nil {
		return nil, err
	}

	return docResponse(doc), nil
}

func (s *DocumentService) List(userID string) ([]*domain.DocumentResponse, error) {
	docs, err := s.repo.ListByOwner(userID)
	if err != nil {
		return nil, err
	}

	var responses []*domain.DocumentResponse
	for _, d := range docs {
		responses = append(responses, docResponse(d))
	}
	return responses, nil
}

func (s *DocumentService) GetByID(userID, documentID string) (*domain.DocumentResponse, error) {
	doc, err := s.repo.Get(documentID)
	if err != nil {
		return nil, err
	}

	if doc.OwnerID != userID {
		return nil, ErrUnauthorized
	}
	return docResponse(doc), nil
}

func (s *DocumentService) Update(userID, documentID string, req *domain.UpdateDocumentRequest) (*domain.DocumentResponse, error) {
	doc, err := s.repo.Get(documentID)
	if err != nil {
		return nil, err
	}

	if doc.OwnerID != userID {
		return nil, ErrUnauthorized
	}

	if req.Name != nil {
		doc.Name = *req.Name
	}
	if req.PageCount != nil {
		doc.PageCount = *req.PageCount
	}
	doc.UpdatedAt = time.Now()

	if err := s.repo.Update(doc); err != nil {
		return nil, err
	}
	return docResponse(doc), nil
}

func (s *DocumentService) Delete(userID, documentID string) error {
	doc, err := s.repo.Get(documentID)
	if err != nil {
		return err
	}

	if doc.OwnerID != userID {
		return ErrUnauthorized
	}
	return s.repo.Delete(documentID)
}

func docResponse(d *domain.Document) *domain.DocumentResponse {
	return &domain.DocumentResponse{
		ID:        d.ID,
		Name:      d.Name,
		Role:      d.Role,
		PageCount: d.PageCount,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}
