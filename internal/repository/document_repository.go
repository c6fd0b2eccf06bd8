package repository

import (
	"context"
	"errors"
	"fmt"

	"matchsync-server/internal/domain"

	"github.com/go-kivik/kivik/v4"
)

var ErrDocumentNotFound = errors.New("document not found")

type DocumentRepository interface {
	Create(doc *domain.Document) error
	Get(id string) (*domain.Document, error)
	ListByOwner(ownerID string) ([]*domain.Document, error)
	Update(doc *domain.Document) error
	Delete(id string) error
}

type documentRepository struct {
	db *kivik.DB
}

type documentDoc struct {
	ID  string `json:"_id"`
	Rev string `json:"_rev,omitempty"`
	documentFields
}

type documentFields struct {
	DocType   string              `json:"doc_type"`
	OwnerID   string              `json:"owner_id"`
	Name      string              `json:"name"`
	Role      domain.DocumentRole `json:"role"`
	PageCount int                 `json:"page_count"`
	CreatedAt string              `json:"created_at"`
	UpdatedAt string              `json:"updated_at"`
}

func NewDocumentRepository(client *kivik.Client, dbName string) DocumentRepository {
	return &documentRepository{db: client.DB(dbName)}
}

func docID(id string) string { return fmt.Sprintf("document:%s", id) }

func (r *documentRepository) Create(doc *domain.Document) error {
	d := documentDoc{
		ID: docID(doc.ID),
		documentFields: documentFields{
			DocType:   "document",
			OwnerID:   doc.OwnerID,
			Name:      doc.Name,
			Role:      doc.Role,
			PageCount: doc.PageCount,
			CreatedAt: formatTime(doc.CreatedAt),
			UpdatedAt: formatTime(doc.UpdatedAt),
		},
	}

	if _, err := r.db.Put(context.Background(), d.ID, d); err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}
	return nil
}

func (r *documentRepository) Get(id string) (*domain.Document, error) {
	row := r.db.Get(context.Background(), docID(id))

	var d documentDoc
	if err := row.ScanDoc(&d); err != nil {
		if kivik.HTTPStatus(err) == 404 {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return docToDocument(id, &d)
}

func (r *documentRepository) ListByOwner(ownerID string) ([]*domain.Document, error) {
	query := map[string]interface{}{
		"selector": map[string]interface{}{
			"doc_type": "document",
			"owner_id": ownerID,
		},
	}

	rows := r.db.Find(context.Background(), query)
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	var docs []*domain.Document
	for rows.Next() {
		var d documentDoc
		if err := rows.ScanDoc(&d); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		doc, err := docToDocument(trimKind(d.ID, "document:"), &d)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (r *documentRepository) Update(doc *domain.Document) error {
	row := r.db.Get(context.Background(), docID(doc.ID))
	var existing documentDoc
	if err := row.ScanDoc(&existing); err != nil {
		if kivik.HTTPStatus(err) == 404 {
			return ErrDocumentNotFound
		}
		return fmt.Errorf("failed to get document for update: %w", err)
	}

	existing.Name = doc.Name
	existing.PageCount = doc.PageCount
	existing.UpdatedAt = formatTime(doc.UpdatedAt)

	if _, err := r.db.Put(context.Background(), existing.ID, existing); err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}
	return nil
}

func (r *documentRepository) Delete(id string) error {
	row := r.db.Get(context.Background(), docID(id))
	var d documentDoc
	if err := row.ScanDoc(&d); err != nil {
		if kivik.HTTPStatus(err) == 404 {
			return ErrDocumentNotFound
		}
		return fmt.Errorf("failed to get document for delete: %w", err)
	}

	if _, err := r.db.Delete(context.Background(), d.ID, d.Rev); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}

func docToDocument(id string, d *documentDoc) (*domain.Document, error) {
	createdAt, err := parseTime(d.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	updatedAt, err := parseTime(d.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return &domain.Document{
		ID:        id,
		OwnerID:   d.OwnerID,
		Name:      d.Name,
		Role:      d.Role,
		PageCount: d.PageCount,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}
