package repository

import (
	"context"
	"errors"
	"fmt"

	"matchsync-server/internal/domain"

	"github.com/go-kivik/kivik/v4"
)

var ErrGroupNotFound = errors.New("group not found")

type GroupRepository interface {
	Create(group *domain.GroupRef) error
	Get(id string) (*domain.GroupRef, error)
	ListByDocument(documentID string) ([]*domain.GroupRef, error)
	Update(group *domain.GroupRef) error
	Delete(id string) error
}

type groupRepository struct {
	db *kivik.DB
}

type groupDoc struct {
	ID  string `json:"_id"`
	Rev string `json:"_rev,omitempty"`
	groupFields
}

type groupFields struct {
	DocType       string   `json:"doc_type"`
	DocumentID    string   `json:"document_id"`
	PageIndex     int      `json:"page_index"`
	ProblemNumber string   `json:"problem_number"`
	DisplayName   string   `json:"display_name"`
	BlockIDs      []string `json:"block_ids"`
	BookName      string   `json:"book_name,omitempty"`
	Course        string   `json:"course,omitempty"`
	Page          int      `json:"page,omitempty"`
	IsParent      bool     `json:"is_parent"`
	CreatedAt     string   `json:"created_at"`
}

func NewGroupRepository(client *kivik.Client, dbName string) GroupRepository {
	return &groupRepository{db: client.DB(dbName)}
}

func groupDocID(id string) string { return fmt.Sprintf("group:%s", id) }

func (r *groupRepository) Create(group *domain.GroupRef) error {
	d := groupDoc{
		ID: groupDocID(group.ID),
		groupFields: groupFields{
			DocType:       "group",
			DocumentID:    group.DocumentID,
			PageIndex:     group.PageIndex,
			ProblemNumber: group.ProblemNumber,
			DisplayName:   group.DisplayName,
			BlockIDs:      group.BlockIDs,
			BookName:      group.BookName,
			Course:        group.Course,
			Page:          group.Page,
			IsParent:      group.IsParent,
			CreatedAt:     formatTime(group.CreatedAt),
		},
	}

	if _, err := r.db.Put(context.Background(), d.ID, d); err != nil {
		return fmt.Errorf("failed to create group: %w", err)
	}
	return nil
}

func (r *groupRepository) Get(id string) (*domain.GroupRef, error) {
	row := r.db.Get(context.Background(), groupDocID(id))

	var d groupDoc
	if err := row.ScanDoc(&d); err != nil {
		if kivik.HTTPStatus(err) == 404 {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	return docToGroup(id, &d)
}

func (r *groupRepository) ListByDocument(documentID string) ([]*domain.GroupRef, error) {
	query := map[string]interface{}{
		"selector": map[string]interface{}{
			"doc_type":    "group",
			"document_id": documentID,
		},
	}

	rows := r.db.Find(context.Background(), query)
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to query groups: %w", err)
	}
	defer rows.Close()

	var groups []*domain.GroupRef
	for rows.Next() {
		var d groupDoc
		if err := rows.ScanDoc(&d); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		g, err := docToGroup(trimKind(d.ID, "group:"), &d)
		if err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, nil
}

func (r *groupRepository) Update(group *domain.GroupRef) error {
	row := r.db.Get(context.Background(), groupDocID(group.ID))
	var existing groupDoc
	if err := row.ScanDoc(&existing); err != nil {
		if kivik.HTTPStatus(err) == 404 {
			return ErrGroupNotFound
		}
		return fmt.Errorf("failed to get group for update: %w", err)
	}

	existing.ProblemNumber = group.ProblemNumber
	existing.DisplayName = group.DisplayName
	existing.BookName = group.BookName
	existing.Course = group.Course
	existing.Page = group.Page
	existing.IsParent = group.IsParent

	if _, err := r.db.Put(context.Background(), existing.ID, existing); err != nil {
		return fmt.Errorf("failed to update group: %w", err)
	}
	return nil
}

func (r *groupRepository) Delete(id string) error {
	row := r.db.Get(context.Background(), groupDocID(id))
	var d groupDoc
	if err := row.ScanDoc(&d); err != nil {
		if kivik.HTTPStatus(err) == 404 {
			return ErrGroupNotFound
		}
		return fmt.Errorf("failed to get group for delete: %w", err)
	}

	if _, err := r.db.Delete(context.Background(), d.ID, d.Rev); err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	return nil
}

func docToGroup(id string, d *groupDoc) (*domain.GroupRef, error) {
	createdAt, err := parseTime(d.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}

	return &domain.GroupRef{
		ID:            id,
		DocumentID:    d.DocumentID,
		PageIndex:     d.PageIndex,
		ProblemNumber: d.ProblemNumber,
		DisplayName:   d.DisplayName,
		BlockIDs:      d.BlockIDs,
		BookName:      d.BookName,
		Course:        d.Course,
		Page:          d.Page,
		IsParent:      d.IsParent,
		CreatedAt:     createdAt,
	}, nil
}
