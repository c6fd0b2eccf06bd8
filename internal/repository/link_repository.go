package repository

import (
	"context"
	"errors"
	"fmt"

	"matchsync-server/internal/domain"

	"github.com/go-kivik/kivik/v4"
)

var ErrLinkNotFound = errors.New("link not found")

// LinkRepository keys links by (session, problem group): CouchDB rejects a
// second doc with the same id, which is exactly the one-link-per-problem
// invariant, so upserts go through fetch-then-put.
type LinkRepository interface {
	Upsert(sessionID string, link *domain.Link) error
	GetByProblem(sessionID, problemGroupID string) (*domain.Link, error)
	FindBySolution(sessionID, solutionGroupID string) (*domain.Link, error)
	ListBySession(sessionID string) ([]*domain.Link, error)
	Delete(sessionID, problemGroupID string) error
}

type linkRepository struct {
	db *kivik.DB
}

type linkDoc struct {
	ID  string `json:"_id"`
	Rev string `json:"_rev,omitempty"`
	linkFields
}

type linkFields struct {
	DocType            string `json:"doc_type"`
	SessionID          string `json:"session_id"`
	ProblemGroupID     string `json:"problem_group_id"`
	SolutionGroupID    string `json:"solution_group_id"`
	SolutionDocumentID string `json:"solution_document_id"`
	SolutionPageIndex  int    `json:"solution_page_index"`
	LinkedAt           string `json:"linked_at"`
}

func NewLinkRepository(client *kivik.Client, dbName string) LinkRepository {
	return &linkRepository{db: client.DB(dbName)}
}

func linkDocID(sessionID, problemGroupID string) string {
	return fmt.Sprintf("link:%s:%s", sessionID, problemGroupID)
}

func (r *linkRepository) Upsert(sessionID string, link *domain.Link) error {
	id := linkDocID(sessionID, link.ProblemGroupID)

	d := linkDoc{
		ID: id,
		linkFields: linkFields{
			DocType:            "link",
			SessionID:          sessionID,
			ProblemGroupID:     link.ProblemGroupID,
			SolutionGroupID:    link.SolutionGroupID,
			SolutionDocumentID: link.SolutionDocumentID,
			SolutionPageIndex:  link.SolutionPageIndex,
			LinkedAt:           formatTime(link.LinkedAt),
		},
	}

	row := r.db.Get(context.Background(), id)
	var existing linkDoc
	if err := row.ScanDoc(&existing); err == nil {
		d.Rev = existing.Rev
	}

	if _, err := r.db.Put(context.Background(), id, d); err != nil {
		return fmt.Errorf("failed to upsert link: %w", err)
	}
	return nil
}

func (r *linkRepository) GetByProblem(sessionID, problemGroupID string) (*domain.Link, error) {
	row := r.db.Get(context.Background(), linkDocID(sessionID, problemGroupID))

	var d linkDoc
	if err := row.ScanDoc(&d); err != nil {
		if kivik.HTTPStatus(err) == 404 {
			return nil, ErrLinkNotFound
		}
		return nil, fmt.Errorf("failed to get link: %w", err)
	}
	return docToLink(&d), nil
}

func (r *linkRepository) FindBySolution(sessionID, solutionGroupID string) (*domain.Link, error) {
	query := map[string]interface{}{
		"selector": map[string]interface{}{
			"doc_type":          "link",
			"session_id":        sessionID,
			"solution_group_id": solutionGroupID,
		},
		"limit": 1,
	}

	rows := r.db.Find(context.Background(), query)
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to query link by solution: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, ErrLinkNotFound
	}

	var d linkDoc
	if err := rows.ScanDoc(&d); err != nil {
		return nil, fmt.Errorf("failed to scan link: %w", err)
	}
	return docToLink(&d), nil
}

func (r *linkRepository) ListBySession(sessionID string) ([]*domain.Link, error) {
	query := map[string]interface{}{
		"selector": map[string]interface{}{
			"doc_type":   "link",
			"session_id": sessionID,
		},
	}

	rows := r.db.Find(context.Background(), query)
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to query links: %w", err)
	}
	defer rows.Close()

	var links []*domain.Link
	for rows.Next() {
		var d linkDoc
		if err := rows.ScanDoc(&d); err != nil {
			return nil, fmt.Errorf("failed to scan link: %w", err)
		}
		links = append(links, docToLink(&d))
	}
	return links, nil
}

// Delete is idempotent: removing a link that does not exist is a no-op.
func (r *linkRepository) Delete(sessionID, problemGroupID string) error {
	id := linkDocID(sessionID, problemGroupID)

	row := r.db.Get(context.Background(), id)
	var d linkDoc
	if err := row.ScanDoc(&d); err != nil {
		if kivik.HTTPStatus(err) == 404 {
			return nil
		}
		return fmt.Errorf("failed to get link for delete: %w", err)
	}

	if _, err := r.db.Delete(context.Background(), id, d.Rev); err != nil {
		return fmt.Errorf("failed to delete link: %w", err)
	}
	return nil
}

func docToLink(d *linkDoc) *domain.Link {
	linkedAt, _ := parseTime(d.LinkedAt)
	return &domain.Link{
		ProblemGroupID:     d.ProblemGroupID,
		SolutionGroupID:    d.SolutionGroupID,
		SolutionDocumentID: d.SolutionDocumentID,
		SolutionPageIndex:  d.SolutionPageIndex,
		LinkedAt:           linkedAt,
	}
}
