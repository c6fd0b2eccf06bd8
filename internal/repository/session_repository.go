package repository

import (
	"context"
	"errors"
	"fmt"

	"matchsync-server/internal/domain"

	"github.com/go-kivik/kivik/v4"
)

var ErrSessionNotFound = errors.New("session not found")

type SessionRepository interface {
	Create(sess *domain.MatchingSession) error
	Get(id string) (*domain.MatchingSession, error)
	ListByOwner(ownerID string) ([]*domain.MatchingSession, error)
	ListByDocument(documentID string) ([]*domain.MatchingSession, error)
	Update(sess *domain.MatchingSession) error
}

type sessionRepository struct {
	db *kivik.DB
}

type sessionDoc struct {
	ID  string `json:"_id"`
	Rev string `json:"_rev,omitempty"`
	sessionFields
}

type sessionFields struct {
	DocType            string               `json:"doc_type"`
	OwnerID            string               `json:"owner_id"`
	Name               string               `json:"name"`
	ProblemDocumentID  string               `json:"problem_document_id"`
	SolutionDocumentID string               `json:"solution_document_id"`
	ProblemIDs         []string             `json:"problem_ids"`
	Status             domain.SessionStatus `json:"status"`
	CreatedAt          string               `json:"created_at"`
	UpdatedAt          string               `json:"updated_at"`
}

func NewSessionRepository(client *kivik.Client, dbName string) SessionRepository {
	return &sessionRepository{db: client.DB(dbName)}
}

func sessionDocID(id string) string { return fmt.Sprintf("session:%s", id) }

func (r *sessionRepository) Create(sess *domain.MatchingSession) error {
	d := sessionDoc{
		ID: sessionDocID(sess.ID),
		sessionFields: sessionFields{
			DocType:            "session",
			OwnerID:            sess.OwnerID,
			Name:               sess.Name,
			ProblemDocumentID:  sess.ProblemDocumentID,
			SolutionDocumentID: sess.SolutionDocumentID,
			ProblemIDs:         sess.ProblemIDs,
			Status:             sess.Status,
			CreatedAt:          formatTime(sess.CreatedAt),
			UpdatedAt:          formatTime(sess.UpdatedAt),
		},
	}

	if _, err := r.db.Put(context.Background(), d.ID, d); err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (r *sessionRepository) Get(id string) (*domain.MatchingSession, error) {
	row := r.db.Get(context.Background(), sessionDocID(id))

	var d sessionDoc
	if err := row.ScanDoc(&d); err != nil {
		if kivik.HTTPStatus(err) == 404 {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return docToSession(id, &d)
}

func (r *sessionRepository) ListByOwner(ownerID string) ([]*domain.MatchingSession, error) {
	query := map[string]interface{}{
		"selector": map[string]interface{}{
			"doc_type": "session",
			"owner_id": ownerID,
		},
	}

	rows := r.db.Find(context.Background(), query)
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*domain.MatchingSession
	for rows.Next() {
		var d sessionDoc
		if err := rows.ScanDoc(&d); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		s, err := docToSession(trimKind(d.ID, "session:"), &d)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, nil
}

// ListByDocument finds sessions that use the document on either side.
func (r *sessionRepository) ListByDocument(documentID string) ([]*domain.MatchingSession, error) {
	query := map[string]interface{}{
		"selector": map[string]interface{}{
			"doc_type": "session",
			"$or": []map[string]interface{}{
				{"problem_document_id": documentID},
				{"solution_document_id": documentID},
			},
		},
	}

	rows := r.db.Find(context.Background(), query)
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to query sessions by document: %w", err)
	}
	defer rows.Close()

	var sessions []*domain.MatchingSession
	for rows.Next() {
		var d sessionDoc
		if err := rows.ScanDoc(&d); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		s, err := docToSession(trimKind(d.ID, "session:"), &d)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, nil
}

func (r *sessionRepository) Update(sess *domain.MatchingSession) error {
	row := r.db.Get(context.Background(), sessionDocID(sess.ID))
	var existing sessionDoc
	if err := row.ScanDoc(&existing); err != nil {
		if kivik.HTTPStatus(err) == 404 {
			return ErrSessionNotFound
		}
		return fmt.Errorf("failed to get session for update: %w", err)
	}

	existing.Name = sess.Name
	existing.ProblemIDs = sess.ProblemIDs
	existing.Status = sess.Status
	existing.UpdatedAt = formatTime(sess.UpdatedAt)

	if _, err := r.db.Put(context.Background(), existing.ID, existing); err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	return nil
}

func docToSession(id string, d *sessionDoc) (*domain.MatchingSession, error) {
	createdAt, err := parseTime(d.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	updatedAt, err := parseTime(d.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return &domain.MatchingSession{
		ID:                 id,
		OwnerID:            d.OwnerID,
		Name:               d.Name,
		ProblemDocumentID:  d.ProblemDocumentID,
		SolutionDocumentID: d.SolutionDocumentID,
		ProblemIDs:         d.ProblemIDs,
		Status:             d.Status,
		CreatedAt:          createdAt,
		UpdatedAt:          updatedAt,
	}, nil
}
