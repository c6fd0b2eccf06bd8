package domain

import "time"

type SessionStatus string

const (
	SessionInProgress SessionStatus = "in_progress"
	SessionCompleted  SessionStatus = "completed"
)

// MatchingSession pairs one problem document with one solution document.
// ProblemIDs snapshots which problem groups the session has imported; the gap
// between that snapshot and the document's groups is what "pending" measures.
type MatchingSession struct {
	ID                 string        `json:"id"`
	OwnerID            string        `json:"owner_id"`
	Name               string        `json:"name"`
	ProblemDocumentID  string        `json:"problem_document_id"`
	SolutionDocumentID string        `json:"solution_document_id"`
	ProblemIDs         []string      `json:"problem_ids"`
	Status             SessionStatus `json:"status"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
}

type CreateSessionRequest struct {
	Name               string `json:"name" validate:"required,min=1,max=200"`
	ProblemDocumentID  string `json:"problem_document_id" validate:"required"`
	SolutionDocumentID string `json:"solution_document_id" validate:"required"`
}

// SyncStatus classifies how local optimistic state relates to the server's
// authoritative state. The server only ever reports synced, pending or
// conflict; the remaining values are client-side observations.
type SyncStatus string

const (
	SyncUnknown  SyncStatus = "unknown"
	SyncChecking SyncStatus = "checking"
	SyncSynced   SyncStatus = "synced"
	SyncPending  SyncStatus = "pending"
	SyncConflict SyncStatus = "conflict"
	SyncError    SyncStatus = "error"
)

// SyncSnapshot is the value returned by a status query. Replaced wholesale,
// never mutated.
type SyncSnapshot struct {
	Status       SyncStatus `json:"status"`
	GroupsCount  int        `json:"groups_count"`
	SessionCount int        `json:"session_count"`
	LinksCount   int        `json:"links_count"`
}

// SyncReport summarizes one full sync run.
type SyncReport struct {
	ProblemsAdded int `json:"problems_added"`
	LinksSynced   int `json:"links_synced"`
}

type ParentFlagReport struct {
	Updated int `json:"updated"`
}
