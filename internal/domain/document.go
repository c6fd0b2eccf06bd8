package domain

import "time"

type DocumentRole string

const (
	DocumentRoleProblem  DocumentRole = "problem"
	DocumentRoleSolution DocumentRole = "solution"
)

// Document is registry metadata only. Page images, blocks and OCR output
// live in the labeling pipeline and never reach this server.
type Document struct {
	ID        string       `json:"id"`
	OwnerID   string       `json:"owner_id"`
	Name      string       `json:"name"`
	Role      DocumentRole `json:"role"`
	PageCount int          `json:"page_count"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

type CreateDocumentRequest struct {
	Name      string       `json:"name" validate:"required,min=1,max=200"`
	Role      DocumentRole `json:"role" validate:"required,oneof=problem solution"`
	PageCount int          `json:"page_count" validate:"gte=0"`
}

type UpdateDocumentRequest struct {
	Name      *string `json:"name"`
	PageCount *int    `json:"page_count"`
}

type DocumentResponse struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	Role       DocumentRole `json:"role"`
	PageCount  int          `json:"page_count"`
	GroupCount int          `json:"group_count,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
}
