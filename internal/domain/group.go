package domain

import (
	"fmt"
	"strings"
	"time"
)

// GroupRef is one labeled group of content blocks: a problem in the problem
// document or a solution in the solution document. The ID is unique within a
// session and never changes; the descriptive fields are editable.
type GroupRef struct {
	ID            string    `json:"id"`
	DocumentID    string    `json:"document_id"`
	PageIndex     int       `json:"page_index"`
	ProblemNumber string    `json:"problem_number"`
	DisplayName   string    `json:"display_name"`
	BlockIDs      []string  `json:"block_ids"`
	BookName      string    `json:"book_name,omitempty"`
	Course        string    `json:"course,omitempty"`
	Page          int       `json:"page,omitempty"`
	IsParent      bool      `json:"is_parent"`
	CreatedAt     time.Time `json:"created_at"`
}

// BuildDisplayName derives the human label "{book}_{course}_p{page}_{number}번",
// omitting components that are not set. With no descriptive fields the label
// degrades to "{number}번".
func BuildDisplayName(bookName, course string, page int, problemNumber string) string {
	parts := make([]string, 0, 4)
	if bookName != "" {
		parts = append(parts, bookName)
	}
	if course != "" {
		parts = append(parts, course)
	}
	if page > 0 {
		parts = append(parts, fmt.Sprintf("p%d", page))
	}
	parts = append(parts, problemNumber+"번")
	return strings.Join(parts, "_")
}

type CreateGroupRequest struct {
	PageIndex     int      `json:"page_index" validate:"gte=0"`
	ProblemNumber string   `json:"problem_number" validate:"required,min=1,max=30"`
	BlockIDs      []string `json:"block_ids"`
	BookName      string   `json:"book_name"`
	Course        string   `json:"course"`
	Page          int      `json:"page" validate:"gte=0"`
}

// UpdateGroupRequest carries a partial edit; nil fields are left untouched.
type UpdateGroupRequest struct {
	ProblemNumber *string `json:"problem_number"`
	BookName      *string `json:"book_name"`
	Course        *string `json:"course"`
	Page          *int    `json:"page"`
}
