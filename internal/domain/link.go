package domain

import "time"

// Link is a confirmed problem↔solution association. At most one link exists
// per problem group and per solution group; creating a newer link replaces
// the older one on both sides (last write wins).
type Link struct {
	ProblemGroupID     string    `json:"problem_group_id"`
	SolutionGroupID    string    `json:"solution_group_id"`
	SolutionDocumentID string    `json:"solution_document_id"`
	SolutionPageIndex  int       `json:"solution_page_index"`
	LinkedAt           time.Time `json:"linked_at"`
}

type CreateLinkRequest struct {
	ProblemGroupID     string `json:"problem_group_id" validate:"required"`
	SolutionGroupID    string `json:"solution_group_id" validate:"required"`
	SolutionDocumentID string `json:"solution_document_id" validate:"required"`
	SolutionPageIndex  int    `json:"solution_page_index" validate:"gte=0"`
}
