package domain

// MatchSuggestion is the ephemeral proposal shown after a solution group is
// committed. Cleared on accept, manual pick or dismiss; never persisted.
type MatchSuggestion struct {
	SolutionGroupID    string
	SolutionName       string
	SolutionDocumentID string
	SolutionPageIndex  int
	SuggestedProblem   *GroupRef
	Visible            bool
}
