package suggest

import (
	"matchsync-server/internal/domain"
	"matchsync-server/internal/store"
)

// Engine proposes the problem a freshly committed solution group most likely
// answers. The rule is FIFO: the oldest unlinked problem by CreatedAt, with
// list order breaking ties. This assumes both documents are labeled front to
// back; it is an ordering heuristic, not content matching.
type Engine struct {
	store *store.Store
}

func NewEngine(s *store.Store) *Engine {
	return &Engine{store: s}
}

// Suggest builds the proposal for a newly committed solution group. The
// second return is false when no unlinked problem exists, a distinct
// "nothing to match" signal, not an empty suggestion.
func (e *Engine) Suggest(solutionGroupID, solutionName, solutionDocumentID string, solutionPageIndex int) (*domain.MatchSuggestion, bool) {
	unlinked := e.store.UnlinkedProblems()
	if len(unlinked) == 0 {
		return nil, false
	}

	best := unlinked[0]
	for _, p := range unlinked[1:] {
		if p.CreatedAt.Before(best.CreatedAt) {
			best = p
		}
	}

	return &domain.MatchSuggestion{
		SolutionGroupID:    solutionGroupID,
		SolutionName:       solutionName,
		SolutionDocumentID: solutionDocumentID,
		SolutionPageIndex:  solutionPageIndex,
		SuggestedProblem:   best,
		Visible:            true,
	}, true
}

// Accept links the suggested problem to the solution group and advances the
// cursor to the next unlinked problem so the operator can keep going.
func (e *Engine) Accept(sug *domain.MatchSuggestion) {
	if sug == nil || sug.SuggestedProblem == nil {
		return
	}
	e.store.CreateLink(sug.SuggestedProblem.ID, sug.SolutionGroupID, sug.SolutionDocumentID, sug.SolutionPageIndex)
	e.store.SelectProblem(sug.SuggestedProblem.ID)
	e.store.SelectNextUnlinked()
	sug.Visible = false
}

// AcceptManual links an operator-picked problem instead of the suggested one.
func (e *Engine) AcceptManual(sug *domain.MatchSuggestion, problemGroupID string) {
	if sug == nil {
		return
	}
	e.store.CreateLink(problemGroupID, sug.SolutionGroupID, sug.SolutionDocumentID, sug.SolutionPageIndex)
	e.store.SelectProblem(problemGroupID)
	e.store.SelectNextUnlinked()
	sug.Visible = false
}

// Dismiss discards the suggestion; the solution group stays unlinked.
func (e *Engine) Dismiss(sug *domain.MatchSuggestion) {
	if sug == nil {
		return
	}
	sug.Visible = false
}
