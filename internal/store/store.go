package store

import (
	"sync"
	"time"

	"matchsync-server/internal/domain"
)

// Store is the authoritative in-process container for one matching session:
// the problem list in insertion order, the confirmed links and the selection
// cursor. It is constructed per session and passed by reference; nothing here
// is package-global. Mutations are local-only and never fail; remote
// persistence is the resolver's problem.
type Store struct {
	mu sync.RWMutex

	problemDocID  string
	solutionDocID string
	problemName   string
	solutionName  string

	problems []*domain.GroupRef
	index    map[string]int // group id -> position in problems
	links    map[string]*domain.Link
	selected string // selected problem group id, "" when none
}

type Progress struct {
	Linked  int
	Total   int
	Percent int
}

func New() *Store {
	return &Store{
		index: make(map[string]int),
		links: make(map[string]*domain.Link),
	}
}

// InitSession replaces all state with a fresh session, unless the incoming
// document pair matches the one already loaded. The same-pair call is a no-op
// so a re-render or navigation cannot wipe in-memory problems and links.
func (s *Store) InitSession(problemDocID, solutionDocID, problemName, solutionName string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.problemDocID == problemDocID && s.solutionDocID == solutionDocID {
		return
	}

	s.problemDocID = problemDocID
	s.solutionDocID = solutionDocID
	s.problemName = problemName
	s.solutionName = solutionName
	s.problems = nil
	s.index = make(map[string]int)
	s.links = make(map[string]*domain.Link)
	s.selected = ""
}

func (s *Store) DocumentPair() (problemDocID, solutionDocID string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.problemDocID, s.solutionDocID
}

// AddProblem appends a problem group. Submitting an id that is already
// present is a caller error; the duplicate is dropped rather than applied.
func (s *Store) AddProblem(p *domain.GroupRef) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.index[p.ID]; exists {
		return
	}
	s.index[p.ID] = len(s.problems)
	s.problems = append(s.problems, p)
}

// RemoveProblem drops the problem, any link referencing it and, if it was
// selected, the selection cursor.
func (s *Store) RemoveProblem(groupID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos, exists := s.index[groupID]
	if !exists {
		return
	}

	s.problems = append(s.problems[:pos], s.problems[pos+1:]...)
	delete(s.index, groupID)
	for i := pos; i < len(s.problems); i++ {
		s.index[s.problems[i].ID] = i
	}

	delete(s.links, groupID)
	if s.selected == groupID {
		s.selected = ""
	}
}

// UpdateProblem merges the non-nil fields. Any change to the book, course or
// page fields recomputes the display name.
func (s *Store) UpdateProblem(groupID string, upd domain.UpdateGroupRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos, exists := s.index[groupID]
	if !exists {
		return
	}
	p := s.problems[pos]

	if upd.ProblemNumber != nil {
		p.ProblemNumber = *upd.ProblemNumber
	}
	if upd.BookName != nil {
		p.BookName = *upd.BookName
	}
	if upd.Course != nil {
		p.Course = *upd.Course
	}
	if upd.Page != nil {
		p.Page = *upd.Page
	}
	p.DisplayName = domain.BuildDisplayName(p.BookName, p.Course, p.Page, p.ProblemNumber)
}

// SelectProblem sets the cursor without validating the id; callers filter
// against the current problem list themselves.
func (s *Store) SelectProblem(groupID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = groupID
}

// SelectNextUnlinked moves the cursor to the next unlinked problem in
// insertion order, wrapping at the end. With no unlinked problems the cursor
// is cleared.
func (s *Store) SelectNextUnlinked() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = s.stepUnlinked(1)
}

// SelectPrevUnlinked is SelectNextUnlinked in the other direction.
func (s *Store) SelectPrevUnlinked() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = s.stepUnlinked(-1)
}

func (s *Store) stepUnlinked(dir int) string {
	unlinked := make([]int, 0, len(s.problems))
	for i, p := range s.problems {
		if _, linked := s.links[p.ID]; !linked {
			unlinked = append(unlinked, i)
		}
	}
	if len(unlinked) == 0 {
		return ""
	}

	// Position of the current selection within the unlinked subset. A linked
	// selection keeps its list position (selPos) so stepping resumes from
	// there instead of snapping back to the first unlinked problem.
	cur, selPos := -1, -1
	if s.selected != "" {
		if pos, ok := s.index[s.selected]; ok {
			selPos = pos
			for u, i := range unlinked {
				if i == pos {
					cur = u
					break
				}
			}
		}
	}

	var next int
	switch {
	case cur >= 0:
		next = (cur + dir + len(unlinked)) % len(unlinked)
	case selPos >= 0 && dir > 0:
		next = 0
		for u, i := range unlinked {
			if i > selPos {
				next = u
				break
			}
		}
	case selPos >= 0:
		next = len(unlinked) - 1
		for u := len(unlinked) - 1; u >= 0; u-- {
			if unlinked[u] < selPos {
				next = u
				break
			}
		}
	case dir > 0:
		next = 0
	default:
		next = len(unlinked) - 1
	}
	return s.problems[unlinked[next]].ID
}

// CreateLink upserts a link, replacing any prior link for the same problem
// group and any prior link claiming the same solution group. Both directions
// are last-write-wins so the local store can never hold a pairing the server
// would reduce differently.
func (s *Store) CreateLink(problemGroupID, solutionGroupID, solutionDocumentID string, solutionPageIndex int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for pid, l := range s.links {
		if l.SolutionGroupID == solutionGroupID && pid != problemGroupID {
			delete(s.links, pid)
		}
	}
	s.links[problemGroupID] = &domain.Link{
		ProblemGroupID:     problemGroupID,
		SolutionGroupID:    solutionGroupID,
		SolutionDocumentID: solutionDocumentID,
		SolutionPageIndex:  solutionPageIndex,
		LinkedAt:           time.Now(),
	}
}

// RemoveLink is idempotent; unlinking an unlinked problem is a no-op.
func (s *Store) RemoveLink(problemGroupID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.links, problemGroupID)
}

func (s *Store) IsLinked(groupID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.links[groupID]
	return ok
}

func (s *Store) LinkedSolutionID(groupID string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if l, ok := s.links[groupID]; ok {
		return l.SolutionGroupID
	}
	return ""
}

func (s *Store) SelectedID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected
}

// Problems returns the problem list in insertion order.
func (s *Store) Problems() []*domain.GroupRef {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.GroupRef, len(s.problems))
	copy(out, s.problems)
	return out
}

// UnlinkedProblems returns the unlinked subset in insertion order.
func (s *Store) UnlinkedProblems() []*domain.GroupRef {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domain.GroupRef
	for _, p := range s.problems {
		if _, linked := s.links[p.ID]; !linked {
			out = append(out, p)
		}
	}
	return out
}

func (s *Store) Links() []*domain.Link {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.Link, 0, len(s.links))
	for _, l := range s.links {
		out = append(out, l)
	}
	return out
}

// Counts reports how many problems and links are held locally; the resolver
// diffs these against the server's snapshot.
func (s *Store) Counts() (problems, links int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.problems), len(s.links)
}

func (s *Store) GetProgress() Progress {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p := Progress{Linked: len(s.links), Total: len(s.problems)}
	if p.Total > 0 {
		p.Percent = int(float64(p.Linked)/float64(p.Total)*100 + 0.5)
	}
	return p
}
