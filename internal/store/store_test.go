package store

import (
	"fmt"
	"testing"
	"time"

	"matchsync-server/internal/domain"
)

func problem(id string, createdAt int64) *domain.GroupRef {
	return &domain.GroupRef{
		ID:            id,
		DocumentID:    "doc-p",
		ProblemNumber: id,
		DisplayName:   id + "번",
		CreatedAt:     time.Unix(createdAt, 0),
	}
}

func newSessionStore(ids ...string) *Store {
	s := New()
	s.InitSession("doc-p", "doc-s", "problems.pdf", "solutions.pdf")
	for i, id := range ids {
		s.AddProblem(problem(id, int64(i+1)))
	}
	return s
}

func TestInitSession_SamePairPreservesState(t *testing.T) {
	s := newSessionStore("g1", "g2")
	s.CreateLink("g1", "sol1", "doc-s", 0)

	s.InitSession("doc-p", "doc-s", "problems.pdf", "solutions.pdf")

	if got, _ := s.Counts(); got != 2 {
		t.Errorf("expected 2 problems after same-pair init, got %d", got)
	}
	if !s.IsLinked("g1") {
		t.Error("expected link to survive same-pair init")
	}
}

func TestInitSession_NewPairClearsState(t *testing.T) {
	s := newSessionStore("g1", "g2")
	s.CreateLink("g1", "sol1", "doc-s", 0)

	s.InitSession("doc-p2", "doc-s2", "other.pdf", "other-sol.pdf")

	problems, links := s.Counts()
	if problems != 0 || links != 0 {
		t.Errorf("expected empty store after new-pair init, got %d problems, %d links", problems, links)
	}
}

func TestAddProblem_DuplicateIDDropped(t *testing.T) {
	s := newSessionStore("g1")
	s.AddProblem(problem("g1", 99))

	if got, _ := s.Counts(); got != 1 {
		t.Errorf("expected duplicate add to be dropped, got %d problems", got)
	}
}

func TestRemoveProblem_CascadesLinkAndSelection(t *testing.T) {
	s := newSessionStore("g1", "g2")
	s.CreateLink("g1", "sol1", "doc-s", 0)
	s.SelectProblem("g1")

	s.RemoveProblem("g1")

	if s.IsLinked("g1") {
		t.Error("expected link removed with its problem")
	}
	if s.SelectedID() != "" {
		t.Errorf("expected selection cleared, got %q", s.SelectedID())
	}
	if got, _ := s.Counts(); got != 1 {
		t.Errorf("expected 1 problem, got %d", got)
	}
}

func TestUpdateProblem_RecomputesDisplayName(t *testing.T) {
	s := newSessionStore("g1")
	num := "3"
	s.UpdateProblem("g1", domain.UpdateGroupRequest{ProblemNumber: &num})

	book := "베이직쎈"
	course := "공통수학1"
	page := 10
	s.UpdateProblem("g1", domain.UpdateGroupRequest{BookName: &book, Course: &course, Page: &page})

	got := s.Problems()[0].DisplayName
	if got != "베이직쎈_공통수학1_p10_3번" {
		t.Errorf("display name = %q, want %q", got, "베이직쎈_공통수학1_p10_3번")
	}
}

func TestBuildDisplayName_Fallback(t *testing.T) {
	tests := []struct {
		book, course string
		page         int
		number       string
		want         string
	}{
		{"베이직쎈", "공통수학1", 10, "3", "베이직쎈_공통수학1_p10_3번"},
		{"", "공통수학1", 10, "3", "공통수학1_p10_3번"},
		{"베이직쎈", "", 0, "7", "베이직쎈_7번"},
		{"", "", 0, "12", "12번"},
	}
	for _, tt := range tests {
		if got := domain.BuildDisplayName(tt.book, tt.course, tt.page, tt.number); got != tt.want {
			t.Errorf("BuildDisplayName(%q,%q,%d,%q) = %q, want %q",
				tt.book, tt.course, tt.page, tt.number, got, tt.want)
		}
	}
}

func TestCreateLink_ReplacesPriorProblemLink(t *testing.T) {
	s := newSessionStore("g1")
	s.CreateLink("g1", "sol1", "doc-s", 0)
	s.CreateLink("g1", "sol2", "doc-s", 1)

	if got := s.LinkedSolutionID("g1"); got != "sol2" {
		t.Errorf("expected replacement link to sol2, got %q", got)
	}
	if _, links := s.Counts(); links != 1 {
		t.Errorf("expected exactly 1 link, got %d", links)
	}
}

func TestCreateLink_SolutionSideLastWriteWins(t *testing.T) {
	s := newSessionStore("g1", "g2")
	s.CreateLink("g1", "sol1", "doc-s", 0)
	s.CreateLink("g2", "sol1", "doc-s", 0)

	if s.IsLinked("g1") {
		t.Error("expected g1's link dropped when sol1 was claimed by g2")
	}
	if got := s.LinkedSolutionID("g2"); got != "sol1" {
		t.Errorf("expected g2 linked to sol1, got %q", got)
	}
}

func TestLinkInvariant_OneLinkPerProblem(t *testing.T) {
	s := newSessionStore("g1", "g2", "g3")
	for i := 0; i < 20; i++ {
		s.CreateLink(fmt.Sprintf("g%d", i%3+1), fmt.Sprintf("sol%d", i), "doc-s", i)
	}

	seen := make(map[string]bool)
	for _, l := range s.Links() {
		if seen[l.ProblemGroupID] {
			t.Fatalf("problem %s appears in more than one link", l.ProblemGroupID)
		}
		seen[l.ProblemGroupID] = true
	}
}

func TestRemoveLink_Idempotent(t *testing.T) {
	s := newSessionStore("g1")
	s.CreateLink("g1", "sol1", "doc-s", 0)

	s.RemoveLink("g1")
	first := s.GetProgress()
	s.RemoveLink("g1")
	second := s.GetProgress()

	if first != second {
		t.Errorf("second RemoveLink changed state: %+v vs %+v", first, second)
	}
	if s.IsLinked("g1") {
		t.Error("expected g1 unlinked")
	}
}

func TestGetProgress(t *testing.T) {
	s := New()
	if got := s.GetProgress(); got.Percent != 0 {
		t.Errorf("empty store percent = %d, want 0", got.Percent)
	}

	s = newSessionStore("g1", "g2", "g3")
	prev := s.GetProgress().Percent
	for i, id := range []string{"g1", "g2", "g3"} {
		s.CreateLink(id, fmt.Sprintf("sol%d", i), "doc-s", i)
		cur := s.GetProgress().Percent
		if cur < prev {
			t.Errorf("percent decreased across CreateLink: %d -> %d", prev, cur)
		}
		prev = cur
	}
	if p := s.GetProgress(); p.Percent != 100 || p.Linked != 3 {
		t.Errorf("expected 3/3 = 100%%, got %+v", p)
	}

	for _, id := range []string{"g1", "g2"} {
		s.RemoveLink(id)
		cur := s.GetProgress().Percent
		if cur > prev {
			t.Errorf("percent increased across RemoveLink: %d -> %d", prev, cur)
		}
		prev = cur
	}

	s = newSessionStore("g1", "g2", "g3")
	s.CreateLink("g1", "sol1", "doc-s", 0)
	if p := s.GetProgress(); p.Percent != 33 {
		t.Errorf("1/3 percent = %d, want 33", p.Percent)
	}
	s.CreateLink("g2", "sol2", "doc-s", 0)
	if p := s.GetProgress(); p.Percent != 67 {
		t.Errorf("2/3 percent = %d, want 67", p.Percent)
	}
}

func TestSelectNextUnlinked_VisitsAllThenWraps(t *testing.T) {
	s := newSessionStore("g1", "g2", "g3")

	var visited []string
	for i := 0; i < 3; i++ {
		s.SelectNextUnlinked()
		visited = append(visited, s.SelectedID())
	}

	want := []string{"g1", "g2", "g3"}
	for i := range want {
		if visited[i] != want[i] {
			t.Fatalf("visit order = %v, want %v", visited, want)
		}
	}

	s.SelectNextUnlinked()
	if s.SelectedID() != "g1" {
		t.Errorf("expected wrap to g1, got %q", s.SelectedID())
	}
}

func TestSelectNextUnlinked_SkipsLinked(t *testing.T) {
	s := newSessionStore("g1", "g2", "g3")
	s.CreateLink("g2", "sol1", "doc-s", 0)

	s.SelectProblem("g1")
	s.SelectNextUnlinked()
	if s.SelectedID() != "g3" {
		t.Errorf("expected g3 (skipping linked g2), got %q", s.SelectedID())
	}
}

func TestSelectPrevUnlinked_Wraps(t *testing.T) {
	s := newSessionStore("g1", "g2", "g3")

	s.SelectProblem("g1")
	s.SelectPrevUnlinked()
	if s.SelectedID() != "g3" {
		t.Errorf("expected wrap to g3, got %q", s.SelectedID())
	}
}

func TestSelectNextUnlinked_LinkedSelectionResumesForward(t *testing.T) {
	s := newSessionStore("g1", "g2", "g3", "g4")
	s.SelectProblem("g3")
	s.CreateLink("g3", "sol1", "doc-s", 0)

	s.SelectNextUnlinked()
	if s.SelectedID() != "g4" {
		t.Errorf("expected g4 (next after linked g3), got %q", s.SelectedID())
	}
}

func TestSelectNextUnlinked_LinkedSelectionAtEndWraps(t *testing.T) {
	s := newSessionStore("g1", "g2", "g3")
	s.SelectProblem("g3")
	s.CreateLink("g3", "sol1", "doc-s", 0)

	s.SelectNextUnlinked()
	if s.SelectedID() != "g1" {
		t.Errorf("expected wrap to g1, got %q", s.SelectedID())
	}
}

func TestSelectPrevUnlinked_LinkedSelectionResumesBackward(t *testing.T) {
	s := newSessionStore("g1", "g2", "g3")
	s.SelectProblem("g2")
	s.CreateLink("g2", "sol1", "doc-s", 0)

	s.SelectPrevUnlinked()
	if s.SelectedID() != "g1" {
		t.Errorf("expected g1 (previous before linked g2), got %q", s.SelectedID())
	}
}

func TestSelectNextUnlinked_EmptyClearsCursor(t *testing.T) {
	s := newSessionStore("g1")
	s.CreateLink("g1", "sol1", "doc-s", 0)
	s.SelectProblem("g1")

	s.SelectNextUnlinked()
	if s.SelectedID() != "" {
		t.Errorf("expected cleared cursor with no unlinked problems, got %q", s.SelectedID())
	}
}
