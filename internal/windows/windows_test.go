package windows

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"matchsync-server/internal/domain"
)

type fakeWindow struct {
	placeholders []string
	navigations  []string
}

func (w *fakeWindow) ShowPlaceholder(msg string) { w.placeholders = append(w.placeholders, msg) }
func (w *fakeWindow) Navigate(u string)          { w.navigations = append(w.navigations, u) }

type fakeOpener struct {
	blocked bool
	opened  []Geometry
	windows []*fakeWindow
}

func (o *fakeOpener) Open(g Geometry) (Window, error) {
	if o.blocked {
		return nil, nil
	}
	o.opened = append(o.opened, g)
	w := &fakeWindow{}
	o.windows = append(o.windows, w)
	return w, nil
}

type fakeSessions struct {
	calls int
	err   error
}

func (f *fakeSessions) CreateMatchingSession(ctx context.Context, name, problemDocID, solutionDocID string) (*domain.MatchingSession, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &domain.MatchingSession{ID: "sess1", Name: name}, nil
}

func TestSplitScreen_HalvesWidthFullHeight(t *testing.T) {
	problem, solution := SplitScreen(1920, 1080)

	if problem.Width != 960 || solution.Width != 960 {
		t.Errorf("widths = %d/%d, want 960/960", problem.Width, solution.Width)
	}
	if problem.Height != 1080 || solution.Height != 1080 {
		t.Errorf("heights = %d/%d, want full height", problem.Height, solution.Height)
	}
	if problem.X != 0 || solution.X != 960 {
		t.Errorf("x = %d/%d, want 0/960", problem.X, solution.X)
	}
	if solution.X+solution.Width != 1920 {
		t.Error("regions must tile the full width")
	}
}

func TestLaunchDualWindows_HappyPath(t *testing.T) {
	opener := &fakeOpener{}
	self := &fakeWindow{}
	sessions := &fakeSessions{}
	c := NewCoordinator(opener, self, sessions, "https://match.example.com", 1920, 1080, 0)

	sess, err := c.LaunchDualWindows(context.Background(), "2학기 모의고사", "doc-p", "doc-s")
	if err != nil {
		t.Fatalf("LaunchDualWindows() error = %v", err)
	}
	if sess.ID != "sess1" {
		t.Errorf("session id = %q", sess.ID)
	}

	peer := opener.windows[0]
	if len(peer.placeholders) == 0 {
		t.Error("expected placeholder before navigation")
	}
	if len(peer.navigations) != 1 || !strings.Contains(peer.navigations[0], "role=solution") {
		t.Errorf("peer navigations = %v", peer.navigations)
	}
	if !strings.Contains(peer.navigations[0], "session=sess1") {
		t.Errorf("peer URL missing session param: %v", peer.navigations)
	}
	if len(self.navigations) != 1 || !strings.Contains(self.navigations[0], "role=problem") {
		t.Errorf("self navigations = %v", self.navigations)
	}
}

func TestLaunchDualWindows_PopupBlockedBeforeNetwork(t *testing.T) {
	opener := &fakeOpener{blocked: true}
	sessions := &fakeSessions{}
	c := NewCoordinator(opener, &fakeWindow{}, sessions, "https://match.example.com", 1920, 1080, 0)

	_, err := c.LaunchDualWindows(context.Background(), "s", "doc-p", "doc-s")
	if !errors.Is(err, ErrPopupBlocked) {
		t.Fatalf("error = %v, want ErrPopupBlocked", err)
	}
	if sessions.calls != 0 {
		t.Errorf("session created despite blocked popup (%d calls)", sessions.calls)
	}
}

func TestLaunchDualWindows_SessionCreateFailure(t *testing.T) {
	opener := &fakeOpener{}
	sessions := &fakeSessions{err: errors.New("couch down")}
	self := &fakeWindow{}
	c := NewCoordinator(opener, self, sessions, "https://match.example.com", 1920, 1080, 0)

	_, err := c.LaunchDualWindows(context.Background(), "s", "doc-p", "doc-s")
	if err == nil || errors.Is(err, ErrPopupBlocked) {
		t.Fatalf("error = %v, want wrapped backend error", err)
	}
	if len(self.navigations) != 0 {
		t.Error("current window must not navigate after a failed session create")
	}
}

func TestOpenMatchingWindow_ReusesGeometryRule(t *testing.T) {
	opener := &fakeOpener{}
	c := NewCoordinator(opener, &fakeWindow{}, &fakeSessions{}, "https://match.example.com", 1920, 1080, 0)

	if err := c.OpenMatchingWindow("doc-s", "sess1", domain.DocumentRoleSolution); err != nil {
		t.Fatalf("OpenMatchingWindow() error = %v", err)
	}

	_, wantSol := SplitScreen(1920, 1080)
	if opener.opened[0] != wantSol {
		t.Errorf("geometry = %+v, want %+v", opener.opened[0], wantSol)
	}
	if !strings.Contains(opener.windows[0].navigations[0], "role=solution") {
		t.Errorf("navigation = %v", opener.windows[0].navigations)
	}
}

func TestDualModeParams(t *testing.T) {
	tests := []struct {
		raw    string
		wantOK bool
		wantID string
	}{
		{"https://x/viewer/doc-p?session=s1&role=problem", true, "s1"},
		{"https://x/viewer/doc-s?session=s1&role=solution", true, "s1"},
		{"https://x/viewer/doc-p?role=problem", false, ""},
		{"https://x/viewer/doc-p?session=s1", false, ""},
		{"https://x/viewer/doc-p?session=s1&role=editor", false, ""},
	}
	for _, tt := range tests {
		u, _ := url.Parse(tt.raw)
		id, _, ok := DualModeParams(u)
		if ok != tt.wantOK || id != tt.wantID {
			t.Errorf("DualModeParams(%s) = (%q, %v), want (%q, %v)", tt.raw, id, ok, tt.wantID, tt.wantOK)
		}
	}
}

func TestTracker_GracePeriodSuppressesDisconnected(t *testing.T) {
	tr := NewTracker(10 * time.Second)
	base := time.Now()
	tr.started = base
	tr.now = func() time.Time { return base.Add(3 * time.Second) }

	if got := tr.State(1); got != PeerInitializing {
		t.Errorf("state during grace = %s, want initializing", got)
	}

	tr.now = func() time.Time { return base.Add(15 * time.Second) }
	if got := tr.State(1); got != PeerDisconnected {
		t.Errorf("state after grace = %s, want disconnected", got)
	}
	if got := tr.State(2); got != PeerConnected {
		t.Errorf("state with 2 windows = %s, want connected", got)
	}
}
