package windows

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"matchsync-server/internal/domain"
)

// ErrPopupBlocked means the browser refused to open the second window. The
// caller must surface it as an actionable condition (enable popups / fall
// back to single-window mode), never as a plain network error.
var ErrPopupBlocked = errors.New("popup blocked")

type Geometry struct {
	X      int
	Y      int
	Width  int
	Height int
}

// SplitScreen halves the available width: problem viewer on the left,
// solution viewer on the right, both full height.
func SplitScreen(screenW, screenH int) (problem, solution Geometry) {
	half := screenW / 2
	problem = Geometry{X: 0, Y: 0, Width: half, Height: screenH}
	solution = Geometry{X: half, Y: 0, Width: screenW - half, Height: screenH}
	return problem, solution
}

// Window is an already-open browser window.
type Window interface {
	// ShowPlaceholder writes an interim document so the operator never
	// stares at a blank window while async work runs.
	ShowPlaceholder(message string)
	Navigate(rawURL string)
}

// Opener opens a new window. It must be called synchronously inside the
// user-gesture call stack; browsers block window creation otherwise. A nil
// window without an error is treated as blocked too.
type Opener interface {
	Open(g Geometry) (Window, error)
}

// SessionCreator is the backend slice the coordinator needs.
type SessionCreator interface {
	CreateMatchingSession(ctx context.Context, name, problemDocID, solutionDocID string) (*domain.MatchingSession, error)
}

// Coordinator opens the dual-window pair and owns nothing else: matching
// data stays in the store, liveness is inferred elsewhere from the connected
// window count.
type Coordinator struct {
	opener        Opener
	self          Window
	sessions      SessionCreator
	viewerBaseURL string
	screenW       int
	screenH       int
	navDelay      time.Duration
}

func NewCoordinator(opener Opener, self Window, sessions SessionCreator, viewerBaseURL string, screenW, screenH int, navDelay time.Duration) *Coordinator {
	return &Coordinator{
		opener:        opener,
		self:          self,
		sessions:      sessions,
		viewerBaseURL: viewerBaseURL,
		screenW:       screenW,
		screenH:       screenH,
		navDelay:      navDelay,
	}
}

// LaunchDualWindows opens the solution window first (synchronously, so the
// popup is attributed to the user gesture), creates the session, then
// navigates the peer before the current window. Popup blocking aborts before
// any network call.
func (c *Coordinator) LaunchDualWindows(ctx context.Context, name, problemDocID, solutionDocID string) (*domain.MatchingSession, error) {
	_, solGeom := SplitScreen(c.screenW, c.screenH)

	peer, err := c.opener.Open(solGeom)
	if err != nil || peer == nil {
		return nil, ErrPopupBlocked
	}
	peer.ShowPlaceholder("Creating matching session...")

	sess, err := c.sessions.CreateMatchingSession(ctx, name, problemDocID, solutionDocID)
	if err != nil {
		peer.ShowPlaceholder("Failed to create matching session.")
		return nil, fmt.Errorf("creating matching session: %w", err)
	}

	peer.Navigate(ViewerURL(c.viewerBaseURL, solutionDocID, sess.ID, domain.DocumentRoleSolution))

	// The peer's navigation must begin before our own, otherwise the problem
	// window can reload out from under the opener reference.
	time.Sleep(c.navDelay)
	c.self.Navigate(ViewerURL(c.viewerBaseURL, problemDocID, sess.ID, domain.DocumentRoleProblem))

	return sess, nil
}

// OpenMatchingWindow re-opens one peer window for an existing session, for
// reconnection after the peer was closed. Same geometry rule as the launch.
func (c *Coordinator) OpenMatchingWindow(documentID, sessionID string, role domain.DocumentRole) error {
	probGeom, solGeom := SplitScreen(c.screenW, c.screenH)
	geom := probGeom
	if role == domain.DocumentRoleSolution {
		geom = solGeom
	}

	w, err := c.opener.Open(geom)
	if err != nil || w == nil {
		return ErrPopupBlocked
	}
	w.Navigate(ViewerURL(c.viewerBaseURL, documentID, sessionID, role))
	return nil
}

// ViewerURL builds the viewer address carrying the session id and window
// role as query parameters.
func ViewerURL(base, documentID, sessionID string, role domain.DocumentRole) string {
	q := url.Values{}
	q.Set("session", sessionID)
	q.Set("role", string(role))
	return fmt.Sprintf("%s/viewer/%s?%s", base, documentID, q.Encode())
}

// DualModeParams reports the session id and role from a viewer URL. Both
// present means the window was opened in dual mode and the role prompt is
// skipped.
func DualModeParams(u *url.URL) (sessionID string, role domain.DocumentRole, ok bool) {
	q := u.Query()
	sessionID = q.Get("session")
	r := q.Get("role")
	if sessionID == "" || (r != string(domain.DocumentRoleProblem) && r != string(domain.DocumentRoleSolution)) {
		return "", "", false
	}
	return sessionID, domain.DocumentRole(r), true
}

type PeerState string

const (
	PeerConnected    PeerState = "connected"
	PeerInitializing PeerState = "initializing"
	PeerDisconnected PeerState = "disconnected"
)

// Tracker turns an externally supplied connected-window count into an
// advisory peer state. During the initial grace period a missing peer reads
// as initializing, not disconnected, so a still-loading window does not
// raise a false alarm.
type Tracker struct {
	started time.Time
	grace   time.Duration
	now     func() time.Time
}

func NewTracker(grace time.Duration) *Tracker {
	t := &Tracker{grace: grace, now: time.Now}
	t.started = t.now()
	return t
}

func (t *Tracker) State(connectedWindows int) PeerState {
	if connectedWindows >= 2 {
		return PeerConnected
	}
	if t.now().Sub(t.started) < t.grace {
		return PeerInitializing
	}
	return PeerDisconnected
}
