package main

import (
	"context"
	"flag"
	"log"
	"time"

	"matchsync-server/internal/backend"
	"matchsync-server/internal/config"
	"matchsync-server/internal/domain"
	"matchsync-server/internal/resolver"
	"matchsync-server/internal/store"
	"matchsync-server/internal/suggest"
	"matchsync-server/internal/tui"
	"matchsync-server/internal/windows"

	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	var (
		serverURL   = flag.String("server", "http://localhost:8080", "matchsync server base URL")
		email       = flag.String("email", "", "operator email")
		password    = flag.String("password", "", "operator password")
		sessionID   = flag.String("session", "", "existing matching session id")
		sessionName = flag.String("name", "", "name for a new matching session")
		problemDoc  = flag.String("problem-doc", "", "problem document id for a new session")
		solutionDoc = flag.String("solution-doc", "", "solution document id for a new session")
	)
	flag.Parse()

	if *email == "" || *password == "" {
		log.Fatal("usage: matcher -email ... -password ... (-session ... | -name ... -problem-doc ... -solution-doc ...)")
	}
	if *sessionID == "" && (*problemDoc == "" || *solutionDoc == "") {
		log.Fatal("either -session or -problem-doc and -solution-doc are required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	client := backend.New(*serverURL)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := client.Login(ctx, *email, *password); err != nil {
		log.Fatalf("Login failed: %v", err)
	}

	var sess *domain.MatchingSession
	if *sessionID != "" {
		sess, err = client.GetSession(ctx, *sessionID)
		if err != nil {
			log.Fatalf("Failed to load session: %v", err)
		}
	} else {
		// A fresh session opens both viewer windows side by side.
		opener := windows.BrowserOpener{}
		self, _ := opener.Open(windows.Geometry{Width: cfg.Windows.ScreenWidth / 2, Height: cfg.Windows.ScreenHeight})
		coord := windows.NewCoordinator(opener, self, client, cfg.Windows.ViewerBase,
			cfg.Windows.ScreenWidth, cfg.Windows.ScreenHeight, cfg.Windows.NavDelay)

		sess, err = coord.LaunchDualWindows(ctx, *sessionName, *problemDoc, *solutionDoc)
		if err != nil {
			log.Fatalf("Failed to launch dual windows: %v", err)
		}
		log.Printf("Created matching session %s", sess.ID)
	}

	s := store.New()
	s.InitSession(sess.ProblemDocumentID, sess.SolutionDocumentID, sess.Name, sess.Name)

	groups, err := client.ListGroups(ctx, sess.ProblemDocumentID)
	if err != nil {
		log.Fatalf("Failed to load problem groups: %v", err)
	}
	for _, g := range groups {
		s.AddProblem(g)
	}

	links, err := client.ListLinks(ctx, sess.ID)
	if err != nil {
		log.Fatalf("Failed to load links: %v", err)
	}
	for _, l := range links {
		s.CreateLink(l.ProblemGroupID, l.SolutionGroupID, l.SolutionDocumentID, l.SolutionPageIndex)
	}
	s.SelectNextUnlinked()

	engine := suggest.NewEngine(s)

	// The resolver's notifications go to the program, and the program's focus
	// events go to the resolver, so the program variable is captured before it
	// is assigned. SetSession runs only after the assignment, and nothing
	// notifies before SetSession.
	var p *tea.Program
	res := resolver.New(client, s, resolver.Options{
		Interval:          cfg.Sync.Interval,
		FocusDebounce:     cfg.Sync.FocusDebounce,
		AutoSyncOnPending: cfg.Sync.AutoSyncOnPending,
		Notify: func(old, new domain.SyncStatus) {
			p.Send(tui.SyncStatusMsg(new))
		},
	})
	defer res.Stop()

	model := tui.NewModel(s, engine, res, client, sess.ID)
	p = tea.NewProgram(tui.NewApp(model), tea.WithAltScreen(), tea.WithReportFocus())
	res.SetSession(sess.ID)

	if _, err := p.Run(); err != nil {
		log.Fatalf("Matcher exited with error: %v", err)
	}
}
