package service

import (
	"testing"
	"time"

	"matchsync-server/internal/domain"
)

type syncFixture struct {
	service     *SyncService
	sessionRepo *mockSessionRepo
	groupRepo   *mockGroupRepo
	linkRepo    *mockLinkRepo
}

func newSyncFixture() *syncFixture {
	f := &syncFixture{
		sessionRepo: newMockSessionRepo(),
		groupRepo:   newMockGroupRepo(),
		linkRepo:    newMockLinkRepo(),
	}
	f.service = NewSyncService(f.sessionRepo, f.groupRepo, f.linkRepo, nil)
	return f
}

func (f *syncFixture) seed(problemIDs []string, snapshot []string) {
	f.sessionRepo.Create(&domain.MatchingSession{
		ID: "sess1", OwnerID: "user1",
		ProblemDocumentID: "pdoc", SolutionDocumentID: "sdoc",
		ProblemIDs: snapshot,
		Status:     domain.SessionInProgress,
	})
	for _, id := range problemIDs {
		f.groupRepo.Create(&domain.GroupRef{ID: id, DocumentID: "pdoc", CreatedAt: time.Now()})
	}
}

func TestSyncService_StatusSynced(t *testing.T) {
	f := newSyncFixture()
	f.seed([]string{"p1", "p2"}, []string{"p1", "p2"})
	f.linkRepo.Upsert("sess1", &domain.Link{ProblemGroupID: "p1", SolutionGroupID: "s1"})

	snap, err := f.service.Status("user1", "sess1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if snap.Status != domain.SyncSynced {
		t.Errorf("expected synced, got %s", snap.Status)
	}
	if snap.GroupsCount != 2 || snap.SessionCount != 2 || snap.LinksCount != 1 {
		t.Errorf("unexpected counts: %+v", snap)
	}
}

func TestSyncService_StatusPendingOnCountGap(t *testing.T) {
	f := newSyncFixture()
	f.seed([]string{"p1", "p2", "p3"}, []string{"p1", "p2"})

	snap, _ := f.service.Status("user1", "sess1")
	if snap.Status != domain.SyncPending {
		t.Errorf("expected pending, got %s", snap.Status)
	}
}

func TestSyncService_StatusConflictOnOrphanLink(t *testing.T) {
	f := newSyncFixture()
	f.seed([]string{"p1"}, []string{"p1"})
	f.linkRepo.Upsert("sess1", &domain.Link{ProblemGroupID: "deleted", SolutionGroupID: "s1"})

	snap, _ := f.service.Status("user1", "sess1")
	if snap.Status != domain.SyncConflict {
		t.Errorf("expected conflict, got %s", snap.Status)
	}
}

func TestSyncService_StatusConflictOnDuplicateSolution(t *testing.T) {
	f := newSyncFixture()
	f.seed([]string{"p1", "p2"}, []string{"p1", "p2"})
	f.linkRepo.Upsert("sess1", &domain.Link{ProblemGroupID: "p1", SolutionGroupID: "s1"})
	f.linkRepo.Upsert("sess1", &domain.Link{ProblemGroupID: "p2", SolutionGroupID: "s1"})

	snap, _ := f.service.Status("user1", "sess1")
	if snap.Status != domain.SyncConflict {
		t.Errorf("expected conflict, got %s", snap.Status)
	}
}

func TestSyncService_StatusConflictBeatsPending(t *testing.T) {
	f := newSyncFixture()
	f.seed([]string{"p1", "p2"}, []string{"p1"})
	f.linkRepo.Upsert("sess1", &domain.Link{ProblemGroupID: "deleted", SolutionGroupID: "s1"})

	snap, _ := f.service.Status("user1", "sess1")
	if snap.Status != domain.SyncConflict {
		t.Errorf("expected conflict to outrank pending, got %s", snap.Status)
	}
}

func TestSyncService_FullSyncImportsAndPrunes(t *testing.T) {
	f := newSyncFixture()
	f.seed([]string{"p1", "p2", "p3"}, []string{"p1"})
	f.linkRepo.Upsert("sess1", &domain.Link{ProblemGroupID: "p1", SolutionGroupID: "s1"})
	f.linkRepo.Upsert("sess1", &domain.Link{ProblemGroupID: "deleted", SolutionGroupID: "s2"})

	report, err := f.service.FullSync("user1", "sess1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if report.ProblemsAdded != 2 {
		t.Errorf("expected 2 problems imported, got %d", report.ProblemsAdded)
	}
	if report.LinksSynced != 1 {
		t.Errorf("expected 1 surviving link, got %d", report.LinksSynced)
	}

	links, _ := f.linkRepo.ListBySession("sess1")
	if len(links) != 1 || links[0].ProblemGroupID != "p1" {
		t.Errorf("expected orphan link to be pruned, got %+v", links)
	}

	snap, _ := f.service.Status("user1", "sess1")
	if snap.Status != domain.SyncSynced {
		t.Errorf("expected synced after full sync, got %s", snap.Status)
	}
}

func TestSyncService_OwnershipChecked(t *testing.T) {
	f := newSyncFixture()
	f.seed(nil, nil)

	if _, err := f.service.Status("intruder", "sess1"); err == nil {
		t.Error("expected ownership check to fail")
	}
	if _, err := f.service.FullSync("intruder", "sess1"); err == nil {
		t.Error("expected ownership check to fail")
	}
}
