package service

import (
	"errors"
	"testing"
	"time"

	"matchsync-server/internal/domain"
)

type sessionFixture struct {
	service   *SessionService
	docRepo   *mockDocumentRepo
	groupRepo *mockGroupRepo
}

func newSessionFixture() *sessionFixture {
	f := &sessionFixture{
		docRepo:   newMockDocumentRepo(),
		groupRepo: newMockGroupRepo(),
	}
	f.service = NewSessionService(newMockSessionRepo(), f.docRepo, f.groupRepo)

	f.docRepo.Create(&domain.Document{ID: "pdoc", OwnerID: "user1", Role: domain.DocumentRoleProblem})
	f.docRepo.Create(&domain.Document{ID: "sdoc", OwnerID: "user1", Role: domain.DocumentRoleSolution})
	return f
}

func TestSessionService_CreateSnapshotsProblems(t *testing.T) {
	f := newSessionFixture()
	f.groupRepo.Create(&domain.GroupRef{ID: "p1", DocumentID: "pdoc", CreatedAt: time.Now()})
	f.groupRepo.Create(&domain.GroupRef{ID: "p2", DocumentID: "pdoc", CreatedAt: time.Now()})

	sess, err := f.service.Create("user1", &domain.CreateSessionRequest{
		Name:               "chapter 1",
		ProblemDocumentID:  "pdoc",
		SolutionDocumentID: "sdoc",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(sess.ProblemIDs) != 2 {
		t.Errorf("expected 2 snapshot problems, got %d", len(sess.ProblemIDs))
	}
	if sess.Status != domain.SessionInProgress {
		t.Errorf("expected in_progress, got %s", sess.Status)
	}
}

func TestSessionService_CreateRejectsRoleMismatch(t *testing.T) {
	f := newSessionFixture()

	_, err := f.service.Create("user1", &domain.CreateSessionRequest{
		Name:               "swapped",
		ProblemDocumentID:  "sdoc",
		SolutionDocumentID: "pdoc",
	})
	if !errors.Is(err, ErrRoleMismatch) {
		t.Errorf("expected ErrRoleMismatch, got %v", err)
	}
}

func TestSessionService_CreateRejectsForeignDocuments(t *testing.T) {
	f := newSessionFixture()

	_, err := f.service.Create("user2", &domain.CreateSessionRequest{
		Name:               "not mine",
		ProblemDocumentID:  "pdoc",
		SolutionDocumentID: "sdoc",
	})
	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("expected ErrUnauthorized, got %v", err)
	}
}

func TestSessionService_Complete(t *testing.T) {
	f := newSessionFixture()

	sess, _ := f.service.Create("user1", &domain.CreateSessionRequest{
		Name:               "chapter 1",
		ProblemDocumentID:  "pdoc",
		SolutionDocumentID: "sdoc",
	})

	done, err := f.service.Complete("user1", sess.ID)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if done.Status != domain.SessionCompleted {
		t.Errorf("expected completed, got %s", done.Status)
	}

	if _, err := f.service.Complete("user1", sess.ID); !errors.Is(err, ErrSessionComplete) {
		t.Errorf("expected ErrSessionComplete on double complete, got %v", err)
	}
}
