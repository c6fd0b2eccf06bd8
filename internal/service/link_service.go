package service

import (
	"errors"
	"time"

	"matchsync-server/internal/domain"
	"matchsync-server/internal/repository"
	"matchsync-server/internal/websocket"
)

type LinkService struct {
	repo        repository.LinkRepository
	sessionRepo repository.SessionRepository
	groupRepo   repository.GroupRepository
	wsManager   *websocket.Manager
}

func NewLinkService(
	repo repository.LinkRepository,
	sessionRepo repository.SessionRepository,
	groupRepo repository.GroupRepository,
	wsManager *websocket.Manager,
) *LinkService {
	return &LinkService{
		repo:        repo,
		sessionRepo: sessionRepo,
		groupRepo:   groupRepo,
		wsManager:   wsManager,
	}
}

// Create records a problem↔solution association. Last write wins on both
// sides: an existing link for the problem is replaced, and a link that
// already claimed the solution is removed so no solution serves two problems.
func (s *LinkService) Create(userID, sessionID string, req *domain.CreateLinkRequest) (*domain.Link, error) {
	sess, err := s.ownedSession(userID, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Status == domain.SessionCompleted {
		return nil, ErrSessionComplete
	}

	problem, err := s.groupRepo.Get(req.ProblemGroupID)
	if err != nil || problem.DocumentID != sess.ProblemDocumentID {
		return nil, ErrUnknownGroup
	}
	solution, err := s.groupRepo.Get(req.SolutionGroupID)
	if err != nil || solution.DocumentID != sess.SolutionDocumentID {
		return nil, ErrUnknownGroup
	}

	prior, err := s.repo.FindBySolution(sessionID, req.SolutionGroupID)
	if err != nil && !errors.Is(err, repository.ErrLinkNotFound) {
		return nil, err
	}
	if prior != nil && prior.ProblemGroupID != req.ProblemGroupID {
		if err := s.repo.Delete(sessionID, prior.ProblemGroupID); err != nil {
			return nil, err
		}
		s.broadcastLinkEvent(sessionID, websocket.TypeLinkRemoved, prior.ProblemGroupID, prior.SolutionGroupID)
	}

	link := &domain.Link{
		ProblemGroupID:     req.ProblemGroupID,
		SolutionGroupID:    req.SolutionGroupID,
		SolutionDocumentID: req.SolutionDocumentID,
		SolutionPageIndex:  req.SolutionPageIndex,
		LinkedAt:           time.Now(),
	}

	if err := s.repo.Upsert(sessionID, link); err != nil {
		return nil, err
	}

	s.broadcastLinkEvent(sessionID, websocket.TypeLinkCreated, link.ProblemGroupID, link.SolutionGroupID)

	return link, nil
}

// Remove is idempotent; unlinking an unlinked problem succeeds quietly.
func (s *LinkService) Remove(userID, sessionID, problemGroupID string) error {
	if _, err := s.ownedSession(userID, sessionID); err != nil {
		return err
	}

	if err := s.repo.Delete(sessionID, problemGroupID); err != nil {
		return err
	}

	s.broadcastLinkEvent(sessionID, websocket.TypeLinkRemoved, problemGroupID, "")

	return nil
}

func (s *LinkService) List(userID, sessionID string) ([]*domain.Link, error) {
	if _, err := s.ownedSession(userID, sessionID); err != nil {
		return nil, err
	}
	return s.repo.ListBySession(sessionID)
}

func (s *LinkService) ownedSession(userID, sessionID string) (*domain.MatchingSession, error) {
	sess, err := s.sessionRepo.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if sess.OwnerID != userID {
		return nil, ErrUnauthorized
	}
	return sess, nil
}

func (s *LinkService) broadcastLinkEvent(sessionID string, msgType websocket.MessageType, problemGroupID, solutionGroupID string) {
	if s.wsManager == nil {
		return
	}

	msg, err := websocket.NewMessage(msgType, &websocket.LinkEventPayload{
		ProblemGroupID:  problemGroupID,
		SolutionGroupID: solutionGroupID,
	})
	if err != nil {
		return
	}
	s.wsManager.BroadcastToSession(sessionID, msg, "")
}
