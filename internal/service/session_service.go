package service

import (
	"time"

	"matchsync-server/internal/domain"
	"matchsync-server/internal/repository"

	"github.com/google/uuid"
)

type SessionService struct {
	repo      repository.SessionRepository
	docRepo   repository.DocumentRepository
	groupRepo repository.GroupRepository
}

func NewSessionService(
	repo repository.SessionRepository,
	docRepo repository.DocumentRepository,
	groupRepo repository.GroupRepository,
) *SessionService {
	return &SessionService{
		repo:      repo,
		docRepo:   docRepo,
		groupRepo: groupRepo,
	}
}

// Create pairs a problem document with a solution document and snapshots the
// problem groups that exist at creation time. Groups labeled later show up as
// a pending gap until a full sync imports them.
func (s *SessionService) Create(userID string, req *domain.CreateSessionRequest) (*domain.MatchingSession, error) {
	problemDoc, err := s.docRepo.Get(req.ProblemDocumentID)
	if err != nil {
		return nil, err
	}
	solutionDoc, err := s.docRepo.Get(req.SolutionDocumentID)
	if err != nil {
		return nil, err
	}

	if problemDoc.OwnerID != userID || solutionDoc.OwnerID != userID {
		return nil, ErrUnauthorized
	}
	if problemDoc.Role != domain.DocumentRoleProblem || solutionDoc.Role != domain.DocumentRoleSolution {
		return nil, ErrRoleMismatch
	}

	groups, err := s.groupRepo.ListByDocument(req.ProblemDocumentID)
	if err != nil {
		return nil, err
	}
	problemIDs := make([]string, 0, len(groups))
	for _, g := range groups {
		problemIDs = append(problemIDs, g.ID)
	}

	now := time.Now()
	sess := &domain.MatchingSession{
		ID:                 uuid.New().String(),
		OwnerID:            userID,
		Name:               req.Name,
		ProblemDocumentID:  req.ProblemDocumentID,
		SolutionDocumentID: req.SolutionDocumentID,
		ProblemIDs:         problemIDs,
		Status:             domain.SessionInProgress,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.repo.Create(sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *SessionService) GetByID(userID, sessionID string) (*domain.MatchingSession, error) {
	sess, err := s.repo.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if sess.OwnerID != userID {
		return nil, ErrUnauthorized
	}
	return sess, nil
}

func (s *SessionService) List(userID string) ([]*domain.MatchingSession, error) {
	return s.repo.ListByOwner(userID)
}

func (s *SessionService) Complete(userID, sessionID string) (*domain.MatchingSession, error) {
	sess, err := s.GetByID(userID, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Status == domain.SessionCompleted {
		return nil, ErrSessionComplete
	}

	sess.Status = domain.SessionCompleted
	sess.UpdatedAt = time.Now()

	if err := s.repo.Update(sess); err != nil {
		return nil, err
	}
	return sess, nil
}
