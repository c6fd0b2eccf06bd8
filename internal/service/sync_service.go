package service

import (
	"time"

	"matchsync-server/internal/domain"
	"matchsync-server/internal/repository"
	"matchsync-server/internal/websocket"
)

type SyncService struct {
	sessionRepo repository.SessionRepository
	groupRepo   repository.GroupRepository
	linkRepo    repository.LinkRepository
	wsManager   *websocket.Manager
}

func NewSyncService(
	sessionRepo repository.SessionRepository,
	groupRepo repository.GroupRepository,
	linkRepo repository.LinkRepository,
	wsManager *websocket.Manager,
) *SyncService {
	return &SyncService{
		sessionRepo: sessionRepo,
		groupRepo:   groupRepo,
		linkRepo:    linkRepo,
		wsManager:   wsManager,
	}
}

// Status classifies the session against its problem document. Conflict beats
// pending: a link pointing at a vanished group or two links claiming the same
// solution means the data needs repair, not just an import.
func (s *SyncService) Status(userID, sessionID string) (*domain.SyncSnapshot, error) {
	sess, err := s.ownedSession(userID, sessionID)
	if err != nil {
		return nil, err
	}

	groups, err := s.groupRepo.ListByDocument(sess.ProblemDocumentID)
	if err != nil {
		return nil, err
	}
	links, err := s.linkRepo.ListBySession(sessionID)
	if err != nil {
		return nil, err
	}

	snapshot := &domain.SyncSnapshot{
		GroupsCount:  len(groups),
		SessionCount: len(sess.ProblemIDs),
		LinksCount:   len(links),
	}

	switch {
	case s.hasConflict(groups, links):
		snapshot.Status = domain.SyncConflict
	case len(groups) != len(sess.ProblemIDs):
		snapshot.Status = domain.SyncPending
	default:
		snapshot.Status = domain.SyncSynced
	}
	return snapshot, nil
}

// FullSync reconciles the session with its problem document: groups labeled
// after session creation are imported into the snapshot, and links whose
// problem group no longer exists are pruned.
func (s *SyncService) FullSync(userID, sessionID string) (*domain.SyncReport, error) {
	sess, err := s.ownedSession(userID, sessionID)
	if err != nil {
		return nil, err
	}

	groups, err := s.groupRepo.ListByDocument(sess.ProblemDocumentID)
	if err != nil {
		return nil, err
	}

	known := make(map[string]bool, len(sess.ProblemIDs))
	for _, id := range sess.ProblemIDs {
		known[id] = true
	}
	live := make(map[string]bool, len(groups))

	report := &domain.SyncReport{}
	problemIDs := make([]string, 0, len(groups))
	for _, g := range groups {
		live[g.ID] = true
		problemIDs = append(problemIDs, g.ID)
		if !known[g.ID] {
			report.ProblemsAdded++
		}
	}

	links, err := s.linkRepo.ListBySession(sessionID)
	if err != nil {
		return nil, err
	}
	for _, link := range links {
		if !live[link.ProblemGroupID] {
			if err := s.linkRepo.Delete(sessionID, link.ProblemGroupID); err != nil {
				return nil, err
			}
			continue
		}
		report.LinksSynced++
	}

	sess.ProblemIDs = problemIDs
	sess.UpdatedAt = time.Now()
	if err := s.sessionRepo.Update(sess); err != nil {
		return nil, err
	}

	s.notifySyncRequired(sessionID, "full_sync")

	return report, nil
}

func (s *SyncService) hasConflict(groups []*domain.GroupRef, links []*domain.Link) bool {
	live := make(map[string]bool, len(groups))
	for _, g := range groups {
		live[g.ID] = true
	}

	claimed := make(map[string]bool, len(links))
	for _, link := range links {
		if !live[link.ProblemGroupID] {
			return true
		}
		if claimed[link.SolutionGroupID] {
			return true
		}
		claimed[link.SolutionGroupID] = true
	}
	return false
}

func (s *SyncService) ownedSession(userID, sessionID string) (*domain.MatchingSession, error) {
	sess, err := s.sessionRepo.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if sess.OwnerID != userID {
		return nil, ErrUnauthorized
	}
	return sess, nil
}

func (s *SyncService) notifySyncRequired(sessionID, reason string) {
	if s.wsManager == nil {
		return
	}

	msg, err := websocket.NewMessage(websocket.TypeSyncRequired, &websocket.SyncRequiredPayload{
		Reason: reason,
	})
	if err != nil {
		return
	}
	s.wsManager.BroadcastToSession(sessionID, msg, "")
}
