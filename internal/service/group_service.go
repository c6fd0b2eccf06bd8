package service

import (
	"errors"
	"time"

	"matchsync-server/internal/domain"
	"matchsync-server/internal/repository"
	"matchsync-server/internal/websocket"

	"github.com/google/uuid"
)

type GroupService struct {
	repo        repository.GroupRepository
	docRepo     repository.DocumentRepository
	sessionRepo repository.SessionRepository
	linkRepo    repository.LinkRepository
	wsManager   *websocket.Manager
}

func NewGroupService(
	repo repository.GroupRepository,
	docRepo repository.DocumentRepository,
	sessionRepo repository.SessionRepository,
	linkRepo repository.LinkRepository,
	wsManager *websocket.Manager,
) *GroupService {
	return &GroupService{
		repo:        repo,
		docRepo:     docRepo,
		sessionRepo: sessionRepo,
		linkRepo:    linkRepo,
		wsManager:   wsManager,
	}
}

func (s *GroupService) Create(userID, documentID string, req *domain.CreateGroupRequest) (*domain.GroupRef, error) {
	doc, err := s.docRepo.Get(documentID)
	if err != nil {
		return nil, err
	}
	if doc.OwnerID != userID {
		return nil, ErrUnauthorized
	}

	group := &domain.GroupRef{
		ID:            uuid.New().String(),
		DocumentID:    documentID,
		PageIndex:     req.PageIndex,
		ProblemNumber: req.ProblemNumber,
		DisplayName:   domain.BuildDisplayName(req.BookName, req.Course, req.Page, req.ProblemNumber),
		BlockIDs:      req.BlockIDs,
		BookName:      req.BookName,
		Course:        req.Course,
		Page:          req.Page,
		CreatedAt:     time.Now(),
	}

	if err := s.repo.Create(group); err != nil {
		return nil, err
	}

	s.broadcastGroupEvent(websocket.TypeGroupCreated, group, doc.Role)

	return group, nil
}

func (s *GroupService) List(userID, documentID string) ([]*domain.GroupRef, error) {
	doc, err := s.docRepo.Get(documentID)
	if err != nil {
		return nil, err
	}
	if doc.OwnerID != userID {
		return nil, ErrUnauthorized
	}
	return s.repo.ListByDocument(documentID)
}

func (s *GroupService) Update(userID, groupID string, req *domain.UpdateGroupRequest) (*domain.GroupRef, error) {
	group, _, err := s.ownedGroup(userID, groupID)
	if err != nil {
		return nil, err
	}

	if req.ProblemNumber != nil {
		group.ProblemNumber = *req.ProblemNumber
	}
	if req.BookName != nil {
		group.BookName = *req.BookName
	}
	if req.Course != nil {
		group.Course = *req.Course
	}
	if req.Page != nil {
		group.Page = *req.Page
	}
	group.DisplayName = domain.BuildDisplayName(group.BookName, group.Course, group.Page, group.ProblemNumber)

	if err := s.repo.Update(group); err != nil {
		return nil, err
	}
	return group, nil
}

// Delete removes the group and, in every session its document takes part in,
// any link referring to it.
func (s *GroupService) Delete(userID, groupID string) error {
	group, doc, err := s.ownedGroup(userID, groupID)
	if err != nil {
		return err
	}

	sessions, err := s.sessionRepo.ListByDocument(group.DocumentID)
	if err != nil {
		return err
	}
	for _, sess := range sessions {
		if doc.Role == domain.DocumentRoleProblem {
			if err := s.linkRepo.Delete(sess.ID, group.ID); err != nil {
				return err
			}
			continue
		}
		link, err := s.linkRepo.FindBySolution(sess.ID, group.ID)
		if err != nil {
			if errors.Is(err, repository.ErrLinkNotFound) {
				continue
			}
			return err
		}
		if err := s.linkRepo.Delete(sess.ID, link.ProblemGroupID); err != nil {
			return err
		}
	}

	if err := s.repo.Delete(groupID); err != nil {
		return err
	}

	s.broadcastGroupEvent(websocket.TypeGroupDeleted, group, doc.Role)

	return nil
}

// SyncParentFlags recomputes IsParent for every group in the document. A group
// numbered "3" is a parent when a sibling numbered "3-1", "3-2" and so on
// exists; sub-numbered groups themselves are never parents.
func (s *GroupService) SyncParentFlags(userID, documentID string) (*domain.ParentFlagReport, error) {
	doc, err := s.docRepo.Get(documentID)
	if err != nil {
		return nil, err
	}
	if doc.OwnerID != userID {
		return nil, ErrUnauthorized
	}

	groups, err := s.repo.ListByDocument(documentID)
	if err != nil {
		return nil, err
	}

	report := &domain.ParentFlagReport{}
	for _, g := range groups {
		isParent := false
		for _, other := range groups {
			if other.ID != g.ID && isChildNumber(g.ProblemNumber, other.ProblemNumber) {
				isParent = true
				break
			}
		}
		if isParent == g.IsParent {
			continue
		}
		g.IsParent = isParent
		if err := s.repo.Update(g); err != nil {
			return nil, err
		}
		report.Updated++
	}
	return report, nil
}

func (s *GroupService) ownedGroup(userID, groupID string) (*domain.GroupRef, *domain.Document, error) {
	group, err := s.repo.Get(groupID)
	if err != nil {
		return nil, nil, err
	}
	doc, err := s.docRepo.Get(group.DocumentID)
	if err != nil {
		return nil, nil, err
	}
	if doc.OwnerID != userID {
		return nil, nil, ErrUnauthorized
	}
	return group, doc, nil
}

func (s *GroupService) broadcastGroupEvent(msgType websocket.MessageType, group *domain.GroupRef, role domain.DocumentRole) {
	if s.wsManager == nil {
		return
	}

	sessions, err := s.sessionRepo.ListByDocument(group.DocumentID)
	if err != nil {
		return
	}

	msg, err := websocket.NewMessage(msgType, &websocket.GroupEventPayload{
		GroupID:     group.ID,
		DocumentID:  group.DocumentID,
		Role:        role,
		DisplayName: group.DisplayName,
		PageIndex:   group.PageIndex,
	})
	if err != nil {
		return
	}

	for _, sess := range sessions {
		s.wsManager.BroadcastToSession(sess.ID, msg, "")
	}
}

// isChildNumber reports whether child is a dash-suffixed sub-number of parent,
// e.g. parent "3" and child "3-1".
func isChildNumber(parent, child string) bool {
	return len(child) > len(parent)+1 && child[:len(parent)] == parent && child[len(parent)] == '-'
}
