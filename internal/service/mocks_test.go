package service

import (
	"matchsync-server/internal/domain"
	"matchsync-server/internal/repository"
)

type mockUserRepo struct {
	users map[string]*domain.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*domain.User)}
}

func (m *mockUserRepo) Create(user *domain.User) error {
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) FindByEmail(email string) (*domain.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockUserRepo) FindByID(id string) (*domain.User, error) {
	if u, exists := m.users[id]; exists {
		return u, nil
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockUserRepo) EmailExists(email string) (bool, error) {
	_, err := m.FindByEmail(email)
	return err == nil, nil
}

func (m *mockUserRepo) UsernameExists(username string) (bool, error) {
	for _, u := range m.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

type mockDocumentRepo struct {
	docs map[string]*domain.Document
}

func newMockDocumentRepo() *mockDocumentRepo {
	return &mockDocumentRepo{docs: make(map[string]*domain.Document)}
}

func (m *mockDocumentRepo) Create(doc *domain.Document) error {
	m.docs[doc.ID] = doc
	return nil
}

func (m *mockDocumentRepo) Get(id string) (*domain.Document, error) {
	if d, exists := m.docs[id]; exists {
		return d, nil
	}
	return nil, repository.ErrDocumentNotFound
}

func (m *mockDocumentRepo) ListByOwner(ownerID string) ([]*domain.Document, error) {
	var docs []*domain.Document
	for _, d := range m.docs {
		if d.OwnerID == ownerID {
			docs = append(docs, d)
		}
	}
	return docs, nil
}

func (m *mockDocumentRepo) Update(doc *domain.Document) error {
	if _, exists := m.docs[doc.ID]; !exists {
		return repository.ErrDocumentNotFound
	}
	m.docs[doc.ID] = doc
	return nil
}

func (m *mockDocumentRepo) Delete(id string) error {
	if _, exists := m.docs[id]; !exists {
		return repository.ErrDocumentNotFound
	}
	delete(m.docs, id)
	return nil
}

type mockGroupRepo struct {
	groups map[string]*domain.GroupRef
	order  []string
}

func newMockGroupRepo() *mockGroupRepo {
	return &mockGroupRepo{groups: make(map[string]*domain.GroupRef)}
}

func (m *mockGroupRepo) Create(group *domain.GroupRef) error {
	m.groups[group.ID] = group
	m.order = append(m.order, group.ID)
	return nil
}

func (m *mockGroupRepo) Get(id string) (*domain.GroupRef, error) {
	if g, exists := m.groups[id]; exists {
		return g, nil
	}
	return nil, repository.ErrGroupNotFound
}

func (m *mockGroupRepo) ListByDocument(documentID string) ([]*domain.GroupRef, error) {
	var groups []*domain.GroupRef
	for _, id := range m.order {
		g, exists := m.groups[id]
		if exists && g.DocumentID == documentID {
			groups = append(groups, g)
		}
	}
	return groups, nil
}

func (m *mockGroupRepo) Update(group *domain.GroupRef) error {
	if _, exists := m.groups[group.ID]; !exists {
		return repository.ErrGroupNotFound
	}
	m.groups[group.ID] = group
	return nil
}

func (m *mockGroupRepo) Delete(id string) error {
	if _, exists := m.groups[id]; !exists {
		return repository.ErrGroupNotFound
	}
	delete(m.groups, id)
	return nil
}

type mockSessionRepo struct {
	sessions map[string]*domain.MatchingSession
}

func newMockSessionRepo() *mockSessionRepo {
	return &mockSessionRepo{sessions: make(map[string]*domain.MatchingSession)}
}

func (m *mockSessionRepo) Create(sess *domain.MatchingSession) error {
	m.sessions[sess.ID] = sess
	return nil
}

func (m *mockSessionRepo) Get(id string) (*domain.MatchingSession, error) {
	if s, exists := m.sessions[id]; exists {
		return s, nil
	}
	return nil, repository.ErrSessionNotFound
}

func (m *mockSessionRepo) ListByOwner(ownerID string) ([]*domain.MatchingSession, error) {
	var sessions []*domain.MatchingSession
	for _, s := range m.sessions {
		if s.OwnerID == ownerID {
			sessions = append(sessions, s)
		}
	}
	return sessions, nil
}

func (m *mockSessionRepo) ListByDocument(documentID string) ([]*domain.MatchingSession, error) {
	var sessions []*domain.MatchingSession
	for _, s := range m.sessions {
		if s.ProblemDocumentID == documentID || s.SolutionDocumentID == documentID {
			sessions = append(sessions, s)
		}
	}
	return sessions, nil
}

func (m *mockSessionRepo) Update(sess *domain.MatchingSession) error {
	if _, exists := m.sessions[sess.ID]; !exists {
		return repository.ErrSessionNotFound
	}
	m.sessions[sess.ID] = sess
	return nil
}

type mockLinkRepo struct {
	links map[string]map[string]*domain.Link
}

func newMockLinkRepo() *mockLinkRepo {
	return &mockLinkRepo{links: make(map[string]map[string]*domain.Link)}
}

func (m *mockLinkRepo) Upsert(sessionID string, link *domain.Link) error {
	if m.links[sessionID] == nil {
		m.links[sessionID] = make(map[string]*domain.Link)
	}
	m.links[sessionID][link.ProblemGroupID] = link
	return nil
}

func (m *mockLinkRepo) GetByProblem(sessionID, problemGroupID string) (*domain.Link, error) {
	if l, exists := m.links[sessionID][problemGroupID]; exists {
		return l, nil
	}
	return nil, repository.ErrLinkNotFound
}

func (m *mockLinkRepo) FindBySolution(sessionID, solutionGroupID string) (*domain.Link, error) {
	for _, l := range m.links[sessionID] {
		if l.SolutionGroupID == solutionGroupID {
			return l, nil
		}
	}
	return nil, repository.ErrLinkNotFound
}

func (m *mockLinkRepo) ListBySession(sessionID string) ([]*domain.Link, error) {
	var links []*domain.Link
	for _, l := range m.links[sessionID] {
		links = append(links, l)
	}
	return links, nil
}

func (m *mockLinkRepo) Delete(sessionID, problemGroupID string) error {
	delete(m.links[sessionID], problemGroupID)
	return nil
}
