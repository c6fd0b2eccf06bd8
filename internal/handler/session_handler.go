package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"matchsync-server/internal/domain"
	"matchsync-server/internal/middleware"
	"matchsync-server/internal/repository"
	"matchsync-server/internal/service"
	"matchsync-server/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

// SessionHandler serves the matching-session surface: lifecycle, the sync
// endpoints the dual-window client polls, and the link sub-resource.
type SessionHandler struct {
	sessionService *service.SessionService
	syncService    *service.SyncService
	linkService    *service.LinkService
	groupService   *service.GroupService
	validate       *validator.Validate
}

func NewSessionHandler(
	sessionService *service.SessionService,
	syncService *service.SyncService,
	linkService *service.LinkService,
	groupService *service.GroupService,
) *SessionHandler {
	return &SessionHandler{
		sessionService: sessionService,
		syncService:    syncService,
		linkService:    linkService,
		groupService:   groupService,
		validate:       validator.New(),
	}
}

func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	userID := middleware.GetUserID(r)

	sess, err := h.sessionService.Create(userID, &req)
	if err != nil {
		if errors.Is(err, service.ErrRoleMismatch) {
			response.BadRequest(w, err.Error())
			return
		}
		writeSessionError(w, err)
		return
	}

	response.Created(w, sess)
}

func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)

	sessions, err := h.sessionService.List(userID)
	if err != nil {
		response.InternalError(w, "Failed to list sessions")
		return
	}

	response.Success(w, sessions)
}

func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]
	userID := middleware.GetUserID(r)

	sess, err := h.sessionService.GetByID(userID, sessionID)
	if err != nil {
		writeSessionError(w, err)
		return
	}

	response.Success(w, sess)
}

func (h *SessionHandler) Complete(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]
	userID := middleware.GetUserID(r)

	sess, err := h.sessionService.Complete(userID, sessionID)
	if err != nil {
		if errors.Is(err, service.ErrSessionComplete) {
			response.BadRequest(w, err.Error())
			return
		}
		writeSessionError(w, err)
		return
	}

	response.Success(w, sess)
}

func (h *SessionHandler) SyncStatus(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]
	userID := middleware.GetUserID(r)

	snapshot, err := h.syncService.Status(userID, sessionID)
	if err != nil {
		writeSessionError(w, err)
		return
	}

	response.Success(w, snapshot)
}

func (h *SessionHandler) FullSync(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]
	userID := middleware.GetUserID(r)

	report, err := h.syncService.FullSync(userID, sessionID)
	if err != nil {
		writeSessionError(w, err)
		return
	}

	response.Success(w, report)
}

// SyncParentFlags recomputes parent flags over the session's problem document.
func (h *SessionHandler) SyncParentFlags(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]
	userID := middleware.GetUserID(r)

	sess, err := h.sessionService.GetByID(userID, sessionID)
	if err != nil {
		writeSessionError(w, err)
		return
	}

	report, err := h.groupService.SyncParentFlags(userID, sess.ProblemDocumentID)
	if err != nil {
		writeGroupError(w, err)
		return
	}

	response.Success(w, report)
}

func (h *SessionHandler) CreateLink(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req domain.CreateLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	userID := middleware.GetUserID(r)

	link, err := h.linkService.Create(userID, sessionID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownGroup):
			response.BadRequest(w, err.Error())
		case errors.Is(err, service.ErrSessionComplete):
			response.BadRequest(w, err.Error())
		default:
			writeSessionError(w, err)
		}
		return
	}

	response.Created(w, link)
}

func (h *SessionHandler) ListLinks(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]
	userID := middleware.GetUserID(r)

	links, err := h.linkService.List(userID, sessionID)
	if err != nil {
		writeSessionError(w, err)
		return
	}

	response.Success(w, links)
}

func (h *SessionHandler) RemoveLink(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sessionID := vars["id"]
	problemGroupID := vars["problemGroupId"]

	userID := middleware.GetUserID(r)

	if err := h.linkService.Remove(userID, sessionID, problemGroupID); err != nil {
		writeSessionError(w, err)
		return
	}

	response.Success(w, map[string]string{"message": "Link removed"})
}

func writeSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		response.Forbidden(w, err.Error())
	case errors.Is(err, repository.ErrSessionNotFound):
		response.NotFound(w, "Session not found")
	case errors.Is(err, repository.ErrDocumentNotFound):
		response.NotFound(w, "Document not found")
	default:
		response.InternalError(w, "Session operation failed")
	}
}
