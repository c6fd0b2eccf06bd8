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

type GroupHandler struct {
	service  *service.GroupService
	validate *validator.Validate
}

func NewGroupHandler(service *service.GroupService) *GroupHandler {
	return &GroupHandler{
		service:  service,
		validate: validator.New(),
	}
}

func (h *GroupHandler) Create(w http.ResponseWriter, r *http.Request) {
	documentID := mux.Vars(r)["id"]

	var req domain.CreateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	userID := middleware.GetUserID(r)

	group, err := h.service.Create(userID, documentID, &req)
	if err != nil {
		writeGroupError(w, err)
		return
	}

	response.Created(w, group)
}

func (h *GroupHandler) List(w http.ResponseWriter, r *http.Request) {
	documentID := mux.Vars(r)["id"]
	userID := middleware.GetUserID(r)

	groups, err := h.service.List(userID, documentID)
	if err != nil {
		writeGroupError(w, err)
		return
	}

	response.Success(w, groups)
}

func (h *GroupHandler) Update(w http.ResponseWriter, r *http.Request) {
	groupID := mux.Vars(r)["id"]

	var req domain.UpdateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	userID := middleware.GetUserID(r)

	group, err := h.service.Update(userID, groupID, &req)
	if err != nil {
		writeGroupError(w, err)
		return
	}

	response.Success(w, group)
}

func (h *GroupHandler) Delete(w http.ResponseWriter, r *http.Request) {
	groupID := mux.Vars(r)["id"]
	userID := middleware.GetUserID(r)

	if err := h.service.Delete(userID, groupID); err != nil {
		writeGroupError(w, err)
		return
	}

	response.Success(w, map[string]string{"message": "Group deleted successfully"})
}

func writeGroupError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		response.Forbidden(w, err.Error())
	case errors.Is(err, repository.ErrGroupNotFound):
		response.NotFound(w, "Group not found")
	case errors.Is(err, repository.ErrDocumentNotFound):
		response.NotFound(w, "Document not found")
	default:
		response.InternalError(w, "Group operation failed")
	}
}
