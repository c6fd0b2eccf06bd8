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

type DocumentHandler struct {
	service  *service.DocumentService
	validate *validator.Validate
}

func NewDocumentHandler(service *service.DocumentService) *DocumentHandler {
	return &DocumentHandler{
		service:  service,
		validate: validator.New(),
	}
}

func (h *DocumentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	userID := middleware.GetUserID(r)

	doc, err := h.service.Create(userID, &req)
	if err != nil {
		response.InternalError(w, "Failed to create document")
		return
	}

	response.Created(w, doc)
}

func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r)

	docs, err := h.service.List(userID)
	if err != nil {
		response.InternalError(w, "Failed to list documents")
		return
	}

	response.Success(w, docs)
}

func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	documentID := mux.Vars(r)["id"]
	userID := middleware.GetUserID(r)

	doc, err := h.service.GetByID(userID, documentID)
	if err != nil {
		writeDocumentError(w, err)
		return
	}

	response.Success(w, doc)
}

func (h *DocumentHandler) Update(w http.ResponseWriter, r *http.Request) {
	documentID := mux.Vars(r)["id"]

	var req domain.UpdateDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	userID := middleware.GetUserID(r)

	doc, err := h.service.Update(userID, documentID, &req)
	if err != nil {
		writeDocumentError(w, err)
		return
	}

	response.Success(w, doc)
}

func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	documentID := mux.Vars(r)["id"]
	userID := middleware.GetUserID(r)

	if err := h.service.Delete(userID, documentID); err != nil {
		writeDocumentError(w, err)
		return
	}

	response.Success(w, map[string]string{"message": "Document deleted successfully"})
}

func writeDocumentError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		response.Forbidden(w, err.Error())
	case errors.Is(err, repository.ErrDocumentNotFound):
		response.NotFound(w, "Document not found")
	default:
		response.InternalError(w, "Document operation failed")
	}
}
