package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/qarzbook/ledgercore/internal/models"
	"github.com/qarzbook/ledgercore/internal/repository"
)

type ContactHandler struct {
	repo *repository.Repository
}

func NewContactHandler(repo *repository.Repository) *ContactHandler {
	return &ContactHandler{repo: repo}
}

// List returns all contacts
// @Summary List contacts
// @Description List all contacts, cache-first. Pass refresh=true to bypass the cache.
// @Tags Contacts
// @Produce json
// @Param refresh query bool false "Bypass the cache"
// @Success 200 {object} object{success=bool,data=[]models.Contact}
// @Router /contacts [get]
func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	sendJSON(w, http.StatusOK, h.repo.ListContacts(r.Context(), forceRefresh(r)))
}

// Get returns one contact
// @Summary Get contact
// @Tags Contacts
// @Produce json
// @Param contactId path string true "Contact id"
// @Success 200 {object} object{success=bool,data=models.Contact}
// @Failure 404 {object} handlers.ErrorResponse
// @Router /contacts/{contactId} [get]
func (h *ContactHandler) Get(w http.ResponseWriter, r *http.Request) {
	contact, err := h.repo.GetContact(r.Context(), chi.URLParam(r, "contactId"))
	if err != nil {
		sendError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, contact)
}

// Create adds a contact
// @Summary Create contact
// @Tags Contacts
// @Accept json
// @Produce json
// @Param request body models.ContactInput true "Contact fields"
// @Success 201 {object} object{success=bool,data=models.Contact}
// @Failure 400 {object} handlers.ErrorResponse
// @Failure 409 {object} handlers.ErrorResponse
// @Router /contacts [post]
func (h *ContactHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input models.ContactInput
	if !decodeBody(w, r, &input) {
		return
	}

	contact, err := h.repo.CreateContact(r.Context(), input)
	if err != nil {
		sendError(w, err)
		return
	}
	sendJSON(w, http.StatusCreated, contact)
}

// Update modifies a contact
// @Summary Update contact
// @Tags Contacts
// @Accept json
// @Produce json
// @Param contactId path string true "Contact id"
// @Param request body models.ContactInput true "Contact fields"
// @Success 200 {object} object{success=bool,data=models.Contact}
// @Failure 400 {object} handlers.ErrorResponse
// @Failure 404 {object} handlers.ErrorResponse
// @Router /contacts/{contactId} [put]
func (h *ContactHandler) Update(w http.ResponseWriter, r *http.Request) {
	var input models.ContactInput
	if !decodeBody(w, r, &input) {
		return
	}

	contact, err := h.repo.UpdateContact(r.Context(), chi.URLParam(r, "contactId"), input)
	if err != nil {
		sendError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, contact)
}

// Delete removes a contact
// @Summary Delete contact
// @Description Delete a contact. Refused while the contact has unpaid debts.
// @Tags Contacts
// @Produce json
// @Param contactId path string true "Contact id"
// @Success 200 {object} object{success=bool}
// @Failure 404 {object} handlers.ErrorResponse
// @Failure 409 {object} handlers.ErrorResponse
// @Router /contacts/{contactId} [delete]
func (h *ContactHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.DeleteContact(r.Context(), chi.URLParam(r, "contactId")); err != nil {
		sendError(w, err)
		return
	}
	sendJSON(w, http.StatusOK, nil)
}
