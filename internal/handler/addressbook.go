package handler

import (
	"encoding/json"
	"net/http"

	"github.com/AlexZinkM/nano-wallet/internal/addressbook"
	"github.com/AlexZinkM/nano-wallet/internal/model"
)

// AddressBookHandler serves the saved contacts
type AddressBookHandler struct {
	book *addressbook.Book
}

// NewAddressBookHandler creates a new AddressBookHandler
func NewAddressBookHandler(book *addressbook.Book) *AddressBookHandler {
	return &AddressBookHandler{book: book}
}

// Contacts handles GET, POST and DELETE /addressbook
// @Summary      Address book
// @Description  GET lists contacts, POST saves one (renaming a known address) and DELETE removes the contact given by the address query parameter
// @Tags         addressbook
// @Accept       json
// @Produce      json
// @Param        request  body      model.Contact  false  "Contact to save (POST)"
// @Param        address  query     string         false  "Address to remove (DELETE)"
// @Success      200      {object}  model.ContactsResponse
// @Success      201      {object}  model.Contact
// @Failure      400      {object}  model.ErrorResponse
// @Failure      404      {object}  model.ErrorResponse
// @Router       /addressbook [get]
// @Router       /addressbook [post]
// @Router       /addressbook [delete]
func (h *AddressBookHandler) Contacts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		contacts, err := h.book.List(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, model.ContactsResponse{Contacts: contacts})
	case http.MethodPost:
		var req model.Contact
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			badRequest(w, err.Error())
			return
		}
		contact, err := h.book.Add(r.Context(), req.Name, req.Address)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, contact)
	case http.MethodDelete:
		address := r.URL.Query().Get("address")
		if address == "" {
			badRequest(w, "address is required")
			return
		}
		if err := h.book.Remove(r.Context(), address); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "Method not allowed. Should be GET, POST or DELETE", http.StatusMethodNotAllowed)
	}
}
