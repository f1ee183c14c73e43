package handlers

import (
	"net/http"

	"github.com/Dosada05/tennis-clubs/services"
)

type TransactionHandler struct {
	transactionService services.TransactionService
}

func NewTransactionHandler(ts services.TransactionService) *TransactionHandler {
	return &TransactionHandler{transactionService: ts}
}

func (h *TransactionHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	clubID, err := getIDFromURL(r, "clubID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.TransactionInput
	if !decodeInput(w, r, &input) {
		return
	}

	transaction, err := h.transactionService.CreateTransaction(r.Context(), clubID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"transaction": transaction}
	if err := writeJSON(w, http.StatusCreated, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TransactionHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	clubID, transactionID, ok := getNestedIDsFromURL(w, r, "clubID", "transactionID")
	if !ok {
		return
	}

	transaction, err := h.transactionService.GetTransaction(r.Context(), clubID, transactionID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"transaction": transaction}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TransactionHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	clubID, err := getIDFromURL(r, "clubID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	transactions, err := h.transactionService.ListTransactions(r.Context(), clubID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"transactions": transactions}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TransactionHandler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	clubID, transactionID, ok := getNestedIDsFromURL(w, r, "clubID", "transactionID")
	if !ok {
		return
	}

	var input services.TransactionInput
	if !decodeInput(w, r, &input) {
		return
	}

	transaction, err := h.transactionService.UpdateTransaction(r.Context(), clubID, transactionID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{"transaction": transaction}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TransactionHandler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	clubID, transactionID, ok := getNestedIDsFromURL(w, r, "clubID", "transactionID")
	if !ok {
		return
	}

	if err := h.transactionService.DeleteTransaction(r.Context(), clubID, transactionID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
