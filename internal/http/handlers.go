package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"pocketledger/internal/core"
	"pocketledger/internal/services"
)

type loginRequest struct {
	Name string `json:"name"`
}

type userResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type transactionRequest struct {
	Owner    string `json:"owner"`
	Amount   string `json:"amount"`
	Title    string `json:"title"`
	Note     string `json:"note"`
	Category string `json:"category"`
	Date     string `json:"date"`
}

type transactionResponse struct {
	ID              int64           `json:"id"`
	Owner           string          `json:"owner"`
	Amount          decimal.Decimal `json:"amount"`
	Title           string          `json:"title"`
	Note            string          `json:"note,omitempty"`
	Category        string          `json:"category"`
	DisplayCategory string          `json:"display_category"`
	Date            string          `json:"date"`
}

type axisResponse struct {
	StepSize  decimal.Decimal   `json:"step_size"`
	Gridlines []decimal.Decimal `json:"gridlines"`
}

type ledgerResponse struct {
	Owner        string                `json:"owner"`
	Total        decimal.Decimal       `json:"total"`
	Transactions []transactionResponse `json:"transactions"`
	Histogram    []decimal.Decimal     `json:"histogram"`
	Axis         axisResponse          `json:"axis"`
}

type deleteResponse struct {
	Removed bool `json:"removed"`
}

// handleLogin resolves a display name to its user row, creating it on
// first use.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "")
		return
	}

	user, err := s.ledger.Login(r.Context(), req.Name)
	if err != nil {
		s.writeLedgerError(w, r, err, "login")
		return
	}

	writeJSON(w, http.StatusOK, userResponse{ID: user.ID, Name: user.Name})
}

// handleLedger is the visibility event: a full re-fetch and
// re-derivation of the owner's ledger, returned as one snapshot.
func (s *Server) handleLedger(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	owner := strings.TrimSpace(r.URL.Query().Get("owner"))
	if owner == "" {
		writeError(w, http.StatusBadRequest, "owner is required", "owner")
		return
	}

	snap, err := s.ledger.Refresh(r.Context(), owner)
	if err != nil {
		s.writeLedgerError(w, r, err, "refresh")
		return
	}

	writeJSON(w, http.StatusOK, toLedgerResponse(snap))
}

// handleCreateTransaction validates the submitted fields and inserts
// a new row. On success the client is expected to navigate back to
// the ledger screen, whose next visibility event refreshes the
// snapshot.
func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, "POST")
		return
	}

	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "")
		return
	}

	nt := core.NewTransaction{
		Owner:    req.Owner,
		Title:    req.Title,
		Note:     req.Note,
		Category: core.Category(req.Category),
		Date:     req.Date,
	}

	// Amount sign and format checks live here, upstream of the store:
	// the store only cares that the field is present.
	if v := strings.TrimSpace(req.Amount); v != "" {
		amount, err := decimal.NewFromString(v)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "amount must be a number", "amount")
			return
		}
		if !amount.IsPositive() {
			writeError(w, http.StatusUnprocessableEntity, "amount must be positive", "amount")
			return
		}
		nt.Amount = &amount
	}

	created, err := s.ledger.Add(r.Context(), nt)
	if err != nil {
		s.writeLedgerError(w, r, err, "create transaction")
		return
	}

	writeJSON(w, http.StatusCreated, toTransactionResponse(created))
}

// handleDeleteTransaction removes one row by id. A missing id is
// reported as removed=false, not as an error.
func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		methodNotAllowed(w, "DELETE")
		return
	}

	rawID := strings.TrimPrefix(r.URL.Path, "/api/transactions/")
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid transaction id", "id")
		return
	}

	owner := strings.TrimSpace(r.URL.Query().Get("owner"))

	removed, err := s.ledger.Delete(r.Context(), owner, id)
	if err != nil {
		s.writeLedgerError(w, r, err, "delete transaction")
		return
	}

	writeJSON(w, http.StatusOK, deleteResponse{Removed: removed})
}

// writeLedgerError maps the service's error taxonomy onto HTTP:
// validation failures carry their field at 422, storage faults become
// a generic 500. Nothing else is invented at this layer.
func (s *Server) writeLedgerError(w http.ResponseWriter, r *http.Request, err error, op string) {
	var verr core.ValidationError
	if errors.As(err, &verr) {
		writeError(w, http.StatusUnprocessableEntity, verr.Error(), verr.Field)
		return
	}

	slog.ErrorContext(r.Context(), "Ledger operation failed",
		"error", err,
		"operation", op)
	writeError(w, http.StatusInternalServerError, "internal error", "")
}

func toTransactionResponse(t core.Transaction) transactionResponse {
	return transactionResponse{
		ID:              t.ID,
		Owner:           t.Owner,
		Amount:          t.Amount,
		Title:           t.Title,
		Note:            t.Note,
		Category:        string(t.Category),
		DisplayCategory: string(core.NormalizeCategory(t.Category)),
		Date:            t.Date,
	}
}

func toLedgerResponse(snap services.Snapshot) ledgerResponse {
	// Most-recent-first is a display concern, handled here rather
	// than by the store.
	txs := make([]transactionResponse, 0, len(snap.Transactions))
	for i := len(snap.Transactions) - 1; i >= 0; i-- {
		txs = append(txs, toTransactionResponse(snap.Transactions[i]))
	}

	resp := ledgerResponse{
		Owner:        snap.Owner,
		Total:        snap.Total,
		Transactions: txs,
		Histogram:    make([]decimal.Decimal, len(snap.Histogram)),
		Axis: axisResponse{
			StepSize:  snap.Axis.StepSize,
			Gridlines: make([]decimal.Decimal, len(snap.Axis.Gridlines)),
		},
	}
	for i, b := range snap.Histogram {
		resp.Histogram[i] = b
	}
	for i, g := range snap.Axis.Gridlines {
		resp.Axis.Gridlines[i] = g
	}
	return resp
}
