package controllers

import (
	"net/http"

	"github.com/rzbill/sluice/internal/auth"
	"github.com/rzbill/sluice/internal/ledger"
	"github.com/rzbill/sluice/internal/rail"
)

// RailController exposes the value rail: deposits, the faucet and balances.
type RailController struct {
	book *rail.Book
}

func NewRailController(book *rail.Book) *RailController {
	return &RailController{book: book}
}

func (c *RailController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/rail/pay", c.handlePay)
	mux.HandleFunc("POST /v1/rail/mint", c.handleMint)
	mux.HandleFunc("GET /v1/rail/balance", c.handleBalance)
}

// handlePay moves value from the caller into custody. The caller must be
// the payer.
func (c *RailController) handlePay(w http.ResponseWriter, r *http.Request) {
	var req payReq
	if err := decodeBody(r, &req); err != nil {
		writeLedgerError(w, err)
		return
	}
	from, err := ledger.ParseAddress(req.From)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	amount, err := req.Amount.Int64()
	if err != nil {
		writeLedgerError(w, ledger.Validation("pay", "amount must be an integer"))
		return
	}
	if err := auth.RequireCaller(r.Context(), "pay", from); err != nil {
		writeLedgerError(w, err)
		return
	}
	if err := c.book.Pay(r.Context(), ledger.Payment{From: from, Amount: amount, Data: req.Data}); err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, successResp{Success: true})
}

func (c *RailController) handleMint(w http.ResponseWriter, r *http.Request) {
	var req mintReq
	if err := decodeBody(r, &req); err != nil {
		writeLedgerError(w, err)
		return
	}
	to, err := ledger.ParseAddress(req.Address)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	amount, err := req.Amount.Int64()
	if err != nil {
		writeLedgerError(w, ledger.Validation("mint", "amount must be an integer"))
		return
	}
	bal, err := c.book.Mint(r.Context(), to, amount)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, balanceResp{Address: to.String(), Balance: bal})
}

func (c *RailController) handleBalance(w http.ResponseWriter, r *http.Request) {
	a, err := parseAddressParam(r, "address")
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	if a == nil {
		writeLedgerError(w, ledger.Validation("balance", "address is required"))
		return
	}
	bal, err := c.book.Balance(r.Context(), *a)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, balanceResp{Address: a.String(), Balance: bal})
}
