package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/justmeandopensource/cashio-api/internal/models"
	"github.com/justmeandopensource/cashio-api/internal/store"
	"github.com/justmeandopensource/cashio-api/internal/util"
)

// LedgerHandler serves ledger CRUD.
type LedgerHandler struct {
	Store *store.Store
}

func NewLedgerHandler(s *store.Store) *LedgerHandler {
	return &LedgerHandler{Store: s}
}

type ledgerReq struct {
	Name           string `json:"name" binding:"required,max=100"`
	Description    string `json:"description" binding:"max=500"`
	CurrencySymbol string `json:"currency_symbol" binding:"required,max=10"`
	Notes          string `json:"notes" binding:"max=500"`
}

type ledgerPatchReq struct {
	Name           *string `json:"name"`
	Description    *string `json:"description"`
	CurrencySymbol *string `json:"currency_symbol"`
	Notes          *string `json:"notes"`
}

func (h *LedgerHandler) Create(c *gin.Context) {
	user := currentUser(c)
	var req ledgerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}
	ledger, err := h.Store.CreateLedger(user.ID, store.LedgerInput{
		Name:           req.Name,
		Description:    req.Description,
		CurrencySymbol: req.CurrencySymbol,
		Notes:          req.Notes,
	})
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"ledger": ledger})
}

func (h *LedgerHandler) List(c *gin.Context) {
	user := currentUser(c)
	ledgers, err := h.Store.ListLedgers(user.ID)
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"ledgers": ledgers})
}

func (h *LedgerHandler) Get(c *gin.Context) {
	user := currentUser(c)
	ledgerID, ok := pathID(c, "ledgerID")
	if !ok {
		return
	}
	ledger, err := h.Store.GetLedger(user.ID, ledgerID)
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"ledger": ledger})
}

func (h *LedgerHandler) Update(c *gin.Context) {
	user := currentUser(c)
	ledgerID, ok := pathID(c, "ledgerID")
	if !ok {
		return
	}
	var req ledgerPatchReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}
	ledger, err := h.Store.UpdateLedger(user.ID, ledgerID, store.LedgerPatch{
		Name:           req.Name,
		Description:    req.Description,
		CurrencySymbol: req.CurrencySymbol,
		Notes:          req.Notes,
	})
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"ledger": ledger})
}

// resolveLedger parses :ledgerID and verifies the ledger belongs to the
// caller, writing the error response itself on failure.
func resolveLedger(c *gin.Context, s *store.Store) (*models.Ledger, bool) {
	user := currentUser(c)
	if user == nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not authenticated")
		return nil, false
	}
	ledgerID, ok := pathID(c, "ledgerID")
	if !ok {
		return nil, false
	}
	ledger, err := s.GetLedger(user.ID, ledgerID)
	if err != nil {
		fail(c, err)
		return nil, false
	}
	return ledger, true
}
