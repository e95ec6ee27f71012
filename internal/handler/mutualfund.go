package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/justmeandopensource/cashio-api/internal/models"
	"github.com/justmeandopensource/cashio-api/internal/store"
	"github.com/justmeandopensource/cashio-api/internal/util"
)

// MutualFundHandler serves AMCs, funds, NAV updates and fund
// transactions within a ledger.
type MutualFundHandler struct {
	Store *store.Store
}

func NewMutualFundHandler(s *store.Store) *MutualFundHandler {
	return &MutualFundHandler{Store: s}
}

// ---------- AMCs ----------

type amcReq struct {
	Name  string `json:"name" binding:"required,max=100"`
	Notes string `json:"notes" binding:"max=500"`
}

type amcPatchReq struct {
	Name  *string `json:"name"`
	Notes *string `json:"notes"`
}

func (h *MutualFundHandler) CreateAmc(c *gin.Context) {
	ledger, ok := resolveLedger(c, h.Store)
	if !ok {
		return
	}
	var req amcReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}
	amc, err := h.Store.CreateAmc(ledger.ID, req.Name, req.Notes)
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"amc": amc})
}

func (h *MutualFundHandler) ListAmcs(c *gin.Context) {
	ledger, ok := resolveLedger(c, h.Store)
	if !ok {
		return
	}
	amcs, err := h.Store.ListAmcs(ledger.ID)
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"amcs": amcs})
}

func (h *MutualFundHandler) UpdateAmc(c *gin.Context) {
	ledger, ok := resolveLedger(c, h.Store)
	if !ok {
		return
	}
	amcID, ok := pathID(c, "amcID")
	if !ok {
		return
	}
	var req amcPatchReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}
	amc, err := h.Store.UpdateAmc(ledger.ID, amcID, req.Name, req.Notes)
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"amc": amc})
}

func (h *MutualFundHandler) DeleteAmc(c *gin.Context) {
	ledger, ok := resolveLedger(c, h.Store)
	if !ok {
		return
	}
	amcID, ok := pathID(c, "amcID")
	if !ok {
		return
	}
	if err := h.Store.DeleteAmc(ledger.ID, amcID); err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"message": "amc deleted"})
}

// ---------- funds ----------

type fundReq struct {
	Name  string `json:"name" binding:"required,max=100"`
	AmcID uint   `json:"amc_id" binding:"required"`
	Plan  string `json:"plan" binding:"max=50"`
	Notes string `json:"notes" binding:"max=500"`
}

type fundPatchReq struct {
	Name  *string `json:"name"`
	AmcID *uint   `json:"amc_id"`
	Plan  *string `json:"plan"`
	Notes *string `json:"notes"`
}

func (h *MutualFundHandler) CreateFund(c *gin.Context) {
	ledger, ok := resolveLedger(c, h.Store)
	if !ok {
		return
	}
	var req fundReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}
	fund, err := h.Store.CreateMutualFund(ledger.ID, store.MutualFundInput{
		Name:  req.Name,
		AmcID: req.AmcID,
		Plan:  req.Plan,
		Notes: req.Notes,
	})
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"mutual_fund": fund})
}

func (h *MutualFundHandler) ListFunds(c *gin.Context) {
	ledger, ok := resolveLedger(c, h.Store)
	if !ok {
		return
	}
	funds, err := h.Store.ListMutualFunds(ledger.ID)
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"mutual_funds": funds})
}

func (h *MutualFundHandler) GetFund(c *gin.Context) {
	ledger, ok := resolveLedger(c, h.Store)
	if !ok {
		return
	}
	fundID, ok := pathID(c, "fundID")
	if !ok {
		return
	}
	fund, err := h.Store.GetMutualFund(ledger.ID, fundID)
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"mutual_fund": fund})
}

func (h *MutualFundHandler) UpdateFund(c *gin.Context) {
	ledger, ok := resolveLedger(c, h.Store)
	if !ok {
		return
	}
	fundID, ok := pathID(c, "fundID")
	if !ok {
		return
	}
	var req fundPatchReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}
	fund, err := h.Store.UpdateMutualFund(ledger.ID, fundID, store.MutualFundPatch{
		Name:  req.Name,
		AmcID: req.AmcID,
		Plan:  req.Plan,
		Notes: req.Notes,
	})
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"mutual_fund": fund})
}

func (h *MutualFundHandler) DeleteFund(c *gin.Context) {
	ledger, ok := resolveLedger(c, h.Store)
	if !ok {
		return
	}
	fundID, ok := pathID(c, "fundID")
	if !ok {
		return
	}
	if err := h.Store.DeleteMutualFund(ledger.ID, fundID); err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"message": "mutual fund deleted"})
}

// ---------- NAV ----------

type navReq struct {
	Nav decimal.Decimal `json:"nav" binding:"required"`
}

type bulkNavReq struct {
	Updates []struct {
		FundID uint            `json:"fund_id" binding:"required"`
		Nav    decimal.Decimal `json:"nav" binding:"required"`
	} `json:"updates" binding:"required,min=1"`
}

func (h *MutualFundHandler) UpdateNav(c *gin.Context) {
	ledger, ok := resolveLedger(c, h.Store)
	if !ok {
		return
	}
	fundID, ok := pathID(c, "fundID")
	if !ok {
		return
	}
	var req navReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}
	fund, err := h.Store.UpdateNav(ledger.ID, fundID, req.Nav)
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"mutual_fund": fund})
}

func (h *MutualFundHandler) BulkUpdateNav(c *gin.Context) {
	ledger, ok := resolveLedger(c, h.Store)
	if !ok {
		return
	}
	var req bulkNavReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}
	updates := make([]store.NavUpdate, 0, len(req.Updates))
	for _, u := range req.Updates {
		updates = append(updates, store.NavUpdate{FundID: u.FundID, Nav: u.Nav})
	}
	if err := h.Store.BulkUpdateNav(ledger.ID, updates); err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"message": "nav updated"})
}

// ---------- fund transactions ----------

type mfTransactionReq struct {
	TransactionType        string          `json:"transaction_type" binding:"required"`
	Units                  decimal.Decimal `json:"units"`
	AmountExcludingCharges decimal.Decimal `json:"amount_excluding_charges"`
	OtherCharges           decimal.Decimal `json:"other_charges"`
	AccountID              uint            `json:"account_id" binding:"required"`
	ExpenseCategoryID      *uint           `json:"expense_category_id"`
	Date                   string          `json:"date" binding:"required"`
	Notes                  string          `json:"notes" binding:"max=500"`
}

type switchReq struct {
	SourceFundID uint            `json:"source_fund_id" binding:"required"`
	TargetFundID uint            `json:"target_fund_id" binding:"required"`
	Units        decimal.Decimal `json:"units"`
	SourceNav    decimal.Decimal `json:"source_nav"`
	TargetNav    decimal.Decimal `json:"target_nav"`
	Date         string          `json:"date" binding:"required"`
	Notes        string          `json:"notes" binding:"max=500"`
}

type notesPatchReq struct {
	Notes string `json:"notes" binding:"max=500"`
}

func (h *MutualFundHandler) CreateTransaction(c *gin.Context) {
	ledger, ok := resolveLedger(c, h.Store)
	if !ok {
		return
	}
	user := currentUser(c)
	fundID, ok := pathID(c, "fundID")
	if !ok {
		return
	}
	var req mfTransactionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}
	date, ok := parseDate(c, req.Date)
	if !ok {
		return
	}
	txn, err := h.Store.CreateMfTransaction(user.ID, ledger.ID, store.MfTransactionInput{
		FundID:                 fundID,
		TransactionType:        models.MfTransactionType(req.TransactionType),
		Units:                  req.Units,
		AmountExcludingCharges: req.AmountExcludingCharges,
		OtherCharges:           req.OtherCharges,
		AccountID:              req.AccountID,
		ExpenseCategoryID:      req.ExpenseCategoryID,
		Date:                   date,
		Notes:                  req.Notes,
	})
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"mf_transaction": txn})
}

func (h *MutualFundHandler) Switch(c *gin.Context) {
	ledger, ok := resolveLedger(c, h.Store)
	if !ok {
		return
	}
	var req switchReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}
	date, ok := parseDate(c, req.Date)
	if !ok {
		return
	}
	out, in, err := h.Store.SwitchFunds(ledger.ID, store.SwitchInput{
		SourceFundID: req.SourceFundID,
		TargetFundID: req.TargetFundID,
		Units:        req.Units,
		SourceNav:    req.SourceNav,
		TargetNav:    req.TargetNav,
		Date:         date,
		Notes:        req.Notes,
	})
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{
		"switch_out": out,
		"switch_in":  in,
	})
}

func (h *MutualFundHandler) ListTransactions(c *gin.Context) {
	ledger, ok := resolveLedger(c, h.Store)
	if !ok {
		return
	}
	fundID, ok := pathID(c, "fundID")
	if !ok {
		return
	}
	txns, err := h.Store.ListMfTransactions(ledger.ID, fundID)
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"mf_transactions": txns})
}

func (h *MutualFundHandler) ListLedgerTransactions(c *gin.Context) {
	ledger, ok := resolveLedger(c, h.Store)
	if !ok {
		return
	}
	txns, err := h.Store.ListLedgerMfTransactions(ledger.ID)
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"mf_transactions": txns})
}

func (h *MutualFundHandler) UpdateTransaction(c *gin.Context) {
	ledger, ok := resolveLedger(c, h.Store)
	if !ok {
		return
	}
	transactionID, ok := pathID(c, "transactionID")
	if !ok {
		return
	}
	var req notesPatchReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}
	txn, err := h.Store.UpdateMfTransaction(ledger.ID, transactionID, req.Notes)
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"mf_transaction": txn})
}

func (h *MutualFundHandler) DeleteTransaction(c *gin.Context) {
	ledger, ok := resolveLedger(c, h.Store)
	if !ok {
		return
	}
	user := currentUser(c)
	transactionID, ok := pathID(c, "transactionID")
	if !ok {
		return
	}
	if err := h.Store.DeleteMfTransaction(user.ID, ledger.ID, transactionID); err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"message": "mutual fund transaction deleted"})
}

func (h *MutualFundHandler) Xirr(c *gin.Context) {
	ledger, ok := resolveLedger(c, h.Store)
	if !ok {
		return
	}
	fundID, ok := pathID(c, "fundID")
	if !ok {
		return
	}
	rate, err := h.Store.FundXirr(ledger.ID, fundID, time.Now().UTC())
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"xirr": rate})
}
