package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/justmeandopensource/cashio-api/internal/models"
	"github.com/justmeandopensource/cashio-api/internal/store"
	"github.com/justmeandopensource/cashio-api/internal/util"
)

// TransactionHandler serves transactions, splits and transfers within a
// ledger.
type TransactionHandler struct {
	Store    *store.Store
	PageSize int
}

func NewTransactionHandler(s *store.Store, pageSize int) *TransactionHandler {
	if pageSize <= 0 {
		pageSize = 50
	}
	return &TransactionHandler{Store: s, PageSize: pageSize}
}

const dateLayout = "2006-01-02"

// parseDate parses a yyyy-mm-dd date, writing the error response itself
// on failure.
func parseDate(c *gin.Context, value string) (time.Time, bool) {
	d, err := time.Parse(dateLayout, value)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid date, expected yyyy-mm-dd")
		return time.Time{}, false
	}
	return d, true
}

type splitReq struct {
	CategoryID uint            `json:"category_id" binding:"required"`
	Credit     decimal.Decimal `json:"credit"`
	Debit      decimal.Decimal `json:"debit"`
	Notes      string          `json:"notes" binding:"max=500"`
}

type transactionReq struct {
	AccountID  uint            `json:"account_id" binding:"required"`
	CategoryID *uint           `json:"category_id"`
	Type       string          `json:"type" binding:"required"`
	Credit     decimal.Decimal `json:"credit"`
	Debit      decimal.Decimal `json:"debit"`
	Date       string          `json:"date" binding:"required"`
	Notes      string          `json:"notes" binding:"max=500"`
	IsSplit    bool            `json:"is_split"`
	Splits     []splitReq      `json:"splits"`
	Tags       []string        `json:"tags"`
}

type transactionPatchReq struct {
	CategoryID *uint            `json:"category_id"`
	Credit     *decimal.Decimal `json:"credit"`
	Debit      *decimal.Decimal `json:"debit"`
	Date       *string          `json:"date"`
	Notes      *string          `json:"notes"`
	Splits     *[]splitReq      `json:"splits"`
	Tags       *[]string        `json:"tags"`
}

type transferReq struct {
	SourceAccountID      uint             `json:"source_account_id" binding:"required"`
	DestinationAccountID uint             `json:"destination_account_id" binding:"required"`
	SourceAmount         decimal.Decimal  `json:"source_amount"`
	DestinationAmount    *decimal.Decimal `json:"destination_amount"`
	Date                 string           `json:"date" binding:"required"`
	Notes                string           `json:"notes" binding:"max=500"`
	Tags                 []string         `json:"tags"`
}

func toSplitInputs(reqs []splitReq) []store.SplitInput {
	splits := make([]store.SplitInput, 0, len(reqs))
	for _, sp := range reqs {
		splits = append(splits, store.SplitInput{
			CategoryID: sp.CategoryID,
			Credit:     sp.Credit,
			Debit:      sp.Debit,
			Notes:      sp.Notes,
		})
	}
	return splits
}

func (h *TransactionHandler) Create(c *gin.Context) {
	ledger, ok := resolveLedger(c, h.Store)
	if !ok {
		return
	}
	user := currentUser(c)
	var req transactionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}
	date, ok := parseDate(c, req.Date)
	if !ok {
		return
	}

	// the target account must be in the URL's ledger
	if _, err := h.Store.GetAccount(ledger.ID, req.AccountID); err != nil {
		fail(c, err)
		return
	}

	txn, err := h.Store.CreateTransaction(user.ID, store.TransactionInput{
		AccountID:  req.AccountID,
		CategoryID: req.CategoryID,
		Type:       models.CategoryType(req.Type),
		Credit:     req.Credit,
		Debit:      req.Debit,
		Date:       date,
		Notes:      req.Notes,
		IsSplit:    req.IsSplit,
		Splits:     toSplitInputs(req.Splits),
		Tags:       req.Tags,
	})
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"transaction": txn})
}

func (h *TransactionHandler) CreateTransfer(c *gin.Context) {
	if _, ok := resolveLedger(c, h.Store); !ok {
		return
	}
	user := currentUser(c)
	var req transferReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}
	date, ok := parseDate(c, req.Date)
	if !ok {
		return
	}
	source, destination, err := h.Store.CreateTransfer(user.ID, store.TransferInput{
		SourceAccountID:      req.SourceAccountID,
		DestinationAccountID: req.DestinationAccountID,
		SourceAmount:         req.SourceAmount,
		DestinationAmount:    req.DestinationAmount,
		Date:                 date,
		Notes:                req.Notes,
		Tags:                 req.Tags,
	})
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{
		"source_transaction":      source,
		"destination_transaction": destination,
	})
}

func (h *TransactionHandler) List(c *gin.Context) {
	ledger, ok := resolveLedger(c, h.Store)
	if !ok {
		return
	}

	f := store.TransactionFilter{
		SearchText: strings.TrimSpace(c.Query("search")),
		Type:       c.Query("type"),
		Limit:      h.PageSize,
	}
	if v := c.Query("account_id"); v != "" {
		if id, err := strconv.ParseUint(v, 10, 64); err == nil {
			accountID := uint(id)
			f.AccountID = &accountID
		}
	}
	if v := c.Query("category_id"); v != "" {
		if id, err := strconv.ParseUint(v, 10, 64); err == nil {
			categoryID := uint(id)
			f.CategoryID = &categoryID
		}
	}
	if v := c.Query("from_date"); v != "" {
		d, ok := parseDate(c, v)
		if !ok {
			return
		}
		f.FromDate = &d
	}
	if v := c.Query("to_date"); v != "" {
		d, ok := parseDate(c, v)
		if !ok {
			return
		}
		f.ToDate = &d
	}
	if v := c.Query("tags"); v != "" {
		for _, tag := range strings.Split(v, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				f.Tags = append(f.Tags, tag)
			}
		}
		f.TagsMatchAll = c.Query("tags_match") == "all"
	}
	if v := c.Query("page"); v != "" {
		if page, err := strconv.Atoi(v); err == nil && page > 1 {
			f.Offset = (page - 1) * h.PageSize
		}
	}

	txns, err := h.Store.ListTransactions(ledger.ID, f)
	if err != nil {
		fail(c, err)
		return
	}
	total, err := h.Store.CountTransactions(ledger.ID, f)
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{
		"transactions": txns,
		"total":        total,
		"page_size":    h.PageSize,
	})
}

func (h *TransactionHandler) GetSplits(c *gin.Context) {
	if _, ok := resolveLedger(c, h.Store); !ok {
		return
	}
	transactionID, ok := pathID(c, "transactionID")
	if !ok {
		return
	}
	splits, err := h.Store.GetSplits(transactionID)
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"splits": splits})
}

func (h *TransactionHandler) GetTransferPair(c *gin.Context) {
	if _, ok := resolveLedger(c, h.Store); !ok {
		return
	}
	source, destination, err := h.Store.GetTransferPair(c.Param("transferID"))
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{
		"source_transaction":      source,
		"destination_transaction": destination,
	})
}

func (h *TransactionHandler) Update(c *gin.Context) {
	if _, ok := resolveLedger(c, h.Store); !ok {
		return
	}
	user := currentUser(c)
	transactionID, ok := pathID(c, "transactionID")
	if !ok {
		return
	}
	var req transactionPatchReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}

	patch := store.TransactionPatch{
		CategoryID: req.CategoryID,
		Credit:     req.Credit,
		Debit:      req.Debit,
		Notes:      req.Notes,
		Tags:       req.Tags,
	}
	if req.Date != nil {
		d, ok := parseDate(c, *req.Date)
		if !ok {
			return
		}
		patch.Date = &d
	}
	if req.Splits != nil {
		splits := toSplitInputs(*req.Splits)
		patch.Splits = &splits
	}

	txn, err := h.Store.UpdateTransaction(user.ID, transactionID, patch)
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"transaction": txn})
}

func (h *TransactionHandler) Delete(c *gin.Context) {
	if _, ok := resolveLedger(c, h.Store); !ok {
		return
	}
	user := currentUser(c)
	transactionID, ok := pathID(c, "transactionID")
	if !ok {
		return
	}
	if err := h.Store.DeleteTransaction(user.ID, transactionID); err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"message": "transaction deleted"})
}
