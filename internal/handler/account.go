package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/justmeandopensource/cashio-api/internal/models"
	"github.com/justmeandopensource/cashio-api/internal/store"
	"github.com/justmeandopensource/cashio-api/internal/util"
)

// AccountHandler serves account CRUD within a ledger.
type AccountHandler struct {
	Store *store.Store
}

func NewAccountHandler(s *store.Store) *AccountHandler {
	return &AccountHandler{Store: s}
}

type accountReq struct {
	Name            string          `json:"name" binding:"required,max=100"`
	Description     string          `json:"description" binding:"max=500"`
	Type            string          `json:"type" binding:"required"`
	IsGroup         bool            `json:"is_group"`
	OpeningBalance  decimal.Decimal `json:"opening_balance"`
	ParentAccountID *uint           `json:"parent_account_id"`
	Notes           string          `json:"notes" binding:"max=500"`
}

type accountPatchReq struct {
	Name            *string          `json:"name"`
	Description     *string          `json:"description"`
	OpeningBalance  *decimal.Decimal `json:"opening_balance"`
	ParentAccountID *uint            `json:"parent_account_id"`
	Notes           *string          `json:"notes"`
}

func (h *AccountHandler) Create(c *gin.Context) {
	ledger, ok := resolveLedger(c, h.Store)
	if !ok {
		return
	}
	var req accountReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}
	account, err := h.Store.CreateAccount(ledger.ID, store.AccountInput{
		Name:            req.Name,
		Description:     req.Description,
		Type:            models.AccountType(req.Type),
		IsGroup:         req.IsGroup,
		OpeningBalance:  req.OpeningBalance,
		ParentAccountID: req.ParentAccountID,
		Notes:           req.Notes,
	})
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"account": account})
}

func (h *AccountHandler) List(c *gin.Context) {
	ledger, ok := resolveLedger(c, h.Store)
	if !ok {
		return
	}
	accountType := models.AccountType(c.Query("type"))
	ignoreGroup := c.Query("ignore_group") == "true"
	accounts, err := h.Store.ListAccounts(ledger.ID, accountType, ignoreGroup)
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"accounts": accounts})
}

func (h *AccountHandler) Get(c *gin.Context) {
	ledger, ok := resolveLedger(c, h.Store)
	if !ok {
		return
	}
	accountID, ok := pathID(c, "accountID")
	if !ok {
		return
	}
	account, err := h.Store.GetAccount(ledger.ID, accountID)
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"account": account})
}

func (h *AccountHandler) Update(c *gin.Context) {
	ledger, ok := resolveLedger(c, h.Store)
	if !ok {
		return
	}
	accountID, ok := pathID(c, "accountID")
	if !ok {
		return
	}
	var req accountPatchReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}
	account, err := h.Store.UpdateAccount(ledger.ID, accountID, store.AccountPatch{
		Name:            req.Name,
		Description:     req.Description,
		OpeningBalance:  req.OpeningBalance,
		ParentAccountID: req.ParentAccountID,
		Notes:           req.Notes,
	})
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"account": account})
}
