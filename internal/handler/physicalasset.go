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

// PhysicalAssetHandler serves asset types, holdings, price updates and
// asset transactions within a ledger.
type PhysicalAssetHandler struct {
	Store *store.Store
}

func NewPhysicalAssetHandler(s *store.Store) *PhysicalAssetHandler {
	return &PhysicalAssetHandler{Store: s}
}

// ---------- asset types ----------

type assetTypeReq struct {
	Name        string `json:"name" binding:"required,max=100"`
	UnitName    string `json:"unit_name" binding:"required,max=50"`
	UnitSymbol  string `json:"unit_symbol" binding:"required,max=10"`
	Description string `json:"description" binding:"max=500"`
}

type assetTypePatchReq struct {
	Name        *string `json:"name"`
	UnitName    *string `json:"unit_name"`
	UnitSymbol  *string `json:"unit_symbol"`
	Description *string `json:"description"`
}

func (h *PhysicalAssetHandler) CreateAssetType(c *gin.Context) {
	ledger, ok := resolveLedger(c, h.Store)
	if !ok {
		return
	}
	var req assetTypeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}
	at, err := h.Store.CreateAssetType(ledger.ID, store.AssetTypeInput{
		Name:        req.Name,
		UnitName:    req.UnitName,
		UnitSymbol:  req.UnitSymbol,
		Description: req.Description,
	})
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"asset_type": at})
}

func (h *PhysicalAssetHandler) ListAssetTypes(c *gin.Context) {
	ledger, ok := resolveLedger(c, h.Store)
	if !ok {
		return
	}
	types, err := h.Store.ListAssetTypes(ledger.ID)
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"asset_types": types})
}

func (h *PhysicalAssetHandler) UpdateAssetType(c *gin.Context) {
	ledger, ok := resolveLedger(c, h.Store)
	if !ok {
		return
	}
	assetTypeID, ok := pathID(c, "assetTypeID")
	if !ok {
		return
	}
	var req assetTypePatchReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}
	at, err := h.Store.UpdateAssetType(ledger.ID, assetTypeID, store.AssetTypePatch{
		Name:        req.Name,
		UnitName:    req.UnitName,
		UnitSymbol:  req.UnitSymbol,
		Description: req.Description,
	})
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"asset_type": at})
}

func (h *PhysicalAssetHandler) DeleteAssetType(c *gin.Context) {
	ledger, ok := resolveLedger(c, h.Store)
	if !ok {
		return
	}
	assetTypeID, ok := pathID(c, "assetTypeID")
	if !ok {
		return
	}
	if err := h.Store.DeleteAssetType(ledger.ID, assetTypeID); err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"message": "asset type deleted"})
}

// ---------- holdings ----------

type physicalAssetReq struct {
	Name        string `json:"name" binding:"required,max=100"`
	AssetTypeID uint   `json:"asset_type_id" binding:"required"`
	Notes       string `json:"notes" binding:"max=500"`
}

type physicalAssetPatchReq struct {
	Name        *string `json:"name"`
	AssetTypeID *uint   `json:"asset_type_id"`
	Notes       *string `json:"notes"`
}

func (h *PhysicalAssetHandler) CreateAsset(c *gin.Context) {
	ledger, ok := resolveLedger(c, h.Store)
	if !ok {
		return
	}
	var req physicalAssetReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}
	asset, err := h.Store.CreatePhysicalAsset(ledger.ID, store.PhysicalAssetInput{
		Name:        req.Name,
		AssetTypeID: req.AssetTypeID,
		Notes:       req.Notes,
	})
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"physical_asset": asset})
}

func (h *PhysicalAssetHandler) ListAssets(c *gin.Context) {
	ledger, ok := resolveLedger(c, h.Store)
	if !ok {
		return
	}
	assets, err := h.Store.ListPhysicalAssets(ledger.ID)
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"physical_assets": assets})
}

func (h *PhysicalAssetHandler) GetAsset(c *gin.Context) {
	ledger, ok := resolveLedger(c, h.Store)
	if !ok {
		return
	}
	assetID, ok := pathID(c, "assetID")
	if !ok {
		return
	}
	asset, err := h.Store.GetPhysicalAsset(ledger.ID, assetID)
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"physical_asset": asset})
}

func (h *PhysicalAssetHandler) UpdateAsset(c *gin.Context) {
	ledger, ok := resolveLedger(c, h.Store)
	if !ok {
		return
	}
	assetID, ok := pathID(c, "assetID")
	if !ok {
		return
	}
	var req physicalAssetPatchReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}
	asset, err := h.Store.UpdatePhysicalAsset(ledger.ID, assetID, store.PhysicalAssetPatch{
		Name:        req.Name,
		AssetTypeID: req.AssetTypeID,
		Notes:       req.Notes,
	})
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"physical_asset": asset})
}

func (h *PhysicalAssetHandler) DeleteAsset(c *gin.Context) {
	ledger, ok := resolveLedger(c, h.Store)
	if !ok {
		return
	}
	assetID, ok := pathID(c, "assetID")
	if !ok {
		return
	}
	if err := h.Store.DeletePhysicalAsset(ledger.ID, assetID); err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"message": "physical asset deleted"})
}

// ---------- price ----------

type priceReq struct {
	Price decimal.Decimal `json:"price" binding:"required"`
}

func (h *PhysicalAssetHandler) UpdatePrice(c *gin.Context) {
	ledger, ok := resolveLedger(c, h.Store)
	if !ok {
		return
	}
	assetID, ok := pathID(c, "assetID")
	if !ok {
		return
	}
	var req priceReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}
	asset, err := h.Store.UpdatePhysicalAssetPrice(ledger.ID, assetID, req.Price)
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"physical_asset": asset})
}

// ---------- asset transactions ----------

type assetTransactionReq struct {
	TransactionType string          `json:"transaction_type" binding:"required"`
	Quantity        decimal.Decimal `json:"quantity"`
	PricePerUnit    decimal.Decimal `json:"price_per_unit"`
	AccountID       uint            `json:"account_id" binding:"required"`
	Date            string          `json:"date" binding:"required"`
	Notes           string          `json:"notes" binding:"max=500"`
}

func (h *PhysicalAssetHandler) CreateTransaction(c *gin.Context) {
	ledger, ok := resolveLedger(c, h.Store)
	if !ok {
		return
	}
	user := currentUser(c)
	assetID, ok := pathID(c, "assetID")
	if !ok {
		return
	}
	var req assetTransactionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}
	date, ok := parseDate(c, req.Date)
	if !ok {
		return
	}
	txn, err := h.Store.CreateAssetTransaction(user.ID, ledger.ID, store.AssetTransactionInput{
		AssetID:         assetID,
		TransactionType: models.AssetTransactionType(req.TransactionType),
		Quantity:        req.Quantity,
		PricePerUnit:    req.PricePerUnit,
		AccountID:       req.AccountID,
		Date:            date,
		Notes:           req.Notes,
	})
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"asset_transaction": txn})
}

func (h *PhysicalAssetHandler) ListTransactions(c *gin.Context) {
	ledger, ok := resolveLedger(c, h.Store)
	if !ok {
		return
	}
	assetID, ok := pathID(c, "assetID")
	if !ok {
		return
	}
	txns, err := h.Store.ListAssetTransactions(ledger.ID, assetID)
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"asset_transactions": txns})
}

func (h *PhysicalAssetHandler) ListLedgerTransactions(c *gin.Context) {
	ledger, ok := resolveLedger(c, h.Store)
	if !ok {
		return
	}
	txns, err := h.Store.ListLedgerAssetTransactions(ledger.ID)
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"asset_transactions": txns})
}

func (h *PhysicalAssetHandler) UpdateTransaction(c *gin.Context) {
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
	txn, err := h.Store.UpdateAssetTransaction(ledger.ID, transactionID, req.Notes)
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"asset_transaction": txn})
}

func (h *PhysicalAssetHandler) DeleteTransaction(c *gin.Context) {
	ledger, ok := resolveLedger(c, h.Store)
	if !ok {
		return
	}
	user := currentUser(c)
	transactionID, ok := pathID(c, "transactionID")
	if !ok {
		return
	}
	if err := h.Store.DeleteAssetTransaction(user.ID, ledger.ID, transactionID); err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"message": "asset transaction deleted"})
}

func (h *PhysicalAssetHandler) Xirr(c *gin.Context) {
	ledger, ok := resolveLedger(c, h.Store)
	if !ok {
		return
	}
	assetID, ok := pathID(c, "assetID")
	if !ok {
		return
	}
	rate, err := h.Store.AssetXirr(ledger.ID, assetID, time.Now().UTC())
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"xirr": rate})
}
