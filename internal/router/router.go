package router

import (
	"github.com/justmeandopensource/cashio-api/internal/config"
	"github.com/justmeandopensource/cashio-api/internal/handler"
	"github.com/justmeandopensource/cashio-api/internal/middleware"
	"github.com/justmeandopensource/cashio-api/internal/store"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRouter configures the Gin engine and wires all API routes.
func SetupRouter(cfg *config.Config, db *gorm.DB) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	s := store.New(db)

	api := r.Group("/api")

	jwtSecret := cfg.JWT.Secret
	authHandler := handler.NewAuthHandler(db, jwtSecret, cfg.JWT.ExpireHours, cfg.Security.BcryptCost)
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)

	protected := api.Group("")
	protected.Use(
		middleware.AuthMiddleware(jwtSecret, db),
		middleware.AuditMiddleware(db),
	)

	protected.GET("/me", handler.GetMe)
	protected.POST("/profile/password", handler.ChangePassword(db, cfg.Security.BcryptCost))

	ledgerHandler := handler.NewLedgerHandler(s)
	protected.POST("/ledgers", ledgerHandler.Create)
	protected.GET("/ledgers", ledgerHandler.List)
	protected.GET("/ledgers/:ledgerID", ledgerHandler.Get)
	protected.PUT("/ledgers/:ledgerID", ledgerHandler.Update)

	categoryHandler := handler.NewCategoryHandler(s)
	protected.POST("/categories", categoryHandler.Create)
	protected.GET("/categories", categoryHandler.List)

	tagHandler := handler.NewTagHandler(s)
	protected.GET("/tags", tagHandler.List)

	accountHandler := handler.NewAccountHandler(s)
	protected.POST("/ledgers/:ledgerID/accounts", accountHandler.Create)
	protected.GET("/ledgers/:ledgerID/accounts", accountHandler.List)
	protected.GET("/ledgers/:ledgerID/accounts/:accountID", accountHandler.Get)
	protected.PUT("/ledgers/:ledgerID/accounts/:accountID", accountHandler.Update)

	transactionHandler := handler.NewTransactionHandler(s, cfg.App.PageSize)
	protected.POST("/ledgers/:ledgerID/transactions", transactionHandler.Create)
	protected.POST("/ledgers/:ledgerID/transactions/transfer", transactionHandler.CreateTransfer)
	protected.GET("/ledgers/:ledgerID/transactions", transactionHandler.List)
	protected.GET("/ledgers/:ledgerID/transactions/:transactionID/splits", transactionHandler.GetSplits)
	protected.GET("/ledgers/:ledgerID/transfers/:transferID", transactionHandler.GetTransferPair)
	protected.PUT("/ledgers/:ledgerID/transactions/:transactionID", transactionHandler.Update)
	protected.DELETE("/ledgers/:ledgerID/transactions/:transactionID", transactionHandler.Delete)

	mfHandler := handler.NewMutualFundHandler(s)
	protected.POST("/ledgers/:ledgerID/amcs", mfHandler.CreateAmc)
	protected.GET("/ledgers/:ledgerID/amcs", mfHandler.ListAmcs)
	protected.PUT("/ledgers/:ledgerID/amcs/:amcID", mfHandler.UpdateAmc)
	protected.DELETE("/ledgers/:ledgerID/amcs/:amcID", mfHandler.DeleteAmc)
	protected.POST("/ledgers/:ledgerID/mutual-funds", mfHandler.CreateFund)
	protected.GET("/ledgers/:ledgerID/mutual-funds", mfHandler.ListFunds)
	protected.GET("/ledgers/:ledgerID/mutual-funds/:fundID", mfHandler.GetFund)
	protected.PUT("/ledgers/:ledgerID/mutual-funds/:fundID", mfHandler.UpdateFund)
	protected.DELETE("/ledgers/:ledgerID/mutual-funds/:fundID", mfHandler.DeleteFund)
	protected.PUT("/ledgers/:ledgerID/mutual-funds/:fundID/nav", mfHandler.UpdateNav)
	protected.PUT("/ledgers/:ledgerID/mutual-funds/nav", mfHandler.BulkUpdateNav)
	protected.POST("/ledgers/:ledgerID/mutual-funds/:fundID/transactions", mfHandler.CreateTransaction)
	protected.GET("/ledgers/:ledgerID/mutual-funds/:fundID/transactions", mfHandler.ListTransactions)
	protected.GET("/ledgers/:ledgerID/mutual-funds/:fundID/xirr", mfHandler.Xirr)
	protected.POST("/ledgers/:ledgerID/mutual-funds/switch", mfHandler.Switch)
	protected.GET("/ledgers/:ledgerID/mf-transactions", mfHandler.ListLedgerTransactions)
	protected.PUT("/ledgers/:ledgerID/mf-transactions/:transactionID", mfHandler.UpdateTransaction)
	protected.DELETE("/ledgers/:ledgerID/mf-transactions/:transactionID", mfHandler.DeleteTransaction)

	assetHandler := handler.NewPhysicalAssetHandler(s)
	protected.POST("/ledgers/:ledgerID/asset-types", assetHandler.CreateAssetType)
	protected.GET("/ledgers/:ledgerID/asset-types", assetHandler.ListAssetTypes)
	protected.PUT("/ledgers/:ledgerID/asset-types/:assetTypeID", assetHandler.UpdateAssetType)
	protected.DELETE("/ledgers/:ledgerID/asset-types/:assetTypeID", assetHandler.DeleteAssetType)
	protected.POST("/ledgers/:ledgerID/physical-assets", assetHandler.CreateAsset)
	protected.GET("/ledgers/:ledgerID/physical-assets", assetHandler.ListAssets)
	protected.GET("/ledgers/:ledgerID/physical-assets/:assetID", assetHandler.GetAsset)
	protected.PUT("/ledgers/:ledgerID/physical-assets/:assetID", assetHandler.UpdateAsset)
	protected.DELETE("/ledgers/:ledgerID/physical-assets/:assetID", assetHandler.DeleteAsset)
	protected.PUT("/ledgers/:ledgerID/physical-assets/:assetID/price", assetHandler.UpdatePrice)
	protected.POST("/ledgers/:ledgerID/physical-assets/:assetID/transactions", assetHandler.CreateTransaction)
	protected.GET("/ledgers/:ledgerID/physical-assets/:assetID/transactions", assetHandler.ListTransactions)
	protected.GET("/ledgers/:ledgerID/physical-assets/:assetID/xirr", assetHandler.Xirr)
	protected.GET("/ledgers/:ledgerID/asset-transactions", assetHandler.ListLedgerTransactions)
	protected.PUT("/ledgers/:ledgerID/asset-transactions/:transactionID", assetHandler.UpdateTransaction)
	protected.DELETE("/ledgers/:ledgerID/asset-transactions/:transactionID", assetHandler.DeleteTransaction)

	insightsHandler := handler.NewInsightsHandler(s)
	protected.GET("/ledgers/:ledgerID/insights/income-expense-trend", insightsHandler.IncomeExpenseTrend)
	protected.GET("/ledgers/:ledgerID/insights/current-month-overview", insightsHandler.CurrentMonthOverview)
	protected.GET("/ledgers/:ledgerID/insights/category-trend", insightsHandler.CategoryTrend)
	protected.GET("/ledgers/:ledgerID/insights/tag-trend", insightsHandler.TagTrend)
	protected.GET("/ledgers/:ledgerID/insights/expense-calendar", insightsHandler.ExpenseCalendar)

	exportHandler := handler.NewExportHandler(s)
	protected.GET("/ledgers/:ledgerID/export/csv", exportHandler.ExportCSV)
	protected.GET("/ledgers/:ledgerID/export/xlsx", exportHandler.ExportXLSX)

	return r
}
