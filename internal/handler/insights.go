package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/justmeandopensource/cashio-api/internal/store"
	"github.com/justmeandopensource/cashio-api/internal/util"
)

// InsightsHandler serves aggregate reports over a ledger's activity.
type InsightsHandler struct {
	Store *store.Store
}

func NewInsightsHandler(s *store.Store) *InsightsHandler {
	return &InsightsHandler{Store: s}
}

func queryPeriod(c *gin.Context) store.PeriodType {
	return store.PeriodType(c.DefaultQuery("period_type", string(store.PeriodLast12Months)))
}

func (h *InsightsHandler) IncomeExpenseTrend(c *gin.Context) {
	ledger, ok := resolveLedger(c, h.Store)
	if !ok {
		return
	}
	user := currentUser(c)
	trend, err := h.Store.IncomeExpenseTrend(user.ID, ledger.ID, queryPeriod(c), time.Now().UTC())
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"trend": trend})
}

func (h *InsightsHandler) CurrentMonthOverview(c *gin.Context) {
	ledger, ok := resolveLedger(c, h.Store)
	if !ok {
		return
	}
	user := currentUser(c)
	overview, err := h.Store.CurrentMonthOverview(user.ID, ledger.ID, time.Now().UTC())
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"overview": overview})
}

func (h *InsightsHandler) CategoryTrend(c *gin.Context) {
	ledger, ok := resolveLedger(c, h.Store)
	if !ok {
		return
	}
	categoryID, err := strconv.ParseUint(c.Query("category_id"), 10, 64)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid category_id")
		return
	}
	user := currentUser(c)
	trend, err := h.Store.CategoryTrend(user.ID, ledger.ID, uint(categoryID), queryPeriod(c), time.Now().UTC())
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"trend": trend})
}

func (h *InsightsHandler) TagTrend(c *gin.Context) {
	ledger, ok := resolveLedger(c, h.Store)
	if !ok {
		return
	}
	tagNames := c.QueryArray("tag_names")
	if len(tagNames) == 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "tag_names is required")
		return
	}
	user := currentUser(c)
	trend, err := h.Store.TagTrend(user.ID, ledger.ID, tagNames)
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"trend": trend})
}

func (h *InsightsHandler) ExpenseCalendar(c *gin.Context) {
	ledger, ok := resolveLedger(c, h.Store)
	if !ok {
		return
	}
	year, err := strconv.Atoi(c.Query("year"))
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid year")
		return
	}
	user := currentUser(c)
	calendar, err := h.Store.ExpenseCalendar(user.ID, ledger.ID, year)
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"calendar": calendar})
}
