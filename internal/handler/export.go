package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/justmeandopensource/cashio-api/internal/models"
	"github.com/justmeandopensource/cashio-api/internal/store"
	"github.com/justmeandopensource/cashio-api/internal/util"
)

// ExportHandler serves ledger transaction downloads as CSV or XLSX.
type ExportHandler struct {
	Store *store.Store
}

func NewExportHandler(s *store.Store) *ExportHandler {
	return &ExportHandler{Store: s}
}

var exportHeaders = []string{"Date", "Account", "Type", "Category", "Credit", "Debit", "Notes", "Tags"}

// exportRows fetches all of a ledger's transactions, oldest first, and
// flattens them to export rows.
func (h *ExportHandler) exportRows(ledgerID uint) ([][]string, error) {
	txns, err := h.Store.ListTransactions(ledgerID, store.TransactionFilter{Limit: -1})
	if err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(txns))
	// newest first from the store; reverse for chronological export
	for i := len(txns) - 1; i >= 0; i-- {
		t := txns[i]
		rows = append(rows, exportRow(&t))
	}
	return rows, nil
}

func exportRow(t *models.Transaction) []string {
	txType := "expense"
	if t.Credit.Sign() > 0 {
		txType = "income"
	}
	if t.IsTransfer {
		txType = "transfer"
	}

	category := ""
	if t.Category != nil {
		category = t.Category.Name
	}
	if t.IsSplit {
		category = "split"
	}

	tags := ""
	for i, tag := range t.Tags {
		if i > 0 {
			tags += ","
		}
		tags += tag.Name
	}

	return []string{
		t.Date.Format("2006-01-02"),
		t.Account.Name,
		txType,
		category,
		t.Credit.StringFixed(2),
		t.Debit.StringFixed(2),
		t.Notes,
		tags,
	}
}

// ExportCSV streams the ledger's transactions as CSV.
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	ledger, ok := resolveLedger(c, h.Store)
	if !ok {
		return
	}
	rows, err := h.exportRows(ledger.ID)
	if err != nil {
		fail(c, err)
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"transactions_%s.csv\"",
		time.Now().Format("20060102")))

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	_ = writer.Write(exportHeaders)
	for _, row := range rows {
		_ = writer.Write(row)
	}
}

// ExportXLSX streams the ledger's transactions as an XLSX workbook.
func (h *ExportHandler) ExportXLSX(c *gin.Context) {
	ledger, ok := resolveLedger(c, h.Store)
	if !ok {
		return
	}
	rows, err := h.exportRows(ledger.ID)
	if err != nil {
		fail(c, err)
		return
	}

	f := excelize.NewFile()
	sheetName := "Transactions"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to create sheet")
		return
	}
	f.SetActiveSheet(index)

	for i, header := range exportHeaders {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}
	for idx, row := range rows {
		for i, value := range row {
			cell := fmt.Sprintf("%c%d", 'A'+i, idx+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	f.SetColWidth(sheetName, "A", "A", 12)
	f.SetColWidth(sheetName, "B", "B", 20)
	f.SetColWidth(sheetName, "C", "D", 14)
	f.SetColWidth(sheetName, "E", "F", 12)
	f.SetColWidth(sheetName, "G", "G", 40)
	f.SetColWidth(sheetName, "H", "H", 20)

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"transactions_%s.xlsx\"",
		time.Now().Format("20060102")))

	if err := f.Write(c.Writer); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to write workbook")
	}
}
