package handler

import (
	"encoding/csv"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"skillforge/internal/models"
	"skillforge/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ExportHandler exports the user roster. Mounted behind the admin gate.
type ExportHandler struct {
	DB *gorm.DB
}

func NewExportHandler(db *gorm.DB) *ExportHandler {
	return &ExportHandler{DB: db}
}

var exportHeader = []string{"ID", "Name", "Email", "Role", "Registered"}

func (h *ExportHandler) loadUsers(c *gin.Context) ([]models.User, bool) {
	var users []models.User
	if err := h.DB.WithContext(c.Request.Context()).
		Order("id").Find(&users).Error; err != nil {
		log.Printf("list users: %v", err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "internal error")
		return nil, false
	}
	return users, true
}

func exportRow(u models.User) []string {
	return []string{
		strconv.FormatUint(uint64(u.ID), 10),
		u.Name,
		u.Email,
		u.Role,
		u.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// UsersCSV streams the user roster as CSV.
func (h *ExportHandler) UsersCSV(c *gin.Context) {
	users, ok := h.loadUsers(c)
	if !ok {
		return
	}

	filename := fmt.Sprintf("users-%s.csv", time.Now().Format("20060102"))
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)

	w := csv.NewWriter(c.Writer)
	_ = w.Write(exportHeader)
	for _, u := range users {
		_ = w.Write(exportRow(u))
	}
	w.Flush()
}

// UsersXLSX streams the user roster as an xlsx workbook.
func (h *ExportHandler) UsersXLSX(c *gin.Context) {
	users, ok := h.loadUsers(c)
	if !ok {
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Users"
	f.SetSheetName("Sheet1", sheet)

	for i, col := range exportHeader {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, col)
	}
	for rowIdx, u := range users {
		for colIdx, v := range exportRow(u) {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(sheet, cell, v)
		}
	}

	filename := fmt.Sprintf("users-%s.xlsx", time.Now().Format("20060102"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Status(http.StatusOK)

	if err := f.Write(c.Writer); err != nil {
		log.Printf("write xlsx: %v", err)
	}
}
