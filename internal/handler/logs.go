package handler

import (
	"log"
	"net/http"
	"strconv"

	"skillforge/internal/models"
	"skillforge/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// LogHandler serves the activity log. Mounted behind the admin gate.
type LogHandler struct {
	DB       *gorm.DB
	PageSize int
}

func NewLogHandler(db *gorm.DB, pageSize int) *LogHandler {
	if pageSize <= 0 {
		pageSize = 20
	}
	return &LogHandler{DB: db, PageSize: pageSize}
}

// List returns activity log entries, newest first, paginated with
// ?page=N.
func (h *LogHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}

	ctx := c.Request.Context()

	var total int64
	if err := h.DB.WithContext(ctx).Model(&models.ActivityLog{}).Count(&total).Error; err != nil {
		log.Printf("count logs: %v", err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "internal error")
		return
	}

	var entries []models.ActivityLog
	if err := h.DB.WithContext(ctx).
		Order("created_at DESC").
		Limit(h.PageSize).
		Offset((page - 1) * h.PageSize).
		Find(&entries).Error; err != nil {
		log.Printf("list logs: %v", err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "internal error")
		return
	}

	util.Success(c, util.Response{
		"logs":      entries,
		"total":     total,
		"page":      page,
		"page_size": h.PageSize,
	})
}
