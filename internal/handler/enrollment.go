package handler

import (
	"errors"
	"log"
	"net/http"
	"time"

	"skillforge/internal/middleware"
	"skillforge/internal/models"
	"skillforge/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// EnrollmentHandler tracks course enrollments and progress.
type EnrollmentHandler struct {
	DB *gorm.DB
}

func NewEnrollmentHandler(db *gorm.DB) *EnrollmentHandler {
	return &EnrollmentHandler{DB: db}
}

// Enroll enrolls the current user in a course. Enrolling twice in the
// same course is rejected.
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	user := middleware.CurrentUser(c)
	courseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	ctx := c.Request.Context()

	var course models.Course
	err := h.DB.WithContext(ctx).First(&course, courseID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "course not found")
		return
	}
	if err != nil {
		log.Printf("get course: %v", err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "internal error")
		return
	}

	var count int64
	if err := h.DB.WithContext(ctx).Model(&models.CourseEnrollment{}).
		Where("user_id = ? AND course_id = ?", user.ID, courseID).
		Count(&count).Error; err != nil {
		log.Printf("check enrollment: %v", err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "internal error")
		return
	}
	if count > 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "already enrolled")
		return
	}

	enrollment := models.CourseEnrollment{
		UserID:   user.ID,
		CourseID: courseID,
	}
	if err := h.DB.WithContext(ctx).Create(&enrollment).Error; err != nil {
		log.Printf("create enrollment: %v", err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "enroll failed")
		return
	}
	util.Success(c, util.Response{"enrollment": enrollment})
}

type enrollmentView struct {
	models.CourseEnrollment
	CourseTitle string `json:"course_title"`
}

// Mine lists the current user's enrollments with course titles.
func (h *EnrollmentHandler) Mine(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var enrollments []models.CourseEnrollment
	if err := h.DB.WithContext(c.Request.Context()).
		Where("user_id = ?", user.ID).
		Order("created_at").
		Find(&enrollments).Error; err != nil {
		log.Printf("list enrollments: %v", err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "internal error")
		return
	}

	views := make([]enrollmentView, 0, len(enrollments))
	for _, e := range enrollments {
		var course models.Course
		title := ""
		if err := h.DB.WithContext(c.Request.Context()).
			Select("title").First(&course, e.CourseID).Error; err == nil {
			title = course.Title
		}
		views = append(views, enrollmentView{CourseEnrollment: e, CourseTitle: title})
	}

	util.Success(c, util.Response{"enrollments": views})
}

type progressReq struct {
	Progress *int `json:"progress" binding:"required"`
}

// UpdateProgress sets the progress percentage on the caller's own
// enrollment. Reaching 100 marks the course completed.
func (h *EnrollmentHandler) UpdateProgress(c *gin.Context) {
	user := middleware.CurrentUser(c)
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req progressReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "progress is required")
		return
	}
	if *req.Progress < 0 || *req.Progress > 100 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "progress must be between 0 and 100")
		return
	}

	ctx := c.Request.Context()

	var enrollment models.CourseEnrollment
	err := h.DB.WithContext(ctx).First(&enrollment, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "enrollment not found")
		return
	}
	if err != nil {
		log.Printf("get enrollment: %v", err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "internal error")
		return
	}
	if enrollment.UserID != user.ID {
		util.Error(c, http.StatusForbidden, util.CodeForbidden, "not your enrollment")
		return
	}

	enrollment.Progress = *req.Progress
	if *req.Progress == 100 && enrollment.CompletedAt == nil {
		now := time.Now()
		enrollment.CompletedAt = &now
	}

	if err := h.DB.WithContext(ctx).Save(&enrollment).Error; err != nil {
		log.Printf("update enrollment: %v", err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "update failed")
		return
	}
	util.Success(c, util.Response{"enrollment": enrollment})
}
