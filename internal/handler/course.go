package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"skillforge/internal/models"
	"skillforge/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CourseHandler serves the course catalog. Reads are public; writes are
// mounted behind the admin gate.
type CourseHandler struct {
	DB *gorm.DB
}

func NewCourseHandler(db *gorm.DB) *CourseHandler {
	return &CourseHandler{DB: db}
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid id")
		return 0, false
	}
	return uint(id), true
}

// fillModuleIDs assigns uuids to modules/lessons created without one.
func fillModuleIDs(modules []models.CourseModule) {
	for i := range modules {
		if modules[i].ID == "" {
			modules[i].ID = uuid.NewString()
		}
		for j := range modules[i].Lessons {
			if modules[i].Lessons[j].ID == "" {
				modules[i].Lessons[j].ID = uuid.NewString()
			}
		}
	}
}

// List returns all courses, oldest first.
func (h *CourseHandler) List(c *gin.Context) {
	var courses []models.Course
	if err := h.DB.WithContext(c.Request.Context()).
		Order("created_at").Find(&courses).Error; err != nil {
		log.Printf("list courses: %v", err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "internal error")
		return
	}
	util.Success(c, util.Response{"courses": courses})
}

// Get returns a single course.
func (h *CourseHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var course models.Course
	err := h.DB.WithContext(c.Request.Context()).First(&course, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "course not found")
		return
	}
	if err != nil {
		log.Printf("get course: %v", err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "internal error")
		return
	}
	util.Success(c, util.Response{"course": course})
}

type courseReq struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Level       string                `json:"level"`
	Duration    string                `json:"duration"`
	Instructor  string                `json:"instructor"`
	Thumbnail   string                `json:"thumbnail"`
	Modules     []models.CourseModule `json:"modules"`
}

// Create adds a course (admin only).
func (h *CourseHandler) Create(c *gin.Context) {
	var req courseReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request")
		return
	}
	if err := util.ValidateTitle(req.Title); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}
	if req.Description == "" {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "description is required")
		return
	}
	if !models.ValidLevel(req.Level) {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "level must be beginner, intermediate or advanced")
		return
	}

	fillModuleIDs(req.Modules)
	if req.Modules == nil {
		req.Modules = []models.CourseModule{}
	}

	course := models.Course{
		Title:       req.Title,
		Description: req.Description,
		Level:       req.Level,
		Duration:    req.Duration,
		Instructor:  req.Instructor,
		Thumbnail:   req.Thumbnail,
		Modules:     req.Modules,
	}
	if err := h.DB.WithContext(c.Request.Context()).Create(&course).Error; err != nil {
		log.Printf("create course: %v", err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "create failed")
		return
	}
	util.Success(c, util.Response{"course": course})
}

// Update patches a course (admin only). Zero-valued fields are skipped.
func (h *CourseHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req courseReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request")
		return
	}

	var course models.Course
	err := h.DB.WithContext(c.Request.Context()).First(&course, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "course not found")
		return
	}
	if err != nil {
		log.Printf("get course: %v", err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "internal error")
		return
	}

	if req.Title != "" {
		if err := util.ValidateTitle(req.Title); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
			return
		}
		course.Title = req.Title
	}
	if req.Description != "" {
		course.Description = req.Description
	}
	if req.Level != "" {
		if !models.ValidLevel(req.Level) {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid level")
			return
		}
		course.Level = req.Level
	}
	if req.Duration != "" {
		course.Duration = req.Duration
	}
	if req.Instructor != "" {
		course.Instructor = req.Instructor
	}
	if req.Thumbnail != "" {
		course.Thumbnail = req.Thumbnail
	}
	if req.Modules != nil {
		fillModuleIDs(req.Modules)
		course.Modules = req.Modules
	}

	if err := h.DB.WithContext(c.Request.Context()).Save(&course).Error; err != nil {
		log.Printf("update course: %v", err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "update failed")
		return
	}
	util.Success(c, util.Response{"course": course})
}

// Delete removes a course (admin only). Enrollments cascade.
func (h *CourseHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	res := h.DB.WithContext(c.Request.Context()).Delete(&models.Course{}, id)
	if res.Error != nil {
		log.Printf("delete course: %v", res.Error)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "delete failed")
		return
	}
	if res.RowsAffected == 0 {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "course not found")
		return
	}
	util.Success(c, util.Response{"message": "course deleted"})
}
