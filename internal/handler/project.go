package handler

import (
	"errors"
	"log"
	"net/http"

	"skillforge/internal/middleware"
	"skillforge/internal/models"
	"skillforge/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ProjectHandler serves learner project CRUD and submission.
type ProjectHandler struct {
	DB *gorm.DB
}

func NewProjectHandler(db *gorm.DB) *ProjectHandler {
	return &ProjectHandler{DB: db}
}

// loadOwned fetches a project and checks it belongs to the caller.
func (h *ProjectHandler) loadOwned(c *gin.Context, id uint) (*models.Project, bool) {
	user := middleware.CurrentUser(c)

	var project models.Project
	err := h.DB.WithContext(c.Request.Context()).First(&project, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "project not found")
		return nil, false
	}
	if err != nil {
		log.Printf("get project: %v", err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "internal error")
		return nil, false
	}
	if project.UserID != user.ID {
		util.Error(c, http.StatusForbidden, util.CodeForbidden, "not your project")
		return nil, false
	}
	return &project, true
}

type projectReq struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Images      []string `json:"images"`
	DemoURL     string   `json:"demo_url"`
	RepoURL     string   `json:"repo_url"`
	ChallengeID *uint    `json:"challenge_id"`
}

// Create adds a draft project owned by the caller.
func (h *ProjectHandler) Create(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req projectReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request")
		return
	}
	if err := util.ValidateTitle(req.Title); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}
	if err := util.ValidateBody(req.Description, 10); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "description must be at least 10 characters long")
		return
	}

	if req.ChallengeID != nil {
		var count int64
		if err := h.DB.WithContext(c.Request.Context()).
			Model(&models.Challenge{}).
			Where("id = ?", *req.ChallengeID).
			Count(&count).Error; err != nil || count == 0 {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "unknown challenge")
			return
		}
	}

	if req.Tags == nil {
		req.Tags = []string{}
	}
	if req.Images == nil {
		req.Images = []string{}
	}

	project := models.Project{
		UserID:      user.ID,
		Title:       req.Title,
		Description: req.Description,
		Tags:        req.Tags,
		Images:      req.Images,
		DemoURL:     req.DemoURL,
		RepoURL:     req.RepoURL,
		ChallengeID: req.ChallengeID,
		Status:      models.ProjectDraft,
	}
	if err := h.DB.WithContext(c.Request.Context()).Create(&project).Error; err != nil {
		log.Printf("create project: %v", err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "create failed")
		return
	}
	util.Success(c, util.Response{"project": project})
}

// Mine lists the caller's projects, oldest first.
func (h *ProjectHandler) Mine(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var projects []models.Project
	if err := h.DB.WithContext(c.Request.Context()).
		Where("user_id = ?", user.ID).
		Order("created_at").
		Find(&projects).Error; err != nil {
		log.Printf("list projects: %v", err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "internal error")
		return
	}
	util.Success(c, util.Response{"projects": projects})
}

// Get returns a single project. Any authenticated user may read one;
// ownership gates only writes.
func (h *ProjectHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var project models.Project
	err := h.DB.WithContext(c.Request.Context()).First(&project, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "project not found")
		return
	}
	if err != nil {
		log.Printf("get project: %v", err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "internal error")
		return
	}
	util.Success(c, util.Response{"project": project})
}

// Update patches the caller's own project.
func (h *ProjectHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	project, ok := h.loadOwned(c, id)
	if !ok {
		return
	}

	var req projectReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request")
		return
	}

	if req.Title != "" {
		if err := util.ValidateTitle(req.Title); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
			return
		}
		project.Title = req.Title
	}
	if req.Description != "" {
		project.Description = req.Description
	}
	if req.Tags != nil {
		project.Tags = req.Tags
	}
	if req.Images != nil {
		project.Images = req.Images
	}
	if req.DemoURL != "" {
		project.DemoURL = req.DemoURL
	}
	if req.RepoURL != "" {
		project.RepoURL = req.RepoURL
	}

	if err := h.DB.WithContext(c.Request.Context()).Save(project).Error; err != nil {
		log.Printf("update project: %v", err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "update failed")
		return
	}
	util.Success(c, util.Response{"project": project})
}

// Delete removes the caller's own project.
func (h *ProjectHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	project, ok := h.loadOwned(c, id)
	if !ok {
		return
	}

	if err := h.DB.WithContext(c.Request.Context()).
		Delete(&models.Project{}, project.ID).Error; err != nil {
		log.Printf("delete project: %v", err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "delete failed")
		return
	}
	util.Success(c, util.Response{"message": "project deleted"})
}

// Submit moves the caller's draft project into review.
func (h *ProjectHandler) Submit(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	project, ok := h.loadOwned(c, id)
	if !ok {
		return
	}

	if project.Status != models.ProjectDraft {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "only draft projects can be submitted")
		return
	}

	project.Status = models.ProjectSubmitted
	if err := h.DB.WithContext(c.Request.Context()).Save(project).Error; err != nil {
		log.Printf("submit project: %v", err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "submit failed")
		return
	}
	util.Success(c, util.Response{"project": project})
}
