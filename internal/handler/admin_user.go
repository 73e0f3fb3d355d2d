package handler

import (
	"errors"
	"log"
	"net/http"

	"skillforge/internal/auth"
	"skillforge/internal/middleware"
	"skillforge/internal/models"
	"skillforge/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AdminUserHandler serves user administration and mentor assignments.
// Mounted behind the admin gate.
type AdminUserHandler struct {
	DB  *gorm.DB
	Svc *auth.Service
}

func NewAdminUserHandler(db *gorm.DB, svc *auth.Service) *AdminUserHandler {
	return &AdminUserHandler{DB: db, Svc: svc}
}

type adminUserView struct {
	models.SafeUser
	EnrollmentCount  int64 `json:"enrollment_count"`
	ProjectCount     int64 `json:"project_count"`
	AssignedLearners int64 `json:"assigned_learners"`
}

// List returns all users, newest first, with per-user counters.
func (h *AdminUserHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	var users []models.User
	if err := h.DB.WithContext(ctx).Order("created_at DESC").Find(&users).Error; err != nil {
		log.Printf("list users: %v", err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "internal error")
		return
	}

	views := make([]adminUserView, 0, len(users))
	for _, u := range users {
		view := adminUserView{SafeUser: *u.Safe()}

		h.DB.WithContext(ctx).Model(&models.CourseEnrollment{}).
			Where("user_id = ?", u.ID).Count(&view.EnrollmentCount)
		h.DB.WithContext(ctx).Model(&models.Project{}).
			Where("user_id = ?", u.ID).Count(&view.ProjectCount)
		if u.Role == models.RoleMentor {
			h.DB.WithContext(ctx).Model(&models.MentorAssignment{}).
				Where("mentor_id = ?", u.ID).Count(&view.AssignedLearners)
		}

		views = append(views, view)
	}

	util.Success(c, util.Response{"users": views})
}

// Get returns a single user with enrollments and projects.
func (h *AdminUserHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	user, err := h.Svc.UserByID(ctx, id)
	if errors.Is(err, auth.ErrNotFound) {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "user not found")
		return
	}
	if err != nil {
		log.Printf("get user: %v", err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "internal error")
		return
	}

	var enrollments []models.CourseEnrollment
	if err := h.DB.WithContext(ctx).Where("user_id = ?", id).Find(&enrollments).Error; err != nil {
		log.Printf("list enrollments: %v", err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "internal error")
		return
	}
	var projects []models.Project
	if err := h.DB.WithContext(ctx).Where("user_id = ?", id).Find(&projects).Error; err != nil {
		log.Printf("list projects: %v", err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "internal error")
		return
	}

	util.Success(c, util.Response{
		"user":        user,
		"enrollments": enrollments,
		"projects":    projects,
	})
}

type adminUpdateUserReq struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Update patches name, email and/or role of a user.
func (h *AdminUserHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req adminUpdateUserReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request")
		return
	}
	if req.Role != "" && !models.ValidRole(req.Role) {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid role")
		return
	}
	if req.Email != "" {
		if err := util.ValidateEmail(req.Email); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
			return
		}
	}

	ctx := c.Request.Context()

	user, err := h.Svc.UpdateProfile(ctx, id, req.Name, req.Email)
	if errors.Is(err, auth.ErrNotFound) {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "user not found")
		return
	}
	if errors.Is(err, auth.ErrDuplicateEmail) {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "email already registered")
		return
	}
	if err != nil {
		log.Printf("update user: %v", err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "update failed")
		return
	}

	if req.Role != "" && req.Role != user.Role {
		if err := h.DB.WithContext(ctx).Model(&models.User{}).
			Where("id = ?", id).Update("role", req.Role).Error; err != nil {
			log.Printf("update role: %v", err)
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "update failed")
			return
		}
		user.Role = req.Role
	}

	util.Success(c, util.Response{"user": user})
}

// Delete removes a user. Self-deletion is rejected; sessions,
// enrollments, projects and assignments cascade.
func (h *AdminUserHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if admin := middleware.CurrentUser(c); admin != nil && admin.ID == id {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "cannot delete your own account")
		return
	}

	res := h.DB.WithContext(c.Request.Context()).Delete(&models.User{}, id)
	if res.Error != nil {
		log.Printf("delete user: %v", res.Error)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "delete failed")
		return
	}
	if res.RowsAffected == 0 {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "user not found")
		return
	}

	// sqlite without foreign_keys=on will not cascade; drop the
	// sessions explicitly so the account cannot act anymore
	if err := h.Svc.RevokeAllSessions(c.Request.Context(), id); err != nil {
		log.Printf("revoke sessions: %v", err)
	}

	util.Success(c, util.Response{"message": "user deleted"})
}

type assignmentReq struct {
	MentorID  uint `json:"mentor_id" binding:"required"`
	LearnerID uint `json:"learner_id" binding:"required"`
}

// CreateAssignment links a mentor to a learner.
func (h *AdminUserHandler) CreateAssignment(c *gin.Context) {
	var req assignmentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "mentor_id and learner_id are required")
		return
	}

	ctx := c.Request.Context()

	var mentor, learner models.User
	if err := h.DB.WithContext(ctx).First(&mentor, req.MentorID).Error; err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "unknown mentor")
		return
	}
	if mentor.Role != models.RoleMentor && mentor.Role != models.RoleAdmin {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "user is not a mentor")
		return
	}
	if err := h.DB.WithContext(ctx).First(&learner, req.LearnerID).Error; err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "unknown learner")
		return
	}

	var count int64
	if err := h.DB.WithContext(ctx).Model(&models.MentorAssignment{}).
		Where("mentor_id = ? AND learner_id = ?", req.MentorID, req.LearnerID).
		Count(&count).Error; err != nil {
		log.Printf("check assignment: %v", err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "internal error")
		return
	}
	if count > 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "already assigned")
		return
	}

	assignment := models.MentorAssignment{
		MentorID:  req.MentorID,
		LearnerID: req.LearnerID,
	}
	if err := h.DB.WithContext(ctx).Create(&assignment).Error; err != nil {
		log.Printf("create assignment: %v", err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "create failed")
		return
	}
	util.Success(c, util.Response{"assignment": assignment})
}

// DeleteAssignment unlinks a mentor from a learner.
func (h *AdminUserHandler) DeleteAssignment(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	res := h.DB.WithContext(c.Request.Context()).Delete(&models.MentorAssignment{}, id)
	if res.Error != nil {
		log.Printf("delete assignment: %v", res.Error)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "delete failed")
		return
	}
	if res.RowsAffected == 0 {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "assignment not found")
		return
	}
	util.Success(c, util.Response{"message": "assignment deleted"})
}
