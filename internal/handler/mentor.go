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

// MentorHandler serves the mentor review workflow. Mounted behind the
// mentor-or-admin gate.
type MentorHandler struct {
	DB *gorm.DB
}

func NewMentorHandler(db *gorm.DB) *MentorHandler {
	return &MentorHandler{DB: db}
}

func (h *MentorHandler) assignedLearnerIDs(c *gin.Context, mentorID uint) ([]uint, error) {
	var ids []uint
	err := h.DB.WithContext(c.Request.Context()).
		Model(&models.MentorAssignment{}).
		Where("mentor_id = ?", mentorID).
		Pluck("learner_id", &ids).Error
	return ids, err
}

type learnerView struct {
	ID              uint             `json:"id"`
	Name            string           `json:"name"`
	Email           string           `json:"email"`
	Enrollments     []enrollmentView `json:"enrollments"`
	OverallProgress int              `json:"overall_progress"`
}

// Learners lists the mentor's assigned learners with their enrollments
// and average progress across courses.
func (h *MentorHandler) Learners(c *gin.Context) {
	mentor := middleware.CurrentUser(c)
	ctx := c.Request.Context()

	learnerIDs, err := h.assignedLearnerIDs(c, mentor.ID)
	if err != nil {
		log.Printf("list assignments: %v", err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "internal error")
		return
	}

	learners := make([]learnerView, 0, len(learnerIDs))
	for _, id := range learnerIDs {
		var user models.User
		if err := h.DB.WithContext(ctx).First(&user, id).Error; err != nil {
			continue // assignment to a deleted learner
		}

		var enrollments []models.CourseEnrollment
		if err := h.DB.WithContext(ctx).
			Where("user_id = ?", id).
			Find(&enrollments).Error; err != nil {
			log.Printf("list enrollments: %v", err)
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "internal error")
			return
		}

		views := make([]enrollmentView, 0, len(enrollments))
		total := 0
		for _, e := range enrollments {
			var course models.Course
			title := ""
			if err := h.DB.WithContext(ctx).Select("title").First(&course, e.CourseID).Error; err == nil {
				title = course.Title
			}
			views = append(views, enrollmentView{CourseEnrollment: e, CourseTitle: title})
			total += e.Progress
		}
		avg := 0
		if len(enrollments) > 0 {
			avg = total / len(enrollments)
		}

		learners = append(learners, learnerView{
			ID:              user.ID,
			Name:            user.Name,
			Email:           user.Email,
			Enrollments:     views,
			OverallProgress: avg,
		})
	}

	util.Success(c, util.Response{"learners": learners})
}

type pendingReviewView struct {
	models.Project
	LearnerName    string `json:"learner_name"`
	ChallengeTitle string `json:"challenge_title,omitempty"`
}

// PendingReviews lists submitted projects from the mentor's assigned
// learners, newest first.
func (h *MentorHandler) PendingReviews(c *gin.Context) {
	mentor := middleware.CurrentUser(c)
	ctx := c.Request.Context()

	learnerIDs, err := h.assignedLearnerIDs(c, mentor.ID)
	if err != nil {
		log.Printf("list assignments: %v", err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "internal error")
		return
	}
	if len(learnerIDs) == 0 {
		util.Success(c, util.Response{"reviews": []pendingReviewView{}})
		return
	}

	var pending []models.Project
	if err := h.DB.WithContext(ctx).
		Where("user_id IN ? AND status = ?", learnerIDs, models.ProjectSubmitted).
		Order("updated_at DESC").
		Find(&pending).Error; err != nil {
		log.Printf("list pending projects: %v", err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "internal error")
		return
	}

	views := make([]pendingReviewView, 0, len(pending))
	for _, p := range pending {
		view := pendingReviewView{Project: p}
		var learner models.User
		if err := h.DB.WithContext(ctx).Select("name").First(&learner, p.UserID).Error; err == nil {
			view.LearnerName = learner.Name
		}
		if p.ChallengeID != nil {
			var challenge models.Challenge
			if err := h.DB.WithContext(ctx).Select("title").First(&challenge, *p.ChallengeID).Error; err == nil {
				view.ChallengeTitle = challenge.Title
			}
		}
		views = append(views, view)
	}

	util.Success(c, util.Response{"reviews": views})
}

// ProjectForReview returns a project with its learner and challenge.
func (h *MentorHandler) ProjectForReview(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	var project models.Project
	err := h.DB.WithContext(ctx).First(&project, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "project not found")
		return
	}
	if err != nil {
		log.Printf("get project: %v", err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "internal error")
		return
	}

	resp := util.Response{"project": project}

	var learner models.User
	if err := h.DB.WithContext(ctx).First(&learner, project.UserID).Error; err == nil {
		resp["learner"] = gin.H{"id": learner.ID, "name": learner.Name, "email": learner.Email}
	}
	if project.ChallengeID != nil {
		var challenge models.Challenge
		if err := h.DB.WithContext(ctx).First(&challenge, *project.ChallengeID).Error; err == nil {
			resp["challenge"] = challenge
		}
	}

	util.Success(c, resp)
}

type reviewReq struct {
	Feedback string `json:"feedback" binding:"required"`
	Rating   *int   `json:"rating"`
	Approved *bool  `json:"approved" binding:"required"`
}

// SubmitReview records a verdict on a submitted project and flips the
// project status accordingly.
func (h *MentorHandler) SubmitReview(c *gin.Context) {
	mentor := middleware.CurrentUser(c)
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req reviewReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "feedback and approved are required")
		return
	}
	if err := util.ValidateBody(req.Feedback, 10); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "feedback must be at least 10 characters long")
		return
	}
	if req.Rating != nil && (*req.Rating < 1 || *req.Rating > 5) {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "rating must be between 1 and 5")
		return
	}

	ctx := c.Request.Context()

	var project models.Project
	err := h.DB.WithContext(ctx).First(&project, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "project not found")
		return
	}
	if err != nil {
		log.Printf("get project: %v", err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "internal error")
		return
	}
	if project.Status != models.ProjectSubmitted {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "project is not in submitted status")
		return
	}

	status := models.ReviewRejected
	projectStatus := models.ProjectRejected
	if *req.Approved {
		status = models.ReviewApproved
		projectStatus = models.ProjectApproved
	}

	review := models.ProjectReview{
		ProjectID: project.ID,
		MentorID:  mentor.ID,
		Feedback:  req.Feedback,
		Rating:    req.Rating,
		Status:    status,
	}

	// review row and status flip stand or fall together
	err = h.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&review).Error; err != nil {
			return err
		}
		return tx.Model(&project).Update("status", projectStatus).Error
	})
	if err != nil {
		log.Printf("submit review: %v", err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "review failed")
		return
	}

	util.Success(c, util.Response{"review": review})
}

// Stats returns the mentor dashboard counters.
func (h *MentorHandler) Stats(c *gin.Context) {
	mentor := middleware.CurrentUser(c)
	ctx := c.Request.Context()

	var assigned int64
	if err := h.DB.WithContext(ctx).Model(&models.MentorAssignment{}).
		Where("mentor_id = ?", mentor.ID).Count(&assigned).Error; err != nil {
		log.Printf("count assignments: %v", err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "internal error")
		return
	}

	var completed int64
	if err := h.DB.WithContext(ctx).Model(&models.ProjectReview{}).
		Where("mentor_id = ?", mentor.ID).Count(&completed).Error; err != nil {
		log.Printf("count reviews: %v", err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "internal error")
		return
	}

	learnerIDs, err := h.assignedLearnerIDs(c, mentor.ID)
	if err != nil {
		log.Printf("list assignments: %v", err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "internal error")
		return
	}
	var pending int64
	if len(learnerIDs) > 0 {
		if err := h.DB.WithContext(ctx).Model(&models.Project{}).
			Where("user_id IN ? AND status = ?", learnerIDs, models.ProjectSubmitted).
			Count(&pending).Error; err != nil {
			log.Printf("count pending: %v", err)
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "internal error")
			return
		}
	}

	util.Success(c, util.Response{
		"stats": gin.H{
			"assigned_learners": assigned,
			"pending_reviews":   pending,
			"completed_reviews": completed,
		},
	})
}
