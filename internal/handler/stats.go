package handler

import (
	"log"
	"net/http"
	"sort"
	"time"

	"skillforge/internal/auth"
	"skillforge/internal/models"
	"skillforge/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// StatsHandler serves admin analytics and session maintenance.
// Mounted behind the admin gate.
type StatsHandler struct {
	DB  *gorm.DB
	Svc *auth.Service
}

func NewStatsHandler(db *gorm.DB, svc *auth.Service) *StatsHandler {
	return &StatsHandler{DB: db, Svc: svc}
}

func (h *StatsHandler) count(c *gin.Context, model interface{}, query string, args ...interface{}) (int64, bool) {
	var n int64
	q := h.DB.WithContext(c.Request.Context()).Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	if err := q.Count(&n).Error; err != nil {
		log.Printf("count: %v", err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "internal error")
		return 0, false
	}
	return n, true
}

// Overview returns the admin dashboard counters.
func (h *StatsHandler) Overview(c *gin.Context) {
	type pair struct {
		dst   *int64
		model interface{}
		query string
		args  []interface{}
	}

	var (
		totalUsers, learners, mentors, admins, activeUsers    int64
		totalCourses                                          int64
		totalChallenges, activeChallenges, upcomingChallenges int64
		totalProjects, submittedProjects, approvedProjects    int64
		totalEnrollments, completedEnrollments                int64
		totalReviews                                          int64
	)

	thirtyDaysAgo := time.Now().AddDate(0, 0, -30)

	counts := []pair{
		{&totalUsers, &models.User{}, "", nil},
		{&learners, &models.User{}, "role = ?", []interface{}{models.RoleLearner}},
		{&mentors, &models.User{}, "role = ?", []interface{}{models.RoleMentor}},
		{&admins, &models.User{}, "role = ?", []interface{}{models.RoleAdmin}},
		{&activeUsers, &models.User{}, "created_at >= ?", []interface{}{thirtyDaysAgo}},
		{&totalCourses, &models.Course{}, "", nil},
		{&totalChallenges, &models.Challenge{}, "", nil},
		{&activeChallenges, &models.Challenge{}, "status = ?", []interface{}{models.ChallengeActive}},
		{&upcomingChallenges, &models.Challenge{}, "status = ?", []interface{}{models.ChallengeUpcoming}},
		{&totalProjects, &models.Project{}, "", nil},
		{&submittedProjects, &models.Project{}, "status = ?", []interface{}{models.ProjectSubmitted}},
		{&approvedProjects, &models.Project{}, "status = ?", []interface{}{models.ProjectApproved}},
		{&totalEnrollments, &models.CourseEnrollment{}, "", nil},
		{&completedEnrollments, &models.CourseEnrollment{}, "completed_at IS NOT NULL", nil},
		{&totalReviews, &models.ProjectReview{}, "", nil},
	}
	for _, p := range counts {
		n, ok := h.count(c, p.model, p.query, p.args...)
		if !ok {
			return
		}
		*p.dst = n
	}

	avgProgress := 0
	if totalEnrollments > 0 {
		var sum struct{ Total int64 }
		if err := h.DB.WithContext(c.Request.Context()).
			Model(&models.CourseEnrollment{}).
			Select("COALESCE(SUM(progress), 0) AS total").
			Scan(&sum).Error; err != nil {
			log.Printf("sum progress: %v", err)
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "internal error")
			return
		}
		avgProgress = int(float64(sum.Total)/float64(totalEnrollments) + 0.5)
	}

	util.Success(c, util.Response{
		"stats": gin.H{
			"users": gin.H{
				"total":             totalUsers,
				"learners":          learners,
				"mentors":           mentors,
				"admins":            admins,
				"active_this_month": activeUsers,
			},
			"courses": gin.H{"total": totalCourses},
			"challenges": gin.H{
				"total":    totalChallenges,
				"active":   activeChallenges,
				"upcoming": upcomingChallenges,
			},
			"projects": gin.H{
				"total":     totalProjects,
				"submitted": submittedProjects,
				"approved":  approvedProjects,
			},
			"enrollments": gin.H{
				"total":        totalEnrollments,
				"completed":    completedEnrollments,
				"avg_progress": avgProgress,
			},
			"reviews": gin.H{"total": totalReviews},
		},
	})
}

type activityItem struct {
	Type        string    `json:"type"`
	Description string    `json:"description"`
	User        string    `json:"user"`
	Time        time.Time `json:"time"`
}

// RecentActivity merges recent registrations and project submissions
// into one feed, newest first, top 10.
func (h *StatsHandler) RecentActivity(c *gin.Context) {
	ctx := c.Request.Context()

	var recentUsers []models.User
	if err := h.DB.WithContext(ctx).
		Order("created_at DESC").Limit(10).Find(&recentUsers).Error; err != nil {
		log.Printf("recent users: %v", err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "internal error")
		return
	}

	var recentProjects []models.Project
	if err := h.DB.WithContext(ctx).
		Order("created_at DESC").Limit(10).Find(&recentProjects).Error; err != nil {
		log.Printf("recent projects: %v", err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "internal error")
		return
	}

	var activities []activityItem
	for _, u := range recentUsers {
		desc := "New user registered"
		if u.Role == models.RoleMentor {
			desc = "New mentor joined"
		}
		activities = append(activities, activityItem{
			Type:        "user_registered",
			Description: desc,
			User:        u.Name,
			Time:        u.CreatedAt,
		})
	}
	for _, p := range recentProjects {
		if p.Status != models.ProjectSubmitted && p.Status != models.ProjectApproved {
			continue
		}
		var owner models.User
		name := "Unknown"
		if err := h.DB.WithContext(ctx).Select("name").First(&owner, p.UserID).Error; err == nil {
			name = owner.Name
		}
		kind, desc := "project_submitted", "Project submitted: "+p.Title
		if p.Status == models.ProjectApproved {
			kind, desc = "project_approved", "Project approved: "+p.Title
		}
		activities = append(activities, activityItem{
			Type:        kind,
			Description: desc,
			User:        name,
			Time:        p.CreatedAt,
		})
	}

	sort.Slice(activities, func(i, j int) bool {
		return activities[i].Time.After(activities[j].Time)
	})
	if len(activities) > 10 {
		activities = activities[:10]
	}
	if activities == nil {
		activities = []activityItem{}
	}

	util.Success(c, util.Response{"activities": activities})
}

type topCourse struct {
	ID             uint   `json:"id"`
	Title          string `json:"title"`
	Level          string `json:"level"`
	Enrollments    int64  `json:"enrollments"`
	CompletionRate int    `json:"completion_rate"`
}

// TopCourses returns the five most-enrolled courses with completion
// rates.
func (h *StatsHandler) TopCourses(c *gin.Context) {
	ctx := c.Request.Context()

	var courses []models.Course
	if err := h.DB.WithContext(ctx).Find(&courses).Error; err != nil {
		log.Printf("list courses: %v", err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "internal error")
		return
	}

	stats := make([]topCourse, 0, len(courses))
	for _, course := range courses {
		var enrolled, completed int64
		if err := h.DB.WithContext(ctx).Model(&models.CourseEnrollment{}).
			Where("course_id = ?", course.ID).Count(&enrolled).Error; err != nil {
			log.Printf("count enrollments: %v", err)
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "internal error")
			return
		}
		if err := h.DB.WithContext(ctx).Model(&models.CourseEnrollment{}).
			Where("course_id = ? AND completed_at IS NOT NULL", course.ID).
			Count(&completed).Error; err != nil {
			log.Printf("count completed: %v", err)
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "internal error")
			return
		}

		rate := 0
		if enrolled > 0 {
			rate = int(float64(completed)/float64(enrolled)*100 + 0.5)
		}
		stats = append(stats, topCourse{
			ID:             course.ID,
			Title:          course.Title,
			Level:          course.Level,
			Enrollments:    enrolled,
			CompletionRate: rate,
		})
	}

	sort.Slice(stats, func(i, j int) bool {
		return stats[i].Enrollments > stats[j].Enrollments
	})
	if len(stats) > 5 {
		stats = stats[:5]
	}

	util.Success(c, util.Response{"courses": stats})
}

type challengeStat struct {
	ID           uint   `json:"id"`
	Title        string `json:"title"`
	Participants int64  `json:"participants"`
	Submissions  int64  `json:"submissions"`
}

// ChallengeStats reports participation on active challenges.
func (h *StatsHandler) ChallengeStats(c *gin.Context) {
	ctx := c.Request.Context()

	var active []models.Challenge
	if err := h.DB.WithContext(ctx).
		Where("status = ?", models.ChallengeActive).
		Find(&active).Error; err != nil {
		log.Printf("list challenges: %v", err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "internal error")
		return
	}

	stats := make([]challengeStat, 0, len(active))
	for _, challenge := range active {
		var linked, submitted int64
		if err := h.DB.WithContext(ctx).Model(&models.Project{}).
			Where("challenge_id = ?", challenge.ID).Count(&linked).Error; err != nil {
			log.Printf("count projects: %v", err)
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "internal error")
			return
		}
		if err := h.DB.WithContext(ctx).Model(&models.Project{}).
			Where("challenge_id = ? AND status IN ?", challenge.ID,
				[]string{models.ProjectSubmitted, models.ProjectApproved}).
			Count(&submitted).Error; err != nil {
			log.Printf("count submissions: %v", err)
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "internal error")
			return
		}

		participants := int64(challenge.Participants)
		if participants == 0 {
			participants = linked
		}
		stats = append(stats, challengeStat{
			ID:           challenge.ID,
			Title:        challenge.Title,
			Participants: participants,
			Submissions:  submitted,
		})
	}

	util.Success(c, util.Response{"challenges": stats})
}

// CleanupSessions removes expired session rows that lazy deletion never
// got to, and reports how many went away.
func (h *StatsHandler) CleanupSessions(c *gin.Context) {
	n, err := h.Svc.CleanupExpiredSessions(c.Request.Context())
	if err != nil {
		log.Printf("cleanup sessions: %v", err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "cleanup failed")
		return
	}
	util.Success(c, util.Response{"removed": n})
}
