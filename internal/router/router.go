package router

import (
	"skillforge/internal/auth"
	"skillforge/internal/config"
	"skillforge/internal/handler"
	"skillforge/internal/middleware"
	"skillforge/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Setup configures the gin engine and the full API route table.
func Setup(cfg *config.Config, db *gorm.DB, svc *auth.Service) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	api := r.Group("/api")

	api.GET("/healthz", func(c *gin.Context) {
		util.Success(c, util.Response{"status": "ok"})
	})

	// public: auth and catalog reads
	authHandler := handler.NewAuthHandler(svc, cfg.Server.TLS)
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/logout", authHandler.Logout)
	api.GET("/auth/session", authHandler.Session)

	courseHandler := handler.NewCourseHandler(db)
	api.GET("/courses", courseHandler.List)
	api.GET("/courses/:id", courseHandler.Get)

	challengeHandler := handler.NewChallengeHandler(db)
	api.GET("/challenges", challengeHandler.List)
	api.GET("/challenges/:id", challengeHandler.Get)

	// authenticated, any role
	protected := api.Group("")
	protected.Use(
		middleware.SessionMiddleware(svc),
		middleware.ActivityMiddleware(db),
	)

	profileHandler := handler.NewProfileHandler(svc, cfg.Server.TLS)
	protected.GET("/me", profileHandler.Me)
	protected.PUT("/me", profileHandler.UpdateMe)
	protected.POST("/me/password", profileHandler.ChangePassword)

	enrollmentHandler := handler.NewEnrollmentHandler(db)
	protected.POST("/courses/:id/enroll", enrollmentHandler.Enroll)
	protected.GET("/me/enrollments", enrollmentHandler.Mine)
	protected.PUT("/enrollments/:id/progress", enrollmentHandler.UpdateProgress)

	projectHandler := handler.NewProjectHandler(db)
	protected.POST("/projects", projectHandler.Create)
	protected.GET("/projects", projectHandler.Mine)
	protected.GET("/projects/:id", projectHandler.Get)
	protected.PUT("/projects/:id", projectHandler.Update)
	protected.DELETE("/projects/:id", projectHandler.Delete)
	protected.POST("/projects/:id/submit", projectHandler.Submit)

	// mentor or admin
	mentor := protected.Group("/mentor")
	mentor.Use(middleware.RequireMentor())

	mentorHandler := handler.NewMentorHandler(db)
	mentor.GET("/learners", mentorHandler.Learners)
	mentor.GET("/reviews", mentorHandler.PendingReviews)
	mentor.GET("/projects/:id", mentorHandler.ProjectForReview)
	mentor.POST("/projects/:id/review", mentorHandler.SubmitReview)
	mentor.GET("/stats", mentorHandler.Stats)

	// admin only
	admin := protected.Group("/admin")
	admin.Use(middleware.RequireAdmin())

	adminUserHandler := handler.NewAdminUserHandler(db, svc)
	admin.GET("/users", adminUserHandler.List)
	admin.GET("/users/:id", adminUserHandler.Get)
	admin.PUT("/users/:id", adminUserHandler.Update)
	admin.DELETE("/users/:id", adminUserHandler.Delete)
	admin.POST("/assignments", adminUserHandler.CreateAssignment)
	admin.DELETE("/assignments/:id", adminUserHandler.DeleteAssignment)

	admin.POST("/courses", courseHandler.Create)
	admin.PUT("/courses/:id", courseHandler.Update)
	admin.DELETE("/courses/:id", courseHandler.Delete)

	admin.POST("/challenges", challengeHandler.Create)
	admin.PUT("/challenges/:id", challengeHandler.Update)
	admin.DELETE("/challenges/:id", challengeHandler.Delete)

	statsHandler := handler.NewStatsHandler(db, svc)
	admin.GET("/stats", statsHandler.Overview)
	admin.GET("/activity", statsHandler.RecentActivity)
	admin.GET("/top-courses", statsHandler.TopCourses)
	admin.GET("/challenge-stats", statsHandler.ChallengeStats)
	admin.POST("/sessions/cleanup", statsHandler.CleanupSessions)

	exportHandler := handler.NewExportHandler(db)
	admin.GET("/export/users.csv", exportHandler.UsersCSV)
	admin.GET("/export/users.xlsx", exportHandler.UsersXLSX)

	logHandler := handler.NewLogHandler(db, cfg.App.PageSize)
	admin.GET("/logs", logHandler.List)

	return r
}
