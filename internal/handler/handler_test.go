package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"skillforge/internal/auth"
	"skillforge/internal/config"
	"skillforge/internal/database"
	"skillforge/internal/middleware"
	"skillforge/internal/models"
	"skillforge/internal/router"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type testApp struct {
	db     *gorm.DB
	svc    *auth.Service
	router *gin.Engine
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	cfg := &config.Config{}
	cfg.Server.Mode = gin.TestMode
	cfg.App.PageSize = 20

	// bcrypt cost 4 keeps tests fast
	svc := auth.NewService(db, 4, 7)
	return &testApp{db: db, svc: svc, router: router.Setup(cfg, db, svc)}
}

// do runs a JSON request, optionally with a session cookie.
func (a *testApp) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: token})
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == middleware.SessionCookie {
			return c
		}
	}
	t.Fatal("no session cookie in response")
	return nil
}

// register creates an account via the API and returns its token.
func (a *testApp) register(t *testing.T, name, email, role string) string {
	t.Helper()
	w := a.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"name": name, "email": email, "password": "pw1234567", "role": role,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("register %s: status %d: %s", email, w.Code, w.Body.String())
	}
	return sessionCookie(t, w).Value
}

// admin promotes an account directly in the database; the public
// endpoint deliberately cannot create admins.
func (a *testApp) makeAdmin(t *testing.T, email string) {
	t.Helper()
	if err := a.db.Model(&models.User{}).
		Where("email = ?", email).
		Update("role", models.RoleAdmin).Error; err != nil {
		t.Fatalf("promote admin: %v", err)
	}
}

func TestRegisterSetsCookieAttributes(t *testing.T) {
	app := newTestApp(t)

	w := app.do(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"name": "Ada", "email": "ada@x.test", "password": "pw1234567",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("register status = %d: %s", w.Code, w.Body.String())
	}

	c := sessionCookie(t, w)
	if !c.HttpOnly {
		t.Error("cookie should be HttpOnly")
	}
	if c.Path != "/" {
		t.Errorf("cookie path = %q, want /", c.Path)
	}
	if c.MaxAge != 7*24*60*60 {
		t.Errorf("cookie max-age = %d, want 7 days in seconds", c.MaxAge)
	}
	if c.SameSite != http.SameSiteLaxMode {
		t.Errorf("cookie samesite = %v, want Lax", c.SameSite)
	}
	if c.Secure {
		t.Error("cookie should not be Secure without TLS config")
	}
}

func TestRegisterValidation(t *testing.T) {
	app := newTestApp(t)

	cases := []gin.H{
		{"name": "A", "email": "bad-email", "password": "pw1234567"},
		{"name": "A", "email": "a@x.test", "password": "short"},
		{"name": "A", "email": "a@x.test", "password": "pw1234567", "role": "admin"},
		{"email": "a@x.test", "password": "pw1234567"},
	}
	for i, body := range cases {
		if w := app.do(t, http.MethodPost, "/api/auth/register", "", body); w.Code != http.StatusBadRequest {
			t.Errorf("case %d: status = %d, want 400", i, w.Code)
		}
	}
}

func TestRegisterDefaultRoleIsLearner(t *testing.T) {
	app := newTestApp(t)
	token := app.register(t, "Ada", "admin@x.test", "")

	w := app.do(t, http.MethodGet, "/api/me", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("me status = %d", w.Code)
	}
	var resp struct {
		Data struct {
			User models.SafeUser `json:"user"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data.User.Role != models.RoleLearner {
		t.Errorf("role = %q, want learner", resp.Data.User.Role)
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "Ada", "ada@x.test", "")

	wrongPw := app.do(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "ada@x.test", "password": "wrongwrong",
	})
	unknown := app.do(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "nobody@x.test", "password": "pw1234567",
	})

	if wrongPw.Code != http.StatusUnauthorized || unknown.Code != http.StatusUnauthorized {
		t.Fatalf("statuses = %d/%d, want 401/401", wrongPw.Code, unknown.Code)
	}
	if wrongPw.Body.String() != unknown.Body.String() {
		t.Error("wrong password and unknown email must produce identical responses")
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	app := newTestApp(t)
	token := app.register(t, "Ada", "ada@x.test", "")

	w := app.do(t, http.MethodPost, "/api/auth/logout", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("logout status = %d", w.Code)
	}
	if c := sessionCookie(t, w); c.MaxAge >= 0 || c.Value != "" {
		t.Errorf("logout should clear the cookie, got value=%q max-age=%d", c.Value, c.MaxAge)
	}

	if w := app.do(t, http.MethodGet, "/api/me", token, nil); w.Code != http.StatusUnauthorized {
		t.Errorf("me after logout status = %d, want 401", w.Code)
	}
}

func TestSessionEndpointNeverRejects(t *testing.T) {
	app := newTestApp(t)

	w := app.do(t, http.MethodGet, "/api/auth/session", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("session status = %d, want 200", w.Code)
	}
	var resp struct {
		Data struct {
			Authenticated bool `json:"authenticated"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data.Authenticated {
		t.Error("anonymous request should report authenticated=false")
	}
}

func TestChangePasswordRevokesOtherSessions(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "Ada", "ada@x.test", "")

	// second login, second session
	login := app.do(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "ada@x.test", "password": "pw1234567",
	})
	other := sessionCookie(t, login).Value

	change := app.do(t, http.MethodPost, "/api/me/password", other, gin.H{
		"current_password": "pw1234567", "new_password": "brandnewpw1",
	})
	if change.Code != http.StatusOK {
		t.Fatalf("change password status = %d: %s", change.Code, change.Body.String())
	}
	fresh := sessionCookie(t, change).Value

	// the fresh session works, every pre-change session is dead
	if w := app.do(t, http.MethodGet, "/api/me", fresh, nil); w.Code != http.StatusOK {
		t.Errorf("fresh session status = %d, want 200", w.Code)
	}
	if w := app.do(t, http.MethodGet, "/api/me", other, nil); w.Code != http.StatusUnauthorized {
		t.Errorf("old session status = %d, want 401", w.Code)
	}

	// only the new password logs in
	if w := app.do(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "ada@x.test", "password": "pw1234567",
	}); w.Code != http.StatusUnauthorized {
		t.Errorf("old password login status = %d, want 401", w.Code)
	}
	if w := app.do(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "ada@x.test", "password": "brandnewpw1",
	}); w.Code != http.StatusOK {
		t.Errorf("new password login status = %d, want 200", w.Code)
	}
}

func TestAdminGate(t *testing.T) {
	app := newTestApp(t)
	learner := app.register(t, "L", "l@x.test", "")
	mentor := app.register(t, "M", "m@x.test", models.RoleMentor)
	app.register(t, "Root", "root@x.test", "")
	app.makeAdmin(t, "root@x.test")
	login := app.do(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "root@x.test", "password": "pw1234567",
	})
	admin := sessionCookie(t, login).Value

	if w := app.do(t, http.MethodGet, "/api/admin/users", "", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("anonymous admin access = %d, want 401", w.Code)
	}
	if w := app.do(t, http.MethodGet, "/api/admin/users", learner, nil); w.Code != http.StatusForbidden {
		t.Errorf("learner admin access = %d, want 403", w.Code)
	}
	if w := app.do(t, http.MethodGet, "/api/admin/users", mentor, nil); w.Code != http.StatusForbidden {
		t.Errorf("mentor admin access = %d, want 403", w.Code)
	}
	if w := app.do(t, http.MethodGet, "/api/admin/users", admin, nil); w.Code != http.StatusOK {
		t.Errorf("admin access = %d, want 200", w.Code)
	}

	// mentor routes allow mentor and admin, not learner
	if w := app.do(t, http.MethodGet, "/api/mentor/stats", learner, nil); w.Code != http.StatusForbidden {
		t.Errorf("learner mentor access = %d, want 403", w.Code)
	}
	if w := app.do(t, http.MethodGet, "/api/mentor/stats", mentor, nil); w.Code != http.StatusOK {
		t.Errorf("mentor access = %d, want 200", w.Code)
	}
	if w := app.do(t, http.MethodGet, "/api/mentor/stats", admin, nil); w.Code != http.StatusOK {
		t.Errorf("admin mentor access = %d, want 200", w.Code)
	}
}

func (a *testApp) adminToken(t *testing.T) string {
	t.Helper()
	a.register(t, "Root", "root@x.test", "")
	a.makeAdmin(t, "root@x.test")
	w := a.do(t, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "root@x.test", "password": "pw1234567",
	})
	return sessionCookie(t, w).Value
}

func TestCourseLifecycleAndEnrollment(t *testing.T) {
	app := newTestApp(t)
	admin := app.adminToken(t)
	learner := app.register(t, "L", "l@x.test", "")

	// learner cannot create, admin can
	body := gin.H{
		"title": "Go 101", "description": "An introduction to Go.",
		"level": "beginner",
		"modules": []gin.H{
			{"title": "Basics", "lessons": []gin.H{{"title": "Hello", "duration": "10 min"}}},
		},
	}
	if w := app.do(t, http.MethodPost, "/api/admin/courses", learner, body); w.Code != http.StatusForbidden {
		t.Fatalf("learner create course = %d, want 403", w.Code)
	}
	created := app.do(t, http.MethodPost, "/api/admin/courses", admin, body)
	if created.Code != http.StatusOK {
		t.Fatalf("create course = %d: %s", created.Code, created.Body.String())
	}
	var courseResp struct {
		Data struct {
			Course models.Course `json:"course"`
		} `json:"data"`
	}
	if err := json.Unmarshal(created.Body.Bytes(), &courseResp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	course := courseResp.Data.Course
	if course.Modules[0].ID == "" || course.Modules[0].Lessons[0].ID == "" {
		t.Error("module and lesson ids should be filled in")
	}

	// public read
	if w := app.do(t, http.MethodGet, fmt.Sprintf("/api/courses/%d", course.ID), "", nil); w.Code != http.StatusOK {
		t.Errorf("public course read = %d, want 200", w.Code)
	}

	// enroll, double-enroll rejected
	enrollPath := fmt.Sprintf("/api/courses/%d/enroll", course.ID)
	first := app.do(t, http.MethodPost, enrollPath, learner, nil)
	if first.Code != http.StatusOK {
		t.Fatalf("enroll = %d: %s", first.Code, first.Body.String())
	}
	if w := app.do(t, http.MethodPost, enrollPath, learner, nil); w.Code != http.StatusBadRequest {
		t.Errorf("double enroll = %d, want 400", w.Code)
	}

	var enrollResp struct {
		Data struct {
			Enrollment models.CourseEnrollment `json:"enrollment"`
		} `json:"data"`
	}
	if err := json.Unmarshal(first.Body.Bytes(), &enrollResp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	enrollmentID := enrollResp.Data.Enrollment.ID

	// progress bounds and completion
	progressPath := fmt.Sprintf("/api/enrollments/%d/progress", enrollmentID)
	if w := app.do(t, http.MethodPut, progressPath, learner, gin.H{"progress": 150}); w.Code != http.StatusBadRequest {
		t.Errorf("progress 150 = %d, want 400", w.Code)
	}
	done := app.do(t, http.MethodPut, progressPath, learner, gin.H{"progress": 100})
	if done.Code != http.StatusOK {
		t.Fatalf("progress 100 = %d: %s", done.Code, done.Body.String())
	}
	if err := json.Unmarshal(done.Body.Bytes(), &enrollResp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if enrollResp.Data.Enrollment.CompletedAt == nil {
		t.Error("progress 100 should set completed_at")
	}

	// another learner cannot touch this enrollment
	other := app.register(t, "O", "o@x.test", "")
	if w := app.do(t, http.MethodPut, progressPath, other, gin.H{"progress": 10}); w.Code != http.StatusForbidden {
		t.Errorf("foreign progress update = %d, want 403", w.Code)
	}
}

func TestProjectReviewWorkflow(t *testing.T) {
	app := newTestApp(t)
	admin := app.adminToken(t)
	learner := app.register(t, "L", "l@x.test", "")
	mentor := app.register(t, "M", "m@x.test", models.RoleMentor)

	// learner creates and submits a project
	created := app.do(t, http.MethodPost, "/api/projects", learner, gin.H{
		"title": "My Project", "description": "A project that does things.",
		"tags": []string{"go"},
	})
	if created.Code != http.StatusOK {
		t.Fatalf("create project = %d: %s", created.Code, created.Body.String())
	}
	var projResp struct {
		Data struct {
			Project models.Project `json:"project"`
		} `json:"data"`
	}
	if err := json.Unmarshal(created.Body.Bytes(), &projResp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	project := projResp.Data.Project
	if project.Status != models.ProjectDraft {
		t.Fatalf("new project status = %q, want draft", project.Status)
	}

	reviewPath := fmt.Sprintf("/api/mentor/projects/%d/review", project.ID)

	// review before submission is rejected
	if w := app.do(t, http.MethodPost, reviewPath, mentor, gin.H{
		"feedback": "looks quite good overall", "approved": true,
	}); w.Code != http.StatusBadRequest {
		t.Errorf("review of draft = %d, want 400", w.Code)
	}

	submitPath := fmt.Sprintf("/api/projects/%d/submit", project.ID)
	if w := app.do(t, http.MethodPost, submitPath, learner, nil); w.Code != http.StatusOK {
		t.Fatalf("submit = %d", w.Code)
	}
	// double submit rejected
	if w := app.do(t, http.MethodPost, submitPath, learner, nil); w.Code != http.StatusBadRequest {
		t.Errorf("double submit = %d, want 400", w.Code)
	}

	// assign the mentor so the project shows up in pending reviews
	var learnerUser, mentorUser models.User
	app.db.Where("email = ?", "l@x.test").First(&learnerUser)
	app.db.Where("email = ?", "m@x.test").First(&mentorUser)
	if w := app.do(t, http.MethodPost, "/api/admin/assignments", admin, gin.H{
		"mentor_id": mentorUser.ID, "learner_id": learnerUser.ID,
	}); w.Code != http.StatusOK {
		t.Fatalf("create assignment = %d: %s", w.Code, w.Body.String())
	}

	pending := app.do(t, http.MethodGet, "/api/mentor/reviews", mentor, nil)
	if pending.Code != http.StatusOK {
		t.Fatalf("pending reviews = %d", pending.Code)
	}
	var pendingResp struct {
		Data struct {
			Reviews []json.RawMessage `json:"reviews"`
		} `json:"data"`
	}
	if err := json.Unmarshal(pending.Body.Bytes(), &pendingResp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(pendingResp.Data.Reviews) != 1 {
		t.Fatalf("pending reviews = %d, want 1", len(pendingResp.Data.Reviews))
	}

	// short feedback rejected
	if w := app.do(t, http.MethodPost, reviewPath, mentor, gin.H{
		"feedback": "short", "approved": true,
	}); w.Code != http.StatusBadRequest {
		t.Errorf("short feedback = %d, want 400", w.Code)
	}

	// approve
	if w := app.do(t, http.MethodPost, reviewPath, mentor, gin.H{
		"feedback": "solid work, approved for the showcase", "rating": 5, "approved": true,
	}); w.Code != http.StatusOK {
		t.Fatalf("review = %d: %s", w.Code, w.Body.String())
	}

	var reloaded models.Project
	if err := app.db.First(&reloaded, project.ID).Error; err != nil {
		t.Fatalf("reload project: %v", err)
	}
	if reloaded.Status != models.ProjectApproved {
		t.Errorf("project status = %q, want approved", reloaded.Status)
	}

	var reviewCount int64
	app.db.Model(&models.ProjectReview{}).Where("project_id = ?", project.ID).Count(&reviewCount)
	if reviewCount != 1 {
		t.Errorf("review rows = %d, want 1", reviewCount)
	}
}

func TestProjectOwnership(t *testing.T) {
	app := newTestApp(t)
	owner := app.register(t, "A", "a@x.test", "")
	intruder := app.register(t, "B", "b@x.test", "")

	created := app.do(t, http.MethodPost, "/api/projects", owner, gin.H{
		"title": "Mine", "description": "This one belongs to A.",
	})
	var projResp struct {
		Data struct {
			Project models.Project `json:"project"`
		} `json:"data"`
	}
	if err := json.Unmarshal(created.Body.Bytes(), &projResp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	path := fmt.Sprintf("/api/projects/%d", projResp.Data.Project.ID)

	if w := app.do(t, http.MethodPut, path, intruder, gin.H{"title": "Stolen"}); w.Code != http.StatusForbidden {
		t.Errorf("foreign update = %d, want 403", w.Code)
	}
	if w := app.do(t, http.MethodDelete, path, intruder, nil); w.Code != http.StatusForbidden {
		t.Errorf("foreign delete = %d, want 403", w.Code)
	}
	if w := app.do(t, http.MethodDelete, path, owner, nil); w.Code != http.StatusOK {
		t.Errorf("owner delete = %d, want 200", w.Code)
	}
}

func TestAdminStatsAndCleanup(t *testing.T) {
	app := newTestApp(t)
	admin := app.adminToken(t)
	app.register(t, "L", "l@x.test", "")
	app.register(t, "M", "m@x.test", models.RoleMentor)

	w := app.do(t, http.MethodGet, "/api/admin/stats", admin, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("stats = %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Data struct {
			Stats struct {
				Users struct {
					Total    int64 `json:"total"`
					Learners int64 `json:"learners"`
					Mentors  int64 `json:"mentors"`
					Admins   int64 `json:"admins"`
				} `json:"users"`
			} `json:"stats"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	u := resp.Data.Stats.Users
	if u.Total != 3 || u.Learners != 1 || u.Mentors != 1 || u.Admins != 1 {
		t.Errorf("user counts = %+v, want total 3, 1 of each role", u)
	}

	// nothing expired yet
	cleanup := app.do(t, http.MethodPost, "/api/admin/sessions/cleanup", admin, nil)
	if cleanup.Code != http.StatusOK {
		t.Fatalf("cleanup = %d", cleanup.Code)
	}
	var cleanupResp struct {
		Data struct {
			Removed int64 `json:"removed"`
		} `json:"data"`
	}
	if err := json.Unmarshal(cleanup.Body.Bytes(), &cleanupResp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cleanupResp.Data.Removed != 0 {
		t.Errorf("removed = %d, want 0", cleanupResp.Data.Removed)
	}
}

func TestAdminCannotDeleteSelf(t *testing.T) {
	app := newTestApp(t)
	admin := app.adminToken(t)

	var adminUser models.User
	app.db.Where("email = ?", "root@x.test").First(&adminUser)

	w := app.do(t, http.MethodDelete, fmt.Sprintf("/api/admin/users/%d", adminUser.ID), admin, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("self delete = %d, want 400", w.Code)
	}
}

func TestActivityLogRecordsMutations(t *testing.T) {
	app := newTestApp(t)
	learner := app.register(t, "L", "l@x.test", "")

	app.do(t, http.MethodPost, "/api/projects", learner, gin.H{
		"title": "Logged", "description": "A project created for the log.",
	})

	var count int64
	app.db.Model(&models.ActivityLog{}).Where("path = ?", "/api/projects").Count(&count)
	if count != 1 {
		t.Errorf("activity log rows = %d, want 1", count)
	}
}
