package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"skillforge/internal/auth"
	"skillforge/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestAuth(t *testing.T) *auth.Service {
	t.Helper()
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
	if err := db.AutoMigrate(&models.User{}, &models.Session{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return auth.NewService(db, 4, 7)
}

func newTestRouter(svc *auth.Service, roles ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	group := r.Group("/", SessionMiddleware(svc))
	if len(roles) > 0 {
		group.Use(RequireRoles(roles...))
	}
	group.GET("/ping", func(c *gin.Context) {
		user := CurrentUser(c)
		c.JSON(http.StatusOK, gin.H{"user_id": user.ID})
	})
	return r
}

func sessionFor(t *testing.T, svc *auth.Service, role string) string {
	t.Helper()
	ctx := context.Background()
	user, err := svc.Register(ctx, "T", role+"@x.test", "pw1234567", role)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	token, err := svc.CreateSession(ctx, user.ID)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	return token
}

func doRequest(r *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSessionMiddlewareNoCookie(t *testing.T) {
	svc := newTestAuth(t)
	r := newTestRouter(svc)

	if w := doRequest(r, ""); w.Code != http.StatusUnauthorized {
		t.Errorf("no cookie status = %d, want 401", w.Code)
	}
}

func TestSessionMiddlewareBadToken(t *testing.T) {
	svc := newTestAuth(t)
	r := newTestRouter(svc)

	if w := doRequest(r, "not-a-real-token"); w.Code != http.StatusUnauthorized {
		t.Errorf("bad token status = %d, want 401", w.Code)
	}
}

func TestSessionMiddlewareValidToken(t *testing.T) {
	svc := newTestAuth(t)
	r := newTestRouter(svc)
	token := sessionFor(t, svc, models.RoleLearner)

	if w := doRequest(r, token); w.Code != http.StatusOK {
		t.Errorf("valid token status = %d, want 200", w.Code)
	}
}

func TestRequireRolesForbidden(t *testing.T) {
	svc := newTestAuth(t)
	r := newTestRouter(svc, models.RoleAdmin)
	token := sessionFor(t, svc, models.RoleLearner)

	if w := doRequest(r, token); w.Code != http.StatusForbidden {
		t.Errorf("learner on admin route status = %d, want 403", w.Code)
	}
}

func TestRequireRolesAllowed(t *testing.T) {
	svc := newTestAuth(t)
	r := newTestRouter(svc, models.RoleMentor, models.RoleAdmin)

	mentorToken := sessionFor(t, svc, models.RoleMentor)
	if w := doRequest(r, mentorToken); w.Code != http.StatusOK {
		t.Errorf("mentor on mentor route status = %d, want 200", w.Code)
	}

	adminToken := sessionFor(t, svc, models.RoleAdmin)
	if w := doRequest(r, adminToken); w.Code != http.StatusOK {
		t.Errorf("admin on mentor route status = %d, want 200", w.Code)
	}
}
