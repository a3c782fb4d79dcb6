package auth

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/edoomio/studio/internal/config"
	"github.com/edoomio/studio/internal/database/users"
	"github.com/edoomio/studio/internal/entities"
	"github.com/edoomio/studio/internal/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testAuthConfig() config.Auth {
	return config.Auth{
		Mode:             config.AuthModeLocal,
		SessionLifetime:  24 * time.Hour,
		BcryptCost:       4,
		SecureCookies:    false,
		MaxLoginAttempts: 5,
		LockoutDuration:  30 * time.Minute,
	}
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "auth.db")
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	if err := db.AutoMigrate(&entities.User{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})
	return db
}

func setupService(t *testing.T, cfg config.Auth) (*Service, *gorm.DB) {
	t.Helper()
	db := setupTestDB(t)
	return NewService(users.NewRepository(db), cfg), db
}

func setupSessionManager(t *testing.T, db *gorm.DB, cfg config.Auth) *SessionManager {
	t.Helper()
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get SQL DB: %v", err)
	}
	sm, err := NewSessionManager(sqlDB, cfg)
	if err != nil {
		t.Fatalf("failed to create session manager: %v", err)
	}
	return sm
}

type recordedAuth struct {
	userID  string
	action  string
	success bool
}

type fakeAuditor struct {
	events []recordedAuth
}

func (f *fakeAuditor) LogAuth(userID, action, _ string, success bool) {
	f.events = append(f.events, recordedAuth{userID: userID, action: action, success: success})
}

type testServer struct {
	router  *gin.Engine
	service *Service
	audit   *fakeAuditor
}

// setupTestRouter wires sessions, the auth middleware and the controller the
// way the HTTP server does, plus a /api/private route echoing the user ID.
func setupTestRouter(t *testing.T, cfg config.Auth) *testServer {
	t.Helper()
	svc, db := setupService(t, cfg)
	sm := setupSessionManager(t, db, cfg)
	audit := &fakeAuditor{}

	controller := NewAuthController(svc, sm, cfg, audit, logger.Nop())
	t.Cleanup(controller.Stop)

	router := gin.New()
	router.Use(sm.SessionLoadSave())
	router.Use(NewMiddleware(svc, sm, cfg).Handler())
	controller.RegisterRoutes(router)

	router.GET("/api/private", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetUserID(c)})
	})
	router.GET("/api/public/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetUserID(c)})
	})
	router.GET("/dashboard", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	return &testServer{router: router, service: svc, audit: audit}
}

func (s *testServer) do(req *http.Request, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	return rr
}

func sessionCookie(rr *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == "session" {
			return c
		}
	}
	return nil
}
