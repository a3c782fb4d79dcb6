package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/edoomio/studio/internal/config"
	"github.com/edoomio/studio/internal/entities"
)

func TestMiddleware_NoAuthMode(t *testing.T) {
	cfg := testAuthConfig()
	cfg.Mode = config.AuthModeNone
	svc, _ := setupService(t, cfg)

	router := gin.New()
	router.Use(NewMiddleware(svc, nil, cfg).Handler())
	router.GET("/api/worksheets", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": GetUserID(c), "type": GetAuthType(c)})
	})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/worksheets", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["user_id"] != DefaultUserID || body["type"] != string(AuthTypeNone) {
		t.Errorf("unexpected body %v", body)
	}
}

func TestMiddleware_AnonymousRequests(t *testing.T) {
	srv := setupTestRouter(t, testAuthConfig())

	tests := []struct {
		name       string
		path       string
		accept     string
		wantStatus int
		wantBody   string
	}{
		{"public api prefix", "/api/public/ping", "", http.StatusOK, `"user_id":""`},
		{"setup status", "/setup", "", http.StatusOK, "setupRequired"},
		{"private api returns 401", "/api/private", "", http.StatusUnauthorized, "authentication required"},
		{"browser page redirects", "/dashboard", "text/html", http.StatusFound, ""},
		{"json client gets 401", "/dashboard", "application/json", http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.accept != "" {
				req.Header.Set("Accept", tt.accept)
			}
			rr := srv.do(req)
			if rr.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
			if tt.wantBody != "" && !strings.Contains(rr.Body.String(), tt.wantBody) {
				t.Errorf("body %q missing %q", rr.Body.String(), tt.wantBody)
			}
			if tt.wantStatus == http.StatusFound {
				if loc := rr.Header().Get("Location"); loc != "/login?next=%2Fdashboard" {
					t.Errorf("Location = %q", loc)
				}
			}
		})
	}
}

func TestMiddleware_RequireRole(t *testing.T) {
	tests := []struct {
		name       string
		role       entities.UserRole
		wantStatus int
	}{
		{"admin allowed", entities.UserRoleAdmin, http.StatusOK},
		{"viewer forbidden", entities.UserRoleViewer, http.StatusForbidden},
		{"missing role forbidden", "", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Middleware{config: testAuthConfig()}
			router := gin.New()
			router.Use(func(c *gin.Context) {
				c.Set(ContextKeyUserID, "u1")
				if tt.role != "" {
					c.Set(ContextKeyRole, tt.role)
				}
			})
			router.GET("/api/admin", m.RequireRole(entities.UserRoleAdmin), func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/admin", nil))
			if rr.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
		})
	}
}

func TestMiddleware_RequireRole_NoAuthMode(t *testing.T) {
	cfg := testAuthConfig()
	cfg.Mode = config.AuthModeNone
	m := &Middleware{config: cfg}

	router := gin.New()
	router.GET("/api/admin", m.RequireRole(entities.UserRoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/admin", nil))
	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rr.Code)
	}
}

func TestMiddleware_RequireAuth(t *testing.T) {
	m := &Middleware{config: testAuthConfig()}
	router := gin.New()
	router.GET("/api/public/mine", m.RequireAuth(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/public/mine", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rr.Code)
	}
}

func TestContextHelpers_Empty(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	if GetUserID(c) != "" {
		t.Error("GetUserID should be empty")
	}
	if GetUsername(c) != "" {
		t.Error("GetUsername should be empty")
	}
	if GetUserRole(c) != "" {
		t.Error("GetUserRole should be empty")
	}
	if GetAuthType(c) != AuthTypeNone {
		t.Error("GetAuthType should default to none")
	}
	if IsAuthenticated(c) {
		t.Error("IsAuthenticated should be false")
	}
}
