package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/hackathon-mentor-api/internal/models"
	"github.com/noah-isme/hackathon-mentor-api/internal/service"
)

func newAuth(t *testing.T) *service.AuthService {
	t.Helper()
	return service.NewAuthService(nil, service.AuthConfig{AccessTokenSecret: "test-secret"})
}

func protectedRouter(auth *service.AuthService, allowed ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/mentors/:id/assignments", JWT(auth), RBAC(allowed...), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func call(r *gin.Engine, path, token string) int {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	r.ServeHTTP(w, req)
	return w.Code
}

func TestJWTRejectsMissingAndInvalidTokens(t *testing.T) {
	r := protectedRouter(newAuth(t), string(models.RoleOrganizer))

	assert.Equal(t, http.StatusUnauthorized, call(r, "/mentors/m-1/assignments", ""))
	assert.Equal(t, http.StatusUnauthorized, call(r, "/mentors/m-1/assignments", "not-a-jwt"))
}

func TestRBACRoleAndSelf(t *testing.T) {
	auth := newAuth(t)
	r := protectedRouter(auth, string(models.RoleOrganizer), Self)

	organizer, err := auth.IssueToken("u-1", models.RoleOrganizer, "o@example.com", "", time.Minute)
	require.NoError(t, err)
	mentor, err := auth.IssueToken("u-2", models.RoleMentor, "m@example.com", "m-1", time.Minute)
	require.NoError(t, err)
	judge, err := auth.IssueToken("u-3", models.RoleJudge, "j@example.com", "", time.Minute)
	require.NoError(t, err)

	assert.Equal(t, http.StatusNoContent, call(r, "/mentors/m-9/assignments", organizer))
	assert.Equal(t, http.StatusNoContent, call(r, "/mentors/m-1/assignments", mentor))
	assert.Equal(t, http.StatusForbidden, call(r, "/mentors/m-2/assignments", mentor))
	assert.Equal(t, http.StatusForbidden, call(r, "/mentors/m-1/assignments", judge))
}

func TestBearerToken(t *testing.T) {
	token, ok := bearerToken("bearer abc")
	assert.True(t, ok)
	assert.Equal(t, "abc", token)

	_, ok = bearerToken("Basic abc")
	assert.False(t, ok)
	_, ok = bearerToken("Bearer   ")
	assert.False(t, ok)
}

func TestMetricsMiddlewareRecordsRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := service.NewMetricsService()
	r := gin.New()
	r.Use(Metrics(metrics))
	r.GET("/mentors/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/mentors/m-1", nil))
	require.Equal(t, http.StatusOK, w.Code)

	families, err := metrics.Registry().Gather()
	require.NoError(t, err)
	found := false
	for _, family := range families {
		if family.GetName() != "http_requests_total" {
			continue
		}
		for _, m := range family.GetMetric() {
			for _, label := range m.GetLabel() {
				if label.GetName() == "path" && label.GetValue() == "/mentors/:id" {
					found = true
				}
			}
		}
	}
	assert.True(t, found)
}
