package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alexanderramin/wbsctl/internal/domain"
	"github.com/alexanderramin/wbsctl/internal/events"
	"github.com/alexanderramin/wbsctl/internal/metrics"
	"github.com/alexanderramin/wbsctl/internal/repository"
	"github.com/alexanderramin/wbsctl/internal/service"
	"github.com/alexanderramin/wbsctl/internal/testutil"
	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *APIError       `json:"error"`
}

type harness struct {
	t      *testing.T
	server *Server
	token  string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	bus := events.NewBus()
	t.Cleanup(bus.Close)
	repo := repository.NewSQLiteProjectRepo(testutil.NewTestDB(t), bus)
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	server := NewServer(Options{
		Services: service.New(repo, m, nil),
		Auth:     AuthConfig{JWTSecret: secret, Issuer: "wbs-test"},
		Logger:   zerolog.Nop(),
		Metrics:  m,
		Gatherer: reg,
	})
	return &harness{t: t, server: server, token: mint(t, "alice", secret, "wbs-test", time.Hour)}
}

func mint(t *testing.T, sub, key, issuer string, ttl time.Duration) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   sub,
		Issuer:    issuer,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	require.NoError(t, err)
	return token
}

// call sends a request with an optional JSON body and bearer token.
func (h *harness) call(method, path string, body any, token string) (*http.Response, []byte) {
	h.t.Helper()
	var r io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			r = strings.NewReader(b)
		default:
			raw, err := json.Marshal(b)
			require.NoError(h.t, err)
			r = bytes.NewReader(raw)
		}
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := h.server.App().Test(req, -1)
	require.NoError(h.t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(h.t, err)
	return resp, raw
}

// do calls as alice and decodes the envelope, asserting the status.
func (h *harness) do(method, path string, body any, status int, out any) envelope {
	h.t.Helper()
	resp, raw := h.call(method, path, body, h.token)
	require.Equal(h.t, status, resp.StatusCode, string(raw))
	var env envelope
	if len(raw) > 0 {
		require.NoError(h.t, json.Unmarshal(raw, &env))
	}
	if out != nil {
		require.NoError(h.t, json.Unmarshal(env.Data, out))
	}
	return env
}

func (h *harness) createProject(name string) string {
	h.t.Helper()
	var p domain.Project
	h.do(http.MethodPost, "/api/v1/projects", map[string]string{"name": name}, http.StatusCreated, &p)
	return p.ID
}

func TestHealthIsPublic(t *testing.T) {
	h := newHarness(t)
	resp, raw := h.call(http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), `"healthy"`)
}

func TestAuth_RejectsBadTokens(t *testing.T) {
	h := newHarness(t)
	tests := map[string]string{
		"missing":      "",
		"wrong key":    mint(t, "alice", "other", "wbs-test", time.Hour),
		"expired":      mint(t, "alice", secret, "wbs-test", -time.Minute),
		"wrong issuer": mint(t, "alice", secret, "elsewhere", time.Hour),
		"no subject":   mint(t, "", secret, "wbs-test", time.Hour),
		"garbage":      "not.a.jwt",
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			resp, raw := h.call(http.MethodGet, "/api/v1/projects", nil, token)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			assert.Contains(t, string(raw), "UNAUTHORIZED")
		})
	}
}

func TestProjects_ScopedToPrincipal(t *testing.T) {
	h := newHarness(t)
	id := h.createProject("Website")

	var list []domain.Project
	h.do(http.MethodGet, "/api/v1/projects?q=web", nil, http.StatusOK, &list)
	require.Len(t, list, 1)
	assert.Equal(t, id, list[0].ID)

	bob := mint(t, "bob", secret, "wbs-test", time.Hour)
	resp, _ := h.call(http.MethodGet, "/api/v1/projects/"+id, nil, bob)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	env := h.do(http.MethodPost, "/api/v1/projects", map[string]string{"name": " "}, http.StatusUnprocessableEntity, nil)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.Equal(t, "name", env.Error.Details["field"])
}

func TestProjects_DetailsCharterDelete(t *testing.T) {
	h := newHarness(t)
	id := h.createProject("Website")
	base := "/api/v1/projects/" + id

	var p domain.Project
	h.do(http.MethodPatch, base, map[string]string{"goal": "Ship v2"}, http.StatusOK, &p)
	assert.Equal(t, "Ship v2", p.Goal)
	assert.Equal(t, "Website", p.Name)

	h.do(http.MethodPut, base+"/charter", domain.Charter{Scope: "Marketing site"}, http.StatusOK, &p)
	assert.Equal(t, "Marketing site", p.Charter.Scope)

	resp, _ := h.call(http.MethodDelete, base, nil, h.token)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	h.do(http.MethodGet, base, nil, http.StatusNotFound, nil)
}

func TestTasks_Lifecycle(t *testing.T) {
	h := newHarness(t)
	base := "/api/v1/projects/" + h.createProject("Launch")

	var added struct {
		ID      string         `json:"id"`
		Project domain.Project `json:"project"`
	}
	h.do(http.MethodPost, base+"/tasks", map[string]string{
		"name": "Design", "startDate": "2025-01-01", "endDate": "2025-01-10",
	}, http.StatusCreated, &added)
	assert.Equal(t, "1", added.ID)

	h.do(http.MethodPost, base+"/tasks", map[string]string{"parentId": "1", "name": "Wireframes"}, http.StatusCreated, &added)
	assert.Equal(t, "1.1", added.ID)
	h.do(http.MethodPost, base+"/tasks", map[string]string{"parentId": "1", "name": "Mockups"}, http.StatusCreated, &added)

	var p domain.Project
	h.do(http.MethodPatch, base+"/tasks/1.2", map[string]any{
		"departmentProgress": map[string]int{"General": 60},
		"status":             "in progress",
	}, http.StatusOK, &p)
	general := p.Departments[0].ID
	assert.Equal(t, 30, p.Tasks[0].DepartmentProgress[general])

	var rows []taskRowResponse
	h.do(http.MethodGet, base+"/tasks?baseline=2025-01-10", nil, http.StatusOK, &rows)
	require.Len(t, rows, 3)
	assert.Equal(t, 30, rows[0].Metrics.Overall)
	assert.Equal(t, -70, rows[0].Metrics.Gap)
	assert.Equal(t, 1, rows[2].Depth)

	env := h.do(http.MethodPost, base+"/tasks/1/move", moveRequest{Target: "1.1"}, http.StatusUnprocessableEntity, nil)
	assert.Equal(t, "target", env.Error.Details["field"])

	env = h.do(http.MethodPatch, base+"/tasks/1", map[string]string{"startDate": "2024-01-01"}, http.StatusUnprocessableEntity, nil)
	assert.Contains(t, env.Error.Message, "derived")

	h.do(http.MethodPost, base+"/tasks/1.1/toggle", nil, http.StatusOK, &p)
	h.do(http.MethodDelete, base+"/tasks/1", nil, http.StatusOK, &p)
	assert.Empty(t, p.Tasks)

	h.do(http.MethodDelete, base+"/tasks/7.7", nil, http.StatusNotFound, nil)
	h.do(http.MethodGet, base+"/tasks?baseline=soon", nil, http.StatusUnprocessableEntity, nil)
}

func TestAddDepartment_WeightDefaultsToOne(t *testing.T) {
	h := newHarness(t)
	base := "/api/v1/projects/" + h.createProject("Launch")

	var p domain.Project
	h.do(http.MethodPost, base+"/departments", map[string]string{"name": "QA"}, http.StatusCreated, &p)
	require.Len(t, p.Departments, 2)
	assert.Equal(t, 1.0, p.Departments[1].Weight)

	h.do(http.MethodPost, base+"/departments", map[string]any{"name": "Ops", "weight": 0}, http.StatusCreated, &p)
	assert.Equal(t, 0.0, p.Departments[2].Weight, "explicit zero is kept")
}

func TestDepartmentsTeamDeliverables(t *testing.T) {
	h := newHarness(t)
	base := "/api/v1/projects/" + h.createProject("Launch")
	h.do(http.MethodPost, base+"/tasks", map[string]string{"name": "Build"}, http.StatusCreated, nil)

	h.do(http.MethodPost, base+"/departments", map[string]any{"name": "Quality Assurance", "weight": 20}, http.StatusCreated, nil)
	h.do(http.MethodPost, base+"/departments", map[string]any{"name": "Legal", "weight": 90}, http.StatusUnprocessableEntity, nil)

	var p domain.Project
	h.do(http.MethodPatch, base+"/departments/Quality%20Assurance", map[string]any{"name": "QA", "weight": 30}, http.StatusOK, &p)
	assert.Equal(t, "QA", p.Departments[1].Name)
	assert.Equal(t, 30.0, p.Departments[1].Weight)

	var depts struct {
		TotalWeight float64 `json:"totalWeight"`
	}
	h.do(http.MethodGet, base+"/departments", nil, http.StatusOK, &depts)
	assert.Equal(t, 31.0, depts.TotalWeight)
	h.do(http.MethodDelete, base+"/departments/QA", nil, http.StatusOK, &p)
	assert.Len(t, p.Departments, 1)

	var member createdResponse
	h.do(http.MethodPost, base+"/team", memberRequest{Name: "Dana", Role: "Lead"}, http.StatusCreated, &member)
	lead := member.ID
	h.do(http.MethodPost, base+"/team", memberRequest{ParentID: lead, Name: "Sam"}, http.StatusCreated, &member)
	env := h.do(http.MethodPost, base+"/team/"+lead+"/move", moveRequest{Target: member.ID}, http.StatusUnprocessableEntity, nil)
	assert.Contains(t, env.Error.Message, "descendant")
	h.do(http.MethodPatch, base+"/team/"+member.ID, map[string]string{"role": "Dev"}, http.StatusOK, &p)
	assert.Equal(t, "Dev", p.Team[1].Role)
	h.do(http.MethodDelete, base+"/team/"+lead, nil, http.StatusOK, &p)
	assert.Empty(t, p.Team)

	var deliverable createdResponse
	h.do(http.MethodPost, base+"/tasks/1/deliverables", uploadRequest{FileName: "plan.pdf", Content: []byte("%PDF")}, http.StatusCreated, &deliverable)
	var version struct {
		Version int `json:"version"`
	}
	h.do(http.MethodPost, base+"/tasks/1/deliverables/"+deliverable.ID+"/versions", uploadRequest{FileName: "plan-2.pdf"}, http.StatusCreated, &version)
	assert.Equal(t, 2, version.Version)
	h.do(http.MethodDelete, base+"/tasks/1/deliverables/"+deliverable.ID, nil, http.StatusOK, &p)
	assert.Empty(t, p.Tasks[0].Deliverables)
}

func TestImportExportSummary(t *testing.T) {
	h := newHarness(t)
	id := h.createProject("Launch")
	base := "/api/v1/projects/" + id

	csv := "id,parentId,name,startDate,endDate,Progress: General\n" +
		"1,,Build,2025-01-01,2025-01-10,40\n"
	req := httptest.NewRequest(http.MethodPost, base+"/import?format=csv", strings.NewReader(csv))
	req.Header.Set("Authorization", "Bearer "+h.token)
	resp, err := h.server.App().Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, raw := h.call(http.MethodGet, base+"/export?format=csv&baseline=2025-01-10", nil, h.token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/csv; charset=utf-8", resp.Header.Get("Content-Type"))
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasSuffix(lines[1], ",40,100,40,-60,10"), lines[1])
	assert.Contains(t, lines[0], "plannedProgress")

	_, raw = h.call(http.MethodGet, base+"/export?format=csv&derived=false", nil, h.token)
	assert.NotContains(t, string(raw), "plannedProgress")

	var sum struct {
		Summary struct {
			Delayed int `json:"delayedTasks"`
		} `json:"summary"`
		Attention []struct {
			Task domain.Task `json:"task"`
		} `json:"attention"`
	}
	h.do(http.MethodGet, base+"/summary?baseline=2025-01-10", nil, http.StatusOK, &sum)
	assert.Equal(t, 1, sum.Summary.Delayed)
	require.Len(t, sum.Attention, 1)
	assert.Equal(t, "Build", sum.Attention[0].Task.Name)

	_, doc := h.call(http.MethodGet, base+"/export?format=json", nil, h.token)
	var imported importResponse
	h.do(http.MethodPost, "/api/v1/projects/import", string(doc), http.StatusCreated, &imported)
	assert.NotEqual(t, id, imported.Project.ID)
	assert.Equal(t, 1, imported.TaskCount)

	h.do(http.MethodGet, base+"/export?format=pdf", nil, http.StatusUnprocessableEntity, nil)
	h.do(http.MethodPost, base+"/import?format=csv", "name\n", http.StatusBadRequest, nil)
}

func TestMetricsEndpoint(t *testing.T) {
	h := newHarness(t)
	h.createProject("Launch")

	resp, raw := h.call(http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := string(raw)
	assert.Contains(t, body, "http_request_duration_seconds")
	assert.Contains(t, body, `path="/api/v1/projects"`)
}
