package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cmlabs-hris/shiftops-backend-go/internal/config"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/domain/property"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/domain/shift"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/pkg/sse"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/pkg/timeutil"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/repository/memory"
	auditService "github.com/cmlabs-hris/shiftops-backend-go/internal/service/audit"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/service/conflict"
	exportService "github.com/cmlabs-hris/shiftops-backend-go/internal/service/export"
	gridService "github.com/cmlabs-hris/shiftops-backend-go/internal/service/grid"
	publishService "github.com/cmlabs-hris/shiftops-backend-go/internal/service/publish"
	shiftService "github.com/cmlabs-hris/shiftops-backend-go/internal/service/shift"
)

const testSecret = "test-secret-key-for-jwt"

type testServer struct {
	router *chi.Mux
	jwt    jwt.Service
	dir    *memory.Directory
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	log := zap.NewNop()
	dir := memory.NewDirectory()
	dir.PutProperty(property.Property{ID: "P1", Name: "Harbour View 3B"})
	dir.PutStaff(
		user.Staff{ID: "alice", Name: "Alice", Role: user.RoleCleaner, Status: user.StatusActive},
		user.Staff{ID: "bob", Name: "Bob", Role: user.RoleCleaner, Status: user.StatusActive},
	)

	repo := memory.NewShiftRepository()
	detector := conflict.NewDetector()
	roles := []string{string(user.RoleCleaner), string(user.RoleSupervisor)}

	shifts := shiftService.NewShiftService(repo, dir, dir, dir, shift.NewServiceTypeRegistry(), detector, nil,
		shiftService.Options{AutoPublish: shift.DefaultAutoPublish, AssignableRoles: roles, MaxRecurrence: 31}, log)
	audits := auditService.NewAuditService(repo, dir, detector, nil, "", nil, log)
	publishes := publishService.NewPublishService(repo, nil, nil, log)
	grids := gridService.NewGridService(repo, dir, dir, roles, log)
	exports := exportService.NewExportService(grids, repo, dir, time.UTC, nil, log)

	jwtSvc := jwt.NewJWTService(testSecret, "1h")
	router := NewRouter(config.AppConfig{Env: "test"}, jwtSvc, Handlers{
		Shift:   NewShiftHandler(shifts),
		Audit:   NewAuditHandler(audits),
		Publish: NewPublishHandler(publishes),
		Grid:    NewGridHandler(grids, exports),
		Event:   NewEventHandler(sse.NewHub(4), jwtSvc),
	})
	return &testServer{router: router, jwt: jwtSvc, dir: dir}
}

func (s *testServer) token(t *testing.T, userID string, role user.Role) string {
	t.Helper()
	tok, _, err := s.jwt.GenerateAccessToken(userID, userID, role)
	require.NoError(t, err)
	return tok
}

func (s *testServer) do(t *testing.T, token, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code      string            `json:"code"`
		Details   map[string]string `json:"details"`
		Conflicts []shift.Conflict  `json:"conflicts"`
	} `json:"error"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var e envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e), rec.Body.String())
	return e
}

func shiftBody(staff ...string) map[string]any {
	return map[string]any{
		"property_id":  "P1",
		"staff_ids":    staff,
		"date":         "2030-03-05",
		"start_time":   "10:00",
		"end_time":     "13:00",
		"service_type": "Standard Clean",
	}
}

func TestRouter_RequiresAuthentication(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, "", http.MethodGet, "/api/v1/shifts", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	streamToken, _, err := s.jwt.GenerateSSEToken("alice", user.RoleCleaner)
	require.NoError(t, err)
	rec = s.do(t, streamToken, http.MethodGet, "/api/v1/shifts", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "stream tokens are not access tokens")
}

func TestRouter_ShiftLifecycle(t *testing.T) {
	s := newTestServer(t)
	sched := s.token(t, "sched-1", user.RoleScheduler)
	alice := s.token(t, "alice", user.RoleCleaner)

	rec := s.do(t, alice, http.MethodPost, "/api/v1/shifts", shiftBody("alice"))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, sched, http.MethodPost, "/api/v1/shifts", shiftBody("alice"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created shift.SaveShiftResponse
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &created))
	id := created.Shift.ID
	assert.NotEmpty(t, id)
	assert.NotNil(t, created.Advisories)

	// double booking is refused with every conflict listed
	body := shiftBody("alice")
	body["start_time"] = "12:00"
	body["end_time"] = "14:00"
	rec = s.do(t, sched, http.MethodPost, "/api/v1/shifts", body)
	require.Equal(t, http.StatusConflict, rec.Code)
	conflicts := decode(t, rec).Error.Conflicts
	require.Len(t, conflicts, 1)
	assert.Equal(t, shift.ConflictStaffDoubleBooked, conflicts[0].Kind)

	// drafts are invisible to staff
	rec = s.do(t, alice, http.MethodGet, "/api/v1/shifts/"+id, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, sched, http.MethodPost, "/api/v1/publish", map[string]string{"from": "2030-03-04", "to": "2030-03-10"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, sched, http.MethodGet, "/api/v1/publish/pending?from=2030-03-04&to=2030-03-10", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(decode(t, rec).Data), `"has_unpublished":false`)

	rec = s.do(t, alice, http.MethodGet, "/api/v1/shifts/"+id, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// approval before completion is a precondition failure
	rec = s.do(t, sched, http.MethodPost, "/api/v1/shifts/"+id+"/audit/approve", nil)
	assert.Equal(t, http.StatusPreconditionFailed, rec.Code)

	rec = s.do(t, alice, http.MethodPost, "/api/v1/shifts/"+id+"/complete", map[string]int64{"timestamp": 1000})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = s.do(t, alice, http.MethodPost, "/api/v1/shifts/"+id+"/start", map[string]int64{"timestamp": 1000})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = s.do(t, alice, http.MethodPost, "/api/v1/shifts/"+id+"/complete", map[string]int64{"timestamp": 2000})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, sched, http.MethodPost, "/api/v1/shifts/"+id+"/audit/reject", map[string]string{})
	assert.Equal(t, http.StatusPreconditionFailed, rec.Code, "reason required")

	rec = s.do(t, sched, http.MethodPost, "/api/v1/shifts/"+id+"/audit/report-fix", map[string]string{"comment": "Kitchen left dirty"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var outcome struct {
		Reviewed shift.ShiftResponse   `json:"reviewed"`
		Created  []shift.ShiftResponse `json:"created"`
	}
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &outcome))
	require.NotNil(t, outcome.Reviewed.ApprovalStatus)
	assert.Equal(t, "rejected", *outcome.Reviewed.ApprovalStatus)
	require.Len(t, outcome.Created, 1)
	assert.Equal(t, shift.ServiceTypeFix, outcome.Created[0].ServiceType)
}

func TestRouter_ValidationErrors(t *testing.T) {
	s := newTestServer(t)
	sched := s.token(t, "sched-1", user.RoleScheduler)

	body := shiftBody("alice")
	body["date"] = "someday"
	body["end_time"] = "09:00"
	rec := s.do(t, sched, http.MethodPost, "/api/v1/shifts", body)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	details := decode(t, rec).Error.Details
	assert.Contains(t, details, "date")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/shifts", strings.NewReader("{not json"))
	req.Header.Set("Authorization", "Bearer "+sched)
	out := httptest.NewRecorder()
	s.router.ServeHTTP(out, req)
	assert.Equal(t, http.StatusBadRequest, out.Code)
}

func TestRouter_ApprovedLeaveConflict(t *testing.T) {
	s := newTestServer(t)
	sched := s.token(t, "sched-1", user.RoleScheduler)
	day := timeutil.NewDate(2030, time.March, 5)
	s.dir.PutLeave(leave.LeaveRequest{ID: "L1", UserID: "bob", LeaveTypeName: "Annual", StartDate: day, EndDate: day, Status: leave.LeaveStatusApproved})

	rec := s.do(t, sched, http.MethodPost, "/api/v1/shifts", shiftBody("bob"))
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, shift.ConflictLeave, decode(t, rec).Error.Conflicts[0].Kind)
}

func TestRouter_GridAndExports(t *testing.T) {
	s := newTestServer(t)
	sched := s.token(t, "sched-1", user.RoleScheduler)
	alice := s.token(t, "alice", user.RoleCleaner)

	rec := s.do(t, sched, http.MethodPost, "/api/v1/shifts", shiftBody("alice"))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = s.do(t, sched, http.MethodGet, "/api/v1/grid?week_start=2030-03-06", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, string(decode(t, rec).Data), `"week_start":"2030-03-04"`)

	rec = s.do(t, sched, http.MethodGet, "/api/v1/grid?week_start=nope", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = s.do(t, sched, http.MethodGet, "/api/v1/grid/export?week_start=2030-03-04", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "schedule_2030-03-04.xlsx")

	rec = s.do(t, alice, http.MethodGet, "/api/v1/grid/export?week_start=2030-03-04", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, alice, http.MethodGet, "/api/v1/staff/alice/calendar.ics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "BEGIN:VCALENDAR")

	rec = s.do(t, alice, http.MethodGet, "/api/v1/staff/bob/calendar.ics", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRouter_ServiceTypes(t *testing.T) {
	s := newTestServer(t)
	sched := s.token(t, "sched-1", user.RoleScheduler)

	rec := s.do(t, sched, http.MethodPost, "/api/v1/service-types", map[string]string{"name": "  deep   clean "})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(t, s.token(t, "alice", user.RoleCleaner), http.MethodGet, "/api/v1/service-types", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var types []string
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &types))
	assert.Contains(t, types, "deep clean")
}

func TestEventStream(t *testing.T) {
	hub := sse.NewHub(4)
	jwtSvc := jwt.NewJWTService(testSecret, "1h")
	h := NewEventHandler(hub, jwtSvc)

	rec := httptest.NewRecorder()
	h.Stream(rec, httptest.NewRequest(http.MethodGet, "/api/v1/events", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	tok, _, err := jwtSvc.GenerateSSEToken("sched-1", user.RoleScheduler)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/events?token="+tok, nil).WithContext(ctx)
	rec = httptest.NewRecorder()
	done := make(chan struct{})
	go func() {
		h.Stream(rec, req)
		close(done)
	}()

	require.Eventually(t, func() bool { return hub.SubscriberCount(sse.SchedulerChannel) == 1 }, 2*time.Second, 10*time.Millisecond)
	hub.Publish(sse.Event{Channel: sse.SchedulerChannel, Name: "toast", Data: map[string]string{"title": "Shift Created"}})
	time.Sleep(100 * time.Millisecond)
	cancel()
	<-done

	body := rec.Body.String()
	assert.Contains(t, body, "event: connected")
	assert.Contains(t, body, "event: toast")
	assert.Contains(t, body, `"title":"Shift Created"`)
}
