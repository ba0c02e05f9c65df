package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hanyam/TaskManagement-sub002/config"
	"github.com/hanyam/TaskManagement-sub002/constants"
	"github.com/hanyam/TaskManagement-sub002/dto"
	"github.com/hanyam/TaskManagement-sub002/memstore"
	"github.com/hanyam/TaskManagement-sub002/models"
	"github.com/hanyam/TaskManagement-sub002/queries"
	"github.com/hanyam/TaskManagement-sub002/routes"
	"github.com/hanyam/TaskManagement-sub002/services"
	"github.com/hanyam/TaskManagement-sub002/utils"
	"github.com/hanyam/TaskManagement-sub002/workflows"
)

type testEnv struct {
	router *gin.Engine
	store  *memstore.MemoryStore
	now    time.Time

	admin models.User
	mgr   models.User
	emp   models.User
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	gin.SetMode(gin.TestMode)
	if os.Getenv("JWT_SECRET") == "" {
		_ = os.Setenv("JWT_SECRET", "test-secret")
	}

	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	store := memstore.New()
	clock := services.FixedClock{T: now}
	reminder := services.NewReminderCalculator(config.DefaultReminderOptions(), clock)

	router := routes.SetupRouter(routes.Deps{
		Store:     store,
		Workflows: workflows.NewService(store, clock),
		Queries:   queries.New(store, reminder, clock),
	})

	admin := models.NewUser("admin@example.com", "Admin", constants.RoleAdmin)
	mgr := models.NewUser("manager@example.com", "Manager", constants.RoleManager)
	emp := models.NewUser("employee@example.com", "Employee", constants.RoleEmployee)
	emp.ManagerID = &mgr.ID

	for _, u := range []*models.User{admin, mgr, emp} {
		h, err := utils.HashPassword("pass1234")
		if err != nil {
			t.Fatalf("hash password: %v", err)
		}
		u.Password = h
		if err := store.CreateUser(context.Background(), u); err != nil {
			t.Fatalf("seed user %s: %v", u.Email, err)
		}
	}

	return &testEnv{router: router, store: store, now: now, admin: *admin, mgr: *mgr, emp: *emp}
}

func doRequest(t *testing.T, r http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func bearerFor(t *testing.T, u models.User) map[string]string {
	t.Helper()
	tok, err := utils.GenerateJWT(u)
	if err != nil {
		t.Fatalf("generate jwt: %v", err)
	}
	return map[string]string{"Authorization": "Bearer " + tok}
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal envelope: %v body=%s", err, w.Body.String())
	}
	return resp
}

func dataMap(t *testing.T, resp dto.Response) map[string]any {
	t.Helper()
	m, ok := resp.Data.(map[string]any)
	if !ok {
		t.Fatalf("expected object data, got %T", resp.Data)
	}
	return m
}

func TestAuth_RegisterAndLogin(t *testing.T) {
	env := setupTestEnv(t)

	reg := map[string]any{
		"email":       "new@example.com",
		"displayName": "New User",
		"password":    "pass1234",
		"role":        "employee",
	}
	w := doRequest(t, env.router, http.MethodPost, "/register", reg, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("register status=%d body=%s", w.Code, w.Body.String())
	}

	// Re-registering the same email conflicts.
	w = doRequest(t, env.router, http.MethodPost, "/register", reg, nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate register expected 409 got=%d body=%s", w.Code, w.Body.String())
	}

	login := map[string]any{"email": "new@example.com", "password": "pass1234"}
	w = doRequest(t, env.router, http.MethodPost, "/login", login, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("login status=%d body=%s", w.Code, w.Body.String())
	}
	data := dataMap(t, decodeEnvelope(t, w))
	if data["token"] == nil || data["token"] == "" {
		t.Fatalf("expected token in response: %v", data)
	}

	login["password"] = "wrong"
	w = doRequest(t, env.router, http.MethodPost, "/login", login, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("bad login expected 401 got=%d", w.Code)
	}
}

func TestAuth_MissingAndMalformedTokens(t *testing.T) {
	env := setupTestEnv(t)

	w := doRequest(t, env.router, http.MethodGet, "/tasks", nil, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("no auth header expected 401 got=%d", w.Code)
	}

	w = doRequest(t, env.router, http.MethodGet, "/tasks", nil, map[string]string{"Authorization": "Bearer nonsense"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("bad token expected 401 got=%d", w.Code)
	}
}

func TestUsers_AdminOnly(t *testing.T) {
	env := setupTestEnv(t)

	w := doRequest(t, env.router, http.MethodGet, "/users", nil, bearerFor(t, env.admin))
	if w.Code != http.StatusOK {
		t.Fatalf("GET /users as admin status=%d body=%s", w.Code, w.Body.String())
	}

	w = doRequest(t, env.router, http.MethodGet, "/users", nil, bearerFor(t, env.mgr))
	if w.Code != http.StatusForbidden {
		t.Fatalf("GET /users as manager expected 403 got=%d", w.Code)
	}

	upd := map[string]any{"role": "manager", "managerId": env.mgr.ID}
	w = doRequest(t, env.router, http.MethodPut, "/users/"+env.emp.ID.String(), upd, bearerFor(t, env.admin))
	if w.Code != http.StatusOK {
		t.Fatalf("PUT /users/:id status=%d body=%s", w.Code, w.Body.String())
	}

	// A user cannot be their own manager.
	upd = map[string]any{"managerId": env.emp.ID}
	w = doRequest(t, env.router, http.MethodPut, "/users/"+env.emp.ID.String(), upd, bearerFor(t, env.admin))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("self-manager expected 400 got=%d body=%s", w.Code, w.Body.String())
	}

	// The employee reports to the manager, so pointing the manager at
	// the employee would close a reporting cycle.
	upd = map[string]any{"managerId": env.emp.ID}
	w = doRequest(t, env.router, http.MethodPut, "/users/"+env.mgr.ID.String(), upd, bearerFor(t, env.admin))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("reporting cycle expected 400 got=%d body=%s", w.Code, w.Body.String())
	}
	resp := decodeEnvelope(t, w)
	if len(resp.Errors) != 1 || resp.Errors[0].Field != "ManagerId" {
		t.Fatalf("expected ManagerId violation, got %v", resp.Errors)
	}
}

func TestTasks_FullReviewLifecycle(t *testing.T) {
	env := setupTestEnv(t)
	mgrAuth := bearerFor(t, env.mgr)
	empAuth := bearerFor(t, env.emp)

	due := env.now.Add(7 * 24 * time.Hour)
	create := map[string]any{
		"title":          "Ship the release",
		"priority":       int(models.PriorityHigh),
		"type":           int(models.TypeWithAcceptedProgress),
		"dueDate":        due.Format(time.RFC3339),
		"assignedUserId": env.emp.ID,
	}
	w := doRequest(t, env.router, http.MethodPost, "/tasks", create, mgrAuth)
	if w.Code != http.StatusOK {
		t.Fatalf("POST /tasks status=%d body=%s", w.Code, w.Body.String())
	}
	taskID := dataMap(t, decodeEnvelope(t, w))["id"].(string)

	// Employee accepts the assignment.
	w = doRequest(t, env.router, http.MethodPost, "/tasks/"+taskID+"/accept", nil, empAuth)
	if w.Code != http.StatusOK {
		t.Fatalf("accept status=%d body=%s", w.Code, w.Body.String())
	}

	// Progress on an acceptance-tracked task parks it under review.
	w = doRequest(t, env.router, http.MethodPost, "/tasks/"+taskID+"/progress",
		map[string]any{"progressPercentage": 50, "notes": "halfway"}, empAuth)
	if w.Code != http.StatusOK {
		t.Fatalf("progress status=%d body=%s", w.Code, w.Body.String())
	}
	if status := dataMap(t, decodeEnvelope(t, w))["status"].(float64); models.TaskStatus(status) != models.StatusUnderReview {
		t.Fatalf("expected UnderReview got %v", status)
	}

	// Manager accepts the pending entry.
	w = doRequest(t, env.router, http.MethodGet, "/tasks/"+taskID+"/progress", nil, mgrAuth)
	if w.Code != http.StatusOK {
		t.Fatalf("get progress status=%d body=%s", w.Code, w.Body.String())
	}
	var progResp dto.Response
	if err := json.Unmarshal(w.Body.Bytes(), &progResp); err != nil {
		t.Fatalf("unmarshal progress: %v", err)
	}
	entries := progResp.Data.([]any)
	entryID := entries[0].(map[string]any)["id"].(string)

	w = doRequest(t, env.router, http.MethodPost, "/tasks/"+taskID+"/progress/"+entryID+"/accept", nil, mgrAuth)
	if w.Code != http.StatusOK {
		t.Fatalf("accept progress status=%d body=%s", w.Code, w.Body.String())
	}

	// Employees cannot resolve progress entries.
	w = doRequest(t, env.router, http.MethodPost, "/tasks/"+taskID+"/progress/"+entryID+"/accept", nil, empAuth)
	if w.Code != http.StatusForbidden {
		t.Fatalf("progress accept as employee expected 403 got=%d", w.Code)
	}

	// Employee declares the work done; manager signs off with a rating.
	w = doRequest(t, env.router, http.MethodPost, "/tasks/"+taskID+"/complete", nil, empAuth)
	if w.Code != http.StatusOK {
		t.Fatalf("complete status=%d body=%s", w.Code, w.Body.String())
	}

	review := map[string]any{"accepted": true, "rating": 5, "feedback": "well done"}
	w = doRequest(t, env.router, http.MethodPost, "/tasks/"+taskID+"/review", review, mgrAuth)
	if w.Code != http.StatusOK {
		t.Fatalf("review status=%d body=%s", w.Code, w.Body.String())
	}
	final := dataMap(t, decodeEnvelope(t, w))
	if models.TaskStatus(final["status"].(float64)) != models.StatusCompleted {
		t.Fatalf("expected Completed got %v", final["status"])
	}

	// Completed is terminal: another completion attempt fails validation.
	w = doRequest(t, env.router, http.MethodPost, "/tasks/"+taskID+"/complete", nil, empAuth)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("complete on terminal expected 400 got=%d body=%s", w.Code, w.Body.String())
	}

	// The audit trail recorded the transitions.
	w = doRequest(t, env.router, http.MethodGet, "/tasks/"+taskID+"/history", nil, mgrAuth)
	if w.Code != http.StatusOK {
		t.Fatalf("history status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestTasks_ReassignInFlightWork(t *testing.T) {
	env := setupTestEnv(t)
	mgrAuth := bearerFor(t, env.mgr)
	empAuth := bearerFor(t, env.emp)

	due := env.now.Add(7 * 24 * time.Hour)
	create := map[string]any{
		"title":          "Handover",
		"priority":       int(models.PriorityMedium),
		"type":           int(models.TypeSimple),
		"dueDate":        due.Format(time.RFC3339),
		"assignedUserId": env.emp.ID,
	}
	w := doRequest(t, env.router, http.MethodPost, "/tasks", create, mgrAuth)
	if w.Code != http.StatusOK {
		t.Fatalf("create status=%d body=%s", w.Code, w.Body.String())
	}
	taskID := dataMap(t, decodeEnvelope(t, w))["id"].(string)

	// Accepted work can still be re-routed, unlike plain assignment.
	w = doRequest(t, env.router, http.MethodPost, "/tasks/"+taskID+"/accept", nil, empAuth)
	if w.Code != http.StatusOK {
		t.Fatalf("accept status=%d body=%s", w.Code, w.Body.String())
	}

	reassign := map[string]any{"newUserIds": []string{env.admin.ID.String()}}
	w = doRequest(t, env.router, http.MethodPut, "/tasks/"+taskID+"/reassign", reassign, empAuth)
	if w.Code != http.StatusForbidden {
		t.Fatalf("reassign as employee expected 403 got=%d", w.Code)
	}

	w = doRequest(t, env.router, http.MethodPut, "/tasks/"+taskID+"/reassign", reassign, mgrAuth)
	if w.Code != http.StatusOK {
		t.Fatalf("reassign status=%d body=%s", w.Code, w.Body.String())
	}
	data := dataMap(t, decodeEnvelope(t, w))
	if models.TaskStatus(data["status"].(float64)) != models.StatusAssigned {
		t.Fatalf("expected Assigned after reassign, got %v", data["status"])
	}
	if got := data["assignedUserId"].(string); got != env.admin.ID.String() {
		t.Fatalf("expected new assignee %s got %s", env.admin.ID, got)
	}
}

func TestTasks_PaginationValidation(t *testing.T) {
	env := setupTestEnv(t)

	w := doRequest(t, env.router, http.MethodGet, "/tasks?page=0&pageSize=0", nil, bearerFor(t, env.mgr))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got=%d body=%s", w.Code, w.Body.String())
	}
	resp := decodeEnvelope(t, w)
	if len(resp.Errors) != 2 {
		t.Fatalf("expected both pagination errors, got %v", resp.Errors)
	}
	fields := map[string]bool{resp.Errors[0].Field: true, resp.Errors[1].Field: true}
	if !fields["Page"] || !fields["PageSize"] {
		t.Fatalf("expected Page and PageSize violations, got %v", resp.Errors)
	}
	if resp.TraceID == "" {
		t.Fatalf("expected trace id on error envelope")
	}
}

func TestTasks_AccessDeniedVersusNotFound(t *testing.T) {
	env := setupTestEnv(t)
	mgrAuth := bearerFor(t, env.mgr)

	create := map[string]any{
		"title":    "Private task",
		"priority": int(models.PriorityLow),
		"type":     int(models.TypeSimple),
	}
	w := doRequest(t, env.router, http.MethodPost, "/tasks", create, mgrAuth)
	if w.Code != http.StatusOK {
		t.Fatalf("create status=%d body=%s", w.Code, w.Body.String())
	}
	taskID := dataMap(t, decodeEnvelope(t, w))["id"].(string)

	// The employee is neither creator nor assignee: 403, not 404.
	w = doRequest(t, env.router, http.MethodGet, "/tasks/"+taskID, nil, bearerFor(t, env.emp))
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got=%d body=%s", w.Code, w.Body.String())
	}
	resp := decodeEnvelope(t, w)
	if len(resp.Errors) != 1 || resp.Errors[0].Code != "ACCESS_DENIED" {
		t.Fatalf("expected ACCESS_DENIED got %v", resp.Errors)
	}

	w = doRequest(t, env.router, http.MethodGet, "/tasks/"+uuid.NewString(), nil, bearerFor(t, env.emp))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got=%d body=%s", w.Code, w.Body.String())
	}
}

func TestExtensions_ApproveIsNotIdempotent(t *testing.T) {
	env := setupTestEnv(t)
	mgrAuth := bearerFor(t, env.mgr)
	empAuth := bearerFor(t, env.emp)

	due := env.now.Add(5 * 24 * time.Hour)
	create := map[string]any{
		"title":          "Migration",
		"priority":       int(models.PriorityMedium),
		"type":           int(models.TypeWithDueDate),
		"dueDate":        due.Format(time.RFC3339),
		"assignedUserId": env.emp.ID,
	}
	w := doRequest(t, env.router, http.MethodPost, "/tasks", create, mgrAuth)
	if w.Code != http.StatusOK {
		t.Fatalf("create status=%d body=%s", w.Code, w.Body.String())
	}
	taskID := dataMap(t, decodeEnvelope(t, w))["id"].(string)

	ext := map[string]any{
		"requestedDueDate": due.Add(72 * time.Hour).Format(time.RFC3339),
		"reason":           "vendor slipped",
	}
	w = doRequest(t, env.router, http.MethodPost, "/tasks/"+taskID+"/extensions", ext, empAuth)
	if w.Code != http.StatusOK {
		t.Fatalf("request extension status=%d body=%s", w.Code, w.Body.String())
	}
	extID := dataMap(t, decodeEnvelope(t, w))["id"].(string)

	approvePath := "/tasks/" + taskID + "/extensions/" + extID + "/approve"
	w = doRequest(t, env.router, http.MethodPost, approvePath, map[string]any{}, mgrAuth)
	if w.Code != http.StatusOK {
		t.Fatalf("approve status=%d body=%s", w.Code, w.Body.String())
	}
	movedDue := dataMap(t, decodeEnvelope(t, w))["dueDate"].(string)

	w = doRequest(t, env.router, http.MethodPost, approvePath, map[string]any{}, mgrAuth)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("second approve expected 400 got=%d body=%s", w.Code, w.Body.String())
	}
	resp := decodeEnvelope(t, w)
	if len(resp.Errors) != 1 || resp.Errors[0].Code != "VALIDATION_ERROR" {
		t.Fatalf("expected validation error got %v", resp.Errors)
	}

	// Due date unchanged by the failed second approval.
	w = doRequest(t, env.router, http.MethodGet, "/tasks/"+taskID, nil, mgrAuth)
	if w.Code != http.StatusOK {
		t.Fatalf("get task status=%d body=%s", w.Code, w.Body.String())
	}
	if got := dataMap(t, decodeEnvelope(t, w))["dueDate"].(string); got != movedDue {
		t.Fatalf("due date changed by failed approval: %s vs %s", got, movedDue)
	}
}

func TestDashboard_And_Reminders(t *testing.T) {
	env := setupTestEnv(t)
	mgrAuth := bearerFor(t, env.mgr)

	w := doRequest(t, env.router, http.MethodGet, "/dashboard/stats", nil, mgrAuth)
	if w.Code != http.StatusOK {
		t.Fatalf("dashboard status=%d body=%s", w.Code, w.Body.String())
	}

	w = doRequest(t, env.router, http.MethodGet, "/tasks/reminders?level=3&page=1&pageSize=10", nil, mgrAuth)
	if w.Code != http.StatusOK {
		t.Fatalf("reminders status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestUsers_Search(t *testing.T) {
	env := setupTestEnv(t)
	mgrAuth := bearerFor(t, env.mgr)

	// Short terms return an empty result, not an error.
	w := doRequest(t, env.router, http.MethodGet, "/users/search?q=e", nil, mgrAuth)
	if w.Code != http.StatusOK {
		t.Fatalf("short search status=%d body=%s", w.Code, w.Body.String())
	}

	w = doRequest(t, env.router, http.MethodGet, "/users/search?q=employee", nil, mgrAuth)
	if w.Code != http.StatusOK {
		t.Fatalf("search status=%d body=%s", w.Code, w.Body.String())
	}
	resp := decodeEnvelope(t, w)
	results := resp.Data.([]any)
	if len(results) != 1 {
		t.Fatalf("expected one managed user, got %v", resp.Data)
	}

	// Employees cannot search the hierarchy.
	w = doRequest(t, env.router, http.MethodGet, "/users/search?q=employee", nil, bearerFor(t, env.emp))
	if w.Code != http.StatusForbidden {
		t.Fatalf("search as employee expected 403 got=%d", w.Code)
	}
}
