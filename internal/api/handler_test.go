package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	"github.com/campuscrisis/platform/internal/lifecycle"
	"github.com/campuscrisis/platform/internal/moderation"
	"github.com/campuscrisis/platform/internal/repository"
)

const testAdminToken = "test-admin-token"

func setupTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := repository.NewSQLiteDB(":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	coord := lifecycle.NewCoordinator(db, db.Alerts(), db.Forum(), db.Resources(), moderation.NewDefaultFilter())

	router := gin.New()
	store := cookie.NewStore([]byte("test-secret"))
	router.Use(sessions.Sessions("ccp_session", store))

	handler := NewHandler(coord, db.Users(), testAdminToken, 20)
	handler.RegisterRoutes(router)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any, mutate func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if mutate != nil {
		mutate(req)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
	return out
}

// signupAndCookie registers a user and returns the session cookie header for
// follow-up requests.
func signupAndCookie(t *testing.T, router *gin.Engine, email string) string {
	t.Helper()

	w := doJSON(t, router, http.MethodPost, "/api/auth/signup", gin.H{
		"name":     "Test Student",
		"email":    email,
		"password": "secret123",
	}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("signup returned %d: %s", w.Code, w.Body.String())
	}

	cookies := w.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("signup set no session cookie")
	}
	return cookies[0].String()
}

func withCookie(cookie string) func(*http.Request) {
	return func(req *http.Request) { req.Header.Set("Cookie", cookie) }
}

func withAdminToken(req *http.Request) {
	req.Header.Set("X-Admin-Token", testAdminToken)
}

func TestHealth(t *testing.T) {
	router := setupTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/health", nil, nil)
	if w.Code != http.StatusOK {
		t.Errorf("health returned %d", w.Code)
	}
}

func TestWrongMethodReturns405(t *testing.T) {
	router := setupTestRouter(t)

	w := doJSON(t, router, http.MethodPut, "/api/issues", gin.H{}, nil)
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("wrong verb returned %d, want 405", w.Code)
	}
	body := decodeBody(t, w)
	if body["success"] != false || body["message"] != "Method not allowed" {
		t.Errorf("envelope = %v", body)
	}

	// Unknown paths are still a plain 404.
	w = doJSON(t, router, http.MethodGet, "/api/nope", nil, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown path returned %d, want 404", w.Code)
	}
}

func TestSubmitIssue_RequiresLogin(t *testing.T) {
	router := setupTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/issues", gin.H{
		"category":     "water",
		"location":     "Block A",
		"description":  "leak",
		"contact_info": "x@campus.edu",
	}, nil)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous submit returned %d, want 401", w.Code)
	}
	body := decodeBody(t, w)
	if body["success"] != false {
		t.Errorf("envelope success = %v, want false", body["success"])
	}
}

func TestSubmitIssue_LoggedInFlow(t *testing.T) {
	router := setupTestRouter(t)
	cookie := signupAndCookie(t, router, "student@campus.edu")

	w := doJSON(t, router, http.MethodPost, "/api/issues", gin.H{
		"category":     "power",
		"location":     "Hostel 2",
		"description":  "no electricity since morning",
		"contact_info": "student@campus.edu",
	}, withCookie(cookie))
	if w.Code != http.StatusOK {
		t.Fatalf("submit returned %d: %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	if body["issue_id"] == nil {
		t.Error("response missing issue_id")
	}

	// The projected alert is public immediately.
	w = doJSON(t, router, http.MethodGet, "/api/alerts", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("alerts returned %d", w.Code)
	}
	alerts, _ := decodeBody(t, w)["alerts"].([]any)
	if len(alerts) != 1 {
		t.Fatalf("got %d public alerts, want 1", len(alerts))
	}
	alert, _ := alerts[0].(map[string]any)
	if alert["title"] != "Power Issue - Hostel 2" {
		t.Errorf("alert title = %v", alert["title"])
	}

	w = doJSON(t, router, http.MethodGet, "/api/issues", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("issues returned %d", w.Code)
	}
	body = decodeBody(t, w)
	issues, _ := body["issues"].([]any)
	if len(issues) != 1 {
		t.Fatalf("got %d issues, want 1", len(issues))
	}
	stats, _ := body["stats"].(map[string]any)
	if stats["total"] != float64(1) || stats["active"] != float64(1) {
		t.Errorf("stats = %v", stats)
	}
}

func TestSignup_DuplicateEmail(t *testing.T) {
	router := setupTestRouter(t)
	signupAndCookie(t, router, "dup@campus.edu")

	w := doJSON(t, router, http.MethodPost, "/api/auth/signup", gin.H{
		"name":     "Second",
		"email":    "dup@campus.edu",
		"password": "secret123",
	}, nil)
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate signup returned %d, want 409", w.Code)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	router := setupTestRouter(t)
	signupAndCookie(t, router, "login@campus.edu")

	w := doJSON(t, router, http.MethodPost, "/api/auth/login", gin.H{
		"email":    "login@campus.edu",
		"password": "wrong-password",
	}, nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong password returned %d, want 401", w.Code)
	}
}

func TestAdminLogin_SessionPath(t *testing.T) {
	router := setupTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/admin/login", gin.H{"password": "nope"}, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("bad admin password returned %d, want 401", w.Code)
	}

	w = doJSON(t, router, http.MethodPost, "/api/admin/login", gin.H{"password": testAdminToken}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("admin login returned %d: %s", w.Code, w.Body.String())
	}
	cookies := w.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("admin login set no session cookie")
	}

	// The admin session works without the header.
	w = doJSON(t, router, http.MethodGet, "/api/posts/pending", nil, withCookie(cookies[0].String()))
	if w.Code != http.StatusOK {
		t.Errorf("pending posts with admin session returned %d", w.Code)
	}
}

func TestUpdateIssueStatus_AdminToken(t *testing.T) {
	router := setupTestRouter(t)
	cookie := signupAndCookie(t, router, "reporter@campus.edu")

	w := doJSON(t, router, http.MethodPost, "/api/issues", gin.H{
		"category":     "water",
		"location":     "Block A",
		"description":  "tank overflow on the roof",
		"contact_info": "reporter@campus.edu",
	}, withCookie(cookie))
	if w.Code != http.StatusOK {
		t.Fatalf("submit returned %d: %s", w.Code, w.Body.String())
	}
	issueID := int64(decodeBody(t, w)["issue_id"].(float64))

	path := fmt.Sprintf("/api/issues/%d/status", issueID)

	w = doJSON(t, router, http.MethodPost, path, gin.H{"status": "Investigating"}, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status update without credentials returned %d, want 401", w.Code)
	}

	w = doJSON(t, router, http.MethodPost, path, gin.H{"status": "Investigating"}, withAdminToken)
	if w.Code != http.StatusOK {
		t.Fatalf("status update returned %d: %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	if body["old_status"] != "Reported" || body["new_status"] != "Investigating" {
		t.Errorf("transition = %v -> %v", body["old_status"], body["new_status"])
	}

	w = doJSON(t, router, http.MethodPost, path, gin.H{"status": "Closed"}, withAdminToken)
	if w.Code != http.StatusBadRequest {
		t.Errorf("unknown status returned %d, want 400", w.Code)
	}
}

func TestAddPost_BlockedContent(t *testing.T) {
	router := setupTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/posts", gin.H{
		"user_name": "troll",
		"message":   "this whole thing is a scam",
	}, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("blocked post returned %d, want 400", w.Code)
	}
	body := decodeBody(t, w)
	if body["message"] != "Inappropriate content detected. Please revise and resubmit." {
		t.Errorf("blocked message = %v", body["message"])
	}
}

func TestPostModerationFlow(t *testing.T) {
	router := setupTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/posts", gin.H{
		"user_name": "asha",
		"message":   "is the water back in block a?",
	}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("add post returned %d: %s", w.Code, w.Body.String())
	}

	// Invisible until approved.
	w = doJSON(t, router, http.MethodGet, "/api/posts", nil, nil)
	if posts, _ := decodeBody(t, w)["posts"].([]any); len(posts) != 0 {
		t.Errorf("pending post publicly visible: %v", posts)
	}

	w = doJSON(t, router, http.MethodGet, "/api/posts/pending", nil, withAdminToken)
	if w.Code != http.StatusOK {
		t.Fatalf("pending posts returned %d", w.Code)
	}
	body := decodeBody(t, w)
	pending, _ := body["posts"].([]any)
	if len(pending) != 1 || body["count"] != float64(1) {
		t.Fatalf("pending = %v count = %v", pending, body["count"])
	}
	postID := int64(pending[0].(map[string]any)["post_id"].(float64))

	path := fmt.Sprintf("/api/posts/%d/disposition", postID)

	w = doJSON(t, router, http.MethodPost, path, gin.H{"approve": true}, withAdminToken)
	if w.Code != http.StatusOK {
		t.Fatalf("approve returned %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, router, http.MethodGet, "/api/posts", nil, nil)
	posts, _ := decodeBody(t, w)["posts"].([]any)
	if len(posts) != 1 {
		t.Fatalf("approved post missing from public list: %v", posts)
	}
	post, _ := posts[0].(map[string]any)
	if comments, ok := post["comments"].([]any); !ok || len(comments) != 0 {
		t.Errorf("public post comments = %v, want empty array", post["comments"])
	}

	// A second disposition of the same post is a 404, not a silent success.
	w = doJSON(t, router, http.MethodPost, path, gin.H{"approve": false}, withAdminToken)
	if w.Code != http.StatusNotFound {
		t.Errorf("repeat disposition returned %d, want 404", w.Code)
	}
}

func TestDispositionPost_RequiresApproveField(t *testing.T) {
	router := setupTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/posts/1/disposition", gin.H{}, withAdminToken)
	if w.Code != http.StatusBadRequest {
		t.Errorf("disposition without approve returned %d, want 400", w.Code)
	}
}

func TestUpdateResource_AdminOnly(t *testing.T) {
	router := setupTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/resources/1", gin.H{"quantity": 5}, nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("resource update without credentials returned %d, want 401", w.Code)
	}

	w = doJSON(t, router, http.MethodPost, "/api/resources/1", gin.H{"quantity": 5}, withAdminToken)
	if w.Code != http.StatusNotFound {
		t.Errorf("update of missing resource returned %d, want 404", w.Code)
	}

	w = doJSON(t, router, http.MethodPost, "/api/resources/1", gin.H{}, withAdminToken)
	if w.Code != http.StatusBadRequest {
		t.Errorf("empty patch returned %d, want 400", w.Code)
	}
}

func TestMe_AnonymousAndLoggedIn(t *testing.T) {
	router := setupTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/auth/me", nil, nil)
	if decodeBody(t, w)["logged_in"] != false {
		t.Error("anonymous /auth/me reports logged_in")
	}

	cookie := signupAndCookie(t, router, "me@campus.edu")
	w = doJSON(t, router, http.MethodGet, "/api/auth/me", nil, withCookie(cookie))
	body := decodeBody(t, w)
	if body["logged_in"] != true {
		t.Fatalf("/auth/me = %v", body)
	}
	user, _ := body["user"].(map[string]any)
	if user["email"] != "me@campus.edu" || user["role"] != "student" {
		t.Errorf("user = %v", user)
	}
}
