package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"cvstudio/api/internal/ai"
	"cvstudio/api/internal/authpw"
	"cvstudio/api/internal/config"
	"cvstudio/api/internal/export"
	"cvstudio/api/internal/history"
	"cvstudio/api/internal/store"
	"cvstudio/api/internal/syncer"
	"cvstudio/api/internal/template"
)

type fakeStore struct {
	mu        sync.Mutex
	profiles  map[string]store.Profile
	resumes   map[string]store.Resume
	templates map[string]store.Template
	refresh   map[string]string
	pingErr   error
	upserts   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		profiles:  map[string]store.Profile{},
		resumes:   map[string]store.Resume{},
		templates: map[string]store.Template{},
		refresh:   map[string]string{},
	}
}

func (f *fakeStore) Ping(context.Context) error { return f.pingErr }

func (f *fakeStore) CreateProfile(_ context.Context, p store.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profiles[p.ID] = p
	return nil
}

func (f *fakeStore) GetProfileByID(_ context.Context, id string) (store.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.profiles[id]; ok {
		return p, nil
	}
	return store.Profile{}, store.ErrNotFound
}

func (f *fakeStore) GetProfileByUsername(_ context.Context, username string) (store.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.profiles {
		if p.Username == username {
			return p, nil
		}
	}
	return store.Profile{}, store.ErrNotFound
}

func (f *fakeStore) GetProfileByEmail(_ context.Context, email string) (store.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.profiles {
		if p.Email == email {
			return p, nil
		}
	}
	return store.Profile{}, store.ErrNotFound
}

func (f *fakeStore) ListProfiles(context.Context) ([]store.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]store.Profile, 0, len(f.profiles))
	for _, p := range f.profiles {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeStore) UpsertResume(_ context.Context, r store.Resume) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resumes[r.ID] = r
	f.upserts++
	return nil
}

func (f *fakeStore) GetResume(_ context.Context, ownerID, id string) (store.Resume, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.resumes[id]; ok && r.OwnerID == ownerID {
		return r, nil
	}
	return store.Resume{}, store.ErrNotFound
}

func (f *fakeStore) ListResumes(_ context.Context, ownerID string) ([]store.Resume, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []store.Resume
	for _, r := range f.resumes {
		if r.OwnerID == ownerID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (f *fakeStore) ListAllResumes(context.Context) ([]store.Resume, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []store.Resume
	for _, r := range f.resumes {
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeStore) DeleteResume(_ context.Context, ownerID, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.resumes[id]; ok && r.OwnerID == ownerID {
		delete(f.resumes, id)
	}
	return nil
}

func (f *fakeStore) ListTemplates(context.Context) ([]store.Template, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []store.Template
	for _, t := range f.templates {
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeStore) UpsertTemplate(_ context.Context, t store.Template) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.templates[t.ID] = t
	return nil
}

func (f *fakeStore) DeleteTemplate(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.templates, id)
	return nil
}

func (f *fakeStore) SaveRefreshSession(_ context.Context, tokenHash, userID string, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refresh[tokenHash] = userID
	return nil
}

func (f *fakeStore) LookupRefreshSession(_ context.Context, tokenHash string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if userID, ok := f.refresh[tokenHash]; ok {
		return userID, nil
	}
	return "", store.ErrNotFound
}

func (f *fakeStore) RevokeRefreshSession(_ context.Context, tokenHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.refresh, tokenHash)
	return nil
}

func (f *fakeStore) SummaryCounts(context.Context) (int, int, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.profiles), len(f.resumes), len(f.templates), nil
}

func (f *fakeStore) upsertCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.upserts
}

type fakeExporter struct {
	result *export.Result
	err    error
}

func (f *fakeExporter) Export(_ context.Context, r store.Resume, onStage func(export.Stage)) (*export.Result, error) {
	if onStage != nil {
		onStage(export.StageRendering)
		onStage(export.StageSaved)
	}
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &export.Result{
		Data:     []byte("%PDF-fake"),
		Filename: "resume.pdf",
		MimeType: "application/pdf",
		Pages:    2,
	}, nil
}

func newTestServer(t *testing.T, fs *fakeStore) *HTTPServer {
	t.Helper()
	registry := template.DefaultRegistry()
	svc := New(config.Config{
		JWTSecret:  "test-secret",
		AccessTTL:  time.Hour,
		RefreshTTL: time.Hour,
	}, Deps{
		Store:     fs,
		Passwords: authpw.NewService(fs),
		Registry:  registry,
		Catalog:   template.NewCatalog(fs, registry, nil, zap.NewNop()),
		Exporter:  &fakeExporter{},
		Assistant: ai.NewClient("", "http://unused", "test-model"),
		History:   history.New(t.TempDir()),
		Log:       zap.NewNop(),
		SchedulerOpts: []syncer.Option{
			syncer.WithDebounce(15 * time.Millisecond),
			syncer.WithMinHold(0),
		},
	})
	return NewHTTPServer(svc, "*", zap.NewNop())
}

func doJSON(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func parseBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatalf("parse response %q: %v", rr.Body.String(), err)
	}
	return out
}

func signUp(t *testing.T, h http.Handler, username string) (token, userID string) {
	t.Helper()
	rr := doJSON(t, h, http.MethodPost, "/api/auth/signup", "", map[string]any{
		"username": username,
		"fullName": "Test User",
		"email":    username + "@example.com",
		"password": "correct horse",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("signup status %d: %s", rr.Code, rr.Body.String())
	}
	body := parseBody(t, rr)
	return body["token"].(string), body["userId"].(string)
}

func TestHealthEndpoint(t *testing.T) {
	server := newTestServer(t, newFakeStore())
	rr := doJSON(t, server.Handler(), http.MethodGet, "/api/health", "", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	if body := parseBody(t, rr); body["ok"] != true {
		t.Fatalf("body = %v", body)
	}
	if origin := rr.Header().Get("Access-Control-Allow-Origin"); origin != "*" {
		t.Errorf("cors origin = %q", origin)
	}
}

func TestReadyEndpointDatabaseFailure(t *testing.T) {
	fs := newFakeStore()
	fs.pingErr = errors.New("connection refused")
	server := newTestServer(t, fs)

	rr := doJSON(t, server.Handler(), http.MethodGet, "/api/ready", "", nil)
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status %d", rr.Code)
	}
	if body := parseBody(t, rr); body["status"] != "not_ready" {
		t.Fatalf("body = %v", body)
	}
}

func TestSignUpAndSignIn(t *testing.T) {
	server := newTestServer(t, newFakeStore())
	h := server.Handler()

	token, _ := signUp(t, h, "ada")
	if token == "" {
		t.Fatal("signup must return a token")
	}

	rr := doJSON(t, h, http.MethodPost, "/api/auth/signin", "", map[string]any{
		"handle":   "ada",
		"password": "correct horse",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("signin status %d: %s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, h, http.MethodPost, "/api/auth/signin", "", map[string]any{
		"handle":   "ada",
		"password": "wrong",
	})
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password status %d", rr.Code)
	}
}

func TestRefreshRotatesToken(t *testing.T) {
	server := newTestServer(t, newFakeStore())
	h := server.Handler()

	rr := doJSON(t, h, http.MethodPost, "/api/auth/signup", "", map[string]any{
		"username": "ada", "email": "ada@example.com", "password": "correct horse",
	})
	refreshToken := parseBody(t, rr)["refreshToken"].(string)

	rr = doJSON(t, h, http.MethodPost, "/api/auth/refresh", "", map[string]any{"refreshToken": refreshToken})
	if rr.Code != http.StatusOK {
		t.Fatalf("refresh status %d: %s", rr.Code, rr.Body.String())
	}

	// The presented token was rotated out.
	rr = doJSON(t, h, http.MethodPost, "/api/auth/refresh", "", map[string]any{"refreshToken": refreshToken})
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("reused refresh token status %d", rr.Code)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	server := newTestServer(t, newFakeStore())
	h := server.Handler()

	rr := doJSON(t, h, http.MethodGet, "/api/resumes", "", nil)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("no token status %d", rr.Code)
	}

	rr = doJSON(t, h, http.MethodGet, "/api/resumes", "garbage-token", nil)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("bad token status %d", rr.Code)
	}
}

func TestResumeLifecycle(t *testing.T) {
	fs := newFakeStore()
	server := newTestServer(t, fs)
	h := server.Handler()
	token, _ := signUp(t, h, "ada")

	rr := doJSON(t, h, http.MethodPost, "/api/resumes", token, map[string]any{
		"title":      "Backend CV",
		"templateId": "t2",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status %d: %s", rr.Code, rr.Body.String())
	}
	created := parseBody(t, rr)
	resumeID := created["id"].(string)
	if resumeID == "" || created["templateId"] != "t2" {
		t.Fatalf("created = %v", created)
	}

	// The create is persisted immediately, not debounced.
	if fs.upsertCount() != 1 {
		t.Fatalf("create must persist right away, upserts = %d", fs.upsertCount())
	}

	rr = doJSON(t, h, http.MethodGet, "/api/resumes", token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("list status %d", rr.Code)
	}
	if items := parseBody(t, rr)["resumes"].([]any); len(items) != 1 {
		t.Fatalf("want 1 resume, got %d", len(items))
	}

	rr = doJSON(t, h, http.MethodDelete, "/api/resumes/"+resumeID, token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("delete status %d", rr.Code)
	}

	rr = doJSON(t, h, http.MethodGet, "/api/resumes/"+resumeID, token, nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("get after delete status %d", rr.Code)
	}
}

func TestResumesAreOwnerScoped(t *testing.T) {
	server := newTestServer(t, newFakeStore())
	h := server.Handler()

	adaToken, _ := signUp(t, h, "ada")
	bobToken, _ := signUp(t, h, "bob")

	rr := doJSON(t, h, http.MethodPost, "/api/resumes", adaToken, map[string]any{"title": "Ada CV"})
	resumeID := parseBody(t, rr)["id"].(string)

	rr = doJSON(t, h, http.MethodGet, "/api/resumes/"+resumeID, bobToken, nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("foreign resume status %d, want 404", rr.Code)
	}

	rr = doJSON(t, h, http.MethodGet, "/api/resumes", bobToken, nil)
	if items := parseBody(t, rr)["resumes"].([]any); len(items) != 0 {
		t.Fatalf("foreign listing leaked %d resumes", len(items))
	}
}

func TestEditorFlow(t *testing.T) {
	fs := newFakeStore()
	server := newTestServer(t, fs)
	h := server.Handler()
	token, _ := signUp(t, h, "ada")

	rr := doJSON(t, h, http.MethodPost, "/api/resumes", token, map[string]any{"title": "My CV"})
	resumeID := parseBody(t, rr)["id"].(string)
	baseline := fs.upsertCount()

	rr = doJSON(t, h, http.MethodPost, "/api/editor/open", token, map[string]any{"resumeId": resumeID})
	if rr.Code != http.StatusOK {
		t.Fatalf("open status %d: %s", rr.Code, rr.Body.String())
	}

	rr = doJSON(t, h, http.MethodPost, "/api/editor/apply", token, map[string]any{"title": "Renamed CV"})
	if rr.Code != http.StatusOK {
		t.Fatalf("apply status %d: %s", rr.Code, rr.Body.String())
	}
	if got := parseBody(t, rr)["title"]; got != "Renamed CV" {
		t.Fatalf("apply response title = %v", got)
	}

	// The edit lands through the debounce.
	deadline := time.Now().Add(time.Second)
	for fs.upsertCount() == baseline && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if fs.upsertCount() == baseline {
		t.Fatal("debounced save never fired")
	}

	rr = doJSON(t, h, http.MethodGet, "/api/editor/status", token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status status %d", rr.Code)
	}

	rr = doJSON(t, h, http.MethodPost, "/api/editor/close", token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("close status %d", rr.Code)
	}

	// After close the editor is gone; edits have nowhere to go.
	rr = doJSON(t, h, http.MethodPost, "/api/editor/apply", token, map[string]any{"title": "Too late"})
	if rr.Code != http.StatusConflict {
		t.Fatalf("apply after close status %d, want 409", rr.Code)
	}
}

func TestApplyWithoutOpenEditor(t *testing.T) {
	server := newTestServer(t, newFakeStore())
	h := server.Handler()
	token, _ := signUp(t, h, "ada")

	rr := doJSON(t, h, http.MethodPost, "/api/editor/apply", token, map[string]any{"title": "x"})
	if rr.Code != http.StatusConflict {
		t.Fatalf("status %d, want 409", rr.Code)
	}
}

func TestApplyRejectsUnknownTemplate(t *testing.T) {
	server := newTestServer(t, newFakeStore())
	h := server.Handler()
	token, _ := signUp(t, h, "ada")

	rr := doJSON(t, h, http.MethodPost, "/api/resumes", token, map[string]any{"title": "My CV"})
	resumeID := parseBody(t, rr)["id"].(string)
	doJSON(t, h, http.MethodPost, "/api/editor/open", token, map[string]any{"resumeId": resumeID})

	rr = doJSON(t, h, http.MethodPost, "/api/editor/apply", token, map[string]any{"templateId": "vanished"})
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status %d, want 422", rr.Code)
	}
}

func TestExportEndpoint(t *testing.T) {
	server := newTestServer(t, newFakeStore())
	h := server.Handler()
	token, _ := signUp(t, h, "ada")

	rr := doJSON(t, h, http.MethodPost, "/api/resumes", token, map[string]any{"title": "My CV"})
	resumeID := parseBody(t, rr)["id"].(string)

	rr = doJSON(t, h, http.MethodGet, "/api/resumes/"+resumeID+"/export", token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("export status %d: %s", rr.Code, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("content type = %q", ct)
	}
	if pages := rr.Header().Get("X-Export-Pages"); pages != "2" {
		t.Fatalf("pages header = %q", pages)
	}

	rr = doJSON(t, h, http.MethodGet, "/api/resumes/missing/export", token, nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("missing export status %d", rr.Code)
	}
}

func TestHistoryEndpoint(t *testing.T) {
	server := newTestServer(t, newFakeStore())
	h := server.Handler()
	token, _ := signUp(t, h, "ada")

	rr := doJSON(t, h, http.MethodPost, "/api/resumes", token, map[string]any{"title": "My CV"})
	resumeID := parseBody(t, rr)["id"].(string)

	rr = doJSON(t, h, http.MethodGet, "/api/resumes/"+resumeID+"/history", token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("history status %d: %s", rr.Code, rr.Body.String())
	}
	trail := parseBody(t, rr)["history"].([]any)
	if len(trail) != 1 {
		t.Fatalf("want 1 snapshot from create, got %d", len(trail))
	}
}

func TestAssistantDegradedMode(t *testing.T) {
	server := newTestServer(t, newFakeStore())
	h := server.Handler()
	token, _ := signUp(t, h, "ada")

	rr := doJSON(t, h, http.MethodPost, "/api/ai/optimize", token, map[string]any{
		"text":  "my raw text",
		"field": "objective",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("optimize status %d", rr.Code)
	}
	if got := parseBody(t, rr)["text"]; got != "my raw text" {
		t.Fatalf("optimize must echo without a backend, got %v", got)
	}

	rr = doJSON(t, h, http.MethodPost, "/api/ai/generate", token, map[string]any{"jobTitle": "SRE"})
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("generate status %d, want 503", rr.Code)
	}
}

func TestAvatarUploadUnconfigured(t *testing.T) {
	server := newTestServer(t, newFakeStore())
	h := server.Handler()
	token, _ := signUp(t, h, "ada")

	rr := doJSON(t, h, http.MethodPost, "/api/resumes", token, map[string]any{"title": "My CV"})
	resumeID := parseBody(t, rr)["id"].(string)

	req := httptest.NewRequest(http.MethodPost, "/api/resumes/"+resumeID+"/avatar", bytes.NewReader([]byte("png-bytes")))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "image/png")
	rr2 := httptest.NewRecorder()
	h.ServeHTTP(rr2, req)

	if rr2.Code != http.StatusServiceUnavailable {
		t.Fatalf("avatar status %d, want 503", rr2.Code)
	}
}

func TestTemplatesFallBackToBuiltin(t *testing.T) {
	server := newTestServer(t, newFakeStore())
	h := server.Handler()
	token, _ := signUp(t, h, "ada")

	rr := doJSON(t, h, http.MethodGet, "/api/templates", token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("templates status %d", rr.Code)
	}
	items := parseBody(t, rr)["templates"].([]any)
	if len(items) != 4 {
		t.Fatalf("want 4 builtin templates, got %d", len(items))
	}
}

func TestAdminRoutesForbiddenForUsers(t *testing.T) {
	server := newTestServer(t, newFakeStore())
	h := server.Handler()
	token, _ := signUp(t, h, "ada")

	for _, path := range []string{"/api/admin/users", "/api/admin/resumes", "/api/admin/stats"} {
		rr := doJSON(t, h, http.MethodGet, path, token, nil)
		if rr.Code != http.StatusForbidden {
			t.Fatalf("%s status %d, want 403", path, rr.Code)
		}
	}

	rr := doJSON(t, h, http.MethodPost, "/api/templates", token, map[string]any{"id": "x", "name": "X"})
	if rr.Code != http.StatusForbidden {
		t.Fatalf("template write status %d, want 403", rr.Code)
	}
}

func TestAdminStats(t *testing.T) {
	fs := newFakeStore()
	server := newTestServer(t, fs)
	h := server.Handler()

	_, userID := signUp(t, h, "root")
	fs.mu.Lock()
	p := fs.profiles[userID]
	p.Role = "ADMIN"
	fs.profiles[userID] = p
	fs.mu.Unlock()

	// Re-sign-in so the token carries the admin role.
	rr := doJSON(t, h, http.MethodPost, "/api/auth/signin", "", map[string]any{
		"handle": "root", "password": "correct horse",
	})
	adminToken := parseBody(t, rr)["token"].(string)

	rr = doJSON(t, h, http.MethodGet, "/api/admin/stats", adminToken, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("stats status %d: %s", rr.Code, rr.Body.String())
	}
	stats := parseBody(t, rr)
	if stats["users"].(float64) != 1 {
		t.Fatalf("stats = %v", stats)
	}
}
