// Package app wires the domain services together behind the HTTP API.
package app

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"cvstudio/api/internal/ai"
	"cvstudio/api/internal/auth"
	"cvstudio/api/internal/authpw"
	"cvstudio/api/internal/avatars"
	"cvstudio/api/internal/config"
	"cvstudio/api/internal/export"
	"cvstudio/api/internal/history"
	"cvstudio/api/internal/rbac"
	"cvstudio/api/internal/resume"
	"cvstudio/api/internal/search"
	"cvstudio/api/internal/store"
	"cvstudio/api/internal/syncer"
	"cvstudio/api/internal/template"
)

type Session struct {
	UserID       string
	UserName     string
	Role         string
	Token        string
	RefreshToken string
}

// dataStore is the slice of the Postgres layer the app consumes.
type dataStore interface {
	Ping(ctx context.Context) error

	CreateProfile(ctx context.Context, p store.Profile) error
	GetProfileByID(ctx context.Context, id string) (store.Profile, error)
	GetProfileByUsername(ctx context.Context, username string) (store.Profile, error)
	GetProfileByEmail(ctx context.Context, email string) (store.Profile, error)
	ListProfiles(ctx context.Context) ([]store.Profile, error)

	UpsertResume(ctx context.Context, r store.Resume) error
	GetResume(ctx context.Context, ownerID, id string) (store.Resume, error)
	ListResumes(ctx context.Context, ownerID string) ([]store.Resume, error)
	ListAllResumes(ctx context.Context) ([]store.Resume, error)
	DeleteResume(ctx context.Context, ownerID, id string) error

	ListTemplates(ctx context.Context) ([]store.Template, error)
	UpsertTemplate(ctx context.Context, t store.Template) error
	DeleteTemplate(ctx context.Context, id string) error

	SaveRefreshSession(ctx context.Context, tokenHash, userID string, expiresAt time.Time) error
	LookupRefreshSession(ctx context.Context, tokenHash string) (string, error)
	RevokeRefreshSession(ctx context.Context, tokenHash string) error

	SummaryCounts(ctx context.Context) (users, resumes, templates int, err error)
}

// refreshStore is the fast path for refresh sessions. Nil means Redis is
// absent and Postgres carries them alone.
type refreshStore interface {
	Save(ctx context.Context, tokenHash, userID string, ttl time.Duration) error
	Lookup(ctx context.Context, tokenHash string) (string, error)
	Revoke(ctx context.Context, tokenHash string) error
}

// exporter runs the PDF pipeline.
type exporter interface {
	Export(ctx context.Context, r store.Resume, onStage func(export.Stage)) (*export.Result, error)
}

// editorSession is one user's live editing state: their documents, the
// debounced autosave scheduler and the last export stage.
type editorSession struct {
	collection *resume.Collection
	scheduler  *syncer.Scheduler

	mu          sync.Mutex
	exportStage export.Stage
}

func (e *editorSession) setStage(st export.Stage) {
	e.mu.Lock()
	e.exportStage = st
	e.mu.Unlock()
}

func (e *editorSession) stage() export.Stage {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.exportStage == "" {
		return export.StageIdle
	}
	return e.exportStage
}

type Service struct {
	cfg       config.Config
	store     dataStore
	tokens    *auth.Manager
	passwords *authpw.Service
	refresh   refreshStore
	registry  *template.Registry
	catalog   *template.Catalog
	exporter  exporter
	assistant ai.Assistant
	history   *history.Service
	search    *search.Service
	avatars   *avatars.Service
	log       *zap.Logger

	schedulerOpts []syncer.Option

	editorMu sync.Mutex
	editors  map[string]*editorSession
}

type Deps struct {
	Store     dataStore
	Passwords *authpw.Service
	Refresh   refreshStore
	Registry  *template.Registry
	Catalog   *template.Catalog
	Exporter  exporter
	Assistant ai.Assistant
	History   *history.Service
	Search    *search.Service
	Avatars   *avatars.Service
	Log       *zap.Logger

	// SchedulerOpts shortens autosave timings in tests.
	SchedulerOpts []syncer.Option
}

func New(cfg config.Config, deps Deps) *Service {
	return &Service{
		cfg:           cfg,
		store:         deps.Store,
		tokens:        auth.NewManager(cfg.JWTSecret, cfg.AccessTTL),
		passwords:     deps.Passwords,
		refresh:       deps.Refresh,
		registry:      deps.Registry,
		catalog:       deps.Catalog,
		exporter:      deps.Exporter,
		assistant:     deps.Assistant,
		history:       deps.History,
		search:        deps.Search,
		avatars:       deps.Avatars,
		log:           deps.Log,
		schedulerOpts: deps.SchedulerOpts,
		editors:       map[string]*editorSession{},
	}
}

func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func (s *Service) Can(role string, action rbac.Action) bool {
	return rbac.Can(rbac.Normalize(role), action)
}

// --- auth ---

func (s *Service) SignUp(ctx context.Context, in authpw.SignUpInput) (Session, error) {
	profile, err := s.passwords.SignUp(ctx, in)
	if err != nil {
		return Session{}, err
	}
	return s.issueSession(ctx, profile)
}

func (s *Service) SignIn(ctx context.Context, handle, password string) (Session, error) {
	profile, err := s.passwords.SignIn(ctx, handle, password)
	if err != nil {
		return Session{}, err
	}
	return s.issueSession(ctx, profile)
}

func (s *Service) issueSession(ctx context.Context, profile store.Profile) (Session, error) {
	token, err := s.tokens.Issue(profile.ID, profile.FullName, profile.Role, time.Now())
	if err != nil {
		return Session{}, err
	}

	refreshToken := uuid.NewString()
	tokenHash := auth.HashToken(refreshToken)
	expiresAt := time.Now().Add(s.cfg.RefreshTTL)

	if err := s.store.SaveRefreshSession(ctx, tokenHash, profile.ID, expiresAt); err != nil {
		return Session{}, err
	}
	if s.refresh != nil {
		if err := s.refresh.Save(ctx, tokenHash, profile.ID, s.cfg.RefreshTTL); err != nil {
			s.log.Warn("redis refresh save failed, postgres copy stands", zap.Error(err))
		}
	}

	return Session{
		UserID:       profile.ID,
		UserName:     profile.FullName,
		Role:         profile.Role,
		Token:        token,
		RefreshToken: refreshToken,
	}, nil
}

func (s *Service) Refresh(ctx context.Context, refreshToken string) (Session, error) {
	tokenHash := auth.HashToken(refreshToken)

	var userID string
	var err error
	if s.refresh != nil {
		userID, err = s.refresh.Lookup(ctx, tokenHash)
	}
	if s.refresh == nil || err != nil {
		userID, err = s.store.LookupRefreshSession(ctx, tokenHash)
	}
	if err != nil {
		return Session{}, auth.ErrInvalidToken
	}

	profile, err := s.store.GetProfileByID(ctx, userID)
	if err != nil {
		return Session{}, auth.ErrInvalidToken
	}

	// Rotate: the presented token dies with the refresh.
	s.revokeRefresh(ctx, tokenHash)
	return s.issueSession(ctx, profile)
}

func (s *Service) Logout(ctx context.Context, refreshToken string) {
	if refreshToken == "" {
		return
	}
	s.revokeRefresh(ctx, auth.HashToken(refreshToken))
}

func (s *Service) revokeRefresh(ctx context.Context, tokenHash string) {
	if err := s.store.RevokeRefreshSession(ctx, tokenHash); err != nil {
		s.log.Warn("revoke refresh session", zap.Error(err))
	}
	if s.refresh != nil {
		if err := s.refresh.Revoke(ctx, tokenHash); err != nil {
			s.log.Warn("revoke redis refresh session", zap.Error(err))
		}
	}
}

func (s *Service) SessionFromToken(ctx context.Context, token string) (Session, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return Session{}, err
	}
	return Session{
		UserID:   claims.Subject,
		UserName: claims.Name,
		Role:     claims.Role,
		Token:    token,
	}, nil
}

// --- templates ---

func (s *Service) Templates(ctx context.Context) []store.Template {
	return s.catalog.List(ctx)
}

func (s *Service) UpsertTemplate(ctx context.Context, t store.Template) error {
	if t.ID == "" || t.Name == "" {
		return domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "template id and name are required", nil)
	}
	if err := s.store.UpsertTemplate(ctx, t); err != nil {
		return err
	}
	s.catalog.Invalidate(ctx)
	return nil
}

func (s *Service) DeleteTemplate(ctx context.Context, id string) error {
	if err := s.store.DeleteTemplate(ctx, id); err != nil {
		return err
	}
	s.catalog.Invalidate(ctx)
	return nil
}

// --- resumes ---

func (s *Service) ListResumes(ctx context.Context, session Session) ([]store.Resume, error) {
	return s.store.ListResumes(ctx, session.UserID)
}

func (s *Service) GetResume(ctx context.Context, session Session, id string) (store.Resume, error) {
	return s.store.GetResume(ctx, session.UserID, id)
}

// CreateResume persists the new document right away, not through the
// debounce, so a crash cannot lose it. It also becomes the active document
// of the user's editor when one is open.
func (s *Service) CreateResume(ctx context.Context, session Session, title, templateID string) (store.Resume, error) {
	r := resume.New(session.UserID, title, templateID, time.Now().UTC())

	ed := s.editor(session)
	if err := ed.scheduler.FlushNow(ctx, r); err != nil {
		return store.Resume{}, err
	}
	ed.collection.Add(r)

	s.afterSave(r, session.UserName, "create resume")
	return r, nil
}

func (s *Service) DeleteResume(ctx context.Context, session Session, id string) error {
	if err := s.store.DeleteResume(ctx, session.UserID, id); err != nil {
		return err
	}
	if ed := s.existingEditor(session.UserID); ed != nil {
		ed.collection.Remove(id)
	}
	if s.search != nil {
		s.search.DeleteResume(id)
	}
	return nil
}

// afterSave runs the best-effort side effects of a persisted save.
func (s *Service) afterSave(r store.Resume, author, message string) {
	if s.history != nil {
		if _, err := s.history.CommitSnapshot(r, author, message); err != nil {
			s.log.Warn("history snapshot", zap.String("resume_id", r.ID), zap.Error(err))
		}
	}
	if s.search != nil {
		s.search.IndexResume(r)
	}
}

// --- editor ---

// autosaveRemote is what the scheduler drains into: the database write plus
// the best-effort snapshot and index updates.
type autosaveRemote struct {
	svc    *Service
	author string
}

func (a *autosaveRemote) UpsertResume(ctx context.Context, r store.Resume) error {
	if err := a.svc.store.UpsertResume(ctx, r); err != nil {
		return err
	}
	a.svc.afterSave(r, a.author, "autosave")
	return nil
}

func (s *Service) editor(session Session) *editorSession {
	s.editorMu.Lock()
	defer s.editorMu.Unlock()

	ed, ok := s.editors[session.UserID]
	if ok {
		return ed
	}

	ed = &editorSession{}
	ed.scheduler = syncer.New(&autosaveRemote{svc: s, author: session.UserName}, s.log, s.schedulerOpts...)
	ed.collection = resume.NewCollection(nil, ed.scheduler.Notify)
	s.editors[session.UserID] = ed
	return ed
}

func (s *Service) existingEditor(userID string) *editorSession {
	s.editorMu.Lock()
	defer s.editorMu.Unlock()
	return s.editors[userID]
}

// OpenEditor loads the user's documents into their editor session and
// activates one of them.
func (s *Service) OpenEditor(ctx context.Context, session Session, resumeID string) (store.Resume, error) {
	docs, err := s.store.ListResumes(ctx, session.UserID)
	if err != nil {
		return store.Resume{}, err
	}

	ed := s.editor(session)
	ed.collection = resume.NewCollection(docs, ed.scheduler.Notify)
	return ed.collection.Open(resumeID)
}

// ApplyEdit patches the active document. The change hook schedules the
// autosave; the response carries the updated snapshot immediately.
func (s *Service) ApplyEdit(ctx context.Context, session Session, patch resume.Patch) (store.Resume, error) {
	ed := s.existingEditor(session.UserID)
	if ed == nil {
		return store.Resume{}, resume.ErrNoActive
	}
	if patch.TemplateID != nil && !s.registry.Has(*patch.TemplateID) {
		return store.Resume{}, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "unknown template id", nil)
	}
	return ed.collection.Apply(patch, time.Now().UTC())
}

// FlushEditor forces the pending edits of the active document to disk.
func (s *Service) FlushEditor(ctx context.Context, session Session) (store.Resume, error) {
	ed := s.existingEditor(session.UserID)
	if ed == nil {
		return store.Resume{}, resume.ErrNoActive
	}
	active, err := ed.collection.Active()
	if err != nil {
		return store.Resume{}, err
	}
	if err := ed.scheduler.FlushNow(ctx, active); err != nil {
		return store.Resume{}, err
	}
	return active, nil
}

func (s *Service) EditorStatus(session Session) (syncer.Status, export.Stage) {
	ed := s.existingEditor(session.UserID)
	if ed == nil {
		return syncer.StatusIdle, export.StageIdle
	}
	return ed.scheduler.Status(), ed.stage()
}

// CloseEditor flushes the active document, stops the scheduler and drops
// the session.
func (s *Service) CloseEditor(ctx context.Context, session Session) error {
	s.editorMu.Lock()
	ed := s.editors[session.UserID]
	delete(s.editors, session.UserID)
	s.editorMu.Unlock()

	if ed == nil {
		return nil
	}
	var flushErr error
	if active, err := ed.collection.Active(); err == nil {
		flushErr = ed.scheduler.FlushNow(ctx, active)
	}
	ed.scheduler.Stop()
	return flushErr
}

// --- export ---

func (s *Service) ExportResume(ctx context.Context, session Session, resumeID string) (*export.Result, error) {
	// Prefer the live editor copy so unsaved edits make it into the PDF.
	var doc store.Resume
	var haveLive bool
	ed := s.existingEditor(session.UserID)
	if ed != nil {
		if active, err := ed.collection.Active(); err == nil && active.ID == resumeID {
			doc = active
			haveLive = true
		}
	}
	if !haveLive {
		var err error
		doc, err = s.store.GetResume(ctx, session.UserID, resumeID)
		if err != nil {
			return nil, err
		}
	}

	onStage := func(export.Stage) {}
	if ed != nil {
		onStage = ed.setStage
	}

	result, err := s.exporter.Export(ctx, doc, onStage)
	if err != nil {
		if ed != nil {
			ed.setStage(export.StageIdle)
		}
		return nil, err
	}
	return result, nil
}

// --- history ---

func (s *Service) ResumeHistory(ctx context.Context, session Session, resumeID string, limit int) ([]history.SnapshotInfo, error) {
	if _, err := s.store.GetResume(ctx, session.UserID, resumeID); err != nil {
		return nil, err
	}
	return s.history.History(resumeID, limit)
}

func (s *Service) ResumeSnapshot(ctx context.Context, session Session, resumeID, hash string) (map[string]any, error) {
	if _, err := s.store.GetResume(ctx, session.UserID, resumeID); err != nil {
		return nil, err
	}
	title, templateID, content, err := s.history.GetSnapshot(resumeID, hash)
	if err != nil {
		return nil, domainError(http.StatusNotFound, "NOT_FOUND", "snapshot not found", nil)
	}
	return map[string]any{
		"title":      title,
		"templateId": templateID,
		"content":    content,
	}, nil
}

// --- avatars ---

func (s *Service) UploadAvatar(ctx context.Context, session Session, resumeID, contentType string, data []byte) (string, error) {
	doc, err := s.store.GetResume(ctx, session.UserID, resumeID)
	if err != nil {
		return "", err
	}

	key, err := s.avatars.Upload(ctx, session.UserID, contentType, data)
	if err != nil {
		return "", err
	}
	url, err := s.avatars.PresignedURL(ctx, key)
	if err != nil {
		return "", err
	}

	doc.Content.PersonalInfo.Avatar = url
	doc.UpdatedAt = time.Now().UTC()
	if err := s.store.UpsertResume(ctx, doc); err != nil {
		return "", err
	}
	s.afterSave(doc, session.UserName, "update avatar")

	if ed := s.existingEditor(session.UserID); ed != nil {
		if active, aerr := ed.collection.Active(); aerr == nil && active.ID == resumeID {
			info := doc.Content.PersonalInfo
			_, _ = ed.collection.Apply(resume.Patch{PersonalInfo: &info}, doc.UpdatedAt)
		}
	}
	return url, nil
}

// --- assistant ---

func (s *Service) OptimizeText(ctx context.Context, text, field string) (string, error) {
	return s.assistant.OptimizeText(ctx, text, field)
}

func (s *Service) GenerateContent(ctx context.Context, jobTitle string) (ai.GeneratedContent, error) {
	content, err := s.assistant.GenerateContent(ctx, jobTitle)
	if err != nil {
		return ai.GeneratedContent{}, err
	}
	// Entries arrive without ids; mint them so later removal works.
	for i := range content.Experience {
		if content.Experience[i].ID == "" {
			content.Experience[i].ID = uuid.NewString()
		}
	}
	return content, nil
}

func (s *Service) SuggestSkills(ctx context.Context, jobTitle string) ([]string, error) {
	return s.assistant.SuggestSkills(ctx, jobTitle)
}

func (s *Service) AnalyzeResume(ctx context.Context, session Session, resumeID string) (ai.Analysis, error) {
	doc, err := s.store.GetResume(ctx, session.UserID, resumeID)
	if err != nil {
		return ai.Analysis{}, err
	}
	return s.assistant.Analyze(ctx, doc)
}

// --- search ---

// SearchResumes scopes results to the caller. Admins asking for allOwners
// search across everyone.
func (s *Service) SearchResumes(ctx context.Context, session Session, text string, limit int, allOwners bool) search.Response {
	if s.search == nil {
		return search.Response{Results: []search.ResumeRecord{}, Query: text}
	}
	ownerID := session.UserID
	if allOwners && s.Can(session.Role, rbac.ActionAdmin) {
		ownerID = ""
	}
	return s.search.Search(ctx, search.Query{OwnerID: ownerID, Text: text, Limit: limit})
}

// --- admin ---

func (s *Service) AdminListUsers(ctx context.Context) ([]store.Profile, error) {
	return s.store.ListProfiles(ctx)
}

func (s *Service) AdminListResumes(ctx context.Context) ([]store.Resume, error) {
	return s.store.ListAllResumes(ctx)
}

func (s *Service) AdminStats(ctx context.Context) (map[string]any, error) {
	users, resumes, templates, err := s.store.SummaryCounts(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"users":     users,
		"resumes":   resumes,
		"templates": templates,
	}, nil
}

// Shutdown flushes and stops every open editor session.
func (s *Service) Shutdown(ctx context.Context) {
	s.editorMu.Lock()
	editors := s.editors
	s.editors = map[string]*editorSession{}
	s.editorMu.Unlock()

	for userID, ed := range editors {
		if active, err := ed.collection.Active(); err == nil {
			if err := ed.scheduler.FlushNow(ctx, active); err != nil {
				s.log.Warn("shutdown flush", zap.String("user_id", userID), zap.Error(err))
			}
		}
		ed.scheduler.Stop()
	}
}

func mapAuthError(err error) error {
	switch {
	case errors.Is(err, authpw.ErrBadCredentials):
		return domainError(http.StatusUnauthorized, "BAD_CREDENTIALS", "Invalid username or password", nil)
	case errors.Is(err, authpw.ErrUsernameTaken):
		return domainError(http.StatusConflict, "USERNAME_TAKEN", "Username already registered", nil)
	case errors.Is(err, authpw.ErrEmailTaken):
		return domainError(http.StatusConflict, "EMAIL_TAKEN", "Email already registered", nil)
	case errors.Is(err, authpw.ErrWeakPassword):
		return domainError(http.StatusUnprocessableEntity, "WEAK_PASSWORD", "Password must be at least 8 characters", nil)
	default:
		return err
	}
}
