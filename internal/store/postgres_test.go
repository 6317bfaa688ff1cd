package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func newMockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewPostgresStore(db), mock
}

func TestUpsertResumeRepeatsConverge(t *testing.T) {
	s, mock := newMockStore(t)

	r := Resume{
		ID:         "cv-1",
		OwnerID:    "user-1",
		Title:      "Backend Engineer",
		TemplateID: "t1",
		UpdatedAt:  time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC),
		Content:    ResumeContent{Skills: []string{"Go"}, Type: "cv"},
	}
	content, _ := json.Marshal(r.Content)

	for i := 0; i < 2; i++ {
		mock.ExpectExec(`INSERT INTO resumes`).
			WithArgs(r.ID, r.OwnerID, r.Title, r.TemplateID, content, r.UpdatedAt).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}

	if err := s.UpsertResume(context.Background(), r); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if err := s.UpsertResume(context.Background(), r); err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestGetResumeScopedToOwner(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT id, owner_id, title, template_id, content, updated_at`).
		WithArgs("cv-1", "intruder").
		WillReturnRows(sqlmock.NewRows([]string{"id", "owner_id", "title", "template_id", "content", "updated_at"}))

	_, err := s.GetResume(context.Background(), "intruder", "cv-1")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound for foreign owner, got %v", err)
	}
}

func TestDeleteResumeIdempotent(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec(`DELETE FROM resumes`).
		WithArgs("missing", "user-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := s.DeleteResume(context.Background(), "user-1", "missing"); err != nil {
		t.Fatalf("delete of absent row should succeed, got %v", err)
	}
}

func TestListResumesUnmarshalsContent(t *testing.T) {
	s, mock := newMockStore(t)

	content := []byte(`{"personalInfo":{"fullName":"Ada","email":"","phone":"","dob":"","gender":"","address":"","objective":""},"experience":[],"education":[],"skills":["Go","SQL"],"type":"cv"}`)
	rows := sqlmock.NewRows([]string{"id", "owner_id", "title", "template_id", "content", "updated_at"}).
		AddRow("cv-1", "user-1", "CV", "t1", content, time.Now())

	mock.ExpectQuery(`FROM resumes WHERE owner_id`).
		WithArgs("user-1").
		WillReturnRows(rows)

	got, err := s.ListResumes(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("want 1 resume, got %d", len(got))
	}
	if got[0].Content.PersonalInfo.FullName != "Ada" {
		t.Fatalf("content not decoded: %+v", got[0].Content)
	}
	if len(got[0].Content.Skills) != 2 {
		t.Fatalf("skills not decoded: %+v", got[0].Content.Skills)
	}
}

func TestSummaryCounts(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT`).
		WillReturnRows(sqlmock.NewRows([]string{"users", "resumes", "templates"}).AddRow(4, 11, 3))

	users, resumes, templates, err := s.SummaryCounts(context.Background())
	if err != nil {
		t.Fatalf("summary counts: %v", err)
	}
	if users != 4 || resumes != 11 || templates != 3 {
		t.Fatalf("got %d/%d/%d", users, resumes, templates)
	}
}
