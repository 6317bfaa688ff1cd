package search

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"go.uber.org/zap"

	"cvstudio/api/internal/store"
)

func TestFacadeFallsBackWithoutMeili(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "owner_id", "title", "full_name", "objective", "updated_at"}).
		AddRow("cv-1", "user-1", "Backend CV", "Ada", "Build things", int64(1756500000))
	mock.ExpectQuery(`FROM resumes`).
		WithArgs("user-1", "%backend%", 20).
		WillReturnRows(rows)

	svc := NewService(nil, NewPgFTS(db), zap.NewNop())
	resp := svc.Search(context.Background(), Query{OwnerID: "user-1", Text: "backend"})

	if resp.Total != 1 || len(resp.Results) != 1 {
		t.Fatalf("resp = %+v", resp)
	}
	if resp.Results[0].Title != "Backend CV" {
		t.Fatalf("result = %+v", resp.Results[0])
	}
	if resp.Query != "backend" {
		t.Fatalf("query echo = %q", resp.Query)
	}
}

func TestFacadeEmptyOnStoreFailure(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`FROM resumes`).WillReturnError(context.DeadlineExceeded)

	svc := NewService(nil, NewPgFTS(db), zap.NewNop())
	resp := svc.Search(context.Background(), Query{OwnerID: "user-1", Text: "x"})

	if resp.Results == nil {
		t.Fatal("results must be non-nil for JSON encoding")
	}
	if len(resp.Results) != 0 || resp.Total != 0 {
		t.Fatalf("resp = %+v", resp)
	}
}

func TestFacadeSearchesAllOwnersWithEmptyOwner(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "owner_id", "title", "full_name", "objective", "updated_at"}).
		AddRow("cv-1", "user-1", "Backend CV", "Ada", "Build", int64(1756500000)).
		AddRow("cv-2", "user-2", "Backend too", "Grace", "Ship", int64(1756500001))
	mock.ExpectQuery(`FROM resumes`).
		WithArgs("", "%backend%", 20).
		WillReturnRows(rows)

	svc := NewService(nil, NewPgFTS(db), zap.NewNop())
	resp := svc.Search(context.Background(), Query{Text: "backend"})

	if resp.Total != 2 {
		t.Fatalf("resp = %+v", resp)
	}
	if resp.Results[0].OwnerID == resp.Results[1].OwnerID {
		t.Fatalf("expected results from two owners, got %+v", resp.Results)
	}
}

func TestIndexResumeWithoutMeiliIsNoOp(t *testing.T) {
	svc := NewService(nil, nil, zap.NewNop())
	// Must not panic or block.
	svc.IndexResume(store.Resume{ID: "cv-1", UpdatedAt: time.Now()})
	svc.DeleteResume("cv-1")
}

func TestToRecordFlattens(t *testing.T) {
	r := store.Resume{
		ID:        "cv-1",
		OwnerID:   "user-1",
		Title:     "My CV",
		UpdatedAt: time.Unix(1756500000, 0),
	}
	r.Content.PersonalInfo.FullName = "Ada"
	r.Content.PersonalInfo.Objective = "Build"
	r.Content.Skills = []string{"Go"}

	rec := toRecord(r)
	if rec.FullName != "Ada" || rec.Objective != "Build" || len(rec.Skills) != 1 {
		t.Fatalf("record = %+v", rec)
	}
	if rec.UpdatedAt != 1756500000 {
		t.Fatalf("updatedAt = %d", rec.UpdatedAt)
	}
}
