package history

import (
	"testing"
	"time"

	"cvstudio/api/internal/resume"
)

func TestCommitAndHistory(t *testing.T) {
	s := New(t.TempDir())
	r := resume.New("user-1", "My CV", "t1", time.Now())

	first, err := s.CommitSnapshot(r, "Ada", "initial draft")
	if err != nil {
		t.Fatalf("first commit: %v", err)
	}
	if first.Hash == "" || first.Author != "Ada" {
		t.Fatalf("snapshot info = %+v", first)
	}

	r.Title = "Renamed CV"
	second, err := s.CommitSnapshot(r, "Ada", "rename")
	if err != nil {
		t.Fatalf("second commit: %v", err)
	}
	if second.Hash == first.Hash {
		t.Fatal("changed content must produce a new snapshot")
	}

	trail, err := s.History(r.ID, 10)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(trail) != 2 {
		t.Fatalf("want 2 entries, got %d", len(trail))
	}
	if trail[0].Hash != second.Hash {
		t.Fatalf("trail not newest first: %+v", trail)
	}
}

func TestGetSnapshotRoundTrip(t *testing.T) {
	s := New(t.TempDir())
	r := resume.New("user-1", "My CV", "t2", time.Now())
	r.Content.Skills = []string{"Go", "SQL"}

	info, err := s.CommitSnapshot(r, "Ada", "initial draft")
	if err != nil {
		t.Fatalf("commit: %v", err)
	}

	title, templateID, content, err := s.GetSnapshot(r.ID, info.Hash)
	if err != nil {
		t.Fatalf("get snapshot: %v", err)
	}
	if title != "My CV" || templateID != "t2" {
		t.Fatalf("snapshot header = %q/%q", title, templateID)
	}
	if len(content.Skills) != 2 {
		t.Fatalf("snapshot content = %+v", content)
	}
}

func TestHistoryWithoutRepoIsEmpty(t *testing.T) {
	s := New(t.TempDir())
	trail, err := s.History("never-committed", 10)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(trail) != 0 {
		t.Fatalf("want empty trail, got %d entries", len(trail))
	}
}

func TestHistoryLimit(t *testing.T) {
	s := New(t.TempDir())
	r := resume.New("user-1", "My CV", "t1", time.Now())

	for i := 0; i < 4; i++ {
		r.Title = r.Title + "x"
		if _, err := s.CommitSnapshot(r, "Ada", "edit"); err != nil {
			t.Fatalf("commit %d: %v", i, err)
		}
	}

	trail, err := s.History(r.ID, 2)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(trail) != 2 {
		t.Fatalf("want limit 2 honored, got %d", len(trail))
	}
}
