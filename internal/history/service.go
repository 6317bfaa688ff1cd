// Package history keeps a git-backed snapshot trail for every resume.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"cvstudio/api/internal/store"
)

// snapshot is what gets committed: the persisted subset of a resume, no
// identity columns, so the trail survives a database restore.
type snapshot struct {
	Title      string              `json:"title"`
	TemplateID string              `json:"templateId"`
	Content    store.ResumeContent `json:"content"`
}

// SnapshotInfo describes one entry in a resume's trail.
type SnapshotInfo struct {
	Hash      string    `json:"hash"`
	Message   string    `json:"message"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"createdAt"`
}

// Service owns one bare-bones git repository per resume. Every repo has a
// single linear main branch; there is no branching or merging in the trail.
type Service struct {
	baseDir string
	lockMu  sync.Mutex
	locks   map[string]*sync.Mutex
}

func New(baseDir string) *Service {
	return &Service{
		baseDir: baseDir,
		locks:   make(map[string]*sync.Mutex),
	}
}

// CommitSnapshot records the current state of a resume. It initializes the
// repository on first use, so callers never have to pre-create anything.
func (s *Service) CommitSnapshot(r store.Resume, author, message string) (SnapshotInfo, error) {
	lock := s.resumeLock(r.ID)
	lock.Lock()
	defer lock.Unlock()

	repo, err := s.openOrInit(r.ID)
	if err != nil {
		return SnapshotInfo{}, err
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return SnapshotInfo{}, fmt.Errorf("open worktree: %w", err)
	}

	payload, err := json.MarshalIndent(snapshot{
		Title:      r.Title,
		TemplateID: r.TemplateID,
		Content:    r.Content,
	}, "", "  ")
	if err != nil {
		return SnapshotInfo{}, fmt.Errorf("marshal snapshot: %w", err)
	}

	repoRoot := worktree.Filesystem.Root()
	if err := os.WriteFile(filepath.Join(repoRoot, "resume.json"), append(payload, '\n'), 0o644); err != nil {
		return SnapshotInfo{}, fmt.Errorf("write resume.json: %w", err)
	}
	if _, err := worktree.Add("resume.json"); err != nil {
		return SnapshotInfo{}, fmt.Errorf("git add snapshot: %w", err)
	}

	hash, err := worktree.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  author,
			Email: fmt.Sprintf("%s@local.cvstudio.dev", sanitizeEmail(author)),
			When:  time.Now(),
		},
	})
	if errors.Is(err, git.ErrEmptyCommit) {
		// Nothing changed since the last snapshot; report the head.
		head, headErr := repo.Head()
		if headErr != nil {
			return SnapshotInfo{}, fmt.Errorf("resolve head after empty commit: %w", headErr)
		}
		hash = head.Hash()
	} else if err != nil {
		return SnapshotInfo{}, fmt.Errorf("commit snapshot: %w", err)
	}

	commitObj, err := repo.CommitObject(hash)
	if err != nil {
		return SnapshotInfo{}, fmt.Errorf("read commit object: %w", err)
	}
	return toSnapshotInfo(commitObj), nil
}

// History lists the trail newest first. A resume without a repository has
// an empty trail, not an error.
func (s *Service) History(resumeID string, limit int) ([]SnapshotInfo, error) {
	lock := s.resumeLock(resumeID)
	lock.Lock()
	defer lock.Unlock()

	repo, err := git.PlainOpen(s.repoPath(resumeID))
	if errors.Is(err, git.ErrRepositoryNotExists) {
		return []SnapshotInfo{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open repo: %w", err)
	}

	head, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("resolve head: %w", err)
	}

	iter, err := repo.Log(&git.LogOptions{From: head.Hash()})
	if err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}
	defer iter.Close()

	items := make([]SnapshotInfo, 0, limit)
	count := 0
	err = iter.ForEach(func(commitObj *object.Commit) error {
		items = append(items, toSnapshotInfo(commitObj))
		count++
		if limit > 0 && count >= limit {
			return io.EOF
		}
		return nil
	})
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("iterate log: %w", err)
	}
	return items, nil
}

// GetSnapshot reads the resume state recorded at a given hash.
func (s *Service) GetSnapshot(resumeID, hash string) (string, string, store.ResumeContent, error) {
	lock := s.resumeLock(resumeID)
	lock.Lock()
	defer lock.Unlock()

	repo, err := git.PlainOpen(s.repoPath(resumeID))
	if err != nil {
		return "", "", store.ResumeContent{}, fmt.Errorf("open repo: %w", err)
	}

	resolvedHash, err := resolveHash(repo, hash)
	if err != nil {
		return "", "", store.ResumeContent{}, err
	}
	commitObj, err := repo.CommitObject(resolvedHash)
	if err != nil {
		return "", "", store.ResumeContent{}, fmt.Errorf("read commit %s: %w", hash, err)
	}

	file, err := commitObj.File("resume.json")
	if err != nil {
		return "", "", store.ResumeContent{}, fmt.Errorf("load resume.json from commit: %w", err)
	}
	reader, err := file.Reader()
	if err != nil {
		return "", "", store.ResumeContent{}, fmt.Errorf("open snapshot reader: %w", err)
	}
	defer reader.Close()

	raw, err := io.ReadAll(reader)
	if err != nil {
		return "", "", store.ResumeContent{}, fmt.Errorf("read snapshot bytes: %w", err)
	}

	var snap snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return "", "", store.ResumeContent{}, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap.Title, snap.TemplateID, snap.Content, nil
}

func (s *Service) openOrInit(resumeID string) (*git.Repository, error) {
	path := s.repoPath(resumeID)

	repo, err := git.PlainOpen(path)
	if err == nil {
		return repo, nil
	}
	if !errors.Is(err, git.ErrRepositoryNotExists) {
		return nil, fmt.Errorf("open repo: %w", err)
	}

	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("create repo dir: %w", err)
	}
	repo, err = git.PlainInit(path, false)
	if err != nil {
		return nil, fmt.Errorf("init repo: %w", err)
	}
	if err := repo.Storer.SetReference(plumbing.NewSymbolicReference(plumbing.HEAD, plumbing.NewBranchReferenceName("main"))); err != nil {
		return nil, fmt.Errorf("set HEAD to main: %w", err)
	}
	return repo, nil
}

func (s *Service) repoPath(resumeID string) string {
	return filepath.Join(s.baseDir, resumeID)
}

func (s *Service) resumeLock(resumeID string) *sync.Mutex {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()
	lock, ok := s.locks[resumeID]
	if ok {
		return lock
	}
	lock = &sync.Mutex{}
	s.locks[resumeID] = lock
	return lock
}

func toSnapshotInfo(commitObj *object.Commit) SnapshotInfo {
	return SnapshotInfo{
		Hash:      commitObj.Hash.String()[:7],
		Message:   commitObj.Message,
		Author:    commitObj.Author.Name,
		CreatedAt: commitObj.Author.When,
	}
}

func sanitizeEmail(input string) string {
	out := make([]rune, 0, len(input))
	for _, r := range input {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			out = append(out, r)
			continue
		}
		if r == ' ' || r == '-' || r == '_' {
			out = append(out, '.')
		}
	}
	if len(out) == 0 {
		return "user"
	}
	return string(out)
}

func resolveHash(repo *git.Repository, hash string) (plumbing.Hash, error) {
	if len(hash) == 40 {
		return plumbing.NewHash(hash), nil
	}
	resolved, err := repo.ResolveRevision(plumbing.Revision(hash))
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("resolve hash %s: %w", hash, err)
	}
	return *resolved, nil
}
