// Package gittest builds throwaway repositories for tests of code that reads
// build history through package git.
//
// Example usage:
//
//	memFS := billy.NewInMemoryFS()
//	repo := gittest.New(t, memFS)
//	head := repo.Commit(t, "Update upstream")
//
//	opened, err := git.Open(ctx, &git.Options{FS: memFS})
package gittest

import (
	"fmt"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/PaperMC/bibliothek/fs"
	"github.com/PaperMC/bibliothek/git/internal/fsbridge"
)

// Epoch is the committer time of the first fixture commit. Each later
// commit is one minute after the previous one.
var Epoch = time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC)

// HistoryFile is the file Commit rewrites.
const HistoryFile = "history.txt"

// Repo is a repository checked out at the root of a filesystem.
type Repo struct {
	fs       fs.Filesystem
	repo     *git.Repository
	worktree *git.Worktree
	now      time.Time
}

// New initializes an empty repository at the root of filesystem, which
// must come from fs/billy.
func New(t testing.TB, filesystem fs.Filesystem) *Repo {
	t.Helper()

	billyFS, err := fsbridge.ToBillyFilesystem(filesystem)
	if err != nil {
		t.Fatalf("gittest.New: %v", err)
	}
	dotGit, err := billyFS.Chroot(".git")
	if err != nil {
		t.Fatalf("gittest.New: chroot .git: %v", err)
	}

	repo, err := git.Init(fsbridge.NewStorage(dotGit, 0), billyFS)
	if err != nil {
		t.Fatalf("gittest.New: init: %v", err)
	}
	worktree, err := repo.Worktree()
	if err != nil {
		t.Fatalf("gittest.New: worktree: %v", err)
	}

	return &Repo{fs: filesystem, repo: repo, worktree: worktree, now: Epoch}
}

// Commit rewrites HistoryFile with message, commits it and returns the
// commit hash. Repeating a message still yields a new commit.
func (r *Repo) Commit(t testing.TB, message string) string {
	t.Helper()
	return r.CommitFile(t, HistoryFile, message, message)
}

// CommitFile writes content to name, commits it and returns the commit hash.
func (r *Repo) CommitFile(t testing.TB, name, content, message string) string {
	t.Helper()

	if err := r.fs.WriteFile(name, []byte(content), 0o644); err != nil {
		t.Fatalf("gittest: write %s: %v", name, err)
	}
	if _, err := r.worktree.Add(name); err != nil {
		t.Fatalf("gittest: add %s: %v", name, err)
	}

	r.now = r.now.Add(time.Minute)
	sig := &object.Signature{Name: "Test User", Email: "test@example.com", When: r.now}
	hash, err := r.worktree.Commit(message, &git.CommitOptions{
		Author:            sig,
		Committer:         sig,
		AllowEmptyCommits: true,
	})
	if err != nil {
		t.Fatalf("gittest: commit %q: %v", message, err)
	}
	return hash.String()
}

// CommitN makes n commits titled "Commit 1" to "Commit n" and returns their
// hashes oldest first.
func (r *Repo) CommitN(t testing.TB, n int) []string {
	t.Helper()

	hashes := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		hashes = append(hashes, r.Commit(t, fmt.Sprintf("Commit %d", i)))
	}
	return hashes
}

// SideCommit stores a commit on top of parent that no reference points at
// and returns its hash.
func (r *Repo) SideCommit(t testing.TB, parent, message string) string {
	t.Helper()

	base, err := r.repo.CommitObject(plumbing.NewHash(parent))
	if err != nil {
		t.Fatalf("gittest: parent %s: %v", parent, err)
	}

	r.now = r.now.Add(time.Minute)
	sig := object.Signature{Name: "Test User", Email: "test@example.com", When: r.now}
	side := &object.Commit{
		Author:       sig,
		Committer:    sig,
		Message:      message,
		TreeHash:     base.TreeHash,
		ParentHashes: []plumbing.Hash{base.Hash},
	}

	obj := r.repo.Storer.NewEncodedObject()
	if err := side.Encode(obj); err != nil {
		t.Fatalf("gittest: encode %q: %v", message, err)
	}
	hash, err := r.repo.Storer.SetEncodedObject(obj)
	if err != nil {
		t.Fatalf("gittest: store %q: %v", message, err)
	}
	return hash.String()
}
