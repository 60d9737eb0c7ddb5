package enshrine_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5/memfs"
	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/memory"
)

// fixtureCommit describes one commit of a fixture history: who wrote it and
// the single file change it carries.
type fixtureCommit struct {
	author  string
	file    string
	content string
	message string
}

func fixtureEmail(name string) string {
	return fmt.Sprintf("%s@example.com", name)
}

// newFixtureRepo builds an in-memory repository with a linear history, one
// commit per entry, and returns the commit hashes in history order.
func newFixtureRepo(t *testing.T, commits []fixtureCommit) (*git.Repository, []plumbing.Hash) {
	t.Helper()

	fs := memfs.New()

	repo, err := git.Init(memory.NewStorage(), fs)
	if err != nil {
		t.Fatal(err)
	}

	w, err := repo.Worktree()
	if err != nil {
		t.Fatal(err)
	}

	when := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	hashes := make([]plumbing.Hash, 0, len(commits))

	for _, c := range commits {
		f, err := fs.Create(c.file)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := f.Write([]byte(c.content)); err != nil {
			t.Fatal(err)
		}
		if err := f.Close(); err != nil {
			t.Fatal(err)
		}

		if _, err := w.Add(c.file); err != nil {
			t.Fatal(err)
		}

		when = when.Add(time.Minute)
		sig := &object.Signature{
			Name:  c.author,
			Email: fixtureEmail(c.author),
			When:  when,
		}

		h, err := w.Commit(c.message, &git.CommitOptions{Author: sig, Committer: sig})
		if err != nil {
			t.Fatal(err)
		}

		hashes = append(hashes, h)
	}

	return repo, hashes
}

func commitOrFatal(t *testing.T, repo *git.Repository, h plumbing.Hash) *object.Commit {
	t.Helper()

	c, err := repo.CommitObject(h)
	if err != nil {
		t.Fatal(err)
	}

	return c
}
