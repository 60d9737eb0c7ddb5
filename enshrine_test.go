package enshrine_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	enshrine "github.com/pturley0/enshrine-commits"
)

// newDiskFixtureRepo builds an on-disk repository with a linear history for
// the end to end pipeline.
func newDiskFixtureRepo(t *testing.T, commits []fixtureCommit) string {
	t.Helper()

	dir := t.TempDir()

	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatal(err)
	}

	w, err := repo.Worktree()
	if err != nil {
		t.Fatal(err)
	}

	when := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	for _, c := range commits {
		if err := os.WriteFile(filepath.Join(dir, c.file), []byte(c.content), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := w.Add(c.file); err != nil {
			t.Fatal(err)
		}

		when = when.Add(time.Minute)
		sig := &object.Signature{Name: c.author, Email: fixtureEmail(c.author), When: when}

		if _, err := w.Commit(c.message, &git.CommitOptions{Author: sig, Committer: sig}); err != nil {
			t.Fatal(err)
		}
	}

	return dir
}

func TestEnshrine(t *testing.T) {
	original := newDiskFixtureRepo(t, []fixtureCommit{
		{author: "Zed", file: "0.txt", content: "0", message: "z0"},
		{author: "Zed", file: "1.txt", content: "1", message: "z1"},
		{author: "Alice", file: "2.txt", content: "2", message: "a1"},
		{author: "Bob", file: "3.txt", content: "3", message: "b1"},
		{author: "Carol", file: "4.txt", content: "4", message: "c1"},
		{author: "Alice", file: "5.txt", content: "5", message: "a2"},
		{author: "Dave", file: "6.txt", content: "6", message: "d1"},
	})

	shrinePath := filepath.Join(t.TempDir(), "shrine")

	result, err := enshrine.Enshrine(context.Background(), original, shrinePath, &enshrine.Options{
		Author: "Alice",
		Ref:    "master",
	})
	if err != nil {
		t.Fatal(err)
	}

	// extracted: context z1 plus the a1..a2 segment. Dave is outside the
	// segment and never carried over.
	if result.Extracted != 5 {
		t.Fatalf("extracted = %d, want 5", result.Extracted)
	}
	if result.Picks != 4 {
		t.Fatalf("picks = %d, want 4", result.Picks)
	}

	shrine, err := git.PlainOpen(shrinePath)
	if err != nil {
		t.Fatal(err)
	}

	headRef, err := shrine.Head()
	if err != nil {
		t.Fatal(err)
	}
	if headRef.Hash() != result.Head {
		t.Fatalf("HEAD = %s, want %s", headRef.Hash(), result.Head)
	}

	head, err := shrine.CommitObject(headRef.Hash())
	if err != nil {
		t.Fatal(err)
	}

	hist, err := enshrine.GetFirstParentHistory(context.Background(), head, nil)
	if err != nil {
		t.Fatal(err)
	}

	wantAuthors := []string{"Zed", "Alice", "Bob", "Alice"}
	if len(hist) != len(wantAuthors) {
		t.Fatalf("shrine has %d commits, want %d", len(hist), len(wantAuthors))
	}
	for i, c := range hist {
		if c.Author.Name != wantAuthors[i] {
			t.Fatalf("hist[%d] author = %s, want %s", i, c.Author.Name, wantAuthors[i])
		}
	}

	// the head's file tree matches the last author commit in the original:
	// files 0..5 present, Dave's file absent.
	tree, err := head.Tree()
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"0.txt", "1.txt", "2.txt", "3.txt", "4.txt", "5.txt"} {
		if _, err := tree.File(name); err != nil {
			t.Fatalf("missing %s in shrine head: %v", name, err)
		}
	}
	if _, err := tree.File("6.txt"); err == nil {
		t.Fatal("Dave's file leaked into the shrine")
	}

	// the joiner carries both swept-in messages.
	joiner := hist[2]
	if joiner.Message != "b1\n\nc1" {
		t.Fatalf("joiner message = %q, want %q", joiner.Message, "b1\n\nc1")
	}
}

func TestEnshrine_noMatchLeavesDestinationAlone(t *testing.T) {
	original := newDiskFixtureRepo(t, []fixtureCommit{
		{author: "Zed", file: "0.txt", content: "0", message: "z0"},
		{author: "Zed", file: "1.txt", content: "1", message: "z1"},
	})

	shrinePath := filepath.Join(t.TempDir(), "shrine")
	sentinel := filepath.Join(shrinePath, "keep.txt")
	if err := os.MkdirAll(shrinePath, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(sentinel, []byte("keep"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := enshrine.Enshrine(context.Background(), original, shrinePath, &enshrine.Options{
		Author: "Alice",
		Ref:    "master",
	})
	if !errors.Is(err, enshrine.ErrNoMatchingCommits) {
		t.Fatalf("got %v, want ErrNoMatchingCommits", err)
	}

	// the locate failure happens before anything touches the destination.
	if _, err := os.Stat(sentinel); err != nil {
		t.Fatalf("destination was touched: %v", err)
	}
}

func TestEnshrine_customBranch(t *testing.T) {
	original := newDiskFixtureRepo(t, []fixtureCommit{
		{author: "Zed", file: "0.txt", content: "0", message: "z0"},
		{author: "Zed", file: "1.txt", content: "1", message: "z1"},
		{author: "Alice", file: "2.txt", content: "2", message: "a1"},
	})

	shrinePath := filepath.Join(t.TempDir(), "shrine")

	result, err := enshrine.Enshrine(context.Background(), original, shrinePath, &enshrine.Options{
		Author: "Alice <Alice@example.com>",
		Ref:    "master",
		Branch: "shrine",
	})
	if err != nil {
		t.Fatal(err)
	}

	shrine, err := git.PlainOpen(shrinePath)
	if err != nil {
		t.Fatal(err)
	}

	headRef, err := shrine.Head()
	if err != nil {
		t.Fatal(err)
	}
	if got := headRef.Name().Short(); got != "shrine" {
		t.Fatalf("branch = %s, want shrine", got)
	}
	if headRef.Hash() != result.Head {
		t.Fatalf("HEAD = %s, want %s", headRef.Hash(), result.Head)
	}
}

func TestEnshrine_badAuthor(t *testing.T) {
	_, err := enshrine.Enshrine(context.Background(), t.TempDir(), filepath.Join(t.TempDir(), "shrine"), &enshrine.Options{
		Author: "",
		Ref:    "master",
	})
	if !errors.Is(err, enshrine.ErrEmptyAuthor) {
		t.Fatalf("got %v, want ErrEmptyAuthor", err)
	}
}
