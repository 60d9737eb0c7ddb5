package enshrine

import (
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/object"
)

// AuthorMatcher matches commit author identities exactly. Name is always
// compared; Email is compared only when non-empty. Exact matching replaces
// substring matching against log text so that an author whose name is a
// substring of another's never produces false positives.
type AuthorMatcher struct {
	Name  string
	Email string
}

// ParseAuthorMatcher parses an author query of the form "Name" or
// "Name <email>" into an [AuthorMatcher].
func ParseAuthorMatcher(query string) (*AuthorMatcher, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyAuthor
	}

	open := strings.LastIndexByte(query, '<')
	if open < 0 {
		return &AuthorMatcher{Name: query}, nil
	}

	if !strings.HasSuffix(query, ">") {
		return nil, fmt.Errorf("unterminated email in author query: %s", query)
	}

	return &AuthorMatcher{
		Name:  strings.TrimSpace(query[:open]),
		Email: strings.TrimSpace(query[open+1 : len(query)-1]),
	}, nil
}

// MatchSignature reports whether the commit signature belongs to the target
// author.
func (m *AuthorMatcher) MatchSignature(sig object.Signature) bool {
	if sig.Name != m.Name {
		return false
	}
	if m.Email != "" && sig.Email != m.Email {
		return false
	}

	return true
}

// MatchIdentity reports whether an identity string, as carried in an edit
// plan entry ("Name" or "Name <email>"), belongs to the target author.
func (m *AuthorMatcher) MatchIdentity(identity string) bool {
	other, err := ParseAuthorMatcher(identity)
	if err != nil {
		return false
	}

	if other.Name != m.Name {
		return false
	}
	if m.Email != "" && other.Email != m.Email {
		return false
	}

	return true
}

// String formats the matcher back into "Name" or "Name <email>" form.
func (m *AuthorMatcher) String() string {
	if m.Email == "" {
		return m.Name
	}

	return fmt.Sprintf("%s <%s>", m.Name, m.Email)
}

// IdentityOf formats a commit signature the way plan entries carry it.
func IdentityOf(sig object.Signature) string {
	if sig.Email == "" {
		return sig.Name
	}

	return fmt.Sprintf("%s <%s>", sig.Name, sig.Email)
}
