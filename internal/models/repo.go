package models

import "sort"

// RepoRef identifies a repository by owner and name.
type RepoRef struct {
	Owner string `json:"owner"`
	Name  string `json:"name"`
}

func (r RepoRef) FullName() string {
	return r.Owner + "/" + r.Name
}

type EntryType string

const (
	EntryFile EntryType = "file"
	EntryDir  EntryType = "dir"
)

// Entry is one item of a directory listing.
type Entry struct {
	Name string    `json:"name"`
	Type EntryType `json:"type"`
	Path string    `json:"path"`
}

// TechSet is a set of technology tags.
type TechSet map[string]struct{}

func NewTechSet(tags ...string) TechSet {
	s := TechSet{}
	for _, t := range tags {
		s.Add(t)
	}
	return s
}

func (s TechSet) Add(tag string) {
	s[tag] = struct{}{}
}

func (s TechSet) Has(tag string) bool {
	_, ok := s[tag]
	return ok
}

// Sorted returns the tags in lexical order.
func (s TechSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for t := range s {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
