package prompt

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// ErrUnknownPrompt is returned by Get for a slug no prompt file defines.
var ErrUnknownPrompt = errors.New("unknown prompt")

// Registry resolves the prompt an AI operation renders.
type Registry interface {
	Get(slug string) (*Prompt, error)
	List() []*Prompt
}

// Set holds the embedded prompts plus any files from ai.prompts_dir that
// replace them.
type Set struct {
	bySlug     map[string]*Prompt
	overridden map[string]bool
}

// NewRegistry indexes prompts by slug. Each prompt file must carry a
// unique slug.
func NewRegistry(prompts []*Prompt) (*Set, error) {
	s := &Set{bySlug: make(map[string]*Prompt, len(prompts)), overridden: map[string]bool{}}
	for _, p := range prompts {
		if p == nil {
			continue
		}
		slug := strings.TrimSpace(p.Config.Slug)
		switch {
		case slug == "":
			return nil, fmt.Errorf("prompt %s has no slug", p.Source)
		case s.bySlug[slug] != nil:
			return nil, fmt.Errorf("prompt slug %q defined by both %s and %s", slug, s.bySlug[slug].Source, p.Source)
		}
		s.bySlug[slug] = p
	}
	return s, nil
}

// Override installs user prompts over the defaults. A file whose slug
// matches no default adds a new prompt.
func (s *Set) Override(prompts []*Prompt) {
	for _, p := range prompts {
		if p == nil {
			continue
		}
		slug := strings.TrimSpace(p.Config.Slug)
		if slug == "" {
			continue
		}
		if _, ok := s.bySlug[slug]; ok {
			s.overridden[slug] = true
		}
		s.bySlug[slug] = p
	}
}

// Overridden lists the default slugs replaced from the prompts directory.
func (s *Set) Overridden() []string {
	if s == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(s.overridden))
}

func (s *Set) Get(slug string) (*Prompt, error) {
	if s == nil {
		return nil, errors.New("prompts not loaded")
	}
	slug = strings.TrimSpace(slug)
	p, ok := s.bySlug[slug]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownPrompt, slug)
	}
	return p, nil
}

// List returns every prompt ordered by slug.
func (s *Set) List() []*Prompt {
	if s == nil {
		return nil
	}
	out := make([]*Prompt, 0, len(s.bySlug))
	for _, slug := range slices.Sorted(maps.Keys(s.bySlug)) {
		out = append(out, s.bySlug[slug])
	}
	return out
}
