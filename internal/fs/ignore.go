package fs

import (
	"strings"

	"ct-go/internal/natsort"
)

// Built-in deny sets. Config may extend these but never shrink them, so the
// same file is classified identically on every scan.
var (
	defaultIgnoredExtensions = []string{
		".vtt", ".srt", ".ass", ".ssa", ".sub", ".idx",
		".nfo", ".sfv", ".url", ".ds_store", ".tmp",
	}

	defaultIgnoredFolderExact = []string{
		"websites you may like",
		"sample files",
		"samples",
		"__macosx",
	}

	defaultIgnoredFolderContains = []string{
		"website",
		"websites",
		"subtitle",
		"subtitles",
	}
)

// Policy decides which folder names and file extensions are excluded from
// the catalog. All checks are pure and order-independent.
type Policy struct {
	folderExact    map[string]struct{}
	folderContains []string
	extensions     map[string]struct{}
}

// NewPolicy builds a Policy from the built-in deny sets plus any extra
// entries (typically from config). Extra folder names and extensions are
// normalized the same way lookups are.
func NewPolicy(extraFolders, extraFolderSubstrings, extraExtensions []string) *Policy {
	p := &Policy{
		folderExact: make(map[string]struct{}),
		extensions:  make(map[string]struct{}),
	}
	for _, f := range defaultIgnoredFolderExact {
		p.folderExact[f] = struct{}{}
	}
	for _, f := range extraFolders {
		if f = natsort.Fold(f); f != "" {
			p.folderExact[f] = struct{}{}
		}
	}
	p.folderContains = append(p.folderContains, defaultIgnoredFolderContains...)
	for _, f := range extraFolderSubstrings {
		if f = natsort.Fold(f); f != "" {
			p.folderContains = append(p.folderContains, f)
		}
	}
	for _, e := range defaultIgnoredExtensions {
		p.extensions[e] = struct{}{}
	}
	for _, e := range extraExtensions {
		e = natsort.Fold(e)
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		p.extensions[e] = struct{}{}
	}
	return p
}

// DefaultPolicy returns a Policy with only the built-in deny sets.
func DefaultPolicy() *Policy {
	return NewPolicy(nil, nil, nil)
}

// FolderIgnored reports whether a folder with the given name should be
// excluded, by exact match or substring match on the normalized name.
func (p *Policy) FolderIgnored(name string) bool {
	n := natsort.Fold(name)
	if _, ok := p.folderExact[n]; ok {
		return true
	}
	for _, frag := range p.folderContains {
		if strings.Contains(n, frag) {
			return true
		}
	}
	return false
}

// ExtIgnored reports whether files with the given extension (lowercase,
// leading dot included) should be excluded.
func (p *Policy) ExtIgnored(ext string) bool {
	_, ok := p.extensions[strings.ToLower(ext)]
	return ok
}
