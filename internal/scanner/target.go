package scanner

import (
	"bufio"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultTargets are the project paths a scan addresses when no targets are
// configured: the tRPC router, the database module, and the client pages and
// components.
var DefaultTargets = []string{
	"server/routers.ts",
	"server/db.ts",
	"client/src/pages/*.tsx",
	"client/src/**/*.tsx",
}

// IgnoreFile is the per-project ignore list read from the scan root.
const IgnoreFile = ".perfscanignore"

// Target represents a file to be scanned.
type Target struct {
	Path    string
	RelPath string // slash-separated, relative to the scan root
	Content []byte
}

// LoadContent reads the file content into memory.
func (t *Target) LoadContent() error {
	data, err := os.ReadFile(t.Path)
	if err != nil {
		return err
	}
	t.Content = data
	return nil
}

// TargetDiscovery walks a project root and returns the files matched by
// Include, minus anything matched by IgnorePatterns.
type TargetDiscovery struct {
	Include        []string
	IgnorePatterns []string
}

// Discover walks the directories the include globs can reach and returns
// matching targets in lexical order, respecting .perfscanignore. Directories
// outside those prefixes are never opened. A missing root or subdirectory
// yields no targets rather than an error.
func (td *TargetDiscovery) Discover(root string) ([]*Target, error) {
	td.loadIgnoreFile(root)

	include := td.Include
	if len(include) == 0 {
		include = DefaultTargets
	}

	var targets []*Target
	for _, dir := range walkRoots(include) {
		start := filepath.Join(root, filepath.FromSlash(dir))
		err := filepath.WalkDir(start, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					return nil
				}
				return err
			}
			if d.IsDir() {
				base := d.Name()
				if path != start && (base == ".git" || base == "node_modules") {
					return filepath.SkipDir
				}
				return nil
			}
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			relPath := filepath.ToSlash(rel)
			if !matchAny(include, relPath) || matchAny(td.IgnorePatterns, relPath) {
				return nil
			}
			targets = append(targets, &Target{
				Path:    path,
				RelPath: relPath,
			})
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return targets, nil
}

// walkRoots returns the literal directory prefix of each glob, e.g.
// "client/src" for "client/src/**/*.tsx" and "server" for
// "server/routers.ts", dropping prefixes nested in another one. A glob
// without a literal directory yields "." (the whole root). The result is
// sorted, and since no root contains another, walking them in order keeps
// targets in lexical order.
func walkRoots(globs []string) []string {
	var prefixes []string
	for _, glob := range globs {
		prefixes = append(prefixes, literalDir(glob))
	}
	sort.Strings(prefixes)

	var roots []string
	for _, p := range prefixes {
		if p == "." {
			return []string{"."}
		}
		if !underAny(roots, p) {
			roots = append(roots, p)
		}
	}
	return roots
}

func underAny(roots []string, dir string) bool {
	for _, r := range roots {
		if dir == r || strings.HasPrefix(dir, r+"/") {
			return true
		}
	}
	return false
}

func literalDir(glob string) string {
	parts := strings.Split(strings.TrimSuffix(glob, "/"), "/")
	if !strings.HasSuffix(glob, "/") {
		parts = parts[:len(parts)-1]
	}
	var lit []string
	for _, part := range parts {
		if part == "" || strings.ContainsAny(part, "*?[\\") {
			break
		}
		lit = append(lit, part)
	}
	if len(lit) == 0 {
		return "."
	}
	return strings.Join(lit, "/")
}

func (td *TargetDiscovery) loadIgnoreFile(root string) {
	f, err := os.Open(filepath.Join(root, IgnoreFile))
	if err != nil {
		return
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" && !strings.HasPrefix(line, "#") {
			td.IgnorePatterns = append(td.IgnorePatterns, line)
		}
	}
}

func matchAny(patterns []string, relPath string) bool {
	for _, pattern := range patterns {
		if MatchGlob(pattern, relPath) {
			return true
		}
	}
	return false
}

// MatchGlob matches a slash-separated relative path against a glob, adding
// the forms filepath.Match does not support:
// "dir/" matches anything under dir/.
// "dir/**" matches any file under dir/ at any depth.
// "**/*.tsx" matches any .tsx file at any depth.
// "dir/**/*.tsx" matches .tsx files under dir/, including directly in it.
// A pattern without a slash is also tried against the base name.
func MatchGlob(pattern, relPath string) bool {
	if strings.HasSuffix(pattern, "/") && !strings.Contains(pattern, "*") {
		return strings.HasPrefix(relPath, pattern)
	}

	if !strings.Contains(pattern, "**") {
		if matched, _ := filepath.Match(pattern, relPath); matched {
			return true
		}
		if !strings.Contains(pattern, "/") {
			if matched, _ := filepath.Match(pattern, pathBase(relPath)); matched {
				return true
			}
		}
		return false
	}

	// "prefix/**" → match anything under prefix/
	if strings.HasSuffix(pattern, "/**") {
		prefix := strings.TrimSuffix(pattern, "/**")
		if strings.HasPrefix(relPath, prefix+"/") || relPath == prefix {
			return true
		}
	}

	// "**/<glob>" → match <glob> against every path suffix
	if strings.HasPrefix(pattern, "**/") {
		if matchSuffixes(strings.TrimPrefix(pattern, "**/"), relPath) {
			return true
		}
	}

	// "prefix/**/suffix" → prefix matches start, suffix matches rest
	if idx := strings.Index(pattern, "/**/"); idx >= 0 {
		prefix := pattern[:idx]
		suffix := pattern[idx+4:]
		if strings.HasPrefix(relPath, prefix+"/") {
			if matchSuffixes(suffix, strings.TrimPrefix(relPath, prefix+"/")) {
				return true
			}
		}
	}

	return false
}

func matchSuffixes(glob, relPath string) bool {
	parts := strings.Split(relPath, "/")
	for i := range parts {
		candidate := strings.Join(parts[i:], "/")
		if matched, _ := filepath.Match(glob, candidate); matched {
			return true
		}
	}
	return false
}

func pathBase(relPath string) string {
	if i := strings.LastIndex(relPath, "/"); i >= 0 {
		return relPath[i+1:]
	}
	return relPath
}
