package crawler

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DefaultExtensions are the file types treated as ingestible text.
var DefaultExtensions = []string{".md", ".markdown", ".txt", ".rst", ".adoc"}

// Crawler scans a directory for reference documents.
type Crawler struct {
	extensions map[string]bool
	ignored    []string
}

// NewCrawler creates a crawler for the given extensions (DefaultExtensions when empty).
func NewCrawler(extensions ...string) *Crawler {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	exts := make(map[string]bool, len(extensions))
	for _, e := range extensions {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		exts[e] = true
	}
	return &Crawler{
		extensions: exts,
		ignored:    []string{".git", "vendor", "node_modules", "testdata"},
	}
}

// Accepts reports whether path has an ingestible extension.
func (c *Crawler) Accepts(path string) bool {
	return c.extensions[strings.ToLower(filepath.Ext(path))]
}

// Scan walks root and streams every accepted file's path and content.
// A file root is passed through when accepted. Unreadable files are skipped.
func (c *Crawler) Scan(root string, onFile func(path, content string) error) error {
	info, err := os.Stat(root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		if !c.Accepts(root) {
			return nil
		}
		data, err := os.ReadFile(root)
		if err != nil {
			return err
		}
		return onFile(root, string(data))
	}

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		// Skip ignored and hidden directories
		if d.IsDir() {
			if path != root && (strings.HasPrefix(d.Name(), ".") || c.isIgnored(d.Name())) {
				return filepath.SkipDir
			}
			return nil
		}
		if !c.Accepts(path) {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		return onFile(path, string(data))
	})
}

func (c *Crawler) isIgnored(name string) bool {
	for _, ign := range c.ignored {
		if name == ign {
			return true
		}
	}
	return false
}
