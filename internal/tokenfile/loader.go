package tokenfile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"rafters/internal/registry"
	"rafters/internal/token"
)

// Declaration records that a token is derived from other tokens via a
// rule.
type Declaration struct {
	Token     string   `json:"token"`
	DependsOn []string `json:"dependsOn"`
	Rule      string   `json:"rule"`
}

// Document is the on-disk shape of one *.tokens.json file.
type Document struct {
	Tokens       []token.Token `json:"tokens"`
	Dependencies []Declaration `json:"dependencies"`
}

const fileSuffix = ".tokens.json"

// Discover walks root and returns the token files in lexical path order.
// VCS and dependency directories are skipped.
func Discover(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			base := filepath.Base(path)
			if base != "." && strings.HasPrefix(base, ".") {
				return filepath.SkipDir
			}
			switch base {
			case "node_modules", "vendor", "target", "build", "dist":
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(d.Name(), fileSuffix) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}

// ParseDocument decodes a single token file.
func ParseDocument(data []byte) (Document, error) {
	var doc Document
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return Document{}, err
	}
	return doc, nil
}

// LoadDir loads every token file under root into one snapshot.
//
// Tokens from all files are registered first, then dependency edges, so
// edges may reference tokens declared in other files. Edge-insertion
// order is declaration order within a file, files in lexical path order.
// Loading is all-or-nothing: the first malformed document or invalid
// declaration fails the whole load, with the file path in the error.
func LoadDir(root string) (*registry.Snapshot, error) {
	paths, err := Discover(root)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no %s files under %s", fileSuffix, root)
	}
	return LoadFiles(paths)
}

// LoadFiles loads the given token files, in order, into one snapshot.
func LoadFiles(paths []string) (*registry.Snapshot, error) {
	docs := make([]Document, 0, len(paths))
	for _, path := range paths {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		doc, err := ParseDocument(raw)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		docs = append(docs, doc)
	}

	b := registry.NewBuilder()
	for i, doc := range docs {
		for _, t := range doc.Tokens {
			if b.AddToken(t); b.Err() != nil {
				return nil, fmt.Errorf("%s: %w", paths[i], b.Err())
			}
		}
	}
	for i, doc := range docs {
		for _, d := range doc.Dependencies {
			if b.AddDependency(d.Token, d.DependsOn, d.Rule); b.Err() != nil {
				return nil, fmt.Errorf("%s: %w", paths[i], b.Err())
			}
		}
	}
	return b.Build()
}
