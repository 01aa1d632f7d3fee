// Package manifest records which template produced which page, in a stable
// order, so two builds of the same views can be compared byte for byte.
package manifest

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"viewgen/internal/pages"
)

// Entry is one generated page.
type Entry struct {
	Output    string `yaml:"output"`
	Template  string `yaml:"template"`
	Extension string `yaml:"extension"`
	Inject    bool   `yaml:"inject"`
}

// Manifest is the document written to disk.
type Manifest struct {
	Pages []Entry `yaml:"pages"`
}

// FromDescriptors builds a manifest sorted by output name. Template paths
// are made relative to base when possible.
func FromDescriptors(ds []pages.Descriptor, base string) Manifest {
	m := Manifest{Pages: make([]Entry, 0, len(ds))}
	for _, d := range ds {
		tmpl := d.Template
		if base != "" {
			if rel, err := filepath.Rel(base, d.Template); err == nil {
				tmpl = filepath.ToSlash(rel)
			}
		}
		m.Pages = append(m.Pages, Entry{
			Output:    d.Filename,
			Template:  tmpl,
			Extension: d.Ext,
			Inject:    d.Inject,
		})
	}
	sort.Slice(m.Pages, func(i, j int) bool { return m.Pages[i].Output < m.Pages[j].Output })
	return m
}

// Encode writes m to w as YAML.
func Encode(w io.Writer, m Manifest) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(4)
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	return enc.Close()
}

// Write stores m at path as YAML, creating parent directories.
func Write(path string, m Manifest) error {
	var buf bytes.Buffer
	if err := Encode(&buf, m); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

// Read loads a manifest written by Write.
func Read(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, err
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("decode manifest %s: %w", path, err)
	}
	return m, nil
}
