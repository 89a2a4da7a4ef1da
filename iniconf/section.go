// Package iniconf loads and saves strongly-typed configuration structs
// against case-insensitive INI sections. Struct tags declare per-field
// renames, key-format templates, and flattening; value types plug in
// custom wire behavior through the Value and encoding.Text* interfaces.
package iniconf

import (
	"strings"

	ini "gopkg.in/ini.v1"
)

// File wraps an INI file whose sections hand out case-insensitive
// key access while preserving the case keys are written with.
type File struct {
	f *ini.File
}

func NewFile() *File {
	return &File{f: ini.Empty()}
}

func LoadFile(path string) (*File, error) {
	f, err := ini.Load(path)
	if err != nil {
		return nil, err
	}
	return &File{f: f}, nil
}

func (f *File) SaveTo(path string) error {
	return f.f.SaveTo(path)
}

// Section returns the named section, creating it when absent. The
// empty name is the top (general) section.
func (f *File) Section(name string) *Section {
	return &Section{sec: f.f.Section(name)}
}

// Section is a case-insensitive key/value store. Lookups match keys
// regardless of case; writes keep the case of an existing key and
// otherwise use the given one. Key order is insertion order.
type Section struct {
	sec *ini.Section
}

// NewSection returns a free-standing in-memory section.
func NewSection() *Section {
	return NewFile().Section("")
}

func (s *Section) find(key string) (string, bool) {
	for _, existing := range s.sec.KeyStrings() {
		if strings.EqualFold(existing, key) {
			return existing, true
		}
	}
	return "", false
}

func (s *Section) Get(key string) (string, bool) {
	existing, ok := s.find(key)
	if !ok {
		return "", false
	}
	return s.sec.Key(existing).String(), true
}

func (s *Section) Set(key, value string) {
	if existing, ok := s.find(key); ok {
		s.sec.Key(existing).SetValue(value)
		return
	}
	s.sec.Key(key).SetValue(value)
}

func (s *Section) Delete(key string) {
	if existing, ok := s.find(key); ok {
		s.sec.DeleteKey(existing)
	}
}

// Keys returns the section's key names in insertion order.
func (s *Section) Keys() []string {
	return s.sec.KeyStrings()
}

func (s *Section) Len() int {
	return len(s.sec.KeyStrings())
}
