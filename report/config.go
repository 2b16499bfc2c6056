package report

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/odyssey-erp/recon-portal/internal/view"
)

//go:embed sections.yaml
var defaultSectionsYAML []byte

type sectionsFile struct {
	Sections []Section `yaml:"sections"`
}

// DefaultSections returns the section list compiled into the binary.
func DefaultSections() ([]Section, error) {
	return ParseSections(defaultSectionsYAML)
}

// LoadSections reads a section list from path, or returns the built-in list
// when path is empty.
func LoadSections(path string) ([]Section, error) {
	if path == "" {
		return DefaultSections()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("report: read sections: %w", err)
	}
	return ParseSections(data)
}

// ParseSections decodes and validates a section list.
func ParseSections(data []byte) ([]Section, error) {
	var file sectionsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("report: parse sections: %w", err)
	}
	if len(file.Sections) == 0 {
		return nil, errors.New("report: no sections configured")
	}
	validate := validator.New()
	seen := make(map[string]struct{}, len(file.Sections))
	for i, sec := range file.Sections {
		if err := validate.Struct(sec); err != nil {
			return nil, fmt.Errorf("report: section %d: %w", i, err)
		}
		if err := ValidateName(sec.ID()); err != nil {
			return nil, fmt.Errorf("report: section %d: invalid file %q: %w", i, sec.File, err)
		}
		if _, dup := seen[sec.ID()]; dup {
			return nil, fmt.Errorf("report: duplicate section id %q", sec.ID())
		}
		seen[sec.ID()] = struct{}{}
	}
	return file.Sections, nil
}

// NavLinks builds the navigation shared by the dashboard and report pages.
func NavLinks(sections []Section) []view.NavLink {
	links := make([]view.NavLink, 0, len(sections))
	for _, sec := range sections {
		links = append(links, view.NavLink{Href: "/" + sec.ID(), Title: sec.NavTitle()})
	}
	return links
}
