package report

import (
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Mode selects how a section's input is materialised into HTML.
type Mode string

const (
	// ModePlainListing inlines every escaped line in a paginated block.
	ModePlainListing Mode = "plain-listing"
	// ModeDownloadOnly emits only a link to the raw input file.
	ModeDownloadOnly Mode = "download-only"
	// ModeHighlightedListing is ModePlainListing with finding lines marked.
	ModeHighlightedListing Mode = "highlighted-listing"
)

const (
	// Sentinel marks a positive takeover finding in scan output.
	Sentinel = "[ VULNERABLE ]"
	// PageSize is the number of lines per page in listing sections.
	PageSize = 10
)

// UnmarshalYAML rejects unknown modes at load time.
func (m *Mode) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	mode := Mode(raw)
	if !mode.Valid() {
		return fmt.Errorf("report: unknown mode %q (line %d)", raw, value.Line)
	}
	*m = mode
	return nil
}

// Valid reports whether m is a known rendering mode.
func (m Mode) Valid() bool {
	switch m {
	case ModePlainListing, ModeDownloadOnly, ModeHighlightedListing:
		return true
	}
	return false
}

// Listing reports whether the mode inlines file content.
func (m Mode) Listing() bool {
	return m == ModePlainListing || m == ModeHighlightedListing
}

// Section maps one scan output file to a report page.
type Section struct {
	File  string `yaml:"file" validate:"required,excludesall=/\\"`
	Title string `yaml:"title" validate:"required"`
	Nav   string `yaml:"nav"`
	Mode  Mode   `yaml:"mode" validate:"required,oneof=plain-listing download-only highlighted-listing"`
}

// ID is the output identifier: the input filename without its extension.
func (s Section) ID() string {
	return strings.TrimSuffix(s.File, filepath.Ext(s.File))
}

// BlockID is the element id of the listing block.
func (s Section) BlockID() string {
	return s.ID() + "-content"
}

// OutputName is the rendered document filename.
func (s Section) OutputName() string {
	return s.ID() + ".html"
}

// NavTitle is the label used in navigation links.
func (s Section) NavTitle() string {
	if s.Nav != "" {
		return s.Nav
	}
	return s.Title
}
