package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSectionsOrder(t *testing.T) {
	sections, err := DefaultSections()
	require.NoError(t, err)

	files := make([]string, 0, len(sections))
	for _, sec := range sections {
		files = append(files, sec.File)
	}
	assert.Equal(t, []string{
		"live_2xx_3xx_hosts.txt",
		"dns_info.txt",
		"subzy.txt",
		"waybackurls.txt",
		"whatweb.txt",
		"waybackurls_filtered.txt",
	}, files)
	assert.Equal(t, ModeHighlightedListing, sections[2].Mode)
	assert.Equal(t, ModeDownloadOnly, sections[3].Mode)
	assert.Equal(t, ModeDownloadOnly, sections[5].Mode)
	assert.Equal(t, "whatweb", sections[4].ID())
	assert.Equal(t, "Tech Stack", sections[4].NavTitle())
}

func TestParseSectionsRejectsInvalidEntries(t *testing.T) {
	cases := map[string]string{
		"empty":        "sections: []\n",
		"unknown mode": "sections:\n  - {file: a.txt, title: A, mode: pie-chart}\n",
		"missing mode": "sections:\n  - {file: a.txt, title: A}\n",
		"no title":     "sections:\n  - {file: a.txt, mode: plain-listing}\n",
		"slash":        "sections:\n  - {file: ../a.txt, title: A, mode: plain-listing}\n",
		"hidden":       "sections:\n  - {file: .env, title: A, mode: plain-listing}\n",
		"duplicate":    "sections:\n  - {file: a.txt, title: A, mode: plain-listing}\n  - {file: a.log, title: B, mode: download-only}\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseSections([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestNavLinks(t *testing.T) {
	links := NavLinks([]Section{
		{File: "dns_info.txt", Title: "DNS Records", Nav: "DNS"},
		{File: "whatweb.txt", Title: "Tech Stack"},
	})
	require.Len(t, links, 2)
	assert.Equal(t, "/dns_info", links[0].Href)
	assert.Equal(t, "DNS", links[0].Title)
	assert.Equal(t, "Tech Stack", links[1].Title)
}

func TestLoadSections(t *testing.T) {
	sections, err := LoadSections("")
	require.NoError(t, err)
	assert.Len(t, sections, 6)

	path := filepath.Join(t.TempDir(), "sections.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sections:\n  - {file: nmap.txt, title: Open Ports, mode: plain-listing}\n"), 0o644))
	sections, err = LoadSections(path)
	require.NoError(t, err)
	require.Len(t, sections, 1)
	assert.Equal(t, "nmap", sections[0].ID())

	_, err = LoadSections(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
