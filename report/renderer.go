package report

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/odyssey-erp/recon-portal/internal/shared"
	"github.com/odyssey-erp/recon-portal/internal/view"
)

// Outcome labels for rendered sections.
const (
	OutcomeOK      = "ok"
	OutcomeMissing = "missing"
	OutcomeFailed  = "failed"
)

// Recorder receives one observation per rendered section.
type Recorder interface {
	ObserveRender(section, outcome string)
}

// Options configures a Renderer.
type Options struct {
	DataDir     string
	OutDir      string
	Concurrency int
	Logger      *slog.Logger
	Recorder    Recorder
}

// Renderer turns scan output files into static report pages.
type Renderer struct {
	sections    []Section
	nav         []view.NavLink
	dataDir     string
	outDir      string
	concurrency int
	tpl         *template.Template
	logger      *slog.Logger
	recorder    Recorder
}

// Result describes the outcome for one section. A section whose input is
// missing still has Written set, with Err wrapping shared.ErrResourceMissing.
type Result struct {
	Section Section
	Output  string
	Written bool
	Err     error
}

// Outcome classifies the result for logs and metrics.
func (r Result) Outcome() string {
	switch {
	case r.Err == nil:
		return OutcomeOK
	case r.Written && errors.Is(r.Err, shared.ErrResourceMissing):
		return OutcomeMissing
	default:
		return OutcomeFailed
	}
}

// Summary aggregates a render run.
type Summary struct {
	Results   []Result
	Generated int
	Failed    int
}

type line struct {
	Text      string
	Highlight bool
}

type pageData struct {
	Title        string
	Nav          []view.NavLink
	BlockID      string
	PageSize     int
	Download     bool
	DownloadHref string
	Lines        []line
	Placeholder  string
}

// NewRenderer constructs a Renderer over the given sections.
func NewRenderer(sections []Section, opts Options) (*Renderer, error) {
	tpl, err := view.ParseReportTemplates()
	if err != nil {
		return nil, fmt.Errorf("report: parse templates: %w", err)
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Renderer{
		sections:    sections,
		nav:         NavLinks(sections),
		dataDir:     opts.DataDir,
		outDir:      opts.OutDir,
		concurrency: opts.Concurrency,
		tpl:         tpl,
		logger:      opts.Logger,
		recorder:    opts.Recorder,
	}, nil
}

// Run renders every section. Per-section failures are recorded in the
// summary and never abort the run; the returned error is non-nil only when
// cancellation of ctx left a section unrendered.
func (r *Renderer) Run(ctx context.Context) (Summary, error) {
	r.logger.Info("starting report generation", slog.Int("sections", len(r.sections)))
	results := make([]Result, len(r.sections))
	skipped := make([]error, len(r.sections))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, sec := range r.sections {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = Result{Section: sec, Output: r.outputPath(sec), Err: err}
				skipped[i] = err
				return nil
			}
			results[i] = r.renderSection(sec)
			return nil
		})
	}
	_ = g.Wait()

	summary := Summary{Results: results}
	for _, res := range results {
		if res.Written {
			summary.Generated++
		}
		if res.Err != nil {
			summary.Failed++
		}
		r.logResult(res)
		if r.recorder != nil {
			r.recorder.ObserveRender(res.Section.ID(), res.Outcome())
		}
	}
	r.logger.Info("report generation finished",
		slog.Int("generated", summary.Generated),
		slog.Int("failed", summary.Failed),
	)
	for _, err := range skipped {
		if err != nil {
			return summary, err
		}
	}
	return summary, nil
}

// page renders the document for one section without touching the output
// directory. contentErr reports a missing or unreadable input; the page is
// still complete in that case.
func (r *Renderer) page(sec Section) (body []byte, contentErr error, err error) {
	data := pageData{
		Title:    sec.Title,
		Nav:      r.nav,
		BlockID:  sec.BlockID(),
		PageSize: PageSize,
	}
	if sec.Mode.Listing() {
		lines, err := readLines(filepath.Join(r.dataDir, sec.File), sec.Mode == ModeHighlightedListing)
		switch {
		case err == nil:
			data.Lines = lines
		case errors.Is(err, fs.ErrNotExist):
			data.Placeholder = "Data file not found: " + sec.File
			contentErr = fmt.Errorf("report: %s: %w", sec.File, shared.ErrResourceMissing)
		default:
			data.Placeholder = "Error reading data file: " + sec.File
			contentErr = fmt.Errorf("report: read %s: %w", sec.File, err)
		}
	} else {
		data.Download = true
		data.DownloadHref = "/downloads/" + sec.File
	}

	var buf bytes.Buffer
	if err := r.tpl.ExecuteTemplate(&buf, "report/page.html", data); err != nil {
		return nil, contentErr, fmt.Errorf("report: execute template: %w", err)
	}
	return buf.Bytes(), contentErr, nil
}

func (r *Renderer) renderSection(sec Section) Result {
	res := Result{Section: sec, Output: r.outputPath(sec)}
	if err := os.MkdirAll(r.outDir, 0o755); err != nil {
		res.Err = fmt.Errorf("report: create output directory: %w", err)
		return res
	}
	page, contentErr, err := r.page(sec)
	if err != nil {
		res.Err = err
		return res
	}
	if err := writeFileAtomic(res.Output, page); err != nil {
		res.Err = fmt.Errorf("report: write %s: %w", res.Output, err)
		return res
	}
	res.Written = true
	res.Err = contentErr
	return res
}

func (r *Renderer) logResult(res Result) {
	attrs := []any{slog.String("section", res.Section.File), slog.String("output", res.Output)}
	switch res.Outcome() {
	case OutcomeOK:
		r.logger.Info("report generated", attrs...)
	case OutcomeMissing:
		r.logger.Warn("missing data file", append(attrs, slog.Any("error", res.Err))...)
	default:
		r.logger.Error("report section failed", append(attrs, slog.Any("error", res.Err))...)
	}
}

func (r *Renderer) outputPath(sec Section) string {
	return filepath.Join(r.outDir, sec.OutputName())
}

// readLines returns the file's lines without their trailing newline. Invalid
// UTF-8 sequences are dropped.
func readLines(path string, highlight bool) ([]line, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []line
	reader := bufio.NewReader(f)
	for {
		text, err := reader.ReadString('\n')
		if len(text) > 0 {
			text = strings.ToValidUTF8(strings.TrimSuffix(text, "\n"), "")
			lines = append(lines, line{
				Text:      text,
				Highlight: highlight && strings.Contains(text, Sentinel),
			})
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return lines, nil
			}
			return nil, err
		}
	}
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
