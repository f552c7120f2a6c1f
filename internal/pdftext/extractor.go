package pdftext

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"

	"github.com/joseph-ayodele/debt-tracker/internal/common"
)

const (
	MethodNative    = "pdf-text"
	MethodPdftotext = "pdftotext"
)

type Config struct {
	// Pdftotext is the fallback binary; empty disables the fallback.
	Pdftotext string
	MaxPages  int // 0 = no limit
}

type Result struct {
	Text     string
	Pages    int
	Method   string
	Duration time.Duration
	Warnings []string
}

type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{cfg: cfg, runner: execRunner{}, logger: logger}
}

// WithRunner swaps the command runner used by the pdftotext fallback.
func (e *Extractor) WithRunner(r Runner) *Extractor {
	e.runner = r
	return e
}

// Extract returns the document text, pages joined with "\n" in order.
// Failures are *common.PipelineError of kind EmptyDocument.
func (e *Extractor) Extract(ctx context.Context, path string) (Result, error) {
	start := time.Now()

	res, err := e.extractNative(path)
	if err == nil && strings.TrimSpace(res.Text) == "" {
		err = common.NewPipelineError(common.KindEmptyDocument, common.ReasonNoText,
			"document has pages but no extractable text", nil)
	}

	if err != nil && e.cfg.Pdftotext != "" && common.ReasonOf(err) != common.ReasonNoPages {
		e.logger.Info("pdftext.fallback", "reason", common.ReasonOf(err), "bin", e.cfg.Pdftotext)
		fb, fbErr := e.pdfToText(ctx, path)
		if fbErr == nil && strings.TrimSpace(fb.Text) != "" {
			fb.Warnings = append(fb.Warnings, err.Error())
			fb.Duration = time.Since(start)
			return fb, nil
		}
		if fbErr != nil {
			res.Warnings = append(res.Warnings, "pdftotext: "+fbErr.Error())
		}
	}

	res.Duration = time.Since(start)
	if err != nil {
		e.logger.Warn("pdftext.extract.failed",
			"reason", common.ReasonOf(err),
			"pages", res.Pages,
			"elapsed_ms", res.Duration.Milliseconds())
		return res, err
	}

	e.logger.Debug("pdftext.extract.ok",
		"method", res.Method,
		"pages", res.Pages,
		"text_len", len(res.Text),
		"elapsed_ms", res.Duration.Milliseconds())
	return res, nil
}

// extractNative uses the pure-Go engine. The engine panics on some malformed inputs.
func (e *Extractor) extractNative(path string) (res Result, err error) {
	res.Method = MethodNative
	defer func() {
		if r := recover(); r != nil {
			res = Result{Method: MethodNative}
			err = common.NewPipelineError(common.KindEmptyDocument, common.ReasonMalformed,
				"could not read PDF structure", fmt.Errorf("pdf engine panic: %v", r))
		}
	}()

	f, r, openErr := pdf.Open(path)
	if openErr != nil {
		return res, common.NewPipelineError(common.KindEmptyDocument, common.ReasonMalformed,
			"could not read PDF structure", openErr)
	}
	defer f.Close()

	n := r.NumPage()
	if n == 0 {
		return res, common.NewPipelineError(common.KindEmptyDocument, common.ReasonNoPages,
			"document has no pages", nil)
	}
	if e.cfg.MaxPages > 0 && n > e.cfg.MaxPages {
		res.Warnings = append(res.Warnings, fmt.Sprintf("truncated to %d of %d pages", e.cfg.MaxPages, n))
		n = e.cfg.MaxPages
	}

	texts := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		texts = append(texts, pageText(r, i, &res.Warnings))
	}
	res.Pages = n
	res.Text = Normalize(strings.Join(texts, "\n"))
	return res, nil
}

// pageText coerces any unreadable page to "".
func pageText(r *pdf.Reader, i int, warnings *[]string) (text string) {
	defer func() {
		if rec := recover(); rec != nil {
			*warnings = append(*warnings, fmt.Sprintf("page %d: %v", i, rec))
			text = ""
		}
	}()
	page := r.Page(i)
	if page.V.IsNull() {
		return ""
	}
	t, err := page.GetPlainText(nil)
	if err != nil {
		*warnings = append(*warnings, fmt.Sprintf("page %d: %v", i, err))
		return ""
	}
	return t
}

func (e *Extractor) pdfToText(ctx context.Context, path string) (Result, error) {
	// pdftotext -layout -enc UTF-8 -eol unix [-l N] <path> -
	args := []string{"-layout", "-enc", "UTF-8", "-eol", "unix"}
	if e.cfg.MaxPages > 0 {
		args = append(args, "-l", strconv.Itoa(e.cfg.MaxPages))
	}
	out, errb, err := e.runner.Run(ctx, e.cfg.Pdftotext, append(args, path, "-")...)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %s", err, truncate(strings.TrimSpace(string(errb)), 512))
	}
	raw := strings.TrimRight(string(out), "\f")
	return Result{
		Text:   Normalize(strings.ReplaceAll(raw, "\f", "\n")),
		Pages:  1 + strings.Count(raw, "\f"),
		Method: MethodPdftotext,
	}, nil
}

// Normalize repairs encoding and line endings without touching content.
func Normalize(s string) string {
	s = strings.ToValidUTF8(s, "")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.ReplaceAll(s, "\x00", "")
}
