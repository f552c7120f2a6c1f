// Package chunk splits document text into overlapping windows.
package chunk

import (
	"strings"

	"github.com/joseph-ayodele/debt-tracker/constants"
	"github.com/joseph-ayodele/debt-tracker/internal/relevance"
)

const (
	DefaultSize    = 4000
	DefaultOverlap = 400
)

type Config struct {
	Size         int // runes per window
	Overlap      int // runes shared by consecutive windows
	HeaderTokens []string
}

// Chunk is one window. Start and End are rune offsets into the source text.
type Chunk struct {
	Index    int
	Text     string
	Start    int
	End      int
	Eligible bool
}

type Splitter struct {
	size    int
	overlap int
	tokens  []string
}

func NewSplitter(cfg Config) *Splitter {
	if cfg.Size <= 0 {
		cfg.Size = DefaultSize
	}
	if cfg.Overlap < 0 || cfg.Overlap >= cfg.Size {
		cfg.Overlap = 0
	}
	if len(cfg.HeaderTokens) == 0 {
		cfg.HeaderTokens = constants.DefaultHeaderTokens
	}
	tokens := make([]string, 0, len(cfg.HeaderTokens))
	for _, t := range cfg.HeaderTokens {
		if f := relevance.Fold(strings.TrimSpace(t)); f != "" {
			tokens = append(tokens, f)
		}
	}
	return &Splitter{size: cfg.Size, overlap: cfg.Overlap, tokens: tokens}
}

// Split windows text so that any span of at most Overlap runes lies wholly in some chunk.
func (s *Splitter) Split(text string) []Chunk {
	r := []rune(text)
	if len(strings.TrimSpace(text)) == 0 {
		return nil
	}
	step := s.size - s.overlap
	var out []Chunk
	for start := 0; ; start += step {
		end := min(start+s.size, len(r))
		piece := string(r[start:end])
		out = append(out, Chunk{
			Index:    len(out),
			Text:     piece,
			Start:    start,
			End:      end,
			Eligible: s.HasHeader(piece),
		})
		if end == len(r) {
			break
		}
	}
	return out
}

// HasHeader reports whether text contains a header-like token.
func (s *Splitter) HasHeader(text string) bool {
	folded := relevance.Fold(text)
	for _, t := range s.tokens {
		if strings.Contains(folded, t) {
			return true
		}
	}
	return false
}

// Eligible filters chunks that passed the header gate, preserving order.
func Eligible(chunks []Chunk) []Chunk {
	out := make([]Chunk, 0, len(chunks))
	for _, c := range chunks {
		if c.Eligible {
			out = append(out, c)
		}
	}
	return out
}
