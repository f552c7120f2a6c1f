package chunk

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit_Windows(t *testing.T) {
	s := NewSplitter(Config{Size: 10, Overlap: 3})
	text := "abcdefghijklmnopqrstuvwxyz" // 26 runes

	chunks := s.Split(text)
	require.Len(t, chunks, 4)

	assert.Equal(t, "abcdefghij", chunks[0].Text)
	assert.Equal(t, "hijklmnopq", chunks[1].Text)
	assert.Equal(t, "opqrstuvwx", chunks[2].Text)
	assert.Equal(t, "vwxyz", chunks[3].Text)
	for i, c := range chunks {
		assert.Equal(t, i, c.Index)
	}
	assert.Equal(t, 26, chunks[3].End)
}

func TestSplit_OverlapKeepsBoundaryRows(t *testing.T) {
	row := "Ana;123"
	text := strings.Repeat("x", 8) + row + strings.Repeat("y", 20)
	chunks := NewSplitter(Config{Size: 12, Overlap: len(row)}).Split(text)

	found := false
	for _, c := range chunks {
		if strings.Contains(c.Text, row) {
			found = true
		}
	}
	assert.True(t, found, "a row no longer than the overlap must appear whole in some chunk")
}

func TestSplit_RuneSafe(t *testing.T) {
	chunks := NewSplitter(Config{Size: 3, Overlap: 1}).Split("ãéíõú")
	require.Len(t, chunks, 2)
	assert.Equal(t, "ãéí", chunks[0].Text)
	assert.Equal(t, "íõú", chunks[1].Text)
}

func TestSplit_Empty(t *testing.T) {
	assert.Empty(t, NewSplitter(Config{}).Split("  \n "))
}

func TestHeaderGate(t *testing.T) {
	s := NewSplitter(Config{Size: 20, Overlap: 0})
	chunks := s.Split("NOME  CPF  VALOR    linha sem cabecalho ")
	require.Len(t, chunks, 2)
	assert.True(t, chunks[0].Eligible)
	assert.False(t, chunks[1].Eligible)
	assert.Len(t, Eligible(chunks), 1)

	custom := NewSplitter(Config{HeaderTokens: []string{"Devedor"}})
	assert.True(t, custom.HasHeader("DEVEDOR | VALOR"))
	assert.False(t, custom.HasHeader("Nome | Valor"))
}

func TestNewSplitter_Defaults(t *testing.T) {
	s := NewSplitter(Config{Overlap: 99999})
	assert.Equal(t, DefaultSize, s.size)
	assert.Zero(t, s.overlap)
	assert.True(t, s.HasHeader("Cliente"))
}
