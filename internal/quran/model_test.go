package quran

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestNewPage(t *testing.T) {
	validLines := []PageLayoutLine{
		{LineNumber: 2, LineType: LineTypeBasmallah, IsCentered: true},
		{LineNumber: 1, LineType: LineTypeSurahName, IsCentered: true, SurahNumber: intPtr(1)},
		{LineNumber: 3, LineType: LineTypeAyah, FirstWordID: intPtr(1), LastWordID: intPtr(4), AyahNumber: intPtr(1)},
	}

	tests := []struct {
		name    string
		lines   []PageLayoutLine
		wantErr string
	}{
		{
			name:  "valid layout sorted on construction",
			lines: validLines,
		},
		{
			name:    "empty layout",
			lines:   nil,
			wantErr: "has no layout lines",
		},
		{
			name: "zero line number",
			lines: []PageLayoutLine{
				{LineNumber: 0, LineType: LineTypeAyah, FirstWordID: intPtr(1), LastWordID: intPtr(2)},
			},
			wantErr: "not 1-based",
		},
		{
			name: "duplicate line number",
			lines: []PageLayoutLine{
				{LineNumber: 1, LineType: LineTypeBasmallah},
				{LineNumber: 1, LineType: LineTypeAyah, FirstWordID: intPtr(1), LastWordID: intPtr(2)},
			},
			wantErr: "duplicate line number",
		},
		{
			name: "unknown line type",
			lines: []PageLayoutLine{
				{LineNumber: 1, LineType: "footnote"},
			},
			wantErr: `unknown line type "footnote"`,
		},
		{
			name: "inverted word range",
			lines: []PageLayoutLine{
				{LineNumber: 1, LineType: LineTypeAyah, FirstWordID: intPtr(5), LastWordID: intPtr(2)},
			},
			wantErr: "is inverted",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := NewPage(2, tt.lines, map[int]string{1: "a"})
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Len(t, page.Lines, 3)
			assert.Equal(t, 1, page.Lines[0].LineNumber)
			assert.Equal(t, 2, page.Lines[1].LineNumber)
			assert.Equal(t, 3, page.Lines[2].LineNumber)
		})
	}
}

func TestPageContainsWord(t *testing.T) {
	page, err := NewPage(2, []PageLayoutLine{
		{LineNumber: 1, LineType: LineTypeAyah, FirstWordID: intPtr(3), LastWordID: intPtr(5)},
		{LineNumber: 2, LineType: LineTypeAyah, FirstWordID: intPtr(6), LastWordID: intPtr(9)},
	}, nil)
	require.NoError(t, err)

	assert.True(t, page.ContainsWord(3))
	assert.True(t, page.ContainsWord(9))
	assert.False(t, page.ContainsWord(2))
	assert.False(t, page.ContainsWord(10))
}

func TestPagePreviewWords(t *testing.T) {
	tests := []struct {
		name  string
		lines []PageLayoutLine
		want  map[int]bool
	}{
		{
			name: "first three words of the first ayah line",
			lines: []PageLayoutLine{
				{LineNumber: 1, LineType: LineTypeSurahName},
				{LineNumber: 2, LineType: LineTypeBasmallah},
				{LineNumber: 3, LineType: LineTypeAyah, FirstWordID: intPtr(10), LastWordID: intPtr(20)},
				{LineNumber: 4, LineType: LineTypeAyah, FirstWordID: intPtr(21), LastWordID: intPtr(30)},
			},
			want: map[int]bool{10: true, 11: true, 12: true},
		},
		{
			name: "short first line caps the preview",
			lines: []PageLayoutLine{
				{LineNumber: 1, LineType: LineTypeAyah, FirstWordID: intPtr(7), LastWordID: intPtr(8)},
				{LineNumber: 2, LineType: LineTypeAyah, FirstWordID: intPtr(9), LastWordID: intPtr(15)},
			},
			want: map[int]bool{7: true, 8: true},
		},
		{
			name: "no ayah lines means no preview",
			lines: []PageLayoutLine{
				{LineNumber: 1, LineType: LineTypeSurahName},
			},
			want: map[int]bool{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := NewPage(2, tt.lines, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, page.PreviewWords())
		})
	}
}

func TestAyahMarker(t *testing.T) {
	assert.Equal(t, string(rune(0xF501)), AyahMarker(1))
	assert.Equal(t, string(rune(0xF507)), AyahMarker(7))
}
