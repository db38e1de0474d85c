package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var reference = time.Date(2025, time.June, 15, 14, 30, 0, 0, time.UTC)

func TestResolver_RelativeWords(t *testing.T) {
	r := NewResolver().WithReference(reference)

	tests := []struct {
		input    string
		expected time.Time
	}{
		{"ontem", reference.AddDate(0, 0, -1)},
		{"gastei 1500 com aluguel ontem", reference.AddDate(0, 0, -1)},
		{"hoje", reference},
		{"amanhã", reference.AddDate(0, 0, 1)},
		{"anteontem", reference.AddDate(0, 0, -2)},
		{"paguei o aluguel semana passada", reference.AddDate(0, 0, -7)},
		{"mês passado", reference.AddDate(0, 0, -30)},
		{"mes passado", reference.AddDate(0, 0, -30)},
		{"ano passado", reference.AddDate(0, 0, -365)},
	}

	for _, test := range tests {
		got, ok := r.ResolveMatch(test.input)
		assert.True(t, ok, "Input: %q", test.input)
		assert.Equal(t, test.expected, got, "Input: %q", test.input)
	}
}

func TestResolver_AbsoluteDates(t *testing.T) {
	r := NewResolver().WithReference(reference)

	tests := []struct {
		input    string
		expected time.Time
	}{
		{"15/03/2024", time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)},
		{"em 15/03/24", time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)},
		{"no dia 1/2/26", time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC)},
		{"em 5/1", time.Date(2025, time.January, 5, 0, 0, 0, 0, time.UTC)},
		{"15 de março", time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)},
		{"2 de dezembro de 2023", time.Date(2023, time.December, 2, 0, 0, 0, 0, time.UTC)},
	}

	for _, test := range tests {
		got, ok := r.ResolveMatch(test.input)
		assert.True(t, ok, "Input: %q", test.input)
		assert.Equal(t, test.expected, got, "Input: %q", test.input)
	}
}

func TestResolver_DefaultsToReference(t *testing.T) {
	r := NewResolver().WithReference(reference)

	for _, input := range []string{"", "almoço", "31/02/2025", "10 de nada"} {
		got, ok := r.ResolveMatch(input)
		assert.False(t, ok, "Input: %q", input)
		assert.Equal(t, reference, got, "Input: %q", input)
		assert.Equal(t, reference, r.Resolve(input))
	}
}

func TestParseDeadline(t *testing.T) {
	got, err := ParseDeadline("31/12/2025", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC), got)

	got, err = ParseDeadline(" 1/2/2026 ", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC), got)

	_, err = ParseDeadline("31/02/2025", time.UTC)
	assert.Error(t, err)

	_, err = ParseDeadline("dezembro", time.UTC)
	assert.Error(t, err)
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "05/01/2025", FormatDate(time.Date(2025, time.January, 5, 0, 0, 0, 0, time.UTC)))
}
