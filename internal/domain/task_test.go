package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	for _, s := range Statuses {
		got, ok := ParseStatus(string(s))
		assert.True(t, ok)
		assert.Equal(t, s, got)
	}
	for _, bad := range []string{"", "Done", " todo", "finished"} {
		_, ok := ParseStatus(bad)
		assert.False(t, ok, bad)
	}
	assert.Equal(t, "todo, in_progress, done", StatusChoices())
}

func TestParsePriority(t *testing.T) {
	p, ok := ParsePriority("high")
	assert.True(t, ok)
	assert.Equal(t, PriorityHigh, p)
	_, ok = ParsePriority("urgent")
	assert.False(t, ok)
	assert.Equal(t, "low, normal, high", PriorityChoices())
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), d)

	for _, bad := range []string{"2023-02-29", "2024-2-1", "01/02/2024", ""} {
		_, err := ParseDate(bad)
		assert.Error(t, err, bad)
	}
}

func TestStorableText(t *testing.T) {
	assert.True(t, StorableText(""))
	assert.True(t, StorableText("Überprüfen ✓"))
	assert.False(t, StorableText("a\x00b"))
	assert.False(t, StorableText("\xff"))
}
