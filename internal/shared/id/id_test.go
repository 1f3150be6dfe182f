package id

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateWithPrefix(t *testing.T) {
	g := NewGenerator()

	id := g.GenerateWithPrefix("task")
	assert.True(t, strings.HasPrefix(id, "task_"))
	assert.True(t, IsValid(id, "task"))
}

func TestTypedConstructors(t *testing.T) {
	assert.True(t, IsValid(NewTaskID().String(), TaskPrefix))
	assert.True(t, IsValid(NewSessionID().String(), SessionPrefix))
	assert.True(t, IsValid(NewAuditID().String(), AuditPrefix))
}

func TestIDsAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := NewTaskID().String()
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestIDsSortByCreationTime(t *testing.T) {
	// ULIDs encode their timestamp in the leading bits; later IDs sort
	// after earlier ones lexicographically within the same prefix.
	g := NewGenerator()
	first := g.Generate()
	second := g.Generate()

	assert.LessOrEqual(t, first.String(), second.String())
}

func TestIsValid(t *testing.T) {
	tests := []struct {
		name   string
		id     string
		prefix string
		want   bool
	}{
		{"valid", NewTaskID().String(), "task", true},
		{"wrong prefix", NewTaskID().String(), "sess", false},
		{"no prefix", "01HX3Q0000000000000000000", "task", false},
		{"garbage suffix", "task_not-a-ulid", "task", false},
		{"empty", "", "task", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValid(tt.id, tt.prefix))
		})
	}
}
