package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasLimitClause(t *testing.T) {
	tests := []struct {
		query string
		want  bool
	}{
		{"SELECT * FROM message", false},
		{"SELECT * FROM message LIMIT 5", true},
		{"select * from message limit 1", true},
		{"SELECT * FROM limits", false},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, hasLimitClause(tt.query))
		})
	}
}
