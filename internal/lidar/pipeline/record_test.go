package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecordPolicy(t *testing.T) {
	tests := []struct {
		name string
		prev *int
		n    int
		want bool
	}{
		{"no previous snapshot", nil, 500, true},
		{"small change", intPtr(500), 550, false},
		{"large change", intPtr(500), 650, true},
		{"large drop", intPtr(650), 500, true},
		{"exactly threshold", intPtr(500), 600, false},
		{"just over threshold", intPtr(500), 601, true},
		{"1000 to 1050", intPtr(1000), 1050, false},
		{"1000 to 1200", intPtr(1000), 1200, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewRecordPolicy(DefaultPointDiffThreshold)
			if tt.prev != nil {
				p.Commit(*tt.prev)
			}
			assert.Equal(t, tt.want, p.ShouldRecord(tt.n))
		})
	}
}

func TestRecordPolicy_Previous(t *testing.T) {
	p := NewRecordPolicy(100)
	_, ok := p.Previous()
	assert.False(t, ok)

	p.Commit(42)
	n, ok := p.Previous()
	assert.True(t, ok)
	assert.Equal(t, 42, n)
}

func intPtr(v int) *int { return &v }
