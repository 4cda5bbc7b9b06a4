package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestActionAmount(t *testing.T) {
	tests := []struct {
		name    string
		details string
		want    float64
	}{
		{"currency prefix", "₱120", 120},
		{"with label", "Mined for ₱1,500.00", 1500},
		{"plain number", "250", 250},
		{"decimal", "₱99.50", 99.5},
		{"no digits", "steal attempt", 0},
		{"empty", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &Action{Details: tt.details}
			assert.Equal(t, tt.want, a.Amount())
		})
	}
}

func TestActionKindPriority(t *testing.T) {
	assert.Equal(t, 1, ActionLock.Priority())
	assert.Equal(t, 2, ActionSteal.Priority())
	assert.Equal(t, 3, ActionMine.Priority())
	assert.Equal(t, 4, ActionBid.Priority())
	assert.Equal(t, 5, ActionKind("Comment").Priority())
}

func TestActionKindFromString(t *testing.T) {
	assert.Equal(t, ActionMine, ActionKindFromString("Mined"))
	assert.Equal(t, ActionMine, ActionKindFromString("mine"))
	assert.Equal(t, ActionLock, ActionKindFromString("Locked"))
	assert.Equal(t, ActionSteal, ActionKindFromString("Stole"))
	assert.Equal(t, ActionBid, ActionKindFromString(" Bid "))
	assert.Equal(t, ActionKind("Comment"), ActionKindFromString("Comment"))
}
