package entity

import (
	"strconv"
	"strings"
	"time"
)

// ActionKind is one of the four claims a buyer can place against a listing.
type ActionKind string

const (
	ActionLock  ActionKind = "Lock"
	ActionSteal ActionKind = "Steal"
	ActionMine  ActionKind = "Mine"
	ActionBid   ActionKind = "Bid"
)

// Priority orders action kinds for winner determination; lower wins.
// Unknown kinds sort last.
func (k ActionKind) Priority() int {
	switch k {
	case ActionLock:
		return 1
	case ActionSteal:
		return 2
	case ActionMine:
		return 3
	case ActionBid:
		return 4
	default:
		return 5
	}
}

// ActionKindFromString normalizes the labels the mobile clients historically
// wrote into the action log ("Mined", "Locked", ...) onto the canonical kinds.
func ActionKindFromString(s string) ActionKind {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "lock", "locked":
		return ActionLock
	case "steal", "stole":
		return ActionSteal
	case "mine", "mined":
		return ActionMine
	case "bid":
		return ActionBid
	default:
		return ActionKind(s)
	}
}

// Action is one append-only entry in a listing's action log. Actions are
// never mutated or deleted once written.
type Action struct {
	ID        string     `bson:"_id,omitempty"`
	ListingID string     `bson:"listing_id"`
	ActorID   string     `bson:"actor_id"`
	ActorName string     `bson:"actor_name"`
	Kind      ActionKind `bson:"kind"`
	Details   string     `bson:"details"`
	CreatedAt time.Time  `bson:"created_at"`
}

// Amount extracts the monetary amount from the details string. The clients
// write free text like "Mined for ₱1,500.00", so everything except digits and
// the decimal point is stripped before parsing. Unparseable details count as 0.
func (a *Action) Amount() float64 {
	var b strings.Builder
	for _, r := range a.Details {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	v, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0
	}
	return v
}
