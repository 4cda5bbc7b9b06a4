package service

import (
	"sort"

	"github.com/Abdurahmanit/GroupProject/expiration-service/internal/domain/entity"
)

// ResolveWinner reduces a listing's action log to a single winner, or nil
// when no action qualifies. Stateless and deterministic: the same input
// always yields the same winner.
//
// Ordering: action kind priority first (Lock beats Steal beats Mine beats
// Bid), then amount descending within the same kind. The sort is stable, so
// equal-priority equal-amount ties keep log order and the earlier action wins.
func ResolveWinner(actions []*entity.Action) *entity.Winner {
	qualifying := make([]*entity.Action, 0, len(actions))
	for _, a := range actions {
		switch a.Kind {
		case entity.ActionLock, entity.ActionSteal, entity.ActionMine, entity.ActionBid:
			qualifying = append(qualifying, a)
		}
	}
	if len(qualifying) == 0 {
		return nil
	}

	sort.SliceStable(qualifying, func(i, j int) bool {
		pi, pj := qualifying[i].Kind.Priority(), qualifying[j].Kind.Priority()
		if pi != pj {
			return pi < pj
		}
		return qualifying[i].Amount() > qualifying[j].Amount()
	})

	top := qualifying[0]
	// Missing actor fields indicate corrupt data upstream; settle without a
	// winner rather than notify nobody-knows-who.
	if top.ActorID == "" || top.ActorName == "" {
		return nil
	}

	return &entity.Winner{
		UserID: top.ActorID,
		Name:   top.ActorName,
		Action: top.Kind,
		Amount: top.Amount(),
	}
}
