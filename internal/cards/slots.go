package cards

import (
	"fmt"

	"github.com/qingque-bot/qingque/internal/assets"
	"github.com/qingque-bot/qingque/internal/records"
)

// ///////////////////////////////////////////////
// Relic Slots
// ///////////////////////////////////////////////

// Slot is one relic position on the character card: either [Equipped] or
// [Empty].
type Slot interface {
	// SlotType returns the position the slot occupies.
	SlotType() records.RelicType
	isSlot()
}

// Equipped is a slot holding a relic.
type Equipped struct {
	Relic records.Relic
}

// SlotType implements [Slot].
func (e Equipped) SlotType() records.RelicType { return e.Relic.Type }
func (Equipped) isSlot() {}

// Empty is a slot with nothing equipped; it renders as a placeholder.
type Empty struct {
	Type records.RelicType
}

// SlotType implements [Slot].
func (e Empty) SlotType() records.RelicType { return e.Type }
func (Empty) isSlot() {}

// LayoutRelics places relics into their display slots. It always returns
// four cavern slots (head, hand, body, feet) and two planar slots (sphere,
// rope). A position without a relic is [Empty]; when two relics claim one
// position the first wins. Relics without a known slot type are ignored.
func LayoutRelics(relics []records.Relic) (cavern, planar []Slot) {
	byType := make(map[records.RelicType]records.Relic, len(relics))
	for _, r := range relics {
		if r.Type.Order() == 0 {
			continue
		}
		if _, taken := byType[r.Type]; !taken {
			byType[r.Type] = r
		}
	}
	place := func(types []records.RelicType) []Slot {
		out := make([]Slot, len(types))
		for i, t := range types {
			if r, ok := byType[t]; ok {
				out[i] = Equipped{Relic: r}
			} else {
				out[i] = Empty{Type: t}
			}
		}
		return out
	}
	return place(records.Cavern), place(records.Planar)
}

// ResolveRelicTypes returns a copy of relics with every missing slot type
// filled in from the relic table.
func ResolveRelicTypes(idx *assets.Index, relics []records.Relic) ([]records.Relic, error) {
	out := make([]records.Relic, len(relics))
	for i, r := range relics {
		if r.Type == "" {
			meta, err := idx.Relic(r.ID)
			if err != nil {
				return nil, fmt.Errorf("resolve relic slot: %w", err)
			}
			r.Type = meta.Type
		}
		out[i] = r
	}
	return out, nil
}
