package optimizer

import (
	"fmt"
	"strings"
)

// SlotType identifies a lineup slot from the fixed slot catalog
type SlotType int

const (
	SlotQB SlotType = iota
	SlotRB
	SlotWR
	SlotTE
	SlotFlex
	SlotSuperFlex
	SlotRecFlex
	SlotK
	SlotDEF
	SlotDL
	SlotLB
	SlotDB
	SlotIDPFlex
	SlotBench
	SlotIR
	SlotTaxi

	numSlotTypes
)

// slotSpec describes one entry of the slot catalog
type slotSpec struct {
	Name             string
	AllowedPositions []string
	Starter          bool
}

// slotCatalog is indexed by SlotType. Reserve slots carry no eligible positions because
// the optimizer never assigns to them.
var slotCatalog = [numSlotTypes]slotSpec{
	SlotQB:        {Name: "QB", AllowedPositions: []string{"QB"}, Starter: true},
	SlotRB:        {Name: "RB", AllowedPositions: []string{"RB"}, Starter: true},
	SlotWR:        {Name: "WR", AllowedPositions: []string{"WR"}, Starter: true},
	SlotTE:        {Name: "TE", AllowedPositions: []string{"TE"}, Starter: true},
	SlotFlex:      {Name: "FLEX", AllowedPositions: []string{"RB", "WR", "TE"}, Starter: true},
	SlotSuperFlex: {Name: "SUPER_FLEX", AllowedPositions: []string{"QB", "RB", "WR", "TE"}, Starter: true},
	SlotRecFlex:   {Name: "REC_FLEX", AllowedPositions: []string{"WR", "TE"}, Starter: true},
	SlotK:         {Name: "K", AllowedPositions: []string{"K"}, Starter: true},
	SlotDEF:       {Name: "DEF", AllowedPositions: []string{"DEF"}, Starter: true},
	SlotDL:        {Name: "DL", AllowedPositions: []string{"DL"}, Starter: true},
	SlotLB:        {Name: "LB", AllowedPositions: []string{"LB"}, Starter: true},
	SlotDB:        {Name: "DB", AllowedPositions: []string{"DB"}, Starter: true},
	SlotIDPFlex:   {Name: "IDP_FLEX", AllowedPositions: []string{"DL", "LB", "DB"}, Starter: true},
	SlotBench:     {Name: "BN"},
	SlotIR:        {Name: "IR"},
	SlotTaxi:      {Name: "TAXI"},
}

// starterOrder is the order slot instances are generated in. Changing it changes which of
// two equally scored players wins a contested slot.
var starterOrder = []SlotType{
	SlotQB,
	SlotRB,
	SlotWR,
	SlotTE,
	SlotFlex,
	SlotSuperFlex,
	SlotRecFlex,
	SlotK,
	SlotDEF,
	SlotDL,
	SlotLB,
	SlotDB,
	SlotIDPFlex,
}

var reserveOrder = []SlotType{SlotBench, SlotIR, SlotTaxi}

// Valid reports whether s is a member of the slot catalog
func (s SlotType) Valid() bool {
	return s >= 0 && s < numSlotTypes
}

func (s SlotType) String() string {
	if !s.Valid() {
		return fmt.Sprintf("SlotType(%d)", int(s))
	}
	return slotCatalog[s].Name
}

// MarshalText encodes the slot by catalog name so slot-keyed maps serialize as {"QB": [...]}
func (s SlotType) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownSlotType, int(s))
	}
	return []byte(slotCatalog[s].Name), nil
}

// UnmarshalText decodes a catalog name
func (s *SlotType) UnmarshalText(text []byte) error {
	parsed, err := ParseSlotType(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseSlotType resolves a slot name (case-insensitive). "BENCH" and "SUPERFLEX" are
// accepted as aliases.
func ParseSlotType(name string) (SlotType, error) {
	normalized := strings.ToUpper(strings.TrimSpace(name))
	switch normalized {
	case "BENCH":
		return SlotBench, nil
	case "SUPERFLEX":
		return SlotSuperFlex, nil
	}
	for i := range slotCatalog {
		if slotCatalog[i].Name == normalized {
			return SlotType(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownSlotType, name)
}

// ParseSlotCounts converts a name-keyed slot configuration into catalog slot types.
// Aliases that resolve to the same slot are summed.
func ParseSlotCounts(named map[string]int) (map[SlotType]int, error) {
	counts := make(map[SlotType]int, len(named))
	for name, count := range named {
		slot, err := ParseSlotType(name)
		if err != nil {
			return nil, err
		}
		if count < 0 {
			return nil, fmt.Errorf("%w: %s=%d", ErrNegativeSlotCount, name, count)
		}
		if count > MaxSlotInstances || counts[slot]+count > MaxSlotInstances {
			return nil, fmt.Errorf("%w: %s=%d, limit %d", ErrLineupTooLarge, slot, counts[slot]+count, MaxSlotInstances)
		}
		counts[slot] += count
	}
	return counts, nil
}

// IsStarterSlot reports whether the slot counts toward scoring
func IsStarterSlot(slot SlotType) bool {
	return slot.Valid() && slotCatalog[slot].Starter
}

// IsReserveSlot reports whether the slot is a bench/IR/taxi holding slot
func IsReserveSlot(slot SlotType) bool {
	return slot.Valid() && !slotCatalog[slot].Starter
}

// EligiblePositions returns a copy of the positions allowed to fill the slot
func EligiblePositions(slot SlotType) []string {
	if !slot.Valid() {
		return nil
	}
	allowed := slotCatalog[slot].AllowedPositions
	out := make([]string, len(allowed))
	copy(out, allowed)
	return out
}

// CanFill checks if a player at position can fill slot
func CanFill(position string, slot SlotType) bool {
	if !slot.Valid() {
		return false
	}
	for _, allowed := range slotCatalog[slot].AllowedPositions {
		if position == allowed {
			return true
		}
	}
	return false
}

// StarterSlotsInCanonicalOrder returns the starter slot types in instance-generation order
func StarterSlotsInCanonicalOrder() []SlotType {
	out := make([]SlotType, len(starterOrder))
	copy(out, starterOrder)
	return out
}

// ReserveSlots returns the reserve slot types
func ReserveSlots() []SlotType {
	out := make([]SlotType, len(reserveOrder))
	copy(out, reserveOrder)
	return out
}

// AllSlotTypes returns the full catalog, starters first
func AllSlotTypes() []SlotType {
	return append(StarterSlotsInCanonicalOrder(), reserveOrder...)
}
