package sync

import (
	"strings"

	"applysync/internal/domain"
)

// NormalizeKey trims s, collapses whitespace runs into single dashes and
// lowercases the result: "  Backend   Engineer " -> "backend-engineer".
func NormalizeKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), "-"))
}

// EligibleTargets maps destination slot ids to normalized title keys. It is
// rebuilt every run and only read afterwards.
type EligibleTargets struct {
	bySlot map[string]string
	byKey  map[string]string
}

// BuildEligibleTargets indexes slots by id and by normalized title. When two
// slots share a key the later one in the listing wins the key lookup.
func BuildEligibleTargets(slots []domain.Slot) EligibleTargets {
	t := EligibleTargets{
		bySlot: make(map[string]string, len(slots)),
		byKey:  make(map[string]string, len(slots)),
	}
	for _, s := range slots {
		key := NormalizeKey(s.Title)
		t.bySlot[s.ID] = key
		t.byKey[key] = s.ID
	}
	return t
}

// Key returns the normalized title key of slotID.
func (t EligibleTargets) Key(slotID string) (string, bool) {
	k, ok := t.bySlot[slotID]
	return k, ok
}

// SlotFor returns the slot id receiving applications for key.
func (t EligibleTargets) SlotFor(key string) (string, bool) {
	id, ok := t.byKey[key]
	return id, ok
}

func (t EligibleTargets) Contains(key string) bool {
	_, ok := t.byKey[key]
	return ok
}

func (t EligibleTargets) Len() int { return len(t.bySlot) }
