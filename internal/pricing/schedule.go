package pricing

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Schedule maps tier identifiers to their pricing table. A product's "base" entry is
// the reference price for savings.
type Schedule map[string]Table

// Base returns the base tier table.
func (s Schedule) Base() (Table, bool) {
	return s.Table(BaseTier)
}

// Table returns the table for tier when one is present and non-empty.
func (s Schedule) Table(tier string) (Table, bool) {
	if s == nil {
		return Table{}, false
	}
	t, ok := s[tier]
	if !ok || t.IsZero() {
		return Table{}, false
	}
	return t, true
}

// Tiers lists the tiers present in the schedule, base first.
func (s Schedule) Tiers() []string {
	tiers := make([]string, 0, len(s))
	for tier := range s {
		if tier == BaseTier {
			continue
		}
		tiers = append(tiers, tier)
	}
	sort.Strings(tiers)
	if _, ok := s[BaseTier]; ok {
		tiers = append([]string{BaseTier}, tiers...)
	}
	return tiers
}

// UnmarshalJSON decodes each tier value through Table.UnmarshalJSON.
func (s *Schedule) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*s = nil
		return nil
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode pricing: %w", err)
	}
	out := make(Schedule, len(raw))
	for tier, payload := range raw {
		var table Table
		if err := table.UnmarshalJSON(payload); err != nil {
			return fmt.Errorf("decode pricing tier %q: %w", tier, err)
		}
		out[strings.TrimSpace(tier)] = table
	}
	*s = out
	return nil
}
