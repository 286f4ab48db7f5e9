package picklist

import (
	"fmt"
	"maps"
	"slices"
)

// ChampionsAward is the award name champion places are recorded under.
const ChampionsAward = "champions"

// ValidateExclusiveWinners fails with ErrConflictingAwards when a team
// wins more than one award, counting every champion place as the
// champions award. Exempt awards never conflict.
func ValidateExclusiveWinners(awards map[string][]string, champions map[int]string, exempt ...string) error {
	held := make(map[string][]string)
	add := func(team, award string) {
		if team == "" || slices.Contains(exempt, award) || slices.Contains(held[team], award) {
			return
		}
		held[team] = append(held[team], award)
	}

	for _, place := range slices.Sorted(maps.Keys(champions)) {
		add(champions[place], ChampionsAward)
	}
	for _, name := range slices.Sorted(maps.Keys(awards)) {
		for _, team := range awards[name] {
			add(team, name)
		}
	}

	for _, team := range slices.Sorted(maps.Keys(held)) {
		if len(held[team]) > 1 {
			return fmt.Errorf("%w: %s holds %v", ErrConflictingAwards, team, held[team])
		}
	}
	return nil
}
