// Package matching turns raw catalogs and swipe decisions into candidate sets,
// live match detection, and end-of-round summaries.
package matching

import (
	"math/rand/v2"
	"sort"
)

// FilterOptions are the admin-chosen thresholds for the start-of-round filter.
type FilterOptions struct {
	IncludeWishlist bool
	MinOwners       int
	MinWishlisted   int
}

// FilterCandidates computes the candidate game set for a round.
//
// With both thresholds active a game survives if either signal is strong
// enough (logical OR); with a single active threshold only that one applies;
// with none active the pool degenerates to the strict intersection of every
// member's owned games. The surviving set is returned in uniform random order
// so swipe order carries no information about how the filter selected games.
func FilterCandidates(members []string, catalogs, wishlists map[string]map[string]struct{}, opts FilterOptions) []string {
	ownerCounts := make(map[string]int)
	wishCounts := make(map[string]int)
	for _, connID := range members {
		for game := range catalogs[connID] {
			ownerCounts[game]++
		}
		if opts.IncludeWishlist {
			for game := range wishlists[connID] {
				wishCounts[game]++
			}
		}
	}

	pool := make(map[string]struct{}, len(ownerCounts))
	for game := range ownerCounts {
		pool[game] = struct{}{}
	}
	if opts.IncludeWishlist {
		for game := range wishCounts {
			pool[game] = struct{}{}
		}
	}

	ownersActive := opts.MinOwners > 0
	wishlistActive := opts.IncludeWishlist && opts.MinWishlisted > 0

	kept := make([]string, 0, len(pool))
	for game := range pool {
		ownersOK := ownerCounts[game] >= opts.MinOwners
		wishlistOK := wishCounts[game] >= opts.MinWishlisted

		switch {
		case ownersActive && wishlistActive:
			if ownersOK || wishlistOK {
				kept = append(kept, game)
			}
		case ownersActive:
			if ownersOK {
				kept = append(kept, game)
			}
		case wishlistActive:
			if wishlistOK {
				kept = append(kept, game)
			}
		default:
			if ownedByAll(game, members, catalogs) {
				kept = append(kept, game)
			}
		}
	}

	rand.Shuffle(len(kept), func(i, j int) {
		kept[i], kept[j] = kept[j], kept[i]
	})
	return kept
}

// Intersection returns the games owned by every member that has a catalog.
// Members without a catalog entry are skipped rather than emptying the result.
func Intersection(members []string, catalogs map[string]map[string]struct{}) []string {
	var sets []map[string]struct{}
	for _, connID := range members {
		if set, ok := catalogs[connID]; ok {
			sets = append(sets, set)
		}
	}
	if len(sets) == 0 {
		return nil
	}

	var common []string
	for game := range sets[0] {
		inAll := true
		for _, set := range sets[1:] {
			if _, ok := set[game]; !ok {
				inAll = false
				break
			}
		}
		if inAll {
			common = append(common, game)
		}
	}
	return common
}

// AllSwipedRight reports whether every member has a recorded "yes" for the
// game. Evaluation is O(member count); an empty membership never matches.
func AllSwipedRight(decisions map[string]bool, members []string) bool {
	if len(members) == 0 {
		return false
	}
	for _, connID := range members {
		if right, ok := decisions[connID]; !ok || !right {
			return false
		}
	}
	return true
}

// Recompute rebuilds the matched set from the full swipe matrix against the
// given membership. Used after membership shrinks, when matches that depended
// on a departed member's swipes must be revoked.
func Recompute(swipes map[string]map[string]bool, members []string) map[string]struct{} {
	matched := make(map[string]struct{})
	for game, decisions := range swipes {
		if AllSwipedRight(decisions, members) {
			matched[game] = struct{}{}
		}
	}
	return matched
}

// Summary is one end-of-round result entry.
type Summary struct {
	ID                string
	Likes             int
	TotalParticipants int
}

// Summarize emits a summary for every game with at least one "yes" vote,
// ordered by descending like count with ties broken by ascending game id.
// TotalParticipants covers likers who have already left: it is the larger of
// the current member count and the distinct count of everyone who ever swiped.
func Summarize(swipes map[string]map[string]bool, memberCount int) []Summary {
	swipers := make(map[string]struct{})
	for _, decisions := range swipes {
		for connID := range decisions {
			swipers[connID] = struct{}{}
		}
	}
	total := memberCount
	if len(swipers) > total {
		total = len(swipers)
	}

	out := make([]Summary, 0, len(swipes))
	for game, decisions := range swipes {
		likes := 0
		for _, right := range decisions {
			if right {
				likes++
			}
		}
		if likes > 0 {
			out = append(out, Summary{ID: game, Likes: likes, TotalParticipants: total})
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Likes != out[j].Likes {
			return out[i].Likes > out[j].Likes
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func ownedByAll(game string, members []string, catalogs map[string]map[string]struct{}) bool {
	for _, connID := range members {
		set, ok := catalogs[connID]
		if !ok {
			return false
		}
		if _, owned := set[game]; !owned {
			return false
		}
	}
	return len(members) > 0
}
