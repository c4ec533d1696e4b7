package service

import (
	"date-booker/modules/availability/entity"
	"sort"
	"time"

	"github.com/google/uuid"
)

// MaxRankedGroups is the number of distinct scores kept in a ranking.
const MaxRankedGroups = 3

// DateRange returns the inclusive sequence of calendar days from start to end.
// It is empty when start is after end.
func DateRange(start, end time.Time) []entity.DateKey {
	from := truncateToDate(start)
	to := truncateToDate(end)
	if from.After(to) {
		return []entity.DateKey{}
	}

	days := make([]entity.DateKey, 0, int(to.Sub(from).Hours()/24)+1)
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		days = append(days, entity.NewDateKey(d))
	}
	return days
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ContainsDate reports whether date is one of the slots.
func ContainsDate(slots []entity.DateKey, date entity.DateKey) bool {
	for _, d := range slots {
		if d == date {
			return true
		}
	}
	return false
}

// RespondedCount counts participants whose response has HasResponded set.
func RespondedCount(participants []uuid.UUID, responses map[uuid.UUID]entity.ResponseStatus) int {
	n := 0
	for _, p := range participants {
		if responses[p].HasResponded {
			n++
		}
	}
	return n
}

// ComputeBestDays ranks date slots by how many participants can make them.
//
// A participant counts toward a day when they marked it available and are not
// flagged cant-attend; they also count as favoring it when the day is a
// favorite. Days nobody can attend are dropped. The remaining days are grouped
// by score (available + 0.5*favored), highest first, and only the top
// MaxRankedGroups scores are returned. Days inside a group keep slot order.
//
// Missing participants or dates in any map are read as false.
func ComputeBestDays(
	dateSlots []entity.DateKey,
	participants []uuid.UUID,
	availability entity.Marks,
	favorites entity.Marks,
	responses map[uuid.UUID]entity.ResponseStatus,
) []entity.RankedGroup {
	if len(dateSlots) == 0 || len(participants) == 0 {
		return []entity.RankedGroup{}
	}

	responded := RespondedCount(participants, responses)

	// 1. Tally every slot
	groups := make(map[entity.Score][]entity.BestDay)
	for _, date := range dateSlots {
		availableCount, favoredCount := 0, 0
		for _, p := range participants {
			if responses[p].CantAttend || !availability.Get(p, date) {
				continue
			}
			availableCount++
			if favorites.Get(p, date) {
				favoredCount++
			}
		}

		// 2. Drop days nobody can attend
		if availableCount == 0 {
			continue
		}

		score := entity.NewScore(availableCount, favoredCount)
		groups[score] = append(groups[score], entity.BestDay{
			Date:           date,
			AvailableCount: availableCount,
			FavoredCount:   favoredCount,
			RespondedCount: responded,
		})
	}

	if len(groups) == 0 {
		return []entity.RankedGroup{}
	}

	// 3. Sort distinct scores descending
	scores := make([]entity.Score, 0, len(groups))
	for s := range groups {
		scores = append(scores, s)
	}
	sort.Slice(scores, func(i, j int) bool {
		return scores[i] > scores[j]
	})

	// 4. Keep the top groups
	if len(scores) > MaxRankedGroups {
		scores = scores[:MaxRankedGroups]
	}

	result := make([]entity.RankedGroup, 0, len(scores))
	for _, s := range scores {
		result = append(result, entity.RankedGroup{Score: s, Days: groups[s]})
	}
	return result
}
