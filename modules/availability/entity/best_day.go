package entity

import (
	"math"
	"strconv"
)

// Score counts half points: one available participant is worth 2, one
// participant who also favorited the day adds 1. Keeping it integral makes
// grouping by score exact.
type Score int

func NewScore(availableCount, favoredCount int) Score {
	return Score(2*availableCount + favoredCount)
}

// Float returns availableCount + 0.5*favoredCount.
func (s Score) Float() float64 {
	return float64(s) / 2
}

func (s Score) String() string {
	return strconv.FormatFloat(s.Float(), 'f', -1, 64)
}

// MarshalJSON renders the score as a decimal number, e.g. 2.5.
func (s Score) MarshalJSON() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Score) UnmarshalJSON(b []byte) error {
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return err
	}
	*s = Score(math.Round(f * 2))
	return nil
}

type BestDay struct {
	Date           DateKey `json:"date"`
	AvailableCount int     `json:"available_count"`
	FavoredCount   int     `json:"favored_count"`
	RespondedCount int     `json:"responded_count"`
}

type RankedGroup struct {
	Score Score     `json:"score"`
	Days  []BestDay `json:"days"`
}
