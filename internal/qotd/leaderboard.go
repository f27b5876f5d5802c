package qotd

import (
	"sort"
	"strconv"

	"github.com/phods-dev/qotd-service/internal/notify"
	"github.com/phods-dev/qotd-service/internal/sheet"
)

// loadTotals reads the leaderboard sheet into a participant → cumulative
// score map. Rows that fail to parse are skipped rather than aborting a
// whole merge.
func loadTotals(ls *sheet.Sheet) map[string]float64 {
	totals := make(map[string]float64, ls.Rows())
	for _, row := range ls.Grid() {
		if len(row) < 2 {
			continue
		}
		v, err := strconv.ParseFloat(row[1], 64)
		if err != nil {
			continue
		}
		totals[row[0]] = v
	}
	return totals
}

// writeTotals rewrites the whole leaderboard grid, ordered by score
// descending. Entries are recreated by update, never soft-deleted.
func writeTotals(ls *sheet.Sheet, totals map[string]float64) {
	entries := rankedEntries(totals)
	grid := make([][]string, 0, len(entries))
	for _, e := range entries {
		grid = append(grid, []string{e.UserID, strconv.FormatFloat(e.Points, 'g', -1, 64)})
	}
	ls.ReplaceAll(grid)
}

func rankedEntries(totals map[string]float64) []notify.LeaderboardEntry {
	entries := make([]notify.LeaderboardEntry, 0, len(totals))
	for user, pts := range totals {
		entries = append(entries, notify.LeaderboardEntry{UserID: user, Points: pts})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Points != entries[j].Points {
			return entries[i].Points > entries[j].Points
		}
		return entries[i].UserID < entries[j].UserID
	})
	return entries
}
