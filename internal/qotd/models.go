package qotd

import (
	"fmt"
	"strconv"

	"github.com/phods-dev/qotd-service/internal/sheet"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusLive    Status = "live"
	StatusActive  Status = "active"
	StatusDone    Status = "done"
)

// Master-sheet column layout. Row index is the question number; row 0 is
// the header and is never touched.
const (
	colNum = iota
	colDate
	colWeekday
	colCreator
	colSource
	colPoints
	colLinks
	colTopic
	colDifficulty
	colSolution
	colAnswer
	colTolerance
	colStatus
	colStatsRef
	colLeaderboardRef
)

const (
	masterSheet      = "questions"
	leaderboardSheet = "leaderboard"
	seasonSheet      = "season"
)

func ledgerSheet(num int) string { return fmt.Sprintf("qotd %d", num) }

// Question is the typed view of one master-sheet row. Answer and
// Tolerance stay strings at this layer; they are parsed where grading
// needs them.
type Question struct {
	Num        int    `json:"num"`
	Date       string `json:"date,omitempty"`
	Weekday    string `json:"weekday,omitempty"`
	Creator    string `json:"creator"`
	Source     string `json:"source,omitempty"`
	Points     string `json:"points,omitempty"` // legacy column, carried verbatim
	Links      string `json:"links"`
	Topic      string `json:"topic,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`
	Solution   string `json:"solution,omitempty"`
	Answer     string `json:"answer,omitempty"`
	Tolerance  string `json:"tolerance,omitempty"`
	Status     Status `json:"status"`

	StatsRef       string `json:"-"`
	LeaderboardRef string `json:"-"`
}

func questionAt(ms *sheet.Sheet, num int) Question {
	return Question{
		Num:            num,
		Date:           ms.Cell(num, colDate),
		Weekday:        ms.Cell(num, colWeekday),
		Creator:        ms.Cell(num, colCreator),
		Source:         ms.Cell(num, colSource),
		Points:         ms.Cell(num, colPoints),
		Links:          ms.Cell(num, colLinks),
		Topic:          ms.Cell(num, colTopic),
		Difficulty:     ms.Cell(num, colDifficulty),
		Solution:       ms.Cell(num, colSolution),
		Answer:         ms.Cell(num, colAnswer),
		Tolerance:      ms.Cell(num, colTolerance),
		Status:         Status(ms.Cell(num, colStatus)),
		StatsRef:       ms.Cell(num, colStatsRef),
		LeaderboardRef: ms.Cell(num, colLeaderboardRef),
	}
}

func (q Question) row() []string {
	return []string{
		strconv.Itoa(q.Num),
		q.Date,
		q.Weekday,
		q.Creator,
		q.Source,
		q.Points,
		q.Links,
		q.Topic,
		q.Difficulty,
		q.Solution,
		q.Answer,
		q.Tolerance,
		string(q.Status),
		q.StatsRef,
		q.LeaderboardRef,
	}
}

func statusAt(ms *sheet.Sheet, num int) Status {
	return Status(ms.Cell(num, colStatus))
}

// answerAndTolerance parses the stored answer/tolerance cells. A master
// row that fails to parse is corrupt and surfaces as an internal error.
func answerAndTolerance(ms *sheet.Sheet, num int) (float64, float64, error) {
	ans, err := strconv.ParseFloat(ms.Cell(num, colAnswer), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("question %d: bad stored answer %q", num, ms.Cell(num, colAnswer))
	}
	tol, err := strconv.ParseFloat(ms.Cell(num, colTolerance), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("question %d: bad stored tolerance %q", num, ms.Cell(num, colTolerance))
	}
	return ans, tol, nil
}

// Season-sheet layout: header row plus one fixed record row.
const (
	seasonRow = 1

	colTemplate = 0
	colDay      = 1
	colSeason   = 2
	colToggle   = 3
)

type SeasonConfig struct {
	Template string // leaderboard header template
	Day      int    // questions completed this season
	Season   int
	Paused   bool
}

func seasonConfigFrom(ds *sheet.Sheet) SeasonConfig {
	day, _ := strconv.Atoi(ds.Cell(seasonRow, colDay))
	season, _ := strconv.Atoi(ds.Cell(seasonRow, colSeason))
	return SeasonConfig{
		Template: ds.Cell(seasonRow, colTemplate),
		Day:      day,
		Season:   season,
		Paused:   ds.Cell(seasonRow, colToggle) != "live",
	}
}
