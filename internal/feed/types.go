// Package feed is the adapter boundary to the external live-golf
// leaderboard API. The feed mixes plain JSON numbers with MongoDB
// extended-JSON wrappers ({"$numberInt":"3"}), so every numeric field goes
// through FlexInt/FlexTime here; the scoring core only ever sees plain Go
// values.
package feed

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"
)

// FlexInt decodes an integer that may arrive as a JSON number, a quoted
// string, an extended-JSON wrapper, or null.
type FlexInt struct {
	Value int
	Valid bool
}

type extendedNumber struct {
	NumberInt    string `json:"$numberInt"`
	NumberLong   string `json:"$numberLong"`
	NumberDouble string `json:"$numberDouble"`
}

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = FlexInt{}
		return nil
	}

	if data[0] == '{' {
		var ext extendedNumber
		if err := json.Unmarshal(data, &ext); err != nil {
			return err
		}
		raw := ext.NumberInt
		if raw == "" {
			raw = ext.NumberLong
		}
		if raw == "" {
			raw = ext.NumberDouble
		}
		return f.parse(raw)
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		return f.parse(s)
	}

	return f.parse(string(data))
}

func (f *FlexInt) parse(raw string) error {
	if raw == "" {
		*f = FlexInt{}
		return nil
	}
	// Doubles show up for fields that are conceptually integers.
	parsed, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		*f = FlexInt{}
		return nil
	}
	*f = FlexInt{Value: int(parsed), Valid: true}
	return nil
}

// Ptr returns the value as a nullable int for persistence.
func (f FlexInt) Ptr() *int {
	if !f.Valid {
		return nil
	}
	v := f.Value
	return &v
}

// FlexTime decodes a timestamp that may arrive as epoch seconds, epoch
// milliseconds, an RFC3339 string, or {"$date":{"$numberLong":"ms"}}.
type FlexTime struct {
	Time  time.Time
	Valid bool
}

type extendedDate struct {
	Date extendedNumber `json:"$date"`
}

func (f *FlexTime) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = FlexTime{}
		return nil
	}

	if data[0] == '{' {
		var ext extendedDate
		if err := json.Unmarshal(data, &ext); err != nil {
			return err
		}
		raw := ext.Date.NumberLong
		if raw == "" {
			raw = ext.Date.NumberInt
		}
		ms, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			*f = FlexTime{}
			return nil
		}
		*f = FlexTime{Time: time.UnixMilli(ms).UTC(), Valid: true}
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			*f = FlexTime{}
			return nil
		}
		*f = FlexTime{Time: t.UTC(), Valid: true}
		return nil
	}

	epoch, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		*f = FlexTime{}
		return nil
	}
	// Values this large can only be milliseconds.
	if epoch > 1e12 {
		*f = FlexTime{Time: time.UnixMilli(epoch).UTC(), Valid: true}
	} else {
		*f = FlexTime{Time: time.Unix(epoch, 0).UTC(), Valid: true}
	}
	return nil
}

// Tournament is the feed's per-tournament detail response.
type Tournament struct {
	TournID      string  `json:"tournId"`
	Name         string  `json:"name"`
	Status       string  `json:"status"`
	CurrentRound FlexInt `json:"currentRound"`
	Purse        FlexInt `json:"purse"`
	Date         struct {
		Start FlexTime `json:"start"`
		End   FlexTime `json:"end"`
	} `json:"date"`
	Courses []struct {
		CourseName string `json:"courseName"`
	} `json:"courses"`
}

// Leaderboard is the full per-tournament leaderboard response.
type Leaderboard struct {
	TournID         string           `json:"tournId"`
	Year            string           `json:"year"`
	Status          string           `json:"status"`
	RoundID         FlexInt          `json:"roundId"`
	RoundStatus     string           `json:"roundStatus"`
	CutLines        []CutLine        `json:"cutLines"`
	LeaderboardRows []LeaderboardRow `json:"leaderboardRows"`
	LastUpdated     FlexTime         `json:"lastUpdated"`
}

type CutLine struct {
	CutCount FlexInt `json:"cutCount"`
	CutScore string  `json:"cutScore"`
}

// CutScore returns the first cut line's score, if the feed published one.
func (l *Leaderboard) CutScore() string {
	if len(l.CutLines) == 0 {
		return ""
	}
	return l.CutLines[0].CutScore
}

// LeaderboardRow is one golfer's line. String fields keep the feed's
// encoding ("E", "+3", "-4", positions like "T12", "CUT"); the scoring
// package owns their interpretation.
type LeaderboardRow struct {
	PlayerID          string  `json:"playerId"`
	FirstName         string  `json:"firstName"`
	LastName          string  `json:"lastName"`
	IsAmateur         bool    `json:"isAmateur"`
	Status            string  `json:"status"`
	Position          string  `json:"position"`
	Total             string  `json:"total"`
	CurrentRoundScore string  `json:"currentRoundScore"`
	Thru              string  `json:"thru"`
	CurrentHole       FlexInt `json:"currentHole"`
	StartingHole      FlexInt `json:"startingHole"`
	CurrentRound      FlexInt `json:"currentRound"`
	RoundComplete     bool    `json:"roundComplete"`
	TeeTime           string  `json:"teeTime"`
}

// Schedule is the season schedule response.
type Schedule struct {
	Year     string          `json:"year"`
	Schedule []ScheduleEvent `json:"schedule"`
}

type ScheduleEvent struct {
	TournID string  `json:"tournId"`
	Name    string  `json:"name"`
	Purse   FlexInt `json:"purse"`
	Date    struct {
		Start FlexTime `json:"start"`
		End   FlexTime `json:"end"`
	} `json:"date"`
}
