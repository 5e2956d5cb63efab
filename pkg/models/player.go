// Package models contains data structures for tennis ranking and tournament statistics
package models

import (
	"fmt"
	"strings"
	"time"
)

// Gender identifies which ranking table an athlete was read from
type Gender string

const (
	Men   Gender = "men"
	Women Gender = "women"
)

// RankedAthlete is one row of a ranking table
type RankedAthlete struct {
	Name        string
	Rank        string
	DisplayName string
	ProfileURL  string
	Gender      Gender
}

// Key returns the "name (rank)" key used by StatsMap
func (a RankedAthlete) Key() string {
	return fmt.Sprintf("%s (%s)", a.Name, a.Rank)
}

// StandingKind enumerates the tournament states an athlete can be in
type StandingKind int

const (
	NotPlaying StandingKind = iota
	Advanced
	Out
	Winner
)

// Standing is the derived current tournament status of one athlete.
// Round is only set for Advanced.
type Standing struct {
	Kind  StandingKind
	Round string
}

// String renders the standing the way it is shown to users
func (s Standing) String() string {
	switch s.Kind {
	case Advanced:
		return "advanced to " + s.Round
	case Out:
		return "out"
	case Winner:
		return "winner"
	default:
		return "not playing"
	}
}

// MarshalText encodes the standing as its display string
func (s Standing) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a display string produced by MarshalText
func (s *Standing) UnmarshalText(text []byte) error {
	const advancedPrefix = "advanced to "
	str := string(text)
	switch {
	case str == "not playing" || str == "":
		*s = Standing{Kind: NotPlaying}
	case str == "out":
		*s = Standing{Kind: Out}
	case str == "winner":
		*s = Standing{Kind: Winner}
	case strings.HasPrefix(str, advancedPrefix):
		*s = Standing{Kind: Advanced, Round: strings.TrimPrefix(str, advancedPrefix)}
	default:
		return fmt.Errorf("unknown standing %q", str)
	}
	return nil
}

// PlayerStats holds the statistics shown for one athlete
type PlayerStats struct {
	Name              string   `json:"name"`
	Ranking           string   `json:"ranking"`
	Titles            string   `json:"titles"`
	Standing          Standing `json:"standing"`
	CurrentTournament string   `json:"current_tournament"`
	LatestMatchResult string   `json:"latest_match_result"`
	UpcomingMatch     string   `json:"upcoming_match"`
}

// StatsMap maps "name (rank)" to the athlete's stats for one cycle
type StatsMap map[string]PlayerStats

// Snapshot is the complete output of one fetch cycle
type Snapshot struct {
	CycleID   string    `json:"cycle_id"`
	FetchedAt time.Time `json:"fetched_at"`
	Stats     StatsMap  `json:"stats"`
	Choices   []string  `json:"choices"`
	Digest    string    `json:"digest"`
	Skipped   int       `json:"skipped"`
}
