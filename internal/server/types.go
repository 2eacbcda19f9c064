package server

import "time"

const (
	phaseLobby      = "lobby"
	phaseCollecting = "collecting"
	phaseVoting     = "voting"
	phaseResults    = "results"
)

const (
	groupPlayers = "players"
	groupBot     = "bot"
)

// Room is the single process-wide game session. The round cursor and the
// one-shot assignment flag live here rather than in an external cache so that
// their lifetime matches the game's.
type Room struct {
	Phase           string
	PhaseStartedAt  time.Time
	RoundIndex      int
	PromptsAssigned bool
	Players         []Player
}

type Player struct {
	TelegramID int64
	Name       string
	JoinedAt   time.Time
	Prompt     string
	Answer     string
	Answered   bool
	Voted      bool
	Votes      int
	DBID       uint
}

// pairResult is the payload of an all_voted broadcast: the just-completed
// pairing round, with vote totals as they stood when the round closed.
type pairResult struct {
	Final     bool
	Prompt    string
	First     Player
	Second    Player
	NextRound int
}

type leaderboardEntry struct {
	TelegramID int64  `json:"telegram_id"`
	Username   string `json:"username"`
	Answer     string `json:"answer"`
	VoteCount  int    `json:"vote_count"`
}
