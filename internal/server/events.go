package server

// Broadcast events are small tagged records: a "type" discriminator plus a
// payload. The shapes here are the wire contract with the web clients and
// the bot; field names stay snake_case to match them.

type playerSummary struct {
	TelegramID int64  `json:"telegram_id"`
	Username   string `json:"username"`
}

type answerSummary struct {
	TelegramID int64  `json:"telegram_id"`
	Answer     string `json:"answer"`
}

type votedPlayer struct {
	Username  string `json:"username"`
	Answer    string `json:"answer"`
	VoteCount int    `json:"vote_count"`
}

func initEvent(room Room) map[string]any {
	players := make([]playerSummary, 0, len(room.Players))
	for _, player := range playersByJoinTime(&room) {
		players = append(players, playerSummary{
			TelegramID: player.TelegramID,
			Username:   player.Name,
		})
	}
	return map[string]any{
		"type":    "init",
		"players": players,
	}
}

func newPlayerEvent(player Player) map[string]any {
	return map[string]any{
		"type": "new_player",
		"player": playerSummary{
			TelegramID: player.TelegramID,
			Username:   player.Name,
		},
	}
}

func redirectEvent(url string) map[string]any {
	return map[string]any{
		"type": "redirect",
		"url":  url,
	}
}

func playerVotedEvent() map[string]any {
	return map[string]any{
		"type": "player_voted",
	}
}

func allVotedEvent(result *pairResult) map[string]any {
	return map[string]any{
		"type":      "all_voted",
		"all_voted": result.Final,
		"prompt":    result.Prompt,
		"player0": votedPlayer{
			Username:  result.First.Name,
			Answer:    result.First.Answer,
			VoteCount: result.First.Votes,
		},
		"player1": votedPlayer{
			Username:  result.Second.Name,
			Answer:    result.Second.Answer,
			VoteCount: result.Second.Votes,
		},
	}
}

// answersNudgeEvent tells the bot which pairing round to fetch next.
func answersNudgeEvent(round int) map[string]any {
	return map[string]any{
		"type":         "receive_player_answers",
		"prompt_index": round,
	}
}

// EventPayload is the jsonb body of a persisted event-log row.
type EventPayload struct {
	TelegramID  int64  `json:"telegram_id,omitempty"`
	PlayerName  string `json:"player,omitempty"`
	VoterID     int64  `json:"voter_id,omitempty"`
	CandidateID int64  `json:"candidate_id,omitempty"`
	Phase       string `json:"phase,omitempty"`
	Round       int    `json:"round,omitempty"`
	Prompt      string `json:"prompt,omitempty"`
	Answer      string `json:"answer,omitempty"`
	Reason      string `json:"reason,omitempty"`
	Count       int    `json:"count,omitempty"`
}
