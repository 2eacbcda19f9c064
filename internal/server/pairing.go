package server

import (
	"errors"
	"sort"
)

// totalRounds is the number of pairing rounds for a roster: one per assigned
// prompt, ceil(n/2).
func totalRounds(playerCount int) int {
	return (playerCount + 1) / 2
}

// playersByPrompt orders the roster by assigned prompt, then join time, then
// telegram id. The ordering must be stable across calls: the bot fetches a
// round's answers by index and the players see the same round's result, so a
// reordering between the two desynchronizes the views.
func playersByPrompt(room *Room) []Player {
	ordered := append([]Player(nil), room.Players...)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Prompt != ordered[j].Prompt {
			return ordered[i].Prompt < ordered[j].Prompt
		}
		if !ordered[i].JoinedAt.Equal(ordered[j].JoinedAt) {
			return ordered[i].JoinedAt.Before(ordered[j].JoinedAt)
		}
		return ordered[i].TelegramID < ordered[j].TelegramID
	})
	return ordered
}

// pairForRound slices the prompt-ordered roster at [2(round-1), 2*round).
// A slice with fewer than two players (the trailing entry of an odd roster)
// is unplayable.
func pairForRound(room *Room, round int) (Player, Player, error) {
	if round < 1 {
		return Player{}, Player{}, ErrInsufficientPlayers
	}
	ordered := playersByPrompt(room)
	start := 2 * (round - 1)
	if start+2 > len(ordered) {
		return Player{}, Player{}, ErrInsufficientPlayers
	}
	return ordered[start], ordered[start+1], nil
}

// assignPrompts deals one prompt per consecutive pair of players, ordered by
// join time. It runs inside the store lock; the PromptsAssigned flag makes it
// a one-shot, so of two concurrent triggers only the first deals.
func assignPrompts(room *Room, phrases []string, minPlayers int) error {
	if room.PromptsAssigned {
		return nil
	}
	if len(room.Players) < minPlayers {
		return ErrInsufficientPlayers
	}
	need := totalRounds(len(room.Players))
	if len(phrases) < need {
		return errors.New("not enough prompts available")
	}
	ordered := playersByJoinTime(room)
	for i := range ordered {
		player := findPlayer(room, ordered[i].TelegramID)
		if player == nil {
			continue
		}
		player.Prompt = phrases[i/2]
	}
	room.PromptsAssigned = true
	return nil
}

// remainingPairs reports how many pairing rounds are still ahead of the
// current cursor, including the active one.
func remainingPairs(room *Room) int {
	switch room.Phase {
	case phaseCollecting:
		return totalRounds(len(room.Players))
	case phaseVoting:
		remaining := totalRounds(len(room.Players)) - room.RoundIndex + 1
		if remaining < 0 {
			return 0
		}
		return remaining
	default:
		return 0
	}
}
