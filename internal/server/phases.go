package server

import (
	"errors"
	"log"
	"sort"
	"time"
)

// Phase flow: lobby -> collecting -> voting -> results -> (reset) -> lobby.
// Every transition is a check-and-advance closure run inside Store.Update, so
// a re-delivered trigger observes the advanced phase and does nothing. The
// closure reports whether it fired; broadcasts happen only on a fresh fire.

func setPhase(room *Room, phase string) {
	setPhaseAt(room, phase, timeNowUTC())
}

func setPhaseAt(room *Room, phase string, at time.Time) {
	room.Phase = phase
	if at.IsZero() {
		at = timeNowUTC()
	}
	room.PhaseStartedAt = at
}

// tryStartCollecting assigns prompts (one-shot) and opens the answer window.
// Triggered by the first prompt poll that reaches the waiting room with
// enough players. Below the threshold the room simply stays in the lobby.
func (s *Server) tryStartCollecting() error {
	view := s.store.View()
	if view.Phase != phaseLobby || view.PromptsAssigned {
		return nil
	}
	if len(view.Players) < s.cfg.MinPlayers {
		return ErrInsufficientPlayers
	}

	// The pool query runs before taking the store lock; the one-shot check
	// inside the closure decides which concurrent trigger actually deals.
	phrases, err := s.loadPromptPool(totalRounds(len(view.Players)))
	if err != nil {
		return err
	}

	fired := false
	room, err := s.store.Update(func(room *Room) error {
		if room.Phase != phaseLobby || room.PromptsAssigned {
			return nil
		}
		if err := assignPrompts(room, phrases, s.cfg.MinPlayers); err != nil {
			return err
		}
		setPhase(room, phaseCollecting)
		fired = true
		return nil
	})
	if err != nil {
		return err
	}
	if !fired {
		return nil
	}

	log.Printf("prompts assigned players=%d rounds=%d", len(room.Players), totalRounds(len(room.Players)))
	s.persistAssignedPrompts(room)
	s.persistEvent("prompts_assigned", EventPayload{Count: len(room.Players), Phase: room.Phase})
	s.scheduleAnswerTimer()
	return nil
}

// tryFinishCollecting closes the answer window once every player has
// answered. Evaluated after each accepted answer, never polled.
func (s *Server) tryFinishCollecting() {
	fired := false
	room, err := s.store.Update(func(room *Room) error {
		if room.Phase != phaseCollecting {
			return nil
		}
		if len(room.Players) == 0 || countAnswered(room) < len(room.Players) {
			return nil
		}
		resetVotedFlags(room)
		room.RoundIndex = 1
		setPhase(room, phaseVoting)
		fired = true
		return nil
	})
	if err != nil || !fired {
		return
	}

	log.Printf("all answers received players=%d", len(room.Players))
	s.cancelAnswerTimer()
	s.persistEvent("all_answers_received", EventPayload{Phase: room.Phase, Count: len(room.Players)})
	s.hub.Publish(groupPlayers, redirectEvent(s.cfg.VoteRedirectURL))
	s.hub.Publish(groupBot, answersNudgeEvent(room.RoundIndex))
}

// tryCompleteVotingRound closes the active pairing round once only the pair
// itself is left unvoted. Evaluated after each accepted vote.
func (s *Server) tryCompleteVotingRound() {
	var result *pairResult
	skipped := false
	room, err := s.store.Update(func(room *Room) error {
		if room.Phase != phaseVoting {
			return nil
		}
		if countUnvoted(room) != 2 {
			return nil
		}
		first, second, pairErr := pairForRound(room, room.RoundIndex)
		if pairErr != nil {
			// Trailing unpaired player of an odd roster: the round cannot
			// be played, the game goes straight to the leaderboard.
			setPhase(room, phaseResults)
			skipped = true
			return nil
		}
		result = &pairResult{
			Prompt: first.Prompt,
			First:  first,
			Second: second,
		}
		resetVotedFlags(room)
		room.RoundIndex++
		result.NextRound = room.RoundIndex
		if room.RoundIndex > totalRounds(len(room.Players)) {
			result.Final = true
		} else if _, _, probe := pairForRound(room, room.RoundIndex); probe != nil {
			result.Final = true
		}
		if result.Final {
			setPhase(room, phaseResults)
		}
		return nil
	})
	if err != nil {
		return
	}
	if skipped {
		log.Printf("final round unplayable round=%d players=%d", room.RoundIndex, len(room.Players))
		s.persistEvent("game_finished", EventPayload{Phase: room.Phase, Round: room.RoundIndex})
		s.hub.Publish(groupPlayers, redirectEvent(s.cfg.ResultsRedirectURL))
		return
	}
	if result == nil {
		return
	}

	log.Printf("pairing round complete round=%d final=%t", result.NextRound-1, result.Final)
	s.persistRoundReset()
	s.persistEvent("round_complete", EventPayload{
		Phase:  room.Phase,
		Round:  result.NextRound - 1,
		Prompt: result.Prompt,
	})
	s.hub.Publish(groupPlayers, allVotedEvent(result))
	if !result.Final {
		s.hub.Publish(groupBot, answersNudgeEvent(result.NextRound))
	}
}

// resetGame is the only way out of results. Explicit, never automatic.
func (s *Server) resetGame() error {
	fired := false
	_, err := s.store.Update(func(room *Room) error {
		if room.Phase != phaseResults {
			return errors.New("game still in progress")
		}
		room.Players = nil
		room.RoundIndex = 0
		room.PromptsAssigned = false
		setPhase(room, phaseLobby)
		fired = true
		return nil
	})
	if err != nil {
		return err
	}
	if fired {
		log.Printf("game reset")
		s.cancelAnswerTimer()
		s.persistPurge()
		s.persistEvent("game_reset", EventPayload{Phase: phaseLobby})
		s.hub.Publish(groupPlayers, redirectEvent(s.cfg.LobbyRedirectURL))
	}
	return nil
}

// leaderboard orders players by descending vote count; ties keep insertion
// order.
func leaderboard(room *Room) []leaderboardEntry {
	ordered := append([]Player(nil), room.Players...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Votes > ordered[j].Votes
	})
	entries := make([]leaderboardEntry, 0, len(ordered))
	for _, player := range ordered {
		entries = append(entries, leaderboardEntry{
			TelegramID: player.TelegramID,
			Username:   player.Name,
			Answer:     player.Answer,
			VoteCount:  player.Votes,
		})
	}
	return entries
}
