package server

type autoFilledAnswer struct {
	TelegramID int64
	Answer     string
}

// autoFillAnswers substitutes a backup answer for every player who has not
// answered by the time the answer window closes. Backup answers come from
// the pool tied to the player's prompt.
func (s *Server) autoFillAnswers() []autoFilledAnswer {
	view := s.store.View()
	if view.Phase != phaseCollecting {
		return nil
	}

	// Backup answers are fetched outside the lock; players who answer in
	// the meantime keep their own answer.
	backups := make(map[int64]string)
	for _, player := range view.Players {
		if !player.Answered && player.Prompt != "" {
			backups[player.TelegramID] = s.loadBackupAnswer(player.Prompt)
		}
	}
	if len(backups) == 0 {
		return nil
	}

	filled := make([]autoFilledAnswer, 0, len(backups))
	_, _ = s.store.Update(func(room *Room) error {
		if room.Phase != phaseCollecting {
			return nil
		}
		for i := range room.Players {
			player := &room.Players[i]
			if player.Answered {
				continue
			}
			backup, ok := backups[player.TelegramID]
			if !ok {
				continue
			}
			player.Answer = backup
			player.Answered = true
			filled = append(filled, autoFilledAnswer{
				TelegramID: player.TelegramID,
				Answer:     backup,
			})
		}
		return nil
	})
	return filled
}
