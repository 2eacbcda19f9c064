package server

import "log"

// registerPlayer upserts the player and announces fresh joins to the players
// group. Re-registration with the same telegram id is idempotent: one record,
// refreshed name and join time, round progress untouched.
func (s *Server) registerPlayer(telegramID int64, username string) (Player, bool, error) {
	name, err := validateName(username)
	if err != nil {
		return Player{}, false, err
	}
	player, isNew := s.store.Register(telegramID, name)
	s.persistPlayer(&player)
	if player.DBID != 0 {
		s.store.SetPlayerDBID(player.TelegramID, player.DBID)
	}
	log.Printf("player registered telegram_id=%d name=%s new=%t", telegramID, name, isNew)
	if isNew {
		s.hub.Publish(groupPlayers, newPlayerEvent(player))
	}
	return player, isNew, nil
}

// submitAnswer records (or overwrites) the answer, then re-checks the
// collecting -> voting threshold.
func (s *Server) submitAnswer(telegramID int64, answer string) error {
	text, err := validateAnswer(answer)
	if err != nil {
		return err
	}
	if err := s.store.RecordAnswer(telegramID, text); err != nil {
		return err
	}
	s.persistAnswer(telegramID, text)
	log.Printf("answer recorded telegram_id=%d", telegramID)
	s.tryFinishCollecting()
	return nil
}

// submitVote counts the vote, acks the players group, then re-checks round
// completion.
func (s *Server) submitVote(voterID, candidateID int64) error {
	if err := s.store.CastVote(voterID, candidateID); err != nil {
		return err
	}
	s.persistVote(voterID, candidateID)
	log.Printf("vote cast voter_id=%d candidate_id=%d", voterID, candidateID)
	s.hub.Publish(groupPlayers, playerVotedEvent())
	s.tryCompleteVotingRound()
	return nil
}
