package server

import (
	"log"
	"time"
)

// scheduleAnswerTimer arms the answer window when collecting opens. A zero
// timeout disables the window: the phase then only advances when every
// player has answered.
func (s *Server) scheduleAnswerTimer() {
	duration := time.Duration(s.cfg.AnswerTimeoutSeconds) * time.Second
	if duration <= 0 {
		return
	}
	s.timerMu.Lock()
	defer s.timerMu.Unlock()
	if s.answerTimer != nil {
		s.answerTimer.Stop()
	}
	s.answerTimer = time.AfterFunc(duration, s.closeAnswerWindow)
}

func (s *Server) cancelAnswerTimer() {
	s.timerMu.Lock()
	defer s.timerMu.Unlock()
	if s.answerTimer != nil {
		s.answerTimer.Stop()
		s.answerTimer = nil
	}
}

// closeAnswerWindow fires when the answer window elapses: unanswered players
// get a backup answer and the room moves to voting. If the room already left
// collecting (everyone answered first), this is a no-op.
func (s *Server) closeAnswerWindow() {
	filled := s.autoFillAnswers()
	for _, fill := range filled {
		s.persistAnswer(fill.TelegramID, fill.Answer)
		log.Printf("answer auto-filled telegram_id=%d", fill.TelegramID)
	}
	s.tryFinishCollecting()
}
