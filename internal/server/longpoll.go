package server

import (
	"context"
	"time"
)

// awaitPrompt waits for the player's prompt to appear, re-checking on a
// fixed interval. No lock is held between checks; the wait is bounded by the
// configured window and by the request context.
func (s *Server) awaitPrompt(ctx context.Context, telegramID int64) (string, error) {
	if prompt, err := s.promptFor(telegramID); err != nil || prompt != "" {
		return prompt, err
	}

	window := time.NewTimer(time.Duration(s.cfg.PromptWaitSeconds) * time.Second)
	defer window.Stop()
	ticker := time.NewTicker(time.Duration(s.cfg.PromptPollMillis) * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return "", ErrPromptTimeout
		case <-window.C:
			return "", ErrPromptTimeout
		case <-ticker.C:
			prompt, err := s.promptFor(telegramID)
			if err != nil {
				return "", err
			}
			if prompt != "" {
				return prompt, nil
			}
		}
	}
}

func (s *Server) promptFor(telegramID int64) (string, error) {
	player, ok := s.store.FindPlayer(telegramID)
	if !ok {
		return "", ErrNotFound
	}
	return player.Prompt, nil
}
