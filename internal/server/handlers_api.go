package server

import (
	"errors"
	"net/http"
	"strconv"
)

type connectRequest struct {
	TelegramID int64  `json:"telegram_id"`
	Username   string `json:"username"`
}

type answerRequest struct {
	TelegramID int64  `json:"telegram_id"`
	Answer     string `json:"answer"`
}

type voteRequest struct {
	VoterID     int64 `json:"voter_id"`
	CandidateID int64 `json:"candidate_id"`
}

func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	var req connectRequest
	if err := readJSON(r.Body, &req); err != nil || req.TelegramID == 0 {
		writeError(w, http.StatusBadRequest, "telegram_id is required")
		return
	}
	if _, _, err := s.registerPlayer(req.TelegramID, req.Username); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeNoContent(w)
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := readJSON(r.Body, &req); err != nil || req.TelegramID == 0 {
		writeError(w, http.StatusBadRequest, "telegram_id and answer are required")
		return
	}
	err := s.submitAnswer(req.TelegramID, req.Answer)
	if errors.Is(err, ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeNoContent(w)
}

func (s *Server) handleVote(w http.ResponseWriter, r *http.Request) {
	var req voteRequest
	if err := readJSON(r.Body, &req); err != nil || req.VoterID == 0 || req.CandidateID == 0 {
		writeError(w, http.StatusBadRequest, "voter_id and candidate_id are required")
		return
	}
	err := s.submitVote(req.VoterID, req.CandidateID)
	if errors.Is(err, ErrAlreadyVoted) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "Already voted"})
		return
	}
	if errors.Is(err, ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeNoContent(w)
}

// handlePrompt is the waiting-room checkpoint: the poll that brings the
// fourth player in also deals the prompts. The wait is bounded; a prompt
// that never arrives yields 408 and the client retries.
func (s *Server) handlePrompt(w http.ResponseWriter, r *http.Request) {
	telegramID, err := strconv.ParseInt(r.URL.Query().Get("telegram_id"), 10, 64)
	if err != nil || telegramID == 0 {
		writeError(w, http.StatusBadRequest, "telegram_id is required")
		return
	}
	if _, ok := s.store.FindPlayer(telegramID); !ok {
		writeError(w, http.StatusNotFound, "player not found")
		return
	}

	if err := s.tryStartCollecting(); err != nil && !errors.Is(err, ErrInsufficientPlayers) {
		writeError(w, http.StatusInternalServerError, "failed to assign prompts")
		return
	}

	prompt, err := s.awaitPrompt(r.Context(), telegramID)
	if errors.Is(err, ErrPromptTimeout) {
		writeError(w, http.StatusRequestTimeout, "prompt not assigned yet")
		return
	}
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"telegram_id": telegramID,
		"prompt":      prompt,
	})
}

func (s *Server) handleCount(w http.ResponseWriter, r *http.Request) {
	room := s.store.View()
	writeJSON(w, http.StatusOK, map[string]int{
		"count": remainingPairs(&room),
	})
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	room := s.store.View()
	if room.Phase != phaseResults {
		writeError(w, http.StatusConflict, "game still in progress")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"phase":   room.Phase,
		"players": leaderboard(&room),
	})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.resetGame(); err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	writeNoContent(w)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
