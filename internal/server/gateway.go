package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/websocket"
)

const (
	msgRegisterPlayer        = "register_player"
	msgSendPlayerAnswer      = "send_player_answer"
	msgSendPlayerVote        = "send_player_vote"
	msgReceivePlayerPrompt   = "receive_player_prompt"
	msgReceivePlayersPrompts = "receive_players_prompts"
	msgReceivePlayerAnswers  = "receive_player_answers"
)

// botMessage is the closed set of inbound realtime messages, discriminated
// by Type. Unknown types fall through to the error reply in dispatch.
type botMessage struct {
	Type        string `json:"type"`
	TelegramID  int64  `json:"telegram_id,omitempty"`
	Username    string `json:"username,omitempty"`
	Answer      string `json:"answer,omitempty"`
	VoterID     int64  `json:"voter_id,omitempty"`
	CandidateID int64  `json:"candidate_id,omitempty"`
	PromptIndex int    `json:"prompt_index,omitempty"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// handlePlayersWS subscribes a web client to the players group and sends the
// roster snapshot. Players only listen; inbound frames are drained until the
// connection drops.
func (s *Server) handlePlayersWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	log.Printf("ws connected group=%s remote=%s", groupPlayers, r.RemoteAddr)
	sub := s.hub.Subscribe(groupPlayers, conn)
	s.hub.Send(sub, initEvent(s.store.View()))
	go s.drainWS(groupPlayers, sub)
}

// handleBotWS subscribes the automation client to the bot group, acks, and
// runs the message loop.
func (s *Server) handleBotWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	log.Printf("ws connected group=%s remote=%s", groupBot, r.RemoteAddr)
	sub := s.hub.Subscribe(groupBot, conn)
	s.hub.Send(sub, map[string]string{"status": "ok"})
	go s.readBotWS(sub)
}

func (s *Server) drainWS(group string, sub *subscriber) {
	defer s.hub.Unsubscribe(group, sub)
	for {
		if _, _, err := sub.conn.ReadMessage(); err != nil {
			log.Printf("ws disconnected group=%s error=%v", group, err)
			return
		}
	}
}

// readBotWS handles one message at a time, so a single connection's messages
// are never processed concurrently. Disconnect only unsubscribes; player
// state survives for reconnects.
func (s *Server) readBotWS(sub *subscriber) {
	defer s.hub.Unsubscribe(groupBot, sub)
	for {
		_, data, err := sub.conn.ReadMessage()
		if err != nil {
			log.Printf("ws disconnected group=%s error=%v", groupBot, err)
			return
		}
		s.dispatch(sub, data)
	}
}

// dispatch decodes and routes one inbound message. Malformed payloads and
// unknown types produce an error reply; the connection stays open.
func (s *Server) dispatch(sub *subscriber, data []byte) {
	var msg botMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		s.sendError(sub, "Invalid JSON format")
		return
	}
	switch msg.Type {
	case msgRegisterPlayer:
		s.wsRegisterPlayer(sub, msg)
	case msgSendPlayerAnswer:
		s.wsSendPlayerAnswer(sub, msg)
	case msgSendPlayerVote:
		s.wsSendPlayerVote(sub, msg)
	case msgReceivePlayerPrompt:
		s.wsReceivePlayerPrompt(sub, msg)
	case msgReceivePlayersPrompts:
		s.wsReceivePlayersPrompts(sub)
	case msgReceivePlayerAnswers:
		s.wsReceivePlayerAnswers(sub, msg)
	default:
		s.sendError(sub, fmt.Sprintf("Unknown type '%s'", msg.Type))
	}
}

func (s *Server) wsRegisterPlayer(sub *subscriber, msg botMessage) {
	if msg.TelegramID == 0 {
		s.sendError(sub, "telegram_id is required")
		return
	}
	if _, _, err := s.registerPlayer(msg.TelegramID, msg.Username); err != nil {
		s.sendError(sub, err.Error())
		return
	}
	s.sendOK(sub)
}

func (s *Server) wsSendPlayerAnswer(sub *subscriber, msg botMessage) {
	if msg.TelegramID == 0 {
		s.sendError(sub, "telegram_id is required")
		return
	}
	if err := s.submitAnswer(msg.TelegramID, msg.Answer); err != nil {
		s.sendError(sub, err.Error())
		return
	}
	s.sendOK(sub)
}

func (s *Server) wsSendPlayerVote(sub *subscriber, msg botMessage) {
	if msg.VoterID == 0 || msg.CandidateID == 0 {
		s.sendError(sub, "voter_id and candidate_id are required")
		return
	}
	err := s.submitVote(msg.VoterID, msg.CandidateID)
	if errors.Is(err, ErrAlreadyVoted) {
		s.hub.Send(sub, map[string]string{"status": "Already voted"})
		return
	}
	if err != nil {
		s.sendError(sub, err.Error())
		return
	}
	s.sendOK(sub)
}

func (s *Server) wsReceivePlayerPrompt(sub *subscriber, msg botMessage) {
	if msg.TelegramID == 0 {
		s.sendError(sub, "telegram_id is required")
		return
	}
	player, ok := s.store.FindPlayer(msg.TelegramID)
	if !ok {
		s.sendError(sub, ErrNotFound.Error())
		return
	}
	s.hub.Send(sub, map[string]any{
		"telegram_id": player.TelegramID,
		"prompt":      player.Prompt,
	})
}

func (s *Server) wsReceivePlayersPrompts(sub *subscriber) {
	room := s.store.View()
	players := make([]map[string]any, 0, len(room.Players))
	for _, player := range playersByJoinTime(&room) {
		players = append(players, map[string]any{
			"telegram_id": player.TelegramID,
			"prompt":      player.Prompt,
		})
	}
	s.hub.Send(sub, map[string]any{"players": players})
}

func (s *Server) wsReceivePlayerAnswers(sub *subscriber, msg botMessage) {
	room := s.store.View()
	index := msg.PromptIndex
	if index <= 0 {
		index = room.RoundIndex
	}
	first, second, err := pairForRound(&room, index)
	if err != nil {
		s.sendError(sub, err.Error())
		return
	}
	s.hub.Send(sub, map[string]any{
		"prompt":  first.Prompt,
		"answer0": answerSummary{TelegramID: first.TelegramID, Answer: first.Answer},
		"answer1": answerSummary{TelegramID: second.TelegramID, Answer: second.Answer},
	})
}

func (s *Server) sendOK(sub *subscriber) {
	s.hub.Send(sub, map[string]string{"status": "ok"})
}

func (s *Server) sendError(sub *subscriber, message string) {
	s.hub.Send(sub, map[string]string{
		"status":  "error",
		"message": message,
	})
}
