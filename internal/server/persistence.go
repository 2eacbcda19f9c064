package server

import (
	"encoding/json"
	"errors"
	"log"
	"time"

	"prompt-party/internal/db"

	"github.com/jackc/pgconn"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// The in-memory store is authoritative; Postgres mirrors it so a restarted
// process can be reseeded and the event log survives. Every persist func is
// a no-op without a database connection.

// persistPlayer upserts the player row. The insert relies on the unique
// index on telegram_id: on conflict the existing row is fetched and
// refreshed, so concurrent registrations of the same id converge on one row.
// The in-memory registration already happened, so a mirror failure is logged
// and the registration proceeds.
func (s *Server) persistPlayer(player *Player) {
	if s.db == nil {
		return
	}
	record := db.Player{
		TelegramID: player.TelegramID,
		Name:       player.Name,
		JoinedAt:   player.JoinedAt,
	}
	if err := s.db.Create(&record).Error; err != nil {
		if !isUniqueViolation(err) {
			log.Printf("persist player failed telegram_id=%d error=%v", player.TelegramID, err)
			return
		}
		var existing db.Player
		if err := s.db.Where("telegram_id = ?", player.TelegramID).First(&existing).Error; err != nil {
			log.Printf("persist player lookup failed telegram_id=%d error=%v", player.TelegramID, err)
			return
		}
		updates := map[string]any{
			"name":      player.Name,
			"joined_at": player.JoinedAt,
		}
		if err := s.db.Model(&db.Player{}).Where("id = ?", existing.ID).Updates(updates).Error; err != nil {
			log.Printf("persist player refresh failed telegram_id=%d error=%v", player.TelegramID, err)
		}
		player.DBID = existing.ID
		return
	}
	player.DBID = record.ID
	s.persistEvent("player_registered", EventPayload{
		TelegramID: player.TelegramID,
		PlayerName: player.Name,
	})
}

func (s *Server) persistAssignedPrompts(room Room) {
	if s.db == nil {
		return
	}
	for _, player := range room.Players {
		if player.Prompt == "" {
			continue
		}
		err := s.db.Model(&db.Player{}).
			Where("telegram_id = ?", player.TelegramID).
			Update("prompt", player.Prompt).Error
		if err != nil {
			log.Printf("persist prompt failed telegram_id=%d error=%v", player.TelegramID, err)
		}
	}
}

func (s *Server) persistAnswer(telegramID int64, answer string) {
	if s.db == nil {
		return
	}
	err := s.db.Model(&db.Player{}).
		Where("telegram_id = ?", telegramID).
		Update("answer", answer).Error
	if err != nil {
		log.Printf("persist answer failed telegram_id=%d error=%v", telegramID, err)
	}
}

func (s *Server) persistVote(voterID, candidateID int64) {
	if s.db == nil {
		return
	}
	err := s.db.Model(&db.Player{}).
		Where("telegram_id = ?", voterID).
		Update("is_voted", true).Error
	if err != nil {
		log.Printf("persist voter flag failed telegram_id=%d error=%v", voterID, err)
	}
	err = s.db.Model(&db.Player{}).
		Where("telegram_id = ?", candidateID).
		Update("vote_count", gorm.Expr("vote_count + 1")).Error
	if err != nil {
		log.Printf("persist vote count failed telegram_id=%d error=%v", candidateID, err)
	}
	s.persistEvent("vote_cast", EventPayload{VoterID: voterID, CandidateID: candidateID})
}

func (s *Server) persistRoundReset() {
	if s.db == nil {
		return
	}
	if err := s.db.Model(&db.Player{}).Where("is_voted = ?", true).Update("is_voted", false).Error; err != nil {
		log.Printf("persist round reset failed error=%v", err)
	}
}

func (s *Server) persistPurge() {
	if s.db == nil {
		return
	}
	if err := s.db.Where("1 = 1").Delete(&db.Player{}).Error; err != nil {
		log.Printf("persist purge failed error=%v", err)
	}
}

func (s *Server) persistEvent(eventType string, payload EventPayload) {
	if err := s.persistEventErr(eventType, payload); err != nil {
		log.Printf("persist event failed type=%s error=%v", eventType, err)
	}
}

func (s *Server) persistEventErr(eventType string, payload EventPayload) error {
	if s.db == nil {
		return nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	event := db.Event{
		Type:      eventType,
		Payload:   datatypes.JSON(data),
		CreatedAt: time.Now().UTC(),
	}
	if payload.TelegramID != 0 {
		if id := s.playerDBID(payload.TelegramID); id != 0 {
			event.PlayerID = &id
		}
	}
	return s.db.Create(&event).Error
}

func (s *Server) playerDBID(telegramID int64) uint {
	player, ok := s.store.FindPlayer(telegramID)
	if ok && player.DBID != 0 {
		return player.DBID
	}
	var record db.Player
	if err := s.db.Where("telegram_id = ?", telegramID).First(&record).Error; err != nil {
		return 0
	}
	return record.ID
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
