package server

import (
	"math/rand"

	"prompt-party/internal/db"
)

// loadPromptPool draws up to limit distinct phrases from the prompts table,
// in random order. Without a database the in-code fallback pool is used so
// the server stays playable in tests and local runs.
func (s *Server) loadPromptPool(limit int) ([]string, error) {
	if limit <= 0 {
		return nil, nil
	}
	if s.db == nil {
		return selectPhrases(fallbackPrompts(), limit), nil
	}
	var records []db.Prompt
	if err := s.db.Order("random()").Limit(limit).Find(&records).Error; err != nil {
		return nil, err
	}
	phrases := make([]string, 0, len(records))
	for _, record := range records {
		phrases = append(phrases, record.Phrase)
	}
	return phrases, nil
}

// loadBackupAnswer fetches a canned answer for a prompt phrase, used when the
// answer window closes on an unanswered player.
func (s *Server) loadBackupAnswer(phrase string) string {
	if s.db == nil {
		return fallbackBackupAnswer
	}
	var prompt db.Prompt
	if err := s.db.Where("phrase = ?", phrase).First(&prompt).Error; err != nil {
		return fallbackBackupAnswer
	}
	var record db.BackupAnswer
	if err := s.db.Where("prompt_id = ?", prompt.ID).Order("random()").First(&record).Error; err != nil {
		return fallbackBackupAnswer
	}
	return record.Text
}

const fallbackBackupAnswer = "No comment."

func fallbackPrompts() []string {
	return []string{
		"The worst possible slogan for a dentist",
		"Something you should never say at a funeral",
		"The real reason the dinosaurs went extinct",
		"A terrible name for a cruise ship",
		"What cats would ask for if they could talk",
		"The most useless superpower imaginable",
		"A rejected flavor of sparkling water",
		"The first rule of a very bad secret club",
	}
}

// selectPhrases draws limit phrases from the pool at random, without
// replacement, mirroring the ORDER BY random() draw on the database path.
func selectPhrases(pool []string, limit int) []string {
	if limit <= 0 {
		return nil
	}
	shuffled := append([]string(nil), pool...)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	if limit > len(shuffled) {
		limit = len(shuffled)
	}
	return shuffled[:limit]
}
