package db

import (
	"encoding/csv"
	"os"
	"strings"

	"gorm.io/gorm"
)

// LoadPrompts reads prompt phrases from a CSV and upserts them into the
// prompts table. The header row is skipped and the first column of each
// remaining row holds the phrase.
func LoadPrompts(conn *gorm.DB, path string) (int, error) {
	if conn == nil {
		return 0, nil
	}
	rows, err := readCSV(path)
	if err != nil {
		return 0, err
	}
	inserted := 0
	for _, row := range rows {
		phrase := firstField(row)
		if phrase == "" {
			continue
		}
		entry := Prompt{Phrase: phrase}
		if err := conn.FirstOrCreate(&entry, Prompt{Phrase: entry.Phrase}).Error; err != nil {
			return inserted, err
		}
		inserted++
	}
	return inserted, nil
}

// LoadBackupAnswers reads prompt/answer pairs from a CSV and upserts the
// answers against their prompts. Rows referencing unknown prompts are skipped.
func LoadBackupAnswers(conn *gorm.DB, path string) (int, error) {
	if conn == nil {
		return 0, nil
	}
	rows, err := readCSV(path)
	if err != nil {
		return 0, err
	}
	inserted := 0
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		phrase := strings.TrimSpace(row[0])
		text := strings.TrimSpace(row[1])
		if phrase == "" || text == "" {
			continue
		}
		var prompt Prompt
		if err := conn.Where("phrase = ?", phrase).First(&prompt).Error; err != nil {
			continue
		}
		entry := BackupAnswer{PromptID: prompt.ID, Text: text}
		if err := conn.FirstOrCreate(&entry, BackupAnswer{PromptID: prompt.ID, Text: text}).Error; err != nil {
			return inserted, err
		}
		inserted++
	}
	return inserted, nil
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[1:], nil
}

func firstField(row []string) string {
	if len(row) == 0 {
		return ""
	}
	return strings.TrimSpace(row[0])
}
