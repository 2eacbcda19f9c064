package db

import (
	"time"

	"gorm.io/datatypes"
)

type Player struct {
	ID         uint      `gorm:"primaryKey"`
	TelegramID int64     `gorm:"uniqueIndex;not null"`
	Name       string    `gorm:"size:64"`
	JoinedAt   time.Time `gorm:"not null"`
	Prompt     string    `gorm:"size:280"`
	Answer     string    `gorm:"size:280"`
	IsVoted    bool      `gorm:"not null;default:false"`
	VoteCount  int       `gorm:"not null;default:0"`
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
}

type Prompt struct {
	ID            uint      `gorm:"primaryKey"`
	Phrase        string    `gorm:"size:280;uniqueIndex;not null"`
	CreatedAt     time.Time `gorm:"not null"`
	UpdatedAt     time.Time `gorm:"not null"`
	BackupAnswers []BackupAnswer
}

// BackupAnswer is a canned answer tied to a prompt, substituted for players
// who never submit before the answer window closes.
type BackupAnswer struct {
	ID        uint      `gorm:"primaryKey"`
	PromptID  uint      `gorm:"index;not null"`
	Text      string    `gorm:"size:280;not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

type Event struct {
	ID        uint           `gorm:"primaryKey"`
	PlayerID  *uint          `gorm:"index"`
	Type      string         `gorm:"size:64;not null"`
	Payload   datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt time.Time      `gorm:"not null"`
}
