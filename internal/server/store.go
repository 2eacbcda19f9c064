package server

import (
	"errors"
	"sort"
	"sync"
	"time"
)

var (
	ErrNotFound            = errors.New("player not found")
	ErrAlreadyVoted        = errors.New("already voted")
	ErrInsufficientPlayers = errors.New("not enough players")
	ErrPromptTimeout       = errors.New("prompt wait timed out")
)

// Store owns the room and the player registry. Every mutation goes through
// the methods below under a single mutex, so check-then-act sequences
// (duplicate registration, double votes, one-shot flags) cannot interleave.
type Store struct {
	mu   sync.Mutex
	room Room
}

func NewStore() *Store {
	return &Store{
		room: Room{
			Phase:          phaseLobby,
			PhaseStartedAt: timeNowUTC(),
		},
	}
}

// View returns a copy of the room safe to read without holding the lock.
func (s *Store) View() Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyRoom(&s.room)
}

// Update applies fn to the room under the lock and returns a copy of the
// resulting state. State-machine transitions run inside fn so that
// re-delivered triggers observe the already-advanced phase and no-op.
func (s *Store) Update(fn func(room *Room) error) (Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := fn(&s.room); err != nil {
		return copyRoom(&s.room), err
	}
	return copyRoom(&s.room), nil
}

// Register upserts a player by telegram id. A repeat registration updates the
// display name and refreshes the join timestamp but keeps answer and vote
// state, so a reconnect resumes prior progress.
func (s *Store) Register(telegramID int64, name string) (Player, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.room.Players {
		if s.room.Players[i].TelegramID == telegramID {
			s.room.Players[i].Name = name
			s.room.Players[i].JoinedAt = timeNowUTC()
			return s.room.Players[i], false
		}
	}
	player := Player{
		TelegramID: telegramID,
		Name:       name,
		JoinedAt:   timeNowUTC(),
	}
	s.room.Players = append(s.room.Players, player)
	return player, true
}

// RecordAnswer overwrites the player's answer. Answers stay editable until
// the collecting phase closes.
func (s *Store) RecordAnswer(telegramID int64, answer string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	player := findPlayer(&s.room, telegramID)
	if player == nil {
		return ErrNotFound
	}
	player.Answer = answer
	player.Answered = true
	return nil
}

// CastVote marks the voter and credits the candidate. The voted flag is
// checked and set under the lock, so two concurrent votes from the same
// voter cannot both pass.
func (s *Store) CastVote(voterID, candidateID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	voter := findPlayer(&s.room, voterID)
	if voter == nil {
		return ErrNotFound
	}
	candidate := findPlayer(&s.room, candidateID)
	if candidate == nil {
		return ErrNotFound
	}
	if voter.Voted {
		return ErrAlreadyVoted
	}
	voter.Voted = true
	candidate.Votes++
	return nil
}

func (s *Store) CountTotal() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.room.Players)
}

func (s *Store) CountAnswered() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return countAnswered(&s.room)
}

func (s *Store) CountUnvoted() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return countUnvoted(&s.room)
}

// ResetRoundState clears voted flags between pairing rounds. Vote totals and
// answers survive until the game resets.
func (s *Store) ResetRoundState() {
	s.mu.Lock()
	defer s.mu.Unlock()
	resetVotedFlags(&s.room)
}

// PurgeAll drops every player, used on the results -> lobby reset.
func (s *Store) PurgeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.room.Players = nil
}

// SetPlayerDBID backfills the database row id after a persist.
func (s *Store) SetPlayerDBID(telegramID int64, dbID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if player := findPlayer(&s.room, telegramID); player != nil {
		player.DBID = dbID
	}
}

func (s *Store) FindPlayer(telegramID int64) (Player, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if player := findPlayer(&s.room, telegramID); player != nil {
		return *player, true
	}
	return Player{}, false
}

func findPlayer(room *Room, telegramID int64) *Player {
	for i := range room.Players {
		if room.Players[i].TelegramID == telegramID {
			return &room.Players[i]
		}
	}
	return nil
}

func countAnswered(room *Room) int {
	count := 0
	for i := range room.Players {
		if room.Players[i].Answered {
			count++
		}
	}
	return count
}

func countUnvoted(room *Room) int {
	count := 0
	for i := range room.Players {
		if !room.Players[i].Voted {
			count++
		}
	}
	return count
}

func resetVotedFlags(room *Room) {
	for i := range room.Players {
		room.Players[i].Voted = false
	}
}

func copyRoom(room *Room) Room {
	view := *room
	view.Players = append([]Player(nil), room.Players...)
	return view
}

// playersByJoinTime returns the roster ordered by join time, ties broken by
// telegram id. Registration appends in arrival order, but a re-registration
// refreshes the timestamp without moving the entry, so callers sort.
func playersByJoinTime(room *Room) []Player {
	ordered := append([]Player(nil), room.Players...)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].JoinedAt.Equal(ordered[j].JoinedAt) {
			return ordered[i].TelegramID < ordered[j].TelegramID
		}
		return ordered[i].JoinedAt.Before(ordered[j].JoinedAt)
	})
	return ordered
}

func timeNowUTC() time.Time {
	return time.Now().UTC()
}
