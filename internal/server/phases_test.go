package server

import (
	"errors"
	"strconv"
	"testing"
	"time"
)

func newGameServer(t *testing.T, playerCount int) *Server {
	t.Helper()
	srv := New(nil, testConfig())
	for i := 1; i <= playerCount; i++ {
		srv.store.Register(int64(i), "player"+strconv.Itoa(i))
	}
	return srv
}

func forcePhase(t *testing.T, srv *Server, phase string) {
	t.Helper()
	if _, err := srv.store.Update(func(room *Room) error {
		setPhase(room, phase)
		return nil
	}); err != nil {
		t.Fatalf("force phase: %v", err)
	}
}

func answerAll(t *testing.T, srv *Server) {
	t.Helper()
	for _, player := range srv.store.View().Players {
		if err := srv.store.RecordAnswer(player.TelegramID, "answer"); err != nil {
			t.Fatalf("record answer: %v", err)
		}
	}
}

// voteOutRound has every player outside the active pair cast a vote, which is
// what closes a pairing round.
func voteOutRound(t *testing.T, srv *Server) {
	t.Helper()
	room := srv.store.View()
	first, second, err := pairForRound(&room, room.RoundIndex)
	if err != nil {
		t.Fatalf("pair for round %d: %v", room.RoundIndex, err)
	}
	for _, player := range room.Players {
		if player.TelegramID == first.TelegramID || player.TelegramID == second.TelegramID {
			continue
		}
		if err := srv.submitVote(player.TelegramID, first.TelegramID); err != nil {
			t.Fatalf("vote from %d: %v", player.TelegramID, err)
		}
	}
}

func TestTryStartCollectingBelowThreshold(t *testing.T) {
	srv := newGameServer(t, 3)

	err := srv.tryStartCollecting()
	if !errors.Is(err, ErrInsufficientPlayers) {
		t.Fatalf("expected ErrInsufficientPlayers, got %v", err)
	}
	if room := srv.store.View(); room.Phase != phaseLobby || room.PromptsAssigned {
		t.Fatalf("expected room untouched, got phase=%s assigned=%t", room.Phase, room.PromptsAssigned)
	}
}

func TestTryStartCollectingDealsPromptsOnce(t *testing.T) {
	srv := newGameServer(t, 4)

	if err := srv.tryStartCollecting(); err != nil {
		t.Fatalf("start collecting: %v", err)
	}
	room := srv.store.View()
	if room.Phase != phaseCollecting || !room.PromptsAssigned {
		t.Fatalf("expected collecting with prompts assigned, got phase=%s assigned=%t", room.Phase, room.PromptsAssigned)
	}
	prompts := make(map[string]int)
	for _, player := range room.Players {
		if player.Prompt == "" {
			t.Fatalf("player %d has no prompt", player.TelegramID)
		}
		prompts[player.Prompt]++
	}
	if len(prompts) != 2 {
		t.Fatalf("expected 2 distinct prompts for 4 players, got %d", len(prompts))
	}

	if err := srv.tryStartCollecting(); err != nil {
		t.Fatalf("repeat trigger: %v", err)
	}
	again := srv.store.View()
	for i := range room.Players {
		if again.Players[i].Prompt != room.Players[i].Prompt {
			t.Fatalf("expected repeat trigger to leave prompts alone")
		}
	}
}

func TestTryFinishCollectingWaitsForEveryAnswer(t *testing.T) {
	srv := newGameServer(t, 4)
	if err := srv.tryStartCollecting(); err != nil {
		t.Fatalf("start collecting: %v", err)
	}

	for i := 1; i <= 3; i++ {
		if err := srv.store.RecordAnswer(int64(i), "answer"); err != nil {
			t.Fatalf("record answer: %v", err)
		}
	}
	srv.tryFinishCollecting()
	if room := srv.store.View(); room.Phase != phaseCollecting {
		t.Fatalf("expected collecting with 3/4 answered, got %s", room.Phase)
	}

	if err := srv.store.RecordAnswer(4, "answer"); err != nil {
		t.Fatalf("record answer: %v", err)
	}
	srv.tryFinishCollecting()
	room := srv.store.View()
	if room.Phase != phaseVoting {
		t.Fatalf("expected voting after last answer, got %s", room.Phase)
	}
	if room.RoundIndex != 1 {
		t.Fatalf("expected round cursor 1, got %d", room.RoundIndex)
	}
}

// Advancing to voting must happen exactly once: a re-delivered all-answered
// trigger after the transition neither moves the phase nor re-broadcasts the
// redirect.
func TestAllAnsweredTriggerFiresOnce(t *testing.T) {
	srv := New(nil, testConfig())
	ts := newTestServer(t, srv.Handler())
	t.Cleanup(ts.Close)

	for id := int64(1); id <= 4; id++ {
		connectPlayer(t, ts, id, "player")
	}
	if err := srv.tryStartCollecting(); err != nil {
		t.Fatalf("start collecting: %v", err)
	}

	playersConn := dialWS(t, ts, "/ws/players")
	if msg := readWSJSON(t, playersConn, 5*time.Second); msg["type"] != "init" {
		t.Fatalf("expected init event, got %v", msg["type"])
	}

	for id := int64(1); id <= 4; id++ {
		sendAnswer(t, ts, id, "answer")
	}
	if msg := readWSJSON(t, playersConn, 5*time.Second); msg["type"] != "redirect" {
		t.Fatalf("expected redirect broadcast, got %v", msg["type"])
	}
	after := srv.store.View()
	if after.Phase != phaseVoting || after.RoundIndex != 1 {
		t.Fatalf("expected voting round 1, got phase=%s round=%d", after.Phase, after.RoundIndex)
	}

	// Re-deliver the trigger directly and via a late answer rewrite.
	srv.tryFinishCollecting()
	sendAnswer(t, ts, 1, "edited answer")

	again := srv.store.View()
	if again.Phase != after.Phase || again.RoundIndex != after.RoundIndex {
		t.Fatalf("expected phase unchanged, got phase=%s round=%d", again.Phase, again.RoundIndex)
	}
	expectNoWSMessage(t, playersConn, 350*time.Millisecond)
}

func TestVotingRoundsWalkToResults(t *testing.T) {
	srv := newGameServer(t, 4)
	if err := srv.tryStartCollecting(); err != nil {
		t.Fatalf("start collecting: %v", err)
	}
	answerAll(t, srv)
	srv.tryFinishCollecting()

	voteOutRound(t, srv)
	room := srv.store.View()
	if room.Phase != phaseVoting || room.RoundIndex != 2 {
		t.Fatalf("expected voting round 2, got phase=%s round=%d", room.Phase, room.RoundIndex)
	}

	voteOutRound(t, srv)
	room = srv.store.View()
	if room.Phase != phaseResults {
		t.Fatalf("expected results after last round, got %s", room.Phase)
	}
}

func TestOddRosterSkipsUnplayableFinalRound(t *testing.T) {
	srv := newGameServer(t, 6)
	if err := srv.tryStartCollecting(); err != nil {
		t.Fatalf("start collecting: %v", err)
	}
	// Late fifth-wheel joins after the deal: the roster is odd but prompts
	// are already fixed, leaving the trailing player unpaired.
	srv.store.Register(7, "late")
	answerAll(t, srv)
	srv.tryFinishCollecting()

	for round := 1; round <= 3; round++ {
		room := srv.store.View()
		if room.Phase != phaseVoting {
			t.Fatalf("expected voting before round %d, got %s", round, room.Phase)
		}
		voteOutRound(t, srv)
	}

	if room := srv.store.View(); room.Phase != phaseResults {
		t.Fatalf("expected results once no pair remains, got %s", room.Phase)
	}
}

func TestResetGameOnlyFromResults(t *testing.T) {
	srv := newGameServer(t, 4)

	if err := srv.resetGame(); err == nil {
		t.Fatalf("expected reset rejected outside results")
	}

	forcePhase(t, srv, phaseResults)
	if err := srv.resetGame(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	room := srv.store.View()
	if room.Phase != phaseLobby {
		t.Fatalf("expected lobby after reset, got %s", room.Phase)
	}
	if len(room.Players) != 0 || room.PromptsAssigned || room.RoundIndex != 0 {
		t.Fatalf("expected clean room after reset, got %+v", room)
	}
}

func TestLeaderboardOrdersByVotesDescending(t *testing.T) {
	room := &Room{
		Players: []Player{
			{TelegramID: 1, Name: "Ada", Votes: 1},
			{TelegramID: 2, Name: "Grace", Votes: 3},
			{TelegramID: 3, Name: "Edsger", Votes: 1},
		},
	}
	entries := leaderboard(room)
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].TelegramID != 2 {
		t.Fatalf("expected top scorer first, got %d", entries[0].TelegramID)
	}
	if entries[1].TelegramID != 1 || entries[2].TelegramID != 3 {
		t.Fatalf("expected ties to keep insertion order, got %d then %d", entries[1].TelegramID, entries[2].TelegramID)
	}
}
