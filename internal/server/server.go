package server

import (
	"net/http"
	"sync"
	"time"

	"prompt-party/internal/config"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"
)

type Server struct {
	store       *Store
	db          *gorm.DB
	hub         *hub
	cfg         config.Config
	timerMu     sync.Mutex
	answerTimer *time.Timer
}

func New(conn *gorm.DB, cfg config.Config) *Server {
	return &Server{
		store: NewStore(),
		db:    conn,
		hub:   newHub(),
		cfg:   cfg,
	}
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Post("/api/connect", s.handleConnect)
	r.Post("/api/answer", s.handleAnswer)
	r.Post("/api/vote", s.handleVote)
	r.Get("/api/prompt", s.handlePrompt)
	r.Get("/api/count", s.handleCount)
	r.Get("/api/results", s.handleResults)
	r.Post("/api/reset", s.handleReset)
	r.Get("/ws/players", s.handlePlayersWS)
	r.Get("/ws/bot", s.handleBotWS)
	r.Get("/healthz", s.handleHealthz)
	return r
}
