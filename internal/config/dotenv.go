package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads environment variables from a .env file if present.
// Existing environment variables are not overwritten.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

type Config struct {
	MinPlayers               int
	PromptWaitSeconds        int
	PromptPollMillis         int
	AnswerTimeoutSeconds     int
	VoteRedirectURL          string
	ResultsRedirectURL       string
	LobbyRedirectURL         string
	DBMaxOpenConns           int
	DBMaxIdleConns           int
	DBConnMaxLifetimeSeconds int
	DBConnMaxIdleTimeSeconds int
}

func Default() Config {
	return Config{
		MinPlayers:               4,
		PromptWaitSeconds:        25,
		PromptPollMillis:         250,
		AnswerTimeoutSeconds:     0,
		VoteRedirectURL:          "/game/vote/",
		ResultsRedirectURL:       "/game/results/",
		LobbyRedirectURL:         "/game/",
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           10,
		DBConnMaxLifetimeSeconds: 300,
		DBConnMaxIdleTimeSeconds: 60,
	}
}

func Load() Config {
	cfg := Default()
	if raw := os.Getenv("MIN_PLAYERS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 1 {
			cfg.MinPlayers = value
		}
	}
	if raw := os.Getenv("PROMPT_WAIT_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.PromptWaitSeconds = value
		}
	}
	if raw := os.Getenv("PROMPT_POLL_MILLIS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.PromptPollMillis = value
		}
	}
	if raw := os.Getenv("ANSWER_TIMEOUT_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value >= 0 {
			cfg.AnswerTimeoutSeconds = value
		}
	}
	if raw := os.Getenv("VOTE_REDIRECT_URL"); raw != "" {
		cfg.VoteRedirectURL = raw
	}
	if raw := os.Getenv("RESULTS_REDIRECT_URL"); raw != "" {
		cfg.ResultsRedirectURL = raw
	}
	if raw := os.Getenv("LOBBY_REDIRECT_URL"); raw != "" {
		cfg.LobbyRedirectURL = raw
	}
	if raw := os.Getenv("DB_MAX_OPEN_CONNS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBMaxOpenConns = value
		}
	}
	if raw := os.Getenv("DB_MAX_IDLE_CONNS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBMaxIdleConns = value
		}
	}
	if raw := os.Getenv("DB_CONN_MAX_LIFETIME_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBConnMaxLifetimeSeconds = value
		}
	}
	if raw := os.Getenv("DB_CONN_MAX_IDLE_SECONDS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.DBConnMaxIdleTimeSeconds = value
		}
	}
	return cfg
}
