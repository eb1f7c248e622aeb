package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"

	webAdapter "pharmacy-ledger/internal/adapters/web"
	"pharmacy-ledger/internal/ai"
	"pharmacy-ledger/internal/app"
	"pharmacy-ledger/internal/db"
	"pharmacy-ledger/internal/gateway"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	ctx := context.Background()

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET environment variable not set")
	}

	users, err := parseUsers(os.Getenv("APP_USERS"))
	if err != nil {
		log.Fatalf("APP_USERS: %v", err)
	}

	var factory gateway.Factory
	if connStr := os.Getenv("DATABASE_URL"); connStr != "" {
		pool, err := db.NewPool(ctx, connStr)
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		defer pool.Close()
		factory = func(userID string) gateway.Gateway {
			return gateway.NewPostgres(pool, userID)
		}
	} else {
		log.Println("Warning: DATABASE_URL is not set, state will not survive a restart")
		factory = func(userID string) gateway.Gateway {
			return gateway.NewMemory()
		}
	}

	var extractor ai.ExtractorService
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		extractor = ai.NewExtractor(apiKey)
	} else {
		log.Println("Warning: OPENAI_API_KEY is not set, bill extraction disabled")
	}

	registry := app.NewRegistry(factory)

	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	handler := webAdapter.NewHandler(registry, extractor, users, allowedOrigins, jwtSecret)

	log.Printf("server starting on :%s", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("server: %v", err)
	}
}

// parseUsers parses APP_USERS, a comma-separated list of user:password
// pairs. Each username doubles as that shop's persistence namespace.
func parseUsers(s string) (map[string]string, error) {
	users := make(map[string]string)
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, pass, ok := strings.Cut(pair, ":")
		if !ok || name == "" || pass == "" {
			return nil, fmt.Errorf("malformed user:password pair %q", pair)
		}
		users[name] = pass
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("at least one user:password pair is required")
	}
	return users, nil
}
