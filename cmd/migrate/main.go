package main

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/joho/godotenv"

	"pharmacy-ledger/internal/db"
)

// Applies every .sql file under migrations/ in lexical order. The files
// are written to be idempotent (CREATE TABLE IF NOT EXISTS), so rerunning
// is safe.
func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	pool, err := db.NewPool(ctx, os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer pool.Close()

	files, err := filepath.Glob("migrations/*.sql")
	if err != nil {
		log.Fatalf("list migrations: %v", err)
	}
	sort.Strings(files)

	for _, f := range files {
		sql, err := os.ReadFile(f)
		if err != nil {
			log.Fatalf("read %s: %v", f, err)
		}
		if _, err := pool.Exec(ctx, string(sql)); err != nil {
			log.Fatalf("apply %s: %v", f, err)
		}
		log.Printf("applied %s", f)
	}
	log.Println("migrations complete")
}
