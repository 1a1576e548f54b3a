package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/Pankajjr12/snapnest-api/internal/auth"
	"github.com/Pankajjr12/snapnest-api/internal/database"
	"github.com/Pankajjr12/snapnest-api/internal/models"
)

// Set via -ldflags at build time.
var version = "dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "migrate":
		if hasFlag("--help", os.Args[2:]) {
			fmt.Println("Usage: snapnest-cli migrate")
			fmt.Println()
			fmt.Println("Apply the embedded database migrations.")
			fmt.Println()
			fmt.Println("Environment:")
			fmt.Println("  DATABASE_URL  PostgreSQL connection string (required)")
			return
		}
		os.Exit(runMigrate())
	case "seed":
		if hasFlag("--help", os.Args[2:]) {
			fmt.Println("Usage: snapnest-cli seed")
			fmt.Println()
			fmt.Println("Seed the database with demo data: 2 users where bob follows alice.")
			fmt.Println()
			fmt.Println("Environment:")
			fmt.Println("  DATABASE_URL  PostgreSQL connection string (required)")
			return
		}
		os.Exit(runSeed())
	case "health":
		if hasFlag("--help", os.Args[2:]) {
			fmt.Println("Usage: snapnest-cli health")
			fmt.Println()
			fmt.Println("Check if the snapnest server and its dependencies are up.")
			fmt.Println()
			fmt.Println("Environment:")
			fmt.Println("  SERVER_URL  Server base URL (default: http://localhost:3000)")
			return
		}
		os.Exit(runHealth())
	case "version":
		fmt.Printf("snapnest-cli %s\n", version)
	case "--help", "-h", "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: snapnest-cli <command> [flags]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  migrate  Run database migrations")
	fmt.Println("  seed     Seed demo users and a follow")
	fmt.Println("  health   Check if the server is running")
	fmt.Println("  version  Print version info")
	fmt.Println()
	fmt.Println("Run 'snapnest-cli <command> --help' for details on a command.")
}

func hasFlag(flag string, args []string) bool {
	for _, a := range args {
		if a == flag {
			return true
		}
	}
	return false
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		fmt.Fprintf(os.Stderr, "error: %s environment variable is required\n", key)
		os.Exit(1)
	}
	return v
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// --- migrate ---

func runMigrate() int {
	dbURL := requireEnv("DATABASE_URL")

	fmt.Println("running migrations...")
	v, err := database.Migrate(dbURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	fmt.Printf("schema at version %d\n", v)
	return 0
}

// --- seed ---

type demoUser struct {
	username, displayName, email, password string
}

var demoUsers = []demoUser{
	{"alice", "Alice", "alice@example.com", "password123"},
	{"bob", "Bob", "bob@example.com", "password456"},
}

func runSeed() int {
	dbURL := requireEnv("DATABASE_URL")
	ctx := context.Background()

	fmt.Println("connecting to database...")
	pool, err := database.NewPostgresPool(ctx, dbURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	defer pool.Close()

	users := database.NewUserRepository(pool)
	follows := database.NewFollowRepository(pool)

	hasher, err := auth.NewHasher(auth.DefaultParams)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: creating hasher: %v\n", err)
		return 1
	}

	fmt.Println("creating users...")
	ids := make([]int64, len(demoUsers))
	for i, du := range demoUsers {
		existing, err := users.GetByUsername(ctx, du.username)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: looking up %s: %v\n", du.username, err)
			return 1
		}
		if existing != nil {
			fmt.Printf("  %s already exists\n", du.username)
			ids[i] = existing.ID
			continue
		}

		hash, err := hasher.Hash(du.password)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: hashing password: %v\n", err)
			return 1
		}
		u := &models.User{
			Username:     du.username,
			DisplayName:  du.displayName,
			Email:        du.email,
			PasswordHash: hash,
		}
		if err := users.Create(ctx, u); err != nil {
			fmt.Fprintf(os.Stderr, "error: creating %s: %v\n", du.username, err)
			return 1
		}
		ids[i] = u.ID
	}

	fmt.Println("creating follow...")
	if _, err := follows.Create(ctx, ids[1], ids[0]); err != nil {
		fmt.Fprintf(os.Stderr, "error: creating follow: %v\n", err)
		return 1
	}

	fmt.Println()
	fmt.Println("seed complete:")
	fmt.Printf("  users:   alice (password: password123), bob (password: password456)\n")
	fmt.Printf("  follows: bob -> alice\n")
	return 0
}

// --- health ---

func runHealth() int {
	serverURL := envOr("SERVER_URL", "http://localhost:3000")
	url := serverURL + "/health"

	fmt.Printf("checking %s ...\n", url)

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	defer resp.Body.Close()

	var health struct {
		Status  string `json:"status"`
		Failing string `json:"failing"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		fmt.Fprintf(os.Stderr, "error: decoding health response (HTTP %d): %v\n", resp.StatusCode, err)
		return 1
	}

	if resp.StatusCode == http.StatusOK {
		fmt.Printf("server is healthy (%s)\n", health.Status)
		return 0
	}
	if health.Failing != "" {
		fmt.Fprintf(os.Stderr, "dependency down: %s\n", health.Failing)
	}
	fmt.Fprintf(os.Stderr, "server returned HTTP %d\n", resp.StatusCode)
	return 1
}
