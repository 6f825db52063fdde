package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5"
	"github.com/stemsi/assessment-backend/internal/config"
	"github.com/stemsi/assessment-backend/internal/database"
	"github.com/stemsi/assessment-backend/internal/logger"
	"github.com/stemsi/assessment-backend/internal/model"
	"github.com/stemsi/assessment-backend/internal/repository"
	"github.com/stemsi/assessment-backend/internal/service"
	"golang.org/x/term"
)

const minPasswordLength = 8

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	userRepo := repository.NewUserRepository(pool)
	authService := service.NewAuthService(cfg)

	// ─── CLI Input ─────────────────────────────────────────────────────
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("=== Create Test Taker ===")

	name := prompt(reader, "Name")
	if name == "" {
		fmt.Println("Error: name is required")
		os.Exit(1)
	}

	email := prompt(reader, "Email")
	if !strings.Contains(email, "@") {
		fmt.Println("Error: a valid email is required")
		os.Exit(1)
	}

	if _, err := userRepo.GetByEmail(ctx, email); err == nil {
		fmt.Printf("Error: %s is already registered\n", email)
		os.Exit(1)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		log.Fatal().Err(err).Msg("Failed to look up email")
	}

	fmt.Print("Password: ")
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		fmt.Println("Error: could not read password")
		os.Exit(1)
	}
	if len(raw) < minPasswordLength {
		fmt.Printf("Error: password must be at least %d characters\n", minPasswordLength)
		os.Exit(1)
	}

	// ─── Persist ───────────────────────────────────────────────────────
	hash, err := authService.HashPassword(string(raw))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to hash password")
	}

	user := &model.User{Name: name, Email: email, PasswordHash: hash}
	if err := userRepo.Create(ctx, user); err != nil {
		log.Fatal().Err(err).Msg("Failed to create user")
	}

	fmt.Printf("\nCreated user %q <%s> with ID %d\n", user.Name, user.Email, user.ID)
}

func prompt(reader *bufio.Reader, label string) string {
	fmt.Printf("%s: ", label)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}
