// Command seed creates the initial administrative user. The password comes
// from -password, SEED_PASSWORD, or an interactive prompt, in that order.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"syscall"
	"time"

	"github.com/google/uuid"
	"golang.org/x/term"

	"github.com/minigate/minigate/internal/config"
	"github.com/minigate/minigate/internal/models"
	"github.com/minigate/minigate/internal/server/storage"
	"github.com/minigate/minigate/internal/server/storage/sqlite"
	"github.com/minigate/minigate/internal/token"
	"github.com/minigate/minigate/internal/validation"
)

func main() {
	username := flag.String("username", "admin", "Username of the seeded user")
	password := flag.String("password", "", "Password of the seeded user (prefer SEED_PASSWORD or the prompt)")
	flag.Parse()

	if err := run(*username, *password); err != nil {
		fmt.Fprintf(os.Stderr, "seed: %v\n", err)
		os.Exit(1)
	}
}

func run(username, password string) error {
	if err := validation.ValidateUsername(username); err != nil {
		return err
	}

	if password == "" {
		password = os.Getenv("SEED_PASSWORD")
	}
	if password == "" {
		var err error
		password, err = promptPassword()
		if err != nil {
			return err
		}
	}
	if password == "" {
		return errors.New("password cannot be empty")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	ctx := context.Background()

	store, err := sqlite.New(ctx, cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	defer store.Close()

	tokens := token.NewService(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL, cfg.BcryptCost)

	passwordHash, err := tokens.HashPassword(password)
	if err != nil {
		return err
	}

	user := &models.User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}

	if err := store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrUserAlreadyExists) {
			fmt.Printf("user %q already exists, nothing to do\n", username)
			return nil
		}
		return fmt.Errorf("create user: %w", err)
	}

	fmt.Printf("user %q seeded\n", username)
	return nil
}

func promptPassword() (string, error) {
	fmt.Print("Password: ")
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(raw), nil
}
