// adminctl is the operator CLI: apply migrations, create accounts, manage
// application settings and prune the token blacklist without going through
// the HTTP API.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"

	"github.com/lifecourse/lifecourse/internal/cryptox"
	"github.com/lifecourse/lifecourse/internal/logging"
	"github.com/lifecourse/lifecourse/internal/server/auth"
	"github.com/lifecourse/lifecourse/internal/server/config"
	"github.com/lifecourse/lifecourse/internal/server/models"
	"github.com/lifecourse/lifecourse/internal/server/repositories/repomanager"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const usage = `usage: adminctl <command> [flags]

commands:
  migrate          apply pending database migrations
  create-user      create an account (prompts for the password)
  set-setting      store an application setting
  cleanup-tokens   delete expired blacklist entries
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return errors.New("command required")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	ctx := context.Background()
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("db ping error: %w", err)
	}

	cipher, err := cryptox.New(cryptox.KeyFromSecret(ctx, cfg.EncryptionKey, logger), logger)
	if err != nil {
		return fmt.Errorf("cipher init error: %w", err)
	}
	repos := repomanager.NewPostgresRepositoryManager(cipher)

	switch args[0] {
	case "migrate":
		return cmdMigrate(ctx, repos, db)
	case "create-user":
		return cmdCreateUser(ctx, repos, db, args[1:])
	case "set-setting":
		return cmdSetSetting(ctx, repos, db, args[1:])
	case "cleanup-tokens":
		return cmdCleanupTokens(ctx, repos, db)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func cmdMigrate(ctx context.Context, repos *repomanager.PostgresRepositoryManager, db *sql.DB) error {
	if err := repos.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}
	fmt.Println("migrations applied")
	return nil
}

func cmdCreateUser(ctx context.Context, repos *repomanager.PostgresRepositoryManager, db *sql.DB, args []string) error {
	fs := flag.NewFlagSet("create-user", flag.ContinueOnError)
	username := fs.String("username", "", "login name")
	role := fs.String("role", auth.RoleInstructor, "account role")
	orgID := fs.Int64("org", 0, "organization id (0 for none)")
	orgName := fs.String("org-name", "", "organization display name")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *username == "" {
		return errors.New("-username is required")
	}
	if !auth.ValidRole(*role) {
		return fmt.Errorf("unknown role %q", *role)
	}

	password, err := promptPassword()
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword(password, bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash error: %w", err)
	}

	user := &models.User{
		Username:     *username,
		PasswordHash: string(hash),
		Role:         *role,
		IsActive:     true,
	}
	if *orgID > 0 {
		user.OrganizationID = orgID
	}
	if *orgName != "" {
		user.OrganizationName = orgName
	}

	created, err := repos.Users(db).Create(ctx, user)
	if err != nil {
		return fmt.Errorf("create user error: %w", err)
	}
	fmt.Printf("created user %d (%s, %s)\n", created.ID, created.Username, created.Role)
	return nil
}

func promptPassword() ([]byte, error) {
	fmt.Println("Enter password")
	first, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return nil, err
	}
	fmt.Println("Repeat password")
	second, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return nil, err
	}
	if string(first) != string(second) {
		return nil, errors.New("passwords do not match")
	}
	if len(first) < 8 {
		return nil, errors.New("password must be at least 8 characters")
	}
	return first, nil
}

func cmdSetSetting(ctx context.Context, repos *repomanager.PostgresRepositoryManager, db *sql.DB, args []string) error {
	fs := flag.NewFlagSet("set-setting", flag.ContinueOnError)
	key := fs.String("key", "", "setting key")
	value := fs.String("value", "", "setting value")
	sensitive := fs.Bool("sensitive", false, "encrypt the value at rest")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *key == "" {
		return errors.New("-key is required")
	}

	if err := repos.Settings(db).Set(ctx, *key, *value, *sensitive); err != nil {
		return fmt.Errorf("set setting error: %w", err)
	}
	fmt.Printf("setting %q stored (sensitive=%v)\n", *key, *sensitive)
	return nil
}

func cmdCleanupTokens(ctx context.Context, repos *repomanager.PostgresRepositoryManager, db *sql.DB) error {
	deleted, err := repos.Blacklist(db).CleanupExpired(ctx, time.Now())
	if err != nil {
		return fmt.Errorf("cleanup error: %w", err)
	}
	fmt.Printf("deleted %d expired blacklist entries\n", deleted)
	return nil
}
