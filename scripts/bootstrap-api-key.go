package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/foodgram/foodgram/internal/auth"
	"github.com/foodgram/foodgram/internal/model"
	"github.com/foodgram/foodgram/internal/repository"
	"github.com/foodgram/foodgram/internal/service"
)

type output struct {
	UserID    int64    `json:"user_id"`
	Username  string   `json:"username"`
	Email     string   `json:"email"`
	KeyID     string   `json:"key_id"`
	Key       string   `json:"key"`
	KeyPrefix string   `json:"key_prefix"`
	Scopes    []string `json:"scopes"`
}

func main() {
	var (
		databaseURL = flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
		username    = flag.String("username", "admin", "Username of the account to create")
		email       = flag.String("email", "admin@foodgram.local", "Email of the account to create")
		scopesInput = flag.String("scopes", "admin", "Comma-separated scopes (read,write,admin)")
		format      = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	if *databaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}

	scopes, err := parseScopes(*scopesInput)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, err := repository.New(ctx, *databaseURL, repository.PoolConfig{MaxConns: 2, MinConns: 1})
	if err != nil {
		fmt.Fprintln(os.Stderr, "connect database:", err)
		os.Exit(1)
	}
	defer repo.Close()

	// Bootstrap keys skip rate limiting.
	issuer := func(userID int64, scopes []string, name string) (*model.APIKey, string, error) {
		key, plaintext, err := auth.IssueAPIKey(auth.EnvLive, userID, scopes, "bootstrap")
		if err != nil {
			return nil, "", err
		}
		key.RateLimitTier = model.TierUnlimited
		return key, plaintext, nil
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	users := service.NewUserService(repo, issuer, logger)

	reg, err := users.Register(ctx, service.RegisterInput{
		Username:  *username,
		Email:     *email,
		FirstName: "Foodgram",
		LastName:  "Admin",
		Scopes:    scopes,
	})
	if err != nil {
		if errors.Is(err, service.ErrUsernameTaken) || errors.Is(err, service.ErrEmailTaken) {
			fmt.Fprintln(os.Stderr, "account already exists; pick another -username and -email")
		} else {
			fmt.Fprintln(os.Stderr, "register admin:", err)
		}
		os.Exit(1)
	}

	out := output{
		UserID:    reg.User.ID,
		Username:  reg.User.Username,
		Email:     reg.User.Email,
		KeyID:     reg.Key.ID,
		Key:       reg.Plaintext,
		KeyPrefix: reg.Key.KeyPrefix,
		Scopes:    reg.Key.Scopes,
	}

	switch strings.ToLower(*format) {
	case "plain":
		fmt.Println(out.Key)
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
	default:
		fmt.Fprintln(os.Stderr, "invalid format; use plain or json")
		os.Exit(1)
	}
}

// parseScopes splits a comma list, defaulting to admin when it is empty.
func parseScopes(input string) ([]string, error) {
	scopes := strings.FieldsFunc(input, func(r rune) bool { return r == ',' || r == ' ' })
	if len(scopes) == 0 {
		return []string{model.ScopeAdmin}, nil
	}
	for _, scope := range scopes {
		if !slices.Contains(model.ValidScopes, scope) {
			return nil, fmt.Errorf("invalid scope %q (want read, write or admin)", scope)
		}
	}
	slices.Sort(scopes)
	return slices.Compact(scopes), nil
}
