package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/murmur/murmur/internal/auth"
	"github.com/murmur/murmur/internal/repository"
	"github.com/murmur/murmur/internal/service"
)

type output struct {
	UserID    string     `json:"user_id"`
	Email     string     `json:"email"`
	Token     string     `json:"token"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// Issues a session token for an existing account, creating it first when
// -password is given and the email is unknown. Useful for smoke tests.
func main() {
	var (
		databaseURL = flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
		secret      = flag.String("jwt-secret", os.Getenv("JWT_SECRET"), "Token signing secret")
		userID      = flag.String("user-id", "", "User ID (takes precedence over -email)")
		email       = flag.String("email", "", "User email")
		password    = flag.String("password", "", "Create the account with this password if it does not exist")
		ttl         = flag.Duration("ttl", 24*time.Hour, "Token lifetime; 0 disables expiry")
		format      = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	if *databaseURL == "" || *secret == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL and JWT_SECRET are required")
		os.Exit(1)
	}
	if *userID == "" && *email == "" {
		fmt.Fprintln(os.Stderr, "one of -user-id or -email is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, err := repository.New(ctx, *databaseURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "connect database:", err)
		os.Exit(1)
	}
	defer repo.Close()

	tokens := auth.NewTokenService([]byte(*secret), *ttl)

	out, err := resolve(ctx, repo, tokens, *userID, *email, *password)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
	if *ttl > 0 {
		exp := time.Now().UTC().Add(*ttl)
		out.ExpiresAt = &exp
	}

	switch strings.ToLower(*format) {
	case "plain":
		fmt.Println(out.Token)
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
	default:
		fmt.Fprintln(os.Stderr, "invalid format; use plain or json")
		os.Exit(1)
	}
}

func resolve(ctx context.Context, repo *repository.Repository, tokens *auth.TokenService, userID, email, password string) (*output, error) {
	if userID != "" {
		user, err := repo.GetUserByID(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("lookup user %s: %w", userID, err)
		}
		return issue(tokens, user.ID, user.Email)
	}

	email = strings.ToLower(strings.TrimSpace(email))
	user, err := repo.GetUserByEmail(ctx, email)
	if err == nil {
		return issue(tokens, user.ID, user.Email)
	}
	if !errors.Is(err, repository.ErrUserNotFound) || password == "" {
		return nil, fmt.Errorf("lookup user %s: %w", email, err)
	}

	session, err := service.NewAccountService(repo, tokens, nil, nil).Signup(ctx, service.Credentials{
		Email:    email,
		Password: password,
	})
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &output{UserID: session.UserID, Email: email, Token: session.Token}, nil
}

func issue(tokens *auth.TokenService, userID, email string) (*output, error) {
	token, err := tokens.Issue(userID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &output{UserID: userID, Email: email, Token: token}, nil
}
