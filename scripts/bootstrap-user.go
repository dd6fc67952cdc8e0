// Command bootstrap-user creates a CRM user directly in MongoDB. There is
// no signup endpoint; team accounts are provisioned with this script.
//
// Usage:
//
//	go run scripts/bootstrap-user.go -username tmis.priya -email priya@example.com -password secret
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/businessguru/crm/internal/auth"
	"github.com/businessguru/crm/internal/model"
	"github.com/businessguru/crm/internal/repository"
)

type output struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

func main() {
	var (
		mongoURI = flag.String("mongo-uri", os.Getenv("MONGODB_URI"), "MongoDB connection string")
		database = flag.String("database", envOr("MONGODB_DATABASE", "business_guru"), "Database name")
		username = flag.String("username", "", "Username (tmis. prefix marks a team member)")
		email    = flag.String("email", "", "User email")
		password = flag.String("password", "", "Password")
		role     = flag.String("role", model.RoleUser, "Role: admin or user")
		format   = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	if *mongoURI == "" {
		fmt.Fprintln(os.Stderr, "MONGODB_URI is required")
		os.Exit(1)
	}
	if *username == "" || *email == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "-username, -email and -password are required")
		os.Exit(1)
	}
	if *role != model.RoleAdmin && *role != model.RoleUser {
		fmt.Fprintf(os.Stderr, "unknown role %q\n", *role)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	repo, err := repository.New(ctx, *mongoURI, *database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect to MongoDB: %v\n", err)
		os.Exit(1)
	}
	defer repo.Close(context.Background())

	if existing, err := repo.FindUserByUsername(ctx, *username); err == nil {
		fmt.Fprintf(os.Stderr, "user %s already exists (%s)\n", existing.Username, existing.ID.Hex())
		os.Exit(1)
	}

	hash, err := auth.HashPassword(*password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hash password: %v\n", err)
		os.Exit(1)
	}

	user := &model.User{
		Username:     *username,
		Email:        *email,
		PasswordHash: hash,
		Role:         *role,
	}
	if err := repo.CreateUser(ctx, user); err != nil {
		fmt.Fprintf(os.Stderr, "create user: %v\n", err)
		os.Exit(1)
	}

	if *format == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(output{
			UserID:   user.ID.Hex(),
			Username: user.Username,
			Email:    user.Email,
			Role:     user.Role,
		})
		return
	}

	fmt.Printf("created user %s (%s) with role %s\n", user.Username, user.ID.Hex(), user.Role)
	if user.IsTeamMember() {
		fmt.Println("user will receive team notification email")
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
