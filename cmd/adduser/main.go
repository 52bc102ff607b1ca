// Create a user for logging in to the portfolio tracker
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/dense-analysis/stockwarp/internal/config"
	"github.com/dense-analysis/stockwarp/internal/database"
	"github.com/dense-analysis/stockwarp/internal/model"
	"github.com/dense-analysis/stockwarp/internal/store"
	"golang.org/x/crypto/bcrypt"
)

const passwordCost = 14

// newUser hashes the password for a new user.
func newUser(args []string, cost int) (model.User, error) {
	if len(args) < 2 || len(args) > 3 {
		return model.User{}, fmt.Errorf("usage: adduser <username> <password> [email]")
	}

	username := strings.TrimSpace(args[0])

	if username == "" {
		return model.User{}, fmt.Errorf("username must not be blank")
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(args[1]), cost)

	if err != nil {
		return model.User{}, fmt.Errorf("password hashing error: %w", err)
	}

	user := model.User{Username: username, PasswordHash: string(passwordHash)}

	if len(args) == 3 {
		user.Email = strings.TrimSpace(args[2])
	}

	return user, nil
}

func main() {
	user, err := newUser(os.Args[1:], passwordCost)

	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %s\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	conn, err := database.Connect(ctx, cfg.Database)

	if err != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %s\n", err)
		os.Exit(1)
	}

	defer conn.Close()

	if err := store.NewSQL(conn).CreateUser(ctx, &user); err != nil {
		fmt.Fprintf(os.Stderr, "Query error: %s\n", err)
		os.Exit(1)
	}

	fmt.Printf("Created user %s with ID %d\n", user.Username, user.ID)
}
