package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/janseva/constituency-admin/internal/auth"
	"github.com/janseva/constituency-admin/internal/config"
	"github.com/janseva/constituency-admin/internal/database"
	"github.com/janseva/constituency-admin/internal/rbac"
)

func main() {
	if len(os.Args) != 4 {
		fmt.Fprintf(os.Stderr, "Usage: %s <email> <password> <role>\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Example: %s office@example.org mypassword admin\n", os.Args[0])
		os.Exit(1)
	}

	email := os.Args[1]
	password := os.Args[2]
	roleName := os.Args[3]

	hash, err := auth.HashPassword(password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating hash: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.New(ctx, &cfg.Mongo)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close(context.Background())

	role, err := db.Roles().FindByName(ctx, rbac.NormalizeName(roleName))
	if err != nil {
		if errors.Is(err, rbac.ErrNotFound) {
			fmt.Fprintf(os.Stderr, "Role %q does not exist, run the seeder first\n", roleName)
		} else {
			fmt.Fprintf(os.Stderr, "Failed to load role: %v\n", err)
		}
		os.Exit(1)
	}

	user, err := rbac.NewUserService(db.Users(), db.Roles()).Create(ctx, rbac.UserSpec{
		Name:         email,
		Email:        email,
		PasswordHash: hash,
		RoleID:       role.ID,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create user: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("User created successfully: %s (%s)\n", user.Email, role.Name)
}
