package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/janseva/constituency-admin/internal/auth"
	"github.com/janseva/constituency-admin/internal/catalog"
	"github.com/janseva/constituency-admin/internal/config"
	"github.com/janseva/constituency-admin/internal/database"
	"github.com/janseva/constituency-admin/internal/rbac"
	"github.com/janseva/constituency-admin/internal/sidebar"
	"github.com/redis/go-redis/v9"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	if len(os.Args) < 2 {
		printUsage()
		return errors.New("command required")
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "seed":
		return seedCommand(args)
	case "nuke":
		return nukeCommand(args)
	case "help", "--help", "-h":
		printUsage()
		return nil
	default:
		printUsage()
		return fmt.Errorf("unknown command: %s", command)
	}
}

func seedCommand(args []string) error {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)
	file := fs.String("file", "", "Catalog YAML to seed from (default: embedded catalog)")
	dryRun := fs.Bool("dry-run", false, "Validate the catalog without making database changes")
	adminEmail := fs.String("admin-email", os.Getenv("SEED_ADMIN_EMAIL"), "Bootstrap superadmin email")
	adminPassword := fs.String("admin-password", os.Getenv("SEED_ADMIN_PASSWORD"), "Bootstrap superadmin password")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}

	cat, err := loadCatalog(*file)
	if err != nil {
		return err
	}

	if *dryRun {
		fmt.Println("dry run: validating catalog")
		fmt.Printf("  Permissions: %d\n", len(cat.Permissions))
		fmt.Printf("  Roles: %d\n", len(cat.Roles))
		fmt.Printf("  Samiti types: %d\n", len(cat.SamitiTypes))
		fmt.Println("catalog is valid")
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := database.New(ctx, &cfg.Mongo)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer db.Close(context.Background())

	if err := db.EnsureIndexes(ctx); err != nil {
		return err
	}

	res, err := cat.Seed(ctx, db.Permissions(), db.Roles(), time.Now())
	if err != nil {
		return err
	}
	fmt.Printf("seeded %d permissions and %d roles\n", res.Permissions, res.Roles)

	if *adminEmail != "" {
		if err := ensureAdmin(ctx, db, *adminEmail, *adminPassword); err != nil {
			return err
		}
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	projection := sidebar.NewService(db.Roles(), db.SidebarAccess(), sidebar.NewRedisCache(redisClient, cfg.Sidebar.CacheTTL))
	if err := projection.Rebuild(ctx); err != nil {
		return fmt.Errorf("rebuilding sidebar access: %w", err)
	}

	fmt.Println("seeding completed")
	return nil
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return catalog.Parse(data)
}

// ensureAdmin creates the bootstrap superadmin unless the email is taken.
func ensureAdmin(ctx context.Context, db *database.Database, email, password string) error {
	role, err := db.Roles().FindByName(ctx, rbac.RoleSuperAdmin)
	if err != nil {
		return fmt.Errorf("loading %s role: %w", rbac.RoleSuperAdmin, err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}

	users := rbac.NewUserService(db.Users(), db.Roles())
	user, err := users.Create(ctx, rbac.UserSpec{
		Name:         "Super Admin",
		Email:        email,
		PasswordHash: hash,
		RoleID:       role.ID,
	})
	if errors.Is(err, rbac.ErrConflict) {
		fmt.Printf("admin %s already exists, skipping\n", email)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to create admin %s: %w", email, err)
	}
	fmt.Printf("created admin: %s\n", user.Email)
	return nil
}

func nukeCommand(args []string) error {
	fs := flag.NewFlagSet("nuke", flag.ExitOnError)
	force := fs.Bool("force", false, "Skip confirmation prompt")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("failed to parse flags: %w", err)
	}

	if !*force && !confirmNuke() {
		fmt.Println("operation cancelled")
		return nil
	}

	return nukeDatabase()
}

func nukeDatabase() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := database.New(ctx, &cfg.Mongo)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer db.Close(context.Background())

	fmt.Printf("dropping database %s...\n", cfg.Mongo.Database)
	if err := db.DB().Drop(ctx); err != nil {
		return fmt.Errorf("failed to drop database: %w", err)
	}
	fmt.Println("database dropped - ready for seeding")
	return nil
}

func confirmNuke() bool {
	fmt.Print("warning: this will delete all data from the database. are you sure? (yes/no): ")
	var response string
	if _, err := fmt.Scanln(&response); err != nil {
		return false
	}
	return strings.ToLower(strings.TrimSpace(response)) == "yes"
}

func printUsage() {
	fmt.Println("Seeder Tool - catalog seeding utility for the constituency admin backend")
	fmt.Println()
	fmt.Println("USAGE:")
	fmt.Println("  seeder <command> [flags]")
	fmt.Println()
	fmt.Println("COMMANDS:")
	fmt.Println("  seed        Upsert permissions and roles from the catalog")
	fmt.Println("  nuke        Drop the whole database")
	fmt.Println("  help        Show this help message")
	fmt.Println()
	fmt.Println("SEED FLAGS:")
	fmt.Println("  --file            Catalog YAML (default: embedded catalog)")
	fmt.Println("  --dry-run         Validate the catalog without making database changes")
	fmt.Println("  --admin-email     Bootstrap superadmin email (env SEED_ADMIN_EMAIL)")
	fmt.Println("  --admin-password  Bootstrap superadmin password (env SEED_ADMIN_PASSWORD)")
	fmt.Println()
	fmt.Println("NUKE FLAGS:")
	fmt.Println("  --force     Skip confirmation prompt")
	fmt.Println()
	fmt.Println("EXAMPLES:")
	fmt.Println("  seeder seed")
	fmt.Println("  seeder seed --file catalog.yaml --dry-run")
	fmt.Println("  seeder seed --admin-email mla@example.org --admin-password change-me-now")
	fmt.Println("  seeder nuke --force")
}
