package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/forgo/bookshelf/internal/access"
	"github.com/forgo/bookshelf/internal/config"
	"github.com/forgo/bookshelf/internal/database"
	"github.com/forgo/bookshelf/internal/repository"
	"github.com/forgo/bookshelf/internal/service"
	"github.com/forgo/bookshelf/pkg/jwt"
)

const usage = `Usage: bookshelf-admin <command> [flags]

Commands:
  genkeys   Generate the RSA key pair used to sign API tokens
  token     Sign an API access token
  groups    List the permission groups of the groups file
  grant     Replace the groups of a user
  migrate   Apply the SurrealDB schema migrations
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fail("loading config", err)
	}

	args := os.Args[2:]
	switch os.Args[1] {
	case "genkeys":
		err = genKeys(cfg, args)
	case "token":
		err = signToken(cfg, args)
	case "groups":
		err = listGroups(cfg, args)
	case "grant":
		err = grant(cfg, args)
	case "migrate":
		err = migrate(cfg, args)
	case "-h", "--help", "help":
		fmt.Print(usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", os.Args[1], usage)
		os.Exit(2)
	}
	if err != nil {
		fail(os.Args[1], err)
	}
}

func fail(what string, err error) {
	fmt.Fprintf(os.Stderr, "Error %s: %v\n", what, err)
	os.Exit(1)
}

func genKeys(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("genkeys", flag.ExitOnError)
	privateKeyPath := fs.String("private", cfg.JWT.PrivateKeyPath, "Path of the private key")
	publicKeyPath := fs.String("public", cfg.JWT.PublicKeyPath, "Path of the public key")
	force := fs.Bool("force", false, "Overwrite existing keys")
	_ = fs.Parse(args)

	if !*force {
		if _, err := os.Stat(*privateKeyPath); err == nil {
			return fmt.Errorf("%s exists, pass -force to overwrite", *privateKeyPath)
		}
	}
	for _, p := range []string{*privateKeyPath, *publicKeyPath} {
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return err
		}
	}
	if err := jwt.GenerateKeyPair(*privateKeyPath, *publicKeyPath); err != nil {
		return err
	}

	fmt.Printf("Wrote %s and %s\n", *privateKeyPath, *publicKeyPath)
	return nil
}

func signToken(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("token", flag.ExitOnError)
	userID := fs.String("user", "user:admin", "User ID for the token")
	username := fs.String("username", "admin", "Username for the token")
	groups := fs.String("groups", access.RoleAdmins, "Comma separated groups")
	expMins := fs.Int("exp", 60*24*7, "Token expiration in minutes (default: 7 days)")
	outputJSON := fs.Bool("json", false, "Output as JSON")
	_ = fs.Parse(args)

	jwtService, err := jwt.NewService(jwt.Config{
		PrivateKeyPath: cfg.JWT.PrivateKeyPath,
		Issuer:         cfg.JWT.Issuer,
		ExpirationMins: *expMins,
	})
	if err != nil {
		return fmt.Errorf("%w (generate keys with: bookshelf-admin genkeys)", err)
	}

	claims := jwt.Claims{
		UserID:   *userID,
		Username: *username,
		Groups:   splitGroups(*groups),
	}
	token, err := jwtService.Sign(claims)
	if err != nil {
		return err
	}

	if *outputJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"access_token": token,
			"token_type":   "Bearer",
			"expires_in":   *expMins * 60,
			"user_id":      *userID,
			"groups":       claims.Groups,
		})
	}

	expTime := time.Now().Add(time.Duration(*expMins) * time.Minute)
	fmt.Println("Access Token Generated")
	fmt.Println("======================")
	fmt.Printf("User ID:  %s\n", *userID)
	fmt.Printf("Groups:   %s\n", strings.Join(claims.Groups, ", "))
	fmt.Printf("Expires:  %s\n", expTime.Format(time.RFC3339))
	fmt.Println()
	fmt.Println(token)
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Printf("  curl -H 'Authorization: Bearer %s...' %s/v1/books\n", token[:min(len(token), 40)], cfg.Server.BaseURL)
	return nil
}

func listGroups(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("groups", flag.ExitOnError)
	path := fs.String("file", cfg.Access.GroupsFile, "Groups file")
	_ = fs.Parse(args)

	gate, err := access.LoadGroups(*path)
	if err != nil {
		return err
	}
	for _, role := range gate.Roles() {
		fmt.Printf("%-10s %-40s %s\n", role.Name, role.Permissions, role.Description)
	}
	return nil
}

func grant(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("grant", flag.ExitOnError)
	username := fs.String("username", "", "Account to update")
	groups := fs.String("groups", "", "Comma separated groups, empty revokes all")
	_ = fs.Parse(args)

	if *username == "" {
		return errors.New("-username is required")
	}

	gate, err := access.LoadGroups(cfg.Access.GroupsFile)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	db, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	users := repository.NewUserRepository(db)
	user, err := users.GetByUsername(ctx, *username)
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("no user named %q", *username)
	}

	auth := service.NewAuthService(service.AuthServiceConfig{UserRepo: users, Gate: gate})
	user, err = auth.SetGroups(ctx, user.ID, splitGroups(*groups))
	if err != nil {
		return err
	}

	fmt.Printf("%s is now in: %s\n", user.Username, strings.Join(user.Groups, ", "))
	return nil
}

func migrate(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("migrate", flag.ExitOnError)
	dir := fs.String("dir", "./migrations", "Directory of .surql files")
	_ = fs.Parse(args)

	migrations, err := database.LoadMigrations(os.DirFS(*dir))
	if err != nil {
		return err
	}
	if len(migrations) == 0 {
		return fmt.Errorf("no migrations in %s", *dir)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	db, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if err := database.Migrate(ctx, db, migrations); err != nil {
		return err
	}
	for _, m := range migrations {
		fmt.Printf("applied %s\n", m.Name)
	}
	return nil
}

func connect(ctx context.Context, cfg *config.Config) (*database.SurrealDB, error) {
	db := database.NewSurrealDB(database.Config{
		Host:      cfg.Database.Host,
		Port:      cfg.Database.Port,
		User:      cfg.Database.User,
		Password:  cfg.Database.Password,
		Namespace: cfg.Database.Namespace,
		Database:  cfg.Database.Database,
	})
	if err := db.Connect(ctx); err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	return db, nil
}

func splitGroups(s string) []string {
	var out []string
	for _, g := range strings.Split(s, ",") {
		if g = strings.TrimSpace(g); g != "" {
			out = append(out, g)
		}
	}
	return out
}
