package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/term"

	"factory_inventory/internal/auth"
	"factory_inventory/internal/config"
	"factory_inventory/internal/security"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.LoadConfig(logger)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := config.NewPool(config.DBConfigFrom(cfg.Database, logger))
	if err != nil {
		fmt.Println("Failed to connect to database:", err)
		return
	}
	defer db.Close()

	ownerExists, err := checkOwnerExists(db)
	if err != nil {
		fmt.Println("Failed to check for existing owner:", err)
		return
	}
	if ownerExists {
		fmt.Println("An owner account already exists. Exiting.")
		return
	}

	// simple cli to bootstrap the first owner account
	reader := bufio.NewScanner(os.Stdin)
	var name, email, password string

	fmt.Println("Initiating owner account creation")

	fmt.Println("Enter name:")
	reader.Scan()
	name = reader.Text()

	fmt.Println("Enter email:")
	reader.Scan()
	email = reader.Text()

	fmt.Println("Enter password:")
	passwordBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		fmt.Println("Failed to read password:", err)
		return
	}
	password = string(passwordBytes)
	fmt.Println() // Print newline after password input

	hashedPassword, err := security.HashPassword(password, cfg.Auth.BcryptCost)
	if err != nil {
		fmt.Println("Failed to hash password:", err)
		return
	}

	sql := `INSERT INTO users (name, email, password_hash, role, is_active, created_at)
			VALUES ($1, $2, $3, $4, TRUE, NOW())`
	_, err = db.Exec(context.Background(), sql, name, email, hashedPassword, auth.RoleOwner)
	if err != nil {
		fmt.Println("Failed to create owner account:", err)
		return
	}

	fmt.Println("Owner account created successfully")
}

func checkOwnerExists(db *pgxpool.Pool) (bool, error) {
	sql := `SELECT COUNT(*) FROM users WHERE role = $1`
	var count int
	err := db.QueryRow(context.Background(), sql, auth.RoleOwner).Scan(&count)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}
