// Admin CLI for bootstrap tasks that must not go through the API, such
// as creating the first admin user.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"truetime.service/internal/config"
	"truetime.service/internal/core"
	"truetime.service/internal/core/model"
	"truetime.service/internal/ports/repository"
	"truetime.service/pkg/database"
)

func main() {
	if len(os.Args) < 2 || os.Args[1] != "create-user" {
		log.Fatal("usage: admin create-user -email <email> -password <password> [-full-name <name>] [-role <role>]")
	}

	fs := flag.NewFlagSet("create-user", flag.ExitOnError)
	email := fs.String("email", "", "email address of the new user")
	fullName := fs.String("full-name", "", "display name of the new user")
	role := fs.String("role", "viewer", "role: admin, manager or viewer")
	password := fs.String("password", "", "initial password")
	fs.Parse(os.Args[2:])

	if *email == "" || *password == "" {
		log.Fatal("both -email and -password are required")
	}

	parsedRole, err := model.RoleFromString(*role)
	if err != nil {
		log.Fatalf("invalid role %q", *role)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Could not load configuration: %v", err)
	}

	db, err := database.NewConnection(cfg)
	if err != nil {
		log.Fatalf("Error opening database: %v", err)
	}
	defer db.Close()

	authService := core.NewAuthService(repository.NewUserRepository(db), cfg.JWTSecret, cfg.TokenTTL())

	user, err := authService.CreateUser(context.Background(), *email, *fullName, *password, parsedRole)
	if err != nil {
		log.Fatalf("Error creating user: %v", err)
	}

	log.Printf("Created %s user %s (id %d)", user.Role, user.Email, user.ID)
}
