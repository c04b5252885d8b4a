// Command tokengen creates (or reactivates) an actor and prints a bearer
// token for it.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/safar/cart-service/internal/auth"
	"github.com/safar/cart-service/internal/config"
	"github.com/safar/cart-service/internal/database"
	"github.com/safar/cart-service/internal/models"
	"github.com/safar/cart-service/internal/store"
)

func main() {
	roleFlag := flag.String("role", "user", "actor role: user or admin")
	email := flag.String("email", "", "actor email")
	name := flag.String("name", "", "actor display name")
	flag.Parse()

	if *email == "" {
		log.Fatal("Usage: tokengen -role user|admin -email someone@example.com [-name Someone]")
	}
	role, err := models.ParseRole(*roleFlag)
	if err != nil {
		log.Fatalf("Parse role: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		log.Fatalf("Connect to database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	user, err := store.CreateActor(ctx, db, role, *email, *name)
	if err != nil {
		log.Fatalf("Create actor: %v", err)
	}

	token, err := auth.NewTokens(cfg.Auth).Sign(models.Actor{ID: user.ID, Role: role})
	if err != nil {
		log.Fatalf("Sign token: %v", err)
	}

	fmt.Println(token)
}
