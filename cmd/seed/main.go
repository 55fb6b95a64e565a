package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"os"

	"booklist/database"
	"booklist/internal/config"
	"booklist/internal/middleware/auth"
	"booklist/internal/microservices/http-api/models"
	"booklist/internal/microservices/http-api/repository"

	"gorm.io/gorm"
)

type seedUser struct {
	username, first, last string
	likes                 []string
	reviews               map[string]string
}

var demoUsers = []seedUser{
	{
		username: "alice", first: "Alice", last: "Liddell",
		likes:   []string{"OL262758W", "OL893415W"},
		reviews: map[string]string{"OL262758W": "A perfect comfort read."},
	},
	{
		username: "bob", first: "Bob", last: "Marley",
		likes:   []string{"OL893415W", "OL27448W"},
		reviews: map[string]string{"OL893415W": "The spice must flow."},
	},
	{
		username: "carol", first: "Carol", last: "Danvers",
		likes:   []string{"OL27448W"},
	},
}

func main() {
	reset := flag.Bool("reset", false, "truncate users, likes and reviews before seeding")
	password := flag.String("password", "password", "password for every demo user")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.Connect(cfg.DatabaseURL, logger)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	if *reset {
		if err := db.Exec("TRUNCATE likes, reviews, users RESTART IDENTITY CASCADE").Error; err != nil {
			log.Fatalf("Failed to reset tables: %v", err)
		}
		logger.Info("tables_reset")
	}

	hash, err := auth.HashPassword(*password)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	ctx := context.Background()
	users := repository.NewUserRepository(db)
	likes := repository.NewLikeRepository(db)
	reviews := repository.NewReviewRepository(db)

	for _, su := range demoUsers {
		user, err := users.FindByUsername(ctx, su.username)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			user = &models.User{
				Username:  su.username,
				Email:     su.username + "@example.com",
				Password:  hash,
				FirstName: su.first,
				LastName:  su.last,
			}
			err = users.Create(ctx, user)
		}
		if err != nil {
			log.Fatalf("Failed to seed user %s: %v", su.username, err)
		}

		for _, key := range su.likes {
			err := likes.Create(ctx, &models.Like{UserID: user.ID, BookKey: key})
			if err != nil && !errors.Is(err, repository.ErrDuplicate) {
				log.Fatalf("Failed to seed like %s for %s: %v", key, su.username, err)
			}
		}
		for key, body := range su.reviews {
			if err := reviews.Create(ctx, &models.Review{UserID: user.ID, BookKey: key, Body: body}); err != nil {
				log.Fatalf("Failed to seed review %s for %s: %v", key, su.username, err)
			}
		}

		logger.Info("user_seeded", "user_id", user.ID, "username", user.Username,
			"likes", len(su.likes), "reviews", len(su.reviews))
	}
}
