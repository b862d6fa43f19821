// Command main seeds the board database with demo data.
package main

import (
	"context"
	"flag"
	"log"

	"boardclient/internal/auth"
	"boardclient/internal/config"
	"boardclient/internal/database"
	"boardclient/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 10, "Number of users to create")
	numPosts := flag.Int("posts", 40, "Number of posts to create")
	maxComments := flag.Int("comments", 5, "Maximum comments per post")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	randSeed := flag.Int64("seed", 0, "Random seed (0 uses the clock)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.StoreDriver == config.StoreDriverMemory {
		log.Fatal("The memory store driver has nothing to seed; use postgres or sqlite")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if cfg.IsProduction() {
		// Connect skips migrations in production.
		if err := database.Migrate(db); err != nil {
			log.Fatalf("Migration failed: %v", err)
		}
	}

	ctx := context.Background()
	s := seed.NewSeeder(db, auth.NewLocalProvider(db, cfg.JWTSecret))

	if *shouldClean {
		if err := s.ClearAll(ctx); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	res, err := s.Run(ctx, seed.Options{
		NumUsers:           *numUsers,
		NumPosts:           *numPosts,
		MaxCommentsPerPost: *maxComments,
		Seed:               *randSeed,
	})
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Seeded %d users, %d posts, %d comments, %d votes", len(res.Users), len(res.Posts), res.Comments, res.Votes)
	log.Printf("All seeded users have the password: %s", seed.DefaultPassword)
}
