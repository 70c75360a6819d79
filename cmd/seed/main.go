// Command seed fills a development database with demo data and prints a
// bearer token for every seeded user.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"forum/internal/config"
	"forum/internal/database"
	"forum/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 10, "Number of users to create")
	postsPerUser := flag.Int("posts", 3, "Posts per user")
	commentsPerPost := flag.Int("comments", 4, "Root comments per post")
	repliesPerRoot := flag.Int("replies", 2, "Replies per root comment")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	tokenTTL := flag.Duration("token-ttl", 24*time.Hour, "Lifetime of printed dev tokens")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("Refusing to seed a production database")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	ctx := context.Background()
	if err := database.ApplySchema(ctx, db, cfg); err != nil {
		log.Fatalf("Schema setup failed: %v", err)
	}

	s := seed.NewSeeder(db, seed.Options{
		NumUsers:        *numUsers,
		PostsPerUser:    *postsPerUser,
		CommentsPerPost: *commentsPerPost,
		RepliesPerRoot:  *repliesPerRoot,
	})

	if *shouldClean {
		if err := s.ClearAll(ctx); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	res, err := s.Run(ctx)
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	tokens, err := seed.DevTokens(cfg.JWTSecret, res.Users, *tokenTTL)
	if err != nil {
		log.Fatalf("Token generation failed: %v", err)
	}

	log.Printf("Seeded %d users, %d posts, %d comments, %d replies, %d notifications",
		len(res.Users), res.Posts, res.Comments, res.Replies, res.Notifications)
	log.Printf("All seeded users have the password: %s", seed.DemoPassword)
	for _, u := range res.Users {
		fmt.Printf("%d\t%s\t%s\n", u.ID, u.Username, tokens[u.Username])
	}
}
