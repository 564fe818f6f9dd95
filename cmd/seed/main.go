// Command seed populates the database. It is the administrative path for
// group management: groups are never written through the API.
package main

import (
	"flag"
	"log"

	"yatube/config"
	"yatube/database"
	"yatube/seed"
)

func main() {
	numUsers := flag.Int("users", 20, "Number of demo users to create")
	numPosts := flag.Int("posts", 100, "Number of demo posts to create")
	demo := flag.Bool("demo", false, "Also create demo users, posts, comments and follows")
	flag.Parse()

	cfg := config.LoadConfig()

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := seed.Groups(db); err != nil {
		log.Fatalf("Group seeding failed: %v", err)
	}
	log.Println("Groups seeded")

	if *demo {
		if err := seed.Demo(db, *numUsers, *numPosts); err != nil {
			log.Fatalf("Demo seeding failed: %v", err)
		}
		log.Printf("Demo data seeded: %d users, %d posts", *numUsers, *numPosts)
	}
}
