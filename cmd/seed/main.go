// Command main resets stored application state to the built-in seed data.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"gifboard/internal/config"
	"gifboard/internal/kv"
	"gifboard/internal/models"
	"gifboard/internal/seed"
	"gifboard/internal/store"
)

func main() {
	// Parse command line flags
	demo := flag.Int("demo", 0, "Number of extra generated pending uploads to add")
	clearSession := flag.Bool("clear-session", true, "Remove any stored session")
	flag.Parse()

	log.Println("🌱 State Seeder")
	log.Println("===============")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	kv.Init(cfg.RedisURL)
	rdb := kv.Client()
	if rdb == nil {
		log.Fatal("❌ Storage is unavailable; nothing to seed")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	gifs := seed.GIFs()
	if *demo > 0 {
		factory := seed.NewFactory()
		gifs = append(factory.BuildGIFs(*demo), gifs...)
		log.Printf("Adding %d generated pending uploads\n", *demo)
	}

	if err := kv.SetJSON(ctx, rdb, store.GifsKey, gifs); err != nil {
		log.Fatalf("❌ Seeding collection failed: %v", err)
	}
	log.Printf("Seeded %d records under %q\n", len(gifs), store.GifsKey)

	if *clearSession {
		if err := kv.Delete(ctx, rdb, store.UserKey); err != nil {
			log.Fatalf("❌ Clearing session failed: %v", err)
		}
		log.Printf("Cleared session under %q\n", store.UserKey)
	}

	pending := 0
	for _, g := range gifs {
		if g.Status == models.StatusPending {
			pending++
		}
	}
	log.Printf("✅ Done: %d approved-or-rejected, %d pending\n", len(gifs)-pending, pending)
}
