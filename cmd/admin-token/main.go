package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"

	"ukm-ponja/internal/auth"
	"ukm-ponja/internal/config"
)

func main() {
	id := flag.String("id", "", "admin identity, e.g. an email or tg:<telegram user id>")
	name := flag.String("name", "", "display name stored in the token")
	ttl := flag.Duration("ttl", auth.DefaultTokenTTL, "token lifetime")
	allow := flag.Bool("allow", false, "also add the identity to the allowlist file")
	flag.Parse()

	if *id == "" {
		log.Fatal("Usage: admin-token -id <identity> [-name <name>] [-ttl 12h] [-allow]")
	}
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}
	cfg, err := config.New()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	admin := auth.Admin{ID: auth.Normalize(*id), Name: *name}
	if *allow {
		repo, err := auth.NewFileRepository(cfg.AllowlistFilePath)
		if err != nil {
			log.Fatalf("Failed to open allowlist: %v", err)
		}
		if err := repo.Upsert(admin); err != nil {
			log.Fatalf("Failed to update allowlist: %v", err)
		}
		fmt.Printf("✅ %s added to %s\n", admin.ID, cfg.AllowlistFilePath)
	}

	token, exp, err := auth.NewTokenIssuer(cfg.AdminJWTSecret, *ttl).Issue(admin)
	if err != nil {
		log.Fatalf("Failed to issue token: %v", err)
	}

	fmt.Printf("🔑 Admin token for %s\n", admin.ID)
	fmt.Printf("=====================================\n")
	fmt.Printf("Expires: %s\n\n", exp.Format(time.RFC3339))
	fmt.Printf("%s\n\n", token)
	fmt.Printf("Send it as: Authorization: Bearer <token>\n")
}
