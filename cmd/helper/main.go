package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"cybersite/internal/config"
	"cybersite/internal/models"
	"cybersite/internal/services"
	"cybersite/internal/templates"
	"cybersite/internal/utils/logger"

	"github.com/joho/godotenv"
)

// helper is an operator CLI for previewing campaign templates and signing
// tracking links with the configured secret.
func main() {
	var log = logger.New("helper")
	log.Info("🔑 Starting campaign helper CLI")

	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file loaded: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		_ = log.Error("❌ Failed to load configuration", err)
		os.Exit(1)
	}
	renderer := services.NewEmailRenderer(cfg)

	reader := bufio.NewReader(os.Stdin)
	prompt := func(label string) string {
		fmt.Print(label)
		line, _ := reader.ReadString('\n')
		return strings.TrimSpace(line)
	}

	for {
		choice := prompt("Enter 'l' to list templates, 'p' to preview, 's' to sign a link, 'v' to verify one, or 'q' to quit: ")

		switch choice {
		case "q":
			log.Info("👋 Exiting helper CLI")
			return
		case "l":
			for _, t := range templates.List("") {
				fmt.Printf("%-22s %-16s %s\n", t.ID, t.Category, t.Name)
			}
		case "p":
			t, ok := templates.Get(prompt("Template id: "))
			if !ok {
				log.Warn("⚠️ Unknown template")
				continue
			}
			name := prompt("Subscriber name: ")
			sub := &models.Subscriber{Email: "preview@example.com", Name: &name, Token: "preview"}
			sub.ID = "preview"
			campaign := &models.Campaign{Subject: t.Subject, HTMLContent: t.HTMLContent}
			campaign.ID = "preview"

			msg, err := renderer.RenderCampaign(campaign, sub, nil, time.Now())
			if err != nil {
				_ = log.Error("❌ Preview failed", err)
				continue
			}
			fmt.Printf("Subject: %s\n\n%s\n", msg.Subject, msg.Text)
		case "s":
			campaignID := prompt("Campaign id: ")
			target := prompt("Target URL: ")
			log.Success("✅ %s", renderer.Signer().ClickURL(campaignID, target))
		case "v":
			campaignID := prompt("Campaign id: ")
			encoded := prompt("u parameter: ")
			signature := prompt("s parameter: ")
			target, err := renderer.Signer().ResolveClick(campaignID, encoded, signature)
			if err != nil {
				_ = log.Error("❌ Link rejected", err)
				continue
			}
			log.Success("✅ Link points to %s", target)
		default:
			log.Warn("⚠️ Invalid choice. Please enter 'l', 'p', 's', 'v' or 'q'.")
		}
	}
}
