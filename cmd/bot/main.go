package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"forkthisidea/bot/internal/app"
	"forkthisidea/bot/internal/config"
	"forkthisidea/bot/internal/slackbot"
	"forkthisidea/bot/internal/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var ideaStore store.IdeaStore
	if cfg.DatabaseURL != "" {
		ideaStore, err = store.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("postgres connection failed: %v", err)
		}
		log.Printf("using Postgres for idea storage")
	} else {
		ideaStore, err = store.NewRedisStore(cfg.RedisURL)
		if err != nil {
			log.Fatalf("redis connection failed: %v", err)
		}
		log.Printf("using Redis for idea storage")
	}
	defer ideaStore.Close()

	bot := slackbot.New(cfg.SlackBotToken, cfg.SlackAppToken)
	service := app.New(cfg, ideaStore, bot)

	log.Printf("Fork This Idea bot starting")
	if err := bot.Run(ctx, service); err != nil && ctx.Err() == nil {
		log.Fatalf("slack event loop failed: %v", err)
	}
}
