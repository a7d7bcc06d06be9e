package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/saffron-pos/api/internal/billing"
	"github.com/saffron-pos/api/internal/config"
	"github.com/saffron-pos/api/internal/database"
	"github.com/saffron-pos/api/internal/router"
	"github.com/saffron-pos/api/internal/ws"
)

func main() {
	cfg := config.Load()

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("Unable to ping database: %v", err)
	}
	log.Println("Connected to database")

	queries := database.New(pool)

	hub := ws.NewHub()
	go hub.Run()

	var mailer billing.Mailer
	if cfg.SMTPHost != "" {
		m, err := billing.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.MailFrom)
		if err != nil {
			log.Fatalf("SMTP config: %v", err)
		}
		mailer = m
	} else {
		log.Println("SMTP_HOST not set; bill emailing disabled")
	}

	r := router.New(cfg, queries, pool, hub, mailer)

	log.Printf("Starting server on :%s", cfg.Port)
	if err := http.ListenAndServe(fmt.Sprintf(":%s", cfg.Port), r); err != nil {
		log.Fatal(err)
	}
}
