package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/park285/oto-tournament-bot/internal/irisfast"
	"github.com/park285/oto-tournament-bot/internal/session"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, reading environment variables directly")
	}

	baseURL := os.Getenv("IRIS_BASE_URL")
	wsURL := os.Getenv("IRIS_WS_URL")
	userID := os.Getenv("X_USER_ID")
	userEmail := os.Getenv("X_USER_EMAIL")
	sessionID := os.Getenv("X_SESSION_ID")

	if baseURL == "" {
		log.Fatal("IRIS_BASE_URL is required")
	}

	headers := func() map[string]string {
		m := map[string]string{}
		if userID != "" {
			m["X-User-Id"] = userID
		}
		if userEmail != "" {
			m["X-User-Email"] = userEmail
		}
		if sessionID != "" {
			m["X-Session-Id"] = sessionID
		}
		return m
	}

	client := irisfast.NewClient(baseURL,
		irisfast.WithHeaderProvider(headers),
		irisfast.WithTimeout(8*time.Second),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	cfg, err := client.GetConfig(ctx)
	if err != nil {
		log.Printf("/config error: %v", err)
	} else {
		log.Printf("/config ok: bot=%s port=%d polling=%d rate=%d endpoint=%s", cfg.BotName, cfg.Port, cfg.PollingSpeed, cfg.MessageRate, cfg.WebserverEndpoint)
	}

	checkPostgres(os.Getenv("DATABASE_URL"))
	checkRedis(os.Getenv("REDIS_URL"))

	if wsURL == "" {
		log.Println("IRIS_WS_URL not set; skipping WS check")
		return
	}

	ws := irisfast.NewWebSocket(wsURL, 5, time.Second)
	ws.SetHeaderProvider(headers)
	ws.OnStateChange(func(state irisfast.WebSocketState) {
		log.Printf("WS state: %s", state)
	})
	ws.OnMessage(func(msg *irisfast.Message) {
		from := "?"
		if msg.Sender != nil {
			from = *msg.Sender
		}
		fmt.Printf("WS msg room=%s from=%s text=%q\n", msg.Room, from, msg.Msg)
	})

	cctx, ccancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer ccancel()
	if err := ws.Connect(cctx); err != nil {
		log.Printf("WS connect error: %v", err)
		return
	}

	// Observe for a short window
	t := time.NewTimer(10 * time.Second)
	<-t.C

	_ = ws.Close(context.Background())
}

func checkPostgres(url string) {
	if url == "" {
		log.Println("DATABASE_URL not set; skipping postgres check")
		return
	}
	db, err := sql.Open("postgres", url)
	if err != nil {
		log.Printf("postgres open error: %v", err)
		return
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var profiles, tournaments int
	if err := db.QueryRowContext(ctx, `SELECT
		(SELECT count(*) FROM user_profiles),
		(SELECT count(*) FROM tournaments)`).Scan(&profiles, &tournaments); err != nil {
		log.Printf("postgres query error (migrations applied?): %v", err)
		return
	}
	log.Printf("postgres ok: profiles=%d tournaments=%d", profiles, tournaments)
}

func checkRedis(url string) {
	if url == "" {
		log.Println("REDIS_URL not set; sessions will be kept in memory")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	r, err := session.OpenRedis(ctx, url, session.DefaultTTL)
	if err != nil {
		log.Printf("redis error: %v", err)
		return
	}
	_ = r.Close()
	log.Println("redis ok")
}
