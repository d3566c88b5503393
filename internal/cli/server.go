package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"culturequiz-service/internal/app"
	"culturequiz-service/internal/config"
	"culturequiz-service/internal/domain"
	"culturequiz-service/internal/infra/memory"
	pgstore "culturequiz-service/internal/infra/postgres"
	rediscache "culturequiz-service/internal/infra/redis"
	transport "culturequiz-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz attempt server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	quizTTL := config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute)

	var loader memory.QuizLoader = memory.NewStaticQuizLoader(sampleQuizzes())
	if pool != nil {
		loader = pgstore.NewQuizLoader(pool)
	}

	// Catalog reads go through the in-process cache; answer keys live in
	// Redis when available so instances share one warm key set.
	catalog := memory.NewQuizRepository(loader, quizTTL)
	var quizzes app.QuizRepository = catalog
	if redisClient != nil {
		quizzes = rediscache.NewKeyCache(redisClient, loader, quizTTL)
	}

	var store app.AttemptStore = memory.NewAttemptStore()
	if pool != nil {
		store = pgstore.NewAttemptStore(pool)
	}

	feed := app.NewStatsFeed()
	service := app.NewAttemptService(quizzes, store,
		app.WithStatsFeed(feed),
		app.WithCommitRetries(cfg.Engine.CommitRetries),
	)

	tokens := cfg.Auth.Tokens
	if len(tokens) == 0 {
		tokens = map[string]string{"demo-token": "demo-user"}
	}
	verifier := memory.NewStaticTokenVerifier(tokens)

	apiHandler := transport.NewAPIHandler(service, catalog, verifier)
	wsHandler := transport.NewWSHandler(service, feed, verifier)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	apiHandler.Register(mux)
	mux.HandleFunc("/ws/stats", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting culturequiz service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleQuizzes provides demo content for running without Postgres.
func sampleQuizzes() map[string]domain.Quiz {
	return map[string]domain.Quiz{
		"rajasthan-heritage": {
			ID:           "rajasthan-heritage",
			Title:        "Rajasthan Heritage",
			Category:     "heritage",
			Difficulty:   "easy",
			TimeLimit:    600,
			PassingScore: 60,
			Active:       true,
			Questions: []domain.Question{
				{
					ID:     "q1",
					Prompt: "Which city is known as the Pink City?",
					Options: []domain.Option{
						{ID: "o1", Text: "Jodhpur", Correct: false},
						{ID: "o2", Text: "Jaipur", Correct: true},
						{ID: "o3", Text: "Udaipur", Correct: false},
					},
					Points: 1,
				},
				{
					ID:     "q2",
					Prompt: "Ghoomar is a traditional dance of which state?",
					Options: []domain.Option{
						{ID: "o1", Text: "Rajasthan", Correct: true},
						{ID: "o2", Text: "Gujarat", Correct: false},
						{ID: "o3", Text: "Punjab", Correct: false},
					},
					Points: 1,
				},
			},
		},
	}
}
