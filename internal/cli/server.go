package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"quizline-service/internal/app"
	"quizline-service/internal/config"
	"quizline-service/internal/infra/memory"
	pgstore "quizline-service/internal/infra/postgres"
	redisinfra "quizline-service/internal/infra/redis"
	"quizline-service/internal/ingest"
	transport "quizline-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
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

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	var (
		store   app.Store
		billing app.Billing
	)
	if pool != nil {
		store = pgstore.NewStore(pool)
		billing = pgstore.NewBilling(pool)
	} else {
		memStore := memory.NewStore()
		memBilling := memory.NewBilling()
		if err := seedDemoQuiz(ctx, memStore, memBilling); err != nil {
			return err
		}
		store = memStore
		billing = memBilling
	}

	var questions app.QuestionRepository = store
	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		quizTTL := config.Duration(cfg.Quiz.TTL, 10*time.Minute)
		questions = redisinfra.NewQuestionCache(redisClient, store, quizTTL)
	}

	service := app.NewSessionService(store, questions, billing)
	feedbackDelay := config.Duration(cfg.Session.FeedbackDelay, 0)
	wsHandler := transport.NewWSHandler(service, feedbackDelay)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting quizline service on :%s", finalPort)
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

// demoQuizText exercises the delimited-numbered dialect; swap the memory
// store for Postgres in production and ingest real documents instead.
const demoQuizText = `1. What is 2 + 2?
====
3
#4
5
++++
2. Which planet is closest to the sun?
====
#Mercury
Venus
Mars
`

func seedDemoQuiz(ctx context.Context, store *memory.Store, billing *memory.Billing) error {
	blocks := ingest.Parse(demoQuizText)
	bundle, err := ingest.Assemble(blocks, "demo quiz", "demo-admin")
	if err != nil {
		return err
	}
	if err := store.CreateQuiz(ctx, bundle); err != nil {
		return err
	}
	// The demo user can start straight away.
	if err := billing.GrantAccess(ctx, "demo-user", bundle.Quiz.ID); err != nil {
		return err
	}
	log.Printf("seeded demo quiz %s with %d questions", bundle.Quiz.ID, len(bundle.Questions))
	return nil
}
