package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/spf13/cobra"

	"quizline-service/internal/app"
	"quizline-service/internal/config"
	pgstore "quizline-service/internal/infra/postgres"
	"quizline-service/internal/ingest"
)

// NewIngestCmd parses a plain-text quiz document and persists the
// assembled quiz. Binary formats (DOCX, PDF) must be converted to text by
// an external extractor first.
func NewIngestCmd(configPath *string) *cobra.Command {
	var (
		filePath string
		name     string
		creator  string
	)
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Parse a quiz document and store it",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(cmd.Context(), *configPath, filePath, name, creator)
		},
	}
	cmd.Flags().StringVar(&filePath, "file", "", "path to the plain-text quiz document")
	cmd.Flags().StringVar(&name, "name", "", "quiz name (defaults to the file name)")
	cmd.Flags().StringVar(&creator, "creator", "", "creator user ID")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("creator")
	return cmd
}

func runIngest(ctx context.Context, configPath, filePath, name, creator string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}
	if err := runMigrationsWithConfig(ctx, cfg); err != nil {
		return err
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))
	}

	blocks := ingest.Parse(string(data))
	bundle, err := ingest.Assemble(blocks, name, creator)
	if err != nil {
		return err
	}
	bundle.Quiz.FilePath = filePath

	pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pgstore.NewStore(pool).CreateQuiz(ctx, bundle); err != nil {
		return err
	}

	fmt.Printf("created quiz %s (%q): %d blocks parsed, %d questions, cost %d\n",
		bundle.Quiz.ID, name, len(blocks), len(bundle.Questions), app.Cost(len(bundle.Questions)))
	return nil
}
