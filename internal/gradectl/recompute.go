package gradectl

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/cnec/gradeengine/internal/adapters/repository"
	service "github.com/cnec/gradeengine/internal/app"
	"github.com/cnec/gradeengine/pkg/logger"
)

func newRecomputeCmd() *cobra.Command {
	var (
		file        string
		dbPath      string
		concurrency int
		jsonMode    bool
	)

	cmd := &cobra.Command{
		Use:   "recompute",
		Short: "Grade a batch of creators into a SQLite grade store",
		Long: `Reads a batch file with a "requests" list, grades every creator
concurrently and stores the results in the SQLite database at --db.
The database is created and migrated when missing.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			var in BatchInput
			if err := readYAML(file, cmd.InOrStdin(), &in); err != nil {
				return err
			}
			if len(in.Requests) == 0 {
				return fmt.Errorf("%s: no requests", file)
			}

			store, err := repository.OpenSQLStore(ctx, dbPath, repository.WithMetricsUpdateInterval(0))
			if err != nil {
				return fmt.Errorf("open %s: %w", dbPath, err)
			}
			svc := service.New(
				service.WithStore(store),
				service.WithLogger(logger.New(cmd.ErrOrStderr(), "text").Named("gradectl")),
				service.WithBatchConcurrency(concurrency),
			)

			outcomes := svc.RecomputeBatch(ctx, in.Requests)
			closeErr := svc.Close(ctx)

			if jsonMode {
				if err := writeJSON(cmd.OutOrStdout(), outcomes); err != nil {
					return err
				}
			} else {
				renderOutcomes(cmd.OutOrStdout(), outcomes)
			}

			failed := 0
			for _, o := range outcomes {
				if !o.Saved {
					failed++
				}
			}
			if failed > 0 {
				return errors.Join(fmt.Errorf("%d of %d creators were not saved", failed, len(outcomes)), closeErr)
			}
			return closeErr
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Batch file (YAML or JSON), - for stdin (required)")
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database path (required)")
	cmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "Creators graded in parallel")
	cmd.Flags().BoolVar(&jsonMode, "json", false, "Print JSON outcomes")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("db")
	return cmd
}
