package gradectl

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cnec/gradeengine/internal/adapters/repository"
	service "github.com/cnec/gradeengine/internal/app"
	"github.com/cnec/gradeengine/pkg/logger"
)

func newRegisterCmd() *cobra.Command {
	var (
		file     string
		dbPath   string
		region   string
		jsonMode bool
	)

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a platform creator as featured",
		Long: `Reads a source creator profile, estimates its initial grade from the
CAPI scores and stores it as a manual featured creator in the SQLite
database at --db. Registering the same user twice fails.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			var in RegisterInput
			if err := readYAML(file, cmd.InOrStdin(), &in); err != nil {
				return err
			}
			if region == "" {
				region = in.Region
			}

			store, err := repository.OpenSQLStore(ctx, dbPath, repository.WithMetricsUpdateInterval(0))
			if err != nil {
				return fmt.Errorf("open %s: %w", dbPath, err)
			}
			svc := service.New(
				service.WithStore(store),
				service.WithLogger(logger.New(cmd.ErrOrStderr(), "text").Named("gradectl")),
			)
			defer func() { _ = svc.Close(ctx) }()

			f, err := svc.RegisterFeaturedCreator(ctx, in.CreatorProfile, region)
			if err != nil {
				return err
			}
			if jsonMode {
				return writeJSON(cmd.OutOrStdout(), f)
			}
			renderFeatured(cmd.OutOrStdout(), f)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Creator profile (YAML or JSON), - for stdin (required)")
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database path (required)")
	cmd.Flags().StringVar(&region, "region", "", "Region to feature the creator in (overrides the profile)")
	cmd.Flags().BoolVar(&jsonMode, "json", false, "Print the stored record as JSON")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("db")
	return cmd
}
