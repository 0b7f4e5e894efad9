// Package gradectl implements the gradectl operator commands.
package gradectl

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"
)

// NewRootCmd builds the gradectl command tree.
func NewRootCmd(version string) *cobra.Command {
	root := &cobra.Command{
		Use:   "gradectl",
		Short: "Score and grade creators from the command line",
		Long: `gradectl scores creator metrics with the grading engine, prints the
grade and badge tables, recomputes batches and registers featured creators
in a SQLite grade store, and drives load against a running grade engine.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newScoreCmd(),
		newInitialCmd(),
		newLevelsCmd(),
		newBadgesCmd(),
		newRecomputeCmd(),
		newRegisterCmd(),
		newLoadCmd(),
	)
	return root
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
