package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/metastore-labs/metasync/pkg/metadata"
)

// pullCmd represents the pull command.
var pullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Fetch remote entities into the local store",
	Long: `Pull fetches every managed entity from DataHub, saves each one as a
SYNCED local record, and replaces the baseline snapshot. The baseline is
what later diffs use to attribute drift to the side that changed it.`,
	Example: `  metasync pull
  metasync pull --kinds glossary_terms`,
	RunE: runPull,
}

func init() {
	rootCmd.AddCommand(pullCmd)
}

func runPull(cmd *cobra.Command, _ []string) error {
	r, err := newRuntime(true)
	if err != nil {
		return err
	}
	defer r.close()

	sync, err := r.syncer()
	if err != nil {
		return err
	}
	result, err := sync.Pull(cmd.Context())
	if err != nil {
		return err
	}

	for _, kind := range metadata.Kinds() {
		if n, ok := result.Counts[kind]; ok && n > 0 {
			fmt.Printf("  %s: %d\n", kind, n)
		}
	}
	fmt.Printf("Pulled %d entities\n", result.Total())
	return nil
}
