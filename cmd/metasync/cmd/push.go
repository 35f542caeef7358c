package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/metastore-labs/metasync/internal/syncer"
)

var (
	pushDryRun bool
	pushPrune  bool
)

// pushCmd represents the push command.
var pushCmd = &cobra.Command{
	Use:   "push",
	Short: "Apply local records to the live DataHub instance",
	Long: `Push creates LOCAL_ONLY entities and updates MODIFIED ones through the
ingestion API. Entities are pushed one at a time; a failure is reported
per item and never stops the rest of the batch.

With --prune, remote entities that have no local record are soft-deleted.`,
	Example: `  metasync push
  metasync push --dry-run
  metasync push --prune --kinds tags`,
	RunE: runPush,
}

func init() {
	rootCmd.AddCommand(pushCmd)
	pushCmd.Flags().BoolVar(&pushDryRun, "dry-run", false, "Show what would be pushed without writing to DataHub")
	pushCmd.Flags().BoolVar(&pushPrune, "prune", false, "Soft-delete remote entities with no local record")
}

func runPush(cmd *cobra.Command, _ []string) error {
	r, err := newRuntime(true)
	if err != nil {
		return err
	}
	defer r.close()

	sync, err := r.syncer(
		syncer.WithDryRun(pushDryRun),
		syncer.WithPrune(pushPrune),
	)
	if err != nil {
		return err
	}

	result, pushErr := sync.Push(cmd.Context())
	if result != nil {
		for _, item := range result.Items {
			marker := "ok"
			if item.Err != nil {
				marker = "failed: " + item.Err.Error()
			}
			fmt.Printf("  %-6s %s  %s\n", item.Action, item.URN, marker)
		}
		fmt.Println(result.Summary())
	}
	return pushErr
}
