package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/metastore-labs/metasync/pkg/errors"
	"github.com/metastore-labs/metasync/pkg/metadata"
	"github.com/metastore-labs/metasync/pkg/reconcile"
)

var diffFailOnDrift bool

// diffCmd represents the diff command.
var diffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Classify local records against the live DataHub instance",
	Long: `Diff fetches the remote state of every managed entity kind and
classifies each entity as SYNCED, MODIFIED, LOCAL_ONLY, or REMOTE_ONLY.

If the remote cannot be reached the classification degrades to an empty
remote set: every local record shows as LOCAL_ONLY and the connection
error is reported alongside.`,
	Example: `  metasync diff
  metasync diff --kinds tags,domains
  metasync diff --fail-on-drift  # non-zero exit when anything drifted`,
	RunE: runDiff,
}

func init() {
	rootCmd.AddCommand(diffCmd)
	diffCmd.Flags().BoolVar(&diffFailOnDrift, "fail-on-drift", false, "Exit non-zero when any entity is not SYNCED")
}

func runDiff(cmd *cobra.Command, _ []string) error {
	r, err := newRuntime(true)
	if err != nil {
		return err
	}
	defer r.close()

	sync, err := r.syncer()
	if err != nil {
		return err
	}
	diff, err := sync.Diff(cmd.Context())
	if err != nil {
		return err
	}

	drifted := 0
	for _, kind := range metadata.Kinds() {
		result, ok := diff.Kinds[kind]
		if !ok || len(result.Classifications) == 0 {
			continue
		}

		fmt.Printf("%s: %s\n", kind, result.Summary())
		if result.Degraded() {
			fmt.Printf("  remote unavailable: %v\n", result.Err)
		}
		for _, c := range result.Classifications {
			if c.Status == metadata.StatusSynced {
				continue
			}
			drifted++
			printClassification(c)
		}
	}

	if drifted == 0 {
		fmt.Println("Everything in sync")
		return nil
	}
	if diffFailOnDrift {
		return &errors.SyncError{Operation: "diff", Err: fmt.Errorf("%d entities drifted", drifted)}
	}
	return nil
}

func printClassification(c reconcile.Classification) {
	fmt.Printf("  %-11s %s", c.Status, c.URN)
	if c.Origin != reconcile.OriginUnknown {
		fmt.Printf(" (changed: %s)", c.Origin)
	}
	fmt.Println()
	for _, change := range c.Changes {
		fmt.Printf("    %s.%s: %v -> %v\n", change.Aspect, change.Path, change.Remote, change.Local)
	}
}
