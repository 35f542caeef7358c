package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var stageRoot string

// stageCmd represents the stage command.
var stageCmd = &cobra.Command{
	Use:   "stage",
	Short: "Export local records as metadata change proposal files",
	Long: `Stage writes every local record out as a JSON change proposal batch
file under <root>/<environment>/<kind>s/, the layout the ingestion
workflows commit to version control.`,
	Example: `  metasync stage
  metasync stage --root ./metadata-manager --environment prod`,
	RunE: runStage,
}

func init() {
	rootCmd.AddCommand(stageCmd)
	stageCmd.Flags().StringVar(&stageRoot, "root", "", "Output directory (default from config)")
}

func runStage(cmd *cobra.Command, _ []string) error {
	r, err := newRuntime(false)
	if err != nil {
		return err
	}
	defer r.close()

	root := stageRoot
	if root == "" {
		root = r.cfg.MetadataRoot
	}

	sync, err := r.syncer()
	if err != nil {
		return err
	}
	paths, err := sync.Stage(cmd.Context(), root, r.cfg.Environment)
	if err != nil {
		return err
	}

	for _, path := range paths {
		fmt.Printf("  wrote %s\n", path)
	}
	fmt.Printf("Staged %d files\n", len(paths))
	return nil
}
