package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var loadRoot string

// loadCmd represents the load command.
var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Import metadata change proposal files into the local store",
	Long: `Load reads the JSON change proposal files under
<root>/<environment>/<kind>s/ back into the local record store. Loaded
records start as LOCAL_ONLY; run diff afterwards to settle their real
status against the remote.`,
	Example: `  metasync load
  metasync load --root ./metadata-manager --environment staging`,
	RunE: runLoad,
}

func init() {
	rootCmd.AddCommand(loadCmd)
	loadCmd.Flags().StringVar(&loadRoot, "root", "", "Input directory (default from config)")
}

func runLoad(cmd *cobra.Command, _ []string) error {
	r, err := newRuntime(false)
	if err != nil {
		return err
	}
	defer r.close()

	root := loadRoot
	if root == "" {
		root = r.cfg.MetadataRoot
	}

	sync, err := r.syncer()
	if err != nil {
		return err
	}
	loaded, err := sync.Load(cmd.Context(), root, r.cfg.Environment)
	if err != nil {
		return err
	}

	fmt.Printf("Loaded %d entities\n", loaded)
	return nil
}
