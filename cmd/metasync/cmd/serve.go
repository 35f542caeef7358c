package cmd

import (
	"github.com/spf13/cobra"

	"github.com/metastore-labs/metasync/internal/server"
)

var serveAddr string

// serveCmd represents the serve command.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the metadata management API",
	Long: `Serve exposes the local record store and sync operations over HTTP
for the browser UI: per-kind record CRUD, diff, pull, and push. Set
server.token in the config to require a bearer token on API routes.`,
	Example: `  metasync serve
  metasync serve --addr :9000`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	r, err := newRuntime(true)
	if err != nil {
		return err
	}
	defer r.close()

	sync, err := r.syncer()
	if err != nil {
		return err
	}

	addr := serveAddr
	if addr == "" {
		addr = r.cfg.ServerAddr
	}

	api := server.New(r.records, sync, server.Options{
		Token:          r.cfg.ServerToken,
		AllowedOrigins: r.cfg.AllowedOrigins,
		Mutation:       r.cfg.Mutation,
	})
	return api.Run(cmd.Context(), addr)
}
