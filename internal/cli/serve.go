package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/blockfit/internal/server"
)

// serveCommand creates the serve command for the HTTP editor session.
func (c *CLI) serveCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve one editor session over HTTP",
		Long: `Serve a single in-memory editor session over HTTP. All requests share
the same scene; nothing is persisted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			srv := server.New(server.Options{
				Catalog: cfg.Catalog,
				Editor:  cfg.editorOptions(),
				Logger:  c.Logger,
			})

			printInfo("Session %s", StyleHighlight.Render(srv.SessionID()))
			printKeyValue("Listening", StyleLink.Render(fmt.Sprintf("http://%s/api/v1/scene", displayAddr(addr))))
			return srv.ListenAndServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8080", "listen address")
	return cmd
}

// displayAddr fills in a host for addresses like ":8080".
func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
