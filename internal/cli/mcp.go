package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/lvillar/docrender/mcp"
)

func (c *CLI) mcpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Run the MCP server on stdio",
		Long: `Run a Model Context Protocol server over stdin and stdout. Add it to an MCP
client configuration as:

  {"mcpServers": {"docrender": {"command": "docrender", "args": ["mcp"]}}}`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runMCP(cmd.Context())
		},
	}
}

func (c *CLI) runMCP(ctx context.Context) error {
	logger := loggerFromContext(ctx)
	r, err := newRenderer(c.config, logger)
	if err != nil {
		return err
	}

	store, closeStore, err := newUploader(ctx, c.config.Storage)
	if err != nil {
		return err
	}
	defer closeStore(context.Background())

	s := mcp.NewServerWithIO(c.stdin, c.stdout, version, logger)
	mcp.RegisterTools(s, r, store, folders(c.config.Storage))
	mcp.RegisterResources(s, r)
	logger.Debug("mcp server ready")
	return s.Run(ctx)
}
