// Package cli implements the docrender command-line interface.
//
// Commands:
//   - serve: run the HTTP API that renders and uploads documents
//   - render: render a record file to PDF, or dump its layout as JSON
//   - validate: check a record file without rendering it
//   - template: print a built-in layout template as JSON
//   - mcp: run the Model Context Protocol server on stdio
//
// Every command reads the optional TOML file given with --config. The
// logger writes to stderr and is passed to commands through the context.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/lvillar/docrender/config"
)

var (
	version = "dev"
	commit  string
	date    string
)

// SetVersion sets the version information displayed by --version.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// CLI holds shared state for all commands.
type CLI struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	configPath string
	verbose    bool
	config     config.Config
}

// New creates a CLI on the process standard streams.
func New() *CLI {
	return &CLI{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "docrender",
		Short:        "docrender lays out delivery notes and quotations as PDF",
		Long:         `docrender validates delivery note (remito) and quotation (presupuesto) records, lays them out on A4 pages and renders them as PDF, either from the command line or as an HTTP or MCP service.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			c.config = cfg

			level, err := parseLevel(cfg.Log.Level)
			if err != nil {
				return err
			}
			if c.verbose {
				level = LogDebug
			}
			cmd.SetContext(withLogger(cmd.Context(), newLogger(c.stderr, level)))
			return nil
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("docrender %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.SetIn(c.stdin)
	root.SetOut(c.stdout)
	root.SetErr(c.stderr)
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "TOML configuration file")

	root.AddCommand(c.serveCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.templateCommand())
	root.AddCommand(c.mcpCommand())

	return root
}

func (c *CLI) printer() printer {
	return printer{w: c.stdout}
}
