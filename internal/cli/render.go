package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/lvillar/docrender"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	kind       string // document kind or alias
	output     string // output file; defaults to {file_name}.pdf
	layoutJSON bool   // write the positioned layout instead of a PDF
	created    string // fixed creation date (RFC 3339)
}

func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{kind: string(docrender.DeliveryNote)}

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render a record to PDF",
		Long:  `Render a JSON record file to PDF. Use "-" or omit the file to read the record from stdin.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := "-"
			if len(args) == 1 {
				input = args[0]
			}
			return c.runRender(cmd, input, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.kind, "kind", "k", opts.kind, "document kind: delivery-note (remito) or quotation (presupuesto)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default {file_name}.pdf, - for stdout)")
	cmd.Flags().BoolVar(&opts.layoutJSON, "layout-json", false, "write the positioned layout as JSON instead of a PDF")
	cmd.Flags().StringVar(&opts.created, "creation-date", "", "fixed PDF creation date (RFC 3339) for reproducible output")
	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, input string, opts *renderOpts) error {
	logger := loggerFromContext(cmd.Context())

	kind, err := docrender.ParseKind(opts.kind)
	if err != nil {
		return err
	}
	body, err := c.readInput(input)
	if err != nil {
		return err
	}

	var extra []docrender.Option
	if opts.created != "" {
		t, err := time.Parse(time.RFC3339, opts.created)
		if err != nil {
			return fmt.Errorf("invalid --creation-date: %w", err)
		}
		extra = append(extra, docrender.WithClock(func() time.Time { return t }))
	}
	r, err := newRenderer(c.config, logger, extra...)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	var summary string
	if opts.layoutJSON {
		doc, err := r.Layout(kind, body)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return err
		}
		summary = fmt.Sprintf("Laid out %s", kind)
		if opts.output == "" {
			opts.output = "-"
		}
		logger.Debug("layout", "pages", doc.PageCount())
	} else {
		res, err := r.Render(&buf, kind, body)
		if err != nil {
			return err
		}
		summary = fmt.Sprintf("Rendered %s (%d pages, %d bytes)", kind, res.Pages, res.Bytes)
		if opts.output == "" {
			if res.FileName == "" {
				return docrender.ErrMissingFileName
			}
			opts.output = res.FileName + ".pdf"
		}
	}

	if opts.output == "-" {
		_, err := buf.WriteTo(c.stdout)
		return err
	}
	if err := os.WriteFile(opts.output, buf.Bytes(), 0o644); err != nil {
		return err
	}
	p := c.printer()
	p.success("%s", summary)
	p.file(opts.output)
	return nil
}

func (c *CLI) validateCommand() *cobra.Command {
	kind := string(docrender.DeliveryNote)

	cmd := &cobra.Command{
		Use:   "validate [file]",
		Short: "Check a record without rendering it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := "-"
			if len(args) == 1 {
				input = args[0]
			}
			k, err := docrender.ParseKind(kind)
			if err != nil {
				return err
			}
			body, err := c.readInput(input)
			if err != nil {
				return err
			}
			r, err := newRenderer(c.config, loggerFromContext(cmd.Context()))
			if err != nil {
				return err
			}

			p := c.printer()
			name, err := r.Parse(k, body)
			if err != nil {
				if docrender.IsInputError(err) {
					p.failure("Invalid %s record", k)
				}
				return err
			}
			p.success("Valid %s record", k)
			p.keyValue("file_name", strconv.Quote(name))
			return nil
		},
	}
	cmd.Flags().StringVarP(&kind, "kind", "k", kind, "document kind: delivery-note (remito) or quotation (presupuesto)")
	return cmd
}

func (c *CLI) templateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "template <kind>",
		Short: "Print the layout template of a document kind as JSON",
		Long:  `Print the layout template in use, including position overrides from the configuration. Every named element can be moved with a [fields.delivery_note.<name>] or [fields.quotation.<name>] table.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := docrender.ParseKind(args[0])
			if err != nil {
				return err
			}
			r, err := newRenderer(c.config, loggerFromContext(cmd.Context()))
			if err != nil {
				return err
			}
			t, err := r.Template(kind)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(c.stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(t)
		},
	}
}

// readInput reads path, or stdin when path is "-".
func (c *CLI) readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(c.stdin)
	}
	return os.ReadFile(path)
}
