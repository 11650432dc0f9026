package cli

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pipecheck/pkg/errors"
	"github.com/matzehuels/pipecheck/pkg/pipeline"
	"github.com/matzehuels/pipecheck/pkg/render"
)

const (
	formatDOT = "dot"
	formatSVG = "svg"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string // output file path (derived from input if empty)
	format   string // output format: "dot" or "svg"
	detailed bool   // include node types and data in labels
}

// renderCommand creates the render command for generating diagrams.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{format: formatDOT}

	cmd := &cobra.Command{
		Use:   "render <file>",
		Short: "Render a pipeline as a diagram",
		Long: `Render converts a pipeline document into a Graphviz diagram.

The default output is DOT text, ready for piping into graphviz tools.
With --format svg the diagram is rendered directly using the embedded
Graphviz engine, no local installation required.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(opts.format); err != nil {
				return err
			}
			return c.runRender(args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (derived from input if empty)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: dot (default), svg")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "include node types and data in labels")

	return cmd
}

// validateFormat checks that the format is either "dot" or "svg".
func validateFormat(f string) error {
	if f != formatDOT && f != formatSVG {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %s (must be 'dot' or 'svg')", f)
	}
	return nil
}

// runRender loads the pipeline from input and writes the diagram in the
// requested format.
func (c *CLI) runRender(input string, opts *renderOpts) error {
	p, err := pipeline.ReadFile(input)
	if err != nil {
		return err
	}
	if err := p.Validate(); err != nil {
		return err
	}

	dot := render.ToDOT(p, render.Options{Detailed: opts.detailed})

	var data []byte
	switch opts.format {
	case formatSVG:
		sp := newSpinner("Rendering SVG")
		sp.Start()
		data, err = render.RenderSVG(dot)
		sp.Stop()
		if err != nil {
			return err
		}
	default:
		data = []byte(dot)
	}

	path := outputPath(opts.output, input, opts.format)
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := out.Write(data); err != nil {
		return err
	}
	if path != "" {
		printSuccess("Rendered %s", input)
		printFile(path)
	}
	return nil
}

// outputPath derives the output file name. An explicit output wins; "-"
// selects stdout; otherwise the input name with the format as extension.
func outputPath(output, input, format string) string {
	switch output {
	case "-":
		return ""
	case "":
		return strings.TrimSuffix(input, filepath.Ext(input)) + "." + format
	default:
		return output
	}
}

// nopCloser wraps an io.Writer with a no-op Close method.
type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for the given path, or stdout when the
// path is empty.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}
