// Command svgconvert converts SVG images to PNG, PDF or flattened SVG.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/benoitkugler/svgconvert/svgdraw"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type cliOptions struct {
	format     string
	output     string
	background string
	logLevel   string
	dpi        float64
	maxDepth   int
	strict     bool
}

func bindFlags(fs *pflag.FlagSet, o *cliOptions) {
	fs.StringVarP(&o.format, "format", "f", "", "output format: png, pdf or svg (default: from the output extension, or png)")
	fs.StringVarP(&o.output, "output", "o", "-", "output file, - for stdout")
	fs.StringVar(&o.background, "background", "", "background color of PNG output")
	fs.StringVar(&o.logLevel, "log-level", "warn", "log level: trace, debug, info, warn or error")
	fs.Float64Var(&o.dpi, "dpi", 96, "resolution used to convert physical units")
	fs.IntVar(&o.maxDepth, "max-depth", 512, "maximum nesting of elements")
	fs.BoolVar(&o.strict, "strict", false, "fail on missing references and invalid content")
}

func newRootCommand() *cobra.Command {
	var options cliOptions

	cmd := &cobra.Command{
		Use:   "svgconvert [flags] <input>",
		Short: "Convert SVG images to PNG, PDF or flattened SVG",
		Long: `svgconvert renders an SVG document, given as a local file,
a file, http or https URL, or - for the standard input.

With PDF output, the svg children of the root element are drawn
on separate pages.`,
		Example: `  svgconvert -o image.png image.svg
  svgconvert --format pdf --dpi 72 https://example.com/slides.svg > slides.pdf
  cat image.svg | svgconvert -f svg -`,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0], options)
		},
	}
	bindFlags(cmd.Flags(), &options)
	return cmd
}

// resolveFormat uses the flag, then the output extension
func resolveFormat(format, output string) (svgdraw.Format, error) {
	if format != "" {
		return svgdraw.FormatByName(format)
	}
	switch strings.ToLower(filepath.Ext(output)) {
	case ".pdf":
		return svgdraw.PDF, nil
	case ".svg":
		return svgdraw.SVG, nil
	}
	return svgdraw.PNG, nil
}

func run(cmd *cobra.Command, input string, o cliOptions) (err error) {
	format, err := resolveFormat(o.format, o.output)
	if err != nil {
		return err
	}
	level := hclog.LevelFromString(o.logLevel)
	if level == hclog.NoLevel {
		return errors.Errorf("invalid log level %q", o.logLevel)
	}

	opts := svgdraw.Options{
		DPI:      o.dpi,
		MaxDepth: o.maxDepth,
		Logger: hclog.New(&hclog.LoggerOptions{
			Name:   "svgconvert",
			Level:  level,
			Output: cmd.ErrOrStderr(),
		}),
	}
	if o.strict {
		opts.ErrorMode = svgdraw.StrictErrorMode
	}
	if o.background != "" {
		opts.Background = svgdraw.ParseColor(o.background)
	}

	var src svgdraw.Source
	if input == "-" {
		src.Reader = cmd.InOrStdin()
	} else {
		src.URL = input
	}

	var output io.Writer = cmd.OutOrStdout()
	if o.output != "" && o.output != "-" {
		f, err := os.Create(o.output)
		if err != nil {
			return errors.Wrap(err, "creating output file")
		}
		defer func() {
			if cerr := f.Close(); err == nil && cerr != nil {
				err = errors.Wrap(cerr, "closing output file")
			}
		}()
		output = f
	}
	opts.Output = output

	_, err = svgdraw.Convert(format, src, opts)
	return err
}
