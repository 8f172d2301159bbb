package sniff

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/miraveja/miraveja/cmd"
	"github.com/miraveja/miraveja/metadata"
	"github.com/miraveja/miraveja/util/helper"
)

var sniffCmd = &cobra.Command{
	Use:   "sniff {filename | -}...",
	Short: "Report the container format and raw embedded text of image files",
	Long: `Report the container format and raw embedded text of image files.

For each file it prints the sniffed format (png / jpeg / unsupported) and the
raw text blob recovered from the container's textual chunks / segments,
without parsing the generation parameters convention.

Filename arguments support globs. If {filename} is "-", read from stdin.`,
	Args: cobra.MinimumNArgs(1),
	RunE: doSniff,
}

var flagText bool

func init() {
	sniffCmd.Flags().BoolVarP(&flagText, "text", "", false, "Also print the raw embedded text")
	cmd.RootCmd.AddCommand(sniffCmd)
}

func doSniff(command *cobra.Command, args []string) (err error) {
	filenames := helper.ParseFilenameArgs(args...)
	for _, filename := range filenames {
		var data []byte
		if filename == "-" {
			data, err = io.ReadAll(os.Stdin)
		} else {
			data, err = os.ReadFile(filename)
		}
		if err != nil {
			return fmt.Errorf("failed to read %q: %w", filename, err)
		}

		format := metadata.Classify(data)
		var text string
		var hasText bool
		switch format {
		case metadata.FormatPNG:
			text, hasText = metadata.ReadPNGText(data)
		case metadata.FormatJPEG:
			text, hasText = metadata.ReadJPEGText(data)
		}

		fmt.Printf("%s: format=%s, text=%t\n", filename, format, hasText)
		if flagText && hasText {
			fmt.Println(text)
		}
	}
	return nil
}
