package extract

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"

	"github.com/miraveja/miraveja/civitai"
	"github.com/miraveja/miraveja/cmd"
	"github.com/miraveja/miraveja/config"
	"github.com/miraveja/miraveja/constants"
	"github.com/miraveja/miraveja/metadata"
	"github.com/miraveja/miraveja/util"
	"github.com/miraveja/miraveja/util/helper"
)

var extractCmd = &cobra.Command{
	Use:   "extract {filename | -}...",
	Short: "Extract generation metadata from AI-generated .png / .jpg image files",
	Long: `Extract generation metadata from AI-generated .png / .jpg image files.

It scans the embedded free text of the image container (PNG tEXt / iTXt chunks,
JPEG COM / APP1 / APP13 segments) and parses the generation parameters
convention: prompt, negative prompt, model, sampler, scheduler, steps,
CFG scale, seed, size and lora references.

Extraction is best-effort: an image without recognizable metadata yields an
all-default record, never an error. Use --report to include a diagnostic
report telling which pipeline stage stopped.

Filename arguments support globs ("*.png"). If {filename} is "-", read from stdin.

Examples:
  miraveja extract input.png
  miraveja extract "outputs/*.png" -o metadata.json
  miraveja extract input.png --format yaml
  miraveja extract input.png -t "{{.metadata.prompt}}"
  miraveja extract input.png --resolve`,
	Args: cobra.MinimumNArgs(1),
	RunE: doExtract,
}

var (
	flagForce    bool // override existing file
	flagResolve  bool // consult the model registry for bare lora refs
	flagReport   bool
	flagTemplate string
	flagOutput   string
	flagFormat   string
)

func init() {
	extractCmd.Flags().BoolVarP(&flagForce, "force", "", false, "Override existing file")
	extractCmd.Flags().BoolVarP(&flagResolve, "resolve", "", false,
		"Resolve bare lora references (no hash in text) against the Civitai registry")
	extractCmd.Flags().BoolVarP(&flagReport, "report", "", false, "Include the extraction diagnostic report in the output")
	extractCmd.Flags().StringVarP(&flagTemplate, "template", "t", "", `Template to format the output. `+
		constants.HELP_TEMPLATE_FLAG)
	extractCmd.Flags().StringVarP(&flagOutput, "output", "o", "-", `Output file path. Use "-" for stdout`)
	extractCmd.Flags().StringVarP(&flagFormat, "format", "", "json", `Output format. "json", "yaml" or "toml"`)
	cmd.RootCmd.AddCommand(extractCmd)
}

func doExtract(command *cobra.Command, args []string) (err error) {
	if flagOutput != "-" {
		if exists, err := util.FileExists(flagOutput); err != nil || (exists && !flagForce) {
			return fmt.Errorf("output file %q exists or can't access, err=%w", flagOutput, err)
		}
	}

	var resolver metadata.Resolver
	conf, err := config.Load(cmd.FlagConfig)
	if err != nil {
		return err
	}
	if flagResolve {
		resolver = civitai.NewClient(civitai.Config{
			APIURL:        conf.Civitai.APIURL,
			APIKey:        conf.Civitai.APIKey,
			HashAlgorithm: conf.Civitai.HashAlgorithm,
			Timeout:       conf.Civitai.Timeout(),
		})
	}
	extractor := metadata.NewExtractor(resolver, conf.Civitai.Timeout())

	var tmpl *helper.Template
	if flagTemplate != "" {
		if tmpl, err = helper.GetTemplate(flagTemplate, true); err != nil {
			return fmt.Errorf("invalid template: %w", err)
		}
	}

	filenames := helper.ParseFilenameArgs(args...)
	var outputs []string
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

		meta, report := extractor.Extract(command.Context(), data)

		var output string
		if tmpl != nil {
			output, err = tmpl.Exec(map[string]any{
				"filename": filename,
				"metadata": recordMap(meta),
				"report":   report,
			})
			if err != nil {
				return fmt.Errorf("template execute error: %w", err)
			}
		} else {
			var payload any = meta
			if flagReport {
				payload = map[string]any{"metadata": meta, "report": report}
			}
			marshaled, err := util.Marshal(flagFormat, payload)
			if err != nil {
				return err
			}
			output = strings.TrimSpace(string(marshaled))
		}
		outputs = append(outputs, output)
	}

	result := strings.Join(outputs, "\n") + "\n"
	if flagOutput == "-" {
		_, err = os.Stdout.WriteString(result)
	} else {
		err = atomic.WriteFile(flagOutput, strings.NewReader(result))
	}
	return err
}

// recordMap exposes the record to templates with the wire field names.
func recordMap(meta *metadata.GenerationMetadata) (m map[string]any) {
	data := util.ToJson(meta)
	m, err := util.UnmarshalJson[map[string]any]([]byte(data))
	if err != nil {
		return map[string]any{}
	}
	return m
}
