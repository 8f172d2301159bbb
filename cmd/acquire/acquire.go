package acquire

import (
	"bytes"
	"fmt"
	"os"
	"path"
	"strings"
	"time"

	"github.com/natefinch/atomic"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/miraveja/miraveja/civitai"
	"github.com/miraveja/miraveja/cmd"
	"github.com/miraveja/miraveja/config"
	"github.com/miraveja/miraveja/metadata"
	"github.com/miraveja/miraveja/util"
	"github.com/miraveja/miraveja/util/helper"
	"github.com/miraveja/miraveja/util/stringutil"
)

const MAX_TRIES = 3

var acquireCmd = &cobra.Command{
	Use:   "acquire",
	Short: "Download recent images from the Civitai feed and extract their metadata",
	Long: `Download recent images from the Civitai feed and extract their metadata.

It queries the Civitai images feed (sort / period / nsfw filters from config
or flags), downloads each image file to the output dir, runs generation
metadata extraction on it and prints a summary table.

Failures are per-file: a single broken download or unparsable image does not
abort the run.`,
	RunE: doAcquire,
}

var (
	flagForce     bool
	flagSkipEmpty bool // skip files whose feed entry carries no metadata at all
	flagSkipVideo bool
	flagLimit     int
	flagOutputDir string
	flagSort      string
	flagPeriod    string
	flagNsfw      string
	flagExec      string // execute a cmdline for each saved file
)

func init() {
	acquireCmd.Flags().BoolVarP(&flagForce, "force", "", false, "Override existing files")
	acquireCmd.Flags().BoolVarP(&flagSkipEmpty, "skip-empty-metadata", "", true,
		"Skip feed entries that carry no generation metadata")
	acquireCmd.Flags().BoolVarP(&flagSkipVideo, "skip-videos", "", true, "Skip non-image feed entries")
	acquireCmd.Flags().IntVarP(&flagLimit, "limit", "n", 10, "Max amount of images to download")
	acquireCmd.Flags().StringVarP(&flagOutputDir, "output-dir", "d", ".", "Output dir")
	acquireCmd.Flags().StringVarP(&flagSort, "sort", "", "", `Feed sort order (e.g. "Newest")`)
	acquireCmd.Flags().StringVarP(&flagPeriod, "period", "", "", `Feed period (e.g. "Day", "Week")`)
	acquireCmd.Flags().StringVarP(&flagNsfw, "nsfw", "", "", "Feed nsfw level filter")
	acquireCmd.Flags().StringVarP(&flagExec, "exec", "x", "",
		`Execute a cmdline for each saved file. The file contents is passed as stdin`)
	cmd.RootCmd.AddCommand(acquireCmd)
}

func doAcquire(command *cobra.Command, args []string) error {
	conf, err := config.Load(cmd.FlagConfig)
	if err != nil {
		return err
	}
	if flagSort == "" {
		flagSort = conf.Civitai.SortBy
	}
	if flagPeriod == "" {
		flagPeriod = conf.Civitai.Period
	}
	if flagNsfw == "" {
		flagNsfw = conf.Civitai.NsfwLevel
	}

	client := civitai.NewClient(civitai.Config{
		APIURL:        conf.Civitai.APIURL,
		APIKey:        conf.Civitai.APIKey,
		HashAlgorithm: conf.Civitai.HashAlgorithm,
		Timeout:       30 * time.Second, // file downloads need more room than registry lookups
	})
	extractor := metadata.NewExtractor(nil, conf.Civitai.Timeout())

	ctx := command.Context()
	items, err := client.GetImages(ctx, civitai.FeedParams{
		Limit:  flagLimit,
		Sort:   flagSort,
		Period: flagPeriod,
		NSFW:   flagNsfw,
	})
	if err != nil {
		return fmt.Errorf("failed to fetch images feed: %w", err)
	}
	log.Printf("feed returned %d items", len(items))

	saved := 0
	for _, item := range items {
		if flagSkipEmpty && len(item.Meta) == 0 {
			log.Debugf("skip %d: empty metadata", item.ID)
			continue
		}

		var data []byte
		var contentType string
		for tries := 0; ; tries++ {
			if tries >= MAX_TRIES {
				break
			}
			if tries > 0 {
				time.Sleep(util.CalculateBackoff(time.Second, time.Second*30, tries))
			}
			data, contentType, err = client.Download(ctx, item.URL)
			if err == nil {
				break
			}
			log.Warnf("download %s failed (try %d): %v", item.URL, tries+1, err)
		}
		if err != nil {
			log.Errorf("give up on %s: %v", item.URL, err)
			continue
		}
		if flagSkipVideo && !strings.HasPrefix(util.MediaType(contentType), "image/") {
			log.Debugf("skip %d: content type %q", item.ID, contentType)
			continue
		}

		name := path.Base(item.URL)
		if name == "" || name == "." || name == "/" {
			name = fmt.Sprintf("%d", item.ID)
		}
		outputPath := ""
		if flagForce {
			outputPath = path.Join(flagOutputDir, name)
		} else if outputPath, err = helper.GetNewFilePath(flagOutputDir, name); err != nil {
			log.Errorf("failed to allocate path for %q: %v", name, err)
			continue
		}
		if err := atomic.WriteFile(outputPath, bytes.NewReader(data)); err != nil {
			log.Errorf("failed to save %q: %v", outputPath, err)
			continue
		}
		saved++

		meta, report := extractor.Extract(ctx, data)
		printSummaryRow(os.Stdout, outputPath, meta, report)

		if flagExec != "" {
			cmdline := strings.ReplaceAll(flagExec, "%file%", outputPath)
			if err := helper.RunCmdline(cmdline, false, bytes.NewReader(data), os.Stdout, os.Stderr); err != nil {
				log.Errorf("exec for %q failed: %v", outputPath, err)
			}
		}
	}
	log.Printf("saved %d / %d files to %s", saved, len(items), flagOutputDir)
	return nil
}

// One row per file: filename | format | size | truncated prompt.
func printSummaryRow(output *os.File, filename string, meta *metadata.GenerationMetadata, report *metadata.Report) {
	stringutil.PrintStringInWidth(output, filename, 40, true)
	fmt.Fprint(output, "  ")
	stringutil.PrintStringInWidth(output, string(report.Format), 12, true)
	fmt.Fprint(output, "  ")
	stringutil.PrintStringInWidth(output, meta.Size, 10, true)
	fmt.Fprint(output, "  ")
	stringutil.PrintStringInWidth(output, stringutil.ReplaceNewLinesWithSpace(meta.Prompt), 60, true)
	fmt.Fprintln(output)
}
