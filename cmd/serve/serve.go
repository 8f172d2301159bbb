package serve

import (
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/miraveja/miraveja/civitai"
	"github.com/miraveja/miraveja/cmd"
	"github.com/miraveja/miraveja/config"
	"github.com/miraveja/miraveja/gallery"
	"github.com/miraveja/miraveja/metadata"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the gallery HTTP server",
	Long: `Run the gallery HTTP server.

Routes:
  POST  /api/images          upload an image; generation metadata is extracted
                             from the file bytes and persisted with it
  GET   /api/images          list images (q / limit / offset query params)
  GET   /api/images/:id      image aggregate with generation record and loras
  GET   /api/images/:id/file raw image file
  PATCH /api/images/:id      update title / subtitle / description
  GET   /api/loras/:hash     stored lora metadata by hash

Metadata extraction can not fail an upload: a malformed image is stored with
an empty generation record.`,
	RunE: doServe,
}

var (
	flagListen     string
	flagDB         string
	flagStorageDir string
	flagNoResolve  bool
)

func init() {
	serveCmd.Flags().StringVarP(&flagListen, "listen", "l", "", `Listen address (e.g. ":8080")`)
	serveCmd.Flags().StringVarP(&flagDB, "db", "", "", "Sqlite database path")
	serveCmd.Flags().StringVarP(&flagStorageDir, "storage-dir", "", "", "Dir to store uploaded files")
	serveCmd.Flags().BoolVarP(&flagNoResolve, "no-resolve", "", false,
		"Do not consult the Civitai registry for bare lora references")
	cmd.RootCmd.AddCommand(serveCmd)
}

func doServe(command *cobra.Command, args []string) error {
	conf, err := config.Load(cmd.FlagConfig)
	if err != nil {
		return err
	}
	if flagListen == "" {
		flagListen = conf.Server.Listen
	}
	if flagDB == "" {
		flagDB = conf.Server.DB
	}
	if flagStorageDir == "" {
		flagStorageDir = conf.Server.StorageDir
	}

	if err := os.MkdirAll(flagStorageDir, 0755); err != nil {
		return fmt.Errorf("failed to create storage dir %q: %w", flagStorageDir, err)
	}

	db, err := gorm.Open(sqlite.Open(flagDB), &gorm.Config{})
	if err != nil {
		return fmt.Errorf("failed to open database %q: %w", flagDB, err)
	}
	if err := gallery.AutoMigrate(db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	var resolver metadata.Resolver
	if !flagNoResolve {
		resolver = civitai.NewClient(civitai.Config{
			APIURL:        conf.Civitai.APIURL,
			APIKey:        conf.Civitai.APIKey,
			HashAlgorithm: conf.Civitai.HashAlgorithm,
			Timeout:       conf.Civitai.Timeout(),
		})
	}
	extractor := metadata.NewExtractor(resolver, conf.Civitai.Timeout())

	r := gin.Default()
	gallery.RegisterRoutes(r, gallery.NewServer(db, extractor, flagStorageDir))

	log.Printf("listening on %s, db %s, storage %s", flagListen, flagDB, flagStorageDir)
	return r.Run(flagListen)
}
