package constants

const (
	// Env variable names

	ENV_CONFIG           = "MIRAVEJA_CONFIG"           // config file path
	ENV_CIVITAI_API_URL  = "MIRAVEJA_CIVITAI_API_URL"  // Civitai API base url
	ENV_CIVITAI_API_KEY  = "MIRAVEJA_CIVITAI_API_KEY"  // Civitai API key (Bearer token)
	ENV_HASH_ALGORITHM   = "MIRAVEJA_HASH_ALGORITHM"   // preferred model file hash variant
	ENV_DB               = "MIRAVEJA_DB"               // gallery sqlite database path
	ENV_STORAGE_DIR      = "MIRAVEJA_STORAGE_DIR"      // gallery image storage dir
	ENV_REGISTRY_TIMEOUT = "MIRAVEJA_REGISTRY_TIMEOUT" // registry lookup timeout (seconds)

	DEFAULT_CIVITAI_API_URL = "https://civitai.com/api/v1"

	// Model file hash variants that the Civitai registry publishes.
	HASH_AUTOV1 = "AutoV1"
	HASH_AUTOV2 = "AutoV2"
	HASH_SHA256 = "SHA256"
	HASH_CRC32  = "CRC32"
	HASH_BLAKE3 = "BLAKE3"

	DEFAULT_HASH_ALGORITHM = HASH_AUTOV2

	// Single attempt, fail-soft. One slow registry lookup must not stall an upload.
	DEFAULT_REGISTRY_TIMEOUT_SECONDS = 5

	DEFAULT_LISTEN      = ":8080"
	DEFAULT_DB          = "miraveja.db"
	DEFAULT_STORAGE_DIR = "gallery_files"
)

const HELP_TEMPLATE_FLAG = `The Go text template string. If the value starts with "@", ` +
	`it (the rest part after @) is treated as a filename, ` +
	`which contents will be used as template. ` +
	`All sprout functions are supported, see https://github.com/go-sprout/sprout`
