// Package civitai is a minimal client for the Civitai public API: the
// model-version registry used to resolve lora hashes, and the images feed
// used by the acquire command.
package civitai

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/miraveja/miraveja/constants"
	"github.com/miraveja/miraveja/metadata"
)

type Config struct {
	APIURL        string        // base url, e.g. "https://civitai.com/api/v1"
	APIKey        string        // optional Bearer token
	HashAlgorithm string        // which hash variant to pick, e.g. "AutoV2"
	Timeout       time.Duration // per request
}

type Client struct {
	cfg  Config
	http *http.Client
}

func NewClient(cfg Config) *Client {
	if cfg.APIURL == "" {
		cfg.APIURL = constants.DEFAULT_CIVITAI_API_URL
	}
	if cfg.HashAlgorithm == "" {
		cfg.HashAlgorithm = constants.DEFAULT_HASH_ALGORITHM
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = constants.DEFAULT_REGISTRY_TIMEOUT_SECONDS * time.Second
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}
}

// ModelVersion is the registry record for one published model version.
type ModelVersion struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Model struct {
		Name string `json:"name"`
		Type string `json:"type"`
	} `json:"model"`
	Files []ModelFile `json:"files"`
}

type ModelFile struct {
	Name    string            `json:"name"`
	Primary bool              `json:"primary"`
	Hashes  map[string]string `json:"hashes"` // keyed by hash variant name
}

// Hash returns the file hash of the given variant from the primary file,
// falling back to the first file carrying that variant.
func (v *ModelVersion) Hash(algorithm string) string {
	for _, f := range v.Files {
		if f.Primary {
			if h, ok := f.Hashes[algorithm]; ok {
				return h
			}
		}
	}
	for _, f := range v.Files {
		if h, ok := f.Hashes[algorithm]; ok {
			return h
		}
	}
	return ""
}

// GetModelVersion fetches one model version record by id.
func (c *Client) GetModelVersion(ctx context.Context, id int64) (*ModelVersion, error) {
	var version ModelVersion
	err := c.get(ctx, fmt.Sprintf("%s/model-versions/%d", c.cfg.APIURL, id), nil, &version)
	if err != nil {
		return nil, err
	}
	return &version, nil
}

// Resolve implements metadata.Resolver. A hash-bearing ref is returned
// unchanged; a bare ref is looked up by version id, one attempt, and enriched
// with the configured hash variant.
func (c *Client) Resolve(ctx context.Context, ref metadata.LoraRef) (metadata.LoraRef, error) {
	if ref.Hash != "" {
		return ref, nil
	}
	if ref.ID == 0 {
		return ref, fmt.Errorf("no version id to resolve by")
	}
	version, err := c.GetModelVersion(ctx, ref.ID)
	if err != nil {
		return ref, err
	}
	hash := version.Hash(c.cfg.HashAlgorithm)
	if hash == "" {
		return ref, fmt.Errorf("registry record has no %s hash", c.cfg.HashAlgorithm)
	}
	ref.Hash = hash
	if ref.Name == "" {
		ref.Name = version.Model.Name
	}
	return ref, nil
}

// FeedParams are the query parameters of the images feed.
type FeedParams struct {
	Limit  int
	Sort   string // e.g. "Most Reactions", "Newest"
	Period string // e.g. "Day", "Week", "AllTime"
	NSFW   string // nsfw level filter
}

// FeedImage is one entry of the images feed.
type FeedImage struct {
	ID     int64          `json:"id"`
	URL    string         `json:"url"`
	Width  int            `json:"width"`
	Height int            `json:"height"`
	Meta   map[string]any `json:"meta"` // raw generation metadata, may be nil
}

// GetImages fetches up to params.Limit entries of the images feed.
func (c *Client) GetImages(ctx context.Context, params FeedParams) ([]FeedImage, error) {
	values := url.Values{}
	if params.Limit > 0 {
		values.Set("limit", strconv.Itoa(params.Limit))
	}
	if params.Sort != "" {
		values.Set("sort", params.Sort)
	}
	if params.Period != "" {
		values.Set("period", params.Period)
	}
	if params.NSFW != "" {
		values.Set("nsfw", params.NSFW)
	}
	var feed struct {
		Items []FeedImage `json:"items"`
	}
	if err := c.get(ctx, c.cfg.APIURL+"/images", values, &feed); err != nil {
		return nil, err
	}
	return feed.Items, nil
}

// Download fetches the raw contents of an image file url.
func (c *Client) Download(ctx context.Context, fileURL string) (data []byte, contentType string, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("http status %d", resp.StatusCode)
	}
	data, err = io.ReadAll(resp.Body)
	return data, resp.Header.Get("Content-Type"), err
}

func (c *Client) get(ctx context.Context, rawURL string, values url.Values, target any) error {
	if len(values) > 0 {
		rawURL += "?" + values.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}
	log.Debugf("civitai request: %s", rawURL)
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("http status %d: %s", resp.StatusCode, string(body))
	}
	return json.NewDecoder(resp.Body).Decode(target)
}
