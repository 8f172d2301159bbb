package metadata

import (
	"regexp"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/miraveja/miraveja/util"
)

// The free-text convention parsed here: the blob begins with the positive
// prompt (possibly multi-line), optionally followed by a "Negative prompt:"
// line, optionally followed by a comma-separated "Key: Value" parameter line.
// The convention is informal and evolves upstream; parsing is best-effort and
// a missing field simply leaves the zero value.

var (
	// First "\nKey:" style line marks the boundary between prompt and parameters.
	boundaryRegex       = regexp.MustCompile(`\n([A-Za-z ]+):`)
	negativePromptRegex = regexp.MustCompile(`(?i)Negative prompt:(.*?)(\n|$)`)
	civitaiResRegex     = regexp.MustCompile(`Civitai resources:\s*(\[[^\]]+\])`)
)

// Aliases of GenerationMetadata fields on the parameter line.
var fieldAliases = map[string]string{
	"model":     "Model",
	"sampler":   "Sampler",
	"scheduler": "Schedule type",
	"seed":      "Seed",
	"cfgScale":  "CFG Scale",
	"steps":     "Steps",
	"size":      "Size",
}

// civitaiResource is one entry of the "Civitai resources:" embedded JSON array.
type civitaiResource struct {
	Type           string  `json:"type"`
	ModelVersionID int64   `json:"modelVersionId"`
	ModelName      string  `json:"modelName"`
	Hash           string  `json:"hash"`
	Weight         float64 `json:"weight"`
}

// ParseParameters parses a recovered free-text blob into a structured record.
// It returns nil only for empty input. No field is required: text with no
// recognizable parameter boundary yields a record with only Prompt set.
func ParseParameters(text string) *GenerationMetadata {
	if text == "" {
		return nil
	}
	meta := &GenerationMetadata{}

	boundary := boundaryRegex.FindStringIndex(text)
	if boundary == nil {
		meta.Prompt = strings.TrimSpace(text)
		return meta
	}

	prompt := text[:boundary[0]]
	prompt = strings.TrimPrefix(prompt, "Negative prompt:")
	meta.Prompt = strings.TrimSpace(prompt)

	if m := negativePromptRegex.FindStringSubmatch(text); m != nil {
		meta.NegativePrompt = strings.TrimSpace(m[1])
	}

	civitaiSetModel := false
	if m := civitaiResRegex.FindStringSubmatch(text); m != nil {
		resources, err := util.UnmarshalJson[[]civitaiResource]([]byte(m[1]))
		if err != nil {
			log.Debugf("malformed Civitai resources json: %v", err)
		}
		for _, res := range resources {
			switch res.Type {
			case "checkpoint":
				meta.Model = res.ModelName
				civitaiSetModel = true
			case "lora":
				meta.Loras = append(meta.Loras, LoraRef{
					ID:     res.ModelVersionID,
					Hash:   res.Hash,
					Name:   res.ModelName,
					Weight: res.Weight,
				})
			}
		}
	}

	for field, alias := range fieldAliases {
		if field == "model" && civitaiSetModel {
			// Structured Civitai data wins over the generic "Model:" scan.
			continue
		}
		value := scanField(text, alias)
		if value == "" {
			continue
		}
		switch field {
		case "model":
			meta.Model = value
		case "sampler":
			meta.Sampler = value
		case "scheduler":
			meta.Scheduler = value
		case "seed":
			meta.Seed = value
		case "size":
			meta.Size = value
		case "steps":
			if i, err := strconv.Atoi(value); err == nil {
				meta.Steps = i
			}
		case "cfgScale":
			if f, err := strconv.ParseFloat(value, 64); err == nil {
				meta.CfgScale = f
			}
		}
	}

	return meta
}

func scanField(text string, alias string) string {
	re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(alias) + `:\s*([^,\n]+)`)
	if m := re.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}
