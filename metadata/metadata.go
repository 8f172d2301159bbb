// Package metadata recovers AI-image generation parameters (prompt, sampler,
// seed, etc.) embedded as free text inside PNG / JPEG files, without decoding
// any pixels.
package metadata

// LoraRef is a reference to an auxiliary (LoRA) model used during generation.
// It may arrive self-describing (hash already present) or bare, requiring a
// registry lookup by version id.
type LoraRef struct {
	ID     int64   `json:"id,omitempty"`     // registry model version id, 0 if unknown
	Hash   string  `json:"hash"`             // canonical model file hash, "" if unresolved
	Name   string  `json:"name"`             // display name
	Weight float64 `json:"weight,omitempty"` // strength the lora was applied with, 0 if unknown
}

// GenerationMetadata is the structured record recovered from one image.
// All fields default to their zero value; absence of a field in the source
// text simply leaves the default. The record is never partially undefined.
type GenerationMetadata struct {
	Prompt         string    `json:"prompt"`
	NegativePrompt string    `json:"negativePrompt"`
	Model          string    `json:"model"`
	Sampler        string    `json:"sampler"`
	Scheduler      string    `json:"scheduler"`
	Steps          int       `json:"steps"`
	CfgScale       float64   `json:"cfgScale"`
	Seed           string    `json:"seed"` // kept as string: seeds may overflow int64 or be non-numeric
	Size           string    `json:"size"` // "WIDTHxHEIGHT"
	Loras          []LoraRef `json:"loras"`
}

// IsEmpty reports whether nothing was recovered at all.
func (m *GenerationMetadata) IsEmpty() bool {
	return m.Prompt == "" && m.NegativePrompt == "" && m.Model == "" &&
		m.Sampler == "" && m.Scheduler == "" && m.Steps == 0 &&
		m.CfgScale == 0 && m.Seed == "" && m.Size == "" && len(m.Loras) == 0
}
