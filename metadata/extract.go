package metadata

import (
	"context"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// Resolver fills in the canonical hash of a bare lora reference, typically by
// querying an external model registry. Implementations must treat a
// hash-bearing ref as already resolved and return it unchanged.
type Resolver interface {
	Resolve(ctx context.Context, ref LoraRef) (LoraRef, error)
}

// Reasons an extraction returned a (partially) default record.
const (
	ReasonUnsupportedFormat = "unsupported format"
	ReasonNoEmbeddedText    = "no embedded text"
	ReasonInternalError     = "internal error"
)

// Report carries extraction diagnostics so callers and tests can tell why a
// record stayed default without parsing logs.
type Report struct {
	Format        Format   `json:"format"`
	Text          string   `json:"text,omitempty"`          // raw recovered text blob
	Reason        string   `json:"reason,omitempty"`        // empty when parameters were parsed
	ResolveErrors []string `json:"resolveErrors,omitempty"` // soft registry lookup failures
}

// Extractor runs the full pipeline: sniff format, read embedded text, parse
// generation parameters, resolve lora references. Each call is independent
// and stateless aside from the injected resolver.
type Extractor struct {
	resolver Resolver      // optional; nil skips registry resolution
	timeout  time.Duration // per registry lookup
}

func NewExtractor(resolver Resolver, timeout time.Duration) *Extractor {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Extractor{resolver: resolver, timeout: timeout}
}

// Extract recovers generation metadata from the raw bytes of an uploaded
// image file. It never returns nil and never propagates an error: a malformed
// or unusual file degrades to less metadata, not to a failed upload.
func (e *Extractor) Extract(ctx context.Context, data []byte) (meta *GenerationMetadata, report *Report) {
	meta = &GenerationMetadata{}
	report = &Report{}

	defer func() {
		if r := recover(); r != nil {
			log.Errorf("metadata extraction panic: %v", r)
			meta = &GenerationMetadata{}
			report.Reason = ReasonInternalError
		}
	}()

	report.Format = Classify(data)

	var text string
	var ok bool
	switch report.Format {
	case FormatPNG:
		text, ok = ReadPNGText(data)
	case FormatJPEG:
		text, ok = ReadJPEGText(data)
	default:
		report.Reason = ReasonUnsupportedFormat
		return meta, report
	}
	if !ok {
		report.Reason = ReasonNoEmbeddedText
		return meta, report
	}
	report.Text = text

	if parsed := ParseParameters(text); parsed != nil {
		meta = parsed
	}

	if e.resolver != nil && len(meta.Loras) > 0 {
		report.ResolveErrors = e.resolveLoras(ctx, meta.Loras)
	}
	return meta, report
}

// resolveLoras resolves all bare refs concurrently, replacing entries in
// place. Entries keep their position; failures are collected, never fatal.
func (e *Extractor) resolveLoras(ctx context.Context, loras []LoraRef) (errs []string) {
	var wg sync.WaitGroup
	var mu sync.Mutex
	for i := range loras {
		if loras[i].Hash != "" {
			// Self-describing reference, trusted as-is.
			continue
		}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			lookupCtx, cancel := context.WithTimeout(ctx, e.timeout)
			defer cancel()
			resolved, err := e.resolver.Resolve(lookupCtx, loras[i])
			if err != nil {
				log.Warnf("failed to resolve lora %q (version id %d): %v", loras[i].Name, loras[i].ID, err)
				mu.Lock()
				errs = append(errs, fmt.Sprintf("lora %d: %v", loras[i].ID, err))
				mu.Unlock()
				return
			}
			mu.Lock()
			loras[i] = resolved
			mu.Unlock()
		}(i)
	}
	wg.Wait()
	return errs
}
