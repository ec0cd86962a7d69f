package pdf

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/deckgen/deckgen/internal/book"
)

// DetectFunc is one detection layer: a pure function over the document.
// A nil result with a nil error means the layer found nothing.
type DetectFunc func(ctx context.Context, src Source) (*book.DetectionResult, error)

// Layer is one row of the cascade's priority table. Keeping the cascade
// declarative makes adding or reordering layers a one-line change.
type Layer struct {
	Name          string
	Method        book.ExtractionMethod
	Detect        DetectFunc
	MinConfidence float64
	EarlyExit     bool
	Description   string
}

// defaultLayers is the detection priority order: strongest signal first.
func defaultLayers() []Layer {
	return []Layer{
		{
			Name:          "outline",
			Method:        book.MethodPDFOutline,
			Detect:        detectByOutline,
			MinConfidence: 0.90,
			EarlyExit:     true,
			Description:   "PDF bookmarks/outline",
		},
		{
			Name:          "font",
			Method:        book.MethodPDFFont,
			Detect:        detectByFont,
			MinConfidence: 0.70,
			EarlyExit:     true,
			Description:   "Font size analysis",
		},
		{
			Name:          "pattern",
			Method:        book.MethodPDFPattern,
			Detect:        detectByPattern,
			MinConfidence: 0.50,
			EarlyExit:     true,
			Description:   "Regex pattern matching",
		},
		{
			Name:          "layout",
			Method:        book.MethodPDFLayout,
			Detect:        detectByLayout,
			MinConfidence: 0.35,
			EarlyExit:     false,
			Description:   "Layout heuristics",
		},
	}
}

// Cascade runs detection layers in priority order with per-layer
// confidence thresholds and a distribution sanity check.
type Cascade struct {
	layers        []Layer
	thresholds    Thresholds
	pagesPerChunk int
	logger        *slog.Logger
}

// CascadeOption configures a Cascade.
type CascadeOption func(*Cascade)

// WithLayers replaces the default layer table.
func WithLayers(layers []Layer) CascadeOption {
	return func(c *Cascade) { c.layers = layers }
}

// WithThresholds overrides the distribution validator tuning.
func WithThresholds(th Thresholds) CascadeOption {
	return func(c *Cascade) { c.thresholds = th }
}

// WithPagesPerChunk sets the fallback chunk size.
func WithPagesPerChunk(n int) CascadeOption {
	return func(c *Cascade) { c.pagesPerChunk = n }
}

// WithLogger sets the cascade's logger.
func WithLogger(logger *slog.Logger) CascadeOption {
	return func(c *Cascade) { c.logger = logger }
}

// NewCascade creates a cascade with the standard layer table.
func NewCascade(opts ...CascadeOption) *Cascade {
	c := &Cascade{
		layers:        defaultLayers(),
		thresholds:    DefaultThresholds(),
		pagesPerChunk: DefaultPagesPerChunk,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DetectSections runs the cascade and always returns a usable result.
// Layer failures are recovered and treated as skips; candidates below
// their layer's threshold or with a suspicious word distribution are
// discarded whole. An accepted early-exit layer returns immediately; an
// accepted non-early-exit layer is recorded and returned once the table
// is exhausted. If nothing is accepted, page chunking takes over.
func (c *Cascade) DetectSections(ctx context.Context, src Source) *book.DetectionResult {
	var recorded *book.DetectionResult

	for _, layer := range c.layers {
		if ctx.Err() != nil {
			break
		}
		c.logger.Info("trying detection layer", "layer", layer.Name, "description", layer.Description)

		result, err := runLayer(ctx, layer, src)
		if err != nil {
			c.logger.Warn("detection layer failed", "layer", layer.Name, "error", err)
			continue
		}
		if result == nil {
			c.logger.Info("detection layer found nothing", "layer", layer.Name)
			continue
		}

		if result.Confidence < layer.MinConfidence {
			c.logger.Info("detection layer below threshold",
				"layer", layer.Name,
				"confidence", result.Confidence,
				"threshold", layer.MinConfidence)
			continue
		}

		valid, err := validateDistribution(ctx, src, result.Sections, c.thresholds)
		if err != nil {
			c.logger.Warn("distribution validation failed", "layer", layer.Name, "error", err)
			continue
		}
		if !valid {
			c.logger.Warn("suspicious word distribution, discarding layer result", "layer", layer.Name)
			continue
		}

		c.logger.Info("detection layer accepted",
			"layer", layer.Name,
			"sections", len(result.Sections),
			"confidence", result.Confidence)

		if layer.EarlyExit {
			return result
		}
		recorded = result
	}

	if recorded != nil {
		return recorded
	}

	c.logger.Warn("all detection layers exhausted, using page-based chunking")
	return chunkByPages(src.PageCount(), c.pagesPerChunk)
}

// runLayer invokes a detection layer, converting panics into errors so a
// misbehaving layer can never take down the cascade or leave partial state.
func runLayer(ctx context.Context, layer Layer, src Source) (result *book.DetectionResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("layer %s panicked: %v", layer.Name, r)
		}
	}()
	return layer.Detect(ctx, src)
}
