// Package sku generates sequential, prefixed SKUs for new listings. SKUs are
// backed by a per-user counter in the store and optionally verified free
// against eBay inventory before being handed out.
package sku

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jmfallon/beepbeep/internal/ebay"
	"github.com/jmfallon/beepbeep/internal/store"
	domain "github.com/jmfallon/beepbeep/pkg/types"
)

// maxProbes bounds how many consecutive counter values are tried against
// eBay inventory before falling back to a timestamp SKU.
const maxProbes = 10

// Format controls how SKUs are rendered.
type Format struct {
	// Prefix is the default prefix when neither the product metadata nor the
	// user's stored settings supply one.
	Prefix string
	// Pad zero-pads the counter to this width when > 0.
	Pad int
	// VerifyUnique probes eBay inventory for each candidate before returning.
	VerifyUnique bool
}

// DefaultFormat matches the historical "{prefix}-{000123}" shape.
var DefaultFormat = Format{Pad: 6, VerifyUnique: true}

// SettingsStore is the slice of the datastore the generator needs.
type SettingsStore interface {
	GetSkuSettings(ctx context.Context, userID string) (*domain.SkuSettings, error)
	IncrementSkuCounter(ctx context.Context, userID string) (int64, error)
}

// InventoryProber checks whether a SKU already exists in the seller's eBay
// inventory. ebay.ErrNotFound means the SKU is free.
type InventoryProber interface {
	GetInventoryItem(ctx context.Context, userID, sku string) (*ebay.InventoryItem, error)
}

// ProductInfo is the product metadata scanned for a media-type prefix.
type ProductInfo struct {
	Title    string
	Category string
	Aspects  map[string][]string
}

// Generator produces SKUs of the form {prefix}-{counter}.
type Generator struct {
	store     SettingsStore
	inventory InventoryProber
	format    Format
	log       *slog.Logger
	nowFunc   func() time.Time
}

// GeneratorOption configures the Generator.
type GeneratorOption func(*Generator)

// WithGeneratorLogger sets the logger.
func WithGeneratorLogger(l *slog.Logger) GeneratorOption {
	return func(g *Generator) {
		g.log = l
	}
}

// WithGeneratorNowFunc overrides the time function for testing the
// timestamp fallback.
func WithGeneratorNowFunc(f func() time.Time) GeneratorOption {
	return func(g *Generator) {
		g.nowFunc = f
	}
}

// NewGenerator creates a Generator. inventory may be nil when
// format.VerifyUnique is false.
func NewGenerator(
	ss SettingsStore,
	inventory InventoryProber,
	format Format,
	opts ...GeneratorOption,
) *Generator {
	g := &Generator{
		store:     ss,
		inventory: inventory,
		format:    format,
		log:       slog.Default(),
		nowFunc:   time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// mediaPrefixes maps keywords found in product metadata to SKU prefixes.
// Checked in order so "blu-ray" wins over the "dvd" in a combo pack title.
var mediaPrefixes = []struct {
	keyword string
	prefix  string
}{
	{"blu-ray", "BD"},
	{"bluray", "BD"},
	{"4k ultra hd", "BD"},
	{"dvd", "DVD"},
	{"vhs", "TAPE"},
	{"cassette", "TAPE"},
	{"vinyl", "LP"},
	{"cd", "CD"},
}

// DerivePrefix scans the product's category, aspects and title for a known
// media type. Returns "" when nothing matches.
func DerivePrefix(info ProductInfo) string {
	var fields []string
	fields = append(fields, info.Category)
	for _, vals := range info.Aspects {
		fields = append(fields, vals...)
	}
	fields = append(fields, info.Title)

	for _, f := range fields {
		lower := strings.ToLower(f)
		for _, m := range mediaPrefixes {
			if strings.Contains(lower, m.keyword) {
				return m.prefix
			}
		}
	}
	return ""
}

// Next returns the next SKU for the user. fromCounter reports whether the
// SKU came from the stored counter; the timestamp fallback does not, and
// must not be committed.
func (g *Generator) Next(
	ctx context.Context,
	userID string,
	info ProductInfo,
) (sku string, fromCounter bool, err error) {
	counter := int64(1)
	storedPrefix := ""

	settings, err := g.store.GetSkuSettings(ctx, userID)
	switch {
	case err == nil:
		counter = settings.Counter
		storedPrefix = settings.Prefix
	case errors.Is(err, store.ErrNotFound):
		// First SKU for this user.
	default:
		return "", false, fmt.Errorf("loading sku settings: %w", err)
	}

	prefix := DerivePrefix(info)
	if prefix == "" {
		prefix = storedPrefix
	}
	if prefix == "" {
		prefix = g.format.Prefix
	}

	for attempt := int64(0); attempt < maxProbes; attempt++ {
		candidate := g.render(prefix, counter+attempt)

		if !g.format.VerifyUnique || g.inventory == nil {
			return candidate, true, nil
		}

		_, err := g.inventory.GetInventoryItem(ctx, userID, candidate)
		if errors.Is(err, ebay.ErrNotFound) {
			return candidate, true, nil
		}
		if err != nil {
			return "", false, fmt.Errorf("probing sku %s: %w", candidate, err)
		}

		g.log.Debug("sku already in inventory, advancing",
			"user_id", userID,
			"sku", candidate,
		)
	}

	// Counter range is exhausted by existing inventory. Hand out a
	// timestamp SKU so the publish can still proceed.
	fallback := fmt.Sprintf("%s-%d", prefix, g.nowFunc().Unix())
	if prefix == "" {
		fallback = fmt.Sprintf("%d", g.nowFunc().Unix())
	}
	g.log.Warn("sku counter range exhausted, using timestamp fallback",
		"user_id", userID,
		"sku", fallback,
	)
	return fallback, false, nil
}

// Commit advances the stored counter after a successful publish. Only call
// it for SKUs Next produced from the counter.
func (g *Generator) Commit(ctx context.Context, userID, sku string) error {
	n, err := g.store.IncrementSkuCounter(ctx, userID)
	if err != nil {
		return fmt.Errorf("incrementing sku counter: %w", err)
	}
	g.log.Debug("sku counter committed",
		"user_id", userID,
		"sku", sku,
		"counter", n,
	)
	return nil
}

func (g *Generator) render(prefix string, n int64) string {
	num := fmt.Sprintf("%d", n)
	if g.format.Pad > 0 {
		num = fmt.Sprintf("%0*d", g.format.Pad, n)
	}
	if prefix == "" {
		return num
	}
	return prefix + "-" + num
}
