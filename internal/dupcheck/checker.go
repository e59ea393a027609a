package dupcheck

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmfallon/beepbeep/internal/ebay"
	"github.com/jmfallon/beepbeep/internal/metrics"
)

// Failure policies for inventory scan errors.
const (
	// OnFailureReturnEmpty degrades any scan error to "no duplicate" so a
	// duplicate check can never block a listing attempt. The error is logged
	// and counted.
	OnFailureReturnEmpty = "return_empty"
	// OnFailurePropagate returns scan errors to the caller.
	OnFailurePropagate = "propagate"
)

// InventoryLister is the slice of the Sell Inventory client the checker
// needs.
type InventoryLister interface {
	ListInventoryItems(ctx context.Context, userID string, limit, offset int) (*ebay.InventoryItemsPage, error)
	GetInventoryItem(ctx context.Context, userID, sku string) (*ebay.InventoryItem, error)
}

// Match is one inventory item carrying the target UPC.
type Match struct {
	SKU       string `json:"sku"`
	Title     string `json:"title,omitempty"`
	MatchedOn string `json:"matched_on"`
}

// Checker pages through a seller's inventory looking for items with a given
// UPC in their product identifiers.
type Checker struct {
	inventory  InventoryLister
	pageSize   int
	maxMatches int
	timeout    time.Duration
	onFailure  string
	log        *slog.Logger
}

// CheckerOption configures the Checker.
type CheckerOption func(*Checker)

// WithPageSize sets the inventory page size.
func WithPageSize(n int) CheckerOption {
	return func(c *Checker) {
		c.pageSize = n
	}
}

// WithMaxMatches caps how many matches are collected before the scan stops.
func WithMaxMatches(n int) CheckerOption {
	return func(c *Checker) {
		c.maxMatches = n
	}
}

// WithTimeout bounds the wall-clock duration of one scan.
func WithTimeout(d time.Duration) CheckerOption {
	return func(c *Checker) {
		c.timeout = d
	}
}

// WithOnFailure sets the failure policy, OnFailureReturnEmpty or
// OnFailurePropagate.
func WithOnFailure(policy string) CheckerOption {
	return func(c *Checker) {
		c.onFailure = policy
	}
}

// WithCheckerLogger sets the logger.
func WithCheckerLogger(l *slog.Logger) CheckerOption {
	return func(c *Checker) {
		c.log = l
	}
}

// NewChecker creates a Checker with the default page size 200, match cap 10,
// 10s timeout and the return-empty failure policy.
func NewChecker(inventory InventoryLister, opts ...CheckerOption) *Checker {
	c := &Checker{
		inventory:  inventory,
		pageSize:   200,
		maxMatches: 10,
		timeout:    10 * time.Second,
		onFailure:  OnFailureReturnEmpty,
		log:        slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FindDuplicate returns the SKU of the first inventory item matching the
// UPC, or "" when none matches. Under the return-empty policy scan errors
// also yield "".
func (c *Checker) FindDuplicate(ctx context.Context, userID, upc string) (string, error) {
	matches, err := c.FindDuplicates(ctx, userID, upc)
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", nil
	}
	return matches[0].SKU, nil
}

// FindDuplicates returns every inventory item matching the UPC, up to the
// configured cap.
func (c *Checker) FindDuplicates(ctx context.Context, userID, upc string) ([]Match, error) {
	if len(variants(upc)) == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	matches, err := c.scan(ctx, userID, upc)
	if err != nil {
		if c.onFailure == OnFailurePropagate {
			return nil, err
		}
		metrics.DuplicateCheckErrorsTotal.Inc()
		c.log.Warn("duplicate check failed, treating as no duplicate",
			"user_id", userID,
			"upc", upc,
			"error", err,
		)
		return nil, nil
	}

	if len(matches) > 0 {
		metrics.DuplicatesFoundTotal.Inc()
	}
	return matches, nil
}

func (c *Checker) scan(ctx context.Context, userID, upc string) ([]Match, error) {
	var matches []Match

	for offset := 0; ; offset += c.pageSize {
		page, err := c.inventory.ListInventoryItems(ctx, userID, c.pageSize, offset)
		if err != nil {
			return nil, fmt.Errorf("listing inventory at offset %d: %w", offset, err)
		}
		if len(page.InventoryItems) == 0 {
			break
		}

		for i := range page.InventoryItems {
			item := &page.InventoryItems[i]

			// Summaries often omit identifiers. Prefer the full item and
			// fall back to the summary when the fetch fails.
			detail, err := c.inventory.GetInventoryItem(ctx, userID, item.SKU)
			if err != nil {
				c.log.Debug("inventory detail fetch failed, using summary",
					"sku", item.SKU,
					"error", err,
				)
				detail = item
			}

			if how, ok := matchItem(detail, upc); ok {
				m := Match{SKU: detail.SKU, MatchedOn: how}
				if detail.Product != nil {
					m.Title = detail.Product.Title
				}
				matches = append(matches, m)
				if len(matches) >= c.maxMatches {
					return matches, nil
				}
			}
		}

		if page.Next == "" {
			break
		}
	}

	return matches, nil
}

// matchItem reports whether the item carries the UPC in any identifier
// field, and which field matched.
func matchItem(item *ebay.InventoryItem, upc string) (string, bool) {
	if item.Product != nil {
		fields := []struct {
			name  string
			codes []string
		}{
			{"upc", item.Product.UPC},
			{"ean", item.Product.EAN},
			{"isbn", item.Product.ISBN},
			{"gtin", item.Product.GTIN},
		}
		for _, f := range fields {
			for _, code := range f.codes {
				if codesMatch(code, upc) {
					return f.name, true
				}
			}
		}
	}

	for _, id := range item.ProductIdentifiers {
		if identifierTypes[id.Type] && codesMatch(id.Value, upc) {
			return "productIdentifiers." + id.Type, true
		}
	}

	return "", false
}
