// Package publish orchestrates the multi-step eBay listing pipeline: policy
// validation, duplicate pre-check, inventory item creation, merchant location
// resolution, offer creation and offer publishing, with partial-failure
// cleanup and offer-exists recovery.
package publish

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/jmfallon/beepbeep/internal/ebay"
	"github.com/jmfallon/beepbeep/internal/metrics"
	"github.com/jmfallon/beepbeep/internal/sku"
	"github.com/jmfallon/beepbeep/internal/store"
	domain "github.com/jmfallon/beepbeep/pkg/types"
)

const (
	maxTitleLen       = 80
	maxDescriptionLen = 50000
	offerQuantity     = 1
)

// Pipeline stage names used in failure metrics.
const (
	stagePolicies       = "validate_policies"
	stageDuplicateCheck = "duplicate_check"
	stageSku            = "generate_sku"
	stageCreateItem     = "create_item"
	stageLocation       = "resolve_location"
	stageCreateOffer    = "create_offer"
	stagePublishOffer   = "publish_offer"
)

// MissingPoliciesError reports which business policy IDs are not configured.
type MissingPoliciesError struct {
	Missing []string
}

func (e *MissingPoliciesError) Error() string {
	return "business policies not configured: " + strings.Join(e.Missing, ", ")
}

// DuplicateError means the UPC is already listed under another SKU.
type DuplicateError struct {
	UPC         string
	ExistingSKU string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("upc %s already listed as sku %s", e.UPC, e.ExistingSKU)
}

// Input is one listing to publish.
type Input struct {
	Title       string
	Description string
	Price       string
	Currency    string
	Condition   string
	ImageURLs   []string
	CategoryID  string
	UPC         string
	Brand       string
	Aspects     map[string][]string
	// SKU, when set, is used as-is and the counter is never committed.
	SKU string
}

// SellAPI is the slice of the Sell Inventory client the publisher needs.
type SellAPI interface {
	CreateOrReplaceInventoryItem(ctx context.Context, userID, sku string, item *ebay.InventoryItem) error
	DeleteInventoryItem(ctx context.Context, userID, sku string) error
	CreateOffer(ctx context.Context, userID string, offer *ebay.Offer) (string, error)
	PublishOffer(ctx context.Context, userID, offerID string) (string, error)
	ListLocations(ctx context.Context, userID string) (*ebay.LocationsPage, error)
	CreateLocation(ctx context.Context, userID, key string, loc *ebay.Location) error
}

// SkuSource produces and commits sequential SKUs.
type SkuSource interface {
	Next(ctx context.Context, userID string, info sku.ProductInfo) (string, bool, error)
	Commit(ctx context.Context, userID, sku string) error
}

// DuplicateFinder probes the seller's inventory for an existing UPC.
type DuplicateFinder interface {
	FindDuplicate(ctx context.Context, userID, upc string) (string, error)
}

// SettingsStore is the slice of the datastore the publisher needs.
type SettingsStore interface {
	GetPolicies(ctx context.Context, userID string) (*domain.BusinessPolicies, error)
	GetDiscountSettings(ctx context.Context, userID string) (*domain.DiscountSettings, error)
	GetDescriptionOverride(ctx context.Context, userID string) (*domain.DescriptionOverride, error)
}

// Publisher runs the listing pipeline.
type Publisher struct {
	sell        SellAPI
	skus        SkuSource
	dups        DuplicateFinder
	settings    SettingsStore
	marketplace string
	log         *slog.Logger
}

// PublisherOption configures the Publisher.
type PublisherOption func(*Publisher)

// WithPublisherLogger sets the logger.
func WithPublisherLogger(l *slog.Logger) PublisherOption {
	return func(p *Publisher) {
		p.log = l
	}
}

// NewPublisher creates a Publisher. dups may be nil to skip the duplicate
// pre-check entirely.
func NewPublisher(
	sell SellAPI,
	skus SkuSource,
	dups DuplicateFinder,
	settings SettingsStore,
	marketplace string,
	opts ...PublisherOption,
) *Publisher {
	p := &Publisher{
		sell:        sell,
		skus:        skus,
		dups:        dups,
		settings:    settings,
		marketplace: marketplace,
		log:         slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Publish runs the full pipeline for one listing. On success the SKU counter
// has been advanced when the SKU came from the generator.
func (p *Publisher) Publish(
	ctx context.Context,
	userID string,
	input Input,
) (*domain.PublishResult, error) {
	policies, err := p.validatePolicies(ctx, userID)
	if err != nil {
		return nil, p.fail(stagePolicies, err)
	}

	if input.UPC != "" && p.dups != nil {
		existing, err := p.dups.FindDuplicate(ctx, userID, input.UPC)
		if err != nil {
			return nil, p.fail(stageDuplicateCheck, fmt.Errorf("duplicate pre-check: %w", err))
		}
		if existing != "" {
			return nil, p.fail(stageDuplicateCheck, &DuplicateError{
				UPC:         input.UPC,
				ExistingSKU: existing,
			})
		}
	}

	itemSKU := input.SKU
	fromCounter := false
	if itemSKU == "" {
		itemSKU, fromCounter, err = p.skus.Next(ctx, userID, sku.ProductInfo{
			Title:   input.Title,
			Aspects: input.Aspects,
		})
		if err != nil {
			return nil, p.fail(stageSku, fmt.Errorf("generating sku: %w", err))
		}
	}

	item := buildInventoryItem(input)
	if err := p.sell.CreateOrReplaceInventoryItem(ctx, userID, itemSKU, item); err != nil {
		return nil, p.fail(stageCreateItem, err)
	}

	locationKey, err := p.resolveLocation(ctx, userID)
	if err != nil {
		p.cleanup(ctx, userID, itemSKU)
		return nil, p.fail(stageLocation, err)
	}

	offer, err := p.buildOffer(ctx, userID, itemSKU, locationKey, policies, input)
	if err != nil {
		p.cleanup(ctx, userID, itemSKU)
		return nil, p.fail(stageCreateOffer, err)
	}

	offerID, recovered, err := p.createOffer(ctx, userID, offer)
	if err != nil && ebay.IsOfferExists(err) {
		// 25002 without an offerId: the SKU is burned on eBay's side.
		// Regenerate and retry the item+offer pair once.
		offerID, itemSKU, fromCounter, err = p.retryWithFreshSku(ctx, userID, itemSKU, input, offer)
	}
	if err != nil {
		p.cleanup(ctx, userID, itemSKU)
		return nil, p.fail(stageCreateOffer, err)
	}

	listingID, err := p.sell.PublishOffer(ctx, userID, offerID)
	if err != nil {
		p.cleanup(ctx, userID, itemSKU)
		return nil, p.fail(stagePublishOffer, err)
	}

	if fromCounter {
		if err := p.skus.Commit(ctx, userID, itemSKU); err != nil {
			// The listing is live; do not fail the publish over counter state.
			p.log.Warn("sku counter commit failed after publish",
				"user_id", userID,
				"sku", itemSKU,
				"error", err,
			)
		}
	}

	metrics.PublishesTotal.Inc()
	p.log.Info("listing published",
		"user_id", userID,
		"sku", itemSKU,
		"offer_id", offerID,
		"listing_id", listingID,
		"recovered_offer", recovered,
	)

	return &domain.PublishResult{
		ListingID:      listingID,
		OfferID:        offerID,
		SKU:            itemSKU,
		RecoveredOffer: recovered,
	}, nil
}

func (p *Publisher) validatePolicies(
	ctx context.Context,
	userID string,
) (*domain.BusinessPolicies, error) {
	policies, err := p.settings.GetPolicies(ctx, userID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("loading business policies: %w", err)
	}
	if missing := policies.Missing(); len(missing) > 0 {
		return nil, &MissingPoliciesError{Missing: missing}
	}
	return policies, nil
}

// createOffer creates the offer, recovering an existing one when the
// provider error carries its ID.
func (p *Publisher) createOffer(
	ctx context.Context,
	userID string,
	offer *ebay.Offer,
) (offerID string, recovered bool, err error) {
	offerID, err = p.sell.CreateOffer(ctx, userID, offer)
	if err == nil {
		return offerID, false, nil
	}

	if ebay.IsOfferExists(err) {
		if existing, ok := ebay.OfferIDFromError(err); ok && existing != "" {
			metrics.OfferRecoveriesTotal.Inc()
			p.log.Info("reusing existing offer",
				"user_id", userID,
				"sku", offer.SKU,
				"offer_id", existing,
			)
			return existing, true, nil
		}
	}
	return "", false, err
}

// retryWithFreshSku handles an offer-exists error that carried no offerId:
// the inventory item is recreated under a new generated SKU and the offer
// creation retried once.
func (p *Publisher) retryWithFreshSku(
	ctx context.Context,
	userID, oldSKU string,
	input Input,
	offer *ebay.Offer,
) (offerID, newSKU string, fromCounter bool, err error) {
	p.cleanup(ctx, userID, oldSKU)

	newSKU, fromCounter, err = p.skus.Next(ctx, userID, sku.ProductInfo{
		Title:   input.Title,
		Aspects: input.Aspects,
	})
	if err != nil {
		return "", oldSKU, false, fmt.Errorf("regenerating sku after offer conflict: %w", err)
	}

	item := buildInventoryItem(input)
	if err := p.sell.CreateOrReplaceInventoryItem(ctx, userID, newSKU, item); err != nil {
		return "", newSKU, false, err
	}

	retry := *offer
	retry.SKU = newSKU
	offerID, err = p.sell.CreateOffer(ctx, userID, &retry)
	if err != nil {
		return "", newSKU, false, err
	}

	p.log.Info("offer conflict resolved with fresh sku",
		"user_id", userID,
		"old_sku", oldSKU,
		"sku", newSKU,
	)
	return offerID, newSKU, fromCounter, nil
}

// resolveLocation returns an existing merchant location key, creating a
// default warehouse when the seller has none.
func (p *Publisher) resolveLocation(ctx context.Context, userID string) (string, error) {
	page, err := p.sell.ListLocations(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("listing merchant locations: %w", err)
	}
	if len(page.Locations) > 0 {
		return page.Locations[0].MerchantLocationKey, nil
	}

	key := "wh-" + uuid.NewString()[:8]
	loc := &ebay.Location{
		Name:          "Default Warehouse",
		LocationTypes: []string{"WAREHOUSE"},
		Location: &ebay.LocationAddress{
			Address: &ebay.Address{
				AddressLine1:    "1 Main St",
				City:            "San Jose",
				StateOrProvince: "CA",
				PostalCode:      "95131",
				Country:         "US",
			},
		},
	}
	if err := p.sell.CreateLocation(ctx, userID, key, loc); err != nil {
		return "", fmt.Errorf("creating default location: %w", err)
	}

	p.log.Info("created default merchant location",
		"user_id", userID,
		"location_key", key,
	)
	return key, nil
}

func (p *Publisher) buildOffer(
	ctx context.Context,
	userID, itemSKU, locationKey string,
	policies *domain.BusinessPolicies,
	input Input,
) (*ebay.Offer, error) {
	price, err := p.applyDiscount(ctx, userID, input.Price)
	if err != nil {
		return nil, err
	}

	description, err := p.applyDescriptionOverride(ctx, userID, input.Description)
	if err != nil {
		return nil, err
	}

	currency := input.Currency
	if currency == "" {
		currency = "USD"
	}

	marketplace := policies.MarketplaceID
	if marketplace == "" {
		marketplace = p.marketplace
	}

	return &ebay.Offer{
		SKU:                 itemSKU,
		MarketplaceID:       marketplace,
		Format:              "FIXED_PRICE",
		CategoryID:          input.CategoryID,
		AvailableQuantity:   offerQuantity,
		ListingDescription:  clip(description, maxDescriptionLen),
		MerchantLocationKey: locationKey,
		PricingSummary: &ebay.PricingSummary{
			Price: &ebay.Amount{Value: price, Currency: currency},
		},
		ListingPolicies: &ebay.ListingPolicies{
			FulfillmentPolicyID: policies.FulfillmentPolicyID,
			PaymentPolicyID:     policies.PaymentPolicyID,
			ReturnPolicyID:      policies.ReturnPolicyID,
		},
	}, nil
}

// applyDiscount applies the user's percent-off discount, respecting the
// minimum price floor. Missing settings mean no discount.
func (p *Publisher) applyDiscount(ctx context.Context, userID, price string) (string, error) {
	settings, err := p.settings.GetDiscountSettings(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return price, nil
	}
	if err != nil {
		return "", fmt.Errorf("loading discount settings: %w", err)
	}
	if !settings.Enabled || settings.PercentOff <= 0 {
		return price, nil
	}

	value, err := strconv.ParseFloat(price, 64)
	if err != nil {
		return "", fmt.Errorf("parsing price %q: %w", price, err)
	}

	discounted := value * (1 - settings.PercentOff/100)
	if discounted < settings.MinPriceFloor {
		discounted = settings.MinPriceFloor
	}
	return strconv.FormatFloat(discounted, 'f', 2, 64), nil
}

func (p *Publisher) applyDescriptionOverride(
	ctx context.Context,
	userID, description string,
) (string, error) {
	override, err := p.settings.GetDescriptionOverride(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return description, nil
	}
	if err != nil {
		return "", fmt.Errorf("loading description override: %w", err)
	}
	if !override.Enabled || override.Template == "" {
		return description, nil
	}
	return override.Template, nil
}

// cleanup removes the inventory item after a downstream failure. Best
// effort; a failed delete only logs.
func (p *Publisher) cleanup(ctx context.Context, userID, itemSKU string) {
	if err := p.sell.DeleteInventoryItem(ctx, userID, itemSKU); err != nil {
		p.log.Warn("inventory item cleanup failed",
			"user_id", userID,
			"sku", itemSKU,
			"error", err,
		)
	}
}

func (p *Publisher) fail(stage string, err error) error {
	metrics.PublishFailuresTotal.WithLabelValues(stage).Inc()
	return err
}

func buildInventoryItem(input Input) *ebay.InventoryItem {
	product := &ebay.Product{
		Title:       clip(input.Title, maxTitleLen),
		Description: clip(input.Description, maxDescriptionLen),
		ImageURLs:   input.ImageURLs,
		Brand:       input.Brand,
		Aspects:     input.Aspects,
	}
	if input.UPC != "" {
		product.UPC = []string{input.UPC}
	}

	return &ebay.InventoryItem{
		Locale:    "en_US",
		Condition: conditionEnum(input.Condition),
		Product:   product,
		Availability: &ebay.Availability{
			ShipToLocationAvailability: &ebay.ShipToLocation{
				Quantity: offerQuantity,
			},
		},
	}
}

// conditionEnum maps friendly condition names onto the Sell Inventory
// condition enum. Values already in enum form pass through.
func conditionEnum(condition string) string {
	switch strings.ToLower(strings.TrimSpace(condition)) {
	case "", "new":
		return "NEW"
	case "like new", "open box":
		return "LIKE_NEW"
	case "very good":
		return "USED_VERY_GOOD"
	case "good":
		return "USED_GOOD"
	case "acceptable":
		return "USED_ACCEPTABLE"
	case "for parts", "for parts or not working":
		return "FOR_PARTS_OR_NOT_WORKING"
	default:
		return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(condition), " ", "_"))
	}
}

func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
