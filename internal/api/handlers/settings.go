package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/jmfallon/beepbeep/internal/ebay"
	"github.com/jmfallon/beepbeep/internal/store"
	domain "github.com/jmfallon/beepbeep/pkg/types"
)

// SettingsStore is the slice of the datastore the settings handlers need.
type SettingsStore interface {
	GetSkuSettings(ctx context.Context, userID string) (*domain.SkuSettings, error)
	SetSkuSettings(ctx context.Context, settings *domain.SkuSettings) error
	GetPolicies(ctx context.Context, userID string) (*domain.BusinessPolicies, error)
	SetPolicies(ctx context.Context, policies *domain.BusinessPolicies) error
	GetDiscountSettings(ctx context.Context, userID string) (*domain.DiscountSettings, error)
	SetDiscountSettings(ctx context.Context, settings *domain.DiscountSettings) error
	GetDescriptionOverride(ctx context.Context, userID string) (*domain.DescriptionOverride, error)
	SetDescriptionOverride(ctx context.Context, override *domain.DescriptionOverride) error
}

// PolicyLister fetches the seller's business policies from eBay.
type PolicyLister interface {
	GetPolicies(ctx context.Context, userID, marketplaceID string) (*ebay.SellerPolicies, error)
}

// SettingsHandler handles per-user configuration.
type SettingsHandler struct {
	store       SettingsStore
	account     PolicyLister
	marketplace string
}

// NewSettingsHandler creates a new SettingsHandler. account may be nil; the
// available-policies endpoint then answers 502.
func NewSettingsHandler(s SettingsStore, account PolicyLister, marketplace string) *SettingsHandler {
	return &SettingsHandler{store: s, account: account, marketplace: marketplace}
}

// UserInput is a request carrying only the user header.
type UserInput struct {
	UserID string `header:"X-User-ID" doc:"User the settings belong to"`
}

// SkuSettingsOutput carries a user's SKU settings.
type SkuSettingsOutput struct {
	Body domain.SkuSettings
}

// GetSku returns the user's SKU counter state.
func (h *SettingsHandler) GetSku(ctx context.Context, input *UserInput) (*SkuSettingsOutput, error) {
	userID := userOrDefault(input.UserID)

	settings, err := h.store.GetSkuSettings(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		settings = &domain.SkuSettings{UserID: userID, Counter: 1}
	} else if err != nil {
		return nil, huma.Error500InternalServerError("loading sku settings: " + err.Error())
	}

	return &SkuSettingsOutput{Body: *settings}, nil
}

// PutSkuInput is the request for updating SKU settings.
type PutSkuInput struct {
	UserID string `header:"X-User-ID" doc:"User the settings belong to"`
	Body   struct {
		Prefix  string `json:"prefix,omitempty" doc:"SKU prefix" example:"BD"`
		Counter int64  `json:"counter,omitempty" minimum:"1" doc:"Counter value; never decreases"`
	}
}

// PutSku updates the user's SKU prefix and counter. The stored counter
// never moves backward.
func (h *SettingsHandler) PutSku(ctx context.Context, input *PutSkuInput) (*SkuSettingsOutput, error) {
	userID := userOrDefault(input.UserID)

	counter := input.Body.Counter
	if counter < 1 {
		counter = 1
	}

	if err := h.store.SetSkuSettings(ctx, &domain.SkuSettings{
		UserID:  userID,
		Prefix:  input.Body.Prefix,
		Counter: counter,
	}); err != nil {
		return nil, huma.Error500InternalServerError("saving sku settings: " + err.Error())
	}

	settings, err := h.store.GetSkuSettings(ctx, userID)
	if err != nil {
		return nil, huma.Error500InternalServerError("loading sku settings: " + err.Error())
	}
	return &SkuSettingsOutput{Body: *settings}, nil
}

// PoliciesOutput carries a user's stored policy IDs.
type PoliciesOutput struct {
	Body struct {
		domain.BusinessPolicies
		Missing []string `json:"missing,omitempty" doc:"Policy families still unconfigured"`
	}
}

// GetPolicies returns the user's configured business policy IDs.
func (h *SettingsHandler) GetPolicies(ctx context.Context, input *UserInput) (*PoliciesOutput, error) {
	userID := userOrDefault(input.UserID)

	policies, err := h.store.GetPolicies(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		policies = &domain.BusinessPolicies{UserID: userID, MarketplaceID: h.marketplace}
	} else if err != nil {
		return nil, huma.Error500InternalServerError("loading policies: " + err.Error())
	}

	out := &PoliciesOutput{}
	out.Body.BusinessPolicies = *policies
	out.Body.Missing = policies.Missing()
	return out, nil
}

// PutPoliciesInput is the request for updating stored policy IDs.
type PutPoliciesInput struct {
	UserID string `header:"X-User-ID" doc:"User the settings belong to"`
	Body   struct {
		MarketplaceID       string `json:"marketplace_id,omitempty" example:"EBAY_US"`
		PaymentPolicyID     string `json:"payment_policy_id,omitempty"`
		ReturnPolicyID      string `json:"return_policy_id,omitempty"`
		FulfillmentPolicyID string `json:"fulfillment_policy_id,omitempty"`
	}
}

// PutPolicies stores the user's business policy IDs.
func (h *SettingsHandler) PutPolicies(ctx context.Context, input *PutPoliciesInput) (*PoliciesOutput, error) {
	userID := userOrDefault(input.UserID)

	marketplace := input.Body.MarketplaceID
	if marketplace == "" {
		marketplace = h.marketplace
	}

	policies := &domain.BusinessPolicies{
		UserID:              userID,
		MarketplaceID:       marketplace,
		PaymentPolicyID:     input.Body.PaymentPolicyID,
		ReturnPolicyID:      input.Body.ReturnPolicyID,
		FulfillmentPolicyID: input.Body.FulfillmentPolicyID,
	}
	if err := h.store.SetPolicies(ctx, policies); err != nil {
		return nil, huma.Error500InternalServerError("saving policies: " + err.Error())
	}

	out := &PoliciesOutput{}
	out.Body.BusinessPolicies = *policies
	out.Body.Missing = policies.Missing()
	return out, nil
}

// AvailablePoliciesOutput lists the policy IDs the seller has on eBay.
type AvailablePoliciesOutput struct {
	Body struct {
		Fulfillment []ebay.FulfillmentPolicy `json:"fulfillment"`
		Payment     []ebay.PaymentPolicy     `json:"payment"`
		Return      []ebay.ReturnPolicy      `json:"return"`
	}
}

// AvailablePolicies fetches the seller's policies from the eBay Account API
// so a client can pick IDs to store.
func (h *SettingsHandler) AvailablePolicies(ctx context.Context, input *UserInput) (*AvailablePoliciesOutput, error) {
	if h.account == nil {
		return nil, huma.Error502BadGateway("account API not configured")
	}

	policies, err := h.account.GetPolicies(ctx, userOrDefault(input.UserID), h.marketplace)
	if err != nil {
		return nil, huma.Error502BadGateway("fetching policies: " + err.Error())
	}

	out := &AvailablePoliciesOutput{}
	out.Body.Fulfillment = policies.Fulfillment
	out.Body.Payment = policies.Payment
	out.Body.Return = policies.Return
	return out, nil
}

// DiscountOutput carries discount settings.
type DiscountOutput struct {
	Body domain.DiscountSettings
}

// GetDiscount returns the user's discount settings.
func (h *SettingsHandler) GetDiscount(ctx context.Context, input *UserInput) (*DiscountOutput, error) {
	userID := userOrDefault(input.UserID)

	settings, err := h.store.GetDiscountSettings(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		settings = &domain.DiscountSettings{UserID: userID}
	} else if err != nil {
		return nil, huma.Error500InternalServerError("loading discount settings: " + err.Error())
	}
	return &DiscountOutput{Body: *settings}, nil
}

// PutDiscountInput is the request for updating discount settings.
type PutDiscountInput struct {
	UserID string `header:"X-User-ID" doc:"User the settings belong to"`
	Body   struct {
		Enabled       bool    `json:"enabled"`
		PercentOff    float64 `json:"percent_off" minimum:"0" maximum:"100"`
		MinPriceFloor float64 `json:"min_price_floor,omitempty" minimum:"0"`
	}
}

// PutDiscount stores the user's discount settings.
func (h *SettingsHandler) PutDiscount(ctx context.Context, input *PutDiscountInput) (*DiscountOutput, error) {
	userID := userOrDefault(input.UserID)

	settings := &domain.DiscountSettings{
		UserID:        userID,
		Enabled:       input.Body.Enabled,
		PercentOff:    input.Body.PercentOff,
		MinPriceFloor: input.Body.MinPriceFloor,
	}
	if err := h.store.SetDiscountSettings(ctx, settings); err != nil {
		return nil, huma.Error500InternalServerError("saving discount settings: " + err.Error())
	}
	return &DiscountOutput{Body: *settings}, nil
}

// OverrideOutput carries description override settings.
type OverrideOutput struct {
	Body domain.DescriptionOverride
}

// GetDescription returns the user's description override.
func (h *SettingsHandler) GetDescription(ctx context.Context, input *UserInput) (*OverrideOutput, error) {
	userID := userOrDefault(input.UserID)

	override, err := h.store.GetDescriptionOverride(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		override = &domain.DescriptionOverride{UserID: userID}
	} else if err != nil {
		return nil, huma.Error500InternalServerError("loading description override: " + err.Error())
	}
	return &OverrideOutput{Body: *override}, nil
}

// PutOverrideInput is the request for updating the description override.
type PutOverrideInput struct {
	UserID string `header:"X-User-ID" doc:"User the settings belong to"`
	Body   struct {
		Enabled  bool   `json:"enabled"`
		Template string `json:"template,omitempty" doc:"Replacement description"`
	}
}

// PutDescription stores the user's description override.
func (h *SettingsHandler) PutDescription(ctx context.Context, input *PutOverrideInput) (*OverrideOutput, error) {
	userID := userOrDefault(input.UserID)

	override := &domain.DescriptionOverride{
		UserID:   userID,
		Enabled:  input.Body.Enabled,
		Template: input.Body.Template,
	}
	if err := h.store.SetDescriptionOverride(ctx, override); err != nil {
		return nil, huma.Error500InternalServerError("saving description override: " + err.Error())
	}
	return &OverrideOutput{Body: *override}, nil
}

// RegisterSettingsRoutes registers settings endpoints with the Huma API.
func RegisterSettingsRoutes(api huma.API, h *SettingsHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "get-sku-settings",
		Method:      http.MethodGet,
		Path:        "/api/v1/settings/sku",
		Summary:     "Get SKU settings",
		Tags:        []string{"settings"},
	}, h.GetSku)

	huma.Register(api, huma.Operation{
		OperationID: "put-sku-settings",
		Method:      http.MethodPut,
		Path:        "/api/v1/settings/sku",
		Summary:     "Update SKU settings",
		Tags:        []string{"settings"},
	}, h.PutSku)

	huma.Register(api, huma.Operation{
		OperationID: "get-policies",
		Method:      http.MethodGet,
		Path:        "/api/v1/settings/policies",
		Summary:     "Get stored business policy IDs",
		Tags:        []string{"settings"},
	}, h.GetPolicies)

	huma.Register(api, huma.Operation{
		OperationID: "put-policies",
		Method:      http.MethodPut,
		Path:        "/api/v1/settings/policies",
		Summary:     "Store business policy IDs",
		Tags:        []string{"settings"},
	}, h.PutPolicies)

	huma.Register(api, huma.Operation{
		OperationID: "available-policies",
		Method:      http.MethodGet,
		Path:        "/api/v1/settings/policies/available",
		Summary:     "List the seller's policies on eBay",
		Tags:        []string{"settings"},
		Errors:      []int{http.StatusBadGateway},
	}, h.AvailablePolicies)

	huma.Register(api, huma.Operation{
		OperationID: "get-discount-settings",
		Method:      http.MethodGet,
		Path:        "/api/v1/settings/discount",
		Summary:     "Get discount settings",
		Tags:        []string{"settings"},
	}, h.GetDiscount)

	huma.Register(api, huma.Operation{
		OperationID: "put-discount-settings",
		Method:      http.MethodPut,
		Path:        "/api/v1/settings/discount",
		Summary:     "Update discount settings",
		Tags:        []string{"settings"},
	}, h.PutDiscount)

	huma.Register(api, huma.Operation{
		OperationID: "get-description-override",
		Method:      http.MethodGet,
		Path:        "/api/v1/settings/description",
		Summary:     "Get description override",
		Tags:        []string{"settings"},
	}, h.GetDescription)

	huma.Register(api, huma.Operation{
		OperationID: "put-description-override",
		Method:      http.MethodPut,
		Path:        "/api/v1/settings/description",
		Summary:     "Update description override",
		Tags:        []string{"settings"},
	}, h.PutDescription)
}
