package ebay

// InventoryItem is an eBay Sell Inventory API inventory item.
type InventoryItem struct {
	SKU                string              `json:"sku,omitempty"`
	Locale             string              `json:"locale,omitempty"`
	Condition          string              `json:"condition,omitempty"`
	Product            *Product            `json:"product,omitempty"`
	Availability       *Availability       `json:"availability,omitempty"`
	ProductIdentifiers []ProductIdentifier `json:"productIdentifiers,omitempty"`
}

// Product holds product details and barcode identifiers. eBay represents
// each identifier standard as a string array.
type Product struct {
	Title       string              `json:"title,omitempty"`
	Description string              `json:"description,omitempty"`
	ImageURLs   []string            `json:"imageUrls,omitempty"`
	Brand       string              `json:"brand,omitempty"`
	Aspects     map[string][]string `json:"aspects,omitempty"`
	UPC         []string            `json:"upc,omitempty"`
	EAN         []string            `json:"ean,omitempty"`
	ISBN        []string            `json:"isbn,omitempty"`
	GTIN        []string            `json:"gtin,omitempty"`
}

// ProductIdentifier is a generic typed identifier entry. Type is one of
// UPC, UPC_A, UPC_E, GTIN, EAN, ISBN.
type ProductIdentifier struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// Availability holds inventory availability.
type Availability struct {
	ShipToLocationAvailability *ShipToLocation `json:"shipToLocationAvailability,omitempty"`
}

// ShipToLocation holds quantity info.
type ShipToLocation struct {
	Quantity int `json:"quantity,omitempty"`
}

// InventoryItemsPage is one page of the inventory item listing.
type InventoryItemsPage struct {
	InventoryItems []InventoryItem `json:"inventoryItems,omitempty"`
	Total          int             `json:"total,omitempty"`
	Limit          int             `json:"limit,omitempty"`
	Offset         int             `json:"offset,omitempty"`
	Next           string          `json:"next,omitempty"`
}

// Offer is an eBay listing offer bound to an inventory item.
type Offer struct {
	OfferID             string           `json:"offerId,omitempty"`
	SKU                 string           `json:"sku,omitempty"`
	MarketplaceID       string           `json:"marketplaceId,omitempty"`
	Format              string           `json:"format,omitempty"`
	CategoryID          string           `json:"categoryId,omitempty"`
	AvailableQuantity   int              `json:"availableQuantity,omitempty"`
	ListingDescription  string           `json:"listingDescription,omitempty"`
	PricingSummary      *PricingSummary  `json:"pricingSummary,omitempty"`
	ListingPolicies     *ListingPolicies `json:"listingPolicies,omitempty"`
	MerchantLocationKey string           `json:"merchantLocationKey,omitempty"`
	Status              string           `json:"status,omitempty"`
	Listing             *ListingDetails  `json:"listing,omitempty"`
}

// PricingSummary holds pricing info.
type PricingSummary struct {
	Price *Amount `json:"price,omitempty"`
}

// Amount holds monetary values.
type Amount struct {
	Value    string `json:"value,omitempty"`
	Currency string `json:"currency,omitempty"`
}

// ListingPolicies holds business policy references.
type ListingPolicies struct {
	FulfillmentPolicyID string `json:"fulfillmentPolicyId,omitempty"`
	PaymentPolicyID     string `json:"paymentPolicyId,omitempty"`
	ReturnPolicyID      string `json:"returnPolicyId,omitempty"`
}

// ListingDetails holds the published listing reference.
type ListingDetails struct {
	ListingID string `json:"listingId,omitempty"`
}

// Location is a merchant inventory location.
type Location struct {
	MerchantLocationKey    string           `json:"merchantLocationKey,omitempty"`
	Name                   string           `json:"name,omitempty"`
	MerchantLocationStatus string           `json:"merchantLocationStatus,omitempty"`
	LocationTypes          []string         `json:"locationTypes,omitempty"`
	Location               *LocationAddress `json:"location,omitempty"`
}

// LocationAddress wraps the address of a merchant location.
type LocationAddress struct {
	Address *Address `json:"address,omitempty"`
}

// Address is a postal address.
type Address struct {
	AddressLine1    string `json:"addressLine1,omitempty"`
	City            string `json:"city,omitempty"`
	StateOrProvince string `json:"stateOrProvince,omitempty"`
	PostalCode      string `json:"postalCode,omitempty"`
	Country         string `json:"country,omitempty"`
}

// LocationsPage is one page of merchant locations.
type LocationsPage struct {
	Locations []Location `json:"locations,omitempty"`
	Total     int        `json:"total,omitempty"`
}

// FulfillmentPolicy is a shipping policy reference.
type FulfillmentPolicy struct {
	FulfillmentPolicyID string `json:"fulfillmentPolicyId,omitempty"`
	Name                string `json:"name,omitempty"`
	MarketplaceID       string `json:"marketplaceId,omitempty"`
}

// PaymentPolicy is a payment policy reference.
type PaymentPolicy struct {
	PaymentPolicyID string `json:"paymentPolicyId,omitempty"`
	Name            string `json:"name,omitempty"`
	MarketplaceID   string `json:"marketplaceId,omitempty"`
}

// ReturnPolicy is a return policy reference.
type ReturnPolicy struct {
	ReturnPolicyID string `json:"returnPolicyId,omitempty"`
	Name           string `json:"name,omitempty"`
	MarketplaceID  string `json:"marketplaceId,omitempty"`
}

// SellerPolicies bundles the three policy families for one marketplace.
type SellerPolicies struct {
	Fulfillment []FulfillmentPolicy
	Payment     []PaymentPolicy
	Return      []ReturnPolicy
}
