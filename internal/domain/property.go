package domain

import "time"

type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Property is a rental listing. Price is stored per month in the
// smallest currency unit.
type Property struct {
	ID            string     `json:"id"`
	OwnerID       string     `json:"owner_id"`
	CategoryID    string     `json:"category_id,omitempty"`
	CategoryName  string     `json:"category,omitempty"`
	Location      string     `json:"location"`
	PricePerMonth int64      `json:"price_per_month"`
	Description   string     `json:"description"`
	ContactPhone  string     `json:"contact_phone,omitempty"`
	Available     bool       `json:"available"`
	Photos        []Photo    `json:"photos,omitempty"`
	Videos        []Video    `json:"videos,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	DeletedAt     *time.Time `json:"-"`
}

type Photo struct {
	ID         string     `json:"id"`
	PropertyID string     `json:"property_id"`
	Path       string     `json:"path"`
	CreatedAt  time.Time  `json:"created_at"`
	DeletedAt  *time.Time `json:"-"`
}

type Video struct {
	ID         string     `json:"id"`
	PropertyID string     `json:"property_id"`
	Path       string     `json:"path"`
	CreatedAt  time.Time  `json:"created_at"`
	DeletedAt  *time.Time `json:"-"`
}

// PropertyFilter narrows listing queries. Zero values mean "no filter".
// PriceBand matches the bands the public listing page exposes.
type PropertyFilter struct {
	Location  string
	Category  string
	PriceBand string
}

const (
	PriceBandUnder100k = "under_100k"
	PriceBand100k200k  = "100k_200k"
	PriceBand200k500k  = "200k_500k"
	PriceBandOver500k  = "over_500k"
)
