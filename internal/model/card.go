package model

import "time"

// TrackedCategories is the closed set of spending categories every card
// record carries. The extraction prompt asks for exactly these; any extra
// categories the model volunteers are kept alongside but never replace them.
var TrackedCategories = []string{
	"dining", "groceries", "travel", "gas", "streaming",
	"online_shopping", "transit", "entertainment", "drugstore", "other",
}

// CardSource is one entry of the input catalog: a card page to crawl.
type CardSource struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Issuer string `json:"issuer"`
	URL    string `json:"url"`
	Color  string `json:"color"`
	Image  string `json:"image,omitempty"`
}

// PointValue describes redemption value in cents per point.
type PointValue struct {
	BaseValue      float64 `json:"base_value"`
	BestValue      float64 `json:"best_value"`
	BestRedemption string  `json:"best_redemption"`
}

// CategoryDetail is structured coverage info for one category.
type CategoryDetail struct {
	Rate               string   `json:"rate,omitempty"`
	Includes           []string `json:"includes,omitempty"`
	Excludes           []string `json:"excludes,omitempty"`
	BookingRequirement string   `json:"booking_requirement,omitempty"`
	Conditions         string   `json:"conditions,omitempty"`
}

// RotatingCategories describes quarterly-bonus behavior for rotating cards.
type RotatingCategories struct {
	HasRotating            bool     `json:"has_rotating"`
	CurrentQuarter         string   `json:"current_quarter,omitempty"`
	CurrentBonusCategories []string `json:"current_bonus_categories,omitempty"`
	CurrentBonusRate       string   `json:"current_bonus_rate,omitempty"`
	ActivationRequired     bool     `json:"activation_required,omitempty"`
	QuarterlyCap           string   `json:"quarterly_cap,omitempty"`
}

// CardRecord is the persisted reward-data entry for one card.
type CardRecord struct {
	ID                 string                    `json:"id"`
	Name               string                    `json:"name"`
	Issuer             string                    `json:"issuer"`
	Color              string                    `json:"color"`
	Image              string                    `json:"image,omitempty"`
	AnnualFee          float64                   `json:"annual_fee"`
	Categories         map[string]float64        `json:"categories"`
	CategoryDetails    map[string]CategoryDetail `json:"category_details,omitempty"`
	RewardType         string                    `json:"reward_type"`
	PointValue         PointValue                `json:"point_value"`
	SpecialOffers      []string                  `json:"special_offers"`
	Exclusions         map[string][]string       `json:"exclusions"`
	SpendingCaps       map[string]string         `json:"spending_caps"`
	RotatingCategories RotatingCategories        `json:"rotating_categories,omitempty"`
	Credits            []string                  `json:"credits"`
	Notes              string                    `json:"notes"`
	SourceURL          string                    `json:"source_url"`
	LastUpdated        time.Time                 `json:"last_updated"`
}

// Dataset is the full persisted collection, ordered to match the catalog.
type Dataset struct {
	LastUpdated time.Time    `json:"last_updated"`
	Cards       []CardRecord `json:"cards"`
}

// Index returns the dataset's cards keyed by id.
func (d *Dataset) Index() map[string]CardRecord {
	idx := make(map[string]CardRecord, len(d.Cards))
	for _, c := range d.Cards {
		idx[c.ID] = c
	}
	return idx
}

// maxListEntries caps special_offers and credits.
const maxListEntries = 5

// placeholderNote marks a synthesized record carrying no real data. It is
// data only; nothing branches on it.
const placeholderNote = "Data not available - using defaults"

// placeholderTimestamp is deliberately old so a placeholder record is always
// stale and retried on the next run.
var placeholderTimestamp = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

// BaseCategories returns a fresh categories map with every tracked category
// at the base rate.
func BaseCategories() map[string]float64 {
	m := make(map[string]float64, len(TrackedCategories))
	for _, cat := range TrackedCategories {
		m[cat] = 1
	}
	return m
}

// PlaceholderRecord builds the fallback record for a card that has no prior
// data: base rates everywhere and a timestamp old enough to force a retry.
func PlaceholderRecord(src CardSource) CardRecord {
	return CardRecord{
		ID:         src.ID,
		Name:       src.Name,
		Issuer:     src.Issuer,
		Color:      src.Color,
		Image:      src.Image,
		Categories: BaseCategories(),
		RewardType: "cashback",
		PointValue: PointValue{
			BaseValue:      1.0,
			BestValue:      1.0,
			BestRedemption: "Statement credit",
		},
		SpecialOffers: []string{},
		Exclusions:    map[string][]string{},
		SpendingCaps:  map[string]string{},
		Credits:       []string{},
		Notes:         placeholderNote,
		SourceURL:     src.URL,
		LastUpdated:   placeholderTimestamp,
	}
}

// SameCalendarDay reports whether two timestamps fall on the same UTC
// calendar day. The daily-skip check uses UTC so behavior does not depend on
// the host timezone or DST transitions.
func SameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
