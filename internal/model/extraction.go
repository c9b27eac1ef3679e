package model

// ExtractionResult is the parsed structured reply from the completion
// service for one card. It is consumed immediately to build a CardRecord and
// never persisted on its own.
type ExtractionResult struct {
	AnnualFee          float64                   `json:"annual_fee"`
	Categories         map[string]float64        `json:"categories"`
	CategoryDetails    map[string]CategoryDetail `json:"category_details"`
	RewardType         string                    `json:"reward_type"`
	PointValue         *PointValue               `json:"point_value"`
	SpecialOffers      []string                  `json:"special_offers"`
	Exclusions         map[string][]string       `json:"exclusions"`
	SpendingCaps       map[string]string         `json:"spending_caps"`
	RotatingCategories RotatingCategories        `json:"rotating_categories"`
	Credits            []string                  `json:"credits"`
	Notes              string                    `json:"notes"`
}

// Normalize fills in defaults for fields the model omitted: every tracked
// category present (base rate 1), cashback reward type, statement-credit
// point value, empty collections instead of nil, offer/credit lists capped.
// Extra categories the model returned are kept.
func (r *ExtractionResult) Normalize() {
	cats := BaseCategories()
	for cat, mult := range r.Categories {
		cats[cat] = mult
	}
	r.Categories = cats

	if r.RewardType == "" {
		r.RewardType = "cashback"
	}
	if r.PointValue == nil {
		r.PointValue = &PointValue{
			BaseValue:      1.0,
			BestValue:      1.0,
			BestRedemption: "Statement credit",
		}
	}
	if r.SpecialOffers == nil {
		r.SpecialOffers = []string{}
	}
	if len(r.SpecialOffers) > maxListEntries {
		r.SpecialOffers = r.SpecialOffers[:maxListEntries]
	}
	if r.Credits == nil {
		r.Credits = []string{}
	}
	if len(r.Credits) > maxListEntries {
		r.Credits = r.Credits[:maxListEntries]
	}
	if r.Exclusions == nil {
		r.Exclusions = map[string][]string{}
	}
	if r.SpendingCaps == nil {
		r.SpendingCaps = map[string]string{}
	}
	if r.CategoryDetails == nil {
		r.CategoryDetails = map[string]CategoryDetail{}
	}
}
