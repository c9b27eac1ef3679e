package extract

import (
	"fmt"
	"time"
)

// extractionPrompt demands one JSON object matching the card-record schema.
// Placeholders: current date, quarter (x3), month range, content, card name,
// issuer, then the quarter again inside the rotating_categories schema.
const extractionPrompt = `You are a data extraction assistant. Extract credit card reward information from the following webpage content.
The content includes the main card page plus additional details from related sub-pages.

### Current Date: %s
### Current Quarter: Q%d (%s)

### Webpage Content:
%s

### Card Information:
- Card Name: %s
- Issuer: %s

### Task:
Extract the cashback/rewards percentages and point value information. Return ONLY a valid JSON object with no additional text.

**IMPORTANT: For cards with ROTATING QUARTERLY CATEGORIES (like Discover it, Chase Freedom Flex):**
- Only include the bonus categories that are ACTIVE for the CURRENT QUARTER (Q%d)
- Set the bonus rate (e.g., 5%%) for ONLY the current quarter's active categories
- Other categories should show 1%% (base rate)
- Include details about what's active THIS quarter in the notes

Categories to extract:
- dining (restaurants, food delivery)
- groceries (supermarkets, grocery stores)
- travel (flights, hotels, travel bookings)
- gas (gas stations, fuel)
- streaming (Netflix, Spotify, subscriptions)
- online_shopping (Amazon, online retailers)
- transit (Uber, Lyft, public transit)
- entertainment (movies, concerts, events)
- drugstore (pharmacies, CVS, Walgreens)
- other (base rate for all other purchases)
- you can add more categories if you want to, but make sure to add them to the "categories" object in the JSON

### Required JSON Format:
{
    "annual_fee": <number>,
    "categories": {
        "dining": <number>,
        "groceries": <number>,
        "travel": <number>,
        "gas": <number>,
        "streaming": <number>,
        "online_shopping": <number>,
        "transit": <number>,
        "entertainment": <number>,
        "drugstore": <number>,
        "other": <number>
    },
    "category_details": {
        "dining": {
            "rate": "<e.g. '4x points'>",
            "includes": ["restaurants", "food delivery apps", "takeout"],
            "excludes": ["<any exclusions>"],
            "conditions": "<e.g. 'Up to $50,000/year'>"
        },
        "travel": {
            "rate": "<e.g. '5x points'>",
            "includes": ["flights", "hotels"],
            "excludes": ["<what's NOT included>"],
            "booking_requirement": "<e.g. 'Must book through Chase Travel portal' or 'Direct with airlines/hotels'>",
            "conditions": "<any limits>"
        }
    },
    "reward_type": "<points|cashback|miles>",
    "point_value": {
        "base_value": <cents per point, e.g. 1.0>,
        "best_value": <highest cents per point when redeemed optimally>,
        "best_redemption": "<how to get best value, e.g. 'Chase Travel Portal', 'Transfer to Hyatt'>"
    },
    "special_offers": ["<offer1>", "<offer2>"],
    "exclusions": {
        "groceries": ["<excluded merchant 1>", "<excluded merchant 2>"],
        "dining": ["<excluded merchant>"],
        "travel": ["<excluded type>"]
    },
    "spending_caps": {
        "groceries": "<e.g. 'Up to $6,000/year, then 1%%'>",
        "dining": "<cap if any>"
    },
    "rotating_categories": {
        "has_rotating": <true if card has quarterly rotating categories, false otherwise>,
        "current_quarter": "Q%d",
        "current_bonus_categories": ["<category1>", "<category2>"],
        "current_bonus_rate": "<e.g. '5%% cash back'>",
        "activation_required": <true/false>,
        "quarterly_cap": "<e.g. 'Up to $1,500/quarter'>"
    },
    "credits": ["<annual credit 1>", "<annual credit 2>"],
    "notes": "<any important conditions or limits>"
}

IMPORTANT CATEGORY DETAILS TO CAPTURE:
1. TRAVEL bonuses - specify if booking portal required:
   - Chase cards: 5x is ONLY through Chase Travel portal (NO Airbnb, VRBO)
   - Amex cards: May require Amex Travel or direct airline booking
   - Capital One: Usually direct bookings count

2. GROCERY exclusions are common:
   - Usually excludes: Target, Walmart, wholesale clubs (Costco, Sam's Club, BJ's)
   - Usually includes: Traditional supermarkets (Kroger, Safeway, Publix, Whole Foods)

3. DINING usually includes:
   - Restaurants, fast food, food delivery (DoorDash, Uber Eats, Grubhub)
   - May exclude certain prepaid/gift cards

4. Look for spending caps like:
   - "Up to $6,000/year, then 1%%"
   - "Up to $500/month in top category"
   - "Up to $1,500/quarter"

5. QUARTERLY ROTATING CATEGORIES (Discover it, Chase Freedom Flex, etc.):
   - These cards change bonus categories every quarter
   - Q1 (Jan-Mar), Q2 (Apr-Jun), Q3 (Jul-Sep), Q4 (Oct-Dec)
   - Common quarterly categories: Gas, Groceries, Restaurants, Amazon, PayPal, Walmart, Target
   - ONLY show the 5%% bonus for categories ACTIVE in the CURRENT quarter
   - Requires activation each quarter
   - Usually capped at $1,500/quarter

If a category is not mentioned, use 1 as the default value.
Return ONLY the JSON object, no explanation.`

// quarterMonths labels each fiscal quarter's month range.
var quarterMonths = map[int]string{
	1: "January-March",
	2: "April-June",
	3: "July-September",
	4: "October-December",
}

// QuarterOf returns the fiscal quarter (1-4) for a timestamp.
func QuarterOf(t time.Time) int {
	return (int(t.Month())-1)/3 + 1
}

// BuildPrompt renders the extraction prompt for one card.
func BuildPrompt(content, cardName, issuer string, now time.Time) string {
	quarter := QuarterOf(now)
	return fmt.Sprintf(extractionPrompt,
		now.Format("January 02, 2006"),
		quarter,
		quarterMonths[quarter],
		content,
		cardName,
		issuer,
		quarter,
		quarter,
	)
}
