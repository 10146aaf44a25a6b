package models

// BadgeType: static catalogue entry, awarded by name into User.Badges
type BadgeType struct {
	Code        string           `json:"code"` // e.g., "TRENDING_CREATOR"
	Name        string           `json:"name"` // "Trending Creator"
	Description string           `json:"description"`
	Rarity      string           `json:"rarity"`    // common, rare, epic, legendary
	Threshold   map[string]int64 `json:"threshold"` // e.g., {"max_value": 500}
}

// Threshold keys understood by the badge evaluator.
const (
	ThresholdCreated        = "created_stylars"
	ThresholdMaxValue       = "max_value"
	ThresholdTotalValue     = "total_value"
	ThresholdInvestors      = "investors"
	ThresholdDistinctStyles = "distinct_styles"
	ThresholdMaxScore       = "max_score"
	ThresholdChallengeWins  = "challenge_wins"
)

const BadgeChallengeWinner = "CHALLENGE_WINNER"

// BadgeTriggers mirror the achievements shown on the profile page.
var BadgeTriggers = []BadgeType{
	{
		Code:        "FIRST_STYLAR",
		Name:        "First Stylar",
		Description: "Created your first stylar",
		Rarity:      "common",
		Threshold:   map[string]int64{ThresholdCreated: 1},
	},
	{
		Code:        "TRENDING_CREATOR",
		Name:        "Trending Creator",
		Description: "Had a stylar reach 500+ value",
		Rarity:      "rare",
		Threshold:   map[string]int64{ThresholdMaxValue: 500},
	},
	{
		Code:        "STYLE_ICON",
		Name:        "Style Icon",
		Description: "Reached 1000+ total portfolio value",
		Rarity:      "epic",
		Threshold:   map[string]int64{ThresholdTotalValue: 1000},
	},
	{
		Code:        "COMMUNITY_FAVORITE",
		Name:        "Community Favorite",
		Description: "Received 100+ total investments",
		Rarity:      "epic",
		Threshold:   map[string]int64{ThresholdInvestors: 100},
	},
	{
		Code:        "DIVERSIFIED",
		Name:        "Diversified",
		Description: "Created stylars in 3+ different styles",
		Rarity:      "rare",
		Threshold:   map[string]int64{ThresholdDistinctStyles: 3},
	},
	{
		Code:        "HIGH_SCORER",
		Name:        "High Scorer",
		Description: "Had a stylar reach 90+ score",
		Rarity:      "rare",
		Threshold:   map[string]int64{ThresholdMaxScore: 90},
	},
	{
		Code:        BadgeChallengeWinner,
		Name:        "Challenge Winner",
		Description: "Topped a themed challenge",
		Rarity:      "legendary",
		Threshold:   map[string]int64{ThresholdChallengeWins: 1},
	},
}

// BadgeByCode looks up a catalogue entry.
func BadgeByCode(code string) (BadgeType, bool) {
	for _, b := range BadgeTriggers {
		if b.Code == code {
			return b, true
		}
	}
	return BadgeType{}, false
}
