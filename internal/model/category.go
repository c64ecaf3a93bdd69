package model

// Category names that carry special meaning in the pipeline.
const (
	// CategoryUnknown marks a merchant nothing could categorize. It is never
	// generalized into rules.
	CategoryUnknown = "Unknown"
	// CategoryOther is the remote classifier's fallback bucket. Also excluded
	// from rule learning, since it would poison future matches.
	CategoryOther = "Other"
)

// categoryOrder fixes the presentation and seeding order of the vocabulary.
var categoryOrder = []string{
	"Shopping",
	"Utilities",
	"Transportation",
	"Food & Dining",
	"Entertainment",
	"Digital Services",
	"Healthcare",
	"Education",
	"Clothing",
	"Financial",
	CategoryOther,
}

// CategoryKeywords seeds the rule store: each keyword becomes a "contains"
// rule for its category. Keywords cover both English and Japanese merchant
// names, matching the billing data this tool ingests.
var CategoryKeywords = map[string][]string{
	"Shopping":         {"amazon", "楽天", "アマゾン", "ショッピング", "store", "shop"},
	"Utilities":        {"ガス", "電気", "水道", "electric", "gas", "water", "utility"},
	"Transportation":   {"タクシー", "電車", "バス", "交通", "taxi", "train", "uber"},
	"Food & Dining":    {"レストラン", "食事", "restaurant", "cafe", "food", "dining"},
	"Entertainment":    {"netflix", "spotify", "映画", "entertainment", "movie", "music"},
	"Digital Services": {"apple", "google", "microsoft", "digital", "software", "app"},
	"Healthcare":       {"病院", "薬", "hospital", "pharmacy", "medical", "health"},
	"Education":        {"学校", "教育", "school", "education", "university", "course"},
	"Clothing":         {"uniqlo", "ユニクロ", "服", "clothing", "fashion", "apparel"},
	"Financial":        {"銀行", "金融", "bank", "finance", "credit", "loan"},
	CategoryOther:      {},
}

// CategoryNames returns the vocabulary in its fixed order.
func CategoryNames() []string {
	names := make([]string, len(categoryOrder))
	copy(names, categoryOrder)
	return names
}

// IsLearnable reports whether decisions for a category may be generalized
// into new rules.
func IsLearnable(category string) bool {
	return category != CategoryUnknown && category != CategoryOther
}
