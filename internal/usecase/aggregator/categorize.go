package aggregator

import (
	"regexp"
	"strings"

	"github.com/docbear71/food-inventory-backend/internal/usecase/matcher"
)

// CategoryOther is the fallback category for names no rule recognizes
const CategoryOther = "Other"

// numericCategory matches category values that are really positions or counters
var numericCategory = regexp.MustCompile(`^\d+$`)

type categoryRule struct {
	pattern  *regexp.Regexp
	category string
	// refine narrows the category; the first matching refinement wins
	refine []categoryRule
}

func rule(pattern, category string, refine ...categoryRule) categoryRule {
	return categoryRule{pattern: regexp.MustCompile(pattern), category: category, refine: refine}
}

// categoryRules is evaluated top to bottom against the normalized name
var categoryRules = []categoryRule{
	rule(`^(apple|banana|orange|lemon|lime|grape|berry|melon|peach|pear|plum|cherry|kiwi|mango|pineapple|avocado|coconut)`, "Fresh Fruits"),
	rule(`^(onion|garlic|tomato|lettuce|spinach|carrot|celery|pepper|broccoli|cauliflower|cucumber|potato|mushroom|cabbage|zucchini)`, "Fresh Vegetables"),
	rule(`\b(powder|dried|fresh|chopped|minced|ground)\b.*\b(garlic|onion|ginger|herb|basil|oregano|thyme|rosemary|parsley|cilantro|sage)`, "Spices & Seasonings"),
	rule(`\b(beef|steak|ground beef|hamburger|roast|chuck|sirloin|ribeye|pork|bacon|sausage|ham|lamb)\b`, "Fresh Meat"),
	rule(`\b(chicken|turkey|duck|poultry|breast|thigh|wing|drumstick)`, "Fresh Poultry"),
	rule(`(fish|salmon|tuna|cod|tilapia|shrimp|crab|lobster|scallop|oyster|clam|seafood)`, "Fresh Seafood"),
	rule(`\b(milk|cream|half|buttermilk|butter|almond milk|soy milk|oat milk)\b`, "Dairy"),
	rule(`\b(cheese|cheddar|mozzarella|swiss|parmesan|cream cheese|cottage cheese)`, "Cheese"),
	rule(`\b(egg|eggs)\b`, "Eggs"),
	rule(`\b(flour|sugar|brown sugar|baking powder|baking soda|vanilla|yeast|cocoa|chocolate chips)`, "Baking Ingredients"),
	rule(`\b(oil|olive oil|vegetable oil|canola oil|coconut oil|cooking spray)\b`, "Cooking Oil"),
	rule(`\b(salt|pepper|garlic powder|onion powder|paprika|cumin|chili|oregano|basil|thyme)`, "Spices & Seasonings"),
	rule(`\b(bread|loaf|bagel|english muffin|tortilla|pita|roll|bun)`, "Breads"),
	rule(`\b(pasta|spaghetti|penne|macaroni|linguine|fettuccine|noodle|lasagna)`, "Pasta"),
	rule(`\b(rice|quinoa|barley|oats|oatmeal|cereal|granola)`, "Rice & Grains",
		rule(`\b(cereal|granola)\b`, "Cereal"),
	),
	rule(`^canned|can of|jar of`, CategoryOther,
		rule(`tomato`, "Canned Tomatoes"),
		rule(`(corn|green bean|peas|carrot|vegetable)`, "Canned Vegetables"),
		rule(`(peach|pear|pineapple|fruit)`, "Canned Fruits"),
		rule(`(bean|chickpea|lentil)`, "Beans & Legumes"),
	),
	rule(`^frozen`, "Frozen Meals",
		rule(`(vegetable|broccoli|corn|peas)`, "Frozen Vegetables"),
		rule(`(fruit|berry|strawberry|blueberry)`, "Frozen Fruits"),
		rule(`(meal|dinner|entree)`, "Frozen Meals"),
		rule(`pizza`, "Frozen Pizza"),
		rule(`(waffle|pancake|french toast)`, "Frozen Breakfast"),
	),
	rule(`\b(juice|soda|water|coffee|tea|beer|wine)\b`, "Water",
		rule(`juice`, "Juices"),
		rule(`\b(soda|cola|pepsi|coke|sprite|energy drink)\b`, "Soft Drinks"),
		rule(`water`, "Water"),
		rule(`(coffee|tea)`, "Coffee & Tea"),
		rule(`(beer|wine)`, "Beer & Wine"),
	),
	rule(`(cleaner|detergent|soap|paper towel|toilet paper|napkin|tissue)`, "Cleaning Supplies",
		rule(`(paper towel|toilet paper|napkin|tissue)`, "Paper Products"),
		rule(`(detergent|fabric softener|bleach)`, "Laundry"),
	),
	rule(`(shampoo|conditioner|toothpaste|deodorant|lotion|shaving)`, "Personal Care"),
}

// CategoryOf derives a grocery category from an item name alone.
// It is deterministic and falls back to "Other".
func CategoryOf(name string) string {
	n := matcher.Normalize(name)
	if n == "" {
		return CategoryOther
	}

	for _, r := range categoryRules {
		if !r.pattern.MatchString(n) {
			continue
		}
		for _, sub := range r.refine {
			if sub.pattern.MatchString(n) {
				return sub.category
			}
		}
		return r.category
	}
	return CategoryOther
}

// ResolveCategory keeps a supplied category unless it is blank or purely
// numeric, in which case the category is derived from the item name.
func ResolveCategory(name, category string) string {
	category = strings.TrimSpace(category)
	if category == "" || numericCategory.MatchString(category) {
		return CategoryOf(name)
	}
	return category
}

// IsNumericCategory reports whether a category value is a bare number
func IsNumericCategory(category string) bool {
	return numericCategory.MatchString(category)
}
