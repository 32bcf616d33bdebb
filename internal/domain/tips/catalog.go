// Package tips holds the immutable catalog of sustainability tips.
// The catalog is loaded once at process start; the achievement engine uses
// it only to resolve tried-tip ids to categories.
package tips

import (
	"github.com/mmt697/EcoTracker-Project/internal/domain/shared"
)

// Category groups tips by the resource they help conserve.
type Category string

const (
	CategoryWater   Category = "water"
	CategoryEnergy  Category = "energy"
	CategoryGeneral Category = "general"
)

// Difficulty describes how hard a tip is to adopt.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Tip is a single sustainability tip definition.
type Tip struct {
	ID               string
	Category         Category
	Title            string
	ShortDescription string
	Difficulty       Difficulty
	SavingPotential  string // "low", "medium", "high"
	EstimatedSavings string
}

// Catalog is an ordered, read-only collection of tips.
type Catalog struct {
	tips []Tip
	byID map[string]Tip
}

// NewCatalog builds a catalog from the given definitions.
func NewCatalog(tips []Tip) (*Catalog, error) {
	byID := make(map[string]Tip, len(tips))
	for _, t := range tips {
		if t.ID == "" {
			return nil, shared.NewDomainError("tips", "NewCatalog", shared.ErrInvalidID, "tip id is required")
		}
		if _, exists := byID[t.ID]; exists {
			return nil, shared.NewDomainError("tips", "NewCatalog", shared.ErrAlreadyExists, "duplicate tip id: "+t.ID)
		}
		byID[t.ID] = t
	}
	return &Catalog{tips: tips, byID: byID}, nil
}

// DefaultCatalog returns the built-in tip collection.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(defaultTips())
	if err != nil {
		// The built-in definitions are validated by tests; a failure here
		// is a programming error.
		panic(err)
	}
	return c
}

// All returns the tips in declaration order.
func (c *Catalog) All() []Tip {
	out := make([]Tip, len(c.tips))
	copy(out, c.tips)
	return out
}

// ByID looks up a tip by id.
func (c *Catalog) ByID(id string) (Tip, bool) {
	t, ok := c.byID[id]
	return t, ok
}

// ByCategory returns the tips in the given category, in declaration order.
func (c *Catalog) ByCategory(category Category) []Tip {
	var out []Tip
	for _, t := range c.tips {
		if t.Category == category {
			out = append(out, t)
		}
	}
	return out
}

// Len returns the number of tips in the catalog.
func (c *Catalog) Len() int {
	return len(c.tips)
}

func defaultTips() []Tip {
	return []Tip{
		{
			ID:               "tip1",
			Category:         CategoryWater,
			Title:            "Reduce Shower Time",
			ShortDescription: "Shortening your shower by just 2 minutes can save up to 40 liters of water each time.",
			Difficulty:       DifficultyEasy,
			SavingPotential:  "high",
			EstimatedSavings: "40L per shower",
		},
		{
			ID:               "tip2",
			Category:         CategoryWater,
			Title:            "Fix Leaky Faucets",
			ShortDescription: "A dripping faucet can waste up to 20 liters of water per day.",
			Difficulty:       DifficultyMedium,
			SavingPotential:  "medium",
			EstimatedSavings: "20L per day",
		},
		{
			ID:               "tip3",
			Category:         CategoryEnergy,
			Title:            "Switch to LED Bulbs",
			ShortDescription: "LED bulbs use up to 90% less energy than incandescent bulbs and last up to 25 times longer.",
			Difficulty:       DifficultyEasy,
			SavingPotential:  "high",
			EstimatedSavings: "90% energy reduction",
		},
		{
			ID:               "tip4",
			Category:         CategoryEnergy,
			Title:            "Unplug Idle Electronics",
			ShortDescription: "Electronics on standby can account for up to 10% of your home's energy consumption.",
			Difficulty:       DifficultyEasy,
			SavingPotential:  "medium",
			EstimatedSavings: "10% of electricity bill",
		},
		{
			ID:               "tip5",
			Category:         CategoryWater,
			Title:            "Collect Rainwater",
			ShortDescription: "Use rainwater for garden irrigation to reduce freshwater consumption.",
			Difficulty:       DifficultyMedium,
			SavingPotential:  "medium",
			EstimatedSavings: "200-300L per rainfall",
		},
		{
			ID:               "tip6",
			Category:         CategoryEnergy,
			Title:            "Optimize Your Thermostat",
			ShortDescription: "Adjusting your thermostat by just 1°C can reduce energy usage by up to 10%.",
			Difficulty:       DifficultyEasy,
			SavingPotential:  "high",
			EstimatedSavings: "10% heating/cooling costs",
		},
		{
			ID:               "tip7",
			Category:         CategoryGeneral,
			Title:            "Start Composting",
			ShortDescription: "Reduce waste and create nutrient-rich soil for your garden by composting kitchen scraps.",
			Difficulty:       DifficultyMedium,
			SavingPotential:  "low",
			EstimatedSavings: "30% waste reduction",
		},
		{
			ID:               "tip8",
			Category:         CategoryGeneral,
			Title:            "Use Reusable Shopping Bags",
			ShortDescription: "Replace single-use plastic bags with durable reusable shopping bags.",
			Difficulty:       DifficultyEasy,
			SavingPotential:  "low",
			EstimatedSavings: "1000+ plastic bags",
		},
		{
			ID:               "tip9",
			Category:         CategoryWater,
			Title:            "Install Low-Flow Fixtures",
			ShortDescription: "Low-flow showerheads and faucets can reduce water usage by up to 50%.",
			Difficulty:       DifficultyMedium,
			SavingPotential:  "high",
			EstimatedSavings: "50% water usage",
		},
		{
			ID:               "tip10",
			Category:         CategoryEnergy,
			Title:            "Use Natural Light",
			ShortDescription: "Maximize natural light during the day to reduce electricity usage for lighting.",
			Difficulty:       DifficultyEasy,
			SavingPotential:  "medium",
			EstimatedSavings: "30% lighting costs",
		},
	}
}
