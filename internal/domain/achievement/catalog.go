package achievement

import (
	"github.com/mmt697/EcoTracker-Project/internal/domain/activity"
	"github.com/mmt697/EcoTracker-Project/internal/domain/tips"
	"github.com/mmt697/EcoTracker-Project/pkg/timeutil"
)

// DefaultCatalog returns the built-in achievement rules, from the quick
// first-login unlocks up to the week-long tracking milestones.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(defaultDefinitions())
	if err != nil {
		// The built-in definitions are validated by tests; a failure here
		// is a programming error.
		panic(err)
	}
	return c
}

func defaultDefinitions() []Definition {
	return []Definition{
		{
			ID:          "first-login",
			Title:       "Welcome Aboard!",
			Description: "Successfully logged into EcoTracker for the first time. Your sustainability journey begins now!",
			Hint:        "Just log in to unlock this achievement!",
			Category:    CategorySpecial,
			Points:      10,
			Priority:    1,
			Predicate: func(snap *activity.Snapshot) (bool, error) {
				return snap.Flags.Authenticated, nil
			},
		},
		{
			ID:          "first-water-log",
			Title:       "Water Tracker",
			Description: "Logged your first water usage entry. Every drop counts towards conservation!",
			Hint:        "Add your first water usage log to get started.",
			Category:    CategoryWater,
			Points:      15,
			Priority:    2,
			Predicate: func(snap *activity.Snapshot) (bool, error) {
				return len(snap.WaterLogs) >= 1, nil
			},
		},
		{
			ID:          "first-energy-log",
			Title:       "Energy Monitor",
			Description: "Logged your first energy usage entry. Knowledge is the first step to efficiency!",
			Hint:        "Add your first energy usage log to start monitoring.",
			Category:    CategoryEnergy,
			Points:      15,
			Priority:    2,
			Predicate: func(snap *activity.Snapshot) (bool, error) {
				return len(snap.EnergyLogs) >= 1, nil
			},
		},
		{
			ID:          "first-tip-tried",
			Title:       "Tip Explorer",
			Description: "Tried your first eco-friendly tip. Small actions lead to big changes!",
			Hint:        "Visit the tips page and mark a tip as tried.",
			Category:    CategoryTips,
			Points:      20,
			Priority:    3,
			Predicate: func(snap *activity.Snapshot) (bool, error) {
				return len(snap.TriedTipIDs) >= 1, nil
			},
		},
		{
			ID:          "daily-tracker",
			Title:       "Daily Tracker",
			Description: "Logged both water and energy usage on the same day. Comprehensive tracking leads to better insights!",
			Hint:        "Track both water and energy in a single day.",
			Category:    CategoryStreak,
			Points:      25,
			Priority:    4,
			Predicate: func(snap *activity.Snapshot) (bool, error) {
				if len(snap.WaterLogs) == 0 || len(snap.EnergyLogs) == 0 {
					return false, nil
				}
				energyDays := make(map[string]bool, len(snap.EnergyLogs))
				for _, l := range snap.EnergyLogs {
					energyDays[timeutil.DayKey(l.Date)] = true
				}
				for _, l := range snap.WaterLogs {
					if energyDays[timeutil.DayKey(l.Date)] {
						return true, nil
					}
				}
				return false, nil
			},
		},
		{
			ID:          "three-water-logs",
			Title:       "Hydration Hero",
			Description: "Logged water usage 3 times. You're building a strong foundation for water conservation!",
			Hint:        "Keep tracking your water usage - 3 entries total.",
			Category:    CategoryWater,
			Points:      30,
			Priority:    5,
			Predicate: func(snap *activity.Snapshot) (bool, error) {
				return len(snap.WaterLogs) >= 3, nil
			},
		},
		{
			ID:          "three-energy-logs",
			Title:       "Power Monitor",
			Description: "Logged energy usage 3 times. You're on your way to becoming an energy efficiency expert!",
			Hint:        "Keep tracking your energy usage - 3 entries total.",
			Category:    CategoryEnergy,
			Points:      30,
			Priority:    5,
			Predicate: func(snap *activity.Snapshot) (bool, error) {
				return len(snap.EnergyLogs) >= 3, nil
			},
		},
		{
			ID:          "settings-customizer",
			Title:       "Settings Master",
			Description: "Customized your settings and saved them. Personalization is key to sustainable habits!",
			Hint:        "Visit settings and update your daily goals.",
			Category:    CategorySpecial,
			Points:      15,
			Priority:    6,
			Predicate: func(snap *activity.Snapshot) (bool, error) {
				return snap.Flags.SettingsSaved, nil
			},
		},
		{
			ID:          "two-tips-tried",
			Title:       "Eco Enthusiast",
			Description: "Tried 2 different sustainability tips. You're building a repertoire of green practices!",
			Hint:        "Explore and try more tips from our collection.",
			Category:    CategoryTips,
			Points:      35,
			Priority:    7,
			Predicate: func(snap *activity.Snapshot) (bool, error) {
				return len(snap.TriedTipIDs) >= 2, nil
			},
		},
		{
			ID:          "two-day-tracker",
			Title:       "Consistency Starter",
			Description: "Tracked usage for 2 consecutive days. Consistency is the foundation of lasting change!",
			Hint:        "Log either water or energy for 2 days in a row.",
			Category:    CategoryStreak,
			Points:      40,
			Priority:    8,
			Predicate: func(snap *activity.Snapshot) (bool, error) {
				return timeutil.HasConsecutiveDays(snap.AllLogDates(), 2), nil
			},
		},
		{
			ID:          "water-goal-achiever",
			Title:       "Water Goal Crusher",
			Description: "Stayed below your daily water goal for one day. Efficient water use is a skill worth mastering!",
			Hint:        "Use less water than your daily goal on any single day.",
			Category:    CategoryWater,
			Points:      50,
			Priority:    9,
			Predicate: func(snap *activity.Snapshot) (bool, error) {
				return anyDayAtOrUnderGoal(snap, activity.KindWater), nil
			},
		},
		{
			ID:          "energy-goal-achiever",
			Title:       "Energy Saver",
			Description: "Stayed below your daily energy goal for one day. Every kilowatt saved makes a difference!",
			Hint:        "Use less energy than your daily goal on any single day.",
			Category:    CategoryEnergy,
			Points:      50,
			Priority:    9,
			Predicate: func(snap *activity.Snapshot) (bool, error) {
				return anyDayAtOrUnderGoal(snap, activity.KindEnergy), nil
			},
		},
		{
			ID:          "data-explorer",
			Title:       "Data Explorer",
			Description: "Visited the history page and viewed your usage charts. Data visualization helps identify patterns!",
			Hint:        "Check out your usage history and charts.",
			Category:    CategorySpecial,
			Points:      25,
			Priority:    10,
			Predicate: func(snap *activity.Snapshot) (bool, error) {
				return snap.Flags.Visited(activity.PageHistory), nil
			},
		},
		{
			ID:          "tip-categories-explorer",
			Title:       "Category Explorer",
			Description: "Tried tips from 2 different categories. Diversifying your sustainable practices multiplies the impact!",
			Hint:        "Try tips from both water and energy categories.",
			Category:    CategoryTips,
			Points:      45,
			Priority:    11,
			Predicate: func(snap *activity.Snapshot) (bool, error) {
				return len(snap.TriedCategories()) >= 2, nil
			},
		},
		{
			ID:          "three-day-warrior",
			Title:       "Three Day Warrior",
			Description: "Tracked usage for 3 different days. You're developing a sustainable tracking habit!",
			Hint:        "Log your usage on any 3 different days.",
			Category:    CategoryStreak,
			Points:      75,
			Priority:    12,
			Predicate: func(snap *activity.Snapshot) (bool, error) {
				return timeutil.CountUniqueDays(snap.AllLogDates()) >= 3, nil
			},
		},
		{
			ID:          "multi-category-master",
			Title:       "Multi-Category Master",
			Description: "Tried tips from all 3 categories (water, energy, general). You're a well-rounded sustainability champion!",
			Hint:        "Explore tips from water, energy, and general categories.",
			Category:    CategoryTips,
			Points:      100,
			Priority:    13,
			Predicate: func(snap *activity.Snapshot) (bool, error) {
				categories := snap.TriedCategories()
				return categories[string(tips.CategoryWater)] &&
					categories[string(tips.CategoryEnergy)] &&
					categories[string(tips.CategoryGeneral)], nil
			},
		},
		{
			ID:          "week-long-tracker",
			Title:       "Week-Long Tracker",
			Description: "Tracked usage for 7 different days. You've established a strong tracking routine!",
			Hint:        "Log your usage on 7 different days.",
			Category:    CategoryStreak,
			Points:      125,
			Priority:    14,
			Predicate: func(snap *activity.Snapshot) (bool, error) {
				return timeutil.CountUniqueDays(snap.AllLogDates()) >= 7, nil
			},
		},
		{
			ID:          "conservation-champion",
			Title:       "Conservation Champion",
			Description: "Achieved both water and energy goals on the same day. You're mastering the art of conservation!",
			Hint:        "Meet both your water and energy goals in a single day.",
			Category:    CategorySpecial,
			Points:      150,
			Priority:    15,
			// A day qualifies when it appears in either usage map; a kind
			// with nothing logged that day counts as zero usage. This is
			// intentionally looser than the per-kind goal achievers, which
			// require the kind to have been logged.
			Predicate: func(snap *activity.Snapshot) (bool, error) {
				waterByDay := snap.DailyTotals(activity.KindWater)
				energyByDay := snap.DailyTotals(activity.KindEnergy)

				days := make(map[string]bool, len(waterByDay)+len(energyByDay))
				for day := range waterByDay {
					days[day] = true
				}
				for day := range energyByDay {
					days[day] = true
				}

				for day := range days {
					if waterByDay[day] <= snap.WaterGoal && energyByDay[day] <= snap.EnergyGoal {
						return true, nil
					}
				}
				return false, nil
			},
		},
	}
}

// anyDayAtOrUnderGoal reports whether at least one logged day's total usage
// of the given kind stayed at or under the daily goal. Days without logs of
// the kind do not qualify.
func anyDayAtOrUnderGoal(snap *activity.Snapshot, kind activity.UsageKind) bool {
	goal := snap.Goal(kind)
	for _, total := range snap.DailyTotals(kind) {
		if total <= goal {
			return true
		}
	}
	return false
}
