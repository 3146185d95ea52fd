package services

import (
	"fmt"

	"reading-progress-service/models"
)

// Milestone is one awardable threshold together with the values used when
// the registry has no definition for its type.
type Milestone struct {
	Type        string
	Threshold   int
	Title       string
	Description string
	XPReward    int64
}

const levelUpXP int64 = 100

var streakThresholdXP = []struct {
	days int
	xp   int64
}{
	{1, 10}, {3, 25}, {7, 50}, {14, 100}, {21, 150}, {30, 200}, {50, 400},
	{75, 600}, {100, 1000}, {150, 1500}, {200, 2000}, {250, 2500}, {300, 3000}, {365, 5000},
}

// StreakMilestones fire on an exact match of the current streak.
var StreakMilestones = func() []Milestone {
	out := make([]Milestone, 0, len(streakThresholdXP))
	for _, s := range streakThresholdXP {
		out = append(out, Milestone{
			Type:        fmt.Sprintf("%d_day_streak", s.days),
			Threshold:   s.days,
			Title:       fmt.Sprintf("%d-Day Streak", s.days),
			Description: fmt.Sprintf("Maintained a reading streak for %d day(s)", s.days),
			XPReward:    s.xp,
		})
	}
	return out
}()

// PageMilestones fire once lifetime pages reach the threshold.
var PageMilestones = thresholdMilestones(
	[]int{100, 200, 300, 500, 750, 1000, 1500, 3000, 5000, 10000},
	func(n int) Milestone {
		return Milestone{
			Type:        fmt.Sprintf("%d_pages", n),
			Title:       "📄 Page Reader",
			Description: fmt.Sprintf("Read %d pages", n),
			XPReward:    int64(n / 10),
		}
	},
)

// DailyMilestones fire once the pages logged on a single day reach the threshold.
var DailyMilestones = []Milestone{
	{Type: "speed_reader", Threshold: 50, Title: "⚡ Speed Reader", Description: "Read 50+ pages in a single day", XPReward: 100},
	{Type: "marathon_reader", Threshold: 100, Title: "🏃 Marathon Reader", Description: "Read 100+ pages in a single day", XPReward: 200},
}

// BookMilestones fire on an exact match of the completed-book count.
var BookMilestones = []Milestone{
	{Type: "first_book", Threshold: 1, Title: "📚 First Book", Description: "Completed your first book! Welcome to the reading journey!", XPReward: 100},
	{Type: "book_collector", Threshold: 5, Title: "📚 Book Collector", Description: "Completed 5 books! You're building a great collection!", XPReward: 300},
	{Type: "book_lover", Threshold: 10, Title: "📚 Book Lover", Description: "Completed 10 books! You're truly passionate about reading!", XPReward: 600},
	{Type: "book_enthusiast", Threshold: 25, Title: "📚 Book Enthusiast", Description: "Completed 25 books! You're a true reading enthusiast!", XPReward: 1500},
	{Type: "book_master", Threshold: 50, Title: "📚 Book Master", Description: "Completed 50 books! You are a true book master!", XPReward: 3000},
}

// LeaguePageMilestones fire once pages read in a league reach the threshold.
var LeaguePageMilestones = thresholdMilestones(
	[]int{100, 300, 500, 750, 1000, 2000, 3000, 5000},
	func(n int) Milestone {
		return Milestone{
			Type:        fmt.Sprintf("league_%d_pages", n),
			Title:       fmt.Sprintf("🏆 League %d Pages", n),
			Description: fmt.Sprintf("Read %d pages in this league", n),
			XPReward:    int64(n / 5),
		}
	},
)

var CommunityContributor = Milestone{
	Type:        models.AchievementCommunityContributor,
	Title:       "🌟 Community Star",
	Description: "Participate in a reading league",
	XPReward:    100,
}

// LevelUpMilestone is minted once per level reached.
func LevelUpMilestone(level int) Milestone {
	return Milestone{
		Type:        fmt.Sprintf("level_up_%d", level),
		Threshold:   level,
		Title:       fmt.Sprintf("Level %d", level),
		Description: fmt.Sprintf("Reached level %d!", level),
		XPReward:    levelUpXP,
	}
}

func thresholdMilestones(thresholds []int, build func(int) Milestone) []Milestone {
	out := make([]Milestone, 0, len(thresholds))
	for _, n := range thresholds {
		m := build(n)
		m.Threshold = n
		out = append(out, m)
	}
	return out
}

// exactMilestone returns the milestone whose threshold equals value.
func exactMilestone(list []Milestone, value int) (Milestone, bool) {
	for _, m := range list {
		if m.Threshold == value {
			return m, true
		}
	}
	return Milestone{}, false
}

// reachedMilestones returns every milestone with threshold <= value, ascending.
func reachedMilestones(list []Milestone, value int64) []Milestone {
	var out []Milestone
	for _, m := range list {
		if int64(m.Threshold) <= value {
			out = append(out, m)
		}
	}
	return out
}

// StreakTier labels a streak length.
func StreakTier(days int) string {
	switch {
	case days <= 30:
		return "Bronze"
	case days <= 100:
		return "Silver"
	case days <= 250:
		return "Gold"
	default:
		return "Diamond"
	}
}

// DefaultDefinitions is the catalog seeded into achievement_definitions.
func DefaultDefinitions() []models.AchievementDefinition {
	defs := []models.AchievementDefinition{
		// Streak: Bronze (1-30 days)
		{Type: "1_day_streak", Title: "🥉 First Step", Description: "Started your reading journey", Icon: "🥉", XPReward: 10},
		{Type: "3_day_streak", Title: "🥉 First Spark", Description: "You've built your first streak 🔥 Keep going!", Icon: "🥉", XPReward: 25},
		{Type: "7_day_streak", Title: "🥉 One Week Reader", Description: "1 full week of reading! Consistency pays off 🌱", Icon: "🥉", XPReward: 50},
		{Type: "14_day_streak", Title: "🥉 Two-Week Challenger", Description: "Two weeks strong! Building momentum", Icon: "🥉", XPReward: 100},
		{Type: "21_day_streak", Title: "🥉 Habit Builder", Description: "21 days = new habit formed 💪", Icon: "🥉", XPReward: 150},
		{Type: "30_day_streak", Title: "🥉 One Month Champion", Description: "One month of consistent reading!", Icon: "🥉", XPReward: 200},
		// Silver (31-100)
		{Type: "50_day_streak", Title: "🥈 Golden Streak", Description: "50 days of dedication! Shining bright", Icon: "🥈", XPReward: 400},
		{Type: "75_day_streak", Title: "🥈 Dedicated Reader", Description: "75 days! Your dedication is inspiring", Icon: "🥈", XPReward: 600},
		{Type: "100_day_streak", Title: "🥈 Century Club", Description: "100 days! Welcome to the Century Club 🎉", Icon: "🥈", XPReward: 1000},
		// Gold (101-250)
		{Type: "150_day_streak", Title: "🥇 Unstoppable", Description: "150 days! You are truly unstoppable", Icon: "🥇", XPReward: 1500},
		{Type: "200_day_streak", Title: "🥇 Marathon Mind", Description: "200 days! Your mind is a reading marathon", Icon: "🥇", XPReward: 2000},
		{Type: "250_day_streak", Title: "🥇 Knowledge Seeker", Description: "250 days! A true seeker of knowledge", Icon: "🥇", XPReward: 2500},
		// Diamond (251+)
		{Type: "300_day_streak", Title: "💎 Book Sage", Description: "300 days! You are a true book sage", Icon: "💎", XPReward: 3000},
		{Type: "365_day_streak", Title: "💎 One-Year Legend", Description: "365 days! You are a reading legend 👑", Icon: "💎", XPReward: 5000},

		// Pages
		{Type: "100_pages", Title: "📄 Page Turner", Description: "Read 100 pages", Icon: "📄", XPReward: 50},
		{Type: "200_pages", Title: "📄 Steady Reader", Description: "Read 200 pages", Icon: "📄", XPReward: 80},
		{Type: "300_pages", Title: "📄 Avid Reader", Description: "Read 300 pages", Icon: "📄", XPReward: 120},
		{Type: "500_pages", Title: "📄 Page Reader", Description: "Read 500 pages", Icon: "📄", XPReward: 200},
		{Type: "750_pages", Title: "📄 Page Explorer", Description: "Read 750 pages", Icon: "📄", XPReward: 350},
		{Type: "1000_pages", Title: "📄 Page Devourer", Description: "Read 1000 pages", Icon: "📄", XPReward: 500},
		{Type: "1500_pages", Title: "📄 Page Conqueror", Description: "Read 1500 pages", Icon: "📄", XPReward: 800},
		{Type: "3000_pages", Title: "📄 Page Veteran", Description: "Read 3000 pages", Icon: "📄", XPReward: 1200},
		{Type: "5000_pages", Title: "📄 Page Master", Description: "Read 5000 pages", Icon: "📄", XPReward: 2000},
		{Type: "10000_pages", Title: "📄 Page Legend", Description: "Read 10000 pages", Icon: "📄", XPReward: 4000},

		// Reading style
		{Type: "speed_reader", Title: "⚡ Speed Reader", Description: "Read 50+ pages in a single day", Icon: "⚡", XPReward: 100},
		{Type: "marathon_reader", Title: "🏃 Marathon Reader", Description: "Read 100+ pages in a single day", Icon: "🏃", XPReward: 200},

		// Community
		{Type: models.AchievementCommunityContributor, Title: "🌟 Community Star", Description: "Participate in a reading league", Icon: "🌟", XPReward: 100},
		{Type: models.AchievementLeagueChampion, Title: "🏆 League Champion", Description: "Win a reading league", Icon: "🏆", XPReward: 500},
	}

	for _, m := range BookMilestones {
		defs = append(defs, models.AchievementDefinition{Type: m.Type, Title: m.Title, Description: m.Description, Icon: "📚", XPReward: m.XPReward})
	}
	leagueXP := map[int]int64{100: 20, 300: 60, 500: 100, 750: 160, 1000: 200, 2000: 400, 3000: 700, 5000: 1200}
	for _, m := range LeaguePageMilestones {
		defs = append(defs, models.AchievementDefinition{Type: m.Type, Title: m.Title, Description: fmt.Sprintf("Read %d pages in a league", m.Threshold), Icon: "🏆", XPReward: leagueXP[m.Threshold]})
	}

	for i := range defs {
		defs[i].IsActive = true
	}
	return defs
}
