package progress

import "github.com/Dias221467/Questline/internal/models"

var narratives = map[models.Theme][6]string{
	models.ThemeFantasy: {
		"Your journey begins in a mystical forest. The path ahead is shrouded in mist, but you feel a calling to move forward.",
		"You've discovered an ancient map leading to a forgotten temple. Your daily practice is like a torch illuminating the way.",
		"The village elder has recognized your dedication. Your quest gains momentum as you master new skills.",
		"Halfway through your quest, you've earned the respect of the woodland creatures. They guide you through shortcuts unknown to common travelers.",
		"The enchanted forest opens to reveal vistas beyond imagination. Your journey's end is in sight, but the greatest challenges await.",
		"You stand victorious! The habit you've mastered has transformed you into a legendary hero of your own tale.",
	},
	models.ThemeSciFi: {
		"System initialization complete. Your neural enhancement program has begun. Each practice strengthens your connection.",
		"Upgrades detected in cognitive systems. Your consistent efforts are optimizing performance beyond expected parameters.",
		"You've reached Level 2 clearance. Advanced techniques are now available as your neural pathways strengthen.",
		"The AI core recognizes your dedication. You're halfway to full system integration with your new habit protocol.",
		"Your consistency has unlocked hidden subroutines. The full potential of your habit enhancement is becoming clear.",
		"Mission accomplished! Your habit is now fully integrated into your operating system. You've evolved beyond your former limitations.",
	},
	models.ThemeAdventure: {
		"Your backpack is packed and your boots are laced. The journey of a thousand miles begins with this single step.",
		"You've crossed the first mountain range. The view from here shows how far you've come already.",
		"Local villagers speak of your determination. Your reputation as an adventurer grows with each consistent day.",
		"The halfway mark! You've adapted to the challenges of the trail, moving with newfound confidence.",
		"Seasoned travelers nod with respect as you pass. Your journey is inspiring others to begin their own.",
		"Summit reached! Standing atop the peak, you can see both where you began and the endless horizons now open to you.",
	},
	models.ThemeMystery: {
		"A mysterious letter has set you on this path. Each practice uncovers a new clue to the greater puzzle.",
		"Strange symbols begin to make sense. Your consistent investigation is yielding results.",
		"The plot thickens! Your dedication has revealed connections previously hidden from view.",
		"Halfway through the investigation, key witnesses are coming forward. Your reputation for thoroughness precedes you.",
		"The final pieces of the puzzle are within reach. Your persistence has unraveled most of the mystery.",
		"Case closed! Your methodical approach has solved what others thought unsolvable. This habit has transformed you.",
	},
}

// Narrative picks the storyline passage for the given progress. Unknown
// themes are told as an adventure.
func Narrative(theme models.Theme, currentDay, totalDays int) string {
	set, ok := narratives[theme]
	if !ok {
		set = narratives[models.ThemeAdventure]
	}

	// Thresholds use the floored percentage, unlike ProgressPercent.
	pct := flooredPercent(currentDay, totalDays)
	switch {
	case pct >= 100:
		return set[5]
	case pct >= 80:
		return set[4]
	case pct >= 50:
		return set[3]
	case pct >= 30:
		return set[2]
	case pct >= 10:
		return set[1]
	default:
		return set[0]
	}
}
