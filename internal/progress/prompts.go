package progress

import "github.com/Dias221467/Questline/internal/models"

var reflectionPrompts = []string{
	"How has this practice affected your energy levels today?",
	"What obstacles did you overcome to maintain your habit today?",
	"How does this habit connect to your larger goals?",
	"What would make tomorrow's practice even better?",
	"How has your perspective changed since beginning this journey?",
	"What unexpected benefits have you noticed from this habit?",
	"How does this habit make you feel about yourself?",
	"What would you tell someone just starting this same habit?",
	"How has this practice affected your relationships with others?",
	"What have you learned about yourself through this practice?",
}

// PromptCount is the length of the prompt cycle.
var PromptCount = len(reflectionPrompts)

// ReflectionPrompt cycles through the fixed prompt list by day. The theme is
// accepted for future per-theme prompt sets and does not change the result.
func ReflectionPrompt(day int, _ models.Theme) string {
	n := len(reflectionPrompts)
	return reflectionPrompts[((day%n)+n)%n]
}
