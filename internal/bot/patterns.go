package bot

import "regexp"

var timePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)what.*time`),
	regexp.MustCompile(`(?i)current time`),
	regexp.MustCompile(`(?i)time now`),
	regexp.MustCompile(`(?i)tell me.*time`),
	regexp.MustCompile(`(?i)what.*o'clock`),
	regexp.MustCompile(`(?i)what.*hour`),
}

var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)what.*date`),
	regexp.MustCompile(`(?i)current date`),
	regexp.MustCompile(`(?i)today.*date`),
	regexp.MustCompile(`(?i)what day.*today`),
	regexp.MustCompile(`(?i)tell me.*date`),
	regexp.MustCompile(`(?i)what.*day`),
}

var (
	greetingPrefix = regexp.MustCompile(`^(hi|hello|hey|good|morning|afternoon|evening|night)`)
	farewellPrefix = regexp.MustCompile(`^(bye|goodbye|see you|farewell|take care)`)
	thanksPrefix   = regexp.MustCompile(`^(thank|thanks|thx|appreciate)`)
)

const (
	greetingReply = "Hello! 👋 How can I help you today?"
	farewellReply = "Goodbye! 👋 Have a wonderful day! Come back anytime!"
	thanksReply   = "You're welcome! 😊 I'm happy to help!"

	mathErrorReply = "❌ I couldn't solve that math expression. Please make sure it's a valid mathematical operation (e.g., '2 + 3', '10 * 5', '100 / 4')."
)

var fallbackReplies = []string{
	"🤔 I don't know that yet, but I can help you with many other topics!",
	"❓ That's an interesting question, but it's not in my knowledge base yet.",
	"💭 I'm not sure about that, but I'd be happy to help with something else!",
	"🔍 I couldn't find information about that in my knowledge base.",
	"📚 That's beyond my current knowledge, but I'm always learning!",
}

const welcomeText = `Hello! I'm kbot, your offline chatbot! 🤖

I'm powered by a knowledge base covering:
• Science & Technology 🔬
• History & Geography 🌍
• Mathematics & Logic 🧮
• General Knowledge 📚
• Fun & Entertainment 😄

I can also solve basic math calculations and understand variations of questions using fuzzy matching.

What would you like to know?`

func matchesAny(patterns []*regexp.Regexp, s string) bool {
	for _, p := range patterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}
