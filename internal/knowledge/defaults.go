package knowledge

import (
	"time"

	"github.com/kamusis/kbot/internal/match"
)

// Category names used by the built-in knowledge base.
const (
	CategoryComprehensive = "comprehensive"
	CategoryGreetings     = "greetings"
	CategoryPersonal      = "personal"
	CategoryFun           = "fun"
)

// TimeText renders the answer to "what time is it".
func TimeText(now time.Time) string {
	return "The current time is " + now.Format("15:04")
}

// DateText renders the answer to "what is today's date".
func DateText(now time.Time) string {
	return "Today's date is " + now.Format("1/2/2006")
}

func defaultGreetings() []match.Entry {
	return withCategory(CategoryGreetings, []match.Entry{
		{Question: "hi", Answer: "Hello! 👋 How can I help you today?"},
		{Question: "hello", Answer: "Hi there! 😊 Nice to meet you! How may I assist you?"},
		{Question: "hey", Answer: "Hey! 👋 What's on your mind? I'm here to help!"},
		{Question: "good morning", Answer: "Good morning! 🌅 Hope you're having a wonderful start to your day. How can I help?"},
		{Question: "good night", Answer: "Good night! 🌙 Sleep well and have sweet dreams. Feel free to chat with me anytime!"},
	})
}

func defaultPersonal() []match.Entry {
	return withCategory(CategoryPersonal, []match.Entry{
		{Question: "what's your name?", Answer: "I'm kbot, your friendly offline chat companion! 🤖 Nice to meet you!"},
		{Question: "who created you?", Answer: "I was built as a learning project around a small knowledge base and fuzzy question matching. 💻"},
		{Question: "how old are you?", Answer: "I'm a relatively new chatbot. I don't have a physical age, but I'm here to help! 📚"},
	})
}

func defaultFun() []match.Entry {
	return withCategory(CategoryFun, []match.Entry{
		{Question: "tell me a joke", Answer: "Why don't scientists trust atoms? Because they make up everything! 😄 Here's another: What do you call a fake noodle? An impasta! 🍝"},
		{Question: "tell me a riddle", Answer: "Here's a fun riddle: What has keys, but no locks; space, but no room; and you can enter, but not go in? 🤔 The answer is a computer keyboard! ⌨️"},
	})
}

// Starter returns the general-knowledge part of the fallback comprehensive set,
// without the clock answers. kbot init seeds new knowledge directories with it.
func Starter() []match.Entry {
	return withCategory(CategoryComprehensive, []match.Entry{
		{Question: "what is the boiling point of water?", Answer: "The boiling point of water is 100°C at standard pressure."},
		{Question: "who developed the theory of relativity?", Answer: "The theory of relativity was developed by Albert Einstein."},
		{Question: "what is the capital of france?", Answer: "The capital of France is Paris."},
		{Question: "what is dna?", Answer: "DNA (deoxyribonucleic acid) is a molecule that carries genetic information and instructions for the development and functioning of living organisms."},
	})
}

// fallbackComprehensive is used when no knowledge file can be loaded. Time and date
// answers are rendered once, from now.
func fallbackComprehensive(now time.Time) []match.Entry {
	clock, date := TimeText(now), DateText(now)
	return append(Starter(), withCategory(CategoryComprehensive, []match.Entry{
		{Question: "what is the current time?", Answer: clock},
		{Question: "what time is it?", Answer: clock},
		{Question: "what is time?", Answer: clock},
		{Question: "tell me the time", Answer: clock},
		{Question: "what day is today?", Answer: date},
		{Question: "what is today's date?", Answer: date},
		{Question: "what date is it today?", Answer: date},
	})...)
}

func withCategory(name string, entries []match.Entry) []match.Entry {
	for i := range entries {
		entries[i].Category = name
	}
	return entries
}
