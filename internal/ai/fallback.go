package ai

import "strings"

// Canned responses keep the chat responsive when the model API is down,
// rate-limited, or not configured. Categories are checked in order; crisis
// language always wins.
type fallbackRule struct {
	keywords []string
	response string
}

const crisisResponse = `I care about your safety.

If you are having thoughts of hurting yourself, please reach out to professional help right now:

- 988 Suicide & Crisis Lifeline: call or text 988
- Crisis Text Line: text HOME to 741741

You do not have to face this alone. There are people who care and are ready to help, around the clock.

Is there someone close to you that you could reach out to right now?`

const defaultResponse = `Thank you for sharing that with me. I am listening.

What you feel is valid and important. There is nothing wrong with feeling the way you do.

Tell me more, I am here for you.`

var fallbackRules = []fallbackRule{
	{
		keywords: []string{"suicide", "suicidal", "kill myself", "hurt myself", "end it all", "self-harm", "self harm"},
		response: crisisResponse,
	},
	{
		keywords: []string{"anxious", "anxiety", "worried", "afraid", "panic", "scared"},
		response: `I understand that anxious feeling. Anxiety is a natural response of the body, and there is nothing wrong with feeling it.

Let's try a simple breathing exercise together:

1. Breathe in deeply for 4 seconds
2. Hold for 4 seconds
3. Breathe out for 4 seconds

Repeat this 3 to 5 times. How do you feel after trying it?`,
	},
	{
		keywords: []string{"sad", "crying", "cried", "down", "depressed", "miserable"},
		response: `Thank you for sharing how you feel. It is okay to cry; it is how the body lets go of emotion.

You do not have to be strong all the time. Sometimes admitting that we are sad is the first step toward feeling better.

Would you like to tell me what made you feel this way?`,
	},
	{
		keywords: []string{"stress", "stressed", "assignment", "deadline", "thesis", "exam", "overwhelmed"},
		response: `Academic pressure can feel overwhelming. You are not alone in feeling it.

Let's break the load down together:

1. Identify - which task is the most urgent?
2. Prioritize - which one can be done today?
3. Start small - work in 25-minute chunks

Remember, small progress is still progress. What worries you the most right now?`,
	},
	{
		keywords: []string{"thank you", "thanks", "appreciate"},
		response: `You are welcome! I am glad I could keep you company.

Remember, you can always come back here whenever you need someone to talk to. Take care of yourself!`,
	},
	{
		keywords: []string{"hello", "hi ", "hey", "good morning", "good evening"},
		response: `Hi! I am MindSupport AI, a friend you can share your story with.

I am here to listen to whatever you are feeling today. Just tell me, I will not judge.

What are you feeling right now?`,
	},
	{
		keywords: []string{"happy", "glad", "excited", "great news"},
		response: `That is wonderful to hear!

Happiness is precious. Would you tell me what made you feel good today? I would love to celebrate it with you!`,
	},
}

// FallbackResponse returns a canned empathetic reply keyed on keywords in
// the user's message. It is deterministic for a given input.
func FallbackResponse(message string) string {
	lower := strings.ToLower(message)
	for _, rule := range fallbackRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.response
			}
		}
	}
	return defaultResponse
}
