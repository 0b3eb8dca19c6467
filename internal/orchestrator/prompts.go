package orchestrator

import "fmt"

// defaultQuestions fill follow-up slots by index whenever the generator
// produces fewer than three usable questions.
var defaultQuestions = [followupCount]string{
	"In a world being transformed by advanced AI, what does finding your purpose mean to you personally?",
	"If advanced AI systems eventually perform most conventional work, what unique human contribution might become your life's signature that no machine could replicate?",
	"If you were granted perfect foresight about how technology will transform society over the next decade, what audacious purpose would you choose that might seem irrational to others today?",
}

func followupPrompt(initialQuery string) string {
	return fmt.Sprintf(`Based on the user's initial purpose-related query: %q

Generate exactly 3 relevant follow-up questions to better understand their context.
Each question should be on a new line starting with a number and a period (1., 2., 3.)

Keep the first two questions focused on understanding the user's purpose, values, life situation,
and any relevant context that would help provide meaningful guidance.
Prioritize questions that lead to direct, substantial discourse over generic topics and suggestions.

Add a provocative, outside-the-box third question about post-AGI purpose challenges that would
follow well after the first two purpose-related general questions.`, initialQuery)
}

const summaryPrompt = `Based on our conversation, generate a brief two-sentence summary of the advice
you will provide after the donation is verified. This should give the user a
preview of your forthcoming detailed guidance without revealing all details.

Make sure your summary is compelling and indicates the value of the full advice.`

const advicePrompt = `Please provide detailed, thoughtful guidance addressing the user's purpose-related question.
Your advice should be comprehensive (at least 1000 tokens but no more than 2000 tokens) and include:

1. A personalized analysis of their situation based on their responses. Be blunt and don't avoid hard truths, but offer encouragement.
2. Practical, actionable steps they can take to find greater purpose in a post-AGI world - avoid generalized advice and pop-sci style
3. Philosophical insights about meaning and purpose relevant to their context

Format your response in a way that blends the above three - use paragraphs, but don't use headers, emphasis or emojis.
Don't start your response with Certainly or similar wording, get straight to the point.`
