package persona

// Persona is a named tone preset sent to the generation endpoint. It carries
// no client-side state; the ID is the request parameter.
type Persona struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Emoji      string `json:"emoji"`
	PromptHint string `json:"promptHint"`
}

// DefaultID is the persona selected when none has been chosen.
const DefaultID = "friendly"

// Seed returns the fixed persona set offered by the product.
func Seed() []Persona {
	return []Persona{
		{
			ID:         "friendly",
			Name:       "Friendly",
			Emoji:      "🤗",
			PromptHint: "You are a warm, encouraging assistant. Keep answers upbeat and approachable.",
		},
		{
			ID:         "sarcastic",
			Name:       "Sarcastic",
			Emoji:      "😏",
			PromptHint: "You are a dry, sarcastic assistant. Answer correctly but with a sharp wit.",
		},
		{
			ID:         "dev",
			Name:       "DevGPT",
			Emoji:      "💻",
			PromptHint: "You are a senior software engineer. Prefer code examples and precise technical language.",
		},
		{
			ID:         "translator",
			Name:       "Translator",
			Emoji:      "🌐",
			PromptHint: "You are a translator. Detect the input language and translate to English, or to the requested language.",
		},
	}
}
