package execution

import "fmt"

// Prompt is the instruction pair sent alongside the image.
type Prompt struct {
	System string
	User   string
}

const (
	PromptHistorical = "historical"
	PromptSimple     = "simple"
)

const historicalSystemPrompt = `You are an expert transcriber of Early Modern European prints (1500-1800) in German, Latin and Greek.
Extract the exact text of the scanned page while keeping every typographic feature.

Preserve exactly, without modernizing or normalizing:
- long s (ſ)
- ligatures such as æ, œ, ct, ſt
- abbreviation glyphs such as ꝑ, ꝓ, ⁊
- polytonic Greek accents and breathings
- obsolete letter forms and symbols

Spacing:
- put a single space after ':' when none is printed
- use a single space wherever there is visible spacing, however wide

Never substitute characters (ſ stays ſ, u stays u). Never infer or invent text.
Words that look joined because of tight spacing should be separated where the language requires it.

Return only the literal transcription. No formatting, labels, explanations or commentary.
Do not repeat the transcription.`

const simpleUserPrompt = "What text do you see in this image? Please provide an accurate transcription. Return only the transcription, nothing else."

const historicalUserPrompt = "Transcribe this page."

// LookupPrompt returns a named prompt.
func LookupPrompt(name string) (Prompt, error) {
	switch name {
	case "", PromptHistorical:
		return Prompt{System: historicalSystemPrompt, User: historicalUserPrompt}, nil
	case PromptSimple:
		return Prompt{User: simpleUserPrompt}, nil
	default:
		return Prompt{}, fmt.Errorf("unknown prompt %q (supported: %s, %s)", name, PromptHistorical, PromptSimple)
	}
}
