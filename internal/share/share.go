package share

import (
	"strings"
)

// Strategy is the mechanism the client should use to share a destination.
type Strategy string

const (
	StrategyNative    Strategy = "native"
	StrategyClipboard Strategy = "clipboard"
	StrategyManual    Strategy = "manual"
)

// Capabilities are the features the client reported as available.
type Capabilities struct {
	Native    bool
	Clipboard bool
}

// Payload is what gets shared.
type Payload struct {
	Title string `json:"title"`
	Text  string `json:"text"`
	URL   string `json:"url"`
}

// Outcome is the chosen strategy with its payload. MessageKey names the notice shown when
// the response arrives. For the clipboard strategy that notice is provisional: the client
// replaces it with Success or Failure once the write settles.
type Outcome struct {
	Strategy   Strategy `json:"strategy"`
	Payload    Payload  `json:"payload"`
	Clipboard  string   `json:"clipboard,omitempty"`
	Success    string   `json:"success,omitempty"`
	Failure    string   `json:"failure,omitempty"`
	MessageKey string   `json:"-"`
}

// Translator renders a localised message with {name} placeholders.
type Translator interface {
	Format(lang, key string, pairs ...string) string
}

// Choose walks the chain native, clipboard, manual and returns the first usable strategy.
func Choose(caps Capabilities) Strategy {
	switch {
	case caps.Native:
		return StrategyNative
	case caps.Clipboard:
		return StrategyClipboard
	default:
		return StrategyManual
	}
}

// ParseFlag reads a capability form value. Absent or unrecognised values are false.
func ParseFlag(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

// Plan builds the share outcome for name at pageURL.
func Plan(tr Translator, lang, name, pageURL string, caps Capabilities) Outcome {
	p := Payload{
		Title: tr.Format(lang, "share.title", "name", name),
		Text:  tr.Format(lang, "share.text", "name", name),
		URL:   pageURL,
	}
	out := Outcome{Strategy: Choose(caps), Payload: p}
	switch out.Strategy {
	case StrategyNative:
		out.MessageKey = "share.native"
	case StrategyClipboard:
		out.Clipboard = tr.Format(lang, "share.clipboard_text", "name", name, "url", pageURL)
		out.Success = tr.Format(lang, "share.copied")
		out.Failure = tr.Format(lang, "share.manual")
		out.MessageKey = "share.copying"
	case StrategyManual:
		out.MessageKey = "share.manual"
	}
	return out
}
