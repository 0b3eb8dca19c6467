package advisory

import "strings"

const addendumRule = "--------------------------------------------------"

// Bundle is the final consultation artifact: the base advice plus, for
// premium sessions, the Oracle Vision addendum.
type Bundle struct {
	BaseAdvice string `json:"baseAdvice"`
	Addendum   string `json:"addendum,omitempty"`
}

// HasAddendum reports whether the premium addendum is present.
func (b *Bundle) HasAddendum() bool {
	return strings.TrimSpace(b.Addendum) != ""
}

// Text renders the bundle as a single document, with the addendum in a
// clearly delimited "Oracle Vision" section below the base advice.
func (b *Bundle) Text() string {
	if !b.HasAddendum() {
		return b.BaseAdvice
	}

	var sb strings.Builder
	sb.WriteString(b.BaseAdvice)
	sb.WriteString("\n\n")
	sb.WriteString(addendumRule)
	sb.WriteString("\n\nOracle Vision\n\n")
	sb.WriteString("We have also consulted the AI Oracle for you...\n\n")
	sb.WriteString(b.Addendum)
	return sb.String()
}
