package actionable

import (
	"strings"

	"supersoniq-insights/internal/config"
	"supersoniq-insights/internal/types"
)

// ActionCard is the remediation shown for a failed run.
type ActionCard struct {
	Title    string            `json:"title"`
	Message  string            `json:"message"`
	Kind     types.ErrorKind   `json:"kind"`
	Source   types.ErrorSource `json:"source,omitempty"`
	Provider string            `json:"provider,omitempty"`
	Action   string            `json:"action"`
	Link     string            `json:"link,omitempty"`
	Hint     string            `json:"hint,omitempty"`
}

// Generate builds the card for err. Auth failures point at the failing
// vendor's key page, quota failures at its billing page, and anything else
// offers a plain retry.
func Generate(err error, cat config.Catalog) ActionCard {
	card := ActionCard{
		Message:  types.UserMessage(err),
		Kind:     types.KindOf(err),
		Source:   types.SourceOf(err),
		Provider: types.ProviderOf(err),
	}
	p, known := cat.Lookup(card.Provider)
	name := types.DisplayName(card.Provider)
	if known && p.Name != "" {
		name = p.Name
	}

	switch {
	case card.Kind == types.KindQuota && known:
		card.Title = "Free Tier Limit Reached"
		card.Link = p.BillingLink
		card.Hint = "Or wait for your quota to reset"
		if card.Source == types.SourceTranscription {
			card.Action = "Upgrade " + name + " Plan"
		} else {
			card.Action = "Manage " + name
		}
	case card.Kind == types.KindAuth && known:
		card.Title = "Invalid API Key"
		card.Action = "Check " + strings.TrimSuffix(name, " API") + " Key"
		card.Link = p.KeyLink
	default:
		card.Title = "Something Went Wrong"
		card.Action = "Try Again"
	}
	return card
}
