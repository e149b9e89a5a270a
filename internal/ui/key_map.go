package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the bindings the views act on. List navigation and filtering
// come from the bubbles list itself.
type keyMap struct {
	enter  key.Binding
	accept key.Binding
	back   key.Binding
	skip   key.Binding
	review key.Binding
	quit   key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		enter:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
		accept: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "accept candidate")),
		back:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		skip:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "skip track")),
		review: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "review unmatched")),
		quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// helpFor lists the bindings shown under view v.
func (k keyMap) helpFor(v ViewState, canReview bool) []key.Binding {
	switch v {
	case ReviewListView:
		return []key.Binding{k.enter, k.skip, k.quit}
	case CandidateView:
		return []key.Binding{k.accept, k.skip, k.back, k.quit}
	case ResultView:
		if canReview {
			return []key.Binding{k.review, k.quit}
		}
	}
	return []key.Binding{k.quit}
}
