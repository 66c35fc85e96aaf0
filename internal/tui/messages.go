package tui

import "gofinances/internal/dashboard"

// viewMsg carries a view published by the dashboard.
type viewMsg struct {
	view dashboard.View
}

// subscriptionClosedMsg is sent once the view channel is closed.
type subscriptionClosedMsg struct{}
