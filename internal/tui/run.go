package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"gofinances/internal/dashboard"
)

// Run shows the dashboard until the user quits or ctx is done.
func Run(ctx context.Context, ctrl *dashboard.Controller) error {
	views, unsubscribe := ctrl.Subscribe()
	defer unsubscribe()

	p := tea.NewProgram(New(ctx, ctrl, views),
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithReportFocus(),
	)
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
