package system

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/confsched/internal/cli"
	"github.com/julianstephens/confsched/internal/tui"
	"github.com/julianstephens/confsched/internal/validation"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	if _, err := ctx.Store.Load(); err != nil {
		return err
	}

	ctx.PerformAutomaticBackup()

	p := tea.NewProgram(tui.NewModel(ctx.Service, validation.New(ctx.Files)), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
