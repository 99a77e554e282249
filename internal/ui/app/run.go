package app

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"studyhub/internal/platform/events"
	timerview "studyhub/internal/ui/views/timer"
)

// Run drives the program until the user quits or ctx ends. Bus events and
// timer file changes are forwarded into the update loop.
func Run(ctx context.Context, ports Ports, bus *events.Bus, changes <-chan struct{}) error {
	program := tea.NewProgram(NewModel(ports), tea.WithAltScreen(), tea.WithContext(ctx))

	if bus != nil {
		unsubSync := bus.SyncCompleted.Subscribe(func(e events.SyncCompleted) { program.Send(SyncCompletedMsg(e)) })
		defer unsubSync()
		unsubLevel := bus.LevelUp.Subscribe(func(e events.LevelUp) { program.Send(LevelUpMsg(e)) })
		defer unsubLevel()
		unsubAuth := bus.AuthRejected.Subscribe(func(e events.AuthRejected) { program.Send(AuthRejectedMsg(e)) })
		defer unsubAuth()
	}
	if changes != nil {
		go func() {
			for range changes {
				program.Send(timerview.RefreshMsg{})
			}
		}()
	}

	_, err := program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
