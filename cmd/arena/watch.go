package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/udisondev/beastarena/internal/game/battle"
	"github.com/udisondev/beastarena/internal/game/combat"
	"github.com/udisondev/beastarena/internal/model"
	"github.com/udisondev/beastarena/internal/render"
)

const defaultPacing = 350 * time.Millisecond

// watch plays one battle on the terminal and waits for a key once it ends.
// Esc, Ctrl-C or q abort the battle.
func watch(ctx context.Context, m *match) (battle.Outcome, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return battle.Outcome{}, fmt.Errorf("creating screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return battle.Outcome{}, fmt.Errorf("initializing screen: %w", err)
	}
	defer screen.Fini()

	if m.cfg.Battle.Pacing <= 0 {
		m.cfg.Battle.Pacing = defaultPacing
	}
	var presenter *render.Presenter
	b, err := m.newBattle(func(units []*model.CombatUnit) combat.Observer {
		presenter = render.NewPresenter(screen, units)
		return presenter
	}, true)
	if err != nil {
		return battle.Outcome{}, err
	}
	presenter.Draw()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	keys := make(chan struct{}, 1)
	go pollKeys(screen, cancel, keys)

	out, err := b.Run(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			slog.Info("battle aborted", "round", b.Round())
		}
		return out, err
	}

	select {
	case <-keys:
	case <-ctx.Done():
	}
	return out, nil
}

// pollKeys cancels on a quit key and reports any other key press.
// It returns once the screen is finalized.
func pollKeys(screen tcell.Screen, cancel context.CancelFunc, keys chan<- struct{}) {
	for {
		switch ev := screen.PollEvent().(type) {
		case nil:
			return
		case *tcell.EventResize:
			screen.Sync()
		case *tcell.EventKey:
			if render.IsQuit(ev) {
				cancel()
				continue
			}
			select {
			case keys <- struct{}{}:
			default:
			}
		}
	}
}
