package ui

import (
	"context"
	"errors"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/drake/duet/transport"
)

// Program runs the bubbletea program and feeds it script commands.
//
// A single pump goroutine blocks on the command queue and hands each command
// to the program with Send, so the UI wakes as soon as the script sends and
// never polls.
type Program struct {
	end   *transport.UIEnd
	model *Model
	opts  []tea.ProgramOption
	log   zerolog.Logger

	program *tea.Program

	done     chan struct{}
	doneOnce sync.Once
}

// NewProgram creates a program on the UI end of link. Extra options are
// applied after the defaults (alt screen, mouse motion, focus reporting).
func NewProgram(end *transport.UIEnd, opts Options, logger zerolog.Logger, teaOpts ...tea.ProgramOption) *Program {
	return &Program{
		end:   end,
		model: NewModel(end, opts, logger),
		opts:  teaOpts,
		log:   logger.With().Str("component", "program").Logger(),
		done:  make(chan struct{}),
	}
}

// Model returns the program's model. Only Stats may be called on it from
// other goroutines.
func (p *Program) Model() *Model { return p.model }

// Run starts the UI and blocks until it exits. The UI end of the transport
// is closed on return so the script side sees the disconnect.
func (p *Program) Run(ctx context.Context) error {
	opts := append([]tea.ProgramOption{
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithReportFocus(),
	}, p.opts...)
	p.program = tea.NewProgram(p.model, opts...)

	pumpCtx, stop := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		p.pump(pumpCtx)
	}()

	_, err := p.program.Run()

	stop()
	p.end.Close()
	wg.Wait()
	p.doneOnce.Do(func() { close(p.done) })

	// Cancellation from the caller is a normal shutdown.
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func (p *Program) pump(ctx context.Context) {
	for {
		cmd, err := p.end.Recv(ctx)
		if err != nil {
			if errors.Is(err, transport.ErrDisconnected) {
				p.program.Send(scriptDetachedMsg{})
			}
			p.log.Debug().Err(err).Msg("command pump stopped")
			return
		}
		p.program.Send(commandMsg{cmd: cmd})
	}
}

// Done is closed once Run has returned.
func (p *Program) Done() <-chan struct{} { return p.done }
