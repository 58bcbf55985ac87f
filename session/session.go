// Package session wires the UI goroutine, the script goroutine and the
// transport between them, and owns startup and shutdown ordering.
package session

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/drake/duet/script"
	"github.com/drake/duet/script/js"
	"github.com/drake/duet/script/lua"
	"github.com/drake/duet/timer"
	"github.com/drake/duet/transport"
	"github.com/drake/duet/ui"
)

// Config holds session configuration.
type Config struct {
	Script         string // path to the .lua or .js entry script
	Title          string
	Width, Height  int
	QueueLimit     int
	StyleCacheSize int
}

// Stats is a snapshot safe to take from any goroutine.
type Stats struct {
	UI         ui.Stats
	Transport  transport.Stats
	Timers     int
	Goroutines int
}

// Session orchestrates one script and one UI.
type Session struct {
	config  Config
	link    *transport.Link
	program *ui.Program
	timers  *timer.Service
	runner  *script.Runner
	log     zerolog.Logger
}

// New creates a session. It is passive: no goroutines start until Run.
// teaOpts are passed through to the bubbletea program.
func New(cfg Config, logger zerolog.Logger, teaOpts ...tea.ProgramOption) (*Session, error) {
	lang, err := script.LanguageOf(cfg.Script)
	if err != nil {
		return nil, err
	}

	link := transport.New(cfg.QueueLimit)
	fires := make(chan timer.Fire, 64)
	timers := timer.NewService(fires)
	host := script.NewHost(link.Script(), logger)

	var engine script.Engine
	switch lang {
	case script.Lua:
		engine = lua.NewEngine(host, timers, logger)
	case script.JavaScript:
		engine = js.NewEngine(host, timers, logger)
	default:
		return nil, fmt.Errorf("%w: %s", script.ErrUnknownLanguage, lang)
	}

	program := ui.NewProgram(link.UI(), ui.Options{
		Title:          cfg.Title,
		Width:          cfg.Width,
		Height:         cfg.Height,
		StyleCacheSize: cfg.StyleCacheSize,
	}, logger, teaOpts...)

	return &Session{
		config:  cfg,
		link:    link,
		program: program,
		timers:  timers,
		runner:  script.NewRunner(host, engine, fires, logger),
		log:     logger.With().Str("component", "session").Logger(),
	}, nil
}

// Run starts both goroutines and blocks until the UI exits or ctx is
// cancelled. The script finishing or failing to load leaves the UI running;
// the UI exiting stops the script.
func (s *Session) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	scriptCtx, stopScript := context.WithCancel(gctx)

	g.Go(func() error {
		defer stopScript()
		err := s.program.Run(gctx)
		s.log.Debug().Err(err).Msg("ui exited")
		return err
	})

	g.Go(func() error {
		defer s.link.Script().Close()
		defer s.timers.Stop()

		s.log.Info().Str("script", s.config.Script).Msg("script starting")
		err := s.runner.Run(scriptCtx, s.config.Script)
		if errors.Is(err, script.ErrScript) {
			s.log.Error().Err(err).Msg("script failed to load")
			return nil
		}
		s.log.Info().Err(err).Msg("script finished")
		return err
	})

	return g.Wait()
}

// Stats is safe to call from any goroutine.
func (s *Session) Stats() Stats {
	return Stats{
		UI:         s.program.Model().Stats(),
		Transport:  s.link.Stats(),
		Timers:     s.timers.Active(),
		Goroutines: runtime.NumGoroutine(),
	}
}
