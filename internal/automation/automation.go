// Package automation replays scripted playback commands against a headless
// session.
package automation

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"sort"

	"github.com/san-kum/gridsearch/internal/config"
	"github.com/san-kum/gridsearch/internal/grid"
	"github.com/san-kum/gridsearch/internal/playback"
	"github.com/san-kum/gridsearch/internal/schedule"
	"github.com/san-kum/gridsearch/internal/session"
	"gopkg.in/yaml.v3"
)

const DefaultMaxTicks = 100000

// ErrInvalidScript is wrapped by every script validation failure.
var ErrInvalidScript = errors.New("automation: invalid script")

// Script defines a scripted playback sequence
type Script struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	// Graph replaces the session's graph config when set.
	Graph *config.GraphConfig `yaml:"graph,omitempty"`
	// StopAtEnd ends the run at the terminal hold once every step is sent.
	StopAtEnd bool `yaml:"stop_at_end"`
	// WaitForTrace holds the first tick until the traversal has finished, so
	// step ticks line up with cursor positions.
	WaitForTrace bool   `yaml:"wait_for_trace"`
	MaxTicks     int    `yaml:"max_ticks"`
	Steps        []Step `yaml:"steps"`
}

// Step is sent once Tick ticks have run; tick 0 is sent before the first.
type Step struct {
	Tick    int                 `yaml:"tick"`
	Command string              `yaml:"command"`
	Rate    int                 `yaml:"rate,omitempty"`
	Options *config.GraphConfig `yaml:"options,omitempty"`
}

// Sample is the controller position after one tick.
type Sample struct {
	Tick   int
	Cursor int
	Len    int
	State  playback.State
}

type Report struct {
	Ticks   int
	Sent    int
	Final   playback.Status
	Samples []Sample
	// Trace is the last worker's visit order when the run ended.
	Trace []grid.Coordinate
}

// PlayToEnd plays forward from the first tick until the trace is fully shown.
func PlayToEnd() *Script {
	return &Script{
		Name:      "play-to-end",
		StopAtEnd: true,
		Steps:     []Step{{Tick: 0, Command: "play_forward"}},
	}
}

func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScript(data)
}

func ParseScript(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("automation: parse script: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	s.Steps = orderedSteps(s.Steps)
	return &s, nil
}

// Validate checks the graph override and every step. It does not modify s.
func (s *Script) Validate() error {
	if s.MaxTicks < 0 {
		return fmt.Errorf("%w: max_ticks %d", ErrInvalidScript, s.MaxTicks)
	}
	if s.Graph != nil {
		if err := s.Graph.Validate(); err != nil {
			return fmt.Errorf("%w: graph: %w", ErrInvalidScript, err)
		}
	}
	for i, step := range s.Steps {
		if step.Tick < 0 {
			return fmt.Errorf("%w: step %d: negative tick", ErrInvalidScript, i+1)
		}
		cmd, err := step.command()
		if err != nil {
			return fmt.Errorf("%w: step %d: %w", ErrInvalidScript, i+1, err)
		}
		switch cmd.Type {
		case playback.CmdApplyOptions:
			err = cmd.Config.Validate()
		case playback.CmdSetRate:
			err = config.ValidateRate(cmd.Rate)
		}
		if err != nil {
			return fmt.Errorf("%w: step %d: %w", ErrInvalidScript, i+1, err)
		}
	}
	return nil
}

// orderedSteps returns a copy of steps sorted by tick, keeping file order
// within a tick.
func orderedSteps(steps []Step) []Step {
	out := slices.Clone(steps)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Tick < out[j].Tick })
	return out
}

func (st Step) command() (playback.Command, error) {
	switch st.Command {
	case "set_rate":
		return playback.SetRate(st.Rate), nil
	case "apply_options":
		if st.Options == nil {
			return playback.Command{}, fmt.Errorf("apply_options needs options")
		}
		return playback.ApplyOptions(*st.Options), nil
	}
	return playback.ParseCommand(st.Command)
}

type player struct {
	script   *Script
	sess     *session.Session
	next     int
	maxTicks int
	report   *Report
}

// send queues every step due after tick ticks.
func (p *player) send(tick int) error {
	for p.next < len(p.script.Steps) && p.script.Steps[p.next].Tick <= tick {
		cmd, err := p.script.Steps[p.next].command()
		if err != nil {
			return err
		}
		if err := p.sess.Send(cmd); err != nil {
			return fmt.Errorf("automation: step %d: %w", p.next+1, err)
		}
		p.next++
		p.report.Sent++
	}
	return nil
}

func (p *player) afterTick(tick int, st playback.Status) error {
	p.report.Ticks = tick
	p.report.Final = st
	p.report.Samples = append(p.report.Samples, Sample{Tick: tick, Cursor: st.Cursor, Len: st.Len, State: st.State})

	if err := p.send(tick); err != nil {
		return err
	}
	if tick >= p.maxTicks {
		return schedule.ErrStop
	}
	done := p.next == len(p.script.Steps)
	if done && p.script.StopAtEnd && atTerminalHold(st) {
		return schedule.ErrStop
	}
	return nil
}

func atTerminalHold(st playback.Status) bool {
	return st.Complete && st.Len > 0 && st.Cursor == st.Len && st.State == playback.Paused
}

// Run builds a session on sink, replays script and returns what happened. The
// run ends at the terminal hold (when StopAtEnd is set), after MaxTicks, or
// when ctx ends.
func Run(ctx context.Context, cfg *config.Config, sink playback.RenderSink, script *Script, opts session.Options) (*Report, error) {
	if script == nil {
		script = PlayToEnd()
	}
	if err := script.Validate(); err != nil {
		return nil, err
	}
	ordered := *script
	ordered.Steps = orderedSteps(script.Steps)
	script = &ordered
	if script.Graph != nil {
		c := *cfg
		c.Graph = *script.Graph
		cfg = &c
	}

	p := &player{script: script, maxTicks: script.MaxTicks, report: &Report{}}
	if p.maxTicks == 0 {
		p.maxTicks = DefaultMaxTicks
	}
	opts.AfterTick = p.afterTick
	if opts.QueueSize <= len(script.Steps) {
		opts.QueueSize = len(script.Steps) + 1
	}
	sess, err := session.New(ctx, cfg, sink, opts)
	if err != nil {
		return nil, err
	}
	p.sess = sess

	if script.WaitForTrace {
		if err := sess.Controller().WaitTrace(ctx); err != nil {
			_ = sess.Close()
			return nil, fmt.Errorf("automation: wait for trace: %w", err)
		}
	}
	if err := p.send(0); err != nil {
		_ = sess.Close()
		return nil, err
	}
	err = sess.Run(ctx)
	p.report.Trace, _ = sess.Controller().Trace()
	return p.report, err
}
