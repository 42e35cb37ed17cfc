package playback

import (
	"fmt"
	"strings"

	"github.com/san-kum/gridsearch/internal/config"
)

// CommandType enumerates the requests a UI can make of the controller.
type CommandType int

const (
	CmdGoBack CommandType = iota + 1
	CmdGoNext
	CmdPlayForward
	CmdPlayBackward
	CmdPause
	CmdRestart
	CmdReset
	CmdApplyOptions
	CmdSetRate
)

var commandNames = map[CommandType]string{
	CmdGoBack:       "back",
	CmdGoNext:       "next",
	CmdPlayForward:  "play_forward",
	CmdPlayBackward: "play_backward",
	CmdPause:        "pause",
	CmdRestart:      "restart",
	CmdReset:        "reset",
	CmdApplyOptions: "apply_options",
	CmdSetRate:      "set_rate",
}

func (t CommandType) String() string {
	if name, ok := commandNames[t]; ok {
		return name
	}
	return fmt.Sprintf("command(%d)", int(t))
}

// Command carries a typed payload: Config for CmdApplyOptions, Rate for CmdSetRate.
type Command struct {
	Type   CommandType
	Config config.GraphConfig
	Rate   int
}

func GoBack() Command       { return Command{Type: CmdGoBack} }
func GoNext() Command       { return Command{Type: CmdGoNext} }
func PlayForward() Command  { return Command{Type: CmdPlayForward} }
func PlayBackward() Command { return Command{Type: CmdPlayBackward} }
func Pause() Command        { return Command{Type: CmdPause} }
func Restart() Command      { return Command{Type: CmdRestart} }
func Reset() Command        { return Command{Type: CmdReset} }

func ApplyOptions(cfg config.GraphConfig) Command {
	return Command{Type: CmdApplyOptions, Config: cfg}
}

func SetRate(stepsPerSecond int) Command {
	return Command{Type: CmdSetRate, Rate: stepsPerSecond}
}

// ParseCommand maps a payload-free command name such as "play_forward" to a Command.
func ParseCommand(name string) (Command, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for t, n := range commandNames {
		if n != name {
			continue
		}
		if t == CmdApplyOptions || t == CmdSetRate {
			return Command{}, fmt.Errorf("%w: %s needs a payload", ErrUnknownCommand, name)
		}
		return Command{Type: t}, nil
	}
	return Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, name)
}
