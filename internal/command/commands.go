package command

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/nwrenn/castdeck/internal/smartcast"
)

// Name identifies one command in the set.
type Name string

// The command set.
const (
	PowerOn     Name = "power_on"
	PowerOff    Name = "power_off"
	PowerToggle Name = "power_toggle"

	VolumeUp   Name = "volume_up"
	VolumeDown Name = "volume_down"
	VolumeSet  Name = "volume_set"
	MuteToggle Name = "mute_toggle"

	ChannelUp   Name = "channel_up"
	ChannelDown Name = "channel_down"
	ChannelPrev Name = "channel_prev"

	Play  Name = "play"
	Pause Name = "pause"

	NavUp    Name = "nav_up"
	NavDown  Name = "nav_down"
	NavLeft  Name = "nav_left"
	NavRight Name = "nav_right"
	NavOK    Name = "nav_ok"
	NavBack  Name = "nav_back"
	NavExit  Name = "nav_exit"

	SetInput  Name = "set_input"
	LaunchApp Name = "launch_app"
)

// Command is one dispatchable action. Arg is empty for argument-less
// commands.
type Command struct {
	Name Name   `json:"name"`
	Arg  string `json:"arg,omitempty"`
}

// def describes one command's argument contract and execution.
type def struct {
	// takesArg marks commands that require exactly one argument.
	takesArg bool

	// validate checks the argument before execution. Nil means any
	// non-empty argument is acceptable.
	validate func(arg string) error

	// run executes the command against the device.
	run func(ctx context.Context, ctrl smartcast.Controller, arg string) error
}

// keyRun builds a run function for a plain key press.
func keyRun(key smartcast.Key) func(context.Context, smartcast.Controller, string) error {
	return func(ctx context.Context, ctrl smartcast.Controller, _ string) error {
		return ctrl.Key(ctx, key)
	}
}

func validateVolume(arg string) error {
	level, err := strconv.Atoi(arg)
	if err != nil {
		return fmt.Errorf("%w: volume %q is not a number", ErrInvalidArgument, arg)
	}
	if level < 0 || level > 100 {
		return fmt.Errorf("%w: volume %d out of range 0-100", ErrInvalidArgument, level)
	}
	return nil
}

// commands is the single authoritative table of the command set.
var commands = map[Name]def{
	PowerOn:     {run: keyRun(smartcast.KeyPowerOn)},
	PowerOff:    {run: keyRun(smartcast.KeyPowerOff)},
	PowerToggle: {run: keyRun(smartcast.KeyPowerToggle)},

	VolumeUp:   {run: keyRun(smartcast.KeyVolumeUp)},
	VolumeDown: {run: keyRun(smartcast.KeyVolumeDown)},
	MuteToggle: {run: keyRun(smartcast.KeyMuteToggle)},
	VolumeSet: {
		takesArg: true,
		validate: validateVolume,
		run: func(ctx context.Context, ctrl smartcast.Controller, arg string) error {
			level, _ := strconv.Atoi(arg)
			return ctrl.SetVolume(ctx, level)
		},
	},

	ChannelUp:   {run: keyRun(smartcast.KeyChannelUp)},
	ChannelDown: {run: keyRun(smartcast.KeyChannelDown)},
	ChannelPrev: {run: keyRun(smartcast.KeyChannelPrev)},

	Play:  {run: keyRun(smartcast.KeyPlay)},
	Pause: {run: keyRun(smartcast.KeyPause)},

	NavUp:    {run: keyRun(smartcast.KeyUp)},
	NavDown:  {run: keyRun(smartcast.KeyDown)},
	NavLeft:  {run: keyRun(smartcast.KeyLeft)},
	NavRight: {run: keyRun(smartcast.KeyRight)},
	NavOK:    {run: keyRun(smartcast.KeyOK)},
	NavBack:  {run: keyRun(smartcast.KeyBack)},
	NavExit:  {run: keyRun(smartcast.KeyExit)},

	SetInput: {
		takesArg: true,
		run: func(ctx context.Context, ctrl smartcast.Controller, arg string) error {
			return ctrl.SetInput(ctx, arg)
		},
	},
	LaunchApp: {
		takesArg: true,
		run: func(ctx context.Context, ctrl smartcast.Controller, arg string) error {
			return ctrl.LaunchApp(ctx, arg)
		},
	},
}

// Names returns the full command set, sorted, for API listings.
func Names() []Name {
	out := make([]Name, 0, len(commands))
	for name := range commands {
		out = append(out, name)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// IsValid reports whether name is in the command set.
func (n Name) IsValid() bool {
	_, ok := commands[n]
	return ok
}

// TakesArg reports whether the command requires an argument.
func (n Name) TakesArg() bool {
	return commands[n].takesArg
}

// Validate checks the command name and argument without executing it.
func Validate(cmd Command) error {
	s, ok := commands[cmd.Name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCommand, cmd.Name)
	}

	arg := strings.TrimSpace(cmd.Arg)
	if s.takesArg {
		if arg == "" {
			return fmt.Errorf("%w: %s requires an argument", ErrMissingArgument, cmd.Name)
		}
		if s.validate != nil {
			return s.validate(arg)
		}
		return nil
	}
	if arg != "" {
		return fmt.Errorf("%w: %s takes no argument", ErrUnexpectedArgument, cmd.Name)
	}
	return nil
}

// Dispatch validates the command and executes it against the controller.
func Dispatch(ctx context.Context, ctrl smartcast.Controller, cmd Command) error {
	if err := Validate(cmd); err != nil {
		return err
	}
	return commands[cmd.Name].run(ctx, ctrl, strings.TrimSpace(cmd.Arg))
}
