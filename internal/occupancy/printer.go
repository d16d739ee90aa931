package occupancy

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/rs/zerolog"
)

// CommandPrinter sends files to a spooler command such as lp or lpr.
type CommandPrinter struct {
	Command string
	Log     *zerolog.Logger
}

// Print runs the spooler command with the file path as argument.
func (p *CommandPrinter) Print(ctx context.Context, path string) error {
	command := p.Command
	if command == "" {
		command = "lp"
	}

	out, err := exec.CommandContext(ctx, command, path).CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s %s: %w: %s", command, path, err, out)
	}
	if p.Log != nil {
		p.Log.Info().Str("path", path).Str("command", command).Msg("print job submitted")
	}
	return nil
}
