// Command sdictl queries and controls the chassis hardware of a switch.
//
// It builds the same entity registry as the sdid daemon from the entity
// list and device settings documents, performs one operation and exits.
// Transceiver commands need a register transport; --media-dir serves one
// from captured module<N>.bin memory images.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nerrad567/sdi-core/internal/sdierr"
)

// Version information (set at build time via ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Exit codes by error class.
const (
	exitFailure      = 1
	exitUsage        = 2
	exitNotSupported = 3
	exitConfig       = 4
)

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "sdictl",
		Short: "Switch chassis inspection and control tool",
		Long: `sdictl reads the chassis description of a switch and talks to its
hardware through sysfs: entity presence and identity, fans, thermal
sensors, LEDs, reset and power control, and pluggable transceivers.

Identity EEPROM images can be decoded offline with "sdictl eeprom".`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	opts.bind(root.PersistentFlags())

	root.AddCommand(
		newEntitiesCmd(opts),
		newInfoCmd(opts),
		newFansCmd(opts),
		newTempsCmd(opts),
		newLEDCmd(opts),
		newMediaCmd(opts),
		newResetCmd(opts),
		newPowerCmd(opts),
		newEEPROMCmd(opts),
	)
	return root
}

// exitCode maps an error to the process exit status.
func exitCode(err error) int {
	switch {
	case errors.Is(err, sdierr.ErrInvalidArgument):
		return exitUsage
	case errors.Is(err, sdierr.ErrNotSupported):
		return exitNotSupported
	case errors.Is(err, sdierr.ErrConfigCorrupted):
		return exitConfig
	default:
		return exitFailure
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}
