package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nerrad567/sdi-core/internal/chassis"
)

func newLEDCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "led <entity> <alias> on|off",
		Short: "Switch an LED",
		Args:  stateArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := opts.registry()
			if err != nil {
				return err
			}
			res, err := findResource(reg, args[0], args[1])
			if err != nil {
				return err
			}
			on, _ := onOff(args[2])

			switch {
			case res.Type == chassis.ResourceDigitDisplayLED && on:
				err = reg.DigitDisplayLEDOn(res)
			case res.Type == chassis.ResourceDigitDisplayLED:
				err = reg.DigitDisplayLEDOff(res)
			case on:
				err = reg.LEDOn(res)
			default:
				err = reg.LEDOff(res)
			}
			if err != nil {
				return fmt.Errorf("led %s on %s: %w", args[2], res, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s/%s: %s\n", args[0], args[1], args[2])
			return nil
		},
	}
}

func newResetCmd(opts *options) *cobra.Command {
	var warm bool
	cmd := &cobra.Command{
		Use:   "reset <type> <instance>",
		Short: "Reset an entity",
		Long: `Reset an entity through its power control attribute.

Only cold reset is implemented by the hardware; --warm reports it as
unsupported.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := opts.registry()
			if err != nil {
				return err
			}
			e, err := findEntity(reg, args[0], args[1])
			if err != nil {
				return err
			}

			kind, label := chassis.ResetCold, "cold"
			if warm {
				kind, label = chassis.ResetWarm, "warm"
			}
			if err := reg.Reset(e, kind); err != nil {
				return fmt.Errorf("%s reset of %s: %w", label, e.Name, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s reset requested\n", e.Name, label)
			return nil
		},
	}
	cmd.Flags().BoolVar(&warm, "warm", false, "request a warm reset")
	return cmd
}

func newPowerCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "power <type> <instance> on|off",
		Short: "Switch the power of an entity",
		Args:  stateArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := opts.registry()
			if err != nil {
				return err
			}
			e, err := findEntity(reg, args[0], args[1])
			if err != nil {
				return err
			}

			on, _ := onOff(args[2])
			if err := reg.PowerStatusControl(e, on); err != nil {
				return fmt.Errorf("power %s of %s: %w", args[2], e.Name, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: power %s\n", e.Name, args[2])
			return nil
		},
	}
}
