package main

import (
	"errors"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/nerrad567/sdi-core/internal/chassis"
	"github.com/nerrad567/sdi-core/internal/sdierr"
)

// presentResources calls fn for every resource of type t on a present
// entity. Absent entities and entities whose presence cannot be read are
// skipped.
func presentResources(reg *chassis.Registry, t chassis.ResourceType, fn func(*chassis.Resource)) {
	reg.ForEach(func(e *chassis.Entity) {
		if present, err := reg.PresenceGet(e); err != nil || !present {
			return
		}
		e.ForEachResource(func(res *chassis.Resource) {
			if res.Type == t {
				fn(res)
			}
		})
	})
}

func newFansCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "fans",
		Short: "Show fan speeds on present entities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := opts.registry()
			if err != nil {
				return err
			}
			p := newPalette(opts.renderer(cmd.OutOrStdout()))
			t := newTable("ENTITY", "FAN", "RPM", "MAX", "STATUS")

			presentResources(reg, chassis.ResourceFan, func(res *chassis.Resource) {
				rpm, maxRPM := p.bad.Render("error"), p.dim.Render("-")
				if v, err := reg.FanSpeedGet(res); err == nil {
					rpm = humanize.Comma(int64(v)) // #nosec G115 -- fan speeds are far below MaxInt64
				}
				if v, err := reg.FanMaxSpeed(res); err == nil {
					maxRPM = humanize.Comma(int64(v)) // #nosec G115
				}

				status := p.ok.Render("ok")
				fault, err := reg.FanStatusGet(res)
				switch {
				case errors.Is(err, sdierr.ErrPermissionDenied):
					status = p.dim.Render("n/a")
				case err != nil:
					status = p.bad.Render("error")
				case fault:
					status = p.bad.Render("fault")
				}
				t.add(res.Entity().Name, res.Alias, rpm, maxRPM, status)
			})
			return t.render(cmd.OutOrStdout(), p)
		},
	}
}

func newTempsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "temps",
		Short: "Show thermal sensors and thresholds on present entities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := opts.registry()
			if err != nil {
				return err
			}
			p := newPalette(opts.renderer(cmd.OutOrStdout()))
			t := newTable("ENTITY", "SENSOR", "TEMP", "LOW", "HIGH", "STATUS")

			threshold := func(res *chassis.Resource, tt chassis.ThresholdType) string {
				v, err := reg.TemperatureThresholdGet(res, tt)
				if err != nil {
					return p.dim.Render("-")
				}
				return strconv.Itoa(v)
			}

			presentResources(reg, chassis.ResourceTemperature, func(res *chassis.Resource) {
				celsius, err := reg.TemperatureGet(res)
				if err != nil {
					t.add(res.Entity().Name, res.Alias, p.bad.Render("error"), "", "", "")
					return
				}

				status := p.ok.Render("ok")
				if alert, err := reg.TemperatureStatusGet(res); err != nil {
					status = p.dim.Render("n/a")
				} else if alert {
					status = p.bad.Render("alert")
				}
				t.add(res.Entity().Name, res.Alias, strconv.Itoa(celsius)+" °C",
					threshold(res, chassis.ThresholdLow), threshold(res, chassis.ThresholdHigh), status)
			})
			return t.render(cmd.OutOrStdout(), p)
		},
	}
}
