package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/nerrad567/sdi-core/internal/chassis"
	"github.com/nerrad567/sdi-core/internal/eeprom"
	"github.com/nerrad567/sdi-core/internal/sdierr"
)

// entityStatus is one line of the entities listing.
type entityStatus struct {
	Name      string `json:"name"`
	Type      string `json:"type"`
	Instance  int    `json:"instance"`
	Present   bool   `json:"present"`
	Fault     *bool  `json:"fault,omitempty"`
	Resources int    `json:"resources"`
	Error     string `json:"error,omitempty"`
}

func entityStatuses(reg *chassis.Registry) []entityStatus {
	var out []entityStatus
	reg.ForEach(func(e *chassis.Entity) {
		s := entityStatus{
			Name:      e.Name,
			Type:      e.Type.Label(),
			Instance:  e.Instance,
			Resources: len(e.Resources()),
		}
		present, err := reg.PresenceGet(e)
		if err != nil {
			s.Error = err.Error()
			out = append(out, s)
			return
		}
		s.Present = present
		if present {
			// Entities without a fault policy leave Fault unset.
			if fault, err := reg.FaultStatusGet(e); !errors.Is(err, sdierr.ErrPermissionDenied) {
				s.Fault = &fault
			}
		}
		out = append(out, s)
	})
	return out
}

func newEntitiesCmd(opts *options) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "entities",
		Short: "List entities with presence and fault state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := opts.registry()
			if err != nil {
				return err
			}
			statuses := entityStatuses(reg)
			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), statuses)
			}

			p := newPalette(opts.renderer(cmd.OutOrStdout()))
			t := newTable("NAME", "TYPE", "INSTANCE", "PRESENT", "FAULT", "RESOURCES")
			for _, s := range statuses {
				present, fault := p.ok.Render("yes"), p.ok.Render("ok")
				switch {
				case s.Error != "":
					present, fault = p.bad.Render("error"), p.dim.Render("-")
				case !s.Present:
					present, fault = p.warn.Render("no"), p.dim.Render("-")
				case s.Fault == nil:
					fault = p.dim.Render("n/a")
				case *s.Fault:
					fault = p.bad.Render("fault")
				}
				t.add(s.Name, s.Type, strconv.Itoa(s.Instance), present, fault, strconv.Itoa(s.Resources))
			}
			return t.render(cmd.OutOrStdout(), p)
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output as JSON")
	return cmd
}

func newInfoCmd(opts *options) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "info <type> <instance>",
		Short: "Decode the identity EEPROM of an entity",
		Long: `Decode the identity EEPROM of an entity.

Type is system_board, fan_tray or psu_tray (or the SDI_ENTITY_* name).
Fan and PSU trays inherit vendor, platform and service tag from the
system board and report their fan count and slowest maximum speed.`,
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
			if e.Info() == nil {
				return fmt.Errorf("%w: %s has no identity eeprom", sdierr.ErrNotSupported, e.Name)
			}

			info, err := reg.EntityInfoRead(e.Info())
			if err != nil {
				return fmt.Errorf("reading %s identity: %w", e.Name, err)
			}
			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), info)
			}
			return deviceInfoFields(info, e.Type).render(cmd.OutOrStdout(), newPalette(opts.renderer(cmd.OutOrStdout())))
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output as JSON")
	return cmd
}

// deviceInfoFields lays out a decoded identity. Air flow and power lines
// are shown for the matching tray type only.
func deviceInfoFields(info *eeprom.DeviceInfo, t chassis.EntityType) *fields {
	f := &fields{}
	f.add("Product", info.ProductName)
	f.add("Part number", info.PartNumber)
	f.add("PPID", info.PPID)
	f.add("HW revision", info.HWRevision)
	f.add("Vendor", info.VendorName)
	f.add("Platform", info.PlatformName)
	f.add("Service tag", info.ServiceTag)
	if len(info.BaseMAC) > 0 {
		f.add("Base MAC", info.BaseMAC.String())
	}
	if info.MACCount > 0 {
		f.add("MAC count", humanize.Comma(int64(info.MACCount)))
	}
	f.add("Mfg date", info.MfgDate)
	f.add("ONIE version", info.ONIEVersion)
	f.add("Country", info.CountryCode)
	if info.CRC32 != 0 {
		f.add("CRC-32", fmt.Sprintf("0x%08x", info.CRC32))
	}

	if info.NumFans > 0 {
		f.add("Fans", strconv.FormatUint(uint64(info.NumFans), 10))
		f.add("Max speed", humanize.Comma(int64(info.MaxSpeed))+" RPM")
	}
	switch t {
	case chassis.EntityFanTray:
		f.add("Air flow", info.AirFlow.String())
	case chassis.EntityPSUTray:
		f.add("Power type", info.PowerType.String())
		if info.PowerRating > 0 {
			f.add("Rating", humanize.Comma(int64(info.PowerRating))+" W")
		}
	}
	return f
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
