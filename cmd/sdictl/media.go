package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nerrad567/sdi-core/internal/chassis"
	"github.com/nerrad567/sdi-core/internal/media"
	"github.com/nerrad567/sdi-core/internal/sdierr"
)

var monitorFlagNames = []struct {
	flag media.MonitorFlags
	name string
}{
	{media.TempHighAlarm, "temp-high-alarm"},
	{media.TempLowAlarm, "temp-low-alarm"},
	{media.TempHighWarning, "temp-high-warning"},
	{media.TempLowWarning, "temp-low-warning"},
	{media.VoltHighAlarm, "volt-high-alarm"},
	{media.VoltLowAlarm, "volt-low-alarm"},
	{media.VoltHighWarning, "volt-high-warning"},
	{media.VoltLowWarning, "volt-low-warning"},
}

var channelFlagNames = []struct {
	flag media.ChannelMonitorFlags
	name string
}{
	{media.RxPowerHighAlarm, "rx-high-alarm"},
	{media.RxPowerLowAlarm, "rx-low-alarm"},
	{media.RxPowerHighWarning, "rx-high-warning"},
	{media.RxPowerLowWarning, "rx-low-warning"},
	{media.TxBiasHighAlarm, "bias-high-alarm"},
	{media.TxBiasLowAlarm, "bias-low-alarm"},
	{media.TxBiasHighWarning, "bias-high-warning"},
	{media.TxBiasLowWarning, "bias-low-warning"},
	{media.TxPowerHighAlarm, "tx-high-alarm"},
	{media.TxPowerLowAlarm, "tx-low-alarm"},
	{media.TxPowerHighWarning, "tx-high-warning"},
	{media.TxPowerLowWarning, "tx-low-warning"},
}

const (
	allMonitorFlags = media.TempHighAlarm | media.TempLowAlarm | media.TempHighWarning | media.TempLowWarning |
		media.VoltHighAlarm | media.VoltLowAlarm | media.VoltHighWarning | media.VoltLowWarning
	allChannelFlags media.ChannelMonitorFlags = 1<<12 - 1
)

func moduleAlarms(raised media.MonitorFlags) []string {
	var out []string
	for _, f := range monitorFlagNames {
		if raised&f.flag != 0 {
			out = append(out, f.name)
		}
	}
	return out
}

func channelAlarms(raised media.ChannelMonitorFlags) []string {
	var out []string
	for _, f := range channelFlagNames {
		if raised&f.flag != 0 {
			out = append(out, f.name)
		}
	}
	return out
}

func newMediaCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "media <entity> <alias> [status|vendor|monitor]",
		Short: "Inspect a pluggable transceiver",
		Long: `Inspect the transceiver in a cage.

  status   presence, type, features and per-channel state (default)
  vendor   vendor identification and compliance codes
  monitor  digital diagnostics with raised alarms and warnings

Everything past presence reads module memory and needs a register
transport, e.g. --media-dir with captured images.`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			view := "status"
			if len(args) == 3 {
				view = args[2]
			}
			show, ok := mediaViews[view]
			if !ok {
				return fmt.Errorf("%w: unknown media view %q", sdierr.ErrInvalidArgument, view)
			}

			reg, err := opts.registry()
			if err != nil {
				return err
			}
			res, err := findResource(reg, args[0], args[1])
			if err != nil {
				return err
			}
			if res.Type != chassis.ResourceMedia {
				return fmt.Errorf("%w: %s is not a media resource", sdierr.ErrInvalidArgument, res)
			}

			out := cmd.OutOrStdout()
			p := newPalette(opts.renderer(out))
			present, err := reg.MediaPresenceGet(res)
			if err != nil {
				return fmt.Errorf("media presence: %w", err)
			}
			if !present {
				fmt.Fprintf(out, "%s/%s: %s\n", args[0], args[1], p.warn.Render("empty"))
				return nil
			}

			mod, err := reg.MediaModule(res)
			if err != nil {
				return err
			}
			return show(out, p, mod)
		},
	}
}

var mediaViews = map[string]func(io.Writer, palette, *media.Module) error{
	"status":  mediaStatus,
	"vendor":  mediaVendor,
	"monitor": mediaMonitor,
}

func mediaStatus(w io.Writer, p palette, mod *media.Module) error {
	features, err := mod.FeatureSupport()
	if err != nil {
		return fmt.Errorf("feature support: %w", err)
	}
	var supported []string
	for _, c := range []struct {
		name string
		ok   bool
	}{
		{"paging", features.Paging},
		{"tx-control", features.TxControl},
		{"rate-select", features.RateSelect},
		{"alarm", features.Alarm},
		{"diag-monitor", features.DiagMonitor},
	} {
		if c.ok {
			supported = append(supported, c.name)
		}
	}

	f := &fields{}
	f.add("Present", p.ok.Render("yes"))
	f.add("Identifier", fmt.Sprintf("0x%02x (%s)", mod.ID(), mod.Family()))
	f.add("Speed", mod.Speed().String())
	f.add("Channels", strconv.Itoa(mod.Channels()))
	f.add("Features", strings.Join(supported, ", "))
	if err := f.render(w, p); err != nil {
		return err
	}
	fmt.Fprintln(w)

	t := newTable("CHANNEL", "TX", "TX-FAULT", "RX-LOS", "CDR")
	for ch := range mod.Channels() {
		tx := p.bad.Render("error")
		if enabled, err := mod.TxControlStatus(ch); err == nil {
			tx = p.warn.Render("disabled")
			if enabled {
				tx = p.ok.Render("enabled")
			}
		}

		txFault, rxLOS := p.bad.Render("error"), p.bad.Render("error")
		if st, err := mod.ChannelStatus(ch, media.StatusTxFault|media.StatusRxLOS); err == nil {
			txFault, rxLOS = flagCell(p, st&media.StatusTxFault != 0), flagCell(p, st&media.StatusRxLOS != 0)
		}

		cdr := p.dim.Render("-")
		if on, err := mod.CDRStatus(ch); err == nil {
			cdr = "off"
			if on {
				cdr = "on"
			}
		}
		t.add(strconv.Itoa(ch), tx, txFault, rxLOS, cdr)
	}
	return t.render(w, p)
}

func flagCell(p palette, raised bool) string {
	if raised {
		return p.bad.Render("yes")
	}
	return p.ok.Render("no")
}

func mediaVendor(w io.Writer, p palette, mod *media.Module) error {
	f := &fields{}
	for _, v := range []struct {
		label string
		kind  media.VendorInfo
	}{
		{"Vendor", media.VendorName},
		{"OUI", media.VendorOUI},
		{"Part number", media.VendorPartNumber},
		{"Revision", media.VendorRevision},
		{"Serial", media.VendorSerial},
		{"Date code", media.VendorDate},
	} {
		s, err := mod.VendorInfo(v.kind)
		if err != nil {
			return fmt.Errorf("vendor %s: %w", v.kind, err)
		}
		f.add(v.label, s)
	}

	code, err := mod.TransceiverCode()
	if err != nil {
		return fmt.Errorf("transceiver code: %w", err)
	}
	f.add("Compliance", fmt.Sprintf("% x", code[:]))

	for _, param := range []media.Param{media.ParamConnector, media.ParamEncoding, media.ParamNominalBitrate, media.ParamWavelength} {
		v, err := mod.Parameter(param)
		if errors.Is(err, sdierr.ErrNotSupported) {
			continue
		}
		if err != nil {
			return fmt.Errorf("parameter %s: %w", param, err)
		}
		f.add(strings.ReplaceAll(param.String(), "_", " "), strconv.FormatUint(uint64(v), 10))
	}
	return f.render(w, p)
}

func mediaMonitor(w io.Writer, p palette, mod *media.Module) error {
	f := &fields{}
	if v, err := mod.ModuleMonitor(media.MonitorTemperature); err == nil {
		f.add("Temperature", fmt.Sprintf("%.2f °C", v))
	}
	if v, err := mod.ModuleMonitor(media.MonitorVoltage); err == nil {
		f.add("Voltage", fmt.Sprintf("%.4f V", v))
	}
	if raised, err := mod.ModuleMonitorStatus(allMonitorFlags); err == nil {
		alarms := p.ok.Render("none")
		if names := moduleAlarms(raised); len(names) > 0 {
			alarms = p.bad.Render(strings.Join(names, ", "))
		}
		f.add("Alarms", alarms)
	}
	if err := f.render(w, p); err != nil {
		return err
	}
	fmt.Fprintln(w)

	reading := func(ch int, mon media.ChannelMonitor, format string) string {
		v, err := mod.ChannelMonitor(ch, mon)
		if err != nil {
			return p.dim.Render("-")
		}
		return fmt.Sprintf(format, v)
	}

	t := newTable("CHANNEL", "RX mW", "BIAS mA", "TX mW", "ALARMS")
	for ch := range mod.Channels() {
		alarms := p.dim.Render("-")
		if raised, err := mod.ChannelMonitorStatus(ch, allChannelFlags); err == nil {
			alarms = p.ok.Render("none")
			if names := channelAlarms(raised); len(names) > 0 {
				alarms = p.bad.Render(strings.Join(names, ", "))
			}
		}
		t.add(strconv.Itoa(ch),
			reading(ch, media.MonitorRxPower, "%.4f"),
			reading(ch, media.MonitorTxBias, "%.3f"),
			reading(ch, media.MonitorTxPower, "%.4f"),
			alarms)
	}
	return t.render(w, p)
}
