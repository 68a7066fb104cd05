package main

import (
	"encoding/binary"
	"fmt"
	"net"
	"os"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/nerrad567/sdi-core/internal/chassis"
	"github.com/nerrad567/sdi-core/internal/eeprom"
	"github.com/nerrad567/sdi-core/internal/sdierr"
)

// parseFormat accepts the configuration name or its short form, e.g.
// "SDI_EEPROM_FAN_MLNX" or "fan_mlnx".
func parseFormat(s string) (eeprom.Format, error) {
	if f, err := eeprom.ParseFormat(s); err == nil {
		return f, nil
	}
	f, err := eeprom.ParseFormat("SDI_EEPROM_" + strings.ToUpper(s))
	if err != nil {
		return 0, fmt.Errorf("%w: unknown eeprom format %q (want sys_onie, fan_mlnx or psu_mlnx)", sdierr.ErrInvalidArgument, s)
	}
	return f, nil
}

// formatEntity picks the entity type whose tray specific fields are shown
// for an image of format f.
func formatEntity(f eeprom.Format) chassis.EntityType {
	switch f {
	case eeprom.FormatFanMLNX:
		return chassis.EntityFanTray
	case eeprom.FormatPSUMLNX:
		return chassis.EntityPSUTray
	default:
		return chassis.EntitySystemBoard
	}
}

func newEEPROMCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eeprom",
		Short: "Decode or build identity EEPROM images offline",
	}
	cmd.AddCommand(newEEPROMDecodeCmd(opts), newEEPROMEncodeCmd())
	return cmd
}

func newEEPROMDecodeCmd(opts *options) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "decode <format> <file>",
		Short: "Decode an EEPROM image file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseFormat(args[0])
			if err != nil {
				return err
			}
			buf, err := os.ReadFile(args[1])
			if err != nil {
				return sdierr.NewIOError("read", args[1], err)
			}

			info, err := eeprom.Decode(format, buf)
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), info)
			}

			p := newPalette(opts.renderer(cmd.OutOrStdout()))
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s)\n", p.header.Render(args[1]), format, humanize.IBytes(uint64(len(buf))))
			return deviceInfoFields(info, formatEntity(format)).render(cmd.OutOrStdout(), p)
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output as JSON")
	return cmd
}

// onieFields are the string TLVs settable from the command line.
var onieFields = []struct {
	flag  string
	usage string
	typ   uint8
}{
	{"product", "product name", eeprom.TLVProductName},
	{"part-number", "part number", eeprom.TLVPartNumber},
	{"serial", "serial number (PPID)", eeprom.TLVSerialNumber},
	{"mfg-date", "manufacture date, MM/DD/YYYY hh:mm:ss", eeprom.TLVMfgDate},
	{"label-revision", "hardware label revision", eeprom.TLVLabelRevision},
	{"platform", "platform name", eeprom.TLVPlatformName},
	{"onie-version", "ONIE version", eeprom.TLVONIEVersion},
	{"manufacturer", "manufacturer", eeprom.TLVManufacturer},
	{"country", "country code", eeprom.TLVCountryCode},
	{"vendor", "vendor", eeprom.TLVVendor},
	{"diag-version", "diagnostic version", eeprom.TLVDiagVersion},
	{"service-tag", "service tag", eeprom.TLVServiceTag},
}

func newEEPROMEncodeCmd() *cobra.Command {
	var (
		output   string
		baseMAC  string
		macCount uint16
		tlvVer   uint8
		values   = make([]string, len(onieFields))
	)

	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Build an ONIE TlvInfo image",
		Long: `Build an ONIE TlvInfo system EEPROM image from flags.

Only the TLVs given on the command line are written, in the order
product, part number, serial, base MAC, manufacture date, label
revision, platform, ONIE version, MAC count, manufacturer, country,
vendor, diagnostic version, service tag.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var tlvs []eeprom.TLV
			for i, f := range onieFields {
				if values[i] != "" {
					tlvs = append(tlvs, eeprom.TLV{Type: f.typ, Value: []byte(values[i])})
				}
			}
			if baseMAC != "" {
				mac, err := net.ParseMAC(baseMAC)
				if err != nil || len(mac) != eeprom.MACCap {
					return fmt.Errorf("%w: base mac %q", sdierr.ErrInvalidArgument, baseMAC)
				}
				tlvs = append(tlvs, eeprom.TLV{Type: eeprom.TLVBaseMAC, Value: mac})
			}
			if macCount > 0 {
				tlvs = append(tlvs, eeprom.TLV{Type: eeprom.TLVNumMACs, Value: binary.BigEndian.AppendUint16(nil, macCount)})
			}
			if len(tlvs) == 0 {
				return fmt.Errorf("%w: no fields given", sdierr.ErrInvalidArgument)
			}
			sortTLVs(tlvs)

			img := eeprom.EncodeONIE(tlvVer, tlvs)
			if err := os.WriteFile(output, img, 0600); err != nil {
				return sdierr.NewIOError("write", output, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s: %d TLVs, %s\n", output, len(tlvs), humanize.IBytes(uint64(len(img))))
			return nil
		},
	}

	for i, f := range onieFields {
		cmd.Flags().StringVar(&values[i], f.flag, "", f.usage)
	}
	cmd.Flags().StringVar(&baseMAC, "base-mac", "", "base MAC address")
	cmd.Flags().Uint16Var(&macCount, "mac-count", 0, "number of MAC addresses")
	cmd.Flags().Uint8Var(&tlvVer, "tlv-version", 1, "TlvInfo format version")
	cmd.Flags().StringVarP(&output, "output", "o", "", "image file to write")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

// sortTLVs orders records by type code.
func sortTLVs(tlvs []eeprom.TLV) {
	slices.SortStableFunc(tlvs, func(a, b eeprom.TLV) int {
		return int(a.Type) - int(b.Type)
	})
}
