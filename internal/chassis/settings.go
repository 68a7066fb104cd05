package chassis

import (
	"fmt"
	"strconv"

	"github.com/nerrad567/sdi-core/internal/cfgtree"
	"github.com/nerrad567/sdi-core/internal/eeprom"
	"github.com/nerrad567/sdi-core/internal/sdierr"
)

// Settings is the type-specific configuration of a resource. The set of
// implementations is closed; each resource type has exactly one.
type Settings interface {
	resourceType() ResourceType
}

// TemperatureSettings locates a thermal sensor reporting millidegrees.
type TemperatureSettings struct {
	Name string
	Path string

	// Thresholds is false when the settings carry no threshold block.
	Thresholds bool
	Low        int
	High       int
}

// FanSpeed names the speed attributes of a fan.
type FanSpeed struct {
	Set    string
	Get    string
	MaxGet string
	MaxPWM uint64
	MaxRPM uint64
}

// FanStatus names the fault status attribute of a fan.
type FanStatus struct {
	Get   string
	Fault string
}

// FanSettings locates a fan and its speed controls.
type FanSettings struct {
	Name   string
	Path   string
	Speed  FanSpeed
	Status FanStatus
}

// LEDSettings locates an LED and the values that switch it.
type LEDSettings struct {
	Name string
	Path string
	On   string
	Off  string
}

// DigitDisplayLEDSettings locates a seven-segment display.
type DigitDisplayLEDSettings struct {
	Name string
	Path string
	On   string
	Off  string
}

// EntityInfoSettings locates an identity EEPROM and its layout.
type EntityInfoSettings struct {
	Name   string
	Path   string
	Format eeprom.Format
}

// UpgradablePLDSettings locates a programmable logic device.
type UpgradablePLDSettings struct {
	Name    string
	Path    string
	Version string
}

// MediaSettings locates a transceiver cage.
type MediaSettings struct {
	Name       string
	Path       string
	Status     string
	NotPresent string
	Module     uint8
}

func (*TemperatureSettings) resourceType() ResourceType     { return ResourceTemperature }
func (*FanSettings) resourceType() ResourceType             { return ResourceFan }
func (*LEDSettings) resourceType() ResourceType             { return ResourceLED }
func (*DigitDisplayLEDSettings) resourceType() ResourceType { return ResourceDigitDisplayLED }
func (*EntityInfoSettings) resourceType() ResourceType      { return ResourceEntityInfo }
func (*UpgradablePLDSettings) resourceType() ResourceType   { return ResourceUpgradablePLD }
func (*MediaSettings) resourceType() ResourceType           { return ResourceMedia }

// buildSettings decodes the settings node of a resource of type t.
func buildSettings(t ResourceType, n *cfgtree.Node) Settings {
	name := required(n, "name")
	path := required(n, "path")

	switch t {
	case ResourceTemperature:
		s := &TemperatureSettings{Name: name, Path: path}
		if th := n.FirstChild(); th != nil {
			s.Thresholds = true
			s.Low = optionalInt(th, "low")
			s.High = optionalInt(th, "high")
		}
		return s

	case ResourceFan:
		s := &FanSettings{Name: name, Path: path}
		if sp := n.ChildByElement("speed"); sp != nil {
			s.Speed = FanSpeed{
				Set:    optional(sp, "set"),
				Get:    optional(sp, "get"),
				MaxGet: optional(sp, "max_get"),
				MaxPWM: optionalUint(sp, "max_pwm"),
				MaxRPM: optionalUint(sp, "max_rpm"),
			}
		}
		if st := n.ChildByElement("status"); st != nil {
			s.Status = FanStatus{Get: optional(st, "get"), Fault: optional(st, "fault")}
		}
		return s

	case ResourceLED, ResourceDigitDisplayLED:
		state := n.FirstChild()
		if state == nil {
			sdierr.Corrupted(describe(n), "", "led settings have no state block")
		}
		on, off := required(state, "on"), required(state, "off")
		if t == ResourceDigitDisplayLED {
			return &DigitDisplayLEDSettings{Name: name, Path: path, On: on, Off: off}
		}
		return &LEDSettings{Name: name, Path: path, On: on, Off: off}

	case ResourceEntityInfo:
		f, err := eeprom.ParseFormat(required(n, "type"))
		if err != nil {
			sdierr.Corrupted(describe(n), "type", err.Error())
		}
		return &EntityInfoSettings{Name: name, Path: path, Format: f}

	case ResourceUpgradablePLD:
		return &UpgradablePLDSettings{Name: name, Path: path, Version: optional(n, "version")}

	case ResourceMedia:
		module := requiredInt(n, "module")
		if module < 0 || module > 255 {
			sdierr.Corrupted(describe(n), "module", fmt.Sprintf("module index %d out of range", module))
		}
		return &MediaSettings{
			Name:       name,
			Path:       path,
			Status:     required(n, "status"),
			NotPresent: required(n, "not_present"),
			Module:     uint8(module),
		}
	}

	sdierr.Corrupted(describe(n), "", fmt.Sprintf("no settings decoder for %s", t))
	return nil
}

// describe names a node for configuration error messages.
func describe(n *cfgtree.Node) string {
	if name, ok := n.Attr("name"); ok {
		return fmt.Sprintf("%s[%s]", n.Name, name)
	}
	return n.Name
}

func required(n *cfgtree.Node, attr string) string {
	v, ok := n.Attr(attr)
	if !ok {
		sdierr.Corrupted(describe(n), attr, "required attribute missing")
	}
	return v
}

func optional(n *cfgtree.Node, attr string) string {
	v, _ := n.Attr(attr)
	return v
}

func requiredInt(n *cfgtree.Node, attr string) int {
	v, err := strconv.Atoi(required(n, attr))
	if err != nil {
		sdierr.Corrupted(describe(n), attr, "not an integer")
	}
	return v
}

func optionalInt(n *cfgtree.Node, attr string) int {
	s, ok := n.Attr(attr)
	if !ok {
		return 0
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		sdierr.Corrupted(describe(n), attr, "not an integer")
	}
	return v
}

func optionalUint(n *cfgtree.Node, attr string) uint64 {
	s, ok := n.Attr(attr)
	if !ok {
		return 0
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		sdierr.Corrupted(describe(n), attr, "not an unsigned integer")
	}
	return v
}
