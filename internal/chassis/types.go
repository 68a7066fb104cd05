package chassis

import (
	"fmt"
	"strings"

	"github.com/nerrad567/sdi-core/internal/eeprom"
	"github.com/nerrad567/sdi-core/internal/sdierr"
)

// EntityType classifies a field-replaceable unit.
type EntityType int

const (
	EntitySystemBoard EntityType = iota
	EntityFanTray
	EntityPSUTray
)

var entityTypeNames = [...]string{
	EntitySystemBoard: "SDI_ENTITY_SYSTEM_BOARD",
	EntityFanTray:     "SDI_ENTITY_FAN_TRAY",
	EntityPSUTray:     "SDI_ENTITY_PSU_TRAY",
}

// String returns the configuration name of the type.
func (t EntityType) String() string {
	if t < 0 || int(t) >= len(entityTypeNames) {
		return fmt.Sprintf("EntityType(%d)", int(t))
	}
	return entityTypeNames[t]
}

// Label returns the short lower-case form used on the command line and in
// telemetry topics, e.g. "fan_tray".
func (t EntityType) Label() string {
	return strings.ToLower(strings.TrimPrefix(t.String(), "SDI_ENTITY_"))
}

// ParseEntityType accepts either the configuration name or the label.
func ParseEntityType(s string) (EntityType, error) {
	for i, name := range entityTypeNames {
		t := EntityType(i)
		if s == name || s == t.Label() {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown entity type %q", sdierr.ErrInvalidArgument, s)
}

// ResourceType classifies a capability hosted by an entity.
type ResourceType int

const (
	ResourceTemperature ResourceType = iota
	ResourceFan
	ResourceLED
	ResourceDigitDisplayLED
	ResourceEntityInfo
	ResourceUpgradablePLD
	ResourceMedia
)

var resourceTypeNames = [...]string{
	ResourceTemperature:     "SDI_RESOURCE_TEMPERATURE",
	ResourceFan:             "SDI_RESOURCE_FAN",
	ResourceLED:             "SDI_RESOURCE_LED",
	ResourceDigitDisplayLED: "SDI_RESOURCE_DIGIT_DISPLAY_LED",
	ResourceEntityInfo:      "SDI_RESOURCE_ENTITY_INFO",
	ResourceUpgradablePLD:   "SDI_RESOURCE_UPGRADABLE_PLD",
	ResourceMedia:           "SDI_RESOURCE_MEDIA",
}

// String returns the configuration name of the type.
func (t ResourceType) String() string {
	if t < 0 || int(t) >= len(resourceTypeNames) {
		return fmt.Sprintf("ResourceType(%d)", int(t))
	}
	return resourceTypeNames[t]
}

// Label returns the short lower-case form, e.g. "temperature".
func (t ResourceType) Label() string {
	return strings.ToLower(strings.TrimPrefix(t.String(), "SDI_RESOURCE_"))
}

// ParseResourceType accepts either the configuration name or the label.
func ParseResourceType(s string) (ResourceType, error) {
	for i, name := range resourceTypeNames {
		t := ResourceType(i)
		if s == name || s == t.Label() {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown resource type %q", sdierr.ErrInvalidArgument, s)
}

// PresencePolicy describes how an entity's presence is detected. A fixed
// entity is always present; otherwise the attribute at Path+Name is
// compared with Present.
type PresencePolicy struct {
	Fixed      bool
	Name       string
	Path       string
	Present    string
	NotPresent string
}

// FaultPolicy describes the fault status attribute of an entity.
type FaultPolicy struct {
	Name  string
	Path  string
	OK    string
	Fault string
}

// PowerPolicy describes the output power status and rating of a PSU tray.
type PowerPolicy struct {
	Type       eeprom.PowerType
	StatusName string
	StatusPath string
	Present    string
	NotPresent string
	RatingName string
	RatingPath string
}

// PowerControl describes the reset and power switch attributes. Empty
// fields mark the operation as unsupported.
type PowerControl struct {
	Path     string
	Reset    string
	PowerHdl string
	PowerOn  string
	PowerOff string
}

// Entity is a physical field-replaceable unit and the resources it hosts.
type Entity struct {
	Type     EntityType
	Instance int
	Name     string

	Presence     PresencePolicy
	Fault        *FaultPolicy // nil when fault reporting is unsupported
	Power        *PowerPolicy // set for PSU trays only
	PowerControl PowerControl

	info      *Resource
	resources []*Resource
}

// Info returns the identity resource, or nil.
func (e *Entity) Info() *Resource {
	return e.info
}

// Resources returns the resources in registration order.
func (e *Entity) Resources() []*Resource {
	out := make([]*Resource, len(e.resources))
	copy(out, e.resources)
	return out
}

// ResourceCount returns the number of resources of type t.
func (e *Entity) ResourceCount(t ResourceType) int {
	n := 0
	for _, r := range e.resources {
		if r.Type == t {
			n++
		}
	}
	return n
}

// FindResource returns the first resource matching both type and alias.
func (e *Entity) FindResource(t ResourceType, alias string) *Resource {
	for _, r := range e.resources {
		if r.Type == t && r.Alias == alias {
			return r
		}
	}
	return nil
}

// ResourceByAlias returns the first resource with the given alias
// regardless of type.
func (e *Entity) ResourceByAlias(alias string) *Resource {
	for _, r := range e.resources {
		if r.Alias == alias {
			return r
		}
	}
	return nil
}

// ForEachResource calls fn for every resource in registration order.
func (e *Entity) ForEachResource(fn func(*Resource)) {
	for _, r := range e.resources {
		fn(r)
	}
}

func (e *Entity) String() string {
	return fmt.Sprintf("%s(%s@%d)", e.Name, e.Type.Label(), e.Instance)
}

// add appends r and reports whether its alias was unused in the entity.
func (e *Entity) add(r *Resource) bool {
	unique := true
	for _, existing := range e.resources {
		if existing.Alias == r.Alias {
			unique = false
			break
		}
	}
	r.entity = e
	e.resources = append(e.resources, r)
	return unique
}

// Resource is a typed capability hosted by exactly one entity.
type Resource struct {
	Type      ResourceType
	Alias     string
	Reference string
	Settings  Settings

	entity *Entity
}

// Entity returns the owning entity.
func (r *Resource) Entity() *Entity {
	return r.entity
}

func (r *Resource) String() string {
	return fmt.Sprintf("%s/%s", r.Type.Label(), r.Alias)
}

// ThresholdType selects a temperature limit.
type ThresholdType int

const (
	ThresholdLow ThresholdType = iota
	ThresholdHigh
)

// ResetType selects an entity reset.
type ResetType int

const (
	ResetWarm ResetType = iota
	ResetCold
)
