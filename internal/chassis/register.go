package chassis

import (
	"fmt"

	"github.com/nerrad567/sdi-core/internal/cfgtree"
	"github.com/nerrad567/sdi-core/internal/eeprom"
	"github.com/nerrad567/sdi-core/internal/sdierr"
)

const presenceFixed = "fixed"

func (r *Registry) registerAll(entities, settings *cfgtree.Node) {
	if entities == nil {
		sdierr.Corrupted("entity list", "", "document has no root")
	}
	if settings == nil {
		sdierr.Corrupted("device settings", "", "document has no root")
	}

	for _, node := range entities.Children {
		r.registerEntity(node, settings)
	}
}

func (r *Registry) registerEntity(node, settingsRoot *cfgtree.Node) {
	where := describe(node)

	instance := requiredInt(node, "instance")
	if instance <= 0 {
		sdierr.Corrupted(where, "instance", fmt.Sprintf("instance %d is not positive", instance))
	}

	alias, ok := node.Attr("alias")
	if !ok {
		alias = fmt.Sprintf("%s-%d", node.Name, instance)
	}

	typ, err := ParseEntityType(required(node, "type"))
	if err != nil {
		sdierr.Corrupted(where, "type", err.Error())
	}
	if r.Find(typ, instance) != nil {
		sdierr.Corrupted(where, "instance", fmt.Sprintf("duplicate %s instance %d", typ, instance))
	}

	presence := required(node, "presence")

	settings := settingsRoot.Child(alias)
	if settings == nil {
		sdierr.Corrupted(where, "alias", fmt.Sprintf("no settings block named %q", alias))
	}

	e := &Entity{Type: typ, Instance: instance, Name: alias}
	r.logger.Debug("registering entity", "entity", alias, "type", typ.String(), "instance", instance)

	if presence == presenceFixed {
		e.Presence = PresencePolicy{Fixed: true}
	} else {
		p := probe(settings, presence)
		e.Presence = PresencePolicy{
			Name:       required(p, "name"),
			Path:       required(p, "path"),
			Present:    required(p, "present"),
			NotPresent: required(p, "not_present"),
		}
	}

	if fault, ok := node.Attr("fault"); ok {
		p := probe(settings, fault)
		e.Fault = &FaultPolicy{
			Name:  required(p, "name"),
			Path:  required(p, "path"),
			OK:    required(p, "ok"),
			Fault: required(p, "fault"),
		}
	}

	if typ == EntityPSUTray {
		e.Power = powerPolicy(settings)
	}

	if ctl, ok := node.Attr("power_ctl"); ok {
		p := probe(settings, ctl)
		e.PowerControl = PowerControl{
			Path:     required(p, "path"),
			Reset:    optional(p, "reset"),
			PowerHdl: optional(p, "powerhdl"),
			PowerOn:  optional(p, "power_on"),
			PowerOff: optional(p, "power_off"),
		}
		if e.PowerControl.PowerHdl != "" && (e.PowerControl.PowerOn == "" || e.PowerControl.PowerOff == "") {
			sdierr.Corrupted(describe(p), "powerhdl", "power switch needs both power_on and power_off values")
		}
	}

	for _, child := range node.Children {
		r.registerResource(e, child, settings)
	}

	r.entities = append(r.entities, e)
}

// probe returns the settings child an entity attribute refers to.
func probe(settings *cfgtree.Node, name string) *cfgtree.Node {
	p := settings.Child(name)
	if p == nil {
		sdierr.Corrupted(describe(settings), "", fmt.Sprintf("no probe block named %q", name))
	}
	return p
}

func powerPolicy(settings *cfgtree.Node) *PowerPolicy {
	pp := &PowerPolicy{}

	switch t := required(settings, "type"); t {
	case "AC":
		pp.Type = eeprom.PowerTypeAC
	case "DC":
		pp.Type = eeprom.PowerTypeDC
	default:
		sdierr.Corrupted(describe(settings), "type", fmt.Sprintf("power type %q is neither AC nor DC", t))
	}

	status := settings.ChildByElement("power")
	if status == nil {
		sdierr.Corrupted(describe(settings), "", "psu settings have no power block")
	}
	pp.StatusName = required(status, "name")
	pp.StatusPath = required(status, "path")
	pp.Present = required(status, "present")
	pp.NotPresent = required(status, "not_present")

	rating := settings.ChildByElement("rating")
	if rating == nil {
		sdierr.Corrupted(describe(settings), "", "psu settings have no rating block")
	}
	pp.RatingName = required(rating, "name")
	pp.RatingPath = required(rating, "path")

	return pp
}

func (r *Registry) registerResource(e *Entity, node, settings *cfgtree.Node) {
	reference := required(node, "reference")
	alias := required(node, "name")

	typ, err := ParseResourceType(required(node, "type"))
	if err != nil {
		sdierr.Corrupted(describe(node), "type", err.Error())
	}

	st := settings.Child(reference)
	if st == nil {
		sdierr.Corrupted(describe(node), "reference", fmt.Sprintf("no settings block named %q", reference))
	}

	res := &Resource{
		Type:      typ,
		Alias:     alias,
		Reference: reference,
		Settings:  buildSettings(typ, st),
	}

	if typ == ResourceEntityInfo {
		if e.info != nil {
			sdierr.Corrupted(describe(node), "type", fmt.Sprintf("entity %s already has an identity resource", e.Name))
		}
		e.info = res
	}

	if !e.add(res) {
		r.logger.Warn("duplicate resource alias, lookups return the first",
			"entity", e.Name, "alias", alias, "type", typ.String())
	}
}
