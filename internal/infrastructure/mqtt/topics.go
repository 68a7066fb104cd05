package mqtt

import "strings"

// DefaultTopicPrefix is the root of every topic when no prefix is configured.
const DefaultTopicPrefix = "sdi"

// Topics builds the chassis topic hierarchy under a common prefix.
//
//	<prefix>/system/status                     daemon online/offline (retained, LWT)
//	<prefix>/chassis/<entity>                  entity snapshot (retained)
//	<prefix>/chassis/<entity>/<resource>       resource snapshot (retained)
//	<prefix>/command/<entity>/<resource>       control requests
//
// The zero value uses DefaultTopicPrefix.
type Topics struct {
	Prefix string
}

// NewTopics returns a topic builder rooted at prefix. Surrounding slashes
// are ignored.
func NewTopics(prefix string) Topics {
	return Topics{Prefix: strings.Trim(prefix, "/")}
}

func (t Topics) join(parts ...string) string {
	prefix := t.Prefix
	if prefix == "" {
		prefix = DefaultTopicPrefix
	}
	return prefix + "/" + strings.Join(parts, "/")
}

// SystemStatus returns the daemon status topic.
//
// Example: sdi/system/status
func (t Topics) SystemStatus() string {
	return t.join("system", "status")
}

// Entity returns the snapshot topic of an entity.
//
// Example: sdi/chassis/PSU1
func (t Topics) Entity(entity string) string {
	return t.join("chassis", segment(entity))
}

// Resource returns the snapshot topic of a resource.
//
// Example: sdi/chassis/fan_tray-1/FAN1A
func (t Topics) Resource(entity, resource string) string {
	return t.join("chassis", segment(entity), segment(resource))
}

// Command returns the control topic of a resource.
//
// Example: sdi/command/SYSTEM-BOARD/STATUS
func (t Topics) Command(entity, resource string) string {
	return t.join("command", segment(entity), segment(resource))
}

// AllCommands returns a pattern matching every control topic.
//
// Pattern: sdi/command/+/+
func (t Topics) AllCommands() string {
	return t.join("command", "+", "+")
}

// AllChassis returns a pattern matching every snapshot topic.
//
// Pattern: sdi/chassis/#
func (t Topics) AllChassis() string {
	return t.join("chassis", "#")
}

// ParseCommand extracts entity and resource from a control topic.
func (t Topics) ParseCommand(topic string) (entity, resource string, ok bool) {
	rest, found := strings.CutPrefix(topic, t.join("command")+"/")
	if !found {
		return "", "", false
	}
	entity, resource, ok = strings.Cut(rest, "/")
	if !ok || entity == "" || resource == "" || strings.Contains(resource, "/") {
		return "", "", false
	}
	return entity, resource, true
}

// segment makes a configured alias safe to use as one topic level.
// Aliases may contain spaces and, rarely, the MQTT separator or wildcards.
func segment(s string) string {
	return strings.NewReplacer("/", "_", "+", "_", "#", "_", " ", "_").Replace(s)
}
