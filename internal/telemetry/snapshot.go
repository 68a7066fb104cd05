package telemetry

import "time"

// Snapshot is the state of the whole chassis at one instant.
type Snapshot struct {
	ID        string        `json:"id" cbor:"id"`
	Site      string        `json:"site" cbor:"site"`
	Timestamp time.Time     `json:"timestamp" cbor:"timestamp"`
	Entities  []EntityState `json:"entities" cbor:"entities"`
}

// EntityState is the state of one field-replaceable unit. Resources are
// only read from present entities.
type EntityState struct {
	Name     string `json:"name" cbor:"name"`
	Type     string `json:"type" cbor:"type"`
	Instance int    `json:"instance" cbor:"instance"`
	Present  bool   `json:"present" cbor:"present"`

	// Fault is nil when the entity has no fault policy.
	Fault *bool `json:"fault,omitempty" cbor:"fault,omitempty"`

	// PowerOK is set for PSU trays only.
	PowerOK *bool `json:"power_ok,omitempty" cbor:"power_ok,omitempty"`

	Temperatures []TemperatureState `json:"temperatures,omitempty" cbor:"temperatures,omitempty"`
	Fans         []FanState         `json:"fans,omitempty" cbor:"fans,omitempty"`
	Media        []MediaState       `json:"media,omitempty" cbor:"media,omitempty"`

	// Errors lists reads that failed during collection.
	Errors []string `json:"errors,omitempty" cbor:"errors,omitempty"`
}

// TemperatureState is one thermal sensor reading.
type TemperatureState struct {
	Alias   string `json:"alias" cbor:"alias"`
	Celsius int    `json:"celsius" cbor:"celsius"`
	Alert   bool   `json:"alert" cbor:"alert"`
}

// FanState is one fan reading.
type FanState struct {
	Alias string `json:"alias" cbor:"alias"`
	RPM   uint64 `json:"rpm" cbor:"rpm"`
	Fault bool   `json:"fault" cbor:"fault"`
}

// MediaState is one transceiver cage. Module fields are empty when the cage
// is empty or no register transport is attached.
type MediaState struct {
	Alias      string         `json:"alias" cbor:"alias"`
	Present    bool           `json:"present" cbor:"present"`
	Vendor     string         `json:"vendor,omitempty" cbor:"vendor,omitempty"`
	PartNumber string         `json:"part_number,omitempty" cbor:"part_number,omitempty"`
	Serial     string         `json:"serial,omitempty" cbor:"serial,omitempty"`
	Speed      string         `json:"speed,omitempty" cbor:"speed,omitempty"`
	Celsius    float64        `json:"celsius,omitempty" cbor:"celsius,omitempty"`
	Volts      float64        `json:"volts,omitempty" cbor:"volts,omitempty"`
	Channels   []ChannelState `json:"channels,omitempty" cbor:"channels,omitempty"`
}

// ChannelState is the optical diagnostics of one module channel.
type ChannelState struct {
	Channel   int      `json:"channel" cbor:"channel"`
	RxPowerMW float64  `json:"rx_power_mw" cbor:"rx_power_mw"`
	TxBiasMA  float64  `json:"tx_bias_ma" cbor:"tx_bias_ma"`
	TxPowerMW *float64 `json:"tx_power_mw,omitempty" cbor:"tx_power_mw,omitempty"`
	TxEnabled bool     `json:"tx_enabled" cbor:"tx_enabled"`
}

// Entity returns the state recorded for the named entity, or nil.
func (s *Snapshot) Entity(name string) *EntityState {
	for i := range s.Entities {
		if s.Entities[i].Name == name {
			return &s.Entities[i]
		}
	}
	return nil
}
