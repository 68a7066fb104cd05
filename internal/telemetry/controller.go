package telemetry

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/nerrad567/sdi-core/internal/chassis"
	"github.com/nerrad567/sdi-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/sdi-core/internal/sdierr"
)

// Command actions.
const (
	ActionLEDOn         = "led_on"
	ActionLEDOff        = "led_off"
	ActionFanSpeed      = "fan_speed"
	ActionThresholdLow  = "threshold_low"
	ActionThresholdHigh = "threshold_high"
	ActionTxEnable      = "tx_enable"
	ActionTxDisable     = "tx_disable"
)

// Command is the payload of a command topic.
type Command struct {
	Action string `json:"action"`

	// Value is the fan speed in RPM or the threshold in degrees Celsius.
	Value *int64 `json:"value,omitempty"`

	// Channel selects the transceiver channel for tx actions.
	Channel int `json:"channel,omitempty"`
}

// Controller applies commands to chassis resources.
//
// Thread Safety:
//   - Commands are executed one at a time.
type Controller struct {
	reg    *chassis.Registry
	topics mqtt.Topics
	logger Logger

	mu sync.Mutex
}

// NewController returns a controller for commands under topics.
func NewController(reg *chassis.Registry, topics mqtt.Topics) *Controller {
	return &Controller{reg: reg, topics: topics, logger: noopLogger{}}
}

// SetLogger sets the logger.
func (c *Controller) SetLogger(logger Logger) {
	if logger == nil {
		logger = noopLogger{}
	}
	c.logger = logger
}

// HandleMessage decodes a command message and executes it. Its signature
// matches mqtt.MessageHandler.
func (c *Controller) HandleMessage(topic string, payload []byte) error {
	entity, resource, ok := c.topics.ParseCommand(topic)
	if !ok {
		return fmt.Errorf("%w: topic %q", ErrInvalidCommand, topic)
	}

	var cmd Command
	if err := json.Unmarshal(payload, &cmd); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCommand, err)
	}
	return c.Execute(entity, resource, cmd)
}

// Execute applies cmd to the resource with the given alias on the named
// entity.
func (c *Controller) Execute(entity, resource string, cmd Command) error {
	e := c.reg.Lookup(entity)
	if e == nil {
		return fmt.Errorf("%w: entity %q", ErrUnknownTarget, entity)
	}
	res := e.ResourceByAlias(resource)
	if res == nil {
		return fmt.Errorf("%w: resource %q on %s", ErrUnknownTarget, resource, entity)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.apply(res, cmd); err != nil {
		return fmt.Errorf("%s on %s/%s: %w", cmd.Action, entity, resource, err)
	}
	c.logger.Info("command executed", "entity", entity, "resource", resource, "action", cmd.Action)
	return nil
}

func (c *Controller) apply(res *chassis.Resource, cmd Command) error {
	switch cmd.Action {
	case ActionLEDOn:
		return c.reg.LEDOn(res)
	case ActionLEDOff:
		return c.reg.LEDOff(res)
	case ActionFanSpeed:
		v, err := cmd.value()
		if err != nil {
			return err
		}
		if v < 0 {
			return fmt.Errorf("%w: negative fan speed %d", sdierr.ErrInvalidArgument, v)
		}
		return c.reg.FanSpeedSet(res, uint64(v))
	case ActionThresholdLow, ActionThresholdHigh:
		v, err := cmd.value()
		if err != nil {
			return err
		}
		t := chassis.ThresholdLow
		if cmd.Action == ActionThresholdHigh {
			t = chassis.ThresholdHigh
		}
		return c.reg.TemperatureThresholdSet(res, t, int(v))
	case ActionTxEnable:
		return c.reg.MediaTxControl(res, cmd.Channel, true)
	case ActionTxDisable:
		return c.reg.MediaTxControl(res, cmd.Channel, false)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, cmd.Action)
	}
}

func (cmd Command) value() (int64, error) {
	if cmd.Value == nil {
		return 0, fmt.Errorf("%w: %s needs a value", ErrInvalidCommand, cmd.Action)
	}
	return *cmd.Value, nil
}
