package mqtt

import "errors"

// Sentinels returned by Client. Match with errors.Is; most are wrapped with
// the broker's reason.
var (
	ErrNotConnected      = errors.New("mqtt: no broker session")
	ErrConnectionFailed  = errors.New("mqtt: cannot reach broker")
	ErrPublishFailed     = errors.New("mqtt: publish rejected")
	ErrSubscribeFailed   = errors.New("mqtt: subscribe rejected")
	ErrUnsubscribeFailed = errors.New("mqtt: unsubscribe rejected")
	ErrInvalidQoS        = errors.New("mqtt: qos must be 0, 1 or 2")
	ErrInvalidTopic      = errors.New("mqtt: empty topic")
)
