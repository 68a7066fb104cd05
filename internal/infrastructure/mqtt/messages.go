package mqtt

import "fmt"

// maxPayloadSize is the largest message body accepted for publishing.
const maxPayloadSize = 1 << 20

func checkTopic(topic string, qos byte) error {
	switch {
	case topic == "":
		return ErrInvalidTopic
	case qos > maxQoS:
		return ErrInvalidQoS
	}
	return nil
}

func validatePublish(topic string, payload []byte, qos byte) error {
	if err := checkTopic(topic, qos); err != nil {
		return err
	}
	if n := len(payload); n > maxPayloadSize {
		return fmt.Errorf("%w: %d byte payload over the %d byte limit", ErrPublishFailed, n, maxPayloadSize)
	}
	return nil
}

// Publish sends payload on topic and waits for the broker to accept it.
//
// Snapshot and status topics are published retained so late subscribers
// get the last value. Control requests are never retained.
func (c *Client) Publish(topic string, payload []byte, qos byte, retained bool) error {
	if err := validatePublish(topic, payload, qos); err != nil {
		return err
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}
	return await(c.paho.Publish(topic, qos, retained, payload), defaultPublishTimeout, ErrPublishFailed)
}

// PublishRetained publishes a retained message at the session QoS.
func (c *Client) PublishRetained(topic string, payload []byte) error {
	return c.Publish(topic, payload, c.qos, true)
}

// Subscribe routes messages on topic, which may hold + and # wildcards, to
// handler. The route is kept across reconnects until Unsubscribe.
//
//	err := client.Subscribe(client.Topics().AllCommands(), 1, svc.HandleMessage)
func (c *Client) Subscribe(topic string, qos byte, handler MessageHandler) error {
	if err := checkTopic(topic, qos); err != nil {
		return err
	}
	if handler == nil {
		return fmt.Errorf("%w: nil handler for %s", ErrSubscribeFailed, topic)
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}

	c.mu.Lock()
	c.routes[topic] = route{qos: qos, handler: handler}
	c.mu.Unlock()

	err := await(c.paho.Subscribe(topic, qos, c.deliver(handler)), defaultPublishTimeout, ErrSubscribeFailed)
	if err != nil {
		c.drop(topic)
	}
	return err
}

// Unsubscribe removes the route for topic and tells the broker.
func (c *Client) Unsubscribe(topic string) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}
	c.drop(topic)
	return await(c.paho.Unsubscribe(topic), defaultPublishTimeout, ErrUnsubscribeFailed)
}

func (c *Client) drop(topic string) {
	c.mu.Lock()
	delete(c.routes, topic)
	c.mu.Unlock()
}

// SubscriptionCount returns the number of routes.
func (c *Client) SubscriptionCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.routes)
}

// HasSubscription reports whether a route exists for exactly topic.
func (c *Client) HasSubscription(topic string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.routes[topic]
	return ok
}
