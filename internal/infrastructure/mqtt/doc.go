// Package mqtt provides MQTT client connectivity for the Hearth gateway.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Topic subscriptions with wildcard support
//   - Last Will and Testament (LWT) for gateway offline detection
//   - Connection health monitoring
//
// # Architecture
//
// The sensor network publishes device lifecycle and telemetry messages to
// the broker; the gateway subscribes to them and publishes outbound
// commands. Dashboards talk to the same broker over its WebSocket listener,
// so the gateway never proxies live telemetry.
//
//	Sensors/Actuators ↔ MQTT Broker ↔ Hearth Gateway
//	                        ↕
//	                    Dashboards
//
// # Topic Grammar
//
//	home/devices/register        — registration announcements
//	home/devices/<id>/state      — telemetry readings
//	home/devices/<id>/ack        — command acknowledgements
//	home/devices/<id>/heartbeat  — liveness pings
//	<topicBase>/set              — outbound device commands
//	home/gateway/status          — retained gateway status (with LWT)
//
// The root and devices segments are configurable; use NewTopics to build
// topic strings consistently.
//
// # Usage
//
//	topics := mqtt.NewTopics(cfg.Gateway.TopicRoot, cfg.Gateway.DevicesSegment)
//	client, err := mqtt.Connect(cfg.MQTT, topics)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	err = client.Subscribe(topics.AllDeviceStates(), 1,
//	    func(topic string, payload []byte) error {
//	        return router.HandleMessage(topic, payload)
//	    })
package mqtt
