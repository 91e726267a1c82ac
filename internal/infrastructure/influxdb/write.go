package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteReading records a single numeric reading from a device state
// payload. This is the ingest path's telemetry hook; the write is
// non-blocking, data is batched and sent asynchronously.
//
// Example:
//
//	client.WriteReading("esp-1", "temperature", 21.5)
func (c *Client) WriteReading(deviceID string, field string, value float64) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"device_readings",
		map[string]string{
			"device_id": deviceID,
			"field":     field,
		},
		map[string]interface{}{
			"value": value,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and
// fields, for measurements that do not fit WriteReading.
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}
