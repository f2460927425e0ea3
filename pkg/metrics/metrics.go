// Package metrics exposes the daemon's Prometheus instrumentation. All
// collectors register themselves on the default registry, so importing the
// package is enough to wire them up.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// WritesTotal counts accepted attribute writes by attribute name.
	WritesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vbatt_attribute_writes_total",
		Help: "Accepted attribute writes, by attribute.",
	}, []string{"attribute"})

	// WriteErrorsTotal counts rejected attribute writes by attribute name.
	WriteErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vbatt_attribute_write_errors_total",
		Help: "Rejected attribute writes, by attribute.",
	}, []string{"attribute"})

	// NotificationsTotal counts change notifications, one per effective
	// write.
	NotificationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vbatt_change_notifications_total",
		Help: "Change notifications fired for effective writes.",
	})

	// VoltageMicrovolts mirrors the current voltage reading.
	VoltageMicrovolts = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "vbatt_voltage_microvolts",
		Help: "Current battery voltage in microvolts.",
	})

	// CapacityPercent mirrors the current capacity reading. It stays at -1
	// until the first valid write.
	CapacityPercent = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "vbatt_capacity_percent",
		Help: "Current battery capacity in percent, -1 before the first write.",
	})

	// StatusValue mirrors the current status as its power-supply enum
	// value.
	StatusValue = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "vbatt_status",
		Help: "Current battery status (0 Unknown, 1 Charging, 2 Discharging, 3 Not charging, 4 Full).",
	})
)
