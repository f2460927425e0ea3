package daemon

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/pterodyne/linux-userspace-battery/pkg/battery"
	"github.com/pterodyne/linux-userspace-battery/pkg/events"
	"github.com/pterodyne/linux-userspace-battery/pkg/metrics"
	"github.com/pterodyne/linux-userspace-battery/pkg/sysfs"
)

// primeGauges seeds the value gauges before the first change event.
func primeGauges(snap battery.Snapshot) {
	metrics.VoltageMicrovolts.Set(float64(snap.VoltageMicrovolts))
	metrics.CapacityPercent.Set(float64(snap.CapacityPercent))
	metrics.StatusValue.Set(float64(snap.Status))
}

// followChanges keeps the derived read surfaces in step with the battery:
// after every change event the property files are rewritten and the value
// gauges updated. It returns when ctx is cancelled or the hub closes.
func followChanges(ctx context.Context, hub *events.Hub, tree *sysfs.Tree) {
	ch := hub.Subscribe()
	defer hub.Unsubscribe(ch)

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			if ev.Name != events.BatteryChanged {
				continue
			}
			payload, err := events.DecodeAs[events.BatteryChangedEvent](ev)
			if err != nil {
				logrus.Warnf("failed to decode change event: %v", err)
				continue
			}

			metrics.VoltageMicrovolts.Set(float64(payload.VoltageMicrovolts))
			metrics.CapacityPercent.Set(float64(payload.CapacityPercent))
			metrics.StatusValue.Set(float64(battery.ParseStatus(payload.Status)))

			if err := tree.Refresh(); err != nil {
				logrus.Warnf("failed to refresh attribute files: %v", err)
			}
		}
	}
}
