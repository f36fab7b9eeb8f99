package monitor

import (
	"strconv"
	"time"

	"github.com/teranos/wbwatch/am"
	"github.com/teranos/wbwatch/notify"
	"github.com/teranos/wbwatch/stream"
)

// isoDate is the layout of last_heartbeat_date
const isoDate = "2006-01-02"

// Heartbeat outcomes
const (
	HeartbeatDisabled = "disabled"
	HeartbeatNotDue   = "not due"
	HeartbeatAlready  = "already sent today"
	HeartbeatSent     = "sent"
	HeartbeatFailed   = "failed"
)

// HeartbeatDue reports whether a heartbeat should be sent at now: now falls
// on day and lastSent (an ISO date) is not now's date.
func HeartbeatDue(now time.Time, day time.Weekday, lastSent string) (due bool, today string) {
	today = now.Format(isoDate)
	return now.Weekday() == day && lastSent != today, today
}

// HeartbeatMessage renders the weekly liveness alert. Counts are taken for
// every known stream, disabled ones reporting zero.
func HeartbeatMessage(results []StreamResult, country string) notify.Message {
	scanned := map[string]int{}
	alerts := map[string]int{}
	for _, r := range results {
		scanned[r.Stream] += r.Fetched
		alerts[r.Stream] += r.Tally.Alerts()
	}

	count := func(m map[string]int, s string) string {
		return strconv.Itoa(m[s])
	}
	field := func(name, value string) notify.Field {
		return notify.Field{Name: name, Value: value, Inline: true}
	}

	return notify.Message{
		Title:       "World Bank GIS Monitor Heartbeat",
		Description: "System healthy: daily scan for GIS opportunities in " + country + ".",
		Color:       stream.ColorHeartbeat,
		Fields: []notify.Field{
			field("Projects scanned", count(scanned, am.StreamProjects)),
			field("Procurement plans scanned", count(scanned, am.StreamProcurementPlans)),
			field("Tenders scanned", count(scanned, am.StreamTenders)),
			field("Awards scanned", count(scanned, am.StreamAwards)),
			field("Project alerts this run", count(alerts, am.StreamProjects)),
			field("Procurement plan alerts this run", count(alerts, am.StreamProcurementPlans)),
			field("Tender alerts this run", count(alerts, am.StreamTenders)),
			field("Award alerts this run", count(alerts, am.StreamAwards)),
		},
		Footer: "Heartbeat status from World Bank GIS Monitor (" + country + ")",
	}
}
