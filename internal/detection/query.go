package detection

// ForFarm returns the alerts raised for farmID, preserving order.
func ForFarm(alerts []Alert, farmID string) []Alert {
	out := make([]Alert, 0)
	for _, a := range alerts {
		if a.FarmID == farmID {
			out = append(out, a)
		}
	}
	return out
}

// CountBySeverity tallies alerts per severity.
func CountBySeverity(alerts []Alert) map[Severity]int {
	counts := make(map[Severity]int)
	for _, a := range alerts {
		counts[a.Severity]++
	}
	return counts
}

// CountByType tallies alerts per type.
func CountByType(alerts []Alert) map[AlertType]int {
	counts := make(map[AlertType]int)
	for _, a := range alerts {
		counts[a.Type]++
	}
	return counts
}

// Latest returns the most recently appended alert.
func Latest(alerts []Alert) (Alert, bool) {
	if len(alerts) == 0 {
		return Alert{}, false
	}
	return alerts[len(alerts)-1], true
}

type alertKey struct {
	farmID string
	typ    AlertType
	at     int64
}

func keyOf(a Alert) alertKey {
	return alertKey{farmID: a.FarmID, typ: a.Type, at: a.TriggeredAt.UnixNano()}
}

// Unseen returns the alerts in next that known does not already hold, keyed
// by farm, type and trigger instant. IDs are ignored, so a re-run of the
// detector over a longer series yields only what the new readings raised.
func Unseen(known, next []Alert) []Alert {
	seen := make(map[alertKey]int, len(known))
	for _, a := range known {
		seen[keyOf(a)]++
	}
	out := make([]Alert, 0)
	for _, a := range next {
		k := keyOf(a)
		if seen[k] > 0 {
			seen[k]--
			continue
		}
		out = append(out, a)
	}
	return out
}
