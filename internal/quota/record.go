package quota

import "time"

// Record is the per-identity usage state. It is mutated only inside a
// Store.Update transaction.
type Record struct {
	DateKey          string      `json:"date_key"`
	HourKey          string      `json:"hour_key"`
	RequestsToday    int         `json:"requests_today"`
	TokensToday      int         `json:"tokens_today"`
	RequestsThisHour int         `json:"requests_this_hour"`
	MinuteWindow     []time.Time `json:"minute_window"`
}

func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

func hourKey(t time.Time) string {
	return t.Format("2006-01-02T15")
}

// rollover resets counters whose bucket key changed: a new day resets
// everything, a new hour within the same day resets only the hourly count.
func (r *Record) rollover(now time.Time) {
	day := dayKey(now)
	hour := hourKey(now)

	if r.DateKey != day {
		r.DateKey = day
		r.HourKey = hour
		r.RequestsToday = 0
		r.TokensToday = 0
		r.RequestsThisHour = 0
		r.MinuteWindow = nil
		return
	}
	if r.HourKey != hour {
		r.HourKey = hour
		r.RequestsThisHour = 0
	}
}

// pruneMinuteWindow drops timestamps older than 60 seconds.
func (r *Record) pruneMinuteWindow(now time.Time) {
	cutoff := now.Add(-time.Minute)
	kept := r.MinuteWindow[:0]
	for _, ts := range r.MinuteWindow {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	r.MinuteWindow = kept
}
