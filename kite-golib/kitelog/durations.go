package kitelog

import (
	"bytes"
	"fmt"
	"text/tabwriter"
	"time"
)

type duration struct {
	name     string
	duration time.Duration
}

// Durations tracks named wall-clock durations, e.g. one per fetched topic
type Durations []duration

// Record records a duration
func (t *Durations) Record(name string, d time.Duration) {
	*t = append(*t, duration{name, d})
}

// Since records the time elapsed since start
func (t *Durations) Since(name string, start time.Time) {
	t.Record(name, time.Since(start))
}

// Total of all recorded durations
func (t Durations) Total() time.Duration {
	var total time.Duration
	for _, entry := range t {
		total += entry.duration
	}
	return total
}

// Flush writes the recorded durations as an aligned table to the given handler
func (t *Durations) Flush(i Interface) {
	if len(*t) == 0 {
		return
	}

	var b bytes.Buffer
	tw := tabwriter.NewWriter(&b, 4, 4, 0, ' ', 0)
	for _, entry := range *t {
		fmt.Fprintf(tw, "   %s\t%s\n", entry.name, entry.duration.Round(time.Millisecond))
	}
	tw.Flush()

	i.Println(fmt.Sprintf("timings (total %s):\n", t.Total().Round(time.Millisecond)) + b.String())
	*t = nil
}
