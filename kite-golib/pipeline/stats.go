package pipeline

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"
)

// FeedStats counts the samples that went in and out of a feed, and the errors it reported by reason.
type FeedStats struct {
	In     int
	Out    int
	Errors map[string]int
}

// ErrorCount is the total number of errors reported by the feed.
func (f FeedStats) ErrorCount() int {
	var n int
	for _, c := range f.Errors {
		n += c
	}
	return n
}

// runStats tracks FeedStats by feed name for a single run
type runStats struct {
	feeds map[string]*FeedStats
}

func newRunStats() *runStats {
	return &runStats{feeds: make(map[string]*FeedStats)}
}

func (r *runStats) get(f Feed) *FeedStats {
	s, ok := r.feeds[f.Name()]
	if !ok {
		s = &FeedStats{Errors: make(map[string]int)}
		r.feeds[f.Name()] = s
	}
	return s
}

func (r *runStats) IncrFeedIn(f Feed) {
	r.get(f).In++
}

func (r *runStats) IncrFeedOut(f Feed) {
	r.get(f).Out++
}

func (r *runStats) AddFeedError(f Feed, err sampleError) {
	r.get(f).Errors[err.Reason]++
}

// Snapshot copies the current stats.
func (r *runStats) Snapshot() map[string]FeedStats {
	out := make(map[string]FeedStats, len(r.feeds))
	for name, s := range r.feeds {
		errs := make(map[string]int, len(s.Errors))
		for k, v := range s.Errors {
			errs[k] = v
		}
		out[name] = FeedStats{In: s.In, Out: s.Out, Errors: errs}
	}
	return out
}

// WriteStats renders stats as a table sorted by feed name.
func WriteStats(w io.Writer, stats map[string]FeedStats) error {
	var names []string
	for name := range stats {
		names = append(names, name)
	}
	sort.Strings(names)

	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintf(tw, "feed\tin\tout\terrors\n")
	for _, name := range names {
		s := stats[name]
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\n", name, s.In, s.Out, s.ErrorCount())

		var reasons []string
		for reason := range s.Errors {
			reasons = append(reasons, reason)
		}
		sort.Strings(reasons)
		for _, reason := range reasons {
			fmt.Fprintf(tw, "  %s\t\t\t%d\n", reason, s.Errors[reason])
		}
	}
	return tw.Flush()
}
