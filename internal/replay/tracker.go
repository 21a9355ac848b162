package replay

import (
	"context"
	"fmt"

	"github.com/vytor/stormstats/internal/logger"
)

// TrackerData is what the tracker event stream says about the players.
type TrackerData struct {
	// PlayerIDs maps toon handle to 1-based tracker player id.
	PlayerIDs map[string]int
	// Scores maps tracker player id to stat name to value, from the first
	// Score event only.
	Scores map[int]map[string]int64
}

// Empty reports whether no tracker data is available at all.
func (t TrackerData) Empty() bool {
	return len(t.PlayerIDs) == 0 && len(t.Scores) == 0
}

// ExtractTracker builds the toon handle and score maps from raw tracker events.
func ExtractTracker(events []TrackerEvent) TrackerData {
	data := TrackerData{
		PlayerIDs: make(map[string]int),
		Scores:    make(map[int]map[string]int64),
	}

	scoreSeen := false
	for _, ev := range events {
		switch ev.Kind {
		case TrackerPlayerInit:
			if len(ev.IntFields) < 1 || len(ev.StringFields) < 2 {
				continue
			}
			toon := ev.StringFields[1]
			if toon == "" {
				continue
			}
			if _, dup := data.PlayerIDs[toon]; dup {
				continue
			}
			data.PlayerIDs[toon] = int(ev.IntFields[0])

		case TrackerScore:
			if scoreSeen {
				continue
			}
			scoreSeen = true
			for _, entry := range ev.Scores {
				for i, v := range entry.Values {
					if v == nil {
						continue
					}
					id := i + 1
					if data.Scores[id] == nil {
						data.Scores[id] = make(map[string]int64)
					}
					data.Scores[id][entry.Name] = *v
				}
			}
		}
	}
	return data
}

// readTracker re-reads the replay for its tracker events. Any failure is
// logged and yields empty tracker data.
func (a *Analyzer) readTracker(ctx context.Context, path string) TrackerData {
	log := logger.FromContext(ctx)

	out := a.safeDecode(ctx, path, Options{Sections: []Section{SectionTrackerEvents}})
	var err error
	switch {
	case out.Kind == OutcomeStatus:
		err = fmt.Errorf("decoder status %s", out.Status)
	case out.Kind == OutcomeException:
		err = fmt.Errorf("%s", out.Message)
	case out.Sections == nil:
		err = fmt.Errorf("no sections returned")
	}
	if err != nil {
		log.Warn("tracker events unavailable, using decoder stats only: %v", err)
		return TrackerData{}
	}

	data := ExtractTracker(out.Sections.TrackerEvents)
	log.Debug("tracker events: %d events, %d player inits, %d scored players",
		len(out.Sections.TrackerEvents), len(data.PlayerIDs), len(data.Scores))
	return data
}
