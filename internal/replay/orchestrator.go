package replay

import (
	"context"
	"fmt"

	"github.com/vytor/stormstats/internal/logger"
)

// UnknownMap is the map name used when a degraded decode cannot find one.
const UnknownMap = "Unknown Map"

// UnknownHero is the hero name used for players recovered by a degraded decode.
const UnknownHero = "unknown"

type decodeState int

const (
	stateAttemptStrict decodeState = iota
	stateAttemptLenient
	stateAttemptMaxLenient
	stateDegradedFallback
	stateFailed
	stateDone
)

func (s decodeState) String() string {
	switch s {
	case stateAttemptStrict:
		return "AttemptStrict"
	case stateAttemptLenient:
		return "AttemptLenient"
	case stateAttemptMaxLenient:
		return "AttemptMaxLenient"
	case stateDegradedFallback:
		return "DegradedFallback"
	case stateFailed:
		return "Failed"
	case stateDone:
		return "Done"
	default:
		return "Unknown"
	}
}

type decodeEvent int

const (
	eventOK decodeEvent = iota
	eventStatus
	eventGenericFailure
	eventException
	eventBadShape
)

func (e decodeEvent) String() string {
	switch e {
	case eventOK:
		return "ok"
	case eventStatus:
		return "status"
	case eventGenericFailure:
		return "generic-failure"
	case eventException:
		return "exception"
	case eventBadShape:
		return "bad-shape"
	default:
		return "unknown"
	}
}

// attemptOptions is the decoder configuration used by each attempt state.
var attemptOptions = map[decodeState]Options{
	stateAttemptStrict: {
		Stats:                 true,
		OverrideVerifiedBuild: true,
	},
	stateAttemptLenient: {
		Stats:                 true,
		LegacyTalentKeys:      true,
		OverrideVerifiedBuild: true,
	},
	stateAttemptMaxLenient: {
		Stats:                 true,
		LegacyTalentKeys:      true,
		OverrideVerifiedBuild: true,
		IgnoreErrors:          true,
	},
}

// decodeTransitions is the retry policy. Every path reaches Done or Failed
// after at most three decoder calls plus one raw fallback read.
var decodeTransitions = map[decodeState]map[decodeEvent]decodeState{
	stateAttemptStrict: {
		eventOK:             stateDone,
		eventStatus:         stateAttemptLenient,
		eventGenericFailure: stateAttemptLenient,
		eventException:      stateAttemptMaxLenient,
		eventBadShape:       stateAttemptLenient,
	},
	stateAttemptLenient: {
		eventOK:             stateDone,
		eventStatus:         stateFailed,
		eventGenericFailure: stateDegradedFallback,
		eventException:      stateAttemptMaxLenient,
		eventBadShape:       stateAttemptMaxLenient,
	},
	stateAttemptMaxLenient: {
		eventOK:             stateDone,
		eventStatus:         stateFailed,
		eventGenericFailure: stateDegradedFallback,
		eventException:      stateFailed,
		eventBadShape:       stateFailed,
	},
}

// decoded is the orchestrator's output.
type decoded struct {
	Match    *DecodedMatch
	Players  []DecodedPlayer
	Degraded bool
	Attempts int
}

// decode drives the decoder through the attempt table and returns the first
// structurally valid result.
func (a *Analyzer) decode(ctx context.Context, path string) (*decoded, error) {
	log := logger.FromContext(ctx)

	state := stateAttemptStrict
	attempts := 0
	var lastErr *Error

	for {
		switch state {
		case stateFailed:
			log.Warn("decode failed after %d attempt(s): %v", attempts, lastErr)
			return nil, lastErr

		case stateDegradedFallback:
			attempts++
			match, players, err := a.degradedDecode(ctx, path)
			if err != nil {
				log.Warn("degraded fallback failed: %v", err)
				lastErr = newStatusError(StatusFailure)
				lastErr.Detail = err.Error()
				state = stateFailed
				continue
			}
			log.Info("degraded fallback recovered %d player(s)", len(players))
			return &decoded{Match: match, Players: players, Degraded: true, Attempts: attempts}, nil

		default:
			attempts++
			out := a.safeDecode(ctx, path, attemptOptions[state])
			event, err := classifyOutcome(out)
			next, ok := decodeTransitions[state][event]
			if !ok {
				next = stateFailed
			}
			log.Debug("decode %s: %s -> %s", state, event, next)

			if next == stateDone {
				return &decoded{Match: out.Match, Players: out.Players, Attempts: attempts}, nil
			}
			lastErr = err
			state = next
		}
	}
}

// safeDecode turns a decoder panic into an exception outcome.
func (a *Analyzer) safeDecode(ctx context.Context, path string, opts Options) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = Exception(panicMessage(r))
		}
	}()
	return a.decoder.Decode(ctx, path, opts)
}

func classifyOutcome(out Outcome) (decodeEvent, *Error) {
	switch out.Kind {
	case OutcomeOK:
		if reason := checkShape(out.Match, out.Players); reason != "" {
			return eventBadShape, newShapeError(reason)
		}
		return eventOK, nil
	case OutcomeStatus:
		if out.Status == StatusOK {
			return eventBadShape, newShapeError("status OK reported without a result")
		}
		if out.Status == StatusFailure {
			return eventGenericFailure, newStatusError(out.Status)
		}
		return eventStatus, newStatusError(out.Status)
	default:
		return eventException, newExceptionError(out.Message)
	}
}

func checkShape(match *DecodedMatch, players []DecodedPlayer) string {
	if match == nil {
		return "missing match data"
	}
	if len(players) == 0 {
		return "missing player data"
	}
	for i, p := range players {
		if p.Team != 0 && p.Team != 1 {
			return fmt.Sprintf("player %d has invalid team flag %d", i, p.Team)
		}
	}
	return ""
}

// degradedDecode rebuilds a minimal match from the details and lobby
// sections when the full decode reports an internal failure.
func (a *Analyzer) degradedDecode(ctx context.Context, path string) (*DecodedMatch, []DecodedPlayer, error) {
	out := a.safeDecode(ctx, path, Options{Sections: []Section{SectionDetails, SectionInitData}})
	switch out.Kind {
	case OutcomeOK:
	case OutcomeStatus:
		return nil, nil, fmt.Errorf("raw read returned status %s", out.Status)
	default:
		return nil, nil, fmt.Errorf("raw read failed: %s", out.Message)
	}
	return synthesize(out.Sections)
}

func synthesize(s *Sections) (*DecodedMatch, []DecodedPlayer, error) {
	if s == nil || (s.Details == nil && s.InitData == nil) {
		return nil, nil, fmt.Errorf("raw read returned no details or lobby data")
	}

	match := &DecodedMatch{
		Map:    UnknownMap,
		Mode:   "Unknown",
		Winner: -1,
	}
	if s.Details != nil {
		if s.Details.Title != "" {
			match.Map = s.Details.Title
		}
		match.Date = s.Details.Timestamp
	}

	var slots []LobbySlot
	if s.InitData != nil {
		slots = s.InitData.Slots
	}
	slotTeams := make(map[string]int, len(slots))
	for _, slot := range slots {
		if slot.ToonHandle != "" {
			slotTeams[slot.ToonHandle] = slot.Team
		}
	}

	var players []DecodedPlayer
	if s.Details != nil && len(s.Details.Players) > 0 {
		for i, dp := range s.Details.Players {
			// lobby slots skip observers, so position is the last resort
			team, ok := slotTeams[dp.ToonHandle]
			if !ok {
				switch {
				case dp.Team == 0 || dp.Team == 1:
					team = dp.Team
				case i < len(slots):
					team = slots[i].Team
				default:
					team = dp.Team
				}
			}
			team = normalizeTeam(team, i)
			players = append(players, DecodedPlayer{
				Name:       dp.Name,
				Hero:       UnknownHero,
				Team:       team,
				ToonHandle: dp.ToonHandle,
			})
			if dp.Result == 1 && match.Winner < 0 {
				match.Winner = team
			}
		}
	} else {
		for i, slot := range slots {
			players = append(players, DecodedPlayer{
				Name:       fmt.Sprintf("Player %d", i+1),
				Hero:       UnknownHero,
				Team:       normalizeTeam(slot.Team, i),
				ToonHandle: slot.ToonHandle,
			})
		}
	}

	if len(players) == 0 {
		return nil, nil, fmt.Errorf("raw read returned no players")
	}
	return match, players, nil
}

// normalizeTeam maps an out-of-range team flag to the slot's half of the lobby.
func normalizeTeam(team, index int) int {
	if team == 0 || team == 1 {
		return team
	}
	if index < 5 {
		return 0
	}
	return 1
}

func panicMessage(r any) string {
	return fmt.Sprintf("decoder panic: %v", r)
}
