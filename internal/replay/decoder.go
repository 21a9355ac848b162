package replay

import (
	"context"
	"time"
)

// Decoder is the narrow view of the external replay decoder. Implementations
// must translate whatever the decoder emits into the types below; nothing
// decoder-specific is allowed past this boundary.
type Decoder interface {
	// DecodeHeader reads only the replay header. A nil header with a nil
	// error is treated as unreadable.
	DecodeHeader(ctx context.Context, path string) (*Header, error)
	// Decode runs a full decode, or a raw section read when opts.Sections is
	// not empty.
	Decode(ctx context.Context, path string, opts Options) Outcome
}

// Section names a raw replay section that can be read without a full decode.
type Section string

const (
	SectionDetails       Section = "details"
	SectionInitData      Section = "initdata"
	SectionTrackerEvents Section = "trackerevents"
)

// Options configures a single decoder invocation.
type Options struct {
	Stats                 bool
	LegacyTalentKeys      bool
	OverrideVerifiedBuild bool
	Recovery              bool
	IgnoreErrors          bool
	Sections              []Section
}

// Header is the lightweight header-only view of a replay.
type Header struct {
	Build            int
	Version          string
	ElapsedGameLoops int
}

// Empty reports whether the header carries neither a build nor a version.
func (h *Header) Empty() bool {
	return h == nil || (h.Build == 0 && h.Version == "")
}

// Status is the decoder's verdict on a full decode.
type Status int

const (
	StatusOK                  Status = 1
	StatusUnsupported         Status = 0
	StatusDuplicate           Status = -1
	StatusFailure             Status = -2
	StatusUnsupportedMap      Status = -3
	StatusComputerPlayerFound Status = -4
	StatusIncomplete          Status = -5
	StatusTooOld              Status = -6
	StatusUnverified          Status = -7
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusUnsupported:
		return "Unsupported"
	case StatusDuplicate:
		return "Duplicate"
	case StatusFailure:
		return "Failure"
	case StatusUnsupportedMap:
		return "UnsupportedMap"
	case StatusComputerPlayerFound:
		return "ComputerPlayerFound"
	case StatusIncomplete:
		return "Incomplete"
	case StatusTooOld:
		return "TooOld"
	case StatusUnverified:
		return "Unverified"
	default:
		return "Unknown"
	}
}

// OutcomeKind tags the variant held by an Outcome.
type OutcomeKind int

const (
	OutcomeOK OutcomeKind = iota
	OutcomeStatus
	OutcomeException
)

// Outcome is the result of one decoder call: Ok(match, players) for a full
// decode or Ok(sections) for a raw read, Failed(code), or
// Exception(message).
type Outcome struct {
	Kind     OutcomeKind
	Match    *DecodedMatch
	Players  []DecodedPlayer
	Sections *Sections
	Status   Status
	Message  string
}

// Ok builds a successful full-decode outcome.
func Ok(match *DecodedMatch, players []DecodedPlayer) Outcome {
	return Outcome{Kind: OutcomeOK, Status: StatusOK, Match: match, Players: players}
}

// OkSections builds a successful raw-read outcome.
func OkSections(s *Sections) Outcome {
	return Outcome{Kind: OutcomeOK, Status: StatusOK, Sections: s}
}

// Failed builds an outcome for a definitive non-OK decoder status.
func Failed(code Status) Outcome {
	return Outcome{Kind: OutcomeStatus, Status: code}
}

// Exception builds an outcome for a decoder call that blew up.
func Exception(message string) Outcome {
	return Outcome{Kind: OutcomeException, Message: message}
}

// DecodedMatch is the match-level output of a decode.
type DecodedMatch struct {
	Map     string
	Mode    string
	Length  int // seconds
	Winner  int // winning team flag, -1 when unknown
	Version string
	Region  string
	Date    time.Time
}

// DecodedPlayer is one player slot as reported by the decoder. Stats holds
// the decoder's native end-of-game values; it may be partial or empty.
type DecodedPlayer struct {
	Name       string
	Hero       string
	Team       int
	ToonHandle string
	BattleTag  string
	HeroLevel  int
	Stats      map[string]int64
}

// Sections holds the typed contents of a raw section read.
type Sections struct {
	Details       *Details
	InitData      *InitData
	TrackerEvents []TrackerEvent
}

// Details is the replay's player-details section.
type Details struct {
	Title     string
	Timestamp time.Time
	Players   []DetailsPlayer
}

// DetailsPlayer is one entry of the details player list.
type DetailsPlayer struct {
	Name       string
	ToonHandle string
	Hero       string
	Team       int
	Result     int // 1 win, 2 loss, 0 unknown
}

// InitData is the initial lobby state.
type InitData struct {
	Slots []LobbySlot
}

// LobbySlot is a single occupied lobby slot.
type LobbySlot struct {
	ToonHandle string
	Team       int
	UserID     int
}

// TrackerEventKind classifies a raw tracker event.
type TrackerEventKind string

const (
	TrackerPlayerInit TrackerEventKind = "PlayerInit"
	TrackerScore      TrackerEventKind = "Score"
)

// TrackerEvent is a low-level telemetry event. PlayerInit events carry their
// payload in IntFields/StringFields, Score events in Scores.
type TrackerEvent struct {
	Kind         TrackerEventKind
	IntFields    []int64
	StringFields []string
	Scores       []ScoreEntry
}

// ScoreEntry is one named statistic of a Score event. Values are indexed by
// tracker player id minus one; a nil value means absent.
type ScoreEntry struct {
	Name   string
	Values []*int64
}
