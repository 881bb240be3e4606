package download

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// EventKind tells what a ProgressEvent reports.
type EventKind int

const (
	// EventInfo is an album-level message.
	EventInfo EventKind = iota
	EventTrackStarted
	EventTrackProgress
	EventTrackDone
	EventTrackSkipped
	EventTrackFailed
)

func (k EventKind) String() string {
	switch k {
	case EventTrackStarted:
		return "started"
	case EventTrackProgress:
		return "progress"
	case EventTrackDone:
		return "done"
	case EventTrackSkipped:
		return "skipped"
	case EventTrackFailed:
		return "failed"
	default:
		return "info"
	}
}

// ProgressEvent represents a download progress update.
//
// Track events carry the zero-based Index and Title of the track. Progress
// events also carry the cumulative Written bytes and the expected Total
// (-1 when the server did not announce a size).
type ProgressEvent struct {
	Kind    EventKind
	Level   ProgressLevel
	Index   int
	Title   string
	Written int64
	Total   int64
	Err     error
	Message string
}
