package tts

// EventKind identifies what changed in the playback session.
type EventKind int

const (
	// EventStateChanged fires when the playback state transitions.
	EventStateChanged EventKind = iota
	// EventChunkStarted fires when a chunk begins playing.
	EventChunkStarted
	// EventChunkReady fires when a chunk's audio finishes loading.
	EventChunkReady
	// EventChunkFailed fires when a chunk's fetch or decode fails.
	EventChunkFailed
	// EventWaiting fires when playback stalls on an unloaded chunk.
	EventWaiting
	// EventSettingsChanged fires when speed or voice changes.
	EventSettingsChanged
)

// String returns a string representation of the event kind.
func (k EventKind) String() string {
	switch k {
	case EventStateChanged:
		return "state-changed"
	case EventChunkStarted:
		return "chunk-started"
	case EventChunkReady:
		return "chunk-ready"
	case EventChunkFailed:
		return "chunk-failed"
	case EventWaiting:
		return "waiting"
	case EventSettingsChanged:
		return "settings-changed"
	default:
		return "unknown"
	}
}

// Event notifies observers of a session change. Index is the chunk the
// event refers to, where one applies.
type Event struct {
	Kind  EventKind
	State PlaybackState
	Index int
	Err   error
}
