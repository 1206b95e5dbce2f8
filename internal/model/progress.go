package model

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// String returns the lowercase level name.
func (l ProgressLevel) String() string {
	switch l {
	case LevelInfo:
		return "info"
	case LevelVerbose:
		return "verbose"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	case LevelSuccess:
		return "success"
	}
	return "unknown"
}

// ProgressEvent represents a progress update from a running operation.
type ProgressEvent struct {
	Message string
	Level   ProgressLevel
}

// ProgressFunc receives progress events. A nil ProgressFunc discards them.
type ProgressFunc func(ProgressEvent)

// Emit calls f with the event when f is set.
func (f ProgressFunc) Emit(level ProgressLevel, message string) {
	if f != nil {
		f(ProgressEvent{Message: message, Level: level})
	}
}
