package constants

// Status is the processing state of a receipt record.
type Status string

// Stable values (stored as-is by every repository driver).
const (
	StatusProcessing Status = "processing"
	StatusProcessed  Status = "processed"
	StatusError      Status = "error"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusProcessing, StatusProcessed, StatusError:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is possible.
func (s Status) IsTerminal() bool {
	return s == StatusProcessed || s == StatusError
}

// CanTransition allows only processing -> processed and processing -> error.
func CanTransition(from, to Status) bool {
	return from == StatusProcessing && to.IsTerminal()
}
