package types

import (
	"encoding/json"
	"fmt"
)

// Status is the lifecycle state of the prediction slot.
type Status uint8

const (
	// StatusIdle marks a free slot. It is internal-only and never appears in
	// a serialized response.
	StatusIdle Status = iota
	// StatusStarting means a request is stored but validation has not passed yet.
	StatusStarting
	// StatusProcessing means the execution engine is running the input.
	StatusProcessing
	// StatusSucceeded means the engine produced an output.
	StatusSucceeded
	// StatusFailed means the engine returned a non-cancellation error.
	StatusFailed
	// StatusCanceled means the prediction was canceled before producing output.
	StatusCanceled
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusStarting:
		return "starting"
	case StatusProcessing:
		return "processing"
	case StatusSucceeded:
		return "succeeded"
	case StatusFailed:
		return "failed"
	case StatusCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// IsTerminal reports whether a response is available for consumption.
func (s Status) IsTerminal() bool {
	return s == StatusSucceeded || s == StatusFailed || s == StatusCanceled
}

// ParseStatus converts the wire representation back to a Status. Idle is not
// accepted: it never crosses the API boundary.
func ParseStatus(str string) (Status, error) {
	for _, s := range []Status{StatusStarting, StatusProcessing, StatusSucceeded, StatusFailed, StatusCanceled} {
		if s.String() == str {
			return s, nil
		}
	}
	return StatusIdle, fmt.Errorf("invalid prediction status: %s", str)
}

// MarshalJSON implements the json.Marshaler interface for Status.
func (s Status) MarshalJSON() ([]byte, error) {
	if s == StatusIdle {
		return nil, fmt.Errorf("idle status is not serializable")
	}
	return json.Marshal(s.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface for Status.
func (s *Status) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}

	status, err := ParseStatus(str)
	if err != nil {
		return err
	}

	*s = status
	return nil
}
