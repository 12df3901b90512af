package models

const (
	NoResponseText = "No response from the API."
	ErrorText      = "An error occurred. Please try again."
)

type OutcomeKind string

const (
	OutcomeSuccess        OutcomeKind = "success"
	OutcomeEmpty          OutcomeKind = "empty"
	OutcomeTransportError OutcomeKind = "transport_error"
	OutcomeDecodeError    OutcomeKind = "decode_error"
)

// Outcome is the classified result of one completion call.
type Outcome struct {
	Kind       OutcomeKind
	Content    string
	Err        error
	StatusCode int // 0 when no HTTP response was obtained
}

func Success(content string, status int) Outcome {
	return Outcome{Kind: OutcomeSuccess, Content: content, StatusCode: status}
}

func EmptyResult(status int) Outcome {
	return Outcome{Kind: OutcomeEmpty, StatusCode: status}
}

func TransportError(err error) Outcome {
	return Outcome{Kind: OutcomeTransportError, Err: err}
}

func DecodeError(err error, status int) Outcome {
	return Outcome{Kind: OutcomeDecodeError, Err: err, StatusCode: status}
}

// Failed reports whether the outcome belongs to the generic failure category.
func (o Outcome) Failed() bool {
	return o.Kind == OutcomeTransportError || o.Kind == OutcomeDecodeError
}

// DisplayText is the text written into the display slot for this outcome.
func (o Outcome) DisplayText() string {
	switch o.Kind {
	case OutcomeSuccess:
		return o.Content
	case OutcomeEmpty:
		return NoResponseText
	default:
		return ErrorText
	}
}
