package chat

// Status is the result class of one protocol operation.
type Status int

const (
	Accepted Status = iota
	Rejected
	Failed
)

func (s Status) String() string {
	switch s {
	case Accepted:
		return "accepted"
	case Rejected:
		return "rejected"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Reasons carried by Rejected and Failed outcomes.
const (
	ReasonNotConnected     = "not_connected"
	ReasonUnknownOperation = "unknown_operation"
	ReasonMalformedPayload = "malformed_payload"
	ReasonMissingReceiver  = "missing_receiver"
	ReasonBlankContent     = "blank_content"
	ReasonContentTooLong   = "content_too_long"
	ReasonRateLimited      = "rate_limited"
	ReasonMessageNotFound  = "message_not_found"
	ReasonNotReceiver      = "not_receiver"
	ReasonAlreadyRead      = "already_read"
	ReasonThrottled        = "throttled"
	ReasonPersistence      = "persistence_failed"
	ReasonInternal         = "internal_error"
)

// Outcome reports what an operation did. Rejections are invisible to the
// client unless noted on the operation.
type Outcome struct {
	Status Status
	Reason string
}

func accepted() Outcome              { return Outcome{Status: Accepted} }
func rejected(reason string) Outcome { return Outcome{Status: Rejected, Reason: reason} }
func failed(reason string) Outcome   { return Outcome{Status: Failed, Reason: reason} }
