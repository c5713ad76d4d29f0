// Package status classifies raw telephony status tokens into canonical
// call lifecycle states.
//
// The backend mixes carrier-level vocabulary ("ringing", "no-answer") with
// business outcomes reported by the AI agent ("Not Interested", "left a
// voice mail message"). Classification follows a fixed priority rule table
// so that overlapping vocabulary resolves deterministically.
package status

import "strings"

// State is a canonical call lifecycle state.
type State string

const (
	// Idle is the initial state before any call attempt exists.
	Idle State = "idle"

	// Active (non-terminal) states.
	Dialing  State = "dialing"
	Ringing  State = "ringing"
	Answered State = "answered"

	// Terminal telephony outcomes.
	Busy     State = "busy"
	NoAnswer State = "no_answer"
	Canceled State = "canceled"
	Failed   State = "failed"

	// Terminal business outcomes.
	NotInterested     State = "not_interested"
	Interested        State = "interested"
	VoicemailDetected State = "voicemail_detected"

	// LineInUse is a synthetic local state: the placement request itself
	// failed at the transport level, so no telephony outcome will ever
	// arrive. Never produced by Classify.
	LineInUse State = "line_in_use"
)

// Classify maps a raw backend status token to a canonical state. It is pure
// and total: every input, including the empty string, produces a defined
// state. Rules are evaluated in order and the first match wins; in
// particular "not interested" is checked before "interested" so that a
// negative outcome never reads as a positive one.
//
// Unknown tokens fall through to VoicemailDetected. That default mirrors
// the backend's historical behavior; see Describe for how such tokens are
// surfaced.
func Classify(raw string) State {
	switch raw {
	case "ringing":
		return Ringing
	case "answered", "in-progress":
		return Answered
	case "busy":
		return Busy
	case "canceled":
		return Canceled
	case "failed":
		return Failed
	case "no-answer":
		return NoAnswer
	}

	lower := strings.ToLower(raw)
	switch {
	case strings.Contains(lower, "not interested"):
		return NotInterested
	case strings.Contains(lower, "interested"):
		return Interested
	default:
		// Covers explicit "voice mail" tokens and everything else.
		return VoicemailDetected
	}
}

// Terminal reports whether no further transitions are accepted for the
// call attempt once s is reached.
func (s State) Terminal() bool {
	switch s {
	case Busy, NoAnswer, Canceled, Failed, NotInterested, Interested, VoicemailDetected, LineInUse:
		return true
	}
	return false
}

// Active reports whether a call attempt is in flight. An active session's
// status view must not be dismissed by outside interaction.
func (s State) Active() bool {
	switch s {
	case Dialing, Ringing, Answered:
		return true
	}
	return false
}

// Label returns the short operator-facing heading for a state. For
// voice-mail detections the raw token is preserved verbatim when it
// actually names a voice mail; unknown tokens get the generic heading.
func (s State) Label(raw string) string {
	switch s {
	case Dialing, Ringing:
		return "Calling..."
	case Answered:
		return "Answered"
	case Busy:
		return "Busy"
	case NoAnswer:
		return "No Answer"
	case Canceled:
		return "Canceled"
	case Failed:
		return "Failed"
	case NotInterested:
		return "Not Interested"
	case Interested:
		return "Great Work"
	case LineInUse:
		return "Line In Use"
	case VoicemailDetected:
		if strings.Contains(strings.ToLower(raw), "voice mail") {
			return raw
		}
		return "Voice Mail"
	}
	return ""
}

// Describe returns the longer operator-facing description for a state.
func (s State) Describe() string {
	switch s {
	case Dialing, Ringing:
		return "We are connecting your call..."
	case Answered:
		return "Your call has been answered."
	case Busy:
		return "The call was hung up."
	case NoAnswer:
		return "The call was not answered."
	case Canceled:
		return "The call has been canceled."
	case Failed:
		return "The call attempt failed."
	case NotInterested:
		return "The person is not interested"
	case Interested:
		return "Good Work! The doctor is interested in your proposal."
	case LineInUse:
		return "The Line is in use to call someone."
	case VoicemailDetected:
		return "The call is received by the voice mail."
	}
	return "Call status unknown."
}

func (s State) String() string { return string(s) }
