// Package submission runs the activity form pipeline as a small state
// machine:
//
//	Idle -> Submitted -> Rejected
//	Idle -> Submitted -> Forwarding -> Failed | Succeeded
//
// A rejection carries every issue plus the flattened raw fields so the form
// can be redisplayed. A failure carries a typed *Error; Messages turns it
// into text for the user.
package submission
