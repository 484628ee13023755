package notify

import "context"

// Event labels carried on messages so secondary channels can tell
// workflow traffic apart from OTP delivery.
const (
	EventNewUpload      = "document.uploaded"
	EventApproved       = "document.approved"
	EventUnapproved     = "document.unapproved"
	EventReadyForReview = "document.ready_for_review"
	EventReviewDecided  = "document.reviewed"
	EventOTP            = "otp.requested"
)

// Message is a templated notification addressed to one or more recipients
type Message struct {
	To      []string
	Subject string
	Body    string
	Event   string
}

// Notifier sends a message. The workflow engine treats every send as
// best-effort: errors are logged by the caller and never propagate.
type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

// Fanout forwards each message to several notifiers, collecting nothing:
// a failing channel must not stop the others.
type Fanout []Notifier

// Send delivers msg on every channel, returning the first error seen
func (f Fanout) Send(ctx context.Context, msg Message) error {
	var firstErr error
	for _, n := range f {
		if err := n.Send(ctx, msg); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
