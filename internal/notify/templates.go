package notify

import "fmt"

// Message templates for each workflow transition. Wording mirrors the
// notices the frontend shows users, so changes here are user-visible.

// NewUpload is sent to the approver role when a document arrives
func NewUpload(documentName, uploadedBy, link string) Message {
	return Message{
		Subject: fmt.Sprintf("New document uploaded: %s", documentName),
		Body: fmt.Sprintf(
			"A new document %q was uploaded by %s and is awaiting approval.\n\nDocument: %s\n",
			documentName, uploadedBy, link),
		Event: EventNewUpload,
	}
}

// Approved is sent to the uploader after a positive approval decision
func Approved(documentName, approvedBy string) Message {
	return Message{
		Subject: fmt.Sprintf("Document approved: %s", documentName),
		Body: fmt.Sprintf(
			"Your document %q was approved by %s and is now pending review.\n",
			documentName, approvedBy),
		Event: EventApproved,
	}
}

// Unapproved is sent to the uploader after a negative approval decision
func Unapproved(documentName, approvedBy string) Message {
	return Message{
		Subject: fmt.Sprintf("Document unapproved: %s", documentName),
		Body: fmt.Sprintf(
			"Your document %q was not approved by %s. Please revise and upload again.\n",
			documentName, approvedBy),
		Event: EventUnapproved,
	}
}

// ReadyForReview is sent to the reviewer role after an approval
func ReadyForReview(documentName, uploadedBy, link string) Message {
	return Message{
		Subject: fmt.Sprintf("Document ready for review: %s", documentName),
		Body: fmt.Sprintf(
			"Document %q (uploaded by %s) was approved and is ready for your review.\n\nDocument: %s\n",
			documentName, uploadedBy, link),
		Event: EventReadyForReview,
	}
}

// ReviewDecided is sent to the uploader and the approver role after review
func ReviewDecided(uploadedBy, decision, reviewer string, count int64) Message {
	verdict := "approved on review"
	if decision != "Approved" {
		verdict = "rejected on review"
	}
	return Message{
		Subject: fmt.Sprintf("Review decision for %s's documents", uploadedBy),
		Body: fmt.Sprintf(
			"%d document(s) uploaded by %s were %s by %s.\n",
			count, uploadedBy, verdict, reviewer),
		Event: EventReviewDecided,
	}
}

// OTPCode carries a one-time passcode to a single recipient
func OTPCode(email, code string, ttlMinutes int) Message {
	return Message{
		To:      []string{email},
		Subject: "Your verification code",
		Body: fmt.Sprintf(
			"Your one-time verification code is %s. It expires in %d minutes.\n",
			code, ttlMinutes),
		Event: EventOTP,
	}
}
