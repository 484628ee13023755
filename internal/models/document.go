package models

import "time"

// Approval statuses set by the approver role
const (
	ApprovalPending    = "Pending"
	ApprovalApproved   = "Approved"
	ApprovalUnapproved = "Unapproved"
)

// Review statuses set by the reviewer role, gated on approval
const (
	ReviewPending  = "Pending"
	ReviewApproved = "Approved"
	ReviewRejected = "Rejected"
)

// Document represents an uploaded PDF and its workflow state.
// DocumentLink is the public retrieval URL; StorageObject is the
// object name inside the store, kept for orphan cleanup.
type Document struct {
	ID             int64      `json:"id"`
	DocumentName   string     `json:"document_name"`
	DocumentLink   string     `json:"document_link"`
	StorageObject  string     `json:"-"`
	UploadedBy     string     `json:"uploaded_by"`
	UploadTime     time.Time  `json:"upload_time"`
	ApprovalStatus string     `json:"approval_status"`
	ApprovedBy     *string    `json:"approved_by,omitempty"`
	ApprovalTime   *time.Time `json:"approval_time,omitempty"`
	ReviewStatus   string     `json:"review_status"`
	Reviewer       *string    `json:"reviewer,omitempty"`
	ReviewTime     *time.Time `json:"review_time,omitempty"`
}

// ValidApprovalDecision reports whether s is a terminal approval decision
func ValidApprovalDecision(s string) bool {
	return s == ApprovalApproved || s == ApprovalUnapproved
}

// ValidReviewDecision reports whether s is a terminal review decision
func ValidReviewDecision(s string) bool {
	return s == ReviewApproved || s == ReviewRejected
}
