package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/Mbarathm345672005/docuflow/internal/models"
	"github.com/Mbarathm345672005/docuflow/internal/notify"
	"github.com/Mbarathm345672005/docuflow/internal/repository"
	"github.com/Mbarathm345672005/docuflow/internal/storage"
	"go.uber.org/zap"
)

// NotificationQueue accepts messages for best-effort delivery. Enqueue
// never blocks and never fails; delivery problems stay in the logs.
type NotificationQueue interface {
	Enqueue(msg notify.Message)
}

// Engine implements the document review-status state machine: submit,
// approve/reject, review, and the query views each role needs.
type Engine struct {
	documents *repository.DocumentRepository
	users     *repository.UserRepository
	store     storage.ObjectStore
	queue     NotificationQueue
	logger    *zap.Logger
}

// NewEngine creates a new workflow engine
func NewEngine(
	documents *repository.DocumentRepository,
	users *repository.UserRepository,
	store storage.ObjectStore,
	queue NotificationQueue,
	logger *zap.Logger,
) *Engine {
	return &Engine{
		documents: documents,
		users:     users,
		store:     store,
		queue:     queue,
		logger:    logger,
	}
}

// SubmitRequest carries an upload into the engine
type SubmitRequest struct {
	FileName   string
	Content    []byte
	UploadedBy string
}

// Submit validates a PDF upload, stores the bytes, persists the document
// in Pending/Pending state and notifies the approver role.
//
// Storage and insert are not one distributed transaction: when the
// insert fails after a successful store, the stored object is deleted
// best-effort and the insert error is returned to the caller.
func (e *Engine) Submit(ctx context.Context, req SubmitRequest) (*models.Document, error) {
	if req.UploadedBy == "" {
		return nil, fmt.Errorf("%w: uploadedBy is required", ErrValidation)
	}
	if len(req.Content) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrValidation)
	}
	if err := storage.ValidatePDF(req.FileName, req.Content); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	objectName := storage.ObjectName(req.FileName)
	stored, err := e.store.Store(ctx, objectName, req.Content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	doc := &models.Document{
		DocumentName:  req.FileName,
		DocumentLink:  stored.PublicURL,
		StorageObject: stored.Name,
		UploadedBy:    req.UploadedBy,
		UploadTime:    time.Now(),
	}
	if err := e.documents.Create(doc); err != nil {
		// The stored object is now an orphan; compensate best-effort
		// but surface the insert failure either way.
		if delErr := e.store.Delete(ctx, stored.Name); delErr != nil {
			e.logger.Error("Failed to clean up orphan object",
				zap.String("object", stored.Name),
				zap.Error(delErr))
		}
		return nil, err
	}

	e.logger.Info("Document submitted",
		zap.Int64("id", doc.ID),
		zap.String("name", doc.DocumentName),
		zap.String("uploaded_by", doc.UploadedBy))

	e.notifyRole(models.RoleApprover,
		notify.NewUpload(doc.DocumentName, doc.UploadedBy, doc.DocumentLink))

	return doc, nil
}

// Decide records an approval decision on a single document. The decision
// must be Approved or Unapproved and the approver must hold the approver
// or admin role. Approval fields are set together in one update; an
// unknown id yields ErrNotFound.
func (e *Engine) Decide(ctx context.Context, docID int64, decision, approver string) (*models.Document, error) {
	if !models.ValidApprovalDecision(decision) {
		return nil, fmt.Errorf("%w: unknown approval decision %q", ErrValidation, decision)
	}
	if err := e.requireRole(approver, models.RoleApprover); err != nil {
		return nil, err
	}

	rows, err := e.documents.SetApproval(docID, decision, approver, time.Now())
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, fmt.Errorf("%w: document %d", ErrNotFound, docID)
	}

	doc, err := e.documents.GetByID(docID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: document %d", ErrNotFound, docID)
	}

	e.logger.Info("Approval decision recorded",
		zap.Int64("id", docID),
		zap.String("decision", decision),
		zap.String("approved_by", approver))

	if decision == models.ApprovalApproved {
		e.notifyUploader(doc.UploadedBy, notify.Approved(doc.DocumentName, approver))
		e.notifyRole(models.RoleReviewer,
			notify.ReadyForReview(doc.DocumentName, doc.UploadedBy, doc.DocumentLink))
	} else {
		e.notifyUploader(doc.UploadedBy, notify.Unapproved(doc.DocumentName, approver))
	}

	return doc, nil
}

// Review records a review decision across all of the uploader's
// currently-Approved documents. Pending documents are untouched and zero
// matching rows is a no-op, not an error. The reviewer must hold the
// reviewer or admin role.
func (e *Engine) Review(ctx context.Context, uploader, decision, reviewer string) (int64, error) {
	if uploader == "" {
		return 0, fmt.Errorf("%w: uploaded_by is required", ErrValidation)
	}
	if !models.ValidReviewDecision(decision) {
		return 0, fmt.Errorf("%w: unknown review decision %q", ErrValidation, decision)
	}
	if err := e.requireRole(reviewer, models.RoleReviewer); err != nil {
		return 0, err
	}

	rows, err := e.documents.SetReviewForUploader(uploader, decision, reviewer, time.Now())
	if err != nil {
		return 0, err
	}

	e.logger.Info("Review decision recorded",
		zap.String("uploader", uploader),
		zap.String("decision", decision),
		zap.String("reviewer", reviewer),
		zap.Int64("documents", rows))

	if rows > 0 {
		msg := notify.ReviewDecided(uploader, decision, reviewer, rows)
		recipients := e.roleEmails(models.RoleApprover)
		if email, ok := e.uploaderEmail(uploader); ok {
			recipients = append(recipients, email)
		}
		if len(recipients) > 0 {
			msg.To = recipients
			e.queue.Enqueue(msg)
		}
	}

	return rows, nil
}

// ListAll returns every document, newest first
func (e *Engine) ListAll() ([]*models.Document, error) {
	return e.documents.ListAll()
}

// ListByUploader returns an uploader's documents (exact match)
func (e *Engine) ListByUploader(uploader string) ([]*models.Document, error) {
	return e.documents.ListByUploader(uploader)
}

// SearchByUploader returns documents whose uploader contains fragment.
// Legacy behavior kept for the old listing endpoint.
func (e *Engine) SearchByUploader(fragment string) ([]*models.Document, error) {
	return e.documents.SearchByUploader(fragment)
}

// ListApproved returns the reviewer's queue, newest first
func (e *Engine) ListApproved() ([]*models.Document, error) {
	return e.documents.ListApproved()
}

// requireRole checks that username holds role (admin always passes)
func (e *Engine) requireRole(username, role string) error {
	if username == "" {
		return fmt.Errorf("%w: acting user is required", ErrValidation)
	}
	user, err := e.users.GetByUsername(username)
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("%w: unknown user %q", ErrAuth, username)
	}
	if user.Role != role && user.Role != models.RoleAdmin {
		return fmt.Errorf("%w: user %q lacks the %s role", ErrAuth, username, role)
	}
	return nil
}

// notifyUploader queues a message for a single uploader. A missing user
// or email is a soft failure: the state change has already committed.
func (e *Engine) notifyUploader(username string, msg notify.Message) {
	email, ok := e.uploaderEmail(username)
	if !ok {
		return
	}
	msg.To = []string{email}
	e.queue.Enqueue(msg)
}

func (e *Engine) uploaderEmail(username string) (string, bool) {
	user, err := e.users.GetByUsername(username)
	if err != nil || user == nil || user.Email == "" {
		e.logger.Warn("Skipping notification, uploader has no resolvable email",
			zap.String("username", username),
			zap.Error(err))
		return "", false
	}
	return user.Email, true
}

// notifyRole queues a message for every user holding role
func (e *Engine) notifyRole(role string, msg notify.Message) {
	emails := e.roleEmails(role)
	if len(emails) == 0 {
		e.logger.Warn("Skipping notification, no recipients for role",
			zap.String("role", role))
		return
	}
	msg.To = emails
	e.queue.Enqueue(msg)
}

func (e *Engine) roleEmails(role string) []string {
	emails, err := e.users.EmailsByRole(role)
	if err != nil {
		e.logger.Error("Failed to resolve role recipients",
			zap.String("role", role),
			zap.Error(err))
		return nil
	}
	return emails
}
