package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Mbarathm345672005/docuflow/internal/models"
	"go.uber.org/zap"
)

// DocumentRepository handles document database operations
type DocumentRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewDocumentRepository creates a new document repository
func NewDocumentRepository(db *sql.DB, logger *zap.Logger) *DocumentRepository {
	return &DocumentRepository{db: db, logger: logger}
}

const documentColumns = `
	id, document_name, document_link, storage_object, uploaded_by, upload_time,
	approval_status, approved_by, approval_time, review_status, reviewer, review_time
`

// Create inserts a new document with both workflow statuses Pending
func (r *DocumentRepository) Create(doc *models.Document) error {
	query := `
		INSERT INTO documents (
			document_name, document_link, storage_object, uploaded_by, upload_time,
			approval_status, review_status
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	result, err := r.db.Exec(query,
		doc.DocumentName,
		doc.DocumentLink,
		doc.StorageObject,
		doc.UploadedBy,
		doc.UploadTime,
		models.ApprovalPending,
		models.ReviewPending,
	)
	if err != nil {
		r.logger.Error("Failed to create document",
			zap.String("name", doc.DocumentName),
			zap.Error(err))
		return fmt.Errorf("failed to create document: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	doc.ID = id
	doc.ApprovalStatus = models.ApprovalPending
	doc.ReviewStatus = models.ReviewPending
	return nil
}

// GetByID retrieves a document by id. Returns (nil, nil) when absent.
func (r *DocumentRepository) GetByID(id int64) (*models.Document, error) {
	query := "SELECT " + documentColumns + " FROM documents WHERE id = ?"

	doc, err := scanDocument(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get document", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return doc, nil
}

// ListAll returns every document, newest first
func (r *DocumentRepository) ListAll() ([]*models.Document, error) {
	return r.list("SELECT "+documentColumns+" FROM documents ORDER BY upload_time DESC, id DESC")
}

// ListByUploader returns the uploader's documents, exact username match
func (r *DocumentRepository) ListByUploader(uploader string) ([]*models.Document, error) {
	return r.list(
		"SELECT "+documentColumns+" FROM documents WHERE uploaded_by = ? ORDER BY upload_time DESC, id DESC",
		uploader,
	)
}

// SearchByUploader matches on a username substring. Kept for the legacy
// listing endpoint, which filtered with LIKE.
func (r *DocumentRepository) SearchByUploader(fragment string) ([]*models.Document, error) {
	return r.list(
		"SELECT "+documentColumns+" FROM documents WHERE uploaded_by LIKE ? ORDER BY upload_time DESC, id DESC",
		"%"+fragment+"%",
	)
}

// ListApproved returns documents awaiting review, newest first
func (r *DocumentRepository) ListApproved() ([]*models.Document, error) {
	return r.list(
		"SELECT "+documentColumns+" FROM documents WHERE approval_status = ? ORDER BY upload_time DESC, id DESC",
		models.ApprovalApproved,
	)
}

// SetApproval records an approval decision on a single document.
// Returns the number of rows affected; zero means the id is unknown.
func (r *DocumentRepository) SetApproval(id int64, status, approvedBy string, approvalTime time.Time) (int64, error) {
	result, err := r.db.Exec(`
		UPDATE documents
		SET approval_status = ?, approved_by = ?, approval_time = ?
		WHERE id = ?`,
		status, approvedBy, approvalTime, id,
	)
	if err != nil {
		r.logger.Error("Failed to set approval",
			zap.Int64("id", id),
			zap.String("status", status),
			zap.Error(err))
		return 0, fmt.Errorf("failed to set approval: %w", err)
	}
	return result.RowsAffected()
}

// SetReviewForUploader records a review decision on every one of the
// uploader's documents whose approval_status is Approved. Pending rows
// are never touched. Returns the number of rows affected.
func (r *DocumentRepository) SetReviewForUploader(uploader, status, reviewer string, reviewTime time.Time) (int64, error) {
	result, err := r.db.Exec(`
		UPDATE documents
		SET review_status = ?, reviewer = ?, review_time = ?
		WHERE uploaded_by = ? AND approval_status = ?`,
		status, reviewer, reviewTime, uploader, models.ApprovalApproved,
	)
	if err != nil {
		r.logger.Error("Failed to set review",
			zap.String("uploader", uploader),
			zap.String("status", status),
			zap.Error(err))
		return 0, fmt.Errorf("failed to set review: %w", err)
	}
	return result.RowsAffected()
}

func (r *DocumentRepository) list(query string, args ...interface{}) ([]*models.Document, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		r.logger.Error("Failed to list documents", zap.Error(err))
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []*models.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDocument(row rowScanner) (*models.Document, error) {
	var doc models.Document
	var approvedBy, reviewer sql.NullString
	var approvalTime, reviewTime sql.NullTime

	err := row.Scan(
		&doc.ID,
		&doc.DocumentName,
		&doc.DocumentLink,
		&doc.StorageObject,
		&doc.UploadedBy,
		&doc.UploadTime,
		&doc.ApprovalStatus,
		&approvedBy,
		&approvalTime,
		&doc.ReviewStatus,
		&reviewer,
		&reviewTime,
	)
	if err != nil {
		return nil, err
	}

	if approvedBy.Valid {
		doc.ApprovedBy = &approvedBy.String
	}
	if approvalTime.Valid {
		doc.ApprovalTime = &approvalTime.Time
	}
	if reviewer.Valid {
		doc.Reviewer = &reviewer.String
	}
	if reviewTime.Valid {
		doc.ReviewTime = &reviewTime.Time
	}
	return &doc, nil
}
