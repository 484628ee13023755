package export

import (
	"fmt"
	"io"
	"time"

	"github.com/Mbarathm345672005/docuflow/internal/models"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// Register writes the document register as an XLSX workbook. One row per
// document, workflow state columns included, for offline auditing.
type Register struct {
	logger *zap.Logger
}

// NewRegister creates a new register writer
func NewRegister(logger *zap.Logger) *Register {
	return &Register{logger: logger}
}

var headers = []string{
	"ID", "Document", "Link", "Uploaded By", "Upload Time",
	"Approval Status", "Approved By", "Approval Time",
	"Review Status", "Reviewer", "Review Time",
}

// Write renders docs into w as an XLSX workbook
func (r *Register) Write(docs []*models.Document, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Documents"
	idx, err := f.NewSheet(sheet)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("failed to drop default sheet: %w", err)
	}

	for col, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}

	for row, doc := range docs {
		values := []interface{}{
			doc.ID,
			doc.DocumentName,
			doc.DocumentLink,
			doc.UploadedBy,
			doc.UploadTime.Format(time.RFC3339),
			doc.ApprovalStatus,
			orEmpty(doc.ApprovedBy),
			orEmptyTime(doc.ApprovalTime),
			doc.ReviewStatus,
			orEmpty(doc.Reviewer),
			orEmptyTime(doc.ReviewTime),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("failed to write row %d: %w", row+2, err)
			}
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	r.logger.Info("Document register exported", zap.Int("documents", len(docs)))
	return nil
}

func orEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func orEmptyTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}
