package httpapi

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/Mbarathm345672005/docuflow/internal/workflow"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// maxUploadSize bounds multipart uploads at 20 MiB
const maxUploadSize = 20 << 20

// Upload handles POST /upload: multipart file + uploadedBy field
func (h *Handlers) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

	uploadedBy := c.PostForm("uploadedBy")
	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondError(c, http.StatusBadRequest, "file is required")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, http.StatusBadRequest, "failed to read file")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		respondError(c, http.StatusBadRequest, "failed to read file")
		return
	}

	doc, err := h.engine.Submit(c.Request.Context(), workflow.SubmitRequest{
		FileName:   fileHeader.Filename,
		Content:    content,
		UploadedBy: uploadedBy,
	})
	if err != nil {
		h.logger.Error("Upload failed",
			zap.String("file", fileHeader.Filename),
			zap.String("uploaded_by", uploadedBy),
			zap.Error(err))
		respondWorkflowError(c, err)
		return
	}
	respondCreated(c, doc)
}

// ApproveRequest is the PUT /api/approve/:id body
type ApproveRequest struct {
	ApprovalStatus string `json:"approval_status" binding:"required"`
	ApprovedBy     string `json:"approved_by" binding:"required"`
}

// Approve handles PUT /api/approve/:id
func (h *Handlers) Approve(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid document ID")
		return
	}

	var req ApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "approval_status and approved_by are required")
		return
	}

	doc, err := h.engine.Decide(c.Request.Context(), id, req.ApprovalStatus, req.ApprovedBy)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}
	respondOK(c, doc)
}

// ReviewRequest is the PUT /api/review body
type ReviewRequest struct {
	UploadedBy   string `json:"uploaded_by" binding:"required"`
	ReviewStatus string `json:"review_status" binding:"required"`
	Reviewer     string `json:"reviewer" binding:"required"`
}

// Review handles PUT /api/review. Review applies to all of the
// uploader's currently-Approved documents, not a single id.
func (h *Handlers) Review(c *gin.Context) {
	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "uploaded_by, review_status and reviewer are required")
		return
	}

	count, err := h.engine.Review(c.Request.Context(), req.UploadedBy, req.ReviewStatus, req.Reviewer)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}
	respondOK(c, gin.H{"documents_reviewed": count})
}

// ListDocuments handles GET /api/documents
func (h *Handlers) ListDocuments(c *gin.Context) {
	docs, err := h.engine.ListAll()
	if err != nil {
		respondWorkflowError(c, err)
		return
	}
	respondOK(c, docs)
}

// ListByUploader handles GET /documents?uploadedBy= (exact match)
func (h *Handlers) ListByUploader(c *gin.Context) {
	uploader := c.Query("uploadedBy")
	if uploader == "" {
		respondError(c, http.StatusBadRequest, "uploadedBy is required")
		return
	}

	docs, err := h.engine.ListByUploader(uploader)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}
	respondOK(c, docs)
}

// SearchByUploader handles GET /api/document?uploaded_by=, the legacy
// listing, which matched on a username substring. Behavior preserved for
// API compatibility.
func (h *Handlers) SearchByUploader(c *gin.Context) {
	fragment := c.Query("uploaded_by")
	if fragment == "" {
		respondError(c, http.StatusBadRequest, "uploaded_by is required")
		return
	}

	docs, err := h.engine.SearchByUploader(fragment)
	if err != nil {
		respondWorkflowError(c, err)
		return
	}
	respondOK(c, docs)
}

// ListApproved handles GET /api/approved-documents
func (h *Handlers) ListApproved(c *gin.Context) {
	docs, err := h.engine.ListApproved()
	if err != nil {
		respondWorkflowError(c, err)
		return
	}
	respondOK(c, docs)
}

// ExportDocuments handles GET /api/documents/export, streaming the
// register as an XLSX attachment
func (h *Handlers) ExportDocuments(c *gin.Context) {
	docs, err := h.engine.ListAll()
	if err != nil {
		respondWorkflowError(c, err)
		return
	}

	filename := fmt.Sprintf("documents_%s.xlsx", time.Now().Format("20060102_150405"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	if err := h.register.Write(docs, c.Writer); err != nil {
		h.logger.Error("Failed to export document register", zap.Error(err))
		respondError(c, http.StatusInternalServerError, "export failed")
		return
	}
}
