package workflow

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/Mbarathm345672005/docuflow/internal/models"
	"github.com/Mbarathm345672005/docuflow/internal/notify"
	"github.com/Mbarathm345672005/docuflow/internal/repository"
	"github.com/Mbarathm345672005/docuflow/internal/storage"
)

type fakeStore struct {
	stored   []string
	deleted  []string
	storeErr error
}

func (s *fakeStore) Store(ctx context.Context, name string, content []byte) (storage.StoredObject, error) {
	if s.storeErr != nil {
		return storage.StoredObject{}, s.storeErr
	}
	s.stored = append(s.stored, name)
	return storage.StoredObject{Name: name, PublicURL: "http://files.test/" + name}, nil
}

func (s *fakeStore) Delete(ctx context.Context, name string) error {
	s.deleted = append(s.deleted, name)
	return nil
}

type fakeQueue struct {
	messages []notify.Message
}

func (q *fakeQueue) Enqueue(msg notify.Message) {
	q.messages = append(q.messages, msg)
}

type engineFixture struct {
	engine    *Engine
	db        *sql.DB
	documents *repository.DocumentRepository
	store     *fakeStore
	queue     *fakeQueue
}

func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	// In-memory sqlite is per-connection; keep the pool at one.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	schema, err := os.ReadFile(filepath.Join("..", "..", "migrations", "001_initial_schema.sql"))
	if err != nil {
		t.Fatalf("failed to read schema: %v", err)
	}
	if _, err := db.Exec(string(schema)); err != nil {
		t.Fatalf("failed to apply schema: %v", err)
	}

	logger := zap.NewNop()
	users := repository.NewUserRepository(db, logger)
	seed := []struct{ username, email, role string }{
		{"alice", "alice@example.com", models.RoleUploader},
		{"bob", "bob@example.com", models.RoleApprover},
		{"carol", "carol@example.com", models.RoleReviewer},
		{"root", "root@example.com", models.RoleAdmin},
	}
	for _, s := range seed {
		err := users.Create(&models.User{
			FirstName:    "Test",
			LastName:     "User",
			Username:     s.username,
			Email:        s.email,
			PasswordHash: "x",
			Role:         s.role,
		})
		if err != nil {
			t.Fatalf("failed to seed user %s: %v", s.username, err)
		}
	}

	documents := repository.NewDocumentRepository(db, logger)
	store := &fakeStore{}
	queue := &fakeQueue{}
	return &engineFixture{
		engine:    NewEngine(documents, users, store, queue, logger),
		db:        db,
		documents: documents,
		store:     store,
		queue:     queue,
	}
}

// makeTestPDF builds a minimal one-page PDF with a correct xref table,
// enough for the mupdf-backed validator to open it.
func makeTestPDF(t *testing.T) []byte {
	t.Helper()

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")

	offsets := make([]int, 4)
	writeObj := func(n int, body string) {
		offsets[n] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", n, body)
	}
	writeObj(1, "<< /Type /Catalog /Pages 2 0 R >>")
	writeObj(2, "<< /Type /Pages /Kids [3 0 R] /Count 1 >>")
	writeObj(3, "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>")

	xref := buf.Len()
	buf.WriteString("xref\n0 4\n0000000000 65535 f \n")
	for n := 1; n <= 3; n++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[n])
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size 4 /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", xref)
	return buf.Bytes()
}

func (f *engineFixture) submit(t *testing.T, uploader string) *models.Document {
	t.Helper()
	doc, err := f.engine.Submit(context.Background(), SubmitRequest{
		FileName:   "report.pdf",
		Content:    makeTestPDF(t),
		UploadedBy: uploader,
	})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	return doc
}

func TestSubmit(t *testing.T) {
	f := newEngineFixture(t)

	doc := f.submit(t, "alice")
	if doc.ID == 0 {
		t.Error("Submit() did not assign an id")
	}
	if doc.ApprovalStatus != models.ApprovalPending || doc.ReviewStatus != models.ReviewPending {
		t.Errorf("Submit() statuses = %q/%q, want Pending/Pending", doc.ApprovalStatus, doc.ReviewStatus)
	}
	if doc.DocumentLink == "" {
		t.Error("Submit() did not set a retrieval link")
	}
	if len(f.store.stored) != 1 {
		t.Fatalf("store calls = %d, want 1", len(f.store.stored))
	}

	if len(f.queue.messages) != 1 {
		t.Fatalf("queued messages = %d, want 1", len(f.queue.messages))
	}
	msg := f.queue.messages[0]
	if msg.Event != notify.EventNewUpload {
		t.Errorf("message event = %q, want %q", msg.Event, notify.EventNewUpload)
	}
	if len(msg.To) != 1 || msg.To[0] != "bob@example.com" {
		t.Errorf("message recipients = %v, want the approver", msg.To)
	}
}

func TestSubmitValidation(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()
	pdf := makeTestPDF(t)

	cases := []struct {
		name string
		req  SubmitRequest
	}{
		{"missing uploader", SubmitRequest{FileName: "a.pdf", Content: pdf}},
		{"empty file", SubmitRequest{FileName: "a.pdf", UploadedBy: "alice"}},
		{"wrong extension", SubmitRequest{FileName: "a.txt", Content: pdf, UploadedBy: "alice"}},
		{"not a pdf", SubmitRequest{FileName: "a.pdf", Content: []byte("hello"), UploadedBy: "alice"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.engine.Submit(ctx, tc.req)
			if !errors.Is(err, ErrValidation) {
				t.Errorf("Submit() error = %v, want ErrValidation", err)
			}
		})
	}

	if len(f.store.stored) != 0 {
		t.Errorf("store calls = %d, want 0 for rejected uploads", len(f.store.stored))
	}
	if len(f.queue.messages) != 0 {
		t.Errorf("queued messages = %d, want 0 for rejected uploads", len(f.queue.messages))
	}
}

func TestSubmitStoreFailure(t *testing.T) {
	f := newEngineFixture(t)
	f.store.storeErr = errors.New("bucket unreachable")

	_, err := f.engine.Submit(context.Background(), SubmitRequest{
		FileName:   "report.pdf",
		Content:    makeTestPDF(t),
		UploadedBy: "alice",
	})
	if !errors.Is(err, ErrStorage) {
		t.Errorf("Submit() error = %v, want ErrStorage", err)
	}
}

func TestSubmitCleansUpOrphanOnInsertFailure(t *testing.T) {
	f := newEngineFixture(t)

	// Force the metadata insert to fail after the object is stored.
	if _, err := f.db.Exec("DROP TABLE documents"); err != nil {
		t.Fatalf("failed to drop table: %v", err)
	}

	_, err := f.engine.Submit(context.Background(), SubmitRequest{
		FileName:   "report.pdf",
		Content:    makeTestPDF(t),
		UploadedBy: "alice",
	})
	if err == nil {
		t.Fatal("Submit() error = nil, want insert failure")
	}
	if len(f.store.stored) != 1 {
		t.Fatalf("store calls = %d, want 1", len(f.store.stored))
	}
	if len(f.store.deleted) != 1 || f.store.deleted[0] != f.store.stored[0] {
		t.Errorf("deleted = %v, want the stored object %v", f.store.deleted, f.store.stored)
	}
}

func TestDecideApprove(t *testing.T) {
	f := newEngineFixture(t)
	doc := f.submit(t, "alice")
	f.queue.messages = nil

	got, err := f.engine.Decide(context.Background(), doc.ID, models.ApprovalApproved, "bob")
	if err != nil {
		t.Fatalf("Decide() error = %v", err)
	}
	if got.ApprovalStatus != models.ApprovalApproved {
		t.Errorf("ApprovalStatus = %q, want Approved", got.ApprovalStatus)
	}
	if got.ApprovedBy == nil || *got.ApprovedBy != "bob" {
		t.Errorf("ApprovedBy = %v, want bob", got.ApprovedBy)
	}
	if got.ApprovalTime == nil {
		t.Error("ApprovalTime not set")
	}

	// Uploader is told, reviewers get the ready-for-review notice.
	if len(f.queue.messages) != 2 {
		t.Fatalf("queued messages = %d, want 2", len(f.queue.messages))
	}
	events := map[string][]string{}
	for _, msg := range f.queue.messages {
		events[msg.Event] = msg.To
	}
	if to := events[notify.EventApproved]; len(to) != 1 || to[0] != "alice@example.com" {
		t.Errorf("approved notice recipients = %v, want the uploader", to)
	}
	if to := events[notify.EventReadyForReview]; len(to) != 1 || to[0] != "carol@example.com" {
		t.Errorf("ready-for-review recipients = %v, want the reviewer", to)
	}
}

func TestDecideUnapprove(t *testing.T) {
	f := newEngineFixture(t)
	doc := f.submit(t, "alice")
	f.queue.messages = nil

	got, err := f.engine.Decide(context.Background(), doc.ID, models.ApprovalUnapproved, "bob")
	if err != nil {
		t.Fatalf("Decide() error = %v", err)
	}
	if got.ApprovalStatus != models.ApprovalUnapproved {
		t.Errorf("ApprovalStatus = %q, want Unapproved", got.ApprovalStatus)
	}

	if len(f.queue.messages) != 1 {
		t.Fatalf("queued messages = %d, want 1", len(f.queue.messages))
	}
	if f.queue.messages[0].Event != notify.EventUnapproved {
		t.Errorf("message event = %q, want %q", f.queue.messages[0].Event, notify.EventUnapproved)
	}
}

func TestDecideErrors(t *testing.T) {
	f := newEngineFixture(t)
	doc := f.submit(t, "alice")
	ctx := context.Background()

	if _, err := f.engine.Decide(ctx, doc.ID, "Maybe", "bob"); !errors.Is(err, ErrValidation) {
		t.Errorf("Decide(bad decision) error = %v, want ErrValidation", err)
	}
	if _, err := f.engine.Decide(ctx, 9999, models.ApprovalApproved, "bob"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Decide(unknown id) error = %v, want ErrNotFound", err)
	}
	if _, err := f.engine.Decide(ctx, doc.ID, models.ApprovalApproved, "alice"); !errors.Is(err, ErrAuth) {
		t.Errorf("Decide(uploader acting) error = %v, want ErrAuth", err)
	}
	if _, err := f.engine.Decide(ctx, doc.ID, models.ApprovalApproved, "ghost"); !errors.Is(err, ErrAuth) {
		t.Errorf("Decide(unknown user) error = %v, want ErrAuth", err)
	}

	// Admin may act in any role.
	if _, err := f.engine.Decide(ctx, doc.ID, models.ApprovalApproved, "root"); err != nil {
		t.Errorf("Decide(admin) error = %v", err)
	}
}

func TestReview(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	first := f.submit(t, "alice")
	second := f.submit(t, "alice")
	pending := f.submit(t, "alice")
	for _, doc := range []*models.Document{first, second} {
		if _, err := f.engine.Decide(ctx, doc.ID, models.ApprovalApproved, "bob"); err != nil {
			t.Fatalf("Decide() error = %v", err)
		}
	}
	f.queue.messages = nil

	rows, err := f.engine.Review(ctx, "alice", models.ReviewApproved, "carol")
	if err != nil {
		t.Fatalf("Review() error = %v", err)
	}
	if rows != 2 {
		t.Errorf("Review() rows = %d, want 2", rows)
	}

	got, err := f.documents.GetByID(pending.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.ReviewStatus != models.ReviewPending {
		t.Errorf("pending doc review_status = %q, want Pending", got.ReviewStatus)
	}

	if len(f.queue.messages) != 1 {
		t.Fatalf("queued messages = %d, want 1", len(f.queue.messages))
	}
	msg := f.queue.messages[0]
	if msg.Event != notify.EventReviewDecided {
		t.Errorf("message event = %q, want %q", msg.Event, notify.EventReviewDecided)
	}
	recipients := map[string]bool{}
	for _, to := range msg.To {
		recipients[to] = true
	}
	if !recipients["bob@example.com"] || !recipients["alice@example.com"] {
		t.Errorf("recipients = %v, want approver and uploader", msg.To)
	}
}

func TestReviewNoMatchingDocuments(t *testing.T) {
	f := newEngineFixture(t)

	rows, err := f.engine.Review(context.Background(), "alice", models.ReviewRejected, "carol")
	if err != nil {
		t.Fatalf("Review() error = %v", err)
	}
	if rows != 0 {
		t.Errorf("Review() rows = %d, want 0", rows)
	}
	if len(f.queue.messages) != 0 {
		t.Errorf("queued messages = %d, want 0 when nothing changed", len(f.queue.messages))
	}
}

func TestReviewErrors(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	if _, err := f.engine.Review(ctx, "", models.ReviewApproved, "carol"); !errors.Is(err, ErrValidation) {
		t.Errorf("Review(empty uploader) error = %v, want ErrValidation", err)
	}
	if _, err := f.engine.Review(ctx, "alice", "Shredded", "carol"); !errors.Is(err, ErrValidation) {
		t.Errorf("Review(bad decision) error = %v, want ErrValidation", err)
	}
	if _, err := f.engine.Review(ctx, "alice", models.ReviewApproved, "bob"); !errors.Is(err, ErrAuth) {
		t.Errorf("Review(approver acting) error = %v, want ErrAuth", err)
	}
	if _, err := f.engine.Review(ctx, "alice", models.ReviewApproved, "root"); err != nil {
		t.Errorf("Review(admin) error = %v", err)
	}
}

func TestQueryViews(t *testing.T) {
	f := newEngineFixture(t)
	ctx := context.Background()

	doc := f.submit(t, "alice")
	f.submit(t, "bob")
	if _, err := f.engine.Decide(ctx, doc.ID, models.ApprovalApproved, "bob"); err != nil {
		t.Fatalf("Decide() error = %v", err)
	}

	all, err := f.engine.ListAll()
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	if len(all) != 2 {
		t.Errorf("ListAll() len = %d, want 2", len(all))
	}

	mine, err := f.engine.ListByUploader("alice")
	if err != nil {
		t.Fatalf("ListByUploader() error = %v", err)
	}
	if len(mine) != 1 {
		t.Errorf("ListByUploader(alice) len = %d, want 1", len(mine))
	}

	approved, err := f.engine.ListApproved()
	if err != nil {
		t.Fatalf("ListApproved() error = %v", err)
	}
	if len(approved) != 1 || approved[0].ID != doc.ID {
		t.Errorf("ListApproved() = %+v, want alice's approved document", approved)
	}
}
