package storage

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// StoredObject describes a durably stored file
type StoredObject struct {
	Name      string
	PublicURL string
}

// ObjectStore accepts a byte stream and returns a durable public
// retrieval URL. Delete exists for best-effort orphan compensation when
// the metadata insert fails after a successful store.
type ObjectStore interface {
	Store(ctx context.Context, name string, content []byte) (StoredObject, error)
	Delete(ctx context.Context, name string) error
}

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9._\-]`)

// ObjectName builds a collision-free object name from the original
// filename: unix-nano timestamp prefix plus a short uuid.
func ObjectName(originalName string) string {
	base := unsafeNameChars.ReplaceAllString(filepath.Base(originalName), "_")
	if base == "" || base == "." {
		base = "document.pdf"
	}
	short := strings.Split(uuid.NewString(), "-")[0]
	return fmt.Sprintf("%d_%s_%s", time.Now().UnixNano(), short, base)
}
