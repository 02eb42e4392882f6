package storage

import (
	"context"
	"fmt"
	"path"
	"time"

	"github.com/google/uuid"
)

// ArchiveRepository stores generated export files and hands out temporary links
type ArchiveRepository interface {
	Put(ctx context.Context, objectPath string, data []byte, contentType string) error
	PresignedURL(ctx context.Context, objectPath string, expiry time.Duration) (string, error)
}

// GenerateObjectPath creates a unique object path for a tenant's export file:
// <tenant>/<yyyy>/<mm>/<uuid>_<fileName>
func GenerateObjectPath(tenantID, fileName string, now time.Time) string {
	name := fmt.Sprintf("%s_%s", uuid.NewString(), path.Base(fileName))
	return path.Join(tenantID, now.Format("2006"), now.Format("01"), name)
}
