package station

import (
	"context"

	"github.com/npsdash/backend-go/internal/models"
)

// Directory lists the stations located inside a bounding box. Results are
// truncated at the directory's page cap.
type Directory interface {
	StationsWithin(ctx context.Context, box models.BoundingBox) ([]models.Candidate, error)
}
