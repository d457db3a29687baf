package station

import (
	"context"

	"github.com/npsdash/backend-go/internal/cdo"
	"github.com/npsdash/backend-go/internal/models"
)

// CDODirectory queries the CDO station endpoint for one data category.
type CDODirectory struct {
	client       *cdo.Client
	dataCategory string
	startDate    string
	pageCap      int
}

var _ Directory = (*CDODirectory)(nil)

func NewCDODirectory(client *cdo.Client, dataCategory, startDate string, pageCap int) *CDODirectory {
	return &CDODirectory{
		client:       client,
		dataCategory: dataCategory,
		startDate:    startDate,
		pageCap:      pageCap,
	}
}

func (d *CDODirectory) StationsWithin(ctx context.Context, box models.BoundingBox) ([]models.Candidate, error) {
	return d.client.Stations(ctx, cdo.StationQuery{
		Box:          box,
		DataCategory: d.dataCategory,
		StartDate:    d.startDate,
		Limit:        d.pageCap,
	})
}
