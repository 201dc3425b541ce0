package propertyapi

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/gta-invest/propertymap/internal/platform/fixture"
	"github.com/gta-invest/propertymap/pkg/model"
)

// Dataset is the pair of collections every view is derived from.
type Dataset struct {
	Properties     []model.Property
	LocationScores []model.LocationScore
	// FromFixture is set when the API was unreachable and bundled data was used.
	FromFixture bool
}

// Load fetches properties and location scores concurrently. If either fetch
// fails both are abandoned; a network failure then yields the fixture pair so
// the two collections always come from the same source.
func (c *Client) Load(ctx context.Context) (Dataset, error) {
	var ds Dataset
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var props []model.Property
		if err := c.get(gctx, "/properties", nil, &props); err != nil {
			return err
		}
		ds.Properties = props
		return nil
	})
	g.Go(func() error {
		var scores []model.LocationScore
		if err := c.get(gctx, "/location-scores", nil, &scores); err != nil {
			return err
		}
		ds.LocationScores = scores
		return nil
	})

	err := g.Wait()
	if err == nil {
		return ds, nil
	}
	if c.shouldFallBack(err) {
		c.log.FallbackUsed("dataset", err)
		return Dataset{
			Properties:     fixture.Properties(),
			LocationScores: fixture.LocationScores(),
			FromFixture:    true,
		}, nil
	}
	return Dataset{}, err
}
