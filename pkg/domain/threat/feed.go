package threat

import (
	"context"
)

// Feed is a pull-based indicator source. A fetch failure returns an empty
// set plus the error; callers treat it as non-fatal.
//
//go:generate mockery --name=Feed --dir=. --output=../../mocks --filename=threat_feed_mock.go --case=underscore --with-expecter
type Feed interface {
	FetchIndicators(ctx context.Context, sourceRef string) ([]Indicator, error)
}
