package observability

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus/push"
)

// JobName groups this ETL's series on the Pushgateway.
const JobName = "county_strain_etl"

// Push sends the run's metrics to a Pushgateway. Batch runs exit before any
// scrape, so this is the only way their metrics are recorded. An empty url
// disables pushing.
func Push(ctx context.Context, url string, m *Metrics) error {
	if url == "" {
		return nil
	}
	err := push.New(url, JobName).
		Gatherer(m.Gatherer).
		PushContext(ctx)
	if err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}
