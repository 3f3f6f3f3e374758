package instance

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/rileyhilliard/ssmdeploy/internal/errors"
	"github.com/rileyhilliard/ssmdeploy/internal/logger"
)

// Lister fetches every instance visible in the session's region.
type Lister struct {
	client ec2.DescribeInstancesAPIClient
	log    logger.Logger
}

// NewLister creates a lister backed by client.
func NewLister(client ec2.DescribeInstancesAPIClient, log logger.Logger) *Lister {
	if log == nil {
		log = logger.Noop()
	}
	return &Lister{client: client, log: log}
}

// List describes all instances, following NextToken until the last page.
// A failed call returns a nil slice and a classified error; an account with
// no instances returns an empty, non-nil slice.
func (l *Lister) List(ctx context.Context) ([]Instance, error) {
	out := make([]Instance, 0)
	paginator := ec2.NewDescribeInstancesPaginator(l.client, &ec2.DescribeInstancesInput{})

	page := 0
	for paginator.HasMorePages() {
		resp, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, errors.Classify(err, "Couldn't list EC2 instances")
		}
		page++

		instances, err := Flatten(resp.Reservations)
		if err != nil {
			return nil, err
		}
		l.log.Debug("page %d: %d reservations, %d instances", page, len(resp.Reservations), len(instances))
		out = append(out, instances...)
	}

	return out, nil
}
