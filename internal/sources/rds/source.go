// Package rds discovers AWS RDS database instances and reconciles them into
// the catalog as Resource entities, one provider per configured region or
// account.
package rds

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/aws/aws-sdk-go-v2/service/rds/types"

	"github.com/agentstation/catalogsync/pkg/constants"
	"github.com/agentstation/catalogsync/pkg/fetch"
	"github.com/agentstation/catalogsync/pkg/logging"
)

// DescribeDBInstancesAPI is the subset of the RDS client used by Source.
type DescribeDBInstancesAPI interface {
	DescribeDBInstances(ctx context.Context, params *rds.DescribeDBInstancesInput, optFns ...func(*rds.Options)) (*rds.DescribeDBInstancesOutput, error)
}

// Source pulls every DB instance visible to one RDS client.
type Source struct {
	client   DescribeDBInstancesAPI
	input    rds.DescribeDBInstancesInput
	pageSize int32
}

// NewSource creates a Source. input carries optional filters and is copied;
// its Marker and MaxRecords are managed by the source.
func NewSource(client DescribeDBInstancesAPI, input *rds.DescribeDBInstancesInput) *Source {
	s := &Source{client: client, pageSize: constants.DefaultPageSize}
	if input != nil {
		s.input = *input
	}
	return s
}

// Fetch implements reconciler.Source.
func (s *Source) Fetch(ctx context.Context) ([]types.DBInstance, error) {
	instances, err := fetch.All(ctx, s.page)
	if err != nil {
		return nil, err
	}

	logging.FromContext(ctx).Info().
		Int("instances", len(instances)).
		Msg("Retrieved instances from AWS")
	return instances, nil
}

// Identify implements reconciler.Source; the vendor id is the instance ARN.
func (s *Source) Identify(db types.DBInstance) string {
	return aws.ToString(db.DBInstanceArn)
}

func (s *Source) page(ctx context.Context, cursor string) (fetch.Page[types.DBInstance], error) {
	input := s.input
	input.MaxRecords = aws.Int32(s.pageSize)
	input.Marker = nil
	if cursor != "" {
		input.Marker = aws.String(cursor)
	}

	out, err := s.client.DescribeDBInstances(ctx, &input)
	if err != nil {
		return fetch.Page[types.DBInstance]{}, err
	}
	return fetch.Page[types.DBInstance]{
		Items: out.DBInstances,
		Next:  aws.ToString(out.Marker),
	}, nil
}
