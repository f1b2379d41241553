package rds

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/arn"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/aws/aws-sdk-go-v2/service/rds/types"

	"github.com/agentstation/catalogsync/pkg/errors"
	"github.com/agentstation/catalogsync/pkg/provider"
	"github.com/agentstation/catalogsync/pkg/reconciler"
)

// Provider constants.
const (
	Kind                = "RDSEntityProvider"
	ConfigKey           = "aws"
	AnnotationARN       = "amazonaws.com/arn"
	CollectionInstances = "instances"
)

// Schema locates RDS providers under catalog.providers.aws.<id>.region.
var Schema = provider.Schema{
	Kind:          Kind,
	Key:           ConfigKey,
	EndpointField: "region",
}

// Options customizes the engines built for RDS providers.
type Options struct {
	Filter    reconciler.Filter[types.DBInstance]
	Transform reconciler.Transformer[types.DBInstance] // defaults to DefaultTransformer
	Input     *rds.DescribeDBInstancesInput

	// NewClient overrides client construction, mainly for tests.
	NewClient func(ctx context.Context, cfg provider.Config) (DescribeDBInstancesAPI, error)
}

// NewClient creates an RDS client for the configured region. Static keys are
// used when configured; otherwise the default AWS credential chain applies.
func NewClient(ctx context.Context, cfg provider.Config) (*rds.Client, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Endpoint),
	}
	if cfg.Credentials.HasStaticKeys() {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				cfg.Credentials.AccessKeyID,
				cfg.Credentials.SecretAccessKey,
				cfg.Credentials.SessionToken,
			),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, errors.WrapResource("load", "aws config", cfg.ID, err)
	}
	return rds.NewFromConfig(awsCfg), nil
}

// NewEngine builds the reconciliation engine for one configured RDS provider.
func NewEngine(ctx context.Context, cfg provider.Config, opts Options) (*reconciler.Engine, error) {
	newClient := opts.NewClient
	if newClient == nil {
		newClient = func(ctx context.Context, cfg provider.Config) (DescribeDBInstancesAPI, error) {
			return NewClient(ctx, cfg)
		}
	}
	client, err := newClient(ctx, cfg)
	if err != nil {
		return nil, err
	}

	transform := opts.Transform
	if transform == nil {
		transform = DefaultTransformer
	}

	return reconciler.New(cfg.Identity(), reconciler.WithCollection(&reconciler.Collection[types.DBInstance]{
		Name:             CollectionInstances,
		Source:           NewSource(client, opts.Input),
		VendorAnnotation: AnnotationARN,
		Filter:           opts.Filter,
		Transform:        transform,
	}))
}

// Region returns the region an instance lives in, derived from its ARN.
func Region(db types.DBInstance) string {
	parsed, err := arn.Parse(aws.ToString(db.DBInstanceArn))
	if err != nil {
		return ""
	}
	return parsed.Region
}

// AccountID returns the AWS account owning an instance, derived from its ARN.
func AccountID(db types.DBInstance) string {
	parsed, err := arn.Parse(aws.ToString(db.DBInstanceArn))
	if err != nil {
		return ""
	}
	return parsed.AccountID
}
