package rds

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rds/types"

	"github.com/agentstation/catalogsync/pkg/catalog"
)

// Tag keys read by DefaultTransformer.
const (
	TagOwner     = "owner"
	TagSystem    = "system"
	TagLifecycle = "lifecycle"
)

// DefaultTransformer maps a DB instance to a Resource entity of type
// "database". Owner, system and lifecycle come from instance tags when set.
func DefaultTransformer(_ context.Context, db types.DBInstance) (catalog.Entity, error) {
	identifier := aws.ToString(db.DBInstanceIdentifier)
	if identifier == "" {
		return catalog.Entity{}, fmt.Errorf("instance %s has no identifier", aws.ToString(db.DBInstanceArn))
	}

	tags := tagMap(db.TagList)
	owner := tags[TagOwner]
	if owner == "" {
		owner = "unknown"
	}

	spec := map[string]any{
		"type":  "database",
		"owner": owner,
	}
	if system := tags[TagSystem]; system != "" {
		spec["system"] = system
	}
	if lifecycle := tags[TagLifecycle]; lifecycle != "" {
		spec["lifecycle"] = lifecycle
	}

	labels := map[string]string{}
	if engine := aws.ToString(db.Engine); engine != "" {
		labels["amazonaws.com/engine"] = catalog.SanitizeName(engine)
	}
	if class := aws.ToString(db.DBInstanceClass); class != "" {
		labels["amazonaws.com/instance-class"] = catalog.SanitizeName(class)
	}
	if region := Region(db); region != "" {
		labels["amazonaws.com/region"] = region
	}

	var description string
	if engine := aws.ToString(db.Engine); engine != "" {
		description = strings.TrimSpace(engine + " " + aws.ToString(db.EngineVersion))
	}

	return catalog.Entity{
		APIVersion: catalog.DefaultAPIVersion,
		Kind:       "Resource",
		Metadata: catalog.Metadata{
			Name:        catalog.SanitizeName(identifier),
			Title:       identifier,
			Description: description,
			Labels:      labels,
		},
		Spec: spec,
	}, nil
}

func tagMap(tags []types.Tag) map[string]string {
	out := make(map[string]string, len(tags))
	for _, t := range tags {
		out[strings.ToLower(aws.ToString(t.Key))] = aws.ToString(t.Value)
	}
	return out
}
