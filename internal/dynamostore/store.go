// Package dynamostore reads historical Copilot metrics and seat snapshots
// from DynamoDB tables populated by an external collector.
package dynamostore

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/ncecere/copilot_usage_dashboard/internal/metrics"
	"github.com/ncecere/copilot_usage_dashboard/internal/seats"
	"github.com/ncecere/copilot_usage_dashboard/internal/source"
	"github.com/ncecere/copilot_usage_dashboard/internal/timeutil"
)

const defaultLookbackDays = 31

// Options configures the store. TablePrefix is required; tables are named
// <prefix>-metrics-history and <prefix>-seats-history.
type Options struct {
	Region          string
	Endpoint        string
	Profile         string
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	TablePrefix     string
}

// scanClient is the slice of the DynamoDB API the store uses.
type scanClient interface {
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// Store implements the metrics and seats sources on top of DynamoDB scans.
type Store struct {
	client       scanClient
	metricsTable string
	seatsTable   string
	now          func() time.Time
}

// New loads AWS configuration and constructs a store.
func New(ctx context.Context, opts Options) (*Store, error) {
	if opts.TablePrefix == "" {
		return nil, fmt.Errorf("dynamo table prefix must be provided")
	}

	loadOpts := []func(*awscfg.LoadOptions) error{}
	if opts.Region != "" {
		loadOpts = append(loadOpts, awscfg.WithRegion(opts.Region))
	}
	if opts.Profile != "" {
		loadOpts = append(loadOpts, awscfg.WithSharedConfigProfile(opts.Profile))
	}
	if opts.AccessKeyID != "" && opts.SecretAccessKey != "" {
		staticProvider := credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, opts.SessionToken)
		loadOpts = append(loadOpts, awscfg.WithCredentialsProvider(staticProvider))
	}

	awsCfg, err := awscfg.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
	})
	return newWithClient(client, opts.TablePrefix), nil
}

func newWithClient(client scanClient, tablePrefix string) *Store {
	return &Store{
		client:       client,
		metricsTable: tablePrefix + "-metrics-history",
		seatsTable:   tablePrefix + "-seats-history",
		now:          time.Now,
	}
}

// Metrics scans the metrics history table for daily records in the filter's
// range, defaulting to the trailing 31 days.
func (s *Store) Metrics(ctx context.Context, filter source.Filter) ([]metrics.Metrics, error) {
	since, until := filter.Since, filter.Until
	if since.IsZero() || until.IsZero() {
		fallback := timeutil.TrailingDays(s.now(), defaultLookbackDays)
		if since.IsZero() {
			since = fallback.Since
		}
		if until.IsZero() {
			until = fallback.Until
		}
	}

	cond := expression.Name("date").Between(
		expression.Value(timeutil.FormatDay(since)),
		expression.Value(timeutil.FormatDay(until)),
	)
	cond = withScopeConditions(cond, filter)

	items, err := s.scanAll(ctx, s.metricsTable, cond)
	if err != nil {
		return nil, err
	}

	records := []metrics.Metrics{}
	if err := attributevalue.UnmarshalListOfMaps(items, &records); err != nil {
		return nil, fmt.Errorf("unmarshal metrics items: %w", err)
	}
	return records, nil
}

// Seats scans the seats history table for the snapshot taken on the filter's
// until day, defaulting to today. Returns nil when no snapshot exists.
func (s *Store) Seats(ctx context.Context, filter source.Filter) (*seats.Snapshot, error) {
	day := filter.Until
	if day.IsZero() {
		day = s.now()
	}

	cond := expression.Name("date").Equal(expression.Value(timeutil.FormatDay(day)))
	cond = withScopeConditions(cond, filter)

	items, err := s.scanAll(ctx, s.seatsTable, cond)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}

	var snapshot seats.Snapshot
	if err := attributevalue.UnmarshalMap(items[0], &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal seats item: %w", err)
	}
	return &snapshot, nil
}

func withScopeConditions(cond expression.ConditionBuilder, filter source.Filter) expression.ConditionBuilder {
	if filter.Enterprise != "" {
		cond = cond.And(expression.Name("enterprise").Equal(expression.Value(filter.Enterprise)))
	}
	if filter.Organization != "" {
		cond = cond.And(expression.Name("organization").Equal(expression.Value(filter.Organization)))
	}
	if filter.Team != "" {
		cond = cond.And(expression.Name("team").Equal(expression.Value(filter.Team)))
	}
	return cond
}

func (s *Store) scanAll(ctx context.Context, table string, cond expression.ConditionBuilder) ([]map[string]types.AttributeValue, error) {
	expr, err := expression.NewBuilder().WithFilter(cond).Build()
	if err != nil {
		return nil, fmt.Errorf("build scan expression: %w", err)
	}

	input := &dynamodb.ScanInput{
		TableName:                 aws.String(table),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}

	var items []map[string]types.AttributeValue
	for {
		out, err := s.client.Scan(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		items = append(items, out.Items...)
		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
	return items, nil
}
