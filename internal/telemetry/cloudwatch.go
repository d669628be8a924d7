package telemetry

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

// CloudWatchAPI is the subset of the CloudWatch client the submitter uses.
type CloudWatchAPI interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// CloudWatchSubmitter sends every submission as its own PutMetricData call.
type CloudWatchSubmitter struct {
	client CloudWatchAPI
}

var _ Submitter = (*CloudWatchSubmitter)(nil)

// NewCloudWatchSubmitter wraps an existing CloudWatch client.
func NewCloudWatchSubmitter(client CloudWatchAPI) *CloudWatchSubmitter {
	return &CloudWatchSubmitter{client: client}
}

func newCloudWatchClient(ctx context.Context, cfg CloudWatchConfig) (*cloudwatch.Client, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("telemetry: load aws config: %w", err)
	}
	return cloudwatch.NewFromConfig(awsCfg, func(o *cloudwatch.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	}), nil
}

// Submit sends s under namespace.
func (c *CloudWatchSubmitter) Submit(ctx context.Context, namespace string, s Submission) error {
	_, err := c.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(namespace),
		MetricData: []types.MetricDatum{toDatum(s)},
	})
	if err != nil {
		return fmt.Errorf("telemetry: put metric data: %w", err)
	}
	return nil
}

func toDatum(s Submission) types.MetricDatum {
	datum := types.MetricDatum{
		MetricName: aws.String(s.Name),
		Value:      aws.Float64(s.Value),
		Unit:       types.StandardUnit(s.Unit),
		Timestamp:  aws.Time(s.Timestamp),
	}
	if len(s.Dimensions) > 0 {
		datum.Dimensions = make([]types.Dimension, 0, len(s.Dimensions))
		for _, d := range s.Dimensions {
			datum.Dimensions = append(datum.Dimensions, types.Dimension{
				Name:  aws.String(d.Name),
				Value: aws.String(d.Value),
			})
		}
	}
	return datum
}

// isCloudWatchInputError reports whether CloudWatch rejected the request
// because of its content rather than its own health.
func isCloudWatchInputError(err error) bool {
	var (
		invalidValue *types.InvalidParameterValueException
		invalidCombo *types.InvalidParameterCombinationException
		missingParam *types.MissingRequiredParameterException
	)
	return errors.As(err, &invalidValue) || errors.As(err, &invalidCombo) || errors.As(err, &missingParam)
}
