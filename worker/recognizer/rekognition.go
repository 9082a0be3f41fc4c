package recognizer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
	"github.com/aws/smithy-go"
	"go.uber.org/zap"
)

// RekognitionClient wraps AWS Rekognition DetectLabels and maps its typed
// exceptions onto the error kinds.
type RekognitionClient struct {
	client *rekognition.Client
	logger *zap.Logger
}

func NewRekognitionClient(ctx context.Context, region string, logger *zap.Logger) (*RekognitionClient, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &RekognitionClient{
		client: rekognition.NewFromConfig(cfg),
		logger: logger,
	}, nil
}

func (r *RekognitionClient) DetectLabels(ctx context.Context, bucket, key string) (string, error) {
	out, err := r.client.DetectLabels(ctx, &rekognition.DetectLabelsInput{
		Image: &types.Image{
			S3Object: &types.S3Object{
				Bucket: aws.String(bucket),
				Name:   aws.String(key),
			},
		},
	})
	if err != nil {
		return "", r.classify(key, err)
	}

	labels := make([]Label, 0, len(out.Labels))
	for _, l := range out.Labels {
		labels = append(labels, Label{
			Name:       aws.ToString(l.Name),
			Confidence: float64(aws.ToFloat32(l.Confidence)),
		})
	}

	data, err := json.Marshal(labels)
	if err != nil {
		return "", ErrInternal
	}

	return string(data), nil
}

func (r *RekognitionClient) classify(key string, err error) *Error {
	var invalidFormat *types.InvalidImageFormatException
	var tooLarge *types.ImageTooLargeException
	var throughput *types.ProvisionedThroughputExceededException

	switch {
	case errors.As(err, &invalidFormat):
		return ErrInvalidFormat
	case errors.As(err, &tooLarge):
		return ErrTooLarge
	case errors.As(err, &throughput):
		return ErrThrottled
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorCode() == "ThrottlingException" {
		return ErrThrottled
	}

	r.logger.Error("Unexpected recognition fault",
		zap.String("key", key),
		zap.Error(err),
	)
	return ErrInternal
}
