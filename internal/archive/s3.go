// Package archive keeps a raw copy of every uploaded image in S3 for
// retention. It is best-effort: the asset store copy is the one users see,
// and archive failures never fail an upload.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsCfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Archiver writes raw image bytes to one bucket.
type Archiver struct {
	s3c    *s3.Client
	bucket string
}

// New builds an Archiver for the bucket. A custom AWS_ENDPOINT_URL (e.g.
// localstack) switches the client to path-style addressing.
func New(ctx context.Context, region, bucket string) (*Archiver, error) {
	cfg, endpoint, err := loadAWS(ctx, region)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}
	s3c := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.UsePathStyle = true
		}
	})
	return &Archiver{s3c: s3c, bucket: bucket}, nil
}

// Put stores the original upload under owner/<id>/<assetID><ext>.
func (a *Archiver) Put(ctx context.Context, ownerID uint, assetID, filename string, data []byte) error {
	ext := strings.ToLower(filepath.Ext(filename))
	key := fmt.Sprintf("owner/%d/%s%s", ownerID, assetID, ext)
	_, err := a.s3c.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return fmt.Errorf("archiving %s: %w", key, err)
	}
	return nil
}

// loadAWS loads the AWS configuration, using a custom endpoint if
// AWS_ENDPOINT_URL is set.
func loadAWS(ctx context.Context, region string) (aws.Config, string, error) {
	endpoint := os.Getenv("AWS_ENDPOINT_URL") // e.g., http://localstack:4566
	if endpoint == "" {
		cfg, err := awsCfg.LoadDefaultConfig(ctx, awsCfg.WithRegion(region))
		return cfg, "", err
	}
	resolver := aws.EndpointResolverWithOptionsFunc(func(service, r string, _ ...any) (aws.Endpoint, error) {
		return aws.Endpoint{
			URL:               endpoint,
			HostnameImmutable: true,
			PartitionID:       "aws",
		}, nil
	})
	cfg, err := awsCfg.LoadDefaultConfig(ctx, awsCfg.WithRegion(region), awsCfg.WithEndpointResolverWithOptions(resolver))
	return cfg, endpoint, err
}
