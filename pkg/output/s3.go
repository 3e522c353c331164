package output

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

// DefaultUploadTimeout bounds a single upload
const DefaultUploadTimeout = 10 * time.Second

// S3Config holds the connection settings for an S3 compatible store
type S3Config struct {
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	Prefix    string `mapstructure:"prefix"`
	PublicURL string `mapstructure:"public_url"` // Optional CDN base for returned URLs
}

// Enabled reports whether enough settings are present to upload
func (c S3Config) Enabled() bool {
	return c.Bucket != "" && c.Region != ""
}

// S3Publisher uploads rendered images to a bucket
type S3Publisher struct {
	client  s3iface.S3API
	config  S3Config
	timeout time.Duration
}

// NewS3Publisher creates a publisher backed by a new AWS session
func NewS3Publisher(cfg S3Config) (*S3Publisher, error) {
	awsConfig := &aws.Config{
		Region:           aws.String(cfg.Region),
		S3ForcePathStyle: aws.Bool(true),
	}
	if cfg.AccessKey != "" {
		awsConfig.Credentials = credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, "")
	}
	if cfg.Endpoint != "" {
		awsConfig.Endpoint = aws.String(cfg.Endpoint)
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 session: %w", err)
	}
	return NewS3PublisherWithClient(s3.New(sess), cfg), nil
}

// NewS3PublisherWithClient creates a publisher around an existing client
func NewS3PublisherWithClient(client s3iface.S3API, cfg S3Config) *S3Publisher {
	return &S3Publisher{client: client, config: cfg, timeout: DefaultUploadTimeout}
}

// Key returns the object key for name, honouring the configured prefix
func (p *S3Publisher) Key(name string) string {
	if p.config.Prefix == "" {
		return name
	}
	return p.config.Prefix + "/" + name
}

// PublishPNG uploads PNG bytes under name and returns the object location
func (p *S3Publisher) PublishPNG(ctx context.Context, name string, data []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	key := p.Key(name)
	_, err := p.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(p.config.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String("image/png"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}

	if p.config.PublicURL != "" {
		return p.config.PublicURL + "/" + key, nil
	}
	return fmt.Sprintf("s3://%s/%s", p.config.Bucket, key), nil
}
