package model

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const (
	s3Scheme = "s3://"
	fileMode = 0o644
)

// Decode reads and validates a JSON artifact.
func Decode(r io.Reader) (*Forest, error) {
	var f Forest
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("%w: decoding artifact: %v", ErrInvalidModel, err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Load reads an artifact from the local filesystem.
func Load(path string) (*Forest, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening model %s: %w", path, err)
	}
	defer file.Close()

	f, err := Decode(file)
	if err != nil {
		return nil, fmt.Errorf("loading model %s: %w", path, err)
	}
	return f, nil
}

// Save writes the artifact as indented JSON.
func Save(path string, f *Forest) error {
	if err := f.Validate(); err != nil {
		return err
	}
	b, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling model: %w", err)
	}
	if err := os.WriteFile(path, b, fileMode); err != nil {
		return fmt.Errorf("writing model %s: %w", path, err)
	}
	return nil
}

// ObjectGetter is the subset of the S3 client used to fetch artifacts.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Config describes the object store holding s3:// artifacts.
type S3Config struct {
	// "http://127.0.0.1:9000", empty for AWS.
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
}

// NewS3Client connects to the configured endpoint with static credentials,
// or anonymously when no access key is set.
func NewS3Client(cfg S3Config) *s3.Client {
	return s3.NewFromConfig(aws.Config{Region: cfg.Region}, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
		if cfg.AccessKey != "" {
			o.Credentials = credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")
		} else {
			o.Credentials = aws.AnonymousCredentials{}
		}
	})
}

// LoadS3 fetches an artifact from bucket/key.
func LoadS3(ctx context.Context, client ObjectGetter, bucket, key string) (*Forest, error) {
	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("fetching model s3://%s/%s: %w", bucket, key, err)
	}
	defer out.Body.Close()

	f, err := Decode(out.Body)
	if err != nil {
		return nil, fmt.Errorf("loading model s3://%s/%s: %w", bucket, key, err)
	}
	return f, nil
}

// ParseS3URI splits s3://bucket/key. ok is false for anything else.
func ParseS3URI(uri string) (bucket, key string, ok bool) {
	if !strings.HasPrefix(uri, s3Scheme) {
		return "", "", false
	}
	bucket, key, found := strings.Cut(strings.TrimPrefix(uri, s3Scheme), "/")
	if !found || bucket == "" || key == "" {
		return "", "", false
	}
	return bucket, key, true
}

// Open loads the artifact at location, which is either a local path or an
// s3://bucket/key URI resolved against cfg.
func Open(ctx context.Context, location string, cfg S3Config) (*Forest, error) {
	if bucket, key, ok := ParseS3URI(location); ok {
		return LoadS3(ctx, NewS3Client(cfg), bucket, key)
	}
	if strings.HasPrefix(location, s3Scheme) {
		return nil, fmt.Errorf("malformed model location %q, expected s3://bucket/key", location)
	}
	return Load(location)
}
