package contentstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	appErr "github.com/lectern-dev/lectern/internal/pkg/errors"
)

type s3Config struct {
	Endpoint  string `json:"endpoint"`
	SecretID  string `json:"secret_id"`
	SecretKey string `json:"secret_key"`
	Bucket    string `json:"bucket"`
	Region    string `json:"region"`
	Prefix    string `json:"prefix"`
	UsePath   bool   `json:"use_path"`
}

type s3Store struct {
	client *s3.Client
	bucket string
	prefix string
}

func init() {
	register("s3", createS3Store)
}

func createS3Store(data interface{}) (Store, error) {
	cfg := &s3Config{}
	if err := decodeConfig(data, cfg); err != nil {
		return nil, err
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	var creds aws.CredentialsProvider
	if cfg.SecretID != "" && cfg.SecretKey != "" {
		creds = credentials.NewStaticCredentialsProvider(cfg.SecretID, cfg.SecretKey, "")
	} else {
		// No explicit keys in config; fall back to the ambient chain
		// (env, shared config, instance role).
		awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(cfg.Region))
		if err != nil {
			return nil, err
		}
		creds = awsCfg.Credentials
	}
	client := s3.New(s3.Options{
		Region:       cfg.Region,
		Credentials:  creds,
		UsePathStyle: cfg.UsePath,
		BaseEndpoint: optionalEndpoint(cfg.Endpoint),
	})
	return &s3Store{
		client: client,
		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
	}, nil
}

func optionalEndpoint(endpoint string) *string {
	if endpoint == "" {
		return nil
	}
	return aws.String(endpoint)
}

func (s *s3Store) key(chapterID string) string {
	if s.prefix == "" {
		return chapterID + ".md"
	}
	return path.Join(s.prefix, chapterID+".md")
}

func (s *s3Store) Read(ctx context.Context, chapterID string) ([]byte, error) {
	if strings.ContainsAny(chapterID, `/\`) || chapterID == "" {
		return nil, fmt.Errorf("invalid chapter id: %w", appErr.ErrInvalid)
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(chapterID)),
	})
	if err != nil {
		var nokey *types.NoSuchKey
		if errors.As(err, &nokey) {
			return nil, fmt.Errorf("chapter %s: %w", chapterID, appErr.ErrNotFound)
		}
		return nil, err
	}
	defer out.Body.Close()
	return io.ReadAll(out.Body)
}

func (s *s3Store) List(ctx context.Context) ([]string, error) {
	prefix := ""
	if s.prefix != "" {
		prefix = s.prefix + "/"
	}
	var ids []string
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, obj := range page.Contents {
			name := strings.TrimPrefix(aws.ToString(obj.Key), prefix)
			if !strings.HasSuffix(name, ".md") || strings.Contains(name, "/") {
				continue
			}
			ids = append(ids, strings.TrimSuffix(name, ".md"))
		}
	}
	return ids, nil
}
