package config

import (
	"context"

	"mariadbpaas/pkg/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3 is the global object-storage client used by the backup engine.
var S3 *s3.Client

// ConnectS3 builds the S3 client from static credentials. A non-empty
// S3_ENDPOINT points the client at a MinIO-style deployment; path-style
// addressing is required there.
func ConnectS3(ctx context.Context) error {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(Cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			Cfg.S3AccessKey,
			Cfg.S3SecretKey,
			"",
		)))
	if err != nil {
		return err
	}

	S3 = s3.NewFromConfig(cfg, func(o *s3.Options) {
		if Cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(Cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})

	logger.Infof("S3 client ready, bucket %s", Cfg.S3Bucket)
	return nil
}
