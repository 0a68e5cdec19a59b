// Package openeew reads raw accelerometer records from the public OpenEEW
// archive on S3. Records are NDJSON files partitioned by country and hour.
package openeew

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/couchcryptid/quake-monitor/internal/domain"
)

// Client lists and fetches accelerometer record files from the archive.
type Client struct {
	client *s3.Client
	bucket string
	logger *slog.Logger
}

// NewClient creates an archive client. The bucket is public, so requests are
// signed with anonymous credentials.
func NewClient(ctx context.Context, bucket, region string, logger *slog.Logger) (*Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(aws.AnonymousCredentials{}),
	)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return &Client{
		client: s3.NewFromConfig(awsCfg),
		bucket: bucket,
		logger: logger,
	}, nil
}

// NewClientWithS3 creates an archive client around a pre-configured S3
// client. Used by tests and custom endpoints.
func NewClientWithS3(client *s3.Client, bucket string, logger *slog.Logger) *Client {
	return &Client{client: client, bucket: bucket, logger: logger}
}

// RecordPrefix builds the archive key prefix for one country and UTC hour.
func RecordPrefix(country string, hour time.Time) string {
	hour = hour.UTC()
	return fmt.Sprintf("records/country_code=%s/year=%04d/month=%02d/day=%02d/hour=%02d/",
		strings.ToLower(country), hour.Year(), int(hour.Month()), hour.Day(), hour.Hour())
}

// ListRecordKeys returns the object keys for all record files in the given
// country and hour partition.
func (c *Client) ListRecordKeys(ctx context.Context, country string, hour time.Time) ([]string, error) {
	prefix := RecordPrefix(country, hour)

	var keys []string
	paginator := s3.NewListObjectsV2Paginator(c.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(c.bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list records under %s: %w", prefix, err)
		}
		for _, obj := range page.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
	}

	c.logger.Debug("listed archive records", "prefix", prefix, "count", len(keys))
	return keys, nil
}

// FetchRecords downloads one record file and decodes its NDJSON lines.
// Blank lines are skipped; a malformed line fails the whole file.
func (c *Client) FetchRecords(ctx context.Context, key string) ([]domain.AccelerometerRecord, error) {
	resp, err := c.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("fetch record %s: %w", key, err)
	}
	defer resp.Body.Close()

	records, err := DecodeRecords(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("decode record %s: %w", key, err)
	}
	return records, nil
}

// FetchHour is a convenience that lists and fetches every record file for a
// country and hour, concatenated in key order.
func (c *Client) FetchHour(ctx context.Context, country string, hour time.Time) ([]domain.AccelerometerRecord, error) {
	keys, err := c.ListRecordKeys(ctx, country, hour)
	if err != nil {
		return nil, err
	}

	var all []domain.AccelerometerRecord
	for _, key := range keys {
		records, err := c.FetchRecords(ctx, key)
		if err != nil {
			return nil, err
		}
		all = append(all, records...)
	}
	return all, nil
}

// DecodeRecords parses NDJSON accelerometer records from r.
func DecodeRecords(r io.Reader) ([]domain.AccelerometerRecord, error) {
	var records []domain.AccelerometerRecord
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var rec domain.AccelerometerRecord
		if err := json.Unmarshal([]byte(text), &rec); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return records, nil
}
