package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"time"

	"donationhub/pkg/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectPutter is the part of the S3 client the exporter needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type DonationLister interface {
	Donations(ctx context.Context, filter types.DonationFilter) ([]*types.DonationRecord, error)
}

// exportRow is one line of an export file.
type exportRow struct {
	*types.Donation

	DonorName  *string `json:"donorName"`
	DonorEmail string  `json:"donorEmail"`
	NGOName    *string `json:"ngoName"`
}

// DonationExporter writes donations to S3 as newline delimited JSON.
type DonationExporter struct {
	client    ObjectPutter
	donations DonationLister
	bucket    string
	prefix    string
	now       func() time.Time
}

func NewDonationExporter(client ObjectPutter, donations DonationLister, bucket, prefix string) *DonationExporter {
	return &DonationExporter{
		client:    client,
		donations: donations,
		bucket:    bucket,
		prefix:    prefix,
		now:       time.Now,
	}
}

// Export uploads every donation matching filter and returns the object key
// and the number of rows written.
func (e *DonationExporter) Export(ctx context.Context, filter types.DonationFilter) (string, int, error) {
	if e.bucket == "" {
		return "", 0, fmt.Errorf("export bucket is not configured")
	}

	records, err := e.donations.Donations(ctx, filter)
	if err != nil {
		return "", 0, fmt.Errorf("failed to list donations for export: %w", err)
	}

	body, err := encodeRows(records)
	if err != nil {
		return "", 0, err
	}

	key := e.objectKey(filter)

	_, err = e.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(e.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/x-ndjson"),
	})
	if err != nil {
		return "", 0, fmt.Errorf("failed to upload export %s: %w", key, err)
	}

	return key, len(records), nil
}

func (e *DonationExporter) objectKey(filter types.DonationFilter) string {
	name := "donations"
	if filter.Status != nil {
		name = fmt.Sprintf("donations-%s", *filter.Status)
	}

	stamp := e.now().UTC().Format("20060102T150405Z")
	return path.Join(e.prefix, fmt.Sprintf("%s-%s.jsonl", name, stamp))
}

func encodeRows(records []*types.DonationRecord) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)

	for _, record := range records {
		row := exportRow{
			Donation:   &record.Donation,
			DonorName:  record.DonorName,
			DonorEmail: record.DonorEmail,
			NGOName:    record.NGOName,
		}
		if err := enc.Encode(row); err != nil {
			return nil, fmt.Errorf("failed to encode donation %s: %w", record.ID, err)
		}
	}

	return buf.Bytes(), nil
}
