package writers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"

	"github.com/Vector/vector-reviews-scraper/serpapi"
)

type Uploader interface {
	Upload(ctx context.Context, bucketName, key string, body io.Reader) error
}

var _ PageWriter = (*S3Writer)(nil)

// S3Writer mirrors the file layout into a bucket, one object per file name.
type S3Writer struct {
	uploader Uploader
	bucket   string
	prefix   string
}

func NewS3Writer(uploader Uploader, bucket, prefix string) *S3Writer {
	return &S3Writer{
		uploader: uploader,
		bucket:   bucket,
		prefix:   prefix,
	}
}

func (w *S3Writer) WriteInfo(ctx context.Context, dataID string, doc serpapi.Document) error {
	return w.upload(ctx, InfoFileName(dataID), doc)
}

func (w *S3Writer) WritePage(ctx context.Context, page Page) error {
	return w.upload(ctx, PageFileName(page.DataID, page.Index), page.Doc)
}

func (w *S3Writer) Close() error {
	return nil
}

func (w *S3Writer) key(name string) string {
	if w.prefix == "" {
		return name
	}

	return path.Join(w.prefix, name)
}

func (w *S3Writer) upload(ctx context.Context, name string, doc serpapi.Document) error {
	data, err := Encode(doc)
	if err != nil {
		return err
	}

	key := w.key(name)

	if err := w.uploader.Upload(ctx, w.bucket, key, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("upload s3://%s/%s: %w", w.bucket, key, err)
	}

	return nil
}
