package gcstorage

import (
	"context"
	"fmt"
	"io"

	"cloud.google.com/go/storage"

	"fieldsync/filestore"
)

var _ filestore.FileManager = (*GCSDriver)(nil)

type GCSDriver struct {
	client     *storage.Client
	BucketName string
}

func New(bucketName string) (*GCSDriver, error) {
	ctx := context.Background()
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, err
	}

	return &GCSDriver{
		BucketName: bucketName,
		client:     client,
	}, nil
}

func (gcsd *GCSDriver) Create(dir, fileName string, reader io.Reader) error {
	ctx := context.Background()
	obj := gcsd.client.Bucket(gcsd.BucketName).Object(dir + fileName)
	w := obj.NewWriter(ctx)
	if _, err := io.Copy(w, reader); err != nil {
		return err
	}
	return w.Close()
}

func (gcsd *GCSDriver) Get(dir, fileName string) (io.ReadCloser, error) {
	ctx := context.Background()
	obj := gcsd.client.Bucket(gcsd.BucketName).Object(dir + fileName)
	return obj.NewReader(ctx)
}

// GetPublicURL returns the canonical public url for the object. The
// bucket's own access policy decides whether it actually resolves.
func (gcsd *GCSDriver) GetPublicURL(dir, fileName string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s%s", gcsd.BucketName, dir, fileName)
}
