// Package importer locates the JSON document used to seed blog posts.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const s3Scheme = "s3://"

// ErrNoS3Client is returned when an s3:// location is given without a client.
var ErrNoS3Client = errors.New("s3 location requires an s3 client")

// Source opens the import document.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
	String() string
}

// S3API is the part of the S3 client used to fetch objects.
type S3API interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// FileSource reads the document from the local filesystem.
type FileSource struct {
	Path string
}

// Open opens the file at Path.
func (f FileSource) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.Path, err)
	}
	return file, nil
}

func (f FileSource) String() string { return f.Path }

// S3Source reads the document from an S3 object.
type S3Source struct {
	Client S3API
	Bucket string
	Key    string
}

// Open fetches the object. The caller must close the returned body.
func (s S3Source) Open(ctx context.Context) (io.ReadCloser, error) {
	out, err := s.Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(s.Key),
	})
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", s.String(), err)
	}
	return out.Body, nil
}

func (s S3Source) String() string { return s3Scheme + s.Bucket + "/" + s.Key }

// IsS3 reports whether location names an S3 object.
func IsS3(location string) bool {
	return strings.HasPrefix(location, s3Scheme)
}

// ParseLocation turns a configured location into a Source. Locations of the
// form s3://bucket/key use client; anything else is a local path.
func ParseLocation(location string, client S3API) (Source, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, errors.New("empty import location")
	}
	if !IsS3(location) {
		return FileSource{Path: location}, nil
	}

	bucket, key, ok := strings.Cut(strings.TrimPrefix(location, s3Scheme), "/")
	if !ok || bucket == "" || key == "" {
		return nil, fmt.Errorf("invalid s3 location %q, want s3://bucket/key", location)
	}
	if client == nil {
		return nil, ErrNoS3Client
	}
	return S3Source{Client: client, Bucket: bucket, Key: key}, nil
}
