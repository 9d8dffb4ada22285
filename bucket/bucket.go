package bucket

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/jsphweid/midilib/constants"
	"github.com/pkg/errors"
)

const s3Scheme = "s3://"

// Store is an opaque blob store holding whole strings under keys.
type Store interface {
	Upload(ctx context.Context, key string, data string) error
	Download(ctx context.Context, key string) (string, error)
}

// FileStore keeps blobs as files below Root.
type FileStore struct {
	Root string
}

func (s FileStore) path(key string) string {
	if s.Root == "" {
		return filepath.FromSlash(key)
	}
	return filepath.Join(s.Root, filepath.FromSlash(key))
}

func (s FileStore) Upload(ctx context.Context, key string, data string) error {
	path := s.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0777); err != nil {
		return errors.Wrapf(err, "could not create directory for %v", path)
	}
	if err := os.WriteFile(path, []byte(data), 0666); err != nil {
		return errors.Wrapf(err, "could not write %v", path)
	}
	return nil
}

func (s FileStore) Download(ctx context.Context, key string) (string, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		return "", errors.Wrapf(err, "could not read %v", s.path(key))
	}
	return string(data), nil
}

type S3Store struct {
	Bucket string
	client *s3.S3
}

// NewS3Store builds a client from the environment. When an endpoint is
// configured path-style addressing is used so local S3 servers work.
func NewS3Store(bucketName string) (*S3Store, error) {
	cfg := &aws.Config{
		Region: aws.String(constants.GetS3Region()),
	}
	if endpoint := constants.GetS3Endpoint(); endpoint != "" {
		cfg.Endpoint = aws.String(endpoint)
		cfg.S3ForcePathStyle = aws.Bool(true)
	}
	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "could not create a new S3 session")
	}
	return NewS3StoreWithSession(bucketName, sess), nil
}

func NewS3StoreWithSession(bucketName string, sess *session.Session) *S3Store {
	return &S3Store{Bucket: bucketName, client: s3.New(sess)}
}

func (s *S3Store) Upload(ctx context.Context, key string, data string) error {
	_, err := s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader([]byte(data)),
	})
	if err != nil {
		return errors.Wrapf(err, "could not upload s3://%v/%v", s.Bucket, key)
	}
	return nil
}

func (s *S3Store) Download(ctx context.Context, key string) (string, error) {
	out, err := s.client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return "", errors.Wrapf(err, "could not download s3://%v/%v", s.Bucket, key)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return "", errors.Wrapf(err, "could not read body of s3://%v/%v", s.Bucket, key)
	}
	return string(data), nil
}

// SplitS3Path turns s3://bucket/some/key into its bucket and key.
func SplitS3Path(path string) (string, string, error) {
	if !strings.HasPrefix(path, s3Scheme) {
		return "", "", errors.Errorf("%v is not an s3 path", path)
	}
	bucketName, key, _ := strings.Cut(strings.TrimPrefix(path, s3Scheme), "/")
	if bucketName == "" || key == "" {
		return "", "", errors.Errorf("%v needs both a bucket and a key", path)
	}
	return bucketName, key, nil
}

// ForPath picks the store a path lives in and the key inside that store.
// Paths without a scheme are local files.
func ForPath(path string) (Store, string, error) {
	if strings.HasPrefix(path, s3Scheme) {
		bucketName, key, err := SplitS3Path(path)
		if err != nil {
			return nil, "", err
		}
		store, err := NewS3Store(bucketName)
		if err != nil {
			return nil, "", err
		}
		return store, key, nil
	}
	return FileStore{}, path, nil
}

func WriteString(ctx context.Context, path string, data string) error {
	store, key, err := ForPath(path)
	if err != nil {
		return err
	}
	return store.Upload(ctx, key, data)
}

func ReadString(ctx context.Context, path string) (string, error) {
	store, key, err := ForPath(path)
	if err != nil {
		return "", err
	}
	return store.Download(ctx, key)
}

// Join appends name to a local or s3 path.
func Join(base string, name string) string {
	if strings.HasPrefix(base, s3Scheme) {
		return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(name, "/")
	}
	return filepath.Join(base, name)
}
