package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	gjwt "github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidPath   = errors.New("invalid object path")
	ErrObjectMissing = errors.New("object not found")
	ErrInvalidSign   = errors.New("invalid or expired signature")
)

const signedPrefix = "/storage/v1/object/sign/"

var timeNow = time.Now

// BlobStore keeps uploaded objects under <root>/<bucket>/<path>.
type BlobStore struct {
	root    string
	baseURL string
	secret  []byte
}

func NewBlobStore(root, baseURL, signingSecret string) *BlobStore {
	return &BlobStore{
		root:    root,
		baseURL: strings.TrimRight(baseURL, "/"),
		secret:  []byte(signingSecret),
	}
}

type signedClaims struct {
	Bucket string `json:"bucket"`
	Path   string `json:"path"`
	gjwt.RegisteredClaims
}

func cleanObjectKey(bucket, objectPath string) (string, string, error) {
	bucket = strings.TrimSpace(bucket)
	objectPath = strings.TrimPrefix(strings.TrimSpace(objectPath), "/")
	if bucket == "" || objectPath == "" || strings.ContainsAny(bucket, `/\`) {
		return "", "", ErrInvalidPath
	}
	for _, seg := range strings.Split(objectPath, "/") {
		if seg == "" || seg == "." || seg == ".." || strings.Contains(seg, `\`) {
			return "", "", ErrInvalidPath
		}
	}
	return bucket, path.Clean(objectPath), nil
}

func (s *BlobStore) fsPath(bucket, objectPath string) string {
	return filepath.Join(s.root, bucket, filepath.FromSlash(objectPath))
}

// Upload writes data at bucket/path, replacing any existing object.
func (s *BlobStore) Upload(ctx context.Context, bucket, objectPath string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	bucket, objectPath, err := cleanObjectKey(bucket, objectPath)
	if err != nil {
		return err
	}

	target := s.fsPath(bucket, objectPath)
	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return fmt.Errorf("create object dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), ".upload-*")
	if err != nil {
		return fmt.Errorf("create temp object: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write object: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close object: %w", err)
	}
	return os.Rename(tmp.Name(), target)
}

// Open returns a reader for bucket/path.
func (s *BlobStore) Open(ctx context.Context, bucket, objectPath string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	bucket, objectPath, err := cleanObjectKey(bucket, objectPath)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(s.fsPath(bucket, objectPath))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrObjectMissing
	}
	return f, err
}

// SignedURL returns a URL serving bucket/path until ttl elapses.
func (s *BlobStore) SignedURL(bucket, objectPath string, ttl time.Duration) (string, error) {
	bucket, objectPath, err := cleanObjectKey(bucket, objectPath)
	if err != nil {
		return "", err
	}

	now := timeNow()
	claims := signedClaims{
		Bucket: bucket,
		Path:   objectPath,
		RegisteredClaims: gjwt.RegisteredClaims{
			IssuedAt:  gjwt.NewNumericDate(now),
			ExpiresAt: gjwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token, err := gjwt.NewWithClaims(gjwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign object url: %w", err)
	}

	return s.baseURL + signedPrefix + url.PathEscape(bucket) + "/" + escapeObjectPath(objectPath) + "?token=" + url.QueryEscape(token), nil
}

// VerifySignedToken checks that token grants access to bucket/path.
func (s *BlobStore) VerifySignedToken(token, bucket, objectPath string) error {
	bucket, objectPath, err := cleanObjectKey(bucket, objectPath)
	if err != nil {
		return err
	}

	claims := &signedClaims{}
	parsed, err := gjwt.ParseWithClaims(token, claims, func(t *gjwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*gjwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidSign
		}
		return s.secret, nil
	}, gjwt.WithTimeFunc(timeNow))
	if err != nil || !parsed.Valid {
		return ErrInvalidSign
	}
	if claims.Bucket != bucket || claims.Path != objectPath {
		return ErrInvalidSign
	}
	return nil
}

func escapeObjectPath(p string) string {
	segs := strings.Split(p, "/")
	for i, seg := range segs {
		segs[i] = url.PathEscape(seg)
	}
	return strings.Join(segs, "/")
}
