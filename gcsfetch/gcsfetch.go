// Package gcsfetch downloads export results from a Cloud Storage bucket.
package gcsfetch

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// ObjectStore lists and reads objects of a bucket.
type ObjectStore interface {
	List(ctx context.Context, bucket, prefix string) ([]string, error)
	Open(ctx context.Context, bucket, name string) (io.ReadCloser, error)
}

// GCS is an ObjectStore backed by Cloud Storage.
type GCS struct {
	client *storage.Client
}

func NewGCS(ctx context.Context, opts ...option.ClientOption) (*GCS, error) {
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, eris.Wrap(err, "gcsfetch: create storage client")
	}
	return &GCS{client: client}, nil
}

func (g *GCS) Close() error {
	return g.client.Close()
}

func (g *GCS) List(ctx context.Context, bucket, prefix string) ([]string, error) {
	it := g.client.Bucket(bucket).Objects(ctx, &storage.Query{Prefix: prefix})
	var names []string
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "gcsfetch: list gs://%s/%s", bucket, prefix)
		}
		names = append(names, attrs.Name)
	}
	return names, nil
}

func (g *GCS) Open(ctx context.Context, bucket, name string) (io.ReadCloser, error) {
	r, err := g.client.Bucket(bucket).Object(name).NewReader(ctx)
	if err != nil {
		return nil, eris.Wrapf(err, "gcsfetch: open gs://%s/%s", bucket, name)
	}
	return r, nil
}

// Fetch downloads every object under prefix into dir, at most concurrency
// at a time, and returns the local paths in name order. Object names keep
// their folders below the prefix's folder, so equal base names in different
// folders do not collide. Folder placeholder objects are skipped.
func Fetch(ctx context.Context, store ObjectStore, bucket, prefix, dir string, concurrency int) ([]string, error) {
	names, err := store.List(ctx, bucket, prefix)
	if err != nil {
		return nil, err
	}
	sort.Strings(names)

	var wanted []string
	for _, name := range names {
		if strings.HasSuffix(name, "/") {
			continue
		}
		wanted = append(wanted, name)
	}
	if len(wanted) == 0 {
		logrus.Warnf("Nothing under gs://%s/%s", bucket, prefix)
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, eris.Wrapf(err, "gcsfetch: create %s", dir)
	}

	paths := make([]string, len(wanted))
	for i, name := range wanted {
		path, err := localPath(dir, prefix, name)
		if err != nil {
			return nil, err
		}
		paths[i] = path
	}

	g, ctx := errgroup.WithContext(ctx)
	if concurrency > 0 {
		g.SetLimit(concurrency)
	}
	for i, name := range wanted {
		i, name := i, name
		g.Go(func() error {
			path := paths[i]
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return eris.Wrapf(err, "gcsfetch: create %s", filepath.Dir(path))
			}
			if err := download(ctx, store, bucket, name, path); err != nil {
				return err
			}
			logrus.Infof("Downloaded gs://%s/%s to %s", bucket, name, path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return paths, nil
}

// localPath maps an object name to a file under dir, relative to the folder
// part of prefix.
func localPath(dir, prefix, name string) (string, error) {
	folder := prefix[:strings.LastIndex(prefix, "/")+1]
	rel := filepath.FromSlash(strings.TrimPrefix(name, folder))
	if !filepath.IsLocal(rel) {
		return "", eris.Errorf("gcsfetch: object %s does not map inside %s", name, dir)
	}
	return filepath.Join(dir, rel), nil
}

// download writes to a temporary file first so an interrupted transfer
// never leaves a truncated file under the final name.
func download(ctx context.Context, store ObjectStore, bucket, name, path string) (err error) {
	r, err := store.Open(ctx, bucket, name)
	if err != nil {
		return err
	}
	defer r.Close()

	tmp, err := os.CreateTemp(filepath.Dir(path), ".fetch-*")
	if err != nil {
		return eris.Wrap(err, "gcsfetch: create temp file")
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		return eris.Wrapf(err, "gcsfetch: copy %s", name)
	}
	if err = tmp.Close(); err != nil {
		return eris.Wrapf(err, "gcsfetch: close %s", tmp.Name())
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return eris.Wrapf(err, "gcsfetch: rename to %s", path)
	}
	return nil
}
