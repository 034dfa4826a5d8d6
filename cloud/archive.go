/*
Copyright © 2020 the EnPrep authors.
This file is part of EnPrep.

EnPrep is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

EnPrep is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with EnPrep.  If not, see <http://www.gnu.org/licenses/>.
*/

package cloud

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/ioutil"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/sirupsen/logrus"
	"gocloud.dev/blob"
)

// Archive copies files into a directory of a bucket.
type Archive struct {
	bucket *blob.Bucket
	prefix string

	// NewBackOff returns the policy for retrying failed writes.
	NewBackOff func() backoff.BackOff

	Log logrus.FieldLogger
}

// NewArchive returns an archive storing files at location, which can be any
// location accepted by OpenBucket.
func NewArchive(ctx context.Context, location string, log logrus.FieldLogger) (*Archive, error) {
	b, p, err := OpenBucket(ctx, location)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Archive{
		bucket: b,
		prefix: p,
		NewBackOff: func() backoff.BackOff {
			return backoff.NewExponentialBackOff()
		},
		Log: log,
	}, nil
}

// Archive copies the local file at path into the archive, keeping its base
// name. Failed writes are retried.
func (a *Archive) Archive(ctx context.Context, path string) error {
	return a.ArchiveAs(ctx, path, filepath.Base(path))
}

// ArchiveAs copies the local file at path into the archive under the given
// name, which may include slash-separated directories.
func (a *Archive) ArchiveAs(ctx context.Context, path, name string) error {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return fmt.Errorf("cloud: reading file to archive: %v", err)
	}
	key := a.prefix + filepath.ToSlash(name)
	return a.retry(key, func() error {
		return writeBlob(ctx, a.bucket, key, data)
	})
}

// retry runs op until it succeeds or the backoff policy gives up,
// logging each failure.
func (a *Archive) retry(key string, op func() error) error {
	return backoff.RetryNotify(op, a.NewBackOff(),
		func(err error, d time.Duration) {
			a.Log.WithField("key", key).Warnf("%v: retrying in %v", err, d)
		},
	)
}

// Read returns the contents of the archived file with the given name.
func (a *Archive) Read(ctx context.Context, name string) ([]byte, error) {
	return readBlob(ctx, a.bucket, a.prefix+name)
}

// readBlob reads the given blob from the given bucket.
func readBlob(ctx context.Context, bucket *blob.Bucket, key string) ([]byte, error) {
	var b bytes.Buffer
	r, err := bucket.NewReader(ctx, key, nil)
	if err != nil {
		return nil, fmt.Errorf("cloud: reading blob key %s: %v", key, err)
	}
	defer r.Close()
	if _, err = io.Copy(&b, r); err != nil {
		return nil, fmt.Errorf("cloud: reading blob key %s: %v", key, err)
	}
	return b.Bytes(), nil
}

// writeBlob writes the given data to the given bucket.
func writeBlob(ctx context.Context, bucket *blob.Bucket, key string, data []byte) error {
	w, err := bucket.NewWriter(ctx, key, &blob.WriterOptions{})
	if err != nil {
		return fmt.Errorf("cloud: creating writer for blob %s: %v", key, err)
	}
	if _, err = io.Copy(w, bytes.NewReader(data)); err != nil {
		w.Close()
		return fmt.Errorf("cloud: copying blob %s: %v", key, err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("cloud: writing blob %s: %v", key, err)
	}
	return nil
}
