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

// Package cloud stores files in local directories or cloud blob storage.
package cloud

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"gocloud.dev/blob"
	"gocloud.dev/blob/fileblob"
	"gocloud.dev/blob/gcsblob"
	"gocloud.dev/blob/s3blob"
	"gocloud.dev/gcp"
)

// IsBlob reports whether location refers to cloud blob storage rather
// than the local file system.
func IsBlob(location string) bool {
	u, err := url.Parse(location)
	if err != nil {
		return false
	}
	return u.Scheme == "gs" || u.Scheme == "s3"
}

// OpenBucket returns the bucket holding location and the key prefix of
// location within the bucket. location is either a local directory, a
// 'file://' URL, or a URL in the format 'provider://name/prefix' where
// provider is "gs" for Google Cloud Storage or "s3" for AWS S3.
// Local directories are created if they do not exist.
func OpenBucket(ctx context.Context, location string) (*blob.Bucket, string, error) {
	u, err := url.Parse(location)
	if err != nil {
		return nil, "", fmt.Errorf("cloud.OpenBucket: %v", err)
	}
	switch u.Scheme {
	case "", "file":
		dir := location
		if u.Scheme == "file" {
			dir = u.Host + u.Path
		}
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return nil, "", fmt.Errorf("cloud.OpenBucket: %v", err)
		}
		b, err := fileblob.OpenBucket(dir, nil)
		return b, "", err
	case "gs":
		b, err := gsBucket(ctx, u.Host)
		return b, prefix(u.Path), err
	case "s3":
		b, err := s3Bucket(ctx, u.Host)
		return b, prefix(u.Path), err
	default:
		return nil, "", fmt.Errorf("cloud.OpenBucket: invalid provider %s", u.Scheme)
	}
}

// prefix turns a URL path into a key prefix ending in a slash.
func prefix(p string) string {
	p = strings.Trim(path.Clean("/"+p), "/")
	if p == "" {
		return ""
	}
	return p + "/"
}

func gsBucket(ctx context.Context, name string) (*blob.Bucket, error) {
	// See here for information on credentials:
	// https://cloud.google.com/docs/authentication/getting-started
	creds, err := gcp.DefaultCredentials(ctx)
	if err != nil {
		return nil, err
	}
	c, err := gcp.NewHTTPClient(gcp.DefaultTransport(), gcp.CredentialsTokenSource(creds))
	if err != nil {
		return nil, err
	}
	return gcsblob.OpenBucket(ctx, c, name, nil)
}

// s3Bucket opens an s3 storage bucket. It assumes the following
// environment variables are set: AWS_REGION, AWS_ACCESS_KEY_ID, and
// AWS_SECRET_ACCESS_KEY.
func s3Bucket(ctx context.Context, name string) (*blob.Bucket, error) {
	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = "us-east-2"
	}
	c := &aws.Config{
		Region:      aws.String(region),
		Credentials: credentials.NewEnvCredentials(),
	}
	s, err := session.NewSession(c)
	if err != nil {
		return nil, err
	}
	return s3blob.OpenBucket(ctx, s, name, nil)
}
