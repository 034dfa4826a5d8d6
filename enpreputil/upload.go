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

package enpreputil

import (
	"context"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/spatialmodel/enprep"
	"github.com/spatialmodel/enprep/cloud"
)

// uploader stages output destined for blob storage in a local directory
// and copies it to its destination once preprocessing is done.
type uploader struct {
	// dest is the blob storage location of the output folder.
	dest string
	// dir is the local directory where output is staged.
	dir string
	err error
}

// maybeUpload checks whether the given output folder refers to a blob
// storage location. If it does, then a temporary local directory is returned,
// whose contents will be uploaded when the upload stage runs. Otherwise
// the output folder itself is returned.
func (u *uploader) maybeUpload(outputFolder string) string {
	if !cloud.IsBlob(outputFolder) {
		return outputFolder
	}
	u.dest = outputFolder
	u.dir, u.err = ioutil.TempDir("", "enprep")
	return u.dir
}

// uploadOutput returns a stage that copies all staged files to their
// blob storage destination.
func (u *uploader) uploadOutput(ctx context.Context) enprep.Stage {
	return enprep.Stage{
		Name:     "upload output",
		Requires: []enprep.Product{enprep.ProcessedOutput},
		Run: func(*enprep.Project) error {
			if u.err != nil {
				return fmt.Errorf("enprep: creating staging directory: %v", u.err)
			}
			if u.dest == "" {
				return nil
			}
			a, err := cloud.NewArchive(ctx, u.dest, nil)
			if err != nil {
				return fmt.Errorf("enprep: opening output location %s: %v", u.dest, err)
			}
			return filepath.Walk(u.dir, func(path string, info os.FileInfo, err error) error {
				if err != nil || info.IsDir() {
					return err
				}
				rel, err := filepath.Rel(u.dir, path)
				if err != nil {
					return err
				}
				if err := a.ArchiveAs(ctx, path, rel); err != nil {
					return fmt.Errorf("enprep: uploading %s to %s: %v", path, u.dest, err)
				}
				return nil
			})
		},
	}
}
