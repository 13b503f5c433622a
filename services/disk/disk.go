package disk

import (
	"fmt"
	"io"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"

	"fieldsync/filestore"
)

var _ filestore.FileManager = (*DiskDriver)(nil)

// DiskDriver keeps objects on the local filesystem under a base dir,
// analogous to a bucket name. Used in development and tests.
type DiskDriver struct {
	baseDir string
}

func New(baseDir string) *DiskDriver {
	return &DiskDriver{baseDir: baseDir}
}

func (dd *DiskDriver) path(dir string) string {
	if !strings.HasSuffix(dir, "/") {
		dir = dir + "/"
	}
	return dd.baseDir + "/" + dir
}

func (dd *DiskDriver) Create(dir, fileName string, reader io.Reader) error {
	path := dd.path(dir)
	if err := os.MkdirAll(path, 0755); err != nil {
		log.WithError(err).Errorln("Failed to create dir")
		return err
	}

	file, err := os.Create(path + fileName)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = io.Copy(file, reader)
	return err
}

// Get opens a file in read only mode.
// Caller should take care of closing the returned io.ReadCloser.
func (dd *DiskDriver) Get(dir, fileName string) (io.ReadCloser, error) {
	log.WithFields(log.Fields{
		"Path":     dd.path(dir),
		"FileName": fileName,
	}).Debug("DiskDriver Opening file")

	return os.Open(dd.path(dir) + fileName)
}

func (dd *DiskDriver) GetPublicURL(dir, fileName string) string {
	return fmt.Sprintf("file://%s%s", dd.path(dir), fileName)
}
