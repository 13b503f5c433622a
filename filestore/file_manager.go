package filestore

import (
	"fmt"
	"io"
)

// FileManager abstracts the object storage holding batch photos and
// generated PDFs. Paths follow the {companyId}/{scannedId}/ convention.
// Object deletion is owned by the capture service, not exposed here.
type FileManager interface {
	Create(dir, fileName string, reader io.Reader) error
	Get(dir, fileName string) (io.ReadCloser, error)
	GetPublicURL(dir, fileName string) string
}

// GetBatchDir returns the storage dir for a company's batch, keyed by the
// scanned reference id.
func GetBatchDir(companyID, referenceID string) string {
	return fmt.Sprintf("%s/%s/", companyID, referenceID)
}

// GetBatchPDFPathAndName returns the location of a batch's generated PDF.
func GetBatchPDFPathAndName(companyID, referenceID string) (string, string) {
	return GetBatchDir(companyID, referenceID), fmt.Sprintf("%s.pdf", referenceID)
}

// GetPhotoPathAndName returns the location of a single batch photo.
func GetPhotoPathAndName(companyID, referenceID, fileName string) (string, string) {
	return GetBatchDir(companyID, referenceID), fileName
}
