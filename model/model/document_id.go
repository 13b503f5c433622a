package model

import (
	"fmt"
	"regexp"
	"strings"
)

// ParsedDocumentID is the (prefix, number) pair extracted from a scanned
// document id. Derived only, never persisted.
type ParsedDocumentID struct {
	Prefix string `json:"prefix"`
	Number string `json:"number"`
	FullID string `json:"full_id"`
}

// Scanned ids are human entered or OCR output, e.g. "INV-420", "po_123".
var documentIDPattern = regexp.MustCompile(`^([A-Za-z]+)[-_]?(\d+)$`)

// MalformedIDError is returned when a scanned id does not match the
// expected <prefix><separator><number> format.
type MalformedIDError struct {
	ScannedID string
}

func (e *MalformedIDError) Error() string {
	return fmt.Sprintf("malformed document id %q", e.ScannedID)
}

// ParseDocumentID extracts the alphabetic prefix and numeric part of a
// scanned document id. The prefix is uppercased and the full id is
// normalized to PREFIX-NUMBER regardless of the scanned separator.
func ParseDocumentID(scannedID string) (*ParsedDocumentID, error) {
	match := documentIDPattern.FindStringSubmatch(strings.TrimSpace(scannedID))
	if match == nil {
		return nil, &MalformedIDError{ScannedID: scannedID}
	}

	prefix := strings.ToUpper(match[1])
	return &ParsedDocumentID{
		Prefix: prefix,
		Number: match[2],
		FullID: prefix + "-" + match[2],
	}, nil
}
