package sources

import (
	"archive/zip"
	"bytes"
	"errors"
	"io"
	"path/filepath"
	"strings"
)

var ErrNoSpreadsheet = errors.New("no spreadsheet found in archive")

// FirstSpreadsheetInZip returns the first .xlsx/.xls/.csv entry of a zip
// archive together with its name.
func FirstSpreadsheetInZip(content []byte) ([]byte, string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, "", err
	}
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || strings.HasPrefix(filepath.Base(f.Name), "~$") {
			continue
		}
		switch strings.ToLower(filepath.Ext(f.Name)) {
		case ".xlsx", ".xls", ".csv":
		default:
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, "", err
		}
		blob, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return nil, "", err
		}
		return blob, f.Name, nil
	}
	return nil, "", ErrNoSpreadsheet
}
