// Package filemgr stores passport documents on local disk and hands back an
// opaque path reference for the passenger record.
package filemgr

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"tengri/utils"
)

// ErrUploadFailed is recoverable and scoped to a single passenger's
// document field; the rest of the record stays valid.
var ErrUploadFailed = errors.New("document upload failed")

var allowedExtensions = []string{".jpg", ".jpeg", ".png", ".webp", ".pdf"}

var allowedMIMEs = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/webp":      true,
	"application/pdf": true,
}

const (
	uploadDir    = "static/uploads/passports"
	thumbDir     = "static/uploads/passports/thumbs"
	thumbWidth   = 320
	maxUploadLen = 10 << 20 // 10 MB
)

// SaveDocument validates and stores one uploaded passport document,
// returning the stored path. Image uploads also get a thumbnail; a failed
// thumbnail never fails the upload.
func SaveDocument(file multipart.File, header *multipart.FileHeader) (string, error) {
	if header.Size > maxUploadLen {
		return "", fmt.Errorf("%w: file too large", ErrUploadFailed)
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !utils.Contains(allowedExtensions, ext) {
		return "", fmt.Errorf("%w: extension %s not allowed", ErrUploadFailed, ext)
	}
	if mime := header.Header.Get("Content-Type"); mime != "" && !allowedMIMEs[mime] {
		return "", fmt.Errorf("%w: type %s not allowed", ErrUploadFailed, mime)
	}

	if err := utils.EnsureDir(uploadDir); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	name := uuid.New().String() + ext
	dest := filepath.Join(uploadDir, name)

	out, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, file); err != nil {
		os.Remove(dest)
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	if ext != ".pdf" {
		makeThumbnail(dest, name)
	}

	return dest, nil
}

func makeThumbnail(src, name string) {
	img, err := imaging.Open(src)
	if err != nil {
		return
	}
	thumb := imaging.Resize(img, thumbWidth, 0, imaging.Lanczos)
	if err := utils.EnsureDir(thumbDir); err != nil {
		return
	}
	_ = imaging.Save(thumb, filepath.Join(thumbDir, name))
}
