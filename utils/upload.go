package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// UploadRoot returns the configured upload directory.
func UploadRoot() string {
	root := os.Getenv("UPLOAD_PATH")
	if root == "" {
		root = "./uploads"
	}
	return root
}

// TenantDir creates (if needed) and returns the upload directory for one
// university and kind, e.g. uploads/<university_id>/documents.
func TenantDir(universityID, kind string) (string, error) {
	dir := filepath.Join(UploadRoot(), universityID, kind)
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return "", err
	}
	return dir, nil
}

// SafeFilename prefixes the original name with a fresh id so uploads
// never collide or overwrite.
func SafeFilename(original string) string {
	base := filepath.Base(original)
	base = strings.ReplaceAll(base, " ", "_")
	return fmt.Sprintf("%s_%s", uuid.NewString(), base)
}

// RelativeURL converts a stored path under the upload root into the
// relative URL persisted on the entity.
func RelativeURL(fullPath string) string {
	rel, err := filepath.Rel(UploadRoot(), fullPath)
	if err != nil {
		return fullPath
	}
	return "/uploads/" + filepath.ToSlash(rel)
}

// AllowedFileExt reports whether ext (without dot, lowercase) is an
// accepted document type.
func AllowedFileExt(ext string, allowed []string) bool {
	if len(allowed) == 0 {
		allowed = []string{"pdf", "jpg", "jpeg", "png"}
	}
	for _, a := range allowed {
		if strings.EqualFold(a, ext) {
			return true
		}
	}
	return false
}
