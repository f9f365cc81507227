package validation

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ImageExtensions lists the file types clients may upload.
var ImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".gif":  true,
	".heic": true,
	".avif": true,
}

const maxImageNameLength = 200

// ValidateImageName checks a client supplied file name before it becomes part
// of an object key. Image keys are stored comma separated and live under a
// category prefix, so neither ',' nor '/' may appear.
func ValidateImageName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("image name is required")
	}
	if len(name) > maxImageNameLength {
		return fmt.Errorf("image name is too long (max %d characters)", maxImageNameLength)
	}
	if strings.ContainsAny(name, ",/\\") {
		return errors.New("image name must not contain ',', '/' or '\\'")
	}

	ext := strings.ToLower(filepath.Ext(name))
	if !ImageExtensions[ext] {
		return fmt.Errorf("invalid image extension: %q", ext)
	}
	return nil
}
