package services

import (
	"fmt"
	"strings"
)

func extensionFromContentType(contentType string) (string, error) {
	switch contentType {
	case "image/jpeg", "image/jpg":
		return ".jpg", nil
	case "image/png":
		return ".png", nil
	case "image/gif":
		return ".gif", nil
	case "image/webp":
		return ".webp", nil
	case "image/svg+xml":
		return ".svg", nil
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidFileType, contentType)
	}
}

func trimmed(s string) string {
	return strings.TrimSpace(s)
}
