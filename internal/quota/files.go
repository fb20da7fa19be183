package quota

import (
	"fmt"
	"math"
	"path"
	"strconv"
	"strings"

	"github.com/neberku/neberku-backend/internal/domain"
)

const bytesPerMB = 1024 * 1024

// File metadata of one incoming upload
type File struct {
	MediaType   domain.MediaType
	Name        string
	Size        int64
	ContentType string
}

// FileViolation an upload rejected for its size or format
type FileViolation struct {
	File    File
	MaxMB   int
	Allowed []string
}

func (v *FileViolation) Error() string {
	label := capitalize(v.File.MediaType.Label())
	if len(v.Allowed) > 0 {
		return fmt.Sprintf("%s '%s' has an unsupported format. Allowed formats: %s.",
			label, v.File.Name, strings.Join(v.Allowed, ", "))
	}
	return fmt.Sprintf("%s '%s' is too large (%s). Maximum allowed size is %dMB.",
		label, v.File.Name, FormatFileSize(v.File.Size), v.MaxMB)
}

// CheckFile validates one upload against the event's size and format limits.
// A nil settings row imposes no limits.
func CheckFile(s *domain.EventSettings, f File) error {
	if s == nil {
		return nil
	}

	if maxMB := s.MaxSizeMB(f.MediaType); maxMB > 0 && f.Size > int64(maxMB)*bytesPerMB {
		return &FileViolation{File: f, MaxMB: maxMB}
	}

	allowed := s.AllowedFormats(f.MediaType)
	if len(allowed) == 0 {
		return nil
	}
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(f.Name)), ".")
	for _, a := range allowed {
		if strings.EqualFold(strings.TrimPrefix(a, "."), ext) {
			return nil
		}
	}
	return &FileViolation{File: f, Allowed: allowed}
}

// FormatFileSize renders a byte count in base-1024 units rounded to two decimals,
// always with at least one decimal ("2.0 MB", "1.46 MB")
func FormatFileSize(size int64) string {
	if size <= 0 {
		return "0 Bytes"
	}

	units := []string{"Bytes", "KB", "MB", "GB"}
	v := float64(size)
	i := 0
	for v >= 1024 && i < len(units)-1 {
		v /= 1024
		i++
	}
	v = math.Round(v*100) / 100

	n := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(n, ".") {
		n += ".0"
	}
	return n + " " + units[i]
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
