package validator

import (
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"

	api "github.com/kubev2v/coach-importer/api/v1alpha1"
)

var fileURLSchemes = map[string]bool{
	"http":  true,
	"https": true,
	"s3":    true,
	"file":  true,
}

// fileURLValidator accepts http(s), s3 and file urls, and absolute paths.
func fileURLValidator(fl validator.FieldLevel) bool {
	val, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	val = strings.TrimSpace(val)
	if val == "" {
		return false
	}
	if strings.HasPrefix(val, "/") {
		return true
	}

	u, err := url.Parse(val)
	if err != nil || !fileURLSchemes[strings.ToLower(u.Scheme)] {
		return false
	}
	switch strings.ToLower(u.Scheme) {
	case "s3":
		return u.Host != "" && strings.TrimPrefix(u.Path, "/") != ""
	case "file":
		return u.Path != ""
	default:
		return u.Host != ""
	}
}

func importStatusValidator(fl validator.FieldLevel) bool {
	val, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	return api.IsImportJobStatus(val)
}
