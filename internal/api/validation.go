package api

import (
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// MaxNameLength bounds zone and dinosaur names.
const MaxNameLength = 100

var registerOnce sync.Once

// RegisterValidators installs the custom binding tags on gin's validator.
func RegisterValidators() {
	registerOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			_ = v.RegisterValidation("parkname", validateParkName)
		}
	})
}

// validateParkName accepts names usable as a path segment: no surrounding
// whitespace, no slash, no control characters.
func validateParkName(fl validator.FieldLevel) bool {
	return ValidName(fl.Field().String())
}

// ValidName reports whether name is acceptable as a zone or dinosaur name.
func ValidName(name string) bool {
	if name == "" || utf8.RuneCountInString(name) > MaxNameLength {
		return false
	}
	if strings.TrimSpace(name) != name || strings.Contains(name, "/") {
		return false
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return false
		}
	}
	return true
}
