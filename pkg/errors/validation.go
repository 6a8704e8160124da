package errors

import (
	"math"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ValidateRange checks that a numeric setting lies in [lo, hi].
// NaN and infinities are always rejected.
func ValidateRange(field string, v, lo, hi float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return New(ErrCodeInvalidConfig, "%s must be a finite number", field)
	}
	if v < lo || v > hi {
		return New(ErrCodeInvalidConfig, "%s must be in [%g, %g], got %g", field, lo, hi, v)
	}
	return nil
}

// ValidateNonNegative checks that a numeric setting is finite and >= 0.
func ValidateNonNegative(field string, v float64) error {
	return ValidateRange(field, v, 0, math.MaxFloat64)
}

// ValidatePositive checks that a numeric setting is finite and > 0.
func ValidatePositive(field string, v float64) error {
	if err := ValidateNonNegative(field, v); err != nil {
		return err
	}
	if v == 0 {
		return New(ErrCodeInvalidConfig, "%s must be greater than zero", field)
	}
	return nil
}

// sceneExtensions lists the scene file types a layout source can load.
var sceneExtensions = map[string]bool{".toml": true, ".html": true, ".htm": true}

// ValidateSceneFilename checks that a scene path names a supported file type.
func ValidateSceneFilename(path string) error {
	if path == "" {
		return New(ErrCodeInvalidInput, "scene path cannot be empty")
	}
	if strings.ContainsRune(path, '\x00') {
		return New(ErrCodeInvalidInput, "scene path contains invalid characters")
	}
	ext := strings.ToLower(filepath.Ext(path))
	if !sceneExtensions[ext] {
		return New(ErrCodeInvalidInput, "unsupported scene type %q (must be .toml or .html)", ext)
	}
	return nil
}

// ValidateSessionID checks that id is a well-formed session UUID.
func ValidateSessionID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "session id cannot be empty")
	}
	if _, err := uuid.Parse(id); err != nil {
		return Wrap(ErrCodeInvalidInput, err, "malformed session id %q", id)
	}
	return nil
}
