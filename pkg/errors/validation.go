package errors

import (
	"strings"
	"unicode/utf8"
)

// selectorUnsafe lists the characters that make an identifying attribute value
// unusable as a lookup key: quotes end the attribute early, a backslash is an
// escape in every pattern language, and angle brackets end the tag.
const selectorUnsafe = "\"'\\<>"

// ValidateSelector checks that an identifying attribute value can be used to
// relocate its element. Values that fail are reported as MALFORMED_SELECTOR so
// the caller can skip that one element instead of matching the wrong one.
func ValidateSelector(id string) error {
	if id == "" {
		return New(ErrCodeMalformedSelector, "selector cannot be empty")
	}
	if i := strings.IndexAny(id, selectorUnsafe); i >= 0 {
		return New(ErrCodeMalformedSelector, "selector %q contains %q", id, id[i:i+1])
	}
	return nil
}

// ValidateName validates a replacement name supplied up front, through the
// HTTP API or a --rename flag.
//
// Any non-empty UTF-8 text is a valid name. Characters that are special in
// markup, and whitespace such as tabs and newlines, are escaped on write.
func ValidateName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidName, "name cannot be empty")
	}
	if !utf8.ValidString(name) {
		return New(ErrCodeInvalidName, "name is not valid UTF-8")
	}
	return nil
}

// ValidatePath validates an input or output file path supplied on the command
// line or in the interactive shell.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}
	if len(path) > 4096 {
		return New(ErrCodeInvalidPath, "path too long (max 4096 characters)")
	}
	if strings.ContainsRune(path, 0) {
		return New(ErrCodeInvalidPath, "path contains null byte")
	}
	return nil
}
