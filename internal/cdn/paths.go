package cdn

import (
	"fmt"
	"strings"

	"panel/internal/domain"
)

// Character sets for asset names and scope-relative paths. Names can never
// contain a separator; paths can, but only single forward slashes.
const (
	nameCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789-_.:%$[](){}$@! "
	pathCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789-_.:%$/ "
)

func onlyChars(s, charset string) bool {
	for _, c := range s {
		if !strings.ContainsRune(charset, c) {
			return false
		}
	}
	return true
}

// ValidateName checks an asset file or folder name.
func ValidateName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: name must not be empty", domain.ErrValidation)
	case strings.HasPrefix(name, "."):
		return fmt.Errorf("%w: name must not start with a dot", domain.ErrValidation)
	case !onlyChars(name, nameCharset):
		return fmt.Errorf("%w: name contains disallowed characters", domain.ErrValidation)
	}
	return nil
}

// ValidatePath checks a scope-relative directory path. The empty path is
// the scope root. Traversal is rejected by charset and by explicit rules,
// so a validated path joined under a scope root cannot escape it.
func ValidatePath(path string) error {
	switch {
	case path == "":
		return nil
	case strings.Contains(path, ".."):
		return fmt.Errorf("%w: path must not contain '..'", domain.ErrValidation)
	case strings.HasPrefix(path, "/"):
		return fmt.Errorf("%w: path must not start with '/'", domain.ErrValidation)
	case strings.Contains(path, "//"):
		return fmt.Errorf("%w: path must not contain '//'", domain.ErrValidation)
	case strings.Contains(path, `\`):
		return fmt.Errorf("%w: path must not contain backslashes", domain.ErrValidation)
	case !onlyChars(path, pathCharset):
		return fmt.Errorf("%w: path contains disallowed characters", domain.ErrValidation)
	}
	return nil
}
