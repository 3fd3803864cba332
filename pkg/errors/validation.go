package errors

import "unicode"

// maxNameLength bounds net, instance, layer and master names.
const maxNameLength = 256

// ValidateName validates an identifier from a design file or request.
// kind names the identifier in the error message ("net", "layer", ...).
//
// The rules are conservative:
//   - No empty names
//   - No control characters or whitespace
//   - Maximum length of 256 characters
func ValidateName(kind, name string) error {
	if name == "" {
		return New(ErrCodeInvalidName, "%s name cannot be empty", kind)
	}
	if len(name) > maxNameLength {
		return New(ErrCodeInvalidName, "%s name too long (max %d characters)", kind, maxNameLength)
	}
	for _, r := range name {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidName, "%s name %q contains invalid characters", kind, name)
		}
	}
	return nil
}
