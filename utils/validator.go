package utils

import (
	"fmt"
	"regexp"

	"mariadbpaas/pkg/apperrors"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

// identifierPattern restricts names that get interpolated into generated SQL.
// Applies to database, table and column names alike; backtick quoting alone
// is not a defense when the name itself can carry a backtick.
var identifierPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

func init() {
	validate = validator.New()
}

// ValidateStruct validates a request struct against its validate tags.
func ValidateStruct(obj interface{}) error {
	if err := validate.Struct(obj); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrBadRequest, err)
	}
	return nil
}

// ValidIdentifier reports whether s is safe to use as a SQL identifier.
func ValidIdentifier(s string) bool {
	return identifierPattern.MatchString(s)
}

// CheckIdentifier returns a BadRequest error when s is not a safe identifier.
func CheckIdentifier(kind, s string) error {
	if !ValidIdentifier(s) {
		return fmt.Errorf("%w: invalid %s name %q", apperrors.ErrBadRequest, kind, s)
	}
	return nil
}
