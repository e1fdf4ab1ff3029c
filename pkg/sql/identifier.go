package sql

import (
	"fmt"
	"regexp"

	libinjection "github.com/corazawaf/libinjection-go"

	"github.com/ekaya-inc/recon-engine/pkg/apperrors"
)

// identifierPattern is the shape allowed for user-supplied schema and table
// names before they reach a discovery query. Quoting is applied by the
// adapters; this guard rejects anything that is not a plain identifier.
var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_$]*$`)

// MaxIdentifierLength matches the PostgreSQL NAMEDATALEN limit, which is the
// strictest of the supported engines.
const MaxIdentifierLength = 63

// ValidateIdentifier checks a user-configured schema or table name before it
// is interpolated into a schema discovery query. It combines a strict
// identifier shape check with libinjection's SQLi detector, so an odd but
// harmless name fails closed while a crafted one is reported with its
// fingerprint.
func ValidateIdentifier(kind, name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty %s name", apperrors.ErrUnsafeIdentifier, kind)
	}
	if len(name) > MaxIdentifierLength {
		return fmt.Errorf("%w: %s name exceeds %d characters", apperrors.ErrUnsafeIdentifier, kind, MaxIdentifierLength)
	}

	if isSQLi, fingerprint := libinjection.IsSQLi(name); isSQLi {
		return fmt.Errorf("%w: %s name %q matches injection fingerprint %s",
			apperrors.ErrUnsafeIdentifier, kind, name, fingerprint)
	}

	if !identifierPattern.MatchString(name) {
		return fmt.Errorf("%w: %s name %q is not a plain identifier", apperrors.ErrUnsafeIdentifier, kind, name)
	}

	return nil
}

// ValidateTableRef validates a schema-qualified table reference. The schema
// may be empty, in which case only the table name is checked.
func ValidateTableRef(schemaName, tableName string) error {
	if schemaName != "" {
		if err := ValidateIdentifier("schema", schemaName); err != nil {
			return err
		}
	}
	return ValidateIdentifier("table", tableName)
}
