package schemarecon

import "strings"

// NotApplicable is the sentinel rendered for the missing side of a
// one-sided match row.
const NotApplicable = "N/A"

// Match row statuses.
const (
	StatusSuccess = "success"
	StatusFail    = "fail"
)

// MatchRow is one reconciliation result covering a single logical column
// across both sides, or a one-sided absence. Types are rendered
// whitespace-normalized; unmatched sides carry NotApplicable.
type MatchRow struct {
	SourceColumn string `json:"source_column_name"`
	TargetColumn string `json:"target_column_name"`
	SourceType   string `json:"source_agg_value"`
	TargetType   string `json:"target_agg_value"`
	Status       string `json:"validation_status"`
}

// FieldMapping is an ordered association from declared column name to its
// type declaration string, representing one side's schema. Iteration order
// is the declaration order and drives report ordering, so the original name
// sequence is kept separately from the lookup map.
type FieldMapping struct {
	names []string
	types map[string]string
}

// NewFieldMapping returns an empty field mapping.
func NewFieldMapping() *FieldMapping {
	return &FieldMapping{types: make(map[string]string)}
}

// Add appends a column with its declared type. The first declaration of a
// name wins; later duplicates are ignored.
func (m *FieldMapping) Add(name, declaredType string) *FieldMapping {
	if _, exists := m.types[name]; exists {
		return m
	}
	m.names = append(m.names, name)
	m.types[name] = declaredType
	return m
}

// Len returns the number of columns.
func (m *FieldMapping) Len() int {
	return len(m.names)
}

// Names returns the column names in declaration order.
func (m *FieldMapping) Names() []string {
	return m.names
}

// Get returns the declared type for a column name (exact case).
func (m *FieldMapping) Get(name string) (string, bool) {
	t, ok := m.types[name]
	return t, ok
}

// Match reconciles the source and target field mappings into an ordered
// sequence of match rows.
//
// Column names are compared case-insensitively; the lower-cased form is
// what appears in the output. Type declarations are compared
// case-sensitively after whitespace removal: identical strings match, and
// otherwise the pair must be declared compatible by the allow-list
// specification (see ParseAllowList). Columns named in exclusions are
// skipped entirely on both sides and produce no row at all.
//
// Rows are emitted in source declaration order, followed by the target-only
// columns in target declaration order. A malformed allow-list specification
// aborts the call before any rows are produced.
func Match(source, target *FieldMapping, exclusions []string, allowListSpec string) ([]MatchRow, error) {
	allowed, err := ParseAllowList(allowListSpec)
	if err != nil {
		return nil, err
	}

	excluded := make(map[string]struct{}, len(exclusions))
	for _, name := range exclusions {
		excluded[strings.ToLower(name)] = struct{}{}
	}

	// Case-insensitive index over target, first-seen type per key. The
	// original target order is walked separately in the trailing pass.
	targetTypes := make(map[string]string, target.Len())
	for _, name := range target.Names() {
		lower := strings.ToLower(name)
		if _, seen := targetTypes[lower]; seen {
			continue
		}
		declared, _ := target.Get(name)
		targetTypes[lower] = declared
	}

	consumed := make(map[string]struct{}, target.Len())
	seenSource := make(map[string]struct{}, source.Len())
	rows := make([]MatchRow, 0, source.Len()+target.Len())

	for _, name := range source.Names() {
		lower := strings.ToLower(name)
		if _, skip := excluded[lower]; skip {
			continue
		}
		// Names differing only in case are the same logical column and get
		// exactly one row.
		if _, dup := seenSource[lower]; dup {
			continue
		}
		seenSource[lower] = struct{}{}
		sourceType, _ := source.Get(name)

		targetType, found := targetTypes[lower]
		if !found {
			rows = append(rows, MatchRow{
				SourceColumn: lower,
				TargetColumn: NotApplicable,
				SourceType:   stripWhitespace(sourceType),
				TargetType:   NotApplicable,
				Status:       StatusFail,
			})
			continue
		}

		consumed[lower] = struct{}{}
		rows = append(rows, MatchRow{
			SourceColumn: lower,
			TargetColumn: lower,
			SourceType:   stripWhitespace(sourceType),
			TargetType:   stripWhitespace(targetType),
			Status:       typeStatus(sourceType, targetType, allowed),
		})
	}

	for _, name := range target.Names() {
		lower := strings.ToLower(name)
		if _, skip := excluded[lower]; skip {
			continue
		}
		if _, done := consumed[lower]; done {
			continue
		}
		consumed[lower] = struct{}{}
		declared, _ := target.Get(name)
		rows = append(rows, MatchRow{
			SourceColumn: NotApplicable,
			TargetColumn: lower,
			SourceType:   NotApplicable,
			TargetType:   stripWhitespace(declared),
			Status:       StatusFail,
		})
	}

	return rows, nil
}

// typeStatus decides compatibility for a matched pair of type declarations.
// Whitespace is insignificant, case is not: INT and int are different types
// unless an allow-list rule says otherwise. No transitive or symmetric
// inference is applied.
func typeStatus(sourceType, targetType string, allowed AllowList) string {
	src := stripWhitespace(sourceType)
	tgt := stripWhitespace(targetType)

	if src == tgt {
		return StatusSuccess
	}
	if allowed.Allows(src, tgt) {
		return StatusSuccess
	}
	return StatusFail
}
