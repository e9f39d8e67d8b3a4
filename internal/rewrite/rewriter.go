package rewrite

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// A three-part qualified name warehouse.schema.object, where each part may
// independently be bracket-delimited or bare. One normalized matcher covers
// all eight bracket combinations; candidate classification happens per match
// instead of running one pattern per combination.
const namePart = `\[[^\[\]]+\]|[A-Za-z_][A-Za-z0-9_$#]*`

// A leading boundary keeps the matcher off the tail of longer dotted names
// (four-part names, already-bracketed prefixes) and out of identifiers.
var qualifiedName = regexp.MustCompile(
	`(^|[^\w\].])(` + namePart + `)\.(` + namePart + `)\.(` + namePart + `)`)

var variableForm = regexp.MustCompile(`^\$\(.*\)$`)

var variableNameSanitizer = regexp.MustCompile(`[^A-Za-z0-9_]`)

// Rewriter rewrites cross-warehouse qualified names inside object
// definitions into deployment-variable form.
type Rewriter struct {
	owner string
}

// NewRewriter creates a rewriter for objects owned by the given warehouse
func NewRewriter(ownerWarehouse string) *Rewriter {
	return &Rewriter{owner: strings.TrimSpace(ownerWarehouse)}
}

// VariableName returns the deployment variable name for a referenced
// warehouse, e.g. "Sales" -> "Sales_ref".
func VariableName(warehouse string) string {
	return variableNameSanitizer.ReplaceAllString(warehouse, "_") + "_ref"
}

// Rewrite scans the object text for three-part qualified names whose leading
// part denotes a different warehouse than the owner, rewrites each such name
// to the canonical fully-bracketed form with the warehouse component replaced
// by its deployment variable, and returns the rewritten text together with
// the distinct referenced warehouse names. Rewriting is idempotent: a
// leading part already in variable form is never treated as a warehouse
// name again.
func (r *Rewriter) Rewrite(objectText string) (string, []string) {
	matches := qualifiedName.FindAllStringSubmatchIndex(objectText, -1)
	if len(matches) == 0 {
		return objectText, nil
	}

	seen := make(map[string]string) // lowercase -> first-seen casing
	var out strings.Builder
	last := 0

	for _, m := range matches {
		start, end := m[0], m[1]

		// The tail of a longer dotted name is not a three-part reference
		if end < len(objectText) && objectText[end] == '.' {
			continue
		}

		prefix := objectText[m[2]:m[3]]
		rawA := objectText[m[4]:m[5]]
		rawB := objectText[m[6]:m[7]]
		rawC := objectText[m[8]:m[9]]

		warehouse := unbracket(rawA)
		schema := unbracket(rawB)

		if !r.isForeignWarehouse(warehouse, schema) {
			continue
		}

		lower := strings.ToLower(warehouse)
		if _, ok := seen[lower]; !ok {
			seen[lower] = warehouse
		}

		out.WriteString(objectText[last:start])
		out.WriteString(prefix)
		fmt.Fprintf(&out, "[$(%s)].[%s].[%s]",
			VariableName(seen[lower]), schema, unbracket(rawC))
		last = end
	}

	out.WriteString(objectText[last:])

	referenced := make([]string, 0, len(seen))
	for _, name := range seen {
		referenced = append(referenced, name)
	}
	sort.Strings(referenced)

	return out.String(), referenced
}

// isForeignWarehouse applies the candidate guards: the leading part must be
// non-empty and not already in variable form (which is all idempotency
// needs), must not be the owner warehouse, and must not equal the schema
// part. The last guard keeps schema-qualified two-part names that happen to
// look three-part from being misread as cross-warehouse references.
func (r *Rewriter) isForeignWarehouse(warehouse, schema string) bool {
	if warehouse == "" {
		return false
	}
	if variableForm.MatchString(warehouse) {
		return false
	}
	if strings.EqualFold(warehouse, r.owner) {
		return false
	}
	if strings.EqualFold(warehouse, schema) {
		return false
	}
	return true
}

func unbracket(part string) string {
	if strings.HasPrefix(part, "[") && strings.HasSuffix(part, "]") {
		return part[1 : len(part)-1]
	}
	return part
}
