package pipeline

import (
	"fmt"
	"path/filepath"
	"strings"

	"warebridge/internal/common"
)

// ObjectScript is one extracted schema object definition. Body is rewritten
// in place by the reference rewriter before the script is routed to disk.
type ObjectScript struct {
	Warehouse string
	Schema    string
	Name      string
	Type      string
	Parent    string // owning table, set only for constraints
	Body      string
}

// ObjectClass drives where a script lands in the run directory
type ObjectClass int

const (
	ClassTable ObjectClass = iota
	ClassConstraint
	ClassSchema
	ClassSecurity
	ClassFolder
	ClassIgnored
)

// folderByType routes the folder-classified object types
var folderByType = map[string]string{
	"table":               "Tables",
	"view":                "Views",
	"storedprocedure":     "Procedures",
	"procedure":           "Procedures",
	"scalarfunction":      "Functions",
	"tablevaluedfunction": "Functions",
	"function":            "Functions",
}

var constraintTypes = map[string]bool{
	"primarykey":        true,
	"foreignkey":        true,
	"checkconstraint":   true,
	"defaultconstraint": true,
	"uniqueconstraint":  true,
	"index":             true,
}

var securityTypes = map[string]bool{
	"user":           true,
	"role":           true,
	"rolemembership": true,
	"permission":     true,
	"login":          true,
	"masterkey":      true,
	"certificate":    true,
}

// Classify maps an extracted object type onto its routing class
func Classify(objType string) ObjectClass {
	t := strings.ToLower(strings.TrimSpace(objType))
	switch {
	case t == "table":
		return ClassTable
	case t == "schema":
		return ClassSchema
	case constraintTypes[t]:
		return ClassConstraint
	case securityTypes[t]:
		return ClassSecurity
	case folderByType[t] != "":
		return ClassFolder
	default:
		return ClassIgnored
	}
}

// scriptPath decides the on-disk location of one script within the
// warehouse directory. Security objects go to a holding area the deployment
// never touches; schemas get one file per schema.
func scriptPath(warehouseDir string, s ObjectScript) string {
	schema := common.SanitizeName(s.Schema)
	name := common.SanitizeName(s.Name)

	switch Classify(s.Type) {
	case ClassSchema:
		return filepath.Join(warehouseDir, "Schemas", name+".sql")
	case ClassSecurity:
		return filepath.Join(warehouseDir, "Security", "_holding", name+".sql")
	case ClassTable:
		return filepath.Join(warehouseDir, "Tables", schema, name+".sql")
	default:
		folder := folderByType[strings.ToLower(s.Type)]
		if folder == "" {
			folder = "Misc"
		}
		return filepath.Join(warehouseDir, folder, schema, name+".sql")
	}
}

// Route partitions the extracted scripts into writable files. Constraints
// are folded into their owning table's file; a constraint whose table is not
// in the set keeps its own file under Tables.
func Route(warehouseDir string, scripts []ObjectScript) map[string]string {
	files := make(map[string]string)

	tablePaths := make(map[string]string)
	for _, s := range scripts {
		if Classify(s.Type) != ClassTable {
			continue
		}
		path := scriptPath(warehouseDir, s)
		tableKey := strings.ToLower(s.Schema + "." + s.Name)
		tablePaths[tableKey] = path
		files[path] = s.Body
	}

	for _, s := range scripts {
		switch Classify(s.Type) {
		case ClassTable:
			// already placed
		case ClassIgnored:
			// extraction noise, not deployable
		case ClassConstraint:
			tableKey := strings.ToLower(s.Schema + "." + s.Parent)
			if path, ok := tablePaths[tableKey]; ok && s.Parent != "" {
				files[path] = appendScript(files[path], s.Body)
				continue
			}
			path := filepath.Join(warehouseDir, "Tables",
				common.SanitizeName(s.Schema), common.SanitizeName(s.Name)+".sql")
			files[path] = appendScript(files[path], s.Body)
		default:
			path := scriptPath(warehouseDir, s)
			files[path] = appendScript(files[path], s.Body)
		}
	}

	return files
}

func appendScript(existing, body string) string {
	if existing == "" {
		return body
	}
	return fmt.Sprintf("%s\nGO\n%s", strings.TrimRight(existing, "\n"), body)
}
