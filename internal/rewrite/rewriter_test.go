package rewrite

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Scenario: a foreign three-part reference becomes the deployment variable
// form with schema and object preserved.
func TestRewriteForeignReference(t *testing.T) {
	r := NewRewriter("Inventory")

	text, refs := r.Rewrite("SELECT * FROM Sales.dbo.Orders")

	assert.Equal(t, "SELECT * FROM [$(Sales_ref)].[dbo].[Orders]", text)
	assert.Equal(t, []string{"Sales"}, refs)
}

// Scenario: a reference into the owner warehouse is left untouched.
func TestRewriteOwnerReferenceUnchanged(t *testing.T) {
	r := NewRewriter("Inventory")

	text, refs := r.Rewrite("SELECT * FROM Inventory.dbo.Orders")

	assert.Equal(t, "SELECT * FROM Inventory.dbo.Orders", text)
	assert.Empty(t, refs)
}

func TestRewriteOwnerGuardIsCaseInsensitive(t *testing.T) {
	r := NewRewriter("INVENTORY")

	text, refs := r.Rewrite("JOIN inventory.dbo.Stock s ON s.id = o.id")

	assert.Equal(t, "JOIN inventory.dbo.Stock s ON s.id = o.id", text)
	assert.Empty(t, refs)
}

// A two-part schema-qualified name can be mistaken for a three-part one when
// the leading part repeats the schema; the equal-parts guard catches it.
func TestRewriteEqualLeadingPartsUnchanged(t *testing.T) {
	r := NewRewriter("Inventory")

	text, refs := r.Rewrite("SELECT * FROM dbo.dbo.Orders")

	assert.Equal(t, "SELECT * FROM dbo.dbo.Orders", text)
	assert.Empty(t, refs)
}

func TestRewriteAllBracketCombinations(t *testing.T) {
	r := NewRewriter("Inventory")
	want := "[$(Sales_ref)].[dbo].[Orders]"

	inputs := []string{
		"Sales.dbo.Orders",
		"[Sales].dbo.Orders",
		"Sales.[dbo].Orders",
		"Sales.dbo.[Orders]",
		"[Sales].[dbo].Orders",
		"[Sales].dbo.[Orders]",
		"Sales.[dbo].[Orders]",
		"[Sales].[dbo].[Orders]",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			text, refs := r.Rewrite("SELECT 1 FROM " + input)
			assert.Equal(t, "SELECT 1 FROM "+want, text)
			assert.Equal(t, []string{"Sales"}, refs)
		})
	}
}

func TestRewriteIsIdempotent(t *testing.T) {
	r := NewRewriter("Inventory")

	input := `CREATE VIEW [dbo].[v_orders] AS
SELECT o.id, s.region
FROM [Sales].[dbo].[Orders] o
JOIN Geo.ref.Regions s ON s.id = o.region_id;`

	once, refs := r.Rewrite(input)
	twice, refsAgain := r.Rewrite(once)

	assert.Equal(t, once, twice)
	assert.Equal(t, []string{"Geo", "Sales"}, refs)
	assert.Empty(t, refsAgain)
}

// A bracketed warehouse name is not limited to identifier characters; the
// variable name sanitizes what the brackets allowed.
func TestRewriteBracketedNonIdentifierWarehouse(t *testing.T) {
	r := NewRewriter("Inventory")

	text, refs := r.Rewrite("SELECT * FROM [Sales DW].[dbo].[Orders]")

	assert.Equal(t, "SELECT * FROM [$(Sales_DW_ref)].[dbo].[Orders]", text)
	assert.Equal(t, []string{"Sales DW"}, refs)

	// still idempotent
	twice, refsAgain := r.Rewrite(text)
	assert.Equal(t, text, twice)
	assert.Empty(t, refsAgain)
}

func TestRewriteMultipleWarehouses(t *testing.T) {
	r := NewRewriter("Reporting")

	input := "SELECT * FROM Sales.dbo.Orders o JOIN Inventory.dbo.Stock i ON i.sku = o.sku"
	text, refs := r.Rewrite(input)

	assert.Equal(t,
		"SELECT * FROM [$(Sales_ref)].[dbo].[Orders] o JOIN [$(Inventory_ref)].[dbo].[Stock] i ON i.sku = o.sku",
		text)
	assert.Equal(t, []string{"Inventory", "Sales"}, refs)
}

func TestRewriteDeduplicatesByCaseKeepingFirstSpelling(t *testing.T) {
	r := NewRewriter("Reporting")

	input := "SELECT 1 FROM Sales.dbo.Orders; SELECT 2 FROM SALES.dbo.Refunds"
	text, refs := r.Rewrite(input)

	assert.Equal(t, []string{"Sales"}, refs)
	assert.Equal(t, 2, strings.Count(text, "$(Sales_ref)"))
	assert.NotContains(t, text, "SALES_ref")
}

func TestRewriteRepeatedReference(t *testing.T) {
	r := NewRewriter("Reporting")

	input := "SELECT * FROM Sales.dbo.Orders UNION ALL SELECT * FROM [Sales].[dbo].[Orders]"
	text, refs := r.Rewrite(input)

	assert.Equal(t, []string{"Sales"}, refs)
	assert.Equal(t, 2, strings.Count(text, "[$(Sales_ref)].[dbo].[Orders]"))
}

func TestRewriteLeavesTwoPartNamesAlone(t *testing.T) {
	r := NewRewriter("Inventory")

	input := "SELECT * FROM dbo.Orders WHERE id > 5"
	text, refs := r.Rewrite(input)

	assert.Equal(t, input, text)
	assert.Empty(t, refs)
}

// A column-qualified two-part table name is textually indistinguishable from
// a three-part reference; without semantic parsing the leading part is taken
// as a warehouse. Known limitation of pattern matching.
func TestRewriteAmbiguousColumnQualifier(t *testing.T) {
	r := NewRewriter("Inventory")

	text, refs := r.Rewrite("WHERE dbo.Orders.id > 5")

	assert.Equal(t, []string{"dbo"}, refs)
	assert.Contains(t, text, "[$(dbo_ref)].[Orders].[id]")
}

func TestRewriteFourPartNameUntouched(t *testing.T) {
	r := NewRewriter("Inventory")

	input := "SELECT * FROM LinkedSrv.Sales.dbo.Orders"
	text, refs := r.Rewrite(input)

	assert.Equal(t, input, text)
	assert.Empty(t, refs)
}

func TestRewriteNameAtStartOfText(t *testing.T) {
	r := NewRewriter("Inventory")

	text, refs := r.Rewrite("Sales.dbo.Orders")

	assert.Equal(t, "[$(Sales_ref)].[dbo].[Orders]", text)
	assert.Equal(t, []string{"Sales"}, refs)
}

// The boundary must not split an identifier: my_Sales is one name, not a
// prefix plus warehouse Sales.
func TestRewriteDoesNotMatchInsideIdentifiers(t *testing.T) {
	r := NewRewriter("Inventory")

	input := "SELECT * FROM my_Sales.dbo.Orders"
	text, refs := r.Rewrite(input)

	assert.Equal(t, []string{"my_Sales"}, refs)
	assert.Contains(t, text, "[$(my_Sales_ref)]")
	assert.NotContains(t, text, "[$(Sales_ref)]")
}

func TestRewriteEmptyText(t *testing.T) {
	r := NewRewriter("Inventory")

	text, refs := r.Rewrite("")
	assert.Equal(t, "", text)
	assert.Empty(t, refs)
}

func TestVariableName(t *testing.T) {
	assert.Equal(t, "Sales_ref", VariableName("Sales"))
	assert.Equal(t, "Sales_DW_ref", VariableName("Sales DW"))
	assert.Equal(t, "a_b_ref", VariableName("a-b"))
}

func TestRewritePreservesSurroundingText(t *testing.T) {
	r := NewRewriter("Inventory")

	input := fmt.Sprintf("-- refresh\n%s\nGO\n", "INSERT INTO Staging.raw.Events SELECT 1")
	text, refs := r.Rewrite(input)

	require.Equal(t, []string{"Staging"}, refs)
	assert.True(t, strings.HasPrefix(text, "-- refresh\n"))
	assert.True(t, strings.HasSuffix(text, "\nGO\n"))
	assert.Contains(t, text, "[$(Staging_ref)].[raw].[Events]")
}
