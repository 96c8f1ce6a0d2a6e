package inference

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"sqlassist/internal/adapter"
)

const (
	maxEnumDistinct = 30 // columns with at most this many values are listed
	maxTopValues    = 15
)

// ColumnProfile value statistics for one column
type ColumnProfile struct {
	Name          string
	DistinctCount int
	NullCount     int
	TopValues     []ValueFrequency // categorical columns only
	Range         *NumericRange    // numeric columns only
}

// ValueFrequency value with its row count
type ValueFrequency struct {
	Value string
	Count int
}

// NumericRange min/max/avg of a numeric column
type NumericRange struct {
	Min, Max, Avg float64
}

// TableProfile value statistics for a table
type TableProfile struct {
	Table    string
	RowCount int
	Columns  []ColumnProfile
}

// profileTable collects per-column statistics with plain SQL.
// Columns whose statistics queries fail are skipped.
func profileTable(ctx context.Context, db adapter.DBAdapter, table string, columns []adapter.ColumnInfo) (*TableProfile, error) {
	quotedTable := quoteIdentifier(db.GetDatabaseType(), table)
	countResult, err := db.ExecuteQuery(ctx, fmt.Sprintf("SELECT COUNT(*) AS cnt FROM %s", quotedTable))
	if err != nil {
		return nil, fmt.Errorf("count rows: %w", err)
	}
	profile := &TableProfile{Table: table, RowCount: firstInt(countResult, "cnt")}
	if profile.RowCount == 0 {
		return profile, nil
	}

	for _, col := range columns {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cp, ok := profileColumn(ctx, db, quotedTable, col)
		if ok {
			profile.Columns = append(profile.Columns, cp)
		}
	}
	return profile, nil
}

func profileColumn(ctx context.Context, db adapter.DBAdapter, quotedTable string, col adapter.ColumnInfo) (ColumnProfile, bool) {
	cp := ColumnProfile{Name: col.Name}
	q := quoteIdentifier(db.GetDatabaseType(), col.Name)

	basic, err := db.ExecuteQuery(ctx, fmt.Sprintf(
		"SELECT COUNT(*) - COUNT(%s) AS null_cnt, COUNT(DISTINCT %s) AS distinct_cnt FROM %s",
		q, q, quotedTable))
	if err != nil {
		return cp, false
	}
	cp.NullCount = firstInt(basic, "null_cnt")
	cp.DistinctCount = firstInt(basic, "distinct_cnt")

	if isNumericType(col.Type) {
		rng, err := db.ExecuteQuery(ctx, fmt.Sprintf(
			"SELECT MIN(%s) AS min_val, MAX(%s) AS max_val, AVG(%s) AS avg_val FROM %s WHERE %s IS NOT NULL",
			q, q, q, quotedTable, q))
		if err == nil && rng.RowCount > 0 {
			row := rng.Rows[0]
			cp.Range = &NumericRange{
				Min: toFloat64(row["min_val"]),
				Max: toFloat64(row["max_val"]),
				Avg: toFloat64(row["avg_val"]),
			}
		}
		return cp, true
	}

	if cp.DistinctCount > 0 && cp.DistinctCount <= maxEnumDistinct {
		top, err := db.ExecuteQuery(ctx, fmt.Sprintf(
			"SELECT %s AS val, COUNT(*) AS cnt FROM %s WHERE %s IS NOT NULL GROUP BY %s ORDER BY cnt DESC, val LIMIT %d",
			q, quotedTable, q, q, maxTopValues))
		if err == nil {
			for _, row := range top.Rows {
				cp.TopValues = append(cp.TopValues, ValueFrequency{
					Value: formatValue(row["val"]),
					Count: toInt(row["cnt"]),
				})
			}
		}
	}
	return cp, true
}

// Format renders the profile as observation lines
func (p *TableProfile) Format(sb *strings.Builder) {
	fmt.Fprintf(sb, "Column values (%d rows):\n", p.RowCount)
	for _, c := range p.Columns {
		fmt.Fprintf(sb, "  - %s: %d distinct", c.Name, c.DistinctCount)
		if c.NullCount > 0 {
			fmt.Fprintf(sb, ", %d NULL", c.NullCount)
		}
		switch {
		case c.Range != nil:
			fmt.Fprintf(sb, "; min %s, max %s, avg %s",
				formatFloat(c.Range.Min), formatFloat(c.Range.Max), formatFloat(c.Range.Avg))
		case len(c.TopValues) > 0:
			values := make([]string, len(c.TopValues))
			for i, v := range c.TopValues {
				values[i] = fmt.Sprintf("%s (%d)", v.Value, v.Count)
			}
			fmt.Fprintf(sb, "; values: %s", strings.Join(values, ", "))
		}
		sb.WriteString("\n")
	}
}

var numericTypes = map[string]bool{
	"INT": true, "INTEGER": true, "TINYINT": true, "SMALLINT": true, "MEDIUMINT": true, "BIGINT": true,
	"INT2": true, "INT4": true, "INT8": true, "SERIAL": true, "BIGSERIAL": true,
	"REAL": true, "FLOAT": true, "FLOAT4": true, "FLOAT8": true, "DOUBLE": true,
	"NUMERIC": true, "DECIMAL": true,
}

// isNumericType matches the leading type name, e.g. "bigint(20) unsigned", "double precision"
func isNumericType(colType string) bool {
	fields := strings.FieldsFunc(strings.ToUpper(colType), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return len(fields) > 0 && numericTypes[fields[0]]
}

func firstInt(result *adapter.QueryResult, key string) int {
	if result == nil || len(result.Rows) == 0 {
		return 0
	}
	return toInt(result.Rows[0][key])
}

func toInt(val any) int {
	switch v := val.(type) {
	case int64:
		return int(v)
	case int:
		return v
	case int32:
		return int(v)
	case float64:
		return int(v)
	case string:
		n, _ := strconv.Atoi(v)
		return n
	default:
		return 0
	}
}

func toFloat64(val any) float64 {
	switch v := val.(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	case string:
		f, _ := strconv.ParseFloat(v, 64)
		return f
	default:
		return 0
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
