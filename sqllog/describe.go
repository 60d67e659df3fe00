package sqllog

import (
	"database/sql/driver"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Describer maps a bound driver argument into its Parameter description.
type Describer func(driver.NamedValue) Parameter

// DateTimeLayout is the layout used to render time.Time parameter values.
const DateTimeLayout = "2006-01-02T15:04:05.0000000"

// DescribeParameter is the default Describer. Unnamed parameters are named
// `p<n>` after their zero-offset position. Values are rendered as:
//   - nil: NULL, marked Nullable.
//   - []byte: upper-case hex with a 0x prefix.
//   - bool: True or False.
//   - time.Time: DateTimeLayout, with DbType DateTime.
//   - numbers and strings: their usual decimal or literal text.
func DescribeParameter(nv driver.NamedValue) Parameter {
	var p = Parameter{Name: nv.Name}
	if p.Name == "" {
		p.Name = "p" + strconv.Itoa(nv.Ordinal-1)
	}

	switch v := nv.Value.(type) {
	case nil:
		var nullable = true
		p.Null, p.Nullable = true, &nullable
	case string:
		p.Value = v
	case []byte:
		p.Value = "0x" + strings.ToUpper(hex.EncodeToString(v))
	case bool:
		if v {
			p.Value = "True"
		} else {
			p.Value = "False"
		}
	case int64:
		p.Value = strconv.FormatInt(v, 10)
	case float64:
		p.Value = strconv.FormatFloat(v, 'g', -1, 64)
	case time.Time:
		p.Value = v.Format(DateTimeLayout)
		p.DbType = "DateTime"
	default:
		p.Value = fmt.Sprint(v)
	}
	return p
}

func describeAll(describe Describer, args []driver.NamedValue) []Parameter {
	if len(args) == 0 {
		return nil
	}
	var out = make([]Parameter, len(args))
	for i, arg := range args {
		out[i] = describe(arg)
	}
	return out
}

func namedValues(args []driver.Value) []driver.NamedValue {
	var out = make([]driver.NamedValue, len(args))
	for i, v := range args {
		out[i] = driver.NamedValue{Ordinal: i + 1, Value: v}
	}
	return out
}

func plainValues(args []driver.NamedValue) ([]driver.Value, error) {
	var out = make([]driver.Value, len(args))
	for i, arg := range args {
		if arg.Name != "" {
			return nil, fmt.Errorf("driver does not support named parameter %q", arg.Name)
		}
		out[i] = arg.Value
	}
	return out, nil
}
