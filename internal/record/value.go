// Package record holds the values that flow out of warehouse rows and into
// JSON responses. Value is a closed set: only the types declared in this file
// implement it.
package record

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02T15:04:05"
)

type Value interface {
	isValue()
}

type (
	String   string
	Int      int64
	Float    float64
	Bool     bool
	Null     struct{}
	Date     civil.Date
	DateTime civil.DateTime
	List     []Value
	Map      map[string]Value
)

func (String) isValue()   {}
func (Int) isValue()      {}
func (Float) isValue()    {}
func (Bool) isValue()     {}
func (Null) isValue()     {}
func (Date) isValue()     {}
func (DateTime) isValue() {}
func (List) isValue()     {}
func (Map) isValue()      {}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// String drops sub-second precision.
func (d DateTime) String() string {
	return fmt.Sprintf("%sT%02d:%02d:%02d", Date(d.Date).String(), d.Time.Hour, d.Time.Minute, d.Time.Second)
}

func (Null) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d DateTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (l List) MarshalJSON() ([]byte, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Value(l))
}

// FromDriver converts a value scanned from database/sql into a Value.
// databaseType is the column's DatabaseTypeName and decides whether a
// time.Time is a calendar date or a timestamp.
func FromDriver(value any, databaseType string) Value {
	switch typed := value.(type) {
	case nil:
		return Null{}
	case string:
		return String(typed)
	case []byte:
		return String(string(typed))
	case bool:
		return Bool(typed)
	case int:
		return Int(typed)
	case int8:
		return Int(typed)
	case int16:
		return Int(typed)
	case int32:
		return Int(typed)
	case int64:
		return Int(typed)
	case uint8:
		return Int(typed)
	case uint16:
		return Int(typed)
	case uint32:
		return Int(typed)
	case uint64:
		if typed > 1<<63-1 {
			return String(strconv.FormatUint(typed, 10))
		}
		return Int(typed)
	case float32:
		return Float(typed)
	case float64:
		return Float(typed)
	case *big.Int:
		if typed == nil {
			return Null{}
		}
		if typed.IsInt64() {
			return Int(typed.Int64())
		}
		return String(typed.String())
	case time.Time:
		if isDateType(databaseType) {
			return Date(civil.DateOf(typed))
		}
		return DateTime(civil.DateTimeOf(typed))
	case Value:
		return typed
	default:
		return String(fmt.Sprint(typed))
	}
}

func isDateType(databaseType string) bool {
	return strings.EqualFold(strings.TrimSpace(databaseType), "DATE")
}

// ParseDate parses an ISO-8601 calendar date (YYYY-MM-DD).
func ParseDate(raw string) (Date, error) {
	parsed, err := civil.ParseDate(raw)
	if err != nil {
		return Date{}, err
	}
	return Date(parsed), nil
}
