package record

import (
	"encoding/json"
	"math/big"
	"reflect"
	"testing"
	"time"

	"cloud.google.com/go/civil"
)

func TestStringifyFormatsTemporalValues(t *testing.T) {
	rows := List{
		Map{
			"FLIGHT_DATE": Date(civil.Date{Year: 2024, Month: time.January, Day: 3}),
			"LOADED_AT":   DateTime(civil.DateTimeOf(time.Date(2024, 1, 3, 7, 5, 9, 123, time.UTC))),
			"CARRIER":     String("DL"),
			"ct":          Int(4),
		},
	}

	got := Stringify(rows)

	want := List{
		Map{
			"FLIGHT_DATE": String("2024-01-03"),
			"LOADED_AT":   String("2024-01-03T07:05:09"),
			"CARRIER":     String("DL"),
			"ct":          Int(4),
		},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Stringify() = %#v, want %#v", got, want)
	}
}

func TestStringifyRewritesInPlace(t *testing.T) {
	row := Map{"FLIGHT_DATE": Date(civil.Date{Year: 2024, Month: time.March, Day: 1})}
	_ = Stringify(List{row})
	if row["FLIGHT_DATE"] != String("2024-03-01") {
		t.Fatalf("row[FLIGHT_DATE] = %#v", row["FLIGHT_DATE"])
	}
}

func TestStringifyIsIdempotent(t *testing.T) {
	value := List{
		Map{
			"d":      Date(civil.Date{Year: 2023, Month: time.December, Day: 31}),
			"nested": List{DateTime(civil.DateTimeOf(time.Date(2023, 12, 31, 23, 59, 59, 0, time.UTC))), Null{}, Bool(true), Float(1.5)},
		},
	}

	once := Stringify(value)
	snapshot, err := json.Marshal(once)
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}
	twice := Stringify(once)
	again, err := json.Marshal(twice)
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}
	if string(snapshot) != string(again) {
		t.Fatalf("second pass changed output: %s vs %s", snapshot, again)
	}
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("Stringify() not idempotent: %#v vs %#v", once, twice)
	}
}

func TestStringifyNilBecomesNull(t *testing.T) {
	if got := Stringify(nil); got != (Null{}) {
		t.Fatalf("Stringify(nil) = %#v", got)
	}
}

func TestFromDriverDistinguishesDateAndTimestamp(t *testing.T) {
	at := time.Date(2024, 1, 2, 10, 30, 0, 0, time.UTC)

	if got := FromDriver(at, "DATE"); got != Date(civil.Date{Year: 2024, Month: time.January, Day: 2}) {
		t.Fatalf("FromDriver(DATE) = %#v", got)
	}
	got, ok := FromDriver(at, "TIMESTAMP").(DateTime)
	if !ok {
		t.Fatalf("FromDriver(TIMESTAMP) type = %T", FromDriver(at, "TIMESTAMP"))
	}
	if got.String() != "2024-01-02T10:30:00" {
		t.Fatalf("DateTime.String() = %q", got.String())
	}
}

func TestFromDriverScalars(t *testing.T) {
	cases := []struct {
		in   any
		want Value
	}{
		{nil, Null{}},
		{"JFK", String("JFK")},
		{[]byte("LAX"), String("LAX")},
		{int32(7), Int(7)},
		{int64(9), Int(9)},
		{float64(2.5), Float(2.5)},
		{true, Bool(true)},
		{big.NewInt(42), Int(42)},
	}
	for _, tc := range cases {
		if got := FromDriver(tc.in, ""); !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("FromDriver(%#v) = %#v, want %#v", tc.in, got, tc.want)
		}
	}
}

func TestMarshalJSON(t *testing.T) {
	payload, err := json.Marshal(List{Map{"apt": String("ATL"), "ct": Int(12), "x": Null{}}})
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}
	if string(payload) != `[{"apt":"ATL","ct":12,"x":null}]` {
		t.Fatalf("payload = %s", payload)
	}

	empty, err := json.Marshal(List(nil))
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}
	if string(empty) != `[]` {
		t.Fatalf("empty payload = %s", empty)
	}
}

func TestParseDate(t *testing.T) {
	if _, err := ParseDate("2024-13-01"); err == nil {
		t.Fatal("expected invalid month to fail")
	}
	got, err := ParseDate("2024-02-29")
	if err != nil {
		t.Fatalf("ParseDate() error = %v", err)
	}
	if got.String() != "2024-02-29" {
		t.Fatalf("ParseDate() = %s", got)
	}
}
