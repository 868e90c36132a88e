package flights

import (
	"bytes"
	"fmt"

	"github.com/parquet-go/parquet-go"
)

// FlightRecord is one row of the flight table as laid out in parquet files.
// FLIGHT_DATE is stored as an ISO string and cast to DATE when mounted.
type FlightRecord struct {
	FlightDate string `parquet:"FLIGHT_DATE"`
	Carrier    string `parquet:"CARRIER"`
	FlightNum  string `parquet:"FLIGHT_NUM"`
	DepApt     string `parquet:"DEPAPT"`
	ArrApt     string `parquet:"ARRAPT"`
}

func EncodeParquet(records []FlightRecord) ([]byte, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("records are required")
	}
	buf := bytes.NewBuffer(nil)
	writer := parquet.NewGenericWriter[FlightRecord](buf)
	if _, err := writer.Write(records); err != nil {
		return nil, fmt.Errorf("write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close parquet writer: %w", err)
	}
	return buf.Bytes(), nil
}
