package cities

import (
	"encoding/csv"
	"errors"
	"io"
	"strconv"
)

// Scanner reads gazetteer records from CSV, one city per line:
// name,state,latitude,longitude.
type Scanner struct {
	csvReader *csv.Reader
	nextCity  *City
	err       error
}

func NewScanner(r io.Reader) *Scanner {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 4
	return &Scanner{csvReader: cr}
}

func (s *Scanner) Scan() bool {
	rawRecord, err := s.csvReader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return false
		}
		s.err = err
		return false
	}
	s.nextCity, err = parseRecord(rawRecord)
	if err != nil {
		s.err = err
		return false
	}
	return true
}

func (s *Scanner) Err() error {
	return s.err
}

func (s *Scanner) City() *City {
	return s.nextCity
}

func parseRecord(xs []string) (*City, error) {
	city := City{Name: xs[0], State: xs[1]}
	for i, p := range []*float64{&city.Lat, &city.Lon} {
		v, err := strconv.ParseFloat(xs[i+2], 64)
		if err != nil {
			return nil, err
		}
		*p = v
	}
	return &city, nil
}
