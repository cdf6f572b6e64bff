package main

import (
	"bufio"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// measurementRecord is one CSV row of an observed range/range-rate pair
// against a named station, the format ported from smd/cmd/od's
// loadMeasurementFile ("station,timestamp,θgst,range,rangerate"),
// simplified to a "station,timestamp,range,rangerate" column layout
// carrying only the two observables this module's
// estimation.ODLeastSquaresSolver actually consumes.
type measurementRecord struct {
	Station   string
	Instant   time.Time
	Range     float64
	RangeRate float64
}

// loadMeasurementFile reads a CSV of ground-station observations, skipping
// a header line and any malformed row with a warning, per smd's
// own tolerant parsing style (smd/cmd/od/load.go).
func loadMeasurementFile(filename string) ([]measurementRecord, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var records []measurementRecord
	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		line = strings.ReplaceAll(line, "\"", "")
		lineNo++
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if lineNo == 1 {
			continue // header
		}
		fields := strings.Split(line, ",")
		if len(fields) < 4 {
			log.Printf("[warning] skipping malformed measurement line %d: %q", lineNo, line)
			continue
		}
		instant, err := time.Parse(dateFormat, fields[1])
		if err != nil {
			log.Printf("[warning] skipping measurement line %d: bad timestamp %q: %s", lineNo, fields[1], err)
			continue
		}
		rangeM, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			log.Printf("[warning] skipping measurement line %d: bad range %q: %s", lineNo, fields[2], err)
			continue
		}
		rangeRate, err := strconv.ParseFloat(fields[3], 64)
		if err != nil {
			log.Printf("[warning] skipping measurement line %d: bad range-rate %q: %s", lineNo, fields[3], err)
			continue
		}
		records = append(records, measurementRecord{
			Station:   fields[0],
			Instant:   instant,
			Range:     rangeM,
			RangeRate: rangeRate,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return records, nil
}
