package csv

import (
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"ci-dashboard/domain/loss"
)

// File names under the data directory.
const (
	OAEFile  = "week_oae.csv"
	LossFile = "loss_entries.csv"
)

// sampleBase anchors the 12-week sample OAE trend.
var sampleBase = time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC)

// SampleOAE returns the bundled efficiency trend: twelve weeks oscillating
// below an 85% target with a slight upward drift.
func SampleOAE() []loss.OAERecord {
	records := make([]loss.OAERecord, 0, 12)
	for i := 0; i < 12; i++ {
		actual := 78 + (float64(i%3)-1)*1.2 + float64(i)*0.15
		records = append(records, loss.OAERecord{
			Week:   loss.WeekKey(sampleBase.AddDate(0, 0, 7*i)),
			Actual: math.Round(actual*10) / 10,
			Target: 85.0,
		})
	}
	return records
}

// SampleLosses returns the bundled loss entries spanning weeks W28-W31 2025.
func SampleLosses() []loss.Record {
	return []loss.Record{
		{Date: "2025-08-04", Week: "W31-2025", Department: "Maintenance", Reason: "Chiller breakdown", Minutes: 180},
		{Date: "2025-08-04", Week: "W31-2025", Department: "Maintenance", Reason: "Pump failure", Minutes: 90},
		{Date: "2025-08-04", Week: "W31-2025", Department: "Process Engg", Reason: "Wrong setup", Minutes: 120},
		{Date: "2025-07-28", Week: "W30-2025", Department: "Maintenance", Reason: "Chiller breakdown", Minutes: 160},
		{Date: "2025-07-21", Week: "W29-2025", Department: "Maintenance", Reason: "Chiller breakdown", Minutes: 170},
		{Date: "2025-07-14", Week: "W28-2025", Department: "Process Engg", Reason: "Wrong setup", Minutes: 130},
	}
}

// OAETable renders trend records as a raw table.
func OAETable(records []loss.OAERecord) Table {
	t := Table{Headers: []string{"Week", "Actual OAE", "Target OAE"}}
	for _, r := range records {
		t.Rows = append(t.Rows, []string{
			r.Week,
			strconv.FormatFloat(r.Actual, 'f', -1, 64),
			strconv.FormatFloat(r.Target, 'f', -1, 64),
		})
	}
	return t
}

// LossTable renders loss records as a raw table.
func LossTable(records []loss.Record) Table {
	t := Table{Headers: []string{"Date", "Week", "Department", "Reason", "Loss Minutes"}}
	for _, r := range records {
		t.Rows = append(t.Rows, []string{
			r.Date,
			r.Week,
			r.Department,
			r.Reason,
			strconv.FormatFloat(r.Minutes, 'f', -1, 64),
		})
	}
	return t
}

// WriteSampleData writes the bundled dataset into dir, creating it if needed.
func WriteSampleData(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := WriteTableFile(filepath.Join(dir, OAEFile), OAETable(SampleOAE())); err != nil {
		return err
	}
	return WriteTableFile(filepath.Join(dir, LossFile), LossTable(SampleLosses()))
}
