package Reconciliation

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Cycle distinguishes the two billing feeds.
type Cycle string

const (
	Cycle7  Cycle = "7day"
	Cycle30 Cycle = "30day"
)

// InvoiceRow is one raw invoice line as read from a workbook, before id
// selection and amount parsing. PrimaryID and SecondaryID mirror the two id
// columns the feed may carry.
type InvoiceRow struct {
	PrimaryID   string
	SecondaryID string
	RawAmount   string
}

// header synonyms per column, matched case-insensitively against row 1
var (
	tripPrimaryIDHeaders   = []string{"vrid", "trip id", "tripid"}
	tripSecondaryIDHeaders = []string{"trip", "reference id", "reference"}
	tripDriverHeaders      = []string{"driver", "driver name", "drivername"}
	tripVehicleHeaders     = []string{"vehicle", "vehicle id", "registration", "plate", "truck"}
	tripDateHeaders        = []string{"date", "trip date"}
	invoiceAmountHeaders   = []string{"gross pay", "gross", "amount", "total"}
)

// Fixed column positions of the "payment details" sheet variant: no usable
// header row, trip id in column B and gross amount in column D.
const (
	paymentDetailsIDColumn     = 1
	paymentDetailsAmountColumn = 3
)

// ReadTripFeed parses the weekly manifest workbook. Rows missing both an id
// and any driver/vehicle evidence are quarantined (counted, not returned).
func ReadTripFeed(r io.Reader) ([]TripRecord, int, error) {
	rows, headers, err := sheetRows(r)
	if err != nil {
		return nil, 0, err
	}

	idCol := findColumn(headers, tripPrimaryIDHeaders)
	secondaryCol := findColumn(headers, tripSecondaryIDHeaders)
	driverCol := findColumn(headers, tripDriverHeaders)
	vehicleCol := findColumn(headers, tripVehicleHeaders)
	dateCol := findColumn(headers, tripDateHeaders)
	if idCol < 0 && secondaryCol < 0 {
		return nil, 0, fmt.Errorf("trip feed has no trip-id column")
	}
	if driverCol < 0 {
		return nil, 0, fmt.Errorf("trip feed has no driver column")
	}

	var trips []TripRecord
	quarantined := 0
	for _, row := range rows {
		vrid := cell(row, idCol)
		if vrid == "" {
			vrid = cell(row, secondaryCol)
		}
		trip := TripRecord{
			VRID:       vrid,
			DriverName: cell(row, driverCol),
			VehicleID:  cell(row, vehicleCol),
			TripDate:   cell(row, dateCol),
		}
		if trip.VRID == "" || (trip.DriverName == "" && trip.VehicleID == "") {
			quarantined++
			continue
		}
		trip.Raw = map[string]string{}
		for i, h := range headers {
			if h != "" {
				trip.Raw[h] = cell(row, i)
			}
		}
		trips = append(trips, trip)
	}
	return trips, quarantined, nil
}

// ReadInvoiceFeed parses a header-mapped invoice workbook into raw invoice
// rows. Amount validity is the engine's concern; only structurally empty rows
// are quarantined here.
func ReadInvoiceFeed(r io.Reader) ([]InvoiceRow, int, error) {
	rows, headers, err := sheetRows(r)
	if err != nil {
		return nil, 0, err
	}

	idCol := findColumn(headers, tripPrimaryIDHeaders)
	secondaryCol := findColumn(headers, tripSecondaryIDHeaders)
	amountCol := findColumn(headers, invoiceAmountHeaders)
	if idCol < 0 && secondaryCol < 0 {
		return nil, 0, fmt.Errorf("invoice feed has no trip-id column")
	}
	if amountCol < 0 {
		return nil, 0, fmt.Errorf("invoice feed has no amount column")
	}

	var lines []InvoiceRow
	quarantined := 0
	for _, row := range rows {
		line := InvoiceRow{
			PrimaryID:   cell(row, idCol),
			SecondaryID: cell(row, secondaryCol),
			RawAmount:   cell(row, amountCol),
		}
		if line.PrimaryID == "" && line.SecondaryID == "" && line.RawAmount == "" {
			quarantined++
			continue
		}
		lines = append(lines, line)
	}
	return lines, quarantined, nil
}

// ReadPaymentDetails parses the fixed-column "payment details" sheet variant
// into the same raw invoice rows as ReadInvoiceFeed.
func ReadPaymentDetails(r io.Reader) ([]InvoiceRow, int, error) {
	rows, _, err := sheetRows(r)
	if err != nil {
		return nil, 0, err
	}

	var lines []InvoiceRow
	quarantined := 0
	for _, row := range rows {
		line := InvoiceRow{
			PrimaryID: cell(row, paymentDetailsIDColumn),
			RawAmount: cell(row, paymentDetailsAmountColumn),
		}
		if line.PrimaryID == "" && line.RawAmount == "" {
			quarantined++
			continue
		}
		lines = append(lines, line)
	}
	return lines, quarantined, nil
}

// sheetRows opens a workbook and returns the data rows and lowercased header
// row of its first sheet.
func sheetRows(r io.Reader) ([][]string, []string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, nil, nil
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.ToLower(strings.TrimSpace(h))
	}
	return rows[1:], headers, nil
}

func findColumn(headers []string, names []string) int {
	for i, h := range headers {
		for _, name := range names {
			if h == name {
				return i
			}
		}
	}
	return -1
}

func cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}
