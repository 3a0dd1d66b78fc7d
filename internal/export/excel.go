package export

import (
	"fmt"
	"io"

	"ebadmin/internal/models"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Bookings"

var headers = []string{
	"ID", "Customer", "Phone", "Email", "Service",
	"Date", "Start", "End", "Duration (min)", "Price", "Status", "Notes",
}

// WriteBookings renders the booking list as an .xlsx workbook: one header
// row, one row per booking, in the order given.
func WriteBookings(w io.Writer, bookings []models.Booking) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})

	for col, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		_ = f.SetCellValue(sheetName, cell, header)
		_ = f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for i, b := range bookings {
		row := i + 2
		values := []interface{}{
			b.ID,
			b.CustomerName,
			b.CustomerPhone,
			b.CustomerEmail,
			b.Service.Name,
			b.TimeSlot.Date,
			b.TimeSlot.StartTime,
			b.TimeSlot.EndTime,
			b.Service.DurationMinutes,
			b.Service.Price,
			string(b.Status),
			b.Notes,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(sheetName, cell, v)
		}
	}

	_ = f.SetColWidth(sheetName, "B", "B", 25)
	_ = f.SetColWidth(sheetName, "E", "E", 25)
	_ = f.SetColWidth(sheetName, "L", "L", 30)

	_ = f.DeleteSheet("Sheet1")

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// FileName returns the suggested download name for an export.
func FileName(date string) string {
	return fmt.Sprintf("bookings_%s.xlsx", date)
}
