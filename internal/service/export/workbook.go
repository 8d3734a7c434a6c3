package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/cmlabs-hris/shiftops-backend-go/internal/domain/grid"
	"github.com/cmlabs-hris/shiftops-backend-go/internal/domain/shift"
)

const weekSheet = "Schedule"

// WeekWorkbook renders the grid as one sheet: a row per staff member and a
// column per day. Each cell lists the day's shifts, one per line.
func WeekWorkbook(g grid.Grid) (*bytes.Buffer, string, error) {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(weekSheet)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, "", fmt.Errorf("failed to drop default sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to create header style: %w", err)
	}
	bodyStyle, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Vertical: "top", WrapText: true},
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to create body style: %w", err)
	}
	leaveStyle, err := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#F4CCCC"}, Pattern: 1},
		Alignment: &excelize.Alignment{Vertical: "top", WrapText: true},
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to create leave style: %w", err)
	}

	f.SetColWidth(weekSheet, "A", "A", 20)
	last := colName(len(g.Days))
	f.SetColWidth(weekSheet, "B", last, 26)

	f.SetCellValue(weekSheet, "A1", "Staff")
	for i, d := range g.Days {
		f.SetCellValue(weekSheet, cellName(i+1, 1), fmt.Sprintf("%s %s", d.Weekday().String()[:3], d.ShortLabel()))
	}
	f.SetCellStyle(weekSheet, "A1", cellName(len(g.Days), 1), headerStyle)

	for r, row := range g.Rows {
		line := r + 2
		f.SetCellValue(weekSheet, cellName(0, line), row.Staff.Name)
		for c, day := range row.Cells {
			name := cellName(c+1, line)
			f.SetCellValue(weekSheet, name, cellText(day))
			style := bodyStyle
			if day.OnApprovedLeave {
				style = leaveStyle
			}
			f.SetCellStyle(weekSheet, name, name, style)
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, "", fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf, fmt.Sprintf("schedule_%s.xlsx", g.WeekStart), nil
}

func cellText(c grid.Cell) string {
	var lines []string
	switch {
	case c.OnApprovedLeave:
		lines = append(lines, leaveLabel("On leave", c.LeaveTypeName))
	case c.OnPendingLeave:
		lines = append(lines, leaveLabel("Leave pending", c.LeaveTypeName))
	}
	for _, s := range c.Shifts {
		lines = append(lines, shiftLine(s))
	}
	return strings.Join(lines, "\n")
}

func leaveLabel(prefix, leaveType string) string {
	if leaveType == "" {
		return prefix
	}
	return prefix + " (" + leaveType + ")"
}

func shiftLine(s shift.Shift) string {
	line := fmt.Sprintf("%s-%s %s", s.StartTime, s.EndTime, s.PropertyName)
	if s.ServiceType != shift.ServiceTypeStandard {
		line += " [" + s.ServiceType + "]"
	}
	if !s.IsPublished {
		line += " (draft)"
	}
	return line
}

// colName maps a zero-based column index to its letter.
func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cellName(col, row int) string {
	return fmt.Sprintf("%s%d", colName(col), row)
}
