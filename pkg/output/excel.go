package output

import (
	"context"
	"io"

	"github.com/xuri/excelize/v2"
)

// FunctionsSheet is the worksheet holding the function breakdown.
const FunctionsSheet = "Functions"

// ExcelFormatter writes the function breakdown as an xlsx workbook.
type ExcelFormatter struct {
	opts FormatOptions
}

// NewExcelFormatter creates a new xlsx formatter.
func NewExcelFormatter(opts FormatOptions) *ExcelFormatter {
	return &ExcelFormatter{opts: opts}
}

// Name returns the format name.
func (f *ExcelFormatter) Name() string {
	return "xlsx"
}

func cellName(col int, row int) (name string) {
	columnName, err := excelize.ColumnNumberToName(col)
	if err != nil {
		return
	}
	name, err = excelize.JoinCellName(columnName, row)
	if err != nil {
		return
	}
	return
}

// Format renders one row per function, count first, in first-seen order.
func (f *ExcelFormatter) Format(ctx context.Context, report *Report, w io.Writer) error {
	xf := excelize.NewFile()
	defer func() {
		_ = xf.Close()
	}()
	if err := xf.SetSheetName("Sheet1", FunctionsSheet); err != nil {
		return err
	}

	headerStyle, _ := xf.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
		},
	})
	_ = xf.SetCellValue(FunctionsSheet, cellName(1, 1), "Count")
	_ = xf.SetCellValue(FunctionsSheet, cellName(2, 1), "Function")
	_ = xf.SetCellStyle(FunctionsSheet, cellName(1, 1), cellName(2, 1), headerStyle)
	_ = xf.SetColWidth(FunctionsSheet, "B", "B", 48)

	row := 2
	for _, fc := range report.Functions {
		if err := xf.SetCellValue(FunctionsSheet, cellName(1, row), fc.Count); err != nil {
			return err
		}
		if err := xf.SetCellValue(FunctionsSheet, cellName(2, row), fc.Name); err != nil {
			return err
		}
		row++
	}

	return xf.Write(w)
}
