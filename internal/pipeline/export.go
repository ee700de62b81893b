package pipeline

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"hvdcmap/internal"
)

func ExportRowsToXLSX(rows []internal.CodeExportRow, outputPath string) error {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	headers := []string{
		"email_id", "subject", "sender", "received_at",
		"source", "kind", "code", "vendor", "site",
		"crossref_status", "confidence", "crossref_reason",
		"cargo_case", "cargo_status", "cargo_eta", "cargo_ata",
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, row := range rows {
		r := i + 2
		set := func(col int, value any) {
			cell, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellValue(sheet, cell, value)
		}

		set(1, row.EmailID)
		set(2, row.Subject)
		set(3, row.Sender)
		set(4, row.ReceivedAt)
		set(5, row.Source)
		set(6, row.Kind)
		set(7, row.Code)
		set(8, derefString(row.Vendor))
		set(9, derefString(row.Site))
		set(10, row.CrossRefStatus)
		set(11, row.Confidence)
		set(12, row.CrossRefReason)
		set(13, derefString(row.CargoCase))
		set(14, derefString(row.CargoStatus))
		set(15, derefString(row.CargoETA))
		set(16, derefString(row.CargoATA))
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}

// ExportFoldersToXLSX writes one row per scanned archive folder.
func ExportFoldersToXLSX(folders []internal.FolderRecord, outputPath string) error {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	headers := []string{"path", "name", "codes", "sites", "pos", "phases", "vendors", "file_count"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, folder := range folders {
		r := i + 2
		set := func(col int, value any) {
			cell, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellValue(sheet, cell, value)
		}

		set(1, folder.Path)
		set(2, folder.Name)
		set(3, joinList(folder.Codes))
		set(4, joinList(folder.Sites))
		set(5, joinList(folder.POs))
		set(6, joinList(folder.Phases))
		set(7, joinList(folder.Vendors))
		set(8, folder.FileCount)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}

func joinList(values []string) string {
	return strings.Join(values, ", ")
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
