// Package exporter writes the sentiment report to disk.
//
// CSVWriter is the low-level writer: headers, append mode, streaming, and a
// UTF-8 BOM so Excel opens the files as UTF-8. Relative paths resolve under
// the reports directory.
//
// ReportExporter writes one CSV table per report view plus the scored posts
// and the fetched price series.
//
// WorkbookWriter builds a single XLSX file with one sheet per view and native
// Excel charts over the sheet data.
//
// Example usage:
//
//	reports := exporter.NewReportExporter(paths, logger)
//	files, err := reports.ExportReport(report)
//
//	wb := exporter.NewWorkbookWriter(logger)
//	err = wb.Write(paths.WorkbookFile, exporter.WorkbookInput{Report: report})
package exporter
