// Package export renders validated client records as XLSX or CSV.
package export

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/debt-tracker/internal/common"
	"github.com/joseph-ayodele/debt-tracker/internal/entity"
)

type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// ParseFormat accepts "xlsx" or "csv", case-insensitive; empty means xlsx.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(FormatXLSX):
		return FormatXLSX, nil
	case string(FormatCSV):
		return FormatCSV, nil
	}
	return "", fmt.Errorf("export format %q: %w", s, common.ErrInvalidInput)
}

func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv; charset=utf-8"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (f Format) Ext() string { return "." + string(f) }

// Service produces export bytes for a list of records.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

func (s *Service) Export(records []entity.ClientRecord, f Format) ([]byte, error) {
	switch f {
	case FormatXLSX:
		return s.XLSX(records)
	case FormatCSV:
		return s.CSV(records)
	}
	return nil, fmt.Errorf("export format %q: %w", f, common.ErrInvalidInput)
}

const sheet = "Inadimplentes"

var headers = []string{
	"ID",
	"Nome",
	"Valor",
	"Vencimento",
	"Status",
	"Contato",
	"Celular",
	"Motivo",
}

// XLSX returns a workbook with one row per record. The amount column holds the
// numeric value formatted as BRL.
func (s *Service) XLSX(records []entity.ClientRecord) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("xlsx sheet: %w", err)
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	brl := `"R$" #,##0.00`
	amountStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &brl})
	if err != nil {
		return nil, fmt.Errorf("xlsx style: %w", err)
	}

	for i, r := range records {
		row := i + 2
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
		write(1, r.ID)
		write(2, r.Name)
		write(3, r.DebtAmount.InexactFloat64())
		write(4, r.DueDate)
		write(5, r.Status)
		write(6, r.Contact)
		write(7, yesNo(r.Mobile))
		write(8, r.Reason)

		cell, _ := excelize.CoordinatesToCellName(3, row)
		_ = f.SetCellStyle(sheet, cell, cell, amountStyle)
	}

	_ = f.SetColWidth(sheet, "A", "A", 18) // id
	_ = f.SetColWidth(sheet, "B", "B", 32) // name
	_ = f.SetColWidth(sheet, "C", "C", 14)
	_ = f.SetColWidth(sheet, "D", "E", 12)
	_ = f.SetColWidth(sheet, "F", "F", 18)
	_ = f.SetColWidth(sheet, "H", "H", 14)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok", "rows", len(records), "elapsed_ms", time.Since(start).Milliseconds())
	return buf.Bytes(), nil
}

// CSV returns the records with the display amount and a header row.
func (s *Service) CSV(records []entity.ClientRecord) ([]byte, error) {
	start := time.Now()
	if records == nil {
		records = []entity.ClientRecord{}
	}
	out, err := gocsv.MarshalBytes(&records)
	if err != nil {
		return nil, fmt.Errorf("csv write: %w", err)
	}
	s.logger.Info("export.csv.ok", "rows", len(records), "elapsed_ms", time.Since(start).Milliseconds())
	return out, nil
}

func yesNo(b bool) string {
	if b {
		return "sim"
	}
	return "não"
}
