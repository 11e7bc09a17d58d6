package export

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/udelar-dtx/dtx_backend/internal/domain/clock"
	"github.com/udelar-dtx/dtx_backend/internal/domain/triage"
	"github.com/udelar-dtx/dtx_backend/internal/store"
	"github.com/udelar-dtx/dtx_backend/pkg/s3"
)

const (
	SheetName   = "Registros"
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Header is the first row of the export sheet, one column per stored field.
var Header = []string{
	"ID Paciente",
	"Fecha",
	"Estado Triage",
	"Alerta",
	"Eficiencia Sueño (%)",
	"Tiempo en Cama (min)",
	"Tiempo Dormido (min)",
	"Latencia (min)",
	"Despierto (min)",
	"Fatiga",
	"Estrés",
	"Dolor Máximo",
	"Zonas de Dolor",
	"Estado Sesión",
	"Ejercicio 1",
	"Carga 1 (kg)",
	"Ejercicio 2",
	"Carga 2 (kg)",
	"Ejercicio 3",
	"Carga 3 (kg)",
	"Ejercicio 4",
	"Carga 4 (kg)",
	"RPE Sesión",
	"Protocolo Vagal",
}

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type Published struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	Rows      int       `json:"rows"`
	CreatedAt time.Time `json:"created_at"`
}

// ---------------------------------------------------------------------------
// Service interface
// ---------------------------------------------------------------------------

type Service interface {
	// Workbook renders every daily record as an xlsx file. It also returns
	// the number of data rows.
	Workbook(ctx context.Context) ([]byte, int, error)
	Publish(ctx context.Context) (*Published, error)
}

type exportService struct {
	records store.Records
	objects s3.ObjectStore
	clock   clock.Clock
}

// New builds the export service. objects may be nil when no bucket is
// configured; Publish then fails with ErrObjectStoreUnavailable.
func New(records store.Records, objects s3.ObjectStore, clk clock.Clock) Service {
	return &exportService{records: records, objects: objects, clock: clk}
}

func (s *exportService) Workbook(ctx context.Context) ([]byte, int, error) {
	recs, err := s.records.ListAllRecords(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("list records: %w", err)
	}
	b, err := render(recs)
	if err != nil {
		return nil, 0, err
	}
	return b, len(recs), nil
}

func (s *exportService) Publish(ctx context.Context) (*Published, error) {
	if s.objects == nil {
		return nil, ErrObjectStoreUnavailable
	}

	b, n, err := s.Workbook(ctx)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	key := s.objects.Key(FileName(now))
	if err := s.objects.Upload(ctx, key, ContentType, bytes.NewReader(b), int64(len(b))); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	url, err := s.objects.PresignDownload(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	return &Published{Key: key, URL: url, Rows: n, CreatedAt: now}, nil
}

// FileName names an export taken at t.
func FileName(t time.Time) string {
	return "dtx_registros_" + t.Format("20060102_150405") + ".xlsx"
}

// ---------------------------------------------------------------------------
// Rendering
// ---------------------------------------------------------------------------

func render(recs []*store.DailyRecord) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	if err := f.SetSheetRow(SheetName, "A1", &Header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	last, err := excelize.ColumnNumberToName(len(Header))
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(SheetName, "A1", last+"1", headerStyle); err != nil {
		return nil, fmt.Errorf("style header: %w", err)
	}
	if err := f.SetColWidth(SheetName, "A", last, 16); err != nil {
		return nil, fmt.Errorf("set column width: %w", err)
	}

	for i, rec := range recs {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := rowOf(rec)
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("freeze header: %w", err)
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// rowOf flattens a record in Header order. Session cells stay empty until
// a session was saved.
func rowOf(rec *store.DailyRecord) []any {
	t := rec.Triage
	alert := ""
	if t.Alert != triage.AlertNone {
		alert = t.Alert.String()
	}
	row := []any{
		rec.PatientID,
		rec.Date.Format(clock.DateLayout),
		t.Status,
		alert,
		t.Sleep.EfficiencyPct,
		t.Sleep.TimeInBedMinutes,
		t.Sleep.TimeAsleepMinutes,
		t.Latency,
		t.Awake,
		t.Fatigue,
		t.Stress,
		t.MaxPain,
		t.PainZones,
	}

	if rec.Session == nil {
		return row
	}

	v := rec.Session.Visit
	row = append(row, rec.Session.Status)
	for i := range v.Exercises {
		row = append(row, v.Exercises[i], v.Loads[i])
	}
	vagal := "No"
	if v.Vagal {
		vagal = "Sí"
	}
	return append(row, v.RPE, vagal)
}
