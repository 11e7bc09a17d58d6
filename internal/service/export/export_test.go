package export

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/udelar-dtx/dtx_backend/internal/domain/clock"
	"github.com/udelar-dtx/dtx_backend/internal/domain/prescription"
	"github.com/udelar-dtx/dtx_backend/internal/domain/triage"
	"github.com/udelar-dtx/dtx_backend/internal/store"
	"github.com/udelar-dtx/dtx_backend/internal/store/storetest"
)

var day = time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)

type fakeObjects struct {
	uploaded    map[string][]byte
	contentType string
	uploadErr   error
}

func (f *fakeObjects) Key(name string) string { return "exports/" + name }

func (f *fakeObjects) Upload(_ context.Context, key, contentType string, body io.Reader, size int64) error {
	if f.uploadErr != nil {
		return f.uploadErr
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	if int64(len(b)) != size {
		return errors.New("size mismatch")
	}
	if f.uploaded == nil {
		f.uploaded = map[string][]byte{}
	}
	f.uploaded[key] = b
	f.contentType = contentType
	return nil
}

func (f *fakeObjects) PresignDownload(_ context.Context, key string) (string, error) {
	return "https://bucket.example/" + key + "?sig=1", nil
}

func seed(t *testing.T) *storetest.Memory {
	t.Helper()
	ctx := context.Background()
	db := storetest.NewMemory()

	_, err := db.UpsertTriage(ctx, "P-002", day, store.Triage{
		Status:  "COMPLETED",
		Alert:   triage.AlertRed,
		Sleep:   triage.SleepMetrics{TimeInBedMinutes: 480, TimeAsleepMinutes: 360, EfficiencyPct: 75},
		Fatigue: 8,
	})
	require.NoError(t, err)
	require.NoError(t, db.UpdateSession(ctx, "P-002", day, store.Session{
		Status: "VAGAL_COMPLETED",
		Visit:  prescription.VagalVisit(),
	}))

	_, err = db.UpsertTriage(ctx, "P-001", day, store.Triage{
		Status:    "COMPLETED",
		Alert:     triage.AlertGreen,
		Sleep:     triage.SleepMetrics{TimeInBedMinutes: 480, TimeAsleepMinutes: 450, EfficiencyPct: 93.75},
		MaxPain:   2,
		PainZones: "Rodillas",
	})
	require.NoError(t, err)
	return db
}

func readRows(t *testing.T, b []byte) [][]string {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	return rows
}

func TestWorkbook(t *testing.T) {
	svc := New(seed(t), nil, clock.Fixed(day))

	b, n, err := svc.Workbook(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	rows := readRows(t, b)
	require.Len(t, rows, 3)
	assert.Equal(t, Header, rows[0])

	green := rows[1]
	assert.Equal(t, "P-001", green[0])
	assert.Equal(t, "2026-03-04", green[1])
	assert.Equal(t, "GREEN", green[3])
	assert.Equal(t, "93.75", green[4])
	assert.Equal(t, "Rodillas", green[12])
	assert.Len(t, green, 13, "no session columns without a session")

	red := rows[2]
	assert.Equal(t, "RED", red[3])
	assert.Equal(t, "VAGAL_COMPLETED", red[13])
	assert.Equal(t, prescription.VagalSlotName, red[14])
	assert.Equal(t, prescription.NoExercise, red[20])
	assert.Equal(t, "Sí", red[23])
}

func TestWorkbookEmpty(t *testing.T) {
	b, n, err := New(storetest.NewMemory(), nil, clock.Fixed(day)).Workbook(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Len(t, readRows(t, b), 1)
}

func TestPublish(t *testing.T) {
	objects := &fakeObjects{}
	now := day.Add(9*time.Hour + 30*time.Minute)
	svc := New(seed(t), objects, clock.Fixed(now))

	pub, err := svc.Publish(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "exports/dtx_registros_20260304_093000.xlsx", pub.Key)
	assert.Equal(t, "https://bucket.example/exports/dtx_registros_20260304_093000.xlsx?sig=1", pub.URL)
	assert.Equal(t, 2, pub.Rows)
	assert.Equal(t, ContentType, objects.contentType)
	assert.Len(t, readRows(t, objects.uploaded[pub.Key]), 3)
}

func TestPublishErrors(t *testing.T) {
	ctx := context.Background()

	_, err := New(seed(t), nil, clock.Fixed(day)).Publish(ctx)
	assert.ErrorIs(t, err, ErrObjectStoreUnavailable)

	_, err = New(seed(t), &fakeObjects{uploadErr: errors.New("access denied")}, clock.Fixed(day)).Publish(ctx)
	assert.ErrorIs(t, err, ErrUploadFailed)

	db := storetest.NewMemory()
	db.Err = errors.New("connection refused")
	_, err = New(db, &fakeObjects{}, clock.Fixed(day)).Publish(ctx)
	assert.Error(t, err)
}
