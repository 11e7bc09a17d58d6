package trial

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udelar-dtx/dtx_backend/internal/domain/triage"
)

func runClassify(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewClassifyCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestClassifyCommand(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		alert string
	}{
		{"rested", []string{"--bed", "23:00", "--wake", "07:00", "--latency", "10", "--awake", "10"}, `Alert +GREEN`},
		{"short night", []string{"--bed", "23:00", "--wake", "07:00", "--latency", "60", "--awake", "30"}, `Alert +YELLOW`},
		{"pain", []string{"--bed", "23:00", "--wake", "07:00", "--pain", "lower_back=7"}, `Alert +RED`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runClassify(t, tt.args...)
			require.NoError(t, err)
			assert.Regexp(t, tt.alert, out)
		})
	}
}

func TestClassifyCommandRejects(t *testing.T) {
	_, err := runClassify(t, "--bed", "23:00", "--wake", "07:00", "--fatigue", "11")
	assert.ErrorIs(t, err, triage.ErrInvalidInput)

	_, err = runClassify(t, "--bed", "23:00", "--wake", "07:00", "--pain", "KNEES")
	assert.ErrorIs(t, err, triage.ErrInvalidInput)

	_, err = runClassify(t, "--bed", "11pm", "--wake", "07:00")
	assert.ErrorIs(t, err, triage.ErrInvalidInput)
}

func TestParsePain(t *testing.T) {
	got, err := parsePain([]string{"knees=3", " LEFT_SHOULDER = 5"})
	require.NoError(t, err)
	assert.Equal(t, []triage.PainReport{
		{Zone: triage.ZoneKnees, Intensity: 3},
		{Zone: triage.ZoneLeftShoulder, Intensity: 5},
	}, got)
}
