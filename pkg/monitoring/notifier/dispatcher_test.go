package notifier

import (
	"context"
	"errors"
	"testing"

	errorc "monicore/pkg/core/err"
	"monicore/pkg/monitoring/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAlert() *models.Alert {
	return &models.Alert{
		ID:          "a1",
		Name:        "cpu high",
		Description: "cpu over 80%",
		Severity:    models.SeverityCritical,
		Conditions: []models.AlertCondition{
			{Metric: "system_cpu_usage_percent", Operator: models.OpGreater, Threshold: 80},
		},
	}
}

func TestRender(t *testing.T) {
	got, err := Render("", testAlert())
	require.NoError(t, err)
	assert.Equal(t, "[critical] cpu high: cpu over 80%", got)

	got, err = Render("{{ id }} {{conditions.0.metric}} > {{conditions.0.threshold}} {{missing}}!", testAlert())
	require.NoError(t, err)
	assert.Equal(t, "a1 system_cpu_usage_percent > 80 !", got)
}

func TestDispatch_RoutesByType(t *testing.T) {
	d := NewDispatcher(nil)
	var got *Message
	d.Register(models.ActionSlack, SenderFunc(func(ctx context.Context, msg *Message) error {
		got = msg
		return nil
	}))

	err := d.Dispatch(context.Background(), models.AlertAction{Type: models.ActionSlack, Target: "#ops", Template: "{{name}}"}, testAlert())
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "#ops", got.Target)
	assert.Equal(t, "cpu high", got.Body)
	assert.Equal(t, "[CRITICAL] cpu high", got.Subject)

	require.NoError(t, d.Dispatch(context.Background(), models.AlertAction{Type: models.ActionEmail, Target: "x"}, testAlert()))
	assert.Equal(t, int64(2), d.Statistics().TotalSuccess)
}

func TestDispatch_Errors(t *testing.T) {
	d := NewDispatcher(nil)
	err := d.Dispatch(context.Background(), models.AlertAction{Type: "pager"}, testAlert())
	assert.True(t, errorc.IsValid(err))

	sendErr := errors.New("smtp down")
	d.Register(models.ActionEmail, SenderFunc(func(ctx context.Context, msg *Message) error { return sendErr }))
	err = d.Dispatch(context.Background(), models.AlertAction{Type: models.ActionEmail}, testAlert())
	assert.ErrorIs(t, err, sendErr)
	assert.Equal(t, int64(1), d.Statistics().TotalFailed)
}

func TestLogSender_RespectsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d := NewDispatcher(nil)
	err := d.Dispatch(ctx, models.AlertAction{Type: models.ActionSMS, Target: "123"}, testAlert())
	assert.ErrorIs(t, err, context.Canceled)
}
