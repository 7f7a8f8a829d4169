package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleReq struct {
	Name     string `json:"name" validate:"required" comment:"名称"`
	Metric   string `json:"metric" validate:"required,metric_name" comment:"指标"`
	Severity string `json:"severity" validate:"oneof=low high" comment:"级别"`
}

func TestValidate_OK(t *testing.T) {
	msg, err := Validate(&sampleReq{Name: "a", Metric: "http_requests_total", Severity: "low"})
	require.NoError(t, err)
	assert.Empty(t, msg)
}

func TestValidate_ChineseMessages(t *testing.T) {
	msg, err := Validate(&sampleReq{Metric: "bad metric", Severity: "mid"})
	require.Error(t, err)
	assert.Contains(t, msg, "名称不能为空")
	assert.Contains(t, msg, "指标不是合法的指标名")
	assert.Contains(t, msg, "级别必须是[low high]中的一个")
}
