// Package exporter 把注册表内容输出为 Prometheus 文本格式
package exporter

import (
	"bytes"
	"io"
	"sort"
	"strconv"
	"strings"

	"monicore/pkg/monitoring/models"

	"github.com/prometheus/common/model"
)

// ContentType Prometheus 文本格式 0.0.4
const ContentType = "text/plain; version=0.0.4; charset=utf-8"

// Source 导出的数据来源
type Source interface {
	Names() []string
	Query(name string) []models.MetricPoint
}

// PrometheusExporter 文本格式导出器，不持有状态
type PrometheusExporter struct {
	source Source
}

func NewPrometheusExporter(source Source) *PrometheusExporter {
	return &PrometheusExporter{source: source}
}

// Export 生成完整的文本
func (e *PrometheusExporter) Export() string {
	var buf bytes.Buffer
	_, _ = e.WriteTo(&buf)
	return buf.String()
}

// WriteTo 每个指标一行 # TYPE，随后是每个标签组合的最新值
func (e *PrometheusExporter) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	for _, name := range e.source.Names() {
		if !model.MetricNameRE.MatchString(name) {
			continue
		}
		points := e.source.Query(name)
		if len(points) == 0 {
			continue
		}
		latest := latestPerLabelSet(points)

		buf.WriteString("# TYPE ")
		buf.WriteString(name)
		buf.WriteByte(' ')
		buf.WriteString(string(points[len(points)-1].Kind))
		buf.WriteByte('\n')
		for _, p := range latest {
			writeSample(&buf, p)
		}
	}
	n, err := w.Write(buf.Bytes())
	return int64(n), err
}

// latestPerLabelSet 按标签组合首次出现的顺序返回各自最新的点
func latestPerLabelSet(points []models.MetricPoint) []models.MetricPoint {
	index := make(map[string]int)
	out := make([]models.MetricPoint, 0)
	for _, p := range points {
		key := labelKey(p.Labels)
		if i, ok := index[key]; ok {
			out[i] = p
			continue
		}
		index[key] = len(out)
		out = append(out, p)
	}
	return out
}

// labelKey 只用输出时保留的标签名，非法标签名不区分标签组合
func labelKey(labels map[string]string) string {
	keys := labelNames(labels)
	var sb strings.Builder
	for _, k := range keys {
		sb.WriteString(k)
		sb.WriteByte(0)
		sb.WriteString(labels[k])
		sb.WriteByte(0)
	}
	return sb.String()
}

func writeSample(buf *bytes.Buffer, p models.MetricPoint) {
	buf.WriteString(p.Name)
	keys := labelNames(p.Labels)
	written := 0
	for _, k := range keys {
		if written == 0 {
			buf.WriteByte('{')
		} else {
			buf.WriteByte(',')
		}
		buf.WriteString(k)
		buf.WriteString(`="`)
		buf.WriteString(EscapeLabelValue(p.Labels[k]))
		buf.WriteByte('"')
		written++
	}
	if written > 0 {
		buf.WriteByte('}')
	}
	buf.WriteByte(' ')
	buf.WriteString(FormatValue(p.Value))
	buf.WriteByte(' ')
	buf.WriteString(strconv.FormatInt(int64(model.TimeFromUnixNano(p.Timestamp.UnixNano())), 10))
	buf.WriteByte('\n')
}

// labelNames 排序后的合法标签名
func labelNames(labels map[string]string) []string {
	keys := make([]string, 0, len(labels))
	for k := range labels {
		if model.LabelNameRE.MatchString(k) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

var labelValueReplacer = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)

// EscapeLabelValue 转义反斜杠、双引号和换行
func EscapeLabelValue(v string) string {
	return labelValueReplacer.Replace(v)
}

// FormatValue 最短表示，NaN 与 ±Inf 按 Prometheus 的写法
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
