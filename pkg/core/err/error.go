package errorc

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"

	"monicore/pkg/core/consts"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	enableFullStack = true
	stackBufferPool = sync.Pool{
		New: func() interface{} {
			return make([]byte, 4096)
		},
	}
)

var notfounds = []error{gorm.ErrRecordNotFound, redis.Nil}

type ErrorBuilder struct {
	entryName string
}

func NewErrorBuilder(entryName string) *ErrorBuilder {
	return &ErrorBuilder{entryName: entryName}
}

func (e *ErrorBuilder) New(msg string, err error) *Error {
	stack := caller(2)
	stack.Msg = msg
	stack.Cause = err
	stack.Entry = e.entryName
	stack.ErrorCode = getErrCode(err)
	return stack
}

// New err or msg can nil
func New(msg string, err error) *Error {
	stack := caller(2)
	stack.Msg = msg
	stack.Cause = err
	stack.ErrorCode = getErrCode(err)
	return stack
}

// Quick 不采集调用位置，适合热路径
func Quick(msg string, err error) *Error {
	return &Error{
		Msg:       msg,
		Cause:     err,
		ErrorCode: getErrCode(err),
	}
}

func (e *ErrorBuilder) NotFound(msg string) *Error {
	return &Error{Msg: msg, Entry: e.entryName, ErrorCode: ErrorCodeNotFound}
}

func (e *ErrorBuilder) BadRequest(msg string) *Error {
	return &Error{Msg: msg, Entry: e.entryName, ErrorCode: ErrorCodeValid}
}

func (e *Error) WithTraceID(ctx context.Context) *Error {
	e.TraceID = ""
	if ctx != nil {
		if id, ok := ctx.Value(consts.TraceKey).(string); ok {
			e.TraceID = id
		}
	}
	return e
}

func (e *Error) WithCode(code *ErrorCode) *Error {
	e.ErrorCode = code
	return e
}

func (e *Error) DB() *Error {
	if e.ErrorCode == ErrorCodeNotFound {
		return e
	}
	e.ErrorCode = ErrorCodeDB
	return e
}

func (e *Error) Third() *Error {
	e.ErrorCode = ErrorCodeThird
	return e
}

func (e *Error) ValidWithCtx() *Error {
	e.ErrorCode = ErrorCodeValid
	return e
}

func (e *Error) NoAuth() *Error {
	e.ErrorCode = ErrorCodeNoAuth
	return e
}

func (e *Error) Forbidden() *Error {
	e.ErrorCode = ErrorCodeForbidden
	return e
}

func (e *Error) NotFound() *Error {
	e.ErrorCode = ErrorCodeNotFound
	return e
}

func (e *Error) Unavailable() *Error {
	e.ErrorCode = ErrorCodeUnavailable
	return e
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// chain 由外到内展开错误链，并找出根因（第一个包装了非 *Error 的节点）
func (e *Error) chain() (links []*Error, root *Error, original error) {
	for curr := e; ; {
		links = append(links, curr)
		next, ok := curr.Cause.(*Error)
		if !ok {
			break
		}
		curr = next
	}
	for i := len(links) - 1; i >= 0; i-- {
		if links[i].Cause == nil {
			continue
		}
		if _, ok := links[i].Cause.(*Error); !ok {
			return links, links[i], links[i].Cause
		}
	}
	root = links[len(links)-1]
	return links, root, root.Cause
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	links, root, original := e.chain()

	var sb strings.Builder
	sb.WriteString("========================= Root Cause =========================\n")
	if original != nil {
		sb.WriteString(fmt.Sprintf("Error: %s\n", original.Error()))
	}
	if root.FileName != "" {
		sb.WriteString(fmt.Sprintf("Location: %s:%d\n", root.FileName, root.Line))
	}
	if root.FuncName != "" {
		sb.WriteString(fmt.Sprintf("Function: %s\n", root.FuncName))
	}
	if root.Msg != "" {
		sb.WriteString(fmt.Sprintf("Message: %s\n", root.Msg))
	}
	if root.TraceID != "" {
		sb.WriteString(fmt.Sprintf("Trace ID: %s\n", root.TraceID))
	}

	sb.WriteString("\n======================= Full Error Trace =======================\n")
	for i, link := range links {
		sb.WriteString(fmt.Sprintf("%d: ", i+1))
		if link.ErrorCode != nil {
			sb.WriteString(fmt.Sprintf("[%s] ", link.ErrorCode.String()))
		}
		sb.WriteString(link.Msg)
		if link.FileName != "" {
			sb.WriteString(fmt.Sprintf("\n   at %s:%d", link.FileName, link.Line))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("==============================================================\n")
	return sb.String()
}

// RootCause 单行根因描述
func (e *Error) RootCause() string {
	if e == nil {
		return ""
	}
	_, root, original := e.chain()

	var sb strings.Builder
	sb.WriteString(root.Msg)
	if original != nil {
		sb.WriteString(fmt.Sprintf(": %v", original))
	}
	if root.FileName != "" {
		sb.WriteString(fmt.Sprintf(" at %s:%d", root.FileName, root.Line))
	}
	return sb.String()
}

func (e *Error) ToLog(log *logrus.Entry, msgs ...string) *Error {
	if e == nil {
		return nil
	}
	links, root, original := e.chain()

	fields := logrus.Fields{
		"root_cause_file": root.FileName,
		"root_cause_line": root.Line,
		"root_cause_func": root.FuncName,
		"root_cause_msg":  root.Msg,
	}
	if original != nil {
		fields["root_cause_original_error"] = original.Error()
	}
	if root.ErrorCode != nil {
		fields["root_cause_error_code"] = root.ErrorCode.String()
	}

	chain := make([]map[string]interface{}, 0, len(links))
	for _, link := range links {
		level := map[string]interface{}{
			"file": link.FileName,
			"line": link.Line,
			"func": link.FuncName,
			"msg":  link.Msg,
		}
		if link.ErrorCode != nil {
			level["code"] = link.ErrorCode.String()
		}
		if link.TraceID != "" {
			level["trace_id"] = link.TraceID
		}
		if link == e && enableFullStack {
			if stack := link.fullStack(); stack != "" {
				level["stack_trace"] = stack
			}
		}
		chain = append(chain, level)
	}
	fields["error_chain"] = chain
	if e.TraceID != "" {
		fields["trace_id"] = e.TraceID
	}

	msg := e.Msg
	if len(msgs) > 0 {
		msg = strings.Join(msgs, ", ")
	}
	log.WithFields(fields).Error(msg)
	return e
}

func caller(skip int) *Error {
	pc, file, line, ok := runtime.Caller(skip)
	if !ok {
		return &Error{FileName: "<unknown>", FuncName: "<unknown>"}
	}
	funcName := "<unknown>"
	if details := runtime.FuncForPC(pc); details != nil {
		funcName = details.Name()
	}
	return &Error{FileName: file, Line: line, FuncName: funcName}
}

func (e *Error) fullStack() string {
	if e.Stack != "" || !enableFullStack {
		return e.Stack
	}
	buf := stackBufferPool.Get().([]byte)
	defer stackBufferPool.Put(buf)
	n := runtime.Stack(buf, false)
	e.Stack = string(buf[:n])
	return e.Stack
}

// SetStackTraceEnabled 控制是否启用完整堆栈跟踪
func SetStackTraceEnabled(enabled bool) {
	enableFullStack = enabled
}

func getErrCode(err error) *ErrorCode {
	if err == nil {
		return ErrorCodeUnknown
	}
	var inner *Error
	if errors.As(err, &inner) && inner.ErrorCode != nil {
		return inner.ErrorCode
	}
	for _, e := range notfounds {
		if errors.Is(err, e) {
			return ErrorCodeNotFound
		}
	}
	return ErrorCodeUnknown
}

func ParseError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Quick(err.Error(), err)
}

func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	var e *Error
	if errors.As(err, &e) && e.ErrorCode == ErrorCodeNotFound {
		return true
	}
	for _, target := range notfounds {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsValid 是否为参数校验错误
func IsValid(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.ErrorCode == ErrorCodeValid
}
