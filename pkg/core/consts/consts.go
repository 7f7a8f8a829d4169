package consts

// TraceKey 上下文中保存追踪ID的键
const TraceKey = "trace_id"

// TraceHeaderName 请求/响应头中的追踪ID
const TraceHeaderName = "X-Trace-Id"

// TenantHeaderName 租户ID请求头
const TenantHeaderName = "X-Tenant-Id"

// TenantLocalKey fiber Locals 中保存租户ID的键
const TenantLocalKey = "tenant_id"
