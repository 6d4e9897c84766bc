package log

// Common field names for structured logging.
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldUserID     = "user_id"
	FieldTaskID     = "task_id"
	FieldIncomeID   = "income_id"
	FieldMonth      = "month"
	FieldYear       = "year"
	FieldAmount     = "amount_cents"
	FieldCacheKey   = "cache_key"
	FieldBackend    = "backend"
)

// Standard component names.
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentCache     = "cache"
	ComponentService   = "service"
	ComponentStore     = "store"
	ComponentStorage   = "storage"
	ComponentRates     = "rates"
	ComponentAdvisor   = "advisor"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentMirror    = "mirror"
	ComponentAuth      = "auth"
	ComponentRateLimit = "rate_limit"
)

// Standard operation names.
const (
	OpCreate     = "create"
	OpRead       = "read"
	OpUpdate     = "update"
	OpDelete     = "delete"
	OpList       = "list"
	OpInvalidate = "invalidate"
	OpPublish    = "publish"
	OpConsume    = "consume"
	OpStartup    = "startup"
	OpShutdown   = "shutdown"
)
