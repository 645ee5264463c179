package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldError       = "error"
	FieldOperation   = "operation"
	FieldItemID      = "item_id"
	FieldItemName    = "item_name"
	FieldPurchaseID  = "purchase_id"
	FieldQuantity    = "quantity"
	FieldAmountCents = "amount_cents"
	FieldDate        = "date"
	FieldPending     = "pending"
	FieldSynced      = "synced"
	FieldBackend     = "backend"
	FieldNamespace   = "namespace"
	FieldDuration    = "duration_ms"
)

// Components defines standard component names
const (
	ComponentApp          = "app"
	ComponentCatalog      = "catalog"
	ComponentLedger       = "ledger"
	ComponentSync         = "sync"
	ComponentStorage      = "storage"
	ComponentAMQP         = "amqp"
	ComponentBackend      = "backend"
	ComponentConnectivity = "connectivity"
	ComponentCLI          = "cli"
)

// Operations defines standard operation names
const (
	OpCreate   = "create"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpList     = "list"
	OpSync     = "sync"
	OpLoad     = "load"
	OpSave     = "save"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithItem adds catalog item fields
func (f LogFields) WithItem(id, name string, priceCents int64) LogFields {
	f[FieldItemID] = id
	f[FieldItemName] = name
	f[FieldAmountCents] = priceCents
	return f
}

// WithPurchase adds purchase fields
func (f LogFields) WithPurchase(id, itemID string, quantity int, totalCents int64) LogFields {
	f[FieldPurchaseID] = id
	f[FieldItemID] = itemID
	f[FieldQuantity] = quantity
	f[FieldAmountCents] = totalCents
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
