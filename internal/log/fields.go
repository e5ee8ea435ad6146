package log

import "ledger/internal/core"

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldOperation   = "operation"
	FieldError       = "error"
	FieldSuccess     = "success"
	FieldExpenseID   = "expense_id"
	FieldExpenseName = "expense_name"
	FieldAmount      = "amount"
	FieldCategory    = "category"
	FieldDate        = "date"
	FieldYear        = "year"
	FieldMonth       = "month"
	FieldCount       = "count"
	FieldPath        = "path"
	FieldBackend     = "backend"
	FieldMirror      = "mirror"
	FieldEvent       = "event"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentCLI     = "cli"
	ComponentLedger  = "ledger"
	ComponentCodec   = "codec"
	ComponentStorage = "storage"
	ComponentBackend = "backend"
	ComponentEvents  = "events"
	ComponentSheets  = "sheets"
	ComponentReports = "reports"
	ComponentCache   = "cache"
	ComponentWorker  = "worker"
)

// Operations defines standard operation names
const (
	OpAdd    = "add"
	OpUpdate = "update"
	OpRemove = "remove"
	OpList   = "list"
	OpLoad   = "load"
	OpSave   = "save"
	OpExport = "export"
	OpReport = "report"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithComponent adds component field
func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
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

// WithExpense adds expense-related fields
func (f LogFields) WithExpense(e core.Expense) LogFields {
	f[FieldExpenseID] = e.ID()
	f[FieldExpenseName] = e.Name
	f[FieldAmount] = core.FormatAmount(e.Amount)
	f[FieldCategory] = e.Category.Name()
	f[FieldDate] = e.Date.String()
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
