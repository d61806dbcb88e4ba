package logging

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldStage is the standardized structured logging key for pipeline stage names.
	FieldStage = "stage"
	// FieldItem is the standardized structured logging key for media item identities.
	FieldItem = "item"
	// FieldRunID is the standardized structured logging key for pipeline run identifiers.
	FieldRunID = "run_id"
	// FieldTaskID is the standardized structured logging key for background task identifiers.
	FieldTaskID = "task_id"
	// FieldProject is the standardized structured logging key for ledger project identifiers.
	FieldProject = "project"
	// FieldEventType is the standardized structured logging key for machine-readable event names.
	FieldEventType = "event_type"
	// FieldErrorHint is the standardized structured logging key for operator next steps.
	FieldErrorHint = "error_hint"
)
