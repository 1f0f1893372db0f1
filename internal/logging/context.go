package logging

// Structured field keys shared by every clipset component.
const (
	FieldComponent = "component"
	// FieldItemIndex is the input position of a batch item.
	FieldItemIndex = "item_index"
	FieldStage     = "stage"
	// FieldRunID identifies one pipeline run across fetch, extraction and partition.
	FieldRunID = "run_id"

	FieldEventType = "event_type"
	// FieldErrorHint carries the next step an operator should take.
	FieldErrorHint = "error_hint"
	FieldImpact    = "impact"
	FieldErrorKind = "error_kind"
)
