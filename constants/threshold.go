package constants

// Confidence thresholds shared across the pipeline.
const (
	// AcceptConfidenceThreshold gates the primary acquisition result: the
	// document-understanding response must exceed this for the fallback OCR
	// call to be skipped.
	AcceptConfidenceThreshold float32 = 0.7

	// AutoSaveThreshold gates persistence: extracted records scoring at or
	// above this are saved automatically, below it they are routed to
	// human annotation.
	AutoSaveThreshold float32 = 0.5
)
