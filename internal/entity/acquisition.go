package entity

import "time"

// AcquisitionMethod identifies which provider produced a result.
type AcquisitionMethod string

const (
	MethodDocumentAI AcquisitionMethod = "document-ai"
	MethodVisionOCR  AcquisitionMethod = "vision-ocr"
	MethodOnDevice   AcquisitionMethod = "on-device"
)

// Rect is a bounding region in image pixel coordinates.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// TextElement is the smallest recognized unit (roughly a word).
type TextElement struct {
	Text       string  `json:"text"`
	Bounds     Rect    `json:"bounds"`
	Confidence float32 `json:"confidence"`
}

// TextLine is a run of elements on one visual line.
type TextLine struct {
	Text       string        `json:"text"`
	Bounds     Rect          `json:"bounds"`
	Confidence float32       `json:"confidence"`
	Elements   []TextElement `json:"elements,omitempty"`
}

// TextBlock groups lines belonging to one visual region.
type TextBlock struct {
	Text       string     `json:"text"`
	Bounds     Rect       `json:"bounds"`
	Confidence float32    `json:"confidence"`
	Lines      []TextLine `json:"lines,omitempty"`
}

// RecognizedText is the immutable result of an OCR acquisition: the full
// text plus the block → line → element hierarchy. Produced once per call and
// never mutated afterwards.
type RecognizedText struct {
	FullText string      `json:"full_text"`
	Blocks   []TextBlock `json:"blocks,omitempty"`
}

// Entity is one typed entity from the document-understanding provider.
// Composite entities (line items) carry nested Properties.
type Entity struct {
	Type        string   `json:"type"`
	MentionText string   `json:"mention_text"`
	Confidence  float32  `json:"confidence"`
	Properties  []Entity `json:"properties,omitempty"`
}

// AcquisitionResult is the single-use outcome of one provider call.
type AcquisitionResult struct {
	Success      bool              `json:"success"`
	ErrorMessage string            `json:"error_message,omitempty"`
	Confidence   float32           `json:"confidence"`
	Duration     time.Duration     `json:"duration"`
	Method       AcquisitionMethod `json:"method"`

	// Text is set for every successful acquisition; Entities only for the
	// document-understanding path (which also reports the document text).
	Text     *RecognizedText `json:"text,omitempty"`
	Entities []Entity        `json:"entities,omitempty"`
}

// FullText returns the recognized text regardless of payload shape.
func (r AcquisitionResult) FullText() string {
	if r.Text != nil {
		return r.Text.FullText
	}
	return ""
}
