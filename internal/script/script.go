// ABOUTME: Meditation script and caption types
// ABOUTME: Resolves the active caption for an elapsed session time
package script

// Segment is a captioned span of narration with start/end offsets in
// seconds relative to narration start.
type Segment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start_second"`
	End   float64 `json:"end_second"`
}

// Script is one generated meditation narration.
type Script struct {
	Title    string    `json:"title"`
	FullText string    `json:"full_text"`
	Segments []Segment `json:"segments"`
}

// ActiveCaption returns the text of the first segment containing the
// elapsed time, or "" when none does. Segments are not assumed monotonic
// or non-overlapping; on overlap the first match in list order wins, and
// that first-match behavior is the contract.
func ActiveCaption(elapsed float64, segments []Segment) string {
	for _, seg := range segments {
		if seg.Start <= elapsed && elapsed <= seg.End {
			return seg.Text
		}
	}
	return ""
}
