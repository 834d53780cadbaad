package pipeline

// ProcessingResult records the outcome of one statement file. Error is
// empty on success; artifact paths are empty for stages that did not run.
type ProcessingResult struct {
	FileName   string `json:"file_name"`
	FileID     string `json:"file_id"`
	Success    bool   `json:"success"`
	Error      string `json:"error,omitempty"`
	PDFPath    string `json:"pdf_path,omitempty"`
	TextPath   string `json:"text_path,omitempty"`
	JSONPath   string `json:"json_path,omitempty"`
	TextLength int    `json:"text_length,omitempty"`
}

// RunSummary aggregates a full pipeline run. Total always equals
// Successful + Failed.
type RunSummary struct {
	Total      int                `json:"total"`
	Successful int                `json:"successful"`
	Failed     int                `json:"failed"`
	Results    []ProcessingResult `json:"results"`
}

func (s *RunSummary) add(r ProcessingResult) {
	s.Total++
	if r.Success {
		s.Successful++
	} else {
		s.Failed++
	}
	s.Results = append(s.Results, r)
}
