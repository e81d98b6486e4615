package producer

const (
	typeRawTranscriptUpdate       = "raw_transcript_update"
	typeCorrectedTranscriptUpdate = "corrected_transcript_update"
	typeProcessingFinished        = "processing_finished"
	typeProcessingError           = "processing_error"

	typeStartProcessing = "start_processing"
)

type transcriptUpdateMessage struct {
	Type    string  `json:"type"`
	Text    string  `json:"text"`
	EndTime float64 `json:"end_time"`
}

type processingFinishedMessage struct {
	Type   string `json:"type"`
	Status string `json:"status"`
}

type processingErrorMessage struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

type startProcessingMessage struct {
	Type        string `json:"type"`
	AudioSample string `json:"audio_sample"`
}
