package types

// Exchange is one question/answer pair of a session transcript.
type Exchange struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type AskRequest struct {
	Question string `json:"question"`
}

type AskResponse struct {
	Answer  string           `json:"answer"`
	Sources []RetrievedChunk `json:"sources,omitempty"`
}

type TranscriptResponse struct {
	Messages []Exchange `json:"messages"`
}

type HistoryResponse struct {
	Questions []QuestionRecord `json:"questions"`
}
