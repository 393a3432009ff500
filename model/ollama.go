package model

// Wire types for the Ollama HTTP API.

// OllamaEmbeddingRequest is a request to the /api/embeddings endpoint.
type OllamaEmbeddingRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

// OllamaEmbeddingResponse is a response from the /api/embeddings endpoint.
type OllamaEmbeddingResponse struct {
	Embedding []float64 `json:"embedding"`
}

// OllamaGenerateRequest is a request to the /api/generate endpoint.
type OllamaGenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

// OllamaGenerateResponse is a (non-streaming) response from /api/generate.
type OllamaGenerateResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// OllamaModelInfo describes one installed model as reported by /api/tags.
type OllamaModelInfo struct {
	Name       string `json:"name"`
	Size       int64  `json:"size"`
	ModifiedAt string `json:"modified_at"`
	Details    struct {
		ParameterSize string `json:"parameter_size"`
		Family        string `json:"family"`
	} `json:"details"`
}

// OllamaTagsResponse is a response from the /api/tags endpoint.
type OllamaTagsResponse struct {
	Models []OllamaModelInfo `json:"models"`
}
