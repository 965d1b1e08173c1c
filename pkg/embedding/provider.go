package embedding

// Task types hint the provider at the embedding's purpose.
const (
	TaskQuery    = "RETRIEVAL_QUERY"
	TaskDocument = "RETRIEVAL_DOCUMENT"
)

type Response struct {
	Values []float32
}

// Provider generates text embeddings for indexing and querying.
type Provider interface {
	Generate(text string, taskType string) (*Response, error)
}
