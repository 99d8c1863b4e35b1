package index

// Posting records how often one term occurs in one document.
type Posting struct {
	DocID     int `json:"doc_id"`
	Frequency int `json:"frequency"`
}

// PostingList holds the postings of a single term in insertion order.
type PostingList []Posting

// TermStats are the collection-wide counts kept for every indexed term.
type TermStats struct {
	DocumentFrequency   int `json:"document_frequency"`
	CollectionFrequency int `json:"collection_frequency"`
}

// TermEntry pairs a term with its statistics and postings.
type TermEntry struct {
	Term     string      `json:"term"`
	Stats    TermStats   `json:"stats"`
	Postings PostingList `json:"postings"`
}

// DocumentNorm is the per-document length information used at scoring
// time.
type DocumentNorm struct {
	// Length is the raw token count of the document.
	Length int `json:"length"`
	// VectorLength is the Euclidean length of the weighted, unnormalized
	// document vector.
	VectorLength float64 `json:"vector_length"`
	// Divisor is what every document weight is divided by when scoring.
	Divisor float64 `json:"divisor"`
}
