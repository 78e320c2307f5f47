package domain

// NoPendingDocuments is returned instead of aggregated text when nothing is queued.
const NoPendingDocuments = "No pending documents found for processing."

type FailedImport struct {
	Record *ImportRecord
	Err    error
}

// Aggregation is the outcome of one aggregation pass over the pending imports.
type Aggregation struct {
	Text      string
	Succeeded []*ImportRecord
	Failed    []FailedImport
}

func (a *Aggregation) Empty() bool {
	return a == nil || len(a.Succeeded) == 0
}
