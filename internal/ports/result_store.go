package ports

// ResultStorePort persists conversion results keyed by the content hash of
// the requirement specification.
type ResultStorePort interface {
	Persist(content []byte, results []string) (string, error)
	Recall(content []byte) (string, error)
}
