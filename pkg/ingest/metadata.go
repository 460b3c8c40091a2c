package ingest

// FilterMetadata keeps only primitive-valued entries. Loaders attach
// nested structures that do not survive a round trip through a JSONB
// column and add nothing to retrieval.
func FilterMetadata(metadata map[string]interface{}) map[string]interface{} {
	filtered := make(map[string]interface{}, len(metadata))
	for k, v := range metadata {
		switch v.(type) {
		case string, bool,
			int, int32, int64,
			float32, float64:
			filtered[k] = v
		}
	}
	return filtered
}
