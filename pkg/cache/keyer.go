package cache

import "strings"

// Keyer derives cache keys.
type Keyer interface {
	// ModelKey identifies a model learned from the dataset with the given
	// content hash under the given hyperparameters.
	ModelKey(kind, datasetHash string, params map[string]string) string

	// DatasetKey identifies an imported dataset by its source path.
	DatasetKey(path string) string
}

// DefaultKeyer hashes its inputs into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// ModelKey implements [Keyer]. Map iteration order does not affect the key.
func (DefaultKeyer) ModelKey(kind, datasetHash string, params map[string]string) string {
	return hashKey("model:"+strings.ToLower(kind), datasetHash, params)
}

// DatasetKey implements [Keyer].
func (DefaultKeyer) DatasetKey(path string) string {
	return "dataset:" + path
}
