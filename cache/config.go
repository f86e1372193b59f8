package cache

// Config holds store initialization parameters.
type Config struct {
	// Observer names an observer in the observability registry; empty
	// disables observation.
	Observer string `json:"observer,omitempty"`
	// Capacity is an initial slot-table capacity hint.
	Capacity int `json:"capacity,omitempty"`
}

// DefaultConfig returns the default store configuration: no observer, no
// capacity hint.
func DefaultConfig() Config {
	return Config{}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Observer != "" {
		c.Observer = source.Observer
	}
	if source.Capacity > 0 {
		c.Capacity = source.Capacity
	}
}
