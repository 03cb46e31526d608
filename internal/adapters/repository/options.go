package repository

// defaultDBFile is the sqlite database file name inside the cache dir.
const defaultDBFile = "gridcast.db"

type settings struct {
	dbFile string
}

func newSettings(opts []Option) settings {
	s := settings{dbFile: defaultDBFile}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// Option applies a configuration option to a Store.
type Option func(*settings)

// WithDBFile sets the sqlite database file name inside the cache dir.
func WithDBFile(name string) Option {
	return func(s *settings) {
		if name != "" {
			s.dbFile = name
		}
	}
}
