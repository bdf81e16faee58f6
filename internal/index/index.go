package index

// DeckIndex defines the interface for deck indexing operations.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with mocks.
type DeckIndex interface {
	UpsertDeck(d DeckRow, slides []SlideRow) error
	DeleteDeck(path string) error
	GetChecksum(path string) (string, error)
	GetDeck(path string) (*DeckRow, error)
	ListDecks(limit, offset int, sort string) ([]DeckRow, int, error)
	Slides(path string) ([]SlideRow, error)
	Search(query string, limit int) ([]SearchResult, error)
	AllChecksums() (map[string]string, error)
	Close() error
}

// Verify *DB satisfies DeckIndex at compile time.
var _ DeckIndex = (*DB)(nil)
