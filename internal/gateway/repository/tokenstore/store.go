package tokenstore

import (
	"database/sql"
	"os"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Store persists token sets either in a local JSON file or in Postgres,
// selected at construction. The zero-DSN path is the file backend.
type Store struct {
	path string
	db   *sql.DB

	loadOnce sync.Once
	mu       sync.RWMutex
	byID     map[string]TokenSet

	schemaOnce sync.Once
	schemaErr  error

	setCache *lru.Cache[string, TokenSet]
}

func New(path string) *Store {
	return &Store{
		path: path,
		byID: make(map[string]TokenSet),
	}
}

func NewPostgres(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", strings.TrimSpace(dsn))
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	cache, err := lru.New[string, TokenSet](256)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{
		db:       db,
		setCache: cache,
	}, nil
}

// NewFrom picks Postgres when dsn is non-empty and reachable, the file
// backend otherwise.
func NewFrom(dsn, path string) *Store {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return New(path)
	}
	s, err := NewPostgres(dsn)
	if err != nil {
		return New(path)
	}
	return s
}

// NewFromEnv is NewFrom with the DSN taken from TOKEN_STORE_PG_DSN.
func NewFromEnv(path string) *Store {
	return NewFrom(os.Getenv("TOKEN_STORE_PG_DSN"), path)
}

func (s *Store) EnsureLoaded() {
	if s == nil {
		return
	}
	if s.db != nil {
		_ = s.ensureSchema()
		return
	}
	s.ensureLoadedFile()
}

func (s *Store) Save() {
	if s == nil || s.db != nil {
		return
	}
	s.saveFile()
}

func (s *Store) Get(setID string) (TokenSet, bool) {
	if s == nil {
		return TokenSet{}, false
	}
	if s.db != nil {
		if set, ok := s.setCache.Get(strings.TrimSpace(setID)); ok {
			return set, true
		}
		set, ok := s.getDB(setID)
		if ok {
			s.setCache.Add(set.ID, set)
		}
		return set, ok
	}
	return s.getFile(setID)
}

func (s *Store) Put(set TokenSet) {
	if s == nil {
		return
	}
	if s.db != nil {
		s.putDB(set)
		s.setCache.Remove(strings.TrimSpace(set.ID))
		return
	}
	s.putFile(set)
}

func (s *Store) List() []TokenSet {
	if s == nil {
		return nil
	}
	if s.db != nil {
		return s.listDB()
	}
	return s.listFile()
}
