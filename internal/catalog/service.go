package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/snowflakedb/gosnowflake"

	"warebridge/pkg/errors"
	"warebridge/pkg/models"
)

const referencesQuery = `
SELECT DISTINCT referenced_database
FROM snowflake.account_usage.object_dependencies
WHERE UPPER(referencing_database) = UPPER(?)
  AND UPPER(referenced_database) <> UPPER(referencing_database)`

// Service is the production catalog client, backed by the platform's SQL
// endpoint. Catalog queries run through a retry loop and a circuit breaker
// so a flapping endpoint degrades analysis instead of hammering it.
type Service struct {
	db             *sql.DB
	config         models.Endpoint
	timeout        time.Duration
	connected      bool
	circuitBreaker *errors.CircuitBreaker
}

// NewService creates a catalog service for the given endpoint
func NewService(endpoint models.Endpoint) *Service {
	return &Service{
		config:         endpoint,
		timeout:        30 * time.Second,
		circuitBreaker: errors.NewCircuitBreaker("catalog", 5, 30*time.Second),
	}
}

// NewServiceWithDB wires an existing database handle, used by tests
func NewServiceWithDB(db *sql.DB) *Service {
	return &Service{
		db:             db,
		timeout:        30 * time.Second,
		connected:      true,
		circuitBreaker: errors.NewCircuitBreaker("catalog", 5, 30*time.Second),
	}
}

// Connect establishes a connection to the catalog endpoint
func (s *Service) Connect() error {
	if s.connected {
		return nil
	}

	return s.circuitBreaker.Execute(context.Background(), func() error {
		return errors.RetryWithBackoff(context.Background(), func(ctx context.Context) error {
			dsn := fmt.Sprintf("%s:%s@%s?warehouse=%s&role=%s",
				s.config.Username,
				s.config.Password,
				s.config.Server,
				s.config.Warehouse,
				s.config.Role,
			)

			db, err := sql.Open("snowflake", dsn)
			if err != nil {
				return errors.Wrap(err, errors.ErrCodeCatalogUnavailable,
					"Failed to open catalog connection").
					WithContext("server", s.config.Server)
			}

			db.SetMaxOpenConns(4)
			db.SetMaxIdleConns(2)
			db.SetConnMaxLifetime(10 * time.Minute)

			connCtx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()

			if err := db.PingContext(connCtx); err != nil {
				db.Close()

				if strings.Contains(err.Error(), "authentication") {
					return errors.New(errors.ErrCodeAuthenticationFailed, "Authentication failed").
						WithContext("user", s.config.Username).
						WithSuggestions(
							"Verify your username and password",
							"Check if your account is locked",
						)
				}

				return errors.Wrap(err, errors.ErrCodeCatalogUnavailable,
					"Failed to connect to catalog endpoint").
					WithContext("server", s.config.Server).
					AsRecoverable()
			}

			s.db = db
			s.connected = true
			return nil
		})
	})
}

// Close closes the catalog connection
func (s *Service) Close() error {
	if !s.connected || s.db == nil {
		return nil
	}
	s.connected = false
	return s.db.Close()
}

// References returns the distinct warehouses referenced by objects inside
// the given warehouse, per the platform's object dependency view.
func (s *Service) References(ctx context.Context, warehouse string) ([]string, error) {
	if !s.connected {
		if err := s.Connect(); err != nil {
			return nil, err
		}
	}

	queryCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var refs []string
	err := s.circuitBreaker.Execute(queryCtx, func() error {
		rows, err := s.db.QueryContext(queryCtx, referencesQuery, warehouse)
		if err != nil {
			return errors.CatalogError("Failed to query object dependencies", warehouse, err)
		}
		defer rows.Close()

		refs = refs[:0]
		for rows.Next() {
			var name string
			if err := rows.Scan(&name); err != nil {
				return errors.CatalogError("Failed to read dependency row", warehouse, err)
			}
			if name != "" {
				refs = append(refs, name)
			}
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	return refs, nil
}

// ItemType classifies a catalog item. Imported (shared) databases expose
// read-only query access over data owned elsewhere, which is exactly the
// shape that must not receive base tables on publish.
func (s *Service) ItemType(ctx context.Context, name string) (ItemType, error) {
	if !s.connected {
		if err := s.Connect(); err != nil {
			return ItemTypeUnknown, err
		}
	}

	queryCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := s.db.QueryContext(queryCtx,
		"SELECT database_name, type FROM information_schema.databases WHERE UPPER(database_name) = UPPER(?)",
		name)
	if err != nil {
		return ItemTypeUnknown, errors.CatalogError("Failed to classify catalog item", name, err)
	}
	defer rows.Close()

	for rows.Next() {
		var dbName, dbType string
		if err := rows.Scan(&dbName, &dbType); err != nil {
			return ItemTypeUnknown, errors.CatalogError("Failed to read catalog item row", name, err)
		}
		if strings.EqualFold(dbType, "IMPORTED DATABASE") {
			return ItemTypeVirtualizedEndpoint, nil
		}
		return ItemTypeWarehouse, nil
	}
	if err := rows.Err(); err != nil {
		return ItemTypeUnknown, errors.CatalogError("Failed to classify catalog item", name, err)
	}

	return ItemTypeUnknown, nil
}

// ValidateEndpoint validates the catalog endpoint configuration
func ValidateEndpoint(endpoint models.Endpoint) error {
	if endpoint.Server == "" {
		return fmt.Errorf("server is required")
	}
	if endpoint.Username == "" {
		return fmt.Errorf("username is required")
	}
	if endpoint.Password == "" {
		return fmt.Errorf("password is required")
	}
	return nil
}
