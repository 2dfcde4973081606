package services

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/lib/pq"

	"github.com/hackfiles/file-vault/internal/models"
	"github.com/hackfiles/file-vault/internal/vfs"
)

// PostgresStorage is the metadata repository: entries, users and the
// timer_config singleton.
type PostgresStorage struct {
	db *sql.DB
}

var postgresInstance *PostgresStorage

// InitializePostgres sets up PostgreSQL storage
func InitializePostgres(connectionString string) error {
	pg := &PostgresStorage{}
	if err := pg.Connect(connectionString); err != nil {
		return err
	}
	postgresInstance = pg
	return nil
}

func GetPostgres() *PostgresStorage {
	return postgresInstance
}

// Connect establishes connection to PostgreSQL
func (p *PostgresStorage) Connect(connectionString string) error {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %v", err)
	}

	// Test the connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping PostgreSQL: %v", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	p.db = db

	if err := p.createTables(); err != nil {
		return fmt.Errorf("failed to create tables: %v", err)
	}

	log.Println("Connected to PostgreSQL successfully")
	return nil
}

func (p *PostgresStorage) createTables() error {
	query := `
    CREATE TABLE IF NOT EXISTS entries (
        id UUID PRIMARY KEY,
        owner_id VARCHAR(64) NOT NULL,
        name VARCHAR(255) NOT NULL,
        path TEXT NOT NULL DEFAULT '/',
        object_key TEXT NOT NULL,
        is_folder BOOLEAN NOT NULL DEFAULT false,
        size BIGINT NOT NULL DEFAULT 0,
        mime_type TEXT,
        scan_status VARCHAR(50) DEFAULT 'pending',
        scanned_at TIMESTAMPTZ,
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    );

    CREATE TABLE IF NOT EXISTS users (
        id VARCHAR(64) PRIMARY KEY,
        email VARCHAR(255) UNIQUE,
        first_name VARCHAR(255) NOT NULL DEFAULT '',
        last_name VARCHAR(255) NOT NULL DEFAULT '',
        is_admin BOOLEAN NOT NULL DEFAULT false,
        is_active BOOLEAN NOT NULL DEFAULT true,
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    );

    CREATE TABLE IF NOT EXISTS timer_config (
        id VARCHAR(32) PRIMARY KEY,
        deadline TIMESTAMPTZ NOT NULL,
        is_active BOOLEAN NOT NULL DEFAULT true,
        created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
        updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
    );
    `
	if _, err := p.db.Exec(query); err != nil {
		return err
	}

	// No uniqueness constraint on (owner_id, path, name): duplicate file
	// names at the same path are permitted; only folder creation checks
	// siblings. Listing is served by the (owner_id, path) index.
	indexQuery := `
    CREATE INDEX IF NOT EXISTS idx_entries_owner_path ON entries(owner_id, path);
    CREATE INDEX IF NOT EXISTS idx_entries_owner ON entries(owner_id);
    CREATE INDEX IF NOT EXISTS idx_entries_scan_status ON entries(scan_status);
    `
	_, err := p.db.Exec(indexQuery)
	return err
}

const entryColumns = `id, owner_id, name, path, object_key, is_folder, size, mime_type, COALESCE(scan_status, ''), created_at, updated_at`

func scanEntry(row interface{ Scan(...interface{}) error }) (models.Entry, error) {
	var e models.Entry
	var mime sql.NullString
	err := row.Scan(&e.ID, &e.OwnerID, &e.Name, &e.Path, &e.ObjectKey,
		&e.IsFolder, &e.Size, &mime, &e.ScanStatus, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return models.Entry{}, err
	}
	if mime.Valid {
		e.MimeType = &mime.String
	}
	return e, nil
}

// CreateEntry inserts one entry row. A unique violation surfaces as a
// conflict so the core can report it as such instead of a generic failure.
func (p *PostgresStorage) CreateEntry(ctx context.Context, e models.Entry) (models.Entry, error) {
	query := `
    INSERT INTO entries (id, owner_id, name, path, object_key, is_folder, size, mime_type, scan_status, created_at, updated_at)
    VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
    `
	var mime sql.NullString
	if e.MimeType != nil {
		mime = sql.NullString{String: *e.MimeType, Valid: true}
	}
	_, err := p.db.ExecContext(ctx, query,
		e.ID, e.OwnerID, e.Name, e.Path, e.ObjectKey,
		e.IsFolder, e.Size, mime, e.ScanStatus, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return models.Entry{}, &vfs.ConflictError{Name: e.Name}
		}
		return models.Entry{}, err
	}
	return e, nil
}

func (p *PostgresStorage) GetEntry(ctx context.Context, ownerID, id string) (models.Entry, bool, error) {
	query := `SELECT ` + entryColumns + ` FROM entries WHERE id = $1 AND owner_id = $2`
	e, err := scanEntry(p.db.QueryRowContext(ctx, query, id, ownerID))
	if err == sql.ErrNoRows {
		return models.Entry{}, false, nil
	}
	if err != nil {
		return models.Entry{}, false, err
	}
	return e, true, nil
}

func (p *PostgresStorage) ListByPath(ctx context.Context, ownerID, path string) ([]models.Entry, error) {
	query := `
    SELECT ` + entryColumns + `
    FROM entries
    WHERE owner_id = $1 AND path = $2
    ORDER BY is_folder DESC, name ASC
    `
	rows, err := p.db.QueryContext(ctx, query, ownerID, path)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []models.Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (p *PostgresStorage) SiblingExists(ctx context.Context, ownerID, path, name string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM entries WHERE owner_id = $1 AND path = $2 AND name = $3)`
	var exists bool
	err := p.db.QueryRowContext(ctx, query, ownerID, path, name).Scan(&exists)
	return exists, err
}

func (p *PostgresStorage) DeleteEntry(ctx context.Context, ownerID, id string) error {
	_, err := p.db.ExecContext(ctx, `DELETE FROM entries WHERE id = $1 AND owner_id = $2`, id, ownerID)
	return err
}

// DeleteByPrefix removes every entry whose path or object key starts with the
// given prefixes. The folder's own row matches keyPrefix exactly, so it goes
// too.
func (p *PostgresStorage) DeleteByPrefix(ctx context.Context, ownerID, pathPrefix, keyPrefix string) (int64, error) {
	query := `
    DELETE FROM entries
    WHERE owner_id = $1 AND (path LIKE $2 OR object_key LIKE $3)
    `
	res, err := p.db.ExecContext(ctx, query, ownerID, escapeLike(pathPrefix)+"%", escapeLike(keyPrefix)+"%")
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteAllEntriesForOwner wipes an owner's whole namespace. Used by the
// users.deleted consumer.
func (p *PostgresStorage) DeleteAllEntriesForOwner(ctx context.Context, ownerID string) (int64, error) {
	res, err := p.db.ExecContext(ctx, `DELETE FROM entries WHERE owner_id = $1`, ownerID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// UpdateScanStatus records a malware-scan verdict for one entry.
func (p *PostgresStorage) UpdateScanStatus(ctx context.Context, entryID, status string, scannedAt time.Time) error {
	_, err := p.db.ExecContext(ctx,
		`UPDATE entries SET scan_status = $1, scanned_at = $2, updated_at = NOW() WHERE id = $3`,
		status, scannedAt, entryID)
	return err
}

// User operations

// UpsertUser inserts or refreshes a user row from verified token claims.
// Admin and active flags are owned by the database, not the token.
func (p *PostgresStorage) UpsertUser(ctx context.Context, u models.User) (models.User, error) {
	query := `
    INSERT INTO users (id, email, first_name, last_name)
    VALUES ($1, $2, $3, $4)
    ON CONFLICT (id) DO UPDATE SET
        email = EXCLUDED.email,
        first_name = EXCLUDED.first_name,
        last_name = EXCLUDED.last_name,
        updated_at = NOW()
    RETURNING id, COALESCE(email, ''), first_name, last_name, is_admin, is_active, created_at, updated_at
    `
	var out models.User
	err := p.db.QueryRowContext(ctx, query, u.ID, u.Email, u.FirstName, u.LastName).Scan(
		&out.ID, &out.Email, &out.FirstName, &out.LastName,
		&out.IsAdmin, &out.IsActive, &out.CreatedAt, &out.UpdatedAt,
	)
	return out, err
}

func (p *PostgresStorage) GetUser(ctx context.Context, id string) (models.User, bool, error) {
	query := `
    SELECT id, COALESCE(email, ''), first_name, last_name, is_admin, is_active, created_at, updated_at
    FROM users WHERE id = $1
    `
	var u models.User
	err := p.db.QueryRowContext(ctx, query, id).Scan(
		&u.ID, &u.Email, &u.FirstName, &u.LastName,
		&u.IsAdmin, &u.IsActive, &u.CreatedAt, &u.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return models.User{}, false, nil
	}
	if err != nil {
		return models.User{}, false, err
	}
	return u, true, nil
}

func (p *PostgresStorage) ListUsers(ctx context.Context) ([]models.User, error) {
	query := `
    SELECT id, COALESCE(email, ''), first_name, last_name, is_admin, is_active, created_at, updated_at
    FROM users ORDER BY email
    `
	rows, err := p.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName,
			&u.IsAdmin, &u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (p *PostgresStorage) SetUserActive(ctx context.Context, id string, active bool) (bool, error) {
	res, err := p.db.ExecContext(ctx,
		`UPDATE users SET is_active = $1, updated_at = NOW() WHERE id = $2`, active, id)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (p *PostgresStorage) DeleteUser(ctx context.Context, id string) (bool, error) {
	res, err := p.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// Timer operations

func (p *PostgresStorage) GetTimerConfig(ctx context.Context) (models.TimerConfig, bool, error) {
	query := `SELECT id, deadline, is_active, created_at, updated_at FROM timer_config WHERE id = 'default'`
	var cfg models.TimerConfig
	err := p.db.QueryRowContext(ctx, query).Scan(
		&cfg.ID, &cfg.Deadline, &cfg.IsActive, &cfg.CreatedAt, &cfg.UpdatedAt)
	if err == sql.ErrNoRows {
		return models.TimerConfig{}, false, nil
	}
	if err != nil {
		return models.TimerConfig{}, false, err
	}
	return cfg, true, nil
}

func (p *PostgresStorage) UpsertTimerConfig(ctx context.Context, deadline time.Time, isActive bool) (models.TimerConfig, error) {
	query := `
    INSERT INTO timer_config (id, deadline, is_active)
    VALUES ('default', $1, $2)
    ON CONFLICT (id) DO UPDATE SET
        deadline = EXCLUDED.deadline,
        is_active = EXCLUDED.is_active,
        updated_at = NOW()
    RETURNING id, deadline, is_active, created_at, updated_at
    `
	var cfg models.TimerConfig
	err := p.db.QueryRowContext(ctx, query, deadline, isActive).Scan(
		&cfg.ID, &cfg.Deadline, &cfg.IsActive, &cfg.CreatedAt, &cfg.UpdatedAt)
	return cfg, err
}

// Admin stats

func (p *PostgresStorage) GetTotalStats(ctx context.Context) (models.TotalStats, error) {
	var stats models.TotalStats
	if err := p.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&stats.TotalUsers); err != nil {
		return stats, err
	}
	err := p.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(size), 0) FROM entries WHERE is_folder = false`,
	).Scan(&stats.TotalFiles, &stats.TotalSize)
	return stats, err
}

func (p *PostgresStorage) GetUserStorageStats(ctx context.Context) ([]models.UserStorageStat, error) {
	query := `
    SELECT u.id, COALESCE(u.email, ''), u.first_name, u.last_name,
           COUNT(e.id) FILTER (WHERE e.is_folder = false),
           COALESCE(SUM(e.size) FILTER (WHERE e.is_folder = false), 0)
    FROM users u
    LEFT JOIN entries e ON e.owner_id = u.id
    GROUP BY u.id, u.email, u.first_name, u.last_name
    ORDER BY u.email
    `
	rows, err := p.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := []models.UserStorageStat{}
	for rows.Next() {
		var s models.UserStorageStat
		if err := rows.Scan(&s.UserID, &s.Email, &s.FirstName, &s.LastName,
			&s.TotalFiles, &s.TotalSize); err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

func isUniqueViolation(err error) bool {
	if pqErr, ok := err.(*pq.Error); ok {
		return pqErr.Code == "23505"
	}
	return false
}
