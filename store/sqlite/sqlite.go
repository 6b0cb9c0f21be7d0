/*
Package sqlite provides the SQLite-backed store for the labor engine's
persistent records.

PURPOSE:
  The labor engine itself is stateless; what this store persists is the
  surrounding HR state: the synced employee roster and the payroll pay
  periods. In production the same patterns apply to PostgreSQL - only minor
  SQL dialect differences.

KEY TABLES:
  employees:   Staff roster synced from the HRIS (payroll id, wage, location)
  pay_periods: Payroll processing windows per location, with status

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

USAGE:
  store, err := sqlite.New("./data/labor.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper migration
  tool (golang-migrate, goose) with versioned migrations.
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Pay period lifecycle states.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateID is returned when creating a record whose id exists.
	ErrDuplicateID = errors.New("id already exists")

	// ErrOverlap is returned when a pay period overlaps an existing one for
	// the same location.
	ErrOverlap = errors.New("pay period overlaps an existing period for this location")
)

// Employee is a staff roster record synced from the HRIS.
type Employee struct {
	ID         string
	Name       string
	Email      string
	PayrollID  string // payroll-system identifier (e.g. Gusto id)
	Location   string
	HourlyWage float64 // dollars
	HireDate   time.Time
	CreatedAt  time.Time
}

// PayPeriod is one payroll processing window for a location.
type PayPeriod struct {
	ID         string
	StartDate  time.Time
	EndDate    time.Time
	Status     string
	Location   string
	LocationID *int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// PayPeriodUpdate carries optional field changes; nil means leave as-is.
type PayPeriodUpdate struct {
	StartDate  *time.Time
	EndDate    *time.Time
	Status     *string
	Location   *string
	LocationID *int64
}

// Store wraps the SQLite connection.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a store at the given database path. Use ":memory:" for an
// in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT,
		payroll_id TEXT,
		location TEXT,
		hourly_wage REAL NOT NULL DEFAULT 0,
		hire_date TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_employees_location
		ON employees(location);
	CREATE INDEX IF NOT EXISTS idx_employees_payroll
		ON employees(payroll_id) WHERE payroll_id IS NOT NULL;

	CREATE TABLE IF NOT EXISTS pay_periods (
		id TEXT PRIMARY KEY,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		location TEXT NOT NULL,
		location_id INTEGER,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Listing is always newest-first per location
	CREATE INDEX IF NOT EXISTS idx_pay_periods_location_start
		ON pay_periods(location, start_date DESC);
	CREATE INDEX IF NOT EXISTS idx_pay_periods_status
		ON pay_periods(status);
	`
	_, err := s.db.Exec(schema)
	return err
}

const dateLayout = "2006-01-02"

// =============================================================================
// EMPLOYEES
// =============================================================================

// SaveEmployee inserts or updates an employee record (upsert keyed by id).
func (s *Store) SaveEmployee(ctx context.Context, e Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO employees (id, name, email, payroll_id, location, hourly_wage, hire_date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			payroll_id = excluded.payroll_id,
			location = excluded.location,
			hourly_wage = excluded.hourly_wage,
			hire_date = excluded.hire_date`,
		e.ID, e.Name, e.Email, e.PayrollID, e.Location, e.HourlyWage,
		e.HireDate.Format(dateLayout), e.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("save employee: %w", err)
	}
	return nil
}

// GetEmployee returns one employee, or ErrNotFound.
func (s *Store) GetEmployee(ctx context.Context, id string) (*Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, email, payroll_id, location, hourly_wage, hire_date, created_at
		FROM employees WHERE id = ?`, id)

	e, err := scanEmployee(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get employee: %w", err)
	}
	return e, nil
}

// ListEmployees returns the roster, optionally filtered by location, ordered
// by name.
func (s *Store) ListEmployees(ctx context.Context, location string) ([]Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, name, email, payroll_id, location, hourly_wage, hire_date, created_at
		FROM employees`
	args := []any{}
	if location != "" {
		query += ` WHERE location = ?`
		args = append(args, location)
	}
	query += ` ORDER BY name`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	defer rows.Close()

	var employees []Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("list employees: %w", err)
		}
		employees = append(employees, *e)
	}
	return employees, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row rowScanner) (*Employee, error) {
	var e Employee
	var email, payrollID, location sql.NullString
	var hireDate, createdAt string

	if err := row.Scan(&e.ID, &e.Name, &email, &payrollID, &location, &e.HourlyWage, &hireDate, &createdAt); err != nil {
		return nil, err
	}

	e.Email = email.String
	e.PayrollID = payrollID.String
	e.Location = location.String
	e.HireDate, _ = time.Parse(dateLayout, hireDate)
	e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &e, nil
}

// =============================================================================
// PAY PERIODS
// =============================================================================

// CreatePayPeriod inserts a new pay period. Rejects duplicate ids and windows
// overlapping an existing period for the same location.
func (s *Store) CreatePayPeriod(ctx context.Context, p PayPeriod) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	overlapping, err := s.overlapping(ctx, p.StartDate, p.EndDate, p.Location, p.ID)
	if err != nil {
		return err
	}
	if len(overlapping) > 0 {
		return ErrOverlap
	}

	if p.Status == "" {
		p.Status = StatusPending
	}
	now := time.Now().UTC().Format(time.RFC3339)

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO pay_periods (id, start_date, end_date, status, location, location_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.StartDate.Format(dateLayout), p.EndDate.Format(dateLayout),
		p.Status, p.Location, p.LocationID, now, now)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrDuplicateID
		}
		return fmt.Errorf("create pay period: %w", err)
	}
	return nil
}

// GetPayPeriod returns one pay period, or ErrNotFound.
func (s *Store) GetPayPeriod(ctx context.Context, id string) (*PayPeriod, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, start_date, end_date, status, location, location_id, created_at, updated_at
		FROM pay_periods WHERE id = ?`, id)

	p, err := scanPayPeriod(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get pay period: %w", err)
	}
	return p, nil
}

// ListPayPeriods returns pay periods newest-first, optionally filtered by
// location and/or status.
func (s *Store) ListPayPeriods(ctx context.Context, location, status string) ([]PayPeriod, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, start_date, end_date, status, location, location_id, created_at, updated_at
		FROM pay_periods`
	var clauses []string
	var args []any
	if location != "" {
		clauses = append(clauses, "location = ?")
		args = append(args, location)
	}
	if status != "" {
		clauses = append(clauses, "status = ?")
		args = append(args, status)
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += ` ORDER BY start_date DESC, created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list pay periods: %w", err)
	}
	defer rows.Close()

	var periods []PayPeriod
	for rows.Next() {
		p, err := scanPayPeriod(rows)
		if err != nil {
			return nil, fmt.Errorf("list pay periods: %w", err)
		}
		periods = append(periods, *p)
	}
	return periods, rows.Err()
}

// UpdatePayPeriod applies the non-nil fields of update and returns the new
// record. Window changes re-run the overlap check.
func (s *Store) UpdatePayPeriod(ctx context.Context, id string, update PayPeriodUpdate) (*PayPeriod, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, start_date, end_date, status, location, location_id, created_at, updated_at
		FROM pay_periods WHERE id = ?`, id)
	p, err := scanPayPeriod(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update pay period: %w", err)
	}

	if update.StartDate != nil {
		p.StartDate = *update.StartDate
	}
	if update.EndDate != nil {
		p.EndDate = *update.EndDate
	}
	if update.Status != nil {
		p.Status = *update.Status
	}
	if update.Location != nil {
		p.Location = *update.Location
	}
	if update.LocationID != nil {
		p.LocationID = update.LocationID
	}

	if update.StartDate != nil || update.EndDate != nil || update.Location != nil {
		overlapping, err := s.overlapping(ctx, p.StartDate, p.EndDate, p.Location, id)
		if err != nil {
			return nil, err
		}
		if len(overlapping) > 0 {
			return nil, ErrOverlap
		}
	}

	p.UpdatedAt = time.Now().UTC()
	_, err = s.db.ExecContext(ctx, `
		UPDATE pay_periods
		SET start_date = ?, end_date = ?, status = ?, location = ?, location_id = ?, updated_at = ?
		WHERE id = ?`,
		p.StartDate.Format(dateLayout), p.EndDate.Format(dateLayout),
		p.Status, p.Location, p.LocationID, p.UpdatedAt.Format(time.RFC3339), id)
	if err != nil {
		return nil, fmt.Errorf("update pay period: %w", err)
	}
	return p, nil
}

// DeletePayPeriod removes a pay period. Returns ErrNotFound if absent.
func (s *Store) DeletePayPeriod(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM pay_periods WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete pay period: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// OverlappingPayPeriods returns periods at the same location whose window
// intersects [start, end], excluding excludeID.
func (s *Store) OverlappingPayPeriods(ctx context.Context, start, end time.Time, location, excludeID string) ([]PayPeriod, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.overlapping(ctx, start, end, location, excludeID)
}

func (s *Store) overlapping(ctx context.Context, start, end time.Time, location, excludeID string) ([]PayPeriod, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, start_date, end_date, status, location, location_id, created_at, updated_at
		FROM pay_periods
		WHERE location = ? AND start_date <= ? AND end_date >= ? AND id != ?`,
		location, end.Format(dateLayout), start.Format(dateLayout), excludeID)
	if err != nil {
		return nil, fmt.Errorf("overlap check: %w", err)
	}
	defer rows.Close()

	var periods []PayPeriod
	for rows.Next() {
		p, err := scanPayPeriod(rows)
		if err != nil {
			return nil, fmt.Errorf("overlap check: %w", err)
		}
		periods = append(periods, *p)
	}
	return periods, rows.Err()
}

func scanPayPeriod(row rowScanner) (*PayPeriod, error) {
	var p PayPeriod
	var locationID sql.NullInt64
	var startDate, endDate, createdAt, updatedAt string

	if err := row.Scan(&p.ID, &startDate, &endDate, &p.Status, &p.Location, &locationID, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	if locationID.Valid {
		p.LocationID = &locationID.Int64
	}
	p.StartDate, _ = time.Parse(dateLayout, startDate)
	p.EndDate, _ = time.Parse(dateLayout, endDate)
	p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	p.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &p, nil
}
