package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pevans/dslreviews/review"
)

// timeFormat has a fixed width so stored timestamps sort as text.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// ReviewStore persists extracted review records in SQLite.
type ReviewStore struct {
	db *sql.DB
}

// StoredReview is a record saved from one page.
type StoredReview struct {
	ID          uuid.UUID     `json:"id"`
	Source      string        `json:"source"`
	ExtractedAt time.Time     `json:"extracted_at"`
	ReviewDate  *string       `json:"review_date,omitempty"`
	Record      review.Record `json:"record"`
}

// Filter narrows ListRecords and CountRecords.
type Filter struct {
	Source   *string // Page path or URL the record came from
	Provider *string
	Limit    int
	Offset   int
}

// NewReviewStore opens (creating if needed) the database at dbPath.
func NewReviewStore(dbPath string) (*ReviewStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &ReviewStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// quote makes a field name usable as a column name; some contain '-'.
func quote(field string) string {
	return `"` + field + `"`
}

func fieldColumns() string {
	cols := make([]string, len(review.Columns))
	for i, field := range review.Columns {
		cols[i] = quote(field)
	}
	return strings.Join(cols, ", ")
}

// initSchema creates the reviews table if it doesn't exist.
func (s *ReviewStore) initSchema() error {
	var b strings.Builder
	b.WriteString(`
	CREATE TABLE IF NOT EXISTS reviews (
		id TEXT PRIMARY KEY,
		source TEXT NOT NULL,
		extracted_at TEXT NOT NULL,
		review_date TEXT`)
	for _, field := range review.Columns {
		fmt.Fprintf(&b, ",\n\t\t%s TEXT", quote(field))
	}
	b.WriteString(`
	);
	CREATE INDEX IF NOT EXISTS reviews_source ON reviews (source);
	`)

	_, err := s.db.Exec(b.String())
	return err
}

// Close closes the database connection.
func (s *ReviewStore) Close() error {
	return s.db.Close()
}

// SaveRecords stores records extracted from source in one transaction. Each
// record gets a new ID; nothing is deduplicated.
func (s *ReviewStore) SaveRecords(source string, records []review.Record, now time.Time) ([]StoredReview, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(review.Columns)+4), ", ")
	query := fmt.Sprintf(
		"INSERT INTO reviews (id, source, extracted_at, review_date, %s) VALUES (%s)",
		fieldColumns(), placeholders,
	)

	stmt, err := tx.Prepare(query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	extractedAt := now.UTC()
	saved := make([]StoredReview, 0, len(records))
	for _, record := range records {
		stored := StoredReview{
			ID:          uuid.New(),
			Source:      source,
			ExtractedAt: extractedAt,
			Record:      record,
		}
		if date, ok := record.ReviewDate(now); ok {
			stored.ReviewDate = &date
		}

		args := []any{
			stored.ID.String(),
			stored.Source,
			extractedAt.Format(timeFormat),
			nullable(stored.ReviewDate),
		}
		for _, field := range review.Columns {
			if v, ok := record[field]; ok {
				args = append(args, v)
			} else {
				args = append(args, nil)
			}
		}

		if _, err := stmt.Exec(args...); err != nil {
			return nil, fmt.Errorf("failed to insert review: %w", err)
		}
		saved = append(saved, stored)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit reviews: %w", err)
	}

	return saved, nil
}

func (f Filter) where() (string, []any) {
	var whereClauses []string
	var args []any

	if f.Source != nil {
		whereClauses = append(whereClauses, "source = ?")
		args = append(args, *f.Source)
	}
	if f.Provider != nil {
		whereClauses = append(whereClauses, quote(review.FieldProvider)+" = ?")
		args = append(args, *f.Provider)
	}

	if len(whereClauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(whereClauses, " AND "), args
}

// ListRecords lists stored reviews in the order they were saved.
func (s *ReviewStore) ListRecords(filter Filter) ([]StoredReview, error) {
	where, args := filter.where()
	query := fmt.Sprintf(
		"SELECT id, source, extracted_at, review_date, %s FROM reviews%s ORDER BY extracted_at, rowid",
		fieldColumns(), where,
	)

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	} else if filter.Offset > 0 {
		query += " LIMIT -1"
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query reviews: %w", err)
	}
	defer rows.Close()

	var reviews []StoredReview
	for rows.Next() {
		var idStr, source, extractedAtStr string
		var reviewDate sql.NullString
		fields := make([]sql.NullString, len(review.Columns))

		dest := []any{&idStr, &source, &extractedAtStr, &reviewDate}
		for i := range fields {
			dest = append(dest, &fields[i])
		}

		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}

		stored, err := scanReview(idStr, source, extractedAtStr, reviewDate, fields)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, *stored)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read reviews: %w", err)
	}

	return reviews, nil
}

// CountRecords counts stored reviews matching filter, ignoring its limit
// and offset.
func (s *ReviewStore) CountRecords(filter Filter) (int, error) {
	where, args := filter.where()

	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM reviews"+where, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count reviews: %w", err)
	}
	return count, nil
}

func scanReview(
	idStr, source, extractedAtStr string,
	reviewDate sql.NullString,
	fields []sql.NullString,
) (*StoredReview, error) {
	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("invalid review id %q: %w", idStr, err)
	}

	extractedAt, err := time.Parse(timeFormat, extractedAtStr)
	if err != nil {
		return nil, fmt.Errorf("invalid extracted_at %q: %w", extractedAtStr, err)
	}

	stored := &StoredReview{
		ID:          id,
		Source:      source,
		ExtractedAt: extractedAt,
		Record:      review.Record{},
	}
	if reviewDate.Valid {
		stored.ReviewDate = &reviewDate.String
	}
	for i, field := range review.Columns {
		if fields[i].Valid {
			stored.Record[field] = fields[i].String
		}
	}

	return stored, nil
}

func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
