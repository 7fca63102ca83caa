package announcement

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"futoconnect/internal/adapters/storage"
	domain "futoconnect/internal/domain/announcement"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db  storage.SQLDB
	now func() time.Time
}

// NewSQLiteStore creates a new SQLiteStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db, now: time.Now}
}

const announcementColumns = `id, title, description, category, tag, time, isUrgent, isRead, isSaved, createdAt`

// List returns announcements matching the filter.
// PRE: filter has valid parameters
// POST: Returns matching announcements ordered by createdAt DESC (newest first)
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Announcement, error) {
	where, args := whereClause(filter)
	query := `SELECT ` + announcementColumns + ` FROM announcements` + where + ` ORDER BY createdAt DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += ` OFFSET ?`
			args = append(args, filter.Offset)
		}
	} else if filter.Offset > 0 {
		query += ` LIMIT -1 OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, domain.WrapStorage("list", err)
	}
	defer rows.Close()

	list, err := scanAnnouncements(rows)
	if err != nil {
		return nil, domain.WrapStorage("list", err)
	}
	return list, nil
}

// Count returns the number of announcements matching the filter, ignoring Limit and Offset.
func (s *SQLiteStore) Count(ctx context.Context, filter ListFilter) (int, error) {
	where, args := whereClause(filter)
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM announcements`+where, args...).Scan(&n); err != nil {
		return 0, domain.WrapStorage("count", err)
	}
	return n, nil
}

// GetByID retrieves an announcement by ID.
// PRE: id is non-empty
// POST: Returns the entity or ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Announcement, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+announcementColumns+` FROM announcements WHERE id = ?`, id)
	a, err := scanAnnouncement(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Announcement{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Announcement{}, domain.WrapStorage("get", err)
	}
	return a, nil
}

// Create inserts a new announcement and assigns its createdAt.
// The stamp is max(now, newest existing stamp + 1ns), computed inside the insert,
// so it is unique and strictly increasing with insertion order.
// PRE: value is valid; creation defaults are already applied by the caller
// POST: Row is persisted as given; the returned value carries the assigned CreatedAt
func (s *SQLiteStore) Create(ctx context.Context, value domain.Announcement) (domain.Announcement, error) {
	if err := value.Validate(); err != nil {
		return domain.Announcement{}, err
	}
	var stamp int64
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO announcements (`+announcementColumns+`)
		 SELECT ?, ?, ?, ?, ?, ?, ?, ?, ?,
		   MAX(?, COALESCE((SELECT MAX(createdAt) FROM announcements), 0) + 1)
		 RETURNING createdAt`,
		value.ID, value.Title, value.Description, value.Category, value.Tag, value.Time,
		boolToInt(value.IsUrgent), boolToInt(value.IsRead), boolToInt(value.IsSaved),
		s.now().UnixNano()).Scan(&stamp)
	if err != nil {
		return domain.Announcement{}, domain.WrapStorage("create", err)
	}
	value.CreatedAt = fromStamp(stamp)
	return value, nil
}

// Update overwrites the editable fields of an announcement.
// PRE: none
// POST: title, description, category, tag and isUrgent replaced; ErrNotFound if id is absent
func (s *SQLiteStore) Update(ctx context.Context, id string, edit domain.Edit) error {
	edit = edit.Normalize()
	if err := edit.Validate(); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE announcements SET title = ?, description = ?, category = ?, tag = ?, isUrgent = ?
		 WHERE id = ?`,
		edit.Title, edit.Description, edit.Category, edit.Tag, boolToInt(edit.IsUrgent), id)
	if err != nil {
		return domain.WrapStorage("update", err)
	}
	return requireAffected(res, "update")
}

// Delete removes an announcement by ID.
// PRE: id is non-empty
// POST: No row with the id remains; an absent id is not an error
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM announcements WHERE id = ?`, id)
	return domain.WrapStorage("delete", err)
}

// MarkRead sets isRead on an announcement.
// POST: isRead is true; ErrNotFound if id is absent
func (s *SQLiteStore) MarkRead(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE announcements SET isRead = 1 WHERE id = ?`, id)
	if err != nil {
		return domain.WrapStorage("mark_read", err)
	}
	return requireAffected(res, "mark_read")
}

// ToggleSaved flips isSaved in one statement and returns the new value.
// POST: isSaved negated; ErrNotFound if id is absent
func (s *SQLiteStore) ToggleSaved(ctx context.Context, id string) (bool, error) {
	var saved int
	err := s.db.QueryRowContext(ctx,
		`UPDATE announcements SET isSaved = 1 - isSaved WHERE id = ? RETURNING isSaved`, id).Scan(&saved)
	if errors.Is(err, sql.ErrNoRows) {
		return false, domain.ErrNotFound
	}
	if err != nil {
		return false, domain.WrapStorage("toggle_saved", err)
	}
	return saved != 0, nil
}

// Seeded reports whether the table holds at least one announcement.
func (s *SQLiteStore) Seeded(ctx context.Context) (bool, error) {
	var exists int
	if err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM announcements)`).Scan(&exists); err != nil {
		return false, domain.WrapStorage("seeded", err)
	}
	return exists != 0, nil
}

func whereClause(filter ListFilter) (string, []any) {
	where := ` WHERE 1=1`
	args := []any{}

	if filter.Category != "" {
		where += ` AND category = ?`
		args = append(args, filter.Category)
	}
	if filter.Tag != "" {
		where += ` AND tag = ?`
		args = append(args, filter.Tag)
	}
	if filter.Saved != nil {
		where += ` AND isSaved = ?`
		args = append(args, boolToInt(*filter.Saved))
	}
	if filter.Read != nil {
		where += ` AND isRead = ?`
		args = append(args, boolToInt(*filter.Read))
	}
	if filter.Urgent != nil {
		where += ` AND isUrgent = ?`
		args = append(args, boolToInt(*filter.Urgent))
	}
	if filter.Search != "" {
		q := strings.ToLower(filter.Search)
		where += ` AND (instr(` + storage.FoldFunc + `(title), ?) > 0 OR instr(` + storage.FoldFunc + `(description), ?) > 0)`
		args = append(args, q, q)
	}
	return where, args
}

func requireAffected(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return domain.WrapStorage(op, err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// scannedRow holds the integer-encoded columns of an announcement row.
type scannedRow struct {
	isUrgent  int
	isRead    int
	isSaved   int
	createdAt int64
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnnouncement(row rowScanner) (domain.Announcement, error) {
	var a domain.Announcement
	var s scannedRow
	err := row.Scan(&a.ID, &a.Title, &a.Description, &a.Category, &a.Tag, &a.Time,
		&s.isUrgent, &s.isRead, &s.isSaved, &s.createdAt)
	if err != nil {
		return domain.Announcement{}, err
	}
	a.IsUrgent = s.isUrgent != 0
	a.IsRead = s.isRead != 0
	a.IsSaved = s.isSaved != 0
	a.CreatedAt = fromStamp(s.createdAt)
	return a, nil
}

func scanAnnouncements(rows *sql.Rows) ([]domain.Announcement, error) {
	list := []domain.Announcement{}
	for rows.Next() {
		a, err := scanAnnouncement(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

func fromStamp(nanos int64) time.Time {
	return time.Unix(0, nanos).UTC()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
