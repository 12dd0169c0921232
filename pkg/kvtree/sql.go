package kvtree

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"
)

// leafRow tree_leaves 테이블 레코드
type leafRow struct {
	ID    uint64 `gorm:"primaryKey"`
	Path  string `gorm:"column:path;size:512;not null;uniqueIndex"`
	Value string `gorm:"column:value;type:text;not null"`
	Seq   int64  `gorm:"column:seq;not null;index"`
}

func (leafRow) TableName() string {
	return "tree_leaves"
}

// SQLTree stores the flattened tree in a single relational table through gorm.
// MySQL is used in production; SQLite serves local runs and tests.
type SQLTree struct {
	db      *gorm.DB
	lastSeq atomic.Int64
}

// NewSQLTree SQL 기반 트리 생성
func NewSQLTree(db *gorm.DB) *SQLTree {
	return &SQLTree{db: db}
}

// mysqlTableOptions 경로 비교는 대소문자를 구분해야 한다 (item/Bag ≠ item/bag)
const mysqlTableOptions = "ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_bin"

// Migrate creates or updates the tree_leaves table. On MySQL the path column
// is forced to utf8mb4_bin, also for tables created before that was set.
func (s *SQLTree) Migrate(ctx context.Context) error {
	db := s.db.WithContext(ctx)
	if db.Dialector.Name() != "mysql" {
		return db.AutoMigrate(&leafRow{})
	}
	if err := db.Set("gorm:table_options", mysqlTableOptions).AutoMigrate(&leafRow{}); err != nil {
		return err
	}
	return db.Exec("ALTER TABLE tree_leaves MODIFY path VARCHAR(512) CHARACTER SET utf8mb4 COLLATE utf8mb4_bin NOT NULL").Error
}

// nextSeq returns a clock-based sequence that never repeats within the process.
func (s *SQLTree) nextSeq() int64 {
	for {
		last := s.lastSeq.Load()
		next := time.Now().UnixNano()
		if next <= last {
			next = last + 1
		}
		if s.lastSeq.CompareAndSwap(last, next) {
			return next
		}
	}
}

// subtreeScope matches prefix and everything below it. LIKE is avoided because
// it ignores ASCII case on SQLite; SUBSTR + "=" compares with the column collation
// (BINARY on SQLite, utf8mb4_bin on MySQL) and needs no wildcard escaping.
func subtreeScope(prefix string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if prefix == "" {
			return db
		}
		below := prefix + separator
		return db.Where("path = ? OR SUBSTR(path, 1, ?) = ?", prefix, utf8.RuneCountInString(below), below)
	}
}

func (s *SQLTree) subtree(db *gorm.DB, prefix string) ([]leaf, error) {
	var rows []leafRow
	if err := db.Scopes(subtreeScope(prefix)).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query subtree %q: %w", prefix, err)
	}
	leaves := make([]leaf, 0, len(rows))
	for _, row := range rows {
		leaves = append(leaves, leaf{path: row.Path, value: json.RawMessage(row.Value), seq: row.Seq})
	}
	return leaves, nil
}

func (s *SQLTree) Get(ctx context.Context, path ...string) (json.RawMessage, error) {
	p, err := joinPath(path)
	if err != nil {
		return nil, err
	}
	leaves, err := s.subtree(s.db.WithContext(ctx), p)
	if err != nil {
		return nil, err
	}
	return rebuild(p, leaves)
}

func (s *SQLTree) Set(ctx context.Context, value interface{}, path ...string) error {
	p, err := joinPath(path)
	if err != nil {
		return err
	}
	flat, err := flatten(p, value)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.replace(tx, p, flat)
	})
}

// replace swaps the subtree at p for the given leaves inside tx.
func (s *SQLTree) replace(tx *gorm.DB, p string, flat map[string]json.RawMessage) error {
	old, err := s.subtree(tx, p)
	if err != nil {
		return err
	}
	seq, ok := minSeq(old)
	if !ok {
		seq = s.nextSeq()
	}

	if len(old) > 0 {
		del := tx
		if p == "" {
			del = tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		}
		if err := del.Scopes(subtreeScope(p)).Delete(&leafRow{}).Error; err != nil {
			return fmt.Errorf("delete subtree %q: %w", p, err)
		}
	}
	if up := ancestors(p); len(up) > 0 {
		if err := tx.Where("path IN ?", up).Delete(&leafRow{}).Error; err != nil {
			return fmt.Errorf("delete ancestors of %q: %w", p, err)
		}
	}
	if len(flat) == 0 {
		return nil
	}

	rows := make([]leafRow, 0, len(flat))
	for lp, v := range flat {
		rows = append(rows, leafRow{Path: lp, Value: string(v), Seq: seq})
	}
	if err := tx.CreateInBatches(rows, 100).Error; err != nil {
		return fmt.Errorf("insert leaves %q: %w", p, err)
	}
	return nil
}

func (s *SQLTree) Update(ctx context.Context, fields map[string]interface{}, path ...string) error {
	p, err := joinPath(path)
	if err != nil {
		return err
	}
	keys := sortedFields(fields)
	flats := make([]map[string]json.RawMessage, len(keys))
	for i, k := range keys {
		if !ValidKey(k) {
			return fmt.Errorf("%w: %q", ErrInvalidKey, k)
		}
		if flats[i], err = flatten(childPath(p, k), fields[k]); err != nil {
			return err
		}
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, k := range keys {
			if err := s.replace(tx, childPath(p, k), flats[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *SQLTree) Remove(ctx context.Context, path ...string) error {
	p, err := joinPath(path)
	if err != nil {
		return err
	}
	db := s.db.WithContext(ctx)
	if p == "" {
		db = db.Session(&gorm.Session{AllowGlobalUpdate: true})
	}
	if err := db.Scopes(subtreeScope(p)).Delete(&leafRow{}).Error; err != nil {
		return fmt.Errorf("remove %q: %w", p, err)
	}
	return nil
}

func (s *SQLTree) Children(ctx context.Context, path ...string) ([]Child, error) {
	p, err := joinPath(path)
	if err != nil {
		return nil, err
	}
	leaves, err := s.subtree(s.db.WithContext(ctx), p)
	if err != nil {
		return nil, err
	}
	return group(p, leaves)
}

func (s *SQLTree) Push(ctx context.Context, value interface{}, path ...string) (string, error) {
	key, err := pushKey()
	if err != nil {
		return "", err
	}
	if err := s.Set(ctx, value, append(append([]string{}, path...), key)...); err != nil {
		return "", err
	}
	return key, nil
}

func (s *SQLTree) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *SQLTree) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
