package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/Kerhoff/wishlist/internal/models"
	"github.com/Kerhoff/wishlist/internal/repository"
)

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

type stateStore struct {
	db *sql.DB
}

// NewStateStore creates a StateStore backed by the family_members and
// wishlist_items tables.
//
// Writers are serialized with a table lock held for the whole update
// transaction, so item IDs computed from the current maximum stay unique
// across processes.
func NewStateStore(db *sql.DB) repository.StateStore {
	return &stateStore{db: db}
}

func (r *stateStore) Load(ctx context.Context) (*models.State, error) {
	return loadState(ctx, r.db)
}

func (r *stateStore) Update(ctx context.Context, fn repository.UpdateFunc) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `LOCK TABLE wishlist_items IN SHARE ROW EXCLUSIVE MODE`); err != nil {
		return fmt.Errorf("failed to lock wishlist items: %w", err)
	}

	before, err := loadState(ctx, tx)
	if err != nil {
		return err
	}
	after := before.Clone()
	if err := fn(after); err != nil {
		return err
	}

	if err := applyDiff(ctx, tx, before, after); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit state update: %w", err)
	}
	return nil
}

func (r *stateStore) Init(ctx context.Context, seed *models.State) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `LOCK TABLE family_members IN SHARE ROW EXCLUSIVE MODE`); err != nil {
		return false, fmt.Errorf("failed to lock family members: %w", err)
	}

	var members int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM family_members`).Scan(&members); err != nil {
		return false, fmt.Errorf("failed to count family members: %w", err)
	}
	if members > 0 {
		return false, nil
	}

	if err := applyDiff(ctx, tx, models.NewState(), seed); err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit seed data: %w", err)
	}
	return true, nil
}

func (r *stateStore) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	return nil
}

// Close is a no-op: the connection pool belongs to config.Database.
func (r *stateStore) Close() error { return nil }

func loadState(ctx context.Context, q queryer) (*models.State, error) {
	state := models.NewState()

	rows, err := q.QueryContext(ctx, `
		SELECT id, name, avatar
		FROM family_members
		ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query family members: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m models.FamilyMember
		if err := rows.Scan(&m.ID, &m.Name, &m.Avatar); err != nil {
			return nil, fmt.Errorf("failed to scan family member: %w", err)
		}
		state.FamilyMembers = append(state.FamilyMembers, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate family members: %w", err)
	}

	itemRows, err := q.QueryContext(ctx, `
		SELECT id, member_id, item, link, size, color, notes, purchased
		FROM wishlist_items
		ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query wishlist items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var (
			it       models.WishlistItem
			memberID int64
		)
		if err := itemRows.Scan(
			&it.ID,
			&memberID,
			&it.Item,
			&it.Link,
			&it.Size,
			&it.Color,
			&it.Notes,
			&it.Purchased,
		); err != nil {
			return nil, fmt.Errorf("failed to scan wishlist item: %w", err)
		}
		state.Wishlists[memberID] = append(state.Wishlists[memberID], it)
	}
	if err := itemRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate wishlist items: %w", err)
	}

	return state, nil
}

type ownedItem struct {
	memberID int64
	item     models.WishlistItem
}

func indexItems(s *models.State) map[int64]ownedItem {
	out := make(map[int64]ownedItem)
	for memberID, items := range s.Wishlists {
		for _, it := range items {
			out[it.ID] = ownedItem{memberID: memberID, item: it}
		}
	}
	return out
}

// applyDiff writes the difference between before and after: new roster
// entries, deleted items, changed items and inserted items, in that order.
func applyDiff(ctx context.Context, tx *sql.Tx, before, after *models.State) error {
	for _, m := range after.FamilyMembers {
		if _, ok := before.Member(m.ID); ok {
			continue
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO family_members (id, name, avatar)
			VALUES ($1, $2, $3)`,
			m.ID, m.Name, m.Avatar,
		); err != nil {
			return fmt.Errorf("failed to insert family member %d: %w", m.ID, err)
		}
	}

	old := indexItems(before)
	cur := indexItems(after)

	var deleted []int64
	for id := range old {
		if _, ok := cur[id]; !ok {
			deleted = append(deleted, id)
		}
	}
	sort.Slice(deleted, func(i, j int) bool { return deleted[i] < deleted[j] })
	for _, id := range deleted {
		if _, err := tx.ExecContext(ctx, `DELETE FROM wishlist_items WHERE id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete wishlist item %d: %w", id, err)
		}
	}

	for _, memberID := range after.MemberIDs() {
		for _, it := range after.Wishlists[memberID] {
			prev, existed := old[it.ID]
			if existed && prev.memberID == memberID && prev.item == it {
				continue
			}
			if existed {
				if _, err := tx.ExecContext(ctx, `
					UPDATE wishlist_items
					SET member_id = $2, item = $3, link = $4, size = $5, color = $6, notes = $7, purchased = $8
					WHERE id = $1`,
					it.ID, memberID, it.Item, it.Link, it.Size, it.Color, it.Notes, it.Purchased,
				); err != nil {
					return fmt.Errorf("failed to update wishlist item %d: %w", it.ID, err)
				}
				continue
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO wishlist_items (id, member_id, item, link, size, color, notes, purchased)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
				it.ID, memberID, it.Item, it.Link, it.Size, it.Color, it.Notes, it.Purchased,
			); err != nil {
				return fmt.Errorf("failed to insert wishlist item %d: %w", it.ID, err)
			}
		}
	}

	return nil
}
