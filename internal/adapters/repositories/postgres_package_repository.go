package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"parcel-delivery-service/internal/domain"
	"parcel-delivery-service/internal/platform/obs"
	"parcel-delivery-service/internal/ports"

	"github.com/google/uuid"
)

// Postgres-backed implementation of the PackageRepository port.
type PostgresPackageRepository struct{ DB *sql.DB }

func NewPostgresPackageRepository(db *sql.DB) *PostgresPackageRepository {
	return &PostgresPackageRepository{DB: db}
}

var _ ports.PackageRepository = (*PostgresPackageRepository)(nil)

func (r *PostgresPackageRepository) Create(ctx context.Context, p *domain.Package) (err error) {
	defer obs.Time(ctx, "repo.CreatePackage")(&err)

	if r.DB == nil {
		return errors.New("package repository: DB is nil")
	}

	query := `
	INSERT INTO packages (id, name, weight, price, type_id, session_id, shipping_cost)
	VALUES ($1, $2, $3, $4, $5, $6, $7);
	`
	_, err = r.DB.ExecContext(ctx, query,
		p.ID, p.Name, p.Weight, p.Price, p.TypeID, p.SessionID, p.ShippingCost)
	if err != nil {
		return fmt.Errorf("create package: insert row: %w", err)
	}

	return nil
}

// List a session's packages, newest last, with the filtered total counted
// before pagination so callers can derive page math.
func (r *PostgresPackageRepository) ListBySession(
	ctx context.Context,
	sessionID uuid.UUID,
	f ports.ListFilter,
) (_ []*domain.Package, _ int, err error) {
	defer obs.Time(ctx, "repo.ListPackages")(&err)

	if r.DB == nil {
		return nil, 0, errors.New("package repository: DB is nil")
	}

	where := []string{"session_id = $1"}
	args := []any{sessionID}

	if f.TypeID != nil {
		args = append(args, *f.TypeID)
		where = append(where, fmt.Sprintf("type_id = $%d", len(args)))
	}

	if f.HasShippingCost != nil {
		args = append(args, domain.CostPending)
		if *f.HasShippingCost {
			where = append(where, fmt.Sprintf("(shipping_cost IS NOT NULL AND shipping_cost <> $%d)", len(args)))
		} else {
			where = append(where, fmt.Sprintf("(shipping_cost IS NULL OR shipping_cost = $%d)", len(args)))
		}
	}

	cond := strings.Join(where, " AND ")

	var total int
	countQuery := "SELECT COUNT(*) FROM packages WHERE " + cond + ";"
	if err = r.DB.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("list packages: count rows: %w", err)
	}

	// Creation order plus id keeps pagination stable across pages.
	listQuery := fmt.Sprintf(`
	SELECT id, name, weight, price, type_id, session_id, COALESCE(shipping_cost, '')
	FROM packages
	WHERE %s
	ORDER BY created_at, id
	LIMIT $%d OFFSET $%d;
	`, cond, len(args)+1, len(args)+2)
	args = append(args, f.Size, f.Offset())

	rows, err := r.DB.QueryContext(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list packages: query packages table: %w", err)
	}
	defer rows.Close()

	packages := make([]*domain.Package, 0, f.Size)
	for rows.Next() {
		p, err := scanPackage(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("list packages: %w", err)
		}
		packages = append(packages, p)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list packages: row iteration: %w", err)
	}

	return packages, total, nil
}

func (r *PostgresPackageRepository) GetByIDAndSession(ctx context.Context, id, sessionID uuid.UUID) (_ *domain.Package, err error) {
	defer obs.Time(ctx, "repo.GetPackage")(&err)

	if r.DB == nil {
		return nil, errors.New("package repository: DB is nil")
	}

	query := `
	SELECT id, name, weight, price, type_id, session_id, COALESCE(shipping_cost, '')
	FROM packages
	WHERE id = $1 AND session_id = $2;
	`
	p, err := scanPackage(r.DB.QueryRowContext(ctx, query, id, sessionID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get package: %w", err)
	}

	return p, nil
}

func (r *PostgresPackageRepository) GetByID(ctx context.Context, id uuid.UUID) (_ *domain.Package, err error) {
	defer obs.Time(ctx, "repo.GetPackageUnscoped")(&err)

	if r.DB == nil {
		return nil, errors.New("package repository: DB is nil")
	}

	query := `
	SELECT id, name, weight, price, type_id, session_id, COALESCE(shipping_cost, '')
	FROM packages
	WHERE id = $1;
	`
	p, err := scanPackage(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get package by id: %w", err)
	}

	return p, nil
}

// UpdateShippingCost overwrites the cost. Zero rows affected means the
// package was removed out-of-band, which the caller treats as success.
func (r *PostgresPackageRepository) UpdateShippingCost(ctx context.Context, id uuid.UUID, cost string) (err error) {
	defer obs.Time(ctx, "repo.UpdateShippingCost")(&err)

	if r.DB == nil {
		return errors.New("package repository: DB is nil")
	}

	query := `UPDATE packages SET shipping_cost = $2 WHERE id = $1;`
	if _, err = r.DB.ExecContext(ctx, query, id, cost); err != nil {
		return fmt.Errorf("update shipping cost: %w", err)
	}

	return nil
}

func (r *PostgresPackageRepository) ListUnpriced(ctx context.Context) (_ []*domain.Package, err error) {
	defer obs.Time(ctx, "repo.ListUnpriced")(&err)

	if r.DB == nil {
		return nil, errors.New("package repository: DB is nil")
	}

	query := `
	SELECT id, name, weight, price, type_id, session_id, COALESCE(shipping_cost, '')
	FROM packages
	WHERE shipping_cost IS NULL OR shipping_cost = $1
	ORDER BY created_at, id;
	`
	rows, err := r.DB.QueryContext(ctx, query, domain.CostPending)
	if err != nil {
		return nil, fmt.Errorf("list unpriced packages: %w", err)
	}
	defer rows.Close()

	packages := make([]*domain.Package, 0, 64)
	for rows.Next() {
		p, err := scanPackage(rows)
		if err != nil {
			return nil, fmt.Errorf("list unpriced packages: %w", err)
		}
		packages = append(packages, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("list unpriced packages: row iteration: %w", err)
	}

	return packages, nil
}

func (r *PostgresPackageRepository) ListTypes(ctx context.Context) (_ []domain.PackageType, err error) {
	defer obs.Time(ctx, "repo.ListPackageTypes")(&err)

	if r.DB == nil {
		return nil, errors.New("package repository: DB is nil")
	}

	rows, err := r.DB.QueryContext(ctx, `SELECT id, name FROM package_types ORDER BY id;`)
	if err != nil {
		return nil, fmt.Errorf("list package types: %w", err)
	}
	defer rows.Close()

	types := make([]domain.PackageType, 0, 8)
	for rows.Next() {
		var t domain.PackageType
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, fmt.Errorf("list package types: scan row: %w", err)
		}
		types = append(types, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("list package types: row iteration: %w", err)
	}

	return types, nil
}

func (r *PostgresPackageRepository) GetTypeByID(ctx context.Context, id int) (_ *domain.PackageType, err error) {
	defer obs.Time(ctx, "repo.GetPackageType")(&err)

	if r.DB == nil {
		return nil, errors.New("package repository: DB is nil")
	}

	var t domain.PackageType
	err = r.DB.QueryRowContext(ctx,
		`SELECT id, name FROM package_types WHERE id = $1;`, id).Scan(&t.ID, &t.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUnknownType
		}
		return nil, fmt.Errorf("get package type: %w", err)
	}

	return &t, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPackage(row rowScanner) (*domain.Package, error) {
	var p domain.Package
	err := row.Scan(&p.ID, &p.Name, &p.Weight, &p.Price, &p.TypeID, &p.SessionID, &p.ShippingCost)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("scan package row: %w", err)
	}
	return &p, nil
}
