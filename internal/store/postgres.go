package store

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"nattapol/villaharvester/internal/listing"
	"nattapol/villaharvester/internal/reconcile"
	"nattapol/villaharvester/logger"
	"nattapol/villaharvester/pkg/errors"
)

const uniqueViolationCode = "23505"

// PostgresStore implements RecordStore on PostgreSQL. Snapshot
// documents (features, facilities, policies, nearby places, review
// data) are stored as JSONB so downstream readers consume them
// directly.
type PostgresStore struct {
	db  *sql.DB
	log *logger.Logger
}

// NewPostgresStore opens the database, waits for it to answer pings
// and runs schema migration.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, errors.NewPersistence("", "open database", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, errors.NewPersistence("", "database unreachable after retries", err)
	}

	s := &PostgresStore{db: db, log: logger.ForStore()}
	if err := s.migrate(); err != nil {
		return nil, errors.NewPersistence("", "migrate schema", err)
	}
	return s, nil
}

func (s *PostgresStore) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS villas (
			id               BIGSERIAL PRIMARY KEY,
			external_id      TEXT        NOT NULL UNIQUE,
			slug             TEXT        NOT NULL UNIQUE,
			title            TEXT        NOT NULL DEFAULT '',
			province         TEXT        NOT NULL DEFAULT '',
			district         TEXT        NOT NULL DEFAULT '',
			sub_district     TEXT        NOT NULL DEFAULT '',
			address          TEXT        NOT NULL DEFAULT '',
			latitude         DOUBLE PRECISION,
			longitude        DOUBLE PRECISION,
			price_daily      INTEGER     NOT NULL DEFAULT 0,
			currency         VARCHAR(8)  NOT NULL DEFAULT 'THB',
			price_per_person INTEGER,
			max_guests       INTEGER     NOT NULL DEFAULT 2,
			bedrooms         INTEGER     NOT NULL DEFAULT 1,
			bathrooms        INTEGER     NOT NULL DEFAULT 1,
			description      TEXT        NOT NULL DEFAULT '',
			cover_image      TEXT        NOT NULL DEFAULT '',
			images           JSONB       NOT NULL DEFAULT '[]',
			features         JSONB       NOT NULL DEFAULT '{}',
			facilities       JSONB       NOT NULL DEFAULT '{}',
			policies         JSONB       NOT NULL DEFAULT '{}',
			nearby_places    JSONB       NOT NULL DEFAULT '[]',
			review_data      JSONB       NOT NULL DEFAULT '[]',
			tags             JSONB       NOT NULL DEFAULT '[]',
			rating           DOUBLE PRECISION NOT NULL DEFAULT 0,
			review_count     INTEGER     NOT NULL DEFAULT 0,
			source_url       TEXT        NOT NULL DEFAULT '',
			is_active        BOOLEAN     NOT NULL DEFAULT TRUE,
			created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_villas_province  ON villas(province);
		CREATE INDEX IF NOT EXISTS idx_villas_district  ON villas(district);
		CREATE INDEX IF NOT EXISTS idx_villas_is_active ON villas(is_active);
	`)
	return err
}

const snapshotColumns = `id, external_id, slug, title, province, district, sub_district,
	address, latitude, longitude, price_daily, currency, price_per_person,
	max_guests, bedrooms, bathrooms, description, cover_image, images,
	features, facilities, policies, nearby_places, review_data, tags,
	rating, review_count, source_url, is_active, created_at, updated_at`

// FindNeedingEnrichment selects active snapshots that have never had a
// detail pass, detected by an empty image list.
func (s *PostgresStore) FindNeedingEnrichment(ctx context.Context, limit int) ([]listing.Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT %s FROM villas
		WHERE is_active AND images = '[]'::jsonb
		ORDER BY id
		LIMIT $1
	`, snapshotColumns), limit)
	if err != nil {
		return nil, errors.NewPersistence("", "select enrichment batch", err)
	}
	defer rows.Close()

	var snapshots []listing.Snapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snap)
	}
	return snapshots, rows.Err()
}

// Upsert runs one merge in its own transaction: read the current
// snapshot under lock, apply the override policy, write the result
// back. A slug collision is reported as a benign conflict.
func (s *PostgresStore) Upsert(ctx context.Context, phase reconcile.Phase, in listing.PartialFields) error {
	if in.ExternalID == "" {
		return errors.NewValidation("", "upsert without external id")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewPersistence(in.Slug, "begin transaction", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, fmt.Sprintf(`
		SELECT %s FROM villas WHERE external_id = $1 FOR UPDATE
	`, snapshotColumns), in.ExternalID)

	var existing *listing.Snapshot
	snap, err := scanSnapshot(row)
	switch {
	case err == nil:
		existing = &snap
	case stderrors.Is(err, sql.ErrNoRows):
		existing = nil
	default:
		return err
	}

	merged := reconcile.Merge(existing, in, phase, time.Now().UTC())

	if existing == nil {
		err = s.insert(ctx, tx, merged)
	} else {
		err = s.update(ctx, tx, merged)
	}
	if err != nil {
		if pqErr, ok := unwrapPQError(err); ok && pqErr.Code == uniqueViolationCode {
			s.log.Warn().
				Str("slug", merged.Slug).
				Str("constraint", pqErr.Constraint).
				Msg("Unique violation, treating as already stored")
			return errors.NewConflict(merged.Slug, "unique violation on "+pqErr.Constraint, pqErr)
		}
		return errors.NewPersistence(merged.Slug, "write snapshot", err)
	}

	if err := tx.Commit(); err != nil {
		return errors.NewPersistence(merged.Slug, "commit", err)
	}
	return nil
}

func (s *PostgresStore) insert(ctx context.Context, tx *sql.Tx, snap listing.Snapshot) error {
	docs, err := marshalDocs(snap)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO villas (
			external_id, slug, title, province, district, sub_district,
			address, latitude, longitude, price_daily, currency,
			price_per_person, max_guests, bedrooms, bathrooms,
			description, cover_image, images, features, facilities,
			policies, nearby_places, review_data, tags, rating,
			review_count, source_url, is_active, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26,
			$27, $28, $29, $30
		)`,
		snap.ExternalID, snap.Slug, snap.Title, snap.Province, snap.District,
		snap.SubDistrict, snap.Address, snap.Latitude, snap.Longitude,
		snap.PriceDaily, snap.Currency, snap.PricePerPerson, snap.MaxGuests,
		snap.Bedrooms, snap.Bathrooms, snap.Description, snap.CoverImage,
		docs.images, docs.features, docs.facilities, docs.policies,
		docs.nearbyPlaces, docs.reviewData, docs.tags, snap.Rating,
		snap.ReviewCount, snap.SourceURL, snap.IsActive, snap.CreatedAt,
		snap.UpdatedAt,
	)
	return err
}

func (s *PostgresStore) update(ctx context.Context, tx *sql.Tx, snap listing.Snapshot) error {
	docs, err := marshalDocs(snap)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
		UPDATE villas SET
			slug = $2, title = $3, province = $4, district = $5,
			sub_district = $6, address = $7, latitude = $8, longitude = $9,
			price_daily = $10, currency = $11, price_per_person = $12,
			max_guests = $13, bedrooms = $14, bathrooms = $15,
			description = $16, cover_image = $17, images = $18,
			features = $19, facilities = $20, policies = $21,
			nearby_places = $22, review_data = $23, tags = $24,
			rating = $25, review_count = $26, source_url = $27,
			is_active = $28, updated_at = $29
		WHERE external_id = $1`,
		snap.ExternalID, snap.Slug, snap.Title, snap.Province, snap.District,
		snap.SubDistrict, snap.Address, snap.Latitude, snap.Longitude,
		snap.PriceDaily, snap.Currency, snap.PricePerPerson, snap.MaxGuests,
		snap.Bedrooms, snap.Bathrooms, snap.Description, snap.CoverImage,
		docs.images, docs.features, docs.facilities, docs.policies,
		docs.nearbyPlaces, docs.reviewData, docs.tags, snap.Rating,
		snap.ReviewCount, snap.SourceURL, snap.IsActive, snap.UpdatedAt,
	)
	return err
}

// Deactivate soft-retires every active snapshot for a province whose
// external identifier was not seen by the latest harvest. Nothing is
// ever hard-deleted.
func (s *PostgresStore) Deactivate(ctx context.Context, province string, seen []string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE villas SET is_active = FALSE, updated_at = NOW()
		WHERE is_active AND province = $1 AND NOT (external_id = ANY($2))
	`, province, pq.Array(seen))
	if err != nil {
		return 0, errors.NewPersistence("", "deactivate missing snapshots", err)
	}
	return res.RowsAffected()
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// jsonDocs holds the marshaled JSONB payloads for one snapshot.
type jsonDocs struct {
	images, features, facilities, policies []byte
	nearbyPlaces, reviewData, tags         []byte
}

func marshalDocs(snap listing.Snapshot) (jsonDocs, error) {
	var docs jsonDocs
	var err error
	marshal := func(v interface{}, empty string) []byte {
		if err != nil {
			return nil
		}
		var raw []byte
		raw, err = json.Marshal(v)
		if err == nil && string(raw) == "null" {
			raw = []byte(empty)
		}
		return raw
	}

	docs.images = marshal(snap.Images, "[]")
	docs.features = marshal(snap.Features, "{}")
	docs.facilities = marshal(snap.Facilities, "{}")
	docs.policies = marshal(snap.Policies, "{}")
	docs.nearbyPlaces = marshal(snap.NearbyPlaces, "[]")
	docs.reviewData = marshal(snap.ReviewData, "[]")
	docs.tags = marshal(snap.Tags, "[]")
	if err != nil {
		return docs, errors.NewPersistence(snap.Slug, "marshal documents", err)
	}
	return docs, nil
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSnapshot(row rowScanner) (listing.Snapshot, error) {
	var (
		snap           listing.Snapshot
		lat, lng       sql.NullFloat64
		pricePerPerson sql.NullInt64
		docs           jsonDocs
	)

	err := row.Scan(
		&snap.ID, &snap.ExternalID, &snap.Slug, &snap.Title, &snap.Province,
		&snap.District, &snap.SubDistrict, &snap.Address, &lat, &lng,
		&snap.PriceDaily, &snap.Currency, &pricePerPerson, &snap.MaxGuests,
		&snap.Bedrooms, &snap.Bathrooms, &snap.Description, &snap.CoverImage,
		&docs.images, &docs.features, &docs.facilities, &docs.policies,
		&docs.nearbyPlaces, &docs.reviewData, &docs.tags, &snap.Rating,
		&snap.ReviewCount, &snap.SourceURL, &snap.IsActive, &snap.CreatedAt,
		&snap.UpdatedAt,
	)
	if err != nil {
		return snap, fmt.Errorf("scan snapshot: %w", err)
	}

	if lat.Valid {
		snap.Latitude = &lat.Float64
	}
	if lng.Valid {
		snap.Longitude = &lng.Float64
	}
	if pricePerPerson.Valid {
		v := int(pricePerPerson.Int64)
		snap.PricePerPerson = &v
	}

	for _, doc := range []struct {
		raw []byte
		dst interface{}
	}{
		{docs.images, &snap.Images},
		{docs.features, &snap.Features},
		{docs.facilities, &snap.Facilities},
		{docs.policies, &snap.Policies},
		{docs.nearbyPlaces, &snap.NearbyPlaces},
		{docs.reviewData, &snap.ReviewData},
		{docs.tags, &snap.Tags},
	} {
		if len(doc.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(doc.raw, doc.dst); err != nil {
			return snap, fmt.Errorf("decode snapshot document: %w", err)
		}
	}
	return snap, nil
}

func unwrapPQError(err error) (*pq.Error, bool) {
	var pqErr *pq.Error
	if stderrors.As(err, &pqErr) {
		return pqErr, true
	}
	return nil, false
}
