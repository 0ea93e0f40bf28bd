package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"adoptipet/internal/domain/animals"
)

type AnimalsRepo struct {
	db *sql.DB
}

func NewAnimalsRepo(db *sql.DB) *AnimalsRepo {
	return &AnimalsRepo{db: db}
}

const animalColumns = `
	id, owner_user_id,
	name, species, breed, sex,
	birth_date, description, image_key,
	health_records, history,
	version, created_at, updated_at`

func (r *AnimalsRepo) Create(ctx context.Context, a animals.Animal) error {
	records, history, err := marshalAnimalDocs(a)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO animals (`+animalColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
	`,
		a.ID,
		a.OwnerUserID,
		a.Name,
		a.Species,
		a.Breed,
		a.Sex,
		toNullTime(a.BirthDate),
		a.Description,
		a.ImageKey,
		records,
		history,
		a.Version,
		a.CreatedAt,
		a.UpdatedAt,
	)
	return err
}

func (r *AnimalsRepo) Update(ctx context.Context, a animals.Animal) error {
	return updateAnimal(ctx, r.db, a)
}

// updateAnimal también la usa el Commit del flujo de adopción dentro de su tx.
func updateAnimal(ctx context.Context, q querier, a animals.Animal) error {
	records, history, err := marshalAnimalDocs(a)
	if err != nil {
		return err
	}

	return versionedExec(ctx, q, "animals", a.ID, `
		UPDATE animals
		SET
			owner_user_id = $3,
			name = $4,
			species = $5,
			breed = $6,
			sex = $7,
			birth_date = $8,
			description = $9,
			image_key = $10,
			health_records = $11,
			history = $12,
			updated_at = $13,
			version = version + 1
		WHERE id = $1 AND version = $2
	`,
		a.ID,
		a.Version,
		a.OwnerUserID,
		a.Name,
		a.Species,
		a.Breed,
		a.Sex,
		toNullTime(a.BirthDate),
		a.Description,
		a.ImageKey,
		records,
		history,
		a.UpdatedAt,
	)
}

func (r *AnimalsRepo) GetByID(ctx context.Context, id string) (animals.Animal, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return animals.Animal{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `SELECT `+animalColumns+` FROM animals WHERE id = $1`, id)
	a, err := scanAnimal(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return animals.Animal{}, ErrNotFound
		}
		return animals.Animal{}, err
	}
	return a, nil
}

func (r *AnimalsRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]animals.Animal, error) {
	ownerUserID = strings.TrimSpace(ownerUserID)
	if ownerUserID == "" {
		return []animals.Animal{}, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+animalColumns+`
		FROM animals
		WHERE owner_user_id = $1
		ORDER BY created_at ASC
	`, ownerUserID)
	if err != nil {
		return nil, err
	}
	return collectAnimals(rows)
}

func (r *AnimalsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM animals WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListWithCareDue busca dentro del JSONB de registros sanitarios.
func (r *AnimalsRepo) ListWithCareDue(ctx context.Context, from, to time.Time) ([]animals.Animal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+animalColumns+`
		FROM animals a
		WHERE EXISTS (
			SELECT 1
			FROM jsonb_array_elements(a.health_records) hr
			WHERE hr->>'next_due_at' IS NOT NULL
			  AND (hr->>'next_due_at')::timestamptz >= $1
			  AND (hr->>'next_due_at')::timestamptz < $2
		)
		ORDER BY id ASC
	`, from, to)
	if err != nil {
		return nil, err
	}
	return collectAnimals(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnimal(row rowScanner) (animals.Animal, error) {
	var (
		a       animals.Animal
		bd      sql.NullTime
		records []byte
		history []byte
	)
	if err := row.Scan(
		&a.ID,
		&a.OwnerUserID,
		&a.Name,
		&a.Species,
		&a.Breed,
		&a.Sex,
		&bd,
		&a.Description,
		&a.ImageKey,
		&records,
		&history,
		&a.Version,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		return animals.Animal{}, err
	}

	// ojo: birth_date es date, pgx lo mapea a time.Time midnight UTC
	a.BirthDate = fromNullTime(bd)

	if err := json.Unmarshal(records, &a.HealthRecords); err != nil {
		return animals.Animal{}, err
	}
	if err := json.Unmarshal(history, &a.History); err != nil {
		return animals.Animal{}, err
	}
	return a, nil
}

func collectAnimals(rows *sql.Rows) ([]animals.Animal, error) {
	defer rows.Close()

	out := make([]animals.Animal, 0)
	for rows.Next() {
		a, err := scanAnimal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func marshalAnimalDocs(a animals.Animal) ([]byte, []byte, error) {
	records := a.HealthRecords
	if records == nil {
		records = []animals.HealthRecord{}
	}
	history := a.History
	if history == nil {
		history = []animals.OwnershipEntry{}
	}

	rb, err := json.Marshal(records)
	if err != nil {
		return nil, nil, err
	}
	hb, err := json.Marshal(history)
	if err != nil {
		return nil, nil, err
	}
	return rb, hb, nil
}

var _ animals.Repository = (*AnimalsRepo)(nil)
