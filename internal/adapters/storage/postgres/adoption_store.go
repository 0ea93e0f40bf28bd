package postgres

import (
	"context"
	"database/sql"
	"errors"

	"adoptipet/internal/domain/adoption"
	"adoptipet/internal/platform/apperr"
)

// AdoptionStore persiste candidaturas y solicitudes de migración. Commit
// corre en una sola transacción junto con el anuncio y el animal.
type AdoptionStore struct {
	db *sql.DB
}

func NewAdoptionStore(db *sql.DB) *AdoptionStore {
	return &AdoptionStore{db: db}
}

var errDuplicateApplication = apperr.New(apperr.KindConflict, "an active application already exists")

const applicationColumns = `
	id, announcement_id, animal_id, applicant_user_id, message,
	status, version, created_at, updated_at`

const migrationColumns = `
	id, announcement_id, animal_id, application_id,
	candidate_user_id, previous_owner_user_id,
	status, version, completed_at, created_at, updated_at`

func (r *AdoptionStore) CreateApplication(ctx context.Context, a adoption.Application) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO adoption_applications (`+applicationColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		a.ID,
		a.AnnouncementID,
		a.AnimalID,
		a.ApplicantUserID,
		a.Message,
		a.Status,
		a.Version,
		a.CreatedAt,
		a.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return errDuplicateApplication
	}
	return err
}

func (r *AdoptionStore) GetApplication(ctx context.Context, id string) (adoption.Application, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+applicationColumns+` FROM adoption_applications WHERE id = $1`, id)
	a, err := scanApplication(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return adoption.Application{}, ErrNotFound
		}
		return adoption.Application{}, err
	}
	return a, nil
}

func (r *AdoptionStore) ListApplicationsByAnnouncement(ctx context.Context, announcementID string) ([]adoption.Application, error) {
	return r.listApplications(ctx, `WHERE announcement_id = $1`, announcementID)
}

func (r *AdoptionStore) ListApplicationsByApplicant(ctx context.Context, applicantUserID string) ([]adoption.Application, error) {
	return r.listApplications(ctx, `WHERE applicant_user_id = $1`, applicantUserID)
}

func (r *AdoptionStore) listApplications(ctx context.Context, where string, arg string) ([]adoption.Application, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+applicationColumns+`
		FROM adoption_applications
		`+where+`
		ORDER BY created_at ASC, id ASC
	`, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]adoption.Application, 0)
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *AdoptionStore) GetMigration(ctx context.Context, id string) (adoption.MigrationRequest, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+migrationColumns+` FROM migration_requests WHERE id = $1`, id)
	return noRowsAsNotFound(scanMigration(row))
}

func (r *AdoptionStore) FindMigration(ctx context.Context, announcementID, candidateUserID string) (adoption.MigrationRequest, error) {
	return findMigration(ctx, r.db, announcementID, candidateUserID)
}

func findMigration(ctx context.Context, q querier, announcementID, candidateUserID string) (adoption.MigrationRequest, error) {
	row := q.QueryRowContext(ctx, `
		SELECT `+migrationColumns+`
		FROM migration_requests
		WHERE announcement_id = $1 AND candidate_user_id = $2
	`, announcementID, candidateUserID)
	return noRowsAsNotFound(scanMigration(row))
}

func (r *AdoptionStore) ListMigrations(ctx context.Context, status adoption.MigrationStatus) ([]adoption.MigrationRequest, error) {
	if status == "" {
		return r.listMigrations(ctx, `TRUE`)
	}
	return r.listMigrations(ctx, `status = $1`, status)
}

func (r *AdoptionStore) ListMigrationsByAnnouncement(ctx context.Context, announcementID string) ([]adoption.MigrationRequest, error) {
	return r.listMigrations(ctx, `announcement_id = $1`, announcementID)
}

func (r *AdoptionStore) listMigrations(ctx context.Context, cond string, args ...any) ([]adoption.MigrationRequest, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+migrationColumns+`
		FROM migration_requests
		WHERE `+cond+`
		ORDER BY created_at DESC, id ASC
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]adoption.MigrationRequest, 0)
	for rows.Next() {
		m, err := scanMigration(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Commit aplica el changeset en una transacción. Cualquier UPDATE que no
// encuentre la versión observada aborta todo.
func (r *AdoptionStore) Commit(ctx context.Context, cs adoption.Changeset) (adoption.Changeset, error) {
	var out adoption.Changeset

	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		out = adoption.Changeset{}

		if cs.Application != nil {
			a := *cs.Application
			if err := versionedExec(ctx, tx, "adoption_applications", a.ID, `
				UPDATE adoption_applications
				SET status = $3, message = $4, updated_at = $5, version = version + 1
				WHERE id = $1 AND version = $2
			`, a.ID, a.Version, a.Status, a.Message, a.UpdatedAt); err != nil {
				return err
			}
			a.Version++
			out.Application = &a
		}

		if cs.Migration != nil {
			m, err := commitMigration(ctx, tx, *cs.Migration)
			if err != nil {
				return err
			}
			out.Migration = &m
		}

		if cs.Announcement != nil {
			a := *cs.Announcement
			if err := updateAnnouncement(ctx, tx, a); err != nil {
				return err
			}
			a.Version++
			out.Announcement = &a
		}

		if cs.Animal != nil {
			a := *cs.Animal
			if err := updateAnimal(ctx, tx, a); err != nil {
				return err
			}
			a.Version++
			out.Animal = &a
		}
		return nil
	})
	if err != nil {
		return adoption.Changeset{}, err
	}
	return out, nil
}

// commitMigration: Version 0 = upsert por (anuncio, candidato); si la fila
// ya existía se devuelve la guardada sin tocarla.
func commitMigration(ctx context.Context, tx *sql.Tx, m adoption.MigrationRequest) (adoption.MigrationRequest, error) {
	if m.Version == 0 {
		m.Version = 1
		res, err := tx.ExecContext(ctx, `
			INSERT INTO migration_requests (`+migrationColumns+`)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
			ON CONFLICT (announcement_id, candidate_user_id) DO NOTHING
		`,
			m.ID,
			m.AnnouncementID,
			m.AnimalID,
			m.ApplicationID,
			m.CandidateUserID,
			m.PreviousOwnerUserID,
			m.Status,
			m.Version,
			toNullTime(m.CompletedAt),
			m.CreatedAt,
			m.UpdatedAt,
		)
		if err != nil {
			return adoption.MigrationRequest{}, err
		}
		if n, _ := res.RowsAffected(); n == 1 {
			return m, nil
		}
		return findMigration(ctx, tx, m.AnnouncementID, m.CandidateUserID)
	}

	if err := versionedExec(ctx, tx, "migration_requests", m.ID, `
		UPDATE migration_requests
		SET
			animal_id = $3,
			application_id = $4,
			previous_owner_user_id = $5,
			status = $6,
			completed_at = $7,
			updated_at = $8,
			version = version + 1
		WHERE id = $1 AND version = $2
	`,
		m.ID,
		m.Version,
		m.AnimalID,
		m.ApplicationID,
		m.PreviousOwnerUserID,
		m.Status,
		toNullTime(m.CompletedAt),
		m.UpdatedAt,
	); err != nil {
		return adoption.MigrationRequest{}, err
	}
	m.Version++
	return m, nil
}

func scanApplication(row rowScanner) (adoption.Application, error) {
	var a adoption.Application
	err := row.Scan(
		&a.ID,
		&a.AnnouncementID,
		&a.AnimalID,
		&a.ApplicantUserID,
		&a.Message,
		&a.Status,
		&a.Version,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	return a, err
}

func scanMigration(row rowScanner) (adoption.MigrationRequest, error) {
	var (
		m         adoption.MigrationRequest
		completed sql.NullTime
	)
	if err := row.Scan(
		&m.ID,
		&m.AnnouncementID,
		&m.AnimalID,
		&m.ApplicationID,
		&m.CandidateUserID,
		&m.PreviousOwnerUserID,
		&m.Status,
		&m.Version,
		&completed,
		&m.CreatedAt,
		&m.UpdatedAt,
	); err != nil {
		return adoption.MigrationRequest{}, err
	}
	m.CompletedAt = fromNullTime(completed)
	return m, nil
}

func noRowsAsNotFound(m adoption.MigrationRequest, err error) (adoption.MigrationRequest, error) {
	if errors.Is(err, sql.ErrNoRows) {
		return adoption.MigrationRequest{}, ErrNotFound
	}
	return m, err
}

var _ adoption.Store = (*AdoptionStore)(nil)
