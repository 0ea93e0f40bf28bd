package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"adoptipet/internal/domain/announcements"
)

type AnnouncementsRepo struct {
	db *sql.DB
}

func NewAnnouncementsRepo(db *sql.DB) *AnnouncementsRepo {
	return &AnnouncementsRepo{db: db}
}

const announcementColumns = `
	id, kind, title, description, location, image_key,
	animal_id, author_user_id,
	moderation_status, adoption_status,
	version, created_at, updated_at`

func (r *AnnouncementsRepo) Create(ctx context.Context, a announcements.Announcement) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO announcements (`+announcementColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
	`,
		a.ID,
		a.Kind,
		a.Title,
		a.Description,
		a.Location,
		a.ImageKey,
		nullString(a.AnimalID),
		a.AuthorUserID,
		a.ModerationStatus,
		a.AdoptionStatus,
		a.Version,
		a.CreatedAt,
		a.UpdatedAt,
	)
	return err
}

func (r *AnnouncementsRepo) Update(ctx context.Context, a announcements.Announcement) error {
	return updateAnnouncement(ctx, r.db, a)
}

func updateAnnouncement(ctx context.Context, q querier, a announcements.Announcement) error {
	return versionedExec(ctx, q, "announcements", a.ID, `
		UPDATE announcements
		SET
			kind = $3,
			title = $4,
			description = $5,
			location = $6,
			image_key = $7,
			animal_id = $8,
			moderation_status = $9,
			adoption_status = $10,
			updated_at = $11,
			version = version + 1
		WHERE id = $1 AND version = $2
	`,
		a.ID,
		a.Version,
		a.Kind,
		a.Title,
		a.Description,
		a.Location,
		a.ImageKey,
		nullString(a.AnimalID),
		a.ModerationStatus,
		a.AdoptionStatus,
		a.UpdatedAt,
	)
}

func (r *AnnouncementsRepo) GetByID(ctx context.Context, id string) (announcements.Announcement, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return announcements.Announcement{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `SELECT `+announcementColumns+` FROM announcements WHERE id = $1`, id)
	a, err := scanAnnouncement(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return announcements.Announcement{}, ErrNotFound
		}
		return announcements.Announcement{}, err
	}
	return a, nil
}

func (r *AnnouncementsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM announcements WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *AnnouncementsRepo) List(ctx context.Context, f announcements.ListFilter) ([]announcements.Announcement, error) {
	where := make([]string, 0, 4)
	args := make([]any, 0, 4)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}

	if f.Kind != "" {
		add("kind = $%d", f.Kind)
	}
	if f.ModerationStatus != "" {
		add("moderation_status = $%d", f.ModerationStatus)
	}
	if f.AuthorUserID != "" {
		add("author_user_id = $%d", f.AuthorUserID)
	}
	if !f.CreatedBefore.IsZero() {
		add("created_at < $%d", f.CreatedBefore)
	}

	query := `SELECT ` + announcementColumns + ` FROM announcements`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]announcements.Announcement, 0)
	for rows.Next() {
		a, err := scanAnnouncement(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanAnnouncement(row rowScanner) (announcements.Announcement, error) {
	var (
		a        announcements.Announcement
		animalID sql.NullString
	)
	if err := row.Scan(
		&a.ID,
		&a.Kind,
		&a.Title,
		&a.Description,
		&a.Location,
		&a.ImageKey,
		&animalID,
		&a.AuthorUserID,
		&a.ModerationStatus,
		&a.AdoptionStatus,
		&a.Version,
		&a.CreatedAt,
		&a.UpdatedAt,
	); err != nil {
		return announcements.Announcement{}, err
	}
	a.AnimalID = animalID.String
	return a, nil
}

var _ announcements.Repository = (*AnnouncementsRepo)(nil)
