package repositories

import (
	"database/sql"
	"fmt"
	"strings"

	"eventhub/internal/models"
)

type EventRepository interface {
	Create(event *models.Event) error
	GetByID(id int) (*models.Event, error)
	Update(event *models.Event) error
	UpdateStatus(id int, status string) error
	UpdateBanner(id int, bannerFile string) error
	Delete(id int) error
	List(filter models.EventFilter) ([]*models.Event, error)
	GetCount() (int, error)
}

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) EventRepository {
	return &eventRepository{DB: db}
}

const eventColumns = `
	id, title, description, category, starts_at, ends_at,
	location, city, website, COALESCE(banner_file,''), status, owner_id,
	created_at, updated_at
`

func (r *eventRepository) Create(event *models.Event) error {
	const q = `
		INSERT INTO events (
			title, description, category, starts_at, ends_at,
			location, city, website, status, owner_id, created_at, updated_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,NOW(),NOW())
		RETURNING id, created_at, updated_at
	`
	return r.DB.QueryRow(q,
		event.Title,
		event.Description,
		event.Category,
		event.StartsAt,
		event.EndsAt,
		event.Location,
		event.City,
		event.Website,
		event.Status,
		event.OwnerID,
	).Scan(&event.ID, &event.CreatedAt, &event.UpdatedAt)
}

func scanEvent(sc interface{ Scan(...interface{}) error }) (*models.Event, error) {
	e := &models.Event{}
	err := sc.Scan(
		&e.ID, &e.Title, &e.Description, &e.Category, &e.StartsAt, &e.EndsAt,
		&e.Location, &e.City, &e.Website, &e.BannerFile, &e.Status, &e.OwnerID,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) GetByID(id int) (*models.Event, error) {
	return scanEvent(r.DB.QueryRow(`SELECT `+eventColumns+` FROM events WHERE id = $1`, id))
}

func (r *eventRepository) Update(event *models.Event) error {
	const q = `
		UPDATE events
		SET title=$1, description=$2, category=$3, starts_at=$4, ends_at=$5,
		    location=$6, city=$7, website=$8, status=$9, updated_at=NOW()
		WHERE id=$10
	`
	_, err := r.DB.Exec(q,
		event.Title,
		event.Description,
		event.Category,
		event.StartsAt,
		event.EndsAt,
		event.Location,
		event.City,
		event.Website,
		event.Status,
		event.ID,
	)
	return err
}

func (r *eventRepository) UpdateStatus(id int, status string) error {
	_, err := r.DB.Exec(`UPDATE events SET status=$1, updated_at=NOW() WHERE id=$2`, status, id)
	return err
}

func (r *eventRepository) UpdateBanner(id int, bannerFile string) error {
	_, err := r.DB.Exec(`UPDATE events SET banner_file=$1, updated_at=NOW() WHERE id=$2`, bannerFile, id)
	return err
}

func (r *eventRepository) Delete(id int) error {
	_, err := r.DB.Exec(`DELETE FROM events WHERE id=$1`, id)
	return err
}

// List builds the WHERE clause from the filter. Empty filter fields are
// skipped; Limit defaults to 50.
func (r *eventRepository) List(filter models.EventFilter) ([]*models.Event, error) {
	var (
		conds []string
		args  []interface{}
	)
	add := func(cond string, val interface{}) {
		args = append(args, val)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.Status != "" {
		add("status = $%d", filter.Status)
	}
	if filter.Category != "" {
		add("category = $%d", filter.Category)
	}
	if filter.City != "" {
		add("LOWER(city) = LOWER($%d)", filter.City)
	}
	if filter.Query != "" {
		add("title ILIKE '%%' || $%d || '%%'", filter.Query)
	}
	if filter.OwnerID != 0 {
		add("owner_id = $%d", filter.OwnerID)
	}
	if filter.Upcoming {
		conds = append(conds, "starts_at >= NOW()")
	}

	q := `SELECT ` + eventColumns + ` FROM events`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY starts_at"

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit)
	q += fmt.Sprintf(" LIMIT $%d", len(args))
	args = append(args, filter.Offset)
	q += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := r.DB.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*models.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, e)
	}
	return res, rows.Err()
}

func (r *eventRepository) GetCount() (int, error) {
	var c int
	err := r.DB.QueryRow(`SELECT COUNT(*) FROM events`).Scan(&c)
	return c, err
}
