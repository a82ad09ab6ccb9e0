// Package sqlite implements the store.Store interface on SQLite. All guarded
// mutations are single conditional UPDATE statements checked through
// RowsAffected, so winner-takes-all semantics hold without table locks.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Vievek/zero-hunger-sub000/internal/model"
	"github.com/Vievek/zero-hunger-sub000/internal/store"
	_ "github.com/mattn/go-sqlite3"
)

type Store struct {
	conn *sql.DB
}

// New opens (or creates) the database at path and applies the schema.
func New(path string) (*Store, error) {
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite tolerates one writer; serializing connections avoids
	// SQLITE_BUSY under the engine's detached pipelines.
	conn.SetMaxOpenConns(1)

	s := &Store{conn: conn}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	return s, nil
}

// Close closes the underlying connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS donations (
		id TEXT PRIMARY KEY,
		donor_id TEXT,
		title TEXT,
		description TEXT,
		categories TEXT NOT NULL DEFAULT '[]',
		tags TEXT NOT NULL DEFAULT '[]',
		freshness_score REAL NOT NULL DEFAULT 0,
		urgency TEXT NOT NULL DEFAULT 'normal',
		status TEXT NOT NULL DEFAULT 'pending',
		lat REAL,
		lng REAL,
		accepted_by TEXT,
		assigned_volunteer TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS offers (
		id TEXT PRIMARY KEY,
		donation_id TEXT NOT NULL,
		recipient_id TEXT NOT NULL,
		score REAL NOT NULL,
		status TEXT NOT NULL DEFAULT 'offered',
		method TEXT NOT NULL DEFAULT 'ranked',
		responded_at DATETIME,
		decline_reason TEXT,
		UNIQUE (donation_id, recipient_id),
		FOREIGN KEY (donation_id) REFERENCES donations(id)
	);

	CREATE TABLE IF NOT EXISTS recipients (
		id TEXT PRIMARY KEY,
		name TEXT,
		org_type TEXT,
		capacity INTEGER NOT NULL DEFAULT 0,
		current_load INTEGER NOT NULL DEFAULT 0,
		dietary_restrictions TEXT NOT NULL DEFAULT '[]',
		preferred_categories TEXT NOT NULL DEFAULT '[]',
		lat REAL,
		lng REAL,
		verified INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS volunteers (
		id TEXT PRIMARY KEY,
		name TEXT,
		lat REAL,
		lng REAL,
		vehicle TEXT NOT NULL DEFAULT 'none',
		available INTEGER NOT NULL DEFAULT 0,
		active INTEGER NOT NULL DEFAULT 0,
		active_task_count INTEGER NOT NULL DEFAULT 0,
		max_concurrent_tasks INTEGER NOT NULL DEFAULT 3
	);

	CREATE TABLE IF NOT EXISTS tasks (
		id TEXT PRIMARY KEY,
		donation_id TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		volunteer_id TEXT,
		pickup_lat REAL,
		pickup_lng REAL,
		dropoff_lat REAL,
		dropoff_lng REAL,
		urgency TEXT NOT NULL DEFAULT 'normal',
		route TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (donation_id) REFERENCES donations(id)
	);

	CREATE INDEX IF NOT EXISTS idx_donations_status ON donations(status);
	CREATE INDEX IF NOT EXISTS idx_offers_donation ON offers(donation_id);
	CREATE INDEX IF NOT EXISTS idx_tasks_volunteer ON tasks(volunteer_id);
	`

	_, err := s.conn.Exec(schema)
	return err
}

func (s *Store) CreateDonation(ctx context.Context, d *model.Donation) error {
	if d.ID == "" {
		d.ID = model.NewID()
	}
	if d.Status == "" {
		d.Status = model.DonationPending
	}
	now := time.Now().UTC()
	d.CreatedAt = now
	d.UpdatedAt = now

	lat, lng := locationColumns(d.Location)
	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO donations (id, donor_id, title, description, categories, tags, freshness_score, urgency, status, lat, lng, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.DonorID, d.Title, d.Description, marshalList(d.Categories), marshalList(d.Tags),
		d.FreshnessScore, d.Urgency, d.Status, lat, lng, now, now,
	)
	return err
}

func (s *Store) GetDonation(ctx context.Context, id string) (*model.Donation, error) {
	row := s.conn.QueryRowContext(ctx,
		`SELECT id, donor_id, title, description, categories, tags, freshness_score, urgency, status,
		        lat, lng, accepted_by, assigned_volunteer, created_at, updated_at
		 FROM donations WHERE id = ?`, id)

	d, err := scanDonation(row)
	if err != nil {
		return nil, err
	}

	offers, err := s.offersFor(ctx, id)
	if err != nil {
		return nil, err
	}
	d.Offers = offers

	return d, nil
}

func (s *Store) ListDonationsByStatus(ctx context.Context, status model.DonationStatus) ([]model.Donation, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, donor_id, title, description, categories, tags, freshness_score, urgency, status,
		        lat, lng, accepted_by, assigned_volunteer, created_at, updated_at
		 FROM donations WHERE status = ? ORDER BY created_at`, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var donations []model.Donation
	for rows.Next() {
		d, err := scanDonation(rows)
		if err != nil {
			return nil, err
		}
		donations = append(donations, *d)
	}

	return donations, rows.Err()
}

func (s *Store) UpdateDonationStatus(ctx context.Context, id string, from, to model.DonationStatus) error {
	if !from.CanTransitionTo(to) {
		return fmt.Errorf("donation %s: %s -> %s: %w", id, from, to, store.ErrConflict)
	}

	result, err := s.conn.ExecContext(ctx,
		`UPDATE donations SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
		to, time.Now().UTC(), id, from,
	)
	if err != nil {
		return err
	}

	return s.checkGuard(ctx, result, `SELECT 1 FROM donations WHERE id = ?`, id)
}

func (s *Store) SetDonationVolunteer(ctx context.Context, id, volunteerID string) error {
	result, err := s.conn.ExecContext(ctx,
		`UPDATE donations SET assigned_volunteer = ?, updated_at = ? WHERE id = ?`,
		volunteerID, time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("donation %s: %w", id, store.ErrNotFound)
	}
	return nil
}

// AcceptDonation claims the donation for the recipient. The WHERE guard keeps
// acceptance atomic: only an active, unclaimed donation can be won.
func (s *Store) AcceptDonation(ctx context.Context, donationID, recipientID string) error {
	result, err := s.conn.ExecContext(ctx,
		`UPDATE donations SET accepted_by = ?, status = ?, updated_at = ?
		 WHERE id = ? AND status = ? AND (accepted_by IS NULL OR accepted_by = '')`,
		recipientID, model.DonationMatched, time.Now().UTC(), donationID, model.DonationActive,
	)
	if err != nil {
		return err
	}

	return s.checkGuard(ctx, result, `SELECT 1 FROM donations WHERE id = ?`, donationID)
}

func (s *Store) SaveOffers(ctx context.Context, donationID string, offers []model.Offer) error {
	for i := range offers {
		o := &offers[i]
		if o.ID == "" {
			o.ID = model.NewID()
		}
		_, err := s.conn.ExecContext(ctx,
			`INSERT INTO offers (id, donation_id, recipient_id, score, status, method)
			 VALUES (?, ?, ?, ?, ?, ?)
			 ON CONFLICT (donation_id, recipient_id) DO UPDATE SET score = excluded.score`,
			o.ID, donationID, o.RecipientID, o.Score, o.Status, o.Method,
		)
		if err != nil {
			return fmt.Errorf("save offer for recipient %s: %w", o.RecipientID, err)
		}
	}
	return nil
}

func (s *Store) ResolveOffers(ctx context.Context, donationID, recipientID, method string, score float64, reason string) error {
	now := time.Now().UTC()

	result, err := s.conn.ExecContext(ctx,
		`UPDATE offers SET status = ?, responded_at = ? WHERE donation_id = ? AND recipient_id = ? AND status = ?`,
		model.OfferAccepted, now, donationID, recipientID, model.OfferOffered,
	)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		// No ranked offer for the winner: the manual acceptance path.
		_, err = s.conn.ExecContext(ctx,
			`INSERT INTO offers (id, donation_id, recipient_id, score, status, method, responded_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT (donation_id, recipient_id) DO NOTHING`,
			model.NewID(), donationID, recipientID, score, model.OfferAccepted, method, now,
		)
		if err != nil {
			return err
		}
	}

	_, err = s.conn.ExecContext(ctx,
		`UPDATE offers SET status = ?, responded_at = ?, decline_reason = ?
		 WHERE donation_id = ? AND recipient_id != ? AND status = ?`,
		model.OfferDeclined, now, reason, donationID, recipientID, model.OfferOffered,
	)
	return err
}

func (s *Store) DeclineOffer(ctx context.Context, donationID, recipientID, reason string) error {
	result, err := s.conn.ExecContext(ctx,
		`UPDATE offers SET status = ?, responded_at = ?, decline_reason = ?
		 WHERE donation_id = ? AND recipient_id = ? AND status = ?`,
		model.OfferDeclined, time.Now().UTC(), reason, donationID, recipientID, model.OfferOffered,
	)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("no offered entry for recipient %s on donation %s: %w", recipientID, donationID, store.ErrNotFound)
	}
	return nil
}

func (s *Store) GetRecipient(ctx context.Context, id string) (*model.RecipientCandidate, error) {
	row := s.conn.QueryRowContext(ctx,
		`SELECT id, name, org_type, capacity, current_load, dietary_restrictions, preferred_categories, lat, lng, verified
		 FROM recipients WHERE id = ?`, id)
	return scanRecipient(row)
}

func (s *Store) ListEligibleRecipients(ctx context.Context) ([]model.RecipientCandidate, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, name, org_type, capacity, current_load, dietary_restrictions, preferred_categories, lat, lng, verified
		 FROM recipients WHERE verified = 1 AND current_load < capacity ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recipients []model.RecipientCandidate
	for rows.Next() {
		r, err := scanRecipient(rows)
		if err != nil {
			return nil, err
		}
		recipients = append(recipients, *r)
	}

	return recipients, rows.Err()
}

func (s *Store) GetVolunteer(ctx context.Context, id string) (*model.Volunteer, error) {
	row := s.conn.QueryRowContext(ctx,
		`SELECT id, name, lat, lng, vehicle, available, active, active_task_count, max_concurrent_tasks
		 FROM volunteers WHERE id = ?`, id)
	return scanVolunteer(row)
}

func (s *Store) ListAvailableVolunteers(ctx context.Context) ([]model.Volunteer, error) {
	return s.listVolunteers(ctx,
		`SELECT id, name, lat, lng, vehicle, available, active, active_task_count, max_concurrent_tasks
		 FROM volunteers WHERE available = 1 AND active = 1 ORDER BY id`)
}

func (s *Store) ListActiveVolunteers(ctx context.Context, limit int) ([]model.Volunteer, error) {
	return s.listVolunteers(ctx,
		`SELECT id, name, lat, lng, vehicle, available, active, active_task_count, max_concurrent_tasks
		 FROM volunteers WHERE active = 1 ORDER BY id LIMIT ?`, limit)
}

func (s *Store) listVolunteers(ctx context.Context, query string, args ...any) ([]model.Volunteer, error) {
	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var volunteers []model.Volunteer
	for rows.Next() {
		v, err := scanVolunteer(rows)
		if err != nil {
			return nil, err
		}
		volunteers = append(volunteers, *v)
	}

	return volunteers, rows.Err()
}

func (s *Store) CreateTask(ctx context.Context, t *model.Task) error {
	if t.ID == "" {
		t.ID = model.NewID()
	}
	if t.Status == "" {
		t.Status = model.TaskPending
	}
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now

	pickupLat, pickupLng := locationColumns(t.Pickup)
	dropoffLat, dropoffLng := locationColumns(t.Dropoff)

	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO tasks (id, donation_id, status, pickup_lat, pickup_lng, dropoff_lat, dropoff_lng, urgency, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.DonationID, t.Status, pickupLat, pickupLng, dropoffLat, dropoffLng, t.Urgency, now, now,
	)
	return err
}

func (s *Store) GetTask(ctx context.Context, id string) (*model.Task, error) {
	row := s.conn.QueryRowContext(ctx,
		`SELECT id, donation_id, status, volunteer_id, pickup_lat, pickup_lng, dropoff_lat, dropoff_lng, urgency, route, created_at, updated_at
		 FROM tasks WHERE id = ?`, id)
	return scanTask(row)
}

// BindTaskVolunteer re-checks the volunteer's live capacity as part of the
// bind. The increment only applies while the volunteer is active and below
// their concurrency limit, and the task only binds while still pending.
func (s *Store) BindTaskVolunteer(ctx context.Context, taskID, volunteerID string) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE volunteers SET active_task_count = active_task_count + 1
		 WHERE id = ? AND active = 1 AND active_task_count < max_concurrent_tasks`,
		volunteerID,
	)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("volunteer %s failed capacity check: %w", volunteerID, store.ErrConflict)
	}

	result, err = tx.ExecContext(ctx,
		`UPDATE tasks SET volunteer_id = ?, status = ?, updated_at = ?
		 WHERE id = ? AND status = ? AND (volunteer_id IS NULL OR volunteer_id = '')`,
		volunteerID, model.TaskAssigned, time.Now().UTC(), taskID, model.TaskPending,
	)
	if err != nil {
		return err
	}
	rows, err = result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("task %s is not pending: %w", taskID, store.ErrConflict)
	}

	return tx.Commit()
}

func (s *Store) PendingWaypoints(ctx context.Context, volunteerID string) ([]model.Waypoint, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, status, pickup_lat, pickup_lng, dropoff_lat, dropoff_lng
		 FROM tasks WHERE volunteer_id = ? AND status IN (?, ?, ?) ORDER BY created_at`,
		volunteerID, model.TaskAssigned, model.TaskPickedUp, model.TaskInTransit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var waypoints []model.Waypoint
	for rows.Next() {
		var (
			id                     string
			status                 model.TaskStatus
			pickupLat, pickupLng   sql.NullFloat64
			dropoffLat, dropoffLng sql.NullFloat64
		)
		if err := rows.Scan(&id, &status, &pickupLat, &pickupLng, &dropoffLat, &dropoffLng); err != nil {
			return nil, err
		}

		// The pickup stop is already behind tasks past the assigned state.
		if status == model.TaskAssigned && pickupLat.Valid {
			waypoints = append(waypoints, model.Waypoint{
				TaskID:   id,
				Kind:     model.WaypointPickup,
				Location: model.Location{Lat: pickupLat.Float64, Lng: pickupLng.Float64},
			})
		}
		if dropoffLat.Valid {
			waypoints = append(waypoints, model.Waypoint{
				TaskID:   id,
				Kind:     model.WaypointDropoff,
				Location: model.Location{Lat: dropoffLat.Float64, Lng: dropoffLng.Float64},
			})
		}
	}

	return waypoints, rows.Err()
}

func (s *Store) UpdateTaskRoute(ctx context.Context, taskID string, route *model.OptimizedRoute) error {
	encoded, err := json.Marshal(route)
	if err != nil {
		return err
	}

	result, err := s.conn.ExecContext(ctx,
		`UPDATE tasks SET route = ?, updated_at = ? WHERE id = ?`,
		string(encoded), time.Now().UTC(), taskID,
	)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("task %s: %w", taskID, store.ErrNotFound)
	}
	return nil
}

// CreateRecipient and CreateVolunteer exist for seeding and tests.
func (s *Store) CreateRecipient(ctx context.Context, r *model.RecipientCandidate) error {
	lat, lng := locationColumns(r.Location)
	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO recipients (id, name, org_type, capacity, current_load, dietary_restrictions, preferred_categories, lat, lng, verified)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Name, r.OrgType, r.Capacity, r.CurrentLoad,
		marshalList(r.DietaryRestrictions), marshalList(r.PreferredCategories), lat, lng, r.Verified,
	)
	return err
}

func (s *Store) CreateVolunteer(ctx context.Context, v *model.Volunteer) error {
	lat, lng := locationColumns(v.Location)
	_, err := s.conn.ExecContext(ctx,
		`INSERT INTO volunteers (id, name, lat, lng, vehicle, available, active, active_task_count, max_concurrent_tasks)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.ID, v.Name, lat, lng, v.Vehicle, v.Available, v.Active, v.ActiveTaskCount, v.MaxConcurrentTasks,
	)
	return err
}

// checkGuard distinguishes a missing record from a lost conditional update.
func (s *Store) checkGuard(ctx context.Context, result sql.Result, existsQuery string, args ...any) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows > 0 {
		return nil
	}

	var one int
	err = s.conn.QueryRowContext(ctx, existsQuery, args...).Scan(&one)
	if err == sql.ErrNoRows {
		return store.ErrNotFound
	}
	if err != nil {
		return err
	}
	return store.ErrConflict
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDonation(row scanner) (*model.Donation, error) {
	var (
		d                             model.Donation
		categories, tags              string
		lat, lng                      sql.NullFloat64
		acceptedBy, assignedVolunteer sql.NullString
	)
	err := row.Scan(&d.ID, &d.DonorID, &d.Title, &d.Description, &categories, &tags,
		&d.FreshnessScore, &d.Urgency, &d.Status, &lat, &lng, &acceptedBy, &assignedVolunteer,
		&d.CreatedAt, &d.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	d.Categories = unmarshalList(categories)
	d.Tags = unmarshalList(tags)
	d.Location = locationFromColumns(lat, lng)
	d.AcceptedBy = acceptedBy.String
	d.AssignedVolunteer = assignedVolunteer.String

	return &d, nil
}

func scanRecipient(row scanner) (*model.RecipientCandidate, error) {
	var (
		r                      model.RecipientCandidate
		restrictions, prefered string
		lat, lng               sql.NullFloat64
	)
	err := row.Scan(&r.ID, &r.Name, &r.OrgType, &r.Capacity, &r.CurrentLoad,
		&restrictions, &prefered, &lat, &lng, &r.Verified)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	r.DietaryRestrictions = unmarshalList(restrictions)
	r.PreferredCategories = unmarshalList(prefered)
	r.Location = locationFromColumns(lat, lng)

	return &r, nil
}

func scanVolunteer(row scanner) (*model.Volunteer, error) {
	var (
		v        model.Volunteer
		lat, lng sql.NullFloat64
	)
	err := row.Scan(&v.ID, &v.Name, &lat, &lng, &v.Vehicle, &v.Available, &v.Active,
		&v.ActiveTaskCount, &v.MaxConcurrentTasks)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	v.Location = locationFromColumns(lat, lng)

	return &v, nil
}

func scanTask(row scanner) (*model.Task, error) {
	var (
		t                      model.Task
		volunteerID            sql.NullString
		pickupLat, pickupLng   sql.NullFloat64
		dropoffLat, dropoffLng sql.NullFloat64
		route                  sql.NullString
	)
	err := row.Scan(&t.ID, &t.DonationID, &t.Status, &volunteerID,
		&pickupLat, &pickupLng, &dropoffLat, &dropoffLng, &t.Urgency, &route,
		&t.CreatedAt, &t.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	t.VolunteerID = volunteerID.String
	t.Pickup = locationFromColumns(pickupLat, pickupLng)
	t.Dropoff = locationFromColumns(dropoffLat, dropoffLng)
	if route.Valid && route.String != "" {
		var r model.OptimizedRoute
		if err := json.Unmarshal([]byte(route.String), &r); err == nil {
			t.Route = &r
		}
	}

	return &t, nil
}

func (s *Store) offersFor(ctx context.Context, donationID string) ([]model.Offer, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, donation_id, recipient_id, score, status, method, responded_at, decline_reason
		 FROM offers WHERE donation_id = ? ORDER BY score DESC`, donationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var offers []model.Offer
	for rows.Next() {
		var (
			o           model.Offer
			respondedAt sql.NullTime
			reason      sql.NullString
		)
		if err := rows.Scan(&o.ID, &o.DonationID, &o.RecipientID, &o.Score, &o.Status, &o.Method, &respondedAt, &reason); err != nil {
			return nil, err
		}
		if respondedAt.Valid {
			t := respondedAt.Time
			o.RespondedAt = &t
		}
		o.DeclineReason = reason.String
		offers = append(offers, o)
	}

	return offers, rows.Err()
}

func marshalList(items []string) string {
	if len(items) == 0 {
		return "[]"
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "[]"
	}
	return string(data)
}

func unmarshalList(data string) []string {
	var items []string
	if err := json.Unmarshal([]byte(data), &items); err != nil {
		return nil
	}
	return items
}

func locationColumns(loc *model.Location) (sql.NullFloat64, sql.NullFloat64) {
	if loc == nil {
		return sql.NullFloat64{}, sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: loc.Lat, Valid: true}, sql.NullFloat64{Float64: loc.Lng, Valid: true}
}

func locationFromColumns(lat, lng sql.NullFloat64) *model.Location {
	if !lat.Valid || !lng.Valid {
		return nil
	}
	return &model.Location{Lat: lat.Float64, Lng: lng.Float64}
}
