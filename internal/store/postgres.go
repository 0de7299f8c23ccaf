package store

import (
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/IsukaW/Urban-Cleanse-sub001/internal/models"
)

// Postgres implements Store on top of sqlx.
type Postgres struct {
	db *sqlx.DB
}

// NewPostgres wraps an open database handle.
func NewPostgres(db *sqlx.DB) *Postgres {
	return &Postgres{db: db}
}

func wrapInsertErr(op string, err error) error {
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
		return ErrDuplicateID
	}
	return fmt.Errorf("%s: %w", op, err)
}

// ─── requests ───

func (p *Postgres) CreateRequest(req *models.WasteRequest) error {
	_, err := p.db.Exec(`
		INSERT INTO waste_requests (
			id, user_id, bin_id, waste_type, preferred_date, preferred_time_slot,
			status, payment_status, cost, assigned_worker_id, assigned_by_id,
			assigned_at, scheduled_date, scheduled_time_slot, route_id, notes,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`,
		req.ID, req.UserID, req.BinID, req.WasteType, req.PreferredDate, req.PreferredTimeSlot,
		req.Status, req.PaymentStatus, req.Cost, req.AssignedWorkerID, req.AssignedByID,
		req.AssignedAt, req.ScheduledDate, req.ScheduledTimeSlot, req.RouteID, req.Notes,
		req.CreatedAt, req.UpdatedAt,
	)
	if err != nil {
		return wrapInsertErr("insert request", err)
	}
	return nil
}

func (p *Postgres) GetRequest(id string) (*models.WasteRequest, error) {
	var req models.WasteRequest
	err := p.db.Get(&req, `SELECT * FROM waste_requests WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get request: %w", err)
	}
	return &req, nil
}

func (p *Postgres) UpdateRequest(req *models.WasteRequest) error {
	res, err := p.db.Exec(`
		UPDATE waste_requests
		SET status = $1, payment_status = $2, cost = $3,
		    assigned_worker_id = $4, assigned_by_id = $5, assigned_at = $6,
		    scheduled_date = $7, scheduled_time_slot = $8, route_id = $9,
		    notes = $10, updated_at = $11
		WHERE id = $12
	`,
		req.Status, req.PaymentStatus, req.Cost,
		req.AssignedWorkerID, req.AssignedByID, req.AssignedAt,
		req.ScheduledDate, req.ScheduledTimeSlot, req.RouteID,
		req.Notes, req.UpdatedAt, req.ID,
	)
	if err != nil {
		return fmt.Errorf("update request: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) ListRequests(f RequestFilter) ([]models.WasteRequest, error) {
	query := `SELECT * FROM waste_requests WHERE 1=1`
	args := []interface{}{}
	n := 0
	add := func(clause string, v interface{}) {
		n++
		query += fmt.Sprintf(" AND %s = $%d", clause, n)
		args = append(args, v)
	}
	if f.Status != "" {
		add("status", f.Status)
	}
	if f.UserID != "" {
		add("user_id", f.UserID)
	}
	if f.WorkerID != "" {
		add("assigned_worker_id", f.WorkerID)
	}
	if f.Date != "" {
		add("scheduled_date", f.Date)
	}
	query += ` ORDER BY created_at DESC`

	requests := []models.WasteRequest{}
	if err := p.db.Select(&requests, query, args...); err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	return requests, nil
}

func (p *Postgres) FindBinConflict(binID, wasteType, date, excludeID string) (*models.WasteRequest, error) {
	var req models.WasteRequest
	err := p.db.Get(&req, `
		SELECT * FROM waste_requests
		WHERE bin_id = $1 AND waste_type = $2 AND preferred_date = $3
		  AND status IN ('pending', 'approved')
		  AND id != $4
		ORDER BY created_at ASC
		LIMIT 1
	`, binID, wasteType, date, excludeID)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find bin conflict: %w", err)
	}
	return &req, nil
}

func (p *Postgres) FindWorkerSlotConflict(workerID, date, slot, excludeID string) (*models.WasteRequest, error) {
	var req models.WasteRequest
	err := p.db.Get(&req, `
		SELECT * FROM waste_requests
		WHERE assigned_worker_id = $1 AND scheduled_date = $2 AND scheduled_time_slot = $3
		  AND status IN ('approved', 'completed')
		  AND id != $4
		ORDER BY assigned_at ASC
		LIMIT 1
	`, workerID, date, slot, excludeID)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find worker slot conflict: %w", err)
	}
	return &req, nil
}

func (p *Postgres) ListAssignedRequests(workerID, date string) ([]models.WasteRequest, error) {
	requests := []models.WasteRequest{}
	err := p.db.Select(&requests, `
		SELECT * FROM waste_requests
		WHERE assigned_worker_id = $1 AND scheduled_date = $2
		  AND status IN ('approved', 'completed')
		ORDER BY scheduled_time_slot ASC
	`, workerID, date)
	if err != nil {
		return nil, fmt.Errorf("list assigned requests: %w", err)
	}
	return requests, nil
}

func (p *Postgres) CountActiveForBinOnDate(binID, date string) (int, error) {
	var count int
	err := p.db.Get(&count, `
		SELECT COUNT(*) FROM waste_requests
		WHERE bin_id = $1 AND preferred_date = $2 AND status IN ('pending', 'approved')
	`, binID, date)
	if err != nil {
		return 0, fmt.Errorf("count active for bin: %w", err)
	}
	return count, nil
}

func (p *Postgres) HasCompletedForBinOnDate(binID, date string) (bool, error) {
	var count int
	err := p.db.Get(&count, `
		SELECT COUNT(*) FROM waste_requests
		WHERE bin_id = $1 AND preferred_date = $2 AND status = 'completed'
	`, binID, date)
	if err != nil {
		return false, fmt.Errorf("count completed for bin: %w", err)
	}
	return count > 0, nil
}

// ─── routes ───

func (p *Postgres) CreateRoute(route *models.Route, bins []models.RouteBin) error {
	tx, err := p.db.Beginx()
	if err != nil {
		return fmt.Errorf("begin create route: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO routes (
			id, collector_id, date, status, area, total_bins, completed_bins,
			estimated_duration, actual_duration, start_time, end_time,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`,
		route.ID, route.CollectorID, route.Date, route.Status, route.Area,
		route.TotalBins, route.CompletedBins, route.EstimatedDuration,
		route.ActualDuration, route.StartTime, route.EndTime,
		route.CreatedAt, route.UpdatedAt,
	)
	if err != nil {
		return wrapInsertErr("insert route", err)
	}

	for _, b := range bins {
		_, err = tx.Exec(`
			INSERT INTO route_bins (
				route_id, bin_id, request_id, priority, estimated_minutes,
				sequence_order, status, customer_name, customer_address,
				completed_at, created_at
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		`,
			b.RouteID, b.BinID, b.RequestID, b.Priority, b.EstimatedMinutes,
			b.SequenceOrder, b.Status, b.CustomerName, b.CustomerAddress,
			b.CompletedAt, b.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert route bin: %w", err)
		}
	}

	return tx.Commit()
}

func (p *Postgres) GetRoute(id string) (*models.Route, error) {
	var route models.Route
	err := p.db.Get(&route, `SELECT * FROM routes WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get route: %w", err)
	}
	return &route, nil
}

func (p *Postgres) UpdateRoute(route *models.Route) error {
	res, err := p.db.Exec(`
		UPDATE routes
		SET status = $1, total_bins = $2, completed_bins = $3,
		    estimated_duration = $4, actual_duration = $5,
		    start_time = $6, end_time = $7, updated_at = $8
		WHERE id = $9
	`,
		route.Status, route.TotalBins, route.CompletedBins,
		route.EstimatedDuration, route.ActualDuration,
		route.StartTime, route.EndTime, route.UpdatedAt, route.ID,
	)
	if err != nil {
		return fmt.Errorf("update route: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) DeleteRoute(id string) error {
	// route_bins rows go with the route via ON DELETE CASCADE
	res, err := p.db.Exec(`DELETE FROM routes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete route: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) ListRoutes(date string) ([]models.Route, error) {
	routes := []models.Route{}
	var err error
	if date != "" {
		err = p.db.Select(&routes, `SELECT * FROM routes WHERE date = $1 ORDER BY created_at DESC`, date)
	} else {
		err = p.db.Select(&routes, `SELECT * FROM routes ORDER BY created_at DESC`)
	}
	if err != nil {
		return nil, fmt.Errorf("list routes: %w", err)
	}
	return routes, nil
}

func (p *Postgres) FindActiveRoute(collectorID, date string) (*models.Route, error) {
	var route models.Route
	err := p.db.Get(&route, `
		SELECT * FROM routes
		WHERE collector_id = $1 AND date = $2 AND status IN ('assigned', 'in_progress')
		ORDER BY created_at DESC
		LIMIT 1
	`, collectorID, date)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find active route: %w", err)
	}
	return &route, nil
}

func (p *Postgres) FindRouteByRequest(requestID string) (*models.Route, error) {
	var route models.Route
	err := p.db.Get(&route, `
		SELECT r.* FROM routes r
		INNER JOIN route_bins rb ON rb.route_id = r.id
		WHERE rb.request_id = $1
		ORDER BY r.created_at DESC
		LIMIT 1
	`, requestID)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find route by request: %w", err)
	}
	return &route, nil
}

func (p *Postgres) GetRouteBins(routeID string) ([]models.RouteBin, error) {
	bins := []models.RouteBin{}
	err := p.db.Select(&bins, `
		SELECT * FROM route_bins WHERE route_id = $1 ORDER BY sequence_order ASC
	`, routeID)
	if err != nil {
		return nil, fmt.Errorf("get route bins: %w", err)
	}
	return bins, nil
}

func (p *Postgres) AddRouteBin(bin *models.RouteBin) error {
	err := p.db.QueryRow(`
		INSERT INTO route_bins (
			route_id, bin_id, request_id, priority, estimated_minutes,
			sequence_order, status, customer_name, customer_address,
			completed_at, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`,
		bin.RouteID, bin.BinID, bin.RequestID, bin.Priority, bin.EstimatedMinutes,
		bin.SequenceOrder, bin.Status, bin.CustomerName, bin.CustomerAddress,
		bin.CompletedAt, bin.CreatedAt,
	).Scan(&bin.ID)
	if err != nil {
		return fmt.Errorf("add route bin: %w", err)
	}
	return nil
}

func (p *Postgres) UpdateRouteBin(bin *models.RouteBin) error {
	res, err := p.db.Exec(`
		UPDATE route_bins
		SET priority = $1, estimated_minutes = $2, sequence_order = $3,
		    status = $4, completed_at = $5
		WHERE id = $6
	`,
		bin.Priority, bin.EstimatedMinutes, bin.SequenceOrder,
		bin.Status, bin.CompletedAt, bin.ID,
	)
	if err != nil {
		return fmt.Errorf("update route bin: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) RemoveRouteBin(routeID, requestID string) error {
	res, err := p.db.Exec(`
		DELETE FROM route_bins WHERE route_id = $1 AND request_id = $2
	`, routeID, requestID)
	if err != nil {
		return fmt.Errorf("remove route bin: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) CountRoutes(collectorID, date string) (int, error) {
	var count int
	err := p.db.Get(&count, `
		SELECT COUNT(*) FROM routes WHERE collector_id = $1 AND date = $2
	`, collectorID, date)
	if err != nil {
		return 0, fmt.Errorf("count routes: %w", err)
	}
	return count, nil
}

// ─── bins ───

func (p *Postgres) CreateBin(bin *models.Bin) error {
	_, err := p.db.Exec(`
		INSERT INTO bins (
			id, owner_id, address, area, fill_level, battery, status,
			needs_maintenance, last_emptied_at, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		bin.ID, bin.OwnerID, bin.Address, bin.Area, bin.FillLevel, bin.Battery,
		bin.Status, bin.NeedsMaintenance, bin.LastEmptiedAt, bin.CreatedAt, bin.UpdatedAt,
	)
	if err != nil {
		return wrapInsertErr("insert bin", err)
	}
	return nil
}

func (p *Postgres) GetBin(id string) (*models.Bin, error) {
	var bin models.Bin
	err := p.db.Get(&bin, `SELECT * FROM bins WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get bin: %w", err)
	}
	return &bin, nil
}

func (p *Postgres) UpdateBin(bin *models.Bin) error {
	res, err := p.db.Exec(`
		UPDATE bins
		SET address = $1, area = $2, fill_level = $3, battery = $4, status = $5,
		    needs_maintenance = $6, last_emptied_at = $7, updated_at = $8
		WHERE id = $9
	`,
		bin.Address, bin.Area, bin.FillLevel, bin.Battery, bin.Status,
		bin.NeedsMaintenance, bin.LastEmptiedAt, bin.UpdatedAt, bin.ID,
	)
	if err != nil {
		return fmt.Errorf("update bin: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) ListBins() ([]models.Bin, error) {
	bins := []models.Bin{}
	if err := p.db.Select(&bins, `SELECT * FROM bins ORDER BY created_at DESC`); err != nil {
		return nil, fmt.Errorf("list bins: %w", err)
	}
	return bins, nil
}

// ─── users ───

func (p *Postgres) CreateUser(user *models.User) error {
	_, err := p.db.Exec(`
		INSERT INTO users (id, email, password, name, role, address, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		user.ID, user.Email, user.Password, user.Name, user.Role, user.Address,
		user.Active, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		return wrapInsertErr("insert user", err)
	}
	return nil
}

func (p *Postgres) GetUser(id string) (*models.User, error) {
	var user models.User
	err := p.db.Get(&user, `SELECT * FROM users WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &user, nil
}

func (p *Postgres) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	err := p.db.Get(&user, `SELECT * FROM users WHERE email = $1`, email)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return &user, nil
}

func (p *Postgres) ListActiveCollectors() ([]models.User, error) {
	users := []models.User{}
	err := p.db.Select(&users, `
		SELECT * FROM users
		WHERE role IN ('collector1', 'collector2', 'collector3') AND active = TRUE
		ORDER BY id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list active collectors: %w", err)
	}
	return users, nil
}

func (p *Postgres) ListUsersByRole(role string) ([]models.User, error) {
	users := []models.User{}
	err := p.db.Select(&users, `SELECT * FROM users WHERE role = $1 ORDER BY id ASC`, role)
	if err != nil {
		return nil, fmt.Errorf("list users by role: %w", err)
	}
	return users, nil
}

// ─── collections ───

func (p *Postgres) CreateCollection(c *models.Collection) error {
	_, err := p.db.Exec(`
		INSERT INTO collections (id, request_id, bin_id, collector_id, method, outcome, issue, collected_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		c.ID, c.RequestID, c.BinID, c.CollectorID, c.Method, c.Outcome, c.Issue, c.CollectedAt,
	)
	if err != nil {
		return wrapInsertErr("insert collection", err)
	}
	return nil
}

func (p *Postgres) ListCollectionsByRequest(requestID string) ([]models.Collection, error) {
	collections := []models.Collection{}
	err := p.db.Select(&collections, `
		SELECT * FROM collections WHERE request_id = $1 ORDER BY collected_at DESC
	`, requestID)
	if err != nil {
		return nil, fmt.Errorf("list collections by request: %w", err)
	}
	return collections, nil
}

func (p *Postgres) ListCollectionsByCollector(collectorID string) ([]models.Collection, error) {
	collections := []models.Collection{}
	err := p.db.Select(&collections, `
		SELECT * FROM collections WHERE collector_id = $1 ORDER BY collected_at DESC
	`, collectorID)
	if err != nil {
		return nil, fmt.Errorf("list collections by collector: %w", err)
	}
	return collections, nil
}

// ─── notifications ───

func (p *Postgres) CreateNotification(n *models.Notification) error {
	_, err := p.db.Exec(`
		INSERT INTO notifications (id, user_id, type, title, message, related_id, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`,
		n.ID, n.UserID, n.Type, n.Title, n.Message, n.RelatedID, n.Read, n.CreatedAt,
	)
	if err != nil {
		return wrapInsertErr("insert notification", err)
	}
	return nil
}

func (p *Postgres) ListNotificationsByUser(userID string) ([]models.Notification, error) {
	notifications := []models.Notification{}
	err := p.db.Select(&notifications, `
		SELECT * FROM notifications WHERE user_id = $1 ORDER BY created_at DESC LIMIT 100
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return notifications, nil
}

func (p *Postgres) SaveFCMToken(t *models.FCMToken) error {
	_, err := p.db.Exec(`
		INSERT INTO fcm_tokens (user_id, token, device_type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (token) DO UPDATE SET user_id = $1, device_type = $3, updated_at = $5
	`, t.UserID, t.Token, t.DeviceType, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save fcm token: %w", err)
	}
	return nil
}

func (p *Postgres) LatestFCMToken(userID string) (string, error) {
	var token string
	err := p.db.Get(&token, `
		SELECT token FROM fcm_tokens WHERE user_id = $1 ORDER BY created_at DESC LIMIT 1
	`, userID)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("latest fcm token: %w", err)
	}
	return token, nil
}

func (p *Postgres) MarkNotificationRead(id, userID string) error {
	res, err := p.db.Exec(`
		UPDATE notifications SET read = TRUE WHERE id = $1 AND user_id = $2
	`, id, userID)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
