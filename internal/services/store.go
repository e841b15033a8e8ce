package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/beatwatch/complaint-server/internal/filters"
	"github.com/beatwatch/complaint-server/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// pageSize is the fixed record-store page size.
const pageSize = 10

// ComplaintStore is the record store: it owns complaint rows and serves the
// paginated query contract consumed by the search orchestrator. It is the
// in-process Querier implementation.
type ComplaintStore struct {
	db     *pgxpool.Pool
	table  string
	logger *zap.SugaredLogger
}

// NewComplaintStore creates a new complaint store
func NewComplaintStore(db *pgxpool.Pool, table string, logger *zap.SugaredLogger) *ComplaintStore {
	return &ComplaintStore{db: db, table: table, logger: logger}
}

const complaintColumns = `complaint_id, first_name, last_name, description, complaint_status,
	date_of_complaint, beat_number, problem_category, days_of_week,
	start_date, end_date, start_time, end_time, location,
	address_direction, address_street, address_zipcode,
	intersection1_direction, intersection1_street,
	intersection2_direction, intersection2_street, intersection_zipcode,
	coordinates, is_urgent_checked, officers_notes, subscribe_to_alerts`

// Query serves one page of complaints for a single status. Page size is
// fixed at pageSize; an out-of-range page comes back with Page=-1 and no
// data. TotalStatusCounts applies the non-status filters to every status, so
// the caller can show "all statuses" tallies next to a filtered page.
func (s *ComplaintStore) Query(ctx context.Context, req models.QueryRequest) (*models.QueryResponse, error) {
	where, args := buildFilterClause(req)

	var total int
	countSQL := fmt.Sprintf("SELECT COUNT(*) FROM %s%s", s.table, where)
	if err := s.db.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count complaints: %w", err)
	}

	totalPages := (total + pageSize - 1) / pageSize

	statusCounts, err := s.statusCounts(ctx, req, total)
	if err != nil {
		return nil, err
	}

	resp := &models.QueryResponse{
		Status:            200,
		TotalComplaint:    total,
		TotalStatusCounts: statusCounts,
		TotalPages:        totalPages,
	}

	if req.Page < 1 || req.Page > totalPages {
		resp.Page = -1
		resp.ComplaintsData = []models.Complaint{}
		resp.Message = "Page out of limit"
		return resp, nil
	}

	pageSQL := fmt.Sprintf(
		"SELECT %s FROM %s%s ORDER BY date_of_complaint, complaint_id LIMIT %d OFFSET $%d",
		complaintColumns, s.table, where, pageSize, len(args)+1,
	)
	args = append(args, (req.Page-1)*pageSize)

	rows, err := s.db.Query(ctx, pageSQL, args...)
	if err != nil {
		return nil, fmt.Errorf("query complaints: %w", err)
	}
	defer rows.Close()

	data := []models.Complaint{}
	for rows.Next() {
		c, err := scanComplaint(rows)
		if err != nil {
			return nil, fmt.Errorf("scan complaint: %w", err)
		}
		data = append(data, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read complaints: %w", err)
	}

	resp.Page = req.Page
	resp.ComplaintsData = data
	resp.Message = "Complaints fetched successfully"
	return resp, nil
}

// statusCounts tallies matches per status with the non-status filters kept.
// When the request pinned a status, the other statuses report zero.
func (s *ComplaintStore) statusCounts(ctx context.Context, req models.QueryRequest, matched int) (map[string]int, error) {
	counts := make(map[string]int, len(filters.ComplaintStatuses))

	for _, status := range filters.ComplaintStatuses {
		if req.ComplaintStatus != "" {
			if strings.EqualFold(status, req.ComplaintStatus) {
				counts["Total"+status] = matched
			} else {
				counts["Total"+status] = 0
			}
			continue
		}

		statusReq := req
		statusReq.ComplaintStatus = status
		where, args := buildFilterClause(statusReq)
		sql := fmt.Sprintf("SELECT COUNT(*) FROM %s%s", s.table, where)

		var n int
		if err := s.db.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
			return nil, fmt.Errorf("count status %s: %w", status, err)
		}
		counts["Total"+status] = n
	}

	return counts, nil
}

// buildFilterClause renders the WHERE clause for a query request. Beats and
// categories are OR-ed within their lists, everything else is AND-ed.
func buildFilterClause(req models.QueryRequest) (string, []any) {
	var conds []string
	var args []any

	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if len(req.BeatNumber) > 0 {
		conds = append(conds, fmt.Sprintf("beat_number = ANY(%s)", arg(req.BeatNumber)))
	}
	if len(req.ProblemCategory) > 0 {
		conds = append(conds, fmt.Sprintf("problem_category = ANY(%s)", arg(req.ProblemCategory)))
	}
	if req.ComplaintStatus != "" {
		conds = append(conds, fmt.Sprintf("complaint_status = %s", arg(req.ComplaintStatus)))
	}
	if req.StartDate != "" && req.EndDate != "" {
		conds = append(conds, fmt.Sprintf("start_date BETWEEN %s AND %s", arg(req.StartDate), arg(req.EndDate)))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func scanComplaint(rows pgx.Rows) (models.Complaint, error) {
	var c models.Complaint
	err := rows.Scan(
		&c.ComplaintID, &c.FirstName, &c.LastName, &c.Description, &c.ComplaintStatus,
		&c.DateOfComplaint, &c.BeatNumber, &c.ProblemCategory, &c.DaysOfWeek,
		&c.StartDate, &c.EndDate, &c.StartTime, &c.EndTime, &c.Location,
		&c.AddressDirection, &c.AddressStreet, &c.AddressZipcode,
		&c.Intersection1Direction, &c.Intersection1Street,
		&c.Intersection2Direction, &c.Intersection2Street, &c.IntersectionZipcode,
		&c.Coordinates, &c.IsUrgentChecked, &c.OfficersNotes, &c.SubscribeToAlerts,
	)
	return c, err
}

// Create stores a new complaint. The ID is an 8-character slice of a random
// UUID, regenerated on the rare collision. DateOfComplaint is stamped with
// the current Arizona date.
func (s *ComplaintStore) Create(ctx context.Context, c *models.Complaint) error {
	for {
		c.ComplaintID = uuid.NewString()[:8]
		var exists bool
		err := s.db.QueryRow(ctx,
			fmt.Sprintf("SELECT EXISTS(SELECT 1 FROM %s WHERE complaint_id = $1)", s.table),
			c.ComplaintID,
		).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check complaint id: %w", err)
		}
		if !exists {
			break
		}
	}

	if c.ComplaintStatus == "" {
		c.ComplaintStatus = "Open"
	}
	c.DateOfComplaint = filters.Today().Format("2006-01-02")

	insertSQL := fmt.Sprintf(`INSERT INTO %s (%s) VALUES
		($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
		 $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26)`,
		s.table, complaintColumns)

	_, err := s.db.Exec(ctx, insertSQL,
		c.ComplaintID, c.FirstName, c.LastName, c.Description, c.ComplaintStatus,
		c.DateOfComplaint, c.BeatNumber, c.ProblemCategory, c.DaysOfWeek,
		c.StartDate, c.EndDate, c.StartTime, c.EndTime, c.Location,
		c.AddressDirection, c.AddressStreet, c.AddressZipcode,
		c.Intersection1Direction, c.Intersection1Street,
		c.Intersection2Direction, c.Intersection2Street, c.IntersectionZipcode,
		c.Coordinates, c.IsUrgentChecked, c.OfficersNotes, c.SubscribeToAlerts,
	)
	if err != nil {
		return fmt.Errorf("insert complaint: %w", err)
	}

	s.logger.Infow("Complaint created",
		"id", c.ComplaintID,
		"beat", c.BeatNumber,
		"category", c.ProblemCategory,
	)
	return nil
}

// updatableColumns guards UpdateField against arbitrary column injection.
var updatableColumns = map[string]string{
	"complaintStatus": "complaint_status",
	"officersNotes":   "officers_notes",
	"beatNumber":      "beat_number",
	"problemCategory": "problem_category",
}

// UpdateField sets a single attribute on a complaint. Status values are
// validated against the canonical status set before writing.
func (s *ComplaintStore) UpdateField(ctx context.Context, id, attribute, value string) (*models.Complaint, error) {
	column, ok := updatableColumns[attribute]
	if !ok {
		return nil, fmt.Errorf("attribute %q is not updatable", attribute)
	}
	if attribute == "complaintStatus" {
		canonical, ok := filters.BestMatch(value, filters.ComplaintStatuses, filters.DefaultThreshold)
		if !ok {
			return nil, fmt.Errorf("invalid complaint status %q", value)
		}
		value = canonical
	}

	sql := fmt.Sprintf("UPDATE %s SET %s = $1 WHERE complaint_id = $2 RETURNING %s",
		s.table, column, complaintColumns)

	rows, err := s.db.Query(ctx, sql, value, id)
	if err != nil {
		return nil, fmt.Errorf("update complaint: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, fmt.Errorf("complaint %s not found", id)
	}
	c, err := scanComplaint(rows)
	if err != nil {
		return nil, fmt.Errorf("scan updated complaint: %w", err)
	}

	s.logger.Infow("Complaint updated", "id", id, "attribute", attribute)
	return &c, nil
}

// FindByID returns a single complaint by its identifier.
func (s *ComplaintStore) FindByID(ctx context.Context, id string) (*models.Complaint, error) {
	sql := fmt.Sprintf("SELECT %s FROM %s WHERE complaint_id = $1", complaintColumns, s.table)
	rows, err := s.db.Query(ctx, sql, id)
	if err != nil {
		return nil, fmt.Errorf("query complaint: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, fmt.Errorf("complaint %s not found", id)
	}
	c, err := scanComplaint(rows)
	if err != nil {
		return nil, fmt.Errorf("scan complaint: %w", err)
	}
	return &c, nil
}

// OpenCountsByBeat returns the number of open complaints per beat, for the
// portal heatmap.
func (s *ComplaintStore) OpenCountsByBeat(ctx context.Context) (map[string]int, error) {
	sql := fmt.Sprintf(
		"SELECT beat_number, COUNT(*) FROM %s WHERE complaint_status = 'Open' GROUP BY beat_number",
		s.table)

	rows, err := s.db.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("query heatmap: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var beat string
		var n int
		if err := rows.Scan(&beat, &n); err != nil {
			return nil, fmt.Errorf("scan heatmap row: %w", err)
		}
		counts[beat] = n
	}
	return counts, rows.Err()
}

// Ping verifies store connectivity within a short deadline.
func (s *ComplaintStore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.db.Ping(ctx)
}
