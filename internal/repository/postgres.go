package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ronitphilip/zoom-backend/internal/models"
)

// PostgresStore implements Store on a pgx connection pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to Postgres and verifies the connection.
func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() { s.pool.Close() }

// engagementWhere renders the shared predicate used by probes, listings,
// deletes and aggregates. The window predicate relies on ISO-8601 strings
// sorting lexicographically.
func engagementWhere(w models.Window, f EngagementFilter) (string, []any) {
	clauses := []string{"start_time BETWEEN $1 AND $2"}
	args := []any{w.From, w.To}

	add := func(format string, v any) {
		args = append(args, v)
		clauses = append(clauses, fmt.Sprintf(format, len(args)))
	}
	if f.QueueID != "" {
		add("cc_queue_id = $%d", f.QueueID)
	}
	if f.QueueName != "" {
		add("queue_name = $%d", f.QueueName)
	}
	if f.FlowID != "" {
		add("flow_id = $%d", f.FlowID)
	}
	if f.FlowName != "" {
		add("flow_name = $%d", f.FlowName)
	}
	if f.AgentName != "" {
		add("display_name = $%d", f.AgentName)
	}
	if f.Direction != "" {
		add("direction = $%d", f.Direction)
	}
	if f.AbandonedOnly {
		clauses = append(clauses, "handling_duration = 0")
	}
	if f.WaitedOnly {
		clauses = append(clauses, "waiting_duration > 0")
	}
	return strings.Join(clauses, " AND "), args
}

// bucketExpr renders the SQL bucket expression for the given bucketing.
// Keep in step with BucketLabel.
func bucketExpr(b Bucketing) (string, error) {
	if b.Grouping == GroupingDaily || b.IntervalMinutes == 1440 {
		return "to_char(start_time::timestamp, 'YYYY-MM-DD')", nil
	}
	switch b.IntervalMinutes {
	case 15, 30:
		return fmt.Sprintf(
			"to_char(date_trunc('hour', start_time::timestamp) + interval '%d minutes' * floor(extract(minute from start_time::timestamp) / %d), 'YYYY-MM-DD HH24:MI')",
			b.IntervalMinutes, b.IntervalMinutes,
		), nil
	case 60:
		return "to_char(start_time::timestamp, 'YYYY-MM-DD HH24:00')", nil
	}
	return "", fmt.Errorf("invalid interval minutes %d", b.IntervalMinutes)
}

func dimensionCols(dim Dimension) (idCol, nameCol string) {
	switch dim {
	case DimensionFlow:
		return "flow_id", "flow_name"
	case DimensionAgent:
		return "user_id", "display_name"
	default:
		return "cc_queue_id", "queue_name"
	}
}

const engagementCols = `engagement_id, direction, start_time, end_time, channel_types,
	consumer_number, consumer_id, consumer_display_name, flow_id, flow_name,
	cc_queue_id, queue_name, user_id, display_name, channel, channel_source,
	queue_wait_type, duration, flow_duration, waiting_duration,
	handling_duration, wrap_up_duration, voice_mail, talk_duration, transfer_count`

// UpsertEngagements bulk-inserts rows, replacing existing rows with the same
// engagement_id. Re-ingesting a page is therefore idempotent.
func (s *PostgresStore) UpsertEngagements(ctx context.Context, rows []models.EngagementRecord) error {
	if len(rows) == 0 {
		return nil
	}
	q := `INSERT INTO agent_queue (` + engagementCols + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25)
		ON CONFLICT (engagement_id) DO UPDATE SET
			direction = EXCLUDED.direction,
			start_time = EXCLUDED.start_time,
			end_time = EXCLUDED.end_time,
			channel_types = EXCLUDED.channel_types,
			consumer_number = EXCLUDED.consumer_number,
			consumer_id = EXCLUDED.consumer_id,
			consumer_display_name = EXCLUDED.consumer_display_name,
			flow_id = EXCLUDED.flow_id,
			flow_name = EXCLUDED.flow_name,
			cc_queue_id = EXCLUDED.cc_queue_id,
			queue_name = EXCLUDED.queue_name,
			user_id = EXCLUDED.user_id,
			display_name = EXCLUDED.display_name,
			channel = EXCLUDED.channel,
			channel_source = EXCLUDED.channel_source,
			queue_wait_type = EXCLUDED.queue_wait_type,
			duration = EXCLUDED.duration,
			flow_duration = EXCLUDED.flow_duration,
			waiting_duration = EXCLUDED.waiting_duration,
			handling_duration = EXCLUDED.handling_duration,
			wrap_up_duration = EXCLUDED.wrap_up_duration,
			voice_mail = EXCLUDED.voice_mail,
			talk_duration = EXCLUDED.talk_duration,
			transfer_count = EXCLUDED.transfer_count`

	batch := &pgx.Batch{}
	for _, r := range rows {
		batch.Queue(q,
			r.EngagementID, r.Direction, r.StartTime, r.EndTime, r.ChannelTypes,
			r.ConsumerNumber, r.ConsumerID, r.ConsumerDisplayName, r.FlowID, r.FlowName,
			r.QueueID, r.QueueName, r.UserID, r.DisplayName, r.Channel, r.ChannelSource,
			r.QueueWaitType, r.Duration, r.FlowDuration, r.WaitingDuration,
			r.HandlingDuration, r.WrapUpDuration, r.VoiceMail, r.TalkDuration, r.TransferCount,
		)
	}
	if err := s.sendBatch(ctx, batch); err != nil {
		return fmt.Errorf("%w: upsert engagements: %v", ErrStorage, err)
	}
	return nil
}

// DeleteEngagements removes all rows matching the window and filter; the
// destructive half of a refresh.
func (s *PostgresStore) DeleteEngagements(ctx context.Context, w models.Window, f EngagementFilter) error {
	where, args := engagementWhere(w, f)
	if _, err := s.pool.Exec(ctx, "DELETE FROM agent_queue WHERE "+where, args...); err != nil {
		return fmt.Errorf("%w: delete engagements: %v", ErrStorage, err)
	}
	return nil
}

// HasEngagements is the cache-presence probe: a LIMIT 1 existence check with
// the same predicate the report query uses.
func (s *PostgresStore) HasEngagements(ctx context.Context, w models.Window, f EngagementFilter) (bool, error) {
	where, args := engagementWhere(w, f)
	var one int
	err := s.pool.QueryRow(ctx, "SELECT 1 FROM agent_queue WHERE "+where+" LIMIT 1", args...).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("probe engagements: %w", err)
	}
	return true, nil
}

func (s *PostgresStore) CountEngagements(ctx context.Context, w models.Window, f EngagementFilter) (int, error) {
	where, args := engagementWhere(w, f)
	var n int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM agent_queue WHERE "+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count engagements: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) ListEngagements(ctx context.Context, w models.Window, f EngagementFilter, limit, offset int) ([]models.EngagementRecord, error) {
	where, args := engagementWhere(w, f)
	q := fmt.Sprintf(
		"SELECT "+engagementCols+" FROM agent_queue WHERE %s ORDER BY start_time LIMIT $%d OFFSET $%d",
		where, len(args)+1, len(args)+2,
	)
	args = append(args, limit, offset)

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list engagements: %w", err)
	}
	defer rows.Close()

	var out []models.EngagementRecord
	for rows.Next() {
		var r models.EngagementRecord
		if err := rows.Scan(
			&r.EngagementID, &r.Direction, &r.StartTime, &r.EndTime, &r.ChannelTypes,
			&r.ConsumerNumber, &r.ConsumerID, &r.ConsumerDisplayName, &r.FlowID, &r.FlowName,
			&r.QueueID, &r.QueueName, &r.UserID, &r.DisplayName, &r.Channel, &r.ChannelSource,
			&r.QueueWaitType, &r.Duration, &r.FlowDuration, &r.WaitingDuration,
			&r.HandlingDuration, &r.WrapUpDuration, &r.VoiceMail, &r.TalkDuration, &r.TransferCount,
		); err != nil {
			return nil, fmt.Errorf("scan engagement: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// AggregateEngagements runs the grouped bucketed report query.
func (s *PostgresStore) AggregateEngagements(ctx context.Context, w models.Window, f EngagementFilter, b Bucketing, dim Dimension, limit, offset int) ([]AggregateRow, error) {
	expr, err := bucketExpr(b)
	if err != nil {
		return nil, err
	}
	idCol, nameCol := dimensionCols(dim)
	where, args := engagementWhere(w, f)

	q := fmt.Sprintf(`SELECT
			%s AS bucket,
			COALESCE(%s, '') AS group_id,
			COALESCE(%s, '') AS group_name,
			COUNT(engagement_id),
			SUM(CASE WHEN handling_duration > 0 THEN 1 ELSE 0 END),
			SUM(CASE WHEN handling_duration = 0 THEN 1 ELSE 0 END),
			COALESCE(SUM(handling_duration), 0),
			COALESCE(SUM(wrap_up_duration), 0),
			COALESCE(SUM(waiting_duration), 0),
			COALESCE(AVG(CASE WHEN handling_duration > 0 THEN handling_duration + wrap_up_duration END)::float8, 0),
			COALESCE(AVG(CASE WHEN wrap_up_duration > 0 THEN wrap_up_duration END)::float8, 0),
			COALESCE(MAX(handling_duration + wrap_up_duration), 0),
			COALESCE(SUM(transfer_count), 0),
			SUM(CASE WHEN channel = 'voice' THEN 1 ELSE 0 END),
			SUM(CASE WHEN channel <> 'voice' THEN 1 ELSE 0 END),
			SUM(CASE WHEN direction = 'inbound' THEN 1 ELSE 0 END),
			SUM(CASE WHEN direction = 'outbound' THEN 1 ELSE 0 END)
		FROM agent_queue
		WHERE %s
		GROUP BY 1, 2, 3
		ORDER BY 1, 2
		LIMIT $%d OFFSET $%d`,
		expr, idCol, nameCol, where, len(args)+1, len(args)+2,
	)
	args = append(args, limit, offset)

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("aggregate engagements: %w", err)
	}
	defer rows.Close()

	var out []AggregateRow
	for rows.Next() {
		var r AggregateRow
		if err := rows.Scan(
			&r.Bucket, &r.GroupID, &r.GroupName,
			&r.Offered, &r.Answered, &r.Abandoned,
			&r.HandlingSum, &r.WrapUpSum, &r.WaitingSum,
			&r.AvgHandle, &r.AvgWrapUp, &r.MaxHandle,
			&r.TransferSum, &r.Voice, &r.Digital, &r.Inbound, &r.Outbound,
		); err != nil {
			return nil, fmt.Errorf("scan aggregate row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// CountAggregateGroups counts distinct (bucket, dimension) tuples for
// pagination math, not raw rows.
func (s *PostgresStore) CountAggregateGroups(ctx context.Context, w models.Window, f EngagementFilter, b Bucketing, dim Dimension) (int, error) {
	expr, err := bucketExpr(b)
	if err != nil {
		return 0, err
	}
	idCol, nameCol := dimensionCols(dim)
	where, args := engagementWhere(w, f)

	q := fmt.Sprintf(
		"SELECT COUNT(*) FROM (SELECT DISTINCT %s, %s, %s FROM agent_queue WHERE %s) g",
		expr, idCol, nameCol, where,
	)
	var n int
	if err := s.pool.QueryRow(ctx, q, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count aggregate groups: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) UpsertPerformance(ctx context.Context, rows []models.PerformanceRecord) error {
	if len(rows) == 0 {
		return nil
	}
	q := `INSERT INTO agent_performance (
			engagement_id, start_time, direction, user_id, user_name, channel,
			channel_source, queue_name, handle_duration, hold_count, hold_duration,
			wrap_up_duration, ring_duration, transfer_initiated_count,
			transfer_completed_count, handled_count, inbound_handled_count,
			outbound_handled_count, agent_offered_count, agent_refused_count,
			agent_missed_count, agent_declined_count, direct_transfer_count
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23)
		ON CONFLICT (engagement_id, user_id, start_time) DO UPDATE SET
			direction = EXCLUDED.direction,
			user_name = EXCLUDED.user_name,
			channel = EXCLUDED.channel,
			channel_source = EXCLUDED.channel_source,
			queue_name = EXCLUDED.queue_name,
			handle_duration = EXCLUDED.handle_duration,
			hold_count = EXCLUDED.hold_count,
			hold_duration = EXCLUDED.hold_duration,
			wrap_up_duration = EXCLUDED.wrap_up_duration,
			ring_duration = EXCLUDED.ring_duration,
			transfer_initiated_count = EXCLUDED.transfer_initiated_count,
			transfer_completed_count = EXCLUDED.transfer_completed_count,
			handled_count = EXCLUDED.handled_count,
			inbound_handled_count = EXCLUDED.inbound_handled_count,
			outbound_handled_count = EXCLUDED.outbound_handled_count,
			agent_offered_count = EXCLUDED.agent_offered_count,
			agent_refused_count = EXCLUDED.agent_refused_count,
			agent_missed_count = EXCLUDED.agent_missed_count,
			agent_declined_count = EXCLUDED.agent_declined_count,
			direct_transfer_count = EXCLUDED.direct_transfer_count`

	batch := &pgx.Batch{}
	for _, r := range rows {
		batch.Queue(q,
			r.EngagementID, r.StartTime, r.Direction, r.UserID, r.UserName, r.Channel,
			r.ChannelSource, r.QueueName, r.HandleDuration, r.HoldCount, r.HoldDuration,
			r.WrapUpDuration, r.RingDuration, r.TransferInitiatedCount,
			r.TransferCompletedCount, r.HandledCount, r.InboundHandledCount,
			r.OutboundHandledCount, r.AgentOfferedCount, r.AgentRefusedCount,
			r.AgentMissedCount, r.AgentDeclinedCount, r.DirectTransferCount,
		)
	}
	if err := s.sendBatch(ctx, batch); err != nil {
		return fmt.Errorf("%w: upsert performance: %v", ErrStorage, err)
	}
	return nil
}

func (s *PostgresStore) DeletePerformance(ctx context.Context, w models.Window) error {
	if _, err := s.pool.Exec(ctx, "DELETE FROM agent_performance WHERE start_time BETWEEN $1 AND $2", w.From, w.To); err != nil {
		return fmt.Errorf("%w: delete performance: %v", ErrStorage, err)
	}
	return nil
}

func (s *PostgresStore) HasPerformance(ctx context.Context, w models.Window) (bool, error) {
	return s.probe(ctx, "agent_performance", w)
}

func (s *PostgresStore) ListPerformance(ctx context.Context, w models.Window) ([]models.PerformanceRecord, error) {
	q := `SELECT engagement_id, start_time, direction, user_id, user_name, channel,
			channel_source, queue_name, handle_duration, hold_count, hold_duration,
			wrap_up_duration, ring_duration, transfer_initiated_count,
			transfer_completed_count, handled_count, inbound_handled_count,
			outbound_handled_count, agent_offered_count, agent_refused_count,
			agent_missed_count, agent_declined_count, direct_transfer_count
		FROM agent_performance
		WHERE start_time BETWEEN $1 AND $2
		ORDER BY start_time`
	rows, err := s.pool.Query(ctx, q, w.From, w.To)
	if err != nil {
		return nil, fmt.Errorf("list performance: %w", err)
	}
	defer rows.Close()

	var out []models.PerformanceRecord
	for rows.Next() {
		var r models.PerformanceRecord
		if err := rows.Scan(
			&r.EngagementID, &r.StartTime, &r.Direction, &r.UserID, &r.UserName, &r.Channel,
			&r.ChannelSource, &r.QueueName, &r.HandleDuration, &r.HoldCount, &r.HoldDuration,
			&r.WrapUpDuration, &r.RingDuration, &r.TransferInitiatedCount,
			&r.TransferCompletedCount, &r.HandledCount, &r.InboundHandledCount,
			&r.OutboundHandledCount, &r.AgentOfferedCount, &r.AgentRefusedCount,
			&r.AgentMissedCount, &r.AgentDeclinedCount, &r.DirectTransferCount,
		); err != nil {
			return nil, fmt.Errorf("scan performance: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *PostgresStore) UpsertTimecards(ctx context.Context, rows []models.TimecardRecord) error {
	if len(rows) == 0 {
		return nil
	}
	q := `INSERT INTO agent_timecard (
			work_session_id, start_time, end_time, user_id, user_name,
			user_status, user_sub_status, ready_duration, occupied_duration
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (work_session_id) DO UPDATE SET
			start_time = EXCLUDED.start_time,
			end_time = EXCLUDED.end_time,
			user_id = EXCLUDED.user_id,
			user_name = EXCLUDED.user_name,
			user_status = EXCLUDED.user_status,
			user_sub_status = EXCLUDED.user_sub_status,
			ready_duration = EXCLUDED.ready_duration,
			occupied_duration = EXCLUDED.occupied_duration`

	batch := &pgx.Batch{}
	for _, r := range rows {
		batch.Queue(q,
			r.WorkSessionID, r.StartTime, r.EndTime, r.UserID, r.UserName,
			r.UserStatus, r.UserSubStatus, r.ReadyDuration, r.OccupiedDuration,
		)
	}
	if err := s.sendBatch(ctx, batch); err != nil {
		return fmt.Errorf("%w: upsert timecards: %v", ErrStorage, err)
	}
	return nil
}

func (s *PostgresStore) DeleteTimecards(ctx context.Context, w models.Window) error {
	if _, err := s.pool.Exec(ctx, "DELETE FROM agent_timecard WHERE start_time BETWEEN $1 AND $2", w.From, w.To); err != nil {
		return fmt.Errorf("%w: delete timecards: %v", ErrStorage, err)
	}
	return nil
}

func (s *PostgresStore) HasTimecards(ctx context.Context, w models.Window) (bool, error) {
	return s.probe(ctx, "agent_timecard", w)
}

func (s *PostgresStore) ListTimecards(ctx context.Context, w models.Window) ([]models.TimecardRecord, error) {
	q := `SELECT work_session_id, start_time, end_time, user_id, user_name,
			user_status, user_sub_status, ready_duration, occupied_duration
		FROM agent_timecard
		WHERE start_time BETWEEN $1 AND $2
		ORDER BY start_time`
	rows, err := s.pool.Query(ctx, q, w.From, w.To)
	if err != nil {
		return nil, fmt.Errorf("list timecards: %w", err)
	}
	defer rows.Close()

	var out []models.TimecardRecord
	for rows.Next() {
		var r models.TimecardRecord
		if err := rows.Scan(
			&r.WorkSessionID, &r.StartTime, &r.EndTime, &r.UserID, &r.UserName,
			&r.UserStatus, &r.UserSubStatus, &r.ReadyDuration, &r.OccupiedDuration,
		); err != nil {
			return nil, fmt.Errorf("scan timecard: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *PostgresStore) UpsertEngagementDetails(ctx context.Context, rows []models.EngagementDetailRecord) error {
	if len(rows) == 0 {
		return nil
	}
	q := `INSERT INTO agent_engagement (
			engagement_id, direction, start_time, end_time, enter_channel,
			enter_channel_source, channel, channel_source, consumer, dnis, ani,
			queue_id, queue_name, user_id, user_name, duration, hold_count,
			warm_transfer_initiated_count, warm_transfer_completed_count,
			direct_transfer_count, transfer_initiated_count,
			transfer_completed_count, warm_conference_count, conference_count,
			abandoned_count
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25)
		ON CONFLICT (engagement_id) DO UPDATE SET
			direction = EXCLUDED.direction,
			start_time = EXCLUDED.start_time,
			end_time = EXCLUDED.end_time,
			enter_channel = EXCLUDED.enter_channel,
			enter_channel_source = EXCLUDED.enter_channel_source,
			channel = EXCLUDED.channel,
			channel_source = EXCLUDED.channel_source,
			consumer = EXCLUDED.consumer,
			dnis = EXCLUDED.dnis,
			ani = EXCLUDED.ani,
			queue_id = EXCLUDED.queue_id,
			queue_name = EXCLUDED.queue_name,
			user_id = EXCLUDED.user_id,
			user_name = EXCLUDED.user_name,
			duration = EXCLUDED.duration,
			hold_count = EXCLUDED.hold_count,
			warm_transfer_initiated_count = EXCLUDED.warm_transfer_initiated_count,
			warm_transfer_completed_count = EXCLUDED.warm_transfer_completed_count,
			direct_transfer_count = EXCLUDED.direct_transfer_count,
			transfer_initiated_count = EXCLUDED.transfer_initiated_count,
			transfer_completed_count = EXCLUDED.transfer_completed_count,
			warm_conference_count = EXCLUDED.warm_conference_count,
			conference_count = EXCLUDED.conference_count,
			abandoned_count = EXCLUDED.abandoned_count`

	batch := &pgx.Batch{}
	for _, r := range rows {
		batch.Queue(q,
			r.EngagementID, r.Direction, r.StartTime, r.EndTime, r.EnterChannel,
			r.EnterChannelSource, r.Channel, r.ChannelSource, r.Consumer, r.DNIS, r.ANI,
			r.QueueID, r.QueueName, r.UserID, r.UserName, r.Duration, r.HoldCount,
			r.WarmTransferInitiatedCount, r.WarmTransferCompletedCount,
			r.DirectTransferCount, r.TransferInitiatedCount,
			r.TransferCompletedCount, r.WarmConferenceCount, r.ConferenceCount,
			r.AbandonedCount,
		)
	}
	if err := s.sendBatch(ctx, batch); err != nil {
		return fmt.Errorf("%w: upsert engagement details: %v", ErrStorage, err)
	}
	return nil
}

func (s *PostgresStore) DeleteEngagementDetails(ctx context.Context, w models.Window) error {
	if _, err := s.pool.Exec(ctx, "DELETE FROM agent_engagement WHERE start_time BETWEEN $1 AND $2", w.From, w.To); err != nil {
		return fmt.Errorf("%w: delete engagement details: %v", ErrStorage, err)
	}
	return nil
}

// detailWhere renders the shared engagement-detail predicate used by the
// probe, count and listing.
func detailWhere(w models.Window, f DetailFilter) (string, []any) {
	clauses := []string{"start_time BETWEEN $1 AND $2"}
	args := []any{w.From, w.To}
	if f.Channel != "" {
		args = append(args, f.Channel)
		clauses = append(clauses, fmt.Sprintf("channel = $%d", len(args)))
	}
	if f.AgentName != "" {
		args = append(args, f.AgentName)
		clauses = append(clauses, fmt.Sprintf("user_name = $%d", len(args)))
	}
	return strings.Join(clauses, " AND "), args
}

func (s *PostgresStore) HasEngagementDetails(ctx context.Context, w models.Window, f DetailFilter) (bool, error) {
	where, args := detailWhere(w, f)
	var one int
	err := s.pool.QueryRow(ctx, "SELECT 1 FROM agent_engagement WHERE "+where+" LIMIT 1", args...).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("probe engagement details: %w", err)
	}
	return true, nil
}

func (s *PostgresStore) CountEngagementDetails(ctx context.Context, w models.Window, f DetailFilter) (int, error) {
	where, args := detailWhere(w, f)
	var n int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM agent_engagement WHERE "+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count engagement details: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) ListEngagementDetails(ctx context.Context, w models.Window, f DetailFilter, limit, offset int) ([]models.EngagementDetailRecord, error) {
	where, args := detailWhere(w, f)
	q := fmt.Sprintf(`SELECT engagement_id, direction, start_time, end_time, enter_channel,
			enter_channel_source, channel, channel_source, consumer, dnis, ani,
			queue_id, queue_name, user_id, user_name, duration, hold_count,
			warm_transfer_initiated_count, warm_transfer_completed_count,
			direct_transfer_count, transfer_initiated_count,
			transfer_completed_count, warm_conference_count, conference_count,
			abandoned_count
		FROM agent_engagement
		WHERE %s ORDER BY start_time LIMIT $%d OFFSET $%d`,
		where, len(args)+1, len(args)+2,
	)
	args = append(args, limit, offset)

	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list engagement details: %w", err)
	}
	defer rows.Close()

	var out []models.EngagementDetailRecord
	for rows.Next() {
		var r models.EngagementDetailRecord
		if err := rows.Scan(
			&r.EngagementID, &r.Direction, &r.StartTime, &r.EndTime, &r.EnterChannel,
			&r.EnterChannelSource, &r.Channel, &r.ChannelSource, &r.Consumer, &r.DNIS, &r.ANI,
			&r.QueueID, &r.QueueName, &r.UserID, &r.UserName, &r.Duration, &r.HoldCount,
			&r.WarmTransferInitiatedCount, &r.WarmTransferCompletedCount,
			&r.DirectTransferCount, &r.TransferInitiatedCount,
			&r.TransferCompletedCount, &r.WarmConferenceCount, &r.ConferenceCount,
			&r.AbandonedCount,
		); err != nil {
			return nil, fmt.Errorf("scan engagement detail: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *PostgresStore) ListTeams(ctx context.Context) ([]models.Team, error) {
	rows, err := s.pool.Query(ctx, "SELECT id, team_name, team_members FROM teams ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	defer rows.Close()

	var out []models.Team
	for rows.Next() {
		var t models.Team
		if err := rows.Scan(&t.ID, &t.Name, &t.Members); err != nil {
			return nil, fmt.Errorf("scan team: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *PostgresStore) GetTeam(ctx context.Context, id int) (*models.Team, error) {
	var t models.Team
	err := s.pool.QueryRow(ctx, "SELECT id, team_name, team_members FROM teams WHERE id = $1", id).
		Scan(&t.ID, &t.Name, &t.Members)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get team: %w", err)
	}
	return &t, nil
}

func (s *PostgresStore) CreateTeam(ctx context.Context, name string, members []string) (*models.Team, error) {
	t := models.Team{Name: name, Members: members}
	err := s.pool.QueryRow(ctx,
		"INSERT INTO teams (team_name, team_members) VALUES ($1, $2) RETURNING id",
		name, members,
	).Scan(&t.ID)
	if err != nil {
		return nil, fmt.Errorf("create team: %w", err)
	}
	return &t, nil
}

func (s *PostgresStore) UpdateTeam(ctx context.Context, id int, name *string, members *[]string) (*models.Team, error) {
	t, err := s.GetTeam(ctx, id)
	if err != nil {
		return nil, err
	}
	if name != nil {
		t.Name = *name
	}
	if members != nil {
		t.Members = *members
	}
	if _, err := s.pool.Exec(ctx,
		"UPDATE teams SET team_name = $1, team_members = $2 WHERE id = $3",
		t.Name, t.Members, id,
	); err != nil {
		return nil, fmt.Errorf("update team: %w", err)
	}
	return t, nil
}

func (s *PostgresStore) DeleteTeam(ctx context.Context, id int) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM teams WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete team: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) probe(ctx context.Context, table string, w models.Window) (bool, error) {
	var one int
	err := s.pool.QueryRow(ctx,
		"SELECT 1 FROM "+table+" WHERE start_time BETWEEN $1 AND $2 LIMIT 1",
		w.From, w.To,
	).Scan(&one)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("probe %s: %w", table, err)
	}
	return true, nil
}

func (s *PostgresStore) sendBatch(ctx context.Context, batch *pgx.Batch) error {
	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()
	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}
