// Package models defines the flattened record types mirrored from the
// upstream contact-center analytics API and the report rows derived from them.
package models

// Dataset identifies one upstream analytics dataset and its local table.
type Dataset string

const (
	DatasetEngagements      Dataset = "engagements"
	DatasetAgentPerformance Dataset = "agent_performance"
	DatasetAgentTimecard    Dataset = "agent_timecard"
	DatasetEngagementDetail Dataset = "engagement_detail"
)

// Window is an inclusive [from, to] time range of ISO-8601 datetime strings.
// ISO-8601 strings sort lexicographically, which the storage layer relies on
// for range predicates and bucketing.
type Window struct {
	From string
	To   string
}

// EngagementRecord is one flattened contact-center interaction
// (local table agent_queue, natural key engagement_id).
type EngagementRecord struct {
	EngagementID        string `json:"engagement_id"`
	Direction           string `json:"direction"`
	StartTime           string `json:"start_time"`
	EndTime             string `json:"end_time"`
	ChannelTypes        string `json:"channel_types"`
	ConsumerNumber      string `json:"consumer_number"`
	ConsumerID          string `json:"consumer_id"`
	ConsumerDisplayName string `json:"consumer_display_name"`
	FlowID              string `json:"flow_id"`
	FlowName            string `json:"flow_name"`
	QueueID             string `json:"cc_queue_id"`
	QueueName           string `json:"queue_name"`
	UserID              string `json:"user_id"`
	DisplayName         string `json:"display_name"`
	Channel             string `json:"channel"`
	ChannelSource       string `json:"channel_source"`
	QueueWaitType       string `json:"queue_wait_type"`
	Duration            int    `json:"duration"`
	FlowDuration        int    `json:"flow_duration"`
	WaitingDuration     int    `json:"waiting_duration"`
	HandlingDuration    int    `json:"handling_duration"`
	WrapUpDuration      int    `json:"wrap_up_duration"`
	VoiceMail           int    `json:"voice_mail"`
	TalkDuration        int    `json:"talk_duration"`
	TransferCount       int    `json:"transfer_count"`
}

// PerformanceRecord is one flattened agent-performance row
// (local table agent_performance).
type PerformanceRecord struct {
	EngagementID            string `json:"engagement_id"`
	StartTime               string `json:"start_time"`
	Direction               string `json:"direction"`
	UserID                  string `json:"user_id"`
	UserName                string `json:"user_name"`
	Channel                 string `json:"channel"`
	ChannelSource           string `json:"channel_source"`
	QueueName               string `json:"queue_name"`
	HandleDuration          int    `json:"handle_duration"`
	HoldCount               int    `json:"hold_count"`
	HoldDuration            int    `json:"hold_duration"`
	WrapUpDuration          int    `json:"wrap_up_duration"`
	RingDuration            int    `json:"ring_duration"`
	TransferInitiatedCount  int    `json:"transfer_initiated_count"`
	TransferCompletedCount  int    `json:"transfer_completed_count"`
	HandledCount            int    `json:"handled_count"`
	InboundHandledCount     int    `json:"inbound_handled_count"`
	OutboundHandledCount    int    `json:"outbound_handled_count"`
	AgentOfferedCount       int    `json:"agent_offered_count"`
	AgentRefusedCount       int    `json:"agent_refused_count"`
	AgentMissedCount        int    `json:"agent_missed_count"`
	AgentDeclinedCount      int    `json:"agent_declined_count"`
	DirectTransferCount     int    `json:"direct_transfer_count"`
}

// TimecardRecord is one flattened agent-timecard row
// (local table agent_timecard, natural key work_session_id).
type TimecardRecord struct {
	WorkSessionID    string `json:"work_session_id"`
	StartTime        string `json:"start_time"`
	EndTime          string `json:"end_time"`
	UserID           string `json:"user_id"`
	UserName         string `json:"user_name"`
	UserStatus       string `json:"user_status"`
	UserSubStatus    string `json:"user_sub_status"`
	ReadyDuration    int    `json:"ready_duration"`
	OccupiedDuration int    `json:"occupied_duration"`
}

// EngagementDetailRecord is one flattened engagement-detail row
// (local table agent_engagement, natural key engagement_id).
type EngagementDetailRecord struct {
	EngagementID               string `json:"engagement_id"`
	Direction                  string `json:"direction"`
	StartTime                  string `json:"start_time"`
	EndTime                    string `json:"end_time"`
	EnterChannel               string `json:"enter_channel"`
	EnterChannelSource         string `json:"enter_channel_source"`
	Channel                    string `json:"channel"`
	ChannelSource              string `json:"channel_source"`
	Consumer                   string `json:"consumer"`
	DNIS                       string `json:"dnis"`
	ANI                        string `json:"ani"`
	QueueID                    string `json:"queue_id"`
	QueueName                  string `json:"queue_name"`
	UserID                     string `json:"user_id"`
	UserName                   string `json:"user_name"`
	Duration                   int    `json:"duration"`
	HoldCount                  int    `json:"hold_count"`
	WarmTransferInitiatedCount int    `json:"warm_transfer_initiated_count"`
	WarmTransferCompletedCount int    `json:"warm_transfer_completed_count"`
	DirectTransferCount        int    `json:"direct_transfer_count"`
	TransferInitiatedCount     int    `json:"transfer_initiated_count"`
	TransferCompletedCount     int    `json:"transfer_completed_count"`
	WarmConferenceCount        int    `json:"warm_conference_count"`
	ConferenceCount            int    `json:"conference_count"`
	AbandonedCount             int    `json:"abandoned_count"`
}

// Team is a named list of agent display names used to partition
// performance summaries. Managed externally; the core only reads it.
type Team struct {
	ID      int      `json:"id"`
	Name    string   `json:"team_name"`
	Members []string `json:"team_members"`
}

// BucketedReportRow is one derived aggregate tuple: a time bucket, a
// grouping dimension and its computed metrics. Never stored.
type BucketedReportRow struct {
	Date                string  `json:"date"`
	GroupID             string  `json:"groupId"`
	GroupName           string  `json:"groupName"`
	TotalOffered        int     `json:"totalOffered"`
	TotalAnswered       int     `json:"totalAnswered"`
	AbandonedCalls      int     `json:"abandonedCalls"`
	ACDTime             int     `json:"acdTime"`
	ACWTime             int     `json:"acwTime"`
	AgentRingTime       int     `json:"agentRingTime"`
	AvgHandleTime       float64 `json:"avgHandleTime"`
	AvgACWTime          float64 `json:"avgAcwTime"`
	MaxHandleTime       int     `json:"maxHandleTime"`
	TransferCount       int     `json:"transferCount"`
	VoiceCalls          int     `json:"voiceCalls"`
	DigitalInteractions int     `json:"digitalInteractions"`
	InboundCalls        int     `json:"inboundCalls"`
	OutboundCalls       int     `json:"outboundCalls"`
	SuccessPercentage   string  `json:"successPercentage"`
	AbandonPercentage   string  `json:"abandonPercentage"`
}

// AbandonedCall is one abandoned interaction detail row.
type AbandonedCall struct {
	StartTime           string `json:"startTime"`
	EngagementID        string `json:"engagementId"`
	Direction           string `json:"direction"`
	ConsumerNumber      string `json:"consumerNumber"`
	ConsumerID          string `json:"consumerId"`
	ConsumerDisplayName string `json:"consumerDisplayName"`
	QueueID             string `json:"queueId,omitempty"`
	QueueName           string `json:"queueName"`
	AgentID             string `json:"agentId,omitempty"`
	AgentName           string `json:"agentName,omitempty"`
	Channel             string `json:"channel"`
	QueueWaitType       string `json:"queueWaitType"`
	WaitingDuration     int    `json:"waitingDuration"`
	VoiceMail           int    `json:"voiceMail,omitempty"`
	TransferCount       int    `json:"transferCount,omitempty"`
}

// AgentReportRow is one merged performance+timecard row per agent per day.
type AgentReportRow struct {
	Date                   string `json:"date"`
	Time                   string `json:"time"`
	UserID                 string `json:"user_id"`
	UserName               string `json:"user_name"`
	Queue                  string `json:"queue"`
	Status                 string `json:"status"`
	SubStatus              string `json:"sub_status"`
	Channel                string `json:"channel"`
	Direction              string `json:"direction"`
	Duration               int    `json:"duration"`
	HandleDuration         int    `json:"handle_duration"`
	HoldDuration           int    `json:"hold_duration"`
	WrapUpDuration         int    `json:"wrap_up_duration"`
	TransferInitiatedCount int    `json:"transfer_initiated_count"`
	TransferCompletedCount int    `json:"transfer_completed_count"`
}

// AgentSummaryRow aggregates performance and timecard totals per agent,
// queue and day, used for team summaries.
type AgentSummaryRow struct {
	UserID                      string `json:"user_id"`
	UserName                    string `json:"user_name"`
	QueueName                   string `json:"queue_name"`
	Date                        string `json:"date"`
	TotalHandleDuration         int    `json:"total_handle_duration"`
	TotalHoldDuration           int    `json:"total_hold_duration"`
	TotalWrapUpDuration         int    `json:"total_wrap_up_duration"`
	TotalTransferInitiatedCount int    `json:"total_transfer_initiated_count"`
	TotalTransferCompletedCount int    `json:"total_transfer_completed_count"`
	TotalHandledCount           int    `json:"total_handled_count"`
	TotalInboundHandledCount    int    `json:"total_inbound_handled_count"`
	TotalOutboundHandledCount   int    `json:"total_outbound_handled_count"`
	TotalReadyDuration          int    `json:"total_ready_duration"`
	TotalOccupiedDuration       int    `json:"total_occupied_duration"`
}
