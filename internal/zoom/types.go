package zoom

import "github.com/ronitphilip/zoom-backend/internal/models"

// Raw upstream payload shapes, one per dataset. Unknown fields are dropped
// by the JSON decoder; missing fields decode to zero values.

// RawConsumer is one entry of an engagement's consumers list.
type RawConsumer struct {
	ConsumerNumber      string `json:"consumer_number"`
	ConsumerID          string `json:"consumer_id"`
	ConsumerDisplayName string `json:"consumer_display_name"`
}

// RawFlow is one entry of an engagement's flows list.
type RawFlow struct {
	FlowID   string `json:"flow_id"`
	FlowName string `json:"flow_name"`
}

// RawQueue is one entry of an engagement's queues list.
type RawQueue struct {
	CCQueueID string `json:"cc_queue_id"`
	QueueName string `json:"queue_name"`
}

// RawAgent is one entry of an engagement's agents list.
type RawAgent struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
}

// RawChannel is one entry of an engagement's channels list.
type RawChannel struct {
	Channel       string `json:"channel"`
	ChannelSource string `json:"channel_source"`
}

// RawEngagement is one record of the engagements dataset.
type RawEngagement struct {
	EngagementID     string        `json:"engagement_id"`
	Direction        string        `json:"direction"`
	StartTime        string        `json:"start_time"`
	EndTime          string        `json:"end_time"`
	ChannelTypes     []string      `json:"channel_types"`
	Consumers        []RawConsumer `json:"consumers"`
	Flows            []RawFlow     `json:"flows"`
	Queues           []RawQueue    `json:"queues"`
	Agents           []RawAgent    `json:"agents"`
	Channels         []RawChannel  `json:"channels"`
	QueueWaitType    string        `json:"queue_wait_type"`
	Duration         int           `json:"duration"`
	FlowDuration     int           `json:"flow_duration"`
	WaitingDuration  int           `json:"waiting_duration"`
	HandlingDuration int           `json:"handling_duration"`
	WrapUpDuration   int           `json:"wrap_up_duration"`
	VoiceMail        int           `json:"voice_mail"`
	TalkDuration     int           `json:"talk_duration"`
	TransferCount    int           `json:"transferCount"`
}

// RawPerformance is one record of the historical agent_performance dataset.
type RawPerformance struct {
	EngagementID           string `json:"engagement_id"`
	StartTime              string `json:"start_time"`
	Direction              string `json:"direction"`
	UserID                 string `json:"user_id"`
	UserName               string `json:"user_name"`
	Channel                string `json:"channel"`
	ChannelSource          string `json:"channel_source"`
	QueueName              string `json:"queue_name"`
	HandleDuration         int    `json:"handle_duration"`
	HoldCount              int    `json:"hold_count"`
	HoldDuration           int    `json:"hold_duration"`
	WrapUpDuration         int    `json:"wrap_up_duration"`
	RingDuration           int    `json:"ring_duration"`
	TransferInitiatedCount int    `json:"transfer_initiated_count"`
	TransferCompletedCount int    `json:"transfer_completed_count"`
	HandledCount           int    `json:"handled_count"`
	InboundHandledCount    int    `json:"inbound_handled_count"`
	OutboundHandledCount   int    `json:"outbound_handled_count"`
	AgentOfferedCount      int    `json:"agent_offered_count"`
	AgentRefusedCount      int    `json:"agent_refused_count"`
	AgentMissedCount       int    `json:"agent_missed_count"`
	AgentDeclinedCount     int    `json:"agent_declined_count"`
	DirectTransferCount    int    `json:"direct_transfer_count"`
}

// RawTimecard is one record of the historical agent_timecard dataset.
type RawTimecard struct {
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

// RawEngagementDetail is one record of the historical engagement dataset.
type RawEngagementDetail struct {
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

// RawUser is one record of the contact-center users listing.
type RawUser struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
}

// datasetPath maps each dataset to its upstream endpoint path.
var datasetPath = map[models.Dataset]string{
	models.DatasetEngagements:      "/contact_center/engagements",
	models.DatasetAgentPerformance: "/contact_center/analytics/dataset/historical/agent_performance",
	models.DatasetAgentTimecard:    "/contact_center/analytics/dataset/historical/agent_timecard",
	models.DatasetEngagementDetail: "/contact_center/analytics/dataset/historical/engagement",
}

// datasetField maps each dataset to the array field its responses use.
var datasetField = map[models.Dataset]string{
	models.DatasetEngagements:      "engagements",
	models.DatasetAgentPerformance: "users",
	models.DatasetAgentTimecard:    "users",
	models.DatasetEngagementDetail: "engagements",
}
