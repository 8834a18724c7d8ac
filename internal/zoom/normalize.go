package zoom

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ronitphilip/zoom-backend/internal/models"
)

// The normalizers flatten nested upstream records into rows matching the
// local schema. They take the first element of any one-to-many sub-list and
// leave zero values for anything the upstream omitted. Normalizing the same
// raw record twice yields identical rows.

// NormalizeEngagement flattens one raw engagement record.
func NormalizeEngagement(raw json.RawMessage) (models.EngagementRecord, error) {
	var in RawEngagement
	if err := json.Unmarshal(raw, &in); err != nil {
		return models.EngagementRecord{}, fmt.Errorf("decode engagement: %w", err)
	}

	out := models.EngagementRecord{
		EngagementID:     in.EngagementID,
		Direction:        in.Direction,
		StartTime:        in.StartTime,
		EndTime:          in.EndTime,
		ChannelTypes:     strings.Join(in.ChannelTypes, ","),
		QueueWaitType:    in.QueueWaitType,
		Duration:         in.Duration,
		FlowDuration:     in.FlowDuration,
		WaitingDuration:  in.WaitingDuration,
		HandlingDuration: in.HandlingDuration,
		WrapUpDuration:   in.WrapUpDuration,
		VoiceMail:        in.VoiceMail,
		TalkDuration:     in.TalkDuration,
		TransferCount:    in.TransferCount,
	}
	if len(in.Consumers) > 0 {
		out.ConsumerNumber = in.Consumers[0].ConsumerNumber
		out.ConsumerID = in.Consumers[0].ConsumerID
		out.ConsumerDisplayName = in.Consumers[0].ConsumerDisplayName
	}
	if len(in.Flows) > 0 {
		out.FlowID = in.Flows[0].FlowID
		out.FlowName = in.Flows[0].FlowName
	}
	if len(in.Queues) > 0 {
		out.QueueID = in.Queues[0].CCQueueID
		out.QueueName = in.Queues[0].QueueName
	}
	if len(in.Agents) > 0 {
		out.UserID = in.Agents[0].UserID
		out.DisplayName = in.Agents[0].DisplayName
	}
	if len(in.Channels) > 0 {
		out.Channel = in.Channels[0].Channel
		out.ChannelSource = in.Channels[0].ChannelSource
	}
	return out, nil
}

// NormalizePerformance flattens one raw agent-performance record.
func NormalizePerformance(raw json.RawMessage) (models.PerformanceRecord, error) {
	var in RawPerformance
	if err := json.Unmarshal(raw, &in); err != nil {
		return models.PerformanceRecord{}, fmt.Errorf("decode performance: %w", err)
	}
	return models.PerformanceRecord{
		EngagementID:           in.EngagementID,
		StartTime:              in.StartTime,
		Direction:              in.Direction,
		UserID:                 in.UserID,
		UserName:               in.UserName,
		Channel:                in.Channel,
		ChannelSource:          in.ChannelSource,
		QueueName:              in.QueueName,
		HandleDuration:         in.HandleDuration,
		HoldCount:              in.HoldCount,
		HoldDuration:           in.HoldDuration,
		WrapUpDuration:         in.WrapUpDuration,
		RingDuration:           in.RingDuration,
		TransferInitiatedCount: in.TransferInitiatedCount,
		TransferCompletedCount: in.TransferCompletedCount,
		HandledCount:           in.HandledCount,
		InboundHandledCount:    in.InboundHandledCount,
		OutboundHandledCount:   in.OutboundHandledCount,
		AgentOfferedCount:      in.AgentOfferedCount,
		AgentRefusedCount:      in.AgentRefusedCount,
		AgentMissedCount:       in.AgentMissedCount,
		AgentDeclinedCount:     in.AgentDeclinedCount,
		DirectTransferCount:    in.DirectTransferCount,
	}, nil
}

// NormalizeTimecard flattens one raw agent-timecard record.
func NormalizeTimecard(raw json.RawMessage) (models.TimecardRecord, error) {
	var in RawTimecard
	if err := json.Unmarshal(raw, &in); err != nil {
		return models.TimecardRecord{}, fmt.Errorf("decode timecard: %w", err)
	}
	return models.TimecardRecord{
		WorkSessionID:    in.WorkSessionID,
		StartTime:        in.StartTime,
		EndTime:          in.EndTime,
		UserID:           in.UserID,
		UserName:         in.UserName,
		UserStatus:       in.UserStatus,
		UserSubStatus:    in.UserSubStatus,
		ReadyDuration:    in.ReadyDuration,
		OccupiedDuration: in.OccupiedDuration,
	}, nil
}

// NormalizeEngagementDetail flattens one raw engagement-detail record.
func NormalizeEngagementDetail(raw json.RawMessage) (models.EngagementDetailRecord, error) {
	var in RawEngagementDetail
	if err := json.Unmarshal(raw, &in); err != nil {
		return models.EngagementDetailRecord{}, fmt.Errorf("decode engagement detail: %w", err)
	}
	return models.EngagementDetailRecord{
		EngagementID:               in.EngagementID,
		Direction:                  in.Direction,
		StartTime:                  in.StartTime,
		EndTime:                    in.EndTime,
		EnterChannel:               in.EnterChannel,
		EnterChannelSource:         in.EnterChannelSource,
		Channel:                    in.Channel,
		ChannelSource:              in.ChannelSource,
		Consumer:                   in.Consumer,
		DNIS:                       in.DNIS,
		ANI:                        in.ANI,
		QueueID:                    in.QueueID,
		QueueName:                  in.QueueName,
		UserID:                     in.UserID,
		UserName:                   in.UserName,
		Duration:                   in.Duration,
		HoldCount:                  in.HoldCount,
		WarmTransferInitiatedCount: in.WarmTransferInitiatedCount,
		WarmTransferCompletedCount: in.WarmTransferCompletedCount,
		DirectTransferCount:        in.DirectTransferCount,
		TransferInitiatedCount:     in.TransferInitiatedCount,
		TransferCompletedCount:     in.TransferCompletedCount,
		WarmConferenceCount:        in.WarmConferenceCount,
		ConferenceCount:            in.ConferenceCount,
		AbandonedCount:             in.AbandonedCount,
	}, nil
}
