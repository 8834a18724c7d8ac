package zoom

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeEngagement(t *testing.T) {
	raw := json.RawMessage(`{
		"engagement_id": "e1",
		"direction": "inbound",
		"start_time": "2024-01-01T10:07:00Z",
		"end_time": "2024-01-01T10:12:00Z",
		"channel_types": ["voice", "video"],
		"consumers": [
			{"consumer_number": "+15550001", "consumer_id": "c1", "consumer_display_name": "Carol"},
			{"consumer_number": "+15550002", "consumer_id": "c2", "consumer_display_name": "Dan"}
		],
		"queues": [{"cc_queue_id": "q1", "queue_name": "Support"}],
		"flows": [{"flow_id": "f1", "flow_name": "Main IVR"}],
		"agents": [{"user_id": "u1", "display_name": "Alice"}],
		"channels": [{"channel": "voice", "channel_source": "phone"}],
		"handling_duration": 240,
		"waiting_duration": 30,
		"wrap_up_duration": 15,
		"transferCount": 1,
		"unknown_field": {"nested": true}
	}`)

	row, err := NormalizeEngagement(raw)
	require.NoError(t, err)

	assert.Equal(t, "e1", row.EngagementID)
	assert.Equal(t, "voice,video", row.ChannelTypes)
	// First element of each sub-list wins.
	assert.Equal(t, "+15550001", row.ConsumerNumber)
	assert.Equal(t, "Carol", row.ConsumerDisplayName)
	assert.Equal(t, "q1", row.QueueID)
	assert.Equal(t, "Support", row.QueueName)
	assert.Equal(t, "f1", row.FlowID)
	assert.Equal(t, "Alice", row.DisplayName)
	assert.Equal(t, "voice", row.Channel)
	assert.Equal(t, 240, row.HandlingDuration)
	assert.Equal(t, 1, row.TransferCount)
}

func TestNormalizeEngagementDefaults(t *testing.T) {
	row, err := NormalizeEngagement(json.RawMessage(`{"engagement_id": "e2"}`))
	require.NoError(t, err)

	assert.Equal(t, "e2", row.EngagementID)
	assert.Empty(t, row.QueueID)
	assert.Empty(t, row.Channel)
	assert.Empty(t, row.ChannelTypes)
	assert.Zero(t, row.HandlingDuration)
	assert.Zero(t, row.WaitingDuration)
}

func TestNormalizeEngagementIdempotent(t *testing.T) {
	raw := json.RawMessage(`{
		"engagement_id": "e3",
		"queues": [{"cc_queue_id": "q1", "queue_name": "Support"}],
		"handling_duration": 10
	}`)
	first, err := NormalizeEngagement(raw)
	require.NoError(t, err)
	second, err := NormalizeEngagement(raw)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestNormalizeEngagementMalformed(t *testing.T) {
	_, err := NormalizeEngagement(json.RawMessage(`"not an object"`))
	assert.Error(t, err)
}

func TestNormalizePerformance(t *testing.T) {
	raw := json.RawMessage(`{
		"engagement_id": "e1",
		"start_time": "2024-01-01T10:00:00Z",
		"user_id": "u1",
		"user_name": "Alice",
		"queue_name": "Support",
		"handle_duration": 180,
		"hold_count": 2,
		"wrap_up_duration": 20,
		"inbound_handled_count": 1
	}`)
	row, err := NormalizePerformance(raw)
	require.NoError(t, err)
	assert.Equal(t, "u1", row.UserID)
	assert.Equal(t, 180, row.HandleDuration)
	assert.Equal(t, 2, row.HoldCount)
	assert.Equal(t, 1, row.InboundHandledCount)
	assert.Zero(t, row.OutboundHandledCount)
}

func TestNormalizeTimecard(t *testing.T) {
	raw := json.RawMessage(`{
		"work_session_id": "ws1",
		"start_time": "2024-01-01T09:00:00Z",
		"user_id": "u1",
		"user_status": "Ready",
		"user_sub_status": "Lunch",
		"ready_duration": 3600,
		"occupied_duration": 1800
	}`)
	row, err := NormalizeTimecard(raw)
	require.NoError(t, err)
	assert.Equal(t, "ws1", row.WorkSessionID)
	assert.Equal(t, "Ready", row.UserStatus)
	assert.Equal(t, 3600, row.ReadyDuration)
}

func TestNormalizeEngagementDetail(t *testing.T) {
	raw := json.RawMessage(`{
		"engagement_id": "e1",
		"queue_id": "q1",
		"ani": "+15550001",
		"dnis": "+18005550000",
		"abandoned_count": 1
	}`)
	row, err := NormalizeEngagementDetail(raw)
	require.NoError(t, err)
	assert.Equal(t, "e1", row.EngagementID)
	assert.Equal(t, "+15550001", row.ANI)
	assert.Equal(t, 1, row.AbandonedCount)
}
