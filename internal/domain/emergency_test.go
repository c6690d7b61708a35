package domain

import (
	"testing"

	"github.com/spdm-lab/rewards/internal/common"
	"github.com/spdm-lab/rewards/internal/model"
	"github.com/spdm-lab/rewards/internal/repository"
	"github.com/spdm-lab/rewards/pkg/errorx"
	"github.com/spdm-lab/rewards/pkg/testutil"
	"github.com/stretchr/testify/require"
)

func Test_emergencyDomain(t *testing.T) {
	ctx := testutil.MockContextWithFixture(testutil.Owner.ID)
	publisher := &testutil.MockPublisher{}
	d := NewEmergencyDomain(
		repository.NewEmergencyRepository(),
		publisher,
		common.NewGlobalRoleVerifier(repository.NewUserRepository()),
	)

	resp, err := d.Get(ctx, &model.GetEmergencyMessageRequest{})
	require.NoError(t, err)
	require.Nil(t, resp.Emergency)

	_, err = d.Broadcast(ctx, &model.BroadcastEmergencyRequest{Message: "Maintenance in 5 minutes"})
	require.NoError(t, err)
	_, err = d.Broadcast(ctx, &model.BroadcastEmergencyRequest{Message: "Maintenance now"})
	require.NoError(t, err)

	resp, err = d.Get(testutil.WithUserID(ctx, ""), &model.GetEmergencyMessageRequest{})
	require.NoError(t, err)
	require.Equal(t, "Maintenance now", resp.Emergency.Message)

	_, err = d.Clear(ctx, &model.ClearEmergencyRequest{})
	require.NoError(t, err)

	resp, err = d.Get(ctx, &model.GetEmergencyMessageRequest{})
	require.NoError(t, err)
	require.Nil(t, resp.Emergency)

	require.Equal(t, []string{common.TopicEmergency, common.TopicEmergency, common.TopicEmergency}, publisher.Topics())

	event := model.EmergencyEvent{}
	_, err = common.DecodeEvent(publisher.Published[2].Pack, &event)
	require.NoError(t, err)
	require.False(t, event.Active)

	_, err = d.Broadcast(ctx, &model.BroadcastEmergencyRequest{Message: "  "})
	require.True(t, errorx.Is(err, errorx.BadRequest))

	_, err = d.Broadcast(testutil.WithUserID(ctx, testutil.User2.ID), &model.BroadcastEmergencyRequest{Message: "hi"})
	require.True(t, errorx.Is(err, errorx.PermissionDenied))
}
