package tags_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/almacen-bridge/internal/domain/tags"
)

func TestTrafficLightNode_Determinista(t *testing.T) {
	assert.Equal(t, "ns=2;s=TrafficLight_7", tags.TrafficLightNode(2, "7"))
	assert.Equal(t, tags.TrafficLightNode(2, "A1"), tags.TrafficLightNode(2, "A1"))
	assert.Equal(t, "TrafficLight_A1", tags.TrafficLightName("A1"))
}

func TestNodeID(t *testing.T) {
	assert.Equal(t, "ns=2;s=Warehouse.ItemCount", tags.NodeID(2, tags.ItemCount))
	assert.Equal(t, "ns=3;s=Warehouse.HMIStatus", tags.NodeID(3, tags.HMIStatus))
}

func TestLookup(t *testing.T) {
	def, ok := tags.Lookup(tags.TrafficLightStatus)
	require.True(t, ok)
	assert.True(t, def.Allows("GREEN"))
	assert.False(t, def.Allows("PURPLE"))
	assert.Equal(t, "OFF", def.Initial)

	_, ok = tags.Lookup(tags.Tag("Nope"))
	assert.False(t, ok)

	hmi, ok := tags.Lookup(tags.HMICommand)
	require.True(t, ok)
	assert.Len(t, hmi.Allowed, 7)
	assert.Equal(t, "NONE", hmi.Initial)
}
