package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderStatus_CanTransition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		from, to OrderStatus
		want     bool
	}{
		{OrderStatusPending, OrderStatusProcessing, true},
		{OrderStatusPending, OrderStatusCancelled, true},
		{OrderStatusProcessing, OrderStatusCompleted, true},
		{OrderStatusProcessing, OrderStatusCancelled, true},
		{OrderStatusPending, OrderStatusCompleted, false},
		{OrderStatusPending, OrderStatusPending, false},
		{OrderStatusCompleted, OrderStatusCancelled, false},
		{OrderStatusCancelled, OrderStatusPending, false},
		{OrderStatusProcessing, OrderStatusPending, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.from.CanTransition(tt.to))
		})
	}
}

func TestParseOrderStatus(t *testing.T) {
	t.Parallel()

	st, ok := ParseOrderStatus("processing")
	assert.True(t, ok)
	assert.Equal(t, OrderStatusProcessing, st)

	_, ok = ParseOrderStatus("shipped")
	assert.False(t, ok)
	_, ok = ParseOrderStatus("")
	assert.False(t, ok)
}

func TestDesignData_PassesThroughJSON(t *testing.T) {
	t.Parallel()

	in := []byte(`{"product_type":"kaos","design_data":{"color":"#ff0000","decals":[{"x":1.5,"y":-2}]}}`)
	var req struct {
		DesignData DesignData `json:"design_data"`
	}
	require.NoError(t, json.Unmarshal(in, &req))
	assert.JSONEq(t, `{"color":"#ff0000","decals":[{"x":1.5,"y":-2}]}`, string(req.DesignData))
	assert.True(t, req.DesignData.Structured())

	out, err := json.Marshal(req)
	require.NoError(t, err)
	assert.JSONEq(t, `{"design_data":{"color":"#ff0000","decals":[{"x":1.5,"y":-2}]}}`, string(out))
}

func TestDesignData_ValueAndScan(t *testing.T) {
	t.Parallel()

	d := DesignData(`[1,2,3]`)
	v, err := d.Value()
	require.NoError(t, err)
	assert.Equal(t, "[1,2,3]", v)

	var back DesignData
	require.NoError(t, back.Scan([]byte(`[1,2,3]`)))
	assert.Equal(t, d, back)

	_, err = DesignData(`{broken`).Value()
	assert.Error(t, err)

	assert.Error(t, back.Scan(42))
}

func TestDesignData_Structured(t *testing.T) {
	t.Parallel()

	assert.False(t, DesignData(nil).Structured())
	assert.False(t, DesignData(`"just a string"`).Structured())
	assert.False(t, DesignData(`null`).Structured())
	assert.False(t, DesignData(`{"a":`).Structured())
	assert.True(t, DesignData(` {"a":1}`).Structured())
}
