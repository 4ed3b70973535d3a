package rabbitmq

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pos-service/internal/domain"
)

func TestEncode(t *testing.T) {
	at := time.Date(2026, time.March, 14, 10, 0, 0, 0, time.UTC)
	evt := domain.OrderEvent{
		Type:     domain.EventOrderCreated,
		OrderID:  7,
		Status:   domain.StatusPending,
		Total:    95000,
		Stations: []domain.Station{domain.StationKitchen, domain.StationBarista},
	}

	msg, body, err := encode(domain.EventOrderCreated, evt, at)
	require.NoError(t, err)
	assert.NotEmpty(t, msg.ID)

	var decoded struct {
		Pattern string         `json:"pattern"`
		ID      string         `json:"id"`
		Data    map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Equal(t, "order.created", decoded.Pattern)
	assert.Equal(t, msg.ID, decoded.ID)
	assert.EqualValues(t, 7, decoded.Data["orderId"])
	assert.Equal(t, []any{"KITCHEN", "BARISTA"}, decoded.Data["stations"])
}

func TestEncode_Unmarshallable(t *testing.T) {
	_, _, err := encode("order.created", make(chan int), time.Now())
	assert.Error(t, err)
}
