package shopify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyWebhook(t *testing.T) {
	payload := []byte(`{"id":555}`)
	signature := Sign(payload, "s3cret")

	assert.NoError(t, VerifyWebhook(payload, signature, "s3cret"))
	assert.ErrorIs(t, VerifyWebhook(payload, signature, "other"), ErrInvalidSignature)
	assert.ErrorIs(t, VerifyWebhook([]byte(`{"id":556}`), signature, "s3cret"), ErrInvalidSignature)
	assert.ErrorIs(t, VerifyWebhook(payload, "", "s3cret"), ErrInvalidSignature)
	assert.ErrorIs(t, VerifyWebhook(payload, signature, ""), ErrMissingSecret)
}

func TestParseOrder(t *testing.T) {
	order, err := ParseOrder([]byte(`{"id":555,"order_number":1009,"financial_status":"pending","line_items":[{"id":321,"quantity":1,"price":"5"}]}`))
	require.NoError(t, err)
	assert.Equal(t, "555", order.ID)
	assert.False(t, order.IsInvoiceable())
	require.Len(t, order.LineItems, 1)

	_, err = ParseOrder([]byte(`{"name":"#1"}`))
	assert.Error(t, err)

	_, err = ParseOrder([]byte(`not json`))
	assert.Error(t, err)
}

func TestExtractOrderID(t *testing.T) {
	id, err := ExtractOrderID([]byte(`{"id":555}`))
	require.NoError(t, err)
	assert.Equal(t, "555", id)

	id, err = ExtractOrderID([]byte(`{"order_edit":{"id":9,"order_id":555}}`))
	require.NoError(t, err)
	assert.Equal(t, "555", id)

	_, err = ExtractOrderID([]byte(`{}`))
	assert.Error(t, err)
}
