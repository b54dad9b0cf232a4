package prioritizer_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/autotestx/prioritizer"
	"github.com/autotestx/prioritizer/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLivenessReturnsMessage(t *testing.T) {
	t.Parallel()

	msg, err := te.client.Liveness(context.Background())
	require.NoError(t, err)

	assert.Equal(t, prioritizer.LivenessMessage, msg)
}

func TestPrioritizeOrdersByRiskScoreDescending(t *testing.T) {
	t.Parallel()

	input := []client.TestRecord{record("A", 5), record("B", 9)}

	sorted, err := te.client.Prioritize(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, []client.TestRecord{input[1], input[0]}, sorted)
}

func TestPrioritizeKeepsOrderOfEqualScores(t *testing.T) {
	t.Parallel()

	sorted, err := te.client.Prioritize(context.Background(), []client.TestRecord{record("X", 7), record("Y", 7)})
	require.NoError(t, err)

	assert.Equal(t, []string{"X", "Y"}, names(sorted))
}

func TestPrioritizeEmptyArrayReturnsEmptyArray(t *testing.T) {
	t.Parallel()

	sorted, err := te.client.PrioritizeRaw(context.Background(), []byte(`[]`))
	require.NoError(t, err)

	assert.NotNil(t, sorted)
	assert.Empty(t, sorted)
}

func TestPrioritizeWithoutRecordsFailsInClient(t *testing.T) {
	t.Parallel()

	_, err := te.client.Prioritize(context.Background(), nil)

	assert.ErrorIs(t, err, client.ErrEmptyInput)
}

func TestPrioritizeMissingRiskScoreReturns422(t *testing.T) {
	t.Parallel()

	payload := `[{"testName":"C","filePath":"c.py","failureRate":0.0,"executionTime":0.0}]`

	sorted, err := te.client.PrioritizeRaw(context.Background(), []byte(payload))
	assert.Nil(t, sorted)

	var reqError client.RequestError
	require.True(t, errors.As(err, &reqError), "expected error of type RequestError but got %T: %v", err, err)

	assert.Equal(t, http.StatusUnprocessableEntity, reqError.ResponseCode)
	require.Len(t, reqError.Detail, 1)
	// json numbers are decoded as float64
	assert.Equal(t, []any{"body", float64(0), "riskScore"}, reqError.Detail[0].Loc)
	assert.Equal(t, "missing", reqError.Detail[0].Type)
}

func TestPrioritizeMalformedJSONReturns422(t *testing.T) {
	t.Parallel()

	_, err := te.client.PrioritizeRaw(context.Background(), []byte(`[{"testName":`))

	var reqError client.RequestError
	require.True(t, errors.As(err, &reqError), "expected error of type RequestError but got %T: %v", err, err)

	assert.Equal(t, http.StatusUnprocessableEntity, reqError.ResponseCode)
	require.Len(t, reqError.Detail, 1)
	assert.Equal(t, "json_invalid", reqError.Detail[0].Type)
}

func TestPrioritizeWithGetReturns405(t *testing.T) {
	t.Parallel()

	res, err := http.Get(te.host + "/prioritize")
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, http.StatusMethodNotAllowed, res.StatusCode)
}

func TestMetricsAreExposed(t *testing.T) {
	t.Parallel()

	_, err := te.client.Prioritize(context.Background(), []client.TestRecord{record("M", 1)})
	require.NoError(t, err)

	res, err := http.Get(te.host + "/metrics")
	require.NoError(t, err)
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, string(body), "prioritizer_records_prioritized_total")
	assert.Contains(t, string(body), `prioritizer_http_requests_total{code="200",route="prioritize"}`)
}
