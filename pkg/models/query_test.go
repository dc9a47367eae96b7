package models

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadQuery_Full(t *testing.T) {
	raw := []byte(`{
		"queryText": "query Metrics($timeFrom: Float!) { metrics { values } }",
		"operationName": "Metrics",
		"variables": "{\"region\": \"$region\"}",
		"parsingOptions": [
			{
				"dataPath": "metrics.values",
				"timePath": "ts",
				"labelOptions": [
					{"name": "region", "type": "FIELD", "value": "meta.region"},
					{"name": "env", "type": "CONSTANT", "value": "prod"}
				]
			}
		]
	}`)

	qm, err := LoadQuery(raw)
	require.NoError(t, err)

	assert.Equal(t, "Metrics", qm.OperationName)
	assert.Equal(t, `{"region": "$region"}`, qm.Variables)
	require.Len(t, qm.ParsingOptions, 1)
	assert.Equal(t, "metrics.values", qm.ParsingOptions[0].DataPath)
	assert.Equal(t, []LabelOption{
		{Name: "region", Type: LabelTypeField, Value: "meta.region"},
		{Name: "env", Type: LabelTypeConstant, Value: "prod"},
	}, qm.ParsingOptions[0].LabelOptions)
}

func TestLoadQuery_SeedsDefaultParsingOption(t *testing.T) {
	qm, err := LoadQuery([]byte(`{"queryText": "query { x }"}`))
	require.NoError(t, err)

	require.Len(t, qm.ParsingOptions, 1)
	assert.Equal(t, DefaultDataPath, qm.ParsingOptions[0].DataPath)
	assert.Equal(t, DefaultTimePath, qm.ParsingOptions[0].TimePath)
}

func TestLoadQuery_InvalidJSON(t *testing.T) {
	_, err := LoadQuery([]byte(`not json`))
	require.Error(t, err)

	var qerr *QueryError
	require.ErrorAs(t, err, &qerr)
	assert.Equal(t, "could not unmarshal query JSON", qerr.Msg)
	assert.NotNil(t, qerr.Unwrap())
}

func TestLabelType_RoundTrip(t *testing.T) {
	option := LabelOption{Name: "region", Type: LabelTypeConstant, Value: ""}

	encoded, err := json.Marshal(option)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name": "region", "type": "CONSTANT", "value": ""}`, string(encoded))

	var decoded LabelOption
	require.NoError(t, json.Unmarshal(encoded, &decoded))
	assert.Equal(t, option, decoded)
}

func TestLabelType_RejectsUnknownValues(t *testing.T) {
	var option LabelOption
	err := json.Unmarshal([]byte(`{"name": "x", "type": "REGEX", "value": ""}`), &option)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REGEX")
}

func TestHasLabel(t *testing.T) {
	p := ParsingOption{
		LabelOptions: []LabelOption{{Name: "region", Type: LabelTypeConstant}},
	}
	assert.True(t, p.HasLabel("region"))
	assert.False(t, p.HasLabel("env"))
	assert.False(t, ParsingOption{}.HasLabel("region"))
}

func TestQueryError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *QueryError
		expected string
	}{
		{
			name:     "message and wrapped error",
			err:      &QueryError{Msg: "bad config", Err: fmt.Errorf("underlying")},
			expected: "bad config: underlying",
		},
		{
			name:     "only wrapped error",
			err:      &QueryError{Err: fmt.Errorf("underlying")},
			expected: "underlying",
		},
		{
			name:     "only message",
			err:      &QueryError{Msg: "bad config"},
			expected: "bad config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}
