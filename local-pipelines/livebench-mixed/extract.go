package main

import (
	"encoding/json"
	"strconv"

	"github.com/kiteco/livebench/kite-golib/dataset"
)

// fallbacks for a missing or empty question_id, in priority order
var idKeys = []string{"id", "sample_id", "task_id", "raw_id"}

// Question is one output record. Field order is the order of the keys in each JSON line.
type Question struct {
	QuestionID  string      `json:"question_id"`
	Category    string      `json:"category"`
	Turns       interface{} `json:"turns"`
	GroundTruth string      `json:"ground_truth"`
}

// SampleTag implements pipeline.Sample
func (Question) SampleTag() {}

// Extract keeps the four output fields of row. A missing category falls back to topic, missing turns to an
// empty list and a missing ground_truth to "". A missing or falsy question_id falls back to the first
// non-null idKeys field.
func Extract(row dataset.Row, topic string) Question {
	q := Question{
		Category: topic,
		Turns:    []interface{}{},
	}

	if v, ok := row["category"]; ok {
		q.Category = stringOrEmpty(v)
	}
	if v, ok := row["turns"]; ok {
		q.Turns = v
	}
	if v, ok := row["ground_truth"]; ok {
		q.GroundTruth = stringOrEmpty(v)
	}

	if v, ok := row["question_id"]; ok && truthy(v) {
		q.QuestionID = toString(v)
		return q
	}
	for _, k := range idKeys {
		if v, ok := row[k]; ok && v != nil {
			q.QuestionID = toString(v)
			break
		}
	}
	return q
}

// truthy follows Python truthiness for decoded JSON values.
func truthy(v interface{}) bool {
	switch v := v.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case json.Number:
		f, err := v.Float64()
		return err != nil || f != 0
	case float64:
		return v != 0
	case []interface{}:
		return len(v) > 0
	case map[string]interface{}:
		return len(v) > 0
	default:
		return true
	}
}

func stringOrEmpty(v interface{}) string {
	if v == nil {
		return ""
	}
	return toString(v)
}

// toString renders a decoded JSON value the way str() would for the scalar cases: strings as-is,
// numbers as written, booleans as True/False. Lists and objects become compact JSON.
func toString(v interface{}) string {
	switch v := v.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case bool:
		if v {
			return "True"
		}
		return "False"
	case nil:
		return "None"
	default:
		buf, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(buf)
	}
}
