package sheets

import (
	"bytes"
	"fmt"
	"log/slog"

	"github.com/tidwall/gjson"
	"github.com/weiwei-tsao/laisee-map/apps/api/pkg/model"
	"github.com/weiwei-tsao/laisee-map/apps/api/pkg/util"
)

// Canonical keys of a sheet row after NormalizeKey.
const (
	KeyDistrict  = "district"
	KeyRole      = "role"
	KeyAgeGroup  = "age_group"
	KeyRelation  = "relation"
	KeyIdentity  = "identity"
	KeyAmount    = "amount"
	KeyGreeting  = "greeting"
	KeyTimestamp = "timestamp"
)

// keyAliases maps legacy column names onto canonical keys.
var keyAliases = map[string]string{
	"wish": KeyGreeting,
}

// RawRecord is one sheet row with normalized keys and untyped values.
type RawRecord map[string]gjson.Result

// NormalizeRow lower-snake-cases the keys of a JSON object row and applies aliases.
// ok is false when the row is not an object.
func NormalizeRow(row gjson.Result) (RawRecord, bool) {
	if !row.IsObject() {
		return nil, false
	}
	raw := make(RawRecord)
	row.ForEach(func(key, value gjson.Result) bool {
		raw[util.NormalizeKey(key.String())] = value
		return true
	})
	for alias, canonical := range keyAliases {
		v, ok := raw[alias]
		if !ok {
			continue
		}
		if raw.String(canonical) == "" {
			raw[canonical] = v
		}
	}
	return raw, true
}

// String returns a cleaned text value, or "" when the key is absent or null.
func (r RawRecord) String(key string) string {
	v, ok := r[key]
	if !ok || v.Type == gjson.Null {
		return ""
	}
	return util.CleanField(v.String())
}

// Amount coerces the amount cell to a number. Numbers pass through unchanged,
// numeric strings are parsed by prefix, anything else yields nil.
// Validity (non-negative, non-zero) is left to the aggregator.
func (r RawRecord) Amount() *float64 {
	v, ok := r[KeyAmount]
	if !ok {
		return nil
	}
	switch v.Type {
	case gjson.Number:
		f := v.Float()
		return &f
	case gjson.String:
		if f, ok := util.ParseLeadingFloat(v.Str); ok {
			return &f
		}
	}
	return nil
}

// ToRecord converts the raw row into a typed record.
func (r RawRecord) ToRecord() model.SurveyRecord {
	greeting := r.String(KeyGreeting)
	if greeting == "" {
		greeting = model.DefaultGreeting
	}
	return model.SurveyRecord{
		District:  r.String(KeyDistrict),
		Role:      r.String(KeyRole),
		AgeGroup:  r.String(KeyAgeGroup),
		Relation:  r.String(KeyRelation),
		Identity:  r.String(KeyIdentity),
		Amount:    r.Amount(),
		Greeting:  greeting,
		Timestamp: r.String(KeyTimestamp),
	}
}

// DecodeRecords parses a JSON array body into records. Rows that are not objects
// are skipped and logged; a body that is not a JSON array is an error.
func DecodeRecords(body []byte, logger *slog.Logger) ([]model.SurveyRecord, error) {
	if logger == nil {
		logger = slog.Default()
	}
	body = bytes.TrimSpace(body)
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: %s", ErrNotJSON, snippet(body))
	}
	root := gjson.ParseBytes(body)
	if !root.IsArray() {
		return nil, fmt.Errorf("%w: got %s", ErrNotArray, root.Type)
	}

	records := make([]model.SurveyRecord, 0)
	idx := -1
	root.ForEach(func(_, row gjson.Result) bool {
		idx++
		raw, ok := NormalizeRow(row)
		if !ok {
			logger.Warn("skipping sheet row that is not an object", "index", idx, "type", row.Type.String())
			return true
		}
		rec := raw.ToRecord()
		if rec.Amount == nil {
			if _, present := raw[KeyAmount]; present {
				logger.Debug("sheet row amount is not numeric", "index", idx, "value", raw[KeyAmount].String())
			}
		}
		records = append(records, rec)
		return true
	})
	return records, nil
}
